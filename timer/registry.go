// Package timer implements the timer registry (C1): it enumerates
// candidate time sources, probes each one's resolution, and selects the
// finest-grained source that actually works on the host.
package timer

import (
	"errors"
	"math"
)

// Source is a candidate time source: a monotonic-if-possible clock that
// reports elapsed seconds since some arbitrary epoch fixed at
// construction time. Only differences between Sample calls are
// meaningful; the absolute value carries no meaning across sources.
type Source interface {
	// Name identifies the source for diagnostics (e.g. "monotonic").
	Name() string
	// Sample returns the current reading, in seconds.
	Sample() float64
}

// ErrNoUsableTimer is returned by Select when every candidate's probed
// resolution is infinite (broken).
var ErrNoUsableTimer = errors.New("timer: no usable time source")

// probeIterations is the minimum sample count spec.md §4.1 requires.
const probeIterations = 30

// maxSpin bounds how many times Resolution will re-sample within a
// single probe iteration while waiting for the source to tick forward,
// so a genuinely broken (frozen) source fails fast instead of hanging.
const maxSpin = 10_000

// Resolution estimates the smallest nonzero duration src can reliably
// distinguish: it samples src repeatedly, and for each of probeIterations
// rounds, waits (bounded by maxSpin retries) for the reading to change,
// recording that change as one delta. The resolution is the arithmetic
// mean of the collected deltas. If any round never produces a positive
// delta — either the source never ticks forward, or it moves
// backwards — the source is broken and Resolution returns +Inf.
func Resolution(src Source) float64 {
	var sum float64
	prev := src.Sample()

	for i := 0; i < probeIterations; i++ {
		var delta float64
		for spins := 0; ; spins++ {
			cur := src.Sample()
			delta = cur - prev
			if delta != 0 || spins >= maxSpin {
				prev = cur
				break
			}
		}
		if delta <= 0 {
			return math.Inf(1)
		}
		sum += delta
	}

	return sum / probeIterations
}

// candidate pairs a Source with an optional floor: the minimum resolution
// the registry will credit it with, regardless of what Resolution
// measures (spec.md §4.1: "the millisecond-granularity source must
// report at least 1.5 ms").
type candidate struct {
	source Source
	floor  float64
}

// Registry holds the ordered list of candidate time sources probed at
// startup.
type Registry struct {
	candidates []candidate
}

// NewRegistry returns a Registry seeded with the two sources spec.md §6
// names: a high-resolution monotonic source, and a 1.5ms-floored
// wall-clock fallback. Additional candidates can be registered via
// Register before calling Select.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewMonotonic(), 0)
	r.Register(NewWallClock(), 1_500 * 1e-6) // 1.5ms, in seconds
	return r
}

// Register adds a candidate Source with the given resolution floor (in
// seconds; 0 for no floor).
func (r *Registry) Register(src Source, floor float64) {
	r.candidates = append(r.candidates, candidate{source: src, floor: floor})
}

// Selected is the outcome of Select: the winning source together with
// its measured (and floored) resolution.
type Selected struct {
	Source     Source
	Resolution float64
}

// Select probes every registered candidate and returns the one with the
// smallest effective resolution (measured resolution, clamped up to its
// floor). It fails with ErrNoUsableTimer if every candidate is broken.
func (r *Registry) Select() (Selected, error) {
	var best Selected
	found := false

	for _, c := range r.candidates {
		res := Resolution(c.source)
		if math.IsInf(res, 1) {
			continue
		}
		if res < c.floor {
			res = c.floor
		}
		if !found || res < best.Resolution {
			best = Selected{Source: c.source, Resolution: res}
			found = true
		}
	}

	if !found {
		return Selected{}, ErrNoUsableTimer
	}
	return best, nil
}
