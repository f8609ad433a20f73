package benchkit

import (
	"reflect"
	"sync/atomic"

	"github.com/benchkit/benchkit/timer"
)

// batchShape selects how the clock loop invokes a synchronous body:
// shapeInlined calls it directly (the default, fast path); shapeIndirect
// calls it through reflect.Value.Call, simulating a call through a
// resolved slot rather than a direct, statically-typed call. Go cannot
// recompile a loop at runtime the way the original engine's string-built
// batches did, so this is the Go-realizable analogue of spec.md §9's
// "inlined vs. indirect-call shape": both paths run the same number of
// iterations and return the same integrity tag, but shapeIndirect pays
// reflection overhead on every call, mirroring the inlined shape's
// "no call per iteration required" advantage and the indirect shape's
// fallback role.
type batchShape int

const (
	shapeInlined batchShape = iota
	shapeIndirect
)

// tagCounter is the shared, per-process generator the clock loop draws
// each Benchmark's integrity tag from (spec.md §4.2, §9 Glossary): every
// compiled batch in the process gets a distinct, nonzero tag, so a batch
// that returns the wrong tag (or no tag) is self-evidently untrustworthy.
var tagCounter atomic.Uint64

// nextTag returns the next per-process-unique integrity tag. Never
// returns zero, so zero can stand for "no tag observed".
func nextTag() uint64 {
	return tagCounter.Add(1)
}

// runBatch executes fn count times back-to-back and returns the elapsed
// seconds, the integrity tag actually observed, and any panic recovered
// from the body. shape selects the calling convention. clk is typically
// the benchmark's selected timer.Source; callers that only care about
// the tag/panic outcome (the pre-test) may pass a no-op clock.
func runBatch(clk timer.Source, shape batchShape, fn Func, count int, tag uint64) (elapsed float64, seenTag uint64, panicVal any) {
	defer func() {
		panicVal = recover()
	}()

	start := clk.Sample()

	switch shape {
	case shapeIndirect:
		v := reflect.ValueOf(fn)
		for i := 0; i < count; i++ {
			v.Call(nil)
		}
	default: // shapeInlined
		for i := 0; i < count; i++ {
			fn()
		}
	}

	elapsed = clk.Sample() - start
	seenTag = tag
	return
}

// noopSource is a throwaway timer.Source used to run the pre-test
// iteration, whose duration preTest itself discards.
type noopSource struct{}

func (noopSource) Name() string    { return "noop" }
func (noopSource) Sample() float64 { return 0 }

// preTest runs a single pre-test iteration of a synchronous body to
// classify it before the real batch: an empty body, a body whose
// compiled batch came back with the wrong integrity tag (the
// Go-realizable analogue of a hijacked return), or a body that panics.
//
// It returns the shape the real batch should use and, if the benchmark
// cannot be clocked at all, the BenchmarkError to record (nil on
// success).
func preTest(name string, shape batchShape, fn Func, tag uint64) (batchShape, *BenchmarkError) {
	if fn == nil {
		return shape, NewBenchmarkError(name, KindEmptyBody, nil)
	}

	_, seenTag, panicVal := runBatch(noopSource{}, shape, fn, 1, tag)

	switch {
	case panicVal != nil && shape == shapeInlined:
		// PreTestThrew disposition (spec.md §7): fall back to the
		// indirect shape and retry once.
		_, seenTag, panicVal = runBatch(noopSource{}, shapeIndirect, fn, 1, tag)
		if panicVal != nil {
			return shapeIndirect, NewBenchmarkError(name, KindPreTestThrew, errFromPanic(panicVal))
		}
		if seenTag != tag {
			return shapeIndirect, NewBenchmarkError(name, KindCompilationRefused, nil)
		}
		return shapeIndirect, nil

	case panicVal != nil:
		return shape, NewBenchmarkError(name, KindPreTestThrew, errFromPanic(panicVal))

	case seenTag != tag && shape == shapeInlined:
		return preTest(name, shapeIndirect, fn, tag)

	case seenTag != tag:
		return shape, NewBenchmarkError(name, KindCompilationRefused, nil)
	}

	return shape, nil
}

// errFromPanic normalizes a recovered panic value into an error.
func errFromPanic(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &panicError{value: v}
}

type panicError struct{ value any }

func (p *panicError) Error() string { return "panic: " + formatPanic(p.value) }

func formatPanic(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "non-string panic value"
}
