package benchkit

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes a benchmark can report, per the error
// taxonomy of the measurement core: a benchmark either never ran (its body
// was empty or untrustworthy), failed mid-run, or could not be clocked at
// all.
type Kind int

const (
	// KindEmptyBody means the pre-test found no body to run (a nil Func).
	// A non-nil body that does no work is not detected.
	KindEmptyBody Kind = iota
	// KindPreTestThrew means the body panicked during the single
	// pre-test iteration. Recoverable: the clock loop falls back to the
	// indirect-call shape and retries once before giving up.
	KindPreTestThrew
	// KindBodyThrewInRun means the body panicked during the real,
	// clocked batch. Not recoverable for the current cycle.
	KindBodyThrewInRun
	// KindCompilationRefused means neither the inlined nor the indirect
	// shape could be trusted for this benchmark (the integrity tag did
	// not come back). A nil func is reported as KindEmptyBody instead.
	KindCompilationRefused
	// KindTimerStopFailed means a deferred benchmark's timer-stop
	// closure was never invoked (the body resolved a stale cycle).
	KindTimerStopFailed
	// KindNoUsableTimer means every timer candidate in the registry
	// reported infinite resolution. Fatal at registry selection.
	KindNoUsableTimer
	// KindUnclockableRate means hz became infinite: the cycle-growth
	// heuristic ran out of fallback counts (cycle index 5) without the
	// batch ever taking measurable time.
	KindUnclockableRate
	// KindDeferredDoubleResolve means a deferred test body called
	// resolve more than once for the same iteration.
	KindDeferredDoubleResolve
)

// String names the kind for log lines and error messages.
func (k Kind) String() string {
	switch k {
	case KindEmptyBody:
		return "empty-body"
	case KindPreTestThrew:
		return "pre-test-threw"
	case KindBodyThrewInRun:
		return "body-threw-in-run"
	case KindCompilationRefused:
		return "compilation-refused"
	case KindTimerStopFailed:
		return "timer-stop-failed"
	case KindNoUsableTimer:
		return "no-usable-timer"
	case KindUnclockableRate:
		return "unclockable-rate"
	case KindDeferredDoubleResolve:
		return "deferred-double-resolve"
	default:
		return "unknown"
	}
}

// BenchmarkError is the error recorded on Benchmark.Error and carried by
// error Events. It pairs a Kind with the benchmark name and, where
// applicable, the underlying cause (a recovered panic value or a wrapped
// error).
type BenchmarkError struct {
	Cause error
	Name  string
	Kind  Kind
}

// NewBenchmarkError builds a BenchmarkError for the given benchmark name.
func NewBenchmarkError(name string, kind Kind, cause error) *BenchmarkError {
	return &BenchmarkError{Name: name, Kind: kind, Cause: cause}
}

// Error implements the error interface.
func (e *BenchmarkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("benchkit: %s: %s: %v", e.Name, e.Kind, e.Cause)
	}
	return fmt.Sprintf("benchkit: %s: %s", e.Name, e.Kind)
}

// Unwrap exposes the underlying cause, enabling errors.Is/errors.As chains.
func (e *BenchmarkError) Unwrap() error {
	return e.Cause
}

// Is reports whether target names the same Kind, letting callers write
// errors.Is(err, benchkit.ErrUnclockableRate) without reaching into Kind.
func (e *BenchmarkError) Is(target error) bool {
	var other *BenchmarkError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinel errors usable with errors.Is, one per Kind, with no benchmark
// name or cause attached.
var (
	ErrEmptyBody             = &BenchmarkError{Kind: KindEmptyBody}
	ErrPreTestThrew          = &BenchmarkError{Kind: KindPreTestThrew}
	ErrBodyThrewInRun        = &BenchmarkError{Kind: KindBodyThrewInRun}
	ErrCompilationRefused    = &BenchmarkError{Kind: KindCompilationRefused}
	ErrTimerStopFailed       = &BenchmarkError{Kind: KindTimerStopFailed}
	ErrNoUsableTimer         = &BenchmarkError{Kind: KindNoUsableTimer}
	ErrUnclockableRate       = &BenchmarkError{Kind: KindUnclockableRate}
	ErrDeferredDoubleResolve = &BenchmarkError{Kind: KindDeferredDoubleResolve}
)
