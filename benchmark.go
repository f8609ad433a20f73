package benchkit

import (
	"sync/atomic"
	"time"

	"github.com/benchkit/benchkit/timer"
)

// idCounter hands out the monotonic numeric id every Benchmark and clone
// carries, per spec.md §3's identity/lineage fields.
var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}

// Times is the result record of the most recently completed cycle:
// elapsed/period in seconds, and the wall-clock moment the cycle
// finished.
type Times struct {
	Cycle     float64
	Elapsed   float64
	Period    float64
	TimeStamp time.Time
}

// cycleState names the cycle controller's (C3) per-cycle state machine
// positions.
type cycleState int

const (
	stateIdle cycleState = iota
	stateClocking
	stateEvaluating
	stateScheduling
	stateDone
)

// Benchmark describes a test routine plus its running state and results.
// It is the library's central type, grounded on the teacher's processor
// types (Throttle, CircuitBreaker): a struct built by a functional-option
// constructor, holding an embedded EventTarget for external observation
// and mutable state advanced only from the single cooperative goroutine
// driving it (spec.md §5).
type Benchmark struct {
	*EventTarget

	Name string
	ID   uint64

	Fn         Func
	DeferredFn DeferredFunc

	Config Config

	Count  int
	Cycles int
	Hz     float64

	Times Times
	Stats Stats

	Running bool
	Aborted bool
	Error   *BenchmarkError

	source *Benchmark // lineage back-pointer for clones, spec.md §3

	timerSource timer.Source
	tag         uint64
	shape       batchShape

	state     cycleState
	cycleIdx  int
	deferred  *Deferred
	pendingAt Timer

	calledByAbort bool
	calledByReset bool
}

// NewBenchmark constructs a Benchmark with a synchronous body.
func NewBenchmark(name string, fn Func, opts ...Option) *Benchmark {
	b := newBenchmark(name, opts)
	b.Fn = fn
	return b
}

// NewDeferredBenchmark constructs a Benchmark whose body signals
// completion explicitly through a Deferred controller, the asynchronous
// counterpart of NewBenchmark (spec.md §4.4).
func NewDeferredBenchmark(name string, fn DeferredFunc, opts ...Option) *Benchmark {
	b := newBenchmark(name, opts)
	b.DeferredFn = fn
	b.Config.Defer = true
	return b
}

func newBenchmark(name string, opts []Option) *Benchmark {
	cfg := newConfig(opts)
	sel := defaultTimer()
	if cfg.MinTime == 0 {
		cfg.MinTime = defaultMinTime(sel.Resolution)
	}
	return &Benchmark{
		EventTarget: newEventTarget(),
		Name:        name,
		ID:          nextID(),
		Config:      cfg,
		Count:       cfg.InitCount,
		timerSource: sel.Source,
		tag:         nextTag(),
	}
}

// defaultRegistry is selected once per process, matching spec.md §5's
// "effectively process-wide but read-only after selection".
var defaultRegistry = timer.NewRegistry()

func defaultTimer() timer.Selected {
	sel, err := defaultRegistry.Select()
	if err != nil {
		// NoUsableTimer is fatal to the library, per spec.md §7; there is
		// no recoverable path, so the wall-clock source is used as a
		// last-resort degenerate fallback rather than panicking the
		// whole process on package use.
		return timer.Selected{Source: timer.NewWallClock(), Resolution: 1}
	}
	return sel
}

// defaultMinTime derives minTime from the selected timer's resolution so
// that measurement uncertainty stays at or below 1%, per spec.md §3.
func defaultMinTime(resolution float64) time.Duration {
	target := resolution * 100
	if target < float64(50*time.Millisecond)/float64(time.Second) {
		target = float64(50 * time.Millisecond) / float64(time.Second)
	}
	return time.Duration(target * float64(time.Second))
}

// isAsync reports whether this benchmark's cycles should suspend between
// each other through the Clock rather than looping immediately, per
// spec.md §4.6's sync/async policy.
func (b *Benchmark) isAsync() bool {
	return b.Config.Async || b.Config.Defer
}

// Run starts a full sampling run of the benchmark (spec.md §6's primary
// entry point) and returns immediately; completion is signalled through
// the complete event. It delegates to a SamplingController rather than
// running a single cycle directly, so a caller that only holds a
// *Benchmark still gets the same sampled measurement Suite/Invoker
// produce.
func (b *Benchmark) Run() *Benchmark {
	if b.Running {
		return b
	}
	return NewSamplingController(b).Run()
}

// runCycle drives one pass of the cycle controller (C3): it is the unit
// of work the sampling controller (C5) runs one clone through at a time,
// growing the iteration count until a batch reaches minTime. This was
// formerly exported as Run; library users wanting a full measurement
// should call Run (or drive a Suite/Invoker), not runCycle.
func (b *Benchmark) runCycle() *Benchmark {
	if b.Running {
		return b
	}
	b.Running = true
	b.Aborted = false
	b.Error = nil
	b.emitStart()
	b.enterClocking()
	return b
}

func (b *Benchmark) emitStart() {
	b.Emit(&Event{
		TimeStamp:     time.Now(),
		Target:        b,
		CurrentTarget: b,
		Type:          EventStart,
	})
}

// Abort cooperatively stops the benchmark: it is respected at the next
// cycle boundary, clears any pending suspension, and fires an abort
// event. It never recurses into Reset (spec.md §5's calledBy guards).
func (b *Benchmark) Abort() {
	if b.calledByReset {
		return
	}
	b.calledByAbort = true
	defer func() { b.calledByAbort = false }()

	b.Aborted = true
	if b.pendingAt != nil {
		b.pendingAt.Stop()
		b.pendingAt = nil
	}

	b.Emit(&Event{
		TimeStamp:     time.Now(),
		Target:        b,
		CurrentTarget: b,
		Type:          EventAbort,
	})

	if !b.calledByReset {
		b.Running = false
	}
}

// Reset returns the benchmark to a state indistinguishable from just
// after construction: same configuration, empty sample, zero counters,
// not running (spec.md §8 round-trip property).
func (b *Benchmark) Reset() {
	if b.calledByAbort {
		return
	}
	b.calledByReset = true
	defer func() { b.calledByReset = false }()

	if b.pendingAt != nil {
		b.pendingAt.Stop()
		b.pendingAt = nil
	}

	b.Count = b.Config.InitCount
	b.Cycles = 0
	b.Hz = 0
	b.Times = Times{}
	b.Stats = Stats{}
	b.Running = false
	b.Aborted = false
	b.Error = nil
	b.state = stateIdle
	b.cycleIdx = 0
	b.deferred = nil

	b.Emit(&Event{
		TimeStamp:     time.Now(),
		Target:        b,
		CurrentTarget: b,
		Type:          EventReset,
	})
}

// Clone creates a new Benchmark sharing b's configuration and body, with
// its own times/stats/running/error, carrying a back-pointer to b (its
// source) per spec.md §3's lineage note and §4.5's clone model.
func (b *Benchmark) Clone(opts ...Option) *Benchmark {
	cfg := b.Config
	for _, opt := range opts {
		opt(&cfg)
	}
	clone := &Benchmark{
		EventTarget: newEventTarget(),
		Name:        b.Name,
		ID:          nextID(),
		Fn:          b.Fn,
		DeferredFn:  b.DeferredFn,
		Config:      cfg,
		Count:       cfg.InitCount,
		timerSource: b.timerSource,
		tag:         nextTag(),
		source:      b,
	}
	return clone
}

// Source returns the benchmark this one was cloned from, or nil if it is
// not a clone.
func (b *Benchmark) Source() *Benchmark {
	return b.source
}

// fail records err as the benchmark's terminal error, fires an error
// event, and aborts the benchmark — the shared disposition for every
// error kind in spec.md §7 except the PreTestThrew→fallback recovery
// path, which is handled inline in the clock loop instead.
func (b *Benchmark) fail(err *BenchmarkError) {
	b.Error = err
	b.Emit(&Event{
		TimeStamp:     time.Now(),
		Target:        b,
		CurrentTarget: b,
		Type:          EventError,
		Result:        err,
	})
	b.Abort()
}
