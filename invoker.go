package benchkit

import "time"

// Mode selects how an Invoker walks its benchmark list.
type Mode int

const (
	// ModeMap walks the fixed list by index, collecting each benchmark's
	// finished state into a result slice.
	ModeMap Mode = iota
	// ModeQueue is the mode Suite.Run uses. Run walks the list in order
	// exactly as for ModeMap; the list is not consumed (no benchmark is
	// removed from Benchmarks).
	ModeQueue
)

// Invoker drives a list of benchmarks through their run lifecycle,
// firing start (once, before the first benchmark begins), cycle (once
// between any two benchmarks), and complete (once, after the last
// finishes) — the uniform operation triad of spec.md §4.6. Each
// benchmark is driven to a full sampling run via its own
// SamplingController; a listener that sets Aborted on the invoker-level
// cycle event stops iteration early.
type Invoker struct {
	*EventTarget

	Benchmarks []*Benchmark
	Mode       Mode

	results []*Benchmark
}

// NewInvoker returns an Invoker over benchmarks, walked according to
// mode.
func NewInvoker(mode Mode, benchmarks []*Benchmark) *Invoker {
	return &Invoker{
		EventTarget: newEventTarget(),
		Benchmarks:  benchmarks,
		Mode:        mode,
	}
}

// Run drives every benchmark to completion in list order and returns the
// finished benchmarks. It blocks until the whole list (or an aborted
// prefix of it) has completed.
func (inv *Invoker) Run() []*Benchmark {
	inv.results = nil
	inv.Emit(&Event{TimeStamp: time.Now(), Type: EventStart})

	for i, b := range inv.Benchmarks {
		inv.runOne(b)
		inv.results = append(inv.results, b)

		if i == len(inv.Benchmarks)-1 {
			break
		}

		event := &Event{TimeStamp: time.Now(), Type: EventCycle}
		inv.Emit(event)
		if event.Aborted || event.Cancelled {
			break
		}
		inv.interBenchmarkPause(b)
	}

	inv.Emit(&Event{TimeStamp: time.Now(), Type: EventComplete})
	return inv.results
}

// runOne drives a single benchmark through a full sampling run,
// installing a one-shot completion listener as the first listener on
// complete (spec.md §4.6's sync/async policy) and blocking until it
// fires. For synchronous, non-deferred benchmarks this returns
// immediately, since SamplingController.Run never yields to a scheduler
// in that case; for async or deferred benchmarks it blocks until the
// injected Clock delivers the scheduled continuations.
func (inv *Invoker) runOne(b *Benchmark) {
	done := make(chan struct{})
	b.PrependOn(EventComplete, func(e *Event) bool {
		close(done)
		return true
	})

	sc := NewSamplingController(b)
	sc.Run()

	<-done
}

// interBenchmarkPause suspends between benchmarks when the finished
// benchmark runs async or deferred, through its own injected Clock —
// the third and last suspension point named in spec.md §5.
func (inv *Invoker) interBenchmarkPause(b *Benchmark) {
	if !b.isAsync() {
		return
	}
	clk := b.Config.Clock
	if clk == nil {
		clk = RealClock
	}
	woke := make(chan struct{})
	clk.AfterFunc(b.Config.Delay, func() { close(woke) })
	<-woke
}
