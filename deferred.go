package benchkit

import "time"

// Deferred is attached to an in-flight cycle of a deferred benchmark: its
// body receives one and must call Resolve exactly once per iteration to
// signal completion, rather than simply returning. Grounded on the
// settle-once contract of a Promise (joeycumines-go-utilpkg/eventloop's
// promise.go), adapted from "resolve the whole promise once" to "resolve
// one iteration, then either run again or finish the batch" (spec.md
// §4.4).
type Deferred struct {
	Benchmark *Benchmark
	Cycles    int
	Elapsed   float64
	TimeStamp time.Time

	resolved bool
	start    float64
}

// startDeferredBatch begins a deferred benchmark's batch: a fresh
// Deferred context is installed, the timer starts, and the body runs
// once. Subsequent iterations are driven entirely by Deferred.Resolve.
func (b *Benchmark) startDeferredBatch() {
	d := &Deferred{Benchmark: b, TimeStamp: time.Now()}
	b.deferred = d
	d.start = b.timerSource.Sample()
	b.invokeDeferredBody(d)
}

// invokeDeferredBody calls the user's body once, recovering a panic into
// BodyThrewInRun — the deferred counterpart of the synchronous clock
// loop's panic handling in runBatch.
func (b *Benchmark) invokeDeferredBody(d *Deferred) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(NewBenchmarkError(b.Name, KindBodyThrewInRun, errFromPanic(r)))
		}
	}()
	b.DeferredFn(d)
}

// Resolve signals that the deferred body finished its current iteration.
// It must be called exactly once per iteration; a second call for the
// same iteration is reported as a DeferredDoubleResolve error rather than
// re-entering the batch (spec.md §4.4's serialization requirement).
func (d *Deferred) Resolve() {
	if d.resolved {
		d.Benchmark.fail(NewBenchmarkError(d.Benchmark.Name, KindDeferredDoubleResolve, nil))
		return
	}
	d.resolved = true
	d.Cycles++

	b := d.Benchmark

	if b.Aborted {
		if b.Config.Teardown != nil {
			b.Config.Teardown()
		}
		b.Running = false
		// A synthetic cycle event unblocks the cycle controller, which
		// would otherwise wait forever on a cycle that will never arrive.
		b.Emit(&Event{
			TimeStamp:     time.Now(),
			Target:        b,
			CurrentTarget: b,
			Type:          EventCycle,
			Message:       "synthetic: deferred abort",
		})
		return
	}

	if d.Cycles < b.Count {
		d.resolved = false
		b.invokeDeferredBody(d)
		return
	}

	d.Elapsed = b.timerSource.Sample() - d.start
	if b.Config.Teardown != nil {
		b.Config.Teardown()
	}

	// Re-enter Evaluating through the benchmark's delay facility, so the
	// deferred path rejoins the same scheduling used by the synchronous
	// growth loop (spec.md §4.4 step 2, last bullet).
	finish := func() {
		b.pendingAt = nil
		b.evaluate(d.Elapsed)
	}
	if b.isAsync() {
		clk := b.Config.Clock
		if clk == nil {
			clk = RealClock
		}
		b.pendingAt = clk.AfterFunc(b.Config.Delay, finish)
	} else {
		finish()
	}
}
