package benchkit

import (
	"math"
	"time"
)

// divisorTable maps a cycle index (1-based) to the divisor of
// growthTarget that gives the next iteration count, used when a batch
// measures exactly
// zero elapsed time (the clock couldn't register the work at all).
// Inherited engine behavior (spec.md §9 Open Questions): a heuristic
// growth curve, not a contract, and deliberately not extended past the
// indices the original engine used.
var divisorTable = map[int]float64{
	1: 4096,
	2: 512,
	3: 64,
	4: 8,
}

// growthTarget is the total iteration count the divisor table's shares
// are fractions of.
const growthTarget = 4_000_000

// enterClocking runs the clock loop (C2) for the current iteration count
// and advances to evaluation once elapsed time is known: immediately for
// a synchronous body, or later (via Deferred.Resolve) for a deferred one.
func (b *Benchmark) enterClocking() {
	b.state = stateClocking
	b.cycleIdx++

	if b.Config.Setup != nil {
		b.Config.Setup()
	}

	if b.Config.Defer {
		b.startDeferredBatch()
		return
	}

	shape, berr := preTest(b.Name, b.shape, b.Fn, b.tag)
	b.shape = shape
	if berr != nil {
		b.fail(berr)
		return
	}

	elapsed, _, panicVal := runBatch(b.timerSource, b.shape, b.Fn, b.Count, b.tag)
	if panicVal != nil {
		b.fail(NewBenchmarkError(b.Name, KindBodyThrewInRun, errFromPanic(panicVal)))
		return
	}

	if b.Config.Teardown != nil {
		b.Config.Teardown()
	}

	b.evaluate(elapsed)
}

// evaluate computes this cycle's period/hz, fires the cycle event, and
// decides whether another, larger-count cycle is needed to reach
// minTime (spec.md §4.3).
//
// b.state is set to its post-cycle value (stateDone for the definitive
// measurement, stateEvaluating while growth continues) *before* the
// cycle event is emitted, so a listener observing the event synchronously
// — in particular the sampling controller's clone bridge — can tell a
// clone's terminal cycle from an intermediate growth attempt by reading
// b.state during dispatch.
func (b *Benchmark) evaluate(elapsed float64) {
	b.Times.Cycle = elapsed
	b.Times.Period = elapsed / float64(b.Count)
	b.Times.TimeStamp = time.Now()
	if b.Times.Period > 0 {
		b.Hz = 1 / b.Times.Period
	} else {
		b.Hz = math.Inf(1)
	}
	b.Cycles++

	minTime := b.Config.MinTime.Seconds()
	final := elapsed >= minTime
	if final {
		b.state = stateDone
	} else {
		b.state = stateEvaluating
	}

	event := &Event{
		TimeStamp:     b.Times.TimeStamp,
		Target:        b,
		CurrentTarget: b,
		Type:          EventCycle,
	}
	b.Emit(event)

	if event.Aborted || b.Aborted {
		b.state = stateDone
		b.Abort()
		return
	}

	if final {
		return
	}

	newCount, ok := b.nextCount(elapsed)
	if !ok {
		b.state = stateDone
		b.fail(NewBenchmarkError(b.Name, KindUnclockableRate, nil))
		return
	}
	b.Count = newCount

	b.state = stateScheduling
	b.scheduleNextCycle()
}

// nextCount computes the iteration count for the next growth attempt.
// ok is false when the count cannot be made finite: the benchmark cannot
// be clocked at all.
func (b *Benchmark) nextCount(elapsed float64) (count int, ok bool) {
	if elapsed == 0 {
		divisor, known := divisorTable[b.cycleIdx]
		if !known {
			return 0, false
		}
		share := growthTarget / divisor
		if math.IsInf(share, 0) || math.IsNaN(share) || share <= 0 {
			return 0, false
		}
		return int(share), true
	}

	minTime := b.Config.MinTime.Seconds()
	period := elapsed / float64(b.Count)
	delta := (minTime - elapsed) / period
	if math.IsInf(delta, 0) || math.IsNaN(delta) {
		return 0, false
	}
	next := b.Count + int(math.Ceil(delta))
	if next <= b.Count {
		return 0, false
	}
	return next, true
}

// scheduleNextCycle re-enters Clocking: immediately for synchronous
// benchmarks, or after Config.Delay on the injected Clock for async ones
// (spec.md §4.3; delays never count toward the sampling controller's
// maxTime).
func (b *Benchmark) scheduleNextCycle() {
	if !b.isAsync() {
		b.enterClocking()
		return
	}
	clk := b.Config.Clock
	if clk == nil {
		clk = RealClock
	}
	b.pendingAt = clk.AfterFunc(b.Config.Delay, func() {
		b.pendingAt = nil
		b.enterClocking()
	})
}
