package benchkit

import (
	"testing"
	"time"
)

// TestDeferredResolveCompletesOneCycle drives a minimal deferred
// benchmark (one resolve per cycle, via WithMinTime(time.Nanosecond) so
// the iteration-growth heuristic never kicks in) through a FakeClock,
// exercising the resolve protocol end to end.
func TestDeferredResolveCompletesOneCycle(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	var resolveCalls int
	b := NewDeferredBenchmark("deferred", func(d *Deferred) {
		resolveCalls++
		d.Resolve()
	},
		WithClock(clock),
		WithDelay(time.Millisecond),
		WithMinTime(time.Nanosecond),
		WithMinSamples(1),
		WithMaxTime(time.Nanosecond),
	)

	sc := NewSamplingController(b)
	sc.Run()

	clock.Step(2 * time.Millisecond)
	clock.BlockUntilReady()

	if resolveCalls == 0 {
		t.Fatal("expected the deferred body to run at least once")
	}
	if b.Stats.N() != 1 {
		t.Fatalf("sample count = %d, want 1", b.Stats.N())
	}
	if b.Running {
		t.Fatal("expected benchmark not running after complete")
	}
}

// TestDeferredDoubleResolveIsReported verifies that calling Resolve
// twice for the same iteration surfaces DeferredDoubleResolve rather
// than silently re-entering the batch.
func TestDeferredDoubleResolveIsReported(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))

	b := NewDeferredBenchmark("double-resolve", func(d *Deferred) {
		d.Resolve()
		d.Resolve()
	},
		WithClock(clock),
		WithDelay(time.Millisecond),
		WithMinTime(0),
		WithMinSamples(1),
		WithMaxTime(time.Second),
	)

	b.Run()

	if b.Error == nil || b.Error.Kind != KindDeferredDoubleResolve {
		t.Fatalf("error = %v, want KindDeferredDoubleResolve", b.Error)
	}
}
