package benchkit

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestSamplingControllerTrivialNoop exercises spec.md §8 S1: an empty
// synchronous body should converge quickly to a very high hz and collect
// at least minSamples samples well within the time budget.
func TestSamplingControllerTrivialNoop(t *testing.T) {
	b := NewBenchmark("noop", func() {},
		WithMinTime(50*time.Millisecond),
		WithMinSamples(5),
		WithMaxTime(1*time.Second),
	)

	sc := NewSamplingController(b)
	sc.Run()

	if b.Running {
		t.Fatal("expected benchmark not running after complete")
	}
	if b.Stats.N() < 5 {
		t.Fatalf("sample count = %d, want >= 5", b.Stats.N())
	}
	if math.IsInf(b.Hz, 0) || b.Hz <= 0 {
		t.Fatalf("hz = %v, want a finite positive rate", b.Hz)
	}
}

// TestSamplingControllerThrownError exercises spec.md §8 S3: a body that
// always panics should terminate with an error, aborted=true, an empty
// sample set, and exactly one error event.
func TestSamplingControllerThrownError(t *testing.T) {
	var errorEvents int
	var completeEvents int

	b := NewBenchmark("always-panics", func() { panic("boom") },
		WithMinTime(50*time.Millisecond),
		WithMinSamples(5),
		WithMaxTime(1*time.Second),
	)
	b.On(EventError, func(e *Event) bool {
		errorEvents++
		return true
	})
	b.On(EventComplete, func(e *Event) bool {
		completeEvents++
		return true
	})

	sc := NewSamplingController(b)
	sc.Run()

	if errorEvents != 1 {
		t.Fatalf("error events = %d, want 1", errorEvents)
	}
	if completeEvents != 1 {
		t.Fatalf("complete events = %d, want 1", completeEvents)
	}
	if !b.Aborted {
		t.Fatal("expected benchmark to be aborted")
	}
	if b.Stats.N() != 0 {
		t.Fatalf("sample count = %d, want 0", b.Stats.N())
	}
	if b.Error == nil {
		t.Fatal("expected benchmark.Error to be set")
	}
	if !errors.Is(b.Error, ErrPreTestThrew) {
		t.Fatalf("error = %v, want Is(ErrPreTestThrew)", b.Error)
	}
}

func TestBenchmarkResetReturnsToConstructionState(t *testing.T) {
	b := NewBenchmark("noop", func() {},
		WithMinTime(10*time.Millisecond),
		WithMinSamples(3),
		WithMaxTime(500*time.Millisecond),
	)

	sc := NewSamplingController(b)
	sc.Run()

	if b.Stats.N() == 0 {
		t.Fatal("expected some samples before reset")
	}

	b.Reset()

	if b.Running {
		t.Fatal("expected not running after reset")
	}
	if b.Aborted {
		t.Fatal("expected not aborted after reset")
	}
	if b.Stats.N() != 0 {
		t.Fatalf("sample count after reset = %d, want 0", b.Stats.N())
	}
	if b.Count != b.Config.InitCount {
		t.Fatalf("count after reset = %d, want %d", b.Count, b.Config.InitCount)
	}
	if b.Cycles != 0 {
		t.Fatalf("cycles after reset = %d, want 0", b.Cycles)
	}
}

func TestBenchmarkCloneSharesConfigAndTracksSource(t *testing.T) {
	b := NewBenchmark("source", func() {}, WithMinSamples(7))
	clone := b.Clone()

	if clone.Source() != b {
		t.Fatal("expected clone.Source() to point back to the original")
	}
	if clone.Config.MinSamples != 7 {
		t.Fatalf("clone.Config.MinSamples = %d, want 7", clone.Config.MinSamples)
	}
	if clone.ID == b.ID {
		t.Fatal("expected clone to have a distinct id")
	}
}

func TestBenchmarkAbortedImpliesNotRunning(t *testing.T) {
	b := NewBenchmark("noop", func() {})
	b.Running = true
	b.Abort()

	if b.Running {
		t.Fatal("Abort() should clear Running (invariant: aborted => !running)")
	}
	if !b.Aborted {
		t.Fatal("expected Aborted to be true")
	}
}
