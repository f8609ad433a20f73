package benchkit

import (
	"testing"
	"time"
)

func TestSuiteAddFiresAddEventPerBenchmark(t *testing.T) {
	s := NewSuite("micro")

	var added []string
	s.On(EventAdd, func(e *Event) bool {
		added = append(added, e.Target.Name)
		return true
	})

	a := NewBenchmark("a", func() {})
	b := NewBenchmark("b", func() {})
	s.Add(a, b)

	if len(s.Benchmarks) != 2 {
		t.Fatalf("suite has %d benchmarks, want 2", len(s.Benchmarks))
	}
	if len(added) != 2 || added[0] != "a" || added[1] != "b" {
		t.Fatalf("add events = %v, want [a b]", added)
	}
}

func TestSuiteFilterDoesNotMutateSuite(t *testing.T) {
	s := NewSuite("micro")
	a := NewBenchmark("keep-a", func() {})
	b := NewBenchmark("drop-b", func() {})
	s.Add(a, b)

	kept := s.Filter(func(bm *Benchmark) bool {
		return bm.Name == "keep-a"
	})

	if len(kept) != 1 || kept[0] != a {
		t.Fatalf("filtered = %v, want [a]", kept)
	}
	if len(s.Benchmarks) != 2 {
		t.Fatal("Filter must not mutate the suite's own benchmark list")
	}
}

func TestSuiteRunDrivesEveryBenchmarkToCompletion(t *testing.T) {
	s := NewSuite("micro")
	a := NewBenchmark("a", func() {},
		WithMinTime(time.Millisecond),
		WithMinSamples(1),
		WithMaxTime(20*time.Millisecond),
	)
	b := NewBenchmark("b", func() {},
		WithMinTime(time.Millisecond),
		WithMinSamples(1),
		WithMaxTime(20*time.Millisecond),
	)
	s.Add(a, b)

	results := s.Run()

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, bm := range results {
		if bm.Running {
			t.Fatalf("benchmark %s still running after suite run", bm.Name)
		}
		if bm.Stats.N() == 0 {
			t.Fatalf("benchmark %s collected no samples", bm.Name)
		}
	}
}
