package benchkit

import "time"

// Suite is a named, ordered collection of benchmarks driven together
// through an Invoker in queue mode — the thin external collaborator
// named in spec.md §1 and §6, with no behavior of its own beyond list
// management and delegating to Invoker for the run lifecycle.
type Suite struct {
	*EventTarget

	Name       string
	Benchmarks []*Benchmark
}

// NewSuite returns an empty, named Suite.
func NewSuite(name string) *Suite {
	return &Suite{EventTarget: newEventTarget(), Name: name}
}

// Add appends one or more benchmarks to the suite, firing a suite-level
// add event for each (spec.md §6).
func (s *Suite) Add(benchmarks ...*Benchmark) *Suite {
	for _, b := range benchmarks {
		s.Benchmarks = append(s.Benchmarks, b)
		s.Emit(&Event{
			TimeStamp:     time.Now(),
			Target:        b,
			CurrentTarget: b,
			Type:          EventAdd,
		})
	}
	return s
}

// Filter returns the benchmarks in the suite for which keep returns true,
// without mutating the suite's own list.
func (s *Suite) Filter(keep func(*Benchmark) bool) []*Benchmark {
	var out []*Benchmark
	for _, b := range s.Benchmarks {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// Run drives every benchmark in the suite, in order, through a full
// sampling run via an Invoker in queue mode, and returns the finished
// benchmarks.
func (s *Suite) Run() []*Benchmark {
	inv := NewInvoker(ModeQueue, s.Benchmarks)
	return inv.Run()
}
