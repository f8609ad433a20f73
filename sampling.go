package benchkit

import (
	"math"
	"time"
)

// SamplingController (C5) repeatedly measures a source benchmark by
// running clones of it one at a time, accumulating a sample distribution
// of per-operation periods until at least MinSamples samples exist and
// the summed clocking time exceeds MaxTime. It does not stop early on
// confidence (RME) alone. A clone is created only after the previous
// one has finished, so the queue never holds a pre-seeded clone.
//
// Grounded on the teacher's monitor.go (periodic statistics snapshots
// gathered from repeated measurements) and the clone/source event bridge
// described in spec.md §4.5 and §9 ("thin adapter... do not build a
// cyclic ownership graph").
type SamplingController struct {
	Source *Benchmark

	pending    []*Benchmark
	elapsed    float64
	initStamp  time.Time
	maxedOut   bool
	terminated bool
}

// NewSamplingController returns a controller that will drive clones of b.
func NewSamplingController(b *Benchmark) *SamplingController {
	return &SamplingController{Source: b}
}

// Run starts the sampling loop: it marks the source running, fires the
// source's own start event exactly once (spec.md §3 "start — once per
// benchmark run", §6 onStart — clones fire their own start internally,
// per wireClone, but that never reached the source until now), and
// enqueues the first clone. Completion is signalled through the source's
// complete event, matching Benchmark.Run's own convention.
func (s *SamplingController) Run() *Benchmark {
	s.initStamp = time.Now()
	s.Source.Running = true
	s.Source.Aborted = false
	s.Source.Error = nil
	s.Source.emitStart()
	s.enqueueClone()
	return s.Source
}

// MaxedOut reports whether the controller has stopped because the
// minimum sample size was reached and the time budget was exceeded.
func (s *SamplingController) MaxedOut() bool {
	return s.maxedOut
}

// enqueueClone creates a new clone of the source, wires its event bridge,
// and appends it to the pending queue. If it is the only pending clone,
// it starts running immediately — the queue only ever runs its head.
func (s *SamplingController) enqueueClone() {
	if s.terminated {
		return
	}
	clone := s.Source.Clone()
	s.wireClone(clone)
	s.pending = append(s.pending, clone)
	if len(s.pending) == 1 {
		clone.runCycle()
	}
}

// wireClone installs the clone-to-source event bridge of spec.md §4.5:
// start resets the clone's count, error/abort propagate to the source,
// and cycle events are re-emitted on the source with target rewritten.
func (s *SamplingController) wireClone(clone *Benchmark) {
	guard := func(e *Event) bool {
		if s.Source.Aborted {
			clone.offAll()
			clone.Abort()
			return false
		}
		return true
	}

	clone.On(EventStart, func(e *Event) bool {
		if !guard(e) {
			return false
		}
		clone.Count = s.Source.Config.InitCount
		return true
	})

	clone.On(EventError, func(e *Event) bool {
		if !guard(e) {
			return false
		}
		if berr, ok := e.Result.(*BenchmarkError); ok {
			s.Source.Error = berr
		}
		s.Source.Emit(&Event{
			TimeStamp:     e.TimeStamp,
			Target:        s.Source,
			CurrentTarget: s.Source,
			Type:          EventError,
			Result:        e.Result,
		})
		return true
	})

	clone.On(EventAbort, func(e *Event) bool {
		if !guard(e) {
			return false
		}
		s.Source.Abort()
		s.Source.Emit(&Event{
			TimeStamp:     e.TimeStamp,
			Target:        s.Source,
			CurrentTarget: s.Source,
			Type:          EventCycle,
			Message:       "synthetic: clone aborted",
		})
		// A clone aborts either because the source was already aborted
		// (handled above by guard, which returns before reaching here) or
		// because its own cycle controller failed terminally (EmptyBody,
		// PreTestThrew, CompilationRefused, BodyThrewInRun,
		// UnclockableRate — all of which call Abort after recording the
		// error). Either way the sampling run is over.
		s.discardAndTerminate()
		return true
	})

	clone.On(EventCycle, func(e *Event) bool {
		if !guard(e) {
			return false
		}
		s.Source.Emit(&Event{
			TimeStamp:     e.TimeStamp,
			Target:        s.Source,
			CurrentTarget: s.Source,
			Type:          EventCycle,
			Result:        e.Result,
		})
		s.onCloneCycle(clone)
		return true
	})
}

// onCloneCycle is called for every cycle event a clone fires. Only a
// clone that has reached its definitive measurement (state Done)
// contributes a sample; intermediate growth-loop cycles are forwarded to
// the source (above) but don't themselves move the queue or the stats —
// one clone run is one sample, matching the original engine's actual
// per-clone statistics contribution rather than the letter of spec.md
// §4.5's "after each cycle" (an Open Question resolved this way; see
// DESIGN.md).
func (s *SamplingController) onCloneCycle(clone *Benchmark) {
	if clone.state != stateDone || s.terminated {
		return
	}

	if clone.Aborted || math.IsInf(clone.Hz, 1) {
		s.discardAndTerminate()
		return
	}

	s.Source.Stats.Push(clone.Times.Period)
	s.Source.Hz = 1 / s.Source.Stats.Mean
	s.Source.Times.Period = s.Source.Stats.Mean
	s.Source.Times.Cycle = s.Source.Stats.Mean * float64(clone.Count)

	// Clocking time only, never delay time (spec.md §4.5); the canonical
	// unit is seconds throughout (spec.md §9 Open Questions).
	s.elapsed += clone.Times.Cycle

	// maxedOut is the only stop condition checked here: spec.md §4.5 also
	// describes stopping once "the sample size is sufficient and desired
	// confidence is met," but the original engine never implements an
	// independent RME-threshold early exit — it runs until minSamples
	// and maxTime are both satisfied, same as below (DESIGN.md Open
	// Question decision 5).
	n := s.Source.Stats.N()
	s.maxedOut = n >= s.Source.Config.MinSamples && s.elapsed > s.Source.Config.MaxTime.Seconds()

	if s.maxedOut {
		s.terminate()
		return
	}

	s.advanceQueue(clone)
}

// advanceQueue removes the finished clone from the head of the pending
// queue, starts the next pending clone if one is waiting, and enqueues
// one new clone if fewer than two are pending.
func (s *SamplingController) advanceQueue(clone *Benchmark) {
	if len(s.pending) > 0 && s.pending[0] == clone {
		s.pending = s.pending[1:]
	}
	if len(s.pending) > 0 {
		s.pending[0].runCycle()
	}
	if len(s.pending) < 2 {
		s.enqueueClone()
	}
}

// discardAndTerminate drops every sample collected so far and terminates
// the run with failure (an aborted or unclockable clone invalidates the
// whole distribution, spec.md §4.5).
func (s *SamplingController) discardAndTerminate() {
	s.Source.Stats = Stats{}
	s.terminate()
}

// terminate restores initCount, marks the source not running, drains the
// queue, records times.elapsed, and fires complete exactly once.
func (s *SamplingController) terminate() {
	if s.terminated {
		return
	}
	s.terminated = true

	s.Source.Times.Elapsed = time.Since(s.initStamp).Seconds()
	s.Source.Count = s.Source.Config.InitCount
	s.Source.Running = false
	s.pending = nil

	s.Source.Emit(&Event{
		TimeStamp:     time.Now(),
		Target:        s.Source,
		CurrentTarget: s.Source,
		Type:          EventComplete,
	})
}
