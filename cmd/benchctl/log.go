package main

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"

	"github.com/benchkit/benchkit"
)

// newLogger builds a structured logger over a text slog.Handler, following
// the logiface-slog adapter's configuration pattern: a handler picked once
// at startup, a level threshold applied through logiface.WithLevel.
func newLogger(level string) *logiface.Logger[*islog.Event] {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(level),
	})
	return islog.L.New(
		islog.L.WithSlogHandler(handler),
		logiface.WithLevel[*islog.Event](logifaceLevel(level)),
	)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logifaceLevel(level string) logiface.Level {
	switch level {
	case "debug":
		return logiface.LevelDebug
	case "warn":
		return logiface.LevelWarning
	case "error":
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

// attachProgress installs logging listeners on b's start/cycle/error/complete
// events, tagging every record with runID so a single invocation's log lines
// can be correlated even when several benchmarks run in the same suite.
// This is the CLI's only use of the event bus: the library itself never
// logs (SPEC_FULL.md §2 "logging lives at the service/CLI edge").
func attachProgress(log *logiface.Logger[*islog.Event], runID string, b *benchkit.Benchmark) {
	b.On(benchkit.EventStart, func(e *benchkit.Event) bool {
		log.Info().
			Str("run_id", runID).
			Str("benchmark", b.Name).
			Log("benchmark started")
		return true
	})

	b.On(benchkit.EventCycle, func(e *benchkit.Event) bool {
		log.Debug().
			Str("run_id", runID).
			Str("benchmark", b.Name).
			Int("count", b.Count).
			Int("cycles", b.Cycles).
			Float64("hz", b.Hz).
			Log("cycle completed")
		return true
	})

	b.On(benchkit.EventError, func(e *benchkit.Event) bool {
		log.Err().
			Str("run_id", runID).
			Str("benchmark", b.Name).
			Err(b.Error).
			Log("benchmark failed")
		return true
	})

	b.On(benchkit.EventComplete, func(e *benchkit.Event) bool {
		log.Info().
			Str("run_id", runID).
			Str("benchmark", b.Name).
			Int("samples", b.Stats.N()).
			Float64("hz", b.Hz).
			Float64("rme", b.Stats.RME).
			Log("benchmark complete")
		return true
	})
}
