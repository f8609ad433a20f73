package main

import (
	"crypto/sha256"
	"sort"
	"time"

	"github.com/benchkit/benchkit"
)

// Scenario is a named factory for a benchmark, the CLI's equivalent of a
// fixture in the corpus's example programs: small, self-contained, and
// registered by name rather than discovered from a config file.
type Scenario struct {
	Name string
	New  func() *benchkit.Benchmark
}

var scenarios = map[string]Scenario{
	"noop": {
		Name: "noop",
		New: func() *benchkit.Benchmark {
			return benchkit.NewBenchmark("noop", func() {})
		},
	},
	"alloc-slice": {
		Name: "alloc-slice",
		New: func() *benchkit.Benchmark {
			return benchkit.NewBenchmark("alloc-slice", func() {
				buf := make([]byte, 256)
				_ = buf
			})
		},
	},
	"sha256-1kb": {
		Name: "sha256-1kb",
		New: func() *benchkit.Benchmark {
			payload := make([]byte, 1024)
			return benchkit.NewBenchmark("sha256-1kb", func() {
				sum := sha256.Sum256(payload)
				_ = sum
			})
		},
	},
	"deferred-sleep": {
		Name: "deferred-sleep",
		New: func() *benchkit.Benchmark {
			return benchkit.NewDeferredBenchmark("deferred-sleep", func(d *benchkit.Deferred) {
				d.Resolve()
			},
				benchkit.WithDelay(time.Microsecond),
			)
		},
	},
}

// scenarioNames returns every registered scenario name, sorted for stable
// CLI output.
func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupScenario resolves a name to its factory, reporting ok=false for an
// unregistered name rather than panicking.
func lookupScenario(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}
