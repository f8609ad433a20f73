// Package benchkit is the measurement and statistics core of a
// micro-benchmarking engine: given a user-supplied test routine, it
// determines how many operations per second the routine performs and
// reports the statistical confidence of that estimate.
//
// The engine is three tightly coupled subsystems. The clock loop
// (clockloop.go) chooses a batch shape, runs the body a given number of
// times back-to-back, and measures elapsed time via a selected timer
// (package timer). The cycle controller (cycle.go) grows the iteration
// count until a single batch takes at least the configured minimum
// time, yielding one period measurement. The sampling controller
// (sampling.go) repeats that process across cloned benchmarks to build
// a sample distribution, computing running statistics (stats.go) and
// stopping once the minimum sample count is reached and the time budget
// is exceeded. A
// benchmark whose body is asynchronous instead resolves through the
// deferred protocol (deferred.go), which interleaves with the cycle
// controller rather than returning synchronously.
//
// Construct a benchmark with NewBenchmark or NewDeferredBenchmark and
// drive it to a full measurement with Run (or construct a
// SamplingController directly for finer control), and collect several
// benchmarks into a Suite to run them one after another.
package benchkit
