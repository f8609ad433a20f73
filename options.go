package benchkit

import "time"

// Func is a synchronous test body: invoked count times back-to-back
// inside a single clocked batch.
type Func func()

// DeferredFunc is an asynchronous test body. It receives a Deferred
// controller and must call its Resolve method exactly once per
// invocation to signal completion; see the deferred protocol (C4).
type DeferredFunc func(*Deferred)

// defaultDelay is the inter-cycle pause used when async cycles are
// scheduled through the Clock, matching the original engine's default.
const defaultDelay = 5 * time.Millisecond

// Config holds a benchmark's immutable-after-construction settings.
// Fields mirror the option enumeration in spec.md §6.
type Config struct { //nolint:govet // logical field grouping preferred over memory optimization
	Setup    func()
	Teardown func()
	Clock    Clock

	Delay      time.Duration
	MinTime    time.Duration
	MaxTime    time.Duration
	InitCount  int
	MinSamples int

	Async bool
	Defer bool
}

// Option configures a Benchmark at construction time, following the
// fluent functional-option shape the teacher uses for its processor
// constructors (NewThrottle, NewCircuitBreaker, NewRetry).
type Option func(*Config)

// WithDelay sets the inter-cycle pause (seconds, as a time.Duration) used
// between asynchronous cycles. Delays never count toward MaxTime.
func WithDelay(d time.Duration) Option {
	return func(c *Config) { c.Delay = d }
}

// WithInitCount sets the starting iteration count per cycle.
func WithInitCount(n int) Option {
	return func(c *Config) { c.InitCount = n }
}

// WithMinTime sets the target per-cycle duration. If never set, it
// defaults to a value derived from the selected timer's resolution (see
// defaultMinTime).
func WithMinTime(d time.Duration) Option {
	return func(c *Config) { c.MinTime = d }
}

// WithMaxTime sets the sampling controller's total clocking-time budget.
func WithMaxTime(d time.Duration) Option {
	return func(c *Config) { c.MaxTime = d }
}

// WithMinSamples sets the lower bound on sample count before the
// sampling controller is allowed to stop on a time budget.
func WithMinSamples(n int) Option {
	return func(c *Config) { c.MinSamples = n }
}

// WithAsync marks the benchmark's cycles as running without blocking the
// host between cycles (scheduled through Clock instead of looping
// immediately).
func WithAsync(async bool) Option {
	return func(c *Config) { c.Async = async }
}

// WithSetup registers a per-cycle setup hook run before the clocked batch.
func WithSetup(fn func()) Option {
	return func(c *Config) { c.Setup = fn }
}

// WithTeardown registers a per-cycle teardown hook run after the clocked
// batch (or after a deferred batch's final resolve).
func WithTeardown(fn func()) Option {
	return func(c *Config) { c.Teardown = fn }
}

// WithClock overrides the Clock used for scheduling; defaults to
// RealClock. Tests inject a FakeClock to make delay-driven scheduling
// deterministic.
func WithClock(clock Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

// newConfig applies defaults and then opts, in order.
func newConfig(opts []Option) Config {
	c := Config{
		Delay:      defaultDelay,
		InitCount:  1,
		MaxTime:    5 * time.Second,
		MinSamples: 5,
		Clock:      RealClock,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
