package benchkit

import "github.com/zoobzio/clockz"

// Clock provides the time operations the cycle controller, deferred
// protocol, and invoker need to schedule suspensions (inter-cycle delay,
// inter-benchmark pause) without blocking on the real wall clock in tests.
type Clock = clockz.Clock

// Timer represents a single pending wakeup, as returned by Clock.AfterFunc
// or Clock.NewTimer.
type Timer = clockz.Timer

// Ticker delivers ticks at a fixed interval.
type Ticker = clockz.Ticker

// RealClock is the default Clock, backed by the standard time package.
var RealClock Clock = clockz.RealClock
