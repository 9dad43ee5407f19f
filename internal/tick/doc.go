// Package tick provides cooperative, wrap-safe millisecond timers.
//
// A Clock yields a millisecond counter that wraps every Period milliseconds.
// Timers compare against it with modular arithmetic, so they keep working
// across the wrap as long as no duration exceeds half the period.
package tick
