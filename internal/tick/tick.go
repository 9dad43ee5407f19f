package tick

import (
	"sync"
	"time"
)

const (
	// Period is the wraparound period of the millisecond counter.
	Period uint32 = 1 << 29
	// Max is the largest counter value.
	Max = Period - 1
	// halfPeriod splits differences into past and future.
	halfPeriod = Period / 2
	// MaxDuration is the longest duration a timer accepts.
	MaxDuration = halfPeriod - 1
)

// Clock supplies the wrapping millisecond counter.
type Clock interface {
	// Millis returns the current counter value in [0, Max].
	Millis() uint32
	// Sleep yields for roughly d. Bounded busy-waits use it between polls.
	Sleep(d time.Duration)
}

// Diff returns the signed distance from start to now, wrap-safe.
func Diff(now, start uint32) int32 {
	d := (now - start) & Max

	return int32((d+halfPeriod)&Max) - int32(halfPeriod)
}

// Timer fires once or periodically after a duration in milliseconds.
type Timer struct {
	// clock is the time source.
	clock Clock
	// start is the counter value the timer was armed at.
	start uint32
	// duration is the firing delay in milliseconds.
	duration uint32
	// repeat re-arms the timer after each firing.
	repeat bool
	// on is true while the timer is armed.
	on bool
	// due forces the next Poll to fire.
	due bool
}

// NewTimer returns a disarmed timer.
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock}
}

// Arm starts the timer. A zero duration disarms it; durations above
// MaxDuration are clamped. It reports whether the timer is armed.
func (t *Timer) Arm(durationMillis uint32, repeat bool) bool {
	if durationMillis > MaxDuration {
		durationMillis = MaxDuration
	}

	t.duration = durationMillis
	t.repeat = repeat
	t.on = durationMillis > 0
	t.due = false
	t.start = t.clock.Millis()

	return t.on
}

// ArmDuration is Arm for a time.Duration.
func (t *Timer) ArmDuration(d time.Duration, repeat bool) bool {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	if ms > int64(MaxDuration) {
		ms = int64(MaxDuration)
	}

	return t.Arm(uint32(ms), repeat)
}

// Fire makes the next Poll report a firing regardless of elapsed time.
// The timer must be armed.
func (t *Timer) Fire() {
	if t.on {
		t.due = true
	}
}

// Stop disarms the timer.
func (t *Timer) Stop() {
	t.on = false
	t.due = false
}

// Armed reports whether the timer is running.
func (t *Timer) Armed() bool {
	return t.on
}

// Poll reports whether the timer fired since the last call.
// Repeating timers re-arm from the firing instant, one-shot timers disarm.
func (t *Timer) Poll() bool {
	if !t.on {
		return false
	}

	now := t.clock.Millis()
	if !t.due && Diff(now, t.start) < int32(t.duration) {
		return false
	}

	t.due = false
	if t.repeat {
		t.start = now
	} else {
		t.on = false
	}

	return true
}

// SystemClock derives the counter from the monotonic clock.
type SystemClock struct {
	// origin is the instant the counter reads zero.
	origin time.Time
}

// NewSystemClock returns a clock starting at zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// Millis returns the elapsed milliseconds modulo Period.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.origin).Milliseconds()) & Max
}

// Sleep blocks the calling goroutine for d.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// ManualClock is a Clock advanced by hand. Sleep advances it, so bounded
// waits terminate deterministically. It is safe for concurrent use.
type ManualClock struct {
	// mu protects now.
	mu sync.Mutex
	// now is the current counter value.
	now uint32
}

// NewManualClock returns a clock reading start.
func NewManualClock(start uint32) *ManualClock {
	return &ManualClock{now: start & Max}
}

// Millis returns the current counter value.
func (c *ManualClock) Millis() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = (c.now + uint32(d.Milliseconds())) & Max
}

// Sleep advances the clock by d, or by one millisecond for shorter durations.
func (c *ManualClock) Sleep(d time.Duration) {
	if d < time.Millisecond {
		d = time.Millisecond
	}

	c.Advance(d)
}
