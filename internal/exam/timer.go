// Package exam holds the per-section test session state machines, the
// objective scoring rules, and the countdown timers that drive them. The
// sessions are headless; the UI layer feeds them ticks and user actions
// and renders whatever phase they report.
package exam

// Timer is a one-second-tick countdown. It is a pure function of how
// many ticks it has received, so tests can drive it without a clock.
type Timer struct {
	limit     int
	elapsed   int
	clampZero bool
	fired     bool
}

// NewPhaseTimer returns a timer that stops at zero. Phase timers fire
// their expiry exactly once and never show negative time.
func NewPhaseTimer(seconds int) *Timer {
	return &Timer{limit: seconds, clampZero: true}
}

// NewTotalTimer returns a timer that keeps counting past zero so the
// display can show overtime. Expiry still fires exactly once.
func NewTotalTimer(seconds int) *Timer {
	return &Timer{limit: seconds}
}

// Tick advances one second and reports whether the timer expired on
// this tick. Expiry is reported at most once per timer lifetime.
func (t *Timer) Tick() bool {
	t.elapsed++
	if t.limit-t.elapsed <= 0 && !t.fired {
		t.fired = true
		return true
	}
	return false
}

// Remaining returns the seconds left. Phase timers clamp at zero; total
// timers go negative once in overtime.
func (t *Timer) Remaining() int {
	r := t.limit - t.elapsed
	if t.clampZero && r < 0 {
		return 0
	}
	return r
}

// Expired reports whether the timer has already fired.
func (t *Timer) Expired() bool { return t.fired }

// Reset restarts the countdown with a new limit.
func (t *Timer) Reset(seconds int) {
	t.limit = seconds
	t.elapsed = 0
	t.fired = false
}
