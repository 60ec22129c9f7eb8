package timeutil

import "time"

// FrameTimer measures the delta time between consecutive frames.
type FrameTimer struct {
	clock    Clock
	last     time.Time
	started  bool
	maxDelta time.Duration
}

// NewFrameTimer returns a timer reading clock. A positive maxDelta caps the
// delta of any single frame so a stall does not arrive as one huge step.
func NewFrameTimer(clock Clock, maxDelta time.Duration) *FrameTimer {
	if clock == nil {
		clock = RealClock{}
	}
	return &FrameTimer{clock: clock, maxDelta: maxDelta}
}

// Frame returns the time since the previous call. The first call returns 0.
func (f *FrameTimer) Frame() time.Duration {
	now := f.clock.Now()
	if !f.started {
		f.started = true
		f.last = now
		return 0
	}
	dt := now.Sub(f.last)
	f.last = now
	if dt < 0 {
		return 0
	}
	if f.maxDelta > 0 && dt > f.maxDelta {
		return f.maxDelta
	}
	return dt
}

// Reset makes the next Frame call return 0.
func (f *FrameTimer) Reset() { f.started = false }
