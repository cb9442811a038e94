package gekko

import "time"

// Time is the per-frame clock resource a PhysicsModule reads to drive
// Manager.Tick. Dt is capped at 0.1s (a 10fps-equivalent frame) so a debugger
// breakpoint or a loading hitch can't feed the solver a huge, destabilizing
// timestep.
type Time struct {
	last       time.Time
	Dt         float32
	FrameCount uint64
}

// NewTime constructs a Time resource anchored to the current instant.
func NewTime() *Time {
	return &Time{last: time.Now()}
}

// Tick advances the clock to now, updates Dt (clamped) and FrameCount, and
// returns the clamped Dt.
func (t *Time) Tick() float32 {
	now := time.Now()
	dt := float32(now.Sub(t.last).Seconds())
	if dt > 0.1 {
		dt = 0.1
	}
	t.last = now
	t.Dt = dt
	t.FrameCount++
	return dt
}
