package rig

import (
	"fmt"
	"sync"
)

const (
	NumChannels = 4

	MinAngle    = 0
	MaxAngle    = 180
	CentreAngle = 90

	MinSpeed  = 0.1
	MaxSpeed  = 2.0
	SpeedStep = 0.1
)

// ServoSetter receives the angles the rig decides on.  The hardware
// layer implements it; tests substitute a recorder.
type ServoSetter interface {
	SetServoAngle(n int, degrees int)
}

// ChannelConfig carries the per-channel tuning that varies between
// physical rigs: the mechanical centre and whether the axis is
// reversed relative to the stick.
type ChannelConfig struct {
	Centre int
	Invert bool
}

// Snapshot is a consistent copy of the rig state for the status line,
// the screen and the web dashboard.
type Snapshot struct {
	Positions [NumChannels]int
	Centres   [NumChannels]int
	Hold      [NumChannels]bool
	Locked    bool
	Speed     float64
}

// Rig holds the positions of up to four servo channels and applies the
// hold/lock gating and speed-scaled interpolation between the raw
// input values and the angles sent to the hardware.  All methods are
// safe for concurrent use; the pad mode, CSV playback and the web
// dashboard all poke at the same instance.
type Rig struct {
	mu     sync.Mutex
	setter ServoSetter

	channels  [NumChannels]ChannelConfig
	positions [NumChannels]int
	hold      [NumChannels]bool
	locked    bool
	speed     float64
}

func New(setter ServoSetter, channels [NumChannels]ChannelConfig, speed float64) *Rig {
	r := &Rig{
		setter:   setter,
		channels: channels,
		speed:    clampSpeed(speed),
	}
	for i := range r.channels {
		r.channels[i].Centre = clampAngle(r.channels[i].Centre)
		r.positions[i] = r.channels[i].Centre
	}
	return r
}

// MoveServo commands one channel from a raw stick value.  It does
// nothing when the rig is locked or the channel is held.
func (r *Rig) MoveServo(n int, value int32) {
	if n < 0 || n >= NumChannels {
		fmt.Println("Warning: servo channel out of range:", n)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked || r.hold[n] {
		return
	}
	if r.channels[n].Invert {
		value = -value
	}
	r.stepToward(n, JoystickToAngle(value))
}

// MoveServoToAngle commands one channel to an absolute angle (the
// dashboard path).  Same gating and interpolation as MoveServo.
func (r *Rig) MoveServoToAngle(n, angle int) {
	if n < 0 || n >= NumChannels {
		fmt.Println("Warning: servo channel out of range:", n)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked || r.hold[n] {
		return
	}
	r.stepToward(n, clampAngle(angle))
}

// stepToward interpolates the channel toward the target.  The step is
// scaled by the speed setting but is always at least one degree and
// never overshoots.  Caller holds the mutex.
func (r *Rig) stepToward(n, target int) {
	current := r.positions[n]
	diff := target - current
	if diff == 0 {
		return
	}
	mag := diff
	if mag < 0 {
		mag = -mag
	}
	step := int(float64(mag) * r.speed)
	if step < 1 {
		step = 1
	}
	if step > mag {
		step = mag
	}
	if diff > 0 {
		current += step
	} else {
		current -= step
	}
	r.positions[n] = current
	r.setter.SetServoAngle(n, current)
}

// MoveAll slews every channel straight to the given angle.  Blocked
// entirely by the lock; held channels are skipped.
func (r *Rig) MoveAll(angle int) {
	angle = clampAngle(angle)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return
	}
	for n := range r.positions {
		if r.hold[n] {
			continue
		}
		r.positions[n] = angle
		r.setter.SetServoAngle(n, angle)
	}
}

// Centre returns every unheld channel to its configured centre.
func (r *Rig) Centre() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return
	}
	for n := range r.positions {
		if r.hold[n] {
			continue
		}
		r.positions[n] = r.channels[n].Centre
		r.setter.SetServoAngle(n, r.channels[n].Centre)
	}
}

// ApplyRow drives all four channels from one playback row, with the
// usual gating but no interpolation.
func (r *Rig) ApplyRow(row [NumChannels]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return
	}
	for n, angle := range row {
		if r.hold[n] {
			continue
		}
		angle = clampAngle(angle)
		r.positions[n] = angle
		r.setter.SetServoAngle(n, angle)
	}
}

func (r *Rig) ToggleHold(n int) bool {
	if n < 0 || n >= NumChannels {
		fmt.Println("Warning: servo channel out of range:", n)
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold[n] = !r.hold[n]
	return r.hold[n]
}

func (r *Rig) SetHold(n int, held bool) {
	if n < 0 || n >= NumChannels {
		fmt.Println("Warning: servo channel out of range:", n)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold[n] = held
}

func (r *Rig) ToggleLock() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = !r.locked
	return r.locked
}

func (r *Rig) SetLock(locked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = locked
}

// AdjustSpeed nudges the speed factor, clamping to [MinSpeed, MaxSpeed],
// and returns the new value.
func (r *Rig) AdjustSpeed(delta float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = clampSpeed(r.speed + delta)
	return r.speed
}

func (r *Rig) SetSpeed(speed float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = clampSpeed(speed)
	return r.speed
}

func (r *Rig) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		Positions: r.positions,
		Hold:      r.hold,
		Locked:    r.locked,
		Speed:     r.speed,
	}
	for i := range r.channels {
		s.Centres[i] = r.channels[i].Centre
	}
	return s
}

func clampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}
