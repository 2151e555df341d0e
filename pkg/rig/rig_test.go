package rig

import (
	"math"
	"testing"
)

type recordingSetter struct {
	angles map[int]int
	calls  int
}

func newRecordingSetter() *recordingSetter {
	return &recordingSetter{angles: map[int]int{}}
}

func (s *recordingSetter) SetServoAngle(n, degrees int) {
	s.angles[n] = degrees
	s.calls++
}

func defaultChannels() [NumChannels]ChannelConfig {
	var chans [NumChannels]ChannelConfig
	for i := range chans {
		chans[i].Centre = CentreAngle
	}
	return chans
}

func TestJoystickToAngle(t *testing.T) {
	if a := JoystickToAngle(math.MinInt16 + 1); a != 0 {
		t.Fatalf("Full-left should map to 0, not %v", a)
	}
	if a := JoystickToAngle(0); a != 90 {
		t.Fatalf("Centre should map to 90, not %v", a)
	}
	if a := JoystickToAngle(math.MaxInt16); a != 180 {
		t.Fatalf("Full-right should map to 180, not %v", a)
	}
	// Out-of-range values clamp rather than wrap.
	if a := JoystickToAngle(math.MinInt16); a != 0 {
		t.Fatalf("-32768 should clamp to 0, not %v", a)
	}
}

func TestTriggerToAngle(t *testing.T) {
	if a := TriggerToAngle(0, 1023, true); a != 0 {
		t.Fatalf("Unpressed rising trigger should map to 0, not %v", a)
	}
	if a := TriggerToAngle(1023, 1023, true); a != 180 {
		t.Fatalf("Pressed rising trigger should map to 180, not %v", a)
	}
	if a := TriggerToAngle(0, 1023, false); a != 180 {
		t.Fatalf("Unpressed falling trigger should map to 180, not %v", a)
	}
	if a := TriggerToAngle(1023, 1023, false); a != 0 {
		t.Fatalf("Pressed falling trigger should map to 0, not %v", a)
	}
}

func TestMoveServoInterpolation(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), 0.5)

	// Target is 180 from a current position of 90: diff 90, speed 0.5,
	// so the first step should land at 90+45.
	r.MoveServo(0, 32767)
	if setter.angles[0] != 135 {
		t.Fatalf("Expected first step to 135, got %v", setter.angles[0])
	}
	// Repeating closes half the remaining distance again.
	r.MoveServo(0, 32767)
	if setter.angles[0] != 157 {
		t.Fatalf("Expected second step to 157, got %v", setter.angles[0])
	}
}

func TestMoveServoMinimumStep(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), MinSpeed)

	// diff 1 at speed 0.1 rounds to 0 but must still make progress.
	r.MoveServoToAngle(0, 91)
	if setter.angles[0] != 91 {
		t.Fatalf("Expected a minimum step of one degree, got %v", setter.angles[0])
	}
	// And never overshoot.
	r.MoveServoToAngle(0, 91)
	if setter.calls != 1 {
		t.Fatalf("Reaching the target should stop writes, got %v calls", setter.calls)
	}
}

func TestHoldGatesMovement(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), MaxSpeed)

	if held := r.ToggleHold(2); !held {
		t.Fatal("ToggleHold should report the channel held")
	}
	r.MoveServo(2, 32767)
	if setter.calls != 0 {
		t.Fatalf("Held channel must not move, got %v writes", setter.calls)
	}
	if held := r.ToggleHold(2); held {
		t.Fatal("ToggleHold should report the channel released")
	}
	r.MoveServo(2, 32767)
	if setter.angles[2] != 180 {
		t.Fatalf("Released channel should move, got %v", setter.angles[2])
	}
}

func TestLockGatesEverything(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), MaxSpeed)

	r.SetLock(true)
	r.MoveServo(0, 32767)
	r.MoveServoToAngle(1, 0)
	r.MoveAll(180)
	r.Centre()
	r.ApplyRow([NumChannels]int{1, 2, 3, 4})
	if setter.calls != 0 {
		t.Fatalf("Locked rig must not move any servo, got %v writes", setter.calls)
	}
}

func TestMoveAllSkipsHeldChannels(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), MaxSpeed)

	r.SetHold(1, true)
	r.MoveAll(180)
	if setter.angles[0] != 180 || setter.angles[2] != 180 || setter.angles[3] != 180 {
		t.Fatalf("Unheld channels should reach 180: %v", setter.angles)
	}
	if _, moved := setter.angles[1]; moved {
		t.Fatal("Held channel must be skipped by MoveAll")
	}
}

func TestInvertedChannel(t *testing.T) {
	setter := newRecordingSetter()
	chans := defaultChannels()
	chans[3].Invert = true
	r := New(setter, chans, MaxSpeed)

	r.MoveServo(3, 32767)
	if setter.angles[3] != 0 {
		t.Fatalf("Inverted channel full-right should reach 0, not %v", setter.angles[3])
	}
}

func TestCentreUsesConfiguredOffsets(t *testing.T) {
	setter := newRecordingSetter()
	chans := defaultChannels()
	chans[0].Centre = 44
	chans[1].Centre = 76
	r := New(setter, chans, MaxSpeed)

	r.MoveAll(180)
	r.Centre()
	if setter.angles[0] != 44 || setter.angles[1] != 76 {
		t.Fatalf("Centre should honour per-channel offsets: %v", setter.angles)
	}
}

func TestSpeedClamping(t *testing.T) {
	setter := newRecordingSetter()
	r := New(setter, defaultChannels(), 1.0)

	if s := r.SetSpeed(5); s != MaxSpeed {
		t.Fatalf("Speed should clamp to %v, not %v", MaxSpeed, s)
	}
	if s := r.SetSpeed(0); s != MinSpeed {
		t.Fatalf("Speed should clamp to %v, not %v", MinSpeed, s)
	}
	if s := r.AdjustSpeed(-1); s != MinSpeed {
		t.Fatalf("AdjustSpeed should clamp to %v, not %v", MinSpeed, s)
	}
}
