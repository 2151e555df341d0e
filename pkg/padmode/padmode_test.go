package padmode

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/joystick"
	"github.com/servorig/go-controller/pkg/rig"
)

type nullSetter struct{}

func (nullSetter) SetServoAngle(n, degrees int) {}

type recordingSetter struct {
	writes []struct{ n, degrees int }
}

func (r *recordingSetter) SetServoAngle(n, degrees int) {
	r.writes = append(r.writes, struct{ n, degrees int }{n, degrees})
}

func (r *recordingSetter) anglesFor(n int) []int {
	var out []int
	for _, w := range r.writes {
		if w.n == n {
			out = append(out, w.degrees)
		}
	}
	return out
}

func centredRig(speed float64) *rig.Rig {
	var channels [rig.NumChannels]rig.ChannelConfig
	for i := range channels {
		channels[i].Centre = 90
	}
	return rig.New(nullSetter{}, channels, speed)
}

func TestStatusLine(t *testing.T) {
	s := rig.Snapshot{
		Positions: [4]int{90, 120, 60, 90},
		Centres:   [4]int{90, 90, 90, 90},
		Hold:      [4]bool{false, false, false, true},
		Speed:     1.0,
	}
	line := StatusLine(s)
	for _, want := range []string{"0: 90·", "1:120→", "2: 60←", "3: 90H", "spd 1.0"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "LOCKED") {
		t.Errorf("unlocked rig rendered as locked: %q", line)
	}

	s.Locked = true
	if line := StatusLine(s); !strings.Contains(line, "LOCKED") {
		t.Errorf("locked rig not marked: %q", line)
	}
}

func TestFaceButtonsToggleHolds(t *testing.T) {
	r := centredRig(1.0)
	m := New(hardware.NewDummy(), r, nil)

	// South holds channel 1, East 0, North 2, West 3.
	for _, tc := range []struct {
		button  uint16
		channel int
	}{
		{joystick.ButtonSouth, 1},
		{joystick.ButtonEast, 0},
		{joystick.ButtonNorth, 2},
		{joystick.ButtonWest, 3},
	} {
		m.toggleHold(tc.channel)
		if !r.Snapshot().Hold[tc.channel] {
			t.Errorf("button 0x%x did not hold channel %d", tc.button, tc.channel)
		}
	}
}

func TestSpeedButtons(t *testing.T) {
	r := centredRig(1.0)
	m := New(hardware.NewDummy(), r, nil)

	m.adjustSpeed(rig.SpeedStep)
	if got := r.Snapshot().Speed; got < 1.09 || got > 1.11 {
		t.Errorf("speed after bump = %v, want 1.1", got)
	}
	for i := 0; i < 30; i++ {
		m.adjustSpeed(-rig.SpeedStep)
	}
	if got := r.Snapshot().Speed; got != rig.MinSpeed {
		t.Errorf("speed floor = %v, want %v", got, rig.MinSpeed)
	}
}

func TestEventLoopMovesServos(t *testing.T) {
	r := centredRig(2.0)
	m := New(hardware.NewDummy(), r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	m.OnJoystickEvent(&joystick.Event{
		Type:  joystick.EventTypeAxis,
		Code:  joystick.AxisLStickX,
		Value: joystick.AxisMax,
	})

	deadline := time.After(time.Second)
	for {
		if r.Snapshot().Positions[ChannelLStickX] == rig.MaxAngle {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("channel 0 never reached full deflection: %v", r.Snapshot().Positions)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestIdlePadLeavesExternalCommands(t *testing.T) {
	var channels [rig.NumChannels]rig.ChannelConfig
	for i := range channels {
		channels[i].Centre = 70
	}
	r := rig.New(nullSetter{}, channels, 1.0)
	m := New(hardware.NewDummy(), r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	// Let the mode idle for a few step intervals first.
	time.Sleep(100 * time.Millisecond)

	// A dashboard command while the sticks are untouched must stick.
	r.MoveServoToAngle(0, 45)
	if got := r.Snapshot().Positions[0]; got != 45 {
		t.Fatalf("direct command did not land: %d", got)
	}
	time.Sleep(300 * time.Millisecond)
	if got := r.Snapshot().Positions[0]; got != 45 {
		t.Fatalf("idle pad mode dragged channel 0 from 45 to %d", got)
	}
	// The other channels sit at their configured centres, not 90.
	if got := r.Snapshot().Positions[1]; got != 70 {
		t.Fatalf("idle pad mode moved channel 1 off its centre: %d", got)
	}
}

func TestCalibrationSweepSequence(t *testing.T) {
	rec := &recordingSetter{}
	var channels [rig.NumChannels]rig.ChannelConfig
	for i := range channels {
		channels[i].Centre = 90
	}
	r := rig.New(rec, channels, 1.0)
	m := New(hardware.NewDummy(), r, nil)

	m.calibrationSweep(context.Background())

	for n := 0; n < rig.NumChannels; n++ {
		got := rec.anglesFor(n)
		want := []int{0, 180, 90}
		if len(got) != len(want) {
			t.Fatalf("channel %d writes = %v, want %v", n, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("channel %d writes = %v, want %v", n, got, want)
			}
		}
	}
}

func TestTriggersMoveAll(t *testing.T) {
	r := centredRig(1.0)
	m := New(hardware.NewDummy(), r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	r.SetHold(2, true)
	m.OnJoystickEvent(&joystick.Event{
		Type:  joystick.EventTypeAxis,
		Code:  joystick.AxisRTrigger,
		Value: 1023,
	})

	deadline := time.After(time.Second)
	for r.Snapshot().Positions[0] != rig.MaxAngle {
		select {
		case <-deadline:
			t.Fatalf("right trigger did not sweep to 180: %v", r.Snapshot().Positions)
		case <-time.After(10 * time.Millisecond):
		}
	}
	snap := r.Snapshot()
	if snap.Positions[1] != rig.MaxAngle || snap.Positions[3] != rig.MaxAngle {
		t.Fatalf("trigger missed channels: %v", snap.Positions)
	}
	if snap.Positions[2] != rig.CentreAngle {
		t.Fatalf("held channel moved by trigger: %v", snap.Positions)
	}

	m.OnJoystickEvent(&joystick.Event{
		Type:  joystick.EventTypeAxis,
		Code:  joystick.AxisLTrigger,
		Value: 1023,
	})
	deadline = time.After(time.Second)
	for r.Snapshot().Positions[0] != rig.MinAngle {
		select {
		case <-deadline:
			t.Fatalf("left trigger did not sweep to 0: %v", r.Snapshot().Positions)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDPadDownTogglesLock(t *testing.T) {
	r := centredRig(1.0)
	m := New(hardware.NewDummy(), r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	m.OnJoystickEvent(&joystick.Event{
		Type:  joystick.EventTypeButton,
		Code:  joystick.ButtonDPadDown,
		Value: 1,
	})

	deadline := time.After(time.Second)
	for !r.Snapshot().Locked {
		select {
		case <-deadline:
			t.Fatal("d-pad down did not lock the rig")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
