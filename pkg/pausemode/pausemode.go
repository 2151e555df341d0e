package pausemode

import (
	"context"
	"time"

	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/rig"
)

// PauseMode centres the rig, then stops driving the servos entirely so
// it can be repositioned by hand.
type PauseMode struct {
	hw  hardware.Interface
	rig *rig.Rig
}

func New(hw hardware.Interface, r *rig.Rig) *PauseMode {
	return &PauseMode{hw: hw, rig: r}
}

func (t *PauseMode) Name() string {
	return "PAUSED"
}

func (t *PauseMode) StartupSound() string {
	return "pause.wav"
}

func (t *PauseMode) Start(ctx context.Context) {
	t.rig.Centre()
	// Give the servos time to get there before cutting the pulses.
	time.Sleep(500 * time.Millisecond)
	t.hw.AllOff()
}

func (t *PauseMode) Stop() {
}
