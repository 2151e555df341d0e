package testmode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/rig"
)

// TestMode exercises the whole range of every channel in turn so a
// freshly-wired rig can be checked without touching the sticks.
type TestMode struct {
	hw     hardware.Interface
	rig    *rig.Rig
	cancel context.CancelFunc
	stopWG sync.WaitGroup
}

func New(hw hardware.Interface, r *rig.Rig) *TestMode {
	return &TestMode{
		hw:  hw,
		rig: r,
	}
}

func (t *TestMode) Name() string {
	return "TEST MODE"
}

func (t *TestMode) StartupSound() string {
	return "testmode.wav"
}

func (t *TestMode) Start(ctx context.Context) {
	t.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, t.cancel = context.WithCancel(ctx)
	go t.loop(loopCtx)
}

func (t *TestMode) Stop() {
	t.cancel()
	t.stopWG.Wait()
}

func (t *TestMode) loop(ctx context.Context) {
	defer t.stopWG.Done()
	defer t.rig.Centre()

	pause := func(d time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	for ctx.Err() == nil {
		for n := 0; n < rig.NumChannels; n++ {
			fmt.Println("Sweeping channel", n)
			for _, angle := range []int{rig.MinAngle, rig.MaxAngle, rig.CentreAngle} {
				// Step at the configured speed until the channel gets
				// there; give up if it's held or locked.
				for t.rig.Snapshot().Positions[n] != angle {
					before := t.rig.Snapshot().Positions[n]
					t.rig.MoveServoToAngle(n, angle)
					if t.rig.Snapshot().Positions[n] == before {
						break
					}
					if !pause(20 * time.Millisecond) {
						return
					}
				}
				if !pause(time.Second) {
					return
				}
			}
		}
		if !pause(5 * time.Second) {
			return
		}
	}
}
