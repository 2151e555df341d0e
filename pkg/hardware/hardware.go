package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/servorig/go-controller/pkg/config"
	"github.com/servorig/go-controller/pkg/mpu6050"
	"github.com/servorig/go-controller/pkg/screen"
	"github.com/servorig/go-controller/pkg/sound"
)

type Hardware struct {
	pwm *PWMLoop

	soundsToPlay chan string
}

func New(cfg config.Config) *Hardware {
	return &Hardware{
		pwm:          NewPWMLoop(cfg),
		soundsToPlay: sound.Start(cfg.SoundsDir),
	}
}

var _ Interface = (*Hardware)(nil)

func (h *Hardware) Start(ctx context.Context) {
	var initDone sync.WaitGroup
	go screen.LoopUpdatingScreen(ctx)
	initDone.Add(1)
	go h.pwm.Loop(ctx, &initDone)
	initDone.Wait()
}

func (h *Hardware) SetServoAngle(n, degrees int) {
	h.pwm.SetServoAngle(n, degrees)
}

func (h *Hardware) AllOff() {
	h.pwm.AllOff()
}

func (h *Hardware) CurrentMotion() mpu6050.Readings {
	return h.pwm.CurrentMotion()
}

func (h *Hardware) Available() Availability {
	return h.pwm.Available()
}

func (h *Hardware) SetControllerPresent(present bool) {
	h.pwm.SetControllerPresent(present)
}

func (h *Hardware) PlaySound(path string) {
	defer func() {
		recover() // Don't die if the channel is already closed.
	}()
	select {
	case h.soundsToPlay <- path:
		return
	case <-time.After(10 * time.Millisecond):
		fmt.Println("Timed out trying to play sound: ", path)
	}
}

func (h *Hardware) Shutdown() {
	h.AllOff()
	close(h.soundsToPlay)
}
