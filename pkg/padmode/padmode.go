package padmode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/servorig/go-controller/pkg/eventlog"
	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/joystick"
	"github.com/servorig/go-controller/pkg/rig"
)

// Stick-to-channel assignment.
const (
	ChannelLStickX = 0
	ChannelLStickY = 1
	ChannelRStickY = 2
	ChannelRStickX = 3

	// Triggers report 0..1023 on most pads.
	triggerMax = 1023

	// How often we re-step channels toward their stick targets.
	stepInterval = 20 * time.Millisecond
)

// PadMode drives the servo rig directly from the gamepad: sticks move
// channels, face buttons toggle holds, triggers sweep everything to an
// end stop, the d-pad jumps to presets.
type PadMode struct {
	hw  hardware.Interface
	rig *rig.Rig
	log *eventlog.Logger

	cancel         context.CancelFunc
	stopWG         sync.WaitGroup
	joystickEvents chan *joystick.Event
}

func New(hw hardware.Interface, r *rig.Rig, log *eventlog.Logger) *PadMode {
	return &PadMode{
		hw:             hw,
		rig:            r,
		log:            log,
		joystickEvents: make(chan *joystick.Event),
	}
}

func (m *PadMode) Name() string {
	return "PAD MODE"
}

func (m *PadMode) StartupSound() string {
	return "padmode.wav"
}

func (m *PadMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *PadMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *PadMode) OnJoystickEvent(event *joystick.Event) {
	m.joystickEvents <- event
}

func (m *PadMode) loop(ctx context.Context) {
	defer m.stopWG.Done()

	// Last-seen stick deflection per channel.  The step ticker keeps
	// walking each channel toward its target so a held stick produces a
	// smooth sweep rather than one jump per input event.  A channel is
	// only stepped while its stick input is active; once interpolation
	// stops making progress the channel is left alone, so positions set
	// by the dashboard or presets stick until the pad moves again.
	var targets [rig.NumChannels]int32
	var active [rig.NumChannels]bool

	// Calibration sweep runs in its own goroutine so the event loop
	// stays responsive; calRunning stops us starting two at once.
	calCtx, cancelCal := context.WithCancel(context.Background())
	var calWG sync.WaitGroup
	calRunning := false
	calDoneC := make(chan struct{}, 1)
	defer func() {
		cancelCal()
		calWG.Wait()
	}()

	stepTicker := time.NewTicker(stepInterval)
	defer stepTicker.Stop()

	var lastStatus string
	for {
		select {
		case <-ctx.Done():
			return
		case <-calDoneC:
			calRunning = false
		case <-stepTicker.C:
			before := m.rig.Snapshot()
			for n := range targets {
				if active[n] {
					m.rig.MoveServo(n, targets[n])
				}
			}
			after := m.rig.Snapshot()
			for n := range targets {
				// No movement means the target is reached (or the
				// channel is held or locked); stop driving it.
				if active[n] && after.Positions[n] == before.Positions[n] {
					active[n] = false
				}
			}
			if s := StatusLine(m.rig.Snapshot()); s != lastStatus {
				fmt.Println(s)
				lastStatus = s
			}
		case event := <-m.joystickEvents:
			switch event.Type {
			case joystick.EventTypeAxis:
				switch event.Code {
				case joystick.AxisLStickX:
					targets[ChannelLStickX] = event.Value
					active[ChannelLStickX] = true
				case joystick.AxisLStickY:
					targets[ChannelLStickY] = event.Value
					active[ChannelLStickY] = true
				case joystick.AxisRStickY:
					targets[ChannelRStickY] = event.Value
					active[ChannelRStickY] = true
				case joystick.AxisRStickX:
					targets[ChannelRStickX] = event.Value
					active[ChannelRStickX] = true
				case joystick.AxisLTrigger:
					if event.Value > 0 {
						m.rig.MoveAll(rig.TriggerToAngle(event.Value, triggerMax, false))
					}
				case joystick.AxisRTrigger:
					if event.Value > 0 {
						m.rig.MoveAll(rig.TriggerToAngle(event.Value, triggerMax, true))
					}
				case joystick.AxisDPadX:
					if event.Value > 0 {
						m.moveAllTo(rig.MaxAngle)
					} else if event.Value < 0 {
						m.moveAllTo(rig.MinAngle)
					}
				case joystick.AxisDPadY:
					if event.Value < 0 {
						m.moveAllTo(rig.CentreAngle)
					} else if event.Value > 0 {
						m.toggleLock()
					}
				}
			case joystick.EventTypeButton:
				if event.Value != 1 {
					continue
				}
				switch event.Code {
				case joystick.ButtonSouth:
					m.toggleHold(1)
				case joystick.ButtonEast:
					m.toggleHold(0)
				case joystick.ButtonNorth:
					m.toggleHold(2)
				case joystick.ButtonWest:
					m.toggleHold(3)
				case joystick.ButtonR1:
					m.adjustSpeed(rig.SpeedStep)
				case joystick.ButtonL1:
					m.adjustSpeed(-rig.SpeedStep)
				case joystick.ButtonDPadRight:
					m.moveAllTo(rig.MaxAngle)
				case joystick.ButtonDPadLeft:
					m.moveAllTo(rig.MinAngle)
				case joystick.ButtonDPadUp:
					m.moveAllTo(rig.CentreAngle)
				case joystick.ButtonDPadDown:
					m.toggleLock()
				case joystick.ButtonSelect:
					if calRunning {
						fmt.Println("Calibration already running")
						continue
					}
					calRunning = true
					calWG.Add(1)
					go func() {
						defer calWG.Done()
						m.calibrationSweep(calCtx)
						calDoneC <- struct{}{}
					}()
				}
			}
		}
	}
}

func (m *PadMode) moveAllTo(angle int) {
	m.rig.MoveAll(angle)
	m.log.Append("preset", map[string]interface{}{"angle": angle})
}

func (m *PadMode) toggleHold(n int) {
	held := m.rig.ToggleHold(n)
	fmt.Printf("Channel %d hold: %v\n", n, held)
	m.hw.PlaySound("click.wav")
	m.log.Append("hold", map[string]interface{}{"channel": n, "held": held})
}

func (m *PadMode) toggleLock() {
	locked := m.rig.ToggleLock()
	fmt.Println("Lock:", locked)
	m.hw.PlaySound("lock.wav")
	m.log.Append("lock", map[string]interface{}{"locked": locked})
}

func (m *PadMode) adjustSpeed(delta float64) {
	speed := m.rig.AdjustSpeed(delta)
	fmt.Printf("Speed: %.1f\n", speed)
	m.log.Append("speed", map[string]interface{}{"speed": speed})
}

// calibrationSweep runs both end stops then returns to centre, pausing
// at each so the linkage can be checked by eye.
func (m *PadMode) calibrationSweep(ctx context.Context) {
	fmt.Println("Calibration sweep")
	m.log.Append("calibration", nil)
	steps := []int{rig.MinAngle, rig.MaxAngle}
	for _, angle := range steps {
		m.rig.MoveAll(angle)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
	m.rig.Centre()
}

// StatusLine renders one console line of rig state: per-channel angle
// with an arrow showing which side of centre it sits, hold and lock
// markers, and the speed factor.
func StatusLine(s rig.Snapshot) string {
	line := ""
	for n := 0; n < rig.NumChannels; n++ {
		marker := "·"
		if s.Positions[n] > s.Centres[n] {
			marker = "→"
		} else if s.Positions[n] < s.Centres[n] {
			marker = "←"
		}
		if s.Hold[n] {
			marker = "H"
		}
		line += fmt.Sprintf("%d:%3d%s  ", n, s.Positions[n], marker)
	}
	if s.Locked {
		line += "LOCKED  "
	}
	return line + fmt.Sprintf("spd %.1f", s.Speed)
}
