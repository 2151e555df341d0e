package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/servorig/go-controller/pkg/config"
	"github.com/servorig/go-controller/pkg/csvmode"
	"github.com/servorig/go-controller/pkg/eventlog"
	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/joystick"
	"github.com/servorig/go-controller/pkg/padmode"
	"github.com/servorig/go-controller/pkg/pausemode"
	"github.com/servorig/go-controller/pkg/rig"
	"github.com/servorig/go-controller/pkg/screen"
	"github.com/servorig/go-controller/pkg/testmode"
	"github.com/servorig/go-controller/pkg/web"
)

type Mode interface {
	Name() string
	StartupSound() string
	Start(ctx context.Context)
	Stop()
}

type JoystickUser interface {
	OnJoystickEvent(event *joystick.Event)
}

func main() {
	fmt.Println("---- Servo rig ----")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	cfgPath := os.Getenv("CONTROLLER_CONFIG")
	if cfgPath == "" {
		cfgPath = "/cfg/controller.yaml"
	}
	cfg := config.Load(cfgPath)

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	events := eventlog.New(cfg.EventLog)
	defer events.Close()

	// Initialise the hardware.
	hw := hardware.New(cfg)
	defer func() {
		fmt.Println("Parking servos for shut down")
		hw.Shutdown()
		time.Sleep(100 * time.Millisecond)
	}()
	hw.Start(ctx)

	var channels [rig.NumChannels]rig.ChannelConfig
	for _, ch := range cfg.Channels {
		if ch.Channel < 0 || ch.Channel >= rig.NumChannels {
			fmt.Println("Ignoring config for out-of-range channel", ch.Channel)
			continue
		}
		channels[ch.Channel] = rig.ChannelConfig{Centre: ch.Centre, Invert: ch.Invert}
	}
	servoRig := rig.New(hw, channels, cfg.Speed)

	screen.SetStateSource(func() screen.State {
		s := servoRig.Snapshot()
		return screen.State{
			Positions: s.Positions,
			Hold:      s.Hold,
			Locked:    s.Locked,
			Speed:     s.Speed,
		}
	})

	// Web dashboard.
	dashboard := web.New(hw, servoRig, events)
	go func() {
		if err := dashboard.Serve(ctx, cfg.HTTPAddr); err != nil {
			fmt.Println("Dashboard failed:", err)
		}
	}()

	// Wait for the pad and kick off a background thread to read from it.
	joystickEvents := initJoystick(cancel, ctx, hw, cfg.JoystickDevice)

	hw.PlaySound("startup.wav")

	allModes := []Mode{
		padmode.New(hw, servoRig, events),
		csvmode.New(hw, servoRig, events, cfg.CSVFile),
		testmode.New(hw, servoRig),
		pausemode.New(hw, servoRig),
	}
	var activeMode Mode = allModes[0]
	fmt.Printf("----- %s -----\n", activeMode.Name())
	screen.SetMode(activeMode.Name())
	activeMode.Start(ctx)
	activeModeIdx := 0

	switchMode := func(delta int) {
		fmt.Println("Mode switch", delta)
		activeMode.Stop()
		activeModeIdx += delta
		activeModeIdx = (activeModeIdx + len(allModes)) % len(allModes)
		activeMode = allModes[activeModeIdx]
		fmt.Printf("----- %s -----\n", activeMode.Name())
		screen.SetMode(activeMode.Name())
		events.Append("mode", map[string]interface{}{"name": activeMode.Name()})

		hw.PlaySound(activeMode.StartupSound())

		activeMode.Start(ctx)
		fmt.Println("Mode switch done.")
	}

	fmt.Println("Waiting for events...", joystickEvents)
	watchdog := time.NewTicker(5 * time.Second)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Context done, stopping active mode and shutting down")
			activeMode.Stop()
			cancel()
			time.Sleep(1 * time.Second)
			return
		case event, ok := <-joystickEvents:
			if !ok {
				fmt.Println("Joystick events channel closed!")
				activeMode.Stop()
				cancel()
				time.Sleep(1 * time.Second)
				return
			}
			// Intercept the Start/Mode buttons to implement mode switching.
			if event.Type == joystick.EventTypeButton &&
				event.Code == joystick.ButtonStart &&
				event.Value == 1 {
				fmt.Printf("Start pressed: switching modes >>\n")
				switchMode(1)
				continue
			} else if event.Type == joystick.EventTypeButton &&
				event.Code == joystick.ButtonMode &&
				event.Value == 1 {
				fmt.Printf("Mode pressed: switching modes <<\n")
				switchMode(-1)
				continue
			}
			// Pass other joystick events through if this mode requires them.
			if ju, ok := activeMode.(JoystickUser); ok {
				done := make(chan struct{})
				go func() {
					defer close(done)
					ju.OnJoystickEvent(event)
				}()
				timeout := time.NewTimer(1 * time.Second)
				select {
				case <-done:
					timeout.Stop()
				case <-timeout.C:
					// All the modes are supposed to just queue the event to the background thread.
					// If they block this long, they've probably deadlocked.
					panic("Deadlock? Active mode blocked OnJoystickEvent for >1s")
				}
			}
		case <-watchdog.C:
			fmt.Println("Main loop still running")
		}
	}
}

func initJoystick(cancel context.CancelFunc, ctx context.Context, hw hardware.Interface, device string) <-chan *joystick.Event {
	joystickEvents := make(chan *joystick.Event, 1)
	firstLog := true
	go func() {
		defer cancel()
		for ctx.Err() == nil {
			j, err := openJoystick(device)
			if err != nil {
				if firstLog {
					screen.SetNotice("NO PAD")
					fmt.Printf("Waiting for joystick: %v.\n", err)
					firstLog = false
				}
				time.Sleep(1 * time.Second)
				continue
			}

			screen.ClearNotice()
			fmt.Printf("Opened %s joystick %q\n", j.Kind(), j.Name())
			hw.SetControllerPresent(true)

			in := j.Events(ctx)
			for event := range in {
				joystickEvents <- event
			}
			fmt.Println("Joystick went away")
			hw.SetControllerPresent(false)
			_ = j.Close()
			firstLog = true
		}
		close(joystickEvents)
	}()
	return joystickEvents
}

func openJoystick(device string) (*joystick.Joystick, error) {
	if env := os.Getenv("JOYSTICK_DEVICE"); env != "" {
		device = env
	}
	if device != "" {
		return joystick.Open(device)
	}
	return joystick.Find()
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
