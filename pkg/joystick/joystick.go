package joystick

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kenshaw/evdev"
)

// Button and axis mappings (Linux input event codes):
//
// Buttons
//
//    South (A / Cross)     = 0x130
//    East  (B / Circle)    = 0x131
//    North (Y / Triangle)  = 0x133
//    West  (X / Square)    = 0x134
//    L1                    = 0x136
//    R1                    = 0x137
//    L2 (also an axis)     = 0x138
//    R2 (also an axis)     = 0x139
//    Select (Share/View)   = 0x13a
//    Start (Options/Menu)  = 0x13b
//    Mode (PS/Xbox)        = 0x13c
//
// Axes
//
//    L stick l/r = 0x00 (left = -32767; right = +32767)
//            u/d = 0x01 (up = -32767; down = +32767)
//    R stick l/r = 0x03
//            u/d = 0x04
//    L2          = 0x02 (unpressed = 0; fully-pressed = max)
//    R2          = 0x05 (unpressed = 0; fully-pressed = max)
//    D-pad   l/r = 0x10 (left = -ve; right = +ve)
//            u/d = 0x11 (up = -ve; down = +ve)
//
// Some pads report the D-pad as buttons 0x220-0x223 instead of the hat
// axes; we pass both through and let the mode handle either.

const (
	AxisLStickX  = 0x00
	AxisLStickY  = 0x01
	AxisLTrigger = 0x02
	AxisRStickX  = 0x03
	AxisRStickY  = 0x04
	AxisRTrigger = 0x05
	AxisDPadX    = 0x10
	AxisDPadY    = 0x11

	ButtonSouth  = 0x130
	ButtonEast   = 0x131
	ButtonNorth  = 0x133
	ButtonWest   = 0x134
	ButtonL1     = 0x136
	ButtonR1     = 0x137
	ButtonL2     = 0x138
	ButtonR2     = 0x139
	ButtonSelect = 0x13a
	ButtonStart  = 0x13b
	ButtonMode   = 0x13c
	ButtonLStick = 0x13d
	ButtonRStick = 0x13e

	ButtonDPadUp    = 0x220
	ButtonDPadDown  = 0x221
	ButtonDPadLeft  = 0x222
	ButtonDPadRight = 0x223

	// Full-scale stick deflection.
	AxisMax = 32767
)

type EventType uint8

const (
	EventTypeButton EventType = 1
	EventTypeAxis   EventType = 2
)

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// Kind is the detected controller family.
type Kind string

const (
	KindPS      Kind = "PS"
	KindXbox    Kind = "Xbox"
	KindGeneric Kind = "Generic"
)

type Event struct {
	Time  time.Time
	Type  EventType
	Code  uint16
	Value int32
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(0x%x)=%v", e.Type, e.Code, e.Value)
}

type Joystick struct {
	dev  *evdev.Evdev
	path string
	kind Kind
}

// Open opens an explicitly-given event device.
func Open(device string) (*Joystick, error) {
	d, err := evdev.OpenFile(device)
	if err != nil {
		return nil, err
	}
	return &Joystick{
		dev:  d,
		path: device,
		kind: kindForName(d.Name()),
	}, nil
}

// Find scans /dev/input/event* for the first device that looks like a
// game controller.
func Find() (*Joystick, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		d, err := evdev.OpenFile(p)
		if err != nil {
			continue
		}
		if kind := kindForName(d.Name()); kind != KindGeneric {
			return &Joystick{dev: d, path: p, kind: kind}, nil
		}
		_ = d.Close()
	}
	return nil, fmt.Errorf("no game controller found")
}

func kindForName(name string) Kind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "playstation"),
		strings.Contains(n, "sony"),
		strings.Contains(n, "dualshock"),
		strings.Contains(n, "dualsense"),
		// DS4s in Bluetooth mode report just "Wireless Controller".
		strings.Contains(n, "wireless controller"):
		return KindPS
	case strings.Contains(n, "xbox"),
		strings.Contains(n, "microsoft"):
		return KindXbox
	}
	return KindGeneric
}

func (j *Joystick) Name() string { return j.dev.Name() }
func (j *Joystick) Path() string { return j.path }
func (j *Joystick) Kind() Kind   { return j.kind }

func (j *Joystick) Close() error {
	return j.dev.Close()
}

// Events starts polling the device and returns a channel of translated
// events.  The channel is closed when the device goes away or the
// context is cancelled.
func (j *Joystick) Events(ctx context.Context) <-chan *Event {
	ch := j.dev.Poll(ctx)
	out := make(chan *Event, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev == nil {
					continue
				}
				if e := translate(ev.Event.Type, uint16(ev.Code), int32(ev.Value)); e != nil {
					out <- e
				}
			}
		}
	}()
	return out
}

// translate maps a raw evdev envelope onto our Event type; sync and
// other non-input events return nil.
func translate(typ evdev.EventType, code uint16, value int32) *Event {
	var eventType EventType
	switch typ {
	case evdev.EventKey:
		eventType = EventTypeButton
	case evdev.EventAbsolute:
		eventType = EventTypeAxis
	default:
		return nil
	}
	return &Event{
		Time:  time.Now(),
		Type:  eventType,
		Code:  code,
		Value: value,
	}
}
