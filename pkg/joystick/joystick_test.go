package joystick

import (
	"testing"

	"github.com/kenshaw/evdev"
)

func TestTranslateButton(t *testing.T) {
	e := translate(evdev.EventKey, ButtonSouth, 1)
	if e == nil {
		t.Fatal("key event not translated")
	}
	if e.Type != EventTypeButton || e.Code != ButtonSouth || e.Value != 1 {
		t.Fatalf("unexpected event %v", e)
	}
}

func TestTranslateAxis(t *testing.T) {
	e := translate(evdev.EventAbsolute, AxisLStickX, -AxisMax)
	if e == nil {
		t.Fatal("axis event not translated")
	}
	if e.Type != EventTypeAxis || e.Code != AxisLStickX || e.Value != -AxisMax {
		t.Fatalf("unexpected event %v", e)
	}
}

func TestTranslateDropsSyncEvents(t *testing.T) {
	if e := translate(evdev.EventType(0), 0, 0); e != nil {
		t.Fatalf("sync event translated to %v", e)
	}
}

func TestKindForName(t *testing.T) {
	for name, want := range map[string]Kind{
		"Sony Interactive Entertainment Wireless Controller": KindPS,
		"Wireless Controller":                                KindPS,
		"Microsoft X-Box One pad":                            KindXbox,
		"Some USB HID":                                       KindGeneric,
	} {
		if got := kindForName(name); got != want {
			t.Errorf("kindForName(%q) = %v, want %v", name, got, want)
		}
	}
}
