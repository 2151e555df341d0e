package mpu6050

import (
	"math"
	"testing"
)

type fakePort struct {
	regs   map[byte][]byte
	writes map[byte][]byte
}

func newFakePort() *fakePort {
	return &fakePort{
		regs:   map[byte][]byte{},
		writes: map[byte][]byte{},
	}
}

func (f *fakePort) ReadReg(reg byte, buf []byte) error {
	copy(buf, f.regs[reg])
	return nil
}

func (f *fakePort) WriteReg(reg byte, buf []byte) error {
	f.writes[reg] = append([]byte(nil), buf...)
	return nil
}

func TestConfigureWakesDevice(t *testing.T) {
	p := newFakePort()
	m := &MPU6050{dev: p}
	if err := m.Configure(); err != nil {
		t.Fatal(err)
	}
	w, ok := p.writes[RegPowerMgmt1]
	if !ok || len(w) != 1 || w[0] != 0 {
		t.Fatalf("expected 0 written to power management register, got %v", w)
	}
}

func TestReadScaling(t *testing.T) {
	p := newFakePort()
	// Accel X = 16384 (1g), Y = -16384, Z = 0; temp raw = 0;
	// gyro X = 131 (1 deg/s), Y = 0, Z = -262.
	p.regs[RegAccelBase] = []byte{
		0x40, 0x00, // accel X
		0xc0, 0x00, // accel Y
		0x00, 0x00, // accel Z
		0x00, 0x00, // temp
		0x00, 0x83, // gyro X
		0x00, 0x00, // gyro Y
		0xfe, 0xfa, // gyro Z
	}
	m := &MPU6050{dev: p}
	r, err := m.Read()
	if err != nil {
		t.Fatal(err)
	}
	approx := func(name string, got, want float64) {
		t.Helper()
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	approx("accel X", r.Accel.X, 1.0)
	approx("accel Y", r.Accel.Y, -1.0)
	approx("accel Z", r.Accel.Z, 0)
	approx("temp", r.Temp, 36.53)
	approx("gyro X", r.Gyro.X, 1.0)
	approx("gyro Y", r.Gyro.Y, 0)
	approx("gyro Z", r.Gyro.Z, -2.0)
}
