package pca9685

import (
	"fmt"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	// The broadcast registers affecting every output at once.
	RegAllLEDBase = 0xfa

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	NumPorts = 16

	// Servo pulse range in 12-bit ticks of a 20ms (50Hz) frame.
	ServoMinTicks = 150
	ServoMaxTicks = 600

	ServoRangeDegrees = 180
)

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, err
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

// PulseForAngle converts a servo angle to the off-time tick count.
func PulseForAngle(degrees int) uint16 {
	if degrees < 0 {
		degrees = 0
	} else if degrees > ServoRangeDegrees {
		degrees = ServoRangeDegrees
	}
	return uint16(ServoMinTicks + degrees*(ServoMaxTicks-ServoMinTicks)/ServoRangeDegrees)
}

func (p *PCA9685) SetServoAngle(port, degrees int) error {
	if port < 0 || port >= NumPorts {
		fmt.Println("Servo port out of range: ", port)
		return nil
	}

	pwmValue := PulseForAngle(degrees)
	addr := RegLEDBase + port*4

	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(pwmValue & 0xff), byte(pwmValue >> 8)})
}

// AllOff zeroes the pulse on every output, releasing the servos.
func (p *PCA9685) AllOff() error {
	return p.dev.WriteReg(RegAllLEDBase, []byte{0, 0, 0, 0})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}
