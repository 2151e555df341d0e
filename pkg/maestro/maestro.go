// Pololu Maestro servo controller over a serial port.
//
// See: https://www.pololu.com/docs/pdf/0J40/maestro.pdf
package maestro

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

const (
	cmdSetTarget = 0x84
	cmdGoHome    = 0xa2

	// Maximum channels on the largest Maestro.
	NumPorts = 24

	// Target positions are in quarter-microsecond ticks.
	ticksPerMicrosecond = 4

	servoMinPulseUS   = 1000
	servoMaxPulseUS   = 2000
	servoRangeDegrees = 180
)

// Controller speaks the compact protocol (single device on the bus).
type Controller struct {
	port   io.ReadWriter
	crc    bool
	closer io.Closer
}

// Open opens the serial port and returns a controller on it.
func Open(portName string, baud int) (*Controller, error) {
	p, err := serial.OpenPort(&serial.Config{Name: portName, Baud: baud})
	if err != nil {
		return nil, err
	}
	c := NewController(p, false)
	c.closer = p
	// Send 0xaa for auto baud detection.
	if _, err := p.Write([]byte{0xaa}); err != nil {
		p.Close()
		return nil, err
	}
	return c, nil
}

// NewController wraps an already-open port; withCRC appends a CRC-7
// byte to each command for controllers configured to require it.
func NewController(port io.ReadWriter, withCRC bool) *Controller {
	return &Controller{
		port: port,
		crc:  withCRC,
	}
}

func (c *Controller) Configure() error {
	return nil
}

// TargetForAngle converts a servo angle to a quarter-microsecond
// target within the standard 1000-2000us pulse range.
func TargetForAngle(degrees int) uint16 {
	if degrees < 0 {
		degrees = 0
	} else if degrees > servoRangeDegrees {
		degrees = servoRangeDegrees
	}
	us := servoMinPulseUS + degrees*(servoMaxPulseUS-servoMinPulseUS)/servoRangeDegrees
	return uint16(us * ticksPerMicrosecond)
}

func (c *Controller) SetServoAngle(port, degrees int) error {
	if port < 0 || port >= NumPorts {
		fmt.Println("Servo port out of range: ", port)
		return nil
	}
	target := TargetForAngle(degrees)
	return c.write([]byte{cmdSetTarget, byte(port), lo(target), hi(target)})
}

// AllOff sends every channel to its home (off) position.
func (c *Controller) AllOff() error {
	return c.write([]byte{cmdGoHome})
}

func (c *Controller) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *Controller) write(cmd []byte) error {
	if c.crc {
		cmd = append(cmd, crc7(cmd)&0x7f)
	}
	_, err := c.port.Write(cmd)
	return err
}

// Data bytes carry 7 bits each.
func lo(val uint16) byte { return byte(val & 0x7f) }
func hi(val uint16) byte { return byte((val >> 7) & 0x7f) }
