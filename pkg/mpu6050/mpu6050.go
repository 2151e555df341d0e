package mpu6050

import (
	"golang.org/x/exp/io/i2c"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	DefaultAddr = 0x68

	RegSampleRateDiv = 0x19
	RegConfig        = 0x1a
	RegAccelBase     = 0x3b // 14 bytes: accel XYZ, temp, gyro XYZ
	RegPowerMgmt1    = 0x6b

	// LSB scales for the default full-scale ranges.
	accelScale = 16384.0 // LSB per g (+-2g)
	gyroScale  = 131.0   // LSB per deg/s (+-250dps)
)

// Vec3 is one three-axis reading.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Readings is a single raw-register sample: acceleration in g, angular
// rate in degrees per second, die temperature in Celsius.  No fusion.
type Readings struct {
	Accel Vec3    `json:"accel"`
	Gyro  Vec3    `json:"gyro"`
	Temp  float64 `json:"temp"`
}

type Interface interface {
	Configure() error
	Read() (Readings, error)
}

type port interface {
	// Read reads len(buf) bytes from the device.
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) (err error)
}

type MPU6050 struct {
	dev port
}

func NewI2C(deviceFile string) (Interface, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, err
	}
	return &MPU6050{
		dev: dev,
	}, nil
}

// NewSPI opens an MPU-6000 (same register map) on an SPI bus.
func NewSPI(deviceFile string) (Interface, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	// Use spireg SPI port registry to find the SPI bus.
	p, err := spireg.Open(deviceFile)
	if err != nil {
		return nil, err
	}

	// Convert the spi.Port into a spi.Conn so it can be used for communication.
	c, err := p.Connect(physic.KiloHertz*1000, spi.Mode3, 8)
	if err != nil {
		return nil, err
	}

	return &MPU6050{
		dev: &spiAdapter{c: c},
	}, nil
}

// Configure wakes the device out of sleep and leaves the default
// +-2g / +-250dps ranges in place.
func (m *MPU6050) Configure() error {
	err := m.dev.WriteReg(RegPowerMgmt1, []byte{0})
	if err != nil {
		return err
	}
	// DLPF at 1kHz sample rate.
	return m.dev.WriteReg(RegConfig, []byte{1})
}

// Read pulls the full accel/temp/gyro register block in one burst.
func (m *MPU6050) Read() (Readings, error) {
	var buf [14]byte
	if err := m.dev.ReadReg(RegAccelBase, buf[:]); err != nil {
		return Readings{}, err
	}
	word := func(i int) float64 {
		return float64(int16(buf[i])<<8 | int16(buf[i+1]))
	}
	return Readings{
		Accel: Vec3{
			X: word(0) / accelScale,
			Y: word(2) / accelScale,
			Z: word(4) / accelScale,
		},
		Temp: word(6)/340.0 + 36.53,
		Gyro: Vec3{
			X: word(8) / gyroScale,
			Y: word(10) / gyroScale,
			Z: word(12) / gyroScale,
		},
	}, nil
}

type spiAdapter struct {
	c spi.Conn

	r, w []byte
}

const spiRead = 0x80

func (s *spiAdapter) ReadReg(reg byte, buf []byte) error {
	// The read and write buffers need to be as long as the whole transaction.
	bufLen := 1 + len(buf)
	s.ensureBuf(bufLen)
	// We write the address byte, then read back the response.
	s.w[0] = spiRead | reg
	err := s.c.Tx(s.w[:bufLen], s.r[:bufLen])
	if err != nil {
		return err
	}
	// The response will come back only after the first byte is sent, ignore the first byte that we read.
	copy(buf, s.r[1:])
	return nil
}

func (s *spiAdapter) WriteReg(reg byte, buf []byte) (err error) {
	bufLen := 1 + len(buf)
	s.ensureBuf(bufLen)
	s.w[0] = reg
	copy(s.w[1:], buf)
	err = s.c.Tx(s.w[:bufLen], s.r[:bufLen])
	return
}

func (s *spiAdapter) ensureBuf(l int) {
	if len(s.r) < l {
		s.w = make([]byte, l)
		s.r = make([]byte, l)
	} else {
		for i := 0; i < l; i++ {
			s.w[i] = 0
			s.r[i] = 0
		}
	}
}
