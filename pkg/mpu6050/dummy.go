package mpu6050

import "math/rand"

// Dummy fakes a stationary sensor: 1g on Z with a little noise.
type Dummy struct{}

func NewDummy() Interface {
	return &Dummy{}
}

func (d *Dummy) Configure() error {
	return nil
}

func (d *Dummy) Read() (Readings, error) {
	jitter := func(scale float64) float64 {
		return (rand.Float64() - 0.5) * scale
	}
	return Readings{
		Accel: Vec3{X: jitter(0.02), Y: jitter(0.02), Z: 1.0 + jitter(0.02)},
		Gyro:  Vec3{X: jitter(0.5), Y: jitter(0.5), Z: jitter(0.5)},
		Temp:  29.5 + jitter(0.2),
	}, nil
}
