package hardware

import (
	"github.com/servorig/go-controller/pkg/mpu6050"
)

// PWMBackend is a servo driver board.  Angles are whole degrees in
// [0, 180]; out-of-range ports are logged and ignored.
type PWMBackend interface {
	Configure() error
	SetServoAngle(port, degrees int) error
	AllOff() error
	Close() error
}

// Availability reports which pieces of hardware were actually found,
// for the status display and the web dashboard.
type Availability struct {
	PWM        bool   `json:"pca"`
	IMU        bool   `json:"mpu"`
	Controller bool   `json:"controller"`
	Bus        string `json:"bus"`
}

type Interface interface {
	// Set the angle a servo should move towards.  Takes effect on the
	// next flush of the background loop.
	SetServoAngle(n, degrees int)
	// Park all servos (stop driving them).
	AllOff()

	// Read the current state of the hardware.  Reads the current best guess from cache.
	CurrentMotion() mpu6050.Readings
	Available() Availability

	SetControllerPresent(present bool)

	PlaySound(path string)
}
