package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/servorig/go-controller/pkg/config"
	"github.com/servorig/go-controller/pkg/maestro"
	"github.com/servorig/go-controller/pkg/mpu6050"
	"github.com/servorig/go-controller/pkg/pca9685"
)

const NumServoPorts = 16

// candidateBuses are tried in order when the configured I2C device
// can't be opened.
var candidateBuses = []string{"/dev/i2c-1", "/dev/i2c-0", "/dev/i2c-2"}

type PWMLoop struct {
	lock sync.Mutex

	cfg config.Config

	// Desired values.  Stored off in case we need to re-initialise the hardware.
	servoAngles       []int
	servosWithUpdates map[int]bool
	allOff            bool

	avail  Availability
	motion mpu6050.Readings
}

func NewPWMLoop(cfg config.Config) *PWMLoop {
	angles := make([]int, NumServoPorts)
	for i := range angles {
		angles[i] = 90
	}
	return &PWMLoop{
		cfg:               cfg,
		servoAngles:       angles,
		servosWithUpdates: map[int]bool{},
	}
}

func (c *PWMLoop) SetServoAngle(n, degrees int) {
	c.lock.Lock()
	if n >= 0 && n < len(c.servoAngles) {
		c.servoAngles[n] = degrees
		c.servosWithUpdates[n] = true
		c.allOff = false
	} else {
		fmt.Println("Warning: servo out of range: ", n)
	}
	c.lock.Unlock()
}

func (c *PWMLoop) AllOff() {
	c.lock.Lock()
	c.allOff = true
	c.servosWithUpdates = map[int]bool{}
	c.lock.Unlock()
}

func (c *PWMLoop) CurrentMotion() mpu6050.Readings {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.motion
}

func (c *PWMLoop) Available() Availability {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.avail
}

func (c *PWMLoop) SetControllerPresent(present bool) {
	c.lock.Lock()
	c.avail.Controller = present
	c.lock.Unlock()
}

func (c *PWMLoop) Loop(ctx context.Context, initDone *sync.WaitGroup) {
	fmt.Println("PWM loop started")
	for {
		c.loopUntilSomethingBadHappens(ctx, initDone)
		if ctx.Err() != nil {
			return
		}
		fmt.Println("===== !!! WARNING !!! PWM FAILURE; TRYING TO RECOVER =====")
		initDone = nil
		time.Sleep(time.Second)
	}
}

// openBackend opens the configured driver board, falling back to the
// dummy so the rest of the program keeps working without hardware.
func (c *PWMLoop) openBackend() (PWMBackend, string) {
	switch c.cfg.Backend {
	case "maestro":
		m, err := maestro.Open(c.cfg.SerialPort, c.cfg.SerialBaud)
		if err != nil {
			fmt.Println("Failed to open maestro, falling back to dummy:", err)
			break
		}
		return m, ""
	case "dummy":
	default:
		for _, bus := range probeOrder(c.cfg.I2CDevice) {
			p, err := pca9685.New(bus)
			if err != nil {
				fmt.Println("Failed to open PCA9685 on", bus, ":", err)
				continue
			}
			return p, bus
		}
		fmt.Println("No PCA9685 found, falling back to dummy")
	}
	return &dummyBackend{}, ""
}

func probeOrder(configured string) []string {
	out := []string{configured}
	for _, bus := range candidateBuses {
		if bus != configured {
			out = append(out, bus)
		}
	}
	return out
}

func (c *PWMLoop) loopUntilSomethingBadHappens(ctx context.Context, initDone *sync.WaitGroup) {
	defer func() {
		if initDone != nil {
			initDone.Done()
		}
	}()

	pwm, bus := c.openBackend()
	defer pwm.Close()
	if err := pwm.Configure(); err != nil {
		fmt.Println("Failed to configure PWM board", err)
		return
	}
	_, isDummy := pwm.(*dummyBackend)

	var imu mpu6050.Interface
	if bus != "" {
		var err error
		imu, err = mpu6050.NewI2C(bus)
		if err == nil {
			err = imu.Configure()
		}
		if err != nil {
			fmt.Println("Failed to open MPU6050; ignoring! ", err)
			imu = nil
		}
	}
	imuReal := imu != nil
	if !imuReal {
		// Keep the motion readout alive with simulated readings.
		imu = mpu6050.NewDummy()
	}

	c.lock.Lock()
	c.avail.PWM = !isDummy
	c.avail.IMU = imuReal
	c.avail.Bus = bus
	// Force a full refresh after a re-init.
	for n := range c.servoAngles {
		c.servosWithUpdates[n] = true
	}
	c.lock.Unlock()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	var lastIMURead time.Time
	var wasOff bool

	if initDone != nil {
		initDone.Done()
		initDone = nil
	}

	for ctx.Err() == nil {
		<-ticker.C

		c.lock.Lock()
		off := c.allOff
		updates := c.servosWithUpdates
		c.servosWithUpdates = map[int]bool{}
		angles := make([]int, len(c.servoAngles))
		copy(angles, c.servoAngles)
		c.lock.Unlock()

		if off {
			if !wasOff {
				if err := pwm.AllOff(); err != nil {
					fmt.Println("Failed to park servos", err)
					return
				}
				wasOff = true
			}
		} else {
			wasOff = false
			for n := range updates {
				if err := pwm.SetServoAngle(n, angles[n]); err != nil {
					fmt.Println("Failed to update servo", n, err)
					return
				}
			}
		}

		if time.Since(lastIMURead) > 100*time.Millisecond {
			readings, err := imu.Read()
			if err != nil {
				fmt.Println("Failed to read MPU6050", err)
				return
			}
			c.lock.Lock()
			c.motion = readings
			c.lock.Unlock()
			lastIMURead = time.Now()
		}
	}
}

// dummyBackend logs what it would have done.
type dummyBackend struct{}

func (d *dummyBackend) Configure() error { return nil }

func (d *dummyBackend) SetServoAngle(port, degrees int) error {
	fmt.Printf("DPWM: SetServoAngle port=%v degrees=%v\n", port, degrees)
	return nil
}

func (d *dummyBackend) AllOff() error {
	fmt.Println("DPWM: AllOff")
	return nil
}

func (d *dummyBackend) Close() error { return nil }
