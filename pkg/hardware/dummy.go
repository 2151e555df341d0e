package hardware

import (
	"context"
	"fmt"
	"sync"

	"github.com/servorig/go-controller/pkg/mpu6050"
)

// Dummy stands in for the real hardware in tests and on dev machines.
type Dummy struct {
	lock sync.Mutex

	Angles     map[int]int
	Off        bool
	Sounds     []string
	controller bool

	imu mpu6050.Interface
}

func NewDummy() *Dummy {
	return &Dummy{
		Angles: map[int]int{},
		imu:    mpu6050.NewDummy(),
	}
}

var _ Interface = (*Dummy)(nil)

func (d *Dummy) Start(ctx context.Context) {
	fmt.Println("DHW: Start")
}

func (d *Dummy) SetServoAngle(n, degrees int) {
	d.lock.Lock()
	d.Angles[n] = degrees
	d.Off = false
	d.lock.Unlock()
}

func (d *Dummy) AllOff() {
	d.lock.Lock()
	d.Off = true
	d.lock.Unlock()
}

func (d *Dummy) CurrentMotion() mpu6050.Readings {
	r, _ := d.imu.Read()
	return r
}

func (d *Dummy) Available() Availability {
	d.lock.Lock()
	defer d.lock.Unlock()
	return Availability{Controller: d.controller}
}

func (d *Dummy) SetControllerPresent(present bool) {
	d.lock.Lock()
	d.controller = present
	d.lock.Unlock()
}

func (d *Dummy) PlaySound(path string) {
	d.lock.Lock()
	d.Sounds = append(d.Sounds, path)
	d.lock.Unlock()
}

func (d *Dummy) Shutdown() {
	fmt.Println("DHW: Shutdown")
}
