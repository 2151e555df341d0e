package main

import (
	"fmt"
	"os"
	"time"

	"github.com/servorig/go-controller/pkg/mpu6050"
)

func main() {
	var imu mpu6050.Interface
	var err error
	if dev := os.Getenv("MPU_SPI_DEVICE"); dev != "" {
		imu, err = mpu6050.NewSPI(dev)
	} else {
		dev := os.Getenv("MPU_I2C_DEVICE")
		if dev == "" {
			dev = "/dev/i2c-1"
		}
		imu, err = mpu6050.NewI2C(dev)
	}
	if err != nil {
		fmt.Println("Failed to open MPU6050", err)
		return
	}
	if err := imu.Configure(); err != nil {
		fmt.Println("Failed to configure MPU6050", err)
		return
	}

	for {
		r, err := imu.Read()
		if err != nil {
			fmt.Println("Read failed", err)
			return
		}
		fmt.Printf("accel x %6.3f y %6.3f z %6.3f g  gyro x %7.2f y %7.2f z %7.2f deg/s  temp %5.2fC\n",
			r.Accel.X, r.Accel.Y, r.Accel.Z, r.Gyro.X, r.Gyro.Y, r.Gyro.Z, r.Temp)
		time.Sleep(200 * time.Millisecond)
	}
}
