package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/maestro"
	"github.com/servorig/go-controller/pkg/pca9685"
)

func main() {
	var pwm hardware.PWMBackend
	var err error
	if port := os.Getenv("MAESTRO_PORT"); port != "" {
		pwm, err = maestro.Open(port, 9600)
		if err != nil {
			fmt.Println("Failed to open Maestro", err)
			return
		}
	} else {
		pwm, err = pca9685.New("/dev/i2c-1")
		if err != nil {
			fmt.Println("Failed to open PCA9685", err)
			return
		}
	}

	err = pwm.Configure()
	if err != nil {
		fmt.Println("Failed to configure board", err)
		return
	}

	fmt.Println(
		`Commands:
    s <n> <angle>  # Move servo to angle
    o              # All off

<n>      Port number 0-15
<angle>  Angle in degrees 0-180; 90=centre\n`)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Split(strings.TrimSpace(line), " ")
		switch parts[0] {
		case "s":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Expected int, not ", parts[1])
				continue
			}
			angle, err := strconv.Atoi(parts[2])
			if err != nil {
				fmt.Println("Expected int, not ", parts[2])
				continue
			}
			fmt.Printf("Setting servo %d to %d degrees\n", n, angle)
			err = pwm.SetServoAngle(n, angle)
			if err != nil {
				fmt.Println("Failed to write to board: ", err)
				return
			}
		case "o":
			err = pwm.AllOff()
			if err != nil {
				fmt.Println("Failed to write to board: ", err)
				return
			}
		}
	}
}
