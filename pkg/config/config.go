package config

import (
	"fmt"
	"io/ioutil"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// ServoChannel is the per-channel setup: which output the channel
// drives, its resting centre, and whether its travel is mirrored.
type ServoChannel struct {
	Channel int  `yaml:"channel"`
	Centre  int  `yaml:"centre"`
	Invert  bool `yaml:"invert"`
}

type Config struct {
	JoystickDevice string `yaml:"joystick_device"`

	// Backend is pca9685, maestro or dummy.
	Backend    string `yaml:"backend"`
	I2CDevice  string `yaml:"i2c_device"`
	SerialPort string `yaml:"serial_port"`
	SerialBaud int    `yaml:"serial_baud"`

	HTTPAddr  string `yaml:"http_addr"`
	CSVFile   string `yaml:"csv_file"`
	SoundsDir string `yaml:"sounds_dir"`
	EventLog  string `yaml:"event_log"`

	Speed    float64        `yaml:"speed"`
	Channels []ServoChannel `yaml:"channels"`
}

func Default() Config {
	return Config{
		Backend:    "pca9685",
		I2CDevice:  "/dev/i2c-1",
		SerialPort: "/dev/ttyS0",
		SerialBaud: 9600,
		HTTPAddr:   ":8080",
		CSVFile:    "/cfg/servo.csv",
		SoundsDir:  "/sounds",
		EventLog:   "/var/log/servo-events.json",
		Speed:      1.0,
		Channels: []ServoChannel{
			{Channel: 0, Centre: 90},
			{Channel: 1, Centre: 90},
			{Channel: 2, Centre: 90},
			{Channel: 3, Centre: 90},
		},
	}
}

// Load overlays the file at path onto the defaults, then writes the
// merged config back next to the original so the values actually in
// effect are easy to inspect.
func Load(path string) Config {
	c := Default()
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Println(err)
	} else {
		err = yaml.Unmarshal(raw, &c)
		if err != nil {
			fmt.Println(err)
		}
	}
	// Write out the config that we are using.
	fmt.Printf("Using config: %#v\n", c)
	cfgBytes, err := yaml.Marshal(&c)
	if err != nil {
		fmt.Println(err)
	} else {
		err = ioutil.WriteFile(inUsePath(path), cfgBytes, 0666)
		if err != nil {
			fmt.Println(err)
		}
	}
	return c
}

func inUsePath(path string) string {
	if strings.HasSuffix(path, ".yaml") {
		return strings.TrimSuffix(path, ".yaml") + "-in-use.yaml"
	}
	return path + "-in-use"
}
