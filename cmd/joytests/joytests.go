package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servorig/go-controller/pkg/joystick"
)

func main() {
	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	var j *joystick.Joystick
	var err error
	firstLog := true
	for {
		if dev := os.Getenv("JOYSTICK_DEVICE"); dev != "" {
			j, err = joystick.Open(dev)
		} else {
			j, err = joystick.Find()
		}
		if err != nil {
			if firstLog {
				fmt.Printf("Waiting for joystick: %v.\n", err)
				firstLog = false
			}
			time.Sleep(1 * time.Second)
			continue
		}
		break
	}
	defer j.Close()
	fmt.Printf("Opened %s joystick %q at %s\n", j.Kind(), j.Name(), j.Path())

	events := j.Events(ctx)
	for je := range events {
		fmt.Println(je)
	}
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
