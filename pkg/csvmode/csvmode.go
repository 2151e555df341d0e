package csvmode

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/servorig/go-controller/pkg/eventlog"
	"github.com/servorig/go-controller/pkg/hardware"
	"github.com/servorig/go-controller/pkg/joystick"
	"github.com/servorig/go-controller/pkg/rig"
)

const rowInterval = time.Second

// CSVMode replays a recorded routine: one row of four angles per
// second.  South replays the file from the top.
type CSVMode struct {
	hw   hardware.Interface
	rig  *rig.Rig
	log  *eventlog.Logger
	path string

	cancel         context.CancelFunc
	stopWG         sync.WaitGroup
	joystickEvents chan *joystick.Event
}

func New(hw hardware.Interface, r *rig.Rig, log *eventlog.Logger, path string) *CSVMode {
	return &CSVMode{
		hw:             hw,
		rig:            r,
		log:            log,
		path:           path,
		joystickEvents: make(chan *joystick.Event),
	}
}

func (m *CSVMode) Name() string {
	return "CSV MODE"
}

func (m *CSVMode) StartupSound() string {
	return "csvmode.wav"
}

func (m *CSVMode) Start(ctx context.Context) {
	m.stopWG.Add(1)
	var loopCtx context.Context
	loopCtx, m.cancel = context.WithCancel(ctx)
	go m.loop(loopCtx)
}

func (m *CSVMode) Stop() {
	m.cancel()
	m.stopWG.Wait()
}

func (m *CSVMode) OnJoystickEvent(event *joystick.Event) {
	m.joystickEvents <- event
}

func (m *CSVMode) loop(ctx context.Context) {
	defer m.stopWG.Done()

	rows, err := ReadAngleRows(m.path)
	if err != nil {
		fmt.Println("Failed to read routine:", err)
	}
	m.log.Append("playback", map[string]interface{}{"file": m.path, "rows": len(rows)})

	ticker := time.NewTicker(rowInterval)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if next >= len(rows) {
				continue
			}
			fmt.Println("Routine row", next, rows[next])
			m.rig.ApplyRow(rows[next])
			next++
		case event := <-m.joystickEvents:
			if event.Type == joystick.EventTypeButton &&
				event.Code == joystick.ButtonSouth &&
				event.Value == 1 {
				fmt.Println("Replaying routine from the top")
				m.hw.PlaySound("replay.wav")
				next = 0
			}
		}
	}
}

// ReadAngleRows parses a routine file: four comma-separated angles per
// line.  Malformed rows are logged and skipped rather than aborting the
// whole routine.
func ReadAngleRows(path string) ([][rig.NumChannels]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][rig.NumChannels]int
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		line++
		if len(record) != rig.NumChannels {
			fmt.Printf("Skipping row %d: expected %d fields, got %d\n", line, rig.NumChannels, len(record))
			continue
		}
		var row [rig.NumChannels]int
		ok := true
		for i, field := range record {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				fmt.Printf("Skipping row %d: bad angle %q\n", line, field)
				ok = false
				break
			}
			row[i] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
