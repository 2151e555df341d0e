package eventlog

import (
	"bufio"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestFlushEveryTenEvents(t *testing.T) {
	dir, err := ioutil.TempDir("", "eventlog")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "events.json")

	l := New(path)
	for i := 0; i < 9; i++ {
		l.Append("button", map[string]interface{}{"n": i})
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("log flushed before reaching threshold")
	}
	l.Append("button", map[string]interface{}{"n": 9})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("log not flushed at threshold: %v", err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad log line: %v", err)
		}
		if ev.Type != "button" || ev.Timestamp == "" {
			t.Fatalf("unexpected event %#v", ev)
		}
		lines++
	}
	if lines != 10 {
		t.Fatalf("expected 10 events on disk, got %d", lines)
	}
}

func TestSnapshotAndClose(t *testing.T) {
	dir, err := ioutil.TempDir("", "eventlog")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "events.json")

	l := New(path)
	l.Append("mode", map[string]interface{}{"name": "Pad"})
	l.Append("speed", nil)

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 events in snapshot, got %d", len(snap))
	}

	l.Close()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("close did not flush: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty log after close")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Append("x", nil)
	l.Flush()
	if got := l.Snapshot(); got != nil {
		t.Fatalf("expected nil snapshot, got %v", got)
	}
}
