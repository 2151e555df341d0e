package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player plays one WAV at a time; a new request cancels whatever is
// still playing.  Send file names (relative to the sounds dir) on the
// returned channel.
func Start(soundsDir string) chan string {
	soundsToPlay := make(chan string)
	go func() {
		defer func() {
			recover()
			for s := range soundsToPlay {
				fmt.Println("Unable to play", s)
			}
		}()
		sampleRate := beep.SampleRate(44100)
		err := speaker.Init(sampleRate, sampleRate.N(time.Second/5))
		if err != nil {
			fmt.Println("Failed to open speaker", err)
			for s := range soundsToPlay {
				fmt.Println("Unable to play", s)
			}
		}
		var ctrl *beep.Ctrl
		var s beep.StreamSeekCloser
		for soundToPlay := range soundsToPlay {
			if ctrl != nil {
				speaker.Lock()
				ctrl.Paused = true
				ctrl.Streamer = nil
				speaker.Unlock()
				ctrl = nil
			}
			if s != nil {
				s.Close()
			}

			f, err := os.Open(filepath.Join(soundsDir, soundToPlay))
			if err != nil {
				fmt.Println("Failed to open sound", err)
				continue
			}
			s, _, err = wav.Decode(f)
			if err != nil {
				fmt.Println("Failed to decode sound", err)
				continue
			}
			ctrl = &beep.Ctrl{Streamer: s}
			speaker.Play(ctrl)
		}
	}()
	return soundsToPlay
}
