package screen

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"
)

// State is what the status display renders each frame.
type State struct {
	Positions [4]int
	Hold      [4]bool
	Locked    bool
	Speed     float64
}

var (
	lock sync.Mutex

	modeName    string
	notice      string
	stateSource func() State
)

func SetMode(name string) {
	lock.Lock()
	modeName = name
	lock.Unlock()
}

func SetNotice(msg string) {
	lock.Lock()
	notice = msg
	lock.Unlock()
}

func ClearNotice() {
	lock.Lock()
	notice = ""
	lock.Unlock()
}

// SetStateSource registers the callback used to sample servo state on
// each redraw.
func SetStateSource(f func() State) {
	lock.Lock()
	stateSource = f
	lock.Unlock()
}

func LoopUpdatingScreen(ctx context.Context) {
	f, err := os.OpenFile("/dev/fb1", os.O_RDWR, 0666)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring")
		return
	}

	for range time.NewTicker(500 * time.Millisecond).C {
		if ctx.Err() != nil {
			var buf [128 * 128 * 2]byte
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(buf[:])
			return
		}
		const S = 128
		dc := gg.NewContext(S, S)
		dc.SetRGBA(1, 0.9, 0, 1)

		lock.Lock()
		mode := modeName
		msg := notice
		src := stateSource
		lock.Unlock()

		dc.DrawString(mode, 4, 12)
		if msg != "" {
			drawWarning(dc, msg)
		}

		if src != nil {
			st := src()
			for n := 0; n < 4; n++ {
				drawServoBar(dc, n, st.Positions[n], st.Hold[n])
			}
			dc.SetRGBA(1, 0.9, 0, 1)
			dc.DrawString(fmt.Sprintf("SPD %.1f", st.Speed), 4, 124)
			if st.Locked {
				dc.SetRGBA(1, 0.2, 0, 1)
				dc.DrawString("LOCKED", 70, 124)
			}
		}

		var buf [128 * 128 * 2]byte
		for y := 0; y < S; y++ {
			for x := 0; x < S; x++ {
				c := dc.Image().At(x, y)
				r, g, b, _ := c.RGBA() // 16-bit pre-multiplied

				rb := byte(r >> (16 - 5))
				gb := byte(g >> (16 - 6)) // Green has 6 bits
				bb := byte(b >> (16 - 5))

				buf[(127-y)*2+(x)*128*2+1] = (rb << 3) | (gb >> 3)
				buf[(127-y)*2+(x)*128*2] = bb | (gb << 5)
			}
		}
		_, err = f.Seek(0, 0)
		if err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}

		for i := 0; i < 128; i++ {
			_, err = f.Write(buf[i*256 : i*256+256])
			if err != nil {
				fmt.Println("Screen failure: ", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}

// drawServoBar renders one horizontal bar, 0 to 180 degrees left to
// right, with the channel number and angle alongside.
func drawServoBar(dc *gg.Context, n, angle int, held bool) {
	y := float64(24 + n*20)
	if held {
		dc.SetRGBA(1, 0.2, 0, 1)
	} else {
		dc.SetRGBA(1, 0.9, 0, 1)
	}
	dc.DrawString(fmt.Sprintf("%d", n), 4, y+10)
	dc.DrawRectangle(14, y, 80, 12)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 1)
	w := float64(angle) * 76 / 180
	dc.DrawRectangle(16+w, y+2, 76-w, 8)
	dc.Fill()
	if held {
		dc.SetRGBA(1, 0.2, 0, 1)
	} else {
		dc.SetRGBA(1, 0.9, 0, 1)
	}
	dc.DrawString(fmt.Sprintf("%3d", angle), 98, y+10)
}

func drawWarning(dc *gg.Context, msg string) {
	dc.Push()
	dc.Translate(110, 8)
	dc.SetRGB(1, 0.2, 0)
	dc.DrawRegularPolygon(3, 0, 0, 8, 0)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString("!", -2, 3)
	dc.Pop()
	dc.SetRGB(1, 0.2, 0)
	dc.DrawString(msg, 4, 118)
}
