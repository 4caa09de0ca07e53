// Package display adapts the hackvm core's memory-mapped screen and
// keyboard surface to a real window and keyboard backend, the way the
// teacher's pixel package adapted a CHIP-8 framebuffer. It is a reference
// host only: internal/hackvm never imports this package.
package display

import (
	"fmt"
	"time"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/nand2emu/hackvm/internal/hackvm"
)

const (
	screenCols = hackvm.ScreenCols // 512
	screenRows = hackvm.ScreenRows // 256

	windowScale  = 2
	windowWidth  = screenCols * windowScale
	windowHeight = screenRows * windowScale
)

// Window embeds a pixelgl window sized to the Hack platform's 512x256
// screen region (scaled up for visibility) and tracks the single
// currently-pressed key, mirroring the Hack keyboard register's
// one-code-at-a-time convention (spec §3, §6).
type Window struct {
	*pixelgl.Window
	keyMap     map[pixelgl.Button]int16
	pressedKey int16
}

// NewWindow creates a pixelgl window and the Hack keyboard-code key map.
func NewWindow() (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "hackvm",
		Bounds: pixel.R(0, 0, windowWidth, windowHeight),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	return &Window{
		Window: w,
		keyMap: buildKeyMap(),
	}, nil
}

// buildKeyMap maps pixelgl buttons to Hack keyboard codes (spec §6):
// printable ASCII matches directly, named specials occupy 128..152.
func buildKeyMap() map[pixelgl.Button]int16 {
	m := map[pixelgl.Button]int16{
		pixelgl.KeyEnter:     128,
		pixelgl.KeyBackspace: 129,
		pixelgl.KeyLeft:      130,
		pixelgl.KeyUp:        131,
		pixelgl.KeyRight:     132,
		pixelgl.KeyDown:      133,
		pixelgl.KeyHome:      134,
		pixelgl.KeyEnd:       135,
		pixelgl.KeyPageUp:    136,
		pixelgl.KeyPageDown:  137,
		pixelgl.KeyInsert:    138,
		pixelgl.KeyDelete:    139,
		pixelgl.KeyEscape:    140,
		pixelgl.KeyF1:        141,
		pixelgl.KeyF2:        142,
		pixelgl.KeyF3:        143,
		pixelgl.KeyF4:        144,
		pixelgl.KeyF5:        145,
		pixelgl.KeyF6:        146,
		pixelgl.KeyF7:        147,
		pixelgl.KeyF8:        148,
		pixelgl.KeyF9:        149,
		pixelgl.KeyF10:       150,
		pixelgl.KeyF11:       151,
		pixelgl.KeyF12:       152,
		pixelgl.KeySpace:     32,
	}
	for r := 'A'; r <= 'Z'; r++ {
		m[pixelgl.Button(pixelgl.KeyA)+pixelgl.Button(r-'A')] = int16(r)
	}
	for d := pixelgl.Key0; d <= pixelgl.Key9; d++ {
		m[d] = int16('0' + (d - pixelgl.Key0))
	}
	return m
}

// HandleKeyInput polls the window for the first pressed key and updates
// PressedKeyCode; it should be called once per host tick alongside the
// emulator's own Tick, the same cadence the teacher used for its 16-key pad.
func (w *Window) HandleKeyInput() {
	for btn, code := range w.keyMap {
		if w.Pressed(btn) {
			w.pressedKey = code
			return
		}
	}
	w.pressedKey = 0
}

// PressedKeyCode returns the Hack keyboard code for the currently-held key,
// or 0 if none, for the host to forward to VM.SetKeyboard.
func (w *Window) PressedKeyCode() int16 {
	return w.pressedKey
}

// Blit implements hackvm.ScreenSink: it renders a full-frame snapshot as a
// grid of rectangles, the same shape as the teacher's DrawGraphics.
func (w *Window) Blit(frame *hackvm.ScreenFrame) {
	w.Clear(colornames.White)
	imDraw := imdraw.New(nil)
	imDraw.Color = pixel.RGB(0, 0, 0)

	for y := 0; y < screenRows; y++ {
		for x := 0; x < screenCols; x++ {
			if !frame.Pixels[y][x] {
				continue
			}
			// Flip vertically: pixel.V is bottom-left origin, the screen
			// region's row 0 is the top of the display (spec §6).
			py := screenRows - 1 - y
			imDraw.Push(pixel.V(float64(x*windowScale), float64(py*windowScale)))
			imDraw.Push(pixel.V(float64(x*windowScale+windowScale), float64(py*windowScale+windowScale)))
			imDraw.Rectangle(0)
		}
	}

	imDraw.Draw(w)
	w.Update()
}

// RefreshRate is the default host tick cadence (spec §4.9 `--refresh-hz`).
const RefreshRate = 60

// NewTicker is a small convenience matching the teacher's
// `time.NewTicker(time.Second / refreshRate)` pattern.
func NewTicker(hz int) *time.Ticker {
	return time.NewTicker(time.Second / time.Duration(hz))
}
