package surface

import (
	"image"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/olivier-w/capviz/internal/visualizer"
	"golang.org/x/image/draw"
)

// Terminal presents a Canvas as terminal text sized to a cell grid.
//
// In color modes each cell is an upper half block "▀" with the top pixel as
// foreground and the bottom pixel as background, packing two pixel rows per
// terminal row. Without color each cell is a brightness character.
//
// Present may run on a worker goroutine while View and SetCells are called
// from the UI goroutine.
type Terminal struct {
	mode   ColorMode
	scaler draw.Scaler

	mu   sync.Mutex
	cols int
	rows int

	scaled *image.RGBA
	sb     strings.Builder
	out    atomic.Pointer[string]
}

// NewTerminal creates a presenter for the detected terminal color mode.
func NewTerminal() *Terminal {
	return NewTerminalMode(DetectColorMode())
}

// NewTerminalMode creates a presenter that emits the given color mode.
func NewTerminalMode(mode ColorMode) *Terminal {
	return &Terminal{mode: mode, scaler: draw.ApproxBiLinear}
}

// SetCells sets the output grid in terminal cells.
func (t *Terminal) SetCells(cols, rows int) {
	t.mu.Lock()
	t.cols, t.rows = max(cols, 0), max(rows, 0)
	t.mu.Unlock()
}

// PixelRows returns how many pixel rows a terminal row holds in this mode.
func (t *Terminal) PixelRows() int {
	if t.mode == ColorOff {
		return 1
	}
	return 2
}

// View returns the last presented frame.
func (t *Terminal) View() string {
	if s := t.out.Load(); s != nil {
		return *s
	}
	return ""
}

// Present renders s into the cell grid. Surfaces that do not expose an RGBA
// image are ignored.
func (t *Terminal) Present(s visualizer.Surface) {
	src, ok := s.(interface{ Image() *image.RGBA })
	if !ok {
		return
	}
	t.mu.Lock()
	cols, rows := t.cols, t.rows
	t.mu.Unlock()

	out := t.Render(src.Image(), cols, rows)
	t.out.Store(&out)
}

// Render scales img onto cols x rows cells and returns the text.
func (t *Terminal) Render(img *image.RGBA, cols, rows int) string {
	if img == nil || img.Rect.Empty() || cols <= 0 || rows <= 0 {
		return ""
	}

	pw, ph := cols, rows*t.PixelRows()
	if t.scaled == nil || t.scaled.Rect.Dx() != pw || t.scaled.Rect.Dy() != ph {
		t.scaled = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	t.scaler.Scale(t.scaled, t.scaled.Rect, img, img.Rect, draw.Src, nil)

	t.sb.Reset()
	t.sb.Grow(cols * rows * 24)
	if t.mode == ColorOff {
		t.renderASCII(cols, rows)
	} else {
		t.renderHalfBlock(cols, rows)
	}
	return t.sb.String()
}

func (t *Terminal) renderHalfBlock(cols, rows int) {
	var lastFg, lastBg string
	for row := range rows {
		for col := range cols {
			tr, tg, tb := t.pixel(col, row*2)
			br, bgc, bb := t.pixel(col, row*2+1)

			f := colorSeq(t.mode, fg, tr, tg, tb)
			b := colorSeq(t.mode, bg, br, bgc, bb)
			if f != lastFg {
				t.sb.WriteString(f)
				lastFg = f
			}
			if b != lastBg {
				t.sb.WriteString(b)
				lastBg = b
			}
			t.sb.WriteString("▀")
		}
		t.sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < rows-1 {
			t.sb.WriteByte('\n')
		}
	}
}

func (t *Terminal) renderASCII(cols, rows int) {
	for row := range rows {
		for col := range cols {
			r, g, b := t.pixel(col, row)
			t.sb.WriteByte(brightnessChar(luminance(r, g, b)))
		}
		if row < rows-1 {
			t.sb.WriteByte('\n')
		}
	}
}

// pixel reads a scaled pixel; transparent areas come out black.
func (t *Terminal) pixel(x, y int) (uint8, uint8, uint8) {
	off := t.scaled.PixOffset(x, y)
	p := t.scaled.Pix[off : off+3 : off+3]
	return p[0], p[1], p[2]
}
