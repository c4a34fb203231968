package visualizer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"
)

type fakeGradient struct {
	stops []float64
}

func (g *fakeGradient) AddColorStop(offset float64, c color.Color) {
	g.stops = append(g.stops, offset)
}

// fakeSurface records every call made on its context.
type fakeSurface struct {
	w, h      int
	resizes   int
	gradients int
	style     FillStyle
	calls     []string
}

func newFakeSurface(w, h int) *fakeSurface { return &fakeSurface{w: w, h: h} }

func (s *fakeSurface) Width() int  { return s.w }
func (s *fakeSurface) Height() int { return s.h }

func (s *fakeSurface) SetSize(w, h int) {
	s.w, s.h = w, h
	s.resizes++
}

func (s *fakeSurface) Context() Context2D { return s }

func (s *fakeSurface) ClearRect(x, y, w, h int) {
	s.calls = append(s.calls, fmt.Sprintf("clear %d %d %d %d", x, y, w, h))
}

func (s *fakeSurface) FillRect(x, y, w, h int) {
	kind := "color"
	if _, ok := s.style.(Gradient); ok {
		kind = "gradient"
	}
	s.calls = append(s.calls, fmt.Sprintf("fill %s %d %d %d %d", kind, x, y, w, h))
}

func (s *fakeSurface) SetFillStyle(style FillStyle) { s.style = style }

func (s *fakeSurface) CreateLinearGradient(x0, y0, x1, y1 int) Gradient {
	s.gradients++
	return &fakeGradient{}
}

func (s *fakeSurface) reset() { s.calls = nil }

// constSource fills every bin with the same value.
type constSource struct {
	bins  int
	value byte
}

func (c *constSource) FrequencyBinCount() int { return c.bins }

func (c *constSource) ByteFrequencyData(dst []byte) {
	for i := range dst {
		dst[i] = c.value
	}
}

// stepRequester hands out frame times spaced by step, count times.
type stepRequester struct {
	now   time.Time
	step  time.Duration
	count int
}

var errNoMoreFrames = errors.New("no more frames")

func (r *stepRequester) WaitFrame(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if r.count == 0 {
		return time.Time{}, errNoMoreFrames
	}
	r.count--
	r.now = r.now.Add(r.step)
	return r.now, nil
}
