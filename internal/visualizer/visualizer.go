// Package visualizer draws frequency bars with falling peak caps onto a
// drawing surface, either directly from the caller's loop or from a worker
// goroutine that owns the surface.
package visualizer

import "image/color"

// DefaultBinCount is the frequency bin count of a 1024-point analyser.
const DefaultBinCount = 512

// FrequencySource fills a byte slice with frequency magnitudes (0-255).
type FrequencySource interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// FillStyle is either a color.Color or a Gradient created by the same Context2D.
type FillStyle any

// Gradient is a linear color ramp usable as a FillStyle.
type Gradient interface {
	AddColorStop(offset float64, c color.Color)
}

// Context2D is the subset of a 2D drawing context the renderer needs.
type Context2D interface {
	ClearRect(x, y, w, h int)
	FillRect(x, y, w, h int)
	SetFillStyle(style FillStyle)
	CreateLinearGradient(x0, y0, x1, y1 int) Gradient
}

// Surface is a resizable drawing target. Setting its size clears it.
type Surface interface {
	Width() int
	Height() int
	SetSize(width, height int)
	Context() Context2D
}

// Presenter receives the surface after every drawn frame.
type Presenter interface {
	Present(s Surface)
}

// Dimensions is a width/height pair in surface pixels.
type Dimensions struct {
	Width  int
	Height int
}

// DesiredDimensions returns the surface size for a viewport, leaving room for
// the controls area below the bars.
func DesiredDimensions(viewportWidth, viewportHeight, controlsHeight int) Dimensions {
	d := Dimensions{Width: viewportWidth, Height: viewportHeight - controlsHeight}
	if d.Width < 0 {
		d.Width = 0
	}
	if d.Height < 0 {
		d.Height = 0
	}
	return d
}
