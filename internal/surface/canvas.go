// Package surface provides an in-memory RGBA drawing surface with a small 2D
// context, and presenters that turn it into terminal text or PNG files.
package surface

import (
	"image"
	"image/color"

	"github.com/olivier-w/capviz/internal/visualizer"
	"golang.org/x/image/draw"
)

// Canvas is an RGBA drawing surface. Resizing reallocates and clears it.
type Canvas struct {
	img *image.RGBA
	ctx context2D
}

// New creates a transparent canvas of the given size.
func New(width, height int) *Canvas {
	c := &Canvas{}
	c.ctx.canvas = c
	c.SetSize(width, height)
	return c
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

func (c *Canvas) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (c *Canvas) Context() visualizer.Context2D { return &c.ctx }

// Image returns the backing image. It is only valid until the next SetSize.
func (c *Canvas) Image() *image.RGBA { return c.img }

type context2D struct {
	canvas *Canvas
	fill   image.Image
}

func (x *context2D) ClearRect(left, top, w, h int) {
	r := image.Rect(left, top, left+w, top+h).Intersect(x.canvas.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(x.canvas.img, r, image.Transparent, image.Point{}, draw.Src)
}

func (x *context2D) FillRect(left, top, w, h int) {
	if x.fill == nil {
		return
	}
	r := image.Rect(left, top, left+w, top+h).Intersect(x.canvas.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(x.canvas.img, r, x.fill, r.Min, draw.Over)
}

// SetFillStyle accepts a color.Color or a gradient from CreateLinearGradient.
// Anything else leaves the current style in place.
func (x *context2D) SetFillStyle(style visualizer.FillStyle) {
	switch s := style.(type) {
	case *linearGradient:
		if s != nil {
			x.fill = s
		}
	case color.Color:
		x.fill = image.NewUniform(s)
	}
}

func (x *context2D) CreateLinearGradient(x0, y0, x1, y1 int) visualizer.Gradient {
	return newLinearGradient(float64(x0), float64(y0), float64(x1), float64(y1))
}
