package surface

import (
	"image"
	"image/color"
	"math"
	"sort"
)

type colorStop struct {
	offset float64
	c      color.RGBA
}

// linearGradient is an image.Image in canvas coordinates whose color varies
// along the vector (x0,y0)->(x1,y1). Points are projected onto that vector
// and clamped to its ends.
type linearGradient struct {
	x0, y0 float64
	dx, dy float64
	len2   float64
	stops  []colorStop
}

func newLinearGradient(x0, y0, x1, y1 float64) *linearGradient {
	dx, dy := x1-x0, y1-y0
	return &linearGradient{x0: x0, y0: y0, dx: dx, dy: dy, len2: dx*dx + dy*dy}
}

// AddColorStop inserts a stop. Offsets outside [0, 1] are ignored; stops
// with equal offsets keep insertion order.
func (g *linearGradient) AddColorStop(offset float64, c color.Color) {
	if offset < 0 || offset > 1 || math.IsNaN(offset) {
		return
	}
	g.stops = append(g.stops, colorStop{offset: offset, c: color.RGBAModel.Convert(c).(color.RGBA)})
	sort.SliceStable(g.stops, func(i, j int) bool { return g.stops[i].offset < g.stops[j].offset })
}

func (g *linearGradient) ColorModel() color.Model { return color.RGBAModel }

func (g *linearGradient) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (g *linearGradient) At(x, y int) color.Color {
	if len(g.stops) == 0 || g.len2 == 0 {
		return color.RGBA{}
	}
	px := float64(x) + 0.5 - g.x0
	py := float64(y) + 0.5 - g.y0
	return g.colorAt((px*g.dx + py*g.dy) / g.len2)
}

func (g *linearGradient) colorAt(t float64) color.RGBA {
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if t <= first.offset {
		return first.c
	}
	if t >= last.offset {
		return last.c
	}
	for i := 1; i < len(g.stops); i++ {
		hi := g.stops[i]
		if t > hi.offset {
			continue
		}
		lo := g.stops[i-1]
		span := hi.offset - lo.offset
		if span <= 0 {
			return hi.c
		}
		return lerpRGBA(lo.c, hi.c, (t-lo.offset)/span)
	}
	return last.c
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
