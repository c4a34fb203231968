package visualizer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	floorColor = color.RGBA{R: 0xff, A: 0xff}
	midColor   = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	topColor   = color.RGBA{G: 0xff, A: 0xff}
)

// newBarGradient builds the vertical ramp spanning the full surface height:
// red at the floor, yellow halfway, green at the top.
func newBarGradient(ctx Context2D, height int) Gradient {
	g := ctx.CreateLinearGradient(0, 0, 0, height)
	g.AddColorStop(1, floorColor)
	g.AddColorStop(0.5, midColor)
	g.AddColorStop(0, topColor)
	return g
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
