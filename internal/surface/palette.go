package surface

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// asciiRamp is used when the terminal has no color: darkest to brightest.
const asciiRamp = " .:-=+*#%@"

const ansiReset = "\x1b[0m"

// ColorMode describes how the terminal presenter emits colors.
type ColorMode uint8

const (
	ColorOff     ColorMode = iota // NO_COLOR or dumb terminal
	ColorANSI16                   // basic 16-color
	ColorANSI256                  // 256-color
	ColorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  ColorMode
	seqCache   sync.Map
)

// DetectColorMode inspects NO_COLOR, COLORTERM and TERM once per process.
func DetectColorMode() ColorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termColor = ColorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termColor = ColorTrue
		case strings.Contains(term, "256color"):
			termColor = ColorANSI256
		case term == "dumb":
			termColor = ColorOff
		case term == "" && runtime.GOOS == "windows":
			termColor = ColorANSI16
		case term == "":
			termColor = ColorOff
		default:
			termColor = ColorANSI16
		}
	})
	return termColor
}

type layer uint8

const (
	fg layer = iota
	bg
)

// colorSeq returns the escape selecting r,g,b for the given layer, or "" when
// colors are off. Sequences are cached per mode, layer and color.
func colorSeq(mode ColorMode, l layer, r, g, b uint8) string {
	if mode == ColorOff {
		return ""
	}
	key := uint32(mode)<<26 | uint32(l)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	base := 38
	if l == bg {
		base = 48
	}
	var seq string
	switch mode {
	case ColorTrue:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, r, g, b)
	case ColorANSI256:
		idx := 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", base, idx)
	case ColorANSI16:
		best := nearestANSI16(r, g, b)
		code := base - 8 + best // 30..37 or 40..47
		if best >= 8 {
			code = base + 52 + best - 8 // 90..97 or 100..107
		}
		seq = fmt.Sprintf("\x1b[%dm", code)
	}
	seqCache.Store(key, seq)
	return seq
}

func nearestANSI16(r, g, b uint8) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// brightnessChar maps a 0-255 luminance to an ASCII character.
func brightnessChar(lum uint8) byte {
	return asciiRamp[int(lum)*(len(asciiRamp)-1)/255]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
