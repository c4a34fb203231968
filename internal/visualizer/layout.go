package visualizer

import "image/color"

// Geometry holds the fixed bar constants in surface pixels.
type Geometry struct {
	BarWidth  int
	Gap       int
	CapHeight int
	CapColor  color.RGBA
}

// DefaultGeometry returns 10px bars with a 2px gap and a 2px light grey cap.
func DefaultGeometry() Geometry {
	return Geometry{
		BarWidth:  10,
		Gap:       2,
		CapHeight: 2,
		CapColor:  color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
	}
}

// BarLayout maps bars onto a frequency sample of a given length.
type BarLayout struct {
	BarCount int
	BarWidth int
	Gap      int
	StepSize int
}

// ComputeLayout returns how many bars fit in width and which sample index
// each bar reads (bar i reads i*StepSize). It is a pure function of its
// arguments.
func ComputeLayout(width int, geom Geometry, sampleLength int) BarLayout {
	l := BarLayout{BarWidth: geom.BarWidth, Gap: geom.Gap, StepSize: 1}
	unit := geom.BarWidth + geom.Gap
	if width <= 0 || unit <= 0 {
		return l
	}
	l.BarCount = width / unit
	if l.BarCount > 0 && sampleLength > 0 {
		// round(sampleLength / BarCount), halves rounding up
		l.StepSize = (2*sampleLength + l.BarCount) / (2 * l.BarCount)
		if l.StepSize < 1 {
			l.StepSize = 1
		}
	}
	return l
}

// SampleIndex returns the sample index bar i reads, clamped to the sample.
func (l BarLayout) SampleIndex(i, sampleLength int) int {
	idx := i * l.StepSize
	if idx >= sampleLength {
		idx = sampleLength - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
