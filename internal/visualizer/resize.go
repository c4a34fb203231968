package visualizer

import "go.uber.org/zap"

// CheckResize compares d with the surface's current size and, on change (or
// before the first frame), resizes the surface, recomputes the layout, resets
// every cap to zero and rebuilds the gradient. It reports whether anything
// was reset.
func (r *Renderer) CheckResize(d Dimensions) bool {
	if d.Width < 0 {
		d.Width = 0
	}
	if d.Height < 0 {
		d.Height = 0
	}
	if r.ready && r.surface.Width() == d.Width && r.surface.Height() == d.Height {
		return false
	}

	r.log.Debug("surface resized",
		zap.Int("old_width", r.surface.Width()),
		zap.Int("old_height", r.surface.Height()),
		zap.Int("width", d.Width),
		zap.Int("height", d.Height),
	)
	r.surface.SetSize(d.Width, d.Height)
	r.reset()
	return true
}

// reset rebuilds all size-dependent state from the surface's current size.
func (r *Renderer) reset() {
	r.layout = ComputeLayout(r.surface.Width(), r.geom, r.sampleLen)
	r.caps = make([]int, r.layout.BarCount)
	r.gradient = newBarGradient(r.ctx, r.surface.Height())
	r.ready = true
}
