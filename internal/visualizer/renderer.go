package visualizer

import "go.uber.org/zap"

// DrawOp identifies what a DrawCommand paints.
type DrawOp uint8

const (
	OpClear DrawOp = iota // clear the rectangle
	OpCap                 // solid cap color
	OpBody                // bar gradient
)

// DrawCommand is one rectangle operation of a frame.
type DrawCommand struct {
	Op   DrawOp
	X, Y int
	W, H int
}

// RenderFrame computes one frame of bars. caps must have layout.BarCount
// entries and is updated in place; height is the drawable height (surface
// height minus the cap thickness). Commands are appended to dst.
//
// A cap that sits above the current bar falls by one pixel per frame; a bar
// that reaches or passes its cap pushes the cap up immediately.
func RenderFrame(dst []DrawCommand, sample []byte, layout BarLayout, caps []int, geom Geometry, width, height int) []DrawCommand {
	dst = append(dst, DrawCommand{Op: OpClear, W: width, H: height})

	bars := layout.BarCount
	if bars > len(caps) {
		bars = len(caps)
	}
	pitch := geom.BarWidth + geom.CapHeight

	for i := range bars {
		var value int
		if len(sample) > 0 {
			value = int(sample[layout.SampleIndex(i, len(sample))]) * height / 256
		}

		capPos := value
		if value < caps[i] {
			caps[i]--
			capPos = caps[i]
		} else {
			caps[i] = value
		}

		x := i * pitch
		dst = append(dst,
			DrawCommand{Op: OpCap, X: x, Y: height - capPos, W: geom.BarWidth, H: geom.CapHeight},
			DrawCommand{Op: OpBody, X: x, Y: height - value + geom.CapHeight, W: geom.BarWidth, H: value},
		)
	}
	return dst
}

// Renderer owns a surface and the animation state drawn onto it. It is not
// safe for concurrent use; exactly one goroutine drives it.
type Renderer struct {
	surface   Surface
	ctx       Context2D
	geom      Geometry
	log       *zap.Logger
	ready     bool
	sampleLen int
	layout    BarLayout
	caps      []int
	gradient  Gradient
	cmds      []DrawCommand
}

// NewRenderer creates a renderer for s. State is sized on the first frame.
func NewRenderer(s Surface, geom Geometry, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		surface:   s,
		ctx:       s.Context(),
		geom:      geom,
		log:       log,
		sampleLen: DefaultBinCount,
	}
}

// Surface returns the surface the renderer draws on.
func (r *Renderer) Surface() Surface { return r.surface }

// Layout returns the layout of the last drawn frame.
func (r *Renderer) Layout() BarLayout { return r.layout }

// Caps returns a copy of the current cap positions.
func (r *Renderer) Caps() []int {
	out := make([]int, len(r.caps))
	copy(out, r.caps)
	return out
}

// Settled reports whether every cap has fallen to the floor.
func (r *Renderer) Settled() bool {
	for _, c := range r.caps {
		if c != 0 {
			return false
		}
	}
	return true
}

// Frame runs the resize check and draws sample. It returns Settled().
func (r *Renderer) Frame(d Dimensions, sample []byte) bool {
	r.CheckResize(d)
	r.Draw(sample)
	return r.Settled()
}

// Draw renders sample with the current layout and replays the commands on
// the surface context.
func (r *Renderer) Draw(sample []byte) {
	if !r.ready {
		r.reset()
	}
	width := r.surface.Width()
	height := r.drawableHeight()

	r.sampleLen = len(sample)
	r.layout = ComputeLayout(width, r.geom, r.sampleLen)
	if len(r.caps) != r.layout.BarCount {
		r.caps = make([]int, r.layout.BarCount)
	}

	r.cmds = RenderFrame(r.cmds[:0], sample, r.layout, r.caps, r.geom, width, height)
	r.replay()
}

func (r *Renderer) replay() {
	for _, c := range r.cmds {
		switch c.Op {
		case OpClear:
			r.ctx.ClearRect(c.X, c.Y, c.W, c.H)
		case OpCap:
			r.ctx.SetFillStyle(r.geom.CapColor)
			r.ctx.FillRect(c.X, c.Y, c.W, c.H)
		case OpBody:
			if c.H <= 0 {
				continue
			}
			r.ctx.SetFillStyle(r.gradient)
			r.ctx.FillRect(c.X, c.Y, c.W, c.H)
		}
	}
}

func (r *Renderer) drawableHeight() int {
	h := r.surface.Height() - r.geom.CapHeight
	if h < 0 {
		return 0
	}
	return h
}
