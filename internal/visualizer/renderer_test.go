package visualizer

import (
	"reflect"
	"testing"
)

func filled(n int, v byte) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestRenderFrameIsDeterministic(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(240, geom, 512)
	sample := make([]byte, 512)
	for i := range sample {
		sample[i] = byte(i * 7)
	}
	capsA := make([]int, layout.BarCount)
	capsB := make([]int, layout.BarCount)
	for i := range capsA {
		capsA[i] = i * 3
		capsB[i] = i * 3
	}

	a := RenderFrame(nil, sample, layout, capsA, geom, 240, 200)
	b := RenderFrame(nil, sample, layout, capsB, geom, 240, 200)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical command sequences")
	}
	if !reflect.DeepEqual(capsA, capsB) {
		t.Fatalf("expected identical caps, got %v and %v", capsA, capsB)
	}
}

func TestRenderFrameEmitsClearThenTwoRectsPerBar(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(120, geom, 512)
	caps := make([]int, layout.BarCount)

	cmds := RenderFrame(nil, filled(512, 128), layout, caps, geom, 120, 100)
	if len(cmds) != 1+2*layout.BarCount {
		t.Fatalf("expected %d commands, got %d", 1+2*layout.BarCount, len(cmds))
	}
	if cmds[0] != (DrawCommand{Op: OpClear, W: 120, H: 100}) {
		t.Fatalf("expected clear of drawable area first, got %+v", cmds[0])
	}
	// 128 * 100 / 256 = 50
	capCmd, body := cmds[1], cmds[2]
	if capCmd.Op != OpCap || capCmd.Y != 50 || capCmd.H != geom.CapHeight || capCmd.W != geom.BarWidth {
		t.Fatalf("unexpected cap command %+v", capCmd)
	}
	if body.Op != OpBody || body.Y != 100-50+geom.CapHeight || body.H != 50 {
		t.Fatalf("unexpected body command %+v", body)
	}
}

func TestRenderFramePitchUsesCapHeight(t *testing.T) {
	geom := DefaultGeometry()
	geom.Gap = 6
	layout := ComputeLayout(160, geom, 512)
	caps := make([]int, layout.BarCount)

	cmds := RenderFrame(nil, filled(512, 10), layout, caps, geom, 160, 100)
	for i := range layout.BarCount {
		want := i * (geom.BarWidth + geom.CapHeight)
		if got := cmds[1+2*i].X; got != want {
			t.Fatalf("bar %d: expected x %d, got %d", i, want, got)
		}
	}
}

func TestRenderFrameCapsFallOnePixelPerFrame(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(48, geom, 512)
	caps := []int{5, 3, 0, 1}
	silence := make([]byte, 512)

	want := [][]int{
		{4, 2, 0, 0},
		{3, 1, 0, 0},
		{2, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	for frame, exp := range want {
		cmds := RenderFrame(nil, silence, layout, caps, geom, 48, 100)
		if !reflect.DeepEqual(caps, exp) {
			t.Fatalf("frame %d: expected caps %v, got %v", frame, exp, caps)
		}
		for i := range layout.BarCount {
			if body := cmds[2+2*i]; body.H != 0 {
				t.Fatalf("frame %d bar %d: expected empty body, got %+v", frame, i, body)
			}
			if capCmd := cmds[1+2*i]; capCmd.Y != 100-caps[i] {
				t.Fatalf("frame %d bar %d: expected cap at %d, got %d", frame, i, 100-caps[i], capCmd.Y)
			}
		}
	}
}

func TestRenderFrameCapRisesInstantly(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(24, geom, 4)
	caps := []int{10, 200}

	// height 256: value v maps to v
	RenderFrame(nil, []byte{90, 90, 200, 200}, layout, caps, geom, 24, 256)
	if caps[0] != 90 {
		t.Fatalf("expected cap to jump to 90, got %d", caps[0])
	}
	if caps[1] != 200 {
		t.Fatalf("expected equal value to hold cap at 200, got %d", caps[1])
	}
}

func TestRenderFrameFullScale(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(600, geom, 512)
	caps := make([]int, layout.BarCount)

	RenderFrame(nil, filled(512, 255), layout, caps, geom, 600, 256)
	for i, c := range caps {
		if c != 255 {
			t.Fatalf("bar %d: expected cap 255, got %d", i, c)
		}
	}
}

func TestRenderFrameZeroBars(t *testing.T) {
	geom := DefaultGeometry()
	layout := ComputeLayout(0, geom, 512)
	cmds := RenderFrame(nil, filled(512, 255), layout, nil, geom, 0, 100)
	if len(cmds) != 1 || cmds[0].Op != OpClear {
		t.Fatalf("expected a lone clear command, got %+v", cmds)
	}
}

func TestRenderFrameGuardsShortSample(t *testing.T) {
	geom := DefaultGeometry()
	layout := BarLayout{BarCount: 8, BarWidth: geom.BarWidth, Gap: geom.Gap, StepSize: 2}
	caps := make([]int, 8)
	sample := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 255}

	RenderFrame(nil, sample, layout, caps, geom, 96, 256)
	// bars 5..7 read past the end and clamp to the last bin
	for i := 5; i < 8; i++ {
		if caps[i] != 255 {
			t.Fatalf("bar %d: expected clamped read of 255, got %d", i, caps[i])
		}
	}
	RenderFrame(nil, nil, layout, caps, geom, 96, 256)
	if caps[7] != 254 {
		t.Fatalf("expected empty sample to read as silence, got cap %d", caps[7])
	}
}

func TestRendererFrameResizesBeforeDrawing(t *testing.T) {
	s := newFakeSurface(0, 0)
	r := NewRenderer(s, DefaultGeometry(), nil)

	r.Frame(Dimensions{Width: 120, Height: 102}, filled(512, 255))
	if s.w != 120 || s.h != 102 {
		t.Fatalf("expected surface 120x102, got %dx%d", s.w, s.h)
	}
	if got := len(r.Caps()); got != 10 {
		t.Fatalf("expected 10 caps, got %d", got)
	}
	if s.gradients != 1 {
		t.Fatalf("expected one gradient, got %d", s.gradients)
	}
	if s.calls[0] != "clear 0 0 120 100" {
		t.Fatalf("expected clear of drawable area, got %q", s.calls[0])
	}
	if s.calls[1] != "fill color 0 1 10 2" || s.calls[2] != "fill gradient 0 3 10 99" {
		t.Fatalf("unexpected first bar calls %q %q", s.calls[1], s.calls[2])
	}
}

func TestRendererResizeResetsCaps(t *testing.T) {
	s := newFakeSurface(0, 0)
	r := NewRenderer(s, DefaultGeometry(), nil)
	r.Frame(Dimensions{Width: 120, Height: 100}, filled(512, 200))
	if r.Settled() {
		t.Fatal("expected raised caps")
	}

	if r.CheckResize(Dimensions{Width: 120, Height: 100}) {
		t.Fatal("expected unchanged dimensions to be a no-op")
	}

	if !r.CheckResize(Dimensions{Width: 300, Height: 80}) {
		t.Fatal("expected resize to be reported")
	}
	caps := r.Caps()
	if len(caps) != 25 {
		t.Fatalf("expected 25 caps after resize, got %d", len(caps))
	}
	for i, c := range caps {
		if c != 0 {
			t.Fatalf("cap %d: expected 0 after resize, got %d", i, c)
		}
	}
	if s.gradients != 2 {
		t.Fatalf("expected gradient rebuilt, got %d gradients", s.gradients)
	}
}

func TestRendererFirstFrameSizesStateForPresizedSurface(t *testing.T) {
	s := newFakeSurface(240, 100)
	r := NewRenderer(s, DefaultGeometry(), nil)

	if !r.CheckResize(Dimensions{Width: 240, Height: 100}) {
		t.Fatal("expected first check to initialise state")
	}
	if got := len(r.Caps()); got != 20 {
		t.Fatalf("expected 20 caps, got %d", got)
	}
}

func TestRendererZeroWidthDrawsNothing(t *testing.T) {
	s := newFakeSurface(0, 0)
	r := NewRenderer(s, DefaultGeometry(), nil)

	if !r.Frame(Dimensions{Width: 0, Height: 300}, filled(512, 255)) {
		t.Fatal("expected zero bars to be settled")
	}
	for _, c := range s.calls {
		if c[:4] == "fill" {
			t.Fatalf("expected no fills, got %q", c)
		}
	}
}

func TestRendererSettlesAfterSilence(t *testing.T) {
	s := newFakeSurface(0, 0)
	r := NewRenderer(s, DefaultGeometry(), nil)
	d := Dimensions{Width: 60, Height: 12}

	r.Frame(d, filled(512, 255)) // drawable 10 -> caps 9
	frames := 0
	for !r.Frame(d, make([]byte, 512)) {
		frames++
		if frames > 100 {
			t.Fatal("caps never settled")
		}
	}
	if frames != 8 {
		t.Fatalf("expected 8 unsettled frames before rest, got %d", frames)
	}
}
