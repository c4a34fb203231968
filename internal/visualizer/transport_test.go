package visualizer

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type countingPresenter struct {
	mu       sync.Mutex
	surfaces []Surface
	widths   []int
	gate     chan struct{}
}

func (p *countingPresenter) Present(s Surface) {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surfaces = append(p.surfaces, s)
	p.widths = append(p.widths, s.Width())
}

func (p *countingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.surfaces)
}

func TestDirectRendersAndPresents(t *testing.T) {
	s := newFakeSurface(0, 0)
	p := &countingPresenter{}
	src := &constSource{bins: 512, value: 255}
	d := NewDirect(NewSampler(src), NewRenderer(s, DefaultGeometry(), nil), p)

	if d.Frame(Dimensions{Width: 120, Height: 102}) {
		t.Fatal("expected raised caps to be unsettled")
	}
	if p.count() != 1 || p.surfaces[0] != Surface(s) {
		t.Fatal("expected the local surface to be presented once")
	}

	src.value = 0
	for range 98 {
		d.Frame(Dimensions{Width: 120, Height: 102})
	}
	if !d.Frame(Dimensions{Width: 120, Height: 102}) {
		t.Fatal("expected caps to settle after 99 silent frames")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("expected nil close error, got %v", err)
	}
}

func TestRemoteRendersOnTransferredSurface(t *testing.T) {
	s := newFakeSurface(0, 0)
	p := &countingPresenter{}
	r := NewRemote(s, NewSampler(&constSource{bins: 512, value: 128}), RemoteOptions{
		Geometry:  DefaultGeometry(),
		Presenter: p,
		QueueSize: 8,
	})

	r.Frame(Dimensions{Width: 120, Height: 100})
	r.Frame(Dimensions{Width: 240, Height: 100})
	if err := r.Close(); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}

	if p.count() != 2 {
		t.Fatalf("expected 2 presented frames, got %d", p.count())
	}
	for _, got := range p.surfaces {
		if got != Surface(s) {
			t.Fatal("expected worker to draw on the transferred surface")
		}
	}
	if p.widths[0] != 120 || p.widths[1] != 240 {
		t.Fatalf("expected frames in send order, got widths %v", p.widths)
	}
	if r.Frame(Dimensions{Width: 1, Height: 1}) != true {
		t.Fatal("expected closed transport to report settled")
	}
	if err := r.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on second close, got %v", err)
	}
}

func TestRemoteDropsFramesUnderBackpressure(t *testing.T) {
	p := &countingPresenter{gate: make(chan struct{})}
	r := NewRemote(newFakeSurface(0, 0), NewSampler(&constSource{bins: 512, value: 10}), RemoteOptions{
		Geometry:  DefaultGeometry(),
		Presenter: p,
		QueueSize: 1,
	})

	const sent = 20
	for range sent {
		r.Frame(Dimensions{Width: 120, Height: 100})
	}
	// At most one frame in the worker plus two queued slots.
	if r.Dropped() < sent-3 {
		t.Fatalf("expected at least %d dropped frames, got %d", sent-3, r.Dropped())
	}

	close(p.gate)
	if err := r.Close(); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}
	if got := uint64(p.count()) + r.Dropped(); got != sent {
		t.Fatalf("expected delivered+dropped == %d, got %d", sent, got)
	}
}

func TestRemoteCopiesSample(t *testing.T) {
	src := &constSource{bins: 4, value: 255}
	sampler := NewSampler(src)
	p := &countingPresenter{}
	s := newFakeSurface(0, 0)
	r := NewRemote(s, sampler, RemoteOptions{Geometry: DefaultGeometry(), Presenter: p, QueueSize: 4})

	r.Frame(Dimensions{Width: 12, Height: 258})
	// Overwrite the reusable buffer before the worker necessarily ran.
	src.value = 0
	sampler.Sample()
	r.Close()

	var fills int
	for _, c := range s.calls {
		if c == "fill gradient 0 3 10 255" {
			fills++
		}
	}
	if fills != 1 {
		t.Fatalf("expected full-height bar from the copied sample, got calls %v", s.calls)
	}
}

func TestRemoteBlockDeliversEveryFrame(t *testing.T) {
	p := &countingPresenter{}
	r := NewRemote(newFakeSurface(0, 0), NewSampler(&constSource{bins: 512, value: 10}), RemoteOptions{
		Geometry:  DefaultGeometry(),
		Presenter: p,
		QueueSize: 1,
		Block:     true,
	})

	const sent = 50
	for range sent {
		r.Frame(Dimensions{Width: 120, Height: 100})
	}
	if err := r.Close(); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}
	if p.count() != sent || r.Dropped() != 0 {
		t.Fatalf("expected %d presented and none dropped, got %d presented, %d dropped", sent, p.count(), r.Dropped())
	}
}

func waitRendered(t *testing.T, r *Remote, n uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.rendered.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("worker rendered %d frames, expected %d", r.rendered.Load(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRemoteSettledIgnoresStaleFlagWhileFramesQueued(t *testing.T) {
	src := &constSource{bins: 512, value: 0}
	p := &countingPresenter{gate: make(chan struct{})}
	r := NewRemote(newFakeSurface(0, 0), NewSampler(src), RemoteOptions{
		Geometry:  DefaultGeometry(),
		Presenter: p,
		QueueSize: 4,
	})
	dims := Dimensions{Width: 120, Height: 100}

	if r.Frame(dims) {
		t.Fatal("expected unsettled before the worker rendered anything")
	}
	p.gate <- struct{}{}
	waitRendered(t, r, 1)

	// Caught up, caps at rest and a silent sample.
	if !r.Frame(dims) {
		t.Fatal("expected settled once the worker caught up on silence")
	}

	// The worker is now stuck presenting frame 2; queue a loud frame and
	// then a silent one. The flag from frame 1 must not be trusted.
	src.value = 200
	if r.Frame(dims) {
		t.Fatal("expected unsettled with a loud sample")
	}
	src.value = 0
	if r.Frame(dims) {
		t.Fatal("expected unsettled while a loud frame is still queued")
	}

	for range 3 {
		p.gate <- struct{}{}
	}
	waitRendered(t, r, 4)
	if r.Frame(dims) {
		t.Fatal("expected caps raised by the loud frame to still be falling")
	}

	close(p.gate)
	if err := r.Close(); err != nil {
		t.Fatalf("expected clean close, got %v", err)
	}
}

func TestRemoteBlockSettlesWithoutRacingTheWorker(t *testing.T) {
	r := NewRemote(newFakeSurface(0, 0), NewSampler(&constSource{bins: 512, value: 0}), RemoteOptions{
		Geometry:  DefaultGeometry(),
		Presenter: &countingPresenter{},
		QueueSize: 2,
		Block:     true,
	})
	defer r.Close()

	dims := Dimensions{Width: 120, Height: 100}
	if r.Frame(dims) {
		t.Fatal("expected unsettled before the first frame was rendered")
	}
	if !r.Frame(dims) {
		t.Fatal("expected settled once the silent first frame was rendered")
	}
}
