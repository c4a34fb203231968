package visualizer

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrClosed is returned when a transport is used after Close.
var ErrClosed = errors.New("visualizer: transport closed")

// Transport delivers one sampled frame to a renderer.
type Transport interface {
	// Frame samples the spectrum and renders it at d. It reports whether
	// every cap is at rest once that frame is drawn.
	Frame(d Dimensions) (settled bool)
	Close() error
}

// Direct samples and renders on the caller's goroutine.
type Direct struct {
	sampler   *Sampler
	renderer  *Renderer
	presenter Presenter
}

// NewDirect wires a sampler straight into a renderer. presenter may be nil.
func NewDirect(sampler *Sampler, renderer *Renderer, presenter Presenter) *Direct {
	return &Direct{sampler: sampler, renderer: renderer, presenter: presenter}
}

func (d *Direct) Frame(dims Dimensions) bool {
	settled := d.renderer.Frame(dims, d.sampler.Sample())
	if d.presenter != nil {
		d.presenter.Present(d.renderer.Surface())
	}
	return settled
}

func (d *Direct) Close() error { return nil }

// FrameMessage is what the controller sends to the rendering worker.
type FrameMessage struct {
	Width  int
	Height int
	Sample []byte
}

// message is either the one-time surface handover or a frame.
type message struct {
	surface Surface
	seq     uint64
	frame   FrameMessage
}

// RemoteOptions configures a Remote transport.
type RemoteOptions struct {
	Geometry  Geometry
	Presenter Presenter
	QueueSize int
	// Block makes Frame wait for queue space instead of dropping, so every
	// drawn frame reaches the worker.
	Block  bool
	Logger *zap.Logger
}

// Remote samples on the caller's goroutine and renders on a worker goroutine
// that owns the surface. Unless Block is set frames are best effort: when
// the worker falls behind and the queue is full the frame is dropped.
type Remote struct {
	sampler *Sampler
	msgs    chan message
	done    chan struct{}
	log     *zap.Logger
	block   bool

	sent      uint64 // frames queued, owned by the controller
	rendered  atomic.Uint64
	drained   *sync.Cond
	settled   atomic.Bool
	dropped   atomic.Uint64
	closeOnce sync.Once
	closed    bool
}

// NewRemote starts the rendering worker and hands it surface. The caller
// must not touch surface afterwards. Frame and Close must be called from a
// single goroutine.
func NewRemote(surface Surface, sampler *Sampler, opts RemoteOptions) *Remote {
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Remote{
		sampler: sampler,
		msgs:    make(chan message, opts.QueueSize+1),
		done:    make(chan struct{}),
		log:     opts.Logger,
		block:   opts.Block,
		drained: sync.NewCond(&sync.Mutex{}),
	}

	w := &worker{
		geom:      opts.Geometry,
		presenter: opts.Presenter,
		log:       opts.Logger,
		settled:   &r.settled,
		rendered:  &r.rendered,
		drained:   r.drained,
	}
	go w.run(r.msgs, r.done)

	// The queue is empty here, so the handover never blocks and always
	// precedes the first frame.
	r.msgs <- message{surface: surface}
	return r
}

// Frame reports settled only once the worker has rendered every frame sent
// with the caps left at rest and the new sample is silent.
func (r *Remote) Frame(d Dimensions) bool {
	if r.closed {
		return true
	}
	sample := r.sampler.Sample()
	quiet := silent(sample)
	if r.block && quiet {
		// Only a silent frame can end the loop, so wait for the worker here
		// instead of racing it.
		r.drained.L.Lock()
		for r.rendered.Load() < r.sent {
			r.drained.Wait()
		}
		r.drained.L.Unlock()
	}
	// rendered is published after settled, so a caught-up worker's flag
	// belongs to the last frame sent.
	atRest := r.rendered.Load() == r.sent && r.settled.Load()

	msg := message{seq: r.sent + 1, frame: FrameMessage{
		Width:  d.Width,
		Height: d.Height,
		Sample: append([]byte(nil), sample...),
	}}
	if r.block {
		r.msgs <- msg
		r.sent++
	} else {
		select {
		case r.msgs <- msg:
			r.sent++
		default:
			n := r.dropped.Add(1)
			r.log.Debug("frame dropped", zap.Uint64("dropped", n))
		}
	}
	return atRest && quiet
}

func silent(sample []byte) bool {
	for _, v := range sample {
		if v != 0 {
			return false
		}
	}
	return true
}

// Dropped returns how many frames were discarded under backpressure.
func (r *Remote) Dropped() uint64 { return r.dropped.Load() }

// Close stops the worker after it drains queued frames.
func (r *Remote) Close() error {
	err := ErrClosed
	r.closeOnce.Do(func() {
		r.closed = true
		close(r.msgs)
		<-r.done
		err = nil
	})
	return err
}

type worker struct {
	geom      Geometry
	presenter Presenter
	log       *zap.Logger
	settled   *atomic.Bool
	rendered  *atomic.Uint64
	drained   *sync.Cond
	renderer  *Renderer
}

func (w *worker) run(msgs <-chan message, done chan<- struct{}) {
	defer close(done)
	for msg := range msgs {
		if msg.surface != nil {
			w.renderer = NewRenderer(msg.surface, w.geom, w.log)
			w.log.Debug("surface transferred to worker")
			continue
		}
		if w.renderer == nil {
			continue
		}
		f := msg.frame
		settled := w.renderer.Frame(Dimensions{Width: f.Width, Height: f.Height}, f.Sample)
		if w.presenter != nil {
			w.presenter.Present(w.renderer.Surface())
		}
		w.settled.Store(settled)
		w.drained.L.Lock()
		w.rendered.Store(msg.seq)
		w.drained.Broadcast()
		w.drained.L.Unlock()
	}
}
