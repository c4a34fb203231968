package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrFormatChanged is returned when a source does not match the format the
// process-wide output context was opened with.
var ErrFormatChanged = errors.New("audio: output already opened with a different format")

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
	otoRate    int
	otoChans   int
)

// oto allows one context per process, so the first source fixes the format.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoInitErr == nil {
			<-ready
			otoRate, otoChans = sampleRate, channels
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if sampleRate != otoRate || channels != otoChans {
		return nil, ErrFormatChanged
	}
	return otoCtx, nil
}

// Destination plays whatever source is connected to it on the sound card.
type Destination struct {
	mu     sync.Mutex
	src    *Source
	player *oto.Player
	volume float64
	paused bool
	closed bool
	done   chan struct{}
}

// NewDestination creates an idle output.
func (g *Graph) NewDestination() *Destination {
	return &Destination{volume: 0.8, done: make(chan struct{})}
}

func (d *Destination) attach(src *Source) error {
	ctx, err := initOto(src.SampleRate(), src.ChannelCount())
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.src != nil {
		return errors.New("destination already has a source")
	}
	d.src = src
	d.player = ctx.NewPlayer(src)
	d.player.SetVolume(d.volume)
	d.player.Play()
	go d.monitor(d.player, src, d.done)
	return nil
}

func (d *Destination) detach(*Source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		d.player.Pause()
		d.player = nil
	}
	d.src = nil
}

func (d *Destination) source() *Source {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.src
}

func (d *Destination) monitor(p *oto.Player, src *Source, done chan struct{}) {
	for {
		d.mu.Lock()
		stop := d.closed || d.player != p
		paused := d.paused
		d.mu.Unlock()
		if stop {
			return
		}
		if !paused && src.Ended() && !p.IsPlaying() {
			close(done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done closes when the connected source has been played to the end.
func (d *Destination) Done() <-chan struct{} { return d.done }

// TogglePause pauses or resumes output.
func (d *Destination) TogglePause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return
	}
	if d.paused {
		d.player.Play()
	} else {
		d.player.Pause()
	}
	d.paused = !d.paused
}

// Paused reports whether output is paused.
func (d *Destination) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// AdjustVolume changes volume by delta, clamped to [0, 1].
func (d *Destination) AdjustVolume(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = min(max(d.volume+delta, 0), 1)
	if d.player != nil {
		d.player.SetVolume(d.volume)
	}
}

// Volume returns the current volume.
func (d *Destination) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

// Close stops output for good.
func (d *Destination) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.player != nil {
		d.player.Pause()
		d.player = nil
	}
}
