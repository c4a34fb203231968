package visualizer

import (
	"context"
	"sync/atomic"
	"time"
)

// Mode selects when the scheduler keeps requesting frames.
type Mode uint8

const (
	// Continuous renders forever.
	Continuous Mode = iota
	// SettleAndStop renders while enabled or while any cap is still falling.
	SettleAndStop
)

// ParseMode maps "continuous" and "settle" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "continuous":
		return Continuous, true
	case "settle", "settle-and-stop":
		return SettleAndStop, true
	}
	return Continuous, false
}

func (m Mode) String() string {
	if m == SettleAndStop {
		return "settle"
	}
	return "continuous"
}

// RenderFunc draws one frame and reports whether every cap is at rest.
type RenderFunc func() (settled bool)

// FrameRequester blocks until the next frame slot and returns its time.
type FrameRequester interface {
	WaitFrame(ctx context.Context) (time.Time, error)
}

// Scheduler paces a RenderFunc to a maximum frame rate and decides whether
// another frame should be requested. Tick and Start belong to the loop's
// goroutine; SetEnabled may be called from anywhere.
type Scheduler struct {
	mode     Mode
	interval time.Duration
	render   RenderFunc
	enabled  atomic.Bool

	running  bool
	settled  bool
	lastDraw time.Time
	frames   uint64
}

// NewScheduler creates a stopped scheduler. fps <= 0 disables throttling.
func NewScheduler(mode Mode, fps int, render RenderFunc) *Scheduler {
	s := &Scheduler{mode: mode, render: render}
	if fps > 0 {
		s.interval = time.Second / time.Duration(fps)
	}
	return s
}

// Interval returns the minimum time between drawn frames.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Mode returns the continuation policy.
func (s *Scheduler) Mode() Mode { return s.mode }

// SetEnabled records whether the visualization is switched on.
func (s *Scheduler) SetEnabled(on bool) { s.enabled.Store(on) }

// Enabled reports the last value passed to SetEnabled.
func (s *Scheduler) Enabled() bool { return s.enabled.Load() }

// Running reports whether the loop expects further ticks.
func (s *Scheduler) Running() bool { return s.running }

// Frames returns how many frames have been drawn.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Start arms the loop. It returns false if the loop was already running, in
// which case the caller must not request another tick chain.
func (s *Scheduler) Start() bool {
	if s.running {
		return false
	}
	s.running = true
	s.settled = false
	return true
}

// Tick handles one frame slot at now and reports whether the next slot
// should be requested. Slots arriving sooner than the interval after the
// last drawn frame are skipped but still continue the loop.
func (s *Scheduler) Tick(now time.Time) bool {
	if !s.running {
		return false
	}
	if s.frames == 0 || now.Sub(s.lastDraw) >= s.interval {
		s.lastDraw = now
		s.settled = s.render()
		s.frames++
	}
	if s.mode == Continuous || s.enabled.Load() || !s.settled {
		return true
	}
	s.running = false
	return false
}

// Run starts the loop if needed and ticks it from req until the loop stops,
// ctx is cancelled or req fails.
func (s *Scheduler) Run(ctx context.Context, req FrameRequester) error {
	s.Start()
	for {
		now, err := req.WaitFrame(ctx)
		if err != nil {
			s.running = false
			return err
		}
		if !s.Tick(now) {
			return nil
		}
	}
}
