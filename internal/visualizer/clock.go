package visualizer

import (
	"context"
	"time"
)

// Ticker is a wall-clock FrameRequester.
type Ticker struct {
	t *time.Ticker
}

// NewTicker fires every interval, or every millisecond when interval <= 0.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Ticker{t: time.NewTicker(interval)}
}

func (t *Ticker) WaitFrame(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case now := <-t.t.C:
		return now, nil
	}
}

func (t *Ticker) Stop() { t.t.Stop() }

// VirtualClock hands out frame times step apart without waiting, for
// rendering faster than real time.
type VirtualClock struct {
	now  time.Time
	step time.Duration
}

func NewVirtualClock(start time.Time, step time.Duration) *VirtualClock {
	return &VirtualClock{now: start, step: step}
}

func (c *VirtualClock) WaitFrame(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	c.now = c.now.Add(c.step)
	return c.now, nil
}
