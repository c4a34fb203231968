package visualizer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSchedulerThrottlesToFPS(t *testing.T) {
	draws := 0
	s := NewScheduler(Continuous, 50, func() bool {
		draws++
		return true
	})
	if s.Interval() != 20*time.Millisecond {
		t.Fatalf("expected 20ms interval, got %v", s.Interval())
	}

	req := &stepRequester{now: time.Unix(0, 0), step: 5 * time.Millisecond, count: 40}
	err := s.Run(context.Background(), req)
	if !errors.Is(err, errNoMoreFrames) {
		t.Fatalf("expected requester error, got %v", err)
	}
	// 40 slots over 200ms at 20ms per frame
	if draws != 10 {
		t.Fatalf("expected 10 draws, got %d", draws)
	}
	if s.Running() {
		t.Fatal("expected loop to be stopped after requester failure")
	}
}

func TestSchedulerZeroFPSDrawsEveryTick(t *testing.T) {
	draws := 0
	s := NewScheduler(Continuous, 0, func() bool { draws++; return true })
	s.Start()
	now := time.Unix(0, 0)
	for range 5 {
		s.Tick(now)
	}
	if draws != 5 {
		t.Fatalf("expected 5 draws, got %d", draws)
	}
}

func TestSchedulerContinuousIgnoresSettledState(t *testing.T) {
	s := NewScheduler(Continuous, 0, func() bool { return true })
	s.SetEnabled(false)
	s.Start()
	for i := range 10 {
		if !s.Tick(time.Unix(int64(i), 0)) {
			t.Fatalf("tick %d: expected continuous mode to keep going", i)
		}
	}
}

func TestSchedulerSettleAndStopKeepsGoingWhileEnabled(t *testing.T) {
	s := NewScheduler(SettleAndStop, 0, func() bool { return true })
	s.SetEnabled(true)
	s.Start()
	for i := range 10 {
		if !s.Tick(time.Unix(int64(i), 0)) {
			t.Fatalf("tick %d: expected enabled loop to continue", i)
		}
	}
}

func TestSchedulerSettleAndStopStopsAfterFirstSettledFrame(t *testing.T) {
	caps := 3
	draws := 0
	s := NewScheduler(SettleAndStop, 0, func() bool {
		draws++
		if caps > 0 {
			caps--
		}
		return caps == 0
	})
	s.SetEnabled(false)

	req := &stepRequester{now: time.Unix(0, 0), step: time.Millisecond, count: 100}
	if err := s.Run(context.Background(), req); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if draws != 3 {
		t.Fatalf("expected 3 frames before stopping, got %d", draws)
	}
	if s.Running() {
		t.Fatal("expected loop to be stopped")
	}
	if s.Tick(time.Unix(10, 0)) {
		t.Fatal("expected stopped loop to reject ticks")
	}
	if draws != 3 {
		t.Fatalf("expected no frames after stop, got %d", draws)
	}
}

func TestSchedulerRestartsOnEnable(t *testing.T) {
	settled := true
	s := NewScheduler(SettleAndStop, 0, func() bool { return settled })
	s.Start()
	if s.Tick(time.Unix(1, 0)) {
		t.Fatal("expected disabled settled loop to stop")
	}

	s.SetEnabled(true)
	if !s.Start() {
		t.Fatal("expected Start to re-arm a stopped loop")
	}
	if s.Start() {
		t.Fatal("expected second Start to report an already running loop")
	}
	if !s.Tick(time.Unix(2, 0)) {
		t.Fatal("expected enabled loop to continue")
	}

	s.SetEnabled(false)
	settled = false
	if !s.Tick(time.Unix(3, 0)) {
		t.Fatal("expected loop to keep animating while caps fall")
	}
	settled = true
	if s.Tick(time.Unix(4, 0)) {
		t.Fatal("expected loop to stop once caps settle")
	}
}

func TestSchedulerSkippedTickKeepsLastSettledState(t *testing.T) {
	draws := 0
	s := NewScheduler(SettleAndStop, 10, func() bool {
		draws++
		return draws > 1
	})
	s.Start()
	base := time.Unix(0, 0)
	if !s.Tick(base) {
		t.Fatal("expected unsettled first frame to continue")
	}
	if !s.Tick(base.Add(10 * time.Millisecond)) {
		t.Fatal("expected throttled tick to continue on unsettled state")
	}
	if draws != 1 {
		t.Fatalf("expected throttled tick to skip drawing, got %d draws", draws)
	}
	if s.Tick(base.Add(100 * time.Millisecond)) {
		t.Fatal("expected settled frame to stop the loop")
	}
}

func TestSchedulerRunHonoursContext(t *testing.T) {
	s := NewScheduler(Continuous, 0, func() bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := &stepRequester{now: time.Unix(0, 0), step: time.Millisecond, count: 10}
	if err := s.Run(ctx, req); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode("settle"); !ok || m != SettleAndStop {
		t.Fatalf("expected settle mode, got %v %v", m, ok)
	}
	if m, ok := ParseMode("continuous"); !ok || m != Continuous {
		t.Fatalf("expected continuous mode, got %v %v", m, ok)
	}
	if _, ok := ParseMode("sometimes"); ok {
		t.Fatal("expected unknown mode to be rejected")
	}
}
