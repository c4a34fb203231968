package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/olivier-w/capviz/internal/audio"
	"github.com/olivier-w/capviz/internal/surface"
	"github.com/olivier-w/capviz/internal/visualizer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	errEndOfTrack = errors.New("end of track")
	errFrameLimit = errors.New("frame limit reached")
)

type renderOptions struct {
	out       string
	width     int
	height    int
	maxFrames int
	realtime  bool
}

func newRenderCmd(v *viper.Viper) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render the visualization of FILE to a PNG sequence",
		Long: `render decodes FILE without playing it and writes one PNG per drawn
frame. The viewport is sized like a window of --width x --height with
controls_height pixels reserved at the bottom.

In settle mode rendering continues after the track ends until every cap
has fallen; in continuous mode it stops at the end of the track.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, v, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "frames", "output directory")
	f.IntVar(&opts.width, "width", 800, "viewport width in pixels")
	f.IntVar(&opts.height, "height", 460, "viewport height in pixels")
	f.IntVar(&opts.maxFrames, "max-frames", 0, "stop after this many frame slots (0 = no limit)")
	f.BoolVar(&opts.realtime, "realtime", false, "pace frames on the wall clock")
	f.Int("controls-height", 60, "pixels reserved below the canvas")
	return cmd
}

func runRender(cmd *cobra.Command, v *viper.Viper, path string, opts renderOptions) error {
	if err := checkFile(path); err != nil {
		return err
	}
	cfg, log, closeLog, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer closeLog()

	file, err := audio.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	graph := audio.NewGraph(file, log)
	analyser, err := graph.CreateAnalyser(cfg.FFTSize)
	if err != nil {
		return err
	}
	if err := graph.Connect(graph.Source(), analyser); err != nil {
		return err
	}

	seq, err := surface.NewPNGSequence(opts.out, log)
	if err != nil {
		return err
	}
	// Offline frames are never dropped; only wall-clock pacing may shed load.
	transport := newTransport(cfg, analyser, seq, !opts.realtime, log)

	dims := visualizer.DesiredDimensions(opts.width, opts.height, cfg.ControlsHeight)
	sched := visualizer.NewScheduler(cfg.ModeValue(), cfg.FPS, func() bool {
		return transport.Frame(dims)
	})
	sched.SetEnabled(true)

	step := sched.Interval()
	if step <= 0 {
		step = time.Second / 60
	}
	var clock visualizer.FrameRequester = visualizer.NewVirtualClock(time.Now(), step)
	if opts.realtime {
		t := visualizer.NewTicker(step)
		defer t.Stop()
		clock = t
	}

	pump := newAudioPump(clock, graph.Source(), file.SampleRate(), file.ChannelCount(), step)
	pump.maxFrames = opts.maxFrames
	pump.onEnd = func() error {
		log.Info("track ended", zap.Uint64("frames", sched.Frames()))
		if err := graph.Disconnect(graph.Source(), analyser); err != nil {
			return err
		}
		sched.SetEnabled(false)
		if sched.Mode() == visualizer.Continuous {
			return errEndOfTrack
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runErr := sched.Run(ctx, pump)
	closeErr := transport.Close()
	if errors.Is(runErr, errEndOfTrack) || errors.Is(runErr, errFrameLimit) {
		runErr = nil
	}
	if err := errors.Join(runErr, closeErr, seq.Err()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", seq.Written(), opts.out)
	return nil
}

// audioPump feeds one frame's worth of PCM through the graph before each
// frame slot, keeping audio time in step with frame time.
type audioPump struct {
	clock     visualizer.FrameRequester
	src       io.Reader
	chunk     []byte
	maxFrames int
	onEnd     func() error

	slots int
	ended bool
}

func newAudioPump(clock visualizer.FrameRequester, src io.Reader, sampleRate, channels int, step time.Duration) *audioPump {
	frameBytes := max(channels, 1) * 2
	frames := max(int(int64(sampleRate)*int64(step)/int64(time.Second)), 1)
	return &audioPump{
		clock: clock,
		src:   src,
		chunk: make([]byte, frames*frameBytes),
	}
}

func (p *audioPump) WaitFrame(ctx context.Context) (time.Time, error) {
	if p.maxFrames > 0 && p.slots >= p.maxFrames {
		return time.Time{}, errFrameLimit
	}
	p.slots++

	if !p.ended {
		_, err := io.ReadFull(p.src, p.chunk)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			p.ended = true
			if p.onEnd != nil {
				if err := p.onEnd(); err != nil {
					return time.Time{}, err
				}
			}
		default:
			return time.Time{}, fmt.Errorf("decoding: %w", err)
		}
	}
	return p.clock.WaitFrame(ctx)
}
