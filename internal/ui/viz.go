package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/capviz/internal/state"
	"github.com/olivier-w/capviz/internal/surface"
	"github.com/olivier-w/capviz/internal/visualizer"
	"go.uber.org/zap"
)

// VizOptions wires a Visualization.
type VizOptions struct {
	Mode       visualizer.Mode
	FPS        int
	Transport  visualizer.Transport
	Presenter  *surface.Terminal
	Store      *state.Store
	PixelScale int
	Logger     *zap.Logger

	// Analyse connects (true) or disconnects (false) the analyser from the
	// playing source.
	Analyse func(on bool) error
}

// Visualization runs the spectrum frame loop on the bubbletea update loop.
// All methods must be called from Update.
type Visualization struct {
	scheduler *visualizer.Scheduler
	transport visualizer.Transport
	presenter *surface.Terminal
	store     *state.Store
	analyse   func(bool) error
	log       *zap.Logger
	scale     int

	dims    visualizer.Dimensions
	enabled bool
}

// NewVisualization restores the saved on/off flag and routes the analyser
// accordingly.
func NewVisualization(opts VizOptions) *Visualization {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Analyse == nil {
		opts.Analyse = func(bool) error { return nil }
	}
	v := &Visualization{
		transport: opts.Transport,
		presenter: opts.Presenter,
		store:     opts.Store,
		analyse:   opts.Analyse,
		log:       opts.Logger,
		scale:     max(opts.PixelScale, 1),
		enabled:   true,
	}
	if v.store != nil {
		on, err := v.store.Load()
		if err != nil {
			v.log.Warn("loading visualization state", zap.Error(err))
		}
		v.enabled = on
	}
	v.scheduler = visualizer.NewScheduler(opts.Mode, opts.FPS, func() bool {
		return v.transport.Frame(v.dims)
	})
	v.scheduler.SetEnabled(v.enabled)
	if err := v.analyse(v.enabled); err != nil {
		v.log.Warn("routing analyser", zap.Error(err))
	}
	return v
}

// Enabled reports the user's on/off choice.
func (v *Visualization) Enabled() bool { return v.enabled }

// Visible reports whether the spectrum should be drawn: while enabled, and
// after disabling until the loop stops.
func (v *Visualization) Visible() bool {
	return v.enabled || v.scheduler.Running()
}

// Running reports whether frame slots are being requested.
func (v *Visualization) Running() bool { return v.scheduler.Running() }

// Dimensions returns the canvas size the next frame will use.
func (v *Visualization) Dimensions() visualizer.Dimensions { return v.dims }

// Start begins the frame loop when there is something to draw.
func (v *Visualization) Start() tea.Cmd {
	if !v.enabled && v.scheduler.Mode() == visualizer.SettleAndStop {
		return nil
	}
	if !v.scheduler.Start() {
		return nil
	}
	return frameCmd(v.scheduler.Interval())
}

// Resize maps the terminal grid to canvas pixels. chromeRows are the rows
// taken by text around the spectrum.
func (v *Visualization) Resize(cols, rows, chromeRows int) {
	pr := v.presenter.PixelRows()
	v.dims = visualizer.DesiredDimensions(cols*v.scale, rows*pr*v.scale, chromeRows*pr*v.scale)
	v.presenter.SetCells(cols, max(rows-chromeRows, 0))
}

// Frame handles a frame slot and schedules the next one if the loop goes on.
func (v *Visualization) Frame(t time.Time) tea.Cmd {
	if !v.scheduler.Tick(t) {
		v.log.Debug("frame loop stopped", zap.Uint64("frames", v.scheduler.Frames()))
		return nil
	}
	return frameCmd(v.scheduler.Interval())
}

// Toggle flips the visualization, persists the choice and restarts the loop
// when switching on. Switching off lets the caps finish falling.
func (v *Visualization) Toggle() tea.Cmd {
	v.enabled = !v.enabled
	if err := v.analyse(v.enabled); err != nil {
		v.log.Warn("routing analyser", zap.Error(err))
	}
	v.scheduler.SetEnabled(v.enabled)

	cmds := []tea.Cmd{v.save(v.enabled)}
	if v.enabled {
		cmds = append(cmds, v.Start())
	}
	return tea.Batch(cmds...)
}

func (v *Visualization) save(on bool) tea.Cmd {
	if v.store == nil {
		return nil
	}
	store := v.store
	return func() tea.Msg {
		return stateSavedMsg{err: store.Save(on)}
	}
}

// View returns the last presented frame.
func (v *Visualization) View() string { return v.presenter.View() }

// Close stops the rendering transport.
func (v *Visualization) Close() error { return v.transport.Close() }
