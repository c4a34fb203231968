package main

import (
	"github.com/olivier-w/capviz/internal/config"
	"github.com/olivier-w/capviz/internal/surface"
	"github.com/olivier-w/capviz/internal/visualizer"
	"go.uber.org/zap"
)

// newTransport builds the configured rendering shape over a fresh canvas.
// In the split shape the canvas belongs to the worker from here on; with
// block set the worker receives every frame instead of dropping under load.
func newTransport(cfg *config.Config, src visualizer.FrequencySource, presenter visualizer.Presenter, block bool, log *zap.Logger) visualizer.Transport {
	sampler := visualizer.NewSampler(src)
	canvas := surface.New(0, 0)
	geom := cfg.Geometry()

	if cfg.Shape == config.ShapeDirect {
		log.Debug("rendering on the caller's goroutine")
		return visualizer.NewDirect(sampler, visualizer.NewRenderer(canvas, geom, log), presenter)
	}
	log.Debug("rendering on a worker goroutine", zap.Int("queue_size", cfg.QueueSize), zap.Bool("block", block))
	return visualizer.NewRemote(canvas, sampler, visualizer.RemoteOptions{
		Geometry:  geom,
		Presenter: presenter,
		QueueSize: cfg.QueueSize,
		Block:     block,
		Logger:    log,
	})
}
