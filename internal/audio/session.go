package audio

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Session plays one file through a graph with a single analyser tap.
type Session struct {
	file     *File
	graph    *Graph
	analyser *Analyser
	output   *Destination
	log      *zap.Logger
}

// OpenSession decodes path and prepares an analyser of fftSize. Nothing is
// connected until Play and SetAnalysing are called.
func OpenSession(path string, fftSize int, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	g := NewGraph(f, log)
	a, err := g.CreateAnalyser(fftSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	log.Info("opened track",
		zap.String("path", path),
		zap.Int("sample_rate", f.SampleRate()),
		zap.Int("channels", f.ChannelCount()),
		zap.Duration("duration", f.Duration()))
	return &Session{file: f, graph: g, analyser: a, log: log}, nil
}

func (s *Session) Analyser() *Analyser { return s.analyser }
func (s *Session) Source() *Source     { return s.graph.Source() }

// Play connects the source to the sound card.
func (s *Session) Play() error {
	if s.output != nil {
		return nil
	}
	out := s.graph.NewDestination()
	if err := s.graph.Connect(s.graph.Source(), out); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	s.output = out
	return nil
}

// SetAnalysing connects or disconnects the analyser tap.
func (s *Session) SetAnalysing(on bool) error {
	src := s.graph.Source()
	if on {
		return s.graph.Connect(src, s.analyser)
	}
	if err := s.graph.Disconnect(src, s.analyser); err != nil && err != ErrNotConnected {
		return err
	}
	return nil
}

// TogglePause pauses output and silences the analyser while paused.
func (s *Session) TogglePause() {
	if s.output == nil {
		return
	}
	s.output.TogglePause()
	if s.output.Paused() {
		s.graph.Silence()
	}
}

func (s *Session) Paused() bool {
	return s.output != nil && s.output.Paused()
}

func (s *Session) AdjustVolume(delta float64) {
	if s.output != nil {
		s.output.AdjustVolume(delta)
	}
}

func (s *Session) Volume() float64 {
	if s.output == nil {
		return 0
	}
	return s.output.Volume()
}

// Position is how far the source has been read.
func (s *Session) Position() time.Duration {
	return BytesToDuration(s.graph.Source().Position(), s.file.SampleRate(), s.file.ChannelCount())
}

func (s *Session) Duration() time.Duration { return s.file.Duration() }

// SampleRate is the track's native rate in Hz.
func (s *Session) SampleRate() int { return s.file.SampleRate() }

// Done closes when playback reaches the end. It never closes before Play.
func (s *Session) Done() <-chan struct{} {
	if s.output == nil {
		return nil
	}
	return s.output.Done()
}

// Close stops output and closes the file.
func (s *Session) Close() {
	if s.output != nil {
		s.output.Close()
	}
	if err := s.file.Close(); err != nil {
		s.log.Debug("closing track", zap.Error(err))
	}
}
