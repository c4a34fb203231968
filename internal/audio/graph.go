package audio

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ErrNotConnected is returned when disconnecting nodes that were never joined.
var ErrNotConnected = errors.New("audio: nodes not connected")

// Node is anything a Source can feed.
type Node interface {
	attach(src *Source) error
	detach(src *Source)
}

// Source reads PCM from a decoder and copies every chunk it hands out to
// the analysers connected to it.
type Source struct {
	dec Decoder

	mu    sync.Mutex
	taps  []*Analyser
	read  int64
	ended bool
}

// Read pulls from the decoder and feeds the taps.
func (s *Source) Read(p []byte) (int, error) {
	n, err := s.dec.Read(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.read += int64(n)
		for _, a := range s.taps {
			a.Write(p[:n])
		}
	}
	if err == io.EOF {
		s.ended = true
	}
	return n, err
}

// Position returns how many PCM bytes have been read.
func (s *Source) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read
}

// Ended reports whether the decoder hit EOF.
func (s *Source) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Source) SampleRate() int   { return s.dec.SampleRate() }
func (s *Source) ChannelCount() int { return s.dec.ChannelCount() }

// Graph owns the source for one decoder and the nodes created from it.
type Graph struct {
	src *Source
	log *zap.Logger

	mu        sync.Mutex
	analysers []*Analyser
}

// NewGraph wraps dec in a Source.
func NewGraph(dec Decoder, log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{src: &Source{dec: dec}, log: log}
}

// Source returns the graph's source node.
func (g *Graph) Source() *Source { return g.src }

// CreateAnalyser makes an unconnected analyser matching the source format.
func (g *Graph) CreateAnalyser(fftSize int) (*Analyser, error) {
	a, err := NewAnalyser(fftSize, g.src.ChannelCount())
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.analysers = append(g.analysers, a)
	g.mu.Unlock()
	return a, nil
}

// Connect routes src into n.
func (g *Graph) Connect(src *Source, n Node) error {
	if err := n.attach(src); err != nil {
		return fmt.Errorf("connecting %T: %w", n, err)
	}
	g.log.Debug("node connected", zap.String("node", fmt.Sprintf("%T", n)))
	return nil
}

// Disconnect stops routing src into n.
func (g *Graph) Disconnect(src *Source, n Node) error {
	if !connected(src, n) {
		return ErrNotConnected
	}
	n.detach(src)
	g.log.Debug("node disconnected", zap.String("node", fmt.Sprintf("%T", n)))
	return nil
}

// Silence clears every analyser's window, as when playback stops feeding
// them.
func (g *Graph) Silence() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.analysers {
		a.Reset()
	}
}

func connected(src *Source, n Node) bool {
	switch n := n.(type) {
	case *Analyser:
		src.mu.Lock()
		defer src.mu.Unlock()
		return slices.Contains(src.taps, n)
	case *Destination:
		return n.source() == src
	}
	return false
}

func (a *Analyser) attach(src *Source) error {
	src.mu.Lock()
	defer src.mu.Unlock()
	if !slices.Contains(src.taps, a) {
		src.taps = append(src.taps, a)
	}
	return nil
}

// detach drops the tap and clears the window; with no input the smoothed
// spectrum decays toward zero.
func (a *Analyser) detach(src *Source) {
	src.mu.Lock()
	src.taps = slices.DeleteFunc(src.taps, func(t *Analyser) bool { return t == a })
	src.mu.Unlock()
	a.Reset()
}
