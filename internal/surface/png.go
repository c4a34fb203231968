package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/olivier-w/capviz/internal/visualizer"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// PNGSequence writes every presented frame to dir/frame-NNNNN.png, composited
// over an opaque background.
type PNGSequence struct {
	dir        string
	background color.Color
	log        *zap.Logger

	mu      sync.Mutex
	written int
	err     error
}

// NewPNGSequence creates dir if needed.
func NewPNGSequence(dir string, log *zap.Logger) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PNGSequence{dir: dir, background: color.Black, log: log}, nil
}

func (p *PNGSequence) Present(s visualizer.Surface) {
	src, ok := s.(interface{ Image() *image.RGBA })
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}

	img := src.Image()
	if img.Rect.Empty() {
		return
	}
	frame := image.NewRGBA(img.Rect)
	draw.Draw(frame, frame.Rect, image.NewUniform(p.background), image.Point{}, draw.Src)
	draw.Draw(frame, frame.Rect, img, img.Rect.Min, draw.Over)

	name := filepath.Join(p.dir, fmt.Sprintf("frame-%05d.png", p.written))
	if err := writePNG(name, frame); err != nil {
		p.err = err
		p.log.Error("writing frame", zap.String("path", name), zap.Error(err))
		return
	}
	p.written++
}

// Written returns how many frames were saved.
func (p *PNGSequence) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// Err returns the first write error, after which frames are discarded.
func (p *PNGSequence) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
