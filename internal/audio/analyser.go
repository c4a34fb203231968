package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyser defaults, matching what browsers use for an AnalyserNode.
const (
	DefaultFFTSize   = 1024
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// ErrFFTSize is returned for a size that is not a power of two in [32, 32768].
var ErrFFTSize = errors.New("audio: fft size must be a power of two between 32 and 32768")

// Analyser keeps the last FFTSize mono samples it was fed and turns them into
// a smoothed byte spectrum on demand.
//
// Write is called from the playback goroutine; ByteFrequencyData from the
// frame loop.
type Analyser struct {
	fftSize  int
	channels int

	// Smoothing is the time constant blending each frame with the previous
	// one, in [0, 1].
	Smoothing float64
	MinDB     float64
	MaxDB     float64

	ring  *RingBuffer // mono int16 LE
	carry []byte      // partial interleaved frame from the last Write

	mu       sync.Mutex
	raw      []byte
	window   []float64
	in       []float64
	coeffs   []complex128
	fft      *fourier.FFT
	smoothed []float64
}

// NewAnalyser creates an analyser for interleaved 16-bit PCM with the given
// channel count.
func NewAnalyser(fftSize, channels int) (*Analyser, error) {
	if fftSize < 32 || fftSize > 32768 || fftSize&(fftSize-1) != 0 {
		return nil, ErrFFTSize
	}
	return &Analyser{
		fftSize:   fftSize,
		channels:  max(channels, 1),
		Smoothing: DefaultSmoothing,
		MinDB:     DefaultMinDB,
		MaxDB:     DefaultMaxDB,
		ring:      NewRingBuffer(fftSize * 2),
		raw:       make([]byte, fftSize*2),
		window:    window.Blackman(fftSize),
		in:        make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		fft:       fourier.NewFFT(fftSize),
		smoothed:  make([]float64, fftSize/2),
	}, nil
}

func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// Write mixes interleaved PCM down to mono and appends it to the time window.
// It never fails.
func (a *Analyser) Write(p []byte) (int, error) {
	frame := a.channels * 2
	data := p
	if len(a.carry) > 0 {
		data = append(a.carry, p...)
	}
	whole := len(data) / frame * frame

	mono := make([]byte, whole/a.channels)
	for i := 0; i < whole/frame; i++ {
		sum := 0
		for ch := range a.channels {
			sum += int(int16(binary.LittleEndian.Uint16(data[i*frame+ch*2:])))
		}
		binary.LittleEndian.PutUint16(mono[i*2:], uint16(int16(sum/a.channels)))
	}
	a.ring.Write(mono)
	a.carry = append(a.carry[:0], data[whole:]...)
	return len(p), nil
}

// Reset forgets buffered audio, so the next frames analyse silence.
func (a *Analyser) Reset() {
	a.ring.Clear()
}

// ByteFrequencyData fills dst with one byte per bin: the smoothed magnitude
// in decibels mapped linearly from [MinDB, MaxDB] onto [0, 255]. Bins past
// dst are computed but not copied.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyse()
	scale := 255 / (a.MaxDB - a.MinDB)
	for i := range min(len(dst), len(a.smoothed)) {
		db := 20 * math.Log10(a.smoothed[i])
		v := math.Floor(scale * (db - a.MinDB))
		switch {
		case math.IsNaN(v) || v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = byte(v)
		}
	}
}

func (a *Analyser) analyse() {
	a.ring.Latest(a.raw)
	for i := range a.in {
		s := float64(int16(binary.LittleEndian.Uint16(a.raw[i*2:]))) / 32768
		a.in[i] = s * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.in)

	k := min(max(a.Smoothing, 0), 1)
	n := float64(a.fftSize)
	for i := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[i]) / n
		s := k*a.smoothed[i] + (1-k)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[i] = s
	}
}
