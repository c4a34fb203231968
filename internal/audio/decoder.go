package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Decoder produces signed 16-bit little-endian interleaved PCM.
type Decoder interface {
	io.Reader
	SampleRate() int
	ChannelCount() int
	// Length is the decoded size in bytes, or 0 when unknown.
	Length() int64
}

// File is a decoder reading from an open file.
type File struct {
	Decoder
	Path string
	f    *os.File
}

// Open picks a decoder by file extension.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := NewDecoder(f, filepath.Ext(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	return &File{Decoder: dec, Path: path, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// Duration derives the play time from Length.
func (f *File) Duration() time.Duration {
	return BytesToDuration(f.Length(), f.SampleRate(), f.ChannelCount())
}

// BytesToDuration converts a 16-bit PCM byte count to time.
func BytesToDuration(n int64, sampleRate, channels int) time.Duration {
	perSec := int64(sampleRate) * int64(channels) * 2
	if perSec <= 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(perSec) * float64(time.Second))
}

// NewDecoder builds the decoder for ext (".mp3", ".wav", ".flac", ".ogg").
func NewDecoder(r io.ReadSeeker, ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		dec, err := mp3.NewDecoder(r)
		if err != nil {
			return nil, fmt.Errorf("decoding MP3: %w", err)
		}
		return mp3Decoder{dec}, nil
	case ".wav":
		return newWAVDecoder(r)
	case ".flac":
		return newFLACDecoder(r)
	case ".ogg":
		return newOGGDecoder(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// go-mp3 always emits 16-bit stereo.
type mp3Decoder struct{ *mp3.Decoder }

func (mp3Decoder) ChannelCount() int { return 2 }

// pending holds converted bytes that did not fit the caller's buffer.
type pending []byte

func (b *pending) drain(p []byte) int {
	n := copy(p, *b)
	*b = (*b)[n:]
	return n
}

func (b *pending) emit(p, raw []byte) int {
	n := copy(p, raw)
	*b = raw[n:]
	return n
}

func clamp16(s int) int16 {
	return int16(max(-32768, min(32767, s)))
}

type wavDecoder struct {
	r          io.Reader
	buf        pending
	src        []byte
	length     int64
	sampleRate int
	channels   int
	bitDepth   int
}

func newWAVDecoder(r io.ReadSeeker) (*wavDecoder, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}
	channels := int(dec.NumChans)
	pcm := dec.PCMLen()

	return &wavDecoder{
		r:          io.LimitReader(r, pcm),
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		length:     pcm / int64(bitDepth/8) * 2,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.buf.drain(p), nil
	}

	width := d.bitDepth / 8
	want := max(len(p)/2, 1) * width
	if cap(d.src) < want {
		d.src = make([]byte, want)
	}
	src := d.src[:want]
	n, err := io.ReadFull(d.r, src)
	samples := n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samples*2)
	for i := range samples {
		off := i * width
		var s int
		switch d.bitDepth {
		case 8:
			s = (int(src[off]) - 128) << 8
		case 16:
			s = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			v := int32(src[off]) | int32(src[off+1])<<8 | int32(int8(src[off+2]))<<16
			s = int(v >> 8)
		case 32:
			s = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clamp16(s)))
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return d.buf.emit(p, raw), err
}

func (d *wavDecoder) Length() int64     { return d.length }
func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

type flacDecoder struct {
	stream     *flac.Stream
	buf        pending
	length     int64
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(r io.ReadSeeker) (*flacDecoder, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
		length:     int64(info.NSamples) * int64(channels) * 2,
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.buf.drain(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	n := int(frame.Subframes[0].NSamples)
	raw := make([]byte, n*d.channels*2)
	for i := range n {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				s >>= d.bps - 16
			} else {
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clamp16(s)))
		}
	}
	return d.buf.emit(p, raw), nil
}

func (d *flacDecoder) Length() int64     { return d.length }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

type oggDecoder struct {
	reader  *oggvorbis.Reader
	buf     pending
	samples []float32
	length  int64
}

func newOGGDecoder(r io.Reader) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{
		reader: reader,
		length: reader.Length() * int64(reader.Channels()) * 2,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.buf.drain(p), nil
	}

	want := max(len(p)/2, d.reader.Channels())
	if cap(d.samples) < want {
		d.samples = make([]float32, want)
	}
	n, err := d.reader.Read(d.samples[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	raw := make([]byte, n*2)
	for i, s := range d.samples[:n] {
		s = max(-1, min(1, s))
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}
	written := d.buf.emit(p, raw)
	if len(d.buf) > 0 && err == io.EOF {
		err = nil
	}
	return written, err
}

func (d *oggDecoder) Length() int64     { return d.length }
func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }
