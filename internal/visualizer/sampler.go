package visualizer

// Sampler pulls one frequency sample per frame into a reusable buffer.
// The returned slice is overwritten by the next call.
type Sampler struct {
	src FrequencySource
	buf []byte
}

// NewSampler creates a sampler for src. A nil src yields a zeroed buffer of
// DefaultBinCount bytes until Attach is called.
func NewSampler(src FrequencySource) *Sampler {
	s := &Sampler{}
	s.Attach(src)
	return s
}

// Attach switches the sampler to src, resizing the buffer to its bin count.
func (s *Sampler) Attach(src FrequencySource) {
	n := DefaultBinCount
	if src != nil {
		n = src.FrequencyBinCount()
	}
	if len(s.buf) != n {
		s.buf = make([]byte, n)
	}
	s.src = src
}

// Sample refreshes and returns the buffer. Without a source the previous
// contents are returned unchanged.
func (s *Sampler) Sample() []byte {
	if s.src != nil {
		s.src.ByteFrequencyData(s.buf)
	}
	return s.buf
}
