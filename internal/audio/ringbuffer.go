package audio

import "sync"

// RingBuffer keeps the most recent bytes written to it. It is safe for one
// writer (the playback path) and one reader (the analyser) at a time.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []byte
	w    int // next write position
	fill int // bytes currently held
}

// NewRingBuffer creates a ring buffer holding up to size bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]byte, size)}
}

// Write appends p, overwriting the oldest bytes once full.
func (rb *RingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buf)
	if size == 0 {
		return
	}
	if len(p) >= size {
		copy(rb.buf, p[len(p)-size:])
		rb.w = 0
		rb.fill = size
		return
	}
	n := copy(rb.buf[rb.w:], p)
	copy(rb.buf, p[n:])
	rb.w = (rb.w + len(p)) % size
	rb.fill = min(rb.fill+len(p), size)
}

// Latest copies the most recent bytes into the tail of dst and zeroes any
// head portion the buffer cannot fill. It returns how many bytes were real.
func (rb *RingBuffer) Latest(dst []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := min(len(dst), rb.fill)
	clear(dst[:len(dst)-n])
	if n == 0 {
		return 0
	}
	size := len(rb.buf)
	start := (rb.w - n + size) % size
	out := dst[len(dst)-n:]
	k := copy(out, rb.buf[start:min(start+n, size)])
	copy(out[k:], rb.buf[:n-k])
	return n
}

// Clear drops all buffered bytes.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.fill = 0
}
