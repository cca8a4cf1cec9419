package audio

import "sync"

// SegmentBuffer accumulates the samples of one recognition segment. It is a
// fixed-capacity ring: when a segment outgrows the capacity the oldest
// samples are overwritten, keeping the most recent audio for decoding.
type SegmentBuffer struct {
	mu    sync.Mutex
	buf   []int16
	start int
	n     int
}

// NewSegmentBuffer creates a buffer holding up to capacity samples.
func NewSegmentBuffer(capacity int) *SegmentBuffer {
	return &SegmentBuffer{
		buf: make([]int16, capacity),
	}
}

// Append adds samples, overwriting the oldest when full.
func (b *SegmentBuffer) Append(samples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range samples {
		if b.n < len(b.buf) {
			b.buf[(b.start+b.n)%len(b.buf)] = s
			b.n++
		} else {
			b.buf[b.start] = s
			b.start = (b.start + 1) % len(b.buf)
		}
	}
}

// Samples returns a copy of the buffered samples in arrival order.
func (b *SegmentBuffer) Samples() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int16, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = b.buf[(b.start+i)%len(b.buf)]
	}
	return out
}

// Len returns the number of buffered samples.
func (b *SegmentBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// Reset discards all buffered samples.
func (b *SegmentBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.n = 0
}
