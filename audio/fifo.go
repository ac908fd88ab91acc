// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// FIFO accumulates converted samples so the encoder can be fed in blocks
// of its own frame size regardless of how the decoder chunks its output.
// It grows on demand and never drops samples.
type FIFO struct {
	desc StreamDescriptor

	ints   []int32
	floats []float32
	head   int // read offset in interleaved values
}

// NewFIFO creates a queue for frames in the layout of desc with room for
// capacity samples per channel before it grows.
func NewFIFO(desc StreamDescriptor, capacity int) *FIFO {
	q := &FIFO{desc: desc}

	n := max(capacity, 0) * max(desc.Channels, 1)
	if desc.Format == SampleFloat {
		q.floats = make([]float32, 0, n)
	} else {
		q.ints = make([]int32, 0, n)
	}

	return q
}

// Size is the number of queued samples per channel.
func (q *FIFO) Size() int {
	if q.desc.Channels <= 0 {
		return 0
	}

	return (q.values() - q.head) / q.desc.Channels
}

func (q *FIFO) values() int {
	if q.desc.Format == SampleFloat {
		return len(q.floats)
	}

	return len(q.ints)
}

// Write appends every sample of f.
func (q *FIFO) Write(f *Frame) error {
	if f == nil || f.Empty() {
		return nil
	}
	if !f.Matches(q.desc) {
		return fmt.Errorf("%w: fifo holds %s", ErrFormatMismatch, q.desc)
	}

	q.compact()
	if q.desc.Format == SampleFloat {
		q.floats = append(q.floats, f.Floats...)
	} else {
		q.ints = append(q.ints, f.Ints...)
	}

	return nil
}

// Read removes exactly n samples per channel. It fails with ErrShortRead
// and leaves the queue untouched when fewer are available.
func (q *FIFO) Read(n int) (*Frame, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: read of %d samples", ErrInvalidFrameSize, n)
	}
	if size := q.Size(); size < n {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrShortRead, size, n)
	}

	return q.take(n), nil
}

// ReadAtMost removes up to n samples per channel. Used to drain the tail
// once the input is exhausted.
func (q *FIFO) ReadAtMost(n int) *Frame {
	return q.take(min(n, q.Size()))
}

// Reset discards every queued sample.
func (q *FIFO) Reset() {
	q.ints = q.ints[:0]
	q.floats = q.floats[:0]
	q.head = 0
}

func (q *FIFO) take(n int) *Frame {
	f := NewFrameFor(q.desc, n)
	count := n * q.desc.Channels

	if q.desc.Format == SampleFloat {
		copy(f.Floats, q.floats[q.head:q.head+count])
	} else {
		copy(f.Ints, q.ints[q.head:q.head+count])
	}
	q.head += count

	if q.head == q.values() {
		q.Reset()
	}

	return f
}

// compact moves unread samples to the front once more than half of the
// backing array has been consumed.
func (q *FIFO) compact() {
	if q.head == 0 || q.head < q.values()/2 {
		return
	}

	if q.desc.Format == SampleFloat {
		n := copy(q.floats, q.floats[q.head:])
		q.floats = q.floats[:n]
	} else {
		n := copy(q.ints, q.ints[q.head:])
		q.ints = q.ints[:n]
	}
	q.head = 0
}
