// SPDX-License-Identifier: EPL-2.0

package seektable

import (
	"bufio"
	"io"

	"github.com/mewkiz/flac/meta"
)

// countingReader tracks the absolute file offset of the next unread byte.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// tracker resolves a sorted template against frames in stream order. Each
// unresolved point takes the first frame whose sample range reaches it.
type tracker struct {
	points      []meta.SeekPoint
	next        int
	samples     uint64
	audioOffset int64
	frames      int
}

func newTracker(points []meta.SeekPoint, audioOffset int64) *tracker {
	return &tracker{points: points, audioOffset: audioOffset}
}

// frame records a frame of blockSize samples starting at file offset.
func (t *tracker) frame(offset int64, blockSize uint16) {
	t.frames++
	if blockSize == 0 {
		return
	}

	first := t.samples
	last := first + uint64(blockSize) - 1

	for ; t.next < len(t.points); t.next++ {
		p := &t.points[t.next]
		if p.SampleNum == meta.PlaceholderPoint || p.SampleNum > last {
			break
		}
		if p.SampleNum >= first {
			p.SampleNum = first
			p.Offset = uint64(offset - t.audioOffset)
			p.NSamples = blockSize
		}
	}

	t.samples += uint64(blockSize)
}

// resolved returns the points that were matched to a frame, sorted and
// without repeats. Placeholders and points past total are dropped.
func (t *tracker) resolved(total uint64) []meta.SeekPoint {
	out := make([]meta.SeekPoint, 0, len(t.points))
	for _, p := range t.points {
		if p.NSamples == 0 || p.SampleNum == meta.PlaceholderPoint || p.SampleNum >= total {
			continue
		}
		out = append(out, p)
	}

	return Compact(out)
}

var _ io.ByteReader = (*countingReader)(nil)
