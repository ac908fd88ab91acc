// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/audtranscode/utils"
)

// Resampler converts interleaved float32 samples between sample rates using
// cubic interpolation. It is push based: Process may be called with blocks of
// any length and keeps enough history to interpolate across block edges.
// Flush emits the tail once the input is finished.
//
// Output sample k sits at source position k*srcRate/dstRate, computed with
// integer arithmetic, so the output length for N input samples is exactly
// ceil(N*dstRate/srcRate).
type Resampler struct {
	srcRate  int64
	dstRate  int64
	channels int

	// hist holds pending source frames starting at absolute index base.
	hist []float32
	base int64
	// next output index
	out int64

	// One-pole low-pass state, used when downsampling
	filterState []float32
	useFilter   bool
	filterAlpha float32
	primed      bool

	flushed bool
}

func NewResampler(srcRate, dstRate, channels int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 || channels <= 0 {
		return nil, ErrInvalidDescriptor
	}

	r := &Resampler{
		srcRate:     int64(srcRate),
		dstRate:     int64(dstRate),
		channels:    channels,
		filterState: make([]float32, channels),
		useFilter:   srcRate > dstRate,
	}
	if r.useFilter {
		r.filterAlpha = 0.5
	}

	return r, nil
}

func (r *Resampler) SrcRate() int  { return int(r.srcRate) }
func (r *Resampler) DstRate() int  { return int(r.dstRate) }
func (r *Resampler) Channels() int { return r.channels }

// Process appends src to the history and returns every output sample that
// can be interpolated without seeing further input.
func (r *Resampler) Process(src []float32) ([]float32, error) {
	if len(src)%r.channels != 0 {
		return nil, ErrInvalidFrameSize
	}

	start := len(r.hist)
	r.hist = append(r.hist, src...)
	if r.useFilter {
		r.filter(r.hist[start:])
	}

	return r.emit(false), nil
}

// Flush returns the remaining output, clamping the interpolation window to
// the last source frame. Process must not be called afterwards.
func (r *Resampler) Flush() []float32 {
	if r.flushed {
		return nil
	}
	r.flushed = true

	return r.emit(true)
}

// Reset drops all state so the Resampler can start a new stream.
func (r *Resampler) Reset() {
	r.hist = r.hist[:0]
	r.base = 0
	r.out = 0
	r.primed = false
	r.flushed = false
	clear(r.filterState)
}

func (r *Resampler) filter(block []float32) {
	if !r.primed && len(block) >= r.channels {
		copy(r.filterState, block[:r.channels])
		r.primed = true
	}

	for i := 0; i < len(block); i += r.channels {
		for c := range r.channels {
			y := utils.OnePole(block[i+c], r.filterState[c], r.filterAlpha)
			block[i+c] = y
			r.filterState[c] = y
		}
	}
}

func (r *Resampler) emit(final bool) []float32 {
	ch := r.channels
	avail := int64(len(r.hist) / ch)
	end := r.base + avail // absolute index one past the last frame

	var dst []float32

	for {
		num := r.out * r.srcRate
		i := num / r.dstRate // absolute index of y1
		if final {
			if i >= end {
				break
			}
		} else if i+2 >= end {
			break
		}

		x := float32(num%r.dstRate) / float32(r.dstRate)

		for c := range ch {
			y0 := r.at(i-1, c, end)
			y1 := r.at(i, c, end)
			y2 := r.at(i+1, c, end)
			y3 := r.at(i+2, c, end)
			dst = append(dst, utils.CubicInterpolate(y0, y1, y2, y3, x))
		}
		r.out++
	}

	// Keep one frame behind the next interpolation point.
	keepFrom := (r.out*r.srcRate)/r.dstRate - 1
	if drop := keepFrom - r.base; drop > 0 {
		drop = min(drop, avail)
		n := copy(r.hist, r.hist[drop*int64(ch):])
		r.hist = r.hist[:n]
		r.base += drop
	}

	return dst
}

// at reads absolute frame idx, clamped to the stream edges.
func (r *Resampler) at(idx int64, c int, end int64) float32 {
	if idx < 0 {
		idx = 0
	}
	if idx >= end {
		idx = end - 1
	}

	return r.hist[(idx-r.base)*int64(r.channels)+int64(c)]
}
