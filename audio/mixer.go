// SPDX-License-Identifier: EPL-2.0

package audio

type sample interface {
	~int32 | ~float32
}

// ChannelMixer maps interleaved samples from one channel count to another.
//
//   - equal counts are copied
//   - N -> 1 averages every channel
//   - 1 -> N duplicates the single channel
//   - N -> M (N > M) averages input channels c where c % M == out
//   - N -> M (N < M) repeats input channel out % N
type ChannelMixer struct {
	in  int
	out int
}

func NewChannelMixer(in, out int) (*ChannelMixer, error) {
	if in <= 0 || out <= 0 {
		return nil, ErrInvalidDescriptor
	}

	return &ChannelMixer{in: in, out: out}, nil
}

func (m *ChannelMixer) InChannels() int  { return m.in }
func (m *ChannelMixer) OutChannels() int { return m.out }

// Identity reports whether Mix is a plain copy.
func (m *ChannelMixer) Identity() bool { return m.in == m.out }

func (m *ChannelMixer) MixFloat(src []float32) ([]float32, error) {
	return mix(src, m.in, m.out, func(sum float64) float32 { return float32(sum) })
}

func (m *ChannelMixer) MixInt(src []int32) ([]int32, error) {
	return mix(src, m.in, m.out, func(sum float64) int32 {
		if sum < 0 {
			return int32(sum - 0.5)
		}
		return int32(sum + 0.5)
	})
}

func mix[T sample](src []T, in, out int, conv func(float64) T) ([]T, error) {
	if len(src)%in != 0 {
		return nil, ErrInvalidFrameSize
	}

	frames := len(src) / in
	dst := make([]T, frames*out)

	switch {
	case in == out:
		copy(dst, src)

	case out == 1:
		inv := 1 / float64(in)
		switch in {
		case 2:
			for f := range frames {
				idx := f << 1
				dst[f] = conv((float64(src[idx]) + float64(src[idx+1])) * 0.5)
			}
		default:
			for f := range frames {
				sum := float64(0)
				base := f * in
				for c := range in {
					sum += float64(src[base+c])
				}
				dst[f] = conv(sum * inv)
			}
		}

	case in == 1:
		for f := range frames {
			for c := range out {
				dst[f*out+c] = src[f]
			}
		}

	case in > out:
		for f := range frames {
			for o := range out {
				sum, n := float64(0), 0
				for c := o; c < in; c += out {
					sum += float64(src[f*in+c])
					n++
				}
				dst[f*out+o] = conv(sum / float64(n))
			}
		}

	default:
		for f := range frames {
			for o := range out {
				dst[f*out+o] = src[f*in+o%in]
			}
		}
	}

	return dst, nil
}
