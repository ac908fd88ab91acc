// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/audtranscode/utils"
)

// Converter adapts frames from the decoder layout to the encoder layout:
// channel mapping, then sample rate conversion, then sample format.
//
// When rate, channel count and sample format already match, frames are
// copied bit-exact. Integer to integer conversion at the same rate never
// goes through float.
type Converter struct {
	in  StreamDescriptor
	out StreamDescriptor

	mixer     *ChannelMixer
	resampler *Resampler
}

func NewConverter(in, out StreamDescriptor) (*Converter, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: input: %w", ErrCodecInit, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: output: %w", ErrCodecInit, err)
	}

	mixer, err := NewChannelMixer(in.Channels, out.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodecInit, err)
	}

	c := &Converter{in: in, out: out, mixer: mixer}
	if in.SampleRate != out.SampleRate {
		c.resampler, err = NewResampler(in.SampleRate, out.SampleRate, out.Channels)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCodecInit, err)
		}
	}

	return c, nil
}

func (c *Converter) In() StreamDescriptor  { return c.in }
func (c *Converter) Out() StreamDescriptor { return c.out }

// Passthrough reports whether frames are only copied.
func (c *Converter) Passthrough() bool {
	return c.resampler == nil && c.mixer.Identity() &&
		c.in.Format == c.out.Format &&
		(c.in.Format == SampleFloat || c.in.BitDepth == c.out.BitDepth)
}

// Convert returns f in the output layout. With a resampler in the chain the
// result may hold fewer samples than f, or none.
func (c *Converter) Convert(f *Frame) (*Frame, error) {
	if f == nil || f.Empty() {
		return NewFrameFor(c.out, 0), nil
	}
	if !f.Matches(c.in) {
		return nil, fmt.Errorf("%w: got %s/%d %dch, want %s", ErrFormatMismatch,
			f.Format, f.BitDepth, f.Channels, c.in)
	}

	if c.Passthrough() {
		out := f.Clone()
		out.PTS = 0
		return out, nil
	}

	if c.resampler == nil && c.in.Format == SampleInt && c.out.Format == SampleInt {
		return c.convertInt(f)
	}

	floats, err := c.mixer.MixFloat(c.toFloat(f))
	if err != nil {
		return nil, err
	}
	if c.resampler != nil {
		floats, err = c.resampler.Process(floats)
		if err != nil {
			return nil, err
		}
	}

	return c.fromFloat(floats), nil
}

// Flush returns the resampler tail, or an empty frame when nothing is
// buffered.
func (c *Converter) Flush() *Frame {
	if c.resampler == nil {
		return NewFrameFor(c.out, 0)
	}

	return c.fromFloat(c.resampler.Flush())
}

func (c *Converter) convertInt(f *Frame) (*Frame, error) {
	ints, err := c.mixer.MixInt(f.Ints)
	if err != nil {
		return nil, err
	}

	if c.in.BitDepth != c.out.BitDepth {
		for i, v := range ints {
			ints[i] = utils.ShiftBits(v, c.in.BitDepth, c.out.BitDepth)
		}
	}

	return &Frame{
		Ints:     ints,
		Format:   SampleInt,
		BitDepth: c.out.BitDepth,
		Channels: c.out.Channels,
	}, nil
}

func (c *Converter) toFloat(f *Frame) []float32 {
	if f.Format == SampleFloat {
		return f.Floats
	}

	floats := make([]float32, len(f.Ints))
	for i, v := range f.Ints {
		floats[i] = utils.IntToFloat32(v, f.BitDepth)
	}

	return floats
}

func (c *Converter) fromFloat(floats []float32) *Frame {
	if c.out.Format == SampleFloat {
		return &Frame{
			Floats:   floats,
			Format:   SampleFloat,
			BitDepth: 32,
			Channels: c.out.Channels,
		}
	}

	ints := make([]int32, len(floats))
	for i, v := range floats {
		ints[i] = utils.Float32ToInt(v, c.out.BitDepth)
	}

	return &Frame{
		Ints:     ints,
		Format:   SampleInt,
		BitDepth: c.out.BitDepth,
		Channels: c.out.Channels,
	}
}
