// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// Codec names the coded representation of a stream.
type Codec string

const (
	CodecWAV    Codec = "wav"
	CodecAIFF   Codec = "aiff"
	CodecMP3    Codec = "mp3"
	CodecVorbis Codec = "vorbis"
	CodecFLAC   Codec = "flac"
	CodecOpus   Codec = "opus"
)

// SampleFormat is the in-memory representation of decoded samples.
type SampleFormat int

const (
	// SampleInt samples are signed integers holding BitDepth significant bits.
	SampleInt SampleFormat = iota
	// SampleFloat samples are float32 in the nominal range [-1, 1].
	SampleFloat
)

func (f SampleFormat) String() string {
	switch f {
	case SampleInt:
		return "int"
	case SampleFloat:
		return "float"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// StreamDescriptor describes one side of a transcode.
type StreamDescriptor struct {
	Codec      Codec
	Format     SampleFormat
	BitDepth   int // significant bits per sample; 32 for float
	SampleRate int
	Channels   int
	Bitrate    int // bits per second, lossy codecs only

	// TotalSamples per channel, 0 when unknown.
	TotalSamples uint64
}

// Validate reports whether d can carry PCM.
func (d StreamDescriptor) Validate() error {
	if d.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidDescriptor, d.SampleRate)
	}
	if d.Channels <= 0 {
		return fmt.Errorf("%w: channels %d", ErrInvalidDescriptor, d.Channels)
	}
	if d.Format == SampleInt && (d.BitDepth < 4 || d.BitDepth > 32) {
		return fmt.Errorf("%w: bit depth %d", ErrInvalidDescriptor, d.BitDepth)
	}

	return nil
}

// Duration of the stream, zero when the length is unknown.
func (d StreamDescriptor) Duration() time.Duration {
	if d.TotalSamples == 0 || d.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(d.TotalSamples) / float64(d.SampleRate) * float64(time.Second))
}

func (d StreamDescriptor) String() string {
	return fmt.Sprintf("%s %s/%d %dHz %dch", d.Codec, d.Format, d.BitDepth, d.SampleRate, d.Channels)
}

// Frame is a block of interleaved samples. Exactly one of Ints and Floats
// is used, selected by Format.
type Frame struct {
	Ints     []int32
	Floats   []float32
	Format   SampleFormat
	BitDepth int
	Channels int

	// PTS is the presentation timestamp in output samples, set by the
	// encode stage.
	PTS int64
}

// NewIntFrame allocates an integer frame holding n samples per channel.
func NewIntFrame(channels, bitDepth, n int) *Frame {
	return &Frame{
		Ints:     make([]int32, n*channels),
		Format:   SampleInt,
		BitDepth: bitDepth,
		Channels: channels,
	}
}

// NewFloatFrame allocates a float frame holding n samples per channel.
func NewFloatFrame(channels, n int) *Frame {
	return &Frame{
		Floats:   make([]float32, n*channels),
		Format:   SampleFloat,
		BitDepth: 32,
		Channels: channels,
	}
}

// NewFrameFor allocates an empty frame in the layout of d.
func NewFrameFor(d StreamDescriptor, n int) *Frame {
	if d.Format == SampleFloat {
		return NewFloatFrame(d.Channels, n)
	}

	return NewIntFrame(d.Channels, d.BitDepth, n)
}

// NumSamples is the number of samples per channel.
func (f *Frame) NumSamples() int {
	if f == nil || f.Channels <= 0 {
		return 0
	}
	if f.Format == SampleFloat {
		return len(f.Floats) / f.Channels
	}

	return len(f.Ints) / f.Channels
}

// Empty reports whether f carries no samples.
func (f *Frame) Empty() bool {
	return f.NumSamples() == 0
}

// Matches reports whether f has the sample layout described by d.
func (f *Frame) Matches(d StreamDescriptor) bool {
	if f.Format != d.Format || f.Channels != d.Channels {
		return false
	}

	return f.Format == SampleFloat || f.BitDepth == d.BitDepth
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := *f
	if f.Ints != nil {
		c.Ints = append([]int32(nil), f.Ints...)
	}
	if f.Floats != nil {
		c.Floats = append([]float32(nil), f.Floats...)
	}

	return &c
}
