// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/utils"
)

// DefaultChunk is the number of samples per channel a MockSource returns
// per ReadFrame.
const DefaultChunk = 1000

// MockSource is a test helper that generates audio frames.
type MockSource struct {
	desc      audio.StreamDescriptor
	chunk     int
	generated int // samples generated so far (per channel)
	waveform  func(sample int, channel int) float32

	failAt  int
	failErr error
	closed  bool
}

// NewMockSource creates a float source of totalSamples per channel.
// waveform generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		desc: audio.StreamDescriptor{
			Codec:        audio.CodecWAV,
			Format:       audio.SampleFloat,
			BitDepth:     32,
			SampleRate:   sampleRate,
			Channels:     channels,
			TotalSamples: uint64(totalSamples),
		},
		chunk:    DefaultChunk,
		waveform: waveform,
		failAt:   -1,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, Sine(sampleRate, frequency))
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// Sine returns a waveform at frequency Hz with amplitude 0.5, phase shifted
// per channel so channels are distinguishable.
func Sine(sampleRate int, frequency float64) func(int, int) float32 {
	return func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(0.5 * math.Sin(2*math.Pi*frequency*t+float64(channel)))
	}
}

// AsInt switches the source to integer frames of the given bit depth.
func (m *MockSource) AsInt(bits int) *MockSource {
	m.desc.Format = audio.SampleInt
	m.desc.BitDepth = bits
	return m
}

// WithChunk sets the number of samples per channel per frame.
func (m *MockSource) WithChunk(n int) *MockSource {
	m.chunk = n
	return m
}

// WithCodec overrides the codec reported by Descriptor.
func (m *MockSource) WithCodec(c audio.Codec) *MockSource {
	m.desc.Codec = c
	return m
}

// FailAfter makes ReadFrame return err once n samples per channel have
// been produced.
func (m *MockSource) FailAfter(n int, err error) *MockSource {
	m.failAt = n
	m.failErr = err
	return m
}

func (m *MockSource) Descriptor() audio.StreamDescriptor { return m.desc }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadFrame() (*audio.Frame, error) {
	if m.failAt >= 0 && m.generated >= m.failAt {
		return nil, m.failErr
	}

	total := int(m.desc.TotalSamples)
	if m.generated >= total {
		return nil, io.EOF
	}

	n := min(m.chunk, total-m.generated)
	if m.failAt >= 0 {
		n = min(n, m.failAt-m.generated)
	}

	ch := m.desc.Channels
	f := audio.NewFrameFor(m.desc, n)
	for i := range n {
		for c := range ch {
			v := m.waveform(m.generated+i, c)
			if f.Format == audio.SampleFloat {
				f.Floats[i*ch+c] = v
			} else {
				f.Ints[i*ch+c] = utils.Float32ToInt(v, m.desc.BitDepth)
			}
		}
	}
	m.generated += n

	return f, nil
}
