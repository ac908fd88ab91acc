package audio

import (
	"io"
	"math"
)

// mockSource generates float frames of a fixed chunk size.
type mockSource struct {
	desc      StreamDescriptor
	chunk     int
	generated int
	waveform  func(sample int, channel int) float32
	closed    bool
}

func newMockSource(sampleRate, channels, totalSamples, chunk int, waveform func(sample int, channel int) float32) *mockSource {
	return &mockSource{
		desc: StreamDescriptor{
			Codec:        CodecWAV,
			Format:       SampleFloat,
			BitDepth:     32,
			SampleRate:   sampleRate,
			Channels:     channels,
			TotalSamples: uint64(totalSamples),
		},
		chunk:    chunk,
		waveform: waveform,
	}
}

func newSineSource(sampleRate, channels, totalSamples int, frequency float64) *mockSource {
	return newMockSource(sampleRate, channels, totalSamples, 1000, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func newConstantSource(sampleRate, channels, totalSamples int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, totalSamples, 1000, func(int, int) float32 {
		return value
	})
}

func (m *mockSource) Descriptor() StreamDescriptor { return m.desc }
func (m *mockSource) Close() error                 { m.closed = true; return nil }

func (m *mockSource) ReadFrame() (*Frame, error) {
	total := int(m.desc.TotalSamples)
	if m.generated >= total {
		return nil, io.EOF
	}

	n := min(m.chunk, total-m.generated)
	f := NewFloatFrame(m.desc.Channels, n)
	for i := range n {
		for c := range m.desc.Channels {
			f.Floats[i*m.desc.Channels+c] = m.waveform(m.generated+i, c)
		}
	}
	m.generated += n

	return f, nil
}

// drain pulls every frame of src through fn and concatenates the results.
func drain(src Source, fn func(*Frame) (*Frame, error)) ([]float32, error) {
	var out []float32
	for {
		f, err := src.ReadFrame()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		g, err := fn(f)
		if err != nil {
			return nil, err
		}
		out = append(out, g.Floats...)
	}
}
