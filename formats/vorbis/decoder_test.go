// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audtranscode/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32
	offset       int
	step         int // max values per Read, 0 for unlimited
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int {
	return m.sampleRate
}

func (m *mockOggVorbisReader) Channels() int {
	return m.channels
}

func (m *mockOggVorbisReader) Length() int64 {
	return int64(len(m.samples) / m.channels)
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.samples)-m.offset)
	if m.step > 0 {
		n = min(n, m.step)
	}
	n -= n % m.channels

	copy(buf, m.samples[m.offset:m.offset+n])
	m.offset += n

	if m.offset >= len(m.samples) {
		return n, io.EOF
	}

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "garbage", data: []byte("This is not OGG Vorbis data")},
		{name: "empty", data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestDecoder_Sniff(t *testing.T) {
	t.Parallel()

	if !(Decoder{}).Sniff([]byte("OggS\x00\x02\x00\x00")) {
		t.Error("Sniff() = false for Ogg page header")
	}
	if (Decoder{}).Sniff([]byte("fLaC")) {
		t.Error("Sniff() = true for FLAC")
	}
}

func TestSource_Descriptor(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: make([]float32, 2*480)})

	want := audio.StreamDescriptor{
		Codec:        audio.CodecVorbis,
		Format:       audio.SampleFloat,
		BitDepth:     32,
		SampleRate:   48000,
		Channels:     2,
		TotalSamples: 480,
	}
	if got := src.Descriptor(); got != want {
		t.Errorf("Descriptor() = %+v, want %+v", got, want)
	}
}

func TestSource_ReadFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		values   int
		step     int
		want     []int
	}{
		{name: "mono", channels: 1, values: 100, want: []int{100}},
		{name: "stereo", channels: 2, values: 2 * (FrameLen + 10), want: []int{FrameLen, 10}},
		{name: "surround small reads", channels: 6, values: 6 * 1000, step: 60, want: []int{1000}},
		{name: "exact", channels: 2, values: 2 * FrameLen, want: []int{FrameLen}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]float32, tt.values)
			for i := range samples {
				samples[i] = float32(i) / float32(tt.values)
			}

			src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: tt.channels, samples: samples, step: tt.step})

			var lens []int
			var got []float32
			for {
				f, err := src.ReadFrame()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
				lens = append(lens, f.NumSamples())
				got = append(got, f.Floats...)
			}

			if len(lens) != len(tt.want) {
				t.Fatalf("frame lengths = %v, want %v", lens, tt.want)
			}
			for i := range lens {
				if lens[i] != tt.want[i] {
					t.Errorf("frame lengths = %v, want %v", lens, tt.want)
				}
			}
			for i := range got {
				if got[i] != samples[i] {
					t.Fatalf("value %d = %v, want %v", i, got[i], samples[i])
				}
			}
		})
	}
}

func TestSource_ReadFrame_Error(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, returnErrors: true})

	if _, err := src.ReadFrame(); !errors.Is(err, audio.ErrDecode) {
		t.Errorf("ReadFrame() error = %v, want ErrDecode", err)
	}
}
