// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audtranscode/audio"
)

// Format tags from the fmt chunk.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// FrameLen is the number of samples per channel returned by ReadFrame.
const FrameLen = 4096

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    pcmReader
	desc   audio.StreamDescriptor
	float  bool
	intBuf *goaudio.IntBuffer
}

func (s *source) Descriptor() audio.StreamDescriptor { return s.desc }
func (s *source) Close() error                       { return nil }

// fill reads until buf is full or the data chunk is exhausted. go-audio
// returns short counts whenever the underlying read is short.
func fill(dec pcmReader, buf *goaudio.IntBuffer) (int, error) {
	want := len(buf.Data)
	total := 0

	for total < want {
		part := &goaudio.IntBuffer{Format: buf.Format, Data: buf.Data[total:]}
		n, err := dec.PCMBuffer(part)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}

func (s *source) ReadFrame() (*audio.Frame, error) {
	ch := s.desc.Channels
	if s.intBuf == nil {
		s.intBuf = &goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: ch, SampleRate: s.desc.SampleRate},
			Data:   make([]int, FrameLen*ch),
		}
	}

	n, err := fill(s.dec, s.intBuf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	// A trailing partial sample frame is dropped.
	n -= n % ch
	if n == 0 {
		return nil, io.EOF
	}

	data := s.intBuf.Data[:n]
	if s.float {
		f := audio.NewFloatFrame(ch, n/ch)
		for i, v := range data {
			f.Floats[i] = math.Float32frombits(uint32(v))
		}

		return f, nil
	}

	f := audio.NewIntFrame(ch, s.desc.BitDepth, n/ch)
	for i, v := range data {
		if s.desc.BitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		f.Ints[i] = int32(v)
	}

	return f, nil
}

type Decoder struct{}

func (Decoder) Sniff(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	desc, isFloat, err := describe(int(dec.WavAudioFormat), int(dec.BitDepth), int(dec.NumChans), int(dec.SampleRate))
	if err != nil {
		return nil, err
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	if dec.PCMSize > 0 {
		frameBytes := desc.Channels * ((desc.BitDepth + 7) / 8)
		desc.TotalSamples = uint64(dec.PCMSize / frameBytes)
	}

	return &source{dec: dec, desc: desc, float: isFloat}, nil
}

// describe maps fmt chunk fields to a stream descriptor.
func describe(tag, bits, channels, rate int) (audio.StreamDescriptor, bool, error) {
	desc := audio.StreamDescriptor{
		Codec:      audio.CodecWAV,
		Format:     audio.SampleInt,
		BitDepth:   bits,
		SampleRate: rate,
		Channels:   channels,
	}

	switch tag {
	case formatPCM, formatExtensible:
		switch bits {
		case 8, 16, 24, 32:
		default:
			return desc, false, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
		}
	case formatFloat:
		if bits != 32 {
			return desc, false, fmt.Errorf("%w: float %d", ErrUnsupportedBitDepth, bits)
		}
		desc.Format = audio.SampleFloat
	default:
		return desc, false, fmt.Errorf("%w: format tag %d", ErrUnsupportedWavLayout, tag)
	}

	if err := desc.Validate(); err != nil {
		return desc, false, fmt.Errorf("%w", err)
	}

	return desc, desc.Format == audio.SampleFloat, nil
}
