// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audtranscode/audio"
)

// FrameLen is the number of samples per channel returned by ReadFrame.
const FrameLen = 4096

var decodableBitDepths = []int{8, 16, 24, 32}

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec    aiffReader
	desc   audio.StreamDescriptor
	intBuf *goaudio.IntBuffer
}

func (s *source) Descriptor() audio.StreamDescriptor { return s.desc }
func (s *source) Close() error                       { return nil }

func (s *source) ReadFrame() (*audio.Frame, error) {
	ch := s.desc.Channels
	if s.intBuf == nil {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, FrameLen*ch),
			Format: s.dec.Format(),
		}
	}

	// go-audio may return short counts and io.EOF alongside data.
	total := 0
	for total < len(s.intBuf.Data) {
		part := &goaudio.IntBuffer{Format: s.intBuf.Format, Data: s.intBuf.Data[total:]}
		n, err := s.dec.PCMBuffer(part)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
		}
		if n == 0 {
			break
		}
	}

	total -= total % ch
	if total == 0 {
		return nil, io.EOF
	}

	f := audio.NewIntFrame(ch, s.desc.BitDepth, total/ch)
	for i, v := range s.intBuf.Data[:total] {
		f.Ints[i] = int32(v)
	}

	return f, nil
}

type Decoder struct{}

// Sniff accepts FORM containers of type AIFF and AIFC.
func (Decoder) Sniff(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[:4], []byte("FORM")) {
		return false
	}

	kind := header[8:12]
	return bytes.Equal(kind, []byte("AIFF")) || bytes.Equal(kind, []byte("AIFC"))
}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	bits := int(dec.BitDepth)
	if !slices.Contains(decodableBitDepths, bits) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	desc := audio.StreamDescriptor{
		Codec:        audio.CodecAIFF,
		Format:       audio.SampleInt,
		BitDepth:     bits,
		SampleRate:   format.SampleRate,
		Channels:     format.NumChannels,
		TotalSamples: uint64(dec.NumSampleFrames),
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	return &source{dec: dec, desc: desc}, nil
}
