// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audtranscode/audio"
	"github.com/jfreymuth/oggvorbis"
)

// FrameLen is the number of samples per channel requested per ReadFrame.
const FrameLen = 4096

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec  oggReader
	desc audio.StreamDescriptor
	buf  []float32
}

func (s *source) Descriptor() audio.StreamDescriptor { return s.desc }
func (s *source) Close() error                       { return nil }

// ReadFrame fills up to FrameLen samples per channel. oggvorbis counts
// values, not sample frames, and may return less than asked for.
func (s *source) ReadFrame() (*audio.Frame, error) {
	ch := s.desc.Channels
	if s.buf == nil {
		s.buf = make([]float32, FrameLen*ch)
	}

	total := 0
	for total < len(s.buf) {
		n, err := s.dec.Read(s.buf[total:])
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

	f := audio.NewFloatFrame(ch, total/ch)
	copy(f.Floats, s.buf[:total])

	return f, nil
}

type Decoder struct{}

// Sniff accepts any Ogg stream; Decode rejects non-Vorbis payloads.
func (Decoder) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, []byte("OggS"))
}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec oggReader) *source {
	desc := audio.StreamDescriptor{
		Codec:      audio.CodecVorbis,
		Format:     audio.SampleFloat,
		BitDepth:   32,
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
	}
	if l := dec.Length(); l > 0 {
		desc.TotalSamples = uint64(l)
	}

	return &source{dec: dec, desc: desc}
}
