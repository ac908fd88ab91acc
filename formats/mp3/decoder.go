// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audtranscode/audio"
)

const (
	// FrameLen is one MPEG-1 Layer III frame per channel.
	FrameLen = 1152

	// go-mp3 always emits 16-bit little-endian stereo.
	channels    = 2
	bitDepth    = 16
	bytesPerSet = channels * bitDepth / 8
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec  mp3Reader
	desc audio.StreamDescriptor
	buf  []byte
}

func (s *source) Descriptor() audio.StreamDescriptor { return s.desc }
func (s *source) Close() error                       { return nil }

func (s *source) ReadFrame() (*audio.Frame, error) {
	if s.buf == nil {
		s.buf = make([]byte, FrameLen*bytesPerSet)
	}

	n, err := io.ReadFull(s.dec, s.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	n -= n % bytesPerSet
	if n == 0 {
		return nil, io.EOF
	}

	f := audio.NewIntFrame(channels, bitDepth, n/bytesPerSet)
	for i := range f.Ints {
		f.Ints[i] = int32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	return f, nil
}

type Decoder struct{}

// Sniff accepts an ID3v2 tag or a bare MPEG Layer III frame sync.
func (Decoder) Sniff(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	if len(header) < 2 {
		return false
	}

	layer := (header[1] >> 1) & 0x3
	return header[0] == 0xFF && header[1]&0xE0 == 0xE0 && layer == 1
}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	desc := audio.StreamDescriptor{
		Codec:      audio.CodecMP3,
		Format:     audio.SampleInt,
		BitDepth:   bitDepth,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
	}
	if l := dec.Length(); l > 0 {
		desc.TotalSamples = uint64(l / bytesPerSet)
	}

	return &source{dec: dec, desc: desc}
}
