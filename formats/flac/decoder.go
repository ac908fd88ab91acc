// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audtranscode/audio"
	mflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// Signature opens every FLAC stream.
var Signature = []byte("fLaC")

// frameReader is an interface for flac.Stream to allow testing
type frameReader interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream frameReader
	desc   audio.StreamDescriptor
}

func (s *source) Descriptor() audio.StreamDescriptor { return s.desc }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadFrame() (*audio.Frame, error) {
	f, err := s.stream.ParseNext()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	return interleave(f, s.desc), nil
}

// interleave copies the per-channel subframes of f into one frame.
func interleave(f *frame.Frame, desc audio.StreamDescriptor) *audio.Frame {
	n := int(f.BlockSize)
	ch := desc.Channels
	out := audio.NewIntFrame(ch, desc.BitDepth, n)

	for c, sub := range f.Subframes {
		if c >= ch {
			break
		}
		for i := 0; i < n && i < len(sub.Samples); i++ {
			out.Ints[i*ch+c] = sub.Samples[i]
		}
	}

	return out
}

type Decoder struct{}

func (Decoder) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, Signature)
}

func (Decoder) Decode(r io.ReadSeeker) (audio.Source, error) {
	stream, err := mflac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	return &source{
		stream: stream,
		desc: audio.StreamDescriptor{
			Codec:        audio.CodecFLAC,
			Format:       audio.SampleInt,
			BitDepth:     int(info.BitsPerSample),
			SampleRate:   int(info.SampleRate),
			Channels:     int(info.NChannels),
			TotalSamples: info.NSamples,
		},
	}, nil
}
