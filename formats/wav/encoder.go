// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"os"
	"slices"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audtranscode/audio"
)

// DefaultFrameSize is the number of samples per channel per Encode call.
const DefaultFrameSize = 4096

// ValidBitDepths are the integer widths the encoder writes.
var ValidBitDepths = []int{16, 24, 32}

// intWriter is an interface for wav.Encoder to allow testing
type intWriter interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// Encoder writes integer PCM into a RIFF/WAVE file.
type Encoder struct {
	desc audio.StreamDescriptor
	file *os.File
	enc  intWriter
	buf  *goaudio.IntBuffer
}

// NewEncoder creates path and prepares a PCM writer for desc, which must
// describe integer samples of one of ValidBitDepths.
func NewEncoder(path string, desc audio.StreamDescriptor) (*Encoder, error) {
	if err := checkDescriptor(desc); err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	desc.Codec = audio.CodecWAV
	return &Encoder{
		desc: desc,
		file: file,
		enc:  gowav.NewEncoder(file, desc.SampleRate, desc.BitDepth, desc.Channels, formatPCM),
	}, nil
}

func checkDescriptor(desc audio.StreamDescriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrCodecInit, err)
	}
	if desc.Format != audio.SampleInt || !slices.Contains(ValidBitDepths, desc.BitDepth) {
		return fmt.Errorf("%w: %w: %s/%d", audio.ErrCodecInit, ErrUnsupportedBitDepth, desc.Format, desc.BitDepth)
	}

	return nil
}

func (e *Encoder) FrameSize() int                     { return DefaultFrameSize }
func (e *Encoder) Descriptor() audio.StreamDescriptor { return e.desc }

func (e *Encoder) format() *goaudio.Format {
	return &goaudio.Format{NumChannels: e.desc.Channels, SampleRate: e.desc.SampleRate}
}

// WriteHeader emits the RIFF, fmt and data chunk headers. Sizes are
// patched by WriteTrailer.
func (e *Encoder) WriteHeader() error {
	empty := &goaudio.IntBuffer{Format: e.format(), SourceBitDepth: e.desc.BitDepth}
	if err := e.enc.Write(empty); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	return nil
}

// Encode appends the samples of f to the data chunk. Every call is one
// packet.
func (e *Encoder) Encode(f *audio.Frame) (int, error) {
	if f.Empty() {
		return 0, nil
	}
	if !f.Matches(e.desc) {
		return 0, fmt.Errorf("%w: %w", audio.ErrEncode, audio.ErrFormatMismatch)
	}

	if e.buf == nil {
		e.buf = &goaudio.IntBuffer{Format: e.format(), SourceBitDepth: e.desc.BitDepth}
	}
	e.buf.Data = slices.Grow(e.buf.Data[:0], len(f.Ints))[:len(f.Ints)]
	for i, v := range f.Ints {
		e.buf.Data[i] = int(v)
	}

	if err := e.enc.Write(e.buf); err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	return 1, nil
}

// Flush is a no-op: PCM has no codec delay.
func (e *Encoder) Flush() (int, error) { return 0, nil }

// WriteTrailer rewrites the RIFF and data chunk sizes.
func (e *Encoder) WriteTrailer() error {
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	return nil
}

// Close closes the output file. It is safe to call more than once.
func (e *Encoder) Close() error {
	if e.file == nil {
		return nil
	}

	err := e.file.Close()
	e.file = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
