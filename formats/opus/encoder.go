// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/ik5/audtranscode/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// SampleRate is the only rate the encoder is opened at.
	SampleRate = 48000

	// DefaultFrameSize is 20ms at 48kHz.
	DefaultFrameSize = 960

	// DefaultBitratePerChannel is used when the caller asks for bitrate 0.
	DefaultBitratePerChannel = 64000

	MinBitrate = 6000
	MaxBitrate = 510000

	// PreSkip is the libopus encoder lookahead at 48kHz (2.5ms plus 4ms
	// delay compensation). Decoders drop this many samples from the start.
	PreSkip = 312

	maxPacketSize = 4000
)

// ValidFrameSizes are the packet durations Opus supports at 48kHz
// (2.5, 5, 10, 20, 40 and 60 ms).
var ValidFrameSizes = []int{120, 240, 480, 960, 1920, 2880}

// floatEncoder is an interface for opus.Encoder to allow testing
type floatEncoder interface {
	EncodeFloat32(pcm []float32, data []byte) (int, error)
}

// Encoder encodes float PCM to Opus packets in an Ogg container.
//
// Each packet is written on its own page once the next one is known, so the
// last page can carry the end-of-stream flag and a granule position of
// PreSkip plus the samples actually encoded. That trims both the lookahead
// and the silence padding the final frame.
type Encoder struct {
	path      string
	desc      audio.StreamDescriptor
	frameSize int
	inputRate int

	enc  floatEncoder
	file io.WriteCloser
	ogg  *oggStream

	buf []byte
	pcm []float32

	samples int64 // real samples per channel handed to Encode
	span    int64 // samples per channel covered by packets, padding included

	pending    []byte
	hasPending bool
}

// EncoderOption configures NewEncoder.
type EncoderOption func(*Encoder)

// WithFrameSize overrides DefaultFrameSize. Sizes not in ValidFrameSizes
// are ignored.
func WithFrameSize(n int) EncoderOption {
	return func(e *Encoder) {
		if slices.Contains(ValidFrameSizes, n) {
			e.frameSize = n
		}
	}
}

// WithInputSampleRate records the rate of the source in the OpusHead
// header. It does not change the encoding rate.
func WithInputSampleRate(rate int) EncoderOption {
	return func(e *Encoder) {
		if rate > 0 {
			e.inputRate = rate
		}
	}
}

// Bitrate resolves the requested bitrate: 0 selects the default for the
// channel count, anything else is clamped to what libopus accepts.
func Bitrate(requested, channels int) int {
	if requested <= 0 {
		return DefaultBitratePerChannel * channels
	}

	return min(max(requested, MinBitrate), MaxBitrate)
}

// NewEncoder opens an Opus encoder for channels (1 or 2) at bitrate (see
// Bitrate). The container is created by WriteHeader.
func NewEncoder(path string, channels, bitrate int, opts ...EncoderOption) (*Encoder, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedChannels, channels)
	}

	bitrate = Bitrate(bitrate, channels)

	enc, err := opus.NewEncoder(SampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrCodecInit, err)
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("%w: bitrate %d: %w", audio.ErrCodecInit, bitrate, err)
	}

	e := newEncoder(path, channels, enc)
	e.desc.Bitrate = bitrate
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func newEncoder(path string, channels int, enc floatEncoder) *Encoder {
	return &Encoder{
		path: path,
		desc: audio.StreamDescriptor{
			Codec:      audio.CodecOpus,
			Format:     audio.SampleFloat,
			BitDepth:   32,
			SampleRate: SampleRate,
			Channels:   channels,
		},
		frameSize: DefaultFrameSize,
		inputRate: SampleRate,
		enc:       enc,
		buf:       make([]byte, maxPacketSize),
	}
}

func (e *Encoder) FrameSize() int                     { return e.frameSize }
func (e *Encoder) Descriptor() audio.StreamDescriptor { return e.desc }

// WriteHeader creates the Ogg file and writes the OpusHead and OpusTags
// pages.
func (e *Encoder) WriteHeader() error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}
	e.file = f
	e.ogg = &oggStream{w: f, serial: rand.Uint32()}

	head := opusHead(e.desc.Channels, PreSkip, uint32(e.inputRate))
	if err := e.ogg.writePage(head, pageFirst, 0); err != nil {
		return fmt.Errorf("%w: OpusHead: %w", audio.ErrContainerWrite, err)
	}
	if err := e.ogg.writePage(opusTags("audtranscode "+opus.Version()), pageContinued, 0); err != nil {
		return fmt.Errorf("%w: OpusTags: %w", audio.ErrContainerWrite, err)
	}

	return nil
}

// Encode encodes one frame into one packet. A short final frame is padded
// with silence because libopus only accepts whole frames.
func (e *Encoder) Encode(f *audio.Frame) (int, error) {
	n := f.NumSamples()
	if n == 0 {
		return 0, nil
	}
	if n > e.frameSize {
		return 0, fmt.Errorf("%w: %w: %d > %d", audio.ErrEncode, ErrFrameTooLong, n, e.frameSize)
	}
	if !f.Matches(e.desc) {
		return 0, fmt.Errorf("%w: %w", audio.ErrEncode, audio.ErrFormatMismatch)
	}
	if e.ogg == nil {
		return 0, fmt.Errorf("%w: header not written", audio.ErrContainerWrite)
	}

	if err := e.encode(f.Floats); err != nil {
		return 0, err
	}
	e.samples += int64(n)

	return 1, nil
}

// encode runs one frame of pcm through libopus, padding it to the frame
// size, and queues the packet. The previously queued packet is written.
func (e *Encoder) encode(pcm []float32) error {
	want := e.frameSize * e.desc.Channels
	if len(pcm) < want {
		if cap(e.pcm) < want {
			e.pcm = make([]float32, want)
		}
		e.pcm = e.pcm[:want]
		copy(e.pcm, pcm)
		clear(e.pcm[len(pcm):])
		pcm = e.pcm
	}

	size, err := e.enc.EncodeFloat32(pcm, e.buf)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrEncode, err)
	}

	if e.hasPending {
		if err := e.ogg.writePage(e.pending, pageContinued, uint64(e.span)); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
		}
	}

	e.pending = append(e.pending[:0], e.buf[:size]...)
	e.hasPending = true
	e.span += int64(e.frameSize)

	return nil
}

// Flush encodes silent frames until the packets cover PreSkip samples past
// the end of the input, so the lookahead delay releases the last real
// samples. It returns the number of extra packets.
func (e *Encoder) Flush() (int, error) {
	if e.ogg == nil {
		return 0, fmt.Errorf("%w: header not written", audio.ErrContainerWrite)
	}

	packets := 0
	for e.span < e.samples+PreSkip {
		if err := e.encode(nil); err != nil {
			return packets, err
		}
		packets++
	}

	return packets, nil
}

// WriteTrailer writes the last packet on an end-of-stream page whose
// granule position is PreSkip plus the samples encoded, then closes the
// file.
func (e *Encoder) WriteTrailer() error {
	if e.ogg == nil {
		return fmt.Errorf("%w: header not written", audio.ErrContainerWrite)
	}

	if _, err := e.Flush(); err != nil {
		return err
	}

	granule := uint64(e.samples + PreSkip)
	if err := e.ogg.writePage(e.pending, pageLast, granule); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}
	e.hasPending = false
	e.ogg = nil

	err := e.file.Close()
	e.file = nil
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	return nil
}

// Close releases the file if WriteTrailer was not reached.
func (e *Encoder) Close() error {
	if e.file == nil {
		return nil
	}

	e.ogg = nil
	err := e.file.Close()
	e.file = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w", err)
	}

	return nil
}
