// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"
	"github.com/ik5/audtranscode/audio"
)

// DefaultBitrate is the constant bitrate of the shine encoder.
const DefaultBitrate = 128000

// SampleRates are the MPEG-1 Layer III rates.
var SampleRates = []int{32000, 44100, 48000}

// pcmWriter is an interface for shine.Encoder to allow testing
type pcmWriter interface {
	Write(out io.Writer, data []int16) error
}

// Encoder writes 16-bit PCM as a constant bitrate MP3 stream.
//
// shine pads and flushes its last granule at the end of every Write call,
// so samples are collected until Flush and encoded in one pass.
type Encoder struct {
	desc audio.StreamDescriptor
	file *os.File
	enc  pcmWriter
	pcm  []int16

	flushed bool
}

// Bitrate resolves the requested bitrate. Only 0 (the default) and
// DefaultBitrate are accepted.
func Bitrate(requested int) (int, error) {
	if requested != 0 && requested != DefaultBitrate {
		return 0, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedBitrate, requested)
	}

	return DefaultBitrate, nil
}

// NearestSampleRate returns the entry of SampleRates closest to rate,
// preferring the higher one on a tie.
func NearestSampleRate(rate int) int {
	best := SampleRates[0]
	for _, r := range SampleRates[1:] {
		if abs(r-rate) <= abs(best-rate) {
			best = r
		}
	}

	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// NewEncoder creates path for desc, which must describe 16-bit integer mono
// or stereo at one of SampleRates.
func NewEncoder(path string, desc audio.StreamDescriptor) (*Encoder, error) {
	if err := checkDescriptor(desc); err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	desc.Codec = audio.CodecMP3
	desc.Bitrate = DefaultBitrate
	return &Encoder{
		desc: desc,
		file: file,
		enc:  shine.NewEncoder(desc.SampleRate, desc.Channels),
	}, nil
}

func checkDescriptor(desc audio.StreamDescriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrCodecInit, err)
	}
	if desc.Channels > 2 {
		return fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedChannels, desc.Channels)
	}
	if desc.Format != audio.SampleInt || desc.BitDepth != bitDepth {
		return fmt.Errorf("%w: %w: %s/%d", audio.ErrCodecInit, audio.ErrInvalidDescriptor, desc.Format, desc.BitDepth)
	}
	if !slices.Contains(SampleRates, desc.SampleRate) {
		return fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedSampleRate, desc.SampleRate)
	}

	return nil
}

func (e *Encoder) FrameSize() int                     { return FrameLen }
func (e *Encoder) Descriptor() audio.StreamDescriptor { return e.desc }

// WriteHeader is a no-op: an MP3 stream is a plain sequence of frames.
func (e *Encoder) WriteHeader() error { return nil }

// Encode queues the samples of f. No packet is emitted until Flush.
func (e *Encoder) Encode(f *audio.Frame) (int, error) {
	if f.Empty() {
		return 0, nil
	}
	if !f.Matches(e.desc) {
		return 0, fmt.Errorf("%w: %w", audio.ErrEncode, audio.ErrFormatMismatch)
	}
	if e.flushed {
		return 0, fmt.Errorf("%w: encode after flush", audio.ErrEncode)
	}

	for _, v := range f.Ints {
		e.pcm = append(e.pcm, int16(v))
	}

	return 0, nil
}

// Flush encodes everything queued and returns the number of MP3 frames
// written.
func (e *Encoder) Flush() (int, error) {
	if e.flushed {
		return 0, nil
	}
	e.flushed = true

	if len(e.pcm) == 0 {
		return 0, nil
	}

	w := bufio.NewWriter(e.file)
	if err := e.enc.Write(w, e.pcm); err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrEncode, err)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	samples := len(e.pcm) / e.desc.Channels
	e.pcm = nil

	return (samples + FrameLen - 1) / FrameLen, nil
}

// WriteTrailer flushes if that has not happened yet.
func (e *Encoder) WriteTrailer() error {
	_, err := e.Flush()
	return err
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
