// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"hash"
	"os"
	"slices"

	"github.com/ik5/audtranscode/audio"
	mflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// DefaultBlockSize is the number of samples per channel in every frame but
// the last.
const DefaultBlockSize = 4096

// ValidBitDepths are the sample sizes a FLAC frame header can signal.
var ValidBitDepths = []int{8, 12, 16, 20, 24}

var channelAssignments = []frame.Channels{
	frame.ChannelsMono,
	frame.ChannelsLR,
	frame.ChannelsLRC,
	frame.ChannelsLRLsRs,
	frame.ChannelsLRCLsRs,
	frame.ChannelsLRCLfeLsRs,
	frame.ChannelsLRCLfeCsSlSr,
	frame.ChannelsLRCLfeLsRsSlSr,
}

// countingWriter hides Seek and Close from the frame writer so STREAMINFO
// is patched here, after the last frame. mflac.Encoder.Close would set the
// minimum block size to the short final block, which marks a fixed block
// size stream as variable. WriteByte keeps the bit writer from
// adding a buffer of its own, so n is exact after every frame.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (c *countingWriter) WriteByte(b byte) error {
	if err := c.w.WriteByte(b); err != nil {
		return err
	}
	c.n++
	return nil
}

// Encoder writes fixed block size FLAC frames with verbatim subframes.
type Encoder struct {
	file *os.File
	bw   *bufio.Writer
	cw   *countingWriter
	enc  *mflac.Encoder

	desc      audio.StreamDescriptor
	blockSize int
	info      *meta.StreamInfo

	num      uint64
	nsamples uint64
	frameMin uint32
	frameMax uint32
	md5sum   hash.Hash
	pcm      []byte
}

// EncoderOption configures NewEncoder.
type EncoderOption func(*Encoder)

// WithBlockSize overrides DefaultBlockSize. Values outside 16..65535 are
// ignored.
func WithBlockSize(n int) EncoderOption {
	return func(e *Encoder) {
		if n >= 16 && n <= 65535 {
			e.blockSize = n
		}
	}
}

// NewEncoder creates path for writing. desc must be integer PCM with a bit
// depth listed in ValidBitDepths.
func NewEncoder(path string, desc audio.StreamDescriptor, opts ...EncoderOption) (*Encoder, error) {
	if desc.Format != audio.SampleInt || !slices.Contains(ValidBitDepths, desc.BitDepth) {
		return nil, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedBitDepth, desc.BitDepth)
	}
	if desc.Channels < 1 || desc.Channels > len(channelAssignments) {
		return nil, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedChannels, desc.Channels)
	}
	if desc.SampleRate <= 0 || desc.SampleRate > 655350 {
		return nil, fmt.Errorf("%w: sample rate %d", audio.ErrCodecInit, desc.SampleRate)
	}

	desc.Codec = audio.CodecFLAC
	e := &Encoder{
		desc:      desc,
		blockSize: DefaultBlockSize,
		md5sum:    md5.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}
	e.file = f
	e.bw = bufio.NewWriter(f)
	e.cw = &countingWriter{w: e.bw}

	return e, nil
}

func (e *Encoder) FrameSize() int                     { return e.blockSize }
func (e *Encoder) Descriptor() audio.StreamDescriptor { return e.desc }

func (e *Encoder) WriteHeader() error {
	info := meta.StreamInfo{
		BlockSizeMin:  uint16(e.blockSize),
		BlockSizeMax:  uint16(e.blockSize),
		SampleRate:    uint32(e.desc.SampleRate),
		NChannels:     uint8(e.desc.Channels),
		BitsPerSample: uint8(e.desc.BitDepth),
	}

	e.info = &info

	// The frame writer gets its own copy; it may update it as frames go by.
	enc, err := mflac.NewEncoder(e.cw, &meta.StreamInfo{
		BlockSizeMin:  info.BlockSizeMin,
		BlockSizeMax:  info.BlockSizeMax,
		SampleRate:    info.SampleRate,
		NChannels:     info.NChannels,
		BitsPerSample: info.BitsPerSample,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}
	e.enc = enc

	return nil
}

func (e *Encoder) Encode(f *audio.Frame) (int, error) {
	n := f.NumSamples()
	if n == 0 {
		return 0, nil
	}
	if n > e.blockSize {
		return 0, fmt.Errorf("%w: %w: %d > %d", audio.ErrEncode, ErrFrameTooLong, n, e.blockSize)
	}
	if !f.Matches(e.desc) {
		return 0, fmt.Errorf("%w: %w", audio.ErrEncode, audio.ErrFormatMismatch)
	}

	ch := e.desc.Channels
	subframes := make([]*frame.Subframe, ch)
	for c := range ch {
		samples := make([]int32, n)
		for i := range n {
			samples[i] = f.Ints[i*ch+c]
		}
		subframes[c] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}
	}

	fr := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n),
			SampleRate:        uint32(e.desc.SampleRate),
			Channels:          channelAssignments[ch-1],
			BitsPerSample:     uint8(e.desc.BitDepth),
			Num:               e.num,
		},
		Subframes: subframes,
	}

	before := e.cw.n
	if err := e.enc.WriteFrame(fr); err != nil {
		return 0, fmt.Errorf("%w: frame %d: %w", audio.ErrContainerWrite, e.num, err)
	}
	e.track(uint32(e.cw.n-before), f)
	e.num++

	return 1, nil
}

// Flush is a no-op: frames are written as soon as they are encoded.
func (e *Encoder) Flush() (int, error) { return 0, nil }

// WriteTrailer finalizes STREAMINFO with the sample count, frame size
// bounds and the MD5 of the unencoded audio.
func (e *Encoder) WriteTrailer() error {
	if e.enc == nil {
		return fmt.Errorf("%w: header not written", audio.ErrContainerWrite)
	}
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}
	if err := e.bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrContainerWrite, err)
	}

	final := *e.info
	final.NSamples = e.nsamples
	final.FrameSizeMin = e.frameMin
	final.FrameSizeMax = e.frameMax
	copy(final.MD5sum[:], e.md5sum.Sum(nil))

	// fLaC + block header
	if _, err := e.file.WriteAt(EncodeStreamInfo(&final), 8); err != nil {
		return fmt.Errorf("%w: patch STREAMINFO: %w", audio.ErrContainerWrite, err)
	}

	return nil
}

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

// track updates the running STREAMINFO fields after a frame of size bytes.
func (e *Encoder) track(size uint32, f *audio.Frame) {
	if e.frameMin == 0 || size < e.frameMin {
		e.frameMin = size
	}
	e.frameMax = max(e.frameMax, size)
	e.nsamples += uint64(f.NumSamples())

	// MD5 over little-endian interleaved samples, ceil(bps/8) bytes each.
	width := (e.desc.BitDepth + 7) / 8
	e.pcm = e.pcm[:0]
	for _, v := range f.Ints {
		for b := range width {
			e.pcm = append(e.pcm, byte(v>>(8*b)))
		}
	}
	e.md5sum.Write(e.pcm)
}
