// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/formats/aiff"
	"github.com/ik5/audtranscode/formats/flac"
	"github.com/ik5/audtranscode/formats/mp3"
	"github.com/ik5/audtranscode/formats/opus"
	"github.com/ik5/audtranscode/formats/wav"
	"github.com/ik5/audtranscode/internal/metrics"
)

// Result describes a completed transcode.
type Result struct {
	InputFormat string
	Input       audio.StreamDescriptor
	Output      audio.StreamDescriptor

	SamplesDecoded uint64 // per channel, input rate
	SamplesEncoded uint64 // per channel, output rate
	Frames         int
	Packets        int
	Duration       time.Duration
}

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	registry      *audio.Registry
	flacBlockSize int
	opusFrameSize int
	keepPartial   bool
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records run counters on m. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRegistry replaces the built-in decoders.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithFLACBlockSize sets the samples per FLAC frame.
func WithFLACBlockSize(n int) Option {
	return func(o *options) { o.flacBlockSize = n }
}

// WithOpusFrameSize sets the samples per Opus packet at 48kHz.
func WithOpusFrameSize(n int) Option {
	return func(o *options) { o.opusFrameSize = n }
}

// WithKeepPartial leaves a failed output file on disk.
func WithKeepPartial(keep bool) Option {
	return func(o *options) { o.keepPartial = keep }
}

// Run decodes inputPath and encodes it to outputPath as target. Zero
// bitsPerSample, sampleRate and bitrate select defaults, see Resolve.
//
// outputPath is created or truncated. Unless WithKeepPartial is given it
// is removed again when the transcode fails.
func Run(inputPath, outputPath string, target Target, bitsPerSample, sampleRate, bitrate int, opts ...Option) (*Result, error) {
	o := options{
		logger:        slog.Default(),
		flacBlockSize: flac.DefaultBlockSize,
		opusFrameSize: opus.DefaultFrameSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}

	start := time.Now()
	log := o.logger.With(
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.String("target", target.String()),
	)

	res, err := run(inputPath, outputPath, target, bitsPerSample, sampleRate, bitrate, &o, log)
	elapsed := time.Since(start)
	o.metrics.TranscodeDone(target.String(), elapsed.Seconds(), err)

	if err != nil {
		log.Error("transcode failed", slog.Any("error", err))
		return nil, err
	}
	res.Duration = elapsed

	log.Info("transcode finished",
		slog.String("format", res.InputFormat),
		slog.Uint64("samples", res.SamplesEncoded),
		slog.Int("frames", res.Frames),
		slog.Int("packets", res.Packets),
		slog.Duration("elapsed", elapsed),
	)

	return res, nil
}

func run(inputPath, outputPath string, target Target, bits, rate, bitrate int, o *options, log *slog.Logger) (res *Result, err error) {
	in, err := openInput(inputPath, o.registry)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	inDesc := in.src.Descriptor()
	outDesc, err := Resolve(target, inDesc, bits, rate, bitrate)
	if err != nil {
		return nil, err
	}

	conv, err := audio.NewConverter(inDesc, outDesc)
	if err != nil {
		return nil, err
	}

	log.Debug("streams resolved",
		slog.String("format", in.format),
		slog.String("in", inDesc.String()),
		slog.String("out", outDesc.String()),
		slog.Bool("passthrough", conv.Passthrough()),
	)

	enc, err := newEncoder(target, outputPath, outDesc, inDesc.SampleRate, o)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := enc.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("%w: close: %w", audio.ErrContainerWrite, closeErr)
		}
		if err != nil && !o.keepPartial {
			if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn("partial output not removed", slog.Any("error", rmErr))
			}
		}
	}()

	p := &pipeline{
		dec:  &decodeStage{src: in.src, metrics: o.metrics},
		conv: conv,
		enc:  &encodeStage{enc: enc, metrics: o.metrics},
		log:  log,
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	return &Result{
		InputFormat:    in.format,
		Input:          inDesc,
		Output:         enc.Descriptor(),
		SamplesDecoded: p.dec.samples,
		SamplesEncoded: p.enc.samples,
		Frames:         p.enc.frames,
		Packets:        p.enc.packets,
	}, nil
}

func newEncoder(target Target, path string, desc audio.StreamDescriptor, inRate int, o *options) (audio.Encoder, error) {
	switch target {
	case TargetFLAC:
		enc, err := flac.NewEncoder(path, desc, flac.WithBlockSize(o.flacBlockSize))
		if err != nil {
			return nil, err
		}
		return enc, nil

	case TargetWAV:
		enc, err := wav.NewEncoder(path, desc)
		if err != nil {
			return nil, err
		}
		return enc, nil

	case TargetAIFF:
		enc, err := aiff.NewEncoder(path, desc)
		if err != nil {
			return nil, err
		}
		return enc, nil

	case TargetMP3:
		enc, err := mp3.NewEncoder(path, desc)
		if err != nil {
			return nil, err
		}
		return enc, nil

	case TargetOpus:
		enc, err := opus.NewEncoder(path, desc.Channels, desc.Bitrate,
			opus.WithFrameSize(o.opusFrameSize), opus.WithInputSampleRate(inRate))
		if err != nil {
			return nil, err
		}
		return enc, nil
	}

	return nil, fmt.Errorf("%w: %w: %v", audio.ErrCodecInit, ErrUnknownTarget, target)
}

// pipeline moves samples from decoder to encoder through a FIFO that
// re-blocks them to the encoder frame size.
type pipeline struct {
	dec  *decodeStage
	conv *audio.Converter
	enc  *encodeStage
	log  *slog.Logger
}

func (p *pipeline) run() error {
	if err := p.enc.enc.WriteHeader(); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	frameSize := p.enc.enc.FrameSize()
	fifo := audio.NewFIFO(p.enc.enc.Descriptor(), frameSize)

	for done := false; !done; {
		for fifo.Size() < frameSize {
			f, err := p.dec.next()
			if errors.Is(err, io.EOF) {
				done = true
				break
			}
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}

			out, err := p.conv.Convert(f)
			if err != nil {
				return fmt.Errorf("%w: convert: %w", audio.ErrEncode, err)
			}
			if err := fifo.Write(out); err != nil {
				return fmt.Errorf("%w: %w", audio.ErrEncode, err)
			}
		}

		if done {
			if err := fifo.Write(p.conv.Flush()); err != nil {
				return fmt.Errorf("%w: %w", audio.ErrEncode, err)
			}
		}

		for fifo.Size() >= frameSize {
			f, err := fifo.Read(frameSize)
			if err != nil {
				return fmt.Errorf("%w: %w", audio.ErrEncode, err)
			}
			if err := p.enc.encode(f); err != nil {
				return err
			}
		}
	}

	if n := fifo.Size(); n > 0 {
		p.log.Debug("short final frame", slog.Int("samples", n), slog.Int("frame_size", frameSize))
		if err := p.enc.encode(fifo.ReadAtMost(n)); err != nil {
			return err
		}
	}

	if err := p.enc.flush(); err != nil {
		return err
	}

	return p.enc.finish()
}
