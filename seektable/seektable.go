// SPDX-License-Identifier: EPL-2.0

package seektable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/formats/flac"
	"github.com/ik5/audtranscode/internal/metrics"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// DefaultSpec asks for one point per second.
const DefaultSpec = "1s;"

// Table is a resolved seek table: ascending sample numbers, offsets
// relative to the first frame header.
type Table []meta.SeekPoint

// SampleNums lists the sample number of every point.
func (t Table) SampleNums() []uint64 {
	out := make([]uint64, len(t))
	for i, p := range t {
		out[i] = p.SampleNum
	}
	return out
}

// Report describes a completed Add.
type Report struct {
	Table        Table
	Points       int
	Frames       int
	TotalSamples uint64
	InPlace      bool
}

type options struct {
	spec    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures Add.
type Option func(*options)

// WithSpec replaces DefaultSpec.
func WithSpec(spec string) Option {
	return func(o *options) { o.spec = spec }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records seek table counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Add computes a seek table for the FLAC file at path and writes it into
// the file's metadata. Existing seek points are kept. The file is not
// modified when any step before the write fails.
func Add(path string, opts ...Option) (*Report, error) {
	o := options{spec: DefaultSpec, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	log := o.logger.With(slog.String("path", path))

	report, err := add(path, &o, log)

	points, frames, inPlace := 0, 0, false
	if report != nil {
		points, frames, inPlace = report.Points, report.Frames, report.InPlace
	}
	o.metrics.SeekTableDone(points, frames, inPlace, time.Since(start).Seconds(), err)

	if err != nil {
		log.Error("seek table failed", slog.Any("error", err))
		return nil, err
	}

	log.Info("seek table written",
		slog.Int("points", report.Points),
		slog.Int("frames", report.Frames),
		slog.Bool("in_place", report.InPlace),
	)

	return report, nil
}

func add(path string, o *options, log *slog.Logger) (*Report, error) {
	chain, err := flac.ReadChain(path)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", audio.ErrMetadata, err)
	}

	info, err := chain.StreamInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrMetadata, err)
	}
	if info.NSamples == 0 {
		return nil, fmt.Errorf("%w: total samples unknown", audio.ErrMetadata)
	}

	idx, existing, err := chain.SeekTable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrMetadata, err)
	}
	if idx < 0 {
		idx = 1
		chain.Insert(idx, &flac.Block{Type: meta.TypeSeekTable})
	}

	specs, _ := Parse(o.spec, info.NSamples, info.SampleRate, WithParseLogger(log))

	template := make([]meta.SeekPoint, 0, len(existing))
	for _, p := range existing {
		if p.SampleNum != meta.PlaceholderPoint {
			template = append(template, meta.SeekPoint{SampleNum: p.SampleNum})
		}
	}
	template = Compact(append(template, Expand(specs, info.NSamples)...))

	log.Debug("seek table template",
		slog.Int("existing", len(existing)),
		slog.Int("template", len(template)),
		slog.Uint64("total_samples", info.NSamples),
	)

	t := newTracker(template, chain.AudioOffset)
	if err := scan(path, t); err != nil {
		return nil, err
	}

	table := t.resolved(info.NSamples)
	chain.SetSeekTable(idx, table)

	inPlace, err := chain.WriteFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrMetadata, err)
	}

	return &Report{
		Table:        table,
		Points:       len(table),
		Frames:       t.frames,
		TotalSamples: info.NSamples,
		InPlace:      inPlace,
	}, nil
}

// scan walks every audio frame of the file, feeding t.
func scan(path string, t *tracker) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}
	defer f.Close()

	if _, err := f.Seek(t.audioOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrDecode, err)
	}

	cr := &countingReader{r: bufio.NewReader(f), n: t.audioOffset}
	for {
		offset := cr.n

		fr, err := frame.New(cr)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: frame %d at offset %d: %w", audio.ErrDecode, t.frames, offset, err)
		}
		if err := fr.Parse(); err != nil {
			return fmt.Errorf("%w: frame %d at offset %d: %w", audio.ErrDecode, t.frames, offset, err)
		}

		t.frame(offset, fr.BlockSize)
	}
}
