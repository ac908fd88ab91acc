// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"fmt"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/internal/metrics"
)

// decodeStage pulls non-empty frames from a source.
type decodeStage struct {
	src     audio.Source
	metrics *metrics.Metrics

	samples uint64
}

// next returns the next frame holding samples, or io.EOF.
func (d *decodeStage) next() (*audio.Frame, error) {
	for {
		f, err := d.src.ReadFrame()
		if err != nil {
			return nil, err
		}
		if f.Empty() {
			continue
		}

		n := f.NumSamples()
		d.samples += uint64(n)
		d.metrics.AddDecoded(n)

		return f, nil
	}
}

// encodeStage stamps frames with the running sample position and hands
// them to the encoder.
type encodeStage struct {
	enc     audio.Encoder
	metrics *metrics.Metrics

	// pts is the position of the next frame in output samples per
	// channel. It only moves forward.
	pts     int64
	samples uint64
	frames  int
	packets int
}

func (e *encodeStage) encode(f *audio.Frame) error {
	n := f.NumSamples()
	f.PTS = e.pts

	packets, err := e.enc.Encode(f)
	if err != nil {
		return fmt.Errorf("frame at %d: %w", e.pts, err)
	}

	e.pts += int64(n)
	e.samples += uint64(n)
	e.frames++
	e.packets += packets
	e.metrics.AddFrame(n, packets)

	return nil
}

func (e *encodeStage) flush() error {
	packets, err := e.enc.Flush()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	e.packets += packets
	e.metrics.AddPackets(packets)

	return nil
}

func (e *encodeStage) finish() error {
	if err := e.enc.WriteTrailer(); err != nil {
		return fmt.Errorf("trailer: %w", err)
	}

	return nil
}
