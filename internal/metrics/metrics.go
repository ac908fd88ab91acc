// SPDX-License-Identifier: EPL-2.0

// Package metrics counts transcodes and seek table runs on a private
// Prometheus registry. Every method is safe on a nil *Metrics, so library
// code can record unconditionally.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audtranscode"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics contains all Prometheus metrics for one process.
type Metrics struct {
	Registry *prometheus.Registry

	// Transcode metrics
	Transcodes       *prometheus.CounterVec
	SamplesDecoded   prometheus.Counter
	SamplesEncoded   prometheus.Counter
	FramesWritten    prometheus.Counter
	PacketsWritten   prometheus.Counter
	TranscodeSeconds prometheus.Histogram

	// Seek table metrics
	SeekTables        *prometheus.CounterVec
	SeekPointsWritten prometheus.Counter
	FramesScanned     prometheus.Counter
	InPlaceWrites     prometheus.Counter
	SeekTableSeconds  prometheus.Histogram
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		Transcodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcodes_total",
			Help:      "Transcode runs by target codec and result",
		}, []string{"target", "result"}),
		SamplesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_decoded_total",
			Help:      "Samples per channel read from inputs",
		}),
		SamplesEncoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_encoded_total",
			Help:      "Samples per channel handed to encoders",
		}),
		FramesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_written_total",
			Help:      "Encoder frames written",
		}),
		PacketsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_written_total",
			Help:      "Packets that reached an output container",
		}),
		TranscodeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_duration_seconds",
			Help:      "Wall time of transcode runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),

		SeekTables: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seektables_total",
			Help:      "Seek table runs by result",
		}, []string{"result"}),
		SeekPointsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seekpoints_written_total",
			Help:      "Seek points stored in FLAC files",
		}),
		FramesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flac_frames_scanned_total",
			Help:      "FLAC frames walked while resolving seek points",
		}),
		InPlaceWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_inplace_writes_total",
			Help:      "Metadata chains written without rewriting the audio",
		}),
		SeekTableSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "seektable_duration_seconds",
			Help:      "Wall time of seek table runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// TranscodeDone records one finished transcode.
func (m *Metrics) TranscodeDone(target string, seconds float64, err error) {
	if m == nil {
		return
	}

	m.Transcodes.WithLabelValues(target, result(err)).Inc()
	m.TranscodeSeconds.Observe(seconds)
}

// AddDecoded counts samples per channel read from an input.
func (m *Metrics) AddDecoded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SamplesDecoded.Add(float64(n))
}

// AddFrame counts one encoder frame of n samples that produced packets.
func (m *Metrics) AddFrame(n, packets int) {
	if m == nil {
		return
	}

	m.FramesWritten.Inc()
	m.SamplesEncoded.Add(float64(n))
	m.PacketsWritten.Add(float64(packets))
}

// AddPackets counts packets emitted outside a frame, e.g. by a flush.
func (m *Metrics) AddPackets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PacketsWritten.Add(float64(n))
}

// SeekTableDone records one finished seek table run.
func (m *Metrics) SeekTableDone(points, frames int, inPlace bool, seconds float64, err error) {
	if m == nil {
		return
	}

	m.SeekTables.WithLabelValues(result(err)).Inc()
	m.SeekTableSeconds.Observe(seconds)
	if err != nil {
		return
	}

	m.SeekPointsWritten.Add(float64(points))
	m.FramesScanned.Add(float64(frames))
	if inPlace {
		m.InPlaceWrites.Inc()
	}
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
