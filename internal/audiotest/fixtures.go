// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/formats/flac"
	"github.com/ik5/audtranscode/formats/wav"
)

// Pipe writes every frame of src to enc, re-blocked to enc.FrameSize, and
// finalizes the container. It returns the samples per channel written.
func Pipe(t testing.TB, src audio.Source, enc audio.Encoder) int {
	t.Helper()

	if err := enc.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	fifo := audio.NewFIFO(enc.Descriptor(), enc.FrameSize())

	total := 0
	emit := func(f *audio.Frame) {
		if _, err := enc.Encode(f); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		total += f.NumSamples()
	}

	for {
		f, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}

		if err := fifo.Write(f); err != nil {
			t.Fatalf("FIFO Write() error = %v", err)
		}
		for fifo.Size() >= enc.FrameSize() {
			out, err := fifo.Read(enc.FrameSize())
			if err != nil {
				t.Fatalf("FIFO Read() error = %v", err)
			}
			emit(out)
		}
	}
	if fifo.Size() > 0 {
		emit(fifo.ReadAtMost(fifo.Size()))
	}

	if err := enc.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return total
}

// WriteFLAC writes a sine wave FLAC file of total samples per channel
// using blockSize samples per frame.
func WriteFLAC(t testing.TB, path string, channels, bits, rate, total, blockSize int) {
	t.Helper()

	desc := audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: bits, SampleRate: rate, Channels: channels}
	enc, err := flac.NewEncoder(path, desc, flac.WithBlockSize(blockSize))
	if err != nil {
		t.Fatalf("flac.NewEncoder() error = %v", err)
	}

	src := NewSineSource(rate, channels, total, 440).AsInt(bits)
	Pipe(t, src, enc)
}

// WriteWAV writes a sine wave WAV file of total samples per channel.
func WriteWAV(t testing.TB, path string, channels, bits, rate, total int) {
	t.Helper()

	desc := audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: bits, SampleRate: rate, Channels: channels}
	enc, err := wav.NewEncoder(path, desc)
	if err != nil {
		t.Fatalf("wav.NewEncoder() error = %v", err)
	}

	src := NewSineSource(rate, channels, total, 440).AsInt(bits)
	Pipe(t, src, enc)
}
