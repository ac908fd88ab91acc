package flac

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audtranscode/audio"
	"github.com/mewkiz/flac/meta"
)

// writeTestFile encodes a ramp of total samples per channel in blocks of
// blockSize and returns the samples it wrote.
func writeTestFile(t *testing.T, path string, channels, bits, rate, total, blockSize int) []int32 {
	t.Helper()

	desc := audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: bits, SampleRate: rate, Channels: channels}
	enc, err := NewEncoder(path, desc, WithBlockSize(blockSize))
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	defer enc.Close()

	if err := enc.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	limit := int32(1) << (bits - 2)
	var all []int32
	for off := 0; off < total; off += blockSize {
		n := min(blockSize, total-off)
		f := audio.NewIntFrame(channels, bits, n)
		for i := range f.Ints {
			f.Ints[i] = int32(off*channels+i)%limit - limit/2
		}
		all = append(all, f.Ints...)

		if _, err := enc.Encode(f); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}

	if err := enc.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer() error = %v", err)
	}

	return all
}

func decodeFile(t *testing.T, path string) (audio.StreamDescriptor, []int32) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	var all []int32
	for {
		fr, err := src.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		all = append(all, fr.Ints...)
	}

	return src.Descriptor(), all
}

func TestEncoder_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		channels  int
		bits      int
		rate      int
		total     int
		blockSize int
	}{
		{name: "stereo 16 bit with short tail", channels: 2, bits: 16, rate: 44100, total: 10000, blockSize: 4096},
		{name: "mono 24 bit", channels: 1, bits: 24, rate: 48000, total: 8192, blockSize: 4096},
		{name: "8 bit small blocks", channels: 2, bits: 8, rate: 8000, total: 1000, blockSize: 192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.flac")
			want := writeTestFile(t, path, tt.channels, tt.bits, tt.rate, tt.total, tt.blockSize)

			desc, got := decodeFile(t, path)
			if desc.TotalSamples != uint64(tt.total) {
				t.Errorf("TotalSamples = %d, want %d", desc.TotalSamples, tt.total)
			}
			if desc.BitDepth != tt.bits || desc.Channels != tt.channels || desc.SampleRate != tt.rate {
				t.Errorf("Descriptor() = %v", desc)
			}
			if len(got) != len(want) {
				t.Fatalf("decoded %d values, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("sample %d = %d, want %d", i, got[i], want[i])
				}
			}
		})
	}
}

func TestEncoder_StreamInfoPatched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "info.flac")
	writeTestFile(t, path, 2, 16, 44100, 5000, 4096)

	chain, err := ReadChain(path)
	if err != nil {
		t.Fatalf("ReadChain() error = %v", err)
	}
	si, err := chain.StreamInfo()
	if err != nil {
		t.Fatalf("StreamInfo() error = %v", err)
	}

	if si.NSamples != 5000 {
		t.Errorf("NSamples = %d, want 5000", si.NSamples)
	}
	// The short last block must not lower the minimum.
	if si.BlockSizeMin != 4096 || si.BlockSizeMax != 4096 {
		t.Errorf("block size bounds = [%d, %d], want [4096, 4096]", si.BlockSizeMin, si.BlockSizeMax)
	}
	if si.FrameSizeMin == 0 || si.FrameSizeMax < si.FrameSizeMin {
		t.Errorf("frame size bounds = [%d, %d]", si.FrameSizeMin, si.FrameSizeMax)
	}
	if si.MD5sum == ([16]uint8{}) {
		t.Error("MD5sum was not filled in")
	}
}

func TestNewEncoder_Rejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		desc audio.StreamDescriptor
	}{
		{name: "float", desc: audio.StreamDescriptor{Format: audio.SampleFloat, SampleRate: 44100, Channels: 2}},
		{name: "32 bit", desc: audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: 32, SampleRate: 44100, Channels: 2}},
		{name: "nine channels", desc: audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: 16, SampleRate: 44100, Channels: 9}},
		{name: "zero rate", desc: audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: 16, Channels: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.name+".flac")
			if _, err := NewEncoder(path, tt.desc); !errors.Is(err, audio.ErrCodecInit) {
				t.Errorf("NewEncoder() error = %v, want ErrCodecInit", err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("rejected encoder created the output file")
			}
		})
	}
}

func TestEncoder_FrameTooLong(t *testing.T) {
	t.Parallel()

	desc := audio.StreamDescriptor{Format: audio.SampleInt, BitDepth: 16, SampleRate: 44100, Channels: 1}
	enc, err := NewEncoder(filepath.Join(t.TempDir(), "long.flac"), desc, WithBlockSize(256))
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	if err := enc.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(audio.NewIntFrame(1, 16, 257)); !errors.Is(err, ErrFrameTooLong) {
		t.Errorf("Encode() error = %v, want ErrFrameTooLong", err)
	}
}

func TestEncodeStreamInfo(t *testing.T) {
	t.Parallel()

	in := &meta.StreamInfo{
		BlockSizeMin:  4096,
		BlockSizeMax:  4096,
		FrameSizeMin:  14,
		FrameSizeMax:  16390,
		SampleRate:    96000,
		NChannels:     6,
		BitsPerSample: 24,
		NSamples:      1<<35 + 7,
	}
	in.MD5sum[0], in.MD5sum[15] = 0xAB, 0xCD

	raw := append([]byte{byte(meta.TypeStreamInfo) | 0x80, 0, 0, StreamInfoLen}, EncodeStreamInfo(in)...)
	block, err := meta.Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("meta.Parse() error = %v", err)
	}

	got, ok := block.Body.(*meta.StreamInfo)
	if !ok {
		t.Fatalf("Body is %T", block.Body)
	}
	if *got != *in {
		t.Errorf("round trip = %+v, want %+v", *got, *in)
	}
}
