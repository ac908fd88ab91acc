package audio

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestConverter_Passthrough(t *testing.T) {
	t.Parallel()

	desc := intDesc(2, 16)
	c, err := NewConverter(desc, desc)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if !c.Passthrough() {
		t.Fatal("Passthrough() = false for identical descriptors")
	}

	in := rampFrame(2, 16, 0, 64)
	out, err := c.Convert(in)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !slices.Equal(out.Ints, in.Ints) {
		t.Error("passthrough changed samples")
	}

	out.Ints[0] = 99
	if in.Ints[0] == 99 {
		t.Error("passthrough aliased the input")
	}
}

func TestConverter_IntDepth(t *testing.T) {
	t.Parallel()

	c, _ := NewConverter(intDesc(1, 16), intDesc(1, 24))
	in := NewIntFrame(1, 16, 3)
	copy(in.Ints, []int32{1, -1, math.MaxInt16})

	out, err := c.Convert(in)
	if err != nil {
		t.Fatal(err)
	}

	want := []int32{256, -256, math.MaxInt16 << 8}
	if !slices.Equal(out.Ints, want) || out.BitDepth != 24 {
		t.Errorf("Convert() = %v @%d, want %v @24", out.Ints, out.BitDepth, want)
	}
}

func TestConverter_FloatToInt(t *testing.T) {
	t.Parallel()

	in := StreamDescriptor{Format: SampleFloat, SampleRate: 44100, Channels: 2}
	c, _ := NewConverter(in, intDesc(1, 16))

	f := NewFloatFrame(2, 2)
	copy(f.Floats, []float32{0.5, 0.5, -1, 0})

	out, err := c.Convert(f)
	if err != nil {
		t.Fatal(err)
	}

	want := []int32{16384, -16384}
	if !slices.Equal(out.Ints, want) {
		t.Errorf("Convert() = %v, want %v", out.Ints, want)
	}
}

func TestConverter_IntToFloat(t *testing.T) {
	t.Parallel()

	out := StreamDescriptor{Format: SampleFloat, SampleRate: 44100, Channels: 1}
	c, _ := NewConverter(intDesc(1, 24), out)

	f := NewIntFrame(1, 24, 2)
	copy(f.Ints, []int32{1 << 22, -(1 << 23)})

	got, err := c.Convert(f)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Floats, []float32{0.5, -1}) {
		t.Errorf("Convert() = %v", got.Floats)
	}
}

func TestConverter_ResampleRoundTripCount(t *testing.T) {
	t.Parallel()

	in := StreamDescriptor{Format: SampleFloat, SampleRate: 44100, Channels: 2}
	out := StreamDescriptor{Format: SampleInt, BitDepth: 16, SampleRate: 48000, Channels: 2}
	c, err := NewConverter(in, out)
	if err != nil {
		t.Fatal(err)
	}

	src := newSineSource(44100, 2, 44100, 1000)
	total := 0
	for {
		f, err := src.ReadFrame()
		if err != nil {
			break
		}
		g, err := c.Convert(f)
		if err != nil {
			t.Fatal(err)
		}
		total += g.NumSamples()
	}
	total += c.Flush().NumSamples()

	if total != 48000 {
		t.Errorf("converted %d samples, want 48000", total)
	}
}

func TestConverter_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewConverter(intDesc(0, 16), intDesc(2, 16)); !errors.Is(err, ErrCodecInit) {
		t.Errorf("NewConverter() error = %v, want ErrCodecInit", err)
	}

	c, _ := NewConverter(intDesc(2, 16), intDesc(2, 24))
	if _, err := c.Convert(NewIntFrame(1, 16, 4)); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Convert() error = %v, want ErrFormatMismatch", err)
	}

	empty, err := c.Convert(nil)
	if err != nil || !empty.Empty() {
		t.Errorf("Convert(nil) = %v, %v", empty, err)
	}
	if tail := c.Flush(); !tail.Empty() {
		t.Error("Flush() without resampler returned samples")
	}
}
