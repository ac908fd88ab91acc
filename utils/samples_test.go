// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		bits  int
		want  int32
	}{
		{name: "zero", input: 0, bits: 16, want: 0},
		{name: "positive full scale clamps", input: 1, bits: 16, want: math.MaxInt16},
		{name: "negative full scale", input: -1, bits: 16, want: math.MinInt16},
		{name: "half", input: 0.5, bits: 16, want: 16384},
		{name: "negative half", input: -0.5, bits: 16, want: -16384},
		{name: "over range", input: 3, bits: 16, want: math.MaxInt16},
		{name: "under range", input: -3, bits: 16, want: math.MinInt16},
		{name: "24 bit half", input: 0.5, bits: 24, want: 1 << 22},
		{name: "8 bit negative", input: -1, bits: 8, want: -128},
		{name: "32 bit clamp", input: 1, bits: 32, want: math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt(tt.input, tt.bits); got != tt.want {
				t.Errorf("Float32ToInt(%v, %d) = %d, want %d", tt.input, tt.bits, got, tt.want)
			}
		})
	}
}

func TestIntFloatRoundTrip(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{8, 16, 24} {
		limit := int32(1) << (bits - 1)
		step := max(limit/512, 1)

		for v := -limit; v < limit; v += step {
			if got := Float32ToInt(IntToFloat32(v, bits), bits); got != v {
				t.Fatalf("bits=%d: round trip of %d gave %d", bits, v, got)
			}
		}
	}
}

func TestShiftBits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        int32
		from, to int
		want     int32
	}{
		{name: "widen 16 to 24", v: -1234, from: 16, to: 24, want: -1234 << 8},
		{name: "narrow 24 to 16", v: 0x123456, from: 24, to: 16, want: 0x1234},
		{name: "narrow negative", v: -256, from: 24, to: 16, want: -1},
		{name: "same depth", v: 77, from: 20, to: 20, want: 77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ShiftBits(tt.v, tt.from, tt.to); got != tt.want {
				t.Errorf("ShiftBits() = %d, want %d", got, tt.want)
			}
		})
	}
}
