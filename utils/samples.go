// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// FullScale returns 2^(bits-1), the magnitude of the most negative integer
// sample at the given bit depth.
func FullScale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

// IntToFloat32 normalizes an integer sample of the given bit depth to [-1, 1).
func IntToFloat32(v int32, bits int) float32 {
	return float32(float64(v) / FullScale(bits))
}

// Float32ToInt scales x to an integer sample of the given bit depth,
// rounding to nearest and clamping to the representable range.
func Float32ToInt(x float32, bits int) int32 {
	scale := FullScale(bits)
	v := math.Round(float64(x) * scale)

	if v > scale-1 {
		return int32(scale - 1)
	}
	if v < -scale {
		return int32(-scale)
	}

	return int32(v)
}

// ShiftBits moves an integer sample from one bit depth to another.
// Widening is exact; narrowing truncates the low bits.
func ShiftBits(v int32, from, to int) int32 {
	switch {
	case to > from:
		return v << (to - from)
	case to < from:
		return v >> (from - to)
	default:
		return v
	}
}
