// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding and
// encoding.
//
// This package uses github.com/go-audio/aiff in both directions.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
// Decoding:
//   - AIFF and uncompressed AIFC
//   - PCM 8, 16, 24 and 32-bit, big-endian
//   - Any channel count and sample rate
//
// Encoding writes PCM at 16, 24 or 32 bits.
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	frame, err := source.ReadFrame()
//
// Frames carry integer samples at the file's bit depth, up to FrameLen
// per channel. TotalSamples comes from the COMM chunk frame count.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: a sample width outside the lists above
//   - ErrUnsupportedAiffLayout: no usable COMM chunk
package aiff
