// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding and encoding.
//
// Decoding uses github.com/hajimehoshi/go-mp3. Encoding uses the pure Go
// shine port github.com/braheezy/shine-mp3 at a constant 128 kbit/s.
//
// # Output Format
//
// go-mp3 always produces 16-bit stereo, duplicating mono streams, so
// every Source reports:
//   - Format: integer, 16 bits
//   - Channels: 2
//   - Sample rate: from the first frame header
//
// ReadFrame returns FrameLen (1152) samples per channel, the size of one
// Layer III frame. TotalSamples is derived from go-mp3's length estimate,
// which requires a seekable input.
//
// # Encoding
//
// The Encoder takes 16-bit mono or stereo at 32000, 44100 or 48000 Hz.
// Samples are held in memory and encoded by Flush, which returns the
// number of MP3 frames written.
//
// # Detection
//
// Sniff accepts a leading ID3v2 tag or a Layer III frame sync.
package mp3
