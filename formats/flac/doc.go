// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC decoding, encoding and metadata editing.
//
// This package uses github.com/mewkiz/flac for frame parsing, frame
// writing and typed metadata decoding.
//
// # Decoding
//
//	source, err := flac.Decoder{}.Decode(file)
//	frame, err := source.ReadFrame() // interleaved int32 at the stream bit depth
//
// # Encoding
//
// The Encoder writes fixed block size frames (DefaultBlockSize samples per
// channel, the last frame may be shorter). Bit depth must be one of
// ValidBitDepths. STREAMINFO is patched after the last frame with the
// sample count, frame size bounds and the MD5 of the unencoded audio:
//
//	enc, err := flac.NewEncoder("out.flac", desc)
//	enc.WriteHeader()
//	enc.Encode(frame)
//	enc.WriteTrailer()
//	enc.Close()
//
// # Metadata
//
// Chain holds the metadata blocks as raw bytes:
//
//	chain, err := flac.ReadChain("song.flac")
//	idx, points, err := chain.SeekTable()
//	chain.SetSeekTable(idx, points)
//	inPlace, err := chain.WriteFile("song.flac")
//
// WriteFile reuses the space of the old metadata section (including
// padding) when the new chain fits, and otherwise rewrites the file through
// a temporary file that is renamed over the original.
package flac
