// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	frame, err := src.ReadFrame() // float frame, up to FrameLen samples per channel
//
// Samples are delivered as float32 in Vorbis channel order at the coded
// rate. TotalSamples comes from the last granule position, so Decode needs
// a seekable input to report it.
//
// Sniff accepts every Ogg stream. An Ogg Opus file is therefore routed here
// and fails in Decode instead of being silently misread.
package vorbis
