// SPDX-License-Identifier: EPL-2.0

// Package opus provides Opus encoding into Ogg files.
//
// Encoding uses gopkg.in/hraban/opus.v2 (libopus bindings). Packets are
// written one per Ogg page with granule positions counted in samples, so a
// decoder skips exactly PreSkip samples of encoder lookahead at the start
// and trims the silence padding the last frame at the end.
//
// The encoder always runs at 48kHz with 960-sample (20ms) frames by
// default. Bitrate 0 selects 64 kbit/s per channel.
//
//	enc, err := opus.NewEncoder("out.opus", 2, 0)
//	enc.WriteHeader()
//	frame.PTS = 0
//	enc.Encode(frame) // up to 960 float samples per channel
//	enc.Flush()       // lookahead packets
//	enc.WriteTrailer()
//	enc.Close()
//
// Only mono and stereo are supported.
package opus
