// SPDX-License-Identifier: EPL-2.0

// Package audtranscode converts audio files between formats and adds seek
// tables to FLAC files.
//
// # Supported Formats
//
// Inputs are recognized by content, then by extension:
//   - FLAC via formats/flac
//   - WAV (PCM 8 to 32-bit, IEEE float) via formats/wav
//   - AIFF and AIFF-C (uncompressed) via formats/aiff
//   - Ogg Vorbis via formats/vorbis
//   - MP3 via formats/mp3
//
// Outputs are Opus in Ogg, FLAC, WAV and AIFF.
//
// # Quick Start
//
//	if !audtranscode.Transcode("song.mp3", "song.flac", transcode.TargetFLAC, 0, 0, 0) {
//	    // the error was logged
//	}
//	audtranscode.AddSeekTable("song.flac")
//
// Transcode and AddSeekTable log failures and return false. TranscodeErr
// and AddSeekTableErr return the error instead, together with counters
// describing the work done:
//
//	res, err := audtranscode.TranscodeErr("in.wav", "out.opus", transcode.TargetOpus, 0, 0, 96000)
//	if errors.Is(err, audio.ErrInputOpen) {
//	    // unreadable or unrecognized input
//	}
//
// # Packages
//
//   - transcode: the decode, convert, re-block and encode pipeline
//   - seektable: seek point specifications and seek table synthesis
//   - audio: stream types, converter, FIFO and the decoder registry
//   - formats/...: one package per container
//
// The audtranscode command in cmd/audtranscode wraps both operations.
package audtranscode
