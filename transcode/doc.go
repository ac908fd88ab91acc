// SPDX-License-Identifier: EPL-2.0

// Package transcode converts an audio file from any supported input format
// to Opus, FLAC, WAV or AIFF.
//
// A transcode runs four stages in one goroutine:
//
//	decoder -> converter -> FIFO -> encoder
//
// The decoder is picked by sniffing the first bytes of the input, falling
// back to the file extension. The converter maps channels, sample rate and
// sample format to what the encoder accepts. The FIFO re-blocks converted
// samples into the encoder frame size, so every frame handed to the
// encoder is full except the last one. Each frame is stamped with a
// running sample position which the Opus encoder uses as the packet
// timestamp.
//
//	res, err := transcode.Run("in.mp3", "out.flac", transcode.TargetFLAC, 0, 0, 0)
//
// Zero bit depth, sample rate or bitrate select defaults derived from the
// input (see Resolve).
//
// # Error Handling
//
// Errors wrap the classes in package audio: ErrInputOpen, ErrCodecInit,
// ErrDecode, ErrEncode and ErrContainerWrite. A failed transcode removes its
// output file unless WithKeepPartial is set.
package transcode
