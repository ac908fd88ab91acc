// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrUnsupportedChannels indicates a channel count other than 1 or 2
	ErrUnsupportedChannels = errors.New("mp3 supports mono and stereo only")

	// ErrUnsupportedSampleRate indicates a rate MPEG-1 Layer III cannot carry
	ErrUnsupportedSampleRate = errors.New("unsupported mp3 sample rate")

	// ErrUnsupportedBitrate indicates a bitrate other than the encoder's
	// constant rate
	ErrUnsupportedBitrate = errors.New("unsupported mp3 bitrate")
)
