// SPDX-License-Identifier: EPL-2.0

package opus

import "errors"

var (
	// ErrUnsupportedChannels indicates a channel count other than 1 or 2
	ErrUnsupportedChannels = errors.New("opus supports mono and stereo only")

	// ErrFrameTooLong indicates more samples than one Opus frame holds
	ErrFrameTooLong = errors.New("frame exceeds opus frame size")
)
