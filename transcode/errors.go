// SPDX-License-Identifier: EPL-2.0

package transcode

import "errors"

var (
	// ErrUnknownTarget indicates a target name ParseTarget does not know
	ErrUnknownTarget = errors.New("unknown target codec")

	// ErrUnsupportedBitDepth indicates an explicit bit depth the target cannot store
	ErrUnsupportedBitDepth = errors.New("bit depth not supported by target")

	// ErrUnsupportedSampleRate indicates an explicit sample rate the target cannot store
	ErrUnsupportedSampleRate = errors.New("sample rate not supported by target")
)
