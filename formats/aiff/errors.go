// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the stream lacks a FORM/AIFF or FORM/AIFC header
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth indicates a sample width the codec cannot carry
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")

	// ErrUnsupportedAiffLayout indicates a compressed AIFF-C encoding or a
	// missing sound data chunk
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
