// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	// ErrNotFlacFile indicates the stream does not start with the fLaC signature
	ErrNotFlacFile = errors.New("not a FLAC file")

	// ErrNoStreamInfo indicates the first metadata block is not STREAMINFO
	ErrNoStreamInfo = errors.New("missing STREAMINFO block")

	// ErrBlockTooLarge indicates a metadata body does not fit the 24-bit length field
	ErrBlockTooLarge = errors.New("metadata block exceeds 16 MiB")

	// ErrUnsupportedBitDepth indicates a bit depth the frame header cannot express
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")

	// ErrUnsupportedChannels indicates a channel count outside 1..8
	ErrUnsupportedChannels = errors.New("unsupported FLAC channel count")

	// ErrFrameTooLong indicates a frame longer than the stream block size
	ErrFrameTooLong = errors.New("frame exceeds block size")
)
