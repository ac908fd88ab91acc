// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Failure classes. Every error returned by the pipeline and the seek table
// writer wraps exactly one of these.
var (
	ErrInputOpen      = errors.New("cannot open input")
	ErrCodecInit      = errors.New("codec initialization failed")
	ErrDecode         = errors.New("decode failed")
	ErrEncode         = errors.New("encode failed")
	ErrContainerWrite = errors.New("container write failed")
	ErrMetadata       = errors.New("metadata failure")
	ErrSpecification  = errors.New("invalid seek point specification")
)

var (
	ErrInvalidFrameSize  = errors.New("sample count must be a multiple of channels")
	ErrInvalidDescriptor = errors.New("invalid stream descriptor")
	ErrFormatMismatch    = errors.New("frame layout does not match stream")
	ErrShortRead         = errors.New("fifo holds fewer samples than requested")
	ErrUnknownFormat     = errors.New("unrecognized input format")
)
