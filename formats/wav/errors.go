// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile indicates the input lacks a RIFF/WAVE header
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedWavLayout indicates a format tag other than PCM or IEEE float
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")

	// ErrUnsupportedBitDepth indicates a sample width the codec cannot carry
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")

	// ErrUnsupportedWavChunks indicates the data chunk could not be located
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")
)
