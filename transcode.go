// SPDX-License-Identifier: EPL-2.0

package audtranscode

import (
	"github.com/ik5/audtranscode/seektable"
	"github.com/ik5/audtranscode/transcode"
)

// Transcode converts inputPath to outputPath as target and reports whether
// it succeeded. The error, if any, has been logged through slog.Default.
//
// bitsPerSample, sampleRate and bitrate may be 0 to inherit from the input
// or use the target default.
func Transcode(inputPath, outputPath string, target transcode.Target, bitsPerSample, sampleRate, bitrate int) bool {
	_, err := TranscodeErr(inputPath, outputPath, target, bitsPerSample, sampleRate, bitrate)
	return err == nil
}

// TranscodeErr is Transcode returning the result and error.
func TranscodeErr(inputPath, outputPath string, target transcode.Target, bitsPerSample, sampleRate, bitrate int, opts ...transcode.Option) (*transcode.Result, error) {
	return transcode.Run(inputPath, outputPath, target, bitsPerSample, sampleRate, bitrate, opts...)
}

// AddSeekTable writes a seek table with one point per second into the FLAC
// file at path and reports whether it succeeded.
func AddSeekTable(path string) bool {
	_, err := AddSeekTableErr(path)
	return err == nil
}

// AddSeekTableErr is AddSeekTable returning the report and error.
func AddSeekTableErr(path string, opts ...seektable.Option) (*seektable.Report, error) {
	return seektable.Add(path, opts...)
}
