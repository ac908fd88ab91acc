// SPDX-License-Identifier: EPL-2.0

// Package audio provides the building blocks of the transcoding pipeline.
//
// This package contains:
//   - StreamDescriptor and Frame, the data model shared by every stage
//   - Source and Encoder, the contracts decoders and encoders implement
//   - Registry for decoder lookup by format key or file signature
//   - Converter, which chains ChannelMixer and Resampler with sample
//     format conversion
//   - FIFO, the accumulation buffer between conversion and encoding
//   - the error classes every failure is reported under
//
// # Frames
//
// A Frame holds interleaved samples, either integer (Ints, with BitDepth
// significant bits) or float (Floats, nominally in [-1, 1]):
//
//	f := audio.NewIntFrame(2, 16, 1152)
//	f.NumSamples() // 1152, per channel
//
// # Conversion
//
// Converter takes frames in the decoder layout and returns frames in the
// encoder layout:
//
//	conv, err := audio.NewConverter(src.Descriptor(), enc.Descriptor())
//	out, err := conv.Convert(frame)
//	...
//	tail := conv.Flush() // resampler tail, once the input is done
//
// When the layouts match the frame is copied bit-exact. Integer to integer
// conversion at the same sample rate is done by shifting.
//
// # Buffering
//
// Decoders and encoders rarely agree on frame size (MP3 produces 1152
// samples, FLAC wants 4096, Opus 960). FIFO absorbs the difference:
//
//	q := audio.NewFIFO(enc.Descriptor(), enc.FrameSize())
//	q.Write(out)
//	for q.Size() >= enc.FrameSize() {
//	    block, _ := q.Read(enc.FrameSize())
//	    ...
//	}
//	last := q.ReadAtMost(enc.FrameSize())
//
// # Errors
//
// Failures wrap one class (ErrInputOpen, ErrCodecInit, ErrDecode,
// ErrEncode, ErrContainerWrite, ErrMetadata, ErrSpecification) plus the
// underlying cause, so both can be matched with errors.Is.
package audio
