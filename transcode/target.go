// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/formats/aiff"
	"github.com/ik5/audtranscode/formats/flac"
	"github.com/ik5/audtranscode/formats/mp3"
	"github.com/ik5/audtranscode/formats/opus"
	"github.com/ik5/audtranscode/formats/wav"
)

// Target is the output codec of a transcode.
type Target int

const (
	TargetOpus Target = iota + 1
	TargetFLAC
	TargetWAV
	TargetAIFF
	TargetMP3
)

// MaxFLACSampleRate is the largest rate STREAMINFO can hold.
const MaxFLACSampleRate = 655350

var targetNames = map[string]Target{
	"opus": TargetOpus,
	"ogg":  TargetOpus,
	"flac": TargetFLAC,
	"wav":  TargetWAV,
	"aiff": TargetAIFF,
	"aif":  TargetAIFF,
	"mp3":  TargetMP3,
}

// ParseTarget maps a codec name (case insensitive) to a Target.
func ParseTarget(s string) (Target, error) {
	t, ok := targetNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}

	return t, nil
}

func (t Target) String() string {
	switch t {
	case TargetOpus:
		return "opus"
	case TargetFLAC:
		return "flac"
	case TargetWAV:
		return "wav"
	case TargetAIFF:
		return "aiff"
	case TargetMP3:
		return "mp3"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Lossless reports whether the target stores PCM exactly.
func (t Target) Lossless() bool {
	return t == TargetFLAC || t == TargetWAV || t == TargetAIFF
}

// Codec is the codec the target's encoder produces.
func (t Target) Codec() audio.Codec {
	switch t {
	case TargetOpus:
		return audio.CodecOpus
	case TargetFLAC:
		return audio.CodecFLAC
	case TargetWAV:
		return audio.CodecWAV
	case TargetAIFF:
		return audio.CodecAIFF
	case TargetMP3:
		return audio.CodecMP3
	default:
		return ""
	}
}

// Resolve fills in the output descriptor for in. Zero bitsPerSample or
// sampleRate inherit from the input where the target can store it. The
// channel count is always inherited, except that Opus and MP3 take at most
// two. MP3 output is 16-bit; an inherited rate it cannot carry moves to the
// nearest MPEG-1 rate.
func Resolve(t Target, in audio.StreamDescriptor, bitsPerSample, sampleRate, bitrate int) (audio.StreamDescriptor, error) {
	out := audio.StreamDescriptor{
		Codec:    t.Codec(),
		Format:   audio.SampleInt,
		Channels: in.Channels,
	}

	switch t {
	case TargetOpus:
		out.Format = audio.SampleFloat
		out.BitDepth = 32
		out.SampleRate = opus.SampleRate
		out.Channels = min(max(in.Channels, 1), 2)
		out.Bitrate = opus.Bitrate(bitrate, out.Channels)
		return out, nil

	case TargetMP3:
		br, err := mp3.Bitrate(bitrate)
		if err != nil {
			return out, err
		}
		out.Bitrate = br
		out.BitDepth = 16
		out.Channels = min(max(in.Channels, 1), 2)

		switch {
		case sampleRate == 0:
			out.SampleRate = mp3.NearestSampleRate(in.SampleRate)
		case slices.Contains(mp3.SampleRates, sampleRate):
			out.SampleRate = sampleRate
		default:
			return out, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedSampleRate, sampleRate)
		}

	case TargetFLAC:
		bits, err := resolveBits(in, bitsPerSample, flac.ValidBitDepths, 24)
		if err != nil {
			return out, err
		}
		out.BitDepth = bits

		out.SampleRate = cmp.Or(sampleRate, in.SampleRate)
		if out.SampleRate <= 0 || out.SampleRate > MaxFLACSampleRate {
			return out, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedSampleRate, out.SampleRate)
		}

	case TargetWAV, TargetAIFF:
		valid := wav.ValidBitDepths
		if t == TargetAIFF {
			valid = aiff.ValidBitDepths
		}
		bits, err := resolveBits(in, bitsPerSample, valid, 16)
		if err != nil {
			return out, err
		}
		out.BitDepth = bits

		out.SampleRate = cmp.Or(sampleRate, in.SampleRate)
		if out.SampleRate <= 0 {
			return out, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedSampleRate, out.SampleRate)
		}

	default:
		return out, fmt.Errorf("%w: %w: %v", audio.ErrCodecInit, ErrUnknownTarget, t)
	}

	if in.SampleRate == out.SampleRate {
		out.TotalSamples = in.TotalSamples
	}

	return out, nil
}

// resolveBits picks the output depth from valid. A float input maps to 16
// bits, an integer input deeper than every valid depth maps to wide.
func resolveBits(in audio.StreamDescriptor, requested int, valid []int, wide int) (int, error) {
	if requested != 0 {
		if !slices.Contains(valid, requested) {
			return 0, fmt.Errorf("%w: %w: %d", audio.ErrCodecInit, ErrUnsupportedBitDepth, requested)
		}
		return requested, nil
	}

	switch {
	case in.Format == audio.SampleFloat:
		return 16, nil
	case slices.Contains(valid, in.BitDepth):
		return in.BitDepth, nil
	case in.BitDepth > slices.Max(valid):
		return wide, nil
	default:
		return 16, nil
	}
}
