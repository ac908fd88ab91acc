// SPDX-License-Identifier: EPL-2.0

package seektable

import (
	"log/slog"
	"math"
	"math/bits"
	"slices"
	"strconv"
	"strings"

	"github.com/mewkiz/flac/meta"
)

const (
	// MaxSpacedPoints bounds the points produced by one interval entry.
	MaxSpacedPoints = 32768

	// MaxPoints is the largest table a metadata block can hold.
	MaxPoints = (1<<24 - 1) / 18
)

// Kind of a seek point specification entry.
type Kind int

const (
	Placeholder Kind = iota // "X"
	Sample                  // "<n>"
	Count                   // "<n>x"
	Interval                // "<k>s"
)

func (k Kind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case Sample:
		return "sample"
	case Count:
		return "count"
	case Interval:
		return "interval"
	default:
		return "unknown"
	}
}

// SeekPointSpec is one parsed entry. Sample holds the target sample of a
// Sample entry, N the point count of a Count entry and the spacing in
// samples of an Interval entry.
type SeekPointSpec struct {
	Kind   Kind
	Sample uint64
	N      uint64
}

type parseConfig struct {
	onlyPlaceholders bool
	logger           *slog.Logger
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

// OnlyExplicitPlaceholders recognizes numeric entries without expanding
// them, so only "X" entries produce points.
func OnlyExplicitPlaceholders() ParseOption {
	return func(c *parseConfig) { c.onlyPlaceholders = true }
}

// WithParseLogger reports skipped entries at debug level.
func WithParseLogger(l *slog.Logger) ParseOption {
	return func(c *parseConfig) { c.logger = l }
}

// Parse splits spec on ';' and interprets each entry. Entries that cannot
// be honoured are skipped. The second result reports whether any entry
// asked for real (non-placeholder) points.
//
// totalSamples and sampleRate may be 0 when unknown; Count entries then
// need totalSamples and Interval entries need both.
func Parse(spec string, totalSamples uint64, sampleRate uint32, opts ...ParseOption) ([]SeekPointSpec, bool) {
	cfg := parseConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	skip := func(entry, reason string) {
		cfg.logger.Debug("seek point entry skipped", slog.String("entry", entry), slog.String("reason", reason))
	}

	var specs []SeekPointSpec
	hasRealPoints := false

	for entry := range strings.SplitSeq(spec, ";") {
		if entry == "" {
			continue
		}

		switch {
		case entry == "X":
			specs = append(specs, SeekPointSpec{Kind: Placeholder})

		case strings.HasSuffix(entry, "x"):
			if totalSamples == 0 {
				skip(entry, "total samples unknown")
				continue
			}
			hasRealPoints = true
			if cfg.onlyPlaceholders {
				continue
			}

			v, _ := strtoll(entry)
			n := int32(uint32(v))
			if n <= 0 {
				skip(entry, "point count not positive")
				continue
			}
			specs = append(specs, SeekPointSpec{Kind: Count, N: uint64(n)})

		case strings.HasSuffix(entry, "s"):
			if totalSamples == 0 || sampleRate == 0 {
				skip(entry, "total samples or sample rate unknown")
				continue
			}
			hasRealPoints = true
			if cfg.onlyPlaceholders {
				continue
			}

			sec := atof(entry)
			if !(sec > 0) {
				skip(entry, "interval not positive")
				continue
			}
			spacing := toUint32(sec * float64(sampleRate))
			// at most two points per second
			spacing = max(spacing, sampleRate/2)
			if spacing == 0 {
				skip(entry, "interval rounds to zero samples")
				continue
			}
			specs = append(specs, SeekPointSpec{Kind: Interval, N: uint64(spacing)})

		default:
			hasRealPoints = true
			if cfg.onlyPlaceholders {
				continue
			}

			n, consumed := strtoll(entry)
			// "0" is valid, a non-number parses as 0 and is not
			if n <= 0 && consumed != len(entry) {
				skip(entry, "not a sample number")
				continue
			}
			if totalSamples != 0 && uint64(n) >= totalSamples {
				skip(entry, "sample beyond end of stream")
				continue
			}
			specs = append(specs, SeekPointSpec{Kind: Sample, Sample: uint64(n)})
		}
	}

	return specs, hasRealPoints
}

// Expand turns specs into unresolved seek points, in order.
func Expand(specs []SeekPointSpec, totalSamples uint64) []meta.SeekPoint {
	var points []meta.SeekPoint

	for _, s := range specs {
		switch s.Kind {
		case Placeholder:
			points = append(points, meta.SeekPoint{SampleNum: meta.PlaceholderPoint})
		case Sample:
			points = append(points, meta.SeekPoint{SampleNum: s.Sample})
		case Count:
			points = appendCount(points, s.N, totalSamples)
		case Interval:
			points = appendSpaced(points, s.N, totalSamples)
		}
	}

	return points
}

// Template expands specs and sorts the result with Compact.
func Template(specs []SeekPointSpec, totalSamples uint64) []meta.SeekPoint {
	return Compact(Expand(specs, totalSamples))
}

// appendCount places n points at total*j/n.
func appendCount(points []meta.SeekPoint, n, total uint64) []meta.SeekPoint {
	if n == 0 || total == 0 {
		return points
	}
	// more points than samples only repeats sample numbers
	n = min(n, total, MaxPoints)

	for j := range n {
		hi, lo := bits.Mul64(total, j)
		q, _ := bits.Div64(hi, lo, n)
		points = append(points, meta.SeekPoint{SampleNum: q})
	}

	return points
}

// appendSpaced places points every spacing samples from 0, never at or
// beyond total.
func appendSpaced(points []meta.SeekPoint, spacing, total uint64) []meta.SeekPoint {
	if spacing == 0 || total == 0 {
		return points
	}

	num := 1 + total/spacing
	if total%spacing == 0 {
		num--
	}
	if num > MaxSpacedPoints {
		num = MaxSpacedPoints
		spacing = total / num
	}

	for j := range num {
		points = append(points, meta.SeekPoint{SampleNum: j * spacing})
	}

	return points
}

// Compact sorts points by sample number and removes repeated sample
// numbers. Placeholders sort last and are all kept.
func Compact(points []meta.SeekPoint) []meta.SeekPoint {
	slices.SortStableFunc(points, func(a, b meta.SeekPoint) int {
		switch {
		case a.SampleNum < b.SampleNum:
			return -1
		case a.SampleNum > b.SampleNum:
			return 1
		}
		return 0
	})

	out := points[:0]
	for i, p := range points {
		if i > 0 && p.SampleNum != meta.PlaceholderPoint && p.SampleNum == out[len(out)-1].SampleNum {
			continue
		}
		out = append(out, p)
	}

	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

// strtoll parses a leading base 10 integer the way C strtoll does: leading
// white space and one sign are allowed and overflow saturates. consumed is
// 0 when no digits were found.
func strtoll(s string) (n int64, consumed int) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i
	var acc uint64
	overflow := false
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if acc > (math.MaxUint64-9)/10 {
			overflow = true
		}
		acc = acc*10 + uint64(s[i]-'0')
	}
	if i == start {
		return 0, 0
	}

	switch {
	case neg && (overflow || acc > 1<<63):
		return math.MinInt64, i
	case neg:
		return -int64(acc), i
	case overflow || acc > math.MaxInt64:
		return math.MaxInt64, i
	default:
		return int64(acc), i
	}
}

// atof parses the longest leading decimal floating point number of s,
// returning 0 when there is none.
func atof(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i

	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	rest := strings.ToLower(s[i:])
	for _, word := range []string{"infinity", "inf", "nan"} {
		if strings.HasPrefix(rest, word) {
			v, _ := strconv.ParseFloat(s[start:i+len(word)], 64)
			return v
		}
	}

	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}

	v, _ := strconv.ParseFloat(s[start:i], 64)
	return v
}

// toUint32 converts with saturation instead of wrapping.
func toUint32(v float64) uint32 {
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
