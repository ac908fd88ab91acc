package seektable

import (
	"bytes"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/mewkiz/flac/meta"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     string
		total    uint64
		rate     uint32
		want     []SeekPointSpec
		wantReal bool
	}{
		{name: "empty", spec: "", total: 1000, rate: 100},
		{name: "only separators", spec: ";;;", total: 1000, rate: 100},
		{
			name: "placeholder", spec: "X;", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Placeholder}},
		},
		{
			name: "zero sample", spec: "0", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Sample}}, wantReal: true,
		},
		{name: "not a number", spec: "abc;", total: 1000, rate: 100, wantReal: true},
		{name: "negative", spec: "-5;", total: 1000, rate: 100, wantReal: true},
		{name: "past end", spec: "1000;", total: 1000, rate: 100, wantReal: true},
		{
			name: "trailing garbage", spec: "12abc;", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Sample, Sample: 12}}, wantReal: true,
		},
		{
			name: "leading space", spec: "  7", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Sample, Sample: 7}}, wantReal: true,
		},
		{
			name: "unknown total keeps any sample", spec: "5000", total: 0, rate: 0,
			want: []SeekPointSpec{{Kind: Sample, Sample: 5000}}, wantReal: true,
		},
		{
			name: "count", spec: "4x", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Count, N: 4}}, wantReal: true,
		},
		{name: "zero count", spec: "0x", total: 1000, rate: 100, wantReal: true},
		{name: "count without total", spec: "4x;", total: 0, rate: 100},
		{
			name: "interval", spec: "2s", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Interval, N: 200}}, wantReal: true,
		},
		{
			name: "short interval raised to half a second", spec: "0.1s", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Interval, N: 50}}, wantReal: true,
		},
		{
			name: "exponent", spec: "1e1s", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Interval, N: 1000}}, wantReal: true,
		},
		{
			name: "infinite interval saturates", spec: "infs", total: 1000, rate: 100,
			want: []SeekPointSpec{{Kind: Interval, N: math.MaxUint32}}, wantReal: true,
		},
		{name: "nan interval", spec: "nans", total: 1000, rate: 100, wantReal: true},
		{name: "zero interval", spec: "0s", total: 1000, rate: 100, wantReal: true},
		{name: "interval without rate", spec: "1s", total: 1000, rate: 0},
		{
			name: "order preserved", spec: "X;300;10x;1s", total: 1000, rate: 100,
			want: []SeekPointSpec{
				{Kind: Placeholder},
				{Kind: Sample, Sample: 300},
				{Kind: Count, N: 10},
				{Kind: Interval, N: 100},
			},
			wantReal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, hasReal := Parse(tt.spec, tt.total, tt.rate)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
			if hasReal != tt.wantReal {
				t.Errorf("Parse(%q) hasRealPoints = %v, want %v", tt.spec, hasReal, tt.wantReal)
			}
		})
	}
}

func TestParse_OnlyExplicitPlaceholders(t *testing.T) {
	t.Parallel()

	got, hasReal := Parse("X;1s;100;4x;X", 1000, 100, OnlyExplicitPlaceholders())

	want := []SeekPointSpec{{Kind: Placeholder}, {Kind: Placeholder}}
	if !slices.Equal(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
	if !hasReal {
		t.Error("hasRealPoints = false, want true")
	}
}

func TestParse_LogsSkippedEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Parse("abc;10", 1000, 100, WithParseLogger(log))

	out := buf.String()
	if !strings.Contains(out, "entry=abc") {
		t.Errorf("log output %q does not mention the skipped entry", out)
	}
	if strings.Contains(out, "entry=10") {
		t.Errorf("log output %q mentions an accepted entry", out)
	}
}

func sampleNums(points []meta.SeekPoint) []uint64 {
	return Table(points).SampleNums()
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  string
		total uint64
		rate  uint32
		want  []uint64
	}{
		{name: "interval", spec: "1s;", total: 250, rate: 100, want: []uint64{0, 100, 200}},
		{name: "interval dividing total", spec: "1s;", total: 200, rate: 100, want: []uint64{0, 100}},
		{name: "count", spec: "4x", total: 1000, rate: 100, want: []uint64{0, 250, 500, 750}},
		{name: "count above total", spec: "10x", total: 3, rate: 100, want: []uint64{0, 1, 2}},
		{
			name: "merged and sorted", spec: "X;750;4x;10", total: 1000, rate: 100,
			want: []uint64{0, 10, 250, 500, 750, meta.PlaceholderPoint},
		},
		{
			name: "placeholders kept", spec: "X;X", total: 1000, rate: 100,
			want: []uint64{meta.PlaceholderPoint, meta.PlaceholderPoint},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			specs, _ := Parse(tt.spec, tt.total, tt.rate)
			got := sampleNums(Template(specs, tt.total))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Template(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestExpand_SpacedCap(t *testing.T) {
	t.Parallel()

	points := Expand([]SeekPointSpec{{Kind: Interval, N: 1}}, 100000)

	if len(points) != MaxSpacedPoints {
		t.Fatalf("len = %d, want %d", len(points), MaxSpacedPoints)
	}
	// spacing is recomputed as 100000/32768
	if last := points[len(points)-1].SampleNum; last != (MaxSpacedPoints-1)*3 {
		t.Errorf("last point = %d, want %d", last, (MaxSpacedPoints-1)*3)
	}
}

func TestStrtoll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		want     int64
		consumed int
	}{
		{in: "0", want: 0, consumed: 1},
		{in: "42", want: 42, consumed: 2},
		{in: "+42", want: 42, consumed: 3},
		{in: "-42", want: -42, consumed: 3},
		{in: " \t9z", want: 9, consumed: 3},
		{in: "abc", want: 0, consumed: 0},
		{in: "-", want: 0, consumed: 0},
		{in: "99999999999999999999", want: math.MaxInt64, consumed: 20},
		{in: "-99999999999999999999", want: math.MinInt64, consumed: 21},
		{in: "-9223372036854775808", want: math.MinInt64, consumed: 20},
	}

	for _, tt := range tests {
		n, consumed := strtoll(tt.in)
		if n != tt.want || consumed != tt.consumed {
			t.Errorf("strtoll(%q) = %d, %d, want %d, %d", tt.in, n, consumed, tt.want, tt.consumed)
		}
	}
}

func TestAtof(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{in: "1s", want: 1},
		{in: "2.5s", want: 2.5},
		{in: ".5s", want: 0.5},
		{in: "1e2s", want: 100},
		{in: "1es", want: 1},
		{in: "-3s", want: -3},
		{in: "s", want: 0},
		{in: ".s", want: 0},
		{in: "Infinitys", want: math.Inf(1)},
	}

	for _, tt := range tests {
		if got := atof(tt.in); got != tt.want {
			t.Errorf("atof(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
