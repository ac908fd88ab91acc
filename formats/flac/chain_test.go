package flac

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mewkiz/flac/meta"
)

func TestParseChain_NotFlac(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.flac")
	if err := os.WriteFile(path, []byte("RIFF0000WAVEfmt "), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadChain(path); !errors.Is(err, ErrNotFlacFile) {
		t.Errorf("ReadChain() error = %v, want ErrNotFlacFile", err)
	}
}

func TestChain_Layout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.flac")
	writeTestFile(t, path, 1, 16, 44100, 4096, 4096)

	chain, err := ReadChain(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(chain.Blocks) != 1 || chain.Blocks[0].Type != meta.TypeStreamInfo {
		t.Fatalf("blocks = %v", chain.Blocks)
	}
	if chain.AudioOffset != 4+4+StreamInfoLen {
		t.Errorf("AudioOffset = %d, want %d", chain.AudioOffset, 4+4+StreamInfoLen)
	}
	if chain.Size() != chain.AudioOffset {
		t.Errorf("Size() = %d, AudioOffset = %d", chain.Size(), chain.AudioOffset)
	}
	if idx, _, _ := chain.SeekTable(); idx != -1 {
		t.Errorf("SeekTable() index = %d, want -1", idx)
	}
}

func TestChain_RewriteThenInPlace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "b.flac")
	want := writeTestFile(t, path, 2, 16, 44100, 9000, 4096)

	chain, err := ReadChain(path)
	if err != nil {
		t.Fatal(err)
	}

	// Growing the chain forces a full rewrite.
	chain.Insert(1, &Block{Type: meta.TypeApplication, Body: make([]byte, 100)})
	inPlace, err := chain.WriteFile(path)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if inPlace {
		t.Error("growing chain was written in place")
	}

	chain, err = ReadChain(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := chain.AudioOffset; got != 42+104 {
		t.Fatalf("AudioOffset after rewrite = %d, want %d", got, 42+104)
	}

	// Swapping the application block for a two point table leaves slack
	// that becomes padding.
	points := []meta.SeekPoint{
		{SampleNum: 0, Offset: 0, NSamples: 4096},
		{SampleNum: 4096, Offset: 16000, NSamples: 4096},
	}
	chain.SetSeekTable(1, points)

	inPlace, err = chain.WriteFile(path)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !inPlace {
		t.Error("shrinking chain was not written in place")
	}

	chain, err = ReadChain(path)
	if err != nil {
		t.Fatal(err)
	}
	if chain.AudioOffset != 42+104 {
		t.Errorf("AudioOffset moved to %d", chain.AudioOffset)
	}

	types := make([]meta.Type, len(chain.Blocks))
	for i, b := range chain.Blocks {
		types[i] = b.Type
	}
	if !slices.Equal(types, []meta.Type{meta.TypeStreamInfo, meta.TypeSeekTable, meta.TypePadding}) {
		t.Errorf("block types = %v", types)
	}

	_, got, err := chain.SeekTable()
	if err != nil || !slices.Equal(got, points) {
		t.Errorf("SeekTable() = %v, %v", got, err)
	}

	_, samples := decodeFile(t, path)
	if !slices.Equal(samples, want) {
		t.Error("audio changed across metadata rewrites")
	}
}

func TestChain_MergePadding(t *testing.T) {
	t.Parallel()

	chain := &Chain{Blocks: []*Block{
		{Type: meta.TypeStreamInfo, Body: make([]byte, StreamInfoLen)},
		{Type: meta.TypePadding, Body: make([]byte, 10)},
		{Type: meta.TypeVorbisComment, Body: []byte{1, 2, 3}},
		{Type: meta.TypePadding, Body: make([]byte, 20)},
	}}

	if freed := chain.MergePadding(); freed != 38 {
		t.Errorf("MergePadding() = %d, want 38", freed)
	}
	if len(chain.Blocks) != 2 || chain.Blocks[1].Type != meta.TypeVorbisComment {
		t.Errorf("blocks after merge = %v", chain.Blocks)
	}
}

func TestSeekTableCodec(t *testing.T) {
	t.Parallel()

	points := []meta.SeekPoint{
		{SampleNum: 0, Offset: 0, NSamples: 4096},
		{SampleNum: 1 << 40, Offset: 1 << 33, NSamples: 1152},
		{SampleNum: meta.PlaceholderPoint},
	}

	body := EncodeSeekTable(points)
	if len(body) != 3*18 {
		t.Fatalf("len = %d, want 54", len(body))
	}

	got, err := DecodeSeekTable(body)
	if err != nil || !slices.Equal(got, points) {
		t.Errorf("DecodeSeekTable() = %v, %v", got, err)
	}

	if _, err := DecodeSeekTable(body[:20]); err == nil {
		t.Error("DecodeSeekTable() accepted a truncated body")
	}
}
