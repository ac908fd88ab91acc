// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/audtranscode/audio"
	"github.com/ik5/audtranscode/formats/aiff"
	"github.com/ik5/audtranscode/formats/flac"
	"github.com/ik5/audtranscode/formats/mp3"
	"github.com/ik5/audtranscode/formats/vorbis"
	"github.com/ik5/audtranscode/formats/wav"
)

// NewRegistry returns a registry holding every built-in decoder. Formats
// with a strict signature are sniffed first; the MPEG sync check is the
// loosest and goes last.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("flac", flac.Decoder{})
	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("mp3", mp3.Decoder{})

	return reg
}

// input is an opened input file with its detected format.
type input struct {
	file   *os.File
	format string
	src    audio.Source
}

func (in *input) Close() error {
	srcErr := in.src.Close()
	fileErr := in.file.Close()
	if errors.Is(fileErr, os.ErrClosed) {
		fileErr = nil
	}

	return errors.Join(srcErr, fileErr)
}

// openInput opens path and hands it to the decoder chosen by its leading
// bytes or, failing that, its extension.
func openInput(path string, reg *audio.Registry) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}

	header := make([]byte, audio.SniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}

	format, dec, ok := reg.Detect(header[:n], filepath.Ext(path))
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%w: %w: %s", audio.ErrInputOpen, audio.ErrUnknownFormat, path)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrInputOpen, format, err)
	}

	return &input{file: f, format: format, src: src}, nil
}
