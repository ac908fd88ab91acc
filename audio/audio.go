// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"strings"
	"sync"
)

// Source is a decoded PCM stream.
type Source interface {
	// Descriptor of the decoded stream. TotalSamples may be zero.
	Descriptor() StreamDescriptor
	// ReadFrame returns the next block of samples in the layout of
	// Descriptor. It returns (nil, io.EOF) once the stream is finished.
	// A frame with no samples is not an error.
	ReadFrame() (*Frame, error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Sniffer is implemented by decoders that can recognize their container
// from the first bytes of a file.
type Sniffer interface {
	Sniff(header []byte) bool
}

// Encoder turns frames in its input layout into packets and writes them to
// an output container it owns.
type Encoder interface {
	// FrameSize is the number of samples per channel the codec consumes per
	// call. Every frame passed to Encode has exactly this length except the
	// last one.
	FrameSize() int
	// Descriptor of the frames Encode accepts.
	Descriptor() StreamDescriptor
	WriteHeader() error
	// Encode consumes one frame and reports how many packets reached the
	// container.
	Encode(f *Frame) (int, error)
	// Flush drains samples buffered inside the codec.
	Flush() (int, error)
	WriteTrailer() error
	Close() error
}

// SniffLen is the number of leading bytes handed to Sniffer.
const SniffLen = 12

// Registry for decoders by format key (e.g., "wav", "mp3", "flac").
type Registry struct {
	codecs map[string]Decoder
	order  []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = strings.ToLower(format)
	if _, ok := r.codecs[format]; !ok {
		r.order = append(r.order, format)
	}
	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Formats lists registered keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]string(nil), r.order...)
}

// Detect picks a decoder by content first and by file extension second.
func (r *Registry) Detect(header []byte, ext string) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, format := range r.order {
		if s, ok := r.codecs[format].(Sniffer); ok && s.Sniff(header) {
			return format, r.codecs[format], true
		}
	}

	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if d, ok := r.codecs[ext]; ok {
		return ext, d, true
	}

	return "", nil, false
}
