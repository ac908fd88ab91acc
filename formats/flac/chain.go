// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac/meta"
)

const (
	blockHeaderLen = 4
	maxBlockLen    = 1<<24 - 1
	seekPointLen   = 18
)

// Block is one metadata block kept as raw bytes. Only the blocks that are
// edited get decoded.
type Block struct {
	Type meta.Type
	Body []byte
}

// Len is the encoded size including the block header.
func (b *Block) Len() int64 { return blockHeaderLen + int64(len(b.Body)) }

// Chain is the metadata section of a FLAC file.
type Chain struct {
	Blocks []*Block

	// AudioOffset is the file offset of the first frame header, which is
	// also the size of the metadata section as read.
	AudioOffset int64
}

// ReadChain reads the metadata blocks of the FLAC file at path.
func ReadChain(path string) (*Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return ParseChain(bufio.NewReader(f))
}

// ParseChain reads the signature and every metadata block from r, leaving
// r positioned at the first frame.
func ParseChain(r io.Reader) (*Chain, error) {
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}
	if !bytes.Equal(sig, Signature) {
		return nil, ErrNotFlacFile
	}

	c := &Chain{AudioOffset: int64(len(Signature))}
	hdr := make([]byte, blockHeaderLen)

	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil, fmt.Errorf("block header %d: %w", len(c.Blocks), err)
		}
		last := hdr[0]&0x80 != 0
		typ := meta.Type(hdr[0] & 0x7F)
		length := int(hdr[1])<<16 | int(hdr[2])<<8 | int(hdr[3])

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("block %d (%v) body: %w", len(c.Blocks), typ, err)
		}

		c.Blocks = append(c.Blocks, &Block{Type: typ, Body: body})
		c.AudioOffset += blockHeaderLen + int64(length)

		if last {
			break
		}
	}

	if c.Blocks[0].Type != meta.TypeStreamInfo {
		return nil, ErrNoStreamInfo
	}

	return c, nil
}

// StreamInfo decodes the first block.
func (c *Chain) StreamInfo() (*meta.StreamInfo, error) {
	block, err := c.decode(0)
	if err != nil {
		return nil, err
	}

	si, ok := block.Body.(*meta.StreamInfo)
	if !ok {
		return nil, ErrNoStreamInfo
	}

	return si, nil
}

// SeekTable returns the index and points of the first SEEKTABLE block, or
// -1 when there is none.
func (c *Chain) SeekTable() (int, []meta.SeekPoint, error) {
	for i, b := range c.Blocks {
		if b.Type != meta.TypeSeekTable {
			continue
		}

		points, err := DecodeSeekTable(b.Body)
		if err != nil {
			return i, nil, err
		}
		return i, points, nil
	}

	return -1, nil, nil
}

// Insert places b at index at, shifting later blocks.
func (c *Chain) Insert(at int, b *Block) {
	at = max(0, min(at, len(c.Blocks)))
	c.Blocks = append(c.Blocks, nil)
	copy(c.Blocks[at+1:], c.Blocks[at:])
	c.Blocks[at] = b
}

// SetSeekTable replaces the body of block i with points.
func (c *Chain) SetSeekTable(i int, points []meta.SeekPoint) {
	c.Blocks[i] = &Block{Type: meta.TypeSeekTable, Body: EncodeSeekTable(points)}
}

// MergePadding removes every PADDING block and returns the number of bytes
// they occupied, headers included.
func (c *Chain) MergePadding() int64 {
	var freed int64
	kept := c.Blocks[:0]

	for _, b := range c.Blocks {
		if b.Type == meta.TypePadding {
			freed += b.Len()
			continue
		}
		kept = append(kept, b)
	}
	c.Blocks = kept

	return freed
}

// Size is the encoded size of the signature and all blocks.
func (c *Chain) Size() int64 {
	n := int64(len(Signature))
	for _, b := range c.Blocks {
		n += b.Len()
	}

	return n
}

// WriteFile stores the chain in the file at path, which must be the file the
// chain was read from. Padding is merged into one trailing block. When the
// result fits in the old metadata section it is rewritten in place and any
// slack becomes padding; otherwise the whole file is rewritten through a
// temporary file in the same directory and renamed over the original.
func (c *Chain) WriteFile(path string) (inPlace bool, err error) {
	freed := c.MergePadding()
	size := c.Size()

	switch slack := c.AudioOffset - size; {
	case slack == 0:
		return true, c.writeInPlace(path)
	case slack >= blockHeaderLen && slack-blockHeaderLen <= maxBlockLen:
		c.Blocks = append(c.Blocks, &Block{Type: meta.TypePadding, Body: make([]byte, slack-blockHeaderLen)})
		return true, c.writeInPlace(path)
	}

	if freed > blockHeaderLen {
		pad := min(freed-blockHeaderLen, maxBlockLen)
		c.Blocks = append(c.Blocks, &Block{Type: meta.TypePadding, Body: make([]byte, pad)})
	}

	return false, c.rewrite(path)
}

// Encode serializes the signature and every block, flagging the last one.
func (c *Chain) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(c.Size()))
	buf.Write(Signature)

	for i, b := range c.Blocks {
		if len(b.Body) > maxBlockLen {
			return nil, fmt.Errorf("%w: %v is %d bytes", ErrBlockTooLarge, b.Type, len(b.Body))
		}

		h := byte(b.Type) & 0x7F
		if i == len(c.Blocks)-1 {
			h |= 0x80
		}
		n := len(b.Body)
		buf.Write([]byte{h, byte(n >> 16), byte(n >> 8), byte(n)})
		buf.Write(b.Body)
	}

	return buf.Bytes(), nil
}

func (c *Chain) writeInPlace(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if _, err := f.WriteAt(data, 0); err != nil {
		f.Close()
		return fmt.Errorf("%w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (c *Chain) rewrite(path string) (err error) {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w", err)
	}
	if _, err = src.Seek(c.AudioOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	if _, err = io.Copy(tmp, src); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err = tmp.Chmod(st.Mode().Perm()); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w", err)
	}
	c.AudioOffset = int64(len(data))

	return nil
}

// decode parses block i with the typed metadata parser.
func (c *Chain) decode(i int) (*meta.Block, error) {
	b := c.Blocks[i]
	raw := make([]byte, 0, b.Len())
	raw = append(raw, byte(b.Type)|0x80, byte(len(b.Body)>>16), byte(len(b.Body)>>8), byte(len(b.Body)))
	raw = append(raw, b.Body...)

	block, err := meta.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return block, nil
}

// DecodeSeekTable splits a SEEKTABLE body into points, placeholders
// included.
func DecodeSeekTable(body []byte) ([]meta.SeekPoint, error) {
	if len(body)%seekPointLen != 0 {
		return nil, fmt.Errorf("seek table length %d is not a multiple of %d", len(body), seekPointLen)
	}

	points := make([]meta.SeekPoint, len(body)/seekPointLen)
	for i := range points {
		p := body[i*seekPointLen:]
		points[i] = meta.SeekPoint{
			SampleNum: binary.BigEndian.Uint64(p[0:]),
			Offset:    binary.BigEndian.Uint64(p[8:]),
			NSamples:  binary.BigEndian.Uint16(p[16:]),
		}
	}

	return points, nil
}

// EncodeSeekTable serializes points as 18-byte big-endian records.
func EncodeSeekTable(points []meta.SeekPoint) []byte {
	body := make([]byte, len(points)*seekPointLen)
	for i, pt := range points {
		p := body[i*seekPointLen:]
		binary.BigEndian.PutUint64(p[0:], pt.SampleNum)
		binary.BigEndian.PutUint64(p[8:], pt.Offset)
		binary.BigEndian.PutUint16(p[16:], pt.NSamples)
	}

	return body
}
