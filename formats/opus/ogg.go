// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"encoding/binary"
	"io"
)

// Ogg page header types.
const (
	pageContinued = 0x00
	pageFirst     = 0x02
	pageLast      = 0x04
)

const (
	pageHeaderLen = 27
	maxSegment    = 255
	crcPoly       = 0x04c11db7
)

var crcTable = func() (table [256]uint32) {
	for i := range table {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ crcPoly
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

// oggStream writes one logical Ogg bitstream with a single packet per page.
type oggStream struct {
	w      io.Writer
	serial uint32
	seq    uint32
}

// writePage frames packet as a page with the given header type and granule
// position. Packets up to 255*255-1 bytes fit a single page.
func (s *oggStream) writePage(packet []byte, headerType byte, granule uint64) error {
	segments := len(packet)/maxSegment + 1

	page := make([]byte, pageHeaderLen+segments+len(packet))
	copy(page, "OggS")
	page[5] = headerType
	binary.LittleEndian.PutUint64(page[6:], granule)
	binary.LittleEndian.PutUint32(page[14:], s.serial)
	binary.LittleEndian.PutUint32(page[18:], s.seq)
	page[26] = byte(segments)

	for i := range segments - 1 {
		page[pageHeaderLen+i] = maxSegment
	}
	page[pageHeaderLen+segments-1] = byte(len(packet) % maxSegment)
	copy(page[pageHeaderLen+segments:], packet)

	var crc uint32
	for _, b := range page {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	binary.LittleEndian.PutUint32(page[22:], crc)

	if _, err := s.w.Write(page); err != nil {
		return err
	}
	s.seq++

	return nil
}

// opusHead builds the identification header (RFC 7845 section 5.1) for
// channel mapping family 0.
func opusHead(channels int, preSkip uint16, inputRate uint32) []byte {
	h := make([]byte, 19)
	copy(h, "OpusHead")
	h[8] = 1
	h[9] = byte(channels)
	binary.LittleEndian.PutUint16(h[10:], preSkip)
	binary.LittleEndian.PutUint32(h[12:], inputRate)

	return h
}

// opusTags builds a comment header with only a vendor string.
func opusTags(vendor string) []byte {
	h := make([]byte, 8+4+len(vendor)+4)
	copy(h, "OpusTags")
	binary.LittleEndian.PutUint32(h[8:], uint32(len(vendor)))
	copy(h[12:], vendor)

	return h
}
