// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"encoding/binary"

	"github.com/mewkiz/flac/meta"
)

// StreamInfoLen is the fixed body length of a STREAMINFO block.
const StreamInfoLen = 34

// EncodeStreamInfo serializes the STREAMINFO body.
//
//	u16 min block | u16 max block | u24 min frame | u24 max frame |
//	u20 rate | u3 channels-1 | u5 bps-1 | u36 samples | md5[16]
func EncodeStreamInfo(si *meta.StreamInfo) []byte {
	buf := make([]byte, StreamInfoLen)

	binary.BigEndian.PutUint16(buf[0:], si.BlockSizeMin)
	binary.BigEndian.PutUint16(buf[2:], si.BlockSizeMax)
	putUint24(buf[4:], si.FrameSizeMin)
	putUint24(buf[7:], si.FrameSizeMax)

	var packed uint64
	packed |= uint64(si.SampleRate&0xFFFFF) << 44
	packed |= uint64((si.NChannels-1)&0x7) << 41
	packed |= uint64((si.BitsPerSample-1)&0x1F) << 36
	packed |= si.NSamples & 0xFFFFFFFFF
	binary.BigEndian.PutUint64(buf[10:], packed)

	copy(buf[18:], si.MD5sum[:])

	return buf
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
