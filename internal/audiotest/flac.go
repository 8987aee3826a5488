// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

// FLAC builds a native FLAC stream of verbatim subframes with blocks of
// blockSize frames. bits must be 8, 16 or 24. totalFrames is written to
// STREAMINFO as is, so a caller can declare more frames than it supplies.
func FLAC(rate, channels, bits, blockSize int, samples []int32, totalFrames int) []byte {
	width := bits / 8
	frames := len(samples) / channels

	out := []byte("fLaC")
	out = append(out, 0x80, 0, 0, 34) // last block, STREAMINFO, 34 bytes
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:], uint16(blockSize))
	binary.BigEndian.PutUint16(info[2:], uint16(blockSize))
	// rate(20) channels-1(3) bits-1(5) total(36)
	packed := uint64(rate)<<44 | uint64(channels-1)<<41 | uint64(bits-1)<<36 | uint64(totalFrames)
	binary.BigEndian.PutUint64(info[10:], packed)
	out = append(out, info...)

	for num, start := 0, 0; start < frames; num, start = num+1, start+blockSize {
		n := min(blockSize, frames-start)

		rateCode, rateTail := flacRate(rate)
		frame := []byte{0xff, 0xf8, 0x70 | rateCode, byte(channels-1)<<4 | flacBits[bits]<<1}
		frame = appendUTF8(frame, uint32(num))
		frame = binary.BigEndian.AppendUint16(frame, uint16(n-1))
		frame = append(frame, rateTail...)
		frame = append(frame, crc8(frame))

		for ch := range channels {
			frame = append(frame, 0x02) // verbatim, no wasted bits
			for i := range n {
				s := samples[(start+i)*channels+ch]
				for b := width - 1; b >= 0; b-- {
					frame = append(frame, byte(s>>(8*b)))
				}
			}
		}
		frame = binary.BigEndian.AppendUint16(frame, crc16(frame))
		out = append(out, frame...)
	}
	return out
}

// sample size codes of the frame header
var flacBits = map[int]byte{8: 1, 16: 4, 24: 6}

// flacRate returns the frame header rate code and the bytes that follow
// the block size for rates without a code of their own.
func flacRate(rate int) (byte, []byte) {
	switch rate {
	case 8000:
		return 0x4, nil
	case 16000:
		return 0x5, nil
	case 22050:
		return 0x6, nil
	case 24000:
		return 0x7, nil
	case 32000:
		return 0x8, nil
	case 44100:
		return 0x9, nil
	case 48000:
		return 0xa, nil
	case 96000:
		return 0xb, nil
	}
	if rate < 1<<16 {
		return 0xd, binary.BigEndian.AppendUint16(nil, uint16(rate))
	}
	return 0xe, binary.BigEndian.AppendUint16(nil, uint16(rate/10))
}

// appendUTF8 appends v in the extended UTF-8 coding FLAC uses for frame
// numbers.
func appendUTF8(b []byte, v uint32) []byte {
	switch {
	case v < 0x80:
		return append(b, byte(v))
	case v < 0x800:
		return append(b, 0xc0|byte(v>>6), 0x80|byte(v&0x3f))
	case v < 0x10000:
		return append(b, 0xe0|byte(v>>12), 0x80|byte(v>>6&0x3f), 0x80|byte(v&0x3f))
	}
	return append(b, 0xf0|byte(v>>18), 0x80|byte(v>>12&0x3f), 0x80|byte(v>>6&0x3f), 0x80|byte(v&0x3f))
}

func crc8(p []byte) byte {
	var crc byte
	for _, b := range p {
		crc ^= b
		for range 8 {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func crc16(p []byte) uint16 {
	var crc uint16
	for _, b := range p {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x8005
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
