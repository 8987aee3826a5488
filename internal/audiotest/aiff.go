// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// AIFF builds an uncompressed AIFF file. Samples are stored big-endian in
// bits wide words, which must be 8, 16, 24 or 32.
func AIFF(rate, channels, bits int, samples []int32) []byte {
	return buildAIFF("AIFF", "", rate, channels, bits, samples)
}

// AIFC builds an AIFC file declaring the given four character compression
// type. The sample data is written uncompressed regardless.
func AIFC(rate, channels, bits int, compression string, samples []int32) []byte {
	return buildAIFF("AIFC", compression, rate, channels, bits, samples)
}

func buildAIFF(form, compression string, rate, channels, bits int, samples []int32) []byte {
	width := bits / 8

	comm := make([]byte, 18, 24)
	binary.BigEndian.PutUint16(comm[0:], uint16(channels))
	binary.BigEndian.PutUint32(comm[2:], uint32(len(samples)/channels))
	binary.BigEndian.PutUint16(comm[6:], uint16(bits))
	putExtended(comm[8:18], float64(rate))
	if form == "AIFC" {
		comm = append(comm, compression...)
		comm = append(comm, 0, 0) // empty pascal string
	}

	ssnd := make([]byte, 8, 8+len(samples)*width)
	for _, s := range samples {
		for b := width - 1; b >= 0; b-- {
			ssnd = append(ssnd, byte(s>>(8*b)))
		}
	}

	var out []byte
	chunk := func(id string, body []byte) {
		out = append(out, id...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
		if len(body)%2 == 1 {
			out = append(out, 0)
		}
	}
	out = append(out, "FORM\x00\x00\x00\x00"...)
	out = append(out, form...)
	if form == "AIFC" {
		chunk("FVER", []byte{0xa2, 0x80, 0x51, 0x40})
	}
	chunk("COMM", comm)
	chunk("SSND", ssnd)
	binary.BigEndian.PutUint32(out[4:], uint32(len(out)-8))
	return out
}

// putExtended writes v as an 80-bit IEEE 754 extended float.
func putExtended(b []byte, v float64) {
	if v == 0 {
		clear(b)
		return
	}
	frac, exp := math.Frexp(v) // v = frac * 2^exp, frac in [0.5, 1)
	binary.BigEndian.PutUint16(b[0:], uint16(exp-1+16383))
	binary.BigEndian.PutUint64(b[2:], uint64(math.Ldexp(frac, 64)))
}
