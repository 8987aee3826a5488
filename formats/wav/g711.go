// SPDX-License-Identifier: EPL-2.0

package wav

// G.711 expansion to 16-bit linear PCM as in ITU-T G.711 appendix code.

func alawToLinear(a byte) int16 {
	a ^= 0x55
	t := int16(a&0x0f) << 4
	switch seg := (a & 0x70) >> 4; seg {
	case 0:
		t += 8
	case 1:
		t += 0x108
	default:
		t += 0x108
		t <<= seg - 1
	}
	if a&0x80 != 0 {
		return t
	}
	return -t
}

func mulawToLinear(u byte) int16 {
	const bias = 0x84

	u = ^u
	t := int16(u&0x0f)<<3 + bias
	t <<= (u & 0x70) >> 4
	if u&0x80 != 0 {
		return bias - t
	}
	return t - bias
}
