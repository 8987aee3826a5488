// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"math"
)

const codebookSync = 0x564342

// codebook is a static Huffman book, optionally with a scalar value
// lookup (type 1, one dimension).
type codebook struct {
	lengths []uint8
	// rev holds each codeword bit reversed so it can be written LSB first
	rev []uint32

	values    []int // value of each entry, nil for books without lookup
	min       float64
	delta     float64
	valueBits uint
}

func newCodebook(lengths []uint8) *codebook {
	codes, err := assignCodewords(lengths)
	if err != nil {
		panic(err)
	}
	c := &codebook{lengths: lengths, rev: make([]uint32, len(codes))}
	for i, code := range codes {
		c.rev[i] = reverseBits(code, uint(lengths[i]))
	}
	return c
}

// newScalarBook builds a book whose entries decode to values[i]*delta.
func newScalarBook(lengths []uint8, values []int, delta float64) *codebook {
	c := newCodebook(lengths)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	c.values = values
	c.min = float64(lo) * delta
	c.delta = delta
	c.valueBits = max(ilog(hi-lo), 1)
	return c
}

// assignCodewords gives every entry the numerically lowest free codeword of
// its length, the rule Vorbis decoders use to rebuild the tree. Codewords
// are returned with the first transmitted bit as the most significant.
func assignCodewords(lengths []uint8) ([]uint32, error) {
	type word struct {
		code uint32
		len  uint8
	}
	var used []word
	prefixed := func(a word, b word) bool {
		// a is a prefix of b
		return a.len <= b.len && b.code>>(b.len-a.len) == a.code
	}

	codes := make([]uint32, len(lengths))
	for i, l := range lengths {
		if l == 0 || l > 32 {
			return nil, fmt.Errorf("vorbis: codeword length %d out of range", l)
		}
		found := false
		for c := uint64(0); c < 1<<l; c++ {
			cand := word{code: uint32(c), len: l}
			free := true
			for _, u := range used {
				if prefixed(u, cand) || prefixed(cand, u) {
					free = false
					break
				}
			}
			if free {
				codes[i] = cand.code
				used = append(used, cand)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("vorbis: codebook overpopulated at entry %d", i)
		}
	}
	return codes, nil
}

func reverseBits(v uint32, n uint) uint32 {
	var r uint32
	for range n {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}

func (c *codebook) entries() int { return len(c.lengths) }

func (c *codebook) cost(entry int) int { return int(c.lengths[entry]) }

func (c *codebook) put(w *bitWriter, entry int) {
	w.write(c.rev[entry], uint(c.lengths[entry]))
}

func (c *codebook) writeHeader(w *bitWriter) {
	w.write(codebookSync, 24)
	w.write(1, 16) // dimensions
	w.write(uint32(len(c.lengths)), 24)
	w.writeBool(false) // ordered
	w.writeBool(false) // sparse
	for _, l := range c.lengths {
		w.write(uint32(l-1), 5)
	}
	if c.values == nil {
		w.write(0, 4)
		return
	}
	w.write(1, 4)
	w.write(packFloat(c.min), 32)
	w.write(packFloat(c.delta), 32)
	w.write(uint32(c.valueBits-1), 4)
	w.writeBool(false) // sequence_p
	// one dimension: lookup1_values == entries
	lo := int(math.Round(c.min / c.delta))
	for _, v := range c.values {
		w.write(uint32(v-lo), c.valueBits)
	}
}

// packFloat encodes v in the Vorbis float32 layout: 21 bit mantissa, 10 bit
// exponent biased by 788, sign in bit 31.
func packFloat(v float64) uint32 {
	if v == 0 {
		return 0
	}
	var sign uint32
	if v < 0 {
		sign = 1 << 31
		v = -v
	}
	frac, exp := math.Frexp(v)
	mant := uint32(math.Round(frac * (1 << 21)))
	if mant == 1<<21 {
		mant >>= 1
		exp++
	}
	return sign | uint32(exp-21+788)<<21 | mant
}

// unpackFloat is the decoder side of packFloat.
func unpackFloat(x uint32) float64 {
	m := float64(x & 0x1fffff)
	if x&0x80000000 != 0 {
		m = -m
	}
	return math.Ldexp(m, int((x&0x7fe00000)>>21)-788)
}
