// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"math"
	"slices"

	"github.com/ik5/audcodec/internal/dsp"
)

// floorStep[q] is the linear gain of floor 1 amplitude q, the Vorbis
// inverse dB table. With a flat floor it is the quantiser step.
var floorStep = func() (t [256]float64) {
	for q := range t {
		t[q] = math.Pow(1.0649863e-07, float64(255-q)/255)
	}
	return t
}()

// packet header bits: type, previous and next window flags
const packetHeaderBits = 3

// floorBits is the cost of a used floor: the flag and two 8 bit posts.
const floorBits = 1 + 8 + 8

// blockEncoder turns one long block of every channel into a packet.
// It keeps scratch space and is not safe for concurrent use.
type blockEncoder struct {
	books  *bookSet
	mdct   *dsp.MDCT
	window []float64
	in     []float64

	coef  [][]float64
	res   [][]int
	class [][]int
	used  []bool
	peak  float64

	w bitWriter
}

func newBlockEncoder(channels int) *blockEncoder {
	b := &blockEncoder{
		books:  books(),
		mdct:   dsp.NewMDCT(blockSize, 2.0/hop),
		window: dsp.VorbisWindow(blockSize),
		in:     make([]float64, blockSize),
		coef:   make([][]float64, channels),
		res:    make([][]int, channels),
		class:  make([][]int, channels),
		used:   make([]bool, channels),
	}
	for ch := range channels {
		b.coef[ch] = make([]float64, hop)
		b.res[ch] = make([]int, hop)
		b.class[ch] = make([]int, partitions)
	}
	return b
}

// analyse windows and transforms block, one slice of blockSize samples per
// channel, and records the largest coefficient magnitude.
func (b *blockEncoder) analyse(block [][]float64) {
	b.peak = 0
	for ch, x := range block {
		for i, v := range x {
			b.in[i] = v * b.window[i]
		}
		b.mdct.Forward(b.in, b.coef[ch])
		for _, c := range b.coef[ch] {
			b.peak = max(b.peak, math.Abs(c))
		}
	}
}

// minStep is the finest floor amplitude whose residues stay in range.
func (b *blockEncoder) minStep() int {
	limit := b.peak / (maxResidue - 0.5)
	for q, s := range floorStep {
		if s >= limit {
			return q
		}
	}
	return len(floorStep) - 1
}

// residue rounds c/step to the nearest residue the books can code. NaN
// maps to 0 and out of range values saturate.
func residue(c, step float64) int {
	r := math.Round(c / step)
	switch {
	case math.IsNaN(r):
		return 0
	case r > maxResidue:
		return maxResidue
	case r < -maxResidue:
		return -maxResidue
	}
	return int(r)
}

// quantise computes the residues for floor amplitude q, keeping only the
// lowest bands partitions, and returns the exact size of the resulting
// packet in bits.
func (b *blockEncoder) quantise(q, bands int) int {
	step := floorStep[q]
	limit := bands * partitionSize
	bits := packetHeaderBits
	for ch, coef := range b.coef {
		res, class := b.res[ch], b.class[ch]
		used := false
		for i, c := range coef {
			res[i] = 0
			if i < limit {
				res[i] = residue(c, step)
			}
			if res[i] != 0 {
				used = true
			}
		}
		b.used[ch] = used
		if !used {
			bits++
			continue
		}

		bits += floorBits
		for p := range partitions {
			part := res[p*partitionSize : (p+1)*partitionSize]
			class[p] = classify(part)
			bits += b.books.class.cost(class[p])
			if class[p] == classSilent {
				continue
			}
			for _, v := range part {
				d := splitDigits(v, class[p])
				for pass := range d {
					if classCascade[class[p]]&(1<<pass) != 0 {
						bits += b.books.digitCost(pass, d[pass])
					}
				}
			}
		}
	}
	return bits
}

// classify picks the smallest class able to hold every value of part.
func classify(part []int) int {
	peak := 0
	for _, v := range part {
		peak = max(peak, v, -v)
	}
	for c, limit := range classLimit {
		if peak <= limit {
			return c
		}
	}
	return classCoarse
}

// pack serialises the residues of the last quantise call.
func (b *blockEncoder) pack(q int) []byte {
	w := &b.w
	w.reset()
	w.writeBool(false) // audio packet
	w.writeBool(true)  // long previous window
	w.writeBool(true)  // long next window

	for ch := range b.coef {
		w.writeBool(b.used[ch])
		if b.used[ch] {
			w.write(uint32(q), 8)
			w.write(uint32(q), 8)
		}
	}

	for pass := range len(digitSteps) {
		for p := range partitions {
			if pass == 0 {
				for ch, cls := range b.class {
					if b.used[ch] {
						b.books.class.put(w, cls[p])
					}
				}
			}
			for ch, cls := range b.class {
				c := cls[p]
				if !b.used[ch] || classCascade[c]&(1<<pass) == 0 {
					continue
				}
				for _, v := range b.res[ch][p*partitionSize : (p+1)*partitionSize] {
					b.books.putDigit(w, pass, splitDigits(v, c)[pass])
				}
			}
		}
	}

	return slices.Clone(w.bytes())
}

// rateControl is an average bitrate controller with a bounded bit
// reservoir. Each block gets its share of the budget plus whatever earlier
// blocks left unused.
type rateControl struct {
	perBlock  int
	reservoir int
}

func newRateControl(bitrate, rate int) rateControl {
	return rateControl{perBlock: int(int64(bitrate) * hop / int64(rate))}
}

// choose returns the finest floor amplitude whose packet fits the current
// budget, never finer than lo. When even the coarsest amplitude does not
// fit, the block is band limited instead. Residues of b are left quantised
// with the returned choice.
func (rc *rateControl) choose(b *blockEncoder, lo int) (q, bits int) {
	target := max(rc.perBlock+rc.reservoir, 0)

	hi := len(floorStep) - 1
	if cost := b.quantise(lo, partitions); cost <= target {
		return lo, cost
	}
	if cost := b.quantise(hi, partitions); cost > target {
		return hi, b.bandLimit(hi, target)
	}
	// invariant: lo is over budget, hi fits
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if b.quantise(mid, partitions) <= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, b.quantise(hi, partitions)
}

// bandLimit keeps the most low partitions that fit target at amplitude q.
// The packet cost grows with the number of partitions kept.
func (b *blockEncoder) bandLimit(q, target int) int {
	lo, hi := 0, partitions // lo fits (or nothing does), hi does not
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if b.quantise(q, mid) <= target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return b.quantise(q, lo)
}

// spend books bits used by one packet.
func (rc *rateControl) spend(bits int) {
	rc.reservoir += rc.perBlock - bits
	rc.reservoir = min(max(rc.reservoir, -rc.perBlock), 2*rc.perBlock)
}
