// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"sync"
)

const (
	blockSize = 2048
	hop       = blockSize / 2
	// blocksize exponents packed as in the identification header: 256 and 2048
	blockSizes = 0xB8

	partitionSize = 16
	partitions    = hop / partitionSize

	floorRangeBits = 10
	floorMidX      = 512

	// MaxChannels is the largest channel count the encoder accepts.
	MaxChannels = 8

	vendor = "audcodec vorbis encoder"
)

// Residue classes. Each class names the digit passes it codes, coarse to
// fine, so a class c partition holds values up to classLimit[c].
const (
	classSilent = iota
	classFine
	classMid
	classCoarse
	numClasses
)

var (
	classLimit   = [numClasses]int{0, 9, 99, 999}
	classCascade = [numClasses]uint8{0, 0b100, 0b110, 0b111}
	classLengths = []uint8{1, 2, 3, 3}

	// digits of a residue in base 10 with a symmetric range of +-9
	digitValues  = []int{0, -1, 1, -2, 2, -3, 3, -4, 4, -5, 5, -6, 6, -7, 7, -8, 8, -9, 9}
	digitLengths = []uint8{2, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 6, 6, 6, 6, 6, 6, 6, 6}
	digitSteps   = [3]int{100, 10, 1}
)

const maxResidue = 999

// bookSet is the fixed codebook layout shared by every stream.
type bookSet struct {
	class  *codebook
	digits [3]*codebook
	// entry index of each digit value, offset by 9
	entry [19]int
}

var books = sync.OnceValue(func() *bookSet {
	s := &bookSet{class: newCodebook(classLengths)}
	for i, step := range digitSteps {
		s.digits[i] = newScalarBook(digitLengths, digitValues, float64(step))
	}
	for i, v := range digitValues {
		s.entry[v+9] = i
	}
	return s
})

func (s *bookSet) digitCost(pass, d int) int {
	return s.digits[pass].cost(s.entry[d+9])
}

func (s *bookSet) putDigit(w *bitWriter, pass, d int) {
	s.digits[pass].put(w, s.entry[d+9])
}

// splitDigits breaks v into the digits coded by the passes of class, coarse
// to fine. Each digit lies in [-9, 9] and their weighted sum is v as long as
// |v| <= classLimit[class].
func splitDigits(v, class int) (d [3]int) {
	switch class {
	case classCoarse:
		d[0] = clampDigit(roundDiv(v, 100))
		v -= 100 * d[0]
		fallthrough
	case classMid:
		d[1] = clampDigit(roundDiv(v, 10))
		v -= 10 * d[1]
		fallthrough
	case classFine:
		d[2] = v
	}
	return d
}

// roundDiv divides rounding half away from zero.
func roundDiv(v, d int) int {
	if v < 0 {
		return -((-v + d/2) / d)
	}
	return (v + d/2) / d
}

func clampDigit(d int) int { return min(max(d, -9), 9) }

// identificationHeader returns the first Vorbis header packet.
func identificationHeader(channels, rate, bitrate int) []byte {
	p := make([]byte, 0, 30)
	p = append(p, 1, 'v', 'o', 'r', 'b', 'i', 's')
	p = binary.LittleEndian.AppendUint32(p, 0) // version
	p = append(p, byte(channels))
	p = binary.LittleEndian.AppendUint32(p, uint32(rate))
	p = binary.LittleEndian.AppendUint32(p, 0) // maximum
	p = binary.LittleEndian.AppendUint32(p, uint32(bitrate))
	p = binary.LittleEndian.AppendUint32(p, 0) // minimum
	p = append(p, blockSizes, 1)
	return p
}

// commentHeader returns the second header packet carrying the vendor
// string and "KEY=value" user comments.
func commentHeader(comments []string) []byte {
	p := []byte{3, 'v', 'o', 'r', 'b', 'i', 's'}
	p = binary.LittleEndian.AppendUint32(p, uint32(len(vendor)))
	p = append(p, vendor...)
	p = binary.LittleEndian.AppendUint32(p, uint32(len(comments)))
	for _, c := range comments {
		p = binary.LittleEndian.AppendUint32(p, uint32(len(c)))
		p = append(p, c...)
	}
	return append(p, 1)
}

// setupHeader describes the codebooks, one flat floor 1, one type 1
// residue, a single mapping and a single long-block mode.
func setupHeader() []byte {
	s := books()
	var w bitWriter
	for _, c := range []byte{5, 'v', 'o', 'r', 'b', 'i', 's'} {
		w.write(uint32(c), 8)
	}

	w.write(3, 8) // four codebooks
	s.class.writeHeader(&w)
	for _, d := range s.digits {
		d.writeHeader(&w)
	}

	w.write(0, 6) // one time domain transform
	w.write(0, 16)

	w.write(0, 6)  // one floor
	w.write(1, 16) // of type 1
	w.write(1, 5)  // one partition
	w.write(0, 4)  // of class 0
	w.write(0, 3)  // class dimension 1
	w.write(0, 2)  // no subclasses
	w.write(0, 8)  // no book for the midpoint post
	w.write(0, 2)  // multiplier 1
	w.write(floorRangeBits, 4)
	w.write(floorMidX, floorRangeBits)

	w.write(0, 6)  // one residue
	w.write(1, 16) // of type 1
	w.write(0, 24) // begin
	w.write(hop, 24)
	w.write(partitionSize-1, 24)
	w.write(numClasses-1, 6)
	w.write(0, 8) // classbook
	for _, c := range classCascade {
		w.write(uint32(c), 3)
		w.writeBool(false)
	}
	for _, c := range classCascade {
		for pass := range 8 {
			if c&(1<<pass) != 0 {
				w.write(uint32(1+pass), 8)
			}
		}
	}

	w.write(0, 6)  // one mapping
	w.write(0, 16) // of type 0
	w.writeBool(false)
	w.writeBool(false) // no coupling
	w.write(0, 2)
	w.write(0, 8) // time config
	w.write(0, 8) // floor
	w.write(0, 8) // residue

	w.write(0, 6) // one mode
	w.writeBool(true)
	w.write(0, 16)
	w.write(0, 16)
	w.write(0, 8)

	w.writeBool(true)
	return w.bytes()
}
