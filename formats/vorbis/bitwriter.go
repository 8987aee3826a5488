// SPDX-License-Identifier: EPL-2.0

package vorbis

// bitWriter packs values LSB first, the bit order of Vorbis packets.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits uint
}

// write appends the low n bits of v, n <= 32.
func (w *bitWriter) write(v uint32, n uint) {
	if n == 0 {
		return
	}
	w.acc |= uint64(v&(1<<n-1)) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) writeBool(b bool) {
	if b {
		w.write(1, 1)
	} else {
		w.write(0, 1)
	}
}

// bits returns the number of bits written.
func (w *bitWriter) bits() int { return len(w.buf)*8 + int(w.nbits) }

// bytes flushes a partial byte, zero padded, and returns the packet.
func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc, w.nbits = 0, 0
	}
	return w.buf
}

func (w *bitWriter) reset() {
	w.buf = w.buf[:0]
	w.acc, w.nbits = 0, 0
}

// ilog is the number of bits needed to represent v, ilog(0) = 0.
func ilog(v int) uint {
	var n uint
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
