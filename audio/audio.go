// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"

	"github.com/ik5/audcodec/sample"
)

// Source is a pull stream of interleaved float32 samples.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples, nominally in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Packet is one decoded unit from a Backend, in stream order.
// Exactly one of Ints and Floats is set, interleaved by channel.
type Packet struct {
	Ints   []int32
	Floats []float32
	Frames int
}

// Len is the number of interleaved samples in p.
func (p Packet) Len() int {
	if p.Floats != nil {
		return len(p.Floats)
	}
	return len(p.Ints)
}

// Backend decodes one container/codec pair packet by packet.
//
// The slices of a returned Packet are only valid until the next call to
// NextPacket.
type Backend interface {
	SampleRate() int
	Channels() int
	// Format is the native representation of every Packet.
	Format() sample.Format
	// NextPacket returns io.EOF after the last packet.
	NextPacket() (Packet, error)
	Close() error
}

// Decoder opens a Backend over an input reader. Implementations read the
// stream from its current position and expect it to start with their
// container's header.
type Decoder interface {
	Decode(r io.Reader) (Backend, error)
}
