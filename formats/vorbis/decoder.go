// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/sample"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read fills p with interleaved samples and returns how many it wrote.
	Read(p []float32) (int, error)
	// Length is zero until the end-of-stream page has been decoded.
	Length() int64
}

// packetFrames bounds the frames handed out per packet.
const packetFrames = 4096

type backend struct {
	dec        oggReader
	sampleRate int
	channels   int
	buf        []float32
	eof        bool
}

func (b *backend) SampleRate() int       { return b.sampleRate }
func (b *backend) Channels() int         { return b.channels }
func (b *backend) Format() sample.Format { return sample.F32 }
func (b *backend) Close() error          { return nil }

func (b *backend) NextPacket() (audio.Packet, error) {
	for !b.eof {
		n, err := b.dec.Read(b.buf)
		switch {
		case err == io.EOF:
			b.eof = true
			if b.dec.Length() == 0 {
				return audio.Packet{}, ErrMissingEOS
			}
		case err != nil:
			return audio.Packet{}, fmt.Errorf("vorbis: %w", err)
		}
		if n > 0 {
			n -= n % b.channels
			return audio.Packet{Floats: b.buf[:n], Frames: n / b.channels}, nil
		}
	}
	return audio.Packet{}, io.EOF
}

// Decoder opens Ogg/Vorbis streams.
type Decoder struct{}

// Decode reads the three Vorbis headers from r. The stream is read
// sequentially even when r can seek, so it may start at any offset.
func (Decoder) Decode(r io.Reader) (audio.Backend, error) {
	dec, err := oggvorbis.NewReader(struct{ io.Reader }{r})
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	if dec.Channels() < 1 || dec.SampleRate() < 1 {
		return nil, ErrBadHeader
	}
	return newBackend(dec), nil
}

func newBackend(dec oggReader) *backend {
	return &backend{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		buf:        make([]float32, packetFrames*dec.Channels()),
	}
}
