// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/sample"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is the part of flac.Stream used after the header, so tests
// can mock it.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type backend struct {
	stream     frameParser
	sampleRate int
	channels   int
	bits       int
	total      int64 // declared frames, 0 when unknown
	delivered  int64
	ints       []int32
}

func (b *backend) SampleRate() int       { return b.sampleRate }
func (b *backend) Channels() int         { return b.channels }
func (b *backend) Format() sample.Format { return sample.Format{Bits: b.bits} }

func (b *backend) Close() error {
	if err := b.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (b *backend) NextPacket() (audio.Packet, error) {
	f, err := b.stream.ParseNext()
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF):
		return audio.Packet{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	case errors.Is(err, io.EOF):
		if b.total > 0 && b.delivered < b.total {
			return audio.Packet{}, fmt.Errorf("%w: %d of %d frames", ErrTruncated, b.delivered, b.total)
		}
		return audio.Packet{}, io.EOF
	default:
		return audio.Packet{}, fmt.Errorf("flac: %w", err)
	}
	if len(f.Subframes) != b.channels {
		return audio.Packet{}, fmt.Errorf("flac: frame has %d channels, stream %d", len(f.Subframes), b.channels)
	}

	n := int(f.BlockSize)
	if need := n * b.channels; cap(b.ints) < need {
		b.ints = make([]int32, need)
	}
	out := b.ints[:n*b.channels]
	for ch, sub := range f.Subframes {
		if len(sub.Samples) < n {
			return audio.Packet{}, fmt.Errorf("flac: subframe %d holds %d of %d samples", ch, len(sub.Samples), n)
		}
		for i, v := range sub.Samples[:n] {
			out[i*b.channels+ch] = v
		}
	}
	b.delivered += int64(n)

	return audio.Packet{Ints: out, Frames: n}, nil
}

// Decoder opens native FLAC streams. Frames are parsed as they are read,
// so the input need not seek.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Backend, error) {
	stream, err := flac.New(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("flac: %w", err)
	}

	info := stream.Info
	if info == nil || info.NChannels < 1 || info.SampleRate < 1 || info.BitsPerSample < 1 {
		stream.Close()
		return nil, ErrBadStreamInfo
	}

	return newBackend(stream, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample), int64(info.NSamples)), nil
}

func newBackend(stream frameParser, rate, channels, bits int, total int64) *backend {
	return &backend{
		stream:     stream,
		sampleRate: rate,
		channels:   channels,
		bits:       bits,
		total:      total,
	}
}
