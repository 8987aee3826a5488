// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/internal/iox"
	"github.com/ik5/audcodec/sample"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// packetFrames bounds the frames handed out per packet.
const packetFrames = 4096

type backend struct {
	dec        aiffReader
	sampleRate int
	channels   int
	bits       int
	remaining  int // samples still owed according to COMM
	buf        goaudio.IntBuffer
	ints       []int32
}

func (b *backend) SampleRate() int       { return b.sampleRate }
func (b *backend) Channels() int         { return b.channels }
func (b *backend) Format() sample.Format { return sample.Format{Bits: b.bits} }
func (b *backend) Close() error          { return nil }

func (b *backend) NextPacket() (audio.Packet, error) {
	if b.remaining == 0 {
		return audio.Packet{}, io.EOF
	}

	want := min(packetFrames*b.channels, b.remaining)
	b.buf.Data = b.buf.Data[:want]
	n, err := b.dec.PCMBuffer(&b.buf)
	switch {
	case err == nil || err == io.EOF:
	case errors.Is(err, io.ErrUnexpectedEOF):
		n -= n % b.channels
		if n == 0 {
			return audio.Packet{}, fmt.Errorf("%w: %d frames missing", ErrTruncated, b.remaining/b.channels)
		}
	default:
		return audio.Packet{}, fmt.Errorf("aiff: %w", err)
	}
	n = min(n, want)
	if n == 0 || (n < want && n%b.channels != 0) {
		return audio.Packet{}, fmt.Errorf("%w: %d frames missing", ErrTruncated, b.remaining/b.channels)
	}
	b.remaining -= n

	// Sign extend from the declared width whatever go-audio handed back.
	shift := 32 - b.bits
	for i, v := range b.buf.Data[:n] {
		b.ints[i] = int32(uint32(v)<<shift) >> shift
	}
	return audio.Packet{Ints: b.ints[:n], Frames: n / b.channels}, nil
}

// Decoder opens uncompressed AIFF and AIFC streams of 8 to 32 bits.
//
// go-audio needs to seek, so input that is not an io.ReadSeeker is read
// into memory first.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Backend, error) {
	rs, err := iox.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	info, err := infoOf(dec)
	if err != nil {
		return nil, err
	}
	return newBackend(dec, info)
}

// streamInfo is the part of the COMM chunk the backend works from.
type streamInfo struct {
	rate     int
	channels int
	frames   int
	bits     int
}

// infoOf checks what go-audio parsed while walking the chunks up to the
// sound data.
func infoOf(dec *aiff.Decoder) (streamInfo, error) {
	chunkErr := dec.Err()
	if chunkErr != nil && !errors.Is(chunkErr, io.EOF) && !errors.Is(chunkErr, io.ErrUnexpectedEOF) {
		return streamInfo{}, fmt.Errorf("aiff: read chunks: %w", chunkErr)
	}

	format := dec.Format()
	if format == nil || dec.NumChans == 0 || dec.BitDepth == 0 || format.SampleRate == 0 {
		return streamInfo{}, ErrNoCommonChunk
	}
	info := streamInfo{
		rate:     format.SampleRate,
		channels: int(dec.NumChans),
		frames:   int(dec.NumSampleFrames),
		bits:     int(dec.BitDepth),
	}

	// plain AIFF leaves the compression type empty
	switch enc := string(dec.Encoding[:]); enc {
	case "\x00\x00\x00\x00", "NONE":
	default:
		return streamInfo{}, fmt.Errorf("%w: AIFC compression %q", ErrUnsupportedEncoding, enc)
	}

	if chunkErr != nil {
		return streamInfo{}, fmt.Errorf("%w: no sound data: %w", ErrTruncated, chunkErr)
	}
	return info, nil
}

func newBackend(dec aiffReader, info streamInfo) (*backend, error) {
	if info.channels < 1 || info.rate < 1 {
		return nil, ErrNoCommonChunk
	}
	switch info.bits {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, info.bits)
	}

	size := packetFrames * info.channels
	return &backend{
		dec:        dec,
		sampleRate: info.rate,
		channels:   info.channels,
		bits:       info.bits,
		remaining:  info.frames * info.channels,
		buf: goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: info.channels, SampleRate: info.rate},
			Data:   make([]int, size),
		},
		ints: make([]int32, size),
	}, nil
}
