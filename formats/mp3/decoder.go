// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/internal/iox"
	"github.com/ik5/audcodec/sample"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// packetFrames bounds the frames handed out per packet.
const packetFrames = 4096

// go-mp3 always produces 16-bit little-endian stereo.
const bytesPerFrame = 4

type backend struct {
	dec        mp3Reader
	sampleRate int
	channels   int
	expected   int // PCM frames of all complete MP3 frames
	delivered  int
	truncated  bool
	buf        []byte
	ints       []int32
}

func (b *backend) SampleRate() int       { return b.sampleRate }
func (b *backend) Channels() int         { return b.channels }
func (b *backend) Format() sample.Format { return sample.S16 }
func (b *backend) Close() error          { return nil }

func (b *backend) NextPacket() (audio.Packet, error) {
	if b.delivered >= b.expected {
		if b.truncated {
			return audio.Packet{}, ErrTruncated
		}
		return audio.Packet{}, io.EOF
	}

	want := min(packetFrames, b.expected-b.delivered) * bytesPerFrame
	n, err := io.ReadFull(b.dec, b.buf[:want])
	n -= n % bytesPerFrame
	if n == 0 {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return audio.Packet{}, fmt.Errorf("%w: %d frames missing", ErrTruncated, b.expected-b.delivered)
		}
		return audio.Packet{}, fmt.Errorf("mp3: %w", err)
	}

	frames := n / bytesPerFrame
	for i := range frames {
		frame := b.buf[i*bytesPerFrame:]
		if b.channels == 1 {
			b.ints[i] = int32(int16(binary.LittleEndian.Uint16(frame)))
			continue
		}
		b.ints[2*i] = int32(int16(binary.LittleEndian.Uint16(frame)))
		b.ints[2*i+1] = int32(int16(binary.LittleEndian.Uint16(frame[2:])))
	}
	b.delivered += frames

	return audio.Packet{Ints: b.ints[:frames*b.channels], Frames: frames}, nil
}

// Decoder opens MPEG-1 and MPEG-2 Layer III streams. The whole stream is
// read into memory first: the frame headers are scanned up front so a
// stream cut inside its last frame is reported instead of silently
// shortened.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Backend, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stream, err := Scan(data)
	if err != nil {
		return nil, err
	}
	if stream.First.Version == MPEG25 {
		return nil, ErrUnsupportedVersion
	}
	if stream.Frames == 0 {
		return nil, ErrTruncated
	}

	dec, err := gomp3.NewDecoder(iox.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return newBackend(dec, stream), nil
}

func newBackend(dec mp3Reader, s Stream) *backend {
	return &backend{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   s.First.Channels,
		expected:   s.Samples,
		truncated:  s.Truncated,
		buf:        make([]byte, packetFrames*bytesPerFrame),
		ints:       make([]int32, packetFrames*2),
	}
}
