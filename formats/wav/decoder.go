// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/internal/iox"
	"github.com/ik5/audcodec/sample"
)

// WAVE format tags.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatALaw       = 6
	formatMuLaw      = 7
	formatExtensible = 0xfffe
)

// packetFrames bounds the frames handed out per packet.
const packetFrames = 4096

// pcmReader is the part of wav.Decoder used after the header, so tests can
// mock it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type backend struct {
	dec        pcmReader
	sampleRate int
	channels   int
	tag        int
	bits       int
	format     sample.Format
	remaining  int // samples still owed by the data chunk
	buf        goaudio.IntBuffer
	ints       []int32
	floats     []float32
}

func (b *backend) SampleRate() int       { return b.sampleRate }
func (b *backend) Channels() int         { return b.channels }
func (b *backend) Format() sample.Format { return b.format }
func (b *backend) Close() error          { return nil }

func (b *backend) NextPacket() (audio.Packet, error) {
	if b.remaining == 0 {
		return audio.Packet{}, io.EOF
	}

	want := min(packetFrames*b.channels, b.remaining)
	b.buf.Data = b.buf.Data[:want]
	n, err := b.dec.PCMBuffer(&b.buf)
	if err != nil {
		return audio.Packet{}, fmt.Errorf("wav: %w", err)
	}
	if n == 0 || (n < want && n%b.channels != 0) {
		return audio.Packet{}, fmt.Errorf("%w: %d samples missing", ErrTruncated, b.remaining)
	}
	b.remaining -= n

	data := b.buf.Data[:n]
	if b.format.Float {
		for i, v := range data {
			b.floats[i] = math.Float32frombits(uint32(int32(v)))
		}
		return audio.Packet{Floats: b.floats[:n], Frames: n / b.channels}, nil
	}

	switch {
	case b.tag == formatALaw:
		for i, v := range data {
			b.ints[i] = int32(alawToLinear(byte(v)))
		}
	case b.tag == formatMuLaw:
		for i, v := range data {
			b.ints[i] = int32(mulawToLinear(byte(v)))
		}
	case b.bits == 8:
		for i, v := range data {
			b.ints[i] = int32(v) - 128
		}
	default:
		for i, v := range data {
			b.ints[i] = int32(v)
		}
	}
	return audio.Packet{Ints: b.ints[:n], Frames: n / b.channels}, nil
}

// Decoder opens RIFF/WAVE streams holding integer PCM (8 to 32 bits),
// 32-bit IEEE float or G.711 A-law/μ-law samples.
//
// go-audio needs to seek, so input that is not an io.ReadSeeker is read
// into memory first.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Backend, error) {
	rs, err := iox.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	var magic [12]byte
	if _, err := io.ReadFull(rs, magic[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotWavFile
		}
		return nil, fmt.Errorf("%w", err)
	}
	if [4]byte(magic[:4]) != riff.RiffID || [4]byte(magic[8:]) != riff.WavFormatID {
		return nil, ErrNotWavFile
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := wav.NewDecoder(rs)
	err = dec.FwdToPCM()
	if err == nil {
		err = dec.Err()
	}
	if err != nil || dec.PCMChunk == nil {
		if dec.NumChans == 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return nil, ErrNoDataChunk
	}

	// go-audio pads odd chunk sizes, so re-read the declared size that
	// precedes the sample data.
	declared, err := declaredSize(rs)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newBackend(dec, int(dec.NumChans), int(dec.SampleRate), int(dec.WavAudioFormat), int(dec.BitDepth), declared)
}

func declaredSize(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(-4, io.SeekCurrent); err != nil {
		return 0, err
	}
	var size uint32
	if err := binary.Read(rs, binary.LittleEndian, &size); err != nil {
		return 0, err
	}
	return int(size), nil
}

func newBackend(dec pcmReader, channels, rate, tag, bits, dataBytes int) (*backend, error) {
	if channels < 1 || rate < 1 || bits < 1 {
		return nil, ErrInvalidFormat
	}

	var format sample.Format
	switch tag {
	case formatPCM, formatExtensible:
		switch bits {
		case 8, 16, 24, 32:
			format = sample.Format{Bits: bits}
		default:
			return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, bits)
		}
	case formatFloat:
		if bits != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedEncoding, bits)
		}
		format = sample.F32
	case formatALaw, formatMuLaw:
		if bits != 8 {
			return nil, fmt.Errorf("%w: %d-bit G.711", ErrUnsupportedEncoding, bits)
		}
		format = sample.S16
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, tag)
	}

	remaining := dataBytes / (bits / 8)
	remaining -= remaining % channels

	size := packetFrames * channels
	b := &backend{
		dec:        dec,
		sampleRate: rate,
		channels:   channels,
		tag:        tag,
		bits:       bits,
		format:     format,
		remaining:  remaining,
		buf: goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: channels, SampleRate: rate},
			Data:   make([]int, size),
		},
	}
	if format.Float {
		b.floats = make([]float32, size)
	} else {
		b.ints = make([]int32, size)
	}
	return b, nil
}
