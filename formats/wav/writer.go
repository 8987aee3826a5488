// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audcodec/audio"
)

// PCMWriter streams float32 samples into an integer PCM WAV file. The
// chunk sizes are patched on Close, so the target must be seekable.
type PCMWriter struct {
	enc      *wav.Encoder
	channels int
	bits     int
	buf      goaudio.IntBuffer
	frames   int
	closed   bool
}

// NewPCMWriter starts a WAV file of the given layout on ws. bitDepth is 8,
// 16, 24 or 32.
func NewPCMWriter(ws io.WriteSeeker, sampleRate, channels, bitDepth int) (*PCMWriter, error) {
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", audio.ErrInvalidParameter, channels, sampleRate)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, bitDepth)
	}

	return &PCMWriter{
		enc:      wav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		channels: channels,
		bits:     bitDepth,
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Frames is the number of frames written so far.
func (w *PCMWriter) Frames() int { return w.frames }

// Write appends interleaved samples in [-1, 1]. Values outside the range
// are clipped.
func (w *PCMWriter) Write(samples []float32) error {
	if w.closed {
		return ErrClosed
	}
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%w: %w", audio.ErrInvalidParameter, audio.ErrInvalidDstSize)
	}
	if len(samples) == 0 {
		return nil
	}

	w.buf.Data = w.buf.Data[:0]
	for _, v := range samples {
		w.buf.Data = append(w.buf.Data, quantise(v, w.bits))
	}
	if err := w.enc.Write(&w.buf); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	w.frames += len(samples) / w.channels
	return nil
}

// WriteSource drains src into the file. The source layout must match the
// writer's channel count; its sample rate is not checked.
func (w *PCMWriter) WriteSource(ctx context.Context, src audio.Source) error {
	if src.Channels() != w.channels {
		return fmt.Errorf("%w: source has %d channels, writer %d", audio.ErrInvalidParameter, src.Channels(), w.channels)
	}

	size := src.BufSize()
	size -= size % w.channels
	if size == 0 {
		size = w.channels
	}
	buf := make([]float32, size)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrCancelled, err)
		}
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}
}

// Close patches the RIFF and data sizes. It does not close the
// underlying writer.
func (w *PCMWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.frames == 0 {
		// go-audio only writes the headers together with the first samples.
		if err := w.enc.Write(&goaudio.IntBuffer{Format: w.buf.Format, SourceBitDepth: w.bits}); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrIO, err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	return nil
}

// quantise maps v to a bits wide WAV sample, rounding half away from zero.
// 8-bit WAV is offset binary.
func quantise(v float32, bits int) int {
	scale := float64(int64(1) << (bits - 1))
	f := float64(v)
	if math.IsNaN(f) {
		f = 0
	}
	q := min(max(math.Round(f*scale), -scale), scale-1)
	if bits == 8 {
		return int(q) + 128
	}
	return int(q)
}

// WriteWAV16 writes interleaved 16-bit PCM in one pass. Unlike PCMWriter it
// needs no seeking, since the sizes are known up front.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels < 1 || sampleRate < 1 {
		return fmt.Errorf("%w: %d channels at %d Hz", audio.ErrInvalidParameter, channels, sampleRate)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("%w: %w", audio.ErrInvalidParameter, audio.ErrInvalidDstSize)
	}

	numChannels := uint16(channels)
	bitsPerSample := uint16(16)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample/8)
	blockAlign := numChannels * (bitsPerSample / 8)
	dataSize := uint32(len(samples) * 2)
	riffSize := 36 + dataSize

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	// Write 8 KiB of samples at a time.
	const chunkSize = 4096
	buf := make([]byte, min(len(samples), chunkSize)*2)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		out := buf[:len(chunk)*2]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[j*2:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrIO, err)
		}
	}

	return nil
}
