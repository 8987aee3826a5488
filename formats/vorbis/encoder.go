// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/internal/ogg"
)

const (
	// MinBitrate and MaxBitrate bound the average bitrate in bits per second.
	MinBitrate = 8000
	MaxBitrate = 500000

	MinSampleRate = 8000
	MaxSampleRate = 192000

	// defaultSerial keeps output reproducible when no serial is given.
	defaultSerial = 0x61756463

	// chunkFrames is how many frames Encode pulls from a Source at once.
	chunkFrames = 2048
)

type config struct {
	comments []string
	serial   uint32
	logger   *slog.Logger
}

// Option configures an Encoder.
type Option func(*config)

// WithComments adds user comments of the form "KEY=value".
func WithComments(comments ...string) Option {
	return func(c *config) { c.comments = append(c.comments, comments...) }
}

// WithSerial sets the Ogg logical stream serial number.
func WithSerial(serial uint32) Option {
	return func(c *config) { c.serial = serial }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Encoder writes an Ogg/Vorbis stream at an average bitrate. Samples are
// pushed with Write and the stream is finished by Close.
type Encoder struct {
	ow       *ogg.Writer
	channels int
	rate     int
	bitrate  int
	log      *slog.Logger

	blk *blockEncoder
	rc  rateControl
	// buf holds one block per channel; the first hop frames are the tail of
	// the previous block.
	buf  [][]float64
	fill int

	frames  int64
	packets int64
	bits    int64
	closed  bool
}

// NewEncoder validates the stream parameters and writes the three Vorbis
// headers to w.
func NewEncoder(w io.Writer, channels, rate, bitrate int, opts ...Option) (*Encoder, error) {
	cfg := config{serial: defaultSerial, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d channels, want 1..%d", audio.ErrUnsupportedConfiguration, channels, MaxChannels)
	}
	if rate < MinSampleRate || rate > MaxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d Hz, want %d..%d", audio.ErrUnsupportedConfiguration, rate, MinSampleRate, MaxSampleRate)
	}
	if bitrate < MinBitrate || bitrate > MaxBitrate {
		return nil, fmt.Errorf("%w: bitrate %d bps, want %d..%d", audio.ErrInvalidParameter, bitrate, MinBitrate, MaxBitrate)
	}
	for _, c := range cfg.comments {
		if k, _, ok := strings.Cut(c, "="); !ok || k == "" {
			return nil, fmt.Errorf("%w: comment %q is not KEY=value", audio.ErrInvalidParameter, c)
		}
	}

	e := &Encoder{
		ow:       ogg.NewWriter(w, cfg.serial),
		channels: channels,
		rate:     rate,
		bitrate:  bitrate,
		log:      cfg.logger,
		blk:      newBlockEncoder(channels),
		rc:       newRateControl(bitrate, rate),
		buf:      make([][]float64, channels),
	}
	for ch := range e.buf {
		e.buf[ch] = make([]float64, blockSize)
	}

	if err := e.writeHeaders(cfg.comments); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) writeHeaders(comments []string) error {
	if err := e.ow.WritePacket(identificationHeader(e.channels, e.rate, e.bitrate), 0, false); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := e.ow.Flush(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := e.ow.WritePacket(commentHeader(comments), 0, false); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := e.ow.WritePacket(setupHeader(), 0, false); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	if err := e.ow.Flush(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	return nil
}

func (e *Encoder) Channels() int   { return e.channels }
func (e *Encoder) SampleRate() int { return e.rate }

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int64 { return e.frames }

// Written returns the number of bytes emitted so far.
func (e *Encoder) Written() int64 { return e.ow.Written() }

// Write encodes interleaved samples, nominally in [-1, 1]. len(samples)
// must be a multiple of the channel count.
func (e *Encoder) Write(samples []float32) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if len(samples)%e.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidParameter, len(samples), e.channels)
	}

	for len(samples) > 0 {
		n := min(hop-e.fill, len(samples)/e.channels)
		at := hop + e.fill
		for i := range n {
			frame := samples[i*e.channels : (i+1)*e.channels]
			for ch, v := range frame {
				e.buf[ch][at+i] = float64(v)
			}
		}
		e.fill += n
		e.frames += int64(n)
		samples = samples[n*e.channels:]

		if e.fill == hop {
			if err := e.encodeBlock(false); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close encodes the buffered tail and ends the stream. It does not close
// the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.frames == 0 {
		return fmt.Errorf("%w: %w", audio.ErrEncode, ErrNoSamples)
	}

	if e.fill > 0 {
		if err := e.encodeBlock(false); err != nil {
			return err
		}
	}
	if err := e.encodeBlock(true); err != nil {
		return err
	}

	e.log.Debug("vorbis stream finished",
		"channels", e.channels,
		"rate", e.rate,
		"bitrate", e.bitrate,
		"frames", e.frames,
		"packets", e.packets,
		"payload_bits", e.bits,
		"bytes", e.ow.Written(),
	)
	return nil
}

// encodeBlock codes the current block, zero padding a partial second
// half, and slides the window by one hop.
func (e *Encoder) encodeBlock(last bool) error {
	for _, b := range e.buf {
		clear(b[hop+e.fill:])
	}

	e.blk.analyse(e.buf)
	q, bits := e.rc.choose(e.blk, e.blk.minStep())
	e.rc.spend(bits)
	e.bits += int64(bits)

	granule := e.packets * hop
	if last {
		granule = e.frames
	}
	if err := e.ow.WritePacket(e.blk.pack(q), granule, last); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	e.packets++

	for _, b := range e.buf {
		copy(b[:hop], b[hop:])
	}
	e.fill = 0
	return nil
}

// Encode reads src to the end and writes it to w as an Ogg/Vorbis stream.
// ctx is checked between chunks of source frames.
func Encode(ctx context.Context, w io.Writer, src audio.Source, bitrate int, opts ...Option) error {
	enc, err := NewEncoder(w, src.Channels(), src.SampleRate(), bitrate, opts...)
	if err != nil {
		return err
	}

	buf := make([]float32, chunkFrames*src.Channels())
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrCancelled, err)
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := enc.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("vorbis: read source: %w", err)
		}
	}
	return enc.Close()
}
