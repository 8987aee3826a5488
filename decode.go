// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/formats/aiff"
	"github.com/ik5/audcodec/formats/mp3"
	"github.com/ik5/audcodec/formats/wav"
	"github.com/ik5/audcodec/internal/iox"
	"github.com/ik5/audcodec/internal/probe"
	"github.com/ik5/audcodec/sample"
	"golang.org/x/sync/errgroup"
)

// back-end errors that mean "recognised, but not something we can play"
var unsupported = []error{
	wav.ErrUnsupportedEncoding,
	aiff.ErrUnsupportedEncoding,
	mp3.ErrUnsupportedVersion,
}

// Info describes the source stream of a successful Decode. Rate, channel
// and frame counts are those of the source, before any resampling or
// mixing.
type Info struct {
	Format     string
	SampleRate int
	Channels   int
	Frames     int64
	Packets    int
	// Bytes is the size of the input read, container overhead included.
	Bytes int64
	// Bitrate estimates the source bitrate in bits per second as
	// Bytes·8 over the stream duration. It is 0 for an empty stream.
	Bitrate int
}

func (i *Info) finish(bytes int64) {
	i.Bytes = bytes
	if i.Frames > 0 && i.SampleRate > 0 {
		seconds := float64(i.Frames) / float64(i.SampleRate)
		i.Bitrate = int(math.Round(float64(bytes) * 8 / seconds))
	}
}

type decoded[T sample.Type] struct {
	buf  *sample.Buffer[T]
	info Info
}

// Decode identifies the format of r, decodes it to the end and returns the
// samples converted to T together with their sample rate.
//
// Packets are converted as they are decoded. Any error aborts the call and
// no samples are returned: ErrUnsupportedFormat when the input is not
// recognised, ErrIO when r itself fails, a *DecodeError for a malformed or
// truncated stream and ErrCancelled when ctx ends. On success r has been
// read to the end.
func Decode[T sample.Type](ctx context.Context, r io.Reader, opts ...DecodeOption) (*sample.Buffer[T], int, error) {
	cfg := newDecodeConfig(opts)
	begin := time.Now()

	res, err := decode[T](ctx, r, cfg)
	if err != nil {
		cfg.metrics.RecordError(ctx, "decode", errorKind(err))
		cfg.logger.Warn("decode failed", "format", res.info.Format, "error", err)
		return nil, 0, err
	}

	cfg.metrics.RecordDecode(ctx, res.info.Format, int64(res.info.Packets), time.Since(begin))
	cfg.logger.Debug("decode finished",
		"format", res.info.Format,
		"rate", res.buf.SampleRate(),
		"channels", res.buf.Channels(),
		"frames", res.buf.Frames(),
		"packets", res.info.Packets,
		"bitrate", res.info.Bitrate,
		"type", res.buf.Kind(),
	)
	if cfg.info != nil {
		*cfg.info = res.info
	}
	return res.buf, res.buf.SampleRate(), nil
}

func decode[T sample.Type](ctx context.Context, r io.Reader, cfg decodeConfig) (decoded[T], error) {
	var res decoded[T]
	if r == nil {
		return res, fmt.Errorf("%w: nil reader", ErrInvalidParameter)
	}
	if cfg.sampleRate < 0 || cfg.chunkFrames < 1 {
		return res, fmt.Errorf("%w: sample rate %d, chunk of %d frames", ErrInvalidParameter, cfg.sampleRate, cfg.chunkFrames)
	}
	if err := ctx.Err(); err != nil {
		return res, cancelled(err)
	}

	in, tracker := iox.Track(r)
	desc, src, err := detect(in)
	if err != nil {
		if tracker.Err() != nil {
			return res, fmt.Errorf("%w: %w", ErrIO, tracker.Err())
		}
		return res, err
	}
	res.info.Format = desc.Kind.String()
	cfg.logger.Debug("decode started", "format", desc.String())

	b, err := probe.Open(desc, src)
	if err != nil {
		return res, streamError(err, tracker, res.info.Format, -1)
	}
	defer b.Close()
	res.info.SampleRate, res.info.Channels = b.SampleRate(), b.Channels()

	var builder *sample.Builder[T]
	if cfg.transforms(b) {
		builder, err = pullSource[T](ctx, b, cfg, &res.info)
	} else {
		builder, err = sample.NewBuilder[T](b.Channels(), b.SampleRate(), 0)
		if err != nil {
			return res, streamError(err, tracker, res.info.Format, 0)
		}
		err = pullPackets(ctx, b, builder, &res.info)
	}
	if err != nil {
		return res, streamError(err, tracker, res.info.Format, res.info.Packets)
	}

	if res.buf, err = builder.Build(); err != nil {
		return res, streamError(err, tracker, res.info.Format, res.info.Packets)
	}
	if _, err := io.Copy(io.Discard, src); err != nil {
		return res, fmt.Errorf("%w: %w", ErrIO, err)
	}
	res.info.finish(tracker.Offset())
	return res, nil
}

// detect probes r without losing the bytes it looked at, and returns the
// reader the back-end must consume.
func detect(r io.Reader) (probe.Descriptor, io.Reader, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		d, err := probe.DetectSeeker(rs)
		return d, rs, err
	}
	br := bufio.NewReaderSize(r, probe.HeadSize)
	d, err := probe.Detect(br)
	return d, br, err
}

func (c decodeConfig) transforms(b audio.Backend) bool {
	return (c.sampleRate > 0 && c.sampleRate != b.SampleRate()) || (c.mono && b.Channels() > 1)
}

// pullPackets appends each packet to builder in its native format.
func pullPackets[T sample.Type](ctx context.Context, b audio.Backend, builder *sample.Builder[T], info *Info) error {
	bits := b.Format().Bits
	for {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		p, err := b.NextPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if p.Floats != nil {
			builder.AppendFloats(p.Floats)
		} else {
			builder.AppendInts(p.Ints, bits)
		}
		info.Packets++
		info.Frames += int64(p.Frames)
	}
}

// pullSource runs the back-end through the resample and mix stages into a
// builder laid out like their output.
func pullSource[T sample.Type](ctx context.Context, b audio.Backend, cfg decodeConfig, info *Info) (*sample.Builder[T], error) {
	bs := audio.NewBackendSource(b)
	var src audio.Source = bs
	if cfg.sampleRate > 0 && cfg.sampleRate != src.SampleRate() {
		src = audio.NewResampler(src, cfg.sampleRate)
	}
	if cfg.mono && src.Channels() > 1 {
		src = audio.NewMonoMixer(src)
	}

	builder, err := sample.NewBuilder[T](src.Channels(), src.SampleRate(), 0)
	if err != nil {
		return nil, err
	}
	defer func() { info.Packets, info.Frames = bs.Packets(), bs.Frames() }()

	chunk := make([]float32, cfg.chunkFrames*src.Channels())
	for {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		n, err := src.ReadSamples(chunk)
		builder.AppendFloats(chunk[:n])
		if err == io.EOF {
			return builder, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// streamError sorts a failure after detection into the error taxonomy.
func streamError(err error, t *iox.Tracker, format string, packet int) error {
	switch {
	case t.Err() != nil:
		return fmt.Errorf("%w: %w", ErrIO, t.Err())
	case errors.Is(err, ErrCancelled):
		return err
	}
	for _, target := range unsupported {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
	}
	return &DecodeError{Format: format, Packet: packet, Offset: t.Offset(), Err: err}
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// DecodeBatch decodes independent inputs concurrently, at most limit at a
// time (no bound when limit < 1). Results are in input order. The first
// failure cancels the remaining decodes and is returned alone, prefixed
// with the index of the input. WithInfo is rejected since the decodes
// would share one Info.
func DecodeBatch[T sample.Type](ctx context.Context, inputs []io.Reader, limit int, opts ...DecodeOption) ([]*sample.Buffer[T], []int, error) {
	if newDecodeConfig(opts).info != nil {
		return nil, nil, fmt.Errorf("%w: WithInfo in a batch", ErrInvalidParameter)
	}

	bufs := make([]*sample.Buffer[T], len(inputs))
	rates := make([]int, len(inputs))

	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, r := range inputs {
		eg.Go(func() error {
			buf, rate, err := Decode[T](egCtx, r, opts...)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			bufs[i], rates[i] = buf, rate
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return bufs, rates, nil
}
