// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ik5/audcodec/formats/vorbis"
	"github.com/ik5/audcodec/sample"
)

// encodeChunkFrames is how many frames are converted to float32 at a time.
const encodeChunkFrames = 2048

// EncodeVorbis encodes buf as a complete Ogg/Vorbis stream at an average
// bitrate in bits per second.
//
// An empty buffer is an ErrEncode. Too many channels or a rate outside
// [vorbis.MinSampleRate, vorbis.MaxSampleRate] is an
// ErrUnsupportedConfiguration, and a bitrate outside [vorbis.MinBitrate,
// vorbis.MaxBitrate] is an ErrInvalidParameter. The output is a pure
// function of the samples, bitrate and options.
func EncodeVorbis[T sample.Type](ctx context.Context, buf *sample.Buffer[T], bitrate int, opts ...EncodeOption) ([]byte, error) {
	cfg := newEncodeConfig(opts)
	begin := time.Now()

	out, err := encode(ctx, buf, bitrate, cfg)
	if err != nil {
		cfg.metrics.RecordError(ctx, "encode", errorKind(err))
		cfg.logger.Warn("encode failed", "bitrate", bitrate, "error", err)
		return nil, err
	}

	cfg.metrics.RecordEncode(ctx, int64(len(out)), time.Since(begin))
	cfg.logger.Debug("encode finished",
		"rate", buf.SampleRate(),
		"channels", buf.Channels(),
		"frames", buf.Frames(),
		"bitrate", bitrate,
		"bytes", len(out),
	)
	return out, nil
}

func encode[T sample.Type](ctx context.Context, buf *sample.Buffer[T], bitrate int, cfg encodeConfig) ([]byte, error) {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return nil, fmt.Errorf("%w: no samples to encode", ErrEncode)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	vopts := []vorbis.Option{vorbis.WithComments(cfg.comments...), vorbis.WithLogger(cfg.logger)}
	if cfg.serial != nil {
		vopts = append(vopts, vorbis.WithSerial(*cfg.serial))
	}

	var out bytes.Buffer
	enc, err := vorbis.NewEncoder(&out, buf.Channels(), buf.SampleRate(), bitrate, vopts...)
	if err != nil {
		return nil, err
	}

	chunk := make([]float32, encodeChunkFrames*buf.Channels())
	for off := 0; off < buf.Len(); {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		n := buf.Float32s(chunk, off)
		if err := enc.Write(chunk[:n]); err != nil {
			return nil, err
		}
		off += n
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
