// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"fmt"
	"io"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/sample"
)

// ResampleToMono16 drains src through a resampler to targetRate and a mono
// mixer, and returns the result as 16-bit PCM together with its rate.
//
// bufferSize is the number of samples read per pull. Samples are rounded to
// nearest and clamped the same way Decode[int16] does, so 1.0 maps to 32767
// and -1.0 to -32768.
//
// For a streaming pipeline use audio.NewResampler and audio.NewMonoMixer
// directly.
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if src == nil || targetRate <= 0 || bufferSize <= 0 {
		return nil, 0, fmt.Errorf("%w: rate %d, buffer of %d samples", ErrInvalidParameter, targetRate, bufferSize)
	}

	var chain audio.Source = audio.NewResampler(src, targetRate)
	if chain.Channels() > 1 {
		chain = audio.NewMonoMixer(chain)
	}

	builder, err := sample.NewBuilder[int16](1, targetRate, targetRate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	buf := make([]float32, bufferSize)
	for {
		n, err := chain.ReadSamples(buf)
		builder.AppendFloats(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("resample: %w", err)
		}
	}

	out, err := builder.Build()
	if err != nil {
		return nil, targetRate, err
	}
	return out.Samples(), targetRate, nil
}
