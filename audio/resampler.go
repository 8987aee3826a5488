// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audcodec/internal/dsp"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves the channel
// count. Equal rates pass samples through untouched.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// frames[0..3] hold t-1, t0, t+1, t+2 around the output position
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool
	pos      float64

	// chunked reads from src
	in    []float32
	inPos int
	inLen int
	eof   bool

	// one-pole low-pass applied to input frames when downsampling
	filter      bool
	filterAlpha float32
	filterState []float32
	settled     bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		channels:    channels,
		in:          make([]float32, max(src.BufSize(), channels)/channels*channels),
		filterState: make([]float32, channels),
	}
	if dstRate > 0 {
		r.ratio = float64(src.SampleRate()) / float64(dstRate)
	}
	if r.ratio > 1 {
		// cutoff at the destination Nyquist frequency
		r.filter = true
		r.filterAlpha = float32(1 - math.Exp(-math.Pi/r.ratio))
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst. It returns false once
// the source is drained.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.inPos+r.channels > r.inLen {
		if r.eof {
			return false, nil
		}
		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}
	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.filter {
		if !r.settled {
			// start the filter settled on the first frame
			copy(r.filterState, dst)
			r.settled = true
		}
		for c := range dst {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

// prime loads the first frames. t-1 starts as a copy of t0, and a single
// frame source repeats its only frame as t+1.
func (r *Resampler) prime() error {
	ok, err := r.nextFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < len(r.frames); i++ {
		ok, err := r.nextFrame(r.frames[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.frames[i], r.frames[i-1])
		}
		r.hasFrame[i] = ok || i == 2
		if !ok {
			break
		}
	}
	if !r.hasFrame[3] {
		copy(r.frames[3], r.frames[2])
	}
	r.primed = true
	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() (bool, error) {
	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]

	ok, err := r.nextFrame(r.frames[3])
	if err != nil {
		return false, err
	}
	if !ok {
		copy(r.frames[3], r.frames[2])
	}
	r.hasFrame[3] = ok
	return r.hasFrame[2], nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.dstRate <= 0 {
		return 0, fmt.Errorf("%w: target sample rate %d", ErrInvalidParameter, r.dstRate)
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.ratio == 1 {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst)/r.channels {
		for r.pos >= 1 {
			r.pos--
			ok, err := r.advance()
			if err != nil {
				return written * r.channels, err
			}
			if !ok {
				return written * r.channels, io.EOF
			}
		}
		if !r.hasFrame[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = dsp.CubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}
		written++
		r.pos += r.ratio
	}
	return written * r.channels, nil
}
