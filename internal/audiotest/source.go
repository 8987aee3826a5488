// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Wave returns the value of channel ch at the given frame.
type Wave func(frame, ch int) float32

// Source is a synthetic float32 stream satisfying audio.Source.
type Source struct {
	rate, channels int
	frames, pos    int
	wave           Wave
}

// NewSource returns frames frames of wave at rate.
func NewSource(rate, channels, frames int, wave Wave) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(rate, channels, frames int) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource plays the same tone of freq Hz on every channel.
func NewSineSource(rate, channels, frames int, freq float64) *Source {
	step := 2 * math.Pi * freq / float64(rate)
	return NewSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(step * float64(i)))
	})
}

func NewConstantSource(rate, channels, frames int, v float32) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return v })
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Close() error    { return nil }

// ReadSamples fills whole frames only and reports io.EOF together with the
// last of them.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}
	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n
	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
