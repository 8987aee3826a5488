// SPDX-License-Identifier: EPL-2.0

package sample

import "math"

// ConvertSlice converts src into dst element by element and returns the
// number of samples written, min(len(dst), len(src)).
//
// Integer targets are rounded to nearest (half away from zero) and clamped
// to their range. Float targets are not clamped.
func ConvertSlice[To, From Type](dst []To, src []From) int {
	n := min(len(dst), len(src))
	from, to := scaleOf(KindOf[From]()), scaleOf(KindOf[To]())
	if from == to {
		for i := range n {
			dst[i] = To(src[i])
		}
		return n
	}
	for i := range n {
		dst[i] = To(to.fromUnit(from.toUnit(float64(src[i]))))
	}
	return n
}

// FromInts converts signed integer samples holding bits significant bits
// into dst. It returns the number of samples written.
func FromInts[T Type](dst []T, src []int32, bits int) int {
	n := min(len(dst), len(src))
	to := scaleOf(KindOf[T]())
	// exact shifts keep lossless widening paths bit exact
	factor := math.Ldexp(1, bits-1)
	for i := range n {
		dst[i] = T(to.fromUnit(float64(src[i]) / factor))
	}
	return n
}

// FromFloats converts float32 samples into dst.
func FromFloats[T Type](dst []T, src []float32) int {
	n := min(len(dst), len(src))
	to := scaleOf(KindOf[T]())
	for i := range n {
		dst[i] = T(to.fromUnit(float64(src[i])))
	}
	return n
}

// Convert returns a copy of b holding samples of type To.
func Convert[To, From Type](b *Buffer[From]) *Buffer[To] {
	out := make([]To, len(b.data))
	ConvertSlice(out, b.data)
	return &Buffer[To]{channels: b.channels, rate: b.rate, data: out}
}

// Interleave merges per-channel planes into one interleaved slice. All
// planes must have the same length.
func Interleave[T Type](planes [][]T) ([]T, error) {
	if len(planes) == 0 {
		return nil, ErrNoChannels
	}
	frames := len(planes[0])
	for _, p := range planes[1:] {
		if len(p) != frames {
			return nil, ErrPlaneLength
		}
	}
	ch := len(planes)
	out := make([]T, frames*ch)
	for c, p := range planes {
		for f, v := range p {
			out[f*ch+c] = v
		}
	}
	return out, nil
}

// Deinterleave splits interleaved samples into one plane per channel.
func Deinterleave[T Type](samples []T, channels int) ([][]T, error) {
	if channels < 1 {
		return nil, ErrNoChannels
	}
	if len(samples)%channels != 0 {
		return nil, ErrPartialFrame
	}
	frames := len(samples) / channels
	planes := make([][]T, channels)
	for c := range planes {
		planes[c] = make([]T, frames)
	}
	for i, v := range samples {
		planes[i%channels][i/channels] = v
	}
	return planes, nil
}
