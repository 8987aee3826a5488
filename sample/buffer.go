// SPDX-License-Identifier: EPL-2.0

package sample

import (
	"slices"
	"time"
)

// Buffer is an immutable block of interleaved audio samples.
//
// The number of samples is always a multiple of Channels. A Buffer is safe
// for concurrent reads.
type Buffer[T Type] struct {
	channels int
	rate     int
	data     []T
}

// NewBuffer copies samples into a new Buffer.
func NewBuffer[T Type](channels, rate int, samples []T) (*Buffer[T], error) {
	if channels < 1 {
		return nil, ErrNoChannels
	}
	if rate < 1 {
		return nil, ErrInvalidRate
	}
	if len(samples)%channels != 0 {
		return nil, ErrPartialFrame
	}
	return &Buffer[T]{channels: channels, rate: rate, data: slices.Clone(samples)}, nil
}

func (b *Buffer[T]) Channels() int   { return b.channels }
func (b *Buffer[T]) SampleRate() int { return b.rate }
func (b *Buffer[T]) Kind() Kind      { return KindOf[T]() }

// Len returns the number of samples across all channels.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Frames returns the number of samples per channel.
func (b *Buffer[T]) Frames() int { return len(b.data) / b.channels }

// Duration is the playback length at SampleRate.
func (b *Buffer[T]) Duration() time.Duration {
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.rate)
}

// At returns the i-th interleaved sample.
func (b *Buffer[T]) At(i int) T { return b.data[i] }

// Samples returns a copy of the interleaved samples.
func (b *Buffer[T]) Samples() []T { return slices.Clone(b.data) }

// Channel returns a copy of the samples of channel c.
func (b *Buffer[T]) Channel(c int) []T {
	if c < 0 || c >= b.channels {
		return nil
	}
	out := make([]T, 0, b.Frames())
	for i := c; i < len(b.data); i += b.channels {
		out = append(out, b.data[i])
	}
	return out
}

// Float32s converts samples starting at offset into dst and returns how
// many were written.
func (b *Buffer[T]) Float32s(dst []float32, offset int) int {
	if offset >= len(b.data) {
		return 0
	}
	return ConvertSlice(dst, b.data[offset:])
}

// Builder accumulates converted samples for a Buffer. The zero value is not
// usable; call NewBuilder.
type Builder[T Type] struct {
	channels int
	rate     int
	data     []T
}

// NewBuilder returns an empty Builder. sizeHint preallocates room for that
// many samples.
func NewBuilder[T Type](channels, rate, sizeHint int) (*Builder[T], error) {
	if channels < 1 {
		return nil, ErrNoChannels
	}
	if rate < 1 {
		return nil, ErrInvalidRate
	}
	return &Builder[T]{channels: channels, rate: rate, data: make([]T, 0, max(sizeHint, 0))}, nil
}

// Len returns the number of samples appended so far.
func (b *Builder[T]) Len() int { return len(b.data) }

func (b *Builder[T]) grow(n int) []T {
	start := len(b.data)
	b.data = slices.Grow(b.data, n)[:start+n]
	return b.data[start:]
}

// AppendInts converts and appends signed integer samples of the given
// significant bit width.
func (b *Builder[T]) AppendInts(src []int32, bits int) {
	FromInts(b.grow(len(src)), src, bits)
}

// AppendFloats converts and appends float32 samples.
func (b *Builder[T]) AppendFloats(src []float32) {
	FromFloats(b.grow(len(src)), src)
}

// Append appends samples that already have type T.
func (b *Builder[T]) Append(src ...T) {
	b.data = append(b.data, src...)
}

// Build freezes the accumulated samples. A trailing partial frame is an
// error. The Builder must not be used afterwards.
func (b *Builder[T]) Build() (*Buffer[T], error) {
	if len(b.data)%b.channels != 0 {
		return nil, ErrPartialFrame
	}
	out := &Buffer[T]{channels: b.channels, rate: b.rate, data: slices.Clip(b.data)}
	b.data = nil
	return out, nil
}
