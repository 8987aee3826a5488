// SPDX-License-Identifier: EPL-2.0

// Package sample holds decoded audio as typed, interleaved buffers.
//
// A [Buffer] is generic over the numeric sample [Type] the caller asks for
// at decode time. Decoder back-ends produce samples in their own native
// [Format] (usually sign-extended integers or 32-bit floats); the
// conversion helpers map every representation through the unit range
// [-1, 1):
//
//   - integers are divided by 2^(bits-1), unsigned ones are offset by
//     half their range first;
//   - converting to an integer type rounds to nearest, halves away from
//     zero, and clamps to the type's range;
//   - float targets are never clamped.
//
// Widening integer conversions are therefore exact, and converting an
// int16 buffer to float32 and back returns the original samples.
//
// # Building
//
// Buffers are immutable. Decoders accumulate packets in a [Builder] and
// freeze the result with [Builder.Build]:
//
//	b, _ := sample.NewBuilder[float32](2, 44100, 0)
//	b.AppendInts(packet, 16)
//	buf, err := b.Build()
package sample
