// SPDX-License-Identifier: EPL-2.0

// Package audio defines the interfaces shared by the decoder back-ends and
// the float32 stream transforms built on top of them.
//
// # Back-ends
//
// A [Decoder] opens a [Backend] over a byte stream. The back-end reports
// its rate, channel count and native [sample.Format], then hands out
// [Packet] values in stream order until io.EOF:
//
//	b, err := wav.Decoder{}.Decode(r)
//	for {
//	    p, err := b.NextPacket()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Packet slices are reused, so copy what must outlive the next call.
//
// # Sources
//
// A [Source] is a pull stream of interleaved float32 samples nominally in
// [-1, 1]. [NewBackendSource] adapts any back-end, and the transforms chain
// on top of it:
//
//	var src audio.Source = audio.NewBackendSource(b)
//	src = audio.NewResampler(src, 16000) // cubic, with a low-pass when downsampling
//	src = audio.NewMonoMixer(src)        // channel average
//
// ReadSamples returns the number of samples written, not frames, and
// io.EOF once the stream is finished. The resampler needs dst to hold whole
// frames and returns [ErrInvalidDstSize] otherwise.
//
// # Errors
//
// The sentinels in this package are the error taxonomy of the whole
// module. Malformed streams are reported as a [*DecodeError], which
// matches [ErrDecode] as well as its cause.
package audio
