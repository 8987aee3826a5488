// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 and MPEG-2 Layer III audio.
//
// Decoding is done by github.com/hajimehoshi/go-mp3. Before handing the
// stream over, Decoder walks every frame header itself (see Scan) so it
// knows the exact PCM length and whether the last frame was cut short;
// go-mp3 silently treats a truncated frame as the end of the stream.
//
//	b, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    // ErrNoFrames, ErrUnsupportedVersion, ErrTruncated
//	}
//	defer b.Close()
//
// # Output Format
//
//   - Sample format: signed 16-bit integers
//   - Channels: taken from the first frame header; mono streams keep one channel
//   - Sample rate: taken from the first frame header
//
// The whole input is read into memory, since go-mp3 seeks back to the
// start of the data to index the frames.
//
// # Limitations
//
//   - MPEG-2.5 (8, 11.025 and 12 kHz) is rejected
//   - Encoder delay and padding from LAME/Xing headers are not trimmed
//   - There is no encoder
package mp3
