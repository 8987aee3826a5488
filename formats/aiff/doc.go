// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - AIFF, and AIFC with compression type NONE
//   - Big-endian integer PCM of 8, 16, 24 or 32 bits
//   - Any channel count and sample rate
//
// Compressed AIFC streams (sowt, fl32, ulaw, ...) are rejected with
// ErrUnsupportedEncoding.
//
// # Decoding AIFF Files
//
//	b, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//	    // ErrNotAiffFile, ErrNoCommonChunk, ErrUnsupportedEncoding
//	}
//	defer b.Close()
//
// The returned audio.Backend hands out signed integer packets in the
// file's own sample width. The frame count in the COMM chunk is
// authoritative: sound data that ends early yields ErrTruncated.
//
// go-audio needs to seek, so readers that are not an io.ReadSeeker are
// read into memory first.
package aiff
