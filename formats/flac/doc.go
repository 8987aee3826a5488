// SPDX-License-Identifier: EPL-2.0

// Package flac decodes native FLAC streams with github.com/mewkiz/flac.
//
// Frames are parsed one at a time as NextPacket is called, so a FLAC
// source is never read into memory and need not seek. Each packet is one
// FLAC frame, interleaved, in the stream's own sample width.
//
// When STREAMINFO declares a total sample count, a stream that ends short
// of it yields ErrTruncated; a count of zero means unknown and the stream
// simply ends.
//
// Ogg-encapsulated FLAC is not handled here.
package flac
