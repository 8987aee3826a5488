// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedEncoding covers compressed AIFC streams and sample
	// widths other than 8, 16, 24 and 32 bits.
	ErrUnsupportedEncoding = errors.New("aiff: unsupported sample encoding")

	// ErrNoCommonChunk means the COMM chunk is missing or malformed.
	ErrNoCommonChunk = errors.New("aiff: missing COMM chunk")

	// ErrTruncated means the sound data ended before the frame count
	// declared in the COMM chunk.
	ErrTruncated = errors.New("aiff: sound data truncated")
)
