// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile = errors.New("not a WAV file")
	// ErrInvalidFormat means the fmt chunk is missing or declares no
	// channels, sample rate or sample width.
	ErrInvalidFormat       = errors.New("wav: invalid fmt chunk")
	ErrUnsupportedEncoding = errors.New("wav: unsupported sample encoding")
	ErrNoDataChunk         = errors.New("wav: no data chunk")
	// ErrTruncated means the data chunk ended before its declared size.
	ErrTruncated = errors.New("wav: data chunk truncated")
	ErrClosed    = errors.New("wav: writer closed")
)
