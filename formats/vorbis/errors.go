// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	ErrEncoderClosed = errors.New("vorbis: encoder closed")
	ErrNoSamples     = errors.New("vorbis: no samples encoded")
	ErrBadHeader     = errors.New("vorbis: identification header has no channels or sample rate")
	// ErrMissingEOS means the stream ended without an end-of-stream page.
	ErrMissingEOS = errors.New("vorbis: stream ends without end-of-stream page")
)
