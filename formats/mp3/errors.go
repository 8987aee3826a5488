// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrNoFrames = errors.New("mp3: no Layer III frame found")
	// ErrUnsupportedVersion is returned for MPEG-2.5 streams, which the
	// decoder cannot play.
	ErrUnsupportedVersion = errors.New("mp3: MPEG-2.5 is not supported")
	// ErrTruncated means the stream ends inside a frame.
	ErrTruncated = errors.New("mp3: last frame truncated")
)
