// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrBadStreamInfo = errors.New("flac: STREAMINFO declares no channels or sample rate")
	// ErrTruncated means the frames ended before the sample count declared
	// in STREAMINFO.
	ErrTruncated = errors.New("flac: stream truncated")
)
