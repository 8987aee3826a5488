// SPDX-License-Identifier: EPL-2.0

package sample

import "errors"

var (
	ErrNoChannels   = errors.New("sample: channel count must be at least 1")
	ErrInvalidRate  = errors.New("sample: sample rate must be positive")
	ErrPartialFrame = errors.New("sample: sample count is not a multiple of channels")
	ErrPlaneLength  = errors.New("sample: channel planes differ in length")
)
