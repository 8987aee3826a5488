// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedFormat means no back-end recognises the input.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrIO wraps failures of the underlying reader or writer.
	ErrIO = errors.New("i/o error")
	// ErrDecode marks malformed or truncated bitstreams.
	ErrDecode = errors.New("decode error")
	// ErrInvalidParameter marks caller supplied values out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedConfiguration marks valid looking settings a back-end
	// cannot honour, such as too many channels.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
	// ErrEncode marks encoder failures on otherwise valid input.
	ErrEncode = errors.New("encode error")
	// ErrCancelled is returned when the caller's context ends mid operation.
	ErrCancelled = errors.New("cancelled")
)

// DecodeError reports where a bitstream went bad.
// errors.Is(err, ErrDecode) holds for every DecodeError.
type DecodeError struct {
	Format string
	// Packet is the zero based index of the packet being decoded, or -1
	// while the stream headers were parsed.
	Packet int
	// Offset is the number of input bytes consumed when the error surfaced.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Packet < 0 {
		return fmt.Sprintf("%s: decode error in header (offset %d): %v", e.Format, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: decode error at packet %d (offset %d): %v", e.Format, e.Packet, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
