// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"context"
	"errors"

	"github.com/ik5/audcodec/audio"
)

// The error taxonomy. Every error returned by Decode, DecodeBatch,
// EncodeVorbis and Transcode matches exactly one of these with errors.Is.
var (
	ErrUnsupportedFormat        = audio.ErrUnsupportedFormat
	ErrIO                       = audio.ErrIO
	ErrDecode                   = audio.ErrDecode
	ErrInvalidParameter         = audio.ErrInvalidParameter
	ErrUnsupportedConfiguration = audio.ErrUnsupportedConfiguration
	ErrEncode                   = audio.ErrEncode
	ErrCancelled                = audio.ErrCancelled
)

// DecodeError carries the format, packet index and input offset of a
// malformed stream. Retrieve it with errors.As.
type DecodeError = audio.DecodeError

// errorKind names the taxonomy entry of err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrUnsupportedConfiguration):
		return "unsupported_configuration"
	case errors.Is(err, ErrEncode):
		return "encode"
	}
	return "other"
}
