// SPDX-License-Identifier: EPL-2.0

// Package audcodec decodes compressed and uncompressed audio into typed
// in-memory sample buffers and encodes sample buffers to Ogg/Vorbis.
//
// # Decoding
//
// [Decode] sniffs the leading bytes of a stream, picks a back-end and
// returns every sample converted to the requested type:
//
//	f, _ := os.Open("call.mp3")
//	defer f.Close()
//	buf, rate, err := audcodec.Decode[int16](ctx, f)
//
// Supported inputs are WAV (integer PCM, IEEE float and G.711), AIFF and
// uncompressed AIFC, MPEG-1 and MPEG-2 Layer III, native FLAC and
// Ogg/Vorbis. The sample type is one of uint8, int8, int16, int32, float32
// or float64; integers are scaled to full range and clamped, floats are
// nominally in [-1, 1].
//
// Decoding fails as a whole. Errors match one of [ErrUnsupportedFormat],
// [ErrIO], [ErrDecode] (as a [*DecodeError] carrying the packet index and
// byte offset), [ErrInvalidParameter] or [ErrCancelled].
//
// [WithSampleRate] and [WithMono] run the stream through the resampler and
// mono mixer of package audio on the way in. [DecodeBatch] decodes several
// inputs concurrently.
//
// # Encoding
//
// [EncodeVorbis] writes a buffer as a complete Ogg/Vorbis I stream at an
// average bitrate:
//
//	out, err := audcodec.EncodeVorbis(ctx, buf, 96000, audcodec.WithComments("TITLE=Greeting"))
//
// Output is deterministic for the same samples, bitrate and options.
//
// # Profiles
//
// A [Profile] describes a transcode in YAML and is run with [Transcode]:
//
//	p, err := audcodec.LoadProfile("voice.yaml")
//	err = audcodec.Transcode(ctx, dst, src, p)
//
// # Observability
//
// Calls log through log/slog (see [WithLogger]) and record OpenTelemetry
// metrics on the global meter provider unless [WithMetrics] supplies
// instruments created by [NewMetrics].
package audcodec
