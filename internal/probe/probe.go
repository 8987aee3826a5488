// SPDX-License-Identifier: EPL-2.0

// Package probe identifies an audio container from its leading bytes and
// opens the matching back-end.
package probe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/formats/aiff"
	"github.com/ik5/audcodec/formats/flac"
	"github.com/ik5/audcodec/formats/mp3"
	"github.com/ik5/audcodec/formats/vorbis"
	"github.com/ik5/audcodec/formats/wav"
	"github.com/ik5/audcodec/internal/ogg"
	jvorbis "github.com/jfreymuth/vorbis"
)

// HeadSize is how many leading bytes detection looks at.
const HeadSize = 4096

// Kind is the closed set of formats the module can decode.
type Kind uint8

const (
	Unknown Kind = iota
	WAV
	AIFF
	MP3
	FLAC
	OggVorbis
)

func (k Kind) String() string {
	switch k {
	case WAV:
		return "wav"
	case AIFF:
		return "aiff"
	case MP3:
		return "mp3"
	case FLAC:
		return "flac"
	case OggVorbis:
		return "vorbis"
	}
	return "unknown"
}

// Descriptor names what Sniff found.
type Descriptor struct {
	Kind      Kind
	Container string
	Codec     string
}

func (d Descriptor) String() string {
	if d.Container == d.Codec {
		return d.Codec
	}
	return d.Container + "/" + d.Codec
}

var (
	vorbisID = []byte("\x01vorbis")
	opusID   = []byte("OpusHead")
)

// Sniff inspects head, the first bytes of a stream. It never reads
// further, so an MP3 frame sync is only cross-checked against the next
// frame when that lies inside head.
func Sniff(head []byte) (Descriptor, error) {
	switch {
	case len(head) == 0:
		return Descriptor{}, fmt.Errorf("%w: empty input", audio.ErrUnsupportedFormat)
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return Descriptor{Kind: WAV, Container: "riff", Codec: "pcm"}, nil
	case len(head) >= 12 && string(head[:4]) == "FORM" && (string(head[8:12]) == "AIFF" || string(head[8:12]) == "AIFC"):
		return Descriptor{Kind: AIFF, Container: "aiff", Codec: "pcm"}, nil
	case bytes.HasPrefix(head, []byte("fLaC")):
		return Descriptor{Kind: FLAC, Container: "flac", Codec: "flac"}, nil
	case bytes.HasPrefix(head, []byte("OggS")):
		return sniffOgg(head)
	case bytes.HasPrefix(head, []byte("ID3")):
		return Descriptor{Kind: MP3, Container: "mpeg", Codec: "mp3"}, nil
	}

	if h, ok := mp3.ParseHeader(head); ok {
		next := h.Size()
		if len(head) < next+4 {
			return Descriptor{Kind: MP3, Container: "mpeg", Codec: "mp3"}, nil
		}
		if _, ok := mp3.ParseHeader(head[next:]); ok {
			return Descriptor{Kind: MP3, Container: "mpeg", Codec: "mp3"}, nil
		}
	}
	return Descriptor{}, audio.ErrUnsupportedFormat
}

func sniffOgg(head []byte) (Descriptor, error) {
	packet, err := ogg.FirstPacket(head)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: ogg: %w", audio.ErrUnsupportedFormat, err)
	}

	switch {
	case bytes.HasPrefix(packet, vorbisID):
		var dec jvorbis.Decoder
		if err := dec.ReadHeader(packet); err != nil {
			return Descriptor{}, fmt.Errorf("%w: ogg: %w", audio.ErrUnsupportedFormat, err)
		}
		return Descriptor{Kind: OggVorbis, Container: "ogg", Codec: "vorbis"}, nil
	case bytes.HasPrefix(packet, opusID):
		return Descriptor{}, fmt.Errorf("%w: ogg/opus", audio.ErrUnsupportedFormat)
	case bytes.HasPrefix(packet, []byte("\x7fFLAC")):
		return Descriptor{}, fmt.Errorf("%w: ogg/flac", audio.ErrUnsupportedFormat)
	case bytes.HasPrefix(packet, []byte("Speex   ")):
		return Descriptor{}, fmt.Errorf("%w: ogg/speex", audio.ErrUnsupportedFormat)
	}
	return Descriptor{}, fmt.Errorf("%w: ogg with unknown codec", audio.ErrUnsupportedFormat)
}

// Detect peeks at the head of br without consuming it.
func Detect(br *bufio.Reader) (Descriptor, error) {
	head, err := br.Peek(HeadSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Descriptor{}, fmt.Errorf("%w", err)
	}
	return Sniff(head)
}

// DetectSeeker reads the head of rs and seeks back to where it started.
func DetectSeeker(rs io.ReadSeeker) (Descriptor, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w", err)
	}

	head := make([]byte, HeadSize)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Descriptor{}, fmt.Errorf("%w", err)
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return Descriptor{}, fmt.Errorf("%w", err)
	}
	return Sniff(head[:n])
}

var decoders = [...]audio.Decoder{
	WAV:       wav.Decoder{},
	AIFF:      aiff.Decoder{},
	MP3:       mp3.Decoder{},
	FLAC:      flac.Decoder{},
	OggVorbis: vorbis.Decoder{},
}

// Open starts the back-end for d on r, which must be positioned at the
// start of the stream.
func Open(d Descriptor, r io.Reader) (audio.Backend, error) {
	if int(d.Kind) >= len(decoders) || decoders[d.Kind] == nil {
		return nil, audio.ErrUnsupportedFormat
	}
	return decoders[d.Kind].Decode(r)
}
