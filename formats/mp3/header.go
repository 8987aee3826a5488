// SPDX-License-Identifier: EPL-2.0

package mp3

import "fmt"

// Version is the MPEG audio version of a frame.
type Version uint8

const (
	MPEG25 Version = iota
	_
	MPEG2
	MPEG1
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	}
	return fmt.Sprintf("Version(%d)", uint8(v))
}

// Header is a decoded Layer III frame header.
type Header struct {
	Version    Version
	Bitrate    int // bits per second
	SampleRate int
	Channels   int
	Padding    bool
}

var (
	bitratesV1 = [15]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	bitratesV2 = [15]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
	rates      = [3]int{44100, 48000, 32000}
)

// ParseHeader decodes the four byte Layer III frame header at the start of
// b. Free format, reserved fields and other layers are rejected.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < 4 || b[0] != 0xff || b[1]&0xe0 != 0xe0 {
		return Header{}, false
	}

	version := Version(b[1] >> 3 & 0x03)
	layer := b[1] >> 1 & 0x03
	bitrateIdx := b[2] >> 4
	rateIdx := b[2] >> 2 & 0x03
	if version == 1 || layer != 0x01 || bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 || b[3]&0x03 == 2 {
		return Header{}, false
	}

	h := Header{
		Version:    version,
		SampleRate: rates[rateIdx],
		Channels:   2,
		Padding:    b[2]&0x02 != 0,
	}
	switch version {
	case MPEG1:
		h.Bitrate = bitratesV1[bitrateIdx] * 1000
	case MPEG2:
		h.Bitrate = bitratesV2[bitrateIdx] * 1000
		h.SampleRate /= 2
	default:
		h.Bitrate = bitratesV2[bitrateIdx] * 1000
		h.SampleRate /= 4
	}
	if b[3]>>6 == 0x03 {
		h.Channels = 1
	}
	return h, true
}

// Size is the length of the frame in bytes, header included.
func (h Header) Size() int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	if h.Version == MPEG1 {
		return 144*h.Bitrate/h.SampleRate + pad
	}
	return 72*h.Bitrate/h.SampleRate + pad
}

// Samples is the number of frames of PCM one MP3 frame decodes to.
func (h Header) Samples() int {
	if h.Version == MPEG1 {
		return 1152
	}
	return 576
}

// TagSize returns the length of an ID3v2 tag at the start of b, or 0 when
// b does not start with one.
func TagSize(b []byte) int {
	if len(b) < 10 || string(b[:3]) != "ID3" {
		return 0
	}
	size := int(b[6]&0x7f)<<21 | int(b[7]&0x7f)<<14 | int(b[8]&0x7f)<<7 | int(b[9]&0x7f)
	size += 10
	if b[5]&0x10 != 0 {
		size += 10 // footer
	}
	return size
}

// Stream summarises the frames of a complete MP3 byte stream.
type Stream struct {
	First  Header
	Frames int
	// Samples is the total PCM frame count of the complete MP3 frames.
	Samples int
	// Truncated is set when the last frame runs past the end of the data.
	Truncated bool
}

// Scan walks every frame header in data. Junk between frames is skipped
// and a trailing ID3v1 tag is ignored.
func Scan(data []byte) (Stream, error) {
	var s Stream

	pos := min(TagSize(data), len(data))
	for pos+4 <= len(data) {
		h, ok := ParseHeader(data[pos:])
		if !ok {
			if len(data)-pos == 128 && string(data[pos:pos+3]) == "TAG" {
				break
			}
			pos++
			continue
		}
		if s.Frames == 0 {
			s.First = h
		}
		if pos+h.Size() > len(data) {
			s.Truncated = true
			break
		}
		s.Frames++
		s.Samples += h.Samples()
		pos += h.Size()
	}

	if s.Frames == 0 && !s.Truncated {
		return s, ErrNoFrames
	}
	return s, nil
}
