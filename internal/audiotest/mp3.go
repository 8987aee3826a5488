// SPDX-License-Identifier: EPL-2.0

package audiotest

// MP3FrameSize is the length of the frames MP3Silence writes.
const MP3FrameSize = 417

// MP3Silence builds MPEG-1 Layer III frames at 44.1 kHz and 128 kbps.
// Their side information is all zero, so no spectral data is coded and
// each frame decodes to 1152 frames of silence.
func MP3Silence(frames int, mono bool) []byte {
	mode := byte(0x00)
	if mono {
		mode = 0xc0
	}

	out := make([]byte, frames*MP3FrameSize)
	for i := range frames {
		copy(out[i*MP3FrameSize:], []byte{0xff, 0xfb, 0x90, mode})
	}
	return out
}
