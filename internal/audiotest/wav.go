// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audcodec/internal/iox"
)

// WAVE format tags accepted by WAV.
const (
	WAVPCM   = 1
	WAVFloat = 3
	WAVALaw  = 6
	WAVMuLaw = 7
)

// WAV builds a RIFF/WAVE file with go-audio's encoder. data holds the raw
// sample words: offset binary for 8-bit PCM, G.711 code bytes for A-law
// and μ-law, IEEE bit patterns for float (see FloatBits).
func WAV(rate, channels, bits, tag int, data []int) []byte {
	buf := iox.NewBuffer(nil)
	enc := wav.NewEncoder(buf, rate, bits, channels, tag)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(ib); err != nil {
		panic(err)
	}
	if err := enc.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WAV16 builds a 16-bit PCM WAV file.
func WAV16(rate, channels int, samples []int16) []byte {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return WAV(rate, channels, 16, WAVPCM, data)
}

// FloatBits returns the IEEE 754 bit patterns of f as sample words for a
// 32-bit float WAV.
func FloatBits(f []float32) []int {
	out := make([]int, len(f))
	for i, v := range f {
		out[i] = int(int32(math.Float32bits(v)))
	}
	return out
}
