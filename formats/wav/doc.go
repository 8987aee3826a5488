// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE audio using github.com/go-audio/wav.
//
// # Decoding
//
// Decoder returns an audio.Backend that hands out the samples in their
// native width:
//
//   - integer PCM of 8, 16, 24 or 32 bits (8-bit is re-centred to signed)
//   - 32-bit IEEE float
//   - G.711 A-law and μ-law, expanded to 16-bit
//
// WAVE_FORMAT_EXTENSIBLE files are read as integer PCM. The data chunk's
// declared size is authoritative: a file that ends early yields
// ErrTruncated after the last complete frame.
//
//	b, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // ErrNotWavFile, ErrUnsupportedEncoding, ...
//	}
//	defer b.Close()
//	for {
//	    p, err := b.NextPacket()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// go-audio requires an io.ReadSeeker; other readers are buffered in memory.
//
// # Writing
//
// PCMWriter streams float32 samples into an integer PCM file on an
// io.WriteSeeker, patching the chunk sizes on Close. WriteWAV16 writes a
// complete 16-bit file to any io.Writer in one pass.
package wav
