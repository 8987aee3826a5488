// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes and encodes Ogg Vorbis streams.
//
// Decoding uses github.com/jfreymuth/oggvorbis. Encoding is done by a
// compact Vorbis I encoder in this package, since no pure Go encoder exists.
//
// # Decoding
//
// The Decoder returns an audio.Backend delivering float32 packets:
//
//	b, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	defer b.Close()
//
//	for {
//	    p, err := b.NextPacket()
//	    if err == io.EOF {
//	        break
//	    }
//	    // p.Floats holds p.Frames interleaved frames
//	}
//
// A stream that stops without an end-of-stream page reports ErrMissingEOS,
// a page cut short reports io.ErrUnexpectedEOF.
//
// # Encoding
//
// Encoder writes a complete Ogg stream at a target average bitrate:
//
//	enc, err := vorbis.NewEncoder(w, 2, 44100, 128000,
//	    vorbis.WithComments("TITLE=Demo"))
//	if err != nil {
//	    // Handle error
//	}
//	enc.Write(interleaved) // any number of calls
//	enc.Close()
//
// Encode does the same for an audio.Source.
//
// # Stream Layout
//
// The encoder uses a single long block size of 2048 samples, a flat floor 1
// curve per channel and block, and a type 1 residue coded with fixed
// codebooks. The floor amplitude is chosen per block by a rate controller
// with a bounded bit reservoir, so the average bitrate follows the request
// while loud blocks may borrow from quiet ones. There is no psychoacoustic
// model; quantisation noise is spread evenly over the spectrum.
//
// At low bitrates even the coarsest amplitude can exceed a block's budget.
// The block is then band limited: only the lowest residue partitions that
// fit are coded and the rest decode as silence.
//
// The output is deterministic: the same samples, bitrate and options always
// produce the same bytes.
//
// # Limits
//
//   - 1 to MaxChannels channels, no channel coupling
//   - sample rates from MinSampleRate to MaxSampleRate
//   - bitrates from MinBitrate to MaxBitrate bits per second
package vorbis
