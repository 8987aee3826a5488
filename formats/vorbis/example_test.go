// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/formats/vorbis"
	"github.com/ik5/audcodec/internal/audiotest"
)

// Example encodes one second of a stereo tone and decodes it again.
func Example() {
	const rate = 22050

	samples := make([]float32, 2*rate)
	for i := range rate {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/rate))
		samples[2*i], samples[2*i+1] = v, v
	}

	var ogg bytes.Buffer
	enc, err := vorbis.NewEncoder(&ogg, 2, rate, 96000, vorbis.WithComments("TITLE=A4"))
	if err != nil {
		log.Fatal(err)
	}
	if err := enc.Write(samples); err != nil {
		log.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		log.Fatal(err)
	}

	b, err := vorbis.Decoder{}.Decode(&ogg)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	frames := 0
	for {
		p, err := b.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		frames += p.Frames
	}

	fmt.Printf("Sample Rate: %d Hz\n", b.SampleRate())
	fmt.Printf("Channels: %d\n", b.Channels())
	fmt.Printf("Frames: %d\n", frames)

	// Output:
	// Sample Rate: 22050 Hz
	// Channels: 2
	// Frames: 22050
}

// ExampleEncode encodes an audio.Source after mixing it down to mono.
func ExampleEncode() {
	src := audiotest.NewSineSource(16000, 2, 16000, 300)
	mono := audio.NewMonoMixer(src)

	var out bytes.Buffer
	if err := vorbis.Encode(context.Background(), &out, mono, 32000); err != nil {
		log.Fatal(err)
	}

	fmt.Println(bytes.HasPrefix(out.Bytes(), []byte("OggS")))
	// Output: true
}

// ExampleDecoder_Decode_errorHandling shows error handling for invalid Ogg Vorbis files.
func ExampleDecoder_Decode_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(bytes.NewReader([]byte("not an ogg file")))
	if err != nil {
		fmt.Println("rejected")
		return
	}

	fmt.Println("Ogg Vorbis decoded successfully")
	// Output: rejected
}
