// SPDX-License-Identifier: EPL-2.0

package flac_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ik5/audcodec/formats/flac"
	"github.com/ik5/audcodec/internal/audiotest"
)

// Example decodes a FLAC stream block by block.
func Example() {
	samples := make([]int32, 2*100)
	data := audiotest.FLAC(44100, 2, 16, 64, samples, 100)

	b, err := flac.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	fmt.Printf("Sample Rate: %d Hz\n", b.SampleRate())
	fmt.Printf("Channels: %d\n", b.Channels())
	fmt.Printf("Format: %v\n", b.Format())

	for {
		p, err := b.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("block of %d frames\n", p.Frames)
	}

	// Output:
	// Sample Rate: 44100 Hz
	// Channels: 2
	// Format: s16
	// block of 64 frames
	// block of 36 frames
}

// ExampleDecoder_Decode_truncated shows how a short stream is reported.
func ExampleDecoder_Decode_truncated() {
	data := audiotest.FLAC(8000, 1, 16, 32, make([]int32, 32), 64)

	b, err := flac.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	for {
		if _, err = b.NextPacket(); err != nil {
			break
		}
	}
	fmt.Println(errors.Is(err, flac.ErrTruncated))

	// Output: true
}
