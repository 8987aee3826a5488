// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audcodec/sample"
)

// BackendSource exposes a Backend as a float32 Source so the stream
// transforms in this package can run over any decoder.
type BackendSource struct {
	b       Backend
	format  sample.Format
	pending []float32
	packets int
	frames  int64
	eof     bool
}

func NewBackendSource(b Backend) *BackendSource {
	return &BackendSource{b: b, format: b.Format()}
}

func (s *BackendSource) SampleRate() int { return s.b.SampleRate() }
func (s *BackendSource) Channels() int   { return s.b.Channels() }
func (s *BackendSource) BufSize() int    { return 4096 }

// Packets returns how many packets have been pulled from the back-end.
func (s *BackendSource) Packets() int { return s.packets }

// Frames returns how many frames those packets carried.
func (s *BackendSource) Frames() int64 { return s.frames }

func (s *BackendSource) Close() error {
	if err := s.b.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *BackendSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	for len(s.pending) == 0 {
		if s.eof {
			return 0, io.EOF
		}
		p, err := s.b.NextPacket()
		if err == io.EOF {
			s.eof = true
			continue
		}
		if err != nil {
			return 0, err
		}
		s.packets++
		s.frames += int64(p.Frames)
		s.pending = s.convert(p)
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *BackendSource) convert(p Packet) []float32 {
	out := make([]float32, p.Len())
	if p.Floats != nil {
		copy(out, p.Floats)
		return out
	}
	sample.FromInts(out, p.Ints, s.format.Bits)
	return out
}
