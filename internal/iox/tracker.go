// SPDX-License-Identifier: EPL-2.0

package iox

import "io"

// Tracker counts the bytes read from a stream and remembers the first
// error other than io.EOF, so callers can tell a failing source apart from
// a malformed one.
type Tracker struct {
	r   io.Reader
	pos int64
	err error
}

// Track wraps r. The result implements io.Seeker exactly when r does, so
// decoders that look for a seekable input still find one.
func Track(r io.Reader) (io.Reader, *Tracker) {
	t := &Tracker{r: r}
	if s, ok := r.(io.Seeker); ok {
		return &seekTracker{Tracker: t, s: s}, t
	}
	return t, t
}

// Offset is the current position relative to where tracking started,
// or the number of bytes read for streams that cannot seek.
func (t *Tracker) Offset() int64 { return t.pos }

// Err is the first read or seek failure of the underlying stream.
func (t *Tracker) Err() error { return t.err }

func (t *Tracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.pos += int64(n)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

type seekTracker struct {
	*Tracker
	s     io.Seeker
	start int64
	init  bool
}

func (s *seekTracker) Seek(offset int64, whence int) (int64, error) {
	if !s.init {
		start, err := s.s.Seek(0, io.SeekCurrent)
		if err != nil {
			s.record(err)
			return 0, err
		}
		s.start, s.init = start-s.pos, true
	}
	abs, err := s.s.Seek(offset, whence)
	if err != nil {
		s.record(err)
		return abs, err
	}
	s.pos = abs - s.start
	return abs, nil
}

func (s *seekTracker) record(err error) {
	if s.err == nil {
		s.err = err
	}
}
