// SPDX-License-Identifier: EPL-2.0

package iox

import (
	"errors"
	"fmt"
	"io"
)

var ErrNegativePosition = errors.New("iox: negative position")

// Buffer is an in-memory io.ReadWriteSeeker. Writes past the end grow the
// buffer; writes before it overwrite in place.
type Buffer struct {
	data   []byte
	offset int64
}

// NewBuffer returns a Buffer positioned at the start of data. The buffer
// takes ownership of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// ReadSeeker returns r itself when it can seek, otherwise a Buffer holding
// everything left in r.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return NewBuffer(data), nil
}

// Bytes returns the buffer contents without copying.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Read(p []byte) (int, error) {
	if b.offset >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.offset:])
	b.offset += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.offset + int64(len(p))
	if end > int64(len(b.data)) {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.data))))
			copy(grown, b.data)
			b.data = grown
		} else {
			old := int64(len(b.data))
			b.data = b.data[:end]
			if b.offset > old {
				clear(b.data[old:b.offset]) // gap left by seeking past the end
			}
		}
	}
	copy(b.data[b.offset:], p)
	b.offset = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = b.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("iox: invalid whence: %d", whence)
	}

	if newOffset < 0 {
		return 0, ErrNegativePosition
	}

	b.offset = newOffset
	return newOffset, nil
}
