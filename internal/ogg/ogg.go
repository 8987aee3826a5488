// SPDX-License-Identifier: EPL-2.0

// Package ogg packs the packets of one logical stream into Ogg pages and
// reads them back, on top of github.com/SaurusXI/ogg.
package ogg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xogg "github.com/SaurusXI/ogg"
)

// Page header flags.
const (
	BOS = xogg.BOS
	EOS = xogg.EOS
)

const (
	maxSegments = 255
	// pages are flushed once they carry this many payload bytes
	pageTarget = 4096
)

var (
	ErrStreamEnded    = errors.New("ogg: write after end of stream")
	ErrPacketTooLarge = errors.New("ogg: packet does not fit on one page")
	ErrEmptyPayload   = errors.New("ogg: first page holds no packet")
)

// Page is one decoded Ogg page.
type Page = xogg.Page

// FirstPacket returns the first packet of the page at the start of b.
func FirstPacket(b []byte) ([]byte, error) {
	page, _, err := xogg.NewDecoder(bytes.NewReader(b)).Decode()
	if err != nil {
		return nil, fmt.Errorf("ogg: read first page: %w", err)
	}
	if len(page.Packets) == 0 {
		return nil, ErrEmptyPayload
	}
	return page.Packets[0], nil
}

// ReadPages decodes every page of r until io.EOF.
func ReadPages(r io.Reader) ([]Page, error) {
	dec := xogg.NewDecoder(r)
	var pages []Page
	for {
		page, _, err := dec.Decode()
		if err == io.EOF {
			return pages, nil
		}
		if err != nil {
			return pages, fmt.Errorf("ogg: read page %d: %w", len(pages), err)
		}
		pages = append(pages, page)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer buffers whole packets and hands them to the page encoder a page
// at a time. Packets never span pages.
type Writer struct {
	enc *xogg.Encoder
	out *countingWriter

	packets [][]byte
	segs    int
	size    int
	granule int64
	started bool
	ended   bool
}

func NewWriter(w io.Writer, serial uint32) *Writer {
	out := &countingWriter{w: w}
	return &Writer{enc: xogg.NewEncoder(serial, out), out: out}
}

// Written returns the number of bytes emitted so far.
func (w *Writer) Written() int64 { return w.out.n }

// WritePacket appends one packet ending at granule. With eos set the
// packet is flushed on a final page marked end of stream.
func (w *Writer) WritePacket(p []byte, granule int64, eos bool) error {
	if w.ended {
		return ErrStreamEnded
	}
	segs := len(p)/255 + 1
	if segs > maxSegments {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(p))
	}
	if w.segs+segs > maxSegments {
		if err := w.flush(false); err != nil {
			return err
		}
	}

	w.packets = append(w.packets, bytes.Clone(p))
	w.segs += segs
	w.size += len(p)
	w.granule = granule

	if eos {
		w.ended = true
		return w.flush(true)
	}
	if w.size >= pageTarget {
		return w.flush(false)
	}
	return nil
}

// Flush emits buffered packets on a page of their own. Vorbis needs this
// after the identification header and after the setup header.
func (w *Writer) Flush() error {
	if len(w.packets) == 0 {
		return nil
	}
	return w.flush(false)
}

func (w *Writer) flush(eos bool) error {
	var err error
	switch {
	case !w.started:
		err = w.enc.EncodeBOS(w.granule, w.packets)
		if err == nil && eos {
			err = w.enc.EncodeEOS(w.granule, nil)
		}
		w.started = true
	case eos:
		err = w.enc.EncodeEOS(w.granule, w.packets)
	default:
		err = w.enc.Encode(w.granule, w.packets)
	}
	if err != nil {
		return fmt.Errorf("ogg: write page: %w", err)
	}

	w.packets = w.packets[:0]
	w.segs, w.size = 0, 0
	return nil
}
