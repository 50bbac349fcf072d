// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
	"io"
)

// WriterConfig defines the parameters of a writer for the classic .lzma
// format.
type WriterConfig struct {
	EncoderConfig

	// SizeInHeader requests that Size is written into the header.
	// Otherwise the size is unknown and the end marker is written.
	SizeInHeader bool
	Size         int64
}

// Verify checks the configuration.
func (c *WriterConfig) Verify() error {
	if c == nil {
		return errors.New("lzma: writer configuration is nil")
	}
	if c.SizeInHeader && c.Size < 0 {
		return fmt.Errorf("lzma: negative size %d: %w", c.Size, ErrParam)
	}
	return c.EncoderConfig.Verify()
}

// Writer compresses data into the classic .lzma format. The
// arithmetic coder doesn't support flushing; the writer must be closed to
// complete the stream.
type Writer struct {
	e *Encoder
	h header
	n int64
}

// NewWriter creates a writer using the default compression level. The
// size is not stored in the header.
func NewWriter(w io.Writer) (*Writer, error) {
	cfg := WriterConfig{EncoderConfig: EncoderConfig{Level: DefaultLevel}}
	return cfg.NewWriter(w)
}

// NewWriter creates a writer and writes the header.
func (c WriterConfig) NewWriter(w io.Writer) (lw *Writer, err error) {
	if !c.SizeInHeader {
		c.EncoderConfig.EOSMarker = true
	} else if c.EncoderConfig.ReduceSize == 0 {
		c.EncoderConfig.ReduceSize = c.Size
	}
	if err = c.Verify(); err != nil {
		return nil, err
	}
	e, err := NewEncoder(w, c.EncoderConfig)
	if err != nil {
		return nil, err
	}
	lw = &Writer{e: e, h: header{props: e.Properties(), size: -1}}
	if c.SizeInHeader {
		lw.h.size = c.Size
	}
	data, err := lw.h.marshalBinary()
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(data); err != nil {
		return nil, err
	}
	return lw, nil
}

// Properties returns the properties written into the header.
func (lw *Writer) Properties() Properties { return lw.h.props }

// Write compresses the data in p.
func (lw *Writer) Write(p []byte) (n int, err error) {
	var rerr error
	if lw.h.size >= 0 {
		if r := lw.h.size - lw.n; int64(len(p)) > r {
			p = p[:r]
			rerr = fmt.Errorf("lzma: write exceeds size %d in header: %w",
				lw.h.size, ErrParam)
		}
	}
	n, err = lw.e.Write(p)
	lw.n += int64(n)
	if err != nil {
		return n, err
	}
	return n, rerr
}

// Close completes the stream. The underlying writer is not closed.
func (lw *Writer) Close() error {
	if lw.h.size >= 0 && lw.n != lw.h.size {
		return fmt.Errorf("lzma: wrote %d bytes; header size is %d: %w",
			lw.n, lw.h.size, ErrParam)
	}
	return lw.e.Close()
}
