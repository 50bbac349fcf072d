// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/lzmacodec/xlog"
)

// readerBufferSize is the size of the input buffer of the reader.
const readerBufferSize = 1 << 15

// ReaderConfig provides the parameters of a reader for the classic .lzma
// format.
type ReaderConfig struct {
	Allocator Allocator
	Logger    xlog.Logger
}

// Reader decompresses a classic .lzma file.
type Reader struct {
	r   io.Reader
	d   *Decoder
	h   header
	buf []byte
	in  []byte
	// the underlying reader returned io.EOF
	eof bool
	err error
}

// NewReader creates a reader using the default configuration.
func NewReader(r io.Reader) (*Reader, error) {
	return ReaderConfig{}.NewReader(r)
}

// NewReader reads the header and creates the reader.
func (c ReaderConfig) NewReader(r io.Reader) (lr *Reader, err error) {
	data := make([]byte, HeaderLen)
	if _, err = io.ReadFull(r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("lzma: header truncated: %w",
				ErrInputEOF)
		}
		return nil, err
	}
	lr = &Reader{r: r, buf: make([]byte, readerBufferSize)}
	if err = lr.h.unmarshalBinary(data); err != nil {
		return nil, err
	}
	lr.d, err = NewDecoder(DecoderConfig{
		Properties: lr.h.props,
		Allocator:  c.Allocator,
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, err
	}
	return lr, nil
}

// Properties returns the properties of the stream.
func (lr *Reader) Properties() Properties { return lr.h.props }

// Size returns the uncompressed size stored in the header or -1.
func (lr *Reader) Size() int64 { return lr.h.size }

// fill reads new input if the input buffer is empty.
func (lr *Reader) fill() error {
	if len(lr.in) > 0 || lr.eof {
		return nil
	}
	n, err := lr.r.Read(lr.buf)
	lr.in = lr.buf[:n]
	if err != nil {
		if err != io.EOF {
			return err
		}
		lr.eof = true
	}
	return nil
}

// Read decompresses data into p.
func (lr *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 && lr.err == nil {
		return 0, nil
	}
	for lr.err == nil {
		if err = lr.fill(); err != nil {
			lr.err = err
			break
		}
		q := p[n:]
		finish := FinishAny
		if lr.h.size >= 0 {
			r := lr.h.size - lr.d.Uncompressed()
			if int64(len(q)) >= r {
				q = q[:r]
				finish = FinishEnd
			}
		}
		k, m, status, err := lr.d.Decode(q, lr.in, finish)
		n += k
		lr.in = lr.in[m:]
		if err != nil {
			lr.err = err
			break
		}
		switch status {
		case StatusFinishedWithMark:
			lr.err = lr.checkSize()
		case StatusMaybeFinishedWithoutMark:
			if finish == FinishEnd {
				lr.err = io.EOF
			}
		case StatusNeedsMoreInput:
			if lr.eof && len(lr.in) == 0 {
				lr.err = fmt.Errorf("lzma: stream truncated: %w",
					ErrInputEOF)
			}
		}
		if n == len(p) && lr.err == nil {
			return n, nil
		}
	}
	if n > 0 && lr.err == io.EOF {
		return n, nil
	}
	return n, lr.err
}

// checkSize verifies the size at the end marker.
func (lr *Reader) checkSize() error {
	if lr.h.size >= 0 && lr.d.Uncompressed() != lr.h.size {
		return fmt.Errorf("lzma: end marker after %d bytes; header"+
			" size is %d: %w", lr.d.Uncompressed(), lr.h.size, ErrData)
	}
	return io.EOF
}

// errReaderClosed is returned after Close.
var errReaderClosed = errors.New("lzma: reader closed")

// Close releases the dictionary. The underlying reader is not closed.
func (lr *Reader) Close() error {
	if lr.d != nil {
		lr.d.Release()
		lr.d = nil
	}
	if lr.err == nil || lr.err == io.EOF {
		lr.err = errReaderClosed
	}
	return nil
}
