// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"fmt"
	"io"
)

// limitedBuffer is a writer into a slice of fixed capacity. It returns
// ErrOutputEOF if the data doesn't fit.
type limitedBuffer struct {
	p []byte
	n int
}

func (b *limitedBuffer) Write(p []byte) (n int, err error) {
	n = copy(b.p[b.n:], p)
	b.n += n
	if n < len(p) {
		return n, fmt.Errorf("lzma: compressed data exceeds %d bytes: %w",
			len(b.p), ErrOutputEOF)
	}
	return n, nil
}

// compress runs an encoder session over src writing to w.
func compress(w io.Writer, src []byte, cfg EncoderConfig,
	progress ProgressFunc) (Properties, error) {
	if cfg.ReduceSize == 0 {
		cfg.ReduceSize = int64(len(src))
		if cfg.ReduceSize == 0 {
			cfg.ReduceSize = 1
		}
	}
	e, err := NewEncoder(w, cfg)
	if err != nil {
		return Properties{}, err
	}
	if _, err = e.Encode(bytes.NewReader(src), progress); err != nil {
		return Properties{}, err
	}
	return e.Properties(), nil
}

// Compress compresses src in a single call. It returns the compressed
// stream without header and the properties of the stream. A zero
// ReduceSize is replaced by the length of src.
func Compress(src []byte, cfg EncoderConfig, progress ProgressFunc) (
	compressed []byte, props Properties, err error) {
	var buf bytes.Buffer
	if props, err = compress(&buf, src, cfg, progress); err != nil {
		return nil, Properties{}, err
	}
	return buf.Bytes(), props, nil
}

// CompressTo compresses src into dst. It returns ErrOutputEOF if the
// compressed stream doesn't fit into dst.
func CompressTo(dst, src []byte, cfg EncoderConfig, progress ProgressFunc) (
	n int, props Properties, err error) {
	b := &limitedBuffer{p: dst}
	props, err = compress(b, src, cfg, progress)
	return b.n, props, err
}

// Decompress decompresses the raw stream src with the given properties
// into dst. It returns the number of bytes written and consumed. If the
// input ends before the stream is complete ErrInputEOF is returned.
func Decompress(dst, src []byte, props Properties, finish FinishMode) (
	nDst, nSrc int, status Status, err error) {
	d, err := NewDecoder(DecoderConfig{Properties: props})
	if err != nil {
		return 0, 0, StatusNotSpecified, err
	}
	defer d.Release()
	nDst, nSrc, status, err = d.Decode(dst, src, finish)
	if err == nil && status == StatusNeedsMoreInput {
		err = fmt.Errorf("lzma: compressed data truncated: %w",
			ErrInputEOF)
	}
	return nDst, nSrc, status, err
}
