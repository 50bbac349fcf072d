// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzma implements the LZMA compression algorithm for a single
// stream.
//
// The Encoder compresses into a raw stream and the Decoder decompresses
// it; both require the properties lc, lp, pb and the dictionary size,
// which are usually stored in a 5-byte header. The encoder supports a
// fast mode with a greedy parser and the hc4 match finder and a normal
// mode with an optimal parser and binary tree match finders.
//
// Reader and Writer support the classic .lzma file format, which adds the
// uncompressed size to the properties. Compress and Decompress provide
// one-call interfaces.
//
//	w, err := lzma.NewWriter(f)
//	r, err := lzma.NewReader(f)
//
// The errors returned wrap the sentinel errors ErrData, ErrMem,
// ErrUnsupported, ErrParam, ErrInputEOF, ErrOutputEOF and ErrProgress.
package lzma
