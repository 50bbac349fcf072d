// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// window holds the input data of the encoder. The positions are absolute
// positions in the 32-bit space of the match finder. The window keeps
// keepBefore bytes in front of the current position, so that all matches
// and the decisions of the optimal parser can still be checked. New data
// is appended at the end; if the buffer is full, the data before
// pos-keepBefore is discarded by moving the remaining bytes to the front.
type window struct {
	buf []byte
	// absolute position of buf[0]
	base uint32
	// current position
	pos uint32
	// end of the data written into the buffer
	end uint32

	keepBefore int
	eof        bool
}

// init initializes the window for the buffer and the given start position.
func (w *window) init(buf []byte, start uint32, keepBefore int) {
	*w = window{
		buf:        buf,
		base:       start,
		pos:        start,
		end:        start,
		keepBefore: keepBefore,
	}
}

// index returns the index of position p in the buffer.
func (w *window) index(p uint32) int { return int(p - w.base) }

// avail returns the number of bytes available at the current position.
func (w *window) avail() int { return int(w.end - w.pos) }

// moveBlock discards the bytes that are not needed anymore.
func (w *window) moveBlock() {
	off := w.index(w.pos) - w.keepBefore
	if off <= 0 {
		return
	}
	copy(w.buf, w.buf[off:w.index(w.end)])
	w.base += uint32(off)
}

// write appends data to the window and returns the number of bytes
// written.
func (w *window) write(p []byte) int {
	if len(p) == 0 {
		return 0
	}
	n := len(w.buf) - w.index(w.end)
	if n < len(p) {
		w.moveBlock()
	}
	i := w.index(w.end)
	n = copy(w.buf[i:], p)
	w.end += uint32(n)
	return n
}

// writable returns the free part of the buffer after moving the block.
// The data written into the slice must be committed with commit.
func (w *window) writable() []byte {
	if len(w.buf)-w.index(w.end) < len(w.buf)/8 {
		w.moveBlock()
	}
	return w.buf[w.index(w.end):]
}

// commit appends n bytes written into the slice returned by writable.
func (w *window) commit(n int) {
	w.end += uint32(n)
}

// data returns the bytes from the current position to the end of the
// data.
func (w *window) data() []byte {
	return w.buf[w.index(w.pos):w.index(w.end)]
}

// matchLen returns the length of the match starting at index i of the
// buffer with the bytes dist+1 positions before. The length is limited by
// limit and the end of the data.
func (w *window) matchLen(i int, dist uint32, limit int) int {
	if k := w.index(w.end) - i; limit > k {
		limit = k
	}
	if limit <= 0 {
		return 0
	}
	p := w.buf[i : i+limit]
	q := w.buf[i-int(dist)-1:]
	n := 0
	for n < len(p) && p[n] == q[n] {
		n++
	}
	return n
}
