// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// ringIndex addresses a byte in the ring buffer. Valid values are in the
// range [0,len(data)).
type ringIndex int

// ring provides a circular buffer of bytes. The buffer keeps the last
// len(data) bytes written to it.
type ring struct {
	data []byte
	// next position to write
	head ringIndex
	// total number of bytes written
	n int64
}

// init initializes the ring buffer with the slice provided.
func (r *ring) init(data []byte) {
	*r = ring{data: data}
}

// reset clears the buffer without releasing the memory.
func (r *ring) reset() {
	r.head = 0
	r.n = 0
}

// add adds n to the index i and wraps the result.
func (r *ring) add(i ringIndex, n int) ringIndex {
	// subtraction of len(r.data) prevents overflow
	j := int(i) + n - len(r.data)
	if j < 0 {
		j += len(r.data)
	}
	return ringIndex(j)
}

// back returns the index of the byte that lies dist+1 bytes behind the head.
func (r *ring) back(dist uint32) ringIndex {
	j := int(r.head) - int(dist) - 1
	if j < 0 {
		j += len(r.data)
	}
	return ringIndex(j)
}

// span returns the n bytes starting at index i. The bytes are returned in
// two slices, the second is only non-empty if the range wraps around the
// end of the buffer.
func (r *ring) span(i ringIndex, n int) (a, b []byte) {
	k := len(r.data) - int(i)
	if n <= k {
		return r.data[i : int(i)+n], nil
	}
	return r.data[i:], r.data[:n-k]
}

// len returns the number of valid bytes in the buffer.
func (r *ring) len() int {
	if r.n >= int64(len(r.data)) {
		return len(r.data)
	}
	return int(r.n)
}

// put appends a single byte.
func (r *ring) put(c byte) {
	r.data[r.head] = c
	r.head = r.add(r.head, 1)
	r.n++
}

// byteAt returns the byte dist+1 positions behind the head. If no such
// byte has been written the zero byte is returned.
func (r *ring) byteAt(dist uint32) byte {
	if int64(dist) >= r.n {
		return 0
	}
	return r.data[r.back(dist)]
}

// copyMatch appends n bytes copied from dist+1 positions behind the head
// and stores a copy of them in p, which must have at least length n. The
// caller must ensure that dist is less than r.len().
func (r *ring) copyMatch(p []byte, dist uint32, n int) {
	p = p[:n]
	src := r.back(dist)
	for len(p) > 0 {
		// chunk must not overlap the head and must not wrap
		k := len(p)
		if d := int(dist) + 1; d < k {
			k = d
		}
		a, _ := r.span(src, k)
		w, _ := r.span(r.head, len(a))
		k = copy(w, a)
		copy(p, w)
		p = p[k:]
		src = r.add(src, k)
		r.head = r.add(r.head, k)
		r.n += int64(k)
	}
}
