// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "fmt"

// Allocator provides the large byte buffers of encoder and decoder: the
// input window of the encoder and the dictionary of the decoder. An
// allocator is only called by the session owning it. Alloc returns nil if
// the memory is not available.
type Allocator interface {
	Alloc(n int) []byte
	Free(p []byte)
}

// heapAllocator uses the Go heap.
type heapAllocator struct{}

func (heapAllocator) Alloc(n int) []byte { return make([]byte, n) }

func (heapAllocator) Free(p []byte) {}

// DefaultAllocator allocates memory from the Go heap.
var DefaultAllocator Allocator = heapAllocator{}

// alloc calls a.Alloc and converts a failure into ErrMem.
func alloc(a Allocator, n int) ([]byte, error) {
	if a == nil {
		a = DefaultAllocator
	}
	if n < 0 {
		return nil, fmt.Errorf("lzma: negative buffer size %d: %w",
			n, ErrParam)
	}
	p := a.Alloc(n)
	if p == nil || len(p) < n {
		return nil, fmt.Errorf("lzma: can't allocate %d bytes: %w",
			n, ErrMem)
	}
	return p[:n], nil
}

// free returns the buffer to the allocator.
func free(a Allocator, p []byte) {
	if p == nil {
		return
	}
	if a == nil {
		a = DefaultAllocator
	}
	a.Free(p)
}
