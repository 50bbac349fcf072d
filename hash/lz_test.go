// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package hash

import "testing"

func TestMainMask(t *testing.T) {
	tests := []struct {
		numBytes int
		dictSize uint32
		mask     uint32
	}{
		{2, 1 << 20, 0xffff},
		{4, 1 << 12, 0xffff},
		{4, 1 << 20, 1<<19 - 1},
		{4, 1 << 26, 1<<24 - 1},
		{3, 1 << 26, 1<<24 - 1},
		{4, 3 << 20, 1<<21 - 1},
	}
	for _, c := range tests {
		m := MainMask(c.numBytes, c.dictSize)
		if m != c.mask {
			t.Errorf("MainMask(%d, %d) = %#x; want %#x",
				c.numBytes, c.dictSize, m, c.mask)
		}
	}
}

func TestHash4(t *testing.T) {
	h := NewLZ(4, 1<<16)
	p := []byte("abcdabcd")
	a2, a3, a4 := h.Hash4(p)
	b2, b3, b4 := h.Hash4(p[4:])
	if a2 != b2 || a3 != b3 || a4 != b4 {
		t.Fatalf("equal sequences have different hashes")
	}
	if a2 >= Hash2Size || a3 >= Hash3Size || a4 > h.Mask() {
		t.Fatalf("hash values out of range: %d %d %d", a2, a3, a4)
	}
	c2, c3 := h.Hash3(p)
	if c2 != a2 {
		t.Errorf("Hash3 h2 %d; Hash4 h2 %d", c2, a2)
	}
	if c3 > h.Mask() {
		t.Errorf("Hash3 main hash %d exceeds mask %#x", c3, h.Mask())
	}
}

func TestHash2(t *testing.T) {
	h := NewLZ(2, 1<<16)
	if v := h.Hash2([]byte{1, 2}); v != 0x0201 {
		t.Fatalf("Hash2 returned %#x; want %#x", v, 0x0201)
	}
}

func TestNewLZPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewLZ(5, ...) didn't panic")
		}
	}()
	NewLZ(5, 1<<16)
}
