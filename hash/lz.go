// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package hash

import "hash/crc32"

// Sizes of the hash tables for the two- and three-byte hashes used by the
// three- and four-byte match finders.
const (
	Hash2Size = 1 << 10
	Hash3Size = 1 << 16
)

// LZ computes the hashes for the match finders. The zero value is not
// usable; use NewLZ.
type LZ struct {
	crc  *crc32.Table
	mask uint32
}

// NewLZ creates the hashes for a match finder using numBytes bytes and a
// dictionary of the given size. The number of bytes must be in the range
// [2,4].
func NewLZ(numBytes int, dictSize uint32) *LZ {
	if !(2 <= numBytes && numBytes <= 4) {
		panic("hash: numBytes out of range [2,4]")
	}
	return &LZ{
		crc:  crc32.MakeTable(crc32.IEEE),
		mask: MainMask(numBytes, dictSize),
	}
}

// MainMask returns the mask for the main hash. The size of the main hash
// table is the mask plus one.
func MainMask(numBytes int, dictSize uint32) uint32 {
	if numBytes == 2 {
		return 1<<16 - 1
	}
	hs := dictSize - 1
	hs |= hs >> 1
	hs |= hs >> 2
	hs |= hs >> 4
	hs |= hs >> 8
	hs >>= 1
	hs |= 0xffff
	if hs > 1<<24 {
		if numBytes == 3 {
			hs = 1<<24 - 1
		} else {
			hs >>= 1
		}
	}
	return hs
}

// Mask returns the mask of the main hash.
func (h *LZ) Mask() uint32 { return h.mask }

// Hash2 returns the hash of the two bytes at the start of p.
func (h *LZ) Hash2(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8
}

// Hash3 returns the two-byte hash and the main hash for the three bytes at
// the start of p.
func (h *LZ) Hash3(p []byte) (h2, hv uint32) {
	_ = p[2]
	t := h.crc[p[0]] ^ uint32(p[1])
	h2 = t & (Hash2Size - 1)
	hv = (t ^ uint32(p[2])<<8) & h.mask
	return h2, hv
}

// Hash4 returns the two- and three-byte hashes and the main hash of the
// four bytes at the start of p.
func (h *LZ) Hash4(p []byte) (h2, h3, hv uint32) {
	_ = p[3]
	t := h.crc[p[0]] ^ uint32(p[1])
	h2 = t & (Hash2Size - 1)
	t ^= uint32(p[2]) << 8
	h3 = t & (Hash3Size - 1)
	hv = (t ^ h.crc[p[3]]<<5) & h.mask
	return h2, h3, hv
}
