// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"fmt"

	"github.com/ulikunitz/lzmacodec/hash"
)

// MatchFinder selects the algorithm used to find matches.
type MatchFinder int

// Supported match finders. The zero value selects the match finder of the
// compression level.
const (
	// binary tree with two-byte hash
	BT2 MatchFinder = iota + 1
	// binary tree with three-byte hash
	BT3
	// binary tree with four-byte hash
	BT4
	// hash chain with four-byte hash
	HC4
)

var matchFinderNames = [...]string{
	BT2: "bt2",
	BT3: "bt3",
	BT4: "bt4",
	HC4: "hc4",
}

// String returns the usual name of the match finder.
func (mf MatchFinder) String() string {
	if !(BT2 <= mf && mf <= HC4) {
		return fmt.Sprintf("MatchFinder(%d)", int(mf))
	}
	return matchFinderNames[mf]
}

// numHashBytes returns the number of bytes hashed by the match finder.
func (mf MatchFinder) numHashBytes() int {
	switch mf {
	case BT2:
		return 2
	case BT3:
		return 3
	}
	return 4
}

// match describes a match found by the match finder. The distance is zero
// based.
type match struct {
	n    uint32
	dist uint32
}

// emptyHash marks an empty entry in hash tables, chains and trees.
const emptyHash = 0

// maxNormLimit is the default position at which the match finder
// normalizes its position values.
const maxNormLimit = 1<<32 - 1

// matchFinder finds the matches for the current position of the window.
// All positions stored in the hash tables, the chain and the tree are
// absolute window positions; a position p is valid while
// pos-p < cyclicSize.
type matchFinder struct {
	window
	kind MatchFinder

	// maximum length of matches searched
	matchMaxLen int
	cutValue    uint32

	cyclicPos  uint32
	cyclicSize uint32

	lz *hash.LZ
	// hash tables: two-byte hash, three-byte hash, main hash
	hash []uint32
	fix3 uint32
	fix4 uint32

	tree  binTree
	chain []uint32

	normLimit uint32

	matches []match
}

// newMatchFinder creates a match finder. The buffer is used for the
// window, which keeps keepBefore bytes before the current position.
func newMatchFinder(kind MatchFinder, dictSize uint32, matchMaxLen int,
	cutValue uint32, buf []byte, keepBefore int) (mf *matchFinder, err error) {
	if !(BT2 <= kind && kind <= HC4) {
		return nil, fmt.Errorf("lzma: invalid match finder %v: %w",
			kind, ErrParam)
	}
	if !(minMatchLen <= matchMaxLen && matchMaxLen <= maxMatchLen) {
		return nil, fmt.Errorf("lzma: match length %d out of range: %w",
			matchMaxLen, ErrParam)
	}
	if cutValue == 0 {
		return nil, fmt.Errorf("lzma: cut value must be positive: %w",
			ErrParam)
	}
	nb := kind.numHashBytes()
	mf = &matchFinder{
		kind:        kind,
		matchMaxLen: matchMaxLen,
		cutValue:    cutValue,
		cyclicSize:  dictSize + 1,
		lz:          hash.NewLZ(nb, dictSize),
		normLimit:   maxNormLimit,
		matches:     make([]match, 0, maxMatchLen+1),
	}
	size := mf.lz.Mask() + 1
	switch nb {
	case 3:
		mf.fix3 = hash.Hash2Size
		size += hash.Hash2Size
	case 4:
		mf.fix3 = hash.Hash2Size
		mf.fix4 = hash.Hash2Size + hash.Hash3Size
		size += hash.Hash2Size + hash.Hash3Size
	}
	mf.hash = make([]uint32, size)
	if kind == HC4 {
		mf.chain = make([]uint32, mf.cyclicSize)
	} else {
		mf.tree.init(mf.cyclicSize)
	}
	mf.window.init(buf, mf.cyclicSize, keepBefore)
	return mf, nil
}

// minLen returns the number of bytes the match finder requires to insert
// a position.
func (mf *matchFinder) minLen() int {
	return mf.kind.numHashBytes()
}

// lenLimit returns the maximum length of a match at the current position.
func (mf *matchFinder) lenLimit() int {
	n := mf.avail()
	if n > mf.matchMaxLen {
		n = mf.matchMaxLen
	}
	return n
}

// movePos advances the current position.
func (mf *matchFinder) movePos() {
	mf.cyclicPos++
	if mf.cyclicPos == mf.cyclicSize {
		mf.cyclicPos = 0
	}
	mf.pos++
	if mf.pos == mf.normLimit {
		mf.normalize()
	}
}

// normalize subtracts a value from all positions so that the current
// position becomes cyclicSize again. Positions that become invalid are
// set to emptyHash.
func (mf *matchFinder) normalize() {
	sub := mf.pos - mf.cyclicSize
	normalizeValues(mf.hash, sub)
	normalizeValues(mf.chain, sub)
	mf.tree.normalize(sub)
	mf.pos -= sub
	mf.end -= sub
	mf.base -= sub
}

// normalizeValues reduces all values by sub. Values not larger than sub
// are set to emptyHash.
func normalizeValues(a []uint32, sub uint32) {
	for i, v := range a {
		a[i] = normalizePos(v, sub)
	}
}

// cyclicIndex returns the cyclic buffer index for the position delta
// bytes before the current position.
func (mf *matchFinder) cyclicIndex(delta uint32) uint32 {
	if delta > mf.cyclicPos {
		return mf.cyclicPos - delta + mf.cyclicSize
	}
	return mf.cyclicPos - delta
}

// getMatches returns the matches for the current position and moves the
// position forward. The matches are ordered by increasing length. The
// returned slice is valid until the next call.
func (mf *matchFinder) getMatches() []match {
	m := mf.matches[:0]
	lenLimit := mf.lenLimit()
	if lenLimit < mf.minLen() {
		mf.movePos()
		mf.matches = m
		return m
	}
	switch mf.kind {
	case BT2:
		m = mf.bt2Matches(m, lenLimit)
	case BT3:
		m = mf.bt3Matches(m, lenLimit)
	case BT4:
		m = mf.hash4Matches(m, lenLimit, true)
	case HC4:
		m = mf.hash4Matches(m, lenLimit, false)
	}
	mf.movePos()
	mf.matches = m
	return m
}

// skip moves the position n bytes forward and inserts the positions into
// the index. It has the same effect on the match finder as calling
// getMatches n times.
func (mf *matchFinder) skip(n int) {
	for ; n > 0; n-- {
		lenLimit := mf.lenLimit()
		if lenLimit < mf.minLen() {
			mf.movePos()
			continue
		}
		cur := mf.buf[mf.index(mf.pos):]
		var curMatch uint32
		switch mf.kind {
		case BT2:
			hv := mf.lz.Hash2(cur)
			curMatch = mf.hash[hv]
			mf.hash[hv] = mf.pos
		case BT3:
			h2, hv := mf.lz.Hash3(cur)
			curMatch = mf.hash[mf.fix3+hv]
			mf.hash[h2] = mf.pos
			mf.hash[mf.fix3+hv] = mf.pos
		default:
			h2, h3, hv := mf.lz.Hash4(cur)
			curMatch = mf.hash[mf.fix4+hv]
			mf.hash[h2] = mf.pos
			mf.hash[mf.fix3+h3] = mf.pos
			mf.hash[mf.fix4+hv] = mf.pos
		}
		if mf.kind == HC4 {
			mf.chain[mf.cyclicPos] = curMatch
		} else {
			mf.treeSkip(curMatch, lenLimit)
		}
		mf.movePos()
	}
}

// bt2Matches finds the matches using the two-byte hash.
func (mf *matchFinder) bt2Matches(m []match, lenLimit int) []match {
	cur := mf.buf[mf.index(mf.pos):]
	hv := mf.lz.Hash2(cur)
	curMatch := mf.hash[hv]
	mf.hash[hv] = mf.pos
	return mf.treeMatches(m, curMatch, lenLimit, 1)
}

// bt3Matches finds the matches using the three-byte hash.
func (mf *matchFinder) bt3Matches(m []match, lenLimit int) []match {
	i := mf.index(mf.pos)
	cur := mf.buf[i:]
	h2, hv := mf.lz.Hash3(cur)
	delta2 := mf.pos - mf.hash[h2]
	curMatch := mf.hash[mf.fix3+hv]
	mf.hash[h2] = mf.pos
	mf.hash[mf.fix3+hv] = mf.pos
	maxLen := 2
	if delta2 < mf.cyclicSize && mf.buf[i-int(delta2)] == cur[0] {
		maxLen += mf.matchLen(i+maxLen, delta2-1, lenLimit-maxLen)
		m = append(m, match{n: uint32(maxLen), dist: delta2 - 1})
		if maxLen == lenLimit {
			mf.treeSkip(curMatch, lenLimit)
			return m
		}
	}
	return mf.treeMatches(m, curMatch, lenLimit, maxLen)
}

// hash4Matches finds the matches for the match finders using the
// four-byte hash. The candidates of the two- and three-byte hashes are
// checked first.
func (mf *matchFinder) hash4Matches(m []match, lenLimit int, bt bool) []match {
	i := mf.index(mf.pos)
	cur := mf.buf[i:]
	h2, h3, hv := mf.lz.Hash4(cur)
	delta2 := mf.pos - mf.hash[h2]
	delta3 := mf.pos - mf.hash[mf.fix3+h3]
	curMatch := mf.hash[mf.fix4+hv]
	mf.hash[h2] = mf.pos
	mf.hash[mf.fix3+h3] = mf.pos
	mf.hash[mf.fix4+hv] = mf.pos

	maxLen := 1
	if delta2 < mf.cyclicSize && mf.buf[i-int(delta2)] == cur[0] {
		maxLen = 2
		m = append(m, match{n: 2, dist: delta2 - 1})
	}
	if delta2 != delta3 && delta3 < mf.cyclicSize &&
		mf.buf[i-int(delta3)] == cur[0] {
		maxLen = 3
		m = append(m, match{n: 3, dist: delta3 - 1})
		delta2 = delta3
	}
	if len(m) > 0 {
		maxLen += mf.matchLen(i+maxLen, delta2-1, lenLimit-maxLen)
		m[len(m)-1].n = uint32(maxLen)
		if maxLen == lenLimit {
			if bt {
				mf.treeSkip(curMatch, lenLimit)
			} else {
				mf.chain[mf.cyclicPos] = curMatch
			}
			return m
		}
	}
	if maxLen < 3 {
		maxLen = 3
	}
	if bt {
		return mf.treeMatches(m, curMatch, lenLimit, maxLen)
	}
	return mf.chainMatches(m, curMatch, lenLimit, maxLen)
}
