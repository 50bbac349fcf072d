// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// chainMatches inserts the current position into the hash chain and walks
// the chain starting with curMatch, the previous position with the same
// main hash. Only matches longer than maxLen are reported. The walk is
// limited by the cut value.
func (mf *matchFinder) chainMatches(m []match, curMatch uint32, lenLimit int,
	maxLen int) []match {
	mf.chain[mf.cyclicPos] = curMatch
	i := mf.index(mf.pos)
	cur := mf.buf[i : i+lenLimit]
	for cut := mf.cutValue; cut > 0; cut-- {
		delta := mf.pos - curMatch
		if delta >= mf.cyclicSize {
			break
		}
		pb := mf.buf[i-int(delta):]
		curMatch = mf.chain[mf.cyclicIndex(delta)]
		if pb[maxLen] != cur[maxLen] || pb[0] != cur[0] {
			continue
		}
		n := 1
		for n < lenLimit && pb[n] == cur[n] {
			n++
		}
		if maxLen < n {
			maxLen = n
			m = append(m, match{n: uint32(n), dist: delta - 1})
			if n == lenLimit {
				break
			}
		}
	}
	return m
}
