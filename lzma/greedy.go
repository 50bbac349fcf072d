// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// changePairShift controls how much cheaper a shorter match with a smaller
// distance must be to replace a longer one.
const changePairShift = 7

// changePair reports whether the distance big is so much larger than small
// that the match with the small distance is preferred, even if it is one
// byte shorter.
func changePair(small, big uint32) bool {
	return big>>changePairShift > small
}

// greedy is the parser of the fast mode. It compares the longest match,
// the longest rep match and a literal using simple rules and looks only
// one byte ahead.
type greedy struct {
	e *Encoder
}

func (g *greedy) pending() bool { return false }

// nextOp computes the next operation. If the look ahead has been read,
// the encoder is one byte ahead and the matches of the look ahead are
// reused.
func (g *greedy) nextOp() operation {
	e := g.e
	var mainLen int
	if e.additionalOffset == 0 {
		mainLen = e.readMatches()
	} else {
		mainLen = e.longestMatchLen
	}
	i := e.mf.index(e.mf.pos) - 1
	data := e.buf[i:]
	numAvail := e.numAvail
	if numAvail < 2 {
		return litOp(data[0])
	}
	if numAvail > maxMatchLen {
		numAvail = maxMatchLen
	}
	fb := e.cfg.FastBytes

	repLen, repIndex := 0, 0
	for r, d := range e.st.rep {
		src := e.buf[i-int(d)-1:]
		if data[0] != src[0] || data[1] != src[1] {
			continue
		}
		n := 2
		for n < numAvail && data[n] == src[n] {
			n++
		}
		if n >= fb {
			e.movePos(n - 1)
			return repOp(r, uint32(n))
		}
		if n > repLen {
			repIndex, repLen = r, n
		}
	}

	m := e.matches
	if mainLen >= fb {
		e.movePos(mainLen - 1)
		return matchOp(m[len(m)-1].dist, uint32(mainLen))
	}

	var mainDist uint32
	if mainLen >= 2 {
		k := len(m)
		mainDist = m[k-1].dist
		for k > 1 && mainLen == int(m[k-2].n)+1 {
			if !changePair(m[k-2].dist, mainDist) {
				break
			}
			k--
			mainLen = int(m[k-1].n)
			mainDist = m[k-1].dist
		}
		if mainLen == 2 && mainDist >= 0x80 {
			mainLen = 1
		}
	}

	if repLen >= 2 && (repLen+1 >= mainLen ||
		(repLen+2 >= mainLen && mainDist >= 1<<9) ||
		(repLen+3 >= mainLen && mainDist >= 1<<15)) {
		e.movePos(repLen - 1)
		return repOp(repIndex, uint32(repLen))
	}

	if mainLen < 2 || numAvail <= 2 {
		return litOp(data[0])
	}

	// look ahead
	e.longestMatchLen = e.readMatches()
	if n := e.longestMatchLen; n >= 2 {
		newDist := e.matches[len(e.matches)-1].dist
		if (n >= mainLen && newDist < mainDist) ||
			(n == mainLen+1 && !changePair(mainDist, newDist)) ||
			n > mainLen+1 ||
			(n+1 >= mainLen && mainLen >= 3 &&
				changePair(newDist, mainDist)) {
			return litOp(data[0])
		}
	}

	next := e.buf[i+1:]
	for _, d := range e.st.rep {
		src := e.buf[i-int(d):]
		if next[0] != src[0] || next[1] != src[1] {
			continue
		}
		limit := mainLen - 1
		n := 2
		for n < limit && next[n] == src[n] {
			n++
		}
		if n >= limit {
			return litOp(data[0])
		}
	}
	e.movePos(mainLen - 2)
	return matchOp(mainDist, uint32(mainLen))
}
