// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// numOpts is the number of nodes of the optimal parser. It limits the
// number of bytes that are parsed in one step.
const numOpts = 1 << 11

// choice describes the operation leading to a node. For opRep v is the
// index of the recent distance, for opMatch the distance.
type choice struct {
	kind opKind
	v    uint32
}

// op converts the choice into an operation of length n. The literal byte
// is b.
func (c choice) op(n int, b byte) operation {
	switch c.kind {
	case opLit:
		return litOp(b)
	case opShortRep:
		return shortRepOp()
	case opRep:
		return repOp(int(c.v), uint32(n))
	}
	return matchOp(c.v, uint32(n))
}

// optNode is a node of the optimal parser. Node k describes the cheapest
// known way to encode the first k bytes of the parsed window.
//
// A node may be reached by the combination literal plus rep0 match
// (prev1IsChar) that is preceded by the operation back2 at posPrev2 if
// prev2 is set.
type optNode struct {
	price   uint32
	state   uint32
	posPrev int
	back    choice

	prev1IsChar bool
	prev2       bool
	posPrev2    int
	back2       choice

	reps [4]uint32
}

func (nd *optNode) makeAsChar() {
	nd.back = choice{kind: opLit}
	nd.prev1IsChar = false
}

func (nd *optNode) makeAsShortRep() {
	nd.back = choice{kind: opShortRep}
	nd.prev1IsChar = false
}

func (nd *optNode) isShortRep() bool { return nd.back.kind == opShortRep }

// optimum is the parser of the normal mode. It computes the cheapest path
// through the nodes using the prices of the encoder. The operations of the
// path are returned one by one by nextOp.
type optimum struct {
	e     *Encoder
	nodes []optNode
	// operations between curIndex and endIndex are pending
	curIndex int
	endIndex int

	// the longest match of the position following the parsed window
	longestFound bool
	longestLen   int

	reps    [4]uint32
	repLens [4]int
}

func newOptimum(e *Encoder) *optimum {
	return &optimum{e: e, nodes: make([]optNode, numOpts)}
}

func (o *optimum) pending() bool { return o.curIndex != o.endIndex }

// take returns the operation of the node at curIndex.
func (o *optimum) take() operation {
	nd := &o.nodes[o.curIndex]
	n := nd.posPrev - o.curIndex
	o.curIndex = nd.posPrev
	e := o.e
	return nd.back.op(n, e.buf[e.curIndex()])
}

// Price helpers of the parser.

func (e *Encoder) isMatchPrice(b uint32, state, posState uint32) uint32 {
	return e.prices.bit(e.st.s2[state<<maxPosBits|posState].isMatch, b)
}

func (e *Encoder) isRepPrice(b uint32, state uint32) uint32 {
	return e.prices.bit(e.st.s1[state].isRep, b)
}

// literalPrice returns the price of b at position pos. The literal is
// coded relative to matchByte if the state is not a literal state.
func (e *Encoder) literalPrice(pos int64, prev byte, state uint32,
	matchByte, b byte) uint32 {
	probs := e.st.litCodec.state(pos, prev)
	return e.st.litCodec.price(e.prices, probs, b, !isCharState(state),
		matchByte)
}

func (e *Encoder) shortRepPrice(state, posState uint32) uint32 {
	t := e.prices
	return t.bit0(e.st.s1[state].isRepG0) +
		t.bit0(e.st.s2[state<<maxPosBits|posState].isRepG0Long)
}

// pureRepPrice returns the price for selecting the recent distance g
// without the length.
func (e *Encoder) pureRepPrice(g int, state, posState uint32) uint32 {
	t := e.prices
	s1 := &e.st.s1[state]
	if g == 0 {
		return t.bit0(s1.isRepG0) +
			t.bit1(e.st.s2[state<<maxPosBits|posState].isRepG0Long)
	}
	p := t.bit1(s1.isRepG0)
	if g == 1 {
		return p + t.bit0(s1.isRepG1)
	}
	return p + t.bit1(s1.isRepG1) + t.bit(s1.isRepG2, uint32(g-2))
}

func (e *Encoder) repPrice(g, n int, state, posState uint32) uint32 {
	return e.repLenPrices.price(e.prices, &e.st.repLenCodec,
		uint32(n-minMatchLen), posState) +
		e.pureRepPrice(g, state, posState)
}

// matchPrice returns the price of length and distance of a match.
func (e *Encoder) matchPrice(dist uint32, n int, posState uint32) uint32 {
	l := uint32(n - minMatchLen)
	return e.lenPrices.price(e.prices, &e.st.lenCodec, l, posState) +
		e.dp.price(dist, l)
}

// extend sets the prices of the nodes up to n to infinity, if they are
// used the first time.
func (o *optimum) extend(lenEnd *int, n int) {
	for *lenEnd < n {
		*lenEnd++
		o.nodes[*lenEnd].price = infinityPrice
	}
}

// relax records the path to node k if it is cheaper than the known one.
func (o *optimum) relax(k int, price uint32, posPrev int, back choice) {
	nd := &o.nodes[k]
	if price < nd.price {
		nd.price = price
		nd.posPrev = posPrev
		nd.back = back
		nd.prev1IsChar = false
	}
}

// relaxCharRep records the path literal plus rep0 to node k. If prev2 is
// set, the literal is preceded by back2 starting at posPrev2.
func (o *optimum) relaxCharRep(k int, price uint32, posPrev int, prev2 bool,
	posPrev2 int, back2 choice) {
	nd := &o.nodes[k]
	if price < nd.price {
		nd.price = price
		nd.posPrev = posPrev
		nd.back = choice{kind: opRep, v: 0}
		nd.prev1IsChar = true
		nd.prev2 = prev2
		nd.posPrev2 = posPrev2
		nd.back2 = back2
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// nextOp returns the next operation. If no operations are pending, the
// parser computes the cheapest path for the next bytes of the window.
func (o *optimum) nextOp() operation {
	if o.pending() {
		return o.take()
	}
	o.curIndex, o.endIndex = 0, 0
	e := o.e
	st := &e.st
	mask := st.posBitMask
	fb := e.cfg.FastBytes

	var mainLen int
	if o.longestFound {
		mainLen = o.longestLen
		o.longestFound = false
	} else {
		mainLen = e.readMatches()
	}
	matches := e.matches

	i := e.mf.index(e.mf.pos) - 1
	numAvail := e.mf.avail() + 1
	if numAvail < 2 {
		return litOp(e.buf[i])
	}
	if numAvail > maxMatchLen {
		numAvail = maxMatchLen
	}

	repMax := 0
	for r := range o.reps {
		o.reps[r] = st.rep[r]
		o.repLens[r] = e.mf.matchLen(i, o.reps[r], maxMatchLen)
		if o.repLens[r] > o.repLens[repMax] {
			repMax = r
		}
	}
	if n := o.repLens[repMax]; n >= fb {
		e.movePos(n - 1)
		return repOp(repMax, uint32(n))
	}
	if mainLen >= fb {
		e.movePos(mainLen - 1)
		return matchOp(matches[len(matches)-1].dist, uint32(mainLen))
	}

	curByte := e.buf[i]
	matchByte := e.buf[i-int(o.reps[0])-1]
	if mainLen < 2 && curByte != matchByte && o.repLens[repMax] < 2 {
		return litOp(curByte)
	}

	nodes := o.nodes
	position := e.nowPos
	state := st.state
	posState := uint32(position) & mask
	nodes[0].state = state

	n1 := &nodes[1]
	n1.price = e.isMatchPrice(0, state, posState) +
		e.literalPrice(position, e.buf[i-1], state, matchByte, curByte)
	n1.makeAsChar()

	matchPrice := e.isMatchPrice(1, state, posState)
	repMatchPrice := matchPrice + e.isRepPrice(1, state)
	if matchByte == curByte {
		p := repMatchPrice + e.shortRepPrice(state, posState)
		if p < n1.price {
			n1.price = p
			n1.makeAsShortRep()
		}
	}

	lenEnd := mainLen
	if o.repLens[repMax] > lenEnd {
		lenEnd = o.repLens[repMax]
	}
	if lenEnd < 2 {
		return n1.back.op(1, curByte)
	}

	n1.posPrev = 0
	nodes[0].reps = o.reps
	for k := lenEnd; k >= 2; k-- {
		nodes[k].price = infinityPrice
	}

	for r, repLen := range o.repLens {
		if repLen < 2 {
			continue
		}
		price := repMatchPrice + e.pureRepPrice(r, state, posState)
		for ; repLen >= 2; repLen-- {
			p := price + e.repLenPrices.price(e.prices,
				&st.repLenCodec, uint32(repLen-minMatchLen), posState)
			o.relax(repLen, p, 0, choice{kind: opRep, v: uint32(r)})
		}
	}

	normalMatchPrice := matchPrice + e.isRepPrice(0, state)
	l := 2
	if o.repLens[0] >= 2 {
		l = o.repLens[0] + 1
	}
	if l <= mainLen {
		k := 0
		for l > int(matches[k].n) {
			k++
		}
		for ; ; l++ {
			dist := matches[k].dist
			p := normalMatchPrice + e.matchPrice(dist, l, posState)
			o.relax(l, p, 0, choice{kind: opMatch, v: dist})
			if l == int(matches[k].n) {
				k++
				if k == len(matches) {
					break
				}
			}
		}
	}

	for cur := 1; ; cur++ {
		if cur == lenEnd {
			return o.backward(cur)
		}
		newLen := e.readMatches()
		matches = e.matches
		if newLen >= fb {
			o.longestLen = newLen
			o.longestFound = true
			return o.backward(cur)
		}
		position++
		i = e.mf.index(e.mf.pos) - 1
		nd := &nodes[cur]
		if nd.price >= infinityPrice {
			continue
		}

		// state and recent distances of the node
		posPrev := nd.posPrev
		if nd.prev1IsChar {
			posPrev--
			if nd.prev2 {
				state = nodes[nd.posPrev2].state
				if nd.back2.kind == opRep {
					state = nextStateRep(state)
				} else {
					state = nextStateMatch(state)
				}
			} else {
				state = nodes[posPrev].state
			}
			state = nextStateLiteral(state)
		} else {
			state = nodes[posPrev].state
		}
		var reps [4]uint32
		if posPrev == cur-1 {
			if nd.isShortRep() {
				state = nextStateShortRep(state)
			} else {
				state = nextStateLiteral(state)
			}
			reps = nodes[posPrev].reps
		} else {
			var b choice
			if nd.prev1IsChar && nd.prev2 {
				posPrev = nd.posPrev2
				b = nd.back2
				state = nextStateRep(state)
			} else {
				b = nd.back
				if b.kind == opRep {
					state = nextStateRep(state)
				} else {
					state = nextStateMatch(state)
				}
			}
			pr := &nodes[posPrev].reps
			if b.kind == opRep {
				g := int(b.v)
				reps[0] = pr[g]
				copy(reps[1:g+1], pr[:g])
				copy(reps[g+1:], pr[g+1:])
			} else {
				reps[0] = b.v
				copy(reps[1:], pr[:3])
			}
		}
		nd.state = state
		nd.reps = reps
		curPrice := nd.price

		curByte = e.buf[i]
		matchByte = e.buf[i-int(reps[0])-1]
		posState = uint32(position) & mask

		curAnd1Price := curPrice + e.isMatchPrice(0, state, posState) +
			e.literalPrice(position, e.buf[i-1], state, matchByte,
				curByte)
		next := &nodes[cur+1]
		nextIsChar := false
		if curAnd1Price < next.price {
			next.price = curAnd1Price
			next.posPrev = cur
			next.makeAsChar()
			nextIsChar = true
		}

		matchPrice = curPrice + e.isMatchPrice(1, state, posState)
		repMatchPrice = matchPrice + e.isRepPrice(1, state)
		if matchByte == curByte && !(next.posPrev < cur &&
			next.back.kind == opRep && next.back.v == 0) {
			p := repMatchPrice + e.shortRepPrice(state, posState)
			if p <= next.price {
				next.price = p
				next.posPrev = cur
				next.makeAsShortRep()
				nextIsChar = true
			}
		}

		numAvailFull := minInt(e.mf.avail()+1, numOpts-1-cur)
		numAvail = numAvailFull
		if numAvail < 2 {
			continue
		}
		if numAvail > fb {
			numAvail = fb
		}

		// literal followed by rep0
		if !nextIsChar && matchByte != curByte {
			t := minInt(numAvailFull-1, fb)
			lenTest2 := e.mf.matchLen(i+1, reps[0], t)
			if lenTest2 >= 2 {
				state2 := nextStateLiteral(state)
				posStateNext := uint32(position+1) & mask
				p := curAnd1Price +
					e.isMatchPrice(1, state2, posStateNext) +
					e.isRepPrice(1, state2) +
					e.repPrice(0, lenTest2, state2, posStateNext)
				offset := cur + 1 + lenTest2
				o.extend(&lenEnd, offset)
				o.relaxCharRep(offset, p, cur+1, false, 0, choice{})
			}
		}

		startLen := 2
		for r := range reps {
			lenTest := e.mf.matchLen(i, reps[r], numAvail)
			if lenTest < 2 {
				continue
			}
			for n := lenTest; n >= 2; n-- {
				o.extend(&lenEnd, cur+n)
				p := repMatchPrice + e.repPrice(r, n, state, posState)
				o.relax(cur+n, p, cur,
					choice{kind: opRep, v: uint32(r)})
			}
			if r == 0 {
				startLen = lenTest + 1
			}

			// rep, literal and rep0
			if lenTest >= numAvailFull {
				continue
			}
			t := minInt(numAvailFull-1-lenTest, fb)
			lenTest2 := e.mf.matchLen(i+lenTest+1, reps[r], t)
			if lenTest2 < 2 {
				continue
			}
			state2 := nextStateRep(state)
			pos2 := position + int64(lenTest)
			posStateNext := uint32(pos2) & mask
			j := i + lenTest
			p := repMatchPrice + e.repPrice(r, lenTest, state, posState) +
				e.isMatchPrice(0, state2, posStateNext) +
				e.literalPrice(pos2, e.buf[j-1], state2,
					e.buf[j-int(reps[r])-1], e.buf[j])
			state2 = nextStateLiteral(state2)
			posStateNext = uint32(pos2+1) & mask
			p += e.isMatchPrice(1, state2, posStateNext) +
				e.isRepPrice(1, state2) +
				e.repPrice(0, lenTest2, state2, posStateNext)
			offset := cur + lenTest + 1 + lenTest2
			o.extend(&lenEnd, offset)
			o.relaxCharRep(offset, p, cur+lenTest+1, true, cur,
				choice{kind: opRep, v: uint32(r)})
		}

		if newLen > numAvail {
			newLen = numAvail
			k := 0
			for newLen > int(matches[k].n) {
				k++
			}
			matches[k].n = uint32(newLen)
			matches = matches[:k+1]
		}
		if newLen < startLen {
			continue
		}
		normalMatchPrice = matchPrice + e.isRepPrice(0, state)
		o.extend(&lenEnd, cur+newLen)
		k := 0
		for startLen > int(matches[k].n) {
			k++
		}
		for n := startLen; ; n++ {
			dist := matches[k].dist
			p := normalMatchPrice + e.matchPrice(dist, n, posState)
			o.relax(cur+n, p, cur, choice{kind: opMatch, v: dist})
			if n != int(matches[k].n) {
				continue
			}

			// match, literal and rep0
			if n < numAvailFull {
				t := minInt(numAvailFull-1-n, fb)
				lenTest2 := e.mf.matchLen(i+n+1, dist, t)
				if lenTest2 >= 2 {
					state2 := nextStateMatch(state)
					pos2 := position + int64(n)
					posStateNext := uint32(pos2) & mask
					j := i + n
					q := p + e.isMatchPrice(0, state2, posStateNext) +
						e.literalPrice(pos2, e.buf[j-1], state2,
							e.buf[j-int(dist)-1], e.buf[j])
					state2 = nextStateLiteral(state2)
					posStateNext = uint32(pos2+1) & mask
					q += e.isMatchPrice(1, state2, posStateNext) +
						e.isRepPrice(1, state2) +
						e.repPrice(0, lenTest2, state2,
							posStateNext)
					offset := cur + n + 1 + lenTest2
					o.extend(&lenEnd, offset)
					o.relaxCharRep(offset, q, cur+n+1, true, cur,
						choice{kind: opMatch, v: dist})
				}
			}
			k++
			if k == len(matches) {
				break
			}
		}
	}
}

// backward reverses the path ending in node cur, so that the operations
// can be taken from the front. It returns the first operation.
func (o *optimum) backward(cur int) operation {
	nodes := o.nodes
	o.endIndex = cur
	posMem := nodes[cur].posPrev
	backMem := nodes[cur].back
	for {
		nd := &nodes[cur]
		if nd.prev1IsChar {
			nodes[posMem].makeAsChar()
			nodes[posMem].posPrev = posMem - 1
			if nd.prev2 {
				pn := &nodes[posMem-1]
				pn.prev1IsChar = false
				pn.posPrev = nd.posPrev2
				pn.back = nd.back2
			}
		}
		posPrev := posMem
		backCur := backMem
		backMem = nodes[posPrev].back
		posMem = nodes[posPrev].posPrev
		nodes[posPrev].back = backCur
		nodes[posPrev].posPrev = cur
		cur = posPrev
		if cur <= 0 {
			break
		}
	}
	o.curIndex = 0
	return o.take()
}
