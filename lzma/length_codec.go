// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// Constants for the lengths of matches.
const (
	minMatchLen = 2
	maxMatchLen = minMatchLen + lowLens + midLens + highLens - 1

	lowBits  = 3
	midBits  = 3
	highBits = 8
	lowLens  = 1 << lowBits
	midLens  = 1 << midBits
	highLens = 1 << highBits

	// maximum number of position states
	maxPosStates = 1 << MaxPB
)

// lengthCodec supports the encoding and decoding of match lengths. The
// codec uses the value l = length - minMatchLen.
type lengthCodec struct {
	choice [2]prob
	low    [maxPosStates]treeCodec
	mid    [maxPosStates]treeCodec
	high   treeCodec
}

// init initializes a new length codec.
func (lc *lengthCodec) init() {
	for i := range lc.choice {
		lc.choice[i] = probInit
	}
	for i := range lc.low {
		if lc.low[i].probs == nil {
			lc.low[i] = makeTreeCodec(lowBits)
			lc.mid[i] = makeTreeCodec(midBits)
		} else {
			lc.low[i].init()
			lc.mid[i].init()
		}
	}
	if lc.high.probs == nil {
		lc.high = makeTreeCodec(highBits)
	} else {
		lc.high.init()
	}
}

// Encode encodes the length offset l. The value l must be less than
// maxMatchLen-minMatchLen+1.
func (lc *lengthCodec) Encode(e *rangeEncoder, l uint32, posState uint32) {
	if l < lowLens {
		e.encodeBit(0, &lc.choice[0])
		lc.low[posState].Encode(e, l)
		return
	}
	e.encodeBit(1, &lc.choice[0])
	if l < lowLens+midLens {
		e.encodeBit(0, &lc.choice[1])
		lc.mid[posState].Encode(e, l-lowLens)
		return
	}
	e.encodeBit(1, &lc.choice[1])
	lc.high.Encode(e, l-lowLens-midLens)
}

// Decode reads the length offset.
func (lc *lengthCodec) Decode(d *rangeDecoder, posState uint32) (l uint32,
	err error) {
	b, err := d.decodeBit(&lc.choice[0])
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return lc.low[posState].Decode(d)
	}
	b, err = d.decodeBit(&lc.choice[1])
	if err != nil {
		return 0, err
	}
	if b == 0 {
		l, err = lc.mid[posState].Decode(d)
		return l + lowLens, err
	}
	l, err = lc.high.Decode(d)
	return l + lowLens + midLens, err
}

// price computes the price of the length offset l.
func (lc *lengthCodec) price(t *priceTable, l uint32, posState uint32) uint32 {
	if l < lowLens {
		return t.bit0(lc.choice[0]) + lc.low[posState].price(t, l)
	}
	a := t.bit1(lc.choice[0])
	if l < lowLens+midLens {
		return a + t.bit0(lc.choice[1]) +
			lc.mid[posState].price(t, l-lowLens)
	}
	return a + t.bit1(lc.choice[1]) +
		lc.high.price(t, l-lowLens-midLens)
}

// lengthPrices caches the prices of a length codec. The prices of a
// position state are recomputed after the position state has been used
// tableSize times.
type lengthPrices struct {
	prices    [maxPosStates][maxMatchLen - minMatchLen + 1]uint32
	counters  [maxPosStates]int
	tableSize int
}

// init sets the table size and computes all prices.
func (lp *lengthPrices) init(tableSize int, numPosStates int, t *priceTable,
	lc *lengthCodec) {
	lp.tableSize = tableSize
	for ps := 0; ps < numPosStates; ps++ {
		lp.update(t, lc, uint32(ps))
	}
}

// update recomputes the prices for posState.
func (lp *lengthPrices) update(t *priceTable, lc *lengthCodec,
	posState uint32) {
	a0 := t.bit0(lc.choice[0])
	a1 := t.bit1(lc.choice[0])
	b0 := a1 + t.bit0(lc.choice[1])
	b1 := a1 + t.bit1(lc.choice[1])
	p := &lp.prices[posState]
	for l := 0; l < lp.tableSize; l++ {
		v := uint32(l)
		switch {
		case v < lowLens:
			p[l] = a0 + lc.low[posState].price(t, v)
		case v < lowLens+midLens:
			p[l] = b0 + lc.mid[posState].price(t, v-lowLens)
		default:
			p[l] = b1 + lc.high.price(t, v-lowLens-midLens)
		}
	}
	lp.counters[posState] = lp.tableSize
}

// price returns the price of the length offset l. Values outside the table
// are computed directly.
func (lp *lengthPrices) price(t *priceTable, lc *lengthCodec, l uint32,
	posState uint32) uint32 {
	if int(l) < lp.tableSize {
		return lp.prices[posState][l]
	}
	return lc.price(t, l, posState)
}

// used counts the use of a position state and updates its prices if
// required.
func (lp *lengthPrices) used(t *priceTable, lc *lengthCodec, posState uint32) {
	lp.counters[posState]--
	if lp.counters[posState] <= 0 {
		lp.update(t, lc, posState)
	}
}
