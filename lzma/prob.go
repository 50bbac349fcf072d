// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "math"

// movebits defines the number of bits used for the updates of probability
// values.
const movebits = 5

// probbits defines the number of bits of a probability value.
const probbits = 11

// probInit defines 0.5 as initial value for prob values.
const probInit prob = 1 << (probbits - 1)

// Type prob represents probabilities. The value gives the probability of
// a zero bit scaled by 2^11.
type prob uint16

// Dec decreases the probability. The decrease is proportional to the
// probability value.
func (p *prob) dec() {
	*p -= *p >> movebits
}

// Inc increases the probability. The Increase is proportional to the
// difference of 1 and the probability value.
func (p *prob) inc() {
	*p += ((1 << probbits) - *p) >> movebits
}

// Computes the new bound for a given range using the probability value.
func (p prob) bound(r uint32) uint32 {
	return (r >> probbits) * uint32(p)
}

// initProbs sets all probabilities to probInit.
func initProbs(p []prob) {
	for i := range p {
		p[i] = probInit
	}
}

// Prices are estimated bit costs in fixed point representation with
// priceShiftBits fractional bits.
const (
	priceShiftBits = 4
	// number of probability bits dropped for the price table lookup
	moveReducingBits = 3
	// price of a single bit with probability 1/2
	bitPrice = 1 << priceShiftBits
	// infinityPrice marks states that cannot be reached
	infinityPrice uint32 = 1 << 30
)

// priceTable maps probabilities to prices. A table is computed for every
// encoder session and never changed afterwards.
type priceTable [1 << (probbits - moveReducingBits)]uint32

// newPriceTable computes the prices -log2(p/2048) for the centers of the
// probability intervals addressed by the table.
func newPriceTable() *priceTable {
	t := new(priceTable)
	const step = 1 << moveReducingBits
	for i := range t {
		x := (float64(i*step) + step/2) / (1 << probbits)
		t[i] = uint32(math.Round(-math.Log2(x) * bitPrice))
	}
	return t
}

// bit returns the price for encoding b with probability p.
func (t *priceTable) bit(p prob, b uint32) uint32 {
	if b == 0 {
		return t[p>>moveReducingBits]
	}
	return t[((1<<probbits)-p)>>moveReducingBits]
}

// bit0 returns the price of a zero bit.
func (t *priceTable) bit0(p prob) uint32 {
	return t[p>>moveReducingBits]
}

// bit1 returns the price of a one bit.
func (t *priceTable) bit1(p prob) uint32 {
	return t[((1<<probbits)-p)>>moveReducingBits]
}
