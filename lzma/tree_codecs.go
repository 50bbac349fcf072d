// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// probTree stores enough probability values to be used by the treeEncode and
// treeDecode methods of the range coder types.
type probTree struct {
	probs []prob
	bits  byte
}

// makeProbTree initializes a probTree structure.
func makeProbTree(bits int) probTree {
	if !(1 <= bits && bits <= 32) {
		panic("bits outside of range [1,32]")
	}
	t := probTree{
		bits:  byte(bits),
		probs: make([]prob, 1<<uint(bits)),
	}
	initProbs(t.probs)
	return t
}

// Bits provides the number of bits for the values to de- or encode.
func (t *probTree) Bits() int {
	return int(t.bits)
}

// init resets all probabilities.
func (t *probTree) init() {
	initProbs(t.probs)
}

// treeCodec codes fixed-bit-size values. The tree starts with the
// most-significant bit.
type treeCodec struct {
	probTree
}

// makeTreeCodec makes a tree codec. It panics if the bits argument is not
// inside the range [1,32].
func makeTreeCodec(bits int) treeCodec {
	return treeCodec{makeProbTree(bits)}
}

// Encode uses the range encoder to encode a fixed-bit-size value.
func (tc *treeCodec) Encode(e *rangeEncoder, v uint32) {
	m := uint32(1)
	for i := int(tc.bits) - 1; i >= 0; i-- {
		b := (v >> uint(i)) & 1
		e.encodeBit(b, &tc.probs[m])
		m = (m << 1) | b
	}
}

// Decode uses the range decoder to decode a fixed-bit-size value. Errors
// may be caused by the range decoder.
func (tc *treeCodec) Decode(d *rangeDecoder) (v uint32, err error) {
	m := uint32(1)
	for j := 0; j < int(tc.bits); j++ {
		b, err := d.decodeBit(&tc.probs[m])
		if err != nil {
			return 0, err
		}
		m = (m << 1) | b
	}
	return m - (1 << uint(tc.bits)), nil
}

// price computes the price for encoding v.
func (tc *treeCodec) price(t *priceTable, v uint32) uint32 {
	var price uint32
	m := uint32(1)
	for i := int(tc.bits) - 1; i >= 0; i-- {
		b := (v >> uint(i)) & 1
		price += t.bit(tc.probs[m], b)
		m = (m << 1) | b
	}
	return price
}

// treeReverseCodec codes fixed-bit-size values. The tree starts with the
// least-significant bit.
type treeReverseCodec struct {
	probTree
}

// makeTreeReverseCodec creates a reverse tree codec. The function will panic
// if bits is outside [1,32].
func makeTreeReverseCodec(bits int) treeReverseCodec {
	return treeReverseCodec{makeProbTree(bits)}
}

// Encode uses the range encoder to encode a fixed-bit-size value.
func (tc *treeReverseCodec) Encode(e *rangeEncoder, v uint32) {
	m := uint32(1)
	for i := uint(0); i < uint(tc.bits); i++ {
		b := (v >> i) & 1
		e.encodeBit(b, &tc.probs[m])
		m = (m << 1) | b
	}
}

// Decode uses the range decoder to decode a fixed-bit-size value. Errors
// returned by the range decoder will be returned.
func (tc *treeReverseCodec) Decode(d *rangeDecoder) (v uint32, err error) {
	m := uint32(1)
	for j := uint(0); j < uint(tc.bits); j++ {
		b, err := d.decodeBit(&tc.probs[m])
		if err != nil {
			return 0, err
		}
		m = (m << 1) | b
		v |= b << j
	}
	return v, nil
}

// price computes the price for encoding v.
func (tc *treeReverseCodec) price(t *priceTable, v uint32) uint32 {
	var price uint32
	m := uint32(1)
	for i := uint(0); i < uint(tc.bits); i++ {
		b := (v >> i) & 1
		price += t.bit(tc.probs[m], b)
		m = (m << 1) | b
	}
	return price
}
