// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// literalCodec supports the encoding and decoding of literals. Each literal
// state selects a set of 0x300 probabilities. The first 0x100 are used for
// plain literals, the rest for literals that are coded relative to the
// match byte.
type literalCodec struct {
	probs []prob
	lc    uint
	lp    uint
}

// init initializes the literal codec for lc and lp.
func (c *literalCodec) init(lc, lp int) {
	switch {
	case !(MinLC <= lc && lc <= MaxLC):
		panic("lc out of range")
	case !(MinLP <= lp && lp <= MaxLP):
		panic("lp out of range")
	}
	c.lc, c.lp = uint(lc), uint(lp)
	n := 0x300 << (c.lc + c.lp)
	if cap(c.probs) >= n {
		c.probs = c.probs[:n]
	} else {
		c.probs = make([]prob, n)
	}
	initProbs(c.probs)
}

// state returns the probabilities for the given position and previous
// byte.
func (c *literalCodec) state(pos int64, prev byte) []prob {
	lpMask := uint32(1)<<c.lp - 1
	s := (uint32(pos)&lpMask)<<c.lc | uint32(prev)>>(8-c.lc)
	i := 0x300 * s
	return c.probs[i : i+0x300]
}

// Encode encodes the byte s. If match is true the literal follows a match
// and the bits of matchByte select the probabilities until the first
// difference between the bits of s and matchByte.
func (c *literalCodec) Encode(e *rangeEncoder, probs []prob, s byte,
	match bool, matchByte byte) {
	symbol := uint32(1)
	same := match
	for i := 7; i >= 0; i-- {
		b := uint32(s>>uint(i)) & 1
		k := symbol
		if same {
			mb := uint32(matchByte>>uint(i)) & 1
			k += (1 + mb) << 8
			same = mb == b
		}
		e.encodeBit(b, &probs[k])
		symbol = symbol<<1 | b
	}
}

// Decode decodes a literal byte using the range decoder.
func (c *literalCodec) Decode(d *rangeDecoder, probs []prob, match bool,
	matchByte byte) (s byte, err error) {
	symbol := uint32(1)
	if match {
		for symbol < 0x100 {
			mb := uint32(matchByte>>7) & 1
			matchByte <<= 1
			b, err := d.decodeBit(&probs[((1+mb)<<8)+symbol])
			if err != nil {
				return 0, err
			}
			symbol = symbol<<1 | b
			if mb != b {
				break
			}
		}
	}
	for symbol < 0x100 {
		b, err := d.decodeBit(&probs[symbol])
		if err != nil {
			return 0, err
		}
		symbol = symbol<<1 | b
	}
	return byte(symbol - 0x100), nil
}

// price computes the price of encoding s.
func (c *literalCodec) price(t *priceTable, probs []prob, s byte,
	match bool, matchByte byte) uint32 {
	var price uint32
	symbol := uint32(1)
	same := match
	for i := 7; i >= 0; i-- {
		b := uint32(s>>uint(i)) & 1
		k := symbol
		if same {
			mb := uint32(matchByte>>uint(i)) & 1
			k += (1 + mb) << 8
			same = mb == b
		}
		price += t.bit(probs[k], b)
		symbol = symbol<<1 | b
	}
	return price
}
