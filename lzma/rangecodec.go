// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "fmt"

// topValue is the limit of the range below which the coders normalize.
const topValue = 1 << 24

// rangeEncoder implements range encoding of single bits. The low value can
// overflow therefore we need uint64. The cache value is used to handle
// overflows.
//
// The encoder appends the output to the buf slice that is drained by the
// encoder driver.
type rangeEncoder struct {
	buf       []byte
	nrange    uint32
	low       uint64
	cacheSize int64
	cache     byte
	// bytes drained from buf
	drained int64
}

// init initializes the range encoder.
func (e *rangeEncoder) init() {
	*e = rangeEncoder{
		buf:       e.buf[:0],
		nrange:    0xffffffff,
		cacheSize: 1,
	}
}

// encodeBit encodes the least significant bit of b. The p value will be
// updated by the function depending on the bit encoded.
func (e *rangeEncoder) encodeBit(b uint32, p *prob) {
	bound := p.bound(e.nrange)
	if b&1 == 0 {
		e.nrange = bound
		p.inc()
	} else {
		e.low += uint64(bound)
		e.nrange -= bound
		p.dec()
	}
	if e.nrange < topValue {
		e.nrange <<= 8
		e.shiftLow()
	}
}

// directEncode encodes the lowest n bits of v with probability 1/2,
// starting with the most significant bit.
func (e *rangeEncoder) directEncode(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		e.nrange >>= 1
		e.low += uint64(e.nrange & (0 - ((v >> uint(i)) & 1)))
		if e.nrange < topValue {
			e.nrange <<= 8
			e.shiftLow()
		}
	}
}

// shiftLow shifts the low value for 8 bit. The shifted byte is appended to
// the output buffer. The cache value is used to handle overflows.
func (e *rangeEncoder) shiftLow() {
	if uint32(e.low) < 0xff000000 || (e.low>>32) != 0 {
		tmp := e.cache
		for {
			e.buf = append(e.buf, tmp+byte(e.low>>32))
			tmp = 0xff
			e.cacheSize--
			if e.cacheSize <= 0 {
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheSize++
	e.low = uint64(uint32(e.low) << 8)
}

// flush writes a complete copy of the low value.
func (e *rangeEncoder) flush() {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
}

// pending returns the bytes available for output and resets the buffer.
// The slice is valid until the next call of an encode method.
func (e *rangeEncoder) pending() []byte {
	p := e.buf
	e.drained += int64(len(p))
	e.buf = e.buf[:0]
	return p
}

// compressedLen returns the number of bytes the encoder will have written
// when flushed now.
func (e *rangeEncoder) compressedLen() int64 {
	return e.drained + int64(len(e.buf)) + e.cacheSize + 4
}

// minRangeInput is the number of bytes the decoder needs to prime the range
// decoder.
const minRangeInput = 5

// probChange records the value of a probability before an update.
type probChange struct {
	p *prob
	v prob
}

// rangeDecoder decodes single bits of the range encoding stream. The
// decoder reads from the in slice. If logging is set the decoder records
// every probability change, so that the decoding of a symbol can be undone
// if the input ends prematurely.
type rangeDecoder struct {
	nrange uint32
	code   uint32
	in     []byte
	pos    int

	logging bool
	undo    []probChange
}

// init initializes the decoder from the five primer bytes.
func (d *rangeDecoder) init(p []byte) error {
	if len(p) < minRangeInput {
		return fmt.Errorf("lzma: range decoder primer too short: %w",
			ErrInputEOF)
	}
	if p[0] != 0 {
		return fmt.Errorf("lzma: first byte of stream is %#02x: %w",
			p[0], ErrData)
	}
	d.nrange = 0xffffffff
	d.code = 0
	for _, c := range p[1:minRangeInput] {
		d.code = d.code<<8 | uint32(c)
	}
	if d.code == d.nrange {
		return fmt.Errorf("lzma: invalid range decoder code: %w",
			ErrData)
	}
	d.undo = d.undo[:0]
	return nil
}

// possiblyAtEnd checks whether the decoder may be at the end of the stream.
func (d *rangeDecoder) possiblyAtEnd() bool {
	return d.code == 0
}

// normalize reads a new byte if the range is too small.
func (d *rangeDecoder) normalize() error {
	if d.nrange >= topValue {
		return nil
	}
	if d.pos >= len(d.in) {
		return errNeedInput
	}
	d.nrange <<= 8
	d.code = d.code<<8 | uint32(d.in[d.pos])
	d.pos++
	return nil
}

// decodeBit decodes a single bit. The bit will be returned at the
// least-significant position. All other bits will be zero. The probability
// value will be updated.
func (d *rangeDecoder) decodeBit(p *prob) (b uint32, err error) {
	if d.logging {
		d.undo = append(d.undo, probChange{p, *p})
	}
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		p.inc()
		b = 0
	} else {
		d.code -= bound
		d.nrange -= bound
		p.dec()
		b = 1
	}
	return b, d.normalize()
}

// directDecode decodes n bits with probability 1/2.
func (d *rangeDecoder) directDecode(n int) (v uint32, err error) {
	for ; n > 0; n-- {
		d.nrange >>= 1
		d.code -= d.nrange
		t := 0 - (d.code >> 31)
		d.code += d.nrange & t
		v = v<<1 + (t + 1)
		if err = d.normalize(); err != nil {
			return 0, err
		}
	}
	return v, nil
}

// rangeMark stores the part of the range decoder state that must be
// restored if a symbol cannot be decoded completely.
type rangeMark struct {
	nrange uint32
	code   uint32
	pos    int
}

// mark records the decoder state and starts a new undo log.
func (d *rangeDecoder) mark() rangeMark {
	d.undo = d.undo[:0]
	return rangeMark{d.nrange, d.code, d.pos}
}

// rollback restores the state recorded by mark including all probability
// values changed since then.
func (d *rangeDecoder) rollback(m rangeMark) {
	for i := len(d.undo) - 1; i >= 0; i-- {
		c := d.undo[i]
		*c.p = c.v
	}
	d.undo = d.undo[:0]
	d.nrange, d.code, d.pos = m.nrange, m.code, m.pos
}
