// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"encoding/binary"
	"fmt"
)

// Maximum and minimum values for the individual properties.
const (
	MinLC = 0
	MaxLC = 8
	MinLP = 0
	MaxLP = 4
	MinPB = 0
	MaxPB = 4

	// MinDictSize is the smallest dictionary size used by encoder and
	// decoder. Smaller values are raised to it.
	MinDictSize = 1 << 12
	// MaxDictSize is the largest dictionary size supported by the
	// encoder. The decoder accepts every size.
	MaxDictSize = 3 << 29
)

// maxPropsByte is the largest valid value of the properties byte.
const maxPropsByte = (MaxPB+1)*(MaxLP+1)*(MaxLC+1) - 1

// PropsLen gives the length of the encoded properties.
const PropsLen = 5

// Properties are the parameters of an LZMA stream. They are fixed for the
// whole stream.
type Properties struct {
	// number of literal context bits
	LC int
	// number of literal position bits
	LP int
	// number of position bits
	PB int
	// size of the dictionary in bytes
	DictSize uint32
}

// Verify checks the properties for correctness.
func (p *Properties) Verify() error {
	if p == nil {
		return fmt.Errorf("lzma: properties are nil: %w", ErrParam)
	}
	if !(MinLC <= p.LC && p.LC <= MaxLC) {
		return fmt.Errorf("lzma: lc %d out of range: %w", p.LC,
			ErrUnsupported)
	}
	if !(MinLP <= p.LP && p.LP <= MaxLP) {
		return fmt.Errorf("lzma: lp %d out of range: %w", p.LP,
			ErrUnsupported)
	}
	if !(MinPB <= p.PB && p.PB <= MaxPB) {
		return fmt.Errorf("lzma: pb %d out of range: %w", p.PB,
			ErrUnsupported)
	}
	return nil
}

// Byte returns the properties byte (pb*5+lp)*9+lc.
func (p *Properties) Byte() byte {
	return byte((p.PB*5+p.LP)*9 + p.LC)
}

// setByte sets lc, lp and pb from the properties byte.
func (p *Properties) setByte(c byte) error {
	if c > maxPropsByte {
		return fmt.Errorf("lzma: properties byte %#02x invalid: %w: %w",
			c, ErrData, ErrUnsupported)
	}
	x := int(c)
	p.LC = x % 9
	x /= 9
	p.LP = x % 5
	p.PB = x / 5
	return nil
}

// MarshalBinary returns the 5-byte encoding of the properties.
func (p *Properties) MarshalBinary() (data []byte, err error) {
	if err = p.Verify(); err != nil {
		return nil, err
	}
	data = make([]byte, PropsLen)
	data[0] = p.Byte()
	binary.LittleEndian.PutUint32(data[1:], p.DictSize)
	return data, nil
}

// UnmarshalBinary decodes the 5-byte properties encoding.
func (p *Properties) UnmarshalBinary(data []byte) error {
	if len(data) < PropsLen {
		return fmt.Errorf("lzma: properties need %d bytes; got %d: %w",
			PropsLen, len(data), ErrUnsupported)
	}
	var q Properties
	if err := q.setByte(data[0]); err != nil {
		return err
	}
	q.DictSize = binary.LittleEndian.Uint32(data[1:])
	*p = q
	return nil
}

// String formats the properties in the way lzma tools usually show them.
func (p Properties) String() string {
	return fmt.Sprintf("lc=%d lp=%d pb=%d dict=%d", p.LC, p.LP, p.PB,
		p.DictSize)
}

// posMask returns the mask for the position state.
func (p *Properties) posMask() uint32 { return 1<<uint(p.PB) - 1 }

// effectiveDictSize returns the dictionary size actually used by the
// decoder.
func effectiveDictSize(n uint32) uint32 {
	if n < MinDictSize {
		return MinDictSize
	}
	return n
}

// roundDictSize rounds n up to the next value of the form 2^k or 3*2^k.
// The result is at least MinDictSize. Values above the largest such value
// that fits into an uint32 return 0xffffffff.
func roundDictSize(n uint32) uint32 {
	if n <= MinDictSize {
		return MinDictSize
	}
	for i := uint(11); i <= 30; i++ {
		if n <= 2<<i {
			return 2 << i
		}
		if n <= 3<<i {
			return 3 << i
		}
	}
	return 0xffffffff
}
