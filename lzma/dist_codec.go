// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "math/bits"

// Constants used by the distance codec.
const (
	// eosDist is the distance value coding the end of stream marker
	eosDist = 1<<32 - 1
	// number of the supported len states
	lenStates = 4
	// start for the position models
	startPosModel = 4
	// first index with align bits support
	endPosModel = 14
	// bits for the position slots
	posSlotBits = 6
	// number of align bits
	alignBits = 4
	alignMask = 1<<alignBits - 1
	// distances below fullDistances have individual prices
	fullDistances = 1 << (endPosModel >> 1)
)

// distCodec provides encoding and decoding of distance values.
type distCodec struct {
	posSlotCodecs [lenStates]treeCodec
	posModel      [endPosModel - startPosModel]treeReverseCodec
	alignCodec    treeReverseCodec
}

// init initializes the distance codec.
func (dc *distCodec) init() {
	for i := range dc.posSlotCodecs {
		if dc.posSlotCodecs[i].probs == nil {
			dc.posSlotCodecs[i] = makeTreeCodec(posSlotBits)
		} else {
			dc.posSlotCodecs[i].init()
		}
	}
	for i := range dc.posModel {
		if dc.posModel[i].probs == nil {
			posSlot := startPosModel + i
			dc.posModel[i] = makeTreeReverseCodec((posSlot >> 1) - 1)
		} else {
			dc.posModel[i].init()
		}
	}
	if dc.alignCodec.probs == nil {
		dc.alignCodec = makeTreeReverseCodec(alignBits)
	} else {
		dc.alignCodec.init()
	}
}

// lenState converts the length offset l = length - minMatchLen into a len
// state.
func lenState(l uint32) uint32 {
	if l >= lenStates {
		l = lenStates - 1
	}
	return l
}

// posSlot computes the position slot for a distance value. Distances are
// zero based: the value 0 addresses the byte immediately before the current
// position.
func posSlot(dist uint32) uint32 {
	if dist < startPosModel {
		return dist
	}
	l := 31 - uint32(bits.LeadingZeros32(dist))
	return 2*l + (dist>>(l-1))&1
}

// footer returns the number of footer bits and the base distance for the
// slot.
func footer(slot uint32) (footerBits uint32, base uint32) {
	footerBits = (slot >> 1) - 1
	base = (2 | slot&1) << footerBits
	return footerBits, base
}

// Encode encodes the distance using the parameter l. Value l is the length
// offset of the match.
func (dc *distCodec) Encode(e *rangeEncoder, dist uint32, l uint32) {
	slot := posSlot(dist)
	dc.posSlotCodecs[lenState(l)].Encode(e, slot)
	if slot < startPosModel {
		return
	}
	footerBits, base := footer(slot)
	reduced := dist - base
	if slot < endPosModel {
		dc.posModel[slot-startPosModel].Encode(e, reduced)
		return
	}
	e.directEncode(reduced>>alignBits, int(footerBits-alignBits))
	dc.alignCodec.Encode(e, reduced&alignMask)
}

// Decode decodes the distance offset using the parameter l. The dist value
// 0xffffffff (eos) means the end of the stream has been reached.
func (dc *distCodec) Decode(d *rangeDecoder, l uint32) (dist uint32,
	err error) {
	slot, err := dc.posSlotCodecs[lenState(l)].Decode(d)
	if err != nil {
		return 0, err
	}
	if slot < startPosModel {
		return slot, nil
	}
	footerBits, dist := footer(slot)
	if slot < endPosModel {
		u, err := dc.posModel[slot-startPosModel].Decode(d)
		if err != nil {
			return 0, err
		}
		return dist + u, nil
	}
	u, err := d.directDecode(int(footerBits - alignBits))
	if err != nil {
		return 0, err
	}
	dist += u << alignBits
	u, err = dc.alignCodec.Decode(d)
	if err != nil {
		return 0, err
	}
	return dist + u, nil
}

// distPrices caches the prices of the distance codec.
type distPrices struct {
	slot  [lenStates][1 << posSlotBits]uint32
	full  [lenStates][fullDistances]uint32
	align [1 << alignBits]uint32
}

// updateDist recomputes the slot and full distance prices.
func (dp *distPrices) updateDist(t *priceTable, dc *distCodec) {
	var footerPrices [fullDistances]uint32
	for d := uint32(startPosModel); d < fullDistances; d++ {
		slot := posSlot(d)
		_, base := footer(slot)
		footerPrices[d] = dc.posModel[slot-startPosModel].price(t,
			d-base)
	}
	for ls := range dp.slot {
		sp := &dp.slot[ls]
		for slot := range sp {
			p := dc.posSlotCodecs[ls].price(t, uint32(slot))
			if slot >= endPosModel {
				footerBits, _ := footer(uint32(slot))
				p += (footerBits - alignBits) << priceShiftBits
			}
			sp[slot] = p
		}
		fp := &dp.full[ls]
		for d := uint32(0); d < fullDistances; d++ {
			fp[d] = sp[posSlot(d)] + footerPrices[d]
		}
	}
}

// updateAlign recomputes the align prices.
func (dp *distPrices) updateAlign(t *priceTable, dc *distCodec) {
	for i := range dp.align {
		dp.align[i] = dc.alignCodec.price(t, uint32(i))
	}
}

// price returns the price for coding distance dist with length offset l.
func (dp *distPrices) price(dist uint32, l uint32) uint32 {
	ls := lenState(l)
	if dist < fullDistances {
		return dp.full[ls][dist]
	}
	return dp.slot[ls][posSlot(dist)] + dp.align[dist&alignMask]
}
