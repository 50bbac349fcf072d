// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "fmt"

// opKind identifies the variant of an operation.
type opKind uint8

const (
	// literal byte
	opLit opKind = iota
	// match of length 1 at distance rep[0]
	opShortRep
	// match that reuses one of the four recent distances
	opRep
	// match with a new distance
	opMatch
	// end of stream marker
	opEOS
)

// operation represents an operation on the dictionary during encoding or
// decoding. The meaning of the fields depends on the kind:
//
//	opLit       b is the literal byte
//	opShortRep  no fields
//	opRep       rep is the index of the recent distance, n the length
//	opMatch     dist is the zero-based distance, n the length
//	opEOS       no fields
type operation struct {
	kind opKind
	b    byte
	rep  uint8
	n    uint32
	dist uint32
}

func litOp(b byte) operation { return operation{kind: opLit, b: b} }

func shortRepOp() operation { return operation{kind: opShortRep, n: 1} }

func repOp(g int, n uint32) operation {
	return operation{kind: opRep, rep: uint8(g), n: n}
}

func matchOp(dist uint32, n uint32) operation {
	return operation{kind: opMatch, dist: dist, n: n}
}

// Len returns the number of bytes covered by the operation.
func (op operation) Len() int {
	switch op.kind {
	case opLit, opShortRep:
		return 1
	case opEOS:
		return 0
	}
	return int(op.n)
}

// String returns a string representation of the operation.
func (op operation) String() string {
	switch op.kind {
	case opLit:
		return fmt.Sprintf("lit(%02x)", op.b)
	case opShortRep:
		return "shortrep"
	case opRep:
		return fmt.Sprintf("rep%d(%d)", op.rep, op.n)
	case opMatch:
		return fmt.Sprintf("match(%d,%d)", op.dist+1, op.n)
	case opEOS:
		return "eos"
	}
	return "invalid operation"
}
