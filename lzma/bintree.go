// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"fmt"
	"io"
)

// btNode is a node of the binary tree. The node for a position is stored
// at the cyclic index of the position. The children are positions; the
// left subtree contains the byte sequences that are smaller than the
// sequence at the node, the right subtree the larger ones.
type btNode struct {
	left  uint32
	right uint32
}

// binTree is the arena of the tree nodes. The handle of a node is its
// cyclic index.
type binTree struct {
	nodes []btNode
}

// init allocates n nodes.
func (t *binTree) init(n uint32) {
	t.nodes = make([]btNode, n)
}

// normalize reduces all positions stored in the tree by sub.
func (t *binTree) normalize(sub uint32) {
	for i := range t.nodes {
		nd := &t.nodes[i]
		nd.left = normalizePos(nd.left, sub)
		nd.right = normalizePos(nd.right, sub)
	}
}

func normalizePos(v, sub uint32) uint32 {
	if v <= sub {
		return emptyHash
	}
	return v - sub
}

// btLink references a child link of a node in the arena.
type btLink struct {
	h     uint32
	right bool
}

// set stores the position v in the link.
func (t *binTree) set(l btLink, v uint32) {
	if l.right {
		t.nodes[l.h].right = v
	} else {
		t.nodes[l.h].left = v
	}
}

// btQuery describes the position that is inserted into the tree.
type btQuery struct {
	// data is the window buffer and i the index of the current position
	data []byte
	i    int
	// absolute and cyclic position
	pos        uint32
	cyclicPos  uint32
	cyclicSize uint32
	lenLimit   int
	cutValue   uint32
}

// btWalk makes the current position the root of the tree that had the
// position root as its root. While walking down the old tree the nodes
// are split into the left and right subtree of the new root. If record is
// set, every match longer than maxLen is appended to m. The walk stops
// after cutValue nodes, at an invalid position or if a match of length
// lenLimit has been found; in the last case the children of the matching
// node are taken over, since the new node replaces it.
func btWalk(t *binTree, root uint32, q *btQuery, m []match, maxLen int,
	record bool) []match {
	ptr1 := btLink{h: q.cyclicPos}
	ptr0 := btLink{h: q.cyclicPos, right: true}
	cur := q.data[q.i : q.i+q.lenLimit]
	var len0, len1 int
	curMatch := root
	for cut := q.cutValue; ; cut-- {
		delta := q.pos - curMatch
		if cut == 0 || delta >= q.cyclicSize {
			t.set(ptr0, emptyHash)
			t.set(ptr1, emptyHash)
			return m
		}
		pair := q.cyclicPos - delta
		if delta > q.cyclicPos {
			pair += q.cyclicSize
		}
		pb := q.data[q.i-int(delta):]
		n := len0
		if len1 < n {
			n = len1
		}
		if pb[n] == cur[n] {
			n++
			for n < q.lenLimit && pb[n] == cur[n] {
				n++
			}
			if record && maxLen < n {
				maxLen = n
				m = append(m, match{n: uint32(n), dist: delta - 1})
			}
			if n == q.lenLimit {
				nd := t.nodes[pair]
				t.set(ptr1, nd.left)
				t.set(ptr0, nd.right)
				return m
			}
		}
		if pb[n] < cur[n] {
			t.set(ptr1, curMatch)
			ptr1 = btLink{h: pair, right: true}
			curMatch = t.nodes[pair].right
			len1 = n
		} else {
			t.set(ptr0, curMatch)
			ptr0 = btLink{h: pair}
			curMatch = t.nodes[pair].left
			len0 = n
		}
	}
}

// query returns the query for the current position.
func (mf *matchFinder) query(lenLimit int) btQuery {
	return btQuery{
		data:       mf.buf,
		i:          mf.index(mf.pos),
		pos:        mf.pos,
		cyclicPos:  mf.cyclicPos,
		cyclicSize: mf.cyclicSize,
		lenLimit:   lenLimit,
		cutValue:   mf.cutValue,
	}
}

// treeMatches inserts the current position and returns the matches longer
// than maxLen.
func (mf *matchFinder) treeMatches(m []match, curMatch uint32, lenLimit int,
	maxLen int) []match {
	q := mf.query(lenLimit)
	return btWalk(&mf.tree, curMatch, &q, m, maxLen, true)
}

// treeSkip inserts the current position without reporting matches.
func (mf *matchFinder) treeSkip(curMatch uint32, lenLimit int) {
	q := mf.query(lenLimit)
	btWalk(&mf.tree, curMatch, &q, nil, 0, false)
}

// dump writes the tree rooted at the position v in a readable form. It is
// used for debugging.
func (mf *matchFinder) dump(w io.Writer, v uint32, indent int) error {
	delta := mf.pos - v
	if v == emptyHash || delta >= mf.cyclicSize || delta == 0 {
		return nil
	}
	h := mf.cyclicPos - delta
	if delta > mf.cyclicPos {
		h += mf.cyclicSize
	}
	nd := mf.tree.nodes[h]
	if err := mf.dump(w, nd.left, indent+2); err != nil {
		return err
	}
	i := mf.index(v)
	k := i + 8
	if j := mf.index(mf.end); k > j {
		k = j
	}
	if _, err := fmt.Fprintf(w, "%*s%d %q\n", indent, "", v,
		mf.buf[i:k]); err != nil {
		return err
	}
	return mf.dump(w, nd.right, indent+2)
}
