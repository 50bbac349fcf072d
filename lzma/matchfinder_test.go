// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/ulikunitz/lzmacodec/internal/randtxt"
)

// testText returns n bytes of pseudo text.
func testText(t testing.TB, seed int64, n int) []byte {
	t.Helper()
	p := make([]byte, n)
	if _, err := io.ReadFull(randtxt.NewReader(rand.NewSource(seed)),
		p); err != nil {
		t.Fatalf("ReadFull error %s", err)
	}
	return p
}

func newTestMatchFinder(t *testing.T, kind MatchFinder, dictSize uint32,
	data []byte) *matchFinder {
	t.Helper()
	keepBefore, _, size := windowSize(dictSize)
	if size < len(data) {
		size = len(data)
	}
	mf, err := newMatchFinder(kind, dictSize, maxMatchLen, 32,
		make([]byte, size), keepBefore)
	if err != nil {
		t.Fatalf("newMatchFinder error %s", err)
	}
	if n := mf.write(data); n != len(data) {
		t.Fatalf("mf.write returned %d; want %d", n, len(data))
	}
	return mf
}

var matchFinders = []MatchFinder{BT2, BT3, BT4, HC4}

func TestMatchFinderMatches(t *testing.T) {
	data := testText(t, 1, 30000)
	for _, kind := range matchFinders {
		t.Run(kind.String(), func(t *testing.T) {
			mf := newTestMatchFinder(t, kind, 1<<12, data)
			found := 0
			for k := 0; mf.avail() > 0; k++ {
				i := mf.index(mf.pos)
				lenLimit := mf.lenLimit()
				m := mf.getMatches()
				prev := uint32(1)
				for _, x := range m {
					if x.n <= prev {
						t.Fatalf("pos %d: lengths not"+
							" increasing: %v", k, m)
					}
					prev = x.n
					if int(x.n) > lenLimit {
						t.Fatalf("pos %d: match %v"+
							" exceeds limit %d",
							k, x, lenLimit)
					}
					if int(x.dist) >= k || x.dist > 1<<12 {
						t.Fatalf("pos %d: invalid"+
							" distance %d", k, x.dist)
					}
					j := i - int(x.dist) - 1
					if !bytes.Equal(mf.buf[i:i+int(x.n)],
						mf.buf[j:j+int(x.n)]) {
						t.Fatalf("pos %d: match %v"+
							" doesn't match", k, x)
					}
				}
				found += len(m)
			}
			if found == 0 {
				t.Fatalf("no matches found in text")
			}
		})
	}
}

func TestMatchFinderSkip(t *testing.T) {
	data := testText(t, 2, 20000)
	for _, kind := range matchFinders {
		t.Run(kind.String(), func(t *testing.T) {
			a := newTestMatchFinder(t, kind, 1<<12, data)
			b := newTestMatchFinder(t, kind, 1<<12, data)
			rnd := rand.New(rand.NewSource(3))
			for a.avail() > 0 {
				if rnd.Intn(3) == 0 {
					n := 1 + rnd.Intn(20)
					if r := a.avail(); n > r {
						n = r
					}
					for j := 0; j < n; j++ {
						a.getMatches()
					}
					b.skip(n)
					continue
				}
				ma := a.getMatches()
				mb := b.getMatches()
				if fmt.Sprint(ma) != fmt.Sprint(mb) {
					t.Fatalf("matches %v and %v differ",
						ma, mb)
				}
			}
			if a.pos != b.pos {
				t.Fatalf("positions %d and %d differ", a.pos,
					b.pos)
			}
		})
	}
}

func TestMatchFinderNormalize(t *testing.T) {
	data := testText(t, 4, 40000)
	for _, kind := range matchFinders {
		t.Run(kind.String(), func(t *testing.T) {
			a := newTestMatchFinder(t, kind, 1<<12, data)
			b := newTestMatchFinder(t, kind, 1<<12, data)
			b.normLimit = b.cyclicSize + 7001
			for k := 0; a.avail() > 0; k++ {
				ma := a.getMatches()
				mb := b.getMatches()
				if fmt.Sprint(ma) != fmt.Sprint(mb) {
					t.Fatalf("pos %d: matches %v and %v"+
						" differ", k, ma, mb)
				}
			}
			if b.pos >= b.normLimit {
				t.Fatalf("position %d not normalized", b.pos)
			}
		})
	}
}

func TestBinTreeDump(t *testing.T) {
	const text = "thorn than this thus thou that those thy end"
	mf := newTestMatchFinder(t, BT2, 1<<12, []byte(text))
	last := strings.LastIndex(text, "thy")
	for j := 0; j <= last; j++ {
		mf.getMatches()
	}
	var sb strings.Builder
	if err := mf.dump(&sb, mf.pos-1, 0); err != nil {
		t.Fatalf("dump error %s", err)
	}
	s := sb.String()
	t.Logf("tree:\n%s", s)
	if !strings.Contains(s, fmt.Sprintf("%d ", mf.pos-1)) {
		t.Fatalf("dump doesn't contain the root %d", mf.pos-1)
	}
	if n := strings.Count(s, "\n"); n != 8 {
		t.Fatalf("dump has %d nodes; want 8", n)
	}
}

func TestNewMatchFinderErrors(t *testing.T) {
	buf := make([]byte, 1<<16)
	if _, err := newMatchFinder(0, 1<<12, 32, 16, buf, 100); err == nil {
		t.Errorf("newMatchFinder accepted match finder 0")
	}
	if _, err := newMatchFinder(BT4, 1<<12, 1, 16, buf, 100); err == nil {
		t.Errorf("newMatchFinder accepted match length 1")
	}
	if _, err := newMatchFinder(BT4, 1<<12, 32, 0, buf, 100); err == nil {
		t.Errorf("newMatchFinder accepted cut value 0")
	}
}
