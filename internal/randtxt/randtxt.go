// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package randtxt produces reproducible pseudo text. The words are drawn
// from a small English vocabulary following Zipf's law, which gives the
// text the redundancy of natural language.
package randtxt

import (
	"math/rand"
	"sort"
)

// vocabulary ordered by decreasing frequency
var vocabulary = []string{
	"the", "of", "and", "to", "a", "in", "is", "it", "that", "was",
	"he", "for", "on", "are", "as", "with", "his", "they", "at", "be",
	"this", "from", "have", "or", "by", "one", "had", "not", "but",
	"what", "all", "were", "when", "we", "there", "can", "an", "your",
	"which", "their", "said", "if", "do", "will", "each", "about",
	"how", "up", "out", "them", "then", "she", "many", "some", "so",
	"these", "would", "other", "into", "has", "more", "her", "two",
	"like", "him", "see", "time", "could", "no", "make", "than",
	"first", "been", "its", "who", "now", "people", "my", "made",
	"over", "did", "down", "only", "way", "find", "use", "may",
	"water", "long", "little", "very", "after", "words", "called",
	"just", "where", "most", "know", "dictionary", "compression",
	"stream", "window", "range", "literal", "distance", "probability",
}

type prob struct {
	s string
	p float64
}

// probs is a cumulative distribution function.
type probs []prob

// SearchProb returns the index of the first entry with a cumulative
// probability not less than p.
func (s probs) SearchProb(p float64) int {
	i := sort.Search(len(s), func(k int) bool { return s[k].p >= p })
	if i >= len(s) {
		i = len(s) - 1
	}
	return i
}

// zipfCDF computes the cumulative distribution with weights 1/(i+1).
func zipfCDF(words []string) probs {
	prs := make(probs, len(words))
	sum := 0.0
	for i := range words {
		sum += 1 / float64(i+1)
	}
	x := 0.0
	for i, w := range words {
		x += 1 / float64(i+1) / sum
		if x > 1.0 {
			x = 1.0
		}
		prs[i] = prob{w, x}
	}
	return prs
}

var wordCDF = zipfCDF(vocabulary)

// lineLen is the length after which a line is terminated.
const lineLen = 72

// Reader produces an infinite stream of pseudo text. The output depends
// only on the source.
type Reader struct {
	rnd     *rand.Rand
	pending []byte
	col     int
}

// NewReader creates a reader using the given source.
func NewReader(src rand.Source) *Reader {
	return &Reader{rnd: rand.New(src)}
}

// next appends the next word with its separator to the pending bytes.
func (r *Reader) next() {
	w := wordCDF[wordCDF.SearchProb(r.rnd.Float64())].s
	if r.col > 0 {
		if r.col+1+len(w) > lineLen {
			r.pending = append(r.pending, '\n')
			r.col = 0
		} else {
			r.pending = append(r.pending, ' ')
			r.col++
		}
	}
	r.pending = append(r.pending, w...)
	r.col += len(w)
}

// Read fills p completely.
func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(r.pending) == 0 {
			r.next()
		}
		k := copy(p[n:], r.pending)
		n += k
		r.pending = r.pending[k:]
	}
	return n, nil
}
