// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/lzmacodec/xlog"
)

// ProgressFunc is called by the encoder after every block with the number
// of bytes consumed and produced so far. A non-nil error stops the
// encoding.
type ProgressFunc func(inSize, outSize int64) error

// progressBlock is the number of bytes after which output is written and
// the progress function is called.
const progressBlock = 1 << 12

// distance prices are refreshed after this number of matches; align
// prices after alignTableSize matches with align bits.
const (
	distPriceRefresh = 1 << 7
	alignTableSize   = 1 << alignBits
)

// parser computes the operations encoding the window of the encoder.
type parser interface {
	// nextOp returns the next operation starting at the current
	// position of the encoder.
	nextOp() operation
	// pending reports whether the parser has computed operations that
	// haven't been returned yet.
	pending() bool
}

var errClosed = errors.New("lzma: encoder already closed")

// Encoder compresses data into a raw LZMA stream. The stream doesn't
// contain a header; the properties are provided by the Properties method.
//
// The encoder supports the push interface Write and Close and the pull
// interface Encode.
type Encoder struct {
	cfg   EncoderConfig
	props Properties

	st state
	re rangeEncoder
	mf *matchFinder
	// window buffer; nil after Close
	buf []byte
	// look ahead required by the parser
	keepAfter int

	prices          *priceTable
	lenPrices       lengthPrices
	repLenPrices    lengthPrices
	dp              distPrices
	matchPriceCount int
	alignPriceCount int
	parser          parser

	// current position of the encoder
	nowPos int64
	// number of bytes the match finder is ahead of nowPos
	additionalOffset int
	// bytes available at the match finder position before the last
	// readMatches call
	numAvail int
	// matches of the last readMatches call
	matches         []match
	longestMatchLen int

	w      io.Writer
	err    error
	closed bool

	log      xlog.Logger
	progress ProgressFunc
	// input position at the last progress report
	lastProgress int64
}

// windowSize computes the sizes for the window buffer.
func windowSize(dictSize uint32) (keepBefore, keepAfter, size int) {
	keepAfter = numOpts + maxMatchLen + 1
	keepBefore = int(dictSize) + 1 + keepAfter
	reserve := int(dictSize/2) + 1<<16
	return keepBefore, keepAfter, keepBefore + keepAfter + reserve
}

// NewEncoder creates an encoder writing the compressed stream to w.
func NewEncoder(w io.Writer, cfg EncoderConfig) (e *Encoder, err error) {
	if w == nil {
		return nil, fmt.Errorf("lzma: writer is nil: %w", ErrParam)
	}
	if cfg.Properties != nil {
		p := *cfg.Properties
		cfg.Properties = &p
	}
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	e = &Encoder{
		cfg:     cfg,
		props:   cfg.properties(),
		log:     cfg.Logger,
		prices:  newPriceTable(),
		matches: make([]match, 0, maxMatchLen+1),
	}
	if err = e.Reset(w); err != nil {
		return nil, err
	}
	xlog.Printf(e.log, "lzma: encoder %v mode=%v mf=%v fb=%d cut=%d"+
		" eos=%t", e.props, cfg.Mode, cfg.MatchFinder, cfg.FastBytes,
		cfg.CutValue, cfg.EOSMarker)
	return e, nil
}

// Reset prepares the encoder for a new stream written to w. The
// configuration is kept.
func (e *Encoder) Reset(w io.Writer) error {
	if w == nil {
		return fmt.Errorf("lzma: writer is nil: %w", ErrParam)
	}
	cfg := &e.cfg
	keepBefore, keepAfter, size := windowSize(cfg.DictSize)
	if e.buf == nil {
		buf, err := alloc(cfg.Allocator, size)
		if err != nil {
			return err
		}
		e.buf = buf
	}
	mf, err := newMatchFinder(cfg.MatchFinder, cfg.DictSize,
		cfg.FastBytes, uint32(cfg.CutValue), e.buf, keepBefore)
	if err != nil {
		free(cfg.Allocator, e.buf)
		e.buf = nil
		return err
	}
	e.mf = mf
	e.keepAfter = keepAfter
	e.w = w
	e.err = nil
	e.closed = false
	e.nowPos = 0
	e.additionalOffset = 0
	e.numAvail = 0
	e.matches = e.matches[:0]
	e.longestMatchLen = 0
	e.lastProgress = 0
	e.matchPriceCount = 0
	e.alignPriceCount = 0
	e.st.init(e.props)
	e.re.init()
	if cfg.Mode == ModeFast {
		e.parser = &greedy{e: e}
	} else {
		e.parser = newOptimum(e)
		e.initPrices()
	}
	return nil
}

// Properties returns the properties of the stream. The dictionary size is
// the value that must be written to the header.
func (e *Encoder) Properties() Properties { return e.props }

// Compressed returns the number of compressed bytes produced so far.
func (e *Encoder) Compressed() int64 { return e.re.drained }

// Uncompressed returns the number of bytes encoded so far.
func (e *Encoder) Uncompressed() int64 { return e.nowPos }

// initPrices computes all price tables of the normal mode.
func (e *Encoder) initPrices() {
	e.dp.updateDist(e.prices, &e.st.distCodec)
	e.dp.updateAlign(e.prices, &e.st.distCodec)
	n := 1 << uint(e.props.PB)
	tableSize := e.cfg.FastBytes + 1 - minMatchLen
	e.lenPrices.init(tableSize, n, e.prices, &e.st.lenCodec)
	e.repLenPrices.init(tableSize, n, e.prices, &e.st.repLenCodec)
}

// Write compresses the bytes of p. The output is written when the buffer
// is filled.
func (e *Encoder) Write(p []byte) (n int, err error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.closed {
		return 0, errClosed
	}
	for n < len(p) {
		n += e.mf.write(p[n:])
		if err = e.encode(false); err != nil {
			e.err = err
			return n, err
		}
	}
	return n, nil
}

// Encode reads all data from r, compresses it and closes the stream. The
// progress function may be nil. It returns the number of bytes read.
func (e *Encoder) Encode(r io.Reader, progress ProgressFunc) (n int64,
	err error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.closed {
		return 0, errClosed
	}
	e.progress = progress
	defer func() { e.progress = nil }()
	for {
		p := e.mf.writable()
		k, rerr := r.Read(p)
		e.mf.commit(k)
		n += int64(k)
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			e.err = rerr
			return n, rerr
		}
		if err = e.encode(false); err != nil {
			e.err = err
			return n, err
		}
	}
	return n, e.Close()
}

// Close encodes the remaining data, writes the end marker if requested
// and flushes the range encoder. The underlying writer is not closed.
func (e *Encoder) Close() error {
	if e.closed {
		if e.err != nil {
			return e.err
		}
		return errClosed
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	defer func() {
		free(e.cfg.Allocator, e.buf)
		e.buf = nil
	}()
	if err := e.encode(true); err != nil {
		e.err = err
		return err
	}
	if e.cfg.EOSMarker {
		e.writeEOS()
	}
	e.re.flush()
	if err := e.emit(); err != nil {
		e.err = err
		return err
	}
	if err := e.reportProgress(); err != nil {
		e.err = err
		return err
	}
	xlog.Printf(e.log, "lzma: encoded %d bytes into %d bytes", e.nowPos,
		e.re.drained)
	return nil
}

// emit writes the pending output of the range encoder.
func (e *Encoder) emit() error {
	p := e.re.pending()
	if len(p) == 0 {
		return nil
	}
	_, err := e.w.Write(p)
	return err
}

// reportProgress calls the progress function.
func (e *Encoder) reportProgress() error {
	e.lastProgress = e.nowPos
	if e.progress == nil {
		return nil
	}
	if err := e.progress(e.nowPos, e.re.compressedLen()); err != nil {
		return fmt.Errorf("lzma: encoder stopped at %d: %w: %w",
			e.nowPos, ErrProgress, err)
	}
	return nil
}

// encode encodes the data in the window. If all is false, the encoder
// stops if the look ahead required by the parser is not available.
func (e *Encoder) encode(all bool) error {
	if e.nowPos == 0 && e.mf.avail() > 0 &&
		(all || e.mf.avail() >= e.keepAfter) {
		e.readMatches()
		e.writeLiteral(e.curIndex())
		e.additionalOffset--
		e.nowPos++
	}
	for {
		if !e.parser.pending() {
			if e.additionalOffset == 0 && e.mf.avail() == 0 {
				break
			}
			if !all && e.mf.avail() < e.keepAfter {
				break
			}
		}
		op := e.parser.nextOp()
		e.writeOp(op)
		if e.cfg.Mode == ModeNormal && e.additionalOffset == 0 {
			if e.matchPriceCount >= distPriceRefresh {
				e.dp.updateDist(e.prices, &e.st.distCodec)
				e.matchPriceCount = 0
			}
			if e.alignPriceCount >= alignTableSize {
				e.dp.updateAlign(e.prices, &e.st.distCodec)
				e.alignPriceCount = 0
			}
		}
		if len(e.re.buf) >= progressBlock {
			if err := e.emit(); err != nil {
				return err
			}
		}
		if e.nowPos-e.lastProgress >= progressBlock {
			if err := e.reportProgress(); err != nil {
				return err
			}
		}
	}
	return e.emit()
}

// curIndex returns the buffer index of the current encoder position.
func (e *Encoder) curIndex() int {
	return e.mf.index(e.mf.pos) - e.additionalOffset
}

// readMatches reads the matches for the match finder position and
// advances it. If the longest match reaches the number of fast bytes, it
// is extended up to maxMatchLen. The length of the longest match is
// returned.
func (e *Encoder) readMatches() int {
	e.numAvail = e.mf.avail()
	m := e.mf.getMatches()
	e.matches = append(e.matches[:0], m...)
	e.additionalOffset++
	if len(m) == 0 {
		return 0
	}
	last := m[len(m)-1]
	n := int(last.n)
	if n == e.cfg.FastBytes {
		i := e.mf.index(e.mf.pos) - 1
		limit := e.numAvail
		if limit > maxMatchLen {
			limit = maxMatchLen
		}
		n += e.mf.matchLen(i+n, last.dist, limit-n)
	}
	return n
}

// movePos skips n positions of the match finder.
func (e *Encoder) movePos(n int) {
	if n <= 0 {
		return
	}
	e.additionalOffset += n
	e.mf.skip(n)
}

// writeLiteral encodes the literal at buffer index i.
func (e *Encoder) writeLiteral(i int) {
	st := &e.st
	_, state2, _ := st.states(e.nowPos)
	e.re.encodeBit(0, &st.s2[state2].isMatch)
	var prev byte
	if e.nowPos > 0 {
		prev = e.buf[i-1]
	}
	probs := st.litCodec.state(e.nowPos, prev)
	match := !isCharState(st.state)
	var matchByte byte
	if match {
		matchByte = e.buf[i-int(st.rep[0])-1]
	}
	st.litCodec.Encode(&e.re, probs, e.buf[i], match, matchByte)
	st.updateStateLiteral()
}

// writeOp encodes the operation at the current position and advances the
// position.
func (e *Encoder) writeOp(op operation) {
	i := e.curIndex()
	st := &e.st
	state1, state2, posState := st.states(e.nowPos)
	normal := e.cfg.Mode == ModeNormal
	switch op.kind {
	case opLit:
		e.writeLiteral(i)
	case opShortRep:
		e.re.encodeBit(1, &st.s2[state2].isMatch)
		e.re.encodeBit(1, &st.s1[state1].isRep)
		e.re.encodeBit(0, &st.s1[state1].isRepG0)
		e.re.encodeBit(0, &st.s2[state2].isRepG0Long)
		st.updateStateShortRep()
	case opRep:
		e.re.encodeBit(1, &st.s2[state2].isMatch)
		e.re.encodeBit(1, &st.s1[state1].isRep)
		g := int(op.rep)
		if g == 0 {
			e.re.encodeBit(0, &st.s1[state1].isRepG0)
			e.re.encodeBit(1, &st.s2[state2].isRepG0Long)
		} else {
			e.re.encodeBit(1, &st.s1[state1].isRepG0)
			if g == 1 {
				e.re.encodeBit(0, &st.s1[state1].isRepG1)
			} else {
				e.re.encodeBit(1, &st.s1[state1].isRepG1)
				e.re.encodeBit(uint32(g-2), &st.s1[state1].isRepG2)
			}
		}
		l := op.n - minMatchLen
		st.repLenCodec.Encode(&e.re, l, posState)
		if normal {
			e.repLenPrices.used(e.prices, &st.repLenCodec, posState)
		}
		st.applyRep(g)
	case opMatch:
		e.re.encodeBit(1, &st.s2[state2].isMatch)
		e.re.encodeBit(0, &st.s1[state1].isRep)
		l := op.n - minMatchLen
		st.lenCodec.Encode(&e.re, l, posState)
		if normal {
			e.lenPrices.used(e.prices, &st.lenCodec, posState)
		}
		st.distCodec.Encode(&e.re, op.dist, l)
		if posSlot(op.dist) >= endPosModel {
			e.alignPriceCount++
		}
		e.matchPriceCount++
		st.applyMatch(op.dist)
	default:
		panic(fmt.Errorf("lzma: unexpected operation %v", op))
	}
	n := op.Len()
	e.additionalOffset -= n
	e.nowPos += int64(n)
}

// writeEOS writes the end-of-stream marker: a match with the distance
// eosDist and the minimum length.
func (e *Encoder) writeEOS() {
	st := &e.st
	state1, state2, posState := st.states(e.nowPos)
	e.re.encodeBit(1, &st.s2[state2].isMatch)
	e.re.encodeBit(0, &st.s1[state1].isRep)
	st.lenCodec.Encode(&e.re, 0, posState)
	st.distCodec.Encode(&e.re, eosDist, 0)
	st.updateStateMatch()
}
