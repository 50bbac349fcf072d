// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"fmt"

	"github.com/ulikunitz/lzmacodec/xlog"
)

// maxSymbolInput is the maximum number of input bytes a single symbol
// may require.
const maxSymbolInput = 20

// DecoderConfig provides the parameters of a decoder session.
type DecoderConfig struct {
	// Properties of the stream; usually read from the header.
	Properties Properties
	// Allocator provides the dictionary buffer. If nil the
	// DefaultAllocator is used.
	Allocator Allocator
	// Logger receives debug output. Nil disables it.
	Logger xlog.Logger
}

// Decoder decompresses a raw LZMA stream. The caller provides input and
// output buffers of any size; the decoder keeps the state required to
// continue at the buffer boundaries.
type Decoder struct {
	cfg  DecoderConfig
	st   state
	rd   rangeDecoder
	dict ring

	// temp stores the input of an incomplete symbol or the primer
	temp    [maxSymbolInput]byte
	tempLen int
	primed  bool

	// bytes of the last match still to be copied
	remainLen int

	eos    bool
	err    error
	status Status
	log    xlog.Logger
}

// NewDecoder creates a decoder for a stream with the properties of the
// configuration.
func NewDecoder(cfg DecoderConfig) (d *Decoder, err error) {
	if err = cfg.Properties.Verify(); err != nil {
		return nil, err
	}
	if cfg.Allocator == nil {
		cfg.Allocator = DefaultAllocator
	}
	size := effectiveDictSize(cfg.Properties.DictSize)
	buf, err := alloc(cfg.Allocator, int(size))
	if err != nil {
		return nil, err
	}
	d = &Decoder{cfg: cfg, log: cfg.Logger}
	d.dict.init(buf)
	d.st.init(cfg.Properties)
	xlog.Printf(d.log, "lzma: decoder %v dict=%d", cfg.Properties, size)
	return d, nil
}

// NewDecoderProps creates a decoder from the 5-byte properties
// encoding.
func NewDecoderProps(props []byte) (d *Decoder, err error) {
	var cfg DecoderConfig
	if err = cfg.Properties.UnmarshalBinary(props); err != nil {
		return nil, err
	}
	return NewDecoder(cfg)
}

// Reset prepares the decoder for a new stream with the same properties.
// The dictionary buffer is reused.
func (d *Decoder) Reset() {
	d.st.reset()
	d.rd = rangeDecoder{undo: d.rd.undo[:0]}
	d.dict.reset()
	d.tempLen = 0
	d.primed = false
	d.remainLen = 0
	d.eos = false
	d.err = nil
	d.status = StatusNotSpecified
}

// Release returns the dictionary buffer to the allocator. The decoder
// must not be used afterwards.
func (d *Decoder) Release() {
	free(d.cfg.Allocator, d.dict.data)
	d.dict.data = nil
	d.err = fmt.Errorf("lzma: decoder released: %w", ErrParam)
}

// Properties returns the properties of the decoded stream.
func (d *Decoder) Properties() Properties { return d.cfg.Properties }

// Uncompressed returns the number of bytes decoded so far.
func (d *Decoder) Uncompressed() int64 { return d.dict.n }

// Decode decompresses the data in src into dst. It returns the number of
// bytes written to dst and consumed from src and the status of the
// stream.
//
// If finish is FinishEnd, the stream must end at the end of dst; the
// end marker is then optional. With FinishAny the decoder stops when dst
// is full. NeedsMoreInput is returned after all of src has been
// consumed; the call must then be repeated with more input.
//
// After an ErrData error all further calls return the same error.
func (d *Decoder) Decode(dst, src []byte, finish FinishMode) (nDst, nSrc int,
	status Status, err error) {
	nDst, nSrc, status, err = d.decode(dst, src, finish)
	if err != nil {
		d.err = err
	}
	if status != d.status {
		xlog.Printf(d.log, "lzma: decoder status %v after %d bytes",
			status, d.dict.n)
		d.status = status
	}
	return nDst, nSrc, status, err
}

func (d *Decoder) decode(dst, src []byte, finish FinishMode) (nDst, nSrc int,
	status Status, err error) {
	if d.err != nil {
		return 0, 0, StatusNotSpecified, d.err
	}
	if d.eos {
		return 0, 0, StatusFinishedWithMark, nil
	}
	if !d.primed {
		k := copy(d.temp[d.tempLen:minRangeInput], src)
		d.tempLen += k
		nSrc += k
		if d.tempLen < minRangeInput {
			return 0, nSrc, StatusNeedsMoreInput, nil
		}
		if err = d.rd.init(d.temp[:minRangeInput]); err != nil {
			return 0, nSrc, StatusNotSpecified, err
		}
		d.tempLen = 0
		d.primed = true
	}
	for {
		if d.remainLen > 0 && nDst < len(dst) {
			k := d.remainLen
			if r := len(dst) - nDst; k > r {
				k = r
			}
			d.dict.copyMatch(dst[nDst:], d.st.rep[0], k)
			nDst += k
			d.remainLen -= k
		}
		checkEnd := false
		if nDst == len(dst) {
			if d.remainLen == 0 && d.rd.possiblyAtEnd() {
				return nDst, nSrc, StatusMaybeFinishedWithoutMark, nil
			}
			if finish == FinishAny {
				return nDst, nSrc, StatusNotFinished, nil
			}
			if d.remainLen != 0 {
				return nDst, nSrc, StatusNotFinished, fmt.Errorf(
					"lzma: match exceeds end of output: %w",
					ErrData)
			}
			checkEnd = true
		}
		op, k, ok := d.readOp(src[nSrc:])
		nSrc += k
		if !ok {
			return nDst, nSrc, StatusNeedsMoreInput, nil
		}
		if op.kind == opEOS {
			if !d.rd.possiblyAtEnd() {
				return nDst, nSrc, StatusNotSpecified, fmt.Errorf(
					"lzma: range decoder not at end after"+
						" end marker: %w", ErrData)
			}
			d.eos = true
			return nDst, nSrc, StatusFinishedWithMark, nil
		}
		if checkEnd {
			return nDst, nSrc, StatusNotSpecified, fmt.Errorf(
				"lzma: data after end of output: %w", ErrData)
		}
		if err = d.apply(op); err != nil {
			return nDst, nSrc, StatusNotSpecified, err
		}
		if op.kind == opLit || op.kind == opShortRep {
			dst[nDst] = d.dict.byteAt(0)
			nDst++
		}
	}
}

// readOp decodes the next operation from the stashed input and src. It
// returns the number of bytes consumed from src. If the input is not
// sufficient, all of src is stashed, the probabilities are restored and
// ok is false.
func (d *Decoder) readOp(src []byte) (op operation, n int, ok bool) {
	if d.tempLen == 0 && len(src) >= maxSymbolInput {
		d.rd.in, d.rd.pos, d.rd.logging = src, 0, false
		var err error
		op, err = d.decodeOp()
		n = d.rd.pos
		d.rd.in = nil
		if err != nil {
			panic(fmt.Errorf("lzma: symbol exceeds %d bytes",
				maxSymbolInput))
		}
		return op, n, true
	}
	t := d.tempLen
	k := copy(d.temp[t:], src)
	d.rd.in, d.rd.pos, d.rd.logging = d.temp[:t+k], 0, true
	m := d.rd.mark()
	op, err := d.decodeOp()
	used := d.rd.pos
	d.rd.in, d.rd.logging = nil, false
	if err != nil {
		d.rd.rollback(m)
		d.tempLen = t + k
		return op, k, false
	}
	d.rd.undo = d.rd.undo[:0]
	if used < t {
		copy(d.temp[:], d.temp[used:t])
		d.tempLen = t - used
		return op, 0, true
	}
	d.tempLen = 0
	return op, used - t, true
}

// decodeOp decodes the next operation. The model is not changed except for
// the probabilities.
func (d *Decoder) decodeOp() (op operation, err error) {
	st := &d.st
	rd := &d.rd
	pos := d.dict.n
	state1, state2, posState := st.states(pos)
	b, err := rd.decodeBit(&st.s2[state2].isMatch)
	if err != nil {
		return op, err
	}
	if b == 0 {
		probs := st.litCodec.state(pos, d.dict.byteAt(0))
		match := !isCharState(st.state)
		var mb byte
		if match {
			mb = d.dict.byteAt(st.rep[0])
		}
		c, err := st.litCodec.Decode(rd, probs, match, mb)
		return litOp(c), err
	}
	if b, err = rd.decodeBit(&st.s1[state1].isRep); err != nil {
		return op, err
	}
	if b == 0 {
		l, err := st.lenCodec.Decode(rd, posState)
		if err != nil {
			return op, err
		}
		dist, err := st.distCodec.Decode(rd, l)
		if err != nil {
			return op, err
		}
		if dist == eosDist {
			return operation{kind: opEOS}, nil
		}
		return matchOp(dist, l+minMatchLen), nil
	}
	var g int
	if b, err = rd.decodeBit(&st.s1[state1].isRepG0); err != nil {
		return op, err
	}
	if b == 0 {
		if b, err = rd.decodeBit(&st.s2[state2].isRepG0Long); err != nil {
			return op, err
		}
		if b == 0 {
			return shortRepOp(), nil
		}
	} else {
		if b, err = rd.decodeBit(&st.s1[state1].isRepG1); err != nil {
			return op, err
		}
		if b == 0 {
			g = 1
		} else {
			if b, err = rd.decodeBit(&st.s1[state1].isRepG2); err != nil {
				return op, err
			}
			g = 2 + int(b)
		}
	}
	l, err := st.repLenCodec.Decode(rd, posState)
	if err != nil {
		return op, err
	}
	return repOp(g, l+minMatchLen), nil
}

// apply applies the operation to the model and the dictionary. Matches
// are only registered in remainLen; the bytes are copied by the caller.
func (d *Decoder) apply(op operation) error {
	st := &d.st
	switch op.kind {
	case opLit:
		d.dict.put(op.b)
		st.updateStateLiteral()
	case opShortRep:
		if d.dict.n == 0 {
			return fmt.Errorf("lzma: short rep at stream start: %w",
				ErrData)
		}
		d.dict.put(d.dict.byteAt(st.rep[0]))
		st.updateStateShortRep()
	case opRep:
		if d.dict.n == 0 {
			return fmt.Errorf("lzma: rep match at stream start: %w",
				ErrData)
		}
		st.applyRep(int(op.rep))
		d.remainLen = int(op.n)
	case opMatch:
		if int64(op.dist) >= d.dict.n ||
			int64(op.dist) >= int64(len(d.dict.data)) {
			return fmt.Errorf("lzma: distance %d out of range: %w",
				int64(op.dist)+1, ErrData)
		}
		st.applyMatch(op.dist)
		d.remainLen = int(op.n)
	default:
		panic(fmt.Errorf("lzma: unexpected operation %v", op))
	}
	return nil
}
