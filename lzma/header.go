// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen provides the length of the header of a classic .lzma file.
const HeaderLen = PropsLen + 8

// noHeaderSize defines the value of the size field for streams of unknown
// size. Such streams must be terminated by an end marker.
const noHeaderSize uint64 = 1<<64 - 1

// header is the header of a classic .lzma file.
type header struct {
	props Properties
	// uncompressed size; -1 means unknown
	size int64
}

// marshalBinary encodes the header.
func (h *header) marshalBinary() (data []byte, err error) {
	p, err := h.props.MarshalBinary()
	if err != nil {
		return nil, err
	}
	data = make([]byte, HeaderLen)
	copy(data, p)
	s := noHeaderSize
	if h.size >= 0 {
		s = uint64(h.size)
	}
	binary.LittleEndian.PutUint64(data[PropsLen:], s)
	return data, nil
}

// unmarshalBinary decodes the header.
func (h *header) unmarshalBinary(data []byte) error {
	if len(data) != HeaderLen {
		return fmt.Errorf("lzma: header must have %d bytes: %w",
			HeaderLen, ErrData)
	}
	var g header
	if err := g.props.UnmarshalBinary(data); err != nil {
		return err
	}
	s := binary.LittleEndian.Uint64(data[PropsLen:])
	switch {
	case s == noHeaderSize:
		g.size = -1
	case s >= 1<<63:
		return fmt.Errorf("lzma: uncompressed size %d too large: %w",
			s, ErrUnsupported)
	default:
		g.size = int64(s)
	}
	*h = g
	return nil
}

// ValidHeader checks for a valid classic .lzma file header. It is a
// heuristic used by tools to detect the format; the properties byte must be
// valid and the dictionary size must have the form 2^n or 2^n+2^(n-1).
func ValidHeader(data []byte) bool {
	var h header
	if err := h.unmarshalBinary(data); err != nil {
		return false
	}
	d := h.props.DictSize
	return d == 0xffffffff || d == roundDictSize(d) || d < MinDictSize
}
