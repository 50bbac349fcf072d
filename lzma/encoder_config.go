// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"fmt"

	"github.com/ulikunitz/lzmacodec/xlog"
)

// Mode selects the parser of the encoder.
type Mode int

// Parser modes. The zero value selects the mode of the compression level.
const (
	// ModeFast uses a greedy parser with a single look-ahead.
	ModeFast Mode = iota + 1
	// ModeNormal computes the cheapest encoding over a window of up to
	// numOpts bytes.
	ModeNormal
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeNormal:
		return "normal"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Compression levels.
const (
	MinLevel     = 0
	MaxLevel     = 9
	DefaultLevel = 5
)

// Limits for the number of fast bytes.
const (
	MinFastBytes = 5
	MaxFastBytes = maxMatchLen
)

// maxCutValue limits the number of candidates checked by the match finder.
const maxCutValue = 1 << 30

// defaultProperties are used if the configuration doesn't provide
// properties.
var defaultProperties = Properties{LC: 3, LP: 0, PB: 2}

// EncoderConfig defines the parameters of an encoder session. Fields with
// zero values are replaced by the defaults of the compression level.
type EncoderConfig struct {
	// compression level 0-9; the zero value is level 0
	Level int

	// lc, lp and pb; a nil value selects lc=3, lp=0, pb=2. A non-zero
	// DictSize of the properties is used if DictSize is zero.
	Properties *Properties

	// DictSize is the size of the dictionary. Values below MinDictSize
	// are raised to it.
	DictSize uint32

	// FastBytes is the length of a match that is accepted without
	// further search (5-273).
	FastBytes int

	Mode        Mode
	MatchFinder MatchFinder
	// maximum number of candidates checked per position
	CutValue int

	// EOSMarker requests the end-of-stream marker at the end of the
	// stream.
	EOSMarker bool

	// ReduceSize is the expected size of the input. If it is positive
	// and smaller than the dictionary, the dictionary is reduced.
	ReduceSize int64

	// Allocator provides the buffer for the input window. If nil the
	// DefaultAllocator is used.
	Allocator Allocator

	// Logger receives debug output of the session. Nil disables it.
	Logger xlog.Logger
}

// levelDictSize returns the default dictionary size of the level.
func levelDictSize(level int) uint32 {
	switch {
	case level <= 5:
		return 1 << (2*uint(level) + 14)
	case level == 6:
		return 1 << 25
	}
	return 1 << 26
}

// reduceDictSize reduces the dictionary size n to the smallest value of
// the form 2^k or 3*2^k that is not smaller than size.
func reduceDictSize(n uint32, size int64) uint32 {
	if size <= 0 || size >= int64(n) {
		return n
	}
	r := roundDictSize(uint32(size))
	if r < n {
		return r
	}
	return n
}

// ApplyDefaults replaces zero values by the defaults of the level.
func (c *EncoderConfig) ApplyDefaults() {
	if c.Properties == nil {
		p := defaultProperties
		c.Properties = &p
	}
	if c.DictSize == 0 {
		if c.Properties.DictSize != 0 {
			c.DictSize = c.Properties.DictSize
		} else {
			c.DictSize = levelDictSize(c.Level)
		}
	}
	c.DictSize = reduceDictSize(c.DictSize, c.ReduceSize)
	if c.DictSize < MinDictSize {
		c.DictSize = MinDictSize
	}
	if c.Mode == 0 {
		if c.Level < 5 {
			c.Mode = ModeFast
		} else {
			c.Mode = ModeNormal
		}
	}
	if c.MatchFinder == 0 {
		if c.Mode == ModeFast {
			c.MatchFinder = HC4
		} else {
			c.MatchFinder = BT4
		}
	}
	if c.FastBytes == 0 {
		if c.Level < 7 {
			c.FastBytes = 32
		} else {
			c.FastBytes = 64
		}
	}
	if c.CutValue == 0 {
		c.CutValue = 16 + c.FastBytes/2
		if c.MatchFinder == HC4 {
			c.CutValue /= 2
		}
	}
	if c.Allocator == nil {
		c.Allocator = DefaultAllocator
	}
}

// Verify applies the defaults and checks the configuration.
func (c *EncoderConfig) Verify() error {
	if c == nil {
		return fmt.Errorf("lzma: encoder configuration is nil: %w",
			ErrParam)
	}
	if !(MinLevel <= c.Level && c.Level <= MaxLevel) {
		return fmt.Errorf("lzma: level %d out of range: %w", c.Level,
			ErrParam)
	}
	c.ApplyDefaults()
	if err := c.Properties.Verify(); err != nil {
		return err
	}
	if c.DictSize > MaxDictSize {
		return fmt.Errorf("lzma: dictionary size %d exceeds %d: %w",
			c.DictSize, MaxDictSize, ErrParam)
	}
	if !(MinFastBytes <= c.FastBytes && c.FastBytes <= MaxFastBytes) {
		return fmt.Errorf("lzma: fast bytes %d out of range: %w",
			c.FastBytes, ErrParam)
	}
	if !(ModeFast <= c.Mode && c.Mode <= ModeNormal) {
		return fmt.Errorf("lzma: invalid mode %v: %w", c.Mode, ErrParam)
	}
	if !(BT2 <= c.MatchFinder && c.MatchFinder <= HC4) {
		return fmt.Errorf("lzma: invalid match finder %v: %w",
			c.MatchFinder, ErrParam)
	}
	if !(1 <= c.CutValue && c.CutValue <= maxCutValue) {
		return fmt.Errorf("lzma: cut value %d out of range: %w",
			c.CutValue, ErrParam)
	}
	if c.ReduceSize < 0 {
		return fmt.Errorf("lzma: negative reduce size: %w", ErrParam)
	}
	return nil
}

// properties returns the properties written into the stream header. The
// dictionary size is rounded.
func (c *EncoderConfig) properties() Properties {
	p := *c.Properties
	p.DictSize = roundDictSize(c.DictSize)
	return p
}
