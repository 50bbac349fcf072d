// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"
)

// encodeChunks writes data in chunks of the given size and returns the
// compressed stream.
func encodeChunks(t *testing.T, data []byte, cfg EncoderConfig,
	chunk int) []byte {
	t.Helper()
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, cfg)
	if err != nil {
		t.Fatalf("NewEncoder error %s", err)
	}
	for p := data; len(p) > 0; {
		k := chunk
		if k > len(p) {
			k = len(p)
		}
		n, err := e.Write(p[:k])
		if err != nil {
			t.Fatalf("Write error %s", err)
		}
		if n != k {
			t.Fatalf("Write returned %d; want %d", n, k)
		}
		p = p[k:]
	}
	if err = e.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if e.Uncompressed() != int64(len(data)) {
		t.Fatalf("Uncompressed %d; want %d", e.Uncompressed(),
			len(data))
	}
	if e.Compressed() != int64(buf.Len()) {
		t.Fatalf("Compressed %d; want %d", e.Compressed(), buf.Len())
	}
	return buf.Bytes()
}

func TestEncoderChunked(t *testing.T) {
	data := append(testText(t, 20, 100000), randomBytes(3, 3000)...)
	for _, mode := range []Mode{ModeFast, ModeNormal} {
		cfg := EncoderConfig{DictSize: 1 << 14, Mode: mode}
		want := encodeChunks(t, data, cfg, len(data))
		for _, chunk := range []int{1, 7, 1000, 4096, 65536} {
			got := encodeChunks(t, data, cfg, chunk)
			if !bytes.Equal(got, want) {
				t.Fatalf("%v: output for chunk size %d"+
					" differs", mode, chunk)
			}
		}
		var buf bytes.Buffer
		e, err := NewEncoder(&buf, cfg)
		if err != nil {
			t.Fatalf("NewEncoder error %s", err)
		}
		r := iotest.OneByteReader(bytes.NewReader(data))
		n, err := e.Encode(r, nil)
		if err != nil {
			t.Fatalf("Encode error %s", err)
		}
		if n != int64(len(data)) {
			t.Fatalf("Encode returned %d; want %d", n, len(data))
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("%v: output of Encode differs", mode)
		}
	}
}

func TestEncoderNormalize(t *testing.T) {
	data := testText(t, 21, 60000)
	for _, mf := range matchFinders {
		cfg := EncoderConfig{
			Level:       5,
			DictSize:    MinDictSize,
			MatchFinder: mf,
		}
		want := encodeChunks(t, data, cfg, len(data))
		var buf bytes.Buffer
		e, err := NewEncoder(&buf, cfg)
		if err != nil {
			t.Fatalf("NewEncoder error %s", err)
		}
		e.mf.normLimit = e.mf.cyclicSize + 10007
		if _, err = e.Write(data); err != nil {
			t.Fatalf("Write error %s", err)
		}
		if err = e.Close(); err != nil {
			t.Fatalf("Close error %s", err)
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("%v: normalization changes the output", mf)
		}
	}
}

func TestEncoderReset(t *testing.T) {
	data := testText(t, 22, 20000)
	cfg := EncoderConfig{Level: 5}
	want := encodeChunks(t, data, cfg, len(data))
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, cfg)
	if err != nil {
		t.Fatalf("NewEncoder error %s", err)
	}
	for i := 0; i < 3; i++ {
		buf.Reset()
		if i > 0 {
			if err = e.Reset(&buf); err != nil {
				t.Fatalf("Reset error %s", err)
			}
		}
		if _, err = e.Write(data); err != nil {
			t.Fatalf("Write error %s", err)
		}
		if err = e.Close(); err != nil {
			t.Fatalf("Close error %s", err)
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Fatalf("run %d: output differs", i)
		}
	}
	if _, err = e.Write(data); err == nil {
		t.Fatalf("Write after Close succeeded")
	}
	if err = e.Close(); err == nil {
		t.Fatalf("second Close succeeded")
	}
}

func TestEncoderConfigVerify(t *testing.T) {
	tests := []struct {
		name string
		cfg  EncoderConfig
		err  error
	}{
		{"level", EncoderConfig{Level: 10}, ErrParam},
		{"lc", EncoderConfig{Properties: &Properties{LC: 9}},
			ErrUnsupported},
		{"dict", EncoderConfig{DictSize: MaxDictSize + 1}, ErrParam},
		{"fb", EncoderConfig{FastBytes: 4}, ErrParam},
		{"fb", EncoderConfig{FastBytes: 274}, ErrParam},
		{"mode", EncoderConfig{Mode: 3}, ErrParam},
		{"mf", EncoderConfig{MatchFinder: 5}, ErrParam},
		{"cut", EncoderConfig{CutValue: -1}, ErrParam},
		{"reduce", EncoderConfig{ReduceSize: -1}, ErrParam},
	}
	for _, c := range tests {
		cfg := c.cfg
		if err := cfg.Verify(); !errors.Is(err, c.err) {
			t.Errorf("%s: Verify returned %v; want %v", c.name, err,
				c.err)
		}
	}
	var cfg EncoderConfig
	if err := cfg.Verify(); err != nil {
		t.Fatalf("Verify of zero configuration error %s", err)
	}
	if cfg.Mode != ModeFast || cfg.MatchFinder != HC4 ||
		cfg.DictSize != 1<<14 || cfg.FastBytes != 32 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	cfg = EncoderConfig{Level: 7}
	if err := cfg.Verify(); err != nil {
		t.Fatalf("Verify error %s", err)
	}
	if cfg.Mode != ModeNormal || cfg.MatchFinder != BT4 ||
		cfg.DictSize != 1<<26 || cfg.FastBytes != 64 ||
		cfg.CutValue != 48 {
		t.Fatalf("unexpected defaults for level 7 %+v", cfg)
	}
}

func TestEncoderProperties(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, EncoderConfig{
		Properties: &Properties{LC: 1, LP: 2, PB: 3},
		DictSize:   5000,
	})
	if err != nil {
		t.Fatalf("NewEncoder error %s", err)
	}
	p := e.Properties()
	want := Properties{LC: 1, LP: 2, PB: 3, DictSize: 6 << 10}
	if p != want {
		t.Fatalf("Properties %v; want %v", p, want)
	}
	if err = e.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if buf.Len() != 5 {
		t.Fatalf("empty stream has %d bytes; want 5", buf.Len())
	}
}

type failAllocator struct{}

func (failAllocator) Alloc(n int) []byte { return nil }
func (failAllocator) Free(p []byte)      {}

func TestAllocatorFailure(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewEncoder(&buf, EncoderConfig{Allocator: failAllocator{}})
	if !errors.Is(err, ErrMem) {
		t.Fatalf("NewEncoder returned %v; want ErrMem", err)
	}
	_, err = NewDecoder(DecoderConfig{
		Properties: Properties{LC: 3, PB: 2, DictSize: 1 << 16},
		Allocator:  failAllocator{},
	})
	if !errors.Is(err, ErrMem) {
		t.Fatalf("NewDecoder returned %v; want ErrMem", err)
	}
}
