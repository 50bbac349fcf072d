// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// decodeChunks decodes the stream src, feeding the decoder inChunk bytes
// and providing outChunk bytes of output space per call. The stream must
// end with an end marker or after size bytes.
func decodeChunks(d *Decoder, src []byte, size, inChunk, outChunk int) (
	[]byte, error) {
	var out []byte
	buf := make([]byte, outChunk)
	for calls := 0; ; calls++ {
		if calls > 10*(len(src)+size)+100 {
			return out, errors.New("decoder doesn't make progress")
		}
		in := src
		if len(in) > inChunk {
			in = in[:inChunk]
		}
		q := buf
		finish := FinishAny
		if r := size - len(out); r <= len(q) {
			q, finish = q[:r], FinishEnd
		}
		k, m, status, err := d.Decode(q, in, finish)
		out = append(out, q[:k]...)
		src = src[m:]
		if err != nil {
			return out, err
		}
		switch status {
		case StatusFinishedWithMark:
			return out, nil
		case StatusMaybeFinishedWithoutMark:
			if finish == FinishEnd {
				return out, nil
			}
		case StatusNeedsMoreInput:
			if len(src) == 0 {
				return out, ErrInputEOF
			}
		}
	}
}

func TestDecoderChunks(t *testing.T) {
	data := append(testText(t, 30, 30000), randomBytes(4, 2000)...)
	data = append(data, bytes.Repeat([]byte("xyz"), 500)...)
	for _, eos := range []bool{false, true} {
		cfg := EncoderConfig{Level: 5, DictSize: 1 << 14, EOSMarker: eos}
		compressed, props, err := Compress(data, cfg, nil)
		if err != nil {
			t.Fatalf("Compress error %s", err)
		}
		for _, c := range [][2]int{{1, 1}, {1, 100}, {7, 3},
			{19, 1 << 16}, {20, 20}, {1 << 16, 1}, {4096, 4096}} {
			name := fmt.Sprintf("eos=%t/in=%d/out=%d", eos, c[0],
				c[1])
			t.Run(name, func(t *testing.T) {
				d, err := NewDecoder(DecoderConfig{
					Properties: props})
				if err != nil {
					t.Fatalf("NewDecoder error %s", err)
				}
				defer d.Release()
				out, err := decodeChunks(d, compressed,
					len(data), c[0], c[1])
				if err != nil {
					t.Fatalf("decodeChunks error %s", err)
				}
				if !bytes.Equal(out, data) {
					t.Fatalf("decoded data differs")
				}
				if d.Uncompressed() != int64(len(data)) {
					t.Fatalf("Uncompressed %d; want %d",
						d.Uncompressed(), len(data))
				}
			})
		}
	}
}

func TestDecoderReset(t *testing.T) {
	data := testText(t, 31, 10000)
	compressed, props, err := Compress(data,
		EncoderConfig{Level: 2, EOSMarker: true}, nil)
	if err != nil {
		t.Fatalf("Compress error %s", err)
	}
	d, err := NewDecoder(DecoderConfig{Properties: props})
	if err != nil {
		t.Fatalf("NewDecoder error %s", err)
	}
	for i := 0; i < 2; i++ {
		if i > 0 {
			d.Reset()
		}
		out, err := decodeChunks(d, compressed, len(data), 1000, 999)
		if err != nil {
			t.Fatalf("run %d: decodeChunks error %s", i, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("run %d: decoded data differs", i)
		}
		k, m, status, err := d.Decode(make([]byte, 10), nil,
			FinishAny)
		if k != 0 || m != 0 || status != StatusFinishedWithMark ||
			err != nil {
			t.Fatalf("Decode after end marker returned %d %d %v %v",
				k, m, status, err)
		}
	}
}

func TestDecompressStatus(t *testing.T) {
	data := testText(t, 32, 5000)
	compressed, props, err := Compress(data, EncoderConfig{Level: 1},
		nil)
	if err != nil {
		t.Fatalf("Compress error %s", err)
	}
	dst := make([]byte, 100)
	n, _, status, err := Decompress(dst, compressed, props, FinishAny)
	if err != nil {
		t.Fatalf("Decompress error %s", err)
	}
	if n != 100 || status != StatusNotFinished {
		t.Fatalf("Decompress returned %d %v; want 100 %v", n, status,
			StatusNotFinished)
	}
	if !bytes.Equal(dst, data[:100]) {
		t.Fatalf("decompressed prefix differs")
	}

	_, _, _, err = Decompress(dst, compressed, props, FinishEnd)
	if !errors.Is(err, ErrData) {
		t.Fatalf("Decompress with FinishEnd into short buffer"+
			" returned %v", err)
	}

	dst = make([]byte, len(data)+10)
	n, _, _, err = Decompress(dst, compressed, props, FinishAny)
	if !errors.Is(err, ErrInputEOF) {
		t.Fatalf("Decompress into larger buffer returned %v", err)
	}
	if n < len(data) || !bytes.Equal(dst[:len(data)], data) {
		t.Fatalf("Decompress into larger buffer returned %d bytes", n)
	}
}

func TestDecoderBadPrimer(t *testing.T) {
	compressed, props, err := Compress([]byte("abc"),
		EncoderConfig{}, nil)
	if err != nil {
		t.Fatalf("Compress error %s", err)
	}
	compressed[0] = 1
	_, _, _, err = Decompress(make([]byte, 3), compressed, props,
		FinishEnd)
	if !errors.Is(err, ErrData) {
		t.Fatalf("Decompress returned %v; want ErrData", err)
	}
}

// badStream encodes data followed by a match with the given distance.
func badStream(t *testing.T, data []byte, dist uint32) ([]byte, Properties) {
	t.Helper()
	var buf bytes.Buffer
	e, err := NewEncoder(&buf, EncoderConfig{DictSize: MinDictSize})
	if err != nil {
		t.Fatalf("NewEncoder error %s", err)
	}
	if _, err = e.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = e.encode(true); err != nil {
		t.Fatalf("encode error %s", err)
	}
	e.writeOp(matchOp(dist, 2))
	e.re.flush()
	if err = e.emit(); err != nil {
		t.Fatalf("emit error %s", err)
	}
	return buf.Bytes(), e.Properties()
}

func TestDecoderDistanceBounds(t *testing.T) {
	tests := []struct {
		name string
		size int
		dist uint32
	}{
		{"before start", 10, 10},
		{"far before start", 10, 1000},
		{"beyond dictionary", MinDictSize + 1000, MinDictSize},
	}
	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			data := randomBytes(5, c.size)
			compressed, props := badStream(t, data, c.dist)
			d, err := NewDecoder(DecoderConfig{Properties: props})
			if err != nil {
				t.Fatalf("NewDecoder error %s", err)
			}
			dst := make([]byte, c.size+2)
			n, _, _, err := d.Decode(dst, compressed, FinishAny)
			if !errors.Is(err, ErrData) {
				t.Fatalf("Decode returned %v; want ErrData",
					err)
			}
			if n != c.size {
				t.Fatalf("Decode returned %d bytes; want %d",
					n, c.size)
			}
			_, _, _, err2 := d.Decode(dst, compressed, FinishAny)
			if err2 != err {
				t.Fatalf("error not sticky: %v", err2)
			}
		})
	}
}

func TestDecoderValidDistance(t *testing.T) {
	// the largest valid distance must be accepted
	data := randomBytes(6, 100)
	compressed, props := badStream(t, data, 99)
	dst := make([]byte, 102)
	n, _, _, err := Decompress(dst, compressed, props, FinishEnd)
	if err != nil {
		t.Fatalf("Decompress error %s", err)
	}
	if n != 102 || !bytes.Equal(dst[100:], data[:2]) {
		t.Fatalf("unexpected match bytes %x", dst[100:n])
	}
}

func TestNewDecoderProps(t *testing.T) {
	if _, err := NewDecoderProps([]byte{0x5d, 0, 0, 1, 0}); err != nil {
		t.Fatalf("NewDecoderProps error %s", err)
	}
	_, err := NewDecoderProps([]byte{0xff, 0, 0, 1, 0})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("NewDecoderProps(0xff) returned %v", err)
	}
}
