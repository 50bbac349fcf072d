// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"testing/iotest"

	kjklzma "github.com/kjk/lzma"
	"github.com/ulikunitz/lzmacodec/xlog"
	xzlzma "github.com/ulikunitz/xz/lzma"
)

func TestWriterCycle(t *testing.T) {
	orig := testText(t, 40, 80000)
	tests := []struct {
		name string
		cfg  WriterConfig
	}{
		{"eos", WriterConfig{EncoderConfig: EncoderConfig{Level: 5}}},
		{"size", WriterConfig{
			EncoderConfig: EncoderConfig{Level: 2},
			SizeInHeader:  true,
			Size:          int64(len(orig)),
		}},
		{"size+eos", WriterConfig{
			EncoderConfig: EncoderConfig{Level: 6, EOSMarker: true},
			SizeInHeader:  true,
			Size:          int64(len(orig)),
		}},
	}
	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			w, err := c.cfg.NewWriter(buf)
			if err != nil {
				t.Fatalf("NewWriter error %s", err)
			}
			n, err := w.Write(orig)
			if err != nil {
				t.Fatalf("w.Write error %s", err)
			}
			if n != len(orig) {
				t.Fatalf("w.Write returned %d; want %d", n,
					len(orig))
			}
			if err = w.Close(); err != nil {
				t.Fatalf("w.Close error %s", err)
			}
			t.Logf("buf.Len() %d len(orig) %d", buf.Len(),
				len(orig))
			if buf.Len() > len(orig)/2 {
				t.Errorf("buf.Len()=%d; too large", buf.Len())
			}
			r, err := NewReader(
				iotest.HalfReader(bytes.NewReader(buf.Bytes())))
			if err != nil {
				t.Fatalf("NewReader error %s", err)
			}
			if c.cfg.SizeInHeader && r.Size() != int64(len(orig)) {
				t.Fatalf("r.Size() = %d; want %d", r.Size(),
					len(orig))
			}
			if r.Properties() != w.Properties() {
				t.Fatalf("properties %v; want %v",
					r.Properties(), w.Properties())
			}
			decoded, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll(r) error %s", err)
			}
			if !bytes.Equal(orig, decoded) {
				t.Fatalf("decoded file differs from original")
			}
			if err = r.Close(); err != nil {
				t.Fatalf("r.Close error %s", err)
			}
		})
	}
}

func TestWriterSize(t *testing.T) {
	cfg := WriterConfig{SizeInHeader: true, Size: 10}
	w, err := cfg.NewWriter(io.Discard)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	n, err := w.Write([]byte("0123456789abc"))
	if !errors.Is(err, ErrParam) || n != 10 {
		t.Fatalf("Write returned %d, %v", n, err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}

	w, err = cfg.NewWriter(io.Discard)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if _, err = w.Write([]byte("0123")); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); !errors.Is(err, ErrParam) {
		t.Fatalf("Close of short stream returned %v", err)
	}

	cfg.Size = -1
	if _, err = cfg.NewWriter(io.Discard); !errors.Is(err, ErrParam) {
		t.Fatalf("NewWriter with negative size returned %v", err)
	}
}

func TestReaderTruncated(t *testing.T) {
	orig := testText(t, 41, 20000)
	buf := new(bytes.Buffer)
	w, err := NewWriter(buf)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if _, err = w.Write(orig); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	data := buf.Bytes()
	for _, n := range []int{HeaderLen - 1, len(data) / 2, len(data) - 1} {
		r, err := NewReader(bytes.NewReader(data[:n]))
		if err == nil {
			_, err = io.ReadAll(r)
		}
		if !errors.Is(err, ErrInputEOF) {
			t.Fatalf("truncated at %d: error %v; want ErrInputEOF",
				n, err)
		}
	}
}

func TestReaderSizeMismatch(t *testing.T) {
	orig := []byte(strings.Repeat("size mismatch ", 100))
	compressed, props, err := Compress(orig,
		EncoderConfig{EOSMarker: true}, nil)
	if err != nil {
		t.Fatalf("Compress error %s", err)
	}
	// header size larger than the stream
	h := header{props: props, size: int64(len(orig)) + 5}
	data, err := h.marshalBinary()
	if err != nil {
		t.Fatalf("marshalBinary error %s", err)
	}
	data = append(data, compressed...)
	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	if _, err = io.ReadAll(r); !errors.Is(err, ErrData) {
		t.Fatalf("ReadAll returned %v; want ErrData", err)
	}
}

func TestReaderLogger(t *testing.T) {
	var sb strings.Builder
	l := xlog.WithPrefix(log.New(&sb, "", 0), "test: ")
	buf := new(bytes.Buffer)
	cfg := WriterConfig{EncoderConfig: EncoderConfig{Logger: l}}
	w, err := cfg.NewWriter(buf)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if _, err = io.WriteString(w, "hello, hello, hello"); err != nil {
		t.Fatalf("WriteString error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	r, err := ReaderConfig{Logger: l}.NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	if _, err = io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	s := sb.String()
	t.Logf("log:\n%s", s)
	if !strings.Contains(s, "test: lzma: encoder") ||
		!strings.Contains(s, "finished with end marker") {
		t.Fatalf("log output incomplete")
	}
}

func TestInteropReader(t *testing.T) {
	orig := testText(t, 42, 50000)
	buf := new(bytes.Buffer)
	w, err := xzlzma.NewWriter(buf)
	if err != nil {
		t.Fatalf("xz lzma.NewWriter error %s", err)
	}
	if _, err = w.Write(orig); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	if !bytes.Equal(decoded, orig) {
		t.Fatalf("stream of xz lzma writer decoded incorrectly")
	}
}

func TestInteropWriter(t *testing.T) {
	orig := testText(t, 43, 50000)
	for _, cfg := range []WriterConfig{
		{EncoderConfig: EncoderConfig{Level: 1}},
		{EncoderConfig: EncoderConfig{Level: 7}, SizeInHeader: true,
			Size: int64(len(orig))},
	} {
		buf := new(bytes.Buffer)
		w, err := cfg.NewWriter(buf)
		if err != nil {
			t.Fatalf("NewWriter error %s", err)
		}
		if _, err = w.Write(orig); err != nil {
			t.Fatalf("Write error %s", err)
		}
		if err = w.Close(); err != nil {
			t.Fatalf("Close error %s", err)
		}
		r, err := xzlzma.NewReader(buf)
		if err != nil {
			t.Fatalf("xz lzma.NewReader error %s", err)
		}
		decoded, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("xz lzma ReadAll error %s", err)
		}
		if !bytes.Equal(decoded, orig) {
			t.Fatalf("xz lzma reader decoded our stream" +
				" incorrectly")
		}
	}
}

func TestInteropKJK(t *testing.T) {
	orig := testText(t, 44, 30000)

	buf := new(bytes.Buffer)
	kw := kjklzma.NewWriterSizeLevel(buf, int64(len(orig)), 5)
	if _, err := kw.Write(orig); err != nil {
		t.Fatalf("kjk Write error %s", err)
	}
	if err := kw.Close(); err != nil {
		t.Fatalf("kjk Close error %s", err)
	}
	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	if !bytes.Equal(decoded, orig) {
		t.Fatalf("stream of kjk writer decoded incorrectly")
	}

	buf.Reset()
	w, err := NewWriter(buf)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if _, err = w.Write(orig); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	kr := kjklzma.NewReader(buf)
	defer kr.Close()
	decoded, err = io.ReadAll(kr)
	if err != nil {
		t.Fatalf("kjk ReadAll error %s", err)
	}
	if !bytes.Equal(decoded, orig) {
		t.Fatalf("kjk reader decoded our stream incorrectly")
	}
}
