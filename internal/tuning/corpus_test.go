// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package tuning

import (
	"bytes"
	"crypto/sha256"
	"io"
	"math/rand"
	"testing"
	"testing/fstest"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/lzmacodec/internal/randtxt"
	"github.com/ulikunitz/lzmacodec/lzma"
	"github.com/ulikunitz/zdata"
)

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("slow test")
	}
	configs := []struct {
		name string
		cfg  lzma.WriterConfig
	}{
		{"fast", lzma.WriterConfig{
			EncoderConfig: lzma.EncoderConfig{Level: 1},
		}},
		{"normal", lzma.WriterConfig{
			EncoderConfig: lzma.EncoderConfig{Level: 6},
		}},
	}

	files, err := Files(zdata.Silesia)
	if err != nil {
		t.Fatalf("Files(zdata.Silesia) error %s", err)
	}

	for _, c := range configs {
		c := c
		for _, f := range files {
			f := f
			t.Run(c.name+":"+f.Name, func(t *testing.T) {
				t.Parallel()
				s := sha256.Sum256(f.Data)
				hsum := s[:]
				decoded, err := RoundTrip(f.Data, c.cfg)
				if err != nil {
					t.Fatalf("%s: RoundTrip error %s",
						f.Name, err)
				}
				g := sha256.Sum256(decoded)
				if gsum := g[:]; !bytes.Equal(gsum, hsum) {
					t.Errorf("%s: got %x; want %x",
						f.Name, gsum, hsum)
				}
			})
		}
	}
}

func testCorpus(t *testing.T) fstest.MapFS {
	t.Helper()
	txt := make([]byte, 100000)
	if _, err := io.ReadFull(randtxt.NewReader(rand.NewSource(1)),
		txt); err != nil {
		t.Fatalf("ReadFull error %s", err)
	}
	return fstest.MapFS{
		"text.txt":  {Data: txt},
		"dir/a.bin": {Data: bytes.Repeat([]byte{0, 1, 2, 3}, 5000)},
		"dir/empty": {Data: nil},
	}
}

func TestFiles(t *testing.T) {
	files, err := Files(testCorpus(t))
	if err != nil {
		t.Fatalf("Files error %s", err)
	}
	if len(files) != 3 {
		t.Fatalf("Files returned %d files; want 3", len(files))
	}
	if n := Size(files); n != 120000 {
		t.Fatalf("Size returned %d; want %d", n, 120000)
	}
}

// decompress decodes the output of the baseline compressors.
func decompress(name string, data []byte) ([]byte, error) {
	switch name {
	case "flate":
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		return io.ReadAll(r)
	case "zstd":
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "snappy":
		return io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
	}
	panic("unknown compressor " + name)
}

func TestBaselines(t *testing.T) {
	files, err := Files(testCorpus(t))
	if err != nil {
		t.Fatalf("Files error %s", err)
	}
	lz, err := CompressedSize(files, LZMA("lzma", lzma.WriterConfig{
		EncoderConfig: lzma.EncoderConfig{Level: 5}}))
	if err != nil {
		t.Fatalf("CompressedSize(lzma) error %s", err)
	}
	for _, c := range Baselines() {
		n, err := CompressedSize(files, c)
		if err != nil {
			t.Fatalf("CompressedSize(%s) error %s", c.Name, err)
		}
		t.Logf("%s %d lzma %d", c.Name, n, lz)
		if n <= 0 || n >= Size(files) {
			t.Fatalf("%s: unexpected compressed size %d", c.Name, n)
		}
		for _, f := range files {
			buf := new(bytes.Buffer)
			if err = c.Compress(buf, f.Data); err != nil {
				t.Fatalf("%s: Compress error %s", c.Name, err)
			}
			d, err := decompress(c.Name, buf.Bytes())
			if err != nil {
				t.Fatalf("%s: decompress error %s", c.Name, err)
			}
			if !bytes.Equal(d, f.Data) {
				t.Fatalf("%s: %s decompressed incorrectly",
					c.Name, f.Name)
			}
		}
	}
	if snappySize, _ := CompressedSize(files, Snappy()); lz >= snappySize {
		t.Fatalf("lzma %d not smaller than snappy %d", lz, snappySize)
	}
}
