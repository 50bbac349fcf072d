// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package tuning supports the measurement of compression presets on a
// corpus of files. Besides the lzma writer it provides the flate, zstd and
// snappy compressors as baselines.
package tuning

import (
	"bytes"
	"io"
	"io/fs"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/lzmacodec/lzma"
)

// File is a file of the corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all regular files of the corpus.
func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.n += int64(n)
	return n, nil
}

// Compressor compresses data completely into w.
type Compressor struct {
	Name     string
	Compress func(w io.Writer, data []byte) error
}

// LZMA returns the compressor for the classic .lzma format using the
// writer configuration. The size of every file is stored in the header.
func LZMA(name string, cfg lzma.WriterConfig) Compressor {
	return Compressor{
		Name: name,
		Compress: func(w io.Writer, data []byte) error {
			c := cfg
			c.SizeInHeader = true
			c.Size = int64(len(data))
			lw, err := c.NewWriter(w)
			if err != nil {
				return err
			}
			if _, err = lw.Write(data); err != nil {
				return err
			}
			return lw.Close()
		},
	}
}

// Flate returns the deflate compressor for the given level.
func Flate(level int) Compressor {
	return Compressor{
		Name: "flate",
		Compress: func(w io.Writer, data []byte) error {
			fw, err := flate.NewWriter(w, level)
			if err != nil {
				return err
			}
			if _, err = fw.Write(data); err != nil {
				return err
			}
			return fw.Close()
		},
	}
}

// Zstd returns the zstd compressor for the given level.
func Zstd(level zstd.EncoderLevel) Compressor {
	return Compressor{
		Name: "zstd",
		Compress: func(w io.Writer, data []byte) error {
			zw, err := zstd.NewWriter(w,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderConcurrency(1))
			if err != nil {
				return err
			}
			if _, err = zw.Write(data); err != nil {
				zw.Close()
				return err
			}
			return zw.Close()
		},
	}
}

// Snappy returns the snappy compressor using the framing format.
func Snappy() Compressor {
	return Compressor{
		Name: "snappy",
		Compress: func(w io.Writer, data []byte) error {
			sw := snappy.NewBufferedWriter(w)
			if _, err := sw.Write(data); err != nil {
				return err
			}
			return sw.Close()
		},
	}
}

// Baselines returns the compressors the lzma presets are compared with.
func Baselines() []Compressor {
	return []Compressor{
		Flate(flate.BestCompression),
		Zstd(zstd.SpeedBestCompression),
		Snappy(),
	}
}

// CompressedSize compresses every file and returns the total size of the
// compressed files.
func CompressedSize(files []File, c Compressor) (compressedSize int64,
	err error) {
	for _, f := range files {
		cw := &countWriter{}
		if err = c.Compress(cw, f.Data); err != nil {
			return compressedSize, err
		}
		compressedSize += cw.n
	}
	return compressedSize, nil
}

// RoundTrip compresses data with the lzma writer and decompresses it
// again.
func RoundTrip(data []byte, cfg lzma.WriterConfig) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := LZMA("", cfg).Compress(buf, data); err != nil {
		return nil, err
	}
	r, err := lzma.NewReader(buf)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
