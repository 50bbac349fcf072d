// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"sync"
	"testing"

	"github.com/ulikunitz/lzmacodec/internal/tuning"
	"github.com/ulikunitz/zdata"
)

var silesia struct {
	once  sync.Once
	files []tuning.File
	size  int64
	err   error
}

func silesiaFiles() (files []tuning.File, size int64, err error) {
	silesia.once.Do(func() {
		silesia.files, silesia.err = tuning.Files(zdata.Silesia)
		silesia.size = tuning.Size(silesia.files)
	})
	return silesia.files, silesia.size, silesia.err
}

// compressorBenchmark returns the benchmark function for the compressor
// over the Silesia corpus. The compression ratio is reported as c/u
// metric.
func compressorBenchmark(c tuning.Compressor) func(b *testing.B) {
	return func(b *testing.B) {
		files, size, err := silesiaFiles()
		if err != nil {
			b.Fatalf("silesiaFiles() error %s", err)
		}
		b.SetBytes(size)
		b.ResetTimer()
		var compressedSize int64
		for i := 0; i < b.N; i++ {
			compressedSize, err = tuning.CompressedSize(files, c)
			if err != nil {
				b.Fatalf("%s: CompressedSize error %s", c.Name, err)
			}
		}
		b.StopTimer()
		b.ReportMetric(float64(compressedSize)/float64(size), "c/u")
	}
}
