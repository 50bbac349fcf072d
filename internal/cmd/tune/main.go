// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command tune searches the encoder configurations that are the fastest
// for a set of compression ratio slots on the Silesia corpus. The
// results allow the selection of the level presets.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"sort"
	"testing"

	"github.com/kr/pretty"
	"github.com/ogier/pflag"
	"github.com/ulikunitz/lzmacodec/internal/tuning"
	"github.com/ulikunitz/lzmacodec/lzma"
)

type candidate struct {
	cfg      lzma.WriterConfig
	disabled bool
}

type preset struct {
	present bool
	cfg     lzma.WriterConfig
	result  testing.BenchmarkResult
}

// mbPerSec returns the Megabytes (1 000 000 bytes) per seconds that are
// processed.
func mbPerSec(r testing.BenchmarkResult) float64 {
	if v, ok := r.Extra["MB/s"]; ok {
		return v
	}
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func ratio(r testing.BenchmarkResult) float64 {
	if x, ok := r.Extra["c/u"]; ok {
		return x
	}
	return math.NaN()
}

// Returns the slot index the ratio qualifies for. If no slot can be found ok
// will be false.
func slot(slots []float64, ratio float64) (i int, ok bool) {
	for i, r := range slots {
		if ratio > r {
			return i - 1, i > 0
		}
	}
	return len(slots) - 1, true
}

// worse reports whether a cannot compress better than b. This is the
// case if a uses the same parser and match finder but limits all search
// parameters at most to those of b.
func worse(a, b *lzma.WriterConfig) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	x, y := &a.EncoderConfig, &b.EncoderConfig
	if x.Mode != y.Mode || x.MatchFinder != y.MatchFinder {
		return false
	}
	return x.DictSize <= y.DictSize && x.FastBytes <= y.FastBytes &&
		x.CutValue <= y.CutValue
}

func benchmark(c tuning.Compressor) testing.BenchmarkResult {
	return testing.Benchmark(compressorBenchmark(c))
}

func findPresets(slots []float64, candidates []candidate) []preset {
	if len(slots) == 0 {
		log.Fatalf("no slots defined")
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i] > slots[j]
	})
	fmt.Printf("slots %.3f\n", slots)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	presets := make([]preset, len(slots))

	i := 0
	n := len(candidates)
	for len(candidates) > 0 {
		k := len(candidates) - 1
		c := candidates[k]
		candidates = candidates[:k]
		if c.disabled {
			continue
		}
		n--

		i++
		result := benchmark(tuning.LZMA("lzma", c.cfg))
		fmt.Printf("%d-%d %s\n", i, n, result)
		si, ok := slot(slots, ratio(result))
		if !ok {
			for j := range candidates {
				p := &candidates[j]
				if p.disabled {
					continue
				}
				if worse(&p.cfg, &c.cfg) {
					p.disabled = true
					n--
				}
			}
			continue
		}
		v := mbPerSec(result)
		p := presets[si]
		if p.present && v <= mbPerSec(p.result) {
			fmt.Printf("slot %d - not faster\n", si+1)
			continue
		}
		presets[si] = preset{
			present: true,
			cfg:     c.cfg,
			result:  result,
		}
		fmt.Printf("slot %d - update\n", si+1)
		pretty.Println(c.cfg)
	}
	return presets
}

func printPresets(presets []preset) {
	fmt.Printf("\n\n### Result ###\n\n")

	for si, p := range presets {
		if si > 0 {
			fmt.Printf("\n")
		}
		if !p.present {
			fmt.Printf("slot %d - not present\n", si+1)
			continue
		}
		fmt.Printf("slot %d - \t%.3f c/u\t%.2f MB/s\n",
			si+1, ratio(p.result), mbPerSec(p.result))
		pretty.Println(p.cfg)
	}
}

func makeWriterConfig(mode lzma.Mode, mf lzma.MatchFinder, dictExp int,
	fastBytes int) lzma.WriterConfig {
	cfg := lzma.WriterConfig{
		EncoderConfig: lzma.EncoderConfig{
			Level:       lzma.MaxLevel,
			Mode:        mode,
			MatchFinder: mf,
			DictSize:    1 << uint(dictExp),
			FastBytes:   fastBytes,
		},
	}
	cfg.EncoderConfig.ApplyDefaults()
	return cfg
}

func appendCandidates(x []candidate) (y []candidate) {
	y = x
	for dictExp := 16; dictExp <= 24; dictExp += 2 {
		for _, fb := range []int{16, 32, 64, 128, 273} {
			y = append(y, candidate{cfg: makeWriterConfig(
				lzma.ModeFast, lzma.HC4, dictExp, fb)})
			for _, mf := range []lzma.MatchFinder{lzma.BT2,
				lzma.BT3, lzma.BT4} {
				y = append(y, candidate{cfg: makeWriterConfig(
					lzma.ModeNormal, mf, dictExp, fb)})
			}
		}
	}
	return y
}

// levelCandidates returns the configurations of the compression levels.
func levelCandidates() []candidate {
	var c []candidate
	for level := lzma.MinLevel; level <= lzma.MaxLevel; level++ {
		cfg := lzma.WriterConfig{
			EncoderConfig: lzma.EncoderConfig{Level: level},
		}
		cfg.EncoderConfig.ApplyDefaults()
		c = append(c, candidate{cfg: cfg})
	}
	return c
}

func printLevels() {
	for level, c := range levelCandidates() {
		r := benchmark(tuning.LZMA(fmt.Sprintf("level %d", level), c.cfg))
		fmt.Printf("level %d - \t%.3f c/u\t%.2f MB/s\n",
			level, ratio(r), mbPerSec(r))
	}
}

func printBaselines() {
	for _, c := range tuning.Baselines() {
		r := benchmark(c)
		fmt.Printf("%s - \t%.3f c/u\t%.2f MB/s\n",
			c.Name, ratio(r), mbPerSec(r))
	}
}

func main() {
	testing.Init()
	log.SetPrefix("tune: ")
	log.SetFlags(0)

	cmdName := os.Args[0]
	flags := pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	levels := flags.BoolP("levels", "l", false,
		"measure the compression levels only")
	baselines := flags.BoolP("baselines", "b", false,
		"measure flate, zstd and snappy")
	seed := flags.Int64("seed", 1, "seed for the order of the candidates")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	rand.Seed(*seed)

	if *baselines {
		printBaselines()
	}
	if *levels {
		printLevels()
		return
	}

	slots := []float64{0.34, 0.32, 0.30, 0.29, 0.28,
		0.27, 0.26, 0.25, 0.24, 0.23}
	printPresets(findPresets(slots, appendCandidates(nil)))
}
