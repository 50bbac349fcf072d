// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command lzmago compresses and decompresses files in the classic .lzma
// format.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ogier/pflag"
	"github.com/ulikunitz/lzmacodec/lzma"
)

const usageStr = `Usage: lzmago [OPTION]... [FILE]...
Compress or uncompress FILEs in the .lzma format (by default, compress FILES
in place).

  -c, --stdout      write to standard output and don't delete input files
  -d, --decompress  force decompression
  -e, --extreme     use the optimal parser for all presets
  -f, --force       force overwrite of output file
  -h, --help        give this help
  -k, --keep        keep (don't delete) input files
  -q, --quiet       suppress all warnings
  -v, --verbose     verbose mode
  -z, --compress    force compression
  -0 ... -9         compression preset; default is 5

With no file, or when FILE is -, read standard input.
`

type preset int

const defaultPreset preset = lzma.DefaultLevel

// filterArg removes the digits from a short option argument and records
// the last one as preset.
func (p *preset) filterArg(arg string) string {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return arg
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(arg))
	for _, c := range arg {
		if '0' <= c && c <= '9' {
			*p = preset(c - '0')
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

// filter removes the preset flags from args, which pflag cannot parse.
func (p *preset) filter(args []string) []string {
	out := make([]string, 1, len(args))
	out[0] = args[0]
	for i, arg := range args[1:] {
		if arg == "--" {
			out = append(out, args[1+i:]...)
			break
		}
		a := p.filterArg(arg)
		// a lone dash is left if the argument contained only digits
		if a == "-" && arg != "-" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

// options collects the flags that control the processing of a file.
type options struct {
	stdout     bool
	decompress bool
	extreme    bool
	force      bool
	keep       bool
	quiet      bool
	verbose    bool
	preset     preset
}

// warn prints a warning unless quiet mode is set.
func (o *options) warn(v ...interface{}) {
	if !o.quiet {
		log.Print(v...)
	}
}

// warnf prints a formatted warning unless quiet mode is set.
func (o *options) warnf(format string, v ...interface{}) {
	if !o.quiet {
		log.Printf(format, v...)
	}
}

func main() {
	// setup logger
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	// initialize flags
	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.SetInterspersed(true)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		help       = pflag.BoolP("help", "h", false, "")
		stdout     = pflag.BoolP("stdout", "c", false, "")
		decompress = pflag.BoolP("decompress", "d", false, "")
		compress   = pflag.BoolP("compress", "z", false, "")
		extreme    = pflag.BoolP("extreme", "e", false, "")
		force      = pflag.BoolP("force", "f", false, "")
		keep       = pflag.BoolP("keep", "k", false, "")
		quiet      = pflag.BoolP("quiet", "q", false, "")
		verbose    = pflag.BoolP("verbose", "v", false, "")
	)

	// process arguments
	opts := options{preset: defaultPreset}
	os.Args = opts.preset.filter(os.Args)
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if *compress && *decompress {
		log.Fatal("options -z and -d exclude each other")
	}
	opts.stdout = *stdout
	opts.decompress = *decompress
	opts.extreme = *extreme
	opts.force = *force
	opts.keep = *keep
	opts.quiet = *quiet
	opts.verbose = *verbose

	args := pflag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	failed := false
	for _, path := range args {
		if !processFile(path, &opts) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
