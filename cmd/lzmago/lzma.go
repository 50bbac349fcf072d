// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/lzmacodec/lzma"
	"github.com/ulikunitz/lzmacodec/xlog"
)

type packer interface {
	outputPaths(path string) (outputPath, tmpPath string, err error)
	pack(w io.Writer, r io.Reader, opts *options, l xlog.Logger) (
		n int64, err error)
}

const lzmaSuffix = ".lzma"

// writerConfig converts the lzmago flags to the writer configuration.
// The size of the input is not known in advance, so the stream is
// terminated by the end marker.
func writerConfig(opts *options, l xlog.Logger) lzma.WriterConfig {
	cfg := lzma.WriterConfig{
		EncoderConfig: lzma.EncoderConfig{
			Level:  int(opts.preset),
			Logger: l,
		},
	}
	if opts.extreme {
		cfg.Mode = lzma.ModeNormal
		cfg.FastBytes = 64
	}
	return cfg
}

type lzmaPacker struct{}

func (p lzmaPacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if path == "" {
		err = errors.New("path is empty")
		return
	}
	if strings.HasSuffix(path, lzmaSuffix) {
		err = fmt.Errorf("path %s has suffix %s -- ignored",
			path, lzmaSuffix)
		return
	}
	out = path + lzmaSuffix
	tmp = out + ".pack"
	return
}

func (p lzmaPacker) pack(w io.Writer, r io.Reader, opts *options,
	l xlog.Logger) (n int64, err error) {
	bw := bufio.NewWriter(w)
	lw, err := writerConfig(opts, l).NewWriter(bw)
	if err != nil {
		return
	}
	n, err = io.Copy(lw, r)
	if err != nil {
		return
	}
	if err = lw.Close(); err != nil {
		return
	}
	err = bw.Flush()
	return
}

type lzmaUnpacker struct{}

func (u lzmaUnpacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if !strings.HasSuffix(path, lzmaSuffix) {
		err = fmt.Errorf("path %s has no suffix %s",
			path, lzmaSuffix)
		return
	}
	base := filepath.Base(path)
	if base == lzmaSuffix {
		err = fmt.Errorf(
			"path %s has only suffix %s as filename",
			path, lzmaSuffix)
		return
	}
	out = path[:len(path)-len(lzmaSuffix)]
	tmp = out + ".unpack"
	return
}

func (u lzmaUnpacker) pack(w io.Writer, r io.Reader, opts *options,
	l xlog.Logger) (n int64, err error) {
	// pack actually unpacks
	br := bufio.NewReader(r)
	lr, err := lzma.ReaderConfig{Logger: l}.NewReader(br)
	if err != nil {
		return
	}
	defer lr.Close()
	bw := bufio.NewWriter(w)
	if n, err = io.Copy(bw, lr); err != nil {
		return
	}
	err = bw.Flush()
	return
}

// signalHandler removes the temporary file if one of the termination
// signals is received.
func signalHandler(tmpPath string) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, termsigs...)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
			return
		case <-sigch:
			if tmpPath != "-" {
				os.Remove(tmpPath)
			}
			os.Exit(7)
		}
	}()
	return quit
}

func packFile(pck packer, path, tmpPath string, opts *options,
	l xlog.Logger) (err error) {
	// open reader
	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		fi, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}
		if r, err = os.Open(path); err != nil {
			return err
		}
		defer r.Close()
	}

	// open writer
	var w *os.File
	if tmpPath == "-" {
		w = os.Stdout
	} else {
		if opts.force {
			os.Remove(tmpPath)
		}
		w, err = os.OpenFile(tmpPath,
			os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); err == nil {
				err = cerr
			}
		}()
	}

	n, err := pck.pack(w, r, opts, l)
	xlog.Printf(l, "%d bytes processed", n)
	return err
}

// userPathError represents a path error presentable to a user. In
// difference to os.PathError it removes the information of the
// operation returning the error.
type userPathError struct {
	Path string
	Err  error
}

// Error provides the error string for the path error.
func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// userError converts a path error into an error message without the
// operation that caused it. For instance the information that lstat
// detected a missing file is not relevant for users of lzmago.
func userError(err error) error {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}

// processFile compresses or decompresses a single file. It returns false
// if the file couldn't be processed.
func processFile(path string, opts *options) bool {
	var pck packer
	if opts.decompress {
		pck = lzmaUnpacker{}
	} else {
		pck = lzmaPacker{}
	}
	outputPath, tmpPath, err := pck.outputPaths(path)
	if err != nil {
		opts.warn(userError(err))
		return false
	}
	if opts.stdout {
		outputPath, tmpPath = "-", "-"
	}
	if outputPath != "-" {
		_, err = os.Lstat(outputPath)
		if err == nil && !opts.force {
			opts.warnf("file %s exists", outputPath)
			return false
		}
	}
	defer func() {
		if tmpPath != "-" {
			os.Remove(tmpPath)
		}
	}()
	quit := signalHandler(tmpPath)
	defer close(quit)

	var l xlog.Logger
	if opts.verbose {
		l = xlog.WithPrefix(log.Default(), path+": ")
	}
	if err = packFile(pck, path, tmpPath, opts, l); err != nil {
		opts.warn(userError(err))
		return false
	}
	if tmpPath != "-" && outputPath != "-" {
		if err = os.Rename(tmpPath, outputPath); err != nil {
			opts.warn(userError(err))
			return false
		}
	}
	if !opts.keep && !opts.stdout && path != "-" {
		if err = os.Remove(path); err != nil {
			opts.warn(userError(err))
			return false
		}
	}
	return true
}
