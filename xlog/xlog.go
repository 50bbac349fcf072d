// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

/*
Package xlog provides the debug output of encoder and decoder sessions.

Every session of the lzma package may carry its own Logger. A nil Logger
disables the output; the functions of this package check for it, so that
no formatting is done for disabled loggers. The *log.Logger type of the
standard library supports the interface.
*/
package xlog

import "fmt"

// Logger is the interface required for the debug output. The log.Logger
// type supports it.
type Logger interface {
	Output(calldepth int, s string) error
}

// Print outputs the arguments using the logger. If the logger is nil nothing
// will be printed.
func Print(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprint(v...))
	}
}

// Printf prints the arguments using the format string. If the logger argument
// is nil nothing will be printed.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println prints the arguments and adds a newline. If the logger argument is
// nil nothing will be printed.
func Println(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}

// prefixLogger adds a prefix to every message.
type prefixLogger struct {
	l      Logger
	prefix string
}

func (p *prefixLogger) Output(calldepth int, s string) error {
	return p.l.Output(calldepth+1, p.prefix+s)
}

// WithPrefix returns a logger that puts prefix in front of every message.
// The command line tool uses it to mark the messages of every file. A nil
// logger stays nil.
func WithPrefix(l Logger, prefix string) Logger {
	if l == nil {
		return nil
	}
	return &prefixLogger{l: l, prefix: prefix}
}

// Func adapts an ordinary function to the Logger interface. Tests use it
// to collect the messages.
type Func func(s string)

// Output calls f with s.
func (f Func) Output(calldepth int, s string) error {
	f(s)
	return nil
}
