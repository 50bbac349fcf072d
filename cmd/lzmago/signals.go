// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// termsigs contains the signals indicating the termination of the
// program. The temporary file is removed if one of them is received.
var termsigs = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGPIPE,
	syscall.SIGTERM,
	syscall.SIGXCPU,
	syscall.SIGXFSZ,
}
