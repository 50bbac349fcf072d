// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "errors"

// The errors returned by the package. Functions wrap them with additional
// context; use errors.Is to test for them.
var (
	// ErrData indicates corrupt compressed data.
	ErrData = errors.New("lzma: data error")
	// ErrMem is returned if the allocator couldn't provide a buffer.
	ErrMem = errors.New("lzma: out of memory")
	// ErrUnsupported reports properties that are outside the supported
	// range.
	ErrUnsupported = errors.New("lzma: unsupported properties")
	// ErrParam indicates an invalid parameter.
	ErrParam = errors.New("lzma: invalid parameter")
	// ErrInputEOF is returned if the compressed input ended before the
	// stream was complete.
	ErrInputEOF = errors.New("lzma: unexpected end of input")
	// ErrOutputEOF indicates that the output buffer is too small.
	ErrOutputEOF = errors.New("lzma: output buffer full")
	// ErrProgress is returned if the progress callback requested the
	// termination of the encoding.
	ErrProgress = errors.New("lzma: aborted by progress callback")
)

// errNeedInput is used internally by the range decoder if the input slice
// has been consumed completely.
var errNeedInput = errors.New("lzma: need more input")

// Status describes the state of the decoder after a call of Decode.
type Status int

// Status values returned by the Decoder.
const (
	StatusNotSpecified Status = iota
	// The end marker has been decoded.
	StatusFinishedWithMark
	// The output buffer is full and the stream is not finished.
	StatusNotFinished
	// All input has been consumed and the stream requires more.
	StatusNeedsMoreInput
	// The output is complete and the range decoder is in a state that
	// allows the stream to end without end marker.
	StatusMaybeFinishedWithoutMark
)

var statusNames = [...]string{
	StatusNotSpecified:             "not specified",
	StatusFinishedWithMark:         "finished with end marker",
	StatusNotFinished:              "not finished",
	StatusNeedsMoreInput:           "needs more input",
	StatusMaybeFinishedWithoutMark: "maybe finished without end marker",
}

// String returns a readable representation of the status value.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown status"
	}
	return statusNames[s]
}

// FinishMode tells the decoder how to treat the end of the output buffer.
type FinishMode int

const (
	// FinishAny allows the stream to continue after the output buffer has
	// been filled.
	FinishAny FinishMode = iota
	// FinishEnd requires the stream to end at the end of the output
	// buffer.
	FinishEnd
)
