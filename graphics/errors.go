// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

import (
	"errors"
	"fmt"
)

// Code is one of the errno-style response codes from spec section 7. These
// are wire-level response codes, not Go exception types: every command
// handler recovers from them locally and returns a formatted response.
type Code string

const (
	EINVAL  Code = "EINVAL"  // malformed parameters, dimension/format/size mismatch, bad action/selector, unsupported compression
	EBADF   Code = "EBADF"   // filesystem or mmap failure obtaining payload
	ENOMEM  Code = "ENOMEM"  // allocation failure for staging buffers
	ENODATA Code = "ENODATA" // decoded payload shorter than required
	EFBIG   Code = "EFBIG"   // payload exceeds per-image ceiling
	EILSEQ  Code = "EILSEQ"  // follow-on chunk without a matching loading image
	ENOENT  Code = "ENOENT"  // put/delete references a missing image
)

// CommandError is a recoverable, per-command failure that becomes a
// formatted response (section 4.9) rather than propagating as a Go error
// to the embedder, except where the embedder explicitly asks for the
// underlying error via errors.As.
type CommandError struct {
	Code    Code
	Message string
	Err     error // optional wrapped cause, e.g. an *os.PathError from mmap
}

func (e *CommandError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *CommandError) Unwrap() error { return e.Err }

func newErr(code Code, format string, args ...any) *CommandError {
	return &CommandError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(code Code, err error, format string, args ...any) *CommandError {
	return &CommandError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrInvalid is the sentinel wrapped by the Parse* functions in command.go
// so callers can use errors.Is without depending on CommandError.
var ErrInvalid = errors.New("invalid value")

// ErrNoLoadingImage is returned internally when a follow-on chunk arrives
// with no matching in-progress transmission.
var ErrNoLoadingImage = errors.New("no loading image")

// ErrImageNotFound is returned internally when a put/delete references an
// image that does not exist.
var ErrImageNotFound = errors.New("image not found")
