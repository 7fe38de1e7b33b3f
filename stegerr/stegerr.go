// Package stegerr defines the error taxonomy shared by every component of
// the codec: a small set of sentinel kinds that callers can test for with
// errors.Is, each wrapping a descriptive message. InvalidPassword is
// deliberately absent here — per the frame codec's contract it is returned
// as a result value, never raised as an error.
package stegerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories from the codec's error
// handling design. Kinds are compared with errors.Is against the
// package-level sentinels below, not by switching on Kind directly.
type Kind error

var (
	// ErrInvalidArgument marks an out-of-range option, index, or size.
	ErrInvalidArgument Kind = errors.New("stegerr: invalid argument")
	// ErrInsufficientBytes marks a read or interleave that ran past the
	// end of its input buffer.
	ErrInsufficientBytes Kind = errors.New("stegerr: insufficient bytes")
	// ErrInsufficientCapacity marks a cover file too small to hold the
	// requested hidden frame.
	ErrInsufficientCapacity Kind = errors.New("stegerr: insufficient capacity")
	// ErrFileNotFound marks a required input path that does not exist.
	ErrFileNotFound Kind = errors.New("stegerr: file not found")
	// ErrIO marks an OS-level read/write failure.
	ErrIO Kind = errors.New("stegerr: io error")
)

// wrapped pairs a sentinel kind with a specific message and, optionally, the
// underlying cause. errors.Is(w, kind) matches via Is below; errors.As walks
// down to cause when one is present.
type wrapped struct {
	kind  Kind
	msg   string
	cause error
}

func (w *wrapped) Error() string { return w.msg }

// Is reports whether target is this error's kind sentinel, letting callers
// write errors.Is(err, stegerr.ErrIO) regardless of the message attached.
func (w *wrapped) Is(target error) bool { return target == w.kind }

func (w *wrapped) Unwrap() error { return w.cause }

func newf(kind Kind, format string, args ...any) error {
	return &wrapped{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Invalidf builds an ErrInvalidArgument with a formatted message.
func Invalidf(format string, args ...any) error {
	return newf(ErrInvalidArgument, format, args...)
}

// InsufficientBytesf builds an ErrInsufficientBytes with a formatted message.
func InsufficientBytesf(format string, args ...any) error {
	return newf(ErrInsufficientBytes, format, args...)
}

// InsufficientCapacityf builds an ErrInsufficientCapacity with a formatted message.
func InsufficientCapacityf(format string, args ...any) error {
	return newf(ErrInsufficientCapacity, format, args...)
}

// FileNotFoundf builds an ErrFileNotFound with a formatted message.
func FileNotFoundf(format string, args ...any) error {
	return newf(ErrFileNotFound, format, args...)
}

// IOf builds an ErrIO with a formatted message, typically wrapping an
// underlying *os.PathError or similar.
func IOf(format string, args ...any) error {
	return newf(ErrIO, format, args...)
}

// Wrap adapts an arbitrary I/O failure into the given kind, preserving the
// original error in the chain so errors.As still finds it.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: kind, msg: fmt.Sprintf("%s: %v", kind, err), cause: err}
}
