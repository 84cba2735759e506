package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrOutOfBounds     = errors.New("read out of bounds")
	ErrUnknownTag      = errors.New("unknown struct tag")
	ErrCorrupt         = errors.New("corrupt data")
	ErrVIntOverflow    = errors.New("vint overflow")
	ErrFrameDeltaRange = errors.New("frame delta out of range")
)

// OutOfBoundsError reports a read that needed more bits than the buffer had left.
type OutOfBoundsError struct {
	BitPos int64 // absolute bit position of the failed read
	Need   int   // bits requested
	Have   int64 // bits remaining
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %d bits at byte %d bit %d: only %d bits left",
		e.Need, e.BitPos/8, e.BitPos%8, e.Have)
}

func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// UnknownTagError is returned when a struct tree holds a tag outside 0..9.
type UnknownTagError struct {
	Tag byte
	Pos int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown struct tag 0x%02x at byte %d", e.Tag, e.Pos)
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// CorruptError covers structurally invalid input: negative counts, runaway
// nesting, values that do not fit their declared width.
type CorruptError struct {
	Pos    int
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt data at byte %d: %s", e.Pos, e.Reason)
}

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// PathError represents a decoding error with the path of struct keys and
// array indices leading to it.
type PathError struct {
	Path []string // e.g., ["0", "[2]", "1"]
	Err  error    // underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at struct path %s: %v", strings.Join(e.Path, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// wrapWithKey prepends a path element to err
func wrapWithKey(err error, key string) error {
	if err == nil {
		return nil
	}

	if pe, ok := err.(*PathError); ok {
		return &PathError{
			Path: append([]string{key}, pe.Path...),
			Err:  pe.Err,
		}
	}

	return &PathError{
		Path: []string{key},
		Err:  err,
	}
}
