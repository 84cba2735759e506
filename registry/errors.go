package registry

import (
	"errors"
	"fmt"
)

// ErrNoDecoder is matched by NoDecoderError
var ErrNoDecoder = errors.New("no decoder registered")

// NoDecoderError is returned when no rule covers a stream at a version
type NoDecoderError struct {
	Stream    string
	Expansion Expansion
	Build     int
}

func (e *NoDecoderError) Error() string {
	if e.Expansion == UnknownExpansion {
		return fmt.Sprintf("no decoder registered for %s at build %d", e.Stream, e.Build)
	}
	return fmt.Sprintf("no decoder registered for %s at %s build %d", e.Stream, e.Expansion, e.Build)
}

func (e *NoDecoderError) Is(target error) bool { return target == ErrNoDecoder }
