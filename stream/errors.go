package stream

import (
	"errors"
	"fmt"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// ErrUnknownEvent is matched by UnknownEventError
var ErrUnknownEvent = errors.New("unknown event")

// errUnknownPayload is returned by payload readers when no variant matches
var errUnknownPayload = errors.New("no payload layout")

// UnknownEventError is returned when an event's category and code match no
// known layout. Decoding cannot resync past such an event, so the error
// carries what is needed to work out its length by hand.
type UnknownEventError struct {
	Stream   string
	Category event.Category
	Code     uint32
	Pos      int           // byte offset where the payload starts
	Recent   []event.Event // last events decoded successfully
	Trailing []byte        // raw bytes from Pos on
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("%s: unknown event category %d code 0x%02x at byte %d (after %d recent events, next bytes % x)",
		e.Stream, uint8(e.Category), e.Code, e.Pos, len(e.Recent), e.Trailing)
}

func (e *UnknownEventError) Is(target error) bool { return target == ErrUnknownEvent }

// DecodeError wraps a low-level failure with where it happened in a stream
type DecodeError struct {
	Stream  string
	Offset  int // byte offset of the event being decoded
	Decoded int // events decoded before the failure
	Recent  []event.Event
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: event %d at byte %d: %v", e.Stream, e.Decoded, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (o Options) recent(events []event.Event) []event.Event {
	n := min(o.RecentEvents, len(events))
	if n <= 0 {
		return nil
	}
	out := make([]event.Event, n)
	copy(out, events[len(events)-n:])
	return out
}

func (o Options) unknownEvent(stream string, r *wire.Reader, cat event.Category, code uint32, events []event.Event) error {
	return &UnknownEventError{
		Stream:   stream,
		Category: cat,
		Code:     code,
		Pos:      r.Offset(),
		Recent:   o.recent(events),
		Trailing: r.Tail(o.TrailingBytes),
	}
}

func (o Options) failed(stream string, offset int, events []event.Event, err error) error {
	return &DecodeError{
		Stream:  stream,
		Offset:  offset,
		Decoded: len(events),
		Recent:  o.recent(events),
		Err:     err,
	}
}
