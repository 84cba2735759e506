// Package event defines the decoded replay events shared by every stream
// decoder.
package event

import (
	"fmt"
)

// Category groups events. Values 0..5 are the raw header categories of
// game events; the rest tag events from the other sub-streams.
type Category uint8

const (
	CategoryInit    Category = 0
	CategoryAction  Category = 1
	CategoryUnknown Category = 2
	CategoryCamera  Category = 3
	CategoryPlayer  Category = 4
	CategorySystem  Category = 5

	CategoryMessage   Category = 16
	CategoryTracker   Category = 17
	CategoryAttribute Category = 18
)

var categoryNames = map[Category]string{
	CategoryInit:      "init",
	CategoryAction:    "action",
	CategoryUnknown:   "unknown",
	CategoryCamera:    "camera",
	CategoryPlayer:    "player",
	CategorySystem:    "system",
	CategoryMessage:   "message",
	CategoryTracker:   "tracker",
	CategoryAttribute: "attribute",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// GlobalPlayer is the player slot used by events that belong to no player
const GlobalPlayer = 16

// Event is one decoded record. Events are immutable once a stream decoder
// returns them.
type Event struct {
	Category  Category
	Frame     uint32 // absolute frame, the running sum of frame deltas
	PlayerID  int
	Global    bool
	TypeCode  uint8  // raw type bits from the event header
	EventCode uint32 // raw event code or event id
	Payload   Payload
}

// Name returns the payload's variant name.
func (e Event) Name() string {
	if e.Payload == nil {
		return "Event"
	}
	return e.Payload.Name()
}

func (e Event) String() string {
	who := fmt.Sprintf("player %d", e.PlayerID)
	if e.Global {
		who = "global"
	}
	return fmt.Sprintf("%s@%d [%s, %s, code 0x%02x]", e.Name(), e.Frame, e.Category, who, e.EventCode)
}
