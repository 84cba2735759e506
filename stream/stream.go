// Package stream decodes the individual sub-streams of a replay archive.
// Each decoder is stateless between calls and safe to share.
package stream

import (
	"github.com/rs/zerolog"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// Sub-stream names as stored in the replay archive
const (
	StreamInitData   = "replay.initData"
	StreamDetails    = "replay.details"
	StreamAttributes = "replay.attributes.events"
	StreamMessages   = "replay.message.events"
	StreamGame       = "replay.game.events"
	StreamTracker    = "replay.tracker.events"
)

// Build thresholds where stream layouts change
const (
	BuildBitPacked        = 16561 // game events become bit packed
	BuildAttributeHeader5 = 17326 // attribute header grows to 5 bytes
	BuildHotS             = 24247 // wider ability flags, 4 chat target bits
	BuildTracker          = 25604 // first build with a tracker stream
	BuildLotV             = event.LotVBuild
)

// EventDecoder turns one sub-stream into ordered events. On failure the
// events decoded so far are returned along with the error.
type EventDecoder interface {
	DecodeEvents(data []byte, v registry.Version) ([]event.Event, error)
}

// EventDecoderFunc adapts a function to EventDecoder
type EventDecoderFunc func(data []byte, v registry.Version) ([]event.Event, error)

func (f EventDecoderFunc) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	return f(data, v)
}

// Document is a decoded struct-tree stream with its named view
type Document struct {
	Layout string
	Tree   wire.Value
	Named  map[string]any
}

// ValueDecoder turns one sub-stream into a Document
type ValueDecoder interface {
	DecodeValue(data []byte, v registry.Version) (*Document, error)
}

// Options tune diagnostics and limits shared by all decoders
type Options struct {
	MaxDepth      int // struct nesting limit
	RecentEvents  int // events kept in failure diagnostics
	TrailingBytes int // bytes kept after a failure point
	Logger        zerolog.Logger
}

// DefaultOptions returns the limits used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MaxDepth:      wire.DefaultMaxDepth,
		RecentEvents:  5,
		TrailingBytes: 32,
		Logger:        zerolog.Nop(),
	}
}
