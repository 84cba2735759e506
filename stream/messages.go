package stream

import (
	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// MessageDecoder reads chat, ping and packet messages. The number of flag
// bits used for the chat target grew from 3 to 4 in build 24247.
type MessageDecoder struct {
	opts       Options
	targetBits uint8
}

// NewMessageDecoder creates a message decoder for the given target width
func NewMessageDecoder(opts Options, targetBits uint8) *MessageDecoder {
	return &MessageDecoder{opts: opts, targetBits: targetBits}
}

// DecodeEvents decodes the whole stream
func (d *MessageDecoder) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	log := d.opts.Logger.With().Str("stream", StreamMessages).Int("build", v.Build).Logger()
	r := wire.NewReader(data)
	targetMask := byte(1)<<d.targetBits - 1

	var (
		events []event.Event
		frame  uint32
	)
	for !r.AtEnd() {
		start := r.Offset()

		delta, err := r.ReadFrameDelta()
		if err != nil {
			return events, d.opts.failed(StreamMessages, start, events, err)
		}
		frame += delta

		header, err := r.ReadByte()
		if err != nil {
			return events, d.opts.failed(StreamMessages, start, events, err)
		}
		flags, err := r.ReadByte()
		if err != nil {
			return events, d.opts.failed(StreamMessages, start, events, err)
		}

		ev := event.Event{
			Category:  event.CategoryMessage,
			Frame:     frame,
			PlayerID:  int(header & 0x1F),
			Global:    header&0x1F == event.GlobalPlayer,
			TypeCode:  header >> 5,
			EventCode: uint32(flags),
		}

		switch {
		case flags == 0x83 || flags == 0x89:
			x, err := r.ReadInt32LE()
			if err != nil {
				return events, d.opts.failed(StreamMessages, start, events, err)
			}
			y, err := r.ReadInt32LE()
			if err != nil {
				return events, d.opts.failed(StreamMessages, start, events, err)
			}
			ev.Payload = event.Ping{X: x, Y: y}

		case flags == 0x80:
			raw, err := r.ReadBytes(4)
			if err != nil {
				return events, d.opts.failed(StreamMessages, start, events, err)
			}
			ev.Payload = event.Packet{Data: raw}

		case flags&0x80 == 0:
			length, err := r.ReadByte()
			if err != nil {
				return events, d.opts.failed(StreamMessages, start, events, err)
			}
			extension := int(flags&^targetMask) << 3
			text, err := r.ReadBytes(int(length) + extension)
			if err != nil {
				return events, d.opts.failed(StreamMessages, start, events, err)
			}
			ev.Payload = event.Chat{Target: flags & targetMask, Text: string(text)}

		default:
			return events, d.opts.unknownEvent(StreamMessages, r, ev.Category, ev.EventCode, events)
		}

		log.Trace().Uint32("frame", frame).Int("player", ev.PlayerID).Str("event", ev.Name()).Msg("decoded message")
		events = append(events, ev)
	}

	log.Debug().Int("events", len(events)).Msg("stream decoded")
	return events, nil
}
