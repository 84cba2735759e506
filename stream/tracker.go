package stream

import (
	"fmt"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// Tracker record types
const (
	trackerPlayerStats     = 0
	trackerUnitBorn        = 1
	trackerUnitDied        = 2
	trackerUnitOwnerChange = 3
	trackerUnitTypeChange  = 4
	trackerUpgrade         = 5
	trackerUnitInit        = 6
	trackerUnitDone        = 7
	trackerUnitPositions   = 8
	trackerPlayerSetup     = 9
)

// TrackerDecoder reads the tracker stream, a sequence of struct-tree
// records: a frame-delta choice, a type vint and a payload struct.
type TrackerDecoder struct {
	opts Options
}

// NewTrackerDecoder creates a new tracker event decoder
func NewTrackerDecoder(opts Options) *TrackerDecoder {
	return &TrackerDecoder{opts: opts}
}

// DecodeEvents decodes the whole stream
func (d *TrackerDecoder) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	log := d.opts.Logger.With().Str("stream", StreamTracker).Int("build", v.Build).Logger()
	r := wire.NewReader(data)
	sd := wire.NewStructDecoder(r).WithMaxDepth(d.opts.MaxDepth)

	var (
		events []event.Event
		frame  uint32
	)
	for !r.AtEnd() {
		start := r.Offset()

		deltaValue, err := sd.Decode()
		if err != nil {
			return events, d.opts.failed(StreamTracker, start, events, err)
		}
		delta, ok := wire.Int(deltaValue)
		if !ok || delta < 0 {
			return events, d.opts.failed(StreamTracker, start, events,
				&wire.CorruptError{Pos: start, Reason: fmt.Sprintf("frame delta holds %s", deltaValue.Kind())})
		}
		frame += uint32(delta)

		typeValue, err := sd.Decode()
		if err != nil {
			return events, d.opts.failed(StreamTracker, start, events, err)
		}
		typ, ok := wire.Int(typeValue)
		if !ok {
			return events, d.opts.failed(StreamTracker, start, events,
				&wire.CorruptError{Pos: start, Reason: fmt.Sprintf("record type holds %s", typeValue.Kind())})
		}

		payloadStart := r.Offset()
		payloadValue, err := sd.Decode()
		if err != nil {
			return events, d.opts.failed(StreamTracker, start, events, err)
		}
		st, ok := payloadValue.(*wire.Struct)
		if !ok {
			return events, d.opts.failed(StreamTracker, start, events,
				&wire.CorruptError{Pos: payloadStart, Reason: fmt.Sprintf("record payload holds %s", payloadValue.Kind())})
		}

		ev := event.Event{
			Category:  event.CategoryTracker,
			Frame:     frame,
			Global:    true,
			PlayerID:  event.GlobalPlayer,
			EventCode: uint32(typ),
		}
		if ev.Payload, ev.PlayerID, ok = readTrackerPayload(typ, st); !ok {
			if err := r.Seek(payloadStart); err != nil {
				return events, d.opts.failed(StreamTracker, start, events, err)
			}
			return events, d.opts.unknownEvent(StreamTracker, r, ev.Category, ev.EventCode, events)
		}
		if ev.PlayerID != event.GlobalPlayer {
			ev.Global = false
		}

		log.Trace().Uint32("frame", frame).Int64("type", typ).Str("event", ev.Name()).Msg("decoded tracker event")
		events = append(events, ev)
	}

	log.Debug().Int("events", len(events)).Uint32("frames", frame).Msg("stream decoded")
	return events, nil
}

// record reads tracker payload keys. Missing keys read as zero.
type record struct {
	*wire.Struct
}

func (rec record) num(key int64) int {
	n, _ := rec.Int(key)
	return int(n)
}

func (rec record) text(key int64) string {
	s, _ := rec.Text(key)
	return s
}

// opt returns -1 for an absent key
func (rec record) opt(key int64) int {
	n, ok := rec.Int(key)
	if !ok {
		return -1
	}
	return int(n)
}

func (rec record) tag(indexKey, recycleKey int64) uint32 {
	return event.UnitTag(int64(rec.num(indexKey)), int64(rec.num(recycleKey)))
}

// readTrackerPayload maps a record to its payload and owning player.
func readTrackerPayload(typ int64, st *wire.Struct) (event.Payload, int, bool) {
	rec := record{st}
	switch typ {
	case trackerPlayerStats:
		stats := make(map[int64]int64)
		if sub := st.Sub(1); sub != nil {
			for _, f := range sub.Fields {
				if n, ok := wire.Int(f.Value); ok {
					stats[f.Key] = n
				}
			}
		}
		return event.PlayerStats{Player: rec.num(0), Stats: stats}, rec.num(0), true

	case trackerUnitBorn:
		p := event.UnitBorn{UnitID: rec.tag(0, 1), UnitType: rec.text(2), ControlPlayer: rec.num(3), UpkeepPlayer: rec.num(4), X: rec.num(5), Y: rec.num(6)}
		return p, event.GlobalPlayer, true

	case trackerUnitDied:
		p := event.UnitDied{UnitID: rec.tag(0, 1), KillerPlayer: rec.opt(2), X: rec.num(3), Y: rec.num(4)}
		if idx, ok := st.Int(5); ok {
			recycle, _ := st.Int(6)
			p.KillerUnitID = event.UnitTag(idx, recycle)
		}
		return p, event.GlobalPlayer, true

	case trackerUnitOwnerChange:
		p := event.UnitOwnerChange{UnitID: rec.tag(0, 1), ControlPlayer: rec.num(2), UpkeepPlayer: rec.num(3)}
		return p, event.GlobalPlayer, true

	case trackerUnitTypeChange:
		return event.UnitTypeChange{UnitID: rec.tag(0, 1), UnitType: rec.text(2)}, event.GlobalPlayer, true

	case trackerUpgrade:
		return event.Upgrade{Player: rec.num(0), Upgrade: rec.text(1), Count: rec.num(2)}, rec.num(0), true

	case trackerUnitInit:
		p := event.UnitInit{UnitID: rec.tag(0, 1), UnitType: rec.text(2), ControlPlayer: rec.num(3), UpkeepPlayer: rec.num(4), X: rec.num(5), Y: rec.num(6)}
		return p, event.GlobalPlayer, true

	case trackerUnitDone:
		return event.UnitDone{UnitID: rec.tag(0, 1)}, event.GlobalPlayer, true

	case trackerUnitPositions:
		p := event.UnitPositions{FirstIndex: rec.num(0)}
		items := st.Array(1)
		index := p.FirstIndex
		for i := 0; i+2 < len(items); i += 3 {
			step, _ := wire.Int(items[i])
			x, _ := wire.Int(items[i+1])
			y, _ := wire.Int(items[i+2])
			index += int(step)
			p.Positions = append(p.Positions, event.UnitPosition{Index: index, X: int(x), Y: int(y)})
		}
		return p, event.GlobalPlayer, true

	case trackerPlayerSetup:
		p := event.PlayerSetup{Player: rec.num(0), Type: rec.num(1), UserID: rec.opt(2), SlotID: rec.opt(3)}
		return p, rec.num(0), true
	}
	return nil, 0, false
}
