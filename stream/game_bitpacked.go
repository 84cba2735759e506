package stream

import (
	"errors"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// Bit-packed game event ids
const (
	idFinishedLoading = 5
	idCommand         = 27
	idSelectionDelta  = 28
	idControlGroup    = 29
	idResourceTrade   = 31
	idCameraUpdate    = 49
	idPlayerLeave     = 101
)

var bitPackedCategories = map[uint32]event.Category{
	idFinishedLoading: event.CategoryInit,
	idCommand:         event.CategoryAction,
	idSelectionDelta:  event.CategoryAction,
	idControlGroup:    event.CategoryAction,
	idResourceTrade:   event.CategoryAction,
	idCameraUpdate:    event.CategoryCamera,
	idPlayerLeave:     event.CategoryAction,
}

// profile holds the field widths that change between build ranges. Each
// range gets its own value registered as a separate rule.
type profile struct {
	name               string
	abilityFlagBits    int
	selectionCountBits int
	otherUnit          bool // commands carry an optional second unit tag
	leaveReason        bool // leave events carry a 4-bit reason
}

var (
	profileWoL = profile{
		name:               "wol",
		abilityFlagBits:    17,
		selectionCountBits: 8,
	}
	profileHotS = profile{
		name:               "hots",
		abilityFlagBits:    20,
		selectionCountBits: 9,
	}
	profileLotV = profile{
		name:               "lotv",
		abilityFlagBits:    23,
		selectionCountBits: 9,
		otherUnit:          true,
		leaveReason:        true,
	}
)

// BitPackedGameDecoder reads game events of builds 16561 and later. After
// the frame delta every event is a 5-bit player and 7-bit id followed by a
// bit-packed payload; each event ends on a byte boundary.
type BitPackedGameDecoder struct {
	opts    Options
	profile profile
}

func newBitPackedGameDecoder(opts Options, p profile) *BitPackedGameDecoder {
	return &BitPackedGameDecoder{opts: opts, profile: p}
}

// DecodeEvents decodes the whole stream
func (d *BitPackedGameDecoder) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	log := d.opts.Logger.With().Str("stream", StreamGame).Int("build", v.Build).Str("profile", d.profile.name).Logger()
	r := wire.NewReader(data)

	var (
		events []event.Event
		frame  uint32
	)
	for !r.AtEnd() {
		start := r.Offset()

		delta, err := r.ReadFrameDelta()
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}
		frame += delta

		header, err := readBitFields(r, 5, 7)
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}
		player, id := int(header[0]), uint32(header[1])

		cat, known := bitPackedCategories[id]
		if !known {
			return events, d.opts.unknownEvent(StreamGame, r, event.CategoryUnknown, id, events)
		}
		ev := event.Event{
			Category:  cat,
			Frame:     frame,
			PlayerID:  player,
			Global:    player == event.GlobalPlayer,
			TypeCode:  uint8(cat),
			EventCode: id,
		}

		ev.Payload, err = d.readPayload(r, id)
		if errors.Is(err, errUnknownPayload) {
			return events, d.opts.unknownEvent(StreamGame, r, cat, id, events)
		}
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}
		r.AlignToByte()

		log.Trace().Uint32("frame", frame).Uint32("id", id).Str("event", ev.Name()).Msg("decoded event")
		events = append(events, ev)
	}

	log.Debug().Int("events", len(events)).Uint32("frames", frame).Msg("stream decoded")
	return events, nil
}

func (d *BitPackedGameDecoder) readPayload(r *wire.Reader, id uint32) (event.Payload, error) {
	switch id {
	case idFinishedLoading:
		return event.FinishedLoading{}, nil
	case idCommand:
		return readCommand(r, d.profile)
	case idSelectionDelta:
		return readSelectionDelta(r, d.profile)
	case idControlGroup:
		return readControlGroup(r, d.profile)
	case idResourceTrade:
		return readResourceTrade(r)
	case idCameraUpdate:
		return readCameraUpdate(r)
	case idPlayerLeave:
		var leave event.PlayerLeave
		if d.profile.leaveReason {
			reason, err := r.ReadBits(4)
			if err != nil {
				return nil, err
			}
			leave.Reason = uint8(reason)
		}
		return leave, nil
	}
	return nil, errUnknownPayload
}

func readResourceTrade(r *wire.Reader) (event.ResourceTransfer, error) {
	vals, err := readBitFields(r, 4, 32, 32, 32, 32)
	if err != nil {
		return event.ResourceTransfer{}, err
	}
	return event.ResourceTransfer{
		Recipient: uint8(vals[0]),
		Minerals:  int64(int32(uint32(vals[1]))),
		Vespene:   int64(int32(uint32(vals[2]))),
		Terrazine: int64(int32(uint32(vals[3]))),
		Custom:    int64(int32(uint32(vals[4]))),
	}, nil
}

// readCameraUpdate reads an optional target and optional distance, pitch
// and yaw, each behind a presence bit.
func readCameraUpdate(r *wire.Reader) (event.CameraMove, error) {
	var cam event.CameraMove

	has, err := r.ReadBit()
	if err != nil {
		return cam, err
	}
	if has {
		xy, err := readBitFields(r, 16, 16)
		if err != nil {
			return cam, err
		}
		cam.Target = &event.Point{X: int32(xy[0]), Y: int32(xy[1])}
	}

	for _, dst := range []**uint16{&cam.Distance, &cam.Pitch, &cam.Yaw} {
		has, err := r.ReadBit()
		if err != nil {
			return cam, err
		}
		if !has {
			continue
		}
		v, err := r.ReadBits(16)
		if err != nil {
			return cam, err
		}
		u := uint16(v)
		*dst = &u
	}
	return cam, nil
}
