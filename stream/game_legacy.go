package stream

import (
	"errors"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// LegacyGameDecoder reads game events of builds before 16561, where every
// event has a byte header and a byte code.
type LegacyGameDecoder struct {
	opts Options
}

// NewLegacyGameDecoder creates a new legacy game event decoder
func NewLegacyGameDecoder(opts Options) *LegacyGameDecoder {
	return &LegacyGameDecoder{opts: opts}
}

type legacyKey struct {
	cat  event.Category
	code uint8
}

// events skipped by a fixed payload length
var legacyFixedLengths = map[legacyKey]int{
	{event.CategoryUnknown, 0x06}: 8,
	{event.CategoryUnknown, 0x07}: 4,
	{event.CategoryUnknown, 0x0E}: 4,
	{event.CategoryCamera, 0x08}:  10,
	{event.CategoryCamera, 0x18}:  162,
	{event.CategoryPlayer, 0x16}:  24,
	{event.CategoryPlayer, 0xC6}:  16,
	{event.CategoryPlayer, 0x18}:  4,
	{event.CategoryPlayer, 0x87}:  4,
	{event.CategorySystem, 0x89}:  4,
}

// DecodeEvents decodes the whole stream
func (d *LegacyGameDecoder) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	log := d.opts.Logger.With().Str("stream", StreamGame).Int("build", v.Build).Logger()
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

		header, err := r.ReadByte()
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}
		code, err := r.ReadByte()
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}

		ev := event.Event{
			Category:  event.Category(header >> 5),
			Frame:     frame,
			PlayerID:  int(header & 0x0F),
			Global:    header&0x10 != 0,
			TypeCode:  header >> 5,
			EventCode: uint32(code),
		}

		ev.Payload, err = readLegacyPayload(r, ev.Category, code)
		if errors.Is(err, errUnknownPayload) {
			return events, d.opts.unknownEvent(StreamGame, r, ev.Category, ev.EventCode, events)
		}
		if err != nil {
			return events, d.opts.failed(StreamGame, start, events, err)
		}

		log.Trace().Uint32("frame", frame).Stringer("category", ev.Category).Uint8("code", code).Str("event", ev.Name()).Msg("decoded event")
		events = append(events, ev)
	}

	log.Debug().Int("events", len(events)).Uint32("frames", frame).Msg("stream decoded")
	return events, nil
}

func readLegacyPayload(r *wire.Reader, cat event.Category, code uint8) (event.Payload, error) {
	if n, ok := legacyFixedLengths[legacyKey{cat, code}]; ok {
		raw, err := r.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		return event.Opaque{Raw: raw}, nil
	}

	switch cat {
	case event.CategoryInit:
		switch code {
		case 0x0B, 0x0C, 0x2C:
			return event.PlayerJoin{}, nil
		case 0x05:
			return event.GameStart{}, nil
		}

	case event.CategoryAction:
		if code == 0x09 {
			return event.PlayerLeave{}, nil
		}
		switch code & 0x0F {
		case 0x0B:
			return readLegacyAbility(r)
		case 0x0C:
			return readLegacySelection(r, code>>4)
		case 0x0D:
			return readLegacyHotkey(r, code>>4)
		case 0x0F:
			return readLegacyTransfer(r, code>>4)
		}

	case event.CategoryCamera:
		if code == 0x87 {
			return readLegacyCameraSegments(r)
		}
		if code&0x0F == 0x01 {
			return readLegacyCamera(r)
		}

	case event.CategoryPlayer:
		switch code & 0x0F {
		case 0x02:
			raw, err := r.ReadBytes(2)
			if err != nil {
				return nil, err
			}
			return event.Opaque{Raw: raw}, nil
		case 0x0C:
			return event.Opaque{Raw: []byte{}}, nil
		}
	}

	return nil, errUnknownPayload
}

// readLegacyCamera reads a camera move: a 12+12 bit position, then optional
// distance, pitch and yaw each gated by the flag byte before it.
func readLegacyCamera(r *wire.Reader) (event.CameraMove, error) {
	var cam event.CameraMove
	pos, err := r.ReadUint24()
	if err != nil {
		return cam, err
	}
	cam.Target = &event.Point{X: int32(pos >> 12), Y: int32(pos & 0xFFF)}

	flag, err := r.ReadByte()
	if err != nil {
		return cam, err
	}
	if flag&0x10 != 0 {
		b, err := r.ReadByte()
		if err != nil {
			return cam, err
		}
		distance := uint16(b)
		cam.Distance = &distance
		if flag, err = r.ReadByte(); err != nil {
			return cam, err
		}
	}
	if flag&0x20 != 0 {
		b, err := r.ReadByte()
		if err != nil {
			return cam, err
		}
		pitch := uint16(b)
		cam.Pitch = &pitch
		if flag, err = r.ReadByte(); err != nil {
			return cam, err
		}
	}
	if flag&0x40 != 0 {
		yaw, err := r.ReadUint16()
		if err != nil {
			return cam, err
		}
		cam.Yaw = &yaw
	}
	return cam, nil
}

// readLegacyCameraSegments reads 4-byte segments, each followed by a flag
// byte whose high bit announces another segment.
func readLegacyCameraSegments(r *wire.Reader) (event.Opaque, error) {
	var raw []byte
	for {
		seg, err := r.ReadBytes(5)
		if err != nil {
			return event.Opaque{}, err
		}
		raw = append(raw, seg...)
		if seg[4]&0x80 == 0 {
			return event.Opaque{Raw: raw}, nil
		}
	}
}

// readLegacyTransfer reads a flag byte and four packed resource amounts.
func readLegacyTransfer(r *wire.Reader, recipient uint8) (event.ResourceTransfer, error) {
	t := event.ResourceTransfer{Recipient: recipient}
	if _, err := r.ReadByte(); err != nil {
		return t, err
	}

	var amounts [4]int64
	for i := range amounts {
		v, err := r.ReadUint32()
		if err != nil {
			return t, err
		}
		amounts[i] = unpackResource(v)
	}
	t.Minerals, t.Vespene, t.Terrazine, t.Custom = amounts[0], amounts[1], amounts[2], amounts[3]
	return t, nil
}

// unpackResource decodes base*mult+extra from base<<8 | mult<<4 | extra
func unpackResource(v uint32) int64 {
	base := int64(v >> 8)
	mult := int64(v&0xF0) >> 4
	extra := int64(v & 0x0F)
	return base*mult + extra
}
