package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// attributeRecordSize is the packed size of one attribute tuple
const attributeRecordSize = 13

// attributeRecord is one little-endian attribute tuple
type attributeRecord struct {
	Namespace uint32
	ID        uint32
	Player    uint8
	Value     [4]byte
}

// AttributeDecoder reads the lobby attribute table: a small header, a
// little-endian record count and fixed-size records.
type AttributeDecoder struct {
	opts       Options
	headerSize int
}

// NewAttributeDecoder creates an attribute decoder for the given header size
func NewAttributeDecoder(opts Options, headerSize int) *AttributeDecoder {
	return &AttributeDecoder{opts: opts, headerSize: headerSize}
}

// DecodeEvents decodes the whole table. Every attribute is reported at
// frame 0.
func (d *AttributeDecoder) DecodeEvents(data []byte, v registry.Version) ([]event.Event, error) {
	log := d.opts.Logger.With().Str("stream", StreamAttributes).Int("build", v.Build).Logger()
	r := wire.NewReader(data)

	if err := r.Skip(d.headerSize); err != nil {
		return nil, d.opts.failed(StreamAttributes, 0, nil, err)
	}
	count, err := r.ReadUint32LE()
	if err != nil {
		return nil, d.opts.failed(StreamAttributes, d.headerSize, nil, err)
	}
	if int64(count)*attributeRecordSize > int64(r.Remaining()) {
		return nil, d.opts.failed(StreamAttributes, r.Offset(), nil,
			&wire.CorruptError{Pos: r.Offset(), Reason: fmt.Sprintf("%d attributes do not fit in %d bytes", count, r.Remaining())})
	}

	events := make([]event.Event, 0, count)
	for i := uint32(0); i < count; i++ {
		start := r.Offset()
		raw, err := r.ReadBytes(attributeRecordSize)
		if err != nil {
			return events, d.opts.failed(StreamAttributes, start, events, err)
		}

		var rec attributeRecord
		if err := restruct.Unpack(raw, binary.LittleEndian, &rec); err != nil {
			return events, d.opts.failed(StreamAttributes, start, events, err)
		}

		events = append(events, event.Event{
			Category:  event.CategoryAttribute,
			PlayerID:  int(rec.Player),
			Global:    rec.Player == event.GlobalPlayer,
			EventCode: rec.ID,
			Payload: event.Attribute{
				Namespace: rec.Namespace,
				ID:        rec.ID,
				Value:     attributeValue(rec.Value),
			},
		})
	}

	log.Debug().Int("attributes", len(events)).Msg("stream decoded")
	return events, nil
}

// attributeValue reverses the stored bytes and drops NUL padding
func attributeValue(raw [4]byte) string {
	out := []byte{raw[3], raw[2], raw[1], raw[0]}
	return string(bytes.Trim(out, "\x00"))
}
