package stream

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

func attributeTable(header int, records ...attributeRecord) []byte {
	out := make([]byte, header)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(records)))
	for _, rec := range records {
		out = binary.LittleEndian.AppendUint32(out, rec.Namespace)
		out = binary.LittleEndian.AppendUint32(out, rec.ID)
		out = append(out, rec.Player)
		out = append(out, rec.Value[:]...)
	}
	return out
}

func TestAttributeDecoder(t *testing.T) {
	tests := []struct {
		name   string
		header int
	}{
		{"four byte header", 4},
		{"five byte header", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := attributeTable(tt.header,
				attributeRecord{Namespace: 999, ID: 3001, Player: 1, Value: [4]byte{'r', 'r', 'e', 'T'}},
				attributeRecord{Namespace: 999, ID: 2001, Player: 16, Value: [4]byte{'v', '1', 0, 0}},
				attributeRecord{Namespace: 999, ID: 3009, Player: 2, Value: [4]byte{0, 0, 0, 0}},
			)

			events, err := NewAttributeDecoder(DefaultOptions(), tt.header).DecodeEvents(data, registry.Version{Build: 18000})
			if err != nil {
				t.Fatalf("DecodeEvents failed: %v", err)
			}
			want := []event.Event{
				{Category: event.CategoryAttribute, PlayerID: 1, EventCode: 3001,
					Payload: event.Attribute{Namespace: 999, ID: 3001, Value: "Terr"}},
				{Category: event.CategoryAttribute, PlayerID: 16, Global: true, EventCode: 2001,
					Payload: event.Attribute{Namespace: 999, ID: 2001, Value: "1v"}},
				{Category: event.CategoryAttribute, PlayerID: 2, EventCode: 3009,
					Payload: event.Attribute{Namespace: 999, ID: 3009, Value: ""}},
			}
			if !reflect.DeepEqual(events, want) {
				t.Errorf("got %+v\nwant %+v", events, want)
			}
		})
	}
}

func TestAttributeDecoder_Errors(t *testing.T) {
	full := attributeTable(5, attributeRecord{Namespace: 999, ID: 1}, attributeRecord{Namespace: 999, ID: 2})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0}, wire.ErrOutOfBounds},
		{"missing count", []byte{0, 0, 0, 0, 0, 1}, wire.ErrOutOfBounds},
		{"count larger than the table", full[:len(full)-1], wire.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := NewAttributeDecoder(DefaultOptions(), 5).DecodeEvents(tt.data, registry.Version{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if len(events) != 0 {
				t.Errorf("returned %d events", len(events))
			}
		})
	}
}
