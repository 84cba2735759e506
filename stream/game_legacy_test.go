package stream

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

var legacyVersion = registry.Version{Expansion: registry.WingsOfLiberty, Build: 16117}

func TestLegacyGame_Lifecycle(t *testing.T) {
	data := concat(
		legacyEvent(t, 0, 0, 0x10, 0x0B),
		legacyEvent(t, 0, 0, 0x01, 0x0C),
		legacyEvent(t, 10, 0, 0x10, 0x05),
		legacyEvent(t, 300, 1, 0x02, 0x09),
	)

	events, err := NewLegacyGameDecoder(DefaultOptions()).DecodeEvents(data, legacyVersion)
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}

	want := []event.Event{
		{Category: event.CategoryInit, Frame: 0, PlayerID: 0, Global: true, TypeCode: 0, EventCode: 0x0B, Payload: event.PlayerJoin{}},
		{Category: event.CategoryInit, Frame: 0, PlayerID: 1, TypeCode: 0, EventCode: 0x0C, Payload: event.PlayerJoin{}},
		{Category: event.CategoryInit, Frame: 10, PlayerID: 0, Global: true, TypeCode: 0, EventCode: 0x05, Payload: event.GameStart{}},
		{Category: event.CategoryAction, Frame: 310, PlayerID: 2, TypeCode: 1, EventCode: 0x09, Payload: event.PlayerLeave{}},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("got %+v\nwant %+v", events, want)
	}
}

func TestReadLegacyAbility(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    event.Ability
	}{
		{
			name:    "command card slot ignores sub-type",
			payload: []byte{0x00, 0x01, 0x03, 0x20},
			want:    event.Ability{Code: 0x000103, SubType: 0x20},
		},
		{
			name:    "location target",
			payload: []byte{0x02, 0x0A, 0x10, 0x10, 0x00, 0x10, 0x00, 0x00, 0x20, 0x00, 0x05},
			want: event.Ability{Code: 0x020A10, SubType: 0x10, Target: event.TargetPoint,
				Point: &event.Point{X: 0x001000, Y: 0x002000, Z: 5}},
		},
		{
			name: "unit target",
			payload: []byte{0x02, 0x1A, 0x0C, 0x20,
				0x01, 0x02, 0x00, 0x00, 0x0A, 0xBC, 0x00, 0x00, 0x4E, 0x00, 0x30, 0x00, 0x00, 0x40, 0x00},
			want: event.Ability{Code: 0x021A0C, SubType: 0x20, Target: event.TargetUnit,
				Unit: &event.UnitTarget{Flags: 1, Player: 2, ID: 0x0ABC, Type: 0x4E, Point: event.Point{X: 0x3000, Y: 0x4000}}},
		},
		{
			name:    "other sub-type has no target",
			payload: []byte{0x02, 0x1A, 0x0C, 0x30},
			want:    event.Ability{Code: 0x021A0C, SubType: 0x30},
		},
		{
			name: "queued order block",
			payload: []byte{0x82, 0x1A, 0x0C, 0x10,
				0x00, 0x00, 0x01, 0x00, 0x00, 0x02, 0x03,
				1, 2, 3, 4, 5, 6, 7, 8, 9},
			want: event.Ability{Code: 0x821A0C, SubType: 0x10, Target: event.TargetPoint,
				Point: &event.Point{X: 1, Y: 2, Z: 3}, Queued: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a trailing sentinel must survive untouched
			r := wire.NewReader(append(append([]byte{}, tt.payload...), 0xEE))
			got, err := readLegacyAbility(r)
			if err != nil {
				t.Fatalf("readLegacyAbility failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
			if r.Offset() != len(tt.payload) {
				t.Errorf("consumed %d bytes, want %d", r.Offset(), len(tt.payload))
			}
		})
	}
}

func TestReadLegacyHotkey(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    event.Hotkey
	}{
		{
			name:    "short form",
			payload: []byte{0x02},
			want:    event.Hotkey{Group: 3, Action: event.HotkeySelect},
		},
		{
			name:    "overlay and low flag extension",
			payload: []byte{0x0A, 0x05, 0xF1, 0x99},
			want:    event.Hotkey{Group: 3, Action: event.HotkeySelect, Flags: 0x05, Overlay: []byte{0xF1}, Extra: []byte{0x99}},
		},
		{
			name:    "flag 0x08 extension",
			payload: []byte{0x11, 0x08, 0xA1, 0xA2, 0x77},
			want:    event.Hotkey{Group: 3, Action: event.HotkeyAdd, Flags: 0x08, Overlay: []byte{0xA1, 0xA2}, Extra: []byte{0x77}},
		},
		{
			name:    "both extensions",
			payload: []byte{0x0C, 0x0D, 0x01, 0x02, 0x03},
			want:    event.Hotkey{Group: 3, Action: event.HotkeySet, Flags: 0x0D, Overlay: []byte{0x01}, Extra: []byte{0x02, 0x03}},
		},
		{
			name:    "no extension below five",
			payload: []byte{0x04, 0x04},
			want:    event.Hotkey{Group: 3, Action: event.HotkeySet, Flags: 0x04, Overlay: []byte{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := wire.NewReader(append(append([]byte{}, tt.payload...), 0xEE))
			got, err := readLegacyHotkey(r, 3)
			if err != nil {
				t.Fatalf("readLegacyHotkey failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
			if r.Offset() != len(tt.payload) {
				t.Errorf("consumed %d bytes, want %d", r.Offset(), len(tt.payload))
			}
		})
	}
}

func TestReadLegacyCamera(t *testing.T) {
	tests := []struct {
		name                 string
		payload              []byte
		distance, pitch, yaw uint16
	}{
		{"position only", []byte{0x12, 0x34, 0x56, 0x00}, 0, 0, 0},
		{"distance", []byte{0x12, 0x34, 0x56, 0x10, 0x20, 0x00}, 0x20, 0, 0},
		{"all three", []byte{0x12, 0x34, 0x56, 0x10, 0x20, 0x20, 0x30, 0x40, 0x01, 0x02}, 0x20, 0x30, 0x0102},
		{"new flag replaces the old one", []byte{0x12, 0x34, 0x56, 0x60, 0x30, 0x00}, 0, 0x30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := wire.NewReader(append(append([]byte{}, tt.payload...), 0xEE))
			cam, err := readLegacyCamera(r)
			if err != nil {
				t.Fatalf("readLegacyCamera failed: %v", err)
			}
			if *cam.Target != (event.Point{X: 0x123, Y: 0x456}) {
				t.Errorf("target = %+v", *cam.Target)
			}
			if u16(cam.Distance) != tt.distance || u16(cam.Pitch) != tt.pitch || u16(cam.Yaw) != tt.yaw {
				t.Errorf("distance %d pitch %d yaw %d", u16(cam.Distance), u16(cam.Pitch), u16(cam.Yaw))
			}
			if r.Offset() != len(tt.payload) {
				t.Errorf("consumed %d bytes, want %d", r.Offset(), len(tt.payload))
			}
		})
	}
}

func TestReadLegacyTransfer(t *testing.T) {
	payload := []byte{0x84,
		0x00, 0x00, 0x64, 0x12, // 100*1+2
		0x00, 0x00, 0x19, 0x40, // 25*4+0
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x01, 0x00, 0x2F, // 256*2+15
	}
	got, err := readLegacyTransfer(wire.NewReader(payload), 5)
	if err != nil {
		t.Fatal(err)
	}
	want := event.ResourceTransfer{Recipient: 5, Minerals: 102, Vespene: 100, Terrazine: 0, Custom: 527}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLegacyGame_OpaqueLengths(t *testing.T) {
	data := concat(
		legacyEvent(t, 1, 2, 0, 0x06, 1, 2, 3, 4, 5, 6, 7, 8),
		legacyEvent(t, 1, 3, 0, 0x87, 1, 2, 3, 4, 0x80, 5, 6, 7, 8, 0x00),
		legacyEvent(t, 1, 4, 0, 0x32, 0xAA, 0xBB),
		legacyEvent(t, 1, 4, 0, 0x1C),
		legacyEvent(t, 1, 5, 0, 0x89, 9, 9, 9, 9),
		legacyEvent(t, 1, 3, 0, 0x08, make([]byte, 10)...),
	)

	events, err := NewLegacyGameDecoder(DefaultOptions()).DecodeEvents(data, legacyVersion)
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	wantLens := []int{8, 10, 2, 0, 4, 10}
	if len(events) != len(wantLens) {
		t.Fatalf("decoded %d events, want %d", len(events), len(wantLens))
	}
	for i, ev := range events {
		op, ok := ev.Payload.(event.Opaque)
		if !ok {
			t.Fatalf("event %d payload %T", i, ev.Payload)
		}
		if len(op.Raw) != wantLens[i] {
			t.Errorf("event %d skipped %d bytes, want %d", i, len(op.Raw), wantLens[i])
		}
		if ev.Frame != uint32(i+1) {
			t.Errorf("event %d at frame %d", i, ev.Frame)
		}
	}
}

func TestLegacyGame_StreamOfActions(t *testing.T) {
	w := newCarryWriter(0)
	w.next(1)
	w.word(0x00002F, 3)
	w.next(1)
	w.next(1)
	w.word(0x00010001, 4)

	data := concat(
		legacyEvent(t, 4, 1, 1, 0x0B, 0x00, 0x01, 0x03, 0x00),
		legacyEvent(t, 0, 1, 1, 0x2C, append([]byte{0x00}, w.raw...)...),
		legacyEvent(t, 16, 1, 1, 0x1D, 0x00),
		legacyEvent(t, 2, 3, 1, 0x01, 0x10, 0x01, 0x00, 0x00),
	)

	events, err := NewLegacyGameDecoder(DefaultOptions()).DecodeEvents(data, legacyVersion)
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name()
	}
	if !reflect.DeepEqual(names, []string{"Ability", "Selection", "Hotkey", "CameraMove"}) {
		t.Fatalf("decoded %v", names)
	}
	if sel := events[1].Payload.(event.Selection); sel.Bank != 2 || !reflect.DeepEqual(sel.UnitIDs, []uint32{0x00010001}) {
		t.Errorf("selection = %+v", sel)
	}
	if hk := events[2].Payload.(event.Hotkey); hk.Group != 1 {
		t.Errorf("hotkey group = %d", hk.Group)
	}
	if events[3].Frame != 22 {
		t.Errorf("camera frame = %d", events[3].Frame)
	}
}

func TestLegacyGame_UnknownEvent(t *testing.T) {
	var parts [][]byte
	for i := 0; i < 6; i++ {
		parts = append(parts, legacyEvent(t, 1, 0, 0, 0x0B))
	}
	unknown := legacyEvent(t, 1, 1, 3, 0x0E, 0xDE, 0xAD, 0xBE, 0xEF)
	data := concat(append(parts, unknown)...)

	events, err := NewLegacyGameDecoder(DefaultOptions()).DecodeEvents(data, legacyVersion)
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	var ue *UnknownEventError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnknownEventError, got %T", err)
	}
	if ue.Category != event.CategoryAction || ue.Code != 0x0E {
		t.Errorf("category %d code %x", ue.Category, ue.Code)
	}
	if ue.Pos != 6*3+3 {
		t.Errorf("pos = %d, want %d", ue.Pos, 6*3+3)
	}
	if len(ue.Recent) != 5 || ue.Recent[4].Frame != 6 {
		t.Errorf("recent = %+v", ue.Recent)
	}
	if !bytes.Equal(ue.Trailing, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("trailing = % x", ue.Trailing)
	}
	if len(events) != 6 {
		t.Errorf("returned %d partial events", len(events))
	}
}

func TestLegacyGame_Truncated(t *testing.T) {
	data := concat(
		legacyEvent(t, 0, 0, 0x10, 0x05),
		legacyEvent(t, 1, 1, 0, 0x1B, 0x02, 0x0A),
	)

	events, err := NewLegacyGameDecoder(DefaultOptions()).DecodeEvents(data, legacyVersion)
	if !errors.Is(err, wire.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Offset != 3 || de.Decoded != 1 || de.Stream != StreamGame {
		t.Errorf("unexpected error: %+v", err)
	}
	if len(events) != 1 {
		t.Errorf("returned %d partial events", len(events))
	}
}
