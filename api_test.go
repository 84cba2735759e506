package sc2reader

import (
	"context"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/stream"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

type staticNames map[uint32]string

func (n staticNames) AbilityName(code uint32) (string, bool) {
	name, ok := n[code]
	return name, ok
}

func (n staticNames) UnitName(unitType uint32) (string, bool) {
	name, ok := n[unitType]
	return name, ok
}

// gameStream encodes legacy game events: a join at frame 0 and two
// abilities at frame 20.
func gameStream(t *testing.T) []byte {
	t.Helper()
	e := wire.NewEncoder()
	write := func(delta uint32, header, code byte, payload ...byte) {
		if err := e.WriteFrameDelta(delta); err != nil {
			t.Fatal(err)
		}
		e.WriteUint8(header)
		e.WriteUint8(code)
		e.WriteBytes(payload)
	}
	write(0, 0x10, 0x0B)
	write(20, 0x21, 0x0B, 0x02, 0x0A, 0x10, 0x30)
	write(0, 0x21, 0x0B, 0x00, 0x01, 0x03, 0x00)
	return e.Bytes()
}

func messageStream(t *testing.T) []byte {
	t.Helper()
	e := wire.NewEncoder()
	if err := e.WriteFrameDelta(10); err != nil {
		t.Fatal(err)
	}
	e.WriteBytes([]byte{0x01, 0x00, 2, 'g', 'l'})
	return e.Bytes()
}

func attributeStream() []byte {
	out := make([]byte, 4)
	out = binary.LittleEndian.AppendUint32(out, 1)
	out = binary.LittleEndian.AppendUint32(out, 999)
	out = binary.LittleEndian.AppendUint32(out, 3001)
	return append(out, 1, 'r', 'r', 'e', 'T')
}

func detailsStream(t *testing.T) []byte {
	t.Helper()
	data, err := wire.EncodeStruct(&wire.Struct{Fields: []wire.Field{{Key: 1, Value: wire.Blob("Lost Temple")}}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

var wolVersion = registry.Version{Expansion: registry.WingsOfLiberty, Build: 16117}

func TestDecoder_DecodeStream(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	d.WithNames(staticNames{0x020A10: "Attack"})

	events, err := d.DecodeStream(stream.StreamGame, gameStream(t), wolVersion)
	if err != nil {
		t.Fatalf("DecodeStream failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("decoded %d events", len(events))
	}
	if name := events[1].Payload.(event.Ability).Label; name != "Attack" {
		t.Errorf("resolved name = %q", name)
	}
	if name := events[2].Payload.(event.Ability).Label; name != "Unknown(0x000103)" {
		t.Errorf("placeholder name = %q", name)
	}
}

func TestDecoder_DecodeStream_Errors(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}

	data := gameStream(t)
	events, err := d.DecodeStream(stream.StreamGame, data[:len(data)-2], wolVersion)
	if !errors.Is(err, wire.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), stream.StreamGame+": ") {
		t.Errorf("error %q lacks the stream name", err)
	}
	if len(events) != 2 {
		t.Errorf("returned %d partial events", len(events))
	}

	_, err = d.DecodeStream(stream.StreamTracker, []byte{}, wolVersion)
	var nd *registry.NoDecoderError
	if !errors.As(err, &nd) || nd.Stream != stream.StreamTracker || nd.Build != 16117 {
		t.Errorf("expected NoDecoderError, got %v", err)
	}
}

func TestDecoder_Decode(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}

	replay := Replay{
		Expansion: registry.WingsOfLiberty,
		Build:     16117,
		Streams: map[string][]byte{
			stream.StreamGame:       gameStream(t),
			stream.StreamMessages:   messageStream(t),
			stream.StreamAttributes: attributeStream(),
			stream.StreamDetails:    detailsStream(t),
			"replay.sync.events":    {0xFF},
		},
	}
	res, err := d.Decode(context.Background(), replay)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if res.Version != replay.Version() {
		t.Errorf("version = %+v", res.Version)
	}
	if len(res.Events) != 3 {
		t.Errorf("event streams = %d", len(res.Events))
	}
	if doc := res.Documents[stream.StreamDetails]; doc == nil || doc.Named["title"] != "Lost Temple" {
		t.Errorf("details = %+v", doc)
	}

	var got []string
	for _, ev := range res.Timeline {
		got = append(got, ev.Name())
	}
	want := []string{"Attribute", "PlayerJoin", "Chat", "Ability", "Ability"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}

	again, err := d.Decode(context.Background(), replay)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID == res.ID {
		t.Error("decode ids repeat")
	}
}

func TestDecoder_Decode_Errors(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}

	data := gameStream(t)
	_, err = d.Decode(context.Background(), Replay{Build: 16117, Streams: map[string][]byte{
		stream.StreamGame:     data[:len(data)-2],
		stream.StreamMessages: messageStream(t),
	}})
	if !errors.Is(err, wire.ErrOutOfBounds) || !strings.Contains(err.Error(), stream.StreamGame) {
		t.Errorf("expected a game stream ErrOutOfBounds, got %v", err)
	}

	_, err = d.Decode(context.Background(), Replay{Build: 20000, Streams: map[string][]byte{
		stream.StreamTracker: {},
	}})
	if !errors.Is(err, registry.ErrNoDecoder) {
		t.Errorf("expected ErrNoDecoder, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Decode(ctx, Replay{Build: 16117, Streams: map[string][]byte{stream.StreamGame: data}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecoder_Register(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}
	custom := stream.EventDecoderFunc(func(data []byte, v registry.Version) ([]event.Event, error) {
		return []event.Event{{Frame: uint32(len(data)), Payload: event.GameStart{}}}, nil
	})
	d.Register(stream.StreamGame, registry.BuildRange(16000, 16200), custom)

	events, err := d.DecodeStream(stream.StreamGame, []byte{1, 2, 3}, wolVersion)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Frame != 3 {
		t.Errorf("custom decoder not used: %+v", events)
	}

	// outside the custom range the built-in decoder still applies
	if _, err := d.DecodeStream(stream.StreamGame, gameStream(t), registry.Version{Build: 15405}); err != nil {
		t.Errorf("built-in decoder: %v", err)
	}
}

func TestMergeTimeline(t *testing.T) {
	events := map[string][]event.Event{
		"replay.custom.events":  {{Frame: 0, EventCode: 9}},
		stream.StreamTracker:    {{Frame: 5, EventCode: 4}, {Frame: 7, EventCode: 5}},
		stream.StreamGame:       {{Frame: 5, EventCode: 2}, {Frame: 6, EventCode: 3}},
		stream.StreamAttributes: {{Frame: 0, EventCode: 1}},
	}
	var got []uint32
	for _, ev := range mergeTimeline(events) {
		got = append(got, ev.EventCode)
	}
	if want := []uint32{1, 9, 2, 4, 3, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("defaults = %+v, want %+v", cfg, DefaultConfig())
	}

	t.Setenv("SC2READER_PARALLEL", "2")
	t.Setenv("SC2READER_LOG_LEVEL", "debug")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Parallelism != 2 || cfg.LogLevel != "debug" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"not a number", "SC2READER_MAX_DEPTH", "deep"},
		{"zero depth", "SC2READER_MAX_DEPTH", "0"},
		{"zero parallelism", "SC2READER_PARALLEL", "0"},
		{"bad level", "SC2READER_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}
