package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ggtracker/sc2reader-sub000/wire"
)

const testProto = `
syntax = "proto3";

package test;

message Game {
  string title = 1;
  repeated Entry entries = 2;
  Speed speed = 3;
  bool ranked = 4;
  Inner inner = 6;

  message Inner {
    bytes raw = 1;
    string code = 2;
  }
}

message Entry {
  string name = 1;
  int64 score = 2;
}

enum Speed {
  SLOW = 0;
  FAST = 4;
}
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(testProto))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(s.Packages, []string{"test"}) {
		t.Errorf("packages = %v", s.Packages)
	}

	game, ok := s.Layout("Game")
	if !ok {
		t.Fatal("layout Game missing")
	}
	if len(game.Fields) != 5 {
		t.Fatalf("Game has %d fields", len(game.Fields))
	}
	f, ok := game.FieldByKey(5)
	if !ok || f.Name != "inner" || f.Type != "Inner" {
		t.Errorf("key 5 = %+v", f)
	}
	if f, _ := game.FieldByName("entries"); !f.Repeated || f.Key != 1 {
		t.Errorf("entries = %+v", f)
	}
	if _, ok := s.Layout("Game.Inner"); !ok {
		t.Error("nested layout not registered under its dotted name")
	}
	if k, ok := s.Key("Entry", "score"); !ok || k != 1 {
		t.Errorf("Key(Entry, score) = %d, %v", k, ok)
	}
	if _, ok := s.Key("Entry", "missing"); ok {
		t.Error("Key found a missing field")
	}
	if s.Enums["Speed"].Values[4] != "FAST" {
		t.Errorf("enum values = %v", s.Enums["Speed"].Values)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		proto string
		want  string
	}{
		{
			name:  "unknown type",
			proto: `syntax = "proto3"; message A { Missing m = 1; }`,
			want:  "unknown type Missing",
		},
		{
			name:  "duplicate message",
			proto: `syntax = "proto3"; message A { int32 x = 1; } message A { int32 y = 1; }`,
			want:  "defined twice",
		},
		{
			name:  "syntax error",
			proto: `syntax = "proto3"; message A { int32 x = ; }`,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.proto))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	s, err := Load(strings.NewReader(testProto))
	if err != nil {
		t.Fatal(err)
	}

	tree := &wire.Struct{Fields: []wire.Field{
		{Key: 0, Value: wire.Blob("Ladder game")},
		{Key: 1, Value: wire.Array{
			&wire.Struct{Fields: []wire.Field{
				{Key: 0, Value: wire.Blob("Alice")},
				{Key: 1, Value: wire.VInt(-20)},
			}},
			&wire.Struct{Fields: []wire.Field{
				{Key: 0, Value: wire.Blob("Bob")},
			}},
		}},
		{Key: 2, Value: wire.U8(4)},
		{Key: 3, Value: wire.Optional{Value: wire.U8(1)}},
		{Key: 5, Value: &wire.Struct{Fields: []wire.Field{
			{Key: 0, Value: wire.Blob{0xDE, 0xAD}},
			{Key: 1, Value: wire.U32{'S', '2', 0, 0}},
		}}},
		{Key: 40, Value: wire.VInt(1)},
	}}

	got, err := s.Name(tree, "Game")
	if err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	want := map[string]any{
		"title": "Ladder game",
		"entries": []any{
			map[string]any{"name": "Alice", "score": int64(-20)},
			map[string]any{"name": "Bob"},
		},
		"speed":  "FAST",
		"ranked": true,
		"inner":  map[string]any{"raw": []byte{0xDE, 0xAD}, "code": "S2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v\nwant %#v", got, want)
	}
}

func TestName_TypeMismatch(t *testing.T) {
	s, err := Load(strings.NewReader(testProto))
	if err != nil {
		t.Fatal(err)
	}
	tree := &wire.Struct{Fields: []wire.Field{{Key: 1, Value: wire.Blob("not a list")}}}
	if _, err := s.Name(tree, "Game"); err == nil || !strings.Contains(err.Error(), "Game.entries") {
		t.Errorf("expected an error naming Game.entries, got %v", err)
	}
	if _, err := s.Name(tree, "Nope"); err == nil {
		t.Error("expected an error for a missing layout")
	}
	if _, err := s.Name(wire.U8(1), "Game"); err == nil {
		t.Error("expected an error for a non-struct value")
	}
}

func TestBuiltin(t *testing.T) {
	s, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	again, _ := Builtin()
	if s != again {
		t.Error("Builtin parsed twice")
	}

	checks := []struct {
		layout, field string
		key           int64
	}{
		{"Details", "player_list", 0},
		{"Details", "title", 1},
		{"Details", "time_utc", 5},
		{"Player", "result", 8},
		{"Toon", "id", 4},
		{"InitData", "sync_lobby_state", 0},
		{"GameDescription", "map_file_name", 15},
	}
	for _, c := range checks {
		if k, ok := s.Key(c.layout, c.field); !ok || k != c.key {
			t.Errorf("Key(%s, %s) = %d, %v; want %d", c.layout, c.field, k, ok, c.key)
		}
	}
}
