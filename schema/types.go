package schema

// Set is a collection of key layouts loaded from .proto files. A layout
// names the integer keys of one struct tree node; it never drives decoding.
type Set struct {
	Packages []string           `json:"packages"`
	Layouts  map[string]*Layout `json:"layouts"` // simple and dotted nested names
	Enums    map[string]*Enum   `json:"enums"`
}

// Layout is the naming of one Struct node
type Layout struct {
	Name   string   `json:"name"`   // "Details"
	Fields []*Field `json:"fields"` // in declaration order

	byKey  map[int64]*Field
	byName map[string]*Field
}

// Field names one struct key. Key is the proto field number minus one,
// since struct keys start at 0 and proto field numbers at 1.
type Field struct {
	Name     string `json:"name"`     // "player_list"
	Key      int64  `json:"key"`      // 0
	Type     string `json:"type"`     // scalar name, layout or enum
	Repeated bool   `json:"repeated"` // value is an Array
}

// Enum maps integer values to names
type Enum struct {
	Name   string           `json:"name"`
	Values map[int64]string `json:"values"`
}

// scalar proto types understood by the namer
var scalarTypes = map[string]struct{}{
	"string": {}, "bytes": {}, "bool": {},
	"int32": {}, "int64": {}, "uint32": {}, "uint64": {},
	"sint32": {}, "sint64": {}, "fixed32": {}, "fixed64": {},
	"sfixed32": {}, "sfixed64": {},
}

// FieldByKey returns the field registered for a struct key
func (l *Layout) FieldByKey(key int64) (*Field, bool) {
	f, ok := l.byKey[key]
	return f, ok
}

// FieldByName returns the field with the given proto name
func (l *Layout) FieldByName(name string) (*Field, bool) {
	f, ok := l.byName[name]
	return f, ok
}

// Layout retrieves a layout by name
func (s *Set) Layout(name string) (*Layout, bool) {
	l, ok := s.Layouts[name]
	return l, ok
}

// Key returns the struct key of layout.field
func (s *Set) Key(layout, field string) (int64, bool) {
	l, ok := s.Layouts[layout]
	if !ok {
		return 0, false
	}
	f, ok := l.byName[field]
	if !ok {
		return 0, false
	}
	return f.Key, true
}
