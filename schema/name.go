package schema

import (
	"bytes"
	"fmt"

	"github.com/ggtracker/sc2reader-sub000/wire"
)

// Name converts a struct tree into a map keyed by field name using the
// named layout. Keys the layout does not know are skipped. Absent optionals
// become nil.
func (s *Set) Name(v wire.Value, layout string) (map[string]any, error) {
	l, ok := s.Layouts[layout]
	if !ok {
		return nil, fmt.Errorf("layout not found: %s", layout)
	}
	st, ok := wire.Unwrap(v).(*wire.Struct)
	if !ok {
		return nil, fmt.Errorf("layout %s: expected Struct, got %T", layout, v)
	}
	return s.nameStruct(st, l)
}

func (s *Set) nameStruct(st *wire.Struct, l *Layout) (map[string]any, error) {
	out := make(map[string]any, len(st.Fields))
	for _, f := range st.Fields {
		field, ok := l.byKey[f.Key]
		if !ok {
			continue
		}
		named, err := s.nameField(f.Value, field, l.Name)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", l.Name, field.Name, err)
		}
		out[field.Name] = named
	}
	return out, nil
}

func (s *Set) nameField(v wire.Value, field *Field, scope string) (any, error) {
	v = wire.Unwrap(v)
	if v == nil {
		return nil, nil
	}
	if !field.Repeated {
		return s.nameValue(v, field.Type, scope)
	}

	arr, ok := v.(wire.Array)
	if !ok {
		return nil, fmt.Errorf("repeated field holds %s", v.Kind())
	}
	list := make([]any, 0, len(arr))
	for _, elem := range arr {
		named, err := s.nameValue(wire.Unwrap(elem), field.Type, scope)
		if err != nil {
			return nil, err
		}
		list = append(list, named)
	}
	return list, nil
}

func (s *Set) nameValue(v wire.Value, typeName, scope string) (any, error) {
	if v == nil {
		return nil, nil
	}
	if l, ok := s.resolveLayout(scope, typeName); ok {
		st, ok := v.(*wire.Struct)
		if !ok {
			return nil, fmt.Errorf("message %s holds %s", l.Name, v.Kind())
		}
		return s.nameStruct(st, l)
	}
	if e, ok := s.resolveEnum(scope, typeName); ok {
		n, ok := wire.Int(v)
		if !ok {
			return nil, fmt.Errorf("enum %s holds %s", e.Name, v.Kind())
		}
		if name, ok := e.Values[n]; ok {
			return name, nil
		}
		return n, nil
	}

	switch typeName {
	case "string":
		b, ok := wire.Bytes(v)
		if !ok {
			return nil, fmt.Errorf("string holds %s", v.Kind())
		}
		// four-character codes are NUL padded
		if v.Kind() == wire.KindU32 {
			b = bytes.TrimRight(b, "\x00")
		}
		return string(b), nil
	case "bytes":
		b, ok := wire.Bytes(v)
		if !ok {
			return nil, fmt.Errorf("bytes holds %s", v.Kind())
		}
		return b, nil
	case "bool":
		n, ok := wire.Int(v)
		if !ok {
			return nil, fmt.Errorf("bool holds %s", v.Kind())
		}
		return n != 0, nil
	default:
		n, ok := wire.Int(v)
		if !ok {
			return nil, fmt.Errorf("%s holds %s", typeName, v.Kind())
		}
		return n, nil
	}
}
