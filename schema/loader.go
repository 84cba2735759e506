package schema

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

//go:embed protos/*.proto
var builtinProtos embed.FS

var builtin = sync.OnceValues(func() (*Set, error) {
	return LoadFS(builtinProtos)
})

// Builtin returns the layouts shipped with the package. The set is parsed
// once and shared; callers must not modify it.
func Builtin() (*Set, error) {
	return builtin()
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{
		Layouts: make(map[string]*Layout),
		Enums:   make(map[string]*Enum),
	}
}

// LoadFS walks fsys and loads every .proto file in it
func LoadFS(fsys fs.FS) (*Set, error) {
	s := NewSet()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".proto" {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := s.load(bytes.NewReader(content)); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load parses a single .proto document into a new set
func Load(r io.Reader) (*Set, error) {
	s := NewSet()
	if err := s.load(r); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) load(r io.Reader) error {
	proto, err := protoparser.Parse(r)
	if err != nil {
		return err
	}

	for _, body := range proto.ProtoBody {
		switch b := body.(type) {
		case *protoparserparser.Package:
			s.Packages = append(s.Packages, b.Name)
		case *protoparserparser.Message:
			if err := s.addMessage("", b); err != nil {
				return err
			}
		case *protoparserparser.Enum:
			if err := s.addEnum("", b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) addMessage(parent string, msg *protoparserparser.Message) error {
	name := joinName(parent, msg.MessageName)
	layout := &Layout{
		Name:   name,
		byKey:  make(map[int64]*Field),
		byName: make(map[string]*Field),
	}

	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *protoparserparser.Field:
			number, err := strconv.ParseInt(b.FieldNumber, 10, 64)
			if err != nil {
				return fmt.Errorf("message %s field %s: bad number %q", name, b.FieldName, b.FieldNumber)
			}
			if number < 1 {
				return fmt.Errorf("message %s field %s: number %d is below 1", name, b.FieldName, number)
			}
			f := &Field{
				Name:     b.FieldName,
				Key:      number - 1,
				Type:     b.Type,
				Repeated: b.IsRepeated,
			}
			if _, dup := layout.byKey[f.Key]; dup {
				return fmt.Errorf("message %s: duplicate field number %d", name, number)
			}
			layout.Fields = append(layout.Fields, f)
			layout.byKey[f.Key] = f
			layout.byName[f.Name] = f
		case *protoparserparser.Message:
			if err := s.addMessage(name, b); err != nil {
				return err
			}
		case *protoparserparser.Enum:
			if err := s.addEnum(name, b); err != nil {
				return err
			}
		}
	}

	if _, exists := s.Layouts[name]; exists {
		return fmt.Errorf("message %s defined twice", name)
	}
	s.Layouts[name] = layout
	return nil
}

func (s *Set) addEnum(parent string, enum *protoparserparser.Enum) error {
	name := joinName(parent, enum.EnumName)
	e := &Enum{Name: name, Values: make(map[int64]string)}
	for _, body := range enum.EnumBody {
		ef, ok := body.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(ef.Number, 10, 64)
		if err != nil {
			return fmt.Errorf("enum %s value %s: bad number %q", name, ef.Ident, ef.Number)
		}
		e.Values[v] = ef.Ident
	}
	if _, exists := s.Enums[name]; exists {
		return fmt.Errorf("enum %s defined twice", name)
	}
	s.Enums[name] = e
	return nil
}

// validate checks that every non-scalar field type resolves
func (s *Set) validate() error {
	for _, l := range s.Layouts {
		for _, f := range l.Fields {
			if _, ok := scalarTypes[f.Type]; ok {
				continue
			}
			if _, ok := s.resolveLayout(l.Name, f.Type); ok {
				continue
			}
			if _, ok := s.resolveEnum(l.Name, f.Type); ok {
				continue
			}
			return fmt.Errorf("message %s field %s: unknown type %s", l.Name, f.Name, f.Type)
		}
	}
	return nil
}

// resolveLayout looks a type name up from the scope of a message, innermost
// scope first.
func (s *Set) resolveLayout(scope, typeName string) (*Layout, bool) {
	for _, candidate := range scopedNames(scope, typeName) {
		if l, ok := s.Layouts[candidate]; ok {
			return l, true
		}
	}
	return nil, false
}

func (s *Set) resolveEnum(scope, typeName string) (*Enum, bool) {
	for _, candidate := range scopedNames(scope, typeName) {
		if e, ok := s.Enums[candidate]; ok {
			return e, true
		}
	}
	return nil, false
}

func scopedNames(scope, typeName string) []string {
	typeName = strings.TrimPrefix(typeName, ".")
	var names []string
	for scope != "" {
		names = append(names, scope+"."+typeName)
		i := strings.LastIndex(scope, ".")
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return append(names, typeName)
}

func joinName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
