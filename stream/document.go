package stream

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ggtracker/sc2reader-sub000/registry"
	"github.com/ggtracker/sc2reader-sub000/schema"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// DocumentDecoder reads a stream that holds a single struct tree and names
// it with a schema layout.
type DocumentDecoder struct {
	opts   Options
	schema *schema.Set
	layout string
}

// NewDocumentDecoder creates a decoder naming trees with layout from set
func NewDocumentDecoder(opts Options, set *schema.Set, layout string) *DocumentDecoder {
	return &DocumentDecoder{opts: opts, schema: set, layout: layout}
}

// DecodeValue decodes the tree and its named view
func (d *DocumentDecoder) DecodeValue(data []byte, v registry.Version) (*Document, error) {
	r := wire.NewReader(data)
	tree, err := wire.NewStructDecoder(r).WithMaxDepth(d.opts.MaxDepth).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.layout, err)
	}
	if !r.AtEnd() {
		d.opts.Logger.Debug().Str("layout", d.layout).Int("build", v.Build).Int("trailing", r.Remaining()).Msg("bytes left after struct tree")
	}

	named, err := d.schema.Name(tree, d.layout)
	if err != nil {
		return nil, fmt.Errorf("name %s: %w", d.layout, err)
	}
	return &Document{Layout: d.layout, Tree: tree, Named: named}, nil
}

// MarshalJSON renders the named view. Byte fields become base64 strings.
func (d *Document) MarshalJSON() ([]byte, error) {
	st, err := structpb.NewStruct(d.Named)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Layout, err)
	}
	return protojson.Marshal(st)
}
