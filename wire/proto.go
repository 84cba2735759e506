package wire

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// largest integer a JSON number holds exactly
const maxExactInt = 1 << 53

// ToProto converts a struct tree into a google.protobuf.Value so it can be
// rendered with protojson. Struct keys become decimal strings. Integers too
// large for a float64 are rendered as decimal strings, blobs that are not
// valid UTF-8 as base64, and U32 as 0x-prefixed hex.
func ToProto(v Value) (*structpb.Value, error) {
	switch val := v.(type) {
	case nil:
		return structpb.NewNullValue(), nil
	case Array:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(val))}
		for i, elem := range val {
			pv, err := ToProto(elem)
			if err != nil {
				return nil, wrapWithKey(err, "["+strconv.Itoa(i)+"]")
			}
			list.Values = append(list.Values, pv)
		}
		return structpb.NewListValue(list), nil
	case BitArray:
		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"bits":  structpb.NewNumberValue(float64(val.Bits)),
			"value": uintValue(val.Value),
		}}), nil
	case Blob:
		if utf8.Valid(val) {
			return structpb.NewStringValue(string(val)), nil
		}
		return structpb.NewStringValue(base64.StdEncoding.EncodeToString(val)), nil
	case Choice:
		inner, err := ToProto(val.Value)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"choice": structpb.NewNumberValue(float64(val.Tag)),
			"value":  inner,
		}}), nil
	case Optional:
		return ToProto(val.Value)
	case *Struct:
		out := &structpb.Struct{Fields: make(map[string]*structpb.Value, val.Len())}
		for _, f := range val.Fields {
			key := strconv.FormatInt(f.Key, 10)
			pv, err := ToProto(f.Value)
			if err != nil {
				return nil, wrapWithKey(err, key)
			}
			out.Fields[key] = pv
		}
		return structpb.NewStructValue(out), nil
	case U8:
		return structpb.NewNumberValue(float64(val)), nil
	case U32:
		return structpb.NewStringValue("0x" + hex.EncodeToString(val[:])), nil
	case U64:
		return uintValue(uint64(val)), nil
	case VInt:
		return intValue(int64(val)), nil
	}
	return nil, fmt.Errorf("unsupported struct value %T", v)
}

// MarshalJSON renders a struct tree as JSON through protojson.
func MarshalJSON(v Value) ([]byte, error) {
	pv, err := ToProto(v)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(pv)
}

func intValue(v int64) *structpb.Value {
	if v > -maxExactInt && v < maxExactInt {
		return structpb.NewNumberValue(float64(v))
	}
	return structpb.NewStringValue(strconv.FormatInt(v, 10))
}

func uintValue(v uint64) *structpb.Value {
	if v < maxExactInt {
		return structpb.NewNumberValue(float64(v))
	}
	return structpb.NewStringValue(strconv.FormatUint(v, 10))
}
