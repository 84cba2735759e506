package wire

import (
	"strconv"
)

// ===== STRUCT TREE TYPES =====

// Kind is the tag byte that precedes every value in a struct tree
type Kind uint8

const (
	KindArray    Kind = 0 // vint count, then count values
	KindBitArray Kind = 1 // vint bit count, then that many bits
	KindBlob     Kind = 2 // vint length, then raw bytes
	KindChoice   Kind = 3 // vint tag, then one value
	KindOptional Kind = 4 // u8 presence flag, then a value when nonzero
	KindStruct   Kind = 5 // vint count, then (vint key, value) pairs
	KindU8       Kind = 6
	KindU32      Kind = 7 // four raw bytes
	KindU64      Kind = 8 // eight bytes, big-endian
	KindVInt     Kind = 9
)

var kindNames = [...]string{"Array", "BitArray", "Blob", "Choice", "Optional", "Struct", "U8", "U32", "U64", "VInt"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one node of a decoded struct tree. The set of implementations is
// closed: Array, BitArray, Blob, Choice, Optional, *Struct, U8, U32, U64
// and VInt.
type Value interface {
	Kind() Kind
	isValue()
}

// Array is an ordered list of values
type Array []Value

// BitArray holds up to 64 bits read most significant first
type BitArray struct {
	Bits  int
	Value uint64
}

// Blob is a raw byte run, usually text
type Blob []byte

// Choice is a tagged alternative
type Choice struct {
	Tag   int64
	Value Value
}

// Optional wraps a value that may be absent. Value is nil when absent.
type Optional struct {
	Value Value
}

// U8 is a single byte
type U8 uint8

// U32 is four raw bytes, kept in stream order
type U32 [4]byte

// U64 is a big-endian 64-bit integer
type U64 uint64

// VInt is a signed variable-length integer
type VInt int64

// Field is one key/value pair of a Struct
type Field struct {
	Key   int64
	Value Value
}

// Struct maps integer keys to values, keeping first-insertion order. A key
// written twice keeps its original slot and takes the later value.
type Struct struct {
	Fields []Field
}

func (Array) Kind() Kind    { return KindArray }
func (BitArray) Kind() Kind { return KindBitArray }
func (Blob) Kind() Kind     { return KindBlob }
func (Choice) Kind() Kind   { return KindChoice }
func (Optional) Kind() Kind { return KindOptional }
func (*Struct) Kind() Kind  { return KindStruct }
func (U8) Kind() Kind       { return KindU8 }
func (U32) Kind() Kind      { return KindU32 }
func (U64) Kind() Kind      { return KindU64 }
func (VInt) Kind() Kind     { return KindVInt }

func (Array) isValue()    {}
func (BitArray) isValue() {}
func (Blob) isValue()     {}
func (Choice) isValue()   {}
func (Optional) isValue() {}
func (*Struct) isValue()  {}
func (U8) isValue()       {}
func (U32) isValue()      {}
func (U64) isValue()      {}
func (VInt) isValue()     {}

// Set stores v under key, overwriting in place when the key exists.
func (s *Struct) Set(key int64, v Value) {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			s.Fields[i].Value = v
			return
		}
	}
	s.Fields = append(s.Fields, Field{Key: key, Value: v})
}

// Get returns the value stored under key.
func (s *Struct) Get(key int64) (Value, bool) {
	if s == nil {
		return nil, false
	}
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Len returns the number of distinct keys.
func (s *Struct) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Fields)
}
