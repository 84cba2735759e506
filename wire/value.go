package wire

import (
	"encoding/binary"
)

// Int coerces integer-like values. Choices and present optionals are
// unwrapped; U32 is read big-endian.
func Int(v Value) (int64, bool) {
	switch val := v.(type) {
	case U8:
		return int64(val), true
	case VInt:
		return int64(val), true
	case U64:
		return int64(val), true
	case U32:
		return int64(binary.BigEndian.Uint32(val[:])), true
	case BitArray:
		return int64(val.Value), true
	case Choice:
		return Int(val.Value)
	case Optional:
		if val.Value == nil {
			return 0, false
		}
		return Int(val.Value)
	}
	return 0, false
}

// Bytes returns the raw bytes of a Blob or U32.
func Bytes(v Value) ([]byte, bool) {
	switch val := v.(type) {
	case Blob:
		return []byte(val), true
	case U32:
		return val[:], true
	case Optional:
		if val.Value == nil {
			return nil, false
		}
		return Bytes(val.Value)
	}
	return nil, false
}

// Text returns a Blob as a string.
func Text(v Value) (string, bool) {
	b, ok := Bytes(v)
	return string(b), ok
}

// Unwrap strips Optional and Choice layers. It returns nil for an absent
// optional.
func Unwrap(v Value) Value {
	for {
		switch val := v.(type) {
		case Optional:
			v = val.Value
		case Choice:
			v = val.Value
		default:
			return v
		}
	}
}

// Int returns the integer stored under key.
func (s *Struct) Int(key int64) (int64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return Int(v)
}

// Text returns the text stored under key.
func (s *Struct) Text(key int64) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	return Text(v)
}

// Sub returns the nested struct under key, or nil.
func (s *Struct) Sub(key int64) *Struct {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	st, _ := Unwrap(v).(*Struct)
	return st
}

// Array returns the array under key, or nil.
func (s *Struct) Array(key int64) Array {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	arr, _ := Unwrap(v).(Array)
	return arr
}
