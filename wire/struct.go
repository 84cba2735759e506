package wire

import (
	"fmt"
	"strconv"
)

// DefaultMaxDepth bounds struct tree nesting
const DefaultMaxDepth = 64

// StructDecoder reads self-describing tagged trees. Every value starts with
// a Kind byte; the decoder needs no schema.
type StructDecoder struct {
	reader   *Reader
	maxDepth int
}

// StructEncoder writes trees in the layout StructDecoder reads
type StructEncoder struct {
	encoder *Encoder
}

// NewStructDecoder creates a new struct decoder
func NewStructDecoder(r *Reader) *StructDecoder {
	return &StructDecoder{reader: r, maxDepth: DefaultMaxDepth}
}

// NewStructEncoder creates a new struct encoder
func NewStructEncoder(e *Encoder) *StructEncoder {
	return &StructEncoder{encoder: e}
}

// WithMaxDepth sets the nesting limit. Non-positive values keep the default.
func (sd *StructDecoder) WithMaxDepth(n int) *StructDecoder {
	if n > 0 {
		sd.maxDepth = n
	}
	return sd
}

// DECODER METHODS

// Decode reads one value. The cursor must be byte aligned.
func (sd *StructDecoder) Decode() (Value, error) {
	if !sd.reader.Aligned() {
		return nil, &CorruptError{Pos: sd.reader.pos, Reason: "struct value starts mid-byte"}
	}
	return sd.decode(0)
}

func (sd *StructDecoder) decode(depth int) (Value, error) {
	r := sd.reader
	start := r.pos
	if depth > sd.maxDepth {
		return nil, &CorruptError{Pos: start, Reason: fmt.Sprintf("nesting deeper than %d", sd.maxDepth)}
	}

	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch Kind(tag) {
	case KindArray:
		n, err := sd.readCount()
		if err != nil {
			return nil, err
		}
		// every element takes at least one byte
		arr := make(Array, 0, min(n, r.Remaining()))
		for i := 0; i < n; i++ {
			v, err := sd.decode(depth + 1)
			if err != nil {
				return nil, wrapWithKey(err, "["+strconv.Itoa(i)+"]")
			}
			arr = append(arr, v)
		}
		return arr, nil

	case KindBitArray:
		n, err := sd.readCount()
		if err != nil {
			return nil, err
		}
		if n > 64 {
			return nil, &CorruptError{Pos: start, Reason: fmt.Sprintf("bit array of %d bits", n)}
		}
		v, err := r.ReadBits(n)
		if err != nil {
			return nil, err
		}
		// the bit run is padded to a whole byte
		r.AlignToByte()
		return BitArray{Bits: n, Value: v}, nil

	case KindBlob:
		n, err := sd.readCount()
		if err != nil {
			return nil, err
		}
		b, err := r.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		return Blob(b), nil

	case KindChoice:
		t, err := r.ReadVInt()
		if err != nil {
			return nil, err
		}
		v, err := sd.decode(depth + 1)
		if err != nil {
			return nil, wrapWithKey(err, "choice("+strconv.FormatInt(t, 10)+")")
		}
		return Choice{Tag: t, Value: v}, nil

	case KindOptional:
		flag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if flag == 0 {
			return Optional{}, nil
		}
		v, err := sd.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		return Optional{Value: v}, nil

	case KindStruct:
		n, err := sd.readCount()
		if err != nil {
			return nil, err
		}
		st := &Struct{Fields: make([]Field, 0, min(n, r.Remaining()))}
		for i := 0; i < n; i++ {
			key, err := r.ReadVInt()
			if err != nil {
				return nil, err
			}
			v, err := sd.decode(depth + 1)
			if err != nil {
				return nil, wrapWithKey(err, strconv.FormatInt(key, 10))
			}
			st.Set(key, v)
		}
		return st, nil

	case KindU8:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return U8(b), nil

	case KindU32:
		b, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		return U32{b[0], b[1], b[2], b[3]}, nil

	case KindU64:
		v, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return U64(v), nil

	case KindVInt:
		v, err := r.ReadVInt()
		if err != nil {
			return nil, err
		}
		return VInt(v), nil

	default:
		return nil, &UnknownTagError{Tag: tag, Pos: start}
	}
}

func (sd *StructDecoder) readCount() (int, error) {
	pos := sd.reader.pos
	n, err := sd.reader.ReadVInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &CorruptError{Pos: pos, Reason: fmt.Sprintf("negative count %d", n)}
	}
	if n > int64(sd.reader.Len())*8 {
		return 0, &CorruptError{Pos: pos, Reason: fmt.Sprintf("count %d exceeds buffer", n)}
	}
	return int(n), nil
}

// ENCODER METHODS

// Encode writes v with its tag. Struct fields are written in slice order.
func (se *StructEncoder) Encode(v Value) error {
	e := se.encoder
	if e.bit != 0 {
		return fmt.Errorf("struct value must start on a byte boundary")
	}
	if v == nil {
		return fmt.Errorf("nil struct value")
	}
	e.WriteUint8(byte(v.Kind()))

	switch val := v.(type) {
	case Array:
		e.WriteVInt(int64(len(val)))
		for i, elem := range val {
			if err := se.Encode(elem); err != nil {
				return wrapWithKey(err, "["+strconv.Itoa(i)+"]")
			}
		}
	case BitArray:
		if val.Bits < 0 || val.Bits > 64 {
			return fmt.Errorf("bit array of %d bits", val.Bits)
		}
		e.WriteVInt(int64(val.Bits))
		e.WriteBits(val.Value, val.Bits)
		e.Align()
	case Blob:
		e.WriteVInt(int64(len(val)))
		e.WriteBytes(val)
	case Choice:
		e.WriteVInt(val.Tag)
		return se.Encode(val.Value)
	case Optional:
		if val.Value == nil {
			e.WriteUint8(0)
			return nil
		}
		e.WriteUint8(1)
		return se.Encode(val.Value)
	case *Struct:
		e.WriteVInt(int64(val.Len()))
		for _, f := range val.Fields {
			e.WriteVInt(f.Key)
			if err := se.Encode(f.Value); err != nil {
				return wrapWithKey(err, strconv.FormatInt(f.Key, 10))
			}
		}
	case U8:
		e.WriteUint8(byte(val))
	case U32:
		e.WriteBytes(val[:])
	case U64:
		e.WriteUint64(uint64(val))
	case VInt:
		e.WriteVInt(int64(val))
	}
	return nil
}

// CONVENIENCE METHODS

// ReadStruct decodes one struct value at the cursor
func (r *Reader) ReadStruct() (Value, error) {
	return NewStructDecoder(r).Decode()
}

// WriteStruct encodes one struct value
func (e *Encoder) WriteStruct(v Value) error {
	return NewStructEncoder(e).Encode(v)
}

// DecodeStruct decodes a single struct value from data
func DecodeStruct(data []byte) (Value, error) {
	return NewReader(data).ReadStruct()
}

// EncodeStruct encodes a single struct value
func EncodeStruct(v Value) ([]byte, error) {
	e := NewEncoder()
	if err := e.WriteStruct(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}
