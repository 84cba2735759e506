package wire

import (
	"fmt"
	"math"
)

// MaxFrameDelta is the largest gap a frame delta can express (30 bits).
const MaxFrameDelta = 1<<30 - 1

// VIntDecoder handles the two variable-length integer forms used by replay
// streams: the signed vint of struct trees and the frame delta of event
// streams.
type VIntDecoder struct {
	reader *Reader
}

// VIntEncoder is the inverse of VIntDecoder
type VIntEncoder struct {
	encoder *Encoder
}

// NewVIntDecoder creates a new vint decoder
func NewVIntDecoder(r *Reader) *VIntDecoder {
	return &VIntDecoder{reader: r}
}

// NewVIntEncoder creates a new vint encoder
func NewVIntEncoder(e *Encoder) *VIntEncoder {
	return &VIntEncoder{encoder: e}
}

// DECODER METHODS

// ReadVInt decodes a signed vint. The first byte carries the sign in bit 0
// and six magnitude bits; each continuation byte adds seven more.
func (vd *VIntDecoder) ReadVInt() (int64, error) {
	r := vd.reader
	pos, bit := r.pos, r.bit

	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	negative := b&0x01 != 0
	result := uint64(b&0x7F) >> 1
	shift := uint(6)

	for b&0x80 != 0 {
		if shift >= 64 {
			r.pos, r.bit = pos, bit
			return 0, fmt.Errorf("%w at byte %d", ErrVIntOverflow, pos)
		}
		if b, err = r.ReadByte(); err != nil {
			r.pos, r.bit = pos, bit
			return 0, err
		}
		if shift > 57 && uint64(b&0x7F)>>(64-shift) != 0 {
			r.pos, r.bit = pos, bit
			return 0, fmt.Errorf("%w at byte %d", ErrVIntOverflow, pos)
		}
		result |= uint64(b&0x7F) << shift
		shift += 7
	}

	if result > math.MaxInt64 {
		if negative && result == 1<<63 {
			return math.MinInt64, nil
		}
		r.pos, r.bit = pos, bit
		return 0, fmt.Errorf("%w at byte %d", ErrVIntOverflow, pos)
	}
	if negative {
		return -int64(result), nil
	}
	return int64(result), nil
}

// ReadFrameDelta decodes a frame delta: the low two bits of the first byte
// count the extra bytes, the high six bits start the value.
func (vd *VIntDecoder) ReadFrameDelta() (uint32, error) {
	r := vd.reader
	pos, bit := r.pos, r.bit

	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	value := uint32(first >> 2)
	for i := 0; i < int(first&0x03); i++ {
		b, err := r.ReadByte()
		if err != nil {
			r.pos, r.bit = pos, bit
			return 0, err
		}
		value = value<<8 | uint32(b)
	}
	return value, nil
}

// ENCODER METHODS

// WriteVInt encodes v in the signed vint form. Zero is never written with
// the sign bit set.
func (ve *VIntEncoder) WriteVInt(v int64) {
	e := ve.encoder
	var sign byte
	mag := uint64(v)
	if v < 0 {
		sign = 1
		mag = uint64(-v)
	}

	first := byte(mag&0x3F)<<1 | sign
	mag >>= 6
	if mag == 0 {
		e.WriteUint8(first)
		return
	}
	e.WriteUint8(first | 0x80)
	for {
		b := byte(mag & 0x7F)
		mag >>= 7
		if mag == 0 {
			e.WriteUint8(b)
			return
		}
		e.WriteUint8(b | 0x80)
	}
}

// WriteFrameDelta encodes d using the fewest bytes that hold it.
func (ve *VIntEncoder) WriteFrameDelta(d uint32) error {
	if d > MaxFrameDelta {
		return fmt.Errorf("%w: %d", ErrFrameDeltaRange, d)
	}
	extra := FrameDeltaSize(d) - 1
	e := ve.encoder
	e.WriteUint8(byte(d>>(8*extra))<<2 | byte(extra))
	for i := extra - 1; i >= 0; i-- {
		e.WriteUint8(byte(d >> (8 * i)))
	}
	return nil
}

// UTILITY FUNCTIONS

// VIntSize returns the encoded size of v in bytes
func VIntSize(v int64) int {
	mag := uint64(v)
	if v < 0 {
		mag = uint64(-v)
	}
	size := 1
	for mag >>= 6; mag != 0; mag >>= 7 {
		size++
	}
	return size
}

// FrameDeltaSize returns the encoded size of d in bytes
func FrameDeltaSize(d uint32) int {
	switch {
	case d < 1<<6:
		return 1
	case d < 1<<14:
		return 2
	case d < 1<<22:
		return 3
	default:
		return 4
	}
}

// CONVENIENCE METHODS

// ReadVInt decodes a signed vint
func (r *Reader) ReadVInt() (int64, error) {
	return NewVIntDecoder(r).ReadVInt()
}

// ReadFrameDelta decodes a frame delta
func (r *Reader) ReadFrameDelta() (uint32, error) {
	return NewVIntDecoder(r).ReadFrameDelta()
}

// WriteVInt encodes a signed vint
func (e *Encoder) WriteVInt(v int64) {
	NewVIntEncoder(e).WriteVInt(v)
}

// WriteFrameDelta encodes a frame delta
func (e *Encoder) WriteFrameDelta(d uint32) error {
	return NewVIntEncoder(e).WriteFrameDelta(d)
}
