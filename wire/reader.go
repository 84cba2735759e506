package wire

import (
	"fmt"
)

// Reader is a bit-level cursor over an immutable byte buffer. Bits are
// consumed most significant first within each byte, so bit offset 0 is the
// 0x80 bit. A failed read leaves the cursor where it was.
type Reader struct {
	buf []byte
	pos int   // current byte
	bit uint8 // bits already consumed from buf[pos], 0..7
}

// NewReader creates a reader positioned at the first bit of data
func NewReader(data []byte) *Reader {
	return &Reader{
		buf: data,
		pos: 0,
	}
}

// Len returns the total buffer length in bytes.
func (r *Reader) Len() int { return len(r.buf) }

// Position returns the byte index and the bit offset inside it.
func (r *Reader) Position() (int, uint8) { return r.pos, r.bit }

// Offset returns the current byte index.
func (r *Reader) Offset() int { return r.pos }

// BitPosition returns the absolute bit position of the cursor.
func (r *Reader) BitPosition() int64 { return int64(r.pos)*8 + int64(r.bit) }

// Aligned reports whether the cursor sits on a byte boundary.
func (r *Reader) Aligned() bool { return r.bit == 0 }

// RemainingBits returns the number of unread bits.
func (r *Reader) RemainingBits() int64 {
	return int64(len(r.buf))*8 - r.BitPosition()
}

// Remaining returns the number of whole unread bytes. A partially consumed
// byte does not count.
func (r *Reader) Remaining() int {
	n := len(r.buf) - r.pos
	if r.bit > 0 {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

// AtEnd reports whether every bit has been consumed.
func (r *Reader) AtEnd() bool { return r.RemainingBits() <= 0 }

func (r *Reader) need(bits int64) error {
	if have := r.RemainingBits(); bits > have {
		return &OutOfBoundsError{BitPos: r.BitPosition(), Need: int(bits), Have: have}
	}
	return nil
}

// ReadBits reads n bits (0..64) and returns them as an unsigned integer,
// earlier bits more significant.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("invalid bit count %d", n)
	}
	if err := r.need(int64(n)); err != nil {
		return 0, err
	}

	var result uint64
	for n > 0 {
		if r.bit == 0 && n >= 8 {
			result = result<<8 | uint64(r.buf[r.pos])
			r.pos++
			n -= 8
			continue
		}

		avail := 8 - int(r.bit)
		take := min(avail, n)
		chunk := (r.buf[r.pos] >> (avail - take)) & byte(1<<take-1)
		result = result<<take | uint64(chunk)

		r.bit += uint8(take)
		if r.bit == 8 {
			r.bit = 0
			r.pos++
		}
		n -= take
	}
	return result, nil
}

// ReadBit reads a single bit as a bool.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadByte reads 8 bits. It satisfies io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.bit == 0 {
		if r.pos >= len(r.buf) {
			return 0, r.need(8)
		}
		b := r.buf[r.pos]
		r.pos++
		return b, nil
	}

	v, err := r.ReadBits(8)
	return byte(v), err
}

// AlignToByte discards the rest of a partially consumed byte.
func (r *Reader) AlignToByte() {
	if r.bit > 0 {
		r.bit = 0
		r.pos++
	}
}

// Seek moves the cursor to the start of byte pos.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return &OutOfBoundsError{BitPos: int64(pos) * 8, Need: 0, Have: int64(len(r.buf)-pos) * 8}
	}
	r.pos = pos
	r.bit = 0
	return nil
}

// Tail returns up to n bytes from the cursor's byte without advancing.
// Unlike Peek it never fails, which makes it suitable for diagnostics.
func (r *Reader) Tail(n int) []byte {
	if r.pos >= len(r.buf) || n <= 0 {
		return nil
	}
	end := min(r.pos+n, len(r.buf))
	out := make([]byte, end-r.pos)
	copy(out, r.buf[r.pos:end])
	return out
}
