package wire

// Encoder is the write-side mirror of Reader: it packs bits most
// significant first and is used to build round-trip fixtures and
// re-encode struct trees.
type Encoder struct {
	buf []byte
	bit uint8 // bits used in the last byte, 0 when aligned
}

// NewEncoder creates a new bit encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// Bytes returns the encoded bytes. A partial final byte is zero padded.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder for reuse
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.bit = 0
}

// Len returns the number of bytes started so far.
func (e *Encoder) Len() int { return len(e.buf) }

// WriteBits writes the low n bits of v, most significant first.
func (e *Encoder) WriteBits(v uint64, n int) {
	for n > 0 {
		if e.bit == 0 {
			if n >= 8 {
				e.buf = append(e.buf, byte(v>>(n-8)))
				n -= 8
				continue
			}
			e.buf = append(e.buf, 0)
		}

		avail := 8 - int(e.bit)
		take := min(avail, n)
		chunk := byte(v>>(n-take)) & byte(1<<take-1)
		e.buf[len(e.buf)-1] |= chunk << (avail - take)

		e.bit += uint8(take)
		if e.bit == 8 {
			e.bit = 0
		}
		n -= take
	}
}

// WriteBit writes a single bit.
func (e *Encoder) WriteBit(b bool) {
	if b {
		e.WriteBits(1, 1)
		return
	}
	e.WriteBits(0, 1)
}

// WriteUint8 writes one byte at the current bit position.
func (e *Encoder) WriteUint8(b byte) {
	if e.bit == 0 {
		e.buf = append(e.buf, b)
		return
	}
	e.WriteBits(uint64(b), 8)
}

// Align pads the current byte with zero bits.
func (e *Encoder) Align() {
	e.bit = 0
}
