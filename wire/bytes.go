package wire

// BytesDecoder handles raw byte run operations
type BytesDecoder struct {
	reader *Reader
}

// BytesEncoder handles raw byte run operations
type BytesEncoder struct {
	encoder *Encoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(r *Reader) *BytesDecoder {
	return &BytesDecoder{reader: r}
}

// NewBytesEncoder creates a new bytes encoder
func NewBytesEncoder(e *Encoder) *BytesEncoder {
	return &BytesEncoder{encoder: e}
}

// DECODER METHODS

// ReadBytes reads n bytes. On an aligned cursor this is a copy of the
// underlying run; otherwise every byte straddles two source bytes.
func (bd *BytesDecoder) ReadBytes(n int) ([]byte, error) {
	r := bd.reader
	if n < 0 {
		return nil, &CorruptError{Pos: r.pos, Reason: "negative byte count"}
	}
	if err := r.need(int64(n) * 8); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if r.bit == 0 {
		copy(out, r.buf[r.pos:r.pos+n])
		r.pos += n
		return out, nil
	}

	for i := range out {
		v, _ := r.ReadBits(8)
		out[i] = byte(v)
	}
	return out, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (bd *BytesDecoder) Peek(n int) ([]byte, error) {
	r := bd.reader
	pos, bit := r.pos, r.bit
	out, err := bd.ReadBytes(n)
	r.pos, r.bit = pos, bit
	return out, err
}

// Skip advances past n bytes.
func (bd *BytesDecoder) Skip(n int) error {
	r := bd.reader
	if n < 0 {
		return &CorruptError{Pos: r.pos, Reason: "negative skip"}
	}
	if err := r.need(int64(n) * 8); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// ENCODER METHODS

// WriteBytes writes p at the current bit position.
func (be *BytesEncoder) WriteBytes(p []byte) {
	e := be.encoder
	if e.bit == 0 {
		e.buf = append(e.buf, p...)
		return
	}
	for _, b := range p {
		e.WriteBits(uint64(b), 8)
	}
}

// CONVENIENCE METHODS

// ReadBytes reads n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return NewBytesDecoder(r).ReadBytes(n)
}

// Peek returns the next n bytes without consuming them.
func (r *Reader) Peek(n int) ([]byte, error) {
	return NewBytesDecoder(r).Peek(n)
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	return NewBytesDecoder(r).Skip(n)
}

// WriteBytes writes p.
func (e *Encoder) WriteBytes(p []byte) {
	NewBytesEncoder(e).WriteBytes(p)
}
