package wire

import (
	"encoding/binary"
)

// FixedDecoder handles fixed-width integer operations. Big-endian reads go
// through the bit cursor so they work at any bit offset.
type FixedDecoder struct {
	reader *Reader
}

// FixedEncoder handles fixed-width integer operations
type FixedEncoder struct {
	encoder *Encoder
}

// NewFixedDecoder creates a new fixed decoder
func NewFixedDecoder(r *Reader) *FixedDecoder {
	return &FixedDecoder{reader: r}
}

// NewFixedEncoder creates a new fixed encoder
func NewFixedEncoder(e *Encoder) *FixedEncoder {
	return &FixedEncoder{encoder: e}
}

// DECODER METHODS

// ReadUint16 reads a big-endian 16-bit value
func (fd *FixedDecoder) ReadUint16() (uint16, error) {
	v, err := fd.reader.ReadBits(16)
	return uint16(v), err
}

// ReadUint24 reads a big-endian 24-bit value
func (fd *FixedDecoder) ReadUint24() (uint32, error) {
	v, err := fd.reader.ReadBits(24)
	return uint32(v), err
}

// ReadUint32 reads a big-endian 32-bit value
func (fd *FixedDecoder) ReadUint32() (uint32, error) {
	v, err := fd.reader.ReadBits(32)
	return uint32(v), err
}

// ReadUint64 reads a big-endian 64-bit value
func (fd *FixedDecoder) ReadUint64() (uint64, error) {
	return fd.reader.ReadBits(64)
}

// ReadUint32LE reads a little-endian 32-bit value
func (fd *FixedDecoder) ReadUint32LE() (uint32, error) {
	b, err := fd.reader.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32LE reads a little-endian signed 32-bit value
func (fd *FixedDecoder) ReadInt32LE() (int32, error) {
	v, err := fd.ReadUint32LE()
	return int32(v), err
}

// ENCODER METHODS

func (fe *FixedEncoder) WriteUint16(v uint16) { fe.encoder.WriteBits(uint64(v), 16) }
func (fe *FixedEncoder) WriteUint24(v uint32) { fe.encoder.WriteBits(uint64(v), 24) }
func (fe *FixedEncoder) WriteUint32(v uint32) { fe.encoder.WriteBits(uint64(v), 32) }
func (fe *FixedEncoder) WriteUint64(v uint64) { fe.encoder.WriteBits(v, 64) }

// WriteUint32LE writes a little-endian 32-bit value
func (fe *FixedEncoder) WriteUint32LE(v uint32) {
	fe.encoder.WriteBytes(binary.LittleEndian.AppendUint32(nil, v))
}

// CONVENIENCE METHODS

func (r *Reader) ReadUint16() (uint16, error)   { return NewFixedDecoder(r).ReadUint16() }
func (r *Reader) ReadUint24() (uint32, error)   { return NewFixedDecoder(r).ReadUint24() }
func (r *Reader) ReadUint32() (uint32, error)   { return NewFixedDecoder(r).ReadUint32() }
func (r *Reader) ReadUint64() (uint64, error)   { return NewFixedDecoder(r).ReadUint64() }
func (r *Reader) ReadUint32LE() (uint32, error) { return NewFixedDecoder(r).ReadUint32LE() }
func (r *Reader) ReadInt32LE() (int32, error)   { return NewFixedDecoder(r).ReadInt32LE() }

func (e *Encoder) WriteUint16(v uint16)   { NewFixedEncoder(e).WriteUint16(v) }
func (e *Encoder) WriteUint24(v uint32)   { NewFixedEncoder(e).WriteUint24(v) }
func (e *Encoder) WriteUint32(v uint32)   { NewFixedEncoder(e).WriteUint32(v) }
func (e *Encoder) WriteUint64(v uint64)   { NewFixedEncoder(e).WriteUint64(v) }
func (e *Encoder) WriteUint32LE(v uint32) { NewFixedEncoder(e).WriteUint32LE(v) }
