package stream

import (
	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// carry tracks a legacy selection payload that is not byte aligned. The low
// width bits of last were already consumed; the next value byte combines the
// remaining high bits of last with the low width bits of the following raw
// byte. A width of 0 means the stream is aligned again.
type carry struct {
	last  byte
	width uint8
}

func lowMask(n uint8) byte {
	return byte(1)<<n - 1
}

// next reads one value byte through the carry
func (c carry) next(r *wire.Reader) (byte, carry, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, c, err
	}
	if c.width == 0 {
		return b, carry{last: b}, nil
	}
	m := lowMask(c.width)
	return (c.last &^ m) | (b & m), carry{last: b, width: c.width}, nil
}

// bits reads k < 8 value bits, taking the pending high bits of last first.
func (c carry) bits(r *wire.Reader, k uint8) (byte, carry, error) {
	if k == 0 {
		return 0, c, nil
	}
	if c.width == 0 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, c, err
		}
		return b & lowMask(k), carry{last: b, width: k}, nil
	}

	avail := 8 - c.width
	switch {
	case k < avail:
		return (c.last >> c.width) & lowMask(k), carry{last: c.last, width: c.width + k}, nil
	case k == avail:
		return c.last >> c.width, carry{last: c.last}, nil
	}

	b, err := r.ReadByte()
	if err != nil {
		return 0, c, err
	}
	v := c.last>>c.width | (b&lowMask(k-avail))<<avail
	return v, carry{last: b, width: k - avail}, nil
}

// word reads n value bytes big-endian through the carry
func (c carry) word(r *wire.Reader, n int) (uint32, carry, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, nc, err := c.next(r)
		if err != nil {
			return 0, c, err
		}
		v = v<<8 | uint32(b)
		c = nc
	}
	return v, c, nil
}

// readLegacySelection reads a selection change. Everything after the
// deselect byte goes through the carry, whose width the deselect part sets.
func readLegacySelection(r *wire.Reader, bank uint8) (event.Selection, error) {
	sel := event.Selection{Bank: bank}
	var err error
	if sel.Lead, err = r.ReadByte(); err != nil {
		return sel, err
	}
	b, err := r.ReadByte()
	if err != nil {
		return sel, err
	}
	c := carry{last: b, width: 2}
	sel.Deselect.Type = event.DeselectType(b & 0x03)

	var v byte
	switch sel.Deselect.Type {
	case event.DeselectMask:
		if v, c, err = c.next(r); err != nil {
			return sel, err
		}
		count := v
		sel.Deselect.MaskBits = int(count)
		for i := 0; i < int(count/8); i++ {
			if v, c, err = c.next(r); err != nil {
				return sel, err
			}
			sel.Deselect.Mask = append(sel.Deselect.Mask, v)
		}
		if rem := count % 8; rem > 0 {
			if v, c, err = c.bits(r, rem); err != nil {
				return sel, err
			}
			sel.Deselect.Mask = append(sel.Deselect.Mask, v)
		}

	case event.DeselectOneIndices, event.DeselectZeroIndices:
		// Both list variants share one layout and keep the 2-bit offset of
		// the deselect byte. Older decoders were unsure this holds for the
		// zero-indices variant; it is kept as observed.
		if v, c, err = c.next(r); err != nil {
			return sel, err
		}
		count := int(v)
		for i := 0; i < count; i++ {
			if v, c, err = c.next(r); err != nil {
				return sel, err
			}
			sel.Deselect.Indices = append(sel.Deselect.Indices, uint16(v))
		}
	}

	if v, c, err = c.next(r); err != nil {
		return sel, err
	}
	typeCount := int(v)
	for i := 0; i < typeCount; i++ {
		var unitType uint32
		if unitType, c, err = c.word(r, 3); err != nil {
			return sel, err
		}
		if v, c, err = c.next(r); err != nil {
			return sel, err
		}
		sel.Types = append(sel.Types, event.UnitTypeCount{Type: unitType, Count: uint16(v)})
	}

	if v, c, err = c.next(r); err != nil {
		return sel, err
	}
	idCount := int(v)
	for i := 0; i < idCount; i++ {
		var id uint32
		if id, c, err = c.word(r, 4); err != nil {
			return sel, err
		}
		sel.UnitIDs = append(sel.UnitIDs, id)
	}
	return sel, nil
}

// readBitDeselect reads the bit-packed removal mask shared by selection
// deltas and control-group updates.
func readBitDeselect(r *wire.Reader, p profile) (event.Deselect, error) {
	var d event.Deselect
	kind, err := r.ReadBits(2)
	if err != nil {
		return d, err
	}
	d.Type = event.DeselectType(kind)

	switch d.Type {
	case event.DeselectMask:
		n, err := r.ReadBits(p.selectionCountBits)
		if err != nil {
			return d, err
		}
		d.MaskBits = int(n)
		if d.Mask, err = readBitMask(r, d.MaskBits); err != nil {
			return d, err
		}

	case event.DeselectOneIndices, event.DeselectZeroIndices:
		n, err := r.ReadBits(p.selectionCountBits)
		if err != nil {
			return d, err
		}
		for i := 0; i < int(n); i++ {
			idx, err := r.ReadBits(p.selectionCountBits)
			if err != nil {
				return d, err
			}
			d.Indices = append(d.Indices, uint16(idx))
		}
	}
	return d, nil
}

// readBitMask reads n bits into bytes, least significant bit first per
// byte, matching the legacy mask layout.
func readBitMask(r *wire.Reader, n int) ([]byte, error) {
	mask := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		if bit {
			mask[i/8] |= 1 << (i % 8)
		}
	}
	return mask, nil
}

// readSelectionDelta reads a bit-packed selection change
func readSelectionDelta(r *wire.Reader, p profile) (event.Selection, error) {
	var sel event.Selection
	bank, err := r.ReadBits(4)
	if err != nil {
		return sel, err
	}
	sel.Bank = uint8(bank)

	lead, err := r.ReadBits(p.selectionCountBits)
	if err != nil {
		return sel, err
	}
	sel.Lead = uint8(lead)

	if sel.Deselect, err = readBitDeselect(r, p); err != nil {
		return sel, err
	}

	n, err := r.ReadBits(p.selectionCountBits)
	if err != nil {
		return sel, err
	}
	for i := 0; i < int(n); i++ {
		// unit link, subgroup priority, intra-subgroup priority, count
		vals, err := readBitFields(r, 16, 8, 8, p.selectionCountBits)
		if err != nil {
			return sel, err
		}
		sel.Types = append(sel.Types, event.UnitTypeCount{Type: uint32(vals[0]), Count: uint16(vals[3])})
	}

	n, err = r.ReadBits(p.selectionCountBits)
	if err != nil {
		return sel, err
	}
	for i := 0; i < int(n); i++ {
		tag, err := r.ReadBits(32)
		if err != nil {
			return sel, err
		}
		sel.UnitIDs = append(sel.UnitIDs, uint32(tag))
	}
	return sel, nil
}
