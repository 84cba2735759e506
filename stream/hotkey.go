package stream

import (
	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// readLegacyHotkey reads a control-group event. A first byte above 3 opens
// an extended form: a flag byte, first>>3 overlay bytes, and up to two more
// bytes gated by the flag byte.
func readLegacyHotkey(r *wire.Reader, group uint8) (event.Hotkey, error) {
	hk := event.Hotkey{Group: group}
	first, err := r.ReadByte()
	if err != nil {
		return hk, err
	}
	hk.Action = event.HotkeyAction(first & 0x03)
	if first <= 0x03 {
		return hk, nil
	}

	if hk.Flags, err = r.ReadByte(); err != nil {
		return hk, err
	}
	if hk.Overlay, err = r.ReadBytes(int(first >> 3)); err != nil {
		return hk, err
	}
	if hk.Flags&0x07 > 0x04 {
		b, err := r.ReadByte()
		if err != nil {
			return hk, err
		}
		hk.Extra = append(hk.Extra, b)
	}
	if hk.Flags&0x08 != 0 {
		b, err := r.ReadByte()
		if err != nil {
			return hk, err
		}
		hk.Extra = append(hk.Extra, b)
	}
	return hk, nil
}

// readControlGroup reads a bit-packed control-group update
func readControlGroup(r *wire.Reader, p profile) (event.Hotkey, error) {
	var hk event.Hotkey
	vals, err := readBitFields(r, 4, 2)
	if err != nil {
		return hk, err
	}
	hk.Group, hk.Action = uint8(vals[0]), event.HotkeyAction(vals[1])

	mask, err := readBitDeselect(r, p)
	if err != nil {
		return hk, err
	}
	if mask.Type != event.DeselectNone {
		hk.Mask = &mask
	}
	return hk, nil
}
