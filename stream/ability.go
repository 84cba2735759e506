package stream

import (
	"github.com/ggtracker/sc2reader-sub000/event"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// ability codes whose low byte is at most this are fixed command-card slots
// and carry no target
const maxCommandCardSlot = 0x07

// readLegacyAbility reads a 3-byte ability code and its target data. The
// sub-type byte decides how much target data follows; a set top bit in the
// code adds a queued-order block.
func readLegacyAbility(r *wire.Reader) (event.Ability, error) {
	var a event.Ability
	code, err := r.ReadUint24()
	if err != nil {
		return a, err
	}
	a.Code = code
	if a.SubType, err = r.ReadByte(); err != nil {
		return a, err
	}

	if code&0xFF > maxCommandCardSlot {
		switch a.SubType {
		case 0x10:
			p, err := readLegacyPoint(r)
			if err != nil {
				return a, err
			}
			z, err := r.ReadByte()
			if err != nil {
				return a, err
			}
			p.Z = int32(z)
			a.Target, a.Point = event.TargetPoint, &p

		case 0x20:
			u, err := readLegacyUnitTarget(r)
			if err != nil {
				return a, err
			}
			a.Target, a.Unit = event.TargetUnit, &u
		}
	}

	if code&0x800000 != 0 {
		if a.Queued, err = r.ReadBytes(9); err != nil {
			return a, err
		}
	}
	return a, nil
}

func readLegacyPoint(r *wire.Reader) (event.Point, error) {
	x, err := r.ReadUint24()
	if err != nil {
		return event.Point{}, err
	}
	y, err := r.ReadUint24()
	if err != nil {
		return event.Point{}, err
	}
	return event.Point{X: int32(x), Y: int32(y)}, nil
}

func readLegacyUnitTarget(r *wire.Reader) (event.UnitTarget, error) {
	var u event.UnitTarget
	var err error
	if u.Flags, err = r.ReadByte(); err != nil {
		return u, err
	}
	if u.Player, err = r.ReadByte(); err != nil {
		return u, err
	}
	if u.ID, err = r.ReadUint32(); err != nil {
		return u, err
	}
	if u.Type, err = r.ReadUint24(); err != nil {
		return u, err
	}
	u.Point, err = readLegacyPoint(r)
	return u, err
}

// readCommand reads a bit-packed command event.
func readCommand(r *wire.Reader, p profile) (event.Ability, error) {
	var a event.Ability
	flags, err := r.ReadBits(p.abilityFlagBits)
	if err != nil {
		return a, err
	}
	a.Flags = uint32(flags)

	hasAbility, err := r.ReadBit()
	if err != nil {
		return a, err
	}
	if hasAbility {
		link, err := r.ReadBits(16)
		if err != nil {
			return a, err
		}
		index, err := r.ReadBits(5)
		if err != nil {
			return a, err
		}
		a.Code = uint32(link)<<5 | uint32(index)

		hasData, err := r.ReadBit()
		if err != nil {
			return a, err
		}
		if hasData {
			if _, err := r.ReadBits(8); err != nil {
				return a, err
			}
		}
	}

	target, err := r.ReadBits(2)
	if err != nil {
		return a, err
	}
	switch target {
	case 1:
		pt, err := readBitPoint(r)
		if err != nil {
			return a, err
		}
		a.Target, a.Point = event.TargetPoint, &pt

	case 2:
		var u event.UnitTarget
		vals, err := readBitFields(r, 8, 8, 32, 16)
		if err != nil {
			return a, err
		}
		u.Flags, u.Timer, u.ID, u.Type = uint8(vals[0]), uint8(vals[1]), uint32(vals[2]), uint32(vals[3])

		hasPlayer, err := r.ReadBit()
		if err != nil {
			return a, err
		}
		if hasPlayer {
			pl, err := r.ReadBits(4)
			if err != nil {
				return a, err
			}
			u.Player = uint8(pl)
		}
		if u.Point, err = readBitPoint(r); err != nil {
			return a, err
		}
		a.Target, a.Unit = event.TargetUnit, &u

	case 3:
		data, err := r.ReadBits(32)
		if err != nil {
			return a, err
		}
		a.Target, a.Data = event.TargetData, uint32(data)
	}

	if p.otherUnit {
		hasOther, err := r.ReadBit()
		if err != nil {
			return a, err
		}
		if hasOther {
			if _, err := r.ReadBits(32); err != nil {
				return a, err
			}
		}
	}
	return a, nil
}

// readBitPoint reads x and y as 20 bits and z as a signed 32-bit value
func readBitPoint(r *wire.Reader) (event.Point, error) {
	vals, err := readBitFields(r, 20, 20, 32)
	if err != nil {
		return event.Point{}, err
	}
	return event.Point{X: int32(vals[0]), Y: int32(vals[1]), Z: int32(uint32(vals[2]))}, nil
}

// readBitFields reads consecutive fields of the given widths
func readBitFields(r *wire.Reader, widths ...int) ([]uint64, error) {
	out := make([]uint64, len(widths))
	for i, w := range widths {
		v, err := r.ReadBits(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
