package stream

import (
	"testing"

	"github.com/ggtracker/sc2reader-sub000/wire"
)

// carryWriter is the inverse of carry: it produces the raw bytes that a
// carry-based reader turns back into the written values.
type carryWriter struct {
	raw   []byte
	width uint8
}

func newCarryWriter(deselect byte) *carryWriter {
	return &carryWriter{raw: []byte{deselect & 0x03}, width: 2}
}

func (w *carryWriter) next(v byte) {
	if w.width == 0 {
		w.raw = append(w.raw, v)
		return
	}
	m := lowMask(w.width)
	w.raw[len(w.raw)-1] |= v &^ m
	w.raw = append(w.raw, v&m)
}

func (w *carryWriter) bits(k uint8, v byte) {
	if k == 0 {
		return
	}
	if w.width == 0 {
		w.raw = append(w.raw, v&lowMask(k))
		w.width = k
		return
	}
	avail := 8 - w.width
	last := len(w.raw) - 1
	switch {
	case k < avail:
		w.raw[last] |= (v & lowMask(k)) << w.width
		w.width += k
	case k == avail:
		w.raw[last] |= v << w.width
		w.width = 0
	default:
		w.raw[last] |= (v & lowMask(avail)) << w.width
		w.raw = append(w.raw, (v>>avail)&lowMask(k-avail))
		w.width = k - avail
	}
}

func (w *carryWriter) word(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.next(byte(v >> (8 * i)))
	}
}

// legacyEvent encodes one legacy game event
func legacyEvent(t *testing.T, delta uint32, cat, player byte, code byte, payload ...byte) []byte {
	t.Helper()
	e := wire.NewEncoder()
	if err := e.WriteFrameDelta(delta); err != nil {
		t.Fatal(err)
	}
	e.WriteUint8(cat<<5 | player)
	e.WriteUint8(code)
	e.WriteBytes(payload)
	return e.Bytes()
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u16(p *uint16) uint16 {
	if p == nil {
		return 0
	}
	return *p
}
