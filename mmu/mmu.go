package mmu

import (
	"sc64/bus"
)

// Kind distinguishes what the caller wants from the mapped window.
type Kind uint8

// access kinds
const (
	Read Kind = iota
	Write
	Exec
)

// Slots is the number of mapping slots the unit implements.
const Slots = 8

// virtual-word control bits, low bits of the slot's first register
const (
	SlotEnabled = 1 << 0
	SlotPriv    = 1 << 1
	SlotRead    = 1 << 2
	SlotWrite   = 1 << 3
	SlotExec    = 1 << 4
	SlotIO      = 1 << 5
)

// both bases are 1KB aligned; the window shift sits in the low bits
// of the physical word, window length = 1024 << shift
const (
	baseMask  = ^uint64(0x3FF)
	shiftMask = 0x1F
)

// MMU maps virtual to physical addresses through eight slot pairs.
// Slots hold the raw control-register words and decode their fields
// on every lookup, which keeps the control-register round trip exact.
type MMU struct {
	virt [Slots]uint64
	phys [Slots]uint64
}

// New returns a unit with every slot disabled.
func New() *MMU {
	return &MMU{}
}

// SetVirt stores the raw virtual word of one slot.
func (m *MMU) SetVirt(slot int, w uint64) {
	m.virt[slot] = w
}

// Virt returns the raw virtual word of one slot.
func (m *MMU) Virt(slot int) uint64 {
	return m.virt[slot]
}

// SetPhys stores the raw physical word of one slot.
func (m *MMU) SetPhys(slot int, w uint64) {
	m.phys[slot] = w
}

// Phys returns the raw physical word of one slot.
func (m *MMU) Phys(slot int) uint64 {
	return m.phys[slot]
}

// Window returns the byte length of one slot's mapped window.
func (m *MMU) Window(slot int) uint64 {
	return 1024 << (m.phys[slot] & shiftMask)
}

// Translate maps one access of size bytes starting at addr. With
// translation off the address passes through untouched. Slots are
// scanned lowest index first and the first hit decides the outcome:
// a privilege or permission miss on that slot faults even if a later
// slot would have allowed the access. No match at all faults the
// same way.
func (m *MMU) Translate(addr uint64, size bus.Size, kind Kind, io, priv, on bool) (uint64, bool) {
	if !on {
		return addr, true
	}
	n := size.Bytes()
	for i := 0; i < Slots; i++ {
		v := m.virt[i]
		if v&SlotEnabled == 0 {
			continue
		}
		if (v&SlotIO != 0) != io {
			continue
		}
		base := v & baseMask
		if addr < base {
			continue
		}
		off := addr - base
		window := m.Window(i)
		if off >= window || window-off < n {
			continue
		}
		if v&SlotPriv != 0 && !priv {
			return 0, false
		}
		var need uint64
		switch kind {
		case Read:
			need = SlotRead
		case Write:
			need = SlotWrite
		case Exec:
			need = SlotExec
		}
		if v&need == 0 {
			return 0, false
		}
		return m.phys[i]&baseMask + off, true
	}
	return 0, false
}
