package machine

import (
	"fmt"

	"sc64/bus"
)

// Memory is the RAM responder: little-endian, byte-addressed, with
// wait-state and fault-window knobs so tests can model slow or
// broken parts. Out-of-range traffic answers a bus fault.
type Memory struct {
	cells []byte

	// wait inserts n not-ready polls before each answer
	wait    int
	pending int

	// [faultLo, faultHi) answers Fault, empty by default
	faultLo uint64
	faultHi uint64
}

// NewMemory returns size bytes of zeroed RAM.
func NewMemory(size int) *Memory {
	return &Memory{cells: make([]byte, size)}
}

// Size returns the RAM size in bytes.
func (m *Memory) Size() int {
	return len(m.cells)
}

// SetWait makes every access burn n extra polls.
func (m *Memory) SetWait(n int) {
	m.wait = n
}

// SetFaultWindow makes accesses inside [lo, hi) answer a bus fault.
func (m *Memory) SetFaultWindow(lo, hi uint64) {
	m.faultLo, m.faultHi = lo, hi
}

// Tick answers one poll of the pending request.
func (m *Memory) Tick(req *bus.Request) bus.Reply {
	if req == nil {
		return bus.Reply{}
	}
	if m.pending < m.wait {
		m.pending++
		return bus.Reply{}
	}
	m.pending = 0
	if req.Addr >= m.faultLo && req.Addr < m.faultHi {
		return bus.Reply{Fault: true}
	}
	n := req.Size.Bytes()
	if req.Addr > uint64(len(m.cells)) || uint64(len(m.cells))-req.Addr < n {
		return bus.Reply{Fault: true}
	}
	if req.Write {
		m.put(req.Addr, n, req.Data)
		return bus.Reply{Ready: true}
	}
	return bus.Reply{Ready: true, Data: m.get(req.Addr, n)}
}

func (m *Memory) get(addr, n uint64) uint64 {
	var v uint64
	for i := uint64(0); i < n; i++ {
		v |= uint64(m.cells[addr+i]) << (8 * i)
	}
	return v
}

func (m *Memory) put(addr, n, v uint64) {
	for i := uint64(0); i < n; i++ {
		m.cells[addr+i] = byte(v >> (8 * i))
	}
}

// Word returns the 32-bit word at addr, the embedder's view around
// the bus.
func (m *Memory) Word(addr uint64) uint32 {
	return uint32(m.get(addr, 4))
}

// SetWord stores a 32-bit word at addr.
func (m *Memory) SetWord(addr uint64, v uint32) {
	m.put(addr, 4, uint64(v))
}

// Load copies a raw image to offset.
func (m *Memory) Load(offset uint64, p []byte) error {
	if offset > uint64(len(m.cells)) || uint64(len(m.cells))-offset < uint64(len(p)) {
		return fmt.Errorf("image of %d bytes does not fit at %#x", len(p), offset)
	}
	copy(m.cells[offset:], p)
	return nil
}

// LoadWords stores a program image word by word from offset.
func (m *Memory) LoadWords(offset uint64, words []uint32) error {
	if offset > uint64(len(m.cells)) || uint64(len(m.cells))-offset < uint64(len(words))*4 {
		return fmt.Errorf("program of %d words does not fit at %#x", len(words), offset)
	}
	for i, w := range words {
		m.SetWord(offset+uint64(i)*4, w)
	}
	return nil
}
