package core

// Overmask is the opcode veto set: one bit per lookup opcode. It is
// kept as a single 256-bit set; the eight 32-bit words the program
// sees are only a projection at the control-register boundary.
type Overmask [4]uint64

// Test reports whether a lookup opcode is vetoed.
func (m *Overmask) Test(op uint8) bool {
	return m[op>>6]&(1<<(op&63)) != 0
}

// Set raises the veto bit for one opcode.
func (m *Overmask) Set(op uint8) {
	m[op>>6] |= 1 << (op & 63)
}

// Clear drops the veto bit for one opcode.
func (m *Overmask) Clear(op uint8) {
	m[op>>6] &^= 1 << (op & 63)
}

// SetWord splices one 32-bit projection word into the set. i counts
// 0..7 from the low end.
func (m *Overmask) SetWord(i int, w uint32) {
	shift := uint(i&1) * 32
	m[i>>1] = m[i>>1]&^(uint64(0xFFFFFFFF)<<shift) | uint64(w)<<shift
}

// Word returns one 32-bit projection word.
func (m *Overmask) Word(i int) uint32 {
	return uint32(m[i>>1] >> (uint(i&1) * 32))
}
