package regfile

/**
 * General register file. The execution controller owns the file and
 * refreshes the ceiling and the zero-register convention from the
 * current status word once per cycle; everything else only borrows
 * access for the duration of that cycle.
 */

// Max is the largest register count the machine can implement.
const Max = 256

// File holds the general registers.
type File struct {
	regs    []uint64
	ceiling uint8
	zero    bool
}

// New returns a file with n implemented registers. n is clamped to
// 1..Max and the ceiling starts fully open.
func New(n int) *File {
	if n < 1 {
		n = 1
	}
	if n > Max {
		n = Max
	}
	return &File{regs: make([]uint64, n), ceiling: 0xFF}
}

// Len returns the implemented register count.
func (f *File) Len() int {
	return len(f.regs)
}

// SetCeiling sets the highest index reachable this cycle.
func (f *File) SetCeiling(c uint8) {
	f.ceiling = c
}

// SetZeroReg toggles the foreign-ISA zero-register convention.
func (f *File) SetZeroReg(on bool) {
	f.zero = on
}

// Reset clears every register and restores the constructor defaults
// for the ceiling and the zero convention.
func (f *File) Reset() {
	for i := range f.regs {
		f.regs[i] = 0
	}
	f.ceiling = 0xFF
	f.zero = false
}

// Check reports whether idx is reachable under the current ceiling
// and the implemented register count. Callers validate with Check
// before touching a register; Read and Write trust their argument.
func (f *File) Check(idx uint8) bool {
	return idx <= f.ceiling && int(idx) < len(f.regs)
}

// Read returns a register value. Under the zero-register convention
// index 0 reads as constant zero no matter what is stored there.
func (f *File) Read(idx uint8) uint64 {
	if f.zero && idx == 0 {
		return 0
	}
	return f.regs[idx]
}

// Write replaces a whole register. A zero-register write is
// discarded without touching the stored value, so the old value
// comes back when the convention is switched off again.
func (f *File) Write(idx uint8, v uint64) {
	if f.zero && idx == 0 {
		return
	}
	f.regs[idx] = v
}

// WriteHigh replaces bits 63:32 and keeps the low half.
func (f *File) WriteHigh(idx uint8, v uint32) {
	if f.zero && idx == 0 {
		return
	}
	f.regs[idx] = f.regs[idx]&0xFFFFFFFF | uint64(v)<<32
}
