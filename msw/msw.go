package msw

/**
Machine status word package
*/

// status word layout. Values here are bits, not the powers of 2
const (
	privFlag    = 0
	xenFlag     = 1
	tenFlag     = 2
	henFlag     = 3
	cenFlag     = 4
	critFlag    = 5
	mmuFlag     = 6
	overFlag    = 7
	swapFlag    = 8
	foreignFlag = 9
)

// the register ceiling occupies bits 16..23
const ceilingShift = 16
const ceilingMask = 0xFF

// Reset is the word after power-on: privileged, every request line
// masked, all 256 registers reachable, translation, overlord and
// foreign decode off.
const Reset = Word(1<<privFlag | ceilingMask<<ceilingShift)

// Word keeps one machine status word. The core holds two of them,
// current and mirror, and flips between them on every privilege
// transition.
type Word uint64

// Get returns the raw status word
func (w Word) Get() uint64 {
	return uint64(w)
}

// Set the raw status word
func (w *Word) Set(v uint64) {
	*w = Word(v)
}

// Priv - privileged mode
func (w Word) Priv() bool {
	return w.getFlag(privFlag)
}

// SetPriv sets privileged mode
func (w *Word) SetPriv(status bool) {
	w.setFlag(privFlag, status)
}

// Xen - exception enable. With Xen clear any fault is terminal.
func (w Word) Xen() bool {
	return w.getFlag(xenFlag)
}

// SetXen sets exception enable
func (w *Word) SetXen(status bool) {
	w.setFlag(xenFlag, status)
}

// Ten - timer request enable
func (w Word) Ten() bool {
	return w.getFlag(tenFlag)
}

// SetTen sets timer request enable
func (w *Word) SetTen(status bool) {
	w.setFlag(tenFlag, status)
}

// Hen - hardware request enable
func (w Word) Hen() bool {
	return w.getFlag(henFlag)
}

// SetHen sets hardware request enable
func (w *Word) SetHen(status bool) {
	w.setFlag(henFlag, status)
}

// Cen - coprocessor request enable
func (w Word) Cen() bool {
	return w.getFlag(cenFlag)
}

// SetCen sets coprocessor request enable
func (w *Word) SetCen(status bool) {
	w.setFlag(cenFlag, status)
}

// Crit - critical section marker, exported to the embedder
func (w Word) Crit() bool {
	return w.getFlag(critFlag)
}

// SetCrit sets the critical section marker
func (w *Word) SetCrit(status bool) {
	w.setFlag(critFlag, status)
}

// MMU - address translation enable
func (w Word) MMU() bool {
	return w.getFlag(mmuFlag)
}

// SetMMU sets address translation enable
func (w *Word) SetMMU(status bool) {
	w.setFlag(mmuFlag, status)
}

// Over - overlord mask enable
func (w Word) Over() bool {
	return w.getFlag(overFlag)
}

// SetOver sets overlord mask enable
func (w *Word) SetOver(status bool) {
	w.setFlag(overFlag, status)
}

// Swap - byte-swap fetched words before decode
func (w Word) Swap() bool {
	return w.getFlag(swapFlag)
}

// SetSwap sets the byte-swap flag
func (w *Word) SetSwap(status bool) {
	w.setFlag(swapFlag, status)
}

// Foreign - foreign-ISA decode and the zero-register convention
func (w Word) Foreign() bool {
	return w.getFlag(foreignFlag)
}

// SetForeign sets foreign-ISA decode
func (w *Word) SetForeign(status bool) {
	w.setFlag(foreignFlag, status)
}

// Ceiling returns the highest reachable register index
func (w Word) Ceiling() uint8 {
	return uint8(w >> ceilingShift & ceilingMask)
}

// SetCeiling sets the highest reachable register index
func (w *Word) SetCeiling(c uint8) {
	*w = *w&^Word(ceilingMask<<ceilingShift) | Word(c)<<ceilingShift
}

// generic get flag function
func (w Word) getFlag(flag uint) bool {
	return (w & (1 << flag)) > 0
}

// generic set flag function
func (w *Word) setFlag(flag uint, status bool) {
	if status {
		*w |= (1 << flag)
	} else {
		*w &^= (1 << flag)
	}
}

// GetFlags returns set flags as a short string for the front panel
func (w Word) GetFlags() string {
	var flags string
	if w.Priv() {
		flags = "P"
	} else {
		flags = "u"
	}
	for _, f := range []struct {
		on  bool
		tag string
	}{
		{w.Xen(), "X"},
		{w.Ten(), "T"},
		{w.Hen(), "H"},
		{w.Cen(), "C"},
		{w.Crit(), "!"},
		{w.MMU(), "M"},
		{w.Over(), "O"},
		{w.Swap(), "S"},
		{w.Foreign(), "F"},
	} {
		if f.on {
			flags += f.tag
		} else {
			flags += " "
		}
	}
	return "[" + flags + "]"
}
