package core

import (
	"sc64/exception"
	"sc64/mmu"
)

// control register indexes
const (
	CregID     = 0x00
	CregXNum   = 0x01
	CregFlags  = 0x02
	CregXFlags = 0x03 // mirror status word
	CregXAddr  = 0x04
	CregXXAddr = 0x05 // mirror exception address
	CregTimer  = 0x06
	CregScr0   = 0x08
	CregScr1   = 0x09
	CregGPIO   = 0x0A
	CregSig    = 0x0F
	CregMMUV   = 0x10 // slot virtual words through 0x17
	CregMMUP   = 0x20 // slot physical words through 0x27
	CregOver   = 0x30 // eight mask words through 0x37
)

// cpuid reads back the shape of the machine: max register index,
// table version, slot count and the vendor tag in the high half.
const cpuid = 0xFF | 2<<8 | mmu.Slots<<16 | uint64(0x53433634)<<32

// ReadCreg returns one control register as the program sees it.
// Unassigned indexes read zero.
func (c *CPU) ReadCreg(ix uint8) uint64 {
	switch {
	case ix == CregID:
		return cpuid
	case ix == CregXNum:
		return uint64(c.xnum)
	case ix == CregFlags:
		return c.flags[c.ctx].Get()
	case ix == CregXFlags:
		return c.flags[c.ctx^1].Get()
	case ix == CregXAddr:
		return c.xaddr[c.ctx]
	case ix == CregXXAddr:
		return c.xaddr[c.ctx^1]
	case ix == CregTimer:
		return c.tmr.Control()
	case ix == CregScr0:
		return c.scratch[0]
	case ix == CregScr1:
		return c.scratch[1]
	case ix == CregGPIO:
		return c.gpioIn
	case ix == CregSig:
		return c.sig
	case ix >= CregMMUV && ix < CregMMUV+mmu.Slots:
		return c.mmunit.Virt(int(ix - CregMMUV))
	case ix >= CregMMUP && ix < CregMMUP+mmu.Slots:
		return c.mmunit.Phys(int(ix - CregMMUP))
	case ix >= CregOver && ix < CregOver+8:
		return uint64(c.over.Word(int(ix - CregOver)))
	}
	return 0
}

// writeCreg commits one control-register write. The status and
// exception-address words land here from INITIAL (the controller
// defers them one state), everything else from CLEANUP. Read-only
// indexes swallow the write.
func (c *CPU) writeCreg(ix uint8, v uint64) {
	switch {
	case ix == CregID || ix == CregXNum:
		// read-only
	case ix == CregFlags:
		c.flags[c.ctx].Set(v)
	case ix == CregXFlags:
		c.flags[c.ctx^1].Set(v)
	case ix == CregXAddr:
		c.xaddr[c.ctx] = v
	case ix == CregXXAddr:
		c.xaddr[c.ctx^1] = v
	case ix == CregTimer:
		c.tmr.SetControl(v)
	case ix == CregScr0:
		c.scratch[0] = v
	case ix == CregScr1:
		c.scratch[1] = v
	case ix == CregGPIO:
		c.gpioOut = v
	case ix == CregSig:
		c.sig = v
	case ix >= CregMMUV && ix < CregMMUV+mmu.Slots:
		c.mmunit.SetVirt(int(ix-CregMMUV), v)
	case ix >= CregMMUP && ix < CregMMUP+mmu.Slots:
		c.mmunit.SetPhys(int(ix-CregMMUP), v)
	case ix >= CregOver && ix < CregOver+8:
		c.over.SetWord(int(ix-CregOver), uint32(v))
	}
}

// deferredCreg reports whether writes to the index must wait for the
// next INITIAL instead of landing at CLEANUP.
func deferredCreg(ix uint8) bool {
	switch ix {
	case CregFlags, CregXFlags, CregXAddr, CregXXAddr:
		return true
	}
	return false
}

// XNum returns the code of the last exception taken.
func (c *CPU) XNum() exception.Code {
	return c.xnum
}
