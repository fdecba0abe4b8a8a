package core

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"sc64/alu"
	"sc64/bus"
	"sc64/exception"
	"sc64/mmu"
	"sc64/msw"
	"sc64/regfile"
	"sc64/timer"
)

// State names one station of the controller walk. Every cycle runs
// exactly one state body.
type State uint8

// controller states
const (
	StInitial State = iota
	StFetch
	StDecode
	StSetBus
	StGetBus
	StSave
	StCleanup
	StException
	StXack
	StXwait
)

var stateNames = [...]string{
	"INITIAL", "FETCH", "DECODE", "SETBUS", "GETBUS",
	"SAVE", "CLEANUP", "EXCEPTION", "XACK", "XWAIT",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "?"
}

// CPU is the execution controller plus everything it owns: register
// file, translation unit, timer, the mirrored status/address pairs
// and the control-register latches. The mirrored pairs live in
// two-element arrays indexed by ctx; a privilege transition is just
// the ctx bit flipping.
type CPU struct {
	state State

	pc    uint64
	ctx   int
	flags [2]msw.Word
	xaddr [2]uint64

	regs   *regfile.File
	mmunit *mmu.MMU
	tmr    *timer.Timer
	over   Overmask
	resp   bus.Responder

	// control-register latches
	xnum    exception.Code
	scratch [2]uint64
	gpioOut uint64
	gpioIn  uint64
	sig     uint64

	// external request lines and the acknowledge back
	hwLine bool
	coLine bool
	ack    bool

	// in-flight instruction
	word    uint32
	ctl     Ctl
	wb      uint64 // value headed for Rd at SAVE
	aluOut  uint64
	target  uint64 // register-branch target
	ea      uint64 // effective address for data/IO
	req     bus.Request
	usedBuf [3]uint8

	// exception bookkeeping
	excCode exception.Code
	excAddr uint64
	double  bool

	// one control-register write can be pending between CLEANUP and
	// the next INITIAL; status and exception-address words take that
	// path
	defPending bool
	defIx      uint8
	defVal     uint64

	// 32-bit loads either sign- or zero-extend, a board-level choice
	sext32 bool

	tracing bool
	trace   *Trace
	log     *logrus.Logger
}

// New wires a controller to its bus responder. nregs is the
// implemented register count, sext32 picks the 32-bit load policy.
func New(resp bus.Responder, nregs int, sext32 bool, log *logrus.Logger) *CPU {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := CPU{}
	c.regs = regfile.New(nregs)
	c.mmunit = mmu.New()
	c.tmr = timer.New()
	c.resp = resp
	c.sext32 = sext32
	c.trace = NewTrace(64)
	c.log = log
	c.Reset()
	return &c
}

// Reset returns the controller to the power-on state: privileged,
// every request line masked, pc at zero, general registers and the
// control-register latches cleared. The translation slots and the
// overlord words keep their contents, as does memory.
func (c *CPU) Reset() {
	c.state = StInitial
	c.pc = 0
	c.ctx = 0
	c.flags[0] = msw.Reset
	c.flags[1] = msw.Reset
	c.xaddr[0] = 0
	c.xaddr[1] = 0
	c.regs.Reset()
	c.tmr.Reset()
	c.scratch[0] = 0
	c.scratch[1] = 0
	c.gpioOut = 0
	c.sig = 0
	c.xnum = exception.None
	c.double = false
	c.ack = false
	c.defPending = false
}

// Step runs one cycle: tick the timer, then the body of whatever
// state the walk is in. Returns the state the cycle left behind.
func (c *CPU) Step() State {
	c.tmr.Tick()
	switch c.state {
	case StInitial:
		c.stInitial()
	case StFetch:
		c.stFetch()
	case StDecode:
		c.stDecode()
	case StSetBus:
		c.stSetBus()
	case StGetBus:
		c.stGetBus()
	case StSave:
		c.stSave()
	case StCleanup:
		c.stCleanup()
	case StException:
		c.stException()
	case StXack:
		c.stXack()
	case StXwait:
		c.stXwait()
	}
	return c.state
}

// StepInstruction runs whole cycles until the walk comes back to
// INITIAL, one complete instruction or exception redirect. A double
// fault returns immediately; a responder that never answers stalls
// exactly like real hardware would.
func (c *CPU) StepInstruction() int {
	n := 0
	for {
		c.Step()
		n++
		if c.state == StInitial || c.double {
			return n
		}
	}
}

func (c *CPU) stInitial() {
	if c.defPending {
		c.writeCreg(c.defIx, c.defVal)
		c.defPending = false
	}
	fl := c.cur()
	c.regs.SetCeiling(fl.Ceiling())
	c.regs.SetZeroReg(fl.Foreign())

	pa, ok := c.mmunit.Translate(c.pc, bus.Word, mmu.Exec, false, fl.Priv(), fl.MMU())
	if !ok {
		c.fault(exception.Fetch, "fetch translation")
		return
	}
	c.req = bus.Request{Addr: pa, Size: bus.Word, Fetch: true}
	c.state = StFetch
}

func (c *CPU) stFetch() {
	fl := c.cur()
	// an unmasked pending request line wins before the fetched word
	// is even looked at
	switch {
	case c.tmr.Pending() && fl.Ten():
		c.fault(exception.Timer, "timer alarm")
		return
	case c.hwLine && fl.Hen():
		c.fault(exception.Hardware, "hardware request")
		return
	case c.coLine && fl.Cen():
		c.fault(exception.Coproc, "coprocessor request")
		return
	}
	rep := c.resp.Tick(&c.req)
	if rep.Fault {
		c.fault(exception.Fetch, "fetch fault")
		return
	}
	if !rep.Ready {
		return
	}
	c.word = uint32(rep.Data)
	c.state = StDecode
}

func (c *CPU) stDecode() {
	fl := c.cur()
	c.ctl = Decode(c.word, fl, &c.over)
	ctl := &c.ctl
	if !ctl.Valid {
		c.fault(ctl.Code, "decode")
		return
	}
	if ctl.Priv && !fl.Priv() {
		c.fault(exception.Priv, "privileged in user mode")
		return
	}
	for _, r := range c.used() {
		if !c.regs.Check(r) {
			c.fault(exception.Register, "register protection")
			return
		}
	}
	if ctl.Sys {
		c.fault(exception.Sys, "system trap")
		return
	}

	a := c.regs.Read(ctl.Ra)
	b := ctl.Imm
	if !ctl.UseImm {
		b = c.regs.Read(ctl.Rb)
	}
	if ctl.Rev {
		a, b = b, a
	}
	if ctl.HasALU {
		out, ok := alu.Exec(ctl.Op, a, b)
		if !ok {
			c.fault(exception.ALU, "alu operator")
			return
		}
		c.aluOut = out
		c.wb = out
	}
	if ctl.Link {
		c.wb = c.pc + 4
	}
	if ctl.Creg == CregRead {
		c.wb = c.ReadCreg(ctl.CregIx)
	}
	if ctl.Branch == BranchReg {
		c.target = c.regs.Read(ctl.Ra) + ctl.Imm
		if fl.Foreign() {
			c.target &^= 1
		}
	}
	if ctl.Bus != BusNone {
		c.ea = c.regs.Read(ctl.Ra) + ctl.Imm
		c.state = StSetBus
		return
	}
	c.state = StSave
}

func (c *CPU) stSetBus() {
	fl := c.cur()
	kind := mmu.Read
	if c.ctl.Bus == BusWrite {
		kind = mmu.Write
	}
	pa, ok := c.mmunit.Translate(c.ea, bus.Word, kind, c.ctl.IO, fl.Priv(), fl.MMU())
	if !ok {
		c.fault(exception.Bus, "data translation")
		return
	}
	c.req = bus.Request{Addr: pa, Size: bus.Word, IO: c.ctl.IO, Write: c.ctl.Bus == BusWrite}
	if c.ctl.Bus == BusWrite {
		v := c.regs.Read(c.ctl.Rd)
		if c.ctl.High {
			v >>= 32
		}
		c.req.Data = v & 0xFFFFFFFF
	}
	c.state = StGetBus
}

func (c *CPU) stGetBus() {
	rep := c.resp.Tick(&c.req)
	if rep.Fault {
		c.fault(exception.Bus, "bus error")
		return
	}
	if !rep.Ready {
		return
	}
	if c.ctl.Bus == BusRead {
		v := uint32(rep.Data)
		switch {
		case c.ctl.High:
			// only the upper register half moves, SAVE merges it
			c.wb = uint64(v)
		case c.sext32:
			c.wb = uint64(int64(int32(v)))
		default:
			c.wb = uint64(v)
		}
	}
	c.state = StSave
}

func (c *CPU) stSave() {
	if c.ctl.WB {
		if c.ctl.High {
			c.regs.WriteHigh(c.ctl.Rd, uint32(c.wb))
		} else {
			c.regs.Write(c.ctl.Rd, c.wb)
		}
	}
	c.state = StCleanup
}

func (c *CPU) stCleanup() {
	next := c.pc + 4
	switch c.ctl.Branch {
	case BranchReg:
		next = c.target
	case BranchCond:
		if c.aluOut != 0 {
			// a taken branch re-bases the low 18 pc bits, a 256KB
			// landing window
			next = c.pc&^uint64(0x3FFFF) | c.ctl.Imm<<2
		}
	case BranchSwitch:
		c.ctx ^= 1
		next = c.xaddr[c.ctx]
	}
	if c.ctl.Creg == CregWrite {
		v := c.regs.Read(c.ctl.Ra)
		if deferredCreg(c.ctl.CregIx) {
			c.defPending = true
			c.defIx = c.ctl.CregIx
			c.defVal = v
		} else {
			c.writeCreg(c.ctl.CregIx, v)
		}
	}
	if c.tracing {
		c.trace.Push(fmt.Sprintf("%08x  %08x  %s", c.pc, c.word, Disasm(c.word, c.cur().Foreign())))
	}
	c.pc = next
	c.state = StInitial
}

func (c *CPU) stException() {
	c.xnum = c.excCode
	if !c.cur().Xen() {
		// no way out with the enable down: latch the terminal fault
		// and hold this state
		if !c.double {
			c.double = true
			c.log.WithFields(logrus.Fields{
				"code": c.excCode,
				"addr": fmt.Sprintf("%#x", c.excAddr),
			}).Error("double fault")
			c.dumpTrace()
		}
		return
	}
	// context swap: the faulting address lands in the outgoing
	// context's slot, the handler address comes from the incoming one
	c.ctx ^= 1
	c.xaddr[c.ctx^1] = c.excAddr
	c.pc = c.xaddr[c.ctx]
	if c.excCode.Async() {
		c.state = StXack
		return
	}
	c.state = StInitial
}

func (c *CPU) stXack() {
	c.ack = true
	if c.excCode == exception.Timer {
		c.tmr.Ack()
	}
	c.state = StXwait
}

func (c *CPU) stXwait() {
	if c.lineUp(c.excCode) {
		return
	}
	c.ack = false
	c.state = StInitial
}

// lineUp reports the request line belonging to one async code.
func (c *CPU) lineUp(code exception.Code) bool {
	switch code {
	case exception.Timer:
		return c.tmr.Pending()
	case exception.Hardware:
		return c.hwLine
	case exception.Coproc:
		return c.coLine
	}
	return false
}

// fault redirects the walk into EXCEPTION. The recorded address is
// always the pc of the instruction the cycle belonged to, so a
// handler returning through the swap re-executes it.
func (c *CPU) fault(code exception.Code, msg string) {
	c.excCode = code
	c.excAddr = c.pc
	c.state = StException
	c.log.WithFields(logrus.Fields{
		"code": code,
		"pc":   fmt.Sprintf("%#x", c.pc),
	}).Debug(msg)
}

// used collects the register indexes the bundle touches this cycle
// so DECODE can hold them against the ceiling.
func (c *CPU) used() []uint8 {
	ctl := &c.ctl
	u := c.usedBuf[:0]
	if ctl.WB || ctl.Bus == BusWrite {
		u = append(u, ctl.Rd)
	}
	if ctl.HasALU || ctl.Branch == BranchReg || ctl.Bus != BusNone || ctl.Creg == CregWrite {
		u = append(u, ctl.Ra)
	}
	if ctl.HasALU && !ctl.UseImm {
		u = append(u, ctl.Rb)
	}
	return u
}

// cur returns the current half of the mirrored status pair.
func (c *CPU) cur() *msw.Word {
	return &c.flags[c.ctx]
}

func (c *CPU) dumpTrace() {
	if !c.tracing {
		return
	}
	for {
		line, err := c.trace.Pop()
		if err != nil {
			return
		}
		c.log.Debug(line)
	}
}

// PC returns the current program counter.
func (c *CPU) PC() uint64 {
	return c.pc
}

// SetPC points the controller somewhere else. Only meaningful
// between instructions.
func (c *CPU) SetPC(pc uint64) {
	c.pc = pc
}

// State returns the state the walk is sitting in.
func (c *CPU) State() State {
	return c.state
}

// Reg returns one general register as the program would read it.
func (c *CPU) Reg(ix uint8) uint64 {
	return c.regs.Read(ix)
}

// SetReg pokes one general register, for the panel's deposit.
func (c *CPU) SetReg(ix uint8, v uint64) {
	c.regs.Write(ix, v)
}

// Flags returns the current status word.
func (c *CPU) Flags() msw.Word {
	return c.flags[c.ctx]
}

// Mirror returns the mirror status word.
func (c *CPU) Mirror() msw.Word {
	return c.flags[c.ctx^1]
}

// XAddr returns the current exception address register.
func (c *CPU) XAddr() uint64 {
	return c.xaddr[c.ctx]
}

// MirrorXAddr returns the mirror exception address register, the
// slot a fresh fault lands in.
func (c *CPU) MirrorXAddr() uint64 {
	return c.xaddr[c.ctx^1]
}

// DoubleFault reports the terminal fault latch.
func (c *CPU) DoubleFault() bool {
	return c.double
}

// Ack reports the acknowledge line, up from XACK until the request
// line drops.
func (c *CPU) Ack() bool {
	return c.ack
}

// Critical reports the advisory critical-section bit for an outside
// arbiter.
func (c *CPU) Critical() bool {
	return c.cur().Crit()
}

// SetHardwareLine drives the external hardware request line.
func (c *CPU) SetHardwareLine(up bool) {
	c.hwLine = up
}

// SetCoprocLine drives the coprocessor request line.
func (c *CPU) SetCoprocLine(up bool) {
	c.coLine = up
}

// GPIOOut returns the output latch the program writes through
// control register 0xA.
func (c *CPU) GPIOOut() uint64 {
	return c.gpioOut
}

// SetGPIOIn drives the input lines the program reads through control
// register 0xA.
func (c *CPU) SetGPIOIn(v uint64) {
	c.gpioIn = v
}

// Signal returns the multiprocessor signal latch.
func (c *CPU) Signal() uint64 {
	return c.sig
}

// SetSignal injects an incoming multiprocessor signal word.
func (c *CPU) SetSignal(v uint64) {
	c.sig = v
}

// Timer exposes the timer for the panel.
func (c *CPU) Timer() *timer.Timer {
	return c.tmr
}

// SetTracing toggles the post-mortem instruction trace.
func (c *CPU) SetTracing(on bool) {
	c.tracing = on
}

// TraceLines returns the buffered trace, oldest first.
func (c *CPU) TraceLines() []string {
	return c.trace.Lines()
}

// DumpRegisters displays register values
func (c *CPU) DumpRegisters() string {
	var res strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&res, "r%-2d %016x ", i, c.regs.Read(uint8(i)))
		if i%4 == 3 {
			res.WriteByte('\n')
		}
	}
	s := res.String()
	return s[:(len(s) - 1)]
}

// StatusLine renders the walk state, pc and status word for the
// front panel.
func (c *CPU) StatusLine() string {
	fl := c.cur()
	out := fmt.Sprintf("%-9s pc %016x  ctx %d  %s", c.state, c.pc, c.ctx, fl.GetFlags())
	if c.xnum != exception.None {
		out += fmt.Sprintf("  last exc %d (%s)", uint8(c.xnum), c.xnum)
	}
	if c.double {
		out += "  WEDGED"
	}
	return out
}
