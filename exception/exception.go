package exception

/**
 * Separate package exists mainly in order to avoid cyclic imports
 * between the core and the peripherals that raise requests at it.
 */

// Code is the small integer latched into the XNUM control register
// when the controller enters its EXCEPTION state.
type Code uint8

// Exception codes. Code 5 is unassigned on this machine.
const (
	None     Code = 0
	Fetch    Code = 1  // instruction fetch fault
	Invalid  Code = 2  // invalid instruction word
	Priv     Code = 3  // privileged instruction in user mode
	Bus      Code = 4  // data or IO bus error
	Register Code = 6  // register index above ceiling or implemented max
	ALU      Code = 7  // unknown ALU operator
	Sys      Code = 8  // reserved trap opcode, system call convention
	Timer    Code = 9  // timer alarm line
	Hardware Code = 10 // external hardware line
	Coproc   Code = 11 // coprocessor line
	Overload Code = 12 // overlord mask hit
)

var names = map[Code]string{
	None:     "none",
	Fetch:    "fetch fault",
	Invalid:  "invalid instruction",
	Priv:     "privilege violation",
	Bus:      "bus error",
	Register: "register protection",
	ALU:      "alu error",
	Sys:      "system trap",
	Timer:    "timer alarm",
	Hardware: "hardware request",
	Coproc:   "coprocessor request",
	Overload: "overload trap",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown"
}

// Async reports whether the code belongs to an external request line
// and therefore needs the XACK/XWAIT handshake instead of a plain
// return to INITIAL.
func (c Code) Async() bool {
	return c == Timer || c == Hardware || c == Coproc
}

// Fault describes one exception on its way through the controller.
// Addr is always the address of the faulting instruction itself, so
// a handler returning through the context swap re-executes it.
type Fault struct {
	Code Code
	Addr uint64
	Msg  string
}
