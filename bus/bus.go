package bus

/**
 * Request/reply contract between the core and whatever answers for
 * memory and IO. Separate package exists mainly in order to avoid
 * cyclic imports between the core and the devices behind it.
 */

// Size selects the transfer width.
type Size uint8

// transfer widths
const (
	Byte Size = iota
	Half
	Word
	Double
)

// Bytes returns the width in bytes.
func (s Size) Bytes() uint64 {
	return 1 << s
}

// Request is one pending transaction. The controller keeps it stable
// on the bus until the responder answers Ready or Fault.
type Request struct {
	Addr  uint64
	Size  Size
	Data  uint64 // write payload
	Write bool
	IO    bool
	Fetch bool // instruction fetch, subject to execute permission
}

// Reply is one responder answer. Data carries the read payload when
// Ready is up on a read.
type Reply struct {
	Ready bool
	Fault bool
	Data  uint64
}

// Responder answers one poll per cycle while a request is pending.
// A single-cycle device answers Ready on the first poll; a slower
// one answers neither flag until it is done.
type Responder interface {
	Tick(req *Request) Reply
}
