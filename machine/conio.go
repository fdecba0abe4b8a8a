package machine

import (
	"io"
	"sync"
)

// ConIO registers in IO space. The status word reports transmit
// ready in bit 0 and receive pending in bit 1.
const (
	ConBase   = 0x00
	ConData   = ConBase
	ConStatus = ConBase + 4

	conReady   = 1 << 0
	conPending = 1 << 1
)

// ConIO type - simplest console device possible: one data and one
// status register on the IO bus. Writes to the data register emit a
// byte, reads take from the input queue.
type ConIO struct {
	out io.Writer

	// queued keystrokes waiting for the program; keys arrive on the
	// panel goroutine, reads on the machine's
	mu     sync.Mutex
	keybuf []byte
}

// NewConIO returns a console device emitting to w. A nil writer
// swallows output.
func NewConIO(w io.Writer) *ConIO {
	return &ConIO{out: w}
}

// KeyPress queues one incoming byte for the program to read.
func (t *ConIO) KeyPress(b byte) {
	t.mu.Lock()
	t.keybuf = append(t.keybuf, b)
	t.mu.Unlock()
}

// Match claims the device's two registers.
func (t *ConIO) Match(addr uint64) bool {
	return addr == ConData || addr == ConStatus
}

// Read32 answers an IO read of one device register.
func (t *ConIO) Read32(addr uint64) (uint32, bool) {
	switch addr {
	case ConStatus:
		s := uint32(conReady)
		t.mu.Lock()
		if len(t.keybuf) > 0 {
			s |= conPending
		}
		t.mu.Unlock()
		return s, true
	case ConData:
		t.mu.Lock()
		defer t.mu.Unlock()
		if len(t.keybuf) == 0 {
			return 0, true
		}
		b := t.keybuf[0]
		t.keybuf = t.keybuf[1:]
		return uint32(b), true
	}
	return 0, false
}

// Write32 answers an IO write of one device register.
func (t *ConIO) Write32(addr uint64, v uint32) bool {
	switch addr {
	case ConData:
		if t.out != nil {
			t.out.Write([]byte{byte(v)})
		}
		return true
	case ConStatus:
		// status is derived, the write lands nowhere
		return true
	}
	return false
}
