package timer

/**
 * Free-running cycle counter with a sticky alarm line. The stored
 * control word comes in through control register 6; the read of the
 * same register is a projection, not the stored word.
 */

// control word bits
const (
	CtlClear     = 1 << 0
	CtlAlarm     = 1 << 1
	CtlAutoReset = 1 << 2
	CtlSleep     = 1 << 3
)

// the two threshold shifts are 5-bit fields above the control bits
const (
	AlarmShiftPos = 4
	ResetShiftPos = 9

	shiftMask = 0x1F
)

// Timer is the peripheral. Only the controller's acknowledge drops
// the alarm line once it is up.
type Timer struct {
	count uint64
	ctl   uint64
	ding  bool
}

// New returns a timer with a zero counter and everything disabled.
func New() *Timer {
	return &Timer{}
}

// Reset returns the timer to the power-on state: zero counter,
// everything disabled, alarm line down.
func (t *Timer) Reset() {
	t.count = 0
	t.ctl = 0
	t.ding = false
}

// SetControl latches a new control word. The clear bit is a strobe:
// it zeroes the counter at write time and is not stored.
func (t *Timer) SetControl(w uint64) {
	if w&CtlClear != 0 {
		t.count = 0
	}
	t.ctl = w &^ CtlClear
}

// Control is the read projection: alarm line in bit 0 and the
// counter in the bits above it.
func (t *Timer) Control() uint64 {
	w := t.count << 1
	if t.ding {
		w |= 1
	}
	return w
}

// Count returns the raw counter, for the front panel.
func (t *Timer) Count() uint64 {
	return t.count
}

// Tick advances the counter by one cycle and evaluates both
// thresholds. The alarm edge fires on exact equality, so with an
// alarm shift of zero the line rises on the 16th tick.
func (t *Timer) Tick() {
	t.count++
	if t.ctl&CtlAlarm != 0 && t.ctl&CtlSleep == 0 && t.count == t.alarmAt() {
		t.ding = true
	}
	if t.ctl&CtlAutoReset != 0 && t.count == t.resetAt() {
		t.count = 0
	}
}

// Pending reports the alarm line.
func (t *Timer) Pending() bool {
	return t.ding
}

// Ack is the controller's acknowledge.
func (t *Timer) Ack() {
	t.ding = false
}

func (t *Timer) alarmAt() uint64 {
	return 16 << (t.ctl >> AlarmShiftPos & shiftMask)
}

func (t *Timer) resetAt() uint64 {
	return 16 << (t.ctl >> ResetShiftPos & shiftMask)
}
