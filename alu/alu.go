package alu

/**
 * Combinational 64-bit ALU. No hidden flag register exists on this
 * machine; comparisons hand back plain 0/1 values and the controller
 * decides what to do with them.
 */

// Op selects one operator out of the 5-bit operator space.
type Op uint8

// implemented operators
const (
	OpAdd Op = iota
	OpSub
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
	OpAbove
	OpBelow
	OpSame
	OpIdent
	OpPack
)

// Space is the size of the operator field. Codes below Space that
// miss the table execute as no result and not-ok, which the
// controller reports as an ALU error.
const Space = 32

// OpBad is a code the table never implements. The decoder uses it
// when an extended operator does not fit the operator field at all.
const OpBad Op = Space - 1

var names = map[Op]string{
	OpAdd:   "add",
	OpSub:   "sub",
	OpAnd:   "and",
	OpOr:    "or",
	OpXor:   "xor",
	OpShl:   "shl",
	OpShr:   "shr",
	OpSar:   "sar",
	OpAbove: "above",
	OpBelow: "below",
	OpSame:  "same",
	OpIdent: "ident",
	OpPack:  "pack",
}

func (op Op) String() string {
	if s, ok := names[op]; ok {
		return s
	}
	return "op?"
}

// Exec runs one operator on two 64-bit operands. ok is false for
// operator codes outside the implemented table.
func Exec(op Op, a, b uint64) (result uint64, ok bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpAnd:
		return a & b, true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	case OpShl:
		return a << (b & 63), true
	case OpShr:
		return a >> (b & 63), true
	case OpSar:
		return uint64(int64(a) >> (b & 63)), true
	case OpAbove:
		return truth(a > b), true
	case OpBelow:
		return truth(int64(a) < int64(b)), true
	case OpSame:
		return truth(a == b), true
	case OpIdent:
		// hands the b operand through, used to load immediates
		return b, true
	case OpPack:
		// packs a 16-bit value under a shifted operand, used to
		// build wide constants piece by piece
		return a<<16 | b&0xFFFF, true
	}
	return 0, false
}

func truth(c bool) uint64 {
	if c {
		return 1
	}
	return 0
}
