package core

import (
	"sc64/alu"
	"sc64/exception"
)

// foreign-table opcodes, the low 7 bits of the word
const (
	forOp    = 0x33
	forOpImm = 0x13
	forJalr  = 0x67
)

// decodeForeign is the foreign-table path. The accepted set is the
// short-ALU register and immediate groups plus the indirect call;
// every other word comes back invalid so privileged software can
// trap and emulate it.
func decodeForeign(w uint32) Ctl {
	rd, rs1, rs2 := forRegs(w)
	switch w & 0x7F {
	case forOp:
		op, rev, ok := forROp(funct3(w), funct7(w))
		if !ok {
			return Ctl{Code: exception.Invalid}
		}
		return Ctl{Valid: true, Rd: rd, Ra: rs1, Rb: rs2, WB: true, HasALU: true, Op: op, Rev: rev}

	case forOpImm:
		op, imm, rev, ok := forIOp(w)
		if !ok {
			return Ctl{Code: exception.Invalid}
		}
		return Ctl{Valid: true, Rd: rd, Ra: rs1, WB: true, HasALU: true, Op: op, UseImm: true, Imm: imm, Rev: rev}

	case forJalr:
		if funct3(w) != 0 {
			return Ctl{Code: exception.Invalid}
		}
		return Ctl{Valid: true, Rd: rd, Ra: rs1, WB: true, Link: true, Branch: BranchReg, Imm: immI(w)}
	}
	return Ctl{Code: exception.Invalid}
}

// forROp gates the register group on funct3 plus the one live funct7
// bit. Unsigned set-less-than runs through the above operator with
// reversed operands; the machine has no below-unsigned.
func forROp(f3, f7 uint32) (op alu.Op, rev, ok bool) {
	switch f3 {
	case 0:
		switch f7 {
		case 0x00:
			return alu.OpAdd, false, true
		case 0x20:
			return alu.OpSub, false, true
		}
	case 1:
		if f7 == 0 {
			return alu.OpShl, false, true
		}
	case 2:
		if f7 == 0 {
			return alu.OpBelow, false, true
		}
	case 3:
		if f7 == 0 {
			return alu.OpAbove, true, true
		}
	case 4:
		if f7 == 0 {
			return alu.OpXor, false, true
		}
	case 5:
		switch f7 {
		case 0x00:
			return alu.OpShr, false, true
		case 0x20:
			return alu.OpSar, false, true
		}
	case 6:
		if f7 == 0 {
			return alu.OpOr, false, true
		}
	case 7:
		if f7 == 0 {
			return alu.OpAnd, false, true
		}
	}
	return 0, false, false
}

// forIOp gates the immediate group. Shift immediates carry a 6-bit
// amount for the 64-bit registers and validate the bits above it.
func forIOp(w uint32) (op alu.Op, imm uint64, rev, ok bool) {
	shamt := uint64((w >> 20) & 0x3F)
	hi := w >> 26
	switch funct3(w) {
	case 0:
		return alu.OpAdd, immI(w), false, true
	case 1:
		if hi == 0 {
			return alu.OpShl, shamt, false, true
		}
	case 2:
		return alu.OpBelow, immI(w), false, true
	case 3:
		return alu.OpAbove, immI(w), true, true
	case 4:
		return alu.OpXor, immI(w), false, true
	case 5:
		switch hi {
		case 0x00:
			return alu.OpShr, shamt, false, true
		case 0x10:
			return alu.OpSar, shamt, false, true
		}
	case 6:
		return alu.OpOr, immI(w), false, true
	case 7:
		return alu.OpAnd, immI(w), false, true
	}
	return 0, 0, false, false
}

// register and function fields of the foreign word
func forRegs(w uint32) (rd, rs1, rs2 uint8) {
	return uint8((w >> 7) & 0x1F), uint8((w >> 15) & 0x1F), uint8((w >> 20) & 0x1F)
}

func funct3(w uint32) uint32 {
	return (w >> 12) & 0x7
}

func funct7(w uint32) uint32 {
	return w >> 25
}

// The five foreign immediate layouts. Each has its own bit scatter
// and its own sign extension. Only the I form feeds the accepted
// set; the rest exist for the decode surface and the disassembler.

func immI(w uint32) uint64 {
	return uint64(int64(int32(w)) >> 20)
}

func immS(w uint32) uint64 {
	v := ((w >> 7) & 0x1F) | ((w >> 25) << 5)
	return uint64(int64(int32(v<<20)) >> 20)
}

func immB(w uint32) uint64 {
	v := (((w >> 8) & 0xF) << 1) |
		(((w >> 25) & 0x3F) << 5) |
		(((w >> 7) & 0x1) << 11) |
		((w >> 31) << 12)
	return uint64(int64(int32(v<<19)) >> 19)
}

func immU(w uint32) uint64 {
	return uint64(int64(int32(w &^ 0xFFF)))
}

func immJ(w uint32) uint64 {
	v := (((w >> 21) & 0x3FF) << 1) |
		(((w >> 20) & 0x1) << 11) |
		(((w >> 12) & 0xFF) << 12) |
		((w >> 31) << 20)
	return uint64(int64(int32(v<<11)) >> 11)
}
