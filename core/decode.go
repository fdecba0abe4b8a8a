package core

import (
	"math/bits"

	"sc64/alu"
	"sc64/exception"
	"sc64/msw"
)

// native opcodes, always the top byte of the word
const (
	opcAdd     = 0x01
	opcSub     = 0x02
	opcAnd     = 0x03
	opcOr      = 0x04
	opcXor     = 0x05
	opcShl     = 0x06
	opcShr     = 0x07
	opcSar     = 0x08
	opcAbove   = 0x09
	opcBelow   = 0x0A
	opcSame    = 0x0B
	opcAddi    = 0x11
	opcAndi    = 0x12
	opcOri     = 0x13
	opcXori    = 0x14
	opcShli    = 0x15
	opcShri    = 0x16
	opcSari    = 0x17
	opcPack    = 0x18
	opcLink    = 0x20
	opcGoto    = 0x21
	opcCall    = 0x22
	opcSwitch  = 0x28
	opcSys     = 0x29
	opcCrget   = 0x2A
	opcCrset   = 0x2B
	opcLoad    = 0x30
	opcStore   = 0x31
	opcLoadh   = 0x32
	opcStoreh  = 0x33
	opcIn      = 0x34
	opcOut     = 0x35
	opcInh     = 0x36
	opcOuth    = 0x37
	opcBrsame  = 0x38
	opcBrabove = 0x39
	opcBrbelow = 0x3A

	// wide families: the low opcode nibble is a register index
	opcLdi  = 0xE0 // destination register
	opcXalu = 0xF0 // third operand register
)

// CregMax bounds the control-register index space.
const CregMax = 0x40

// Decode is the front door for one fetched word: byte-swap when the
// status word says so, veto through the overlord set, then exactly
// one of the two tables.
func Decode(w uint32, fl *msw.Word, over *Overmask) Ctl {
	if fl.Swap() {
		w = bits.ReverseBytes32(w)
	}
	lookup := uint8(w >> 24)
	if fl.Foreign() {
		lookup = uint8(w & 0x7F)
	}
	if fl.Over() && over.Test(lookup) {
		return Ctl{Code: exception.Overload}
	}
	if fl.Foreign() {
		return decodeForeign(w)
	}
	return decodeNative(w)
}

// triple-form ALU operators, indexed from opcAdd
var tripleOps = [...]alu.Op{
	alu.OpAdd, alu.OpSub, alu.OpAnd, alu.OpOr, alu.OpXor,
	alu.OpShl, alu.OpShr, alu.OpSar,
	alu.OpAbove, alu.OpBelow, alu.OpSame,
}

// immediate-form ALU operators, indexed from opcAddi
var immOps = [...]alu.Op{
	alu.OpAdd, alu.OpAnd, alu.OpOr, alu.OpXor,
	alu.OpShl, alu.OpShr, alu.OpSar, alu.OpPack,
}

// comparison-branch operators, indexed from opcBrsame
var brOps = [...]alu.Op{alu.OpSame, alu.OpAbove, alu.OpBelow}

// decodeNative is the native-table path: one pure function from the
// word to the control bundle. Anything that falls through is invalid,
// including the deliberately unused opcode zero.
func decodeNative(w uint32) Ctl {
	op := uint8(w >> 24)

	switch op >> 4 {
	case 0xE:
		// 16-slot load family: rd in the opcode, 24-bit immediate
		return Ctl{
			Valid: true, Rd: op & 0xF, WB: true,
			HasALU: true, Op: alu.OpIdent, UseImm: true,
			Imm: sext24(w & 0xFFFFFF),
		}
	case 0xF:
		// 16-slot extended-ALU family: rb in the opcode, operator
		// code in the immediate field
		rd, ra := nibbleRegs(w)
		xop := w & 0xFFFF
		xo := alu.OpBad
		if xop < alu.Space {
			xo = alu.Op(xop)
		}
		return Ctl{Valid: true, Rd: rd, Ra: ra, Rb: op & 0xF, WB: true, HasALU: true, Op: xo}
	}

	switch {
	case op >= opcAdd && op <= opcSame:
		rd, ra, rb := tripleRegs(w)
		return Ctl{Valid: true, Rd: rd, Ra: ra, Rb: rb, WB: true, HasALU: true, Op: tripleOps[op-opcAdd]}

	case op >= opcAddi && op <= opcPack:
		rd, ra := nibbleRegs(w)
		return Ctl{
			Valid: true, Rd: rd, Ra: ra, WB: true,
			HasALU: true, Op: immOps[op-opcAddi], UseImm: true,
			Imm: immValue(op, imm16(w)),
		}
	}

	switch op {
	case opcLink:
		rd, _ := nibbleRegs(w)
		return Ctl{Valid: true, Rd: rd, WB: true, Link: true}

	case opcGoto:
		_, ra := nibbleRegs(w)
		return Ctl{Valid: true, Ra: ra, Branch: BranchReg}

	case opcCall:
		rd, ra := nibbleRegs(w)
		return Ctl{Valid: true, Rd: rd, Ra: ra, WB: true, Link: true, Branch: BranchReg}

	case opcSwitch:
		return Ctl{Valid: true, Priv: true, Branch: BranchSwitch}

	case opcSys:
		return Ctl{Valid: true, Sys: true}

	case opcCrget:
		rd, _ := nibbleRegs(w)
		return Ctl{Valid: true, Priv: true, Rd: rd, WB: true, Creg: CregRead, CregIx: uint8(imm16(w)) % CregMax}

	case opcCrset:
		_, ra := nibbleRegs(w)
		return Ctl{Valid: true, Priv: true, Ra: ra, Creg: CregWrite, CregIx: uint8(imm16(w)) % CregMax}

	case opcLoad, opcLoadh, opcIn, opcInh:
		rd, ra := nibbleRegs(w)
		return Ctl{
			Valid: true, Rd: rd, Ra: ra, WB: true, Bus: BusRead,
			IO:   op == opcIn || op == opcInh,
			High: op == opcLoadh || op == opcInh,
			Imm:  sext16(imm16(w)),
		}

	case opcStore, opcStoreh, opcOut, opcOuth:
		rv, ra := nibbleRegs(w)
		return Ctl{
			Valid: true, Rd: rv, Ra: ra, Bus: BusWrite,
			IO:   op == opcOut || op == opcOuth,
			High: op == opcStoreh || op == opcOuth,
			Imm:  sext16(imm16(w)),
		}

	case opcBrsame, opcBrabove, opcBrbelow:
		ra, rb := nibbleRegs(w)
		// Imm is the raw landing slot here, not an ALU operand
		return Ctl{
			Valid: true, Ra: ra, Rb: rb,
			HasALU: true, Op: brOps[op-opcBrsame],
			Branch: BranchCond, Imm: uint64(imm16(w)),
		}
	}

	return Ctl{Code: exception.Invalid}
}

// field extraction: the triple form carries full byte indices, every
// immediate form narrows the two live registers to nibbles
func tripleRegs(w uint32) (rd, ra, rb uint8) {
	return uint8(w >> 16), uint8(w >> 8), uint8(w)
}

func nibbleRegs(w uint32) (rd, ra uint8) {
	return uint8(w >> 20 & 0xF), uint8(w >> 16 & 0xF)
}

func imm16(w uint32) uint32 {
	return w & 0xFFFF
}

// immValue applies the per-operator extension rule: arithmetic sign
// extends, bitwise zero extends, shifts keep their 6 live bits.
func immValue(op uint8, v uint32) uint64 {
	switch op {
	case opcAddi:
		return sext16(v)
	case opcShli, opcShri, opcSari:
		return uint64(v & 63)
	}
	return uint64(v)
}

func sext16(v uint32) uint64 {
	return uint64(int64(int16(v)))
}

func sext24(v uint32) uint64 {
	return uint64(int64(int32(v<<8)) >> 8)
}
