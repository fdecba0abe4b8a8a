package core

import (
	"math/bits"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"sc64/alu"
	"sc64/exception"
	"sc64/msw"
)

func TestDecode_native(t *testing.T) {
	tests := []struct {
		name string
		w    uint32
		want Ctl
	}{
		{
			"add",
			Add(1, 2, 3),
			Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpAdd},
		},
		{
			"triple form reaches byte-wide registers",
			Same(200, 255, 17),
			Ctl{Valid: true, Rd: 200, Ra: 255, Rb: 17, WB: true, HasALU: true, Op: alu.OpSame},
		},
		{
			"addi sign extends",
			Addi(1, 2, 0xFFFF),
			Ctl{Valid: true, Rd: 1, Ra: 2, WB: true, HasALU: true, Op: alu.OpAdd, UseImm: true, Imm: 0xFFFFFFFFFFFFFFFF},
		},
		{
			"andi zero extends",
			Andi(3, 4, 0xFFFF),
			Ctl{Valid: true, Rd: 3, Ra: 4, WB: true, HasALU: true, Op: alu.OpAnd, UseImm: true, Imm: 0xFFFF},
		},
		{
			"shli keeps six immediate bits",
			Shli(5, 6, 0xFFC1),
			Ctl{Valid: true, Rd: 5, Ra: 6, WB: true, HasALU: true, Op: alu.OpShl, UseImm: true, Imm: 1},
		},
		{
			"pack",
			Pack(7, 8, 0xBEEF),
			Ctl{Valid: true, Rd: 7, Ra: 8, WB: true, HasALU: true, Op: alu.OpPack, UseImm: true, Imm: 0xBEEF},
		},
		{
			"ldi positive",
			Ldi(15, 0x7FFFFF),
			Ctl{Valid: true, Rd: 15, WB: true, HasALU: true, Op: alu.OpIdent, UseImm: true, Imm: 0x7FFFFF},
		},
		{
			"ldi sign extends bit 23",
			Ldi(9, 0x800000),
			Ctl{Valid: true, Rd: 9, WB: true, HasALU: true, Op: alu.OpIdent, UseImm: true, Imm: 0xFFFFFFFFFF800000},
		},
		{
			"xalu with an assigned operator",
			Xalu(1, 2, 3, 10),
			Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpSame},
		},
		{
			"xalu outside the operator space",
			Xalu(1, 2, 3, 99),
			Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpBad},
		},
		{
			"link",
			Link(4),
			Ctl{Valid: true, Rd: 4, WB: true, Link: true},
		},
		{
			"goto",
			Goto(5),
			Ctl{Valid: true, Ra: 5, Branch: BranchReg},
		},
		{
			"call",
			Call(6, 7),
			Ctl{Valid: true, Rd: 6, Ra: 7, WB: true, Link: true, Branch: BranchReg},
		},
		{
			"switch",
			Switch(),
			Ctl{Valid: true, Priv: true, Branch: BranchSwitch},
		},
		{
			"sys",
			Sys(),
			Ctl{Valid: true, Sys: true},
		},
		{
			"crget wraps the index",
			Crget(2, 0x47),
			Ctl{Valid: true, Priv: true, Rd: 2, WB: true, Creg: CregRead, CregIx: 7},
		},
		{
			"crset",
			Crset(6, 3),
			Ctl{Valid: true, Priv: true, Ra: 3, Creg: CregWrite, CregIx: 6},
		},
		{
			"load with a negative displacement",
			Load(3, 1, 0xFFF8),
			Ctl{Valid: true, Rd: 3, Ra: 1, WB: true, Bus: BusRead, Imm: 0xFFFFFFFFFFFFFFF8},
		},
		{
			"loadh",
			Loadh(3, 1, 8),
			Ctl{Valid: true, Rd: 3, Ra: 1, WB: true, Bus: BusRead, High: true, Imm: 8},
		},
		{
			"in",
			In(2, 1, 4),
			Ctl{Valid: true, Rd: 2, Ra: 1, WB: true, Bus: BusRead, IO: true, Imm: 4},
		},
		{
			"inh",
			Inh(2, 1, 4),
			Ctl{Valid: true, Rd: 2, Ra: 1, WB: true, Bus: BusRead, IO: true, High: true, Imm: 4},
		},
		{
			"store reads the value register without writeback",
			Store(5, 1, 16),
			Ctl{Valid: true, Rd: 5, Ra: 1, Bus: BusWrite, Imm: 16},
		},
		{
			"outh",
			Outh(5, 1, 0),
			Ctl{Valid: true, Rd: 5, Ra: 1, Bus: BusWrite, IO: true, High: true},
		},
		{
			"brsame keeps the raw landing slot",
			Brsame(1, 2, 0x10),
			Ctl{Valid: true, Ra: 1, Rb: 2, HasALU: true, Op: alu.OpSame, Branch: BranchCond, Imm: 0x10},
		},
		{
			"brbelow never sign extends the slot",
			Brbelow(3, 4, 0xFFFF),
			Ctl{Valid: true, Ra: 3, Rb: 4, HasALU: true, Op: alu.OpBelow, Branch: BranchCond, Imm: 0xFFFF},
		},
		{"opcode zero is invalid", 0x00000000, Ctl{Code: exception.Invalid}},
		{"hole after the triple group", 0x0C010203, Ctl{Code: exception.Invalid}},
		{"hole after pack", 0x19120034, Ctl{Code: exception.Invalid}},
		{"hole after crset", 0x2C000000, Ctl{Code: exception.Invalid}},
		{"hole after the branch group", 0x3B120010, Ctl{Code: exception.Invalid}},
		{"high half outside the wide families", 0xC0000000, Ctl{Code: exception.Invalid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := msw.Reset
			if got := Decode(tt.w, &fl, &Overmask{}); got != tt.want {
				t.Errorf("Decode(%#08x):\ngot:  %swant: %s", tt.w, spew.Sdump(got), spew.Sdump(tt.want))
			}
		})
	}
}

func TestDecode_swap(t *testing.T) {
	fl := msw.Reset
	fl.SetSwap(true)
	w := bits.ReverseBytes32(Add(1, 2, 3))
	want := Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpAdd}
	if got := Decode(w, &fl, &Overmask{}); got != want {
		t.Errorf("swapped Decode(%#08x):\ngot:  %swant: %s", w, spew.Sdump(got), spew.Sdump(want))
	}

	// the same word without the swap flag lands somewhere else entirely
	fl.SetSwap(false)
	if got := Decode(w, &fl, &Overmask{}); got == want {
		t.Error("byte swap applied with the flag clear")
	}
}

func TestDecode_overlord(t *testing.T) {
	var over Overmask
	over.Set(opcXor)

	fl := msw.Reset
	if got := Decode(Xor(1, 2, 3), &fl, &over); !got.Valid {
		t.Error("mask vetoed a decode with the enable off")
	}

	fl.SetOver(true)
	want := Ctl{Code: exception.Overload}
	if got := Decode(Xor(1, 2, 3), &fl, &over); got != want {
		t.Errorf("vetoed decode:\ngot:  %swant: %s", spew.Sdump(got), spew.Sdump(want))
	}
	// neighbouring opcodes stay live
	if got := Decode(Or(1, 2, 3), &fl, &over); !got.Valid {
		t.Error("mask vetoed an opcode it does not name")
	}
}

// In foreign mode the veto keys on the low seven bits, so one mask bit
// covers a whole foreign opcode group.
func TestDecode_overlordForeign(t *testing.T) {
	var over Overmask
	over.Set(forOpImm)

	fl := msw.Reset
	fl.SetForeign(true)
	fl.SetOver(true)

	want := Ctl{Code: exception.Overload}
	if got := Decode(EncodeIType(forOpImm, 5, 0, 0, 42), &fl, &over); got != want {
		t.Errorf("vetoed foreign decode:\ngot:  %swant: %s", spew.Sdump(got), spew.Sdump(want))
	}
	if got := Decode(EncodeRType(forOp, 1, 2, 3, 0, 0), &fl, &over); !got.Valid {
		t.Error("mask vetoed a foreign group it does not name")
	}
}

func TestDecode_foreign(t *testing.T) {
	tests := []struct {
		name string
		w    uint32
		want Ctl
	}{
		{
			"add",
			EncodeRType(forOp, 1, 2, 3, 0, 0),
			Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpAdd},
		},
		{
			"sub lives in funct7",
			EncodeRType(forOp, 1, 2, 3, 0, 0x20),
			Ctl{Valid: true, Rd: 1, Ra: 2, Rb: 3, WB: true, HasALU: true, Op: alu.OpSub},
		},
		{
			"slt",
			EncodeRType(forOp, 4, 5, 6, 2, 0),
			Ctl{Valid: true, Rd: 4, Ra: 5, Rb: 6, WB: true, HasALU: true, Op: alu.OpBelow},
		},
		{
			"sltu runs reversed through above",
			EncodeRType(forOp, 4, 5, 6, 3, 0),
			Ctl{Valid: true, Rd: 4, Ra: 5, Rb: 6, WB: true, HasALU: true, Op: alu.OpAbove, Rev: true},
		},
		{
			"sra",
			EncodeRType(forOp, 7, 8, 9, 5, 0x20),
			Ctl{Valid: true, Rd: 7, Ra: 8, Rb: 9, WB: true, HasALU: true, Op: alu.OpSar},
		},
		{
			"stray funct7 bit",
			EncodeRType(forOp, 1, 2, 3, 0, 0x01),
			Ctl{Code: exception.Invalid},
		},
		{
			"addi",
			EncodeIType(forOpImm, 5, 0, 0, 42),
			Ctl{Valid: true, Rd: 5, WB: true, HasALU: true, Op: alu.OpAdd, UseImm: true, Imm: 42},
		},
		{
			"addi sign extends twelve bits",
			EncodeIType(forOpImm, 5, 6, 0, 0xFFF),
			Ctl{Valid: true, Rd: 5, Ra: 6, WB: true, HasALU: true, Op: alu.OpAdd, UseImm: true, Imm: 0xFFFFFFFFFFFFFFFF},
		},
		{
			"slli carries a six-bit amount",
			EncodeIType(forOpImm, 2, 3, 1, 0x3F),
			Ctl{Valid: true, Rd: 2, Ra: 3, WB: true, HasALU: true, Op: alu.OpShl, UseImm: true, Imm: 63},
		},
		{
			"srai",
			EncodeIType(forOpImm, 2, 3, 5, 0x400|7),
			Ctl{Valid: true, Rd: 2, Ra: 3, WB: true, HasALU: true, Op: alu.OpSar, UseImm: true, Imm: 7},
		},
		{
			"sltiu",
			EncodeIType(forOpImm, 2, 3, 3, 9),
			Ctl{Valid: true, Rd: 2, Ra: 3, WB: true, HasALU: true, Op: alu.OpAbove, UseImm: true, Imm: 9, Rev: true},
		},
		{
			"slli with high bits set",
			EncodeIType(forOpImm, 2, 3, 1, 0x100|5),
			Ctl{Code: exception.Invalid},
		},
		{
			"right shift with an unassigned high field",
			EncodeIType(forOpImm, 2, 3, 5, 0x200|5),
			Ctl{Code: exception.Invalid},
		},
		{
			"jalr",
			EncodeIType(forJalr, 1, 5, 0, 16),
			Ctl{Valid: true, Rd: 1, Ra: 5, WB: true, Link: true, Branch: BranchReg, Imm: 16},
		},
		{
			"jalr with a nonzero funct3",
			EncodeIType(forJalr, 1, 5, 1, 16),
			Ctl{Code: exception.Invalid},
		},
		{
			"loads trap for emulation",
			EncodeIType(0x03, 1, 2, 3, 0),
			Ctl{Code: exception.Invalid},
		},
		{
			"stores trap for emulation",
			EncodeSType(0x23, 1, 2, 3, 8),
			Ctl{Code: exception.Invalid},
		},
		{
			"branches trap for emulation",
			EncodeBType(0x63, 1, 2, 0, 16),
			Ctl{Code: exception.Invalid},
		},
		{
			"lui traps for emulation",
			EncodeUType(0x37, 1, 0x12345000),
			Ctl{Code: exception.Invalid},
		},
		{
			"jal traps for emulation",
			EncodeJType(0x6F, 1, 2048),
			Ctl{Code: exception.Invalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := msw.Reset
			fl.SetForeign(true)
			if got := Decode(tt.w, &fl, &Overmask{}); got != tt.want {
				t.Errorf("foreign Decode(%#08x):\ngot:  %swant: %s", tt.w, spew.Sdump(got), spew.Sdump(tt.want))
			}
		})
	}
}
