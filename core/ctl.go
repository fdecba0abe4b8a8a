package core

import (
	"sc64/alu"
	"sc64/exception"
)

// BranchKind tags how CLEANUP picks the next pc.
type BranchKind uint8

// branch kinds
const (
	BranchNone   BranchKind = iota
	BranchReg               // absolute target latched at DECODE
	BranchCond              // taken when the ALU result is non-zero
	BranchSwitch            // privilege transition through the context swap
)

// BusKind tags a data or IO transaction.
type BusKind uint8

// bus kinds
const (
	BusNone BusKind = iota
	BusRead
	BusWrite
)

// CregKind tags a control-register access.
type CregKind uint8

// control-register access kinds
const (
	CregNone CregKind = iota
	CregRead
	CregWrite
)

// Ctl is the decode bundle: everything the later states need to
// carry one instruction to completion. Each decode path is a single
// pure function from the instruction word to one of these.
type Ctl struct {
	Valid bool
	Code  exception.Code // fault class when not valid

	Priv bool // needs the privilege bit
	Sys  bool // reserved trap opcode

	// Rd doubles as the value source on stores, where it is read
	// and not written
	Rd, Ra, Rb uint8
	WB         bool // write Rd at SAVE
	Link       bool // the written value is pc+4

	HasALU bool
	Op     alu.Op
	UseImm bool // ALU b operand comes from Imm instead of Rb
	Rev    bool // swap the ALU operands after selection
	Imm    uint64

	Bus  BusKind
	IO   bool
	High bool // move register bits 63:32 instead of 31:0

	Creg   CregKind
	CregIx uint8

	Branch BranchKind
}
