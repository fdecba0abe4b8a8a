package core

import "fmt"

// native layout tags for the renderer
const (
	laTriple = iota
	laImm
	laRd
	laRa
	laRdRa
	laNone
	laCrR
	laCrW
	laMemR
	laMemW
	laBr
)

var natable = []struct {
	opc uint8
	msg string
	la  int
}{
	{opcAdd, "add", laTriple},
	{opcSub, "sub", laTriple},
	{opcAnd, "and", laTriple},
	{opcOr, "or", laTriple},
	{opcXor, "xor", laTriple},
	{opcShl, "shl", laTriple},
	{opcShr, "shr", laTriple},
	{opcSar, "sar", laTriple},
	{opcAbove, "above", laTriple},
	{opcBelow, "below", laTriple},
	{opcSame, "same", laTriple},
	{opcAddi, "addi", laImm},
	{opcAndi, "andi", laImm},
	{opcOri, "ori", laImm},
	{opcXori, "xori", laImm},
	{opcShli, "shli", laImm},
	{opcShri, "shri", laImm},
	{opcSari, "sari", laImm},
	{opcPack, "pack", laImm},
	{opcLink, "link", laRd},
	{opcGoto, "goto", laRa},
	{opcCall, "call", laRdRa},
	{opcSwitch, "switch", laNone},
	{opcSys, "sys", laNone},
	{opcCrget, "crget", laCrR},
	{opcCrset, "crset", laCrW},
	{opcLoad, "load", laMemR},
	{opcStore, "store", laMemW},
	{opcLoadh, "loadh", laMemR},
	{opcStoreh, "storeh", laMemW},
	{opcIn, "in", laMemR},
	{opcOut, "out", laMemW},
	{opcInh, "inh", laMemR},
	{opcOuth, "outh", laMemW},
	{opcBrsame, "brsame", laBr},
	{opcBrabove, "brabove", laBr},
	{opcBrbelow, "brbelow", laBr},
}

// Disasm renders one instruction word for the trace buffer and the
// front panel. foreign selects the table, exactly like the decoder.
func Disasm(w uint32, foreign bool) string {
	if foreign {
		return disasmForeign(w)
	}
	return disasmNative(w)
}

func disasmNative(w uint32) string {
	op := uint8(w >> 24)
	switch op >> 4 {
	case 0xE:
		return fmt.Sprintf("ldi r%d, %#x", op&0xF, w&0xFFFFFF)
	case 0xF:
		rd, ra := nibbleRegs(w)
		return fmt.Sprintf("xalu r%d, r%d, r%d, %#04x", rd, ra, op&0xF, imm16(w))
	}
	for _, e := range natable {
		if e.opc != op {
			continue
		}
		rd, ra := nibbleRegs(w)
		switch e.la {
		case laTriple:
			td, ta, tb := tripleRegs(w)
			return fmt.Sprintf("%s r%d, r%d, r%d", e.msg, td, ta, tb)
		case laImm:
			return fmt.Sprintf("%s r%d, r%d, %#x", e.msg, rd, ra, imm16(w))
		case laRd:
			return fmt.Sprintf("%s r%d", e.msg, rd)
		case laRa:
			return fmt.Sprintf("%s r%d", e.msg, ra)
		case laRdRa:
			return fmt.Sprintf("%s r%d, r%d", e.msg, rd, ra)
		case laNone:
			return e.msg
		case laCrR:
			return fmt.Sprintf("%s r%d, %#02x", e.msg, rd, imm16(w)%CregMax)
		case laCrW:
			return fmt.Sprintf("%s %#02x, r%d", e.msg, imm16(w)%CregMax, ra)
		case laMemR:
			return fmt.Sprintf("%s r%d, [r%d%+d]", e.msg, rd, ra, int64(sext16(imm16(w))))
		case laMemW:
			return fmt.Sprintf("%s [r%d%+d], r%d", e.msg, ra, int64(sext16(imm16(w))), rd)
		case laBr:
			return fmt.Sprintf("%s r%d, r%d, %#x", e.msg, rd, ra, imm16(w)<<2)
		}
	}
	return fmt.Sprintf(".word %08x", w)
}

// function-field mnemonics of the foreign table
var (
	forRNames  = [8]string{"add", "sll", "slt", "sltu", "xor", "srl", "or", "and"}
	forINames  = [8]string{"addi", "slli", "slti", "sltiu", "xori", "srli", "ori", "andi"}
	forLdNames = [8]string{"lb", "lh", "lw", "ld", "lbu", "lhu", "lwu", "l?"}
	forStNames = [8]string{"sb", "sh", "sw", "sd", "s?", "s?", "s?", "s?"}
	forBrNames = [8]string{"beq", "bne", "b?", "b?", "blt", "bge", "bltu", "bgeu"}
)

// disasmForeign also names the forms the decoder rejects, so a
// monitor session can see what the trap handler was given.
func disasmForeign(w uint32) string {
	rd, rs1, rs2 := forRegs(w)
	f3 := funct3(w)
	switch w & 0x7F {
	case forOp:
		msg := forRNames[f3]
		if funct7(w) == 0x20 {
			if f3 == 0 {
				msg = "sub"
			} else if f3 == 5 {
				msg = "sra"
			}
		}
		return fmt.Sprintf("%s x%d, x%d, x%d", msg, rd, rs1, rs2)
	case forOpImm:
		msg := forINames[f3]
		if f3 == 5 && (w>>26) == 0x10 {
			msg = "srai"
		}
		if f3 == 1 || f3 == 5 {
			return fmt.Sprintf("%s x%d, x%d, %d", msg, rd, rs1, (w>>20)&0x3F)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", msg, rd, rs1, int64(immI(w)))
	case forJalr:
		return fmt.Sprintf("jalr x%d, %d(x%d)", rd, int64(immI(w)), rs1)
	case 0x03:
		return fmt.Sprintf("%s x%d, %d(x%d)", forLdNames[f3], rd, int64(immI(w)), rs1)
	case 0x23:
		return fmt.Sprintf("%s x%d, %d(x%d)", forStNames[f3], rs2, int64(immS(w)), rs1)
	case 0x63:
		return fmt.Sprintf("%s x%d, x%d, %d", forBrNames[f3], rs1, rs2, int64(immB(w)))
	case 0x37:
		return fmt.Sprintf("lui x%d, %#x", rd, immU(w))
	case 0x17:
		return fmt.Sprintf("auipc x%d, %#x", rd, immU(w))
	case 0x6F:
		return fmt.Sprintf("jal x%d, %d", rd, int64(immJ(w)))
	}
	return fmt.Sprintf(".word %08x", w)
}
