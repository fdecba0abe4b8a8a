package core

// Builders for instruction words, used by the tests and the panel's
// deposit command. They are deliberately dumb: fields get masked
// into place and nothing is validated.

func triple(op uint32, rd, ra, rb uint8) uint32 {
	return op<<24 | uint32(rd)<<16 | uint32(ra)<<8 | uint32(rb)
}

func immform(op uint32, rd, ra uint8, imm uint16) uint32 {
	return op<<24 | uint32(rd&0xF)<<20 | uint32(ra&0xF)<<16 | uint32(imm)
}

// Add assembles add rd, ra, rb.
func Add(rd, ra, rb uint8) uint32 { return triple(opcAdd, rd, ra, rb) }

// Sub assembles sub rd, ra, rb.
func Sub(rd, ra, rb uint8) uint32 { return triple(opcSub, rd, ra, rb) }

// And assembles and rd, ra, rb.
func And(rd, ra, rb uint8) uint32 { return triple(opcAnd, rd, ra, rb) }

// Or assembles or rd, ra, rb.
func Or(rd, ra, rb uint8) uint32 { return triple(opcOr, rd, ra, rb) }

// Xor assembles xor rd, ra, rb.
func Xor(rd, ra, rb uint8) uint32 { return triple(opcXor, rd, ra, rb) }

// Shl assembles shl rd, ra, rb.
func Shl(rd, ra, rb uint8) uint32 { return triple(opcShl, rd, ra, rb) }

// Shr assembles shr rd, ra, rb.
func Shr(rd, ra, rb uint8) uint32 { return triple(opcShr, rd, ra, rb) }

// Sar assembles sar rd, ra, rb.
func Sar(rd, ra, rb uint8) uint32 { return triple(opcSar, rd, ra, rb) }

// Above assembles above rd, ra, rb.
func Above(rd, ra, rb uint8) uint32 { return triple(opcAbove, rd, ra, rb) }

// Below assembles below rd, ra, rb.
func Below(rd, ra, rb uint8) uint32 { return triple(opcBelow, rd, ra, rb) }

// Same assembles same rd, ra, rb.
func Same(rd, ra, rb uint8) uint32 { return triple(opcSame, rd, ra, rb) }

// Addi assembles addi rd, ra, imm with a sign-extending immediate.
func Addi(rd, ra uint8, imm uint16) uint32 { return immform(opcAddi, rd, ra, imm) }

// Andi assembles andi rd, ra, imm.
func Andi(rd, ra uint8, imm uint16) uint32 { return immform(opcAndi, rd, ra, imm) }

// Ori assembles ori rd, ra, imm.
func Ori(rd, ra uint8, imm uint16) uint32 { return immform(opcOri, rd, ra, imm) }

// Xori assembles xori rd, ra, imm.
func Xori(rd, ra uint8, imm uint16) uint32 { return immform(opcXori, rd, ra, imm) }

// Shli assembles shli rd, ra, amount.
func Shli(rd, ra uint8, imm uint16) uint32 { return immform(opcShli, rd, ra, imm) }

// Shri assembles shri rd, ra, amount.
func Shri(rd, ra uint8, imm uint16) uint32 { return immform(opcShri, rd, ra, imm) }

// Sari assembles sari rd, ra, amount.
func Sari(rd, ra uint8, imm uint16) uint32 { return immform(opcSari, rd, ra, imm) }

// Pack assembles pack rd, ra, imm: rd = ra<<16 | imm.
func Pack(rd, ra uint8, imm uint16) uint32 { return immform(opcPack, rd, ra, imm) }

// Link assembles link rd: rd = pc+4.
func Link(rd uint8) uint32 { return immform(opcLink, rd, 0, 0) }

// Goto assembles goto ra: pc = ra.
func Goto(ra uint8) uint32 { return immform(opcGoto, 0, ra, 0) }

// Call assembles call rd, ra: rd = pc+4, pc = ra.
func Call(rd, ra uint8) uint32 { return immform(opcCall, rd, ra, 0) }

// Switch assembles the privilege transition primitive.
func Switch() uint32 { return immform(opcSwitch, 0, 0, 0) }

// Sys assembles the reserved trap opcode.
func Sys() uint32 { return immform(opcSys, 0, 0, 0) }

// Crget assembles crget rd, ix.
func Crget(rd uint8, ix uint8) uint32 { return immform(opcCrget, rd, 0, uint16(ix)) }

// Crset assembles crset ix, ra.
func Crset(ix uint8, ra uint8) uint32 { return immform(opcCrset, 0, ra, uint16(ix)) }

// Load assembles load rd, [ra+disp].
func Load(rd, ra uint8, disp uint16) uint32 { return immform(opcLoad, rd, ra, disp) }

// Store assembles store [ra+disp], rv.
func Store(rv, ra uint8, disp uint16) uint32 { return immform(opcStore, rv, ra, disp) }

// Loadh assembles loadh rd, [ra+disp], the high-half read.
func Loadh(rd, ra uint8, disp uint16) uint32 { return immform(opcLoadh, rd, ra, disp) }

// Storeh assembles storeh [ra+disp], rv, the high-half write.
func Storeh(rv, ra uint8, disp uint16) uint32 { return immform(opcStoreh, rv, ra, disp) }

// In assembles in rd, [ra+disp], the IO-space read.
func In(rd, ra uint8, disp uint16) uint32 { return immform(opcIn, rd, ra, disp) }

// Out assembles out [ra+disp], rv, the IO-space write.
func Out(rv, ra uint8, disp uint16) uint32 { return immform(opcOut, rv, ra, disp) }

// Inh assembles inh rd, [ra+disp].
func Inh(rd, ra uint8, disp uint16) uint32 { return immform(opcInh, rd, ra, disp) }

// Outh assembles outh [ra+disp], rv.
func Outh(rv, ra uint8, disp uint16) uint32 { return immform(opcOuth, rv, ra, disp) }

// Brsame assembles brsame ra, rb, slot. The pc lands on slot*4
// inside the current 256KB window when taken.
func Brsame(ra, rb uint8, slot uint16) uint32 { return immform(opcBrsame, ra, rb, slot) }

// Brabove assembles brabove ra, rb, slot.
func Brabove(ra, rb uint8, slot uint16) uint32 { return immform(opcBrabove, ra, rb, slot) }

// Brbelow assembles brbelow ra, rb, slot.
func Brbelow(ra, rb uint8, slot uint16) uint32 { return immform(opcBrbelow, ra, rb, slot) }

// Ldi assembles ldi rd, imm24 from the 16-slot load family.
func Ldi(rd uint8, imm uint32) uint32 {
	return (opcLdi|uint32(rd&0xF))<<24 | imm&0xFFFFFF
}

// Xalu assembles xalu rd, ra, rb, xop from the extended-ALU family.
func Xalu(rd, ra, rb uint8, xop uint16) uint32 {
	return (opcXalu|uint32(rb&0xF))<<24 | uint32(rd&0xF)<<20 | uint32(ra&0xF)<<16 | uint32(xop)
}

// Foreign-table encoders, one per layout.

// EncodeRType packs a foreign register-group word.
func EncodeRType(opcode, rd, rs1, rs2, f3, f7 uint32) uint32 {
	return (f7 << 25) | (rs2 << 20) | (rs1 << 15) | (f3 << 12) | (rd << 7) | opcode
}

// EncodeIType packs a foreign immediate-group word.
func EncodeIType(opcode, rd, rs1, f3, imm uint32) uint32 {
	return (imm << 20) | (rs1 << 15) | (f3 << 12) | (rd << 7) | opcode
}

// EncodeSType packs a foreign store-layout word.
func EncodeSType(opcode, rs1, rs2, f3, imm uint32) uint32 {
	immLo := imm & 0x1F
	immHi := (imm >> 5) & 0x7F
	return (immHi << 25) | (rs2 << 20) | (rs1 << 15) | (f3 << 12) | (immLo << 7) | opcode
}

// EncodeBType packs a foreign branch-layout word.
func EncodeBType(opcode, rs1, rs2, f3, imm uint32) uint32 {
	b11 := (imm >> 11) & 0x1
	b41 := (imm >> 1) & 0xF
	b105 := (imm >> 5) & 0x3F
	b12 := (imm >> 12) & 0x1
	return (b12 << 31) | (b105 << 25) | (rs2 << 20) | (rs1 << 15) |
		(f3 << 12) | (b41 << 8) | (b11 << 7) | opcode
}

// EncodeUType packs a foreign upper-immediate word.
func EncodeUType(opcode, rd, imm uint32) uint32 {
	return (imm &^ 0xFFF) | (rd << 7) | opcode
}

// EncodeJType packs a foreign jump-layout word.
func EncodeJType(opcode, rd, imm uint32) uint32 {
	b20 := (imm >> 20) & 0x1
	b101 := (imm >> 1) & 0x3FF
	b11 := (imm >> 11) & 0x1
	b1912 := (imm >> 12) & 0xFF
	return (b20 << 31) | (b101 << 21) | (b11 << 20) | (b1912 << 12) | (rd << 7) | opcode
}
