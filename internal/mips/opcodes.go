package mips

// Primary opcodes (Instruction.Op). Names follow the teacher's
// OpCode const block (internal/mips32/instructions.go) but are scoped to
// the MIPS I subset spec.md requires.
const (
	opSpecial uint8 = 0x00 // register-form instructions, dispatched on Sub
	opBXX     uint8 = 0x01 // BLTZ/BGEZ/BLTZAL/BGEZAL
	opJ       uint8 = 0x02
	opJAL     uint8 = 0x03
	opBEQ     uint8 = 0x04
	opBNE     uint8 = 0x05
	opBLEZ    uint8 = 0x06
	opBGTZ    uint8 = 0x07
	opADDI    uint8 = 0x08
	opADDIU   uint8 = 0x09
	opSLTI    uint8 = 0x0A
	opSLTIU   uint8 = 0x0B
	opANDI    uint8 = 0x0C
	opORI     uint8 = 0x0D
	opLUI     uint8 = 0x0F
	opCOP0    uint8 = 0x10
	opLB      uint8 = 0x20
	opLW      uint8 = 0x23
	opLBU     uint8 = 0x24
	opSB      uint8 = 0x28
	opSH      uint8 = 0x29
	opSW      uint8 = 0x2B
)

// Secondary opcodes (Instruction.Sub) under opSpecial.
const (
	subSLL     uint8 = 0x00
	subSRL     uint8 = 0x02
	subSRA     uint8 = 0x03
	subJR      uint8 = 0x08
	subJALR    uint8 = 0x09
	subSYSCALL uint8 = 0x0C
	subMFHI    uint8 = 0x10
	subMTHI    uint8 = 0x11
	subMFLO    uint8 = 0x12
	subMTLO    uint8 = 0x13
	subDIV     uint8 = 0x1A
	subDIVU    uint8 = 0x1B
	subADD     uint8 = 0x20
	subADDU    uint8 = 0x21
	subSUBU    uint8 = 0x23
	subAND     uint8 = 0x24
	subOR      uint8 = 0x25
	subSLT     uint8 = 0x2A
	subSLTU    uint8 = 0x2B
)

// COP0 sub-opcodes (Instruction.CopOp).
const (
	cop0MF  uint8 = 0x00
	cop0MT  uint8 = 0x04
	cop0RFE uint8 = 0x10
)

// rfeFunct is the low six bits that distinguish RFE from other cop0RFE-class ops.
const rfeFunct uint8 = 0b010000

// bxxLinkField is compared against Rt>>1 to decode the BXX family: the link
// bit covers bits [20:17] of the instruction word (Rt's top four bits), and
// bit 16 (Rt's low bit) is the greater-or-equal selector (spec.md §4.4).
const bxxLinkField uint8 = 0b1000
