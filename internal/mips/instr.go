package mips

import "github.com/schawnndev/psxcpu/internal/utils"

// Instruction is the decoded MIPS I field set for a 32-bit word. Decoding is
// a pure function of the word: no two Instructions built from the same word
// ever differ, and decoding never touches CPU state. Field names follow the
// teacher's RTypeInstruction/ITypeInstruction/JTypeInstruction split
// (internal/mips32/instructions.go), merged into one struct since this
// core's CPU.execute switches on Op/Sub directly rather than dispatching
// through an Instruction interface.
type Instruction struct {
	Word uint32

	Op    uint8 // word[31:26], primary opcode
	Sub   uint8 // word[5:0], secondary opcode (funct) when Op == 0
	Rs    uint8 // word[25:21]
	Rt    uint8 // word[20:16]
	Rd    uint8 // word[15:11]
	Shamt uint8 // word[10:6]

	Imm     uint32 // word[15:0] zero-extended
	ImmSE   uint32 // word[15:0] sign-extended to 32 bits
	ImmJump uint32 // word[25:0], jump target field (not yet shifted/merged)
	CopOp   uint8  // word[25:21], coprocessor sub-opcode
}

// Decode extracts the MIPS I field set from a 32-bit instruction word.
func Decode(word uint32) Instruction {
	imm := word & 0xFFFF
	return Instruction{
		Word:    word,
		Op:      uint8(word >> 26),
		Sub:     uint8(word & 0x3F),
		Rs:      uint8((word >> 21) & 0x1F),
		Rt:      uint8((word >> 16) & 0x1F),
		Rd:      uint8((word >> 11) & 0x1F),
		Shamt:   uint8((word >> 6) & 0x1F),
		Imm:     imm,
		ImmSE:   utils.SignExtend(imm, 16),
		ImmJump: word & 0x3FFFFFF,
		CopOp:   uint8((word >> 21) & 0x1F),
	}
}

// JumpTarget computes the absolute jump target for J/JAL: the 26-bit field
// shifted left by two and merged with the top four bits of the address of
// the jump's delay slot (the jump's own address + 4, per MIPS convention —
// here the already-advanced CPU.pc at the time the instruction executes).
func (i Instruction) JumpTarget(pc uint32) uint32 {
	return (pc & 0xF0000000) | (i.ImmJump << 2)
}
