package main

import (
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schawnndev/psxcpu/internal/mips"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: psxdisasm <elf-or-raw-binary>")
		return
	}

	fileName := flag.Arg(0)
	file, err := os.Open(fileName)
	if err != nil {
		log.Fatalf("failed to open file: %v", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close file: %v", err)
		}
	}()

	if elfFile, err := elf.Open(fileName); err == nil {
		defer func() {
			if err := elfFile.Close(); err != nil {
				log.Printf("failed to close elf file: %v", err)
			}
		}()
		disassembleELF(elfFile)
		return
	}

	fmt.Println("not an ELF file, treating as a raw little-endian binary")
	disassembleRaw(file)
}

func disassembleELF(elfFile *elf.File) {
	fmt.Printf("ELF file: %s\n", elfFile.Machine)
	fmt.Printf("entry point: 0x%08X\n\n", elfFile.Entry)

	fmt.Println("sections:")
	for _, section := range elfFile.Sections {
		fmt.Printf("  %-20s addr=0x%08X size=%-8d flags=%s\n",
			section.Name, section.Addr, section.Size, sectionFlagsString(section.Flags))
	}
	fmt.Println()

	text := elfFile.Section(".text")
	if text == nil {
		fmt.Println("no .text section found; scanning for executable sections")
		for _, section := range elfFile.Sections {
			if section.Flags&elf.SHF_EXECINSTR != 0 {
				disassembleSection(section)
			}
		}
		return
	}

	fmt.Printf("disassembling .text (0x%08X - 0x%08X):\n", text.Addr, text.Addr+text.Size)
	disassembleSection(text)
}

func disassembleSection(section *elf.Section) {
	data, err := section.Data()
	if err != nil {
		log.Printf("failed to read section %s: %v", section.Name, err)
		return
	}

	addr := uint32(section.Addr)
	for i := 0; i+4 <= len(data); i += 4 {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		printInstruction(addr+uint32(i), word)
	}
}

func sectionFlagsString(flags elf.SectionFlag) string {
	var s string
	if flags&elf.SHF_WRITE != 0 {
		s += "W"
	}
	if flags&elf.SHF_ALLOC != 0 {
		s += "A"
	}
	if flags&elf.SHF_EXECINSTR != 0 {
		s += "X"
	}
	if s == "" {
		s = "-"
	}
	return s
}

func disassembleRaw(file *os.File) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("failed to seek file: %v", err)
	}

	var offset uint32
	for {
		var word uint32
		if err := binary.Read(file, binary.LittleEndian, &word); err != nil {
			break
		}
		printInstruction(offset, word)
		offset += 4
	}
}

func printInstruction(addr, word uint32) {
	fmt.Printf("0x%08X: 0x%08X\t%s\n", addr, word, mnemonic(mips.Decode(word), addr))
}

// mnemonic renders the MIPS I subset this core executes. A BIOS image will
// contain GTE (COP2) and FPU encodings this core never runs; those fall
// through to the generic "unknown" text rather than a crash, since a
// disassembler's job is to show the bytes even where the CPU would trap.
func mnemonic(i mips.Instruction, pc uint32) string {
	const (
		opREGIMM = 0x01
	)

	switch i.Op {
	case 0x00:
		return rTypeMnemonic(i)
	case opREGIMM:
		return regimmMnemonic(i, pc)
	case 0x02:
		return fmt.Sprintf("j 0x%08X", i.JumpTarget(pc+4))
	case 0x03:
		return fmt.Sprintf("jal 0x%08X", i.JumpTarget(pc+4))
	case 0x10:
		return cop0Mnemonic(i)
	default:
		return iTypeMnemonic(i, pc)
	}
}

func rTypeMnemonic(i mips.Instruction) string {
	switch i.Sub {
	case 0x00:
		return fmt.Sprintf("sll $%d, $%d, %d", i.Rd, i.Rt, i.Shamt)
	case 0x02:
		return fmt.Sprintf("srl $%d, $%d, %d", i.Rd, i.Rt, i.Shamt)
	case 0x03:
		return fmt.Sprintf("sra $%d, $%d, %d", i.Rd, i.Rt, i.Shamt)
	case 0x08:
		return fmt.Sprintf("jr $%d", i.Rs)
	case 0x09:
		return fmt.Sprintf("jalr $%d, $%d", i.Rd, i.Rs)
	case 0x0C:
		return "syscall"
	case 0x10:
		return fmt.Sprintf("mfhi $%d", i.Rd)
	case 0x11:
		return fmt.Sprintf("mthi $%d", i.Rs)
	case 0x12:
		return fmt.Sprintf("mflo $%d", i.Rd)
	case 0x13:
		return fmt.Sprintf("mtlo $%d", i.Rs)
	case 0x1A:
		return fmt.Sprintf("div $%d, $%d", i.Rs, i.Rt)
	case 0x1B:
		return fmt.Sprintf("divu $%d, $%d", i.Rs, i.Rt)
	case 0x20:
		return fmt.Sprintf("add $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x21:
		return fmt.Sprintf("addu $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x23:
		return fmt.Sprintf("subu $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x24:
		return fmt.Sprintf("and $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x25:
		return fmt.Sprintf("or $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x2A:
		return fmt.Sprintf("slt $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	case 0x2B:
		return fmt.Sprintf("sltu $%d, $%d, $%d", i.Rd, i.Rs, i.Rt)
	default:
		return fmt.Sprintf("unknown special funct 0x%02X", i.Sub)
	}
}

func iTypeMnemonic(i mips.Instruction, pc uint32) string {
	switch i.Op {
	case 0x04:
		return fmt.Sprintf("beq $%d, $%d, 0x%08X", i.Rs, i.Rt, branchTarget(i, pc))
	case 0x05:
		return fmt.Sprintf("bne $%d, $%d, 0x%08X", i.Rs, i.Rt, branchTarget(i, pc))
	case 0x06:
		return fmt.Sprintf("blez $%d, 0x%08X", i.Rs, branchTarget(i, pc))
	case 0x07:
		return fmt.Sprintf("bgtz $%d, 0x%08X", i.Rs, branchTarget(i, pc))
	case 0x08:
		return fmt.Sprintf("addi $%d, $%d, %d", i.Rt, i.Rs, int32(i.ImmSE))
	case 0x09:
		return fmt.Sprintf("addiu $%d, $%d, %d", i.Rt, i.Rs, int32(i.ImmSE))
	case 0x0A:
		return fmt.Sprintf("slti $%d, $%d, %d", i.Rt, i.Rs, int32(i.ImmSE))
	case 0x0B:
		return fmt.Sprintf("sltiu $%d, $%d, %d", i.Rt, i.Rs, i.Imm)
	case 0x0C:
		return fmt.Sprintf("andi $%d, $%d, 0x%04X", i.Rt, i.Rs, i.Imm)
	case 0x0D:
		return fmt.Sprintf("ori $%d, $%d, 0x%04X", i.Rt, i.Rs, i.Imm)
	case 0x0F:
		return fmt.Sprintf("lui $%d, 0x%04X", i.Rt, i.Imm)
	case 0x20:
		return fmt.Sprintf("lb $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	case 0x23:
		return fmt.Sprintf("lw $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	case 0x24:
		return fmt.Sprintf("lbu $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	case 0x28:
		return fmt.Sprintf("sb $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	case 0x29:
		return fmt.Sprintf("sh $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	case 0x2B:
		return fmt.Sprintf("sw $%d, %d($%d)", i.Rt, int32(i.ImmSE), i.Rs)
	default:
		return fmt.Sprintf("unknown opcode 0x%02X", i.Op)
	}
}

func branchTarget(i mips.Instruction, pc uint32) uint32 {
	return pc + 4 + (i.ImmSE << 2)
}

func regimmMnemonic(i mips.Instruction, pc uint32) string {
	target := branchTarget(i, pc)
	switch i.Rt {
	case 0x00:
		return fmt.Sprintf("bltz $%d, 0x%08X", i.Rs, target)
	case 0x01:
		return fmt.Sprintf("bgez $%d, 0x%08X", i.Rs, target)
	case 0x10:
		return fmt.Sprintf("bltzal $%d, 0x%08X", i.Rs, target)
	case 0x11:
		return fmt.Sprintf("bgezal $%d, 0x%08X", i.Rs, target)
	default:
		return fmt.Sprintf("unknown regimm rt=0x%02X", i.Rt)
	}
}

func cop0Mnemonic(i mips.Instruction) string {
	switch i.CopOp {
	case 0x00:
		return fmt.Sprintf("mfc0 $%d, $%d", i.Rt, i.Rd)
	case 0x04:
		return fmt.Sprintf("mtc0 $%d, $%d", i.Rt, i.Rd)
	case 0x10:
		if i.Sub == 0x10 {
			return "rfe"
		}
		return fmt.Sprintf("cop0-co funct=0x%02X", i.Sub)
	default:
		return fmt.Sprintf("unknown cop0 sub-opcode 0x%02X", i.CopOp)
	}
}
