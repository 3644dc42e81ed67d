package mips

// COP0 is the system coprocessor subset spec.md §3 requires: the Status
// register's mode/interrupt stack and cache-isolate bit, Cause, and EPC.
// Shaped after the teacher's COP0 (internal/mips/cop0.go in the source
// tree): named register indices, a Read/Write pair keyed by register
// number, and a RaiseException that returns the vector address — trimmed
// to the PSX subset (no TLB, no Count/Compare timer, no interrupt mask)
// since spec.md explicitly scopes those out.
type COP0 struct {
	sr    uint32 // register 12, Status
	cause uint32 // register 13, Cause
	epc   uint32 // register 14, EPC
}

// COP0 register numbers addressed by MFC0/MTC0.
const (
	cop0RegSR    = 12
	cop0RegCause = 13
	cop0RegEPC   = 14
)

// Status bits.
const (
	srIsC uint32 = 1 << 16 // Isolate Cache
	srBEV uint32 = 1 << 22 // Bootstrap Exception Vectors
)

const causeBD uint32 = 1 << 31

// Exception causes (spec.md §4.4 and the reserved numbering SPEC_FULL.md
// carries forward for a future peripheral-interrupt model).
const (
	ExcInterrupt           uint8 = 0
	ExcTLBModified         uint8 = 1
	ExcLoadAddressError    uint8 = 4
	ExcStoreAddressError   uint8 = 5
	ExcSysCall             uint8 = 8
	ExcBreakpoint          uint8 = 9
	ExcReservedInstruction uint8 = 10
	ExcOverflow            uint8 = 12
)

const (
	bootVector   = 0xBFC00180
	kernelVector = 0x80000080
)

// IsolateCache reports whether SR.IsC suppresses stores (spec.md §4.4).
func (c *COP0) IsolateCache() bool {
	return c.sr&srIsC != 0
}

// Read implements MFC0 for the registers spec.md keeps: SR, CAUSE, EPC.
// Any other register is a coverage gap the caller must treat as fatal.
func (c *COP0) Read(reg int) (value uint32, ok bool) {
	switch reg {
	case cop0RegSR:
		return c.sr, true
	case cop0RegCause:
		return c.cause, true
	case cop0RegEPC:
		return c.epc, true
	default:
		return 0, false
	}
}

// isBreakpointRegister reports the registers that accept writes of zero only, per spec.md §3's stub list.
func isBreakpointRegister(reg int) bool {
	switch reg {
	case 3, 5, 6, 7, 9, 11:
		return true
	default:
		return false
	}
}

// Write implements MTC0. SR accepts any value. CAUSE and the
// breakpoint/watchpoint stub registers accept only zero. Any other
// register traps as unhandled (ok == false): the caller is expected to
// treat that as an emulator-coverage fatal error.
func (c *COP0) Write(reg int, val uint32) (ok bool) {
	switch {
	case reg == cop0RegSR:
		c.sr = val
		return true
	case reg == cop0RegCause:
		if val != 0 {
			return false
		}
		return true
	case isBreakpointRegister(reg):
		if val != 0 {
			return false
		}
		return true
	default:
		return false
	}
}

// RFE pops the three-level KU/IE stack: the low four bits of SR shift right
// by two, and the top two bits of the six-bit field are preserved
// (spec.md §4.4, "Instruction set").
func (c *COP0) RFE() {
	low6 := c.sr & 0x3F
	c.sr = (c.sr &^ 0x3F) | ((low6 >> 2) & 0x0F) | (low6 & 0x30)
}

// RaiseException pushes the mode/interrupt stack, records CAUSE and EPC,
// and returns the exception vector to redirect the fetch stream to
// (spec.md §4.4, "Exceptions").
func (c *COP0) RaiseException(cause uint8, currentPC uint32, inDelaySlot bool) (vector uint32) {
	low6 := c.sr & 0x3F
	c.sr = (c.sr &^ 0x3F) | ((low6<<2)&0x3F) | (low6 & 0x30)

	c.cause = uint32(cause) << 2
	if inDelaySlot {
		c.cause |= causeBD
		c.epc = currentPC - 4
	} else {
		c.epc = currentPC
	}

	if c.sr&srBEV != 0 {
		return bootVector
	}
	return kernelVector
}
