package mips

import "testing"

func TestIsolateCacheBit(t *testing.T) {
	var c COP0
	if c.IsolateCache() {
		t.Fatal("IsolateCache should be false on reset")
	}
	c.Write(cop0RegSR, srIsC)
	if !c.IsolateCache() {
		t.Fatal("IsolateCache should be true after setting SR.IsC")
	}
}

func TestRaiseExceptionPushesModeStack(t *testing.T) {
	var c COP0
	c.Write(cop0RegSR, 0b110101) // KUo=1 IEo=1, KUp=0 IEp=1, KUc=0 IEc=1

	c.RaiseException(ExcSysCall, 0x80001000, false)

	sr, _ := c.Read(cop0RegSR)
	// low 4 bits shift left by 2 (current pair becomes 00: kernel, interrupts
	// disabled); the old top pair (bits 5:4) is preserved, not shifted away.
	if sr&0x3F != 0b110100 {
		t.Fatalf("SR low6 = %06b, want 110100", sr&0x3F)
	}
}

func TestRFEPopsModeStack(t *testing.T) {
	var c COP0
	c.Write(cop0RegSR, 0b010100)
	c.RFE()
	sr, _ := c.Read(cop0RegSR)
	if sr&0x3F != 0b010101 {
		t.Fatalf("SR low6 after RFE = %06b, want 010101", sr&0x3F)
	}
}

func TestRaiseExceptionRecordsEPCAndCause(t *testing.T) {
	var c COP0
	c.RaiseException(ExcOverflow, 0x80001004, false)
	epc, _ := c.Read(cop0RegEPC)
	if epc != 0x80001004 {
		t.Fatalf("EPC = 0x%08X, want 0x80001004", epc)
	}
	cause, _ := c.Read(cop0RegCause)
	if cause>>2 != uint32(ExcOverflow) {
		t.Fatalf("Cause exc code = %d, want %d", cause>>2, ExcOverflow)
	}
}

func TestRaiseExceptionInDelaySlotBacksUpEPC(t *testing.T) {
	var c COP0
	c.RaiseException(ExcOverflow, 0x80001008, true)
	epc, _ := c.Read(cop0RegEPC)
	if epc != 0x80001004 {
		t.Fatalf("EPC = 0x%08X, want 0x80001004 (currentPC-4)", epc)
	}
	cause, _ := c.Read(cop0RegCause)
	if cause&causeBD == 0 {
		t.Fatal("Cause.BD should be set when exception occurs in a delay slot")
	}
}

func TestRaiseExceptionVectorSelectedByBEV(t *testing.T) {
	var c COP0
	if v := c.RaiseException(ExcSysCall, 0x80001000, false); v != kernelVector {
		t.Fatalf("vector = 0x%08X, want kernelVector (BEV=0)", v)
	}

	var c2 COP0
	c2.Write(cop0RegSR, srBEV)
	if v := c2.RaiseException(ExcSysCall, 0x80001000, false); v != bootVector {
		t.Fatalf("vector = 0x%08X, want bootVector (BEV=1)", v)
	}
}

func TestWriteCauseRejectsNonZero(t *testing.T) {
	var c COP0
	if c.Write(cop0RegCause, 1) {
		t.Fatal("write of non-zero value to CAUSE should fail")
	}
	if !c.Write(cop0RegCause, 0) {
		t.Fatal("write of zero to CAUSE should succeed")
	}
}

func TestWriteUnhandledRegisterFails(t *testing.T) {
	var c COP0
	if c.Write(2, 0) {
		t.Fatal("write to an unhandled cop0 register should fail")
	}
	if _, ok := c.Read(2); ok {
		t.Fatal("read of an unhandled cop0 register should fail")
	}
}
