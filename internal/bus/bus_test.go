package bus

import "testing"

func fakeBIOS() []byte {
	img := make([]byte, biosSize)
	for i := range img {
		img[i] = byte(i)
	}
	return img
}

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b, err := New(fakeBIOS(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewRejectsWrongBIOSSize(t *testing.T) {
	if _, err := New(make([]byte, 123), nil); err == nil {
		t.Fatal("expected error for undersized bios image")
	}
}

func TestRAMRoundTrip(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x1000, 0xDEADBEEF)
	if got := b.Load32(0x1000); got != 0xDEADBEEF {
		t.Fatalf("Load32 = 0x%08X, want 0xDEADBEEF", got)
	}
	if got := b.Load16(0x1000); got != 0xBEEF {
		t.Fatalf("Load16 = 0x%04X, want 0xBEEF", got)
	}
	if got := b.Load8(0x1000); got != 0xEF {
		t.Fatalf("Load8 = 0x%02X, want 0xEF", got)
	}
}

func TestRegionAliasing(t *testing.T) {
	b := newTestBus(t)
	b.Store32(0x00001000, 0x12345678)

	for _, addr := range []uint32{0x00001000, 0x80001000, 0xA0001000} {
		if got := b.Load32(addr); got != 0x12345678 {
			t.Errorf("Load32(0x%08X) = 0x%08X, want 0x12345678", addr, got)
		}
	}
}

func TestMaskAliasesKUSEGKSEG0KSEG1(t *testing.T) {
	addr := uint32(0x00123456)
	a := mask(addr)
	b0 := mask(addr | 0x80000000)
	b1 := mask(addr | 0xA0000000)
	if a != b0 || a != b1 {
		t.Fatalf("mask mismatch: %08X %08X %08X", a, b0, b1)
	}
}

func TestBIOSReadOnly(t *testing.T) {
	b := newTestBus(t)
	if got := b.Load8(0x1FC00000); got != fakeBIOS()[0] {
		t.Fatalf("Load8(bios base) = %d, want %d", got, fakeBIOS()[0])
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to BIOS")
		}
	}()
	b.Store32(0x1FC00000, 0)
}

func TestMemControlBaseAddressEnforced(t *testing.T) {
	b := newTestBus(t)
	b.Store32(0x1F801000, 0x1F000000)
	b.Store32(0x1F801004, 0x1F802000)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on bad expansion base address")
		}
	}()
	b.Store32(0x1F801000, 0)
}

func TestGPUStatusStub(t *testing.T) {
	b := newTestBus(t)
	if got := b.Load32(0x1F801810); got != 0 {
		t.Fatalf("GPU+0 = 0x%08X, want 0", got)
	}
	if got := b.Load32(0x1F801814); got != 0x10000000 {
		t.Fatalf("GPU+4 = 0x%08X, want 0x10000000", got)
	}
}

func TestUnalignedAccessFatal(t *testing.T) {
	b := newTestBus(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unaligned load32")
		}
	}()
	b.Load32(0x1001)
}

func TestExpansion1ReadSentinel(t *testing.T) {
	b := newTestBus(t)
	if got := b.Load8(0x1F000000); got != 0xFF {
		t.Fatalf("Load8(expansion1) = 0x%02X, want 0xFF", got)
	}
}
