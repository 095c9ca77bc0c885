package registers

import "testing"

func TestGetSet(t *testing.T) {
	var f File
	f.Set(RAX, 0x1122334455667788)
	if got := f.Get(RAX); got != 0x1122334455667788 {
		t.Errorf("Get(RAX) = %#x, want 0x1122334455667788", got)
	}
}

func TestSet32PreservesUpperBits(t *testing.T) {
	var f File
	f.Set(RBX, 0xdeadbeef00000000)
	f.Set32(RBX, 0x12345678)
	if got := f.Get(RBX); got != 0xdeadbeef12345678 {
		t.Errorf("Get(RBX) = %#x, want 0xdeadbeef12345678", got)
	}
	if got := f.Get32(RBX); got != 0x12345678 {
		t.Errorf("Get32(RBX) = %#x, want 0x12345678", got)
	}
}

func TestReset(t *testing.T) {
	var f File
	f.Set(R15, 42)
	f.Reset()
	if got := f.Get(R15); got != 0 {
		t.Errorf("Get(R15) after Reset = %d, want 0", got)
	}
}

func TestValidGeneral(t *testing.T) {
	if !ValidGeneral(0) || !ValidGeneral(15) {
		t.Errorf("0 and 15 should be valid general registers")
	}
	if ValidGeneral(16) {
		t.Errorf("16 should not be a valid general register")
	}
}

func TestLegacyAliasesMatchX86Numbering(t *testing.T) {
	cases := []struct {
		legacy Index
		full   Index
	}{
		{R0, RAX}, {R1, RCX}, {R2, RDX}, {R3, RBX},
		{R4, RSP}, {R5, RBP}, {R6, RSI}, {R7, RDI},
	}
	for _, c := range cases {
		if c.legacy != c.full {
			t.Errorf("legacy alias %v != %v", c.legacy, c.full)
		}
	}
}

func TestInfoTableGeneralPurpose(t *testing.T) {
	info := InfoTable[RAX]
	if info.Name != "RAX" {
		t.Errorf("InfoTable[RAX].Name = %q, want RAX", info.Name)
	}
	if info.Class&ClassGeneral == 0 {
		t.Errorf("RAX should be classified ClassGeneral")
	}
	if !info.Is64Bit {
		t.Errorf("RAX should be marked Is64Bit")
	}
}

func TestDRIndexing(t *testing.T) {
	if DR(0) == DR(1) {
		t.Errorf("DR(0) and DR(1) should be distinct")
	}
	info := InfoTable[DR(0)]
	if info.Class&ClassDebug == 0 {
		t.Errorf("DR(0) should be classified ClassDebug")
	}
}

func TestXMMPairIndexing(t *testing.T) {
	lo, hi := XMMLow(3), XMMHigh(3)
	if hi != lo+1 {
		t.Errorf("XMMHigh(3) = %v, want XMMLow(3)+1 = %v", hi, lo+1)
	}
}
