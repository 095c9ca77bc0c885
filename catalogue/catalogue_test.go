package catalogue

import "testing"

func TestLookupKnownOpcode(t *testing.T) {
	e, ok := Lookup(ADD)
	if !ok {
		t.Fatalf("ADD should be assigned")
	}
	if e.Mnemonic != "ADD" {
		t.Errorf("mnemonic = %q, want ADD", e.Mnemonic)
	}
	if e.Shape != RegReg {
		t.Errorf("shape = %v, want RegReg", e.Shape)
	}
}

func TestLookupUnassignedOpcode(t *testing.T) {
	_, ok := Lookup(0x41) // just past DB, unassigned
	if ok {
		t.Errorf("0x41 should be unassigned")
	}
}

func TestByMnemonicRoundTrip(t *testing.T) {
	for op, e := range Table {
		if e.Mnemonic == "" {
			continue
		}
		got, ok := ByMnemonic[e.Mnemonic]
		if !ok {
			t.Fatalf("mnemonic %q missing from ByMnemonic", e.Mnemonic)
		}
		if int(got) != op {
			t.Errorf("ByMnemonic[%q] = %#x, want %#x", e.Mnemonic, got, op)
		}
	}
}

func TestByMnemonicMissUnknown(t *testing.T) {
	if _, ok := ByMnemonic["BOGUS"]; ok {
		t.Errorf("BOGUS should not be in ByMnemonic")
	}
}

func TestDefineBytesSize(t *testing.T) {
	e, _ := Lookup(DB)
	if got := e.Size(5); got != 8 {
		t.Errorf("DB.Size(5) = %d, want 8", got)
	}
}

func TestFixedSizeIgnoresCountByte(t *testing.T) {
	e, _ := Lookup(ADD)
	if got := e.Size(200); got != e.FixedSize {
		t.Errorf("ADD.Size(200) = %d, want FixedSize %d", got, e.FixedSize)
	}
}

func TestRequiresMode64(t *testing.T) {
	cases := []struct {
		op   byte
		want bool
	}{
		{NOP, false},
		{ADD, false},
		{ADD64, true},
		{DEC64, true},
		{MOVEX, true},
		{POPEX, true},
		{MODE64, false},
	}
	for _, c := range cases {
		if got := RequiresMode64(c.op); got != c.want {
			t.Errorf("RequiresMode64(%#x) = %v, want %v", c.op, got, c.want)
		}
	}
}
