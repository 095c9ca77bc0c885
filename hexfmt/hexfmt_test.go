package hexfmt

import "testing"

func TestFormatBytes(t *testing.T) {
	if got, want := FormatBytes([]byte{0x0a, 0xff}, false), "0AFF"; got != want {
		t.Errorf("FormatBytes = %q, want %q", got, want)
	}
	if got, want := FormatBytes([]byte{0x0a, 0xff}, true), "0A FF "; got != want {
		t.Errorf("FormatBytes(space) = %q, want %q", got, want)
	}
}

func TestFormatByte(t *testing.T) {
	if got, want := FormatByte(0x07), "07"; got != want {
		t.Errorf("FormatByte = %q, want %q", got, want)
	}
}

func TestParseBasicProgram(t *testing.T) {
	f, err := Parse("00 01 02\nFF\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []byte{0x00, 0x01, 0x02, 0xFF}
	if len(f.Bytes) != len(want) {
		t.Fatalf("Bytes = % x, want % x", f.Bytes, want)
	}
	for i := range want {
		if f.Bytes[i] != want[i] {
			t.Errorf("Bytes[%d] = %#x, want %#x", i, f.Bytes[i], want[i])
		}
	}
	if f.Sentinel != NoSentinel {
		t.Errorf("Sentinel = %v, want NoSentinel", f.Sentinel)
	}
}

func TestParseStripsComments(t *testing.T) {
	f, err := Parse("00 # a leading comment\n01\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Bytes) != 2 {
		t.Fatalf("Bytes = % x, want 2 bytes", f.Bytes)
	}
}

func TestParseRecognizesSentinelPhrases(t *testing.T) {
	cases := map[string]Sentinel{
		"FF # division by zero":    DivisionByZero,
		"FF # Invalid Opcode here": InvalidOpcode,
		"FF # error expected":      ErrorExpected,
	}
	for src, want := range cases {
		f, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		if f.Sentinel != want {
			t.Errorf("Parse(%q).Sentinel = %v, want %v", src, f.Sentinel, want)
		}
	}
}

func TestParseInvalidHexByteErrors(t *testing.T) {
	if _, err := Parse("ZZ"); err == nil {
		t.Fatalf("expected an error for a non-hex token")
	}
}
