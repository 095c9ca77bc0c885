package disasm

import (
	"testing"

	"github.com/rcornwell/virtcomp/assemble"
	"github.com/rcornwell/virtcomp/catalogue"
)

func TestDisassembleNullaryAndRegImmediate8Shapes(t *testing.T) {
	prog := []byte{catalogue.NOP, catalogue.LOAD_IMM, 0, 5, catalogue.HALT}
	stmts, err := Disassemble(prog)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("len(stmts) = %d, want 3", len(stmts))
	}
	if stmts[0].Mnemonic != "NOP" || len(stmts[0].Operands) != 0 {
		t.Errorf("stmts[0] = %+v, want bare NOP", stmts[0])
	}
	if stmts[1].Mnemonic != "LOAD_IMM" || stmts[1].Operands[0] != 0 || stmts[1].Operands[1] != 5 {
		t.Errorf("stmts[1] = %+v, want LOAD_IMM 0, 5", stmts[1])
	}
	if stmts[2].Address != 4 {
		t.Errorf("stmts[2].Address = %d, want 4", stmts[2].Address)
	}
}

func TestDisassembleRegImmediate64(t *testing.T) {
	prog := []byte{
		catalogue.LOAD_IMM64, 1,
		0x2a, 0, 0, 0, 0, 0, 0, 0,
	}
	stmts, err := Disassemble(prog)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	if stmts[0].Operands[1] != 0x2a {
		t.Errorf("immediate operand = %d, want 42", stmts[0].Operands[1])
	}
}

func TestDisassembleDefineBytes(t *testing.T) {
	prog := []byte{catalogue.DB, 0, 3, 'a', 'b', 'c'}
	stmts, err := Disassemble(prog)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(stmts[0].Operands) != 5 {
		t.Fatalf("Operands = %v, want address, count, and 3 payload bytes", stmts[0].Operands)
	}
	if stmts[0].Operands[1] != 3 {
		t.Errorf("count operand = %d, want 3", stmts[0].Operands[1])
	}
}

func TestDisassembleUnassignedOpcodeErrors(t *testing.T) {
	prog := []byte{0x41}
	if _, err := Disassemble(prog); err == nil {
		t.Fatalf("expected an error for an unassigned opcode")
	}
}

func TestDisassembleTruncatedOperandErrors(t *testing.T) {
	prog := []byte{catalogue.ADD, 0}
	if _, err := Disassemble(prog); err == nil {
		t.Fatalf("expected an error for a truncated operand")
	}
}

func TestStatementStringFormatsOperands(t *testing.T) {
	s := Statement{Mnemonic: "ADD", Operands: []uint64{0, 1}}
	if got, want := s.String(), "ADD 0, 1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	bare := Statement{Mnemonic: "HALT"}
	if got, want := bare.String(), "HALT"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	const src = "LOAD_IMM RAX, 7\nADD RAX, RCX\nHALT\n"
	prog, err := assemble.AssembleSource(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	stmts, err := Disassemble(prog)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	wantMnemonics := []string{"LOAD_IMM", "ADD", "HALT"}
	if len(stmts) != len(wantMnemonics) {
		t.Fatalf("len(stmts) = %d, want %d", len(stmts), len(wantMnemonics))
	}
	for i, want := range wantMnemonics {
		if stmts[i].Mnemonic != want {
			t.Errorf("stmts[%d].Mnemonic = %q, want %q", i, stmts[i].Mnemonic, want)
		}
	}
}
