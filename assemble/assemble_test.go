package assemble

import (
	"testing"

	"github.com/rcornwell/virtcomp/catalogue"
)

func TestAssembleSourceSimpleProgram(t *testing.T) {
	src := "LOAD_IMM RAX, 5\nHALT\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	want := []byte{catalogue.LOAD_IMM, 0, 5, catalogue.HALT}
	if len(prog) != len(want) {
		t.Fatalf("program = % x, want % x", prog, want)
	}
	for i := range want {
		if prog[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, prog[i], want[i])
		}
	}
}

func TestAssembleSourceForwardLabelReference(t *testing.T) {
	src := "JMP done\nNOP\ndone:\nHALT\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	// JMP(0x05) done(2 bytes) ; NOP(1 byte) ; done: at address 3 ; HALT
	wantTarget := byte(3)
	if prog[1] != wantTarget {
		t.Errorf("forward reference resolved to %d, want %d", prog[1], wantTarget)
	}
}

func TestAssembleSourceUndefinedSymbolErrors(t *testing.T) {
	src := "JMP nowhere\nHALT\n"
	if _, err := AssembleSource(src); err == nil {
		t.Fatalf("expected an error for an undefined symbol")
	}
}

func TestAssembleSourceUnknownMnemonicErrors(t *testing.T) {
	src := "BOGUS RAX, RCX\n"
	if _, err := AssembleSource(src); err == nil {
		t.Fatalf("expected an error for an unknown mnemonic")
	}
}

func TestAssembleSourceEquDirective(t *testing.T) {
	src := ".equ COUNT, 9\nLOAD_IMM RAX, COUNT\nHALT\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	if prog[2] != 9 {
		t.Errorf("COUNT substitution = %d, want 9", prog[2])
	}
}

func TestAssembleSourceDBDirective(t *testing.T) {
	src := ".db 1, 2, 3\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	want := []byte{1, 2, 3}
	if len(prog) != len(want) {
		t.Fatalf("program = %v, want %v", prog, want)
	}
}

func TestAssembleSourceOrgPadsForward(t *testing.T) {
	src := "NOP\n.org 4\nHALT\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	if len(prog) != 5 {
		t.Fatalf("program length = %d, want 5", len(prog))
	}
	if prog[4] != catalogue.HALT {
		t.Errorf("prog[4] = %#x, want HALT", prog[4])
	}
}

func TestAssembleSourceOrgBackwardsErrors(t *testing.T) {
	src := ".org 10\nNOP\n.org 0\nHALT\n"
	if _, err := AssembleSource(src); err == nil {
		t.Fatalf("expected an error for .org moving backwards")
	}
}

func TestAssembleSourceDuplicateLabelErrors(t *testing.T) {
	src := "a:\nNOP\na:\nHALT\n"
	if _, err := AssembleSource(src); err == nil {
		t.Fatalf("expected an error for a duplicate label")
	}
}

func TestAssembleSourceShiftRejectsForwardReference(t *testing.T) {
	src := "SHL RAX, later\nlater:\n.equ later, 2\n"
	if _, err := AssembleSource(src); err == nil {
		t.Fatalf("expected an error: shift amount must be a literal, not a label")
	}
}

func TestAssembleSourceRegRegInstruction(t *testing.T) {
	src := "ADD RAX, RCX\n"
	prog, err := AssembleSource(src)
	if err != nil {
		t.Fatalf("AssembleSource: %v", err)
	}
	want := []byte{catalogue.ADD, 0, 1}
	if len(prog) != len(want) {
		t.Fatalf("program = % x, want % x", prog, want)
	}
	for i := range want {
		if prog[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, prog[i], want[i])
		}
	}
}

func TestLexerTokenizesMnemonicsAndRegisters(t *testing.T) {
	toks := NewLexer("ADD RAX, RCX").Tokenize()
	if toks[0].Kind != TokMnemonic || toks[0].Text != "ADD" {
		t.Errorf("first token = %+v, want mnemonic ADD", toks[0])
	}
	if toks[1].Kind != TokRegister {
		t.Errorf("second token = %+v, want register", toks[1])
	}
}

func TestLexerRejectsUnknownDirective(t *testing.T) {
	lex := NewLexer(".bogus")
	lex.Tokenize()
	if len(lex.Errors) == 0 {
		t.Errorf("expected a lexer error for an unknown directive")
	}
}
