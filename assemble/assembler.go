/*
	   virtcomp Assembler

		Copyright (c) 2024, Richard Cornwell

		Permission is hereby granted, free of charge, to any person obtaining a
		copy of this software and associated documentation files (the "Software"),
		to deal in the Software without restriction, including without limitation
		the rights to use, copy, modify, merge, publish, distribute, sublicense,
		and/or sell copies of the Software, and to permit persons to whom the
		Software is furnished to do so, subject to the following conditions:

		The above copyright notice and this permission notice shall be included in
		all copies or substantial portions of the Software.

		THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
		IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
		FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
		RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
		IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
		CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package assemble

import (
	"fmt"

	"github.com/rcornwell/virtcomp/catalogue"
)

// Symbol is one entry in the assembler's symbol table: a label's resolved
// address, or an .equ constant's literal value.
type Symbol struct {
	Name    string
	Value   uint32
	Defined bool
}

type forwardRef struct {
	address uint32
	symbol  string
	size    int
}

// Assembler holds the state threaded through the two passes: the symbol
// table, the pending forward-reference patch list, and the bytecode buffer
// being built (spec.md's "two-pass textual assembler").
type Assembler struct {
	symbols     map[string]Symbol
	forwardRefs []forwardRef
	bytecode    []byte
	address     uint32
	Errors      []string
}

// NewAssembler constructs an empty Assembler, ready for one Assemble call.
func NewAssembler() *Assembler {
	return &Assembler{symbols: make(map[string]Symbol)}
}

// Assemble runs both passes over prog and returns the encoded bytecode, or
// an error describing the first problem found (spec.md: undefined symbol,
// operand shape mismatch, or .org going backwards).
func (a *Assembler) Assemble(prog *Program) ([]byte, error) {
	a.symbols = make(map[string]Symbol)
	a.forwardRefs = nil
	a.bytecode = nil
	a.address = 0
	a.Errors = nil

	a.firstPass(prog)
	if len(a.Errors) > 0 {
		return nil, a.firstError()
	}

	a.secondPass(prog)
	if len(a.Errors) > 0 {
		return nil, a.firstError()
	}

	a.resolveForwardRefs()
	if len(a.Errors) > 0 {
		return nil, a.firstError()
	}

	return a.bytecode, nil
}

func (a *Assembler) firstError() error {
	if len(a.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%s", a.Errors[0])
}

// firstPass walks the program once to assign every label's address, without
// emitting any bytes; .equ constants are also resolved here since they
// never depend on layout.
func (a *Assembler) firstPass(prog *Program) {
	a.address = 0
	for _, stmt := range prog.Statements {
		switch stmt.Kind {
		case StmtLabel:
			a.defineSymbol(stmt.Name, a.address, stmt)

		case StmtInstruction:
			size, err := a.instructionSize(stmt)
			if err != "" {
				a.addError(stmt, err)
				continue
			}
			a.address += size

		case StmtDirective:
			a.sizeDirective(stmt)
		}
	}
}

func (a *Assembler) defineSymbol(name string, value uint32, stmt Stmt) {
	if existing, ok := a.symbols[name]; ok && existing.Defined {
		a.addError(stmt, "label '"+name+"' already defined")
		return
	}
	a.symbols[name] = Symbol{Name: name, Value: value, Defined: true}
}

func (a *Assembler) instructionSize(stmt Stmt) (uint32, string) {
	op, ok := catalogue.ByMnemonic[stmt.Name]
	if !ok {
		return 0, "unknown instruction: " + stmt.Name
	}
	entry, ok := catalogue.Lookup(op)
	if !ok {
		return 0, "unknown instruction: " + stmt.Name
	}
	if entry.Shape == catalogue.DefineBytes {
		// operand[0] is the address, the rest are payload bytes.
		n := 0
		if len(stmt.Operands) > 0 {
			n = len(stmt.Operands) - 1
		}
		return uint32(3 + n), ""
	}
	return uint32(entry.FixedSize), ""
}

func (a *Assembler) sizeDirective(stmt Stmt) {
	switch stmt.Name {
	case ".org":
		if len(stmt.Operands) != 1 || stmt.Operands[0].Kind != ExprImmediate {
			a.addError(stmt, ".org requires one immediate argument")
			return
		}
		a.address = uint32(stmt.Operands[0].Imm)

	case ".equ":
		if len(stmt.Operands) != 2 || stmt.Operands[0].Kind != ExprIdentifier || stmt.Operands[1].Kind != ExprImmediate {
			a.addError(stmt, ".equ requires a name and an immediate value")
			return
		}
		a.symbols[stmt.Operands[0].Name] = Symbol{Name: stmt.Operands[0].Name, Value: uint32(stmt.Operands[1].Imm), Defined: true}

	case ".db":
		a.address += uint32(len(stmt.Operands))

	case ".dw":
		a.address += uint32(len(stmt.Operands)) * 2

	case ".dd":
		a.address += uint32(len(stmt.Operands)) * 4

	case ".string":
		for _, arg := range stmt.Operands {
			if arg.Kind == ExprString {
				a.address += uint32(len(arg.Str)) + 1
			}
		}
	}
}

// secondPass walks the program again, now encoding every instruction and
// directive to bytes; forward label references are recorded rather than
// resolved immediately.
func (a *Assembler) secondPass(prog *Program) {
	a.bytecode = nil
	a.address = 0
	for _, stmt := range prog.Statements {
		switch stmt.Kind {
		case StmtLabel:
			// no code

		case StmtInstruction:
			a.encodeInstruction(stmt)

		case StmtDirective:
			a.encodeDirective(stmt)
		}
	}
}

func (a *Assembler) encodeInstruction(stmt Stmt) {
	op, ok := catalogue.ByMnemonic[stmt.Name]
	if !ok {
		a.addError(stmt, "unknown instruction: "+stmt.Name)
		return
	}
	entry, ok := catalogue.Lookup(op)
	if !ok {
		a.addError(stmt, "unknown instruction: "+stmt.Name)
		return
	}
	a.emitByte(op)

	switch entry.Shape {
	case catalogue.Nullary:
		a.expectOperands(stmt, 0)

	case catalogue.Register:
		if !a.expectOperands(stmt, 1) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])

	case catalogue.Address:
		if !a.expectOperands(stmt, 1) {
			return
		}
		a.emitAddressOperand(stmt, stmt.Operands[0], 1)

	case catalogue.RegReg:
		if !a.expectOperands(stmt, 2) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])
		a.emitRegister(stmt, stmt.Operands[1])

	case catalogue.RegImmediate8:
		if !a.expectOperands(stmt, 2) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])
		if entry.Class == catalogue.ClassShift {
			a.emitLiteralByte(stmt, stmt.Operands[1], "shift amount must be an immediate value")
		} else {
			a.emitAddressOperand(stmt, stmt.Operands[1], 1)
		}

	case catalogue.RegAddress:
		if !a.expectOperands(stmt, 2) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])
		a.emitAddressOperand(stmt, stmt.Operands[1], 1)

	case catalogue.RegPort:
		if !a.expectOperands(stmt, 2) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])
		a.emitLiteralByte(stmt, stmt.Operands[1], "port number must be an immediate value")

	case catalogue.RegImmediate64:
		if !a.expectOperands(stmt, 2) {
			return
		}
		a.emitRegister(stmt, stmt.Operands[0])
		a.emitAddressOperand(stmt, stmt.Operands[1], 8)

	case catalogue.DefineBytes:
		if len(stmt.Operands) < 1 {
			a.addError(stmt, "DB requires an address and zero or more byte values")
			return
		}
		a.emitAddressOperand(stmt, stmt.Operands[0], 1)
		a.emitByte(byte(len(stmt.Operands) - 1))
		for _, operand := range stmt.Operands[1:] {
			a.emitLiteralByte(stmt, operand, "DB payload values must be immediate")
		}
	}
}

func (a *Assembler) encodeDirective(stmt Stmt) {
	switch stmt.Name {
	case ".org":
		target := uint32(stmt.Operands[0].Imm)
		if uint32(len(a.bytecode)) > target {
			a.addError(stmt, ".org cannot move the address backwards")
			return
		}
		for uint32(len(a.bytecode)) < target {
			a.bytecode = append(a.bytecode, 0)
		}
		a.address = target

	case ".equ":
		// Resolved in the first pass; nothing to emit.

	case ".db":
		for _, arg := range stmt.Operands {
			a.emitLiteralByte(stmt, arg, "define-byte values must be immediate")
		}

	case ".dw":
		for _, arg := range stmt.Operands {
			a.emitAddressOperand(stmt, arg, 2)
		}

	case ".dd":
		for _, arg := range stmt.Operands {
			a.emitAddressOperand(stmt, arg, 4)
		}

	case ".string":
		for _, arg := range stmt.Operands {
			if arg.Kind != ExprString {
				a.addError(stmt, ".string requires a string literal")
				continue
			}
			for i := 0; i < len(arg.Str); i++ {
				a.emitByte(arg.Str[i])
			}
			a.emitByte(0)
		}
	}
}

func (a *Assembler) expectOperands(stmt Stmt, n int) bool {
	if len(stmt.Operands) != n {
		a.addError(stmt, fmt.Sprintf("%s requires %d operand(s)", stmt.Name, n))
		return false
	}
	return true
}

func (a *Assembler) emitRegister(stmt Stmt, e Expr) {
	if e.Kind != ExprRegister {
		a.addError(stmt, "operand must be a register")
		return
	}
	a.emitByte(e.Reg)
}

// emitLiteralByte emits a single immediate byte; it rejects any symbolic
// operand, whether or not the symbol is defined (used for shift amounts,
// port numbers, and define-byte payloads).
func (a *Assembler) emitLiteralByte(stmt Stmt, e Expr, errMsg string) {
	value, isSymbol, _ := a.evaluate(e)
	if isSymbol || e.Kind == ExprIdentifier {
		a.addError(stmt, errMsg)
		return
	}
	a.emitByte(byte(value))
}

// emitAddressOperand emits size bytes, little-endian, for an operand that
// may be a resolved value or a forward label reference.
func (a *Assembler) emitAddressOperand(stmt Stmt, e Expr, size int) {
	value, isSymbol, symbol := a.evaluate(e)
	if isSymbol {
		a.emitForwardRef(symbol, size)
		return
	}
	for i := 0; i < size; i++ {
		a.emitByte(byte(value >> (8 * i)))
	}
	_ = stmt
}

// evaluate resolves an expression to a numeric value where possible. An
// unresolved identifier reports isSymbol=true so the caller can patch it
// once the symbol table is complete.
func (a *Assembler) evaluate(e Expr) (value int64, isSymbol bool, symbol string) {
	switch e.Kind {
	case ExprImmediate:
		return e.Imm, false, ""
	case ExprRegister:
		return int64(e.Reg), false, ""
	case ExprIdentifier:
		if sym, ok := a.symbols[e.Name]; ok && sym.Defined {
			return int64(sym.Value), false, ""
		}
		return 0, true, e.Name
	case ExprMemoryRef:
		return a.evaluate(*e.Base)
	default:
		return 0, false, ""
	}
}

func (a *Assembler) emitByte(b byte) {
	a.bytecode = append(a.bytecode, b)
	a.address++
}

func (a *Assembler) emitForwardRef(symbol string, size int) {
	a.forwardRefs = append(a.forwardRefs, forwardRef{address: uint32(len(a.bytecode)), symbol: symbol, size: size})
	for i := 0; i < size; i++ {
		a.emitByte(0)
	}
}

func (a *Assembler) resolveForwardRefs() {
	for _, ref := range a.forwardRefs {
		sym, ok := a.symbols[ref.symbol]
		if !ok || !sym.Defined {
			a.Errors = append(a.Errors, "undefined symbol: "+ref.symbol)
			continue
		}
		if int(ref.address)+ref.size > len(a.bytecode) {
			a.Errors = append(a.Errors, "forward reference out of bounds: "+ref.symbol)
			continue
		}
		for i := 0; i < ref.size; i++ {
			a.bytecode[int(ref.address)+i] = byte(sym.Value >> (8 * i))
		}
	}
}

func (a *Assembler) addError(stmt Stmt, msg string) {
	a.Errors = append(a.Errors, fmt.Sprintf("line %d, column %d: %s", stmt.Line, stmt.Column, msg))
}

// AssembleSource is the convenience entry point: lex, parse, and assemble
// one source string in a single call.
func AssembleSource(src string) ([]byte, error) {
	lex := NewLexer(src)
	toks := lex.Tokenize()
	if len(lex.Errors) > 0 {
		return nil, fmt.Errorf("%s", lex.Errors[0])
	}
	parser := NewParser(toks)
	prog := parser.Parse()
	if len(parser.Errors) > 0 {
		return nil, fmt.Errorf("%s", parser.Errors[0])
	}
	return NewAssembler().Assemble(prog)
}
