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

// ExprKind names one operand expression shape.
type ExprKind uint8

const (
	ExprRegister ExprKind = iota
	ExprImmediate
	ExprIdentifier
	ExprString
	ExprMemoryRef
)

// Expr is one operand: a register name, an immediate number, a symbol
// reference, a string literal, or a [base+offset] memory reference.
type Expr struct {
	Kind   ExprKind
	Reg    byte   // valid when Kind == ExprRegister
	Imm    int64  // valid when Kind == ExprImmediate
	Name   string // valid when Kind == ExprIdentifier
	Str    string // valid when Kind == ExprString
	Base   *Expr  // valid when Kind == ExprMemoryRef
	Offset *Expr  // optional, valid when Kind == ExprMemoryRef
	Line   int
	Column int
}

// StmtKind names one statement shape.
type StmtKind uint8

const (
	StmtLabel StmtKind = iota
	StmtInstruction
	StmtDirective
)

// Stmt is one parsed line: a label definition, an instruction with its
// operand expressions, or an assembler directive with its arguments.
type Stmt struct {
	Kind     StmtKind
	Name     string // label name, or mnemonic/directive name
	Operands []Expr
	Line     int
	Column   int
}

// Program is the root AST node: the ordered statement sequence parsed from
// one source file.
type Program struct {
	Statements []Stmt
}
