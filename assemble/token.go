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

// Package assemble is the two-pass textual assembler: a lexer and recursive
// descent parser build an AST, then an emitter walks it twice, once to size
// every statement and once to encode bytes, patching forward label
// references after the symbol table is complete.
package assemble

// TokenKind names one lexical class.
type TokenKind uint8

const (
	TokIdentifier TokenKind = iota
	TokNumber
	TokString
	TokRegister
	TokMnemonic
	TokDirective
	TokComma
	TokColon
	TokLBracket
	TokRBracket
	TokPlus
	TokMinus
	TokNewline
	TokEOF
	TokInvalid
)

// Token is one lexed unit: its kind, source text, and for numeric/string
// tokens a decoded value, plus the line/column it started at for
// diagnostics.
type Token struct {
	Kind   TokenKind
	Text   string
	Number int64
	Str    string
	Line   int
	Column int
}
