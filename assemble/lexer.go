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
	"strings"

	"github.com/rcornwell/virtcomp/catalogue"
	"github.com/rcornwell/virtcomp/registers"
)

var directiveNames = map[string]bool{
	".data": true, ".text": true, ".org": true, ".equ": true,
	".include": true, ".db": true, ".dw": true, ".dd": true,
	".string": true, ".end": true,
}

// registerNames maps assembler register syntax to a register-file index.
// It is built once from registers.InfoTable's names plus the legacy R0-R7
// aliases.
var registerNames = func() map[string]byte {
	m := make(map[string]byte, 40)
	for i, info := range registers.InfoTable {
		if info.Name != "" {
			m[info.Name] = byte(i)
		}
	}
	m["R0"] = byte(registers.R0)
	m["R1"] = byte(registers.R1)
	m["R2"] = byte(registers.R2)
	m["R3"] = byte(registers.R3)
	m["R4"] = byte(registers.R4)
	m["R5"] = byte(registers.R5)
	m["R6"] = byte(registers.R6)
	m["R7"] = byte(registers.R7)
	return m
}()

// Lexer turns assembly source text into a token stream.
type Lexer struct {
	src    string
	pos    int
	line   int
	column int
	Errors []string
}

// NewLexer constructs a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

// Tokenize runs the lexer to completion and returns every token, terminated
// by a TokEOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for l.pos < len(l.src) {
		l.skipSpaces()
		if l.pos >= len(l.src) {
			break
		}
		c := l.src[l.pos]

		if c == ';' || c == '#' {
			l.skipComment()
			continue
		}
		if c == '\n' {
			toks = append(toks, Token{Kind: TokNewline, Text: "\\n", Line: l.line, Column: l.column})
			l.advance()
			l.line++
			l.column = 1
			continue
		}
		if c == '.' {
			toks = append(toks, l.lexDirective())
			continue
		}
		if c == '"' || c == '\'' {
			toks = append(toks, l.lexString())
			continue
		}
		if isDigit(c) {
			toks = append(toks, l.lexNumber())
			continue
		}
		if isIdentStart(c) {
			toks = append(toks, l.lexIdentifier())
			continue
		}

		line, col := l.line, l.column
		switch c {
		case ',':
			toks = append(toks, Token{Kind: TokComma, Text: ",", Line: line, Column: col})
		case ':':
			toks = append(toks, Token{Kind: TokColon, Text: ":", Line: line, Column: col})
		case '[':
			toks = append(toks, Token{Kind: TokLBracket, Text: "[", Line: line, Column: col})
		case ']':
			toks = append(toks, Token{Kind: TokRBracket, Text: "]", Line: line, Column: col})
		case '+':
			toks = append(toks, Token{Kind: TokPlus, Text: "+", Line: line, Column: col})
		case '-':
			toks = append(toks, Token{Kind: TokMinus, Text: "-", Line: line, Column: col})
		default:
			l.addError(fmt.Sprintf("unexpected character %q", c))
			toks = append(toks, Token{Kind: TokInvalid, Text: string(c), Line: line, Column: col})
		}
		l.advance()
	}
	toks = append(toks, Token{Kind: TokEOF, Line: l.line, Column: l.column})
	return toks
}

func (l *Lexer) current() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek(offset int) byte {
	p := l.pos + offset
	if p >= len(l.src) {
		return 0
	}
	return l.src[p]
}

func (l *Lexer) advance() {
	if l.pos < len(l.src) {
		l.pos++
		l.column++
	}
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.src) && isSpace(l.current()) && l.current() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.current() != '\n' {
		l.advance()
	}
}

func (l *Lexer) lexIdentifier() Token {
	line, col := l.line, l.column
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.current()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	upper := strings.ToUpper(text)

	if _, ok := catalogue.ByMnemonic[upper]; ok {
		return Token{Kind: TokMnemonic, Text: upper, Line: line, Column: col}
	}
	if _, ok := registerNames[upper]; ok {
		return Token{Kind: TokRegister, Text: upper, Line: line, Column: col}
	}
	return Token{Kind: TokIdentifier, Text: text, Line: line, Column: col}
}

func (l *Lexer) lexNumber() Token {
	line, col := l.line, l.column
	start := l.pos
	base := 10
	if l.current() == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		base = 16
		l.advance()
		l.advance()
	} else if l.current() == '0' && (l.peek(1) == 'b' || l.peek(1) == 'B') {
		base = 2
		l.advance()
		l.advance()
	}
	digitsStart := l.pos
	var value int64
	for l.pos < len(l.src) {
		c := l.current()
		var digit int64 = -1
		switch {
		case base == 16 && isHexDigit(c):
			digit = hexValue(c)
		case base == 2 && (c == '0' || c == '1'):
			digit = int64(c - '0')
		case base == 10 && isDigit(c):
			digit = int64(c - '0')
		}
		if digit < 0 {
			break
		}
		value = value*int64(base) + digit
		l.advance()
	}
	_ = digitsStart
	return Token{Kind: TokNumber, Text: l.src[start:l.pos], Number: value, Line: line, Column: col}
}

func (l *Lexer) lexString() Token {
	line, col := l.line, l.column
	quote := l.current()
	var text, value strings.Builder
	text.WriteByte(quote)
	l.advance()
	for l.pos < len(l.src) && l.current() != quote {
		c := l.current()
		if c == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			escaped := l.current()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '0':
				value.WriteByte(0)
			default:
				value.WriteByte(escaped)
			}
			text.WriteByte('\\')
			text.WriteByte(escaped)
		} else if c == '\n' {
			l.addError("unterminated string literal")
			break
		} else {
			value.WriteByte(c)
			text.WriteByte(c)
		}
		l.advance()
	}
	if l.pos < len(l.src) && l.current() == quote {
		text.WriteByte(quote)
		l.advance()
	} else {
		l.addError("unterminated string literal")
	}
	return Token{Kind: TokString, Text: text.String(), Str: value.String(), Line: line, Column: col}
}

func (l *Lexer) lexDirective() Token {
	line, col := l.line, l.column
	start := l.pos
	l.advance() // '.'
	for l.pos < len(l.src) && isIdentPart(l.current()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	lower := strings.ToLower(text)
	if directiveNames[lower] {
		return Token{Kind: TokDirective, Text: lower, Line: line, Column: col}
	}
	l.addError("unknown directive: " + text)
	return Token{Kind: TokInvalid, Text: text, Line: line, Column: col}
}

func (l *Lexer) addError(msg string) {
	l.Errors = append(l.Errors, fmt.Sprintf("line %d, column %d: %s", l.line, l.column, msg))
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func hexValue(c byte) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10
	default:
		return int64(c-'A') + 10
	}
}
