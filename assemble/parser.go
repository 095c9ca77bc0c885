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

import "fmt"

// Parser is a recursive-descent parser over a fixed token stream.
type Parser struct {
	toks   []Token
	pos    int
	Errors []string
}

// NewParser constructs a Parser over toks, normally the output of Lexer.Tokenize.
func NewParser(toks []Token) *Parser {
	return &Parser{toks: toks}
}

// Parse consumes the whole token stream and returns the resulting program.
func (p *Parser) Parse() *Program {
	prog := &Program{}
	p.skipNewlines()
	for !p.atEnd() {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, *stmt)
		}
		p.skipNewlines()
	}
	return prog
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(offset int) Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() { p.pos++ }

func (p *Parser) atEnd() bool { return p.cur().Kind == TokEOF }

func (p *Parser) match(k TokenKind) bool {
	if p.cur().Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == TokNewline {
		p.advance()
	}
}

func (p *Parser) parseStatement() *Stmt {
	tok := p.cur()
	switch tok.Kind {
	case TokMnemonic:
		p.advance()
		return p.parseInstruction(tok)

	case TokDirective:
		p.advance()
		return p.parseDirective(tok)

	case TokIdentifier:
		if p.peek(1).Kind == TokColon {
			p.advance()
			p.advance()
			return &Stmt{Kind: StmtLabel, Name: tok.Text, Line: tok.Line, Column: tok.Column}
		}
		p.addError("unexpected identifier", tok)
		p.advance()
		return nil

	case TokNewline, TokEOF:
		p.advance()
		return nil

	default:
		p.addError("unexpected token", tok)
		p.advance()
		return nil
	}
}

func (p *Parser) parseInstruction(tok Token) *Stmt {
	stmt := &Stmt{Kind: StmtInstruction, Name: tok.Text, Line: tok.Line, Column: tok.Column}
	if p.cur().Kind != TokNewline && p.cur().Kind != TokEOF {
		for {
			expr := p.parseExpr()
			if expr != nil {
				stmt.Operands = append(stmt.Operands, *expr)
			}
			if !p.match(TokComma) {
				break
			}
		}
	}
	return stmt
}

func (p *Parser) parseDirective(tok Token) *Stmt {
	stmt := &Stmt{Kind: StmtDirective, Name: tok.Text, Line: tok.Line, Column: tok.Column}
	if p.cur().Kind != TokNewline && p.cur().Kind != TokEOF {
		for {
			expr := p.parseExpr()
			if expr != nil {
				stmt.Operands = append(stmt.Operands, *expr)
			}
			if !p.match(TokComma) {
				break
			}
		}
	}
	return stmt
}

func (p *Parser) parseExpr() *Expr {
	if p.cur().Kind == TokLBracket {
		return p.parseMemoryRef()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *Expr {
	tok := p.cur()
	switch tok.Kind {
	case TokRegister:
		p.advance()
		return &Expr{Kind: ExprRegister, Reg: registerNames[tok.Text], Line: tok.Line, Column: tok.Column}
	case TokNumber:
		p.advance()
		return &Expr{Kind: ExprImmediate, Imm: tok.Number, Line: tok.Line, Column: tok.Column}
	case TokIdentifier:
		p.advance()
		return &Expr{Kind: ExprIdentifier, Name: tok.Text, Line: tok.Line, Column: tok.Column}
	case TokString:
		p.advance()
		return &Expr{Kind: ExprString, Str: tok.Str, Line: tok.Line, Column: tok.Column}
	default:
		p.addError("expected expression", tok)
		p.advance()
		return nil
	}
}

func (p *Parser) parseMemoryRef() *Expr {
	open := p.cur()
	if !p.match(TokLBracket) {
		p.addError("expected '['", open)
		return nil
	}
	base := p.parsePrimary()
	if base == nil {
		return nil
	}
	var offset *Expr
	if p.cur().Kind == TokPlus || p.cur().Kind == TokMinus {
		negative := p.cur().Kind == TokMinus
		p.advance()
		offset = p.parsePrimary()
		if offset != nil && negative && offset.Kind == ExprImmediate {
			offset.Imm = -offset.Imm
		}
	}
	if !p.match(TokRBracket) {
		p.addError("expected ']'", p.cur())
		return nil
	}
	return &Expr{Kind: ExprMemoryRef, Base: base, Offset: offset, Line: open.Line, Column: open.Column}
}

func (p *Parser) addError(msg string, tok Token) {
	p.Errors = append(p.Errors, fmt.Sprintf("line %d, column %d: %s (got %q)", tok.Line, tok.Column, msg, tok.Text))
}
