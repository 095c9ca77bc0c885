/*
 * virtcomp - bytecode disassembler
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package disasm turns a byte program back into a statement list using the
// same catalogue the assembler encodes from, so that round-tripping a
// program through Assemble then Disassemble reproduces semantically
// equivalent statements (spec.md §8, "Assembler round-trip").
package disasm

import (
	"fmt"
	"strings"

	"github.com/rcornwell/virtcomp/catalogue"
)

// Statement is one disassembled instruction: its address, mnemonic, and
// decoded operand values. Labels are not recovered, matching spec.md §8's
// round-trip guarantee ("labels need not be recovered").
type Statement struct {
	Address  uint32
	Mnemonic string
	Operands []uint64
	Raw      []byte
}

// Disassemble decodes program into a Statement per instruction. Any
// unassigned opcode byte stops decoding and is reported as an error rather
// than silently treated as NOP, since a disassembler that ever does the
// wrong thing silently is worse than one that stops.
func Disassemble(program []byte) ([]Statement, error) {
	var out []Statement
	pos := uint32(0)
	for pos < uint32(len(program)) {
		op := program[pos]
		entry, ok := catalogue.Lookup(op)
		if !ok {
			return out, fmt.Errorf("disasm: unassigned opcode %#x at %#x", op, pos)
		}

		stmt := Statement{Address: pos, Mnemonic: entry.Mnemonic}
		size, err := decodeOperands(program, pos, entry, &stmt)
		if err != nil {
			return out, err
		}
		stmt.Raw = append([]byte(nil), program[pos:pos+size]...)
		out = append(out, stmt)
		pos += size
	}
	return out, nil
}

func need(program []byte, pos uint32, n uint32) bool {
	return uint64(pos)+uint64(n) <= uint64(len(program))
}

func decodeOperands(program []byte, pos uint32, entry catalogue.Entry, stmt *Statement) (uint32, error) {
	switch entry.Shape {
	case catalogue.Nullary:
		return 1, nil

	case catalogue.Register, catalogue.Address:
		if !need(program, pos, 2) {
			return 0, truncated(stmt.Mnemonic, pos)
		}
		stmt.Operands = []uint64{uint64(program[pos+1])}
		return 2, nil

	case catalogue.RegReg, catalogue.RegImmediate8, catalogue.RegAddress, catalogue.RegPort:
		if !need(program, pos, 3) {
			return 0, truncated(stmt.Mnemonic, pos)
		}
		stmt.Operands = []uint64{uint64(program[pos+1]), uint64(program[pos+2])}
		return 3, nil

	case catalogue.RegImmediate64:
		if !need(program, pos, 10) {
			return 0, truncated(stmt.Mnemonic, pos)
		}
		var imm uint64
		for i := 0; i < 8; i++ {
			imm |= uint64(program[int(pos)+2+i]) << (8 * i)
		}
		stmt.Operands = []uint64{uint64(program[pos+1]), imm}
		return 10, nil

	case catalogue.DefineBytes:
		if !need(program, pos, 3) {
			return 0, truncated(stmt.Mnemonic, pos)
		}
		count := program[pos+2]
		if !need(program, pos, 3+uint32(count)) {
			return 0, truncated(stmt.Mnemonic, pos)
		}
		stmt.Operands = make([]uint64, 0, 2+int(count))
		stmt.Operands = append(stmt.Operands, uint64(program[pos+1]), uint64(count))
		for i := 0; i < int(count); i++ {
			stmt.Operands = append(stmt.Operands, uint64(program[int(pos)+3+i]))
		}
		return uint32(entry.Size(count)), nil

	default:
		return 1, nil
	}
}

func truncated(mnemonic string, pos uint32) error {
	return fmt.Errorf("disasm: truncated operand for %s at %#x", mnemonic, pos)
}

// String renders a Statement in assembler surface syntax (spec.md §6):
// mnemonic followed by comma-separated operand values. Register operands
// and immediates are not distinguished by name here since the catalogue's
// Shape, not a register table, drives decoding; higher-level formatting
// that recovers register names belongs to a front end that has one.
func (s Statement) String() string {
	if len(s.Operands) == 0 {
		return s.Mnemonic
	}
	parts := make([]string, len(s.Operands))
	for i, v := range s.Operands {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return s.Mnemonic + " " + strings.Join(parts, ", ")
}
