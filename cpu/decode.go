/*
 * virtcomp - instruction decode helpers
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

package cpu

import (
	"github.com/rcornwell/virtcomp/catalogue"
	"github.com/rcornwell/virtcomp/registers"
)

// opcodeHandler is the dispatch table's element type: one per opcode byte,
// holding a bound method value the way S370's cpu.table does.
type opcodeHandler func(c *CPU, op byte)

// fetchOperand reads the byte at PC+offset, bounds-checked against the
// loaded program's length rather than the full memory size (spec.md §4.5,
// "decoding more operand bytes than remain in the program").
func (c *CPU) fetchOperand(offset uint32) (byte, bool) {
	pos := c.PC + offset
	if pos >= c.programLen {
		return 0, false
	}
	b, err := c.Mem.GetByte(pos)
	if err != nil {
		return 0, false
	}
	return b, true
}

func (c *CPU) decodeRegister(op byte) (reg byte, size uint32, ok bool) {
	r, k := c.fetchOperand(1)
	if !k {
		c.fault(FaultOperandOutOfBounds, op, "truncated register operand")
		return 0, 0, false
	}
	return r, 2, true
}

func (c *CPU) decodeAddress(op byte) (addr byte, size uint32, ok bool) {
	a, k := c.fetchOperand(1)
	if !k {
		c.fault(FaultOperandOutOfBounds, op, "truncated address operand")
		return 0, 0, false
	}
	return a, 2, true
}

func (c *CPU) decodeRegReg(op byte) (r1, r2 byte, size uint32, ok bool) {
	a, k1 := c.fetchOperand(1)
	b, k2 := c.fetchOperand(2)
	if !k1 || !k2 {
		c.fault(FaultOperandOutOfBounds, op, "truncated reg-reg operand")
		return 0, 0, 0, false
	}
	return a, b, 3, true
}

func (c *CPU) decodeRegImm8(op byte) (reg, imm byte, size uint32, ok bool) {
	r, k1 := c.fetchOperand(1)
	i, k2 := c.fetchOperand(2)
	if !k1 || !k2 {
		c.fault(FaultOperandOutOfBounds, op, "truncated reg-immediate8 operand")
		return 0, 0, 0, false
	}
	return r, i, 3, true
}

func (c *CPU) decodeRegAddress(op byte) (reg, addr byte, size uint32, ok bool) {
	r, k1 := c.fetchOperand(1)
	a, k2 := c.fetchOperand(2)
	if !k1 || !k2 {
		c.fault(FaultOperandOutOfBounds, op, "truncated reg-address operand")
		return 0, 0, 0, false
	}
	return r, a, 3, true
}

func (c *CPU) decodeRegPort(op byte) (reg, port byte, size uint32, ok bool) {
	r, k1 := c.fetchOperand(1)
	p, k2 := c.fetchOperand(2)
	if !k1 || !k2 {
		c.fault(FaultOperandOutOfBounds, op, "truncated reg-port operand")
		return 0, 0, 0, false
	}
	return r, p, 3, true
}

func (c *CPU) decodeRegImm64(op byte) (reg byte, imm uint64, size uint32, ok bool) {
	r, k := c.fetchOperand(1)
	if !k {
		c.fault(FaultOperandOutOfBounds, op, "truncated reg-immediate64 operand")
		return 0, 0, 0, false
	}
	var v uint64
	for i := 0; i < 8; i++ {
		b, kk := c.fetchOperand(uint32(2 + i))
		if !kk {
			c.fault(FaultOperandOutOfBounds, op, "truncated reg-immediate64 operand")
			return 0, 0, 0, false
		}
		v |= uint64(b) << uint(8*i)
	}
	return r, v, 10, true
}

func (c *CPU) decodeDefineBytes(op byte) (addr byte, payload []byte, size uint32, ok bool) {
	a, k1 := c.fetchOperand(1)
	n, k2 := c.fetchOperand(2)
	if !k1 || !k2 {
		c.fault(FaultOperandOutOfBounds, op, "truncated define-bytes header")
		return 0, nil, 0, false
	}
	buf := make([]byte, n)
	for i := 0; i < int(n); i++ {
		b, kk := c.fetchOperand(uint32(3 + i))
		if !kk {
			c.fault(FaultOperandOutOfBounds, op, "truncated define-bytes payload")
			return 0, nil, 0, false
		}
		buf[i] = b
	}
	return a, buf, 3 + uint32(n), true
}

// getGP32 / setGP32 access the low 32 bits of a general-purpose register
// cell — the legacy 8-register family's view (spec.md §3, "legacy 32-bit
// projection"). Any of the 16 GP slots may be named, not only R0-R7; the
// projection preserves the other's high bits.
func (c *CPU) getGP32(reg byte) uint32 { return c.Regs.Get32(registers.Index(reg)) }
func (c *CPU) setGP32(reg byte, v uint32) { c.Regs.Set32(registers.Index(reg), v) }

// getReg / setReg address the full 134-entry file, for the 64-bit and
// extended-register families.
func (c *CPU) getReg(reg byte) uint64 { return c.Regs.Get(registers.Index(reg)) }
func (c *CPU) setReg(reg byte, v uint64) { c.Regs.Set(registers.Index(reg), v) }

// checkMode64 faults InvalidOpcode and returns false if the CPU is not in
// 64-bit mode, for opcodes whose documentation is mode-conditional
// (spec.md §3, "CPU Mode").
func (c *CPU) checkMode64(op byte) bool {
	if c.Mode != Mode64 {
		c.fault(FaultInvalidOpcode, op, "opcode requires 64-bit mode")
		return false
	}
	return true
}

// buildTable wires every catalogue entry to its handler method. Unassigned
// opcodes default to opInvalid, mirroring S370's cpu.opUnk filler.
func (c *CPU) buildTable() {
	for i := range c.table {
		c.table[i] = (*CPU).opInvalid
	}
	assign := func(op byte, h opcodeHandler) { c.table[op] = h }

	assign(catalogue.NOP, (*CPU).opNOP)
	assign(catalogue.LOAD_IMM, (*CPU).opLoadImm)
	assign(catalogue.ADD, (*CPU).opAdd)
	assign(catalogue.SUB, (*CPU).opSub)
	assign(catalogue.MOV, (*CPU).opMov)
	assign(catalogue.JMP, (*CPU).opJmp)
	assign(catalogue.LOAD, (*CPU).opLoad)
	assign(catalogue.STORE, (*CPU).opStore)
	assign(catalogue.PUSH, (*CPU).opPush)
	assign(catalogue.POP, (*CPU).opPop)
	assign(catalogue.CMP, (*CPU).opCmp)
	assign(catalogue.JZ, (*CPU).opJz)
	assign(catalogue.JNZ, (*CPU).opJnz)
	assign(catalogue.JS, (*CPU).opJs)
	assign(catalogue.JNS, (*CPU).opJns)
	assign(catalogue.JC, (*CPU).opJc)
	assign(catalogue.MUL, (*CPU).opMul)
	assign(catalogue.DIV, (*CPU).opDiv)
	assign(catalogue.INC, (*CPU).opInc)
	assign(catalogue.DEC, (*CPU).opDec)
	assign(catalogue.AND, (*CPU).opAnd)
	assign(catalogue.OR, (*CPU).opOr)
	assign(catalogue.XOR, (*CPU).opXor)
	assign(catalogue.NOT, (*CPU).opNot)
	assign(catalogue.SHL, (*CPU).opShl)
	assign(catalogue.SHR, (*CPU).opShr)
	assign(catalogue.CALL, (*CPU).opCall)
	assign(catalogue.RET, (*CPU).opRet)
	assign(catalogue.PUSH_ARG, (*CPU).opPushArg)
	assign(catalogue.POP_ARG, (*CPU).opPopArg)
	assign(catalogue.PUSH_FLAG, (*CPU).opPushFlag)
	assign(catalogue.POP_FLAG, (*CPU).opPopFlag)
	assign(catalogue.LEA, (*CPU).opLea)
	assign(catalogue.SWAP, (*CPU).opSwap)
	assign(catalogue.JNC, (*CPU).opJnc)
	assign(catalogue.JO, (*CPU).opJo)
	assign(catalogue.JNO, (*CPU).opJno)
	assign(catalogue.JG, (*CPU).opJg)
	assign(catalogue.JL, (*CPU).opJl)
	assign(catalogue.JGE, (*CPU).opJge)
	assign(catalogue.JLE, (*CPU).opJle)
	assign(catalogue.IN, (*CPU).opIn)
	assign(catalogue.OUT, (*CPU).opOut)
	assign(catalogue.INB, (*CPU).opIn)
	assign(catalogue.OUTB, (*CPU).opOut)
	assign(catalogue.INW, (*CPU).opInw)
	assign(catalogue.OUTW, (*CPU).opOutw)
	assign(catalogue.INL, (*CPU).opInl)
	assign(catalogue.OUTL, (*CPU).opOutl)
	assign(catalogue.INSTR, (*CPU).opInstr)
	assign(catalogue.OUTSTR, (*CPU).opOutstr)
	assign(catalogue.DB, (*CPU).opDB)

	assign(catalogue.ADD64, (*CPU).opAdd64)
	assign(catalogue.SUB64, (*CPU).opSub64)
	assign(catalogue.MOV64, (*CPU).opMov64)
	assign(catalogue.LOAD_IMM64, (*CPU).opLoadImm64)
	assign(catalogue.MUL64, (*CPU).opMul64)
	assign(catalogue.DIV64, (*CPU).opDiv64)
	assign(catalogue.AND64, (*CPU).opAnd64)
	assign(catalogue.OR64, (*CPU).opOr64)
	assign(catalogue.XOR64, (*CPU).opXor64)
	assign(catalogue.SHL64, (*CPU).opShl64)
	assign(catalogue.SHR64, (*CPU).opShr64)
	assign(catalogue.CMP64, (*CPU).opCmp64)
	assign(catalogue.NOT64, (*CPU).opNot64)
	assign(catalogue.INC64, (*CPU).opInc64)
	assign(catalogue.DEC64, (*CPU).opDec64)

	assign(catalogue.MOVEX, (*CPU).opMovex)
	assign(catalogue.ADDEX, (*CPU).opAddex)
	assign(catalogue.SUBEX, (*CPU).opSubex)
	assign(catalogue.MULEX, (*CPU).opMulex)
	assign(catalogue.DIVEX, (*CPU).opDivex)
	assign(catalogue.CMPEX, (*CPU).opCmpex)
	assign(catalogue.LOADEX, (*CPU).opLoadex)
	assign(catalogue.STOREX, (*CPU).opStoreex)
	assign(catalogue.PUSHEX, (*CPU).opPushex)
	assign(catalogue.POPEX, (*CPU).opPopex)

	assign(catalogue.MODE32, (*CPU).opMode32)
	assign(catalogue.MODE64, (*CPU).opMode64)
	assign(catalogue.MODECMP, (*CPU).opModeCmp)
	assign(catalogue.HALT, (*CPU).opHalt)
}

// opInvalid handles any opcode byte the catalogue does not assign
// (spec.md §7, InvalidOpcode).
func (c *CPU) opInvalid(op byte) {
	c.fault(FaultInvalidOpcode, op, "unassigned opcode")
}
