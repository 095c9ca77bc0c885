/*
 * virtcomp - legacy 32-bit opcode handlers
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

import "github.com/rcornwell/virtcomp/flags"

func (c *CPU) opNOP(op byte) { c.PC += 1 }

func (c *CPU) opLoadImm(op byte) {
	reg, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.setGP32(reg, uint32(imm))
	c.PC += size
}

func (c *CPU) opAdd(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := addFlags(uint64(c.getGP32(r1)), uint64(c.getGP32(r2)), 32)
	c.setGP32(r1, uint32(res))
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opSub(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := subFlags(uint64(c.getGP32(r1)), uint64(c.getGP32(r2)), 32)
	c.setGP32(r1, uint32(res))
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opMov(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setGP32(r1, c.getGP32(r2))
	c.PC += size
}

func (c *CPU) opJmp(op byte) {
	addr, _, ok := c.decodeAddress(op)
	if !ok {
		return
	}
	target := uint32(addr)
	if !c.InRange(target) {
		c.fault(FaultInvalidJumpTarget, op, "jump target out of range")
		return
	}
	c.PC = target
}

func (c *CPU) opLoad(op byte) {
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	v, err := c.Mem.GetByte(uint32(addr))
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "LOAD address out of bounds")
		return
	}
	c.setGP32(reg, uint32(v))
	c.PC += size
}

func (c *CPU) opStore(op byte) {
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	if err := c.Mem.PutByte(uint32(addr), byte(c.getGP32(reg))); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "STORE address out of bounds")
		return
	}
	c.PC += size
}

func (c *CPU) opPush(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, c.getGP32(reg)); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "PUSH below memory bounds")
		return
	}
	c.PC += size
}

func (c *CPU) opPop(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	v, err := c.Mem.GetWord(c.SP)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "POP above memory bounds")
		return
	}
	c.setGP32(reg, v)
	c.SP += 4
	c.PC += size
}

func (c *CPU) opCmp(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	_, z, s, cy, ov := subFlags(uint64(c.getGP32(r1)), uint64(c.getGP32(r2)), 32)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) jumpIf(op byte, taken bool) {
	addr, size, ok := c.decodeAddress(op)
	if !ok {
		return
	}
	if !taken {
		c.PC += size
		return
	}
	target := uint32(addr)
	if !c.InRange(target) {
		c.fault(FaultInvalidJumpTarget, op, "jump target out of range")
		return
	}
	c.PC = target
}

func (c *CPU) opJz(op byte)  { c.jumpIf(op, c.Flags.Get(flags.Zero)) }
func (c *CPU) opJnz(op byte) { c.jumpIf(op, !c.Flags.Get(flags.Zero)) }
func (c *CPU) opJs(op byte)  { c.jumpIf(op, c.Flags.Get(flags.Sign)) }
func (c *CPU) opJns(op byte) { c.jumpIf(op, !c.Flags.Get(flags.Sign)) }
func (c *CPU) opJc(op byte)  { c.jumpIf(op, c.Flags.Get(flags.Carry)) }
func (c *CPU) opJnc(op byte) { c.jumpIf(op, !c.Flags.Get(flags.Carry)) }
func (c *CPU) opJo(op byte)  { c.jumpIf(op, c.Flags.Get(flags.Overflow)) }
func (c *CPU) opJno(op byte) { c.jumpIf(op, !c.Flags.Get(flags.Overflow)) }

func (c *CPU) opJg(op byte) {
	s, o := c.Flags.Get(flags.Sign), c.Flags.Get(flags.Overflow)
	c.jumpIf(op, !c.Flags.Get(flags.Zero) && s == o)
}
func (c *CPU) opJl(op byte) {
	s, o := c.Flags.Get(flags.Sign), c.Flags.Get(flags.Overflow)
	c.jumpIf(op, s != o)
}
func (c *CPU) opJge(op byte) {
	s, o := c.Flags.Get(flags.Sign), c.Flags.Get(flags.Overflow)
	c.jumpIf(op, s == o)
}
func (c *CPU) opJle(op byte) {
	s, o := c.Flags.Get(flags.Sign), c.Flags.Get(flags.Overflow)
	c.jumpIf(op, c.Flags.Get(flags.Zero) || s != o)
}

func (c *CPU) opMul(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res := uint64(c.getGP32(r1)) * uint64(c.getGP32(r2))
	c.setGP32(r1, uint32(res))
	c.PC += size
}

func (c *CPU) opDiv(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	divisor := c.getGP32(r2)
	if divisor == 0 {
		c.fault(FaultDivisionByZero, op, "division by zero")
		return
	}
	c.setGP32(r1, c.getGP32(r1)/divisor)
	c.PC += size
}

func (c *CPU) opInc(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	res := c.getGP32(reg) + 1
	c.setGP32(reg, res)
	c.Flags.SetZS(res == 0, res&0x80000000 != 0)
	c.PC += size
}

func (c *CPU) opDec(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	res := c.getGP32(reg) - 1
	c.setGP32(reg, res)
	c.Flags.SetZS(res == 0, res&0x80000000 != 0)
	c.PC += size
}

func (c *CPU) opAnd(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setGP32(r1, c.getGP32(r1)&c.getGP32(r2))
	c.PC += size
}

func (c *CPU) opOr(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setGP32(r1, c.getGP32(r1)|c.getGP32(r2))
	c.PC += size
}

func (c *CPU) opXor(op byte) {
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setGP32(r1, c.getGP32(r1)^c.getGP32(r2))
	c.PC += size
}

func (c *CPU) opNot(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	c.setGP32(reg, ^c.getGP32(reg))
	c.PC += size
}

func (c *CPU) opShl(op byte) {
	reg, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.setGP32(reg, c.getGP32(reg)<<uint(imm))
	c.PC += size
}

func (c *CPU) opShr(op byte) {
	reg, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.setGP32(reg, c.getGP32(reg)>>uint(imm))
	c.PC += size
}

// opCall implements the call protocol of spec.md §4.5: push FP, push the
// return address, set FP = SP, reset the argument offset, jump to target.
func (c *CPU) opCall(op byte) {
	addr, size, ok := c.decodeAddress(op)
	if !ok {
		return
	}
	target := uint32(addr)
	if !c.InRange(target) {
		c.fault(FaultInvalidJumpTarget, op, "call target out of range")
		return
	}
	returnAddr := c.PC + size
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, c.FP); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "CALL frame push below memory bounds")
		return
	}
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, returnAddr); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "CALL frame push below memory bounds")
		return
	}
	c.FP = c.SP
	c.ArgOffset = 8
	c.PC = target
}

// opRet implements spec.md §4.5's three-word frame: (return value, return
// address, old FP) sit at SP, SP+4, SP+8 respectively when RET executes —
// the callee is expected to have pushed its return value onto the frame
// CALL built before falling into RET.
func (c *CPU) opRet(op byte) {
	retVal, err := c.Mem.GetWord(c.SP)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "RET frame read out of bounds")
		return
	}
	retAddr, err := c.Mem.GetWord(c.SP + 4)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "RET frame read out of bounds")
		return
	}
	oldFP, err := c.Mem.GetWord(c.SP + 8)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "RET frame read out of bounds")
		return
	}
	c.SP += 12
	c.FP = oldFP
	if err := c.Mem.PutWord(c.FP, retVal); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "RET return-value write out of bounds")
		return
	}
	if !c.InRange(retAddr) {
		c.fault(FaultInvalidJumpTarget, op, "RET return address out of range")
		return
	}
	c.ArgOffset = 0
	c.PC = retAddr
}

func (c *CPU) opPushArg(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, c.getGP32(reg)); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "PUSH_ARG below memory bounds")
		return
	}
	c.PC += size
}

func (c *CPU) opPopArg(op byte) {
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	v, err := c.Mem.GetWord(c.FP + c.ArgOffset)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "POP_ARG out of bounds")
		return
	}
	c.setGP32(reg, v)
	c.ArgOffset += 4
	c.PC += size
}

func (c *CPU) opPushFlag(op byte) {
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, uint32(c.Flags)); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "PUSH_FLAG below memory bounds")
		return
	}
	c.PC += 1
}

func (c *CPU) opPopFlag(op byte) {
	v, err := c.Mem.GetWord(c.SP)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "POP_FLAG above memory bounds")
		return
	}
	c.Flags = flags.Word(v)
	c.SP += 4
	c.PC += 1
}

func (c *CPU) opLea(op byte) {
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	c.setGP32(reg, uint32(addr))
	c.PC += size
}

// opSwap exchanges a register and a memory byte. The loop is single
// threaded, so sequential read-then-write is already atomic with respect
// to every other observer (spec.md §4.5).
func (c *CPU) opSwap(op byte) {
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	memVal, err := c.Mem.GetByte(uint32(addr))
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "SWAP address out of bounds")
		return
	}
	regVal := byte(c.getGP32(reg))
	if err := c.Mem.PutByte(uint32(addr), regVal); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "SWAP address out of bounds")
		return
	}
	c.setGP32(reg, uint32(memVal))
	c.PC += size
}

func (c *CPU) opDB(op byte) {
	addr, payload, size, ok := c.decodeDefineBytes(op)
	if !ok {
		return
	}
	for i, b := range payload {
		if err := c.Mem.PutByte(uint32(addr)+uint32(i), b); err != nil {
			c.fault(FaultMemoryOutOfBounds, op, "DB payload out of bounds")
			return
		}
	}
	c.PC += size
}

func (c *CPU) opMode32(op byte) {
	c.Mode = Mode32
	c.PC += 1
}

func (c *CPU) opMode64(op byte) {
	c.Mode = Mode64
	c.PC += 1
}

// opModeCmp uses the reg-immediate8 shape with the register field
// reserved: the immediate byte is the mode value compared against the
// CPU's current mode (spec.md §4.5).
func (c *CPU) opModeCmp(op byte) {
	_, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.Flags.Set(flags.Zero, uint8(c.Mode) == imm)
	c.PC += size
}

func (c *CPU) opHalt(op byte) {
	c.Running = false
	c.PC += 1
}
