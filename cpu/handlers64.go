/*
 * virtcomp - 64-bit and extended-register opcode handlers
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

// The 0x50-0x5E and 0x60-0x69 families are gated by checkMode64: every
// handler here is a no-op fault if the CPU is not in Mode64 (spec.md §3).

func (c *CPU) opAdd64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := addFlags(c.getReg(r1), c.getReg(r2), 64)
	c.setReg(r1, res)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opSub64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := subFlags(c.getReg(r1), c.getReg(r2), 64)
	c.setReg(r1, res)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opMov64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r2))
	c.PC += size
}

func (c *CPU) opLoadImm64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, imm, size, ok := c.decodeRegImm64(op)
	if !ok {
		return
	}
	c.setReg(reg, imm)
	c.PC += size
}

func (c *CPU) opMul64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r1)*c.getReg(r2))
	c.PC += size
}

func (c *CPU) opDiv64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	divisor := c.getReg(r2)
	if divisor == 0 {
		c.fault(FaultDivisionByZero, op, "division by zero")
		return
	}
	c.setReg(r1, c.getReg(r1)/divisor)
	c.PC += size
}

func (c *CPU) opAnd64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r1)&c.getReg(r2))
	c.PC += size
}

func (c *CPU) opOr64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r1)|c.getReg(r2))
	c.PC += size
}

func (c *CPU) opXor64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r1)^c.getReg(r2))
	c.PC += size
}

func (c *CPU) opShl64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.setReg(reg, c.getReg(reg)<<uint(imm))
	c.PC += size
}

func (c *CPU) opShr64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, imm, size, ok := c.decodeRegImm8(op)
	if !ok {
		return
	}
	c.setReg(reg, c.getReg(reg)>>uint(imm))
	c.PC += size
}

func (c *CPU) opCmp64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	_, z, s, cy, ov := subFlags(c.getReg(r1), c.getReg(r2), 64)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opNot64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	c.setReg(reg, ^c.getReg(reg))
	c.PC += size
}

func (c *CPU) opInc64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	res := c.getReg(reg) + 1
	c.setReg(reg, res)
	c.Flags.SetZS(res == 0, res&(1<<63) != 0)
	c.PC += size
}

func (c *CPU) opDec64(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	res := c.getReg(reg) - 1
	c.setReg(reg, res)
	c.Flags.SetZS(res == 0, res&(1<<63) != 0)
	c.PC += size
}

// The extended-register family (0x60-0x69) addresses the full register
// file (segment/control/debug/SIMD/FPU cells) rather than only the 16
// general-purpose slots, using the same RegReg/RegAddress/Register shapes
// as their legacy counterparts (spec.md §3, "extended-register family").

func (c *CPU) opMovex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r2))
	c.PC += size
}

func (c *CPU) opAddex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := addFlags(c.getReg(r1), c.getReg(r2), 64)
	c.setReg(r1, res)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opSubex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	res, z, s, cy, ov := subFlags(c.getReg(r1), c.getReg(r2), 64)
	c.setReg(r1, res)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opMulex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	c.setReg(r1, c.getReg(r1)*c.getReg(r2))
	c.PC += size
}

func (c *CPU) opDivex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	divisor := c.getReg(r2)
	if divisor == 0 {
		c.fault(FaultDivisionByZero, op, "division by zero")
		return
	}
	c.setReg(r1, c.getReg(r1)/divisor)
	c.PC += size
}

func (c *CPU) opCmpex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	r1, r2, size, ok := c.decodeRegReg(op)
	if !ok {
		return
	}
	_, z, s, cy, ov := subFlags(c.getReg(r1), c.getReg(r2), 64)
	c.Flags.SetArith(z, s, cy, ov)
	c.PC += size
}

func (c *CPU) opLoadex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	v, err := c.Mem.GetWord(uint32(addr))
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "LOADEX address out of bounds")
		return
	}
	c.setReg(reg, uint64(v))
	c.PC += size
}

func (c *CPU) opStoreex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, addr, size, ok := c.decodeRegAddress(op)
	if !ok {
		return
	}
	if err := c.Mem.PutWord(uint32(addr), uint32(c.getReg(reg))); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "STOREX address out of bounds")
		return
	}
	c.PC += size
}

// opPushex / opPopex retain the legacy 4-byte stack slot width: spec.md
// only documents a 4-byte PUSH/POP frame, and introducing an 8-byte slot
// for this family alone would split the stack layout CALL/RET depend on.
func (c *CPU) opPushex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	c.SP -= 4
	if err := c.Mem.PutWord(c.SP, uint32(c.getReg(reg))); err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "PUSHEX below memory bounds")
		return
	}
	c.PC += size
}

func (c *CPU) opPopex(op byte) {
	if !c.checkMode64(op) {
		return
	}
	reg, size, ok := c.decodeRegister(op)
	if !ok {
		return
	}
	v, err := c.Mem.GetWord(c.SP)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, op, "POPEX above memory bounds")
		return
	}
	c.setReg(reg, uint64(v))
	c.SP += 4
	c.PC += size
}
