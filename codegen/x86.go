/*
 * virtcomp - x86-64 instruction encoder
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

// Package codegen translates virtcomp bytecode to native x86-64 machine code.
// It is split into the low-level Encoder (REX/ModR/M/immediate emission),
// the RegisterAllocator (virtual-to-physical register mapping with spill
// slots), and the Translator that walks a bytecode program and drives both.
package codegen

// Reg is an x86-64 general-purpose register, numbered the way the ModR/M
// and REX.B/R/X extension bits expect: 0-7 are the legacy registers, 8-15
// need a REX prefix to address.
type Reg uint8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// Label is a bind-once jump target. Jumps emitted before the label is bound
// are recorded in unresolvedJumps and patched at Bind time.
type Label struct {
	position        int
	bound           bool
	unresolvedJumps []int
}

// Encoder accumulates emitted x86-64 machine code into a single byte buffer.
type Encoder struct {
	code []byte
}

// Code returns the bytes emitted so far.
func (e *Encoder) Code() []byte { return e.code }

// Size returns the number of bytes emitted so far.
func (e *Encoder) Size() int { return len(e.code) }

// Clear discards everything emitted so far.
func (e *Encoder) Clear() { e.code = nil }

func (e *Encoder) emit(b byte) { e.code = append(e.code, b) }

func (e *Encoder) emitRex(w, r, x, b bool) {
	rex := byte(0x40)
	if w {
		rex |= 0x08
	}
	if r {
		rex |= 0x04
	}
	if x {
		rex |= 0x02
	}
	if b {
		rex |= 0x01
	}
	e.emit(rex)
}

// emitRexIfNeeded always emits a REX.W prefix (every emitted instruction here
// operates on the 64-bit register file) and sets REX.R/REX.B for registers
// 8-15.
func (e *Encoder) emitRexIfNeeded(regField, rmField Reg) {
	e.emitRex(true, regField >= R8, false, rmField >= R8)
}

func (e *Encoder) emitModRM(mod, reg, rm byte) {
	e.emit((mod << 6) | ((reg & 0x7) << 3) | (rm & 0x7))
}

func lowBits(r Reg) byte { return byte(r) & 0x7 }

// EmitMovRegReg: MOV dst, src (r/m64, r64).
func (e *Encoder) EmitMovRegReg(dst, src Reg) {
	e.emitRexIfNeeded(src, dst)
	e.emit(0x89)
	e.emitModRM(0b11, lowBits(src), lowBits(dst))
}

// EmitMovRegImm64: MOV dst, imm64.
func (e *Encoder) EmitMovRegImm64(dst Reg, imm uint64) {
	e.emitRex(true, false, false, dst >= R8)
	e.emit(0xB8 + lowBits(dst))
	for i := 0; i < 8; i++ {
		e.emit(byte(imm >> (8 * i)))
	}
}

// EmitAddRegReg: ADD dst, src (r/m64, r64).
func (e *Encoder) EmitAddRegReg(dst, src Reg) {
	e.emitRexIfNeeded(src, dst)
	e.emit(0x01)
	e.emitModRM(0b11, lowBits(src), lowBits(dst))
}

// EmitSubRegReg: SUB dst, src (r/m64, r64).
func (e *Encoder) EmitSubRegReg(dst, src Reg) {
	e.emitRexIfNeeded(src, dst)
	e.emit(0x29)
	e.emitModRM(0b11, lowBits(src), lowBits(dst))
}

// EmitCmpRegReg: CMP left, right (r/m64, r64).
func (e *Encoder) EmitCmpRegReg(left, right Reg) {
	e.emitRexIfNeeded(right, left)
	e.emit(0x39)
	e.emitModRM(0b11, lowBits(right), lowBits(left))
}

func (e *Encoder) emitDisp32(offset int32) {
	for i := 0; i < 4; i++ {
		e.emit(byte(offset >> (8 * i)))
	}
}

// EmitMovRegMem: MOV dst, [base+offset] (r64, r/m64).
func (e *Encoder) EmitMovRegMem(dst, base Reg, offset int32) {
	e.emitRexIfNeeded(dst, base)
	e.emit(0x8B)
	e.emitMemModRM(lowBits(dst), base, offset)
}

// EmitMovMemReg: MOV [base+offset], src (r/m64, r64).
func (e *Encoder) EmitMovMemReg(base Reg, offset int32, src Reg) {
	e.emitRexIfNeeded(src, base)
	e.emit(0x89)
	e.emitMemModRM(lowBits(src), base, offset)
}

func (e *Encoder) emitMemModRM(regField byte, base Reg, offset int32) {
	switch {
	case offset == 0 && base != RBP:
		e.emitModRM(0b00, regField, lowBits(base))
	case offset >= -128 && offset <= 127:
		e.emitModRM(0b01, regField, lowBits(base))
		e.emit(byte(offset))
	default:
		e.emitModRM(0b10, regField, lowBits(base))
		e.emitDisp32(offset)
	}
}

// EmitPushReg: PUSH reg.
func (e *Encoder) EmitPushReg(reg Reg) {
	if reg >= R8 {
		e.emitRex(false, false, false, true)
	}
	e.emit(0x50 + lowBits(reg))
}

// EmitPopReg: POP reg.
func (e *Encoder) EmitPopReg(reg Reg) {
	if reg >= R8 {
		e.emitRex(false, false, false, true)
	}
	e.emit(0x58 + lowBits(reg))
}

// EmitJmpRel32: JMP rel32.
func (e *Encoder) EmitJmpRel32(offset int32) {
	e.emit(0xE9)
	e.emitDisp32(offset)
}

// EmitJzRel32: JZ rel32 (two-byte opcode).
func (e *Encoder) EmitJzRel32(offset int32) {
	e.emit(0x0F)
	e.emit(0x84)
	e.emitDisp32(offset)
}

// EmitJnzRel32: JNZ rel32 (two-byte opcode).
func (e *Encoder) EmitJnzRel32(offset int32) {
	e.emit(0x0F)
	e.emit(0x85)
	e.emitDisp32(offset)
}

// EmitCallRel32: CALL rel32.
func (e *Encoder) EmitCallRel32(offset int32) {
	e.emit(0xE8)
	e.emitDisp32(offset)
}

// EmitRet: RET.
func (e *Encoder) EmitRet() { e.emit(0xC3) }

// EmitNop: NOP.
func (e *Encoder) EmitNop() { e.emit(0x90) }

// EmitInt3: INT 3, used as a generated-code breakpoint.
func (e *Encoder) EmitInt3() { e.emit(0xCC) }

// CreateLabel returns an unbound label.
func (e *Encoder) CreateLabel() *Label { return &Label{} }

// BindLabel fixes label's native position to the current end of the code
// buffer and patches every jump emitted against it while unbound.
func (e *Encoder) BindLabel(label *Label) {
	label.position = len(e.code)
	label.bound = true
	for _, jumpPos := range label.unresolvedJumps {
		offset := int32(label.position - (jumpPos + 4))
		for i := 0; i < 4; i++ {
			e.code[jumpPos+i] = byte(offset >> (8 * i))
		}
	}
	label.unresolvedJumps = nil
}

// EmitJmpLabel emits a JMP to label, bound or not; forward references are
// recorded as a pending patch site.
func (e *Encoder) EmitJmpLabel(label *Label) {
	if label.bound {
		e.EmitJmpRel32(int32(label.position - (len(e.code) + 5)))
		return
	}
	label.unresolvedJumps = append(label.unresolvedJumps, len(e.code)+1)
	e.EmitJmpRel32(0)
}

// EmitJzLabel emits a JZ to label, bound or not.
func (e *Encoder) EmitJzLabel(label *Label) {
	if label.bound {
		e.EmitJzRel32(int32(label.position - (len(e.code) + 6)))
		return
	}
	label.unresolvedJumps = append(label.unresolvedJumps, len(e.code)+2)
	e.EmitJzRel32(0)
}

// EmitJnzLabel emits a JNZ to label, bound or not.
func (e *Encoder) EmitJnzLabel(label *Label) {
	if label.bound {
		e.EmitJnzRel32(int32(label.position - (len(e.code) + 6)))
		return
	}
	label.unresolvedJumps = append(label.unresolvedJumps, len(e.code)+2)
	e.EmitJnzRel32(0)
}
