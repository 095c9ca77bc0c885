/*
 * virtcomp - bytecode to x86-64 translator
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

package codegen

import (
	"fmt"

	"github.com/rcornwell/virtcomp/catalogue"
)

// patchSite is a pending branch whose native displacement depends on a
// bytecode address not yet translated.
type patchSite struct {
	bytecodeTarget uint32
	label          *Label
}

// Translator walks a virtcomp bytecode program and emits the equivalent
// x86-64 machine code, spec.md §4.7. It covers the operand forms the
// encoder exposes (reg/reg, reg/imm64, reg/mem, push/pop, the conditional
// and unconditional branch family, call/ret) directly; every opcode outside
// that set is translated to a breakpoint trap rather than silently skipped,
// since this repository's register allocator is the subject under test, not
// a production JIT.
type Translator struct {
	enc   Encoder
	alloc *RegisterAllocator

	labels  map[uint32]*Label // bytecode address -> native label
	patches []patchSite
}

// NewTranslator returns a Translator ready to compile one program.
func NewTranslator() *Translator {
	return &Translator{alloc: NewRegisterAllocator(), labels: make(map[uint32]*Label)}
}

// CompileProgram translates the full bytecode program and returns the
// generated native code.
func (t *Translator) CompileProgram(program []byte) ([]byte, error) {
	t.enc.Clear()
	t.alloc.ResetForNewFunction()
	t.labels = make(map[uint32]*Label)
	t.patches = nil

	t.scanJumpTargets(program)

	pos := uint32(0)
	for pos < uint32(len(program)) {
		if label, ok := t.labels[pos]; ok {
			t.enc.BindLabel(label)
		}
		op := program[pos]
		size, err := t.translateInstruction(program, pos, op)
		if err != nil {
			return nil, err
		}
		pos += size
	}

	for _, p := range t.patches {
		label, ok := t.labels[p.bytecodeTarget]
		if !ok || !label.bound {
			return nil, fmt.Errorf("codegen: unresolved branch target %#x", p.bytecodeTarget)
		}
	}

	return t.enc.Code(), nil
}

// scanJumpTargets pre-creates a label for every address a branch or call in
// the program refers to, so translateInstruction can always find one.
func (t *Translator) scanJumpTargets(program []byte) {
	pos := uint32(0)
	for pos < uint32(len(program)) {
		op := program[pos]
		entry, ok := catalogue.Lookup(op)
		if !ok {
			pos++
			continue
		}
		if entry.Shape == catalogue.Address && int(pos)+1 < len(program) {
			target := uint32(program[pos+1])
			if _, exists := t.labels[target]; !exists {
				t.labels[target] = t.enc.CreateLabel()
			}
		}
		size := uint32(entry.FixedSize)
		if entry.Shape == catalogue.DefineBytes && int(pos)+2 < len(program) {
			size = uint32(entry.Size(program[pos+2]))
		}
		if size == 0 {
			size = 1
		}
		pos += size
	}
}

func (t *Translator) getLabel(target uint32) *Label {
	label, ok := t.labels[target]
	if !ok {
		label = t.enc.CreateLabel()
		t.labels[target] = label
	}
	return label
}

func regOf(virtByte byte, t *Translator) Reg {
	return t.alloc.GetPhysicalRegister(virtByte, &t.enc)
}

// translateInstruction emits native code for one bytecode instruction at
// pos and returns its encoded size in the source program.
func (t *Translator) translateInstruction(program []byte, pos uint32, op byte) (uint32, error) {
	entry, ok := catalogue.Lookup(op)
	if !ok {
		return 0, fmt.Errorf("codegen: unassigned opcode %#x at %#x", op, pos)
	}

	switch op {
	case catalogue.NOP:
		t.enc.EmitNop()

	case catalogue.HALT:
		t.alloc.SpillAllDirty(&t.enc)
		t.enc.EmitRet()

	case catalogue.LOAD_IMM:
		reg, imm := program[pos+1], program[pos+2]
		phys := t.alloc.AllocateRegister(reg, &t.enc)
		t.enc.EmitMovRegImm64(phys, uint64(imm))
		t.alloc.MarkDirty(reg)

	case catalogue.LOAD_IMM64:
		reg := program[pos+1]
		var imm uint64
		for i := 0; i < 8; i++ {
			imm |= uint64(program[int(pos)+2+i]) << (8 * i)
		}
		phys := t.alloc.AllocateRegister(reg, &t.enc)
		t.enc.EmitMovRegImm64(phys, imm)
		t.alloc.MarkDirty(reg)

	case catalogue.MOV, catalogue.MOV64, catalogue.MOVEX:
		dst, src := program[pos+1], program[pos+2]
		dstPhys := regOf(dst, t)
		srcPhys := regOf(src, t)
		t.enc.EmitMovRegReg(dstPhys, srcPhys)
		t.alloc.MarkDirty(dst)

	case catalogue.ADD, catalogue.ADD64, catalogue.ADDEX:
		dst, src := program[pos+1], program[pos+2]
		dstPhys := regOf(dst, t)
		srcPhys := regOf(src, t)
		t.enc.EmitAddRegReg(dstPhys, srcPhys)
		t.alloc.MarkDirty(dst)

	case catalogue.SUB, catalogue.SUB64, catalogue.SUBEX:
		dst, src := program[pos+1], program[pos+2]
		dstPhys := regOf(dst, t)
		srcPhys := regOf(src, t)
		t.enc.EmitSubRegReg(dstPhys, srcPhys)
		t.alloc.MarkDirty(dst)

	case catalogue.CMP, catalogue.CMP64, catalogue.CMPEX:
		left, right := program[pos+1], program[pos+2]
		t.enc.EmitCmpRegReg(regOf(left, t), regOf(right, t))

	case catalogue.LOAD, catalogue.LOADEX:
		dst, addrReg := program[pos+1], program[pos+2]
		dstPhys := t.alloc.AllocateRegister(dst, &t.enc)
		basePhys := regOf(addrReg, t)
		t.enc.EmitMovRegMem(dstPhys, basePhys, 0)
		t.alloc.MarkDirty(dst)

	case catalogue.STORE, catalogue.STOREX:
		addrReg, src := program[pos+1], program[pos+2]
		basePhys := regOf(addrReg, t)
		srcPhys := regOf(src, t)
		t.enc.EmitMovMemReg(basePhys, 0, srcPhys)

	case catalogue.PUSH, catalogue.PUSHEX:
		reg := program[pos+1]
		t.enc.EmitPushReg(regOf(reg, t))

	case catalogue.POP, catalogue.POPEX:
		reg := program[pos+1]
		phys := t.alloc.AllocateRegister(reg, &t.enc)
		t.enc.EmitPopReg(phys)
		t.alloc.MarkDirty(reg)

	case catalogue.JMP:
		target := uint32(program[pos+1])
		t.enc.EmitJmpLabel(t.getLabel(target))
		t.patches = append(t.patches, patchSite{bytecodeTarget: target, label: t.getLabel(target)})

	case catalogue.JZ:
		target := uint32(program[pos+1])
		t.enc.EmitJzLabel(t.getLabel(target))
		t.patches = append(t.patches, patchSite{bytecodeTarget: target, label: t.getLabel(target)})

	case catalogue.JNZ:
		target := uint32(program[pos+1])
		t.enc.EmitJnzLabel(t.getLabel(target))
		t.patches = append(t.patches, patchSite{bytecodeTarget: target, label: t.getLabel(target)})

	case catalogue.CALL:
		t.alloc.SpillAllDirty(&t.enc)
		target := uint32(program[pos+1])
		label := t.getLabel(target)
		if label.bound {
			t.enc.EmitCallRel32(int32(label.position - (t.enc.Size() + 5)))
		} else {
			label.unresolvedJumps = append(label.unresolvedJumps, t.enc.Size()+1)
			t.enc.EmitCallRel32(0)
		}
		t.patches = append(t.patches, patchSite{bytecodeTarget: target, label: label})

	case catalogue.RET:
		t.alloc.SpillAllDirty(&t.enc)
		t.enc.EmitRet()

	default:
		// Everything else (port I/O, DIV/MUL, flag stack, shifts, the
		// DB pseudo-instruction) is outside the translator's covered
		// operand forms; trap rather than pretend to lower it.
		t.enc.EmitInt3()
	}

	size := uint32(entry.FixedSize)
	if entry.Shape == catalogue.DefineBytes {
		size = uint32(entry.Size(program[pos+2]))
	}
	if size == 0 {
		size = 1
	}
	return size, nil
}

// SpillCount returns the number of spills performed while compiling the
// most recent program.
func (t *Translator) SpillCount() int { return t.alloc.SpillCount() }

// AllocationCount returns the number of allocations performed while
// compiling the most recent program.
func (t *Translator) AllocationCount() int { return t.alloc.AllocationCount() }
