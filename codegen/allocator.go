/*
 * virtcomp - x86-64 register allocator
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

// allocatableRegs is the physical register pool available to the allocator.
// RSP and RBP are reserved for the generated function's own stack frame.
var allocatableRegs = []Reg{
	RAX, RCX, RDX, RBX, RSI, RDI,
	R8, R9, R10, R11, R12, R13, R14, R15,
}

const spillSlotSize = 8

// RegisterAllocator maps virtcomp's 16 general-purpose virtual registers
// onto the 14 allocatable x86-64 physical registers, spilling to the native
// stack under pressure. It implements spec.md's §4.7 allocator contract.
type RegisterAllocator struct {
	virtToPhys map[byte]Reg
	usedRegs   map[Reg]bool
	dirty      map[byte]bool
	lru        []byte // virtual registers in least-to-most-recently-used order

	spillSlots      map[byte]int32
	nextSpillOffset int32

	spillCount      int
	allocationCount int
}

// NewRegisterAllocator returns an allocator with an empty mapping and no
// spill slots assigned yet.
func NewRegisterAllocator() *RegisterAllocator {
	return &RegisterAllocator{
		virtToPhys: make(map[byte]Reg),
		usedRegs:   make(map[Reg]bool),
		dirty:      make(map[byte]bool),
		spillSlots: make(map[byte]int32),
	}
}

// IsAllocated reports whether virt currently holds a physical register.
func (a *RegisterAllocator) IsAllocated(virt byte) bool {
	_, ok := a.virtToPhys[virt]
	return ok
}

func (a *RegisterAllocator) findFreeRegister() (Reg, bool) {
	for _, r := range allocatableRegs {
		if !a.usedRegs[r] {
			return r, true
		}
	}
	return 0, false
}

func (a *RegisterAllocator) touch(virt byte) {
	for i, v := range a.lru {
		if v == virt {
			a.lru = append(a.lru[:i], a.lru[i+1:]...)
			break
		}
	}
	a.lru = append(a.lru, virt)
}

// AllocateRegister binds virt to a free physical register, evicting the
// least-recently-used virtual register (spilling it first if dirty) when
// the pool is exhausted.
func (a *RegisterAllocator) AllocateRegister(virt byte, e *Encoder) Reg {
	if phys, ok := a.virtToPhys[virt]; ok {
		a.touch(virt)
		return phys
	}

	a.allocationCount++
	phys, ok := a.findFreeRegister()
	if !ok {
		phys = a.evictLeastRecentlyUsed(e)
	}
	a.virtToPhys[virt] = phys
	a.usedRegs[phys] = true
	a.touch(virt)
	return phys
}

// evictLeastRecentlyUsed frees the physical register held by the oldest
// entry in the LRU list, spilling it first if dirty.
func (a *RegisterAllocator) evictLeastRecentlyUsed(e *Encoder) Reg {
	victim := a.lru[0]
	a.lru = a.lru[1:]
	phys := a.virtToPhys[victim]
	if a.dirty[victim] {
		a.spillRegister(victim, e)
	}
	delete(a.virtToPhys, victim)
	delete(a.dirty, victim)
	return phys
}

// GetPhysicalRegister returns virt's current physical register, allocating
// and reloading from its spill slot if it has none.
func (a *RegisterAllocator) GetPhysicalRegister(virt byte, e *Encoder) Reg {
	if phys, ok := a.virtToPhys[virt]; ok {
		a.touch(virt)
		return phys
	}
	phys := a.AllocateRegister(virt, e)
	if _, hasSlot := a.spillSlots[virt]; hasSlot {
		a.reloadRegister(virt, e)
	}
	return phys
}

func (a *RegisterAllocator) allocateSpillSlot(virt byte) int32 {
	if off, ok := a.spillSlots[virt]; ok {
		return off
	}
	a.nextSpillOffset -= spillSlotSize
	a.spillSlots[virt] = a.nextSpillOffset
	return a.nextSpillOffset
}

// spillRegister stores virt's value to its spill slot (allocating one on
// first use) and marks it clean.
func (a *RegisterAllocator) spillRegister(virt byte, e *Encoder) {
	phys, ok := a.virtToPhys[virt]
	if !ok {
		return
	}
	offset := a.allocateSpillSlot(virt)
	e.EmitMovMemReg(RBP, offset, phys)
	a.dirty[virt] = false
	a.spillCount++
}

// SpillRegister is the exported form used by callers outside a mapping
// eviction (e.g. before a native call).
func (a *RegisterAllocator) SpillRegister(virt byte, e *Encoder) { a.spillRegister(virt, e) }

// reloadRegister loads virt's spill slot back into its (already allocated)
// physical register.
func (a *RegisterAllocator) reloadRegister(virt byte, e *Encoder) {
	phys, ok := a.virtToPhys[virt]
	if !ok {
		return
	}
	offset, ok := a.spillSlots[virt]
	if !ok {
		return
	}
	e.EmitMovRegMem(phys, RBP, offset)
}

// SpillAllDirty writes back every dirty virtual register's value; it is
// used before native calls and at function boundaries.
func (a *RegisterAllocator) SpillAllDirty(e *Encoder) {
	for virt, isDirty := range a.dirty {
		if isDirty {
			a.spillRegister(virt, e)
		}
	}
}

// MarkDirty records that virt's physical register has been written and
// needs a writeback before it can be evicted or spilled.
func (a *RegisterAllocator) MarkDirty(virt byte) { a.dirty[virt] = true }

// MarkClean records that virt's physical register matches its spill slot
// (or has none yet), so no writeback is needed if it is evicted.
func (a *RegisterAllocator) MarkClean(virt byte) { a.dirty[virt] = false }

// FreeRegister returns virt's physical register to the pool without a
// writeback; the caller guarantees the value is no longer needed.
func (a *RegisterAllocator) FreeRegister(virt byte) {
	phys, ok := a.virtToPhys[virt]
	if !ok {
		return
	}
	delete(a.virtToPhys, virt)
	delete(a.usedRegs, phys)
	delete(a.dirty, virt)
	for i, v := range a.lru {
		if v == virt {
			a.lru = append(a.lru[:i], a.lru[i+1:]...)
			break
		}
	}
}

// ResetForNewFunction discards the current mapping without emitting any
// code; used only when entering a new function frame whose prologue
// reinitializes every register.
func (a *RegisterAllocator) ResetForNewFunction() {
	a.virtToPhys = make(map[byte]Reg)
	a.usedRegs = make(map[Reg]bool)
	a.dirty = make(map[byte]bool)
	a.lru = nil
}

// SpillCount returns the number of spills performed so far.
func (a *RegisterAllocator) SpillCount() int { return a.spillCount }

// AllocationCount returns the number of allocations performed so far.
func (a *RegisterAllocator) AllocationCount() int { return a.allocationCount }
