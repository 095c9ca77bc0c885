package codegen

import "testing"

func TestAllocateRegisterReturnsSameRegOnReuse(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	r1 := a.AllocateRegister(0, &e)
	r2 := a.AllocateRegister(0, &e)
	if r1 != r2 {
		t.Errorf("re-allocating an already-bound virtual register changed physical register: %v != %v", r1, r2)
	}
}

func TestAllocateRegisterDistinctVirtualsGetDistinctPhysicals(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	r1 := a.AllocateRegister(0, &e)
	r2 := a.AllocateRegister(1, &e)
	if r1 == r2 {
		t.Errorf("distinct virtual registers were allocated the same physical register %v", r1)
	}
}

func TestAllocateRegisterEvictsLeastRecentlyUsedUnderPressure(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	for i := byte(0); i < byte(len(allocatableRegs)); i++ {
		a.AllocateRegister(i, &e)
	}
	if !a.IsAllocated(0) {
		t.Fatalf("virtual register 0 should still be allocated before eviction pressure")
	}
	// one more allocation exhausts the pool and must evict virt 0 (oldest).
	a.AllocateRegister(byte(len(allocatableRegs)), &e)
	if a.IsAllocated(0) {
		t.Errorf("virtual register 0 should have been evicted as least-recently-used")
	}
}

func TestSpillRegisterEmitsWritebackAndMarksClean(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	a.AllocateRegister(0, &e)
	a.MarkDirty(0)
	before := e.Size()
	a.SpillRegister(0, &e)
	if e.Size() <= before {
		t.Errorf("SpillRegister on a dirty register should emit a store instruction")
	}
	if a.dirty[0] {
		t.Errorf("SpillRegister should mark the virtual register clean")
	}
}

func TestEvictionSpillsOnlyDirtyRegisters(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	for i := byte(0); i < byte(len(allocatableRegs)); i++ {
		a.AllocateRegister(i, &e)
	}
	// virt 0 is clean (never marked dirty), so eviction should not emit a spill.
	before := e.Size()
	a.AllocateRegister(byte(len(allocatableRegs)), &e)
	if e.Size() != before {
		t.Errorf("evicting a clean register should not emit any code, emitted %d bytes", e.Size()-before)
	}
}

func TestFreeRegisterReleasesPhysicalSlot(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	phys := a.AllocateRegister(0, &e)
	a.FreeRegister(0)
	if a.IsAllocated(0) {
		t.Errorf("virtual register 0 should not be allocated after FreeRegister")
	}
	if a.usedRegs[phys] {
		t.Errorf("physical register %v should be free after FreeRegister", phys)
	}
}

func TestResetForNewFunctionClearsMapping(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	a.AllocateRegister(0, &e)
	a.ResetForNewFunction()
	if a.IsAllocated(0) {
		t.Errorf("ResetForNewFunction should clear the virtual-to-physical mapping")
	}
}

func TestSpillCountAndAllocationCount(t *testing.T) {
	a := NewRegisterAllocator()
	var e Encoder
	a.AllocateRegister(0, &e)
	a.MarkDirty(0)
	a.SpillRegister(0, &e)
	if a.SpillCount() != 1 {
		t.Errorf("SpillCount() = %d, want 1", a.SpillCount())
	}
	if a.AllocationCount() != 1 {
		t.Errorf("AllocationCount() = %d, want 1", a.AllocationCount())
	}
}
