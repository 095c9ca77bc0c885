package flags

import "testing"

func TestGetSet(t *testing.T) {
	var w Word
	w.Set(Zero, true)
	if !w.Get(Zero) {
		t.Errorf("Zero should be set")
	}
	if w.Get(Carry) {
		t.Errorf("Carry should not be set")
	}
}

func TestSetArithSetsAllFour(t *testing.T) {
	var w Word
	w.SetArith(true, false, true, false)
	if !w.Get(Zero) || w.Get(Sign) || !w.Get(Carry) || w.Get(Overflow) {
		t.Errorf("SetArith did not set the expected bits: %#x", uint32(w))
	}
}

func TestSetZSPreservesCarryAndOverflow(t *testing.T) {
	var w Word
	w.SetArith(false, false, true, true)
	w.SetZS(true, true)
	if !w.Get(Zero) || !w.Get(Sign) {
		t.Errorf("SetZS should set Zero and Sign")
	}
	if !w.Get(Carry) || !w.Get(Overflow) {
		t.Errorf("SetZS must preserve Carry and Overflow")
	}
}

func TestSetClearsBit(t *testing.T) {
	var w Word
	w.Set(Sign, true)
	w.Set(Sign, false)
	if w.Get(Sign) {
		t.Errorf("Sign should be cleared")
	}
}
