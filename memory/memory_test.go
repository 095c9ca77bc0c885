package memory

import "testing"

func TestNewClampsSize(t *testing.T) {
	if got := New(10).Size(); got != MinSize {
		t.Errorf("New(10).Size() = %d, want %d", got, MinSize)
	}
	if got := New(MaxSize * 2).Size(); got != MaxSize {
		t.Errorf("New(oversize).Size() = %d, want %d", got, MaxSize)
	}
}

func TestByteRoundTrip(t *testing.T) {
	m := New(1024)
	if err := m.PutByte(10, 0x42); err != nil {
		t.Fatalf("PutByte: %v", err)
	}
	v, err := m.GetByte(10)
	if err != nil {
		t.Fatalf("GetByte: %v", err)
	}
	if v != 0x42 {
		t.Errorf("GetByte(10) = %#x, want 0x42", v)
	}
}

func TestOutOfBounds(t *testing.T) {
	m := New(MinSize)
	if _, err := m.GetByte(m.Size()); err != ErrOutOfBounds {
		t.Errorf("GetByte at size boundary: got %v, want ErrOutOfBounds", err)
	}
	if err := m.PutByte(m.Size(), 1); err != ErrOutOfBounds {
		t.Errorf("PutByte at size boundary: got %v, want ErrOutOfBounds", err)
	}
}

func TestWordRoundTripLittleEndian(t *testing.T) {
	m := New(1024)
	if err := m.PutWord(0, 0x11223344); err != nil {
		t.Fatalf("PutWord: %v", err)
	}
	b0, _ := m.GetByte(0)
	b3, _ := m.GetByte(3)
	if b0 != 0x44 || b3 != 0x11 {
		t.Errorf("PutWord not little-endian: byte0=%#x byte3=%#x", b0, b3)
	}
	v, err := m.GetWord(0)
	if err != nil {
		t.Fatalf("GetWord: %v", err)
	}
	if v != 0x11223344 {
		t.Errorf("GetWord(0) = %#x, want 0x11223344", v)
	}
}

func TestWordOutOfBoundsAtEdge(t *testing.T) {
	m := New(MinSize)
	if _, err := m.GetWord(m.Size() - 3); err != ErrOutOfBounds {
		t.Errorf("GetWord spanning past end: got %v, want ErrOutOfBounds", err)
	}
}

func TestLoadBytes(t *testing.T) {
	m := New(MinSize)
	prog := []byte{1, 2, 3, 4}
	if err := m.LoadBytes(8, prog); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	for i, want := range prog {
		got, _ := m.GetByte(uint32(8 + i))
		if got != want {
			t.Errorf("byte %d = %#x, want %#x", i, got, want)
		}
	}
}

func TestResizeClampsStackPointer(t *testing.T) {
	m := New(4096)
	sp := uint32(4000)
	if err := m.Resize(MinSize, &sp); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if sp != MinSize {
		t.Errorf("sp after shrink = %d, want %d", sp, MinSize)
	}
}

func TestResizeRejectsOutOfRange(t *testing.T) {
	m := New(4096)
	if err := m.Resize(MaxSize+1, nil); err != ErrSizeOutOfRange {
		t.Errorf("Resize(oversize): got %v, want ErrSizeOutOfRange", err)
	}
}

func TestLastAccessedModifiedTracking(t *testing.T) {
	m := New(1024)
	_ = m.PutByte(5, 1)
	_, _ = m.GetByte(9)
	if m.LastModified() != 5 {
		t.Errorf("LastModified() = %d, want 5", m.LastModified())
	}
	if m.LastAccessed() != 9 {
		t.Errorf("LastAccessed() = %d, want 9", m.LastAccessed())
	}
}
