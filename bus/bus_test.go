package bus

import "testing"

type fakeDevice struct {
	name    string
	written []byte
	toRead  []byte
	readPos int
	resets  int
}

func (f *fakeDevice) Name() string { return f.name }

func (f *fakeDevice) ReadByte() byte {
	if f.readPos >= len(f.toRead) {
		return 0
	}
	v := f.toRead[f.readPos]
	f.readPos++
	return v
}

func (f *fakeDevice) WriteByte(v byte) { f.written = append(f.written, v) }
func (f *fakeDevice) Reset()           { f.resets++ }

func TestRegisterAndReadWriteByte(t *testing.T) {
	b := New(nil)
	dev := &fakeDevice{name: "fake", toRead: []byte{0x55}}
	if err := b.Register(1, dev); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := b.ReadByte(1); got != 0x55 {
		t.Errorf("ReadByte(1) = %#x, want 0x55", got)
	}
	b.WriteByte(1, 0xAA)
	if len(dev.written) != 1 || dev.written[0] != 0xAA {
		t.Errorf("WriteByte did not reach device: %v", dev.written)
	}
}

func TestRegisterCollision(t *testing.T) {
	b := New(nil)
	_ = b.Register(1, &fakeDevice{name: "a"})
	if err := b.Register(1, &fakeDevice{name: "b"}); err != ErrPortCollision {
		t.Errorf("Register collision: got %v, want ErrPortCollision", err)
	}
}

func TestReadWriteUnregisteredPort(t *testing.T) {
	b := New(nil)
	if got := b.ReadByte(9); got != 0 {
		t.Errorf("ReadByte(unregistered) = %#x, want 0", got)
	}
	b.WriteByte(9, 1) // must not panic
}

func TestReadWordLittleEndian(t *testing.T) {
	b := New(nil)
	_ = b.Register(5, &fakeDevice{name: "lo", toRead: []byte{0x34}})
	_ = b.Register(6, &fakeDevice{name: "hi", toRead: []byte{0x12}})
	if got := b.ReadWord(5); got != 0x1234 {
		t.Errorf("ReadWord(5) = %#x, want 0x1234", got)
	}
}

func TestReadWordOutOfRange(t *testing.T) {
	b := New(nil)
	if got := b.ReadWord(255); got != 0 {
		t.Errorf("ReadWord(255) = %#x, want 0", got)
	}
}

func TestReadDWordOutOfRange(t *testing.T) {
	b := New(nil)
	if got := b.ReadDWord(253); got != 0 {
		t.Errorf("ReadDWord(253) = %#x, want 0", got)
	}
}

func TestReadStringStopsAtZeroByte(t *testing.T) {
	b := New(nil)
	dev := &fakeDevice{name: "fake", toRead: []byte{'h', 'i', 0, 'X'}}
	_ = b.Register(2, dev)
	got := b.ReadString(2, 255)
	if string(got) != "hi" {
		t.Errorf("ReadString = %q, want %q", got, "hi")
	}
}

func TestReadStringClampsLength(t *testing.T) {
	b := New(nil)
	data := make([]byte, 300)
	for i := range data {
		data[i] = 1 // no zero terminator within range
	}
	dev := &fakeDevice{name: "fake", toRead: data}
	_ = b.Register(2, dev)
	got := b.ReadString(2, 1000)
	if len(got) != maxStringTransfer {
		t.Errorf("ReadString length = %d, want %d", len(got), maxStringTransfer)
	}
}

func TestWriteStringAppendsTrailingZero(t *testing.T) {
	b := New(nil)
	dev := &fakeDevice{name: "fake"}
	_ = b.Register(3, dev)
	b.WriteString(3, []byte("hi"))
	want := []byte{'h', 'i', 0}
	if len(dev.written) != len(want) {
		t.Fatalf("written = %v, want %v", dev.written, want)
	}
	for i := range want {
		if dev.written[i] != want[i] {
			t.Errorf("written[%d] = %#x, want %#x", i, dev.written[i], want[i])
		}
	}
}

func TestUnregisterRemovesDevice(t *testing.T) {
	b := New(nil)
	dev := &fakeDevice{name: "fake", toRead: []byte{1}}
	_ = b.Register(1, dev)
	b.Unregister(1)
	if _, ok := b.Get(1); ok {
		t.Errorf("device should be gone after Unregister")
	}
}

func TestResetAllCallsDeviceReset(t *testing.T) {
	b := New(nil)
	dev := &fakeDevice{name: "fake"}
	_ = b.Register(1, dev)
	b.ResetAll()
	if dev.resets != 1 {
		t.Errorf("device Reset called %d times, want 1", dev.resets)
	}
	if _, ok := b.Get(1); !ok {
		t.Errorf("ResetAll should not unregister devices")
	}
}

func TestResetClearsRegistry(t *testing.T) {
	b := New(nil)
	_ = b.Register(1, &fakeDevice{name: "fake"})
	b.Reset()
	if _, ok := b.Get(1); ok {
		t.Errorf("Reset should clear all registrations")
	}
}
