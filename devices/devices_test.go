package devices

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConsoleFeedAndReadByte(t *testing.T) {
	c := NewConsole(nil)
	c.Feed([]byte{1, 2, 3})
	if got := c.ReadByte(); got != 1 {
		t.Errorf("ReadByte = %d, want 1", got)
	}
	if got := c.ReadByte(); got != 2 {
		t.Errorf("ReadByte = %d, want 2", got)
	}
}

func TestConsoleReadByteEmpty(t *testing.T) {
	c := NewConsole(nil)
	if got := c.ReadByte(); got != 0 {
		t.Errorf("ReadByte on empty console = %d, want 0", got)
	}
}

func TestConsoleReset(t *testing.T) {
	c := NewConsole(nil)
	c.Feed([]byte{9})
	c.Reset()
	if got := c.ReadByte(); got != 0 {
		t.Errorf("ReadByte after Reset = %d, want 0", got)
	}
}

func TestCounterReadWrite(t *testing.T) {
	c := NewCounter()
	c.WriteByte(5)
	c.WriteByte(10)
	if got := c.ReadByte(); got != 15 {
		t.Errorf("Counter value = %d, want 15", got)
	}
}

func TestCounterReset(t *testing.T) {
	c := NewCounter()
	c.Set(200)
	c.Reset()
	if got := c.Value(); got != 0 {
		t.Errorf("Counter value after Reset = %d, want 0", got)
	}
}

func TestFileRejectsUnsafePath(t *testing.T) {
	if _, err := NewFile("../escape", nil); err != ErrUnsafePath {
		t.Errorf("NewFile(unsafe path): got %v, want ErrUnsafePath", err)
	}
	if _, err := NewFile("", nil); err != ErrUnsafePath {
		t.Errorf("NewFile(empty path): got %v, want ErrUnsafePath", err)
	}
}

func TestFileReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.bin")

	f, err := NewFile(path, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	f.WriteByte('h')
	f.WriteByte('i')
	f.Seek(0)
	if got := f.ReadByte(); got != 'h' {
		t.Errorf("ReadByte = %q, want 'h'", got)
	}

	reopened, err := NewFile(path, nil)
	if err != nil {
		t.Fatalf("reopen NewFile: %v", err)
	}
	if reopened.Size() != 2 {
		t.Errorf("reopened Size() = %d, want 2", reopened.Size())
	}
}

func TestFileRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(path, make([]byte, maxFileSize+1), 0o644); err != nil {
		t.Fatalf("setup WriteFile: %v", err)
	}
	if _, err := NewFile(path, nil); err != ErrOversizedFile {
		t.Errorf("NewFile(oversized): got %v, want ErrOversizedFile", err)
	}
}

func TestRAMDiskWriteReadRoundTrip(t *testing.T) {
	disk := NewRAMDisk(64, nil)
	data, ctrl := disk.DataPort(), disk.CtrlPort()

	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(5) // select address 5

	ctrl.WriteByte(CmdWrite)
	data.WriteByte(0x77)

	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(5)
	ctrl.WriteByte(CmdRead)
	if got := data.ReadByte(); got != 0x77 {
		t.Errorf("RAM disk read back = %#x, want 0x77", got)
	}
}

func TestRAMDiskSetAddrHigh(t *testing.T) {
	disk := NewRAMDisk(512, nil)
	data, ctrl := disk.DataPort(), disk.CtrlPort()

	ctrl.WriteByte(CmdSetAddrHigh)
	data.WriteByte(1) // addr = 0x100
	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(0x10) // addr = 0x110

	ctrl.WriteByte(CmdWrite)
	data.WriteByte(0x42)

	ctrl.WriteByte(CmdSetAddrHigh)
	data.WriteByte(1)
	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(0x10)
	ctrl.WriteByte(CmdRead)
	if got := data.ReadByte(); got != 0x42 {
		t.Errorf("RAM disk read back at 0x110 = %#x, want 0x42", got)
	}
}

func TestRAMDiskGetSize(t *testing.T) {
	disk := NewRAMDisk(256, nil)
	ctrl, data := disk.CtrlPort(), disk.DataPort()
	ctrl.WriteByte(CmdGetSizeLow)
	if got := data.ReadByte(); got != byte(256&0xff) {
		t.Errorf("size low byte = %d, want %d", got, byte(256&0xff))
	}
	ctrl.WriteByte(CmdGetSizeHigh)
	if got := data.ReadByte(); got != byte(256>>8) {
		t.Errorf("size high byte = %d, want %d", got, byte(256>>8))
	}
}

func TestRAMDiskReset(t *testing.T) {
	disk := NewRAMDisk(16, nil)
	ctrl, data := disk.CtrlPort(), disk.DataPort()
	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(0)
	ctrl.WriteByte(CmdWrite)
	data.WriteByte(0xFF)
	ctrl.Reset()
	ctrl.WriteByte(CmdSetAddrLow)
	data.WriteByte(0)
	ctrl.WriteByte(CmdRead)
	if got := data.ReadByte(); got != 0 {
		t.Errorf("RAM disk value after Reset = %#x, want 0", got)
	}
}
