package vm

import (
	"testing"

	"github.com/rcornwell/virtcomp/catalogue"
	"github.com/rcornwell/virtcomp/memory"
	"github.com/rcornwell/virtcomp/registers"
)

func TestNewWiresRequestedDevices(t *testing.T) {
	m, err := New(Config{
		MemorySize:   memory.MinSize,
		WithConsole:  true,
		WithCounter:  true,
		RAMDiskBytes: 64,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.Bus.Get(0x01); !ok {
		t.Errorf("console not registered on its default port")
	}
	if _, ok := m.Bus.Get(0x02); !ok {
		t.Errorf("counter not registered on its default port")
	}
	if _, ok := m.Bus.Get(0x05); !ok {
		t.Errorf("ram disk data port not registered")
	}
	if _, ok := m.Bus.Get(0x06); !ok {
		t.Errorf("ram disk control port not registered")
	}
}

func TestNewDefaultsToMode32(t *testing.T) {
	m, err := New(Config{MemorySize: memory.MinSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.CPU.Mode != 0 {
		t.Errorf("Mode = %v, want Mode32 by default", m.CPU.Mode)
	}
}

func TestLoadAndRunExecutesProgram(t *testing.T) {
	m, err := New(Config{MemorySize: memory.MinSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prog := []byte{catalogue.LOAD_IMM, byte(registers.RAX), 9, catalogue.HALT}
	steps, exceeded, err := m.LoadAndRun(prog, 0)
	if err != nil {
		t.Fatalf("LoadAndRun: %v", err)
	}
	if exceeded {
		t.Errorf("LoadAndRun exceeded budget unexpectedly")
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
}

func TestResetPreservesMemoryContents(t *testing.T) {
	m, err := New(Config{MemorySize: memory.MinSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prog := []byte{catalogue.LOAD_IMM, byte(registers.RAX), 9, catalogue.HALT}
	if _, _, err := m.LoadAndRun(prog, 0); err != nil {
		t.Fatalf("LoadAndRun: %v", err)
	}
	m.Reset()
	b, err := m.Memory.GetByte(0)
	if err != nil || b != catalogue.LOAD_IMM {
		t.Errorf("Reset must not clear memory contents")
	}
	if m.CPU.PC != 0 {
		t.Errorf("PC after Reset = %d, want 0", m.CPU.PC)
	}
}

func TestNewWithNoOptionalDevicesSucceeds(t *testing.T) {
	_, err := New(Config{
		MemorySize: memory.MinSize,
		FilePath:   "",
	})
	if err != nil {
		t.Fatalf("New with no optional devices should not fail: %v", err)
	}
}
