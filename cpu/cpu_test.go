package cpu

import (
	"testing"

	"github.com/rcornwell/virtcomp/bus"
	"github.com/rcornwell/virtcomp/catalogue"
	"github.com/rcornwell/virtcomp/flags"
	"github.com/rcornwell/virtcomp/memory"
	"github.com/rcornwell/virtcomp/registers"
)

func newTestCPU(t *testing.T, memSize uint32) *CPU {
	t.Helper()
	mem := memory.New(memSize)
	b := bus.New(nil)
	return New(mem, b, nil)
}

func TestLoadImmAndHalt(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{catalogue.LOAD_IMM, byte(registers.RAX), 42, catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	steps, exceeded := c.Run(0)
	if exceeded {
		t.Fatalf("Run exceeded budget")
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
	if got := c.getGP32(byte(registers.RAX)); got != 42 {
		t.Errorf("RAX = %d, want 42", got)
	}
	if c.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", c.ErrorCount)
	}
}

func TestAddSetsFlags(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 10,
		catalogue.LOAD_IMM, byte(registers.RCX), 5,
		catalogue.ADD, byte(registers.RAX), byte(registers.RCX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if got := c.getGP32(byte(registers.RAX)); got != 15 {
		t.Errorf("RAX = %d, want 15", got)
	}
	if c.Flags.Get(flags.Zero) {
		t.Errorf("Zero flag should be clear")
	}
}

func TestCompareEqualSetsZero(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 7,
		catalogue.LOAD_IMM, byte(registers.RCX), 7,
		catalogue.CMP, byte(registers.RAX), byte(registers.RCX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if !c.Flags.Get(flags.Zero) {
		t.Errorf("Zero flag should be set after comparing equal values")
	}
}

func TestDivisionByZeroFaults(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 10,
		catalogue.LOAD_IMM, byte(registers.RCX), 0,
		catalogue.DIV, byte(registers.RAX), byte(registers.RCX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.ErrorCount != 1 {
		t.Fatalf("ErrorCount = %d, want 1", c.ErrorCount)
	}
	if c.LastFault == nil || c.LastFault.Kind != FaultDivisionByZero {
		t.Errorf("LastFault = %v, want FaultDivisionByZero", c.LastFault)
	}
}

func TestMemoryStoreLoadRoundTrip(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	const addr = 200
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 99,
		catalogue.STORE, byte(registers.RAX), addr,
		catalogue.LOAD, byte(registers.RCX), addr,
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if got := c.getGP32(byte(registers.RCX)); got != 99 {
		t.Errorf("RCX = %d, want 99", got)
	}
}

func TestStackPushPopBalanced(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	startSP := c.SP
	if startSP != memory.MinSize-4 {
		t.Fatalf("initial SP = %d, want %d", startSP, memory.MinSize-4)
	}
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 55,
		catalogue.PUSH, byte(registers.RAX),
		catalogue.POP, byte(registers.RCX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.SP != startSP {
		t.Errorf("SP = %d, want %d (balanced)", c.SP, startSP)
	}
	if got := c.getGP32(byte(registers.RCX)); got != 55 {
		t.Errorf("RCX = %d, want 55", got)
	}
}

func TestInitialStackPointerIsMemSizeMinusFour(t *testing.T) {
	c := newTestCPU(t, 256)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 1,
		catalogue.LOAD_IMM, byte(registers.RCX), 2,
		catalogue.PUSH, byte(registers.RAX),
		catalogue.PUSH, byte(registers.RCX),
		catalogue.POP, byte(registers.RCX),
		catalogue.POP, byte(registers.RAX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.SP != 252 {
		t.Errorf("SP = %d, want 252 (256-byte memory, balanced push/pop)", c.SP)
	}
}

func TestIncDecPreserveCarry(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	c.Flags.Set(flags.Carry, true)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 1,
		catalogue.INC, byte(registers.RAX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if !c.Flags.Get(flags.Carry) {
		t.Errorf("INC must not clear a pre-set Carry flag")
	}
}

func TestJumpOutOfRangeFaults(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{catalogue.JMP, 250, catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.LastFault == nil || c.LastFault.Kind != FaultInvalidJumpTarget {
		t.Errorf("LastFault = %v, want FaultInvalidJumpTarget", c.LastFault)
	}
}

func TestUnassignedOpcodeFaultsInvalidOpcode(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{0x41} // unassigned, just past DB
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.LastFault == nil || c.LastFault.Kind != FaultInvalidOpcode {
		t.Errorf("LastFault = %v, want FaultInvalidOpcode", c.LastFault)
	}
}

func Test64BitOpcodeRequiresMode64(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{catalogue.ADD64, byte(registers.RAX), byte(registers.RCX), catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.LastFault == nil || c.LastFault.Kind != FaultInvalidOpcode {
		t.Errorf("LastFault = %v, want FaultInvalidOpcode when not in Mode64", c.LastFault)
	}
}

func Test64BitAddSetsCarryOnOverflow(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	c.Mode = Mode64
	prog := []byte{
		catalogue.LOAD_IMM64, byte(registers.RAX),
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		catalogue.LOAD_IMM64, byte(registers.RCX),
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		catalogue.ADD64, byte(registers.RAX), byte(registers.RCX),
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if !c.Flags.Get(flags.Carry) {
		t.Errorf("64-bit ADD of two max uint64 values must set Carry")
	}
}

func TestMode64AllowsExtendedFamily(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	c.Mode = Mode64
	prog := []byte{
		catalogue.LOAD_IMM64, byte(registers.RAX),
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if got := c.getReg(byte(registers.RAX)); got != 1 {
		t.Errorf("RAX = %d, want 1", got)
	}
}

func TestRunRespectsBudget(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{catalogue.NOP, catalogue.JMP, 0}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	steps, exceeded := c.Run(5)
	if !exceeded {
		t.Errorf("expected budget exceeded on an infinite loop")
	}
	if steps != 5 {
		t.Errorf("steps = %d, want 5", steps)
	}
}

func TestResetClearsStateButNotMemory(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{catalogue.LOAD_IMM, byte(registers.RAX), 5, catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	c.Reset()
	if c.getGP32(byte(registers.RAX)) != 0 {
		t.Errorf("register should be cleared by Reset")
	}
	if c.PC != 0 {
		t.Errorf("PC should be 0 after Reset")
	}
	b, err := c.Mem.GetByte(0)
	if err != nil || b != catalogue.LOAD_IMM {
		t.Errorf("Reset must not clear memory contents")
	}
}

func newTestCPUWithPortBytes(t *testing.T, port uint8, data []byte) *CPU {
	t.Helper()
	mem := memory.New(memory.MinSize)
	b := bus.New(nil)
	for i, by := range data {
		v := by
		if err := b.Register(port+uint8(i), byteDevice(v)); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return New(mem, b, nil)
}

// byteDevice is a bus.Device that always reads back a fixed byte and
// discards writes.
type byteDevice byte

func (d byteDevice) Name() string     { return "byte-device" }
func (d byteDevice) ReadByte() byte   { return byte(d) }
func (d byteDevice) WriteByte(v byte) {}
func (d byteDevice) Reset()           {}

func TestInwScattersWordAcrossConsecutiveRegisters(t *testing.T) {
	const port = 10
	c := newTestCPUWithPortBytes(t, port, []byte{0x34, 0x12})
	prog := []byte{catalogue.INW, byte(registers.RAX), port, catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if got := c.getGP32(byte(registers.RAX)); got != 0x34 {
		t.Errorf("low register = %#x, want 0x34", got)
	}
	if got := c.getGP32(byte(registers.RAX) + 1); got != 0x12 {
		t.Errorf("high register = %#x, want 0x12", got)
	}
}

func TestOutwGathersWordFromConsecutiveRegisters(t *testing.T) {
	c := newTestCPU(t, memory.MinSize)
	prog := []byte{
		catalogue.LOAD_IMM, byte(registers.RAX), 0x34,
		catalogue.LOAD_IMM, byte(registers.RAX) + 1, 0x12,
		catalogue.OUTW, byte(registers.RAX), 20,
		catalogue.HALT,
	}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	if c.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", c.ErrorCount)
	}
}

func TestInlScattersDwordAcrossFourRegisters(t *testing.T) {
	const port = 10
	c := newTestCPUWithPortBytes(t, port, []byte{0x01, 0x02, 0x03, 0x04})
	prog := []byte{catalogue.INL, byte(registers.RAX), port, catalogue.HALT}
	if err := c.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Run(0)
	want := []uint32{1, 2, 3, 4}
	for i, w := range want {
		if got := c.getGP32(byte(registers.RAX) + byte(i)); got != w {
			t.Errorf("register %d = %#x, want %#x", i, got, w)
		}
	}
}
