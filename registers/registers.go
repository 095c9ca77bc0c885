/*
 * virtcomp - register file
 *
 * Grounded on S370's flat register-array convention (emu/cpu/cpu.go: fixed-size
 * arrays indexed by enum, a side table of register metadata) and on
 * original_source/src/vhardware/cpu_registers.hpp's 134-entry x64-style
 * enumeration, which this package reproduces as a dense Go index space instead
 * of a C++ enum class.
 */

// Package registers implements the emulator's uniform 134-entry register file:
// one array of 64-bit cells, classified by a side table rather than a type
// hierarchy (spec.md §4, "Register file polymorphism").
package registers

// Index names a single cell in the register file.
type Index uint8

// General-purpose bank (0-15), aliased to their x86-64 names.
const (
	RAX Index = iota
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

// Legacy 8-register aliases (R0..R7), used by the assembler's legacy syntax.
const (
	R0 = RAX
	R1 = RCX
	R2 = RDX
	R3 = RBX
	R4 = RSP
	R5 = RBP
	R6 = RSI
	R7 = RDI
)

// Segment registers (16-21).
const (
	CS Index = iota + 16
	DS
	ES
	FS
	GS
	SS
)

// Control registers (22-30).
const (
	CR0 Index = iota + 22
	CR1
	CR2
	CR3
	CR4
	CR5
	CR6
	CR7
	CR8
)

// Debug registers (31-46).
const firstDR Index = 31

// Special-purpose registers (47-49).
const (
	RIP Index = iota + 47
	RFLAGS
	MSW
)

// SIMD (XMM) registers are stored as (low, high) pairs starting at 50; FPU
// (ST0-ST7) as (value, tag) pairs starting at 82; SIMD/FPU control/status
// words occupy 98-101; AVX upper (YMM high) halves occupy 102-133.
const (
	firstXMM    Index = 50 // 16 registers * 2 cells = 32 cells (50-81)
	firstFPU    Index = 82 // 8 registers * 2 cells = 16 cells (82-97)
	firstStatus Index = 98 // 4 cells (98-101)
	firstAVX    Index = 102

	// Count is the total number of cells in the register file.
	Count = 134

	generalCount = 16
	xmmCount     = 16
	fpuCount     = 8
	avxCount     = 16
)

// DR returns the index of debug register n (0-15).
func DR(n int) Index { return firstDR + Index(n) }

// XMMLow / XMMHigh return the cell indices holding the low/high 64 bits of
// XMM register n (0-15).
func XMMLow(n int) Index  { return firstXMM + Index(n)*2 }
func XMMHigh(n int) Index { return firstXMM + Index(n)*2 + 1 }

// FPUValue / FPUTag return the cell indices for ST(n)'s 64-bit value and tag.
func FPUValue(n int) Index { return firstFPU + Index(n)*2 }
func FPUTag(n int) Index   { return firstFPU + Index(n)*2 + 1 }

// AVXHigh returns the upper-128-bit cell for YMM register n (0-15).
func AVXHigh(n int) Index { return firstAVX + Index(n)*2 }

// Class is a bitmask describing a register's classification.
type Class uint16

const (
	ClassGeneral Class = 1 << iota
	ClassSegment
	ClassControl
	ClassDebug
	ClassSpecial
	ClassSIMD
	ClassFPU
	ClassStatus
	ClassAVX
	ClassSystem // requires privileged access
)

// Info describes one register for assembler/disassembler name resolution and
// for UI inspection.
type Info struct {
	Name        string
	Description string
	Class       Class
	Is64Bit     bool
}

// InfoTable is indexed by Index and mirrors cpu_registers.hpp's REGISTER_INFO.
var InfoTable [Count]Info

func init() {
	gp := []string{"RAX", "RCX", "RDX", "RBX", "RSP", "RBP", "RSI", "RDI",
		"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15"}
	for i, name := range gp {
		InfoTable[i] = Info{Name: name, Description: "general purpose", Class: ClassGeneral, Is64Bit: true}
	}
	seg := []string{"CS", "DS", "ES", "FS", "GS", "SS"}
	for i, name := range seg {
		InfoTable[int(CS)+i] = Info{Name: name, Description: "segment selector", Class: ClassSegment | ClassSystem}
	}
	for i := 0; i < 9; i++ {
		InfoTable[int(CR0)+i] = Info{Name: crName(i), Description: "control register", Class: ClassControl | ClassSystem, Is64Bit: true}
	}
	for i := 0; i < 16; i++ {
		InfoTable[int(firstDR)+i] = Info{Name: drName(i), Description: "debug register", Class: ClassDebug | ClassSystem, Is64Bit: true}
	}
	InfoTable[RIP] = Info{Name: "RIP", Description: "instruction pointer", Class: ClassSpecial, Is64Bit: true}
	InfoTable[RFLAGS] = Info{Name: "RFLAGS", Description: "flags register", Class: ClassSpecial, Is64Bit: true}
	InfoTable[MSW] = Info{Name: "MSW", Description: "machine status word", Class: ClassSpecial | ClassSystem, Is64Bit: true}
	for i := 0; i < xmmCount; i++ {
		InfoTable[int(XMMLow(i))] = Info{Name: xmmName(i, "LO"), Description: "XMM low 64", Class: ClassSIMD, Is64Bit: true}
		InfoTable[int(XMMHigh(i))] = Info{Name: xmmName(i, "HI"), Description: "XMM high 64", Class: ClassSIMD, Is64Bit: true}
	}
	for i := 0; i < fpuCount; i++ {
		InfoTable[int(FPUValue(i))] = Info{Name: fpuName(i, "VAL"), Description: "FPU value", Class: ClassFPU, Is64Bit: true}
		InfoTable[int(FPUTag(i))] = Info{Name: fpuName(i, "TAG"), Description: "FPU tag", Class: ClassFPU}
	}
	status := []string{"MXCSR", "FPCW", "FPSW", "FPTW"}
	for i, name := range status {
		InfoTable[int(firstStatus)+i] = Info{Name: name, Description: "SIMD/FPU control-status", Class: ClassStatus}
	}
	for i := 0; i < avxCount; i++ {
		InfoTable[int(AVXHigh(i))] = Info{Name: avxName(i), Description: "AVX upper half", Class: ClassAVX, Is64Bit: true}
	}
}

func crName(i int) string  { return "CR" + itoa(i) }
func drName(i int) string  { return "DR" + itoa(i) }
func xmmName(i int, part string) string {
	return "XMM" + itoa(i) + "_" + part
}
func fpuName(i int, part string) string { return "ST" + itoa(i) + "_" + part }
func avxName(i int) string              { return "YMM" + itoa(i) + "_HI" }

// itoa avoids importing strconv for two-digit indices used only at init time.
func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// File is the CPU's uniform register store: 134 64-bit cells plus a legacy
// 32-bit projection over the first 8 general-purpose cells.
type File struct {
	cells [Count]uint64
}

// Get returns the full 64-bit value of a register.
func (f *File) Get(i Index) uint64 { return f.cells[i] }

// Set stores a full 64-bit value into a register.
func (f *File) Set(i Index, v uint64) { f.cells[i] = v }

// Get32 returns the lower 32 bits of one of the legacy 8 registers (0-7).
func (f *File) Get32(i Index) uint32 { return uint32(f.cells[i]) }

// Set32 writes the lower 32 bits of one of the legacy 8 registers (0-7),
// preserving the upper 32 bits so 64-bit code sharing the same cell is not
// silently truncated.
func (f *File) Set32(i Index, v uint32) {
	f.cells[i] = (f.cells[i] &^ 0xffffffff) | uint64(v)
}

// Reset zeroes every cell.
func (f *File) Reset() {
	for i := range f.cells {
		f.cells[i] = 0
	}
}

// ValidGeneral reports whether i addresses one of the 16 general-purpose registers,
// the shape the one-byte instruction register field can name directly.
func ValidGeneral(i uint8) bool { return i < generalCount }
