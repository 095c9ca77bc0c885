/*
 * virtcomp - opcode catalogue
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

// Package catalogue is the single opcode table shared by the assembler, the
// emulator core, and the disassembler. Disagreement between two copies of
// this table is a class defect, so it exists exactly once.
package catalogue

// Shape names the operand layout that follows an opcode byte.
type Shape uint8

const (
	Nullary Shape = iota
	Register
	Address
	RegReg
	RegImmediate8
	RegAddress
	RegPort
	RegImmediate64
	DefineBytes
)

// Class groups opcodes for the emulator's dispatch table construction and
// for the disassembler's formatting choices. It carries no behavior itself.
type Class uint8

const (
	ClassSystem Class = iota
	ClassData
	ClassArithmetic
	ClassLogic
	ClassShift
	ClassCompare
	ClassBranch
	ClassStack
	ClassMemory
	ClassCall
	ClassPortIO
	ClassMode
)

// Entry describes one opcode: its mnemonic, operand shape, and dispatch
// class. FixedSize is the encoded instruction length for every shape except
// DefineBytes, whose size depends on the byte count carried in the stream.
type Entry struct {
	Mnemonic  string
	Shape     Shape
	Class     Class
	FixedSize int
}

// Size returns the encoded size of an instruction at this opcode. For
// DefineBytes the caller must supply the count byte that follows the
// address field (program[pc+2]); it is ignored for every other shape.
func (e Entry) Size(countByte byte) int {
	if e.Shape == DefineBytes {
		return 3 + int(countByte)
	}
	return e.FixedSize
}

func shapeSize(s Shape) int {
	switch s {
	case Nullary:
		return 1
	case Register, Address:
		return 2
	case RegReg, RegImmediate8, RegAddress, RegPort:
		return 3
	case RegImmediate64:
		return 10
	case DefineBytes:
		return 3 // plus N, resolved by Size
	default:
		return 1
	}
}

// Opcodes, by hex value (original_source/src/assembler/opcodes.hpp).
const (
	NOP        = 0x00
	LOAD_IMM   = 0x01
	ADD        = 0x02
	SUB        = 0x03
	MOV        = 0x04
	JMP        = 0x05
	LOAD       = 0x06
	STORE      = 0x07
	PUSH       = 0x08
	POP        = 0x09
	CMP        = 0x0A
	JZ         = 0x0B
	JNZ        = 0x0C
	JS         = 0x0D
	JNS        = 0x0E
	JC         = 0x0F
	MUL        = 0x10
	DIV        = 0x11
	INC        = 0x12
	DEC        = 0x13
	AND        = 0x14
	OR         = 0x15
	XOR        = 0x16
	NOT        = 0x17
	SHL        = 0x18
	SHR        = 0x19
	CALL       = 0x1A
	RET        = 0x1B
	PUSH_ARG   = 0x1C
	POP_ARG    = 0x1D
	PUSH_FLAG  = 0x1E
	POP_FLAG   = 0x1F
	LEA        = 0x20
	SWAP       = 0x21
	JNC        = 0x22
	JO         = 0x23
	JNO        = 0x24
	JG         = 0x25
	JL         = 0x26
	JGE        = 0x27
	JLE        = 0x28
	IN         = 0x30
	OUT        = 0x31
	INB        = 0x32
	OUTB       = 0x33
	INW        = 0x34
	OUTW       = 0x35
	INL        = 0x36
	OUTL       = 0x37
	INSTR      = 0x38
	OUTSTR     = 0x39
	DB         = 0x40
	ADD64      = 0x50
	SUB64      = 0x51
	MOV64      = 0x52
	LOAD_IMM64 = 0x53
	MUL64      = 0x54
	DIV64      = 0x55
	AND64      = 0x56
	OR64       = 0x57
	XOR64      = 0x58
	SHL64      = 0x59
	SHR64      = 0x5A
	CMP64      = 0x5B
	NOT64      = 0x5C
	INC64      = 0x5D
	DEC64      = 0x5E
	MOVEX      = 0x60
	ADDEX      = 0x61
	SUBEX      = 0x62
	MULEX      = 0x63
	DIVEX      = 0x64
	CMPEX      = 0x65
	LOADEX     = 0x66
	STOREX     = 0x67
	PUSHEX     = 0x68
	POPEX      = 0x69
	MODE32     = 0x70
	MODE64     = 0x71
	MODECMP    = 0x72
	HALT       = 0xFF
)

// Table is indexed by opcode byte; a zero-value Entry (Mnemonic == "") means
// the opcode is unassigned and the emulator treats it as InvalidOpcode.
var Table [256]Entry

func add(op byte, mnemonic string, shape Shape, class Class) {
	Table[op] = Entry{Mnemonic: mnemonic, Shape: shape, Class: class, FixedSize: shapeSize(shape)}
}

func init() {
	add(NOP, "NOP", Nullary, ClassSystem)
	add(LOAD_IMM, "LOAD_IMM", RegImmediate8, ClassData)
	add(ADD, "ADD", RegReg, ClassArithmetic)
	add(SUB, "SUB", RegReg, ClassArithmetic)
	add(MOV, "MOV", RegReg, ClassData)
	add(JMP, "JMP", Address, ClassBranch)
	add(LOAD, "LOAD", RegAddress, ClassMemory)
	add(STORE, "STORE", RegAddress, ClassMemory)
	add(PUSH, "PUSH", Register, ClassStack)
	add(POP, "POP", Register, ClassStack)
	add(CMP, "CMP", RegReg, ClassCompare)
	add(JZ, "JZ", Address, ClassBranch)
	add(JNZ, "JNZ", Address, ClassBranch)
	add(JS, "JS", Address, ClassBranch)
	add(JNS, "JNS", Address, ClassBranch)
	add(JC, "JC", Address, ClassBranch)
	add(MUL, "MUL", RegReg, ClassArithmetic)
	add(DIV, "DIV", RegReg, ClassArithmetic)
	add(INC, "INC", Register, ClassArithmetic)
	add(DEC, "DEC", Register, ClassArithmetic)
	add(AND, "AND", RegReg, ClassLogic)
	add(OR, "OR", RegReg, ClassLogic)
	add(XOR, "XOR", RegReg, ClassLogic)
	add(NOT, "NOT", Register, ClassLogic)
	add(SHL, "SHL", RegImmediate8, ClassShift)
	add(SHR, "SHR", RegImmediate8, ClassShift)
	add(CALL, "CALL", Address, ClassCall)
	add(RET, "RET", Nullary, ClassCall)
	add(PUSH_ARG, "PUSH_ARG", Register, ClassCall)
	add(POP_ARG, "POP_ARG", Register, ClassCall)
	add(PUSH_FLAG, "PUSH_FLAG", Nullary, ClassStack)
	add(POP_FLAG, "POP_FLAG", Nullary, ClassStack)
	add(LEA, "LEA", RegAddress, ClassMemory)
	add(SWAP, "SWAP", RegAddress, ClassMemory)
	add(JNC, "JNC", Address, ClassBranch)
	add(JO, "JO", Address, ClassBranch)
	add(JNO, "JNO", Address, ClassBranch)
	add(JG, "JG", Address, ClassBranch)
	add(JL, "JL", Address, ClassBranch)
	add(JGE, "JGE", Address, ClassBranch)
	add(JLE, "JLE", Address, ClassBranch)
	add(IN, "IN", RegPort, ClassPortIO)
	add(OUT, "OUT", RegPort, ClassPortIO)
	add(INB, "INB", RegPort, ClassPortIO)
	add(OUTB, "OUTB", RegPort, ClassPortIO)
	add(INW, "INW", RegPort, ClassPortIO)
	add(OUTW, "OUTW", RegPort, ClassPortIO)
	add(INL, "INL", RegPort, ClassPortIO)
	add(OUTL, "OUTL", RegPort, ClassPortIO)
	add(INSTR, "INSTR", RegPort, ClassPortIO)
	add(OUTSTR, "OUTSTR", RegPort, ClassPortIO)
	add(DB, "DB", DefineBytes, ClassData)
	add(ADD64, "ADD64", RegReg, ClassArithmetic)
	add(SUB64, "SUB64", RegReg, ClassArithmetic)
	add(MOV64, "MOV64", RegReg, ClassData)
	add(LOAD_IMM64, "LOAD_IMM64", RegImmediate64, ClassData)
	add(MUL64, "MUL64", RegReg, ClassArithmetic)
	add(DIV64, "DIV64", RegReg, ClassArithmetic)
	add(AND64, "AND64", RegReg, ClassLogic)
	add(OR64, "OR64", RegReg, ClassLogic)
	add(XOR64, "XOR64", RegReg, ClassLogic)
	add(SHL64, "SHL64", RegImmediate8, ClassShift)
	add(SHR64, "SHR64", RegImmediate8, ClassShift)
	add(CMP64, "CMP64", RegReg, ClassCompare)
	add(NOT64, "NOT64", Register, ClassLogic)
	add(INC64, "INC64", Register, ClassArithmetic)
	add(DEC64, "DEC64", Register, ClassArithmetic)
	add(MOVEX, "MOVEX", RegReg, ClassData)
	add(ADDEX, "ADDEX", RegReg, ClassArithmetic)
	add(SUBEX, "SUBEX", RegReg, ClassArithmetic)
	add(MULEX, "MULEX", RegReg, ClassArithmetic)
	add(DIVEX, "DIVEX", RegReg, ClassArithmetic)
	add(CMPEX, "CMPEX", RegReg, ClassCompare)
	add(LOADEX, "LOADEX", RegAddress, ClassMemory)
	add(STOREX, "STOREX", RegAddress, ClassMemory)
	add(PUSHEX, "PUSHEX", Register, ClassStack)
	add(POPEX, "POPEX", Register, ClassStack)
	add(MODE32, "MODE32", Nullary, ClassMode)
	add(MODE64, "MODE64", Nullary, ClassMode)
	// MODECMP carries its comparison byte in the reg-immediate8 shape's
	// immediate field; the register field is reserved and ignored.
	add(MODECMP, "MODECMP", RegImmediate8, ClassMode)
	add(HALT, "HALT", Nullary, ClassSystem)

	ByMnemonic = make(map[string]byte, 96)
	for op, e := range Table {
		if e.Mnemonic != "" {
			ByMnemonic[e.Mnemonic] = byte(op)
		}
	}
}

// Lookup returns the entry for op and whether op is an assigned opcode.
func Lookup(op byte) (Entry, bool) {
	e := Table[op]
	return e, e.Mnemonic != ""
}

// ByMnemonic is built once, at the end of init after Table is filled, for
// the assembler's mnemonic -> opcode lookup.
var ByMnemonic map[string]byte

// RequiresMode64 reports whether op is only legal when the CPU is in 64-bit
// mode: the 64-bit arithmetic family (0x50-0x5E) and the extended-register
// family (0x60-0x69).
func RequiresMode64(op byte) bool {
	return (op >= ADD64 && op <= DEC64) || (op >= MOVEX && op <= POPEX)
}
