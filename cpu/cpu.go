/*
 * virtcomp - emulator core
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

// Package cpu is the emulator core: the fetch/decode/execute loop and the
// opcode handler table it dispatches through. It is the contract the
// assembler must honor and the code generator must lower.
package cpu

import (
	"log/slog"

	"github.com/rcornwell/virtcomp/bus"
	"github.com/rcornwell/virtcomp/flags"
	"github.com/rcornwell/virtcomp/memory"
	"github.com/rcornwell/virtcomp/registers"
)

// Mode gates the extended opcode families (spec.md §3, "CPU Mode").
type Mode uint8

const (
	Mode32 Mode = iota
	Mode64
)

// DefaultStepBudget is the instruction-count cap the test harness applies
// per program (spec.md §5); Run enforces it so a runaway program cannot
// hang a test.
const DefaultStepBudget = 10_000

// CPU owns its register file, memory, flags, and a reference to the
// process-wide device bus (spec.md §3, "Lifecycles").
type CPU struct {
	Regs  registers.File
	Mem   *memory.Memory
	Flags flags.Word
	Bus   *bus.Bus

	PC        uint32
	SP        uint32
	FP        uint32
	ArgOffset uint32
	Mode      Mode
	Running   bool

	ErrorCount int
	LastFault  *Fault

	// programLen bounds the fetch loop independently of memory size: a
	// byte beyond the loaded program is still valid memory (spec.md §3),
	// just not a valid PC value (spec.md §3, "Invariants").
	programLen uint32

	log   *slog.Logger
	table [256]opcodeHandler
}

// New constructs a CPU over mem and shared, wired to bus b. Mode resets to
// Mode32 (spec.md §3, "backward compatibility with the legacy 8-register
// programs").
func New(mem *memory.Memory, b *bus.Bus, log *slog.Logger) *CPU {
	if log == nil {
		log = slog.Default()
	}
	c := &CPU{Mem: mem, Bus: b, log: log}
	c.buildTable()
	c.Reset()
	return c
}

// Reset zeroes the register file and flags, rewinds PC/SP/FP, resets mode
// to 32-bit, and arms the running flag. It does not touch the device bus or
// memory contents — a caller reloads a program after Reset.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.Flags = 0
	c.PC = 0
	c.SP = c.Mem.Size() - 4
	c.FP = 0
	c.ArgOffset = 0
	c.Mode = Mode32
	c.Running = true
	c.ErrorCount = 0
}

// Load installs prog at address 0, positions PC there, and records its
// length as the jump/PC validity boundary (spec.md §9, "in-range at branch
// time"); memory past that boundary is ordinary, unmapped-by-the-program
// storage even though the byte array itself is larger.
func (c *CPU) Load(prog []byte) error {
	if err := c.Mem.LoadBytes(0, prog); err != nil {
		return err
	}
	c.PC = 0
	c.programLen = uint32(len(prog))
	return nil
}

// ProgramLen returns the length recorded by the most recent Load.
func (c *CPU) ProgramLen() uint32 { return c.programLen }

// InRange reports whether addr is a valid jump/PC target: inside the
// loaded program, or equal to its length (the terminal state).
func (c *CPU) InRange(addr uint32) bool { return addr <= c.programLen }

// Run executes until the running flag clears, PC runs past the program, or
// budget instructions have executed (0 means DefaultStepBudget). It returns
// the number of instructions executed and whether the budget was exceeded
// (spec.md §5, "suspected nontermination").
func (c *CPU) Run(budget int) (steps int, exceeded bool) {
	if budget <= 0 {
		budget = DefaultStepBudget
	}
	for steps = 0; steps < budget; steps++ {
		if !c.Running || c.PC >= c.programLen {
			c.Running = false
			return steps, false
		}
		if !c.Step() {
			return steps + 1, false
		}
	}
	return steps, true
}

// Step executes exactly one instruction and reports whether the loop
// should continue (spec.md §4.5, "Step"). The decoder re-reads memory on
// every fetch: programs may self-modify (spec.md §9).
func (c *CPU) Step() bool {
	if !c.Running || c.PC >= c.programLen {
		c.Running = false
		return false
	}
	op, err := c.Mem.GetByte(c.PC)
	if err != nil {
		c.fault(FaultMemoryOutOfBounds, 0, "PC out of memory bounds")
		return false
	}
	h := c.table[op]
	h(c, op)
	return c.Running
}
