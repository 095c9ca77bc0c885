/*
 * virtcomp - emulator fault kinds
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

package cpu

import "fmt"

// FaultKind names the execute-time error kinds from spec.md §7.
type FaultKind int

const (
	FaultInvalidOpcode FaultKind = iota
	FaultInvalidJumpTarget
	FaultDivisionByZero
	FaultOperandOutOfBounds
	FaultMemoryOutOfBounds
	FaultPortBoundsExceeded
)

func (k FaultKind) String() string {
	switch k {
	case FaultInvalidOpcode:
		return "InvalidOpcode"
	case FaultInvalidJumpTarget:
		return "InvalidJumpTarget"
	case FaultDivisionByZero:
		return "DivisionByZero"
	case FaultOperandOutOfBounds:
		return "OperandOutOfBounds"
	case FaultMemoryOutOfBounds:
		return "MemoryOutOfBounds"
	case FaultPortBoundsExceeded:
		return "PortBoundsExceeded"
	default:
		return "Unknown"
	}
}

// Fault is the last fatal error recorded by the CPU. It is never returned
// from Step/Run (spec.md §9: a status return, not error propagation); a
// caller that wants the detail reads CPU.LastFault after Step/Run returns
// false/exceeded==false.
type Fault struct {
	Kind   FaultKind
	PC     uint32
	Opcode byte
	Detail string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at PC=%d opcode=0x%02X: %s", f.Kind, f.PC, f.Opcode, f.Detail)
}

// fault records a fatal fault: increments the error counter, logs a
// postmortem line (kind, PC, opcode, detail, and up to four bytes read from
// the stack top), and clears the running flag. All handlers that can fault
// call this instead of propagating an error, matching the emulator's
// status-return contract.
func (c *CPU) fault(kind FaultKind, opcode byte, detail string) {
	c.ErrorCount++
	c.LastFault = &Fault{Kind: kind, PC: c.PC, Opcode: opcode, Detail: detail}
	var stackTop []byte
	for i := uint32(0); i < 4; i++ {
		b, err := c.Mem.GetByte(c.SP + i)
		if err != nil {
			break
		}
		stackTop = append(stackTop, b)
	}
	c.log.Warn("cpu fault", "kind", kind.String(), "pc", c.PC, "opcode", opcode, "detail", detail, "stack_top", stackTop)
	c.Running = false
}
