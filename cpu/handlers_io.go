/*
 * virtcomp - port I/O opcode handlers
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

import "github.com/rcornwell/virtcomp/registers"

const maxPortString = 255

// scatterBytes stores value's n low-order bytes, little-endian, one per
// register starting at reg: reg holds the low byte, reg+1 the next, and so
// on. Registers past the general-purpose bank are silently skipped, the
// same bounds the legacy 8-bit register file enforced (spec.md §4.5).
func (c *CPU) scatterBytes(reg byte, value uint32, n int) {
	for i := 0; i < n; i++ {
		r := reg + byte(i)
		if !registers.ValidGeneral(r) {
			return
		}
		c.setGP32(r, uint32(byte(value>>(8*i))))
	}
}

// gatherBytes composes a little-endian value from n consecutive registers
// starting at reg, the inverse of scatterBytes.
func (c *CPU) gatherBytes(reg byte, n int) uint32 {
	var value uint32
	for i := 0; i < n; i++ {
		r := reg + byte(i)
		if !registers.ValidGeneral(r) {
			break
		}
		value |= uint32(byte(c.getGP32(r))) << (8 * i)
	}
	return value
}

func (c *CPU) opIn(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.setGP32(reg, uint32(c.Bus.ReadByte(port)))
	c.PC += size
}

func (c *CPU) opOut(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.Bus.WriteByte(port, byte(c.getGP32(reg)))
	c.PC += size
}

// opInw reads one word from port and scatters its two bytes, little-endian,
// across reg and reg+1 — a quirk of the legacy 8-bit register family that
// the extended register file still honors (spec.md §4.5).
func (c *CPU) opInw(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.scatterBytes(reg, uint32(c.Bus.ReadWord(port)), 2)
	c.PC += size
}

// opOutw gathers two bytes, little-endian, from reg and reg+1 and writes
// them as one word to port.
func (c *CPU) opOutw(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.Bus.WriteWord(port, uint16(c.gatherBytes(reg, 2)))
	c.PC += size
}

// opInl reads one dword from port and scatters its four bytes, little-
// endian, across reg..reg+3.
func (c *CPU) opInl(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.scatterBytes(reg, c.Bus.ReadDWord(port), 4)
	c.PC += size
}

// opOutl gathers four bytes, little-endian, from reg..reg+3 and writes them
// as one dword to port.
func (c *CPU) opOutl(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	c.Bus.WriteDWord(port, c.gatherBytes(reg, 4))
	c.PC += size
}

// opOutstr reads a zero-terminated string from memory starting at the
// address held in reg and writes it to port (spec.md §4.6); the register
// is read-only input here.
func (c *CPU) opOutstr(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	addr := c.getGP32(reg)
	buf := make([]byte, 0, maxPortString)
	for i := 0; i < maxPortString; i++ {
		b, err := c.Mem.GetByte(addr + uint32(i))
		if err != nil {
			c.fault(FaultMemoryOutOfBounds, op, "OUTSTR source out of bounds")
			return
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	c.Bus.WriteString(port, buf)
	c.PC += size
}

// opInstr reads a string from port, using reg's current value as the
// maximum length to accept, then overwrites reg with the number of bytes
// actually received (spec.md §4.6). The register carries no memory
// address; the string itself is not retained past the read.
func (c *CPU) opInstr(op byte) {
	reg, port, size, ok := c.decodeRegPort(op)
	if !ok {
		return
	}
	maxLength := int(byte(c.getGP32(reg)))
	data := c.Bus.ReadString(port, maxLength)
	c.setGP32(reg, uint32(len(data)))
	c.PC += size
}
