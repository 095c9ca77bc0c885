/*
 * virtcomp - condition flags
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

// Package flags holds the emulator's four condition bits, packed into one
// word the way PUSH_FLAG/POP_FLAG move them to and from the stack as a
// single unit.
package flags

// Bit positions within the packed word.
const (
	Zero = 1 << iota
	Sign
	Carry
	Overflow
)

// Word is the packed Zero/Sign/Carry/Overflow flag register. Values are
// defined only immediately after an instruction documented to set them; a
// reader must not assume meaning between such instructions.
type Word uint32

// Get reports whether every bit in mask is set.
func (w Word) Get(mask uint32) bool { return uint32(w)&mask == mask }

// Set assigns a single bit to on or off, leaving the others untouched.
func (w *Word) Set(mask uint32, on bool) {
	if on {
		*w |= Word(mask)
	} else {
		*w &^= Word(mask)
	}
}

// SetArith sets Zero/Sign/Carry/Overflow from an arithmetic result. INC/DEC
// (which do not touch Carry) use the narrower SetZS instead.
func (w *Word) SetArith(zero, sign, carry, overflow bool) {
	w.Set(Zero, zero)
	w.Set(Sign, sign)
	w.Set(Carry, carry)
	w.Set(Overflow, overflow)
}

// SetZS sets only Zero and Sign, preserving Carry and Overflow: INC/DEC's
// documented effect (spec open question a: Carry is preserved, not cleared).
func (w *Word) SetZS(zero, sign bool) {
	w.Set(Zero, zero)
	w.Set(Sign, sign)
}
