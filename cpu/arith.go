/*
 * virtcomp - arithmetic flag computation
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

// widthMask returns a mask covering the low `width` bits (32 or 64).
func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// addFlags computes a+b at the given width and the Z/S/C/O flags spec.md
// §4.5 documents for ADD: C for unsigned carry, O for same-sign inputs
// producing a different-sign result.
func addFlags(a, b uint64, width int) (result uint64, zero, sign, carry, overflow bool) {
	mask := widthMask(width)
	signBit := uint64(1) << uint(width-1)
	a &= mask
	b &= mask
	sum := (a + b) & mask
	zero = sum == 0
	sign = sum&signBit != 0
	carry = sum < a
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	overflow = aSign == bSign && sign != aSign
	return sum, zero, sign, carry, overflow
}

// subFlags computes a-b at the given width and its flags: C for unsigned
// borrow, O for different-sign inputs producing a different-sign result.
func subFlags(a, b uint64, width int) (result uint64, zero, sign, carry, overflow bool) {
	mask := widthMask(width)
	signBit := uint64(1) << uint(width-1)
	a &= mask
	b &= mask
	diff := (a - b) & mask
	zero = diff == 0
	sign = diff&signBit != 0
	carry = a < b
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	overflow = aSign != bSign && sign != aSign
	return diff, zero, sign, carry, overflow
}
