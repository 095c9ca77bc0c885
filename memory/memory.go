/*
 * virtcomp - byte-addressable memory
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

// Package memory is the CPU's byte-addressable store: a contiguous array
// sized at construction, resizable within hard bounds, with zero-fill on
// growth and informational access/modify tracking for a debug front-end.
package memory

import "errors"

const (
	MinSize     = 256
	MaxSize     = 64 * 1024 * 1024
	DefaultSize = 1 * 1024 * 1024
)

// ErrOutOfBounds is returned by any access whose address falls outside the
// current size.
var ErrOutOfBounds = errors.New("memory: address out of bounds")

// ErrSizeOutOfRange is returned by Resize when the requested size falls
// outside [MinSize, MaxSize].
var ErrSizeOutOfRange = errors.New("memory: requested size out of range")

// Memory is owned exclusively by one CPU instance; it is not shared across
// CPUs the way the device bus is.
type Memory struct {
	bytes []byte

	lastAccessed uint32
	lastModified uint32
}

// New constructs memory of the given size, clamped into [MinSize, MaxSize].
func New(size uint32) *Memory {
	if size < MinSize {
		size = MinSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the current size in bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.bytes)) }

// Resize grows or shrinks the backing array. Growth zero-fills the new
// region; shrinkage truncates. sp, if non-nil, is clamped in place so a
// stack pointer above the new size does not dangle (spec.md §3, "stack-
// pointer clamping on shrink").
func (m *Memory) Resize(newSize uint32, sp *uint32) error {
	if newSize < MinSize || newSize > MaxSize {
		return ErrSizeOutOfRange
	}
	grown := make([]byte, newSize)
	copy(grown, m.bytes)
	m.bytes = grown
	if sp != nil && *sp > newSize {
		*sp = newSize
	}
	return nil
}

// CheckAddr reports whether addr is a valid byte offset in the current
// memory.
func (m *Memory) CheckAddr(addr uint32) bool { return addr < uint32(len(m.bytes)) }

// GetByte reads a single byte, recording it as the last-accessed address.
func (m *Memory) GetByte(addr uint32) (byte, error) {
	if !m.CheckAddr(addr) {
		return 0, ErrOutOfBounds
	}
	m.lastAccessed = addr
	return m.bytes[addr], nil
}

// PutByte writes a single byte, recording it as both last-accessed and
// last-modified.
func (m *Memory) PutByte(addr uint32, v byte) error {
	if !m.CheckAddr(addr) {
		return ErrOutOfBounds
	}
	m.lastAccessed = addr
	m.lastModified = addr
	m.bytes[addr] = v
	return nil
}

// GetWord reads a little-endian 32-bit value starting at addr. All four
// bytes must be in range.
func (m *Memory) GetWord(addr uint32) (uint32, error) {
	if addr+4 > uint32(len(m.bytes)) || addr+4 < addr {
		return 0, ErrOutOfBounds
	}
	m.lastAccessed = addr
	b := m.bytes[addr : addr+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// PutWord writes a little-endian 32-bit value starting at addr.
func (m *Memory) PutWord(addr uint32, v uint32) error {
	if addr+4 > uint32(len(m.bytes)) || addr+4 < addr {
		return ErrOutOfBounds
	}
	m.lastAccessed = addr
	m.lastModified = addr
	b := m.bytes[addr : addr+4]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return nil
}

// LoadBytes copies prog into memory starting at addr, zero-padding nothing:
// it is a direct write used to install an assembled program before a run.
func (m *Memory) LoadBytes(addr uint32, prog []byte) error {
	if addr+uint32(len(prog)) > uint32(len(m.bytes)) || addr+uint32(len(prog)) < addr {
		return ErrOutOfBounds
	}
	copy(m.bytes[addr:], prog)
	m.lastModified = addr
	return nil
}

// LastAccessed and LastModified are informational only (spec.md §3): a
// debug front-end may poll them, nothing in the emulator's own logic
// depends on their value.
func (m *Memory) LastAccessed() uint32 { return m.lastAccessed }
func (m *Memory) LastModified() uint32 { return m.lastModified }
