/*
 * virtcomp - device bus
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

// Package bus is the process-wide registry mapping 8-bit port numbers to
// device endpoints. It composes byte, word, dword, and string transfers out
// of single-byte accesses, in port order, the way a real I/O bus would.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Device is one bus endpoint. Real endpoints (those backed by an external
// resource) additionally implement Connector.
type Device interface {
	Name() string
	ReadByte() byte
	WriteByte(v byte)
	Reset()
}

// Connector is implemented by real (as opposed to virtual, in-process)
// devices: a file or serial endpoint that can be connected and disconnected
// independently of registration.
type Connector interface {
	Connect() error
	Disconnect()
	Connected() bool
}

var (
	// ErrPortCollision is returned by Register when the port already holds
	// a device; the bus's registry is append-mostly and offers no ordering
	// guarantee across overlapping registrations (spec.md §5).
	ErrPortCollision = fmt.Errorf("bus: port collision")
)

// Bus is a process-wide keyed store from port to device. A CPU borrows a
// reference; Reset clears registrations between test cases without
// requiring a fresh process (spec.md §9, "Global state").
type Bus struct {
	mu    sync.Mutex
	ports map[uint8]Device
	log   *slog.Logger
}

// New constructs an empty bus. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{ports: make(map[uint8]Device), log: log}
}

// Register binds dev to port. It fails if the port is already occupied.
func (b *Bus) Register(port uint8, dev Device) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.ports[port]; exists {
		return ErrPortCollision
	}
	b.ports[port] = dev
	return nil
}

// Unregister removes whatever device is bound to port, disconnecting it
// first if it is a real device that is currently connected.
func (b *Bus) Unregister(port uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, exists := b.ports[port]
	if !exists {
		return
	}
	if c, ok := dev.(Connector); ok && c.Connected() {
		c.Disconnect()
	}
	delete(b.ports, port)
}

// Get returns the device bound to port, if any.
func (b *Bus) Get(port uint8) (Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev, ok := b.ports[port]
	return dev, ok
}

// Reset clears every registration. Devices are not individually reset; the
// caller that built them owns their lifetime.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ports = make(map[uint8]Device)
}

// ResetAll calls Reset on every registered device without removing them
// from the registry.
func (b *Bus) ResetAll() {
	b.mu.Lock()
	devices := make([]Device, 0, len(b.ports))
	for _, dev := range b.ports {
		devices = append(devices, dev)
	}
	b.mu.Unlock()
	for _, dev := range devices {
		dev.Reset()
	}
}

func (b *Bus) lookup(port uint8) (Device, bool) {
	b.mu.Lock()
	dev, ok := b.ports[port]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	if c, isReal := dev.(Connector); isReal && !c.Connected() {
		return nil, false
	}
	return dev, true
}

// ReadByte reads a single byte from port. An unregistered or unconnected
// port warns and returns 0 (spec.md §7, ReadFromUnregisteredPort).
func (b *Bus) ReadByte(port uint8) byte {
	dev, ok := b.lookup(port)
	if !ok {
		b.log.Warn("read from unregistered port", "port", port)
		return 0
	}
	v := dev.ReadByte()
	b.log.Debug("port read", "port", port, "device", dev.Name(), "value", v)
	return v
}

// WriteByte writes a single byte to port. An unregistered or unconnected
// port warns and drops the write (spec.md §7, WriteToUnregisteredPort).
func (b *Bus) WriteByte(port uint8, v byte) {
	dev, ok := b.lookup(port)
	if !ok {
		b.log.Warn("write to unregistered port", "port", port)
		return
	}
	dev.WriteByte(v)
	b.log.Debug("port write", "port", port, "device", dev.Name(), "value", v)
}

// ReadWord reads 2 bytes, little-endian, from consecutive ports starting at
// port. port > 254 has no room for the second byte and is rejected,
// warning and returning 0 (spec.md §4.6/§8).
func (b *Bus) ReadWord(port uint8) uint16 {
	if port > 254 {
		b.log.Warn("word port read out of range", "port", port)
		return 0
	}
	lo := b.ReadByte(port)
	hi := b.ReadByte(port + 1)
	return uint16(lo) | uint16(hi)<<8
}

// WriteWord mirrors ReadWord for writes.
func (b *Bus) WriteWord(port uint8, v uint16) {
	if port > 254 {
		b.log.Warn("word port write out of range", "port", port)
		return
	}
	b.WriteByte(port, byte(v))
	b.WriteByte(port+1, byte(v>>8))
}

// ReadDWord reads 4 bytes, little-endian, from consecutive ports starting
// at port. port > 252 is rejected.
func (b *Bus) ReadDWord(port uint8) uint32 {
	if port > 252 {
		b.log.Warn("dword port read out of range", "port", port)
		return 0
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(b.ReadByte(port+uint8(i))) << (8 * i)
	}
	return v
}

// WriteDWord mirrors ReadDWord for writes.
func (b *Bus) WriteDWord(port uint8, v uint32) {
	if port > 252 {
		b.log.Warn("dword port write out of range", "port", port)
		return
	}
	for i := 0; i < 4; i++ {
		b.WriteByte(port+uint8(i), byte(v>>(8*i)))
	}
}

const maxStringTransfer = 255

// ReadString reads up to maxLength bytes from port, stopping at the first
// zero byte or maxLength, whichever comes first (spec.md §8 boundary
// behavior). maxLength is clamped to 255.
func (b *Bus) ReadString(port uint8, maxLength int) []byte {
	if maxLength > maxStringTransfer || maxLength <= 0 {
		maxLength = maxStringTransfer
	}
	out := make([]byte, 0, maxLength)
	for i := 0; i < maxLength; i++ {
		v := b.ReadByte(port)
		if v == 0 {
			break
		}
		out = append(out, v)
	}
	return out
}

// WriteString writes data to port followed by a trailing zero byte, which
// is always appended regardless of whether data already ends in one
// (spec.md §4.6).
func (b *Bus) WriteString(port uint8, data []byte) {
	for _, v := range data {
		b.WriteByte(port, v)
	}
	b.WriteByte(port, 0)
}
