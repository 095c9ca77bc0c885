/*
 * virtcomp - RAM disk device
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

package devices

import (
	"log/slog"
	"sync"
)

// Default ports for the RAM disk's split data/control protocol.
const (
	DefaultRAMDiskDataPort = 0x05
	DefaultRAMDiskCtrlPort = 0x06

	DefaultRAMDiskSize = 8192
)

// Control-port commands.
const (
	CmdSetAddrLow = 0x00
	CmdSetAddrHigh = 0x01
	CmdRead        = 0x02
	CmdWrite       = 0x03
	CmdGetSizeLow  = 0x04
	CmdGetSizeHigh = 0x05
)

// RAMDisk is an in-memory block store addressed through two bus endpoints
// sharing one RAMDisk instance: a data port and a control port. The control
// port selects an address and an operation; the data port carries bytes.
// Commands span two ports, so both endpoints guard the same lock (spec.md
// §5, "locking discipline").
type RAMDisk struct {
	mu      sync.Mutex
	storage []byte
	addr    uint16
	lastCmd uint8
	log     *slog.Logger
}

func NewRAMDisk(size int, log *slog.Logger) *RAMDisk {
	if size <= 0 {
		size = DefaultRAMDiskSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &RAMDisk{storage: make([]byte, size), log: log}
}

// DataPort and CtrlPort return the two endpoints that together implement
// the bus.Device interface over the shared RAMDisk state.
func (r *RAMDisk) DataPort() *ramDiskPort { return &ramDiskPort{disk: r, control: false} }
func (r *RAMDisk) CtrlPort() *ramDiskPort { return &ramDiskPort{disk: r, control: true} }

func (r *RAMDisk) clampAddr() {
	if int(r.addr) >= len(r.storage) {
		r.addr = uint16(len(r.storage) - 1)
	}
}

func (r *RAMDisk) readData() byte {
	switch r.lastCmd {
	case CmdRead:
		if int(r.addr) < len(r.storage) {
			return r.storage[r.addr]
		}
		return 0
	case CmdGetSizeLow:
		return byte(len(r.storage))
	case CmdGetSizeHigh:
		return byte(len(r.storage) >> 8)
	default:
		return 0
	}
}

// writeData carries the payload for whatever command the control port last
// selected: the low/high address byte for the SetAddr commands, or the
// stored byte itself for CmdWrite.
func (r *RAMDisk) writeData(v byte) {
	switch r.lastCmd {
	case CmdSetAddrLow:
		r.addr = (r.addr &^ 0xff) | uint16(v)
		r.clampAddr()
	case CmdSetAddrHigh:
		r.addr = (r.addr & 0xff) | uint16(v)<<8
		r.clampAddr()
	case CmdWrite:
		if int(r.addr) < len(r.storage) {
			r.storage[r.addr] = v
		}
	}
}

// writeCtrl selects the command the following data-port byte(s) apply to.
func (r *RAMDisk) writeCtrl(v byte) {
	r.lastCmd = v
}

func (r *RAMDisk) reset() {
	for i := range r.storage {
		r.storage[i] = 0
	}
	r.addr = 0
	r.lastCmd = 0
}

// ramDiskPort is one of the two bus.Device views onto a shared RAMDisk.
type ramDiskPort struct {
	disk    *RAMDisk
	control bool
}

func (p *ramDiskPort) Name() string {
	if p.control {
		return "ramdisk-control"
	}
	return "ramdisk-data"
}

func (p *ramDiskPort) ReadByte() byte {
	p.disk.mu.Lock()
	defer p.disk.mu.Unlock()
	if p.control {
		return p.disk.lastCmd
	}
	return p.disk.readData()
}

func (p *ramDiskPort) WriteByte(v byte) {
	p.disk.mu.Lock()
	defer p.disk.mu.Unlock()
	if p.control {
		p.disk.writeCtrl(v)
	} else {
		p.disk.writeData(v)
	}
}

func (p *ramDiskPort) Reset() {
	p.disk.mu.Lock()
	defer p.disk.mu.Unlock()
	p.disk.reset()
}
