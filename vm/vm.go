/*
 * virtcomp - machine wiring
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

// Package vm wires memory, the device bus, and the CPU into one runnable
// instance, the way emu/core did for S370's channel-driven system -
// simplified here to spec.md §5's single-threaded cooperative model: no
// goroutine, no channel, just a construct-then-step/run object.
package vm

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/virtcomp/bus"
	"github.com/rcornwell/virtcomp/cpu"
	"github.com/rcornwell/virtcomp/devices"
	"github.com/rcornwell/virtcomp/memory"
)

// Machine is a fully wired virtcomp instance: memory, bus, and CPU.
type Machine struct {
	Memory *memory.Memory
	Bus    *bus.Bus
	CPU    *cpu.CPU
}

// Config describes how to build a Machine (spec.md §6's config surface:
// memory size, cpu mode, device map).
type Config struct {
	MemorySize   uint32
	Mode64       bool
	WithConsole  bool
	WithCounter  bool
	FilePath     string // empty disables the file-backed device
	RAMDiskBytes int    // 0 disables the RAM disk
	Log          *slog.Logger
}

// New builds a Machine per cfg, registering every enabled device on the
// bus at its default port (spec.md §4.6).
func New(cfg Config) (*Machine, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	mem := memory.New(cfg.MemorySize)
	b := bus.New(cfg.Log)
	c := cpu.New(mem, b, cfg.Log)
	if cfg.Mode64 {
		c.Mode = cpu.Mode64
	}

	if cfg.WithConsole {
		if err := b.Register(devices.DefaultConsolePort, devices.NewConsole(cfg.Log)); err != nil {
			return nil, fmt.Errorf("vm: registering console: %w", err)
		}
	}
	if cfg.WithCounter {
		if err := b.Register(devices.DefaultCounterPort, devices.NewCounter()); err != nil {
			return nil, fmt.Errorf("vm: registering counter: %w", err)
		}
	}
	if cfg.FilePath != "" {
		dev, err := devices.NewFile(cfg.FilePath, cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("vm: opening file device: %w", err)
		}
		if err := b.Register(devices.DefaultFilePort, dev); err != nil {
			return nil, fmt.Errorf("vm: registering file device: %w", err)
		}
	}
	if cfg.RAMDiskBytes > 0 {
		disk := devices.NewRAMDisk(cfg.RAMDiskBytes, cfg.Log)
		if err := b.Register(devices.DefaultRAMDiskDataPort, disk.DataPort()); err != nil {
			return nil, fmt.Errorf("vm: registering ramdisk data port: %w", err)
		}
		if err := b.Register(devices.DefaultRAMDiskCtrlPort, disk.CtrlPort()); err != nil {
			return nil, fmt.Errorf("vm: registering ramdisk control port: %w", err)
		}
	}

	return &Machine{Memory: mem, Bus: b, CPU: c}, nil
}

// LoadAndRun loads prog and runs until a halt, a fault, PC running past the
// program, or the step budget (0 uses cpu.DefaultStepBudget).
func (m *Machine) LoadAndRun(prog []byte, budget int) (steps int, exceeded bool, err error) {
	if err := m.CPU.Load(prog); err != nil {
		return 0, false, err
	}
	steps, exceeded = m.CPU.Run(budget)
	return steps, exceeded, nil
}

// Reset rewinds the CPU to its post-construction state without touching
// memory contents or bus registrations (mirrors cpu.CPU.Reset's contract).
func (m *Machine) Reset() { m.CPU.Reset() }
