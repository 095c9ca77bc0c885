/*
 * virtcomp - console device
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

// Package devices holds the concrete bus endpoints named in spec.md §4.6:
// Console, Counter, a file-backed store, and a RAM disk.
package devices

import (
	"log/slog"
	"os"
	"sync"
)

// DefaultConsolePort is the port the CLI registers a Console on by default.
const DefaultConsolePort = 0x01

// Console is a text I/O endpoint: writes go to stdout, reads drain a queued
// input buffer a front-end fills on the console's behalf.
type Console struct {
	mu    sync.Mutex
	input []byte
	log   *slog.Logger
}

// NewConsole constructs a Console. A nil logger falls back to slog.Default.
func NewConsole(log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{log: log}
}

func (c *Console) Name() string { return "console" }

// ReadByte pops the oldest queued input byte, or 0 if none is queued.
func (c *Console) ReadByte() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.input) == 0 {
		return 0
	}
	v := c.input[0]
	c.input = c.input[1:]
	return v
}

// WriteByte writes the byte to stdout and logs it at debug level.
func (c *Console) WriteByte(v byte) {
	os.Stdout.Write([]byte{v})
	c.log.Debug("console output", "value", v)
}

// Reset drops any queued input.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = nil
}

// Feed queues bytes for a future ReadByte, the way a front-end delivers
// keystrokes to the emulator.
func (c *Console) Feed(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = append(c.input, data...)
}
