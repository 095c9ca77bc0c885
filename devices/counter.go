/*
 * virtcomp - counter device
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

import "sync/atomic"

// DefaultCounterPort is the port the CLI registers a Counter on by default.
const DefaultCounterPort = 0x02

// Counter is a test-oriented endpoint: reading returns its current value,
// writing increments it by the written byte.
type Counter struct {
	value atomic.Uint32
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Name() string { return "counter" }

func (c *Counter) ReadByte() byte { return byte(c.value.Load()) }

func (c *Counter) WriteByte(v byte) { c.value.Add(uint32(v)) }

func (c *Counter) Reset() { c.value.Store(0) }

// Value returns the counter's current byte value, for tests that want to
// assert on it directly rather than through a port read.
func (c *Counter) Value() byte { return byte(c.value.Load()) }

// Set forces the counter to a specific value.
func (c *Counter) Set(v byte) { c.value.Store(uint32(v)) }
