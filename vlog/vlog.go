/*
 * virtcomp - Wrapper for slog
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

// Package vlog wraps log/slog with a ring buffer a debug-GUI log panel could
// read concurrently with writes. The emulator and device bus log faults and
// warnings through this package rather than through slog directly.
package vlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Ring holds the most recent log lines under a (non-reentrant) mutex. The
// logger never blocks longer than the hold of a single push.
type Ring struct {
	mu    sync.Mutex
	lines []string
	cap   int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 500
	}
	return &Ring{cap: capacity}
}

func (r *Ring) push(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.cap {
		r.lines = r.lines[len(r.lines)-r.cap:]
	}
}

// Lines returns a snapshot copy of the buffered log lines.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Handler is a slog.Handler that formats records as single lines, appends
// them to a Ring, and optionally echoes to stderr when debug is enabled or
// the record is at or above Warn.
type Handler struct {
	h     slog.Handler
	ring  *Ring
	debug bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{h: h.h.WithAttrs(attrs), ring: h.ring, debug: h.debug}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{h: h.h.WithGroup(name), ring: h.ring, debug: h.debug}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}
	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			strs = append(strs, a.Key+"="+a.Value.String())
			return true
		})
	}
	line := strings.Join(strs, " ")

	if h.ring != nil {
		h.ring.push(line)
	}

	if h.debug || r.Level >= slog.LevelWarn {
		_, err := io.WriteString(os.Stderr, line+"\n")
		return err
	}
	return nil
}

// New builds a *slog.Logger backed by Handler and returns the Ring it writes
// to, so a caller can read buffered lines for a debug panel.
func New(level slog.Level, debug bool) (*slog.Logger, *Ring) {
	ring := NewRing(1000)
	h := &Handler{
		h:     slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}),
		ring:  ring,
		debug: debug,
	}
	return slog.New(h), ring
}
