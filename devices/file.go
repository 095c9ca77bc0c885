/*
 * virtcomp - file-backed device
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
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DefaultFilePort is the port the CLI registers a File device on by default.
const DefaultFilePort = 0x04

// maxFileSize caps how much of a backing file is read into memory.
const maxFileSize = 100 * 1024 * 1024

var (
	// ErrUnsafePath is returned when the requested path contains a parent
	// directory traversal segment.
	ErrUnsafePath = errors.New("devices: unsafe file path")
	// ErrOversizedFile is returned when the backing file exceeds maxFileSize.
	ErrOversizedFile = errors.New("devices: file too large")
)

// File is a byte-stream endpoint backed by a path on disk: reads advance a
// cursor through the loaded buffer, writes extend or overwrite it and
// persist the whole buffer back to disk.
type File struct {
	mu       sync.Mutex
	path     string
	buf      []byte
	position int
	log      *slog.Logger
}

// validatePath rejects path traversal, matching the original device's
// "UnsafePath" rejection without reproducing its OS-specific symlink checks
// (out of scope for a portable reimplementation).
func validatePath(path string) error {
	if path == "" || strings.Contains(path, "..") {
		return ErrUnsafePath
	}
	return nil
}

// NewFile opens (or creates) a file-backed device at path.
func NewFile(path string, log *slog.Logger) (*File, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	f := &File{path: path, log: log}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.log.Info("creating new file device backing store", "path", f.path)
		f.buf = nil
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() > maxFileSize {
		return ErrOversizedFile
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	f.buf = data
	f.log.Info("loaded file device backing store", "path", f.path, "bytes", len(data))
	return nil
}

func (f *File) save() {
	if err := os.WriteFile(f.path, f.buf, 0o644); err != nil {
		f.log.Error("failed to write file device backing store", "path", f.path, "error", err)
	}
}

func (f *File) Name() string { return "file:" + f.path }

// ReadByte returns the byte at the current position and advances it, or 0
// past the end of the buffer.
func (f *File) ReadByte() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.position >= len(f.buf) {
		return 0
	}
	v := f.buf[f.position]
	f.position++
	return v
}

// WriteByte writes at the current position (extending the buffer if at or
// past its end) and persists the buffer to disk.
func (f *File) WriteByte(v byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.position >= len(f.buf) {
		f.buf = append(f.buf, v)
		f.position = len(f.buf)
	} else {
		f.buf[f.position] = v
		f.position++
	}
	f.save()
}

// Reset rewinds the cursor and reloads the backing file.
func (f *File) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = 0
	_ = f.load()
}

// Seek repositions the cursor, clamped to the buffer's length.
func (f *File) Seek(pos int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pos > len(f.buf) {
		pos = len(f.buf)
	}
	if pos < 0 {
		pos = 0
	}
	f.position = pos
}

// Size returns the current buffer length.
func (f *File) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf)
}
