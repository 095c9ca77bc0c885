/*
 * virtcomp - hex byte formatting and .hex test-fixture parsing
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

// Package hexfmt formats byte slices as hex text and parses the .hex test
// fixture format spec.md §6 defines: whitespace-separated 2-digit hex
// bytes, '#' line comments, with three recognized sentinel phrases marking
// a file as a negative test.
package hexfmt

import (
	"fmt"
	"strconv"
	"strings"
)

var hexDigits = "0123456789ABCDEF"

// FormatBytes renders data as upper-case hex pairs, optionally space
// separated.
func FormatBytes(data []byte, space bool) string {
	var b strings.Builder
	for _, by := range data {
		b.WriteByte(hexDigits[(by>>4)&0xf])
		b.WriteByte(hexDigits[by&0xf])
		if space {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// FormatByte renders one byte as a two-digit hex pair.
func FormatByte(data byte) string {
	return string([]byte{hexDigits[(data>>4)&0xf], hexDigits[data&0xf]})
}

// Sentinel names the negative-test phrases a .hex comment line may carry.
type Sentinel int

const (
	NoSentinel Sentinel = iota
	ErrorExpected
	InvalidOpcode
	DivisionByZero
)

var sentinelPhrases = map[string]Sentinel{
	"error expected":   ErrorExpected,
	"invalid opcode":   InvalidOpcode,
	"division by zero": DivisionByZero,
}

// File is the result of parsing one .hex fixture: the decoded program bytes
// and the negative-test sentinel from the last comment line that carries one.
type File struct {
	Bytes    []byte
	Sentinel Sentinel
}

// Parse decodes a .hex fixture. Each line's content up to a '#' is
// whitespace-split into 2-digit hex byte tokens; text after '#' is
// inspected (case-insensitively) for a sentinel phrase.
func Parse(src string) (File, error) {
	var f File
	for lineNum, line := range strings.Split(src, "\n") {
		data, comment := splitComment(line)
		if s := scanSentinel(comment); s != NoSentinel {
			f.Sentinel = s
		}
		for _, tok := range strings.Fields(data) {
			v, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return File{}, fmt.Errorf("hexfmt: line %d: invalid hex byte %q: %w", lineNum+1, tok, err)
			}
			f.Bytes = append(f.Bytes, byte(v))
		}
	}
	return f, nil
}

func splitComment(line string) (data, comment string) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

func scanSentinel(comment string) Sentinel {
	lower := strings.ToLower(comment)
	for phrase, kind := range sentinelPhrases {
		if strings.Contains(lower, phrase) {
			return kind
		}
	}
	return NoSentinel
}
