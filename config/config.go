/*
 * virtcomp - machine configuration file parser
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

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := 'memory' <size> |
 *           'mode' ('32'|'64') |
 *           'device' <name> <port> *(<whitespace> <arg>)
 * <size> ::= <number> ['K'|'M']
 */

// Package config is a small line-oriented parser for the machine's startup
// file: memory size, CPU mode, and the device-to-port map (spec.md §6).
package config

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// DeviceLine is one parsed "device" directive.
type DeviceLine struct {
	Name string
	Port uint8
	Args []string
}

// Config is the parsed contents of a configuration file.
type Config struct {
	MemorySize uint32 // bytes; 0 means unspecified
	Mode64     bool
	Devices    []DeviceLine
}

// Parse reads a configuration file's text and returns its Config, or the
// first error encountered (unknown directive, malformed size, bad port).
func Parse(src string) (Config, error) {
	var cfg Config
	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripComment(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch strings.ToLower(fields[0]) {
		case "memory":
			err = parseMemory(&cfg, fields)
		case "mode":
			err = parseMode(&cfg, fields)
		case "device":
			err = parseDevice(&cfg, fields)
		default:
			err = fmt.Errorf("unknown directive %q", fields[0])
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: line %d: %w", lineNum, err)
		}
	}
	return cfg, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseMemory(cfg *Config, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("memory directive takes exactly one size argument")
	}
	size, err := parseSize(fields[1])
	if err != nil {
		return err
	}
	cfg.MemorySize = size
	return nil
}

// parseSize accepts a decimal number with an optional K or M suffix
// (kibibytes or mebibytes), the same suffix convention S370's
// config/configparser uses for device addresses.
func parseSize(tok string) (uint32, error) {
	mult := uint64(1)
	switch {
	case strings.HasSuffix(tok, "K") || strings.HasSuffix(tok, "k"):
		mult = 1024
		tok = tok[:len(tok)-1]
	case strings.HasSuffix(tok, "M") || strings.HasSuffix(tok, "m"):
		mult = 1024 * 1024
		tok = tok[:len(tok)-1]
	}
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", tok, err)
	}
	return uint32(n * mult), nil
}

func parseMode(cfg *Config, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("mode directive takes exactly one argument")
	}
	switch fields[1] {
	case "32":
		cfg.Mode64 = false
	case "64":
		cfg.Mode64 = true
	default:
		return fmt.Errorf("mode must be 32 or 64, got %q", fields[1])
	}
	return nil
}

func parseDevice(cfg *Config, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("device directive requires a name and a port")
	}
	port, err := strconv.ParseUint(fields[2], 0, 8)
	if err != nil {
		return fmt.Errorf("invalid device port %q: %w", fields[2], err)
	}
	cfg.Devices = append(cfg.Devices, DeviceLine{
		Name: fields[1],
		Port: uint8(port),
		Args: append([]string(nil), fields[3:]...),
	})
	return nil
}
