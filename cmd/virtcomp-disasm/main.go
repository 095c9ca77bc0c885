/*
 * virtcomp-disasm - disassembler and code generator dump tool
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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcornwell/virtcomp/codegen"
	"github.com/rcornwell/virtcomp/disasm"
	"github.com/rcornwell/virtcomp/hexfmt"
)

func main() {
	root := &cobra.Command{
		Use:   "virtcomp-disasm",
		Short: "Disassemble or native-compile a virtcomp .hex bytecode file",
	}

	var nativeOut string
	root.Flags().StringVar(&nativeOut, "compile", "", "also emit native x86-64 machine code to this path")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one .hex file argument")
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fixture, err := hexfmt.Parse(string(src))
		if err != nil {
			return err
		}

		stmts, err := disasm.Disassemble(fixture.Bytes)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			fmt.Printf("%04x  %-28s ; %s\n", s.Address, hexfmt.FormatBytes(s.Raw, true), s.String())
		}

		if nativeOut != "" {
			translator := codegen.NewTranslator()
			native, err := translator.CompileProgram(fixture.Bytes)
			if err != nil {
				return fmt.Errorf("compiling to native code: %w", err)
			}
			if err := os.WriteFile(nativeOut, native, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes of native code (%d spills, %d allocations)\n",
				len(native), translator.SpillCount(), translator.AllocationCount())
		}
		return nil
	}

	root.Args = cobra.ArbitraryArgs
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "virtcomp-disasm:", err)
		os.Exit(1)
	}
}
