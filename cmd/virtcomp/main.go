/*
 * virtcomp - command-line front end
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
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/rcornwell/virtcomp/assemble"
	"github.com/rcornwell/virtcomp/codegen"
	"github.com/rcornwell/virtcomp/hexfmt"
	"github.com/rcornwell/virtcomp/vlog"
	"github.com/rcornwell/virtcomp/vm"
)

func main() {
	optDebug := getopt.BoolLong("debug", 'd', "Drop into the step/breakpoint REPL after loading")
	optVerbose := getopt.BoolLong("verbose", 'v', "Echo log output to stderr")
	optExtReg := getopt.BoolLong("extended-registers", 0, "Start the CPU in 64-bit mode")
	optHex := getopt.StringLong("hex", 'H', "", "Load a .hex bytecode fixture")
	optAsm := getopt.StringLong("assembly", 'A', "", "Assemble and load a source file")
	optTest := getopt.BoolLong("test", 't', "Treat --hex input as a test fixture (honor its sentinel comment)")
	optGUI := getopt.BoolLong("gui", 'g', "Launch the graphical front end")
	optCompile := getopt.StringLong("compile", 'o', "", "Compile the loaded program to native code and write it here")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}
	if *optGUI {
		fmt.Fprintln(os.Stderr, "GUI not built in this tree")
		os.Exit(1)
	}
	if *optAsm != "" && *optHex != "" {
		fmt.Fprintln(os.Stderr, "--assembly and --hex are mutually exclusive")
		os.Exit(1)
	}
	if *optTest && *optAsm != "" {
		fmt.Fprintln(os.Stderr, "--test and --assembly are mutually exclusive")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *optVerbose {
		level = slog.LevelDebug
	}
	logger, ring := vlog.New(level, *optVerbose)
	slog.SetDefault(logger)
	_ = ring

	prog, err := loadProgram(*optHex, *optAsm, *optTest)
	if err != nil {
		fmt.Fprintln(os.Stderr, "virtcomp:", err)
		os.Exit(1)
	}

	machine, err := vm.New(vm.Config{
		MemorySize:  64 * 1024,
		Mode64:      *optExtReg,
		WithConsole: true,
		WithCounter: true,
		Log:         logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "virtcomp:", err)
		os.Exit(1)
	}

	if *optCompile != "" {
		if err := compileTo(*optCompile, prog); err != nil {
			fmt.Fprintln(os.Stderr, "virtcomp:", err)
			os.Exit(1)
		}
	}

	if *optDebug {
		runREPL(machine, prog)
		return
	}

	if err := machine.CPU.Load(prog); err != nil {
		fmt.Fprintln(os.Stderr, "virtcomp:", err)
		os.Exit(1)
	}
	steps, exceeded := machine.CPU.Run(0)
	fmt.Printf("ran %d instructions, exceeded=%v, errors=%d\n", steps, exceeded, machine.CPU.ErrorCount)
	if machine.CPU.ErrorCount > 0 {
		os.Exit(1)
	}
}

func loadProgram(hexPath, asmPath string, test bool) ([]byte, error) {
	switch {
	case asmPath != "":
		src, err := os.ReadFile(asmPath)
		if err != nil {
			return nil, err
		}
		return assemble.AssembleSource(string(src))

	case hexPath != "":
		src, err := os.ReadFile(hexPath)
		if err != nil {
			return nil, err
		}
		fixture, err := hexfmt.Parse(string(src))
		if err != nil {
			return nil, err
		}
		if test && fixture.Sentinel == hexfmt.NoSentinel {
			return nil, fmt.Errorf("--test given but %s carries no sentinel comment", hexPath)
		}
		return fixture.Bytes, nil

	default:
		return nil, fmt.Errorf("one of --hex or --assembly is required")
	}
}

func compileTo(path string, prog []byte) error {
	// Lower the bytecode to x86-64 with the same translator that
	// cmd/virtcomp-disasm uses, and write the native bytes.
	native, err := codegen.NewTranslator().CompileProgram(prog)
	if err != nil {
		return err
	}
	return os.WriteFile(path, native, 0o644)
}

func runREPL(machine *vm.Machine, prog []byte) {
	if err := machine.CPU.Load(prog); err != nil {
		fmt.Fprintln(os.Stderr, "virtcomp:", err)
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("virtcomp debug REPL — step, run, regs, quit")
	for {
		cmd, err := line.Prompt("virtcomp> ")
		if err != nil {
			return
		}
		line.AppendHistory(cmd)
		switch cmd {
		case "step", "s":
			if !machine.CPU.Step() {
				fmt.Println("halted")
			}
		case "run", "r":
			steps, exceeded := machine.CPU.Run(0)
			fmt.Printf("ran %d instructions, exceeded=%v\n", steps, exceeded)
		case "regs":
			fmt.Printf("PC=%d SP=%d FP=%d Mode=%v Flags=%v\n",
				machine.CPU.PC, machine.CPU.SP, machine.CPU.FP, machine.CPU.Mode, machine.CPU.Flags)
		case "quit", "q":
			return
		default:
			fmt.Println("commands: step, run, regs, quit")
		}
	}
}
