// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command duh compiles and runs programs written in the duh language
// against the pmc target machine.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mhorod/duh/ast"
	"github.com/mhorod/duh/compiler"
	"github.com/mhorod/duh/internal/errwriter"
	"github.com/mhorod/duh/lexer"
	"github.com/mhorod/duh/listing"
	"github.com/mhorod/duh/machine"
	"github.com/mhorod/duh/parser"
)

func main() {
	app := cli.NewApp()
	app.Name = "duh"
	app.Usage = "compile and run duh programs against the pmc target machine"
	app.ArgsUsage = "FILE"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "compile", Usage: "compile FILE to a .pmc listing next to it"},
		cli.BoolFlag{Name: "run", Usage: "compile and immediately run FILE, applying stdin's seed/print protocol"},
		cli.BoolFlag{Name: "print-ast", Usage: "print the parsed AST to stderr before compiling"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected exactly one FILE argument", 1)
	}
	path := c.Args().Get(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	prog, err := compileSource(path, string(src), c.Bool("print-ast"))
	if err != nil {
		return err
	}

	switch {
	case c.Bool("compile"):
		return compileFile(path, prog)
	case c.Bool("run"):
		return runFile(prog)
	default:
		return cli.NewExitError("one of --compile or --run is required", 1)
	}
}

func compileSource(path, src string, printAST bool) (*compiler.Program, error) {
	tokens, err := lexer.Lex(path, src)
	if err != nil {
		return nil, errors.Wrap(err, "lexing")
	}
	tree, err := parser.Parse(tokens)
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	if printAST {
		ast.Fprint(os.Stderr, tree)
	}
	prog, err := compiler.Compile(tree)
	if err != nil {
		return nil, errors.Wrap(err, "compiling")
	}
	return prog, nil
}

// compileFile writes prog's .pmc listing alongside path, replacing its
// extension, matching the original CLI's compile_file behavior.
func compileFile(path string, prog *compiler.Program) error {
	ext := filepath.Ext(path)
	out := strings.TrimSuffix(path, ext) + ".pmc"
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", out)
	}
	defer f.Close()
	if err := listing.Write(f, prog); err != nil {
		return errors.Wrap(err, "writing listing")
	}
	return nil
}

// runFile executes prog, first seeding memory from stdin's protocol: a
// line of two counts "INP OUT", INP lines of the form "index:value" to
// write into memory before execution, and OUT lines of a bare index whose
// final memory contents are printed after the program halts.
func runFile(prog *compiler.Program) error {
	words, err := prog.Encode()
	if err != nil {
		return errors.Wrap(err, "encoding program")
	}

	stdin := bufio.NewScanner(os.Stdin)
	inputCount, outputCount, err := readCounts(stdin)
	if err != nil {
		return errors.Wrap(err, "reading INP/OUT header")
	}

	seeds := make(map[int]int, inputCount)
	for i := 0; i < inputCount; i++ {
		idx, val, err := readSeed(stdin)
		if err != nil {
			return errors.Wrapf(err, "reading input seed %d", i)
		}
		seeds[idx] = val
	}

	outputs := make([]int, outputCount)
	for i := 0; i < outputCount; i++ {
		idx, err := readIndex(stdin)
		if err != nil {
			return errors.Wrapf(err, "reading output index %d", i)
		}
		outputs[i] = idx
	}

	ew := errwriter.New(os.Stdout)
	out := &stdoutPrinter{w: ew}
	m, err := machine.New(words, machine.WithOutput(out))
	if err != nil {
		return errors.Wrap(err, "constructing machine")
	}
	for idx, val := range seeds {
		if idx < 0 || idx >= machine.MemorySize {
			return errors.Errorf("input seed index %d out of range", idx)
		}
		m.Memory[idx] = machine.Word(val)
	}

	m.Run()
	if ew.Err != nil {
		return errors.Wrapf(ew.Err, "writing program output: %d line(s) written before the failure", ew.Lines)
	}
	printed := ew.Lines

	for _, idx := range outputs {
		if idx < 0 || idx >= machine.MemorySize {
			return errors.Errorf("output index %d out of range", idx)
		}
		fmt.Fprintln(ew, int(m.Memory[idx]))
	}
	if ew.Err != nil {
		return errors.Wrapf(ew.Err, "writing requested output cells: %d line(s) written after the program's own output", ew.Lines-printed)
	}
	return nil
}

type stdoutPrinter struct{ w io.Writer }

func (p *stdoutPrinter) Emit(v int) { fmt.Fprintln(p.w, v) }

func readCounts(s *bufio.Scanner) (inp, out int, err error) {
	if !s.Scan() {
		return 0, 0, errors.New("missing INP/OUT header")
	}
	fields := strings.Fields(s.Text())
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("expected two fields, got %q", s.Text())
	}
	inp, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing INP count")
	}
	out, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing OUT count")
	}
	return inp, out, nil
}

func readSeed(s *bufio.Scanner) (idx, val int, err error) {
	if !s.Scan() {
		return 0, 0, errors.New("unexpected end of input")
	}
	parts := strings.SplitN(s.Text(), ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("expected INDEX:VALUE, got %q", s.Text())
	}
	idx, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing index")
	}
	val, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing value")
	}
	return idx, val, nil
}

func readIndex(s *bufio.Scanner) (int, error) {
	if !s.Scan() {
		return 0, errors.New("unexpected end of input")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(s.Text()))
	if err != nil {
		return 0, errors.Wrap(err, "parsing index")
	}
	return idx, nil
}
