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

package compiler

import (
	"github.com/pkg/errors"

	"github.com/mhorod/duh/ast"
	"github.com/mhorod/duh/machine"
)

// Instruction is one symbolic target-machine instruction. Line is the
// instruction's own address, resolved by the layout pass; Addr is its
// operand address, which may reference another instruction's Line (a
// jump target), a variable's Cell, or an already-resolved literal.
type Instruction struct {
	Line *Cell
	Op   machine.Opcode
	Mode machine.AddrMode
	Addr Addr
}

// Program is a fully lowered duh program: a symbolic instruction
// sequence plus the variable environment that placed storage after it.
// Encode produces the machine words once layout has resolved every
// address.
type Program struct {
	Instructions []*Instruction
	Variables    *Variables
}

// Encode packs every instruction into a machine.Word. Layout must have
// already run (Compile does this).
func (p *Program) Encode() ([]machine.Word, error) {
	words := make([]machine.Word, len(p.Instructions))
	for i, ins := range p.Instructions {
		addr := 0
		if ins.Addr != nil {
			addr = ins.Addr.Value()
		}
		w, err := machine.Encode(ins.Op, ins.Mode, addr)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding instruction %d", i)
		}
		words[i] = w
	}
	return words, nil
}

// Compiler holds the mutable state of a single compilation: the
// instruction stream built so far, the variable environment, and the
// temporary-variable pool used to spill sub-expression results.
type Compiler struct {
	vars         *Variables
	tvs          *TempStack
	instrs       []*Instruction
	programStart *Cell
}

func (c *Compiler) emit(op machine.Opcode, mode machine.AddrMode, addr Addr) *Instruction {
	ins := &Instruction{Line: NewCell(), Op: op, Mode: mode, Addr: addr}
	c.instrs = append(c.instrs, ins)
	return ins
}

// target returns an Addr that will resolve, once layout has run, to the
// address of whatever instruction is emitted next — used to backpatch
// forward jumps without a second pass over the instruction stream.
func (c *Compiler) target() Addr {
	if len(c.instrs) == 0 {
		return c.programStart
	}
	return Next(c.instrs[len(c.instrs)-1].Line)
}

func (c *Compiler) compileBlock(b *ast.Block) error {
	for _, s := range b.Statements {
		before := c.tvs.Active()
		if err := c.compileStatement(s); err != nil {
			return err
		}
		if c.tvs.Active() != before {
			panic("temporary variable stack imbalance after statement")
		}
	}
	return nil
}

func (c *Compiler) compileStatement(node ast.Node) error {
	switch n := node.(type) {
	case *ast.VarDecl:
		c.vars.Declare(n.Name)
		return nil
	case *ast.CellDecl:
		if n.Address < 0 || n.Address >= machine.MemorySize {
			return errors.Wrapf(ErrAddressOutOfRange, "cell %s: address %d out of range", n.Name, n.Address)
		}
		c.vars.DeclarePinned(n.Name, n.Address)
		return nil
	case *ast.If:
		return c.compileIf(n)
	case *ast.While:
		return c.compileWhile(n)
	case *ast.Print:
		return c.compilePrint(n)
	case *ast.Expression:
		return c.compileIntoAC(n)
	default:
		return errors.Wrapf(ErrUnsupportedNode, "%T", node)
	}
}

// compilePrint lowers `print expr;`. It evaluates expr as an operand
// form directly, rather than through the accumulator, since PRINT reads
// its operand the same way LOAD does.
func (c *Compiler) compilePrint(n *ast.Print) error {
	mode, addr, temp, err := c.evaluateArgument(n.Value)
	if err != nil {
		return err
	}
	c.emit(machine.PRINT, mode, addr)
	if temp {
		c.tvs.Pop()
	}
	return nil
}

// layout assigns every instruction its line number and every ordinary
// declared variable the next consecutive address after the instruction
// stream, in declaration order, then checks the result fits the target
// machine's address space. `cell` declarations are pinned to their
// literal address at declaration time and never pass through here;
// their addresses are not skipped when ordinary variables are placed.
func (c *Compiler) layout() error {
	c.programStart.Resolve(0)
	for i, ins := range c.instrs {
		ins.Line.Resolve(i)
	}
	addr := len(c.instrs)
	for _, name := range c.vars.Names() {
		cell, _ := c.vars.Lookup(name)
		cell.Resolve(addr)
		addr++
	}
	if addr > machine.MemorySize {
		return errors.Wrapf(ErrAddressOutOfRange, "program needs %d words, machine has %d", addr, machine.MemorySize)
	}
	return nil
}

// Compile lowers a parsed program into a symbolic instruction sequence
// with every address resolved, ready for Program.Encode.
func Compile(prog *ast.Program) (*Program, error) {
	vars := NewVariables()
	c := &Compiler{
		vars:         vars,
		tvs:          NewTempStack(vars),
		programStart: NewCell(),
	}
	for _, s := range prog.Statements {
		if err := c.compileStatement(s); err != nil {
			return nil, errors.Wrap(err, "compiling statement")
		}
	}
	c.emit(machine.STOP, machine.IMMEDIATE, Immediate(0))
	if err := c.layout(); err != nil {
		return nil, err
	}
	return &Program{Instructions: c.instrs, Variables: c.vars}, nil
}
