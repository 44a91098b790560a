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
	"github.com/mhorod/duh/internal/token"
	"github.com/mhorod/duh/machine"
)

var binaryOpcodes = map[token.Operator]machine.Opcode{
	token.Add: machine.ADD,
	token.Sub: machine.SUB,
	token.Shl: machine.SHL,
	token.Shr: machine.SHR,
	token.And: machine.AND,
	token.Or:  machine.OR,
	token.Xor: machine.XOR,
}

// evaluateArgument produces an operand form (addressing mode + address)
// for node without necessarily touching the accumulator: a literal or
// identifier already has an address, and anything more complex (including
// a dereference) is computed into the accumulator and spilled to a fresh
// temporary. temp reports whether the caller must Pop the temporary stack
// once it is done consuming the returned address.
func (c *Compiler) evaluateArgument(node ast.Node) (mode machine.AddrMode, addr Addr, temp bool, err error) {
	switch n := node.(type) {
	case *ast.Literal:
		return machine.IMMEDIATE, Immediate(int(n.Value)), false, nil
	case *ast.Identifier:
		m, a := c.identifierOperand(n.Name)
		return m, a, false, nil
	}

	if err := c.compileIntoAC(node); err != nil {
		return 0, nil, false, err
	}
	t := c.tvs.Push()
	c.emit(machine.STORE, machine.DIRECT, t)
	return machine.DIRECT, t, true, nil
}

// derefOperand produces the operand form that reads or writes through a
// single dereference of inner. A plain identifier or literal inner needs
// only a mode bump (INDIRECT already chases one extra pointer hop beyond
// DIRECT, for free); anything else — in particular another dereference —
// must be fully computed into the accumulator and spilled to a temporary
// first, since bumping an already-INDIRECT mode again would walk off the
// addressing-mode space instead of chasing another pointer. The result is
// correct to arbitrary dereference depth: each level materializes the
// previous level's value before being dereferenced in turn.
func (c *Compiler) derefOperand(inner ast.Node) (mode machine.AddrMode, addr Addr, temp bool, err error) {
	switch inner.(type) {
	case *ast.Identifier, *ast.Literal:
		mode, addr, temp, err = c.evaluateArgument(inner)
		if err != nil {
			return 0, nil, false, err
		}
		return mode + 1, addr, temp, nil
	default:
		if err := c.compileIntoAC(inner); err != nil {
			return 0, nil, false, err
		}
		t := c.tvs.Push()
		c.emit(machine.STORE, machine.DIRECT, t)
		return machine.INDIRECT, t, true, nil
	}
}

// identifierOperand returns the addressing-mode operand for a bare
// reference to a declared identifier. A `cell` declaration's own value
// is its pinned address, usable directly as a pointer literal, so a
// bare reference to one resolves IMMEDIATE; an ordinary `var`'s own
// value lives in its memory slot, so a bare reference to one resolves
// DIRECT. Dereferencing either (derefOperand) bumps this mode up one
// level, which is what turns a cell's address into an actual memory
// read.
func (c *Compiler) identifierOperand(name string) (machine.AddrMode, Addr) {
	cell := c.vars.Declare(name)
	if c.vars.Pinned(name) {
		return machine.IMMEDIATE, Immediate(cell.Value())
	}
	return machine.DIRECT, cell
}

// compileIntoAC emits instructions that leave node's value in the
// accumulator.
func (c *Compiler) compileIntoAC(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Literal:
		c.emit(machine.LOAD, machine.IMMEDIATE, Immediate(int(n.Value)))
		return nil
	case *ast.Identifier:
		mode, addr := c.identifierOperand(n.Name)
		c.emit(machine.LOAD, mode, addr)
		return nil
	case *ast.Expression:
		return c.compileExpressionIntoAC(n)
	default:
		return errors.Wrapf(ErrUnsupportedNode, "%T", node)
	}
}

func (c *Compiler) compileExpressionIntoAC(n *ast.Expression) error {
	switch n.Op {
	case token.Assign:
		return c.compileAssign(n)
	case token.At:
		mode, addr, temp, err := c.derefOperand(n.Args[0])
		if err != nil {
			return err
		}
		c.emit(machine.LOAD, mode, addr)
		if temp {
			c.tvs.Pop()
		}
		return nil
	case token.Not:
		return c.compileUnaryInPlace(n, machine.NOT)
	case token.Inc:
		return c.compileIncDec(n, machine.ADD)
	case token.Dec:
		return c.compileIncDec(n, machine.SUB)
	case token.Add, token.Sub, token.Shl, token.Shr, token.And, token.Or, token.Xor:
		return c.compileBinary(n)
	default:
		return errors.Wrapf(ErrUnsupportedNode, "operator %v does not produce a value", n.Op)
	}
}

// compileUnaryInPlace loads the operand into the accumulator and applies
// op to it. Used for NOT, which (per the target machine's semantics)
// still resolves its operand address but ignores the value read from it.
func (c *Compiler) compileUnaryInPlace(n *ast.Expression, op machine.Opcode) error {
	mode, addr, temp, err := c.evaluateArgument(n.Args[0])
	if err != nil {
		return err
	}
	c.emit(machine.LOAD, mode, addr)
	c.emit(op, mode, addr)
	if temp {
		c.tvs.Pop()
	}
	return nil
}

// compileIncDec lowers ++ and --. These load the operand, adjust the
// accumulator by one, and deliberately do not write the result back to
// the operand's storage: the language gives ++x and --x the value of the
// adjusted expression without defining an assignment side effect.
func (c *Compiler) compileIncDec(n *ast.Expression, op machine.Opcode) error {
	mode, addr, temp, err := c.evaluateArgument(n.Args[0])
	if err != nil {
		return err
	}
	c.emit(machine.LOAD, mode, addr)
	c.emit(op, machine.IMMEDIATE, Immediate(1))
	if temp {
		c.tvs.Pop()
	}
	return nil
}

// compileBinary lowers a two-argument arithmetic/bitwise expression by
// folding its left argument into the accumulator and applying the
// operator against the right argument's operand form. The right argument
// is evaluated first, so computing it cannot overwrite the left value.
func (c *Compiler) compileBinary(n *ast.Expression) error {
	mode, addr, temp, err := c.evaluateArgument(n.Args[1])
	if err != nil {
		return err
	}
	if err := c.compileIntoAC(n.Args[0]); err != nil {
		return err
	}
	c.emit(binaryOpcodes[n.Op], mode, addr)
	if temp {
		c.tvs.Pop()
	}
	return nil
}

// resolveStoreTarget computes the addressing mode and address that an
// assignment should STORE through: directly for a plain identifier, or
// through derefOperand for a dereferenced lvalue (`@p = v`). Unlike a
// bare read (identifierOperand), a bare identifier store target is
// always DIRECT, even for a pinned `cell` name: the assignment writes
// into the cell's own memory slot, the same slot a dereference of some
// other pointer to it would read.
func (c *Compiler) resolveStoreTarget(node ast.Node) (mode machine.AddrMode, addr Addr, temp bool, err error) {
	switch n := node.(type) {
	case *ast.Identifier:
		cell := c.vars.Declare(n.Name)
		return machine.DIRECT, cell, false, nil
	case *ast.Expression:
		if n.Op == token.At && len(n.Args) == 1 {
			return c.derefOperand(n.Args[0])
		}
	}
	return 0, nil, false, errors.Wrapf(ErrUnsupportedNode, "invalid assignment target %T", node)
}

// compileAssign lowers `lhs = rhs`. The store target is resolved before
// rhs is compiled so that an indirect target's own address computation
// (which may use the accumulator) never collides with rhs's.
func (c *Compiler) compileAssign(n *ast.Expression) error {
	lhs, rhs := n.Args[0], n.Args[1]
	mode, addr, targetTemp, err := c.resolveStoreTarget(lhs)
	if err != nil {
		return err
	}
	if err := c.compileIntoAC(rhs); err != nil {
		return err
	}
	c.emit(machine.STORE, mode, addr)
	if targetTemp {
		c.tvs.Pop()
	}
	return nil
}
