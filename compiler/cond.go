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
	"github.com/mhorod/duh/ast"
	"github.com/mhorod/duh/internal/token"
	"github.com/mhorod/duh/machine"
)

// comparisonRule describes how one of the six relational operators is
// rewritten into a subtraction or XOR followed by one of the machine's
// two conditional jumps, JNEG and JZERO.
type comparisonRule struct {
	swap          bool // compute args[1]-args[0] instead of args[0]-args[1]
	opcode        machine.Opcode
	fireMeansTrue bool
}

var comparisonRules = map[token.Operator]comparisonRule{
	token.Lt:  {swap: false, opcode: machine.JNEG, fireMeansTrue: true},
	token.Gt:  {swap: true, opcode: machine.JNEG, fireMeansTrue: true},
	token.Leq: {swap: true, opcode: machine.JNEG, fireMeansTrue: false},
	token.Geq: {swap: false, opcode: machine.JNEG, fireMeansTrue: false},
	token.Eq:  {swap: false, opcode: machine.JZERO, fireMeansTrue: true},
	token.Neq: {swap: false, opcode: machine.JZERO, fireMeansTrue: false},
}

// compileComparisonIntoAC computes the arithmetic value that rule's jump
// will test: a subtraction for ordering comparisons, an XOR for
// (in)equality. The right operand is evaluated before the left one is
// loaded, so computing it cannot overwrite the left value.
func (c *Compiler) compileComparisonIntoAC(n *ast.Expression, rule comparisonRule) error {
	left, right := n.Args[0], n.Args[1]
	if rule.swap {
		left, right = right, left
	}
	mode, addr, temp, err := c.evaluateArgument(right)
	if err != nil {
		return err
	}
	if err := c.compileIntoAC(left); err != nil {
		return err
	}
	op := machine.SUB
	if n.Op == token.Eq || n.Op == token.Neq {
		op = machine.XOR
	}
	c.emit(op, mode, addr)
	if temp {
		c.tvs.Pop()
	}
	return nil
}

// compileCondition computes a condition node's truth value into the
// accumulator and reports which conditional jump tests it and whether
// that jump firing means the condition is true. A top-level comparison
// operator is rewritten per comparisonRules; any other expression falls
// back to evaluating it as a plain value and testing it against zero,
// the same default both if and while use.
func (c *Compiler) compileCondition(cond ast.Node) (opcode machine.Opcode, fireMeansTrue bool, err error) {
	if n, ok := cond.(*ast.Expression); ok && len(n.Args) == 2 {
		if rule, ok := comparisonRules[n.Op]; ok {
			if err := c.compileComparisonIntoAC(n, rule); err != nil {
				return 0, false, err
			}
			return rule.opcode, rule.fireMeansTrue, nil
		}
	}
	if err := c.compileIntoAC(cond); err != nil {
		return 0, false, err
	}
	return machine.JZERO, false, nil
}

// compileIf lowers an if/else statement. An empty then-block with no
// else clause needs no branch at all beyond evaluating the condition for
// its side effects, since there is nothing to jump around.
func (c *Compiler) compileIf(n *ast.If) error {
	if len(n.Then.Statements) == 0 && n.Else == nil {
		_, _, err := c.compileCondition(n.Condition)
		return err
	}
	opcode, fireMeansTrue, err := c.compileCondition(n.Condition)
	if err != nil {
		return err
	}
	if fireMeansTrue {
		return c.compileIfPatternA(opcode, n)
	}
	return c.compileIfPatternB(opcode, n)
}

// compileIfPatternB lays out an if/else using a jump that fires when the
// condition is false: the jump skips straight past the then-block.
func (c *Compiler) compileIfPatternB(jumpOp machine.Opcode, n *ast.If) error {
	skip := c.emit(jumpOp, machine.IMMEDIATE, nil)
	if err := c.compileBlock(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		end := c.emit(machine.JUMP, machine.IMMEDIATE, nil)
		skip.Addr = c.target()
		if err := c.compileBlock(n.Else); err != nil {
			return err
		}
		end.Addr = c.target()
	} else {
		skip.Addr = c.target()
	}
	return nil
}

// compileIfPatternA lays out an if/else using a jump that fires when the
// condition is true: the jump takes the then-block directly, so an
// unconditional jump is needed to skip it on the false path.
func (c *Compiler) compileIfPatternA(jumpOp machine.Opcode, n *ast.If) error {
	takeThen := c.emit(jumpOp, machine.IMMEDIATE, nil)
	skipThen := c.emit(machine.JUMP, machine.IMMEDIATE, nil)
	takeThen.Addr = c.target()
	if err := c.compileBlock(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		end := c.emit(machine.JUMP, machine.IMMEDIATE, nil)
		skipThen.Addr = c.target()
		if err := c.compileBlock(n.Else); err != nil {
			return err
		}
		end.Addr = c.target()
	} else {
		skipThen.Addr = c.target()
	}
	return nil
}

// compileWhile lowers a while loop. The condition is re-evaluated every
// iteration, so its first instruction's address doubles as the loop's
// back-jump target.
func (c *Compiler) compileWhile(n *ast.While) error {
	condStart := c.target()
	opcode, fireMeansTrue, err := c.compileCondition(n.Condition)
	if err != nil {
		return err
	}
	if fireMeansTrue {
		return c.compileWhilePatternA(opcode, condStart, n)
	}
	return c.compileWhilePatternB(opcode, condStart, n)
}

// compileWhilePatternB uses a jump that fires on a false condition to
// exit the loop directly.
func (c *Compiler) compileWhilePatternB(jumpOp machine.Opcode, condStart Addr, n *ast.While) error {
	exit := c.emit(jumpOp, machine.IMMEDIATE, nil)
	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	c.emit(machine.JUMP, machine.IMMEDIATE, condStart)
	exit.Addr = c.target()
	return nil
}

// compileWhilePatternA uses a jump that fires on a true condition to
// enter the loop body, with an unconditional jump to exit when it
// doesn't fire.
func (c *Compiler) compileWhilePatternA(jumpOp machine.Opcode, condStart Addr, n *ast.While) error {
	enter := c.emit(jumpOp, machine.IMMEDIATE, nil)
	exit := c.emit(machine.JUMP, machine.IMMEDIATE, nil)
	enter.Addr = c.target()
	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	c.emit(machine.JUMP, machine.IMMEDIATE, condStart)
	exit.Addr = c.target()
	return nil
}
