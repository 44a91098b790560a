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

// Package ast describes duh source programs as a tree of nodes: variable
// and cell declarations, expressions, and the if/while/print statements
// that make up a block.
package ast

import "github.com/mhorod/duh/internal/token"

// Node is any element of a duh program.
type Node interface {
	node()
}

// Program is the root of a parsed source file: a flat list of top-level
// declarations and statements, executed in order.
type Program struct {
	Statements []Node
}

func (*Program) node() {}

// Block is a brace-delimited sequence of statements, the body of an if or
// while.
type Block struct {
	Statements []Node
}

func (*Block) node() {}

// VarDecl declares a single named variable whose address is assigned by
// the layout pass, as opposed to CellDecl's fixed, pinned address.
type VarDecl struct {
	Name string
}

func (*VarDecl) node() {}

// CellDecl pins Name to the fixed memory address Address, resolved at
// parse time rather than assigned during layout.
type CellDecl struct {
	Name    string
	Address int
}

func (*CellDecl) node() {}

// Identifier references a previously declared variable or cell.
type Identifier struct {
	Name string
}

func (*Identifier) node() {}

// Literal is a constant integer value written directly in source.
type Literal struct {
	Value int64
}

func (*Literal) node() {}

// Expression is an operator applied to one (unary) or two (binary)
// argument nodes. Assignment (`=`) is itself represented as an
// Expression with Op == token.Assign.
type Expression struct {
	Op   token.Operator
	Args []Node
}

func (*Expression) node() {}

// If is a conditional statement with an optional else block.
type If struct {
	Condition Node
	Then      *Block
	Else      *Block // nil when there is no else clause
}

func (*If) node() {}

// While is a condition-checked-first loop.
type While struct {
	Condition Node
	Body      *Block
}

func (*While) node() {}

// Print evaluates Value and emits it through the target machine's PRINT
// instruction.
type Print struct {
	Value Node
}

func (*Print) node() {}
