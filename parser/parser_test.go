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

package parser_test

import (
	"testing"

	"github.com/mhorod/duh/ast"
	"github.com/mhorod/duh/lexer"
	"github.com/mhorod/duh/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Lex("t.duh", src)
	if err != nil {
		t.Fatal(err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestParseVarAssignPrint(t *testing.T) {
	prog := parse(t, "var x; x = 1 + 2; print x;")
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.VarDecl); !ok {
		t.Errorf("statement 0: got %T, want *ast.VarDecl", prog.Statements[0])
	}
	assign, ok := prog.Statements[1].(*ast.Expression)
	if !ok {
		t.Fatalf("statement 1: got %T, want *ast.Expression", prog.Statements[1])
	}
	if len(assign.Args) != 2 {
		t.Fatalf("assignment has %d args, want 2", len(assign.Args))
	}
	if _, ok := prog.Statements[2].(*ast.Print); !ok {
		t.Errorf("statement 2: got %T, want *ast.Print", prog.Statements[2])
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parse(t, "if (x < 1) { print x; } else { print 0; }")
	ifNode, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("got %T, want *ast.If", prog.Statements[0])
	}
	if ifNode.Else == nil {
		t.Fatal("expected else block")
	}
	if len(ifNode.Then.Statements) != 1 || len(ifNode.Else.Statements) != 1 {
		t.Fatal("expected one statement per branch")
	}
}

func TestParseWhile(t *testing.T) {
	prog := parse(t, "while (x < 10) { x = x + 1; }")
	w, ok := prog.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("got %T, want *ast.While", prog.Statements[0])
	}
	if len(w.Body.Statements) != 1 {
		t.Fatalf("got %d body statements, want 1", len(w.Body.Statements))
	}
}

func TestParseCellDecl(t *testing.T) {
	prog := parse(t, "cell buf: 4;")
	c, ok := prog.Statements[0].(*ast.CellDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.CellDecl", prog.Statements[0])
	}
	if c.Name != "buf" || c.Address != 4 {
		t.Fatalf("got %+v, want buf pinned at address 4", c)
	}
}

func TestParseUnexpectedToken(t *testing.T) {
	tokens, err := lexer.Lex("t", "var ;")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(tokens); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseUnexpectedEOF(t *testing.T) {
	tokens, err := lexer.Lex("t", "if (x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(tokens); err == nil {
		t.Fatal("expected parse error for truncated input")
	}
}
