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

package lexer_test

import (
	"testing"

	"github.com/mhorod/duh/internal/token"
	"github.com/mhorod/duh/lexer"
)

func TestLexBasicProgram(t *testing.T) {
	src := `var x; x = 1 + 2; print x;`
	tokens, err := lexer.Lex("test.duh", src)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{
		token.KindKeyword, token.KindIdentifier, token.KindSymbol,
		token.KindIdentifier, token.KindOperator, token.KindLiteral,
		token.KindOperator, token.KindLiteral, token.KindSymbol,
		token.KindKeyword, token.KindIdentifier, token.KindSymbol,
		token.KindEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got kind %v, want %v (%q)", i, tokens[i].Kind, k, tokens[i].Text)
		}
	}
}

func TestLexLiteralBases(t *testing.T) {
	tokens, err := lexer.Lex("t", "0x10 0b101 0o17 -5")
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{16, 5, 15, -5}
	for i, v := range want {
		if tokens[i].Value != v {
			t.Errorf("literal %d: got %d, want %d", i, tokens[i].Value, v)
		}
	}
}

func TestLexMultiCharOperators(t *testing.T) {
	tokens, err := lexer.Lex("t", "== != <= >= << >> ++ --")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Operator{
		token.Eq, token.Neq, token.Leq, token.Geq,
		token.Shl, token.Shr, token.Inc, token.Dec,
	}
	for i, op := range want {
		if tokens[i].Op != op {
			t.Errorf("operator %d: got %v, want %v", i, tokens[i].Op, op)
		}
	}
}

func TestLexUnexpectedCharacter(t *testing.T) {
	if _, err := lexer.Lex("t", "$"); err == nil {
		t.Fatal("expected error for unexpected character")
	}
}
