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

package listing_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mhorod/duh/compiler"
	"github.com/mhorod/duh/lexer"
	"github.com/mhorod/duh/listing"
	"github.com/mhorod/duh/parser"
)

func TestWriteHeaderMatchesInstructionCount(t *testing.T) {
	tokens, err := lexer.Lex("t", "var x; x = 1; print x;")
	if err != nil {
		t.Fatal(err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := compiler.Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := listing.Write(&buf, compiled); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	header := lines[0]
	if header != "4" {
		t.Fatalf("header = %q, want instruction count 4 (LOAD, STORE, PRINT, STOP)", header)
	}
	if len(lines)-1 != len(compiled.Instructions) {
		t.Fatalf("got %d listed instructions, want %d", len(lines)-1, len(compiled.Instructions))
	}
}
