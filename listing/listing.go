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

// Package listing formats a compiled duh program as the textual .pmc
// program format: a line count header followed by one "LINE: OPCODE MODE
// ADDR" line per instruction.
package listing

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/mhorod/duh/compiler"
	"github.com/mhorod/duh/machine"
)

// Write formats prog's resolved instructions to w. Compile must already
// have run, so every instruction and address has a concrete value.
func Write(w io.Writer, prog *compiler.Program) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(prog.Instructions))
	for i, ins := range prog.Instructions {
		addr := 0
		if ins.Addr != nil {
			addr = ins.Addr.Value()
		}
		fmt.Fprintf(bw, "%d: %s %s %d\n", i, ins.Op, ins.Mode, addr)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "writing listing")
	}
	return nil
}

// Decode formats already-encoded machine words as the same textual
// format, decoding each word back into its opcode, mode, and address.
// Unlike Write it needs no compiler.Program, only the encoded image.
func Decode(w io.Writer, words []machine.Word) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(words))
	for i, word := range words {
		op, mode, addr := machine.Decode(word)
		fmt.Fprintf(bw, "%d: %s %s %d\n", i, op, mode, addr)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "writing listing")
	}
	return nil
}
