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

package ast

import (
	"fmt"
	"io"
	"strconv"
)

// Fprint writes an indented tree representation of n to w, for debugging.
// Unlike the printer it is grounded on, the Else branch of an If prints
// the actual else block rather than repeating the then block.
func Fprint(w io.Writer, n Node) {
	printNode(w, n, 0)
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
}

func printNode(w io.Writer, n Node, depth int) {
	switch v := n.(type) {
	case *Program:
		indent(w, depth)
		fmt.Fprintln(w, "Program")
		for _, s := range v.Statements {
			printNode(w, s, depth+1)
		}
	case *Block:
		indent(w, depth)
		fmt.Fprintln(w, "Block")
		for _, s := range v.Statements {
			printNode(w, s, depth+1)
		}
	case *VarDecl:
		indent(w, depth)
		fmt.Fprintln(w, "Var", v.Name)
	case *CellDecl:
		indent(w, depth)
		fmt.Fprintln(w, "Cell", v.Name, strconv.Itoa(v.Address))
	case *Identifier:
		indent(w, depth)
		fmt.Fprintln(w, "Identifier", v.Name)
	case *Literal:
		indent(w, depth)
		fmt.Fprintln(w, "Literal", v.Value)
	case *Expression:
		indent(w, depth)
		fmt.Fprintln(w, "Expression", v.Op)
		for _, a := range v.Args {
			printNode(w, a, depth+1)
		}
	case *If:
		indent(w, depth)
		fmt.Fprintln(w, "If")
		printNode(w, v.Condition, depth+1)
		indent(w, depth+1)
		fmt.Fprintln(w, "Then")
		printNode(w, v.Then, depth+2)
		if v.Else != nil {
			indent(w, depth+1)
			fmt.Fprintln(w, "Else")
			printNode(w, v.Else, depth+2)
		}
	case *While:
		indent(w, depth)
		fmt.Fprintln(w, "While")
		printNode(w, v.Condition, depth+1)
		printNode(w, v.Body, depth+1)
	case *Print:
		indent(w, depth)
		fmt.Fprintln(w, "Print")
		printNode(w, v.Value, depth+1)
	default:
		indent(w, depth)
		fmt.Fprintf(w, "<unknown %T>\n", n)
	}
}
