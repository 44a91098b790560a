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

import "github.com/pkg/errors"

// ErrUnsupportedNode is returned when the compiler is asked to lower an
// ast.Node it has no rule for — either a node type it does not handle at
// all, or a well-formed node used in a position the language does not
// allow (e.g. a literal as an assignment target).
var ErrUnsupportedNode = errors.New("unsupported node")

// ErrAddressOutOfRange is returned when a `cell` declaration's literal
// address, or a variable or instruction address assigned by the layout
// pass, does not fit in the target machine's address space.
var ErrAddressOutOfRange = errors.New("address out of range")
