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

package compiler_test

import (
	"testing"

	"github.com/mhorod/duh/compiler"
)

func TestTempStackReusesAfterPop(t *testing.T) {
	vars := compiler.NewVariables()
	tvs := compiler.NewTempStack(vars)

	a := tvs.Push()
	tvs.Pop()
	b := tvs.Push()
	if a != b {
		t.Fatal("expected the popped temporary to be reused")
	}
	if len(vars.Names()) != 1 {
		t.Fatalf("expected exactly one temporary variable declared, got %d", len(vars.Names()))
	}
}

func TestTempStackGrowsWhenNestedWithoutPop(t *testing.T) {
	vars := compiler.NewVariables()
	tvs := compiler.NewTempStack(vars)

	a := tvs.Push()
	b := tvs.Push()
	if a == b {
		t.Fatal("nested pushes without a pop must not alias")
	}
	if tvs.Active() != 2 {
		t.Fatalf("active = %d, want 2", tvs.Active())
	}
	tvs.Pop()
	tvs.Pop()
	if tvs.Active() != 0 {
		t.Fatalf("active = %d, want 0", tvs.Active())
	}
}

func TestCellPanicsOnReadBeforeResolve(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading an unresolved cell")
		}
	}()
	compiler.NewCell().Value()
}

func TestNextAddrTracksBaseResolution(t *testing.T) {
	c := compiler.NewCell()
	next := compiler.Next(c)
	c.Resolve(4)
	if next.Value() != 5 {
		t.Fatalf("Next(4) = %d, want 5", next.Value())
	}
}

func TestDeclarePinnedResolvesImmediatelyAndSkipsOrder(t *testing.T) {
	vars := compiler.NewVariables()
	cell := vars.DeclarePinned("p", 100)
	if cell.Value() != 100 {
		t.Fatalf("pinned cell value = %d, want 100", cell.Value())
	}
	vars.Declare("x")
	for _, name := range vars.Names() {
		if name == "p" {
			t.Fatal("pinned declaration must not appear in the free-address order")
		}
	}
}

func TestDeclarePinnedIsIdempotent(t *testing.T) {
	vars := compiler.NewVariables()
	first := vars.DeclarePinned("p", 100)
	second := vars.DeclarePinned("p", 200)
	if first != second {
		t.Fatal("redeclaring a pinned name must return the original cell")
	}
	if first.Value() != 100 {
		t.Fatalf("redeclaration must not change the pinned address: got %d, want 100", first.Value())
	}
}
