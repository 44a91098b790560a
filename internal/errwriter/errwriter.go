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

// Package errwriter wraps an io.Writer so that a running program's PRINT
// output (one write per printed value, plus the requested-cell dump after
// it halts) can be checked once at the end instead of at every call site,
// while still reporting which PRINT this was in the program's output.
package errwriter

import (
	"io"

	"github.com/pkg/errors"
)

// Writer tracks the first error seen from the wrapped io.Writer, along
// with how many values had already been written successfully when it
// occurred. Once an error occurs, every subsequent Write returns it
// without touching the underlying writer or advancing Lines again.
type Writer struct {
	w     io.Writer
	Lines int
	Err   error
}

// New wraps w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
		return n, w.Err
	}
	w.Lines++
	return n, nil
}
