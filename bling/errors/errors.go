// Copyright 2018 The CUE Authors
//
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

// Package errors defines the shared error type used to report scanner,
// parser, and checker failures.
//
// Every category the compiler can detect — I/O, scanner, parse, resolution,
// type, and internal-invariant errors — is surfaced the same way: format a
// message carrying a source position and a one-line excerpt of the
// offending line, then panic with it. There is no error recovery; the first
// error a pass detects terminates the run. Panic, rather than a returned
// error, keeps every intermediate call site in the scanner/parser/checker
// free of error-plumbing boilerplate, matching the source compiler's
// longjmp-on-first-error behavior.
package errors

import (
	"fmt"

	"foundry.dev/bling/bling/token"
)

// Error is a positioned compiler error. Its Error method renders
// "file:line:col: message" followed by a one-line excerpt of the source at
// that position, when a FileSet is available.
type Error struct {
	Fset *token.FileSet
	Pos  token.Pos
	Msg  string
}

func (e *Error) Error() string {
	if e.Fset == nil || !e.Pos.IsValid() {
		return e.Msg
	}
	pos := e.Fset.Position(e.Pos)
	s := fmt.Sprintf("%s: %s", pos, e.Msg)
	if f := e.Fset.File(e.Pos); f != nil {
		if line := f.LineText(e.Pos); line != "" {
			s += "\n\t" + line
		}
	}
	return s
}

// Newf formats a new *Error positioned at pos and panics with it. Every
// compiler pass funnels its failures through this one function so that the
// "file:line:col: message\n\t<source line>" shape is uniform across the
// scanner, parser, and checker.
func Newf(fset *token.FileSet, pos token.Pos, format string, args ...interface{}) {
	panic(&Error{Fset: fset, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Bug panics with an internal-invariant error: a condition the compiler
// believes can never hold given a well-formed AST. Reaching it indicates a
// compiler defect, not a malformed input program.
func Bug(format string, args ...interface{}) {
	panic(&Error{Msg: "internal error: " + fmt.Sprintf(format, args...)})
}

// Handler is called by the scanner for each lexical error it encounters.
type Handler func(pos token.Pos, msg string)
