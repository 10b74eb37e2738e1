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

// Package emitter provides the low-level output primitives shared by every
// backend that serializes a checked package to source text: a growing
// buffer, an indentation counter, and a toggle suppressing the trailing
// semicolon a for-loop's post-statement would otherwise emit. The tree walk
// itself belongs to the backend package (see bling/cemitter); this package
// only knows how to lay out tokens on a page.
package emitter

import (
	"strings"

	"foundry.dev/bling/bling/token"
)

// Emitter accumulates emitted source text. The zero value is ready to use.
type Emitter struct {
	buf strings.Builder

	// indent is the current nesting depth in tab stops.
	indent int

	// skipSemi suppresses the statement-terminating SEMICOLON the next
	// emitStmt call would otherwise append, used while emitting a for
	// statement's post-statement (`i++` in `for (;;i++)` must not gain a
	// trailing `;`).
	skipSemi bool
}

// String returns everything emitted so far.
func (e *Emitter) String() string {
	return e.buf.String()
}

// Bytes returns a copy of everything emitted so far as a byte slice.
func (e *Emitter) Bytes() []byte {
	return []byte(e.buf.String())
}

// Indent returns the current indentation depth, in tab stops.
func (e *Emitter) Indent() int { return e.indent }

// IndentIn increases the indentation depth by one.
func (e *Emitter) IndentIn() { e.indent++ }

// IndentOut decreases the indentation depth by one.
func (e *Emitter) IndentOut() { e.indent-- }

// SkipSemi reports whether semicolon suppression is armed. It does not
// change the flag; only SetSkipSemi does.
func (e *Emitter) SkipSemi() bool { return e.skipSemi }

// SetSkipSemi arms or disarms semicolon suppression in EmitToken; it stays
// in effect until the next SetSkipSemi call.
func (e *Emitter) SetSkipSemi(v bool) { e.skipSemi = v }

// EmitString writes s verbatim.
func (e *Emitter) EmitString(s string) {
	e.buf.WriteString(s)
}

// EmitSpace writes a single space.
func (e *Emitter) EmitSpace() {
	e.buf.WriteByte(' ')
}

// EmitNewline writes a line break.
func (e *Emitter) EmitNewline() {
	e.buf.WriteByte('\n')
}

// EmitTabs writes one tab character per current indentation level.
func (e *Emitter) EmitTabs() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteByte('\t')
	}
}

// EmitToken writes tok's printable form, except that a SEMICOLON is
// swallowed (without resetting skipSemi) while skipSemi is armed. The
// caller arms it for the duration of exactly one nested emitStmt call when
// emitting a for statement's post-statement, which must not gain the
// trailing `;` it would carry as an ordinary statement.
func (e *Emitter) EmitToken(tok token.Token) {
	if e.skipSemi && tok == token.SEMICOLON {
		return
	}
	e.buf.WriteString(tok.String())
}
