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

package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newTestFile builds a FileSet/File pair over src, recording a line start
// at every '\n' the way the scanner does while it scans.
func newTestFile(t *testing.T, name string, src []byte) (*FileSet, *File) {
	t.Helper()
	fset := NewFileSet()
	f := fset.AddFile(name, len(src))
	f.SetContent(src)
	for i, ch := range src {
		if ch == '\n' {
			f.AddLine(i + 1)
		}
	}
	return fset, f
}

func TestFileSetPosition(t *testing.T) {
	src := []byte("line one\nline two\nline three")
	fset, f := newTestFile(t, "test.bling", src)

	cases := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{9, 2, 1},
		{18, 3, 1},
		{len(src) - 1, 3, len(src) - 18},
	}
	for _, c := range cases {
		pos := f.Pos(c.offset)
		got := fset.Position(pos)
		want := Position{Filename: "test.bling", Offset: c.offset, Line: c.line, Column: c.column}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Position(%d) mismatch (-want +got):\n%s", c.offset, diff)
		}
	}
}

// TestFileSetPositionMonotone checks that FileSet.Position(p).Line is
// monotone non-decreasing in p within one file, a universal invariant
// from section 8.
func TestFileSetPositionMonotone(t *testing.T) {
	src := []byte("a\nbb\nccc\nd\n\ne")
	_, f := newTestFile(t, "mono.bling", src)

	lastLine := 0
	for offset := 0; offset < len(src); offset++ {
		pos := f.Pos(offset)
		line := f.Position(pos).Line
		if line < lastLine {
			t.Fatalf("offset %d: line %d < previous line %d", offset, line, lastLine)
		}
		lastLine = line
	}
}

func TestPrecedence(t *testing.T) {
	cases := []struct {
		tok  Token
		prec int
	}{
		{LOR, 1},
		{LAND, 2},
		{OR, 3},
		{XOR, 4},
		{AND, 5},
		{EQUAL, 6},
		{NOT_EQUAL, 6},
		{LT, 7},
		{GT, 7},
		{LT_EQUAL, 7},
		{GT_EQUAL, 7},
		{SHL, 8},
		{SHR, 8},
		{ADD, 9},
		{SUB, 9},
		{MUL, 10},
		{DIV, 10},
		{MOD, 10},
	}
	for _, c := range cases {
		if got := c.tok.Precedence(); got != c.prec {
			t.Errorf("%s.Precedence() = %d, want %d", c.tok, got, c.prec)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Token{
		"func":   FUNC,
		"return": RETURN,
		"var":    VAR,
		"struct": STRUCT,
		"hello":  IDENT,
		"x":      IDENT,
	}
	for lit, want := range cases {
		if got := Lookup(lit); got != want {
			t.Errorf("Lookup(%q) = %s, want %s", lit, got, want)
		}
	}
}
