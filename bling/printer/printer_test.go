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

package printer

import (
	"testing"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/emitter"
	"foundry.dev/bling/bling/parser"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

func parse(t *testing.T, name, src string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	f, err := parser.ParseFile(fset, name, []byte(src), pkgScope)
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", name, err)
	}
	return f
}

// TestRoundTrip is the section 8 testable property: emit(parse(s))
// re-parsed and re-emitted must be byte-identical to its first emission.
func TestRoundTrip(t *testing.T) {
	srcs := []string{
		`package (main);
func main() int {
	print("hi");
	return 0;
}`,
		`package (util);
typedef point struct {
	x int;
	y int;
};
func add(a int, b int) int {
	if (a > b) {
		return a;
	}
	return b;
}`,
		`package (iter);
func sum(n int) int {
	var total int = 0;
	for (var i int = 0; i < n; i++) {
		total = total + i;
	}
	return total;
}`,
		`package (conv);
func truncate(x float) int {
	return (int)x;
}`,
	}
	for _, src := range srcs {
		f1 := parse(t, "round.bling", src)
		var e1 emitter.Emitter
		PrintFile(&e1, f1)
		first := e1.String()

		f2 := parse(t, "round.bling", first)
		var e2 emitter.Emitter
		PrintFile(&e2, f2)
		second := e2.String()

		if first != second {
			t.Errorf("round trip not stable for %q:\n--- first ---\n%s\n--- second ---\n%s", src, first, second)
		}
	}
}

// TestPrintFileKeepsPackageSelectorDotted checks the doc comment's
// contrast with bling/cemitter: the printer never mangles a
// package-qualified selector, it stays `pkg.sym`.
func TestPrintFileKeepsPackageSelectorDotted(t *testing.T) {
	pkgIdent := &ast.Ident{Name: "mathutil"}
	sel := &ast.SelectorExpr{X: pkgIdent, Tok: token.PERIOD, Sel: &ast.Ident{Name: "add"}}
	var e emitter.Emitter
	emitExpr(&e, sel)
	if got, want := e.String(), "mathutil.add"; got != want {
		t.Errorf("emitExpr(selector) = %q, want %q", got, want)
	}
}
