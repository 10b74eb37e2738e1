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

package cemitter

import (
	"strings"
	"testing"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/emitter"
	"foundry.dev/bling/bling/parser"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

func checkSrc(t *testing.T, path, src string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	f, err := parser.ParseFile(fset, path, []byte(src), pkgScope)
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", path, err)
	}
	if _, err := types.Check(&types.Config{}, path, fset, []*ast.File{f}, types.NewInfo(), nil); err != nil {
		t.Fatalf("Check(%s): %v", path, err)
	}
	return f
}

// TestEmitFileHelloWorld is end-to-end scenario 1 of section 8: the emitted
// C for `func main() int { print("hi"); return 0; }` must contain `int
// main()` and a call `print("hi");`.
func TestEmitFileHelloWorld(t *testing.T) {
	f := checkSrc(t, "hello.bling", `package (main);
func main() int {
	print("hi");
	return 0;
}`)
	var e emitter.Emitter
	EmitFile(&e, f)
	out := e.String()
	if !strings.Contains(out, "int main()") {
		t.Errorf("output %q does not contain %q", out, "int main()")
	}
	if !strings.Contains(out, `print("hi")`) {
		t.Errorf("output %q does not contain %q", out, `print("hi")`)
	}
}

// TestEmitSelectorThroughPointerArrow is end-to-end scenario 4 of section
// 8: once the checker rewrites a pointer selector's token to ARROW, the
// cemitter renders it as `->`.
func TestEmitSelectorThroughPointerArrow(t *testing.T) {
	f := checkSrc(t, "selector.bling", `package (main);
typedef point struct {
	a int;
};
func f(p *point) int {
	return p.a;
}`)
	var e emitter.Emitter
	fn := f.Decls[1].(*ast.FuncDecl)
	emitDecl(&e, fn)
	out := e.String()
	if !strings.Contains(out, "p->a") {
		t.Errorf("output %q does not contain %q", out, "p->a")
	}
}

// TestEmitIdentMangling checks that an identifier resolving to an Object
// declared in a non-main package scope is mangled `<pkg>$name`, so two
// bling packages emitting a symbol of the same name never collide in the
// single C namespace their output shares.
func TestEmitIdentMangling(t *testing.T) {
	scope := ast.NewScope(nil)
	scope.Pkg = "mathutil"
	obj := ast.NewObject(ast.ObjFunc, "add")
	obj.Scope = scope
	id := &ast.Ident{Name: "add", Obj: obj}

	var e emitter.Emitter
	emitIdent(&e, id)
	if got, want := e.String(), "mathutil$add"; got != want {
		t.Errorf("emitIdent = %q, want %q", got, want)
	}
}

// TestEmitIdentNoManglingInMain checks the converse: an Object scoped to
// "main" is emitted bare.
func TestEmitIdentNoManglingInMain(t *testing.T) {
	scope := ast.NewScope(nil)
	scope.Pkg = "main"
	obj := ast.NewObject(ast.ObjValue, "x")
	obj.Scope = scope
	id := &ast.Ident{Name: "x", Obj: obj}

	var e emitter.Emitter
	emitIdent(&e, id)
	if got, want := e.String(), "x"; got != want {
		t.Errorf("emitIdent = %q, want %q", got, want)
	}
}

// TestEmitSelectorPackageQualified checks that a package-qualified
// selector `pkg.sym` is rewritten `pkg$sym` rather than emitted with its
// original token.
func TestEmitSelectorPackageQualified(t *testing.T) {
	pkgObj := ast.NewObject(ast.ObjPkg, "mathutil")
	pkgIdent := &ast.Ident{Name: "mathutil", Obj: pkgObj}
	sel := &ast.SelectorExpr{
		X:   pkgIdent,
		Tok: token.PERIOD,
		Sel: &ast.Ident{Name: "add"},
	}
	var e emitter.Emitter
	emitSelectorExpr(&e, sel)
	if got, want := e.String(), "mathutil$add"; got != want {
		t.Errorf("emitSelectorExpr = %q, want %q", got, want)
	}
}

// TestEmitFileHasNoPackageLine is a cemitter-specific invariant: C has no
// package concept, so EmitFile never writes a package line, unlike
// printer.PrintFile.
func TestEmitFileHasNoPackageLine(t *testing.T) {
	f := checkSrc(t, "pkgline.bling", `package (main);
func f() int {
	return 0;
}`)
	var e emitter.Emitter
	EmitFile(&e, f)
	if strings.Contains(e.String(), "package") {
		t.Errorf("output %q should not mention package", e.String())
	}
}
