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

package types

import (
	"strings"
	"testing"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/parser"
	"foundry.dev/bling/bling/token"
)

func parseSrc(t *testing.T, name, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(Universe())
	f, err := parser.ParseFile(fset, name, []byte(src), pkgScope)
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", name, err)
	}
	return fset, f
}

// TestUnresolvedIdentifierPanics is end-to-end scenario 2 of section 8:
// referencing an undeclared name panics with a positioned error naming the
// identifier.
func TestUnresolvedIdentifierPanics(t *testing.T) {
	fset, f := parseSrc(t, "unresolved.bling", `package (main);
func f() int {
	return x;
}`)
	_, err := Check(&Config{}, "unresolved.bling", fset, []*ast.File{f}, NewInfo(), nil)
	if err == nil {
		t.Fatal("expected a check error for an unresolved identifier")
	}
	msg := err.Error()
	if !strings.Contains(msg, "unresolved: x") {
		t.Errorf("error = %q, want it to contain %q", msg, "unresolved: x")
	}
	if !strings.Contains(msg, ":3:") {
		t.Errorf("error = %q, want a position on line 3", msg)
	}
}

// TestAssignTypeMismatchPanics is end-to-end scenario 3 of section 8: a
// string (i.e. *char) value is not assignable to an int variable, and the
// diagnostic names both types the way they are written in source.
func TestAssignTypeMismatchPanics(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"var initializer", `package (main);
var x int = "s";`},
		{"assign statement", `package (main);
func f() int {
	var p *char;
	var x int;
	x = p;
	return x;
}`},
	}
	for _, c := range cases {
		fset, f := parseSrc(t, "mismatch.bling", c.src)
		_, err := Check(&Config{}, "mismatch.bling", fset, []*ast.File{f}, NewInfo(), nil)
		if err == nil {
			t.Fatalf("%s: expected a check error assigning *char to int", c.name)
		}
		msg := err.Error()
		for _, want := range []string{"not assignable", "int", "*char"} {
			if !strings.Contains(msg, want) {
				t.Errorf("%s: error = %q, want it to contain %q", c.name, msg, want)
			}
		}
	}
}

// TestSelectorThroughPointerRewritesToArrow is end-to-end scenario 4 of
// section 8: a selector whose base resolves to a pointer type is rewritten
// to ARROW by the checker, which the cemitter later renders as `->`.
func TestSelectorThroughPointerRewritesToArrow(t *testing.T) {
	fset, f := parseSrc(t, "selector.bling", `package (main);
typedef point struct {
	a int;
};
func f(p *point) int {
	return p.a;
}`)
	_, err := Check(&Config{}, "selector.bling", fset, []*ast.File{f}, NewInfo(), nil)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	fn := f.Decls[1].(*ast.FuncDecl)
	ret := fn.Body.List[0].(*ast.ReturnStmt)
	sel := ret.X.(*ast.SelectorExpr)
	if sel.Tok != token.ARROW {
		t.Errorf("sel.Tok = %v, want token.ARROW", sel.Tok)
	}
	if sel.Sel.Obj == nil {
		t.Error("sel.Sel.Obj = nil, want the struct field's Object")
	}
}

// TestCModeArrowThroughTypedefPointer checks the C-dialect selector rule:
// a `->` written in the source is accepted under Config.CMode and reaches
// through a typedef'd pointer base that the checker's own pointer-rewrite
// test cannot see.
func TestCModeArrowThroughTypedefPointer(t *testing.T) {
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(Universe())
	f, err := parser.ParseCFile(fset, "point.h", []byte(cModeArrowSrc), pkgScope)
	if err != nil {
		t.Fatalf("ParseCFile: %v", err)
	}
	if _, err := Check(&Config{CMode: true}, "point.h", fset, []*ast.File{f}, NewInfo(), nil); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	fn := f.Decls[2].(*ast.FuncDecl)
	sel := fn.Body.List[0].(*ast.ReturnStmt).X.(*ast.SelectorExpr)
	if sel.Tok != token.ARROW {
		t.Errorf("sel.Tok = %v, want token.ARROW", sel.Tok)
	}
	if sel.Sel.Obj == nil {
		t.Error("sel.Sel.Obj = nil, want the struct field's Object")
	}
}

// TestArrowSelectorRejectedOutsideCMode is the converse: the same file
// checked without CMode fails on the source-written `->`.
func TestArrowSelectorRejectedOutsideCMode(t *testing.T) {
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(Universe())
	f, err := parser.ParseCFile(fset, "point.h", []byte(cModeArrowSrc), pkgScope)
	if err != nil {
		t.Fatalf("ParseCFile: %v", err)
	}
	_, err = Check(&Config{}, "point.h", fset, []*ast.File{f}, NewInfo(), nil)
	if err == nil {
		t.Fatal("expected a check error for -> outside C mode")
	}
	if !strings.Contains(err.Error(), "outside C mode") {
		t.Errorf("error = %q, want it to name the C-mode restriction", err)
	}
}

const cModeArrowSrc = `typedef struct point {
	int x;
} point;
typedef point *pointref;
int getx(pointref p) {
	return p->x;
}
`

// TestImportCycleShortCircuits is end-to-end scenario 5 of section 8: a
// package that (transitively) imports itself terminates instead of
// recursing forever, because CheckFiles registers the path in info.imports
// before walking its own imports.
func TestImportCycleShortCircuits(t *testing.T) {
	fset := token.NewFileSet()
	info := NewInfo()

	srcA := `package (a);
import ("b");
func fa() int {
	return 0;
}`
	srcB := `package (b);
import ("a");
func fb() int {
	return 0;
}`

	var load Loader
	parsed := map[string]string{"a": srcA, "b": srcB}
	load = func(path string) ([]*ast.File, error) {
		pkgScope := ast.NewScope(Universe())
		f, err := parser.ParseFile(fset, path+".bling", []byte(parsed[path]), pkgScope)
		if err != nil {
			return nil, err
		}
		return []*ast.File{f}, nil
	}

	files, err := load("a")
	if err != nil {
		t.Fatalf("load(a): %v", err)
	}
	pkg := CheckFiles(&Config{}, "a", fset, files, info, load)
	if pkg == nil {
		t.Fatal("CheckFiles(a) returned nil")
	}
	if pkg.Path != "a" {
		t.Errorf("pkg.Path = %q, want %q", pkg.Path, "a")
	}
	if info.Lookup("b") == nil {
		t.Error("the cyclic import of b was never registered in info")
	}
}

// TestEveryIdentifierResolvedAfterCheck is a section 8 universal invariant:
// once a file has been checked without error, every Ident node in add's
// signature and body (type names, the declared local, and every use) has a
// non-nil Obj.
func TestEveryIdentifierResolvedAfterCheck(t *testing.T) {
	fset, f := parseSrc(t, "resolved.bling", `package (main);
typedef counter int;
func add(a counter, b counter) counter {
	var sum counter = a + b;
	return sum;
}`)
	_, err := Check(&Config{}, "resolved.bling", fset, []*ast.File{f}, NewInfo(), nil)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	fn := f.Decls[1].(*ast.FuncDecl)
	for _, param := range fn.Type.Params {
		if id, ok := param.Type.(*ast.Ident); ok && id.Obj == nil {
			t.Errorf("param %s's type ident has nil Obj", param.Name.Name)
		}
	}
	if id, ok := fn.Type.Result.(*ast.Ident); !ok || id.Obj == nil {
		t.Error("add's result type ident has nil Obj")
	}
	decl := fn.Body.List[0].(*ast.DeclStmt).Decl.(*ast.ValueDecl)
	if decl.Name.Obj == nil {
		t.Error("sum's declared Ident has nil Obj")
	}
	if id, ok := decl.Type.(*ast.Ident); !ok || id.Obj == nil {
		t.Error("sum's type ident has nil Obj")
	}
	bin := decl.Value.(*ast.BinaryExpr)
	for _, operand := range []ast.Expr{bin.X, bin.Y} {
		if id, ok := operand.(*ast.Ident); !ok || id.Obj == nil {
			t.Errorf("operand %T of a + b is not a resolved Ident", operand)
		}
	}
	ret := fn.Body.List[1].(*ast.ReturnStmt)
	if id, ok := ret.X.(*ast.Ident); !ok || id.Obj == nil {
		t.Error("returned sum Ident has nil Obj")
	}
}

// TestAreIdenticalAndAssignableReflexive checks the predicates' universal
// invariants: every type is identical and assignable to itself, and every
// pointer type is mutually assignable with voidptr.
func TestAreIdenticalAndAssignableReflexive(t *testing.T) {
	fset, f := parseSrc(t, "reflexive.bling", `package (main);
typedef point struct {
	x int;
};
func f() int {
	return 0;
}`)
	pkg, err := Check(&Config{}, "reflexive.bling", fset, []*ast.File{f}, NewInfo(), nil)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	c := &checker{conf: &Config{}, fset: fset, info: NewInfo(), pkg: pkg}

	intType := c.lookupIdent("int")
	if !areIdentical(intType, intType) {
		t.Error("areIdentical(int, int) = false, want true")
	}
	if !areAssignable(c, intType, intType) {
		t.Error("areAssignable(int, int) = false, want true")
	}

	pointType := c.lookupIdent("point")
	ptrType := makePtr(pointType)
	voidPtr := c.lookupIdent("voidptr")
	if !areAssignable(c, voidPtr, ptrType) {
		t.Error("areAssignable(voidptr, *point) = false, want true")
	}
	if !areAssignable(c, ptrType, voidPtr) {
		t.Error("areAssignable(*point, voidptr) = false, want true")
	}
}
