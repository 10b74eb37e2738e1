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

package parser

import (
	"testing"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	f, err := ParseFile(fset, "test.bling", []byte(src), pkgScope)
	if err != nil {
		t.Fatalf("ParseFile(%q): %v", src, err)
	}
	return f
}

// TestHelloWorld is end-to-end scenario 1 of section 8: after parsing,
// the file holds one func decl named main.
func TestHelloWorld(t *testing.T) {
	src := `package (main);
func main() int {
	print("hi");
	return 0;
}`
	f := parse(t, src)
	if f.Name == nil || f.Name.Name != "main" {
		t.Fatalf("file package name = %v, want main", f.Name)
	}
	if len(f.Decls) != 1 {
		t.Fatalf("len(f.Decls) = %d, want 1", len(f.Decls))
	}
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("f.Decls[0] = %T, want *ast.FuncDecl", f.Decls[0])
	}
	if fn.Name.Name != "main" {
		t.Errorf("fn.Name.Name = %q, want %q", fn.Name.Name, "main")
	}
	result, ok := fn.Type.Result.(*ast.Ident)
	if !ok || result.Name != "int" {
		t.Errorf("fn.Type.Result = %#v, want Ident(int)", fn.Type.Result)
	}
	if len(fn.Body.List) != 2 {
		t.Fatalf("len(fn.Body.List) = %d, want 2", len(fn.Body.List))
	}
	call, ok := fn.Body.List[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("fn.Body.List[0] = %T, want *ast.ExprStmt", fn.Body.List[0])
	}
	if _, ok := call.X.(*ast.CallExpr); !ok {
		t.Errorf("call.X = %T, want *ast.CallExpr", call.X)
	}
	if _, ok := fn.Body.List[1].(*ast.ReturnStmt); !ok {
		t.Errorf("fn.Body.List[1] = %T, want *ast.ReturnStmt", fn.Body.List[1])
	}
}

// TestTopLevelDeclsWithinFileBounds checks that every top-level
// declaration's Pos lies within the parsed file's byte range, across a
// file exercising most declaration and statement forms. Nested nodes are
// not visited.
func TestTopLevelDeclsWithinFileBounds(t *testing.T) {
	src := `package (main);
typedef point struct {
	x int;
	y int;
};
var g int = 1;
func add(a int, b int) int {
	if (a > b) {
		return a;
	}
	for (var i int = 0; i < b; i++) {
		a = a + i;
	}
	return a + b;
}`
	f := parse(t, src)
	size := len(src)
	var check func(pos token.Pos)
	check = func(pos token.Pos) {
		if !pos.IsValid() {
			return
		}
		if int(pos) < 1 || int(pos) > size+1 {
			t.Errorf("position %d out of file bounds [1, %d]", pos, size+1)
		}
	}
	for _, decl := range f.Decls {
		check(decl.Pos())
	}
}

func TestTypedefNameDisambiguatesSubsequentUse(t *testing.T) {
	src := `package (main);
typedef counter int;
func f(c counter) counter {
	return c;
}`
	f := parse(t, src)
	fn := f.Decls[1].(*ast.FuncDecl)
	if len(fn.Type.Params) != 1 {
		t.Fatalf("len(params) = %d, want 1", len(fn.Type.Params))
	}
	typ, ok := fn.Type.Params[0].Type.(*ast.Ident)
	if !ok || typ.Name != "counter" {
		t.Errorf("param type = %#v, want Ident(counter)", fn.Type.Params[0].Type)
	}
}

func TestVariadicParam(t *testing.T) {
	src := `package (main);
func f(fmt *char, ...) int {
	return 0;
}`
	f := parse(t, src)
	fn := f.Decls[0].(*ast.FuncDecl)
	if !fn.Type.Ellipsis {
		t.Error("Ellipsis = false, want true")
	}
	if len(fn.Type.Params) != 1 {
		t.Fatalf("len(params) = %d, want 1 (the trailing ellipsis marker is stripped)", len(fn.Type.Params))
	}
}

func TestUnterminatedStatementAtEOFPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic for a malformed declaration")
		}
	}()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	var p parser
	file := fset.AddFile("bad.bling", 3)
	file.SetContent([]byte("int"))
	p.init(fset, file, []byte("int"), pkgScope, 0)
	p.parseFile("bad.bling")
}
