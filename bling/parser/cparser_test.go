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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

func parseC(t *testing.T, src string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	f, err := ParseCFile(fset, "test.h", []byte(src), pkgScope)
	if err != nil {
		t.Fatalf("ParseCFile(%q): %v", src, err)
	}
	return f
}

// declShape is the reduced projection compared structurally below: the
// declaration kind plus its declared name.
type declShape struct {
	Kind string
	Name string
}

func declShapes(t *testing.T, f *ast.File) []declShape {
	t.Helper()
	shapes := make([]declShape, 0, len(f.Decls))
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.TypedefDecl:
			shapes = append(shapes, declShape{"typedef", d.Name.Name})
		case *ast.FuncDecl:
			shapes = append(shapes, declShape{"func", d.Name.Name})
		case *ast.ValueDecl:
			shapes = append(shapes, declShape{"var", d.Name.Name})
		case *ast.PragmaDecl:
			shapes = append(shapes, declShape{"pragma", d.Lit})
		default:
			t.Fatalf("unexpected decl %T", decl)
		}
	}
	return shapes
}

// TestParseCHeaderTypedefDriven exercises the C dialect end to end: C
// declaration order, typedef-driven type-name disambiguation (`point` is
// only a type because the first typedef registered it), storage classes,
// and a function definition with a body.
func TestParseCHeaderTypedefDriven(t *testing.T) {
	f := parseC(t, `typedef struct point {
	int x;
	int y;
} point;
typedef point *pointref;
extern int point_len(const point *p);
static int origin_dist(point p) {
	return p.x + p.y;
}
int counter = 0;
`)
	want := []declShape{
		{"typedef", "point"},
		{"typedef", "pointref"},
		{"func", "point_len"},
		{"func", "origin_dist"},
		{"var", "counter"},
	}
	if diff := cmp.Diff(want, declShapes(t, f)); diff != "" {
		t.Errorf("decl shapes mismatch (-want +got):\n%s", diff)
	}

	proto := f.Decls[2].(*ast.FuncDecl)
	if proto.Body != nil {
		t.Error("point_len is a prototype, want nil Body")
	}
	if _, ok := proto.Type.Params[0].Type.(*ast.StarExpr); !ok {
		t.Errorf("point_len param type = %T, want *ast.StarExpr", proto.Type.Params[0].Type)
	}
	def := f.Decls[3].(*ast.FuncDecl)
	if !def.Static {
		t.Error("origin_dist.Static = false, want true")
	}
	if def.Body == nil {
		t.Fatal("origin_dist.Body = nil, want a block")
	}
}

// TestParseCStructTagDecl checks that a bare `struct tag { ... };`
// declaration records the tag like a typedef, so later `struct tag`
// references resolve.
func TestParseCStructTagDecl(t *testing.T) {
	f := parseC(t, `struct list {
	int head;
};
extern int list_head(struct list *l);
`)
	want := []declShape{
		{"typedef", "list"},
		{"func", "list_head"},
	}
	if diff := cmp.Diff(want, declShapes(t, f)); diff != "" {
		t.Errorf("decl shapes mismatch (-want +got):\n%s", diff)
	}
}

// TestParseCVariadicPrototype checks the `, ...` parameter tail in a C
// prototype is folded into the FuncType's Ellipsis flag.
func TestParseCVariadicPrototype(t *testing.T) {
	f := parseC(t, `extern int printf(const char *fmt, ...);
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	if !fn.Type.Ellipsis {
		t.Error("Ellipsis = false, want true")
	}
	if len(fn.Type.Params) != 1 {
		t.Fatalf("len(params) = %d, want 1", len(fn.Type.Params))
	}
}

// TestPrefixIncRejected is the section 7 error-taxonomy example: a bare
// `++` prefix is an unsupported dialect feature and must fail by name.
func TestPrefixIncRejected(t *testing.T) {
	fset := token.NewFileSet()
	pkgScope := ast.NewScope(types.Universe())
	_, err := ParseCFile(fset, "inc.h", []byte(`int f(int x) {
	++x;
	return x;
}
`), pkgScope)
	if err == nil {
		t.Fatal("expected a parse error for a prefix ++")
	}
	if !strings.Contains(err.Error(), "unsupported dialect feature") {
		t.Errorf("error = %q, want it to name the unsupported dialect feature", err)
	}
}
