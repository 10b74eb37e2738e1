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

package ast

import "testing"

func TestScopeInsertIdempotent(t *testing.T) {
	s := NewScope(nil)
	first := NewObject(ObjValue, "x")
	if alt := s.Insert(first); alt != nil {
		t.Fatalf("first insert returned %v, want nil", alt)
	}
	second := NewObject(ObjValue, "x")
	alt := s.Insert(second)
	if alt != first {
		t.Fatalf("second insert returned %v, want the original object %v", alt, first)
	}
	if got := s.Lookup("x"); got != first {
		t.Fatalf("Lookup(x) = %v, want original object %v", got, first)
	}
}

func TestScopeLookupShallowVsDeep(t *testing.T) {
	outer := NewScope(nil)
	outer.Insert(NewObject(ObjType, "T"))
	inner := NewScope(outer)
	inner.Insert(NewObject(ObjValue, "v"))

	if inner.Lookup("T") != nil {
		t.Error("Lookup should not see outer scope's objects")
	}
	if inner.LookupParent("T") == nil {
		t.Error("LookupParent should walk the outer chain and find T")
	}
	if inner.LookupParent("missing") != nil {
		t.Error("LookupParent should return nil for a name bound nowhere in the chain")
	}
}

// TestNewScopeDoesNotInheritPkg pins down the mangling contract: only the
// package scope itself carries a package name. A block or field scope
// nested inside it stays unnamed, so the objects it owns (locals, params,
// struct fields) are never mangled by the C emitter.
func TestNewScopeDoesNotInheritPkg(t *testing.T) {
	pkgScope := NewScope(nil)
	pkgScope.Pkg = "mypkg"
	block := NewScope(pkgScope)
	if block.Pkg != "" {
		t.Errorf("block.Pkg = %q, want empty", block.Pkg)
	}

	universe := NewScope(nil)
	if universe.Pkg != "" {
		t.Errorf("universe.Pkg = %q, want empty", universe.Pkg)
	}
}

func TestObjKindString(t *testing.T) {
	cases := map[ObjKind]string{
		ObjPkg:   "package",
		ObjType:  "type",
		ObjFunc:  "function",
		ObjConst: "constant",
		ObjValue: "value",
		ObjBad:   "bad",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
