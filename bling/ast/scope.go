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

// This file implements Scope and Object, the name-resolution machinery
// shared by the parser (which opens the package scope and inserts typedef
// names as it encounters them) and the checker (which opens a fresh scope
// per block and resolves every identifier against the chain).
package ast

import (
	"fmt"
	"strings"
)

// ObjKind categorizes the kind of entity an Object names.
type ObjKind int

const (
	ObjBad ObjKind = iota
	ObjPkg
	ObjType
	ObjFunc
	ObjConst
	ObjValue
)

func (k ObjKind) String() string {
	switch k {
	case ObjPkg:
		return "package"
	case ObjType:
		return "type"
	case ObjFunc:
		return "function"
	case ObjConst:
		return "constant"
	case ObjValue:
		return "value"
	}
	return "bad"
}

// An Object is the scope's record for a named entity: a type, function,
// constant, value, or imported package. The Object is owned by the Scope
// that inserted it; Decl is a non-owning back-reference to the declaring
// node (nil for predeclared universe entries that have no source syntax).
type Object struct {
	Kind  ObjKind
	Name  string
	Decl  Node
	Scope *Scope // the scope that inserted this Object; nil for universe entries

	// Data holds kind-specific side information. For ObjPkg it is the
	// imported package's *Scope; for ObjType backed by a struct it may be
	// unused. It exists so the checker does not need a parallel map keyed
	// by Object.
	Data interface{}
}

// NewObject returns a new Object of the given kind and name with no
// declaring node. Callers fill in Decl once the declaration is available.
func NewObject(kind ObjKind, name string) *Object {
	return &Object{Kind: kind, Name: name}
}

// A Scope maintains the set of named objects declared within it and a link
// to the immediately surrounding scope. The universe scope has a nil outer
// scope. A scope additionally records the package name it belongs to, which
// the emitter consults when mangling symbol names; Pkg is set only on
// package scopes, never on the block, struct-field, and loop scopes nested
// inside them, so that only package-level symbols mangle (a local or a
// struct field stays bare in the emitted C).
type Scope struct {
	Outer   *Scope
	Pkg     string
	objects map[string]*Object
}

// NewScope creates a new scope nested within outer.
func NewScope(outer *Scope) *Scope {
	return &Scope{Outer: outer, objects: make(map[string]*Object, 4)}
}

// Insert attempts to insert obj into s. If an object with the same name is
// already present, Insert leaves s unchanged and returns the existing
// object; otherwise it inserts obj and returns nil. Callers use a non-nil
// return to detect and report a redeclaration.
func (s *Scope) Insert(obj *Object) *Object {
	if alt, present := s.objects[obj.Name]; present {
		return alt
	}
	s.objects[obj.Name] = obj
	return nil
}

// Lookup returns the object bound to name in this scope only (no outer
// chain traversal), or nil if none is bound.
func (s *Scope) Lookup(name string) *Object {
	return s.objects[name]
}

// LookupParent walks the scope chain from s outward to the universe,
// returning the first object bound to name, or nil if none is found.
func (s *Scope) LookupParent(name string) *Object {
	for t := s; t != nil; t = t.Outer {
		if obj := t.objects[name]; obj != nil {
			return obj
		}
	}
	return nil
}

// Names returns the names bound directly in s in unspecified order; it is
// used only for debugging.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	return names
}

func (s *Scope) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scope %p {", s)
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "\n\t%s", name)
	}
	fmt.Fprint(&b, "\n}")
	return b.String()
}

// A Package is a named, scope-owning compilation unit: a directory of
// source files sharing one scope and declared with the same package name.
type Package struct {
	Path    string
	Name    string
	Scope   *Scope
	Imports []*Package
	Files   []*File
}
