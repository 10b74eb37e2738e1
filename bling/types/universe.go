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
	"sync"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/token"
)

// nativeInfo is a set of bit flags describing a predeclared native type.
type nativeInfo uint

const (
	infoBoolean nativeInfo = 1 << iota
	infoInteger
	infoUnsigned
	infoFloat
)

// predeclaredType is one row of the native-type table installed into the
// universe scope.
type predeclaredType struct {
	name string
	info nativeInfo
}

var predeclaredTypes = []predeclaredType{
	{"void", 0},
	{"bool", infoBoolean},
	{"char", infoInteger},
	{"int", infoInteger},
	{"i8", infoInteger},
	{"i16", infoInteger},
	{"i32", infoInteger},
	{"i64", infoInteger},
	{"uint", infoInteger | infoUnsigned},
	{"u8", infoInteger | infoUnsigned},
	{"u16", infoInteger | infoUnsigned},
	{"u32", infoInteger | infoUnsigned},
	{"u64", infoInteger | infoUnsigned},
	{"uintptr", infoInteger | infoUnsigned},
	{"float", infoFloat},
	{"double", infoFloat},
	{"voidptr", 0},
}

// builtinKind classifies whether a predeclared builtin is usable as an
// expression (it yields a value) or only as a statement.
type builtinKind int

const (
	builtinStatement builtinKind = iota
	builtinExpression
)

// predeclaredFunc is one row of the builtin-function table.
type predeclaredFunc struct {
	name     string
	nargs    int
	variadic bool
	kind     builtinKind
}

var predeclaredFuncs = []predeclaredFunc{
	{"assert", 1, false, builtinStatement},
	{"len", 1, false, builtinExpression},
	{"mapmake", 1, false, builtinExpression},
	{"panic", 1, true, builtinStatement},
	{"print", 1, true, builtinStatement},
}

// predeclaredConst is one row of the predeclared-constant table.
type predeclaredConst struct {
	name  string
	typ   string
	value string
}

var predeclaredConsts = []predeclaredConst{
	{"NULL", "voidptr", "0"},
	{"false", "bool", "0"},
	{"true", "bool", "1"},
}

var (
	universeOnce  sync.Once
	universeScope *ast.Scope
)

// Universe returns the root scope pre-populated with bling's predeclared
// types, constants, and builtin functions. It is built once per process and
// shared by every package check, mirroring the teacher compiler's
// process-lifetime universe singleton.
func Universe() *ast.Scope {
	universeOnce.Do(func() {
		universeScope = ast.NewScope(nil)
		defPredeclaredTypes(universeScope)
		defPredeclaredFuncs(universeScope)
		defPredeclaredConsts(universeScope)
	})
	return universeScope
}

func defPredeclaredTypes(scope *ast.Scope) {
	for _, p := range predeclaredTypes {
		name := &ast.Ident{Name: p.name}
		native := &ast.NativeType{Name: p.name}
		decl := &ast.TypedefDecl{Name: name, Type: native}
		obj := ast.NewObject(ast.ObjType, p.name)
		obj.Decl = decl
		obj.Data = p.info
		obj.Scope = scope
		name.Obj = obj
		scope.Insert(obj)
	}
}

func defPredeclaredFuncs(scope *ast.Scope) {
	for _, f := range predeclaredFuncs {
		name := &ast.Ident{Name: f.name}
		builtin := &ast.BuiltinType{
			Name:     f.name,
			Nargs:    f.nargs,
			Variadic: f.variadic,
			IsExpr:   f.kind == builtinExpression,
		}
		decl := &ast.FuncDecl{Name: name, Type: &ast.FuncType{Result: builtin}}
		obj := ast.NewObject(ast.ObjFunc, f.name)
		obj.Decl = decl
		obj.Scope = scope
		name.Obj = obj
		scope.Insert(obj)
	}
}

func defPredeclaredConsts(scope *ast.Scope) {
	for _, k := range predeclaredConsts {
		name := &ast.Ident{Name: k.name}
		typ := &ast.Ident{Name: k.typ}
		decl := &ast.ValueDecl{
			Tok:   token.CONST,
			Name:  name,
			Type:  typ,
			Value: &ast.BasicLit{Kind: token.INT, Value: k.value},
		}
		obj := ast.NewObject(ast.ObjConst, k.name)
		obj.Decl = decl
		obj.Scope = scope
		name.Obj = obj
		scope.Insert(obj)
	}
}

// nativeInfoOf returns the native-type info flags for a universe type
// object, or 0 if obj is nil or not a native type.
func nativeInfoOf(obj *ast.Object) nativeInfo {
	if obj == nil {
		return 0
	}
	info, _ := obj.Data.(nativeInfo)
	return info
}
