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

// Package types implements bling's two-pass package-level type checker: it
// resolves identifiers against a scope chain, recursively checks imported
// packages, and validates type compatibility across every expression and
// statement. Failures panic with a positioned *errors.Error; there is no
// recovery inside a check, matching the scanner and parser.
package types

import (
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/errors"
	"foundry.dev/bling/bling/token"
)

// Config controls optional checker behavior.
type Config struct {
	// Strict rejects constructs the teacher compiler tolerated loosely
	// (currently unused but reserved so callers can request stricter
	// diagnostics without an API break).
	Strict bool

	// CMode checks a file parsed by parser.ParseCFile. Selectors use ARROW
	// more liberally there: a `->` written in the source is accepted (and
	// reaches through a typedef'd pointer base) instead of being reserved
	// for the checker's own pointer-selector rewrite.
	CMode bool

	// IgnoreFuncBodies skips checking every function body, used by editor
	// tooling that only needs package-level signatures resolved quickly.
	IgnoreFuncBodies bool
}

// Package is the result of checking one import path: its scope (containing
// every top-level declaration across its files), its direct imports in
// import order, and the files it was built from.
type Package struct {
	Path    string
	Name    string
	Scope   *ast.Scope
	Imports []*Package
	Files   []*ast.File
}

// Info threads the process-wide import registry through a recursive check,
// so that an import cycle or a diamond dependency resolves each path's
// Package exactly once.
type Info struct {
	imports map[string]*Package
}

// NewInfo returns an empty import registry.
func NewInfo() *Info {
	return &Info{imports: make(map[string]*Package)}
}

// Lookup returns the already-checked package for path, or nil if path has
// not been checked yet in this Info.
func (info *Info) Lookup(path string) *Package {
	return info.imports[path]
}

// checker carries the state threaded through one recursive package check.
type checker struct {
	conf *Config
	fset *token.FileSet
	info *Info
	pkg  *Package
	load Loader

	// result is the enclosing function's declared result type while
	// checking its body, used to validate return statements. nil outside a
	// function body or inside a void function.
	result ast.Expr
}

func (c *checker) errorf(pos token.Pos, format string, args ...interface{}) {
	errors.Newf(c.fset, pos, format, args...)
}

func (c *checker) openScope() {
	c.pkg.Scope = ast.NewScope(c.pkg.Scope)
}

func (c *checker) closeScope() {
	c.pkg.Scope = c.pkg.Scope.Outer
}

// resolve binds ident against the scope chain starting at s, erroring if it
// is already resolved (a compiler bug) or cannot be found.
func (c *checker) resolve(s *ast.Scope, ident *ast.Ident) {
	if ident.Obj != nil {
		c.errorf(ident.Pos(), "already resolved: %s", ident.Name)
	}
	obj := s.LookupParent(ident.Name)
	if obj == nil {
		c.errorf(ident.Pos(), "unresolved: %s", ident.Name)
	}
	ident.Obj = obj
}

// declare inserts a new Object for ident into scope, erroring on
// redeclaration. decl is the owning declaration node; data is optional
// kind-specific payload (e.g. an imported package's scope).
func (c *checker) declare(decl ast.Decl, data interface{}, scope *ast.Scope, kind ast.ObjKind, ident *ast.Ident) {
	if ident.Obj != nil {
		c.errorf(decl.Pos(), "already declared: %s", ident.Name)
	}
	obj := ast.NewObject(kind, ident.Name)
	obj.Decl = decl
	obj.Data = data
	obj.Scope = scope
	ident.Obj = obj
	if alt := scope.Insert(obj); alt != nil {
		c.errorf(decl.Pos(), "incompatible redefinition of `%s`", ident.Name)
	}
}

// predeclareType binds a TypedefDecl's name into scope, adopting the
// provisional ObjType the parser inserted during parseTypedefDecl (so that
// later uses of the name in the same or a subsequently parsed file could
// already tell it apart from an ordinary identifier) rather than treating
// that provisional entry as a redeclaration conflict.
func (c *checker) predeclareType(decl *ast.TypedefDecl, scope *ast.Scope) {
	if existing := scope.Lookup(decl.Name.Name); existing != nil && existing.Kind == ast.ObjType {
		existing.Decl = decl
		existing.Scope = scope
		decl.Name.Obj = existing
		return
	}
	c.declare(decl, nil, scope, ast.ObjType, decl.Name)
}

// Loader reads and parses every source file belonging to an import path,
// returning them with File.Scope already bound to one *ast.Scope shared
// across the whole package (the same requirement parser.ParseFile places on
// a multi-file caller). The checker calls it only to resolve a transitive
// import, never for the top-level path being checked: locating source
// files on disk belongs to the build driver (see cmd/blingc), which owns
// the filesystem walk and supplies the Loader.
type Loader func(path string) ([]*ast.File, error)

// CheckFiles checks every file of one package (sharing a single package
// scope) and returns its Package, reusing info.imports to short-circuit a
// path already checked — including the recursive case of an import cycle,
// where the path is registered before its own imports are walked. path
// identifies the package for the registry and for diagnostics; it need not
// be a filesystem path. load resolves a transitive import not already
// present in info; it may be nil if every import is pre-populated in info.
func CheckFiles(conf *Config, path string, fset *token.FileSet, files []*ast.File, info *Info, load Loader) *Package {
	if info == nil {
		info = NewInfo()
	}
	if pkg := info.imports[path]; pkg != nil {
		return pkg
	}
	name := ""
	var scope *ast.Scope
	if len(files) > 0 {
		scope = files[0].Scope
		if files[0].Name != nil {
			name = files[0].Name.Name
		}
	}
	if scope != nil && scope.Pkg == "" {
		scope.Pkg = name
	}
	pkg := &Package{Path: path, Name: name, Scope: scope}
	c := &checker{conf: conf, fset: fset, info: info, pkg: pkg, load: load}
	info.imports[path] = pkg
	for _, file := range files {
		c.checkFile(file)
	}
	return pkg
}

// CheckFile is CheckFiles for a single already-parsed file with no loader
// configured; any import it has must already be present in info.
func CheckFile(conf *Config, path string, fset *token.FileSet, file *ast.File, info *Info) *Package {
	return CheckFiles(conf, path, fset, []*ast.File{file}, info, nil)
}

// Check checks every already-parsed file of path, returning its Package. It
// recovers a checker panic into a returned error, the same boundary
// parser.ParseFile provides for syntax errors.
func Check(conf *Config, path string, fset *token.FileSet, files []*ast.File, info *Info, load Loader) (pkg *Package, err error) {
	err = runChecked(func() {
		pkg = CheckFiles(conf, path, fset, files, info, load)
	})
	return pkg, err
}

// runChecked recovers a panicked *errors.Error from fn and returns it as an
// error, matching the parser's ParseFile/ParseCFile recovery boundary.
// Any other panic value is re-raised: it indicates a checker bug, not a
// source error.
func runChecked(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
