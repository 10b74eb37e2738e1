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

// Package cemitter tree-walks a checked AST and serializes it as C source,
// splitting the output into a header (typedefs and prototypes) and a body
// (definitions and initializers) the way the build driver links them.
//
// Every identifier that resolves to an Object declared in a non-main
// package scope is mangled with a `<pkg>$` prefix, and a package-qualified
// selector `pkg.sym` is rewritten `pkg$sym`, so that two bling packages
// emitting a symbol of the same name never collide in the single C
// namespace their output shares.
package cemitter

import (
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/emitter"
	"foundry.dev/bling/bling/errors"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

func emitExpr(e *emitter.Emitter, expr ast.Expr) {
	if expr == nil {
		errors.Bug("cemitter: emitExpr called with nil expr")
	}
	switch x := expr.(type) {
	case *ast.BasicLit:
		e.EmitString(x.Value)

	case *ast.BinaryExpr:
		emitExpr(e, x.X)
		e.EmitSpace()
		e.EmitToken(x.Op)
		e.EmitSpace()
		emitExpr(e, x.Y)

	case *ast.CallExpr:
		emitExpr(e, x.Fun)
		e.EmitToken(token.LPAREN)
		for i, arg := range x.Args {
			if i > 0 {
				e.EmitToken(token.COMMA)
				e.EmitSpace()
			}
			emitExpr(e, arg)
		}
		e.EmitToken(token.RPAREN)

	case *ast.CastExpr:
		e.EmitToken(token.LPAREN)
		emitType(e, x.Type, nil)
		e.EmitToken(token.RPAREN)
		emitExpr(e, x.Expr)

	case *ast.TernaryExpr:
		emitExpr(e, x.Cond)
		e.EmitSpace()
		e.EmitToken(token.QUESTION)
		e.EmitSpace()
		emitExpr(e, x.Consequence)
		e.EmitSpace()
		e.EmitToken(token.COLON)
		e.EmitSpace()
		emitExpr(e, x.Alternative)

	case *ast.CompositeLit:
		e.EmitToken(token.LBRACE)
		e.EmitNewline()
		e.IndentIn()
		for _, elt := range x.Elts {
			e.EmitTabs()
			emitExpr(e, elt)
			e.EmitToken(token.COMMA)
			e.EmitNewline()
		}
		e.IndentOut()
		e.EmitTabs()
		e.EmitToken(token.RBRACE)

	case *ast.Ident:
		emitIdent(e, x)

	case *ast.IndexExpr:
		emitExpr(e, x.X)
		e.EmitToken(token.LBRACK)
		emitExpr(e, x.Index)
		e.EmitToken(token.RBRACK)

	case *ast.KeyValueExpr:
		if x.IsArray {
			e.EmitToken(token.LBRACK)
			emitExpr(e, x.Key)
			e.EmitToken(token.RBRACK)
		} else {
			e.EmitToken(token.PERIOD)
			emitExpr(e, x.Key)
		}
		e.EmitSpace()
		e.EmitToken(token.ASSIGN)
		e.EmitSpace()
		emitExpr(e, x.Value)

	case *ast.ParenExpr:
		e.EmitToken(token.LPAREN)
		emitExpr(e, x.X)
		e.EmitToken(token.RPAREN)

	case *ast.SelectorExpr:
		emitSelectorExpr(e, x)

	case *ast.SizeofExpr:
		e.EmitToken(token.SIZEOF)
		e.EmitToken(token.LPAREN)
		emitType(e, x.X, nil)
		e.EmitToken(token.RPAREN)

	case *ast.StarExpr:
		e.EmitToken(token.MUL)
		emitExpr(e, x.X)

	case *ast.UnaryExpr:
		e.EmitToken(x.Op)
		emitExpr(e, x.X)

	default:
		errors.Bug("cemitter: unknown expr %T", expr)
	}
}

// emitIdent writes name, prefixed with `<pkg>$` when it resolves to an
// Object whose scope belongs to a package other than main.
func emitIdent(e *emitter.Emitter, id *ast.Ident) {
	if id.Obj != nil && id.Obj.Scope != nil {
		if pkg := id.Obj.Scope.Pkg; pkg != "" && pkg != "main" {
			e.EmitString(pkg)
			e.EmitString("$")
		}
	}
	e.EmitString(id.Name)
}

// emitSelectorExpr special-cases a package-qualified reference (`pkg.sym`,
// where X resolves to an ObjPkg) by rewriting it `pkg$sym` rather than
// emitting X.Tok; an ordinary struct/union selector emits its token as-is
// (PERIOD, or ARROW once the checker has rewritten it for a pointer base).
func emitSelectorExpr(e *emitter.Emitter, x *ast.SelectorExpr) {
	if id, ok := x.X.(*ast.Ident); ok && id.Obj != nil && id.Obj.Kind == ast.ObjPkg {
		e.EmitString(id.Name)
		e.EmitString("$")
		e.EmitString(x.Sel.Name)
		return
	}
	emitExpr(e, x.X)
	e.EmitToken(x.Tok)
	emitExpr(e, x.Sel)
}

func emitStmt(e *emitter.Emitter, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		emitExpr(e, s.X)
		e.EmitSpace()
		e.EmitToken(s.Op)
		e.EmitSpace()
		emitExpr(e, s.Y)
		e.EmitToken(token.SEMICOLON)

	case *ast.BlockStmt:
		e.EmitToken(token.LBRACE)
		e.EmitNewline()
		e.IndentIn()
		for _, sub := range s.List {
			if _, ok := sub.(*ast.LabeledStmt); !ok {
				e.EmitTabs()
			}
			emitStmt(e, sub)
			e.EmitNewline()
		}
		e.IndentOut()
		e.EmitTabs()
		e.EmitToken(token.RBRACE)

	case *ast.CaseClause:
		if len(s.Exprs) > 0 {
			for i, expr := range s.Exprs {
				if i > 0 {
					e.EmitToken(token.COLON)
					e.EmitNewline()
					e.EmitTabs()
				}
				e.EmitToken(token.CASE)
				e.EmitSpace()
				emitExpr(e, expr)
			}
		} else {
			e.EmitToken(token.DEFAULT)
		}
		e.EmitToken(token.COLON)
		e.EmitNewline()
		e.IndentIn()
		for _, sub := range s.Body {
			e.EmitTabs()
			emitStmt(e, sub)
			e.EmitNewline()
		}
		e.IndentOut()

	case *ast.DeclStmt:
		emitDecl(e, s.Decl)

	case *ast.EmptyStmt:
		e.EmitToken(token.SEMICOLON)

	case *ast.ExprStmt:
		emitExpr(e, s.X)
		e.EmitToken(token.SEMICOLON)

	case *ast.IfStmt:
		e.EmitToken(token.IF)
		e.EmitSpace()
		e.EmitToken(token.LPAREN)
		emitExpr(e, s.Cond)
		e.EmitToken(token.RPAREN)
		e.EmitSpace()
		emitStmt(e, s.Body)
		if s.Else != nil {
			e.EmitSpace()
			e.EmitToken(token.ELSE)
			e.EmitSpace()
			emitStmt(e, s.Else)
		}

	case *ast.IterStmt:
		emitIterStmt(e, s)

	case *ast.JumpStmt:
		e.EmitToken(s.Tok)
		if s.Label != nil {
			e.EmitSpace()
			emitExpr(e, s.Label)
		}
		e.EmitToken(token.SEMICOLON)

	case *ast.LabeledStmt:
		emitExpr(e, s.Label)
		e.EmitToken(token.COLON)
		e.EmitNewline()
		e.EmitTabs()
		emitStmt(e, s.Stmt)

	case *ast.PostfixStmt:
		emitExpr(e, s.X)
		e.EmitToken(s.Op)
		e.EmitToken(token.SEMICOLON)

	case *ast.ReturnStmt:
		e.EmitToken(token.RETURN)
		if s.X != nil {
			e.EmitSpace()
			emitExpr(e, s.X)
		}
		e.EmitToken(token.SEMICOLON)

	case *ast.SwitchStmt:
		e.EmitToken(token.SWITCH)
		e.EmitSpace()
		e.EmitToken(token.LPAREN)
		emitExpr(e, s.Tag)
		e.EmitToken(token.RPAREN)
		e.EmitSpace()
		e.EmitToken(token.LBRACE)
		e.EmitNewline()
		for _, clause := range s.Body {
			e.EmitTabs()
			emitStmt(e, clause)
		}
		e.EmitTabs()
		e.EmitToken(token.RBRACE)

	default:
		errors.Bug("cemitter: unknown stmt %T", stmt)
	}
}

// emitIterStmt emits both for and while forms; IterWhile has nil Init/Post
// so the for-only clauses below are skipped for it, collapsing to
// `while (cond) body`.
func emitIterStmt(e *emitter.Emitter, s *ast.IterStmt) {
	if s.Kind == ast.IterFor {
		e.EmitToken(token.FOR)
	} else {
		e.EmitToken(token.WHILE)
	}
	e.EmitSpace()
	e.EmitToken(token.LPAREN)
	if s.Kind == ast.IterFor {
		if s.Init != nil {
			emitStmt(e, s.Init)
			e.EmitSpace()
		} else {
			e.EmitToken(token.SEMICOLON)
			e.EmitSpace()
		}
	}
	if s.Cond != nil {
		emitExpr(e, s.Cond)
	}
	if s.Kind == ast.IterFor {
		e.EmitToken(token.SEMICOLON)
		e.EmitSpace()
		if s.Post != nil {
			e.SetSkipSemi(true)
			emitStmt(e, s.Post)
			e.SetSkipSemi(false)
		}
	}
	e.EmitToken(token.RPAREN)
	e.EmitSpace()
	emitStmt(e, s.Body)
}

// emitType reconstructs C's declarator-hugs-the-name syntax: for ordinary
// types the name trails the type, but for arrays and pointer-to-function it
// must be threaded inside the brackets/parens, so name is carried down
// through the recursive calls rather than appended once at the end. name is
// nil when emitting a bare type (a cast operand, a sizeof operand).
func emitType(e *emitter.Emitter, typ ast.Expr, name ast.Expr) {
	if typ == nil {
		errors.Bug("cemitter: emitType called with nil type")
	}
	switch t := typ.(type) {
	case *ast.ArrayType:
		emitType(e, t.Elt, name)
		e.EmitToken(token.LBRACK)
		if t.Len != nil {
			emitExpr(e, t.Len)
		}
		e.EmitToken(token.RBRACK)
		return

	case *ast.FuncType:
		if t.Result != nil {
			emitType(e, t.Result, name)
		} else {
			e.EmitString("void")
			e.EmitSpace()
			if name != nil {
				emitExpr(e, name)
			}
		}
		emitParams(e, t)
		return

	case *ast.EnumType:
		e.EmitToken(token.ENUM)
		if t.Name != nil {
			e.EmitSpace()
			emitExpr(e, t.Name)
		}
		if len(t.Enums) > 0 {
			e.EmitSpace()
			e.EmitToken(token.LBRACE)
			e.EmitNewline()
			e.IndentIn()
			for _, enum := range t.Enums {
				e.EmitTabs()
				emitExpr(e, enum.Name)
				if enum.Value != nil {
					e.EmitSpace()
					e.EmitToken(token.ASSIGN)
					e.EmitSpace()
					emitExpr(e, enum.Value)
				}
				e.EmitToken(token.COMMA)
				e.EmitNewline()
			}
			e.IndentOut()
			e.EmitTabs()
			e.EmitToken(token.RBRACE)
		}

	case *ast.StarExpr:
		emitStarType(e, t, name)
		return

	case *ast.StructType:
		e.EmitToken(t.Tok)
		if t.Name != nil {
			e.EmitSpace()
			emitExpr(e, t.Name)
		}
		if len(t.Fields) > 0 {
			e.EmitSpace()
			e.EmitToken(token.LBRACE)
			e.EmitNewline()
			e.IndentIn()
			for _, field := range t.Fields {
				e.EmitTabs()
				emitDecl(e, field)
				e.EmitToken(token.SEMICOLON)
				e.EmitNewline()
			}
			e.IndentOut()
			e.EmitTabs()
			e.EmitToken(token.RBRACE)
		}

	case *ast.Ident:
		emitExpr(e, t)

	case *ast.SelectorExpr:
		// A cross-package named type pkg.Name; emitSelectorExpr rewrites it
		// to its mangled C spelling pkg$Name.
		emitExpr(e, t)

	case *ast.NativeType:
		e.EmitString(t.Name)

	default:
		errors.Bug("cemitter: unknown type %T", typ)
	}

	if name != nil {
		e.EmitSpace()
		emitExpr(e, name)
	}
}

// emitStarType handles `*T`, special-casing a pointer-to-function so the
// `*name` sits inside parens ahead of the parameter list, the C syntax for
// a function-pointer declarator.
func emitStarType(e *emitter.Emitter, star *ast.StarExpr, name ast.Expr) {
	base := star.X
	ft, ok := base.(*ast.FuncType)
	if !ok {
		emitType(e, base, nil)
		e.EmitToken(token.MUL)
		if name != nil {
			e.EmitSpace()
			emitExpr(e, name)
		}
		return
	}
	if ft.Result != nil {
		emitType(e, ft.Result, nil)
	} else {
		e.EmitString("void")
	}
	e.EmitToken(token.LPAREN)
	e.EmitToken(token.MUL)
	if name != nil {
		emitExpr(e, name)
	}
	e.EmitToken(token.RPAREN)
	emitParams(e, ft)
}

func emitParams(e *emitter.Emitter, ft *ast.FuncType) {
	e.EmitToken(token.LPAREN)
	for i, param := range ft.Params {
		if i > 0 {
			e.EmitToken(token.COMMA)
			e.EmitSpace()
		}
		emitDecl(e, param)
	}
	if ft.Ellipsis {
		if len(ft.Params) > 0 {
			e.EmitToken(token.COMMA)
			e.EmitSpace()
		}
		e.EmitToken(token.ELLIPSIS)
	}
	e.EmitToken(token.RPAREN)
}

func emitDecl(e *emitter.Emitter, decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.Field:
		if d.Type == nil && d.Name == nil {
			e.EmitString("...")
		} else {
			var name ast.Expr
			if d.Name != nil {
				name = d.Name
			}
			emitType(e, d.Type, name)
		}

	case *ast.FuncDecl:
		emitType(e, d.Type, d.Name)
		if d.Body != nil {
			e.EmitSpace()
			emitStmt(e, d.Body)
		} else {
			e.EmitToken(token.SEMICOLON)
		}

	case *ast.PragmaDecl:
		e.EmitString("//")
		e.EmitToken(token.HASH)
		e.EmitString(d.Lit)

	case *ast.TypedefDecl:
		e.EmitToken(token.TYPEDEF)
		e.EmitSpace()
		emitType(e, d.Type, d.Name)
		e.EmitToken(token.SEMICOLON)

	case *ast.ValueDecl:
		emitType(e, d.Type, d.Name)
		if d.Value != nil {
			e.EmitSpace()
			e.EmitToken(token.ASSIGN)
			e.EmitSpace()
			emitExpr(e, d.Value)
		}
		e.EmitToken(token.SEMICOLON)

	default:
		errors.Bug("cemitter: unknown decl %T", decl)
	}
}

// EmitFile emits one already-checked file's declarations verbatim, with a
// leading `//<filename>` comment. C has no package concept, so unlike
// printer.PrintFile there is no line for file.Name; the declarations
// themselves are all that ever reaches a .c or .h file. Used by the `emit`
// CLI command for a single input file outside of a full package build.
func EmitFile(e *emitter.Emitter, file *ast.File) {
	e.EmitString("//")
	e.EmitString(file.Filename)
	e.EmitNewline()
	e.EmitNewline()
	for _, decl := range file.Decls {
		emitDecl(e, decl)
		e.EmitNewline()
		e.EmitNewline()
	}
}

// EmitHeader emits every typedef and function prototype belonging to pkg,
// for inclusion as `gen/<path>/<base>.h`. It does not emit #include
// directives; those are the build driver's responsibility (it alone knows
// the dependency header paths on disk).
func EmitHeader(e *emitter.Emitter, pkg *types.Package) {
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.TypedefDecl:
				emitDecl(e, d)
				e.EmitNewline()
				e.EmitNewline()
			case *ast.FuncDecl:
				emitType(e, d.Type, d.Name)
				e.EmitToken(token.SEMICOLON)
				e.EmitNewline()
				e.EmitNewline()
			case *ast.PragmaDecl:
				emitDecl(e, d)
				e.EmitNewline()
				e.EmitNewline()
			}
		}
	}
}

// EmitBody emits every function definition and package-level value
// initializer belonging to pkg, for inclusion as `gen/<path>/<base>.c`.
func EmitBody(e *emitter.Emitter, pkg *types.Package) {
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				emitDecl(e, d)
				e.EmitNewline()
				e.EmitNewline()
			case *ast.ValueDecl:
				emitDecl(e, d)
				e.EmitNewline()
				e.EmitNewline()
			}
		}
	}
}

// EmitPackage emits pkg's header followed immediately by its body into one
// stream, with a blank line separating the two. Neither the `emit` command
// nor the build driver calls it: `emit` uses EmitFile, and the build driver
// calls EmitHeader and EmitBody separately so it can write them to their
// own files with their own #include preambles.
func EmitPackage(e *emitter.Emitter, pkg *types.Package) {
	EmitHeader(e, pkg)
	e.EmitNewline()
	EmitBody(e, pkg)
}
