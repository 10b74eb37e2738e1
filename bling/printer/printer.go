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

// Package printer re-serializes a parsed (or checked) AST back into SL
// source text. Unlike bling/cemitter it does not mangle package-qualified
// identifiers (a selector stays `pkg.sym`, never `pkg$sym`) and it prints
// types prefix-first rather than hugging a declarator name, since SL's own
// grammar (unlike C's) never requires a declarator to wrap its name in
// parens or brackets. A cast prints `(T)expr`, the only cast syntax
// bling/parser accepts.
//
// Its primary consumer is the `emit` command's SL output mode and the
// round-trip testable property: emit(parse(s)) re-parsed and re-emitted
// must be byte-identical to its first emission.
package printer

import (
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/emitter"
	"foundry.dev/bling/bling/errors"
	"foundry.dev/bling/bling/token"
)

func emitExpr(e *emitter.Emitter, expr ast.Expr) {
	if expr == nil {
		errors.Bug("printer: emitExpr called with nil expr")
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
		emitType(e, x.Type)
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
		e.EmitString(x.Name)

	case *ast.IndexExpr:
		emitExpr(e, x.X)
		e.EmitToken(token.LBRACK)
		emitExpr(e, x.Index)
		e.EmitToken(token.RBRACK)

	case *ast.KeyValueExpr:
		e.EmitToken(token.PERIOD)
		emitExpr(e, x.Key)
		e.EmitSpace()
		e.EmitToken(token.ASSIGN)
		e.EmitSpace()
		emitExpr(e, x.Value)

	case *ast.ParenExpr:
		e.EmitToken(token.LPAREN)
		emitExpr(e, x.X)
		e.EmitToken(token.RPAREN)

	case *ast.SelectorExpr:
		emitExpr(e, x.X)
		e.EmitToken(token.PERIOD)
		emitExpr(e, x.Sel)

	case *ast.SizeofExpr:
		e.EmitToken(token.SIZEOF)
		e.EmitToken(token.LPAREN)
		emitType(e, x.X)
		e.EmitToken(token.RPAREN)

	case *ast.StarExpr:
		e.EmitToken(token.MUL)
		emitExpr(e, x.X)

	case *ast.UnaryExpr:
		e.EmitToken(x.Op)
		emitExpr(e, x.X)

	default:
		errors.Bug("printer: unknown expr %T", expr)
	}
}

func emitStmt(e *emitter.Emitter, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		emitExpr(e, s.X)
		e.EmitSpace()
		e.EmitToken(s.Op)
		e.EmitSpace()
		emitExpr(e, s.Y)

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
			e.EmitToken(token.CASE)
			e.EmitSpace()
			for i, expr := range s.Exprs {
				if i > 0 {
					e.EmitToken(token.COMMA)
					e.EmitSpace()
				}
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

	case *ast.LabeledStmt:
		emitExpr(e, s.Label)
		e.EmitToken(token.COLON)
		e.EmitNewline()
		e.EmitTabs()
		emitStmt(e, s.Stmt)

	case *ast.PostfixStmt:
		emitExpr(e, s.X)
		e.EmitToken(s.Op)

	case *ast.ReturnStmt:
		e.EmitToken(token.RETURN)
		if s.X != nil {
			e.EmitSpace()
			emitExpr(e, s.X)
		}

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
		errors.Bug("printer: unknown stmt %T", stmt)
	}
}

// emitIterStmt collapses to `while (cond) body` for IterWhile, since its
// Init/Post are always nil. A for's init is printed without its own
// terminator (the header's `;` separators are emitted here), so the
// DeclStmt/AssignStmt cases above must stay terminator-free.
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
		}
		e.EmitToken(token.SEMICOLON)
		e.EmitSpace()
	}
	if s.Cond != nil {
		emitExpr(e, s.Cond)
	}
	if s.Kind == ast.IterFor {
		e.EmitToken(token.SEMICOLON)
		if s.Post != nil {
			e.EmitSpace()
			e.SetSkipSemi(true)
			emitStmt(e, s.Post)
			e.SetSkipSemi(false)
		}
	}
	e.EmitToken(token.RPAREN)
	e.EmitSpace()
	emitStmt(e, s.Body)
}

// isVoid reports whether typ is the predeclared identifier or native type
// named "void", used to decide whether a function type's result needs to
// be printed at all (SL omits a void result rather than spelling it).
func isVoid(typ ast.Expr) bool {
	switch t := typ.(type) {
	case nil:
		return true
	case *ast.Ident:
		return t.Name == "void"
	case *ast.NativeType:
		return t.Name == "void"
	}
	return false
}

// emitType prints a type prefix-first: func(params) result, *T, []T,
// struct {...}, never hugging a declarator name the way bling/cemitter
// must for valid C syntax.
func emitType(e *emitter.Emitter, typ ast.Expr) {
	if typ == nil {
		errors.Bug("printer: emitType called with nil type")
	}
	switch t := typ.(type) {
	case *ast.ArrayType:
		e.EmitToken(token.LBRACK)
		if t.Len != nil {
			emitExpr(e, t.Len)
		}
		e.EmitToken(token.RBRACK)
		emitType(e, t.Elt)

	case *ast.FuncType:
		e.EmitToken(token.FUNC)
		emitParams(e, t)
		if !isVoid(t.Result) {
			e.EmitSpace()
			emitType(e, t.Result)
		}

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
		base := t.X
		if ft, ok := base.(*ast.FuncType); ok {
			e.EmitToken(token.FUNC)
			emitParams(e, ft)
			if !isVoid(ft.Result) {
				e.EmitSpace()
				emitType(e, ft.Result)
			}
			return
		}
		e.EmitToken(token.MUL)
		emitType(e, base)

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
				e.EmitNewline()
			}
			e.IndentOut()
			e.EmitTabs()
			e.EmitToken(token.RBRACE)
		}

	case *ast.Ident:
		emitExpr(e, t)

	case *ast.SelectorExpr:
		emitExpr(e, t)

	case *ast.NativeType:
		e.EmitString(t.Name)

	default:
		errors.Bug("printer: unknown type %T", typ)
	}
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
			return
		}
		if d.Name != nil {
			emitExpr(e, d.Name)
			e.EmitSpace()
		}
		emitType(e, d.Type)

	case *ast.FuncDecl:
		e.EmitToken(token.FUNC)
		e.EmitSpace()
		emitExpr(e, d.Name)
		emitParams(e, d.Type)
		if !isVoid(d.Type.Result) {
			e.EmitSpace()
			emitType(e, d.Type.Result)
		}
		if d.Body != nil {
			e.EmitSpace()
			emitStmt(e, d.Body)
		}

	case *ast.ImportDecl:
		e.EmitToken(token.IMPORT)
		e.EmitSpace()
		emitExpr(e, d.Path)

	case *ast.PragmaDecl:
		e.EmitToken(token.HASH)
		e.EmitString(d.Lit)

	case *ast.TypedefDecl:
		e.EmitToken(token.TYPEDEF)
		e.EmitSpace()
		emitExpr(e, d.Name)
		e.EmitSpace()
		emitType(e, d.Type)

	case *ast.ValueDecl:
		e.EmitToken(d.Tok)
		if d.Name != nil {
			e.EmitSpace()
			emitExpr(e, d.Name)
		}
		if d.Type != nil {
			e.EmitSpace()
			emitType(e, d.Type)
		}
		if d.Value != nil {
			e.EmitSpace()
			e.EmitToken(token.ASSIGN)
			e.EmitSpace()
			emitExpr(e, d.Value)
		}

	default:
		errors.Bug("printer: unknown decl %T", decl)
	}
}

// PrintFile re-serializes file as SL source: the optional package clause,
// every import, then every declaration separated by blank lines. No
// filename comment is written — output must depend only on the tree, so
// that re-emitting through an intermediate file of any name stays
// byte-identical.
func PrintFile(e *emitter.Emitter, file *ast.File) {
	if file.Name != nil {
		e.EmitToken(token.PACKAGE)
		e.EmitSpace()
		e.EmitToken(token.LPAREN)
		emitExpr(e, file.Name)
		e.EmitToken(token.RPAREN)
		e.EmitNewline()
	}
	for _, imp := range file.Imports {
		e.EmitToken(token.IMPORT)
		e.EmitSpace()
		e.EmitToken(token.LPAREN)
		emitExpr(e, imp.Path)
		e.EmitToken(token.RPAREN)
		e.EmitNewline()
	}
	for _, decl := range file.Decls {
		e.EmitNewline()
		emitDecl(e, decl)
		e.EmitNewline()
	}
}
