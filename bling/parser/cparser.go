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

// This file implements the C-header dialect of the parser, used to
// bootstrap atop an existing C runtime: declarations use C's type-first
// order (`int f(const point *p);`), and an IDENT parses as a type exactly
// when the typedef registry in the package scope says so. Expressions and
// statements are shared with the SL dialect in parser.go; only the
// declaration grammar differs. Entered through ParseCFile, which arms the
// parser's cMode flag and disables semicolon insertion in the scanner.

package parser

import (
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/token"
)

// parseCTypeSpecifier parses type_specifier: a struct/union/enum specifier
// or a typedef name. `signed`/`unsigned` are rejected by name, matching the
// subset the original compiler accepted.
func (p *parser) parseCTypeSpecifier() ast.Expr {
	switch p.tok {
	case token.SIGNED, token.UNSIGNED:
		p.errorf(p.pos, "unsupported dialect feature: %q", p.tok.String())
		return nil
	case token.STRUCT, token.UNION:
		return p.parseCStructType()
	case token.ENUM:
		return p.parseEnumType()
	}
	if p.isType() {
		return p.parseIdent()
	}
	p.errorf(p.pos, "expected type, got %q", p.tok.String())
	p.next()
	return &ast.Ident{NamePos: p.pos, Name: "_"}
}

// parseCDeclarationSpecifiers parses declaration_specifiers: an optional
// storage class (top-level declarations only), an optional `const`
// qualifier, then the type specifier. `extern` is consumed and dropped;
// `static` is reported back to the caller.
func (p *parser) parseCDeclarationSpecifiers(isTop bool) (typ ast.Expr, static bool) {
	if isTop {
		switch p.tok {
		case token.EXTERN:
			p.next()
		case token.STATIC:
			static = true
			p.next()
		}
	}
	p.accept(token.CONST)
	return p.parseCTypeSpecifier(), static
}

func (p *parser) parseCPointer(typ ast.Expr) ast.Expr {
	for p.tok == token.MUL {
		pos := p.pos
		p.next()
		typ = &ast.StarExpr{Star: pos, X: typ}
		p.accept(token.CONST)
	}
	return typ
}

// parseCDeclarator parses declarator: an optional pointer, the declared
// name (absent for an abstract declarator, parenthesized with a leading
// `*` for a function pointer), and an optional array or parameter-list
// suffix that wraps the base type.
func (p *parser) parseCDeclarator(typ ast.Expr) (*ast.Ident, ast.Expr) {
	if p.tok == token.MUL {
		typ = p.parseCPointer(typ)
	}
	var name *ast.Ident
	isPtr := false
	switch p.tok {
	case token.IDENT:
		name = p.parseIdent()
	case token.LPAREN:
		p.next()
		isPtr = p.accept(token.MUL)
		if !isPtr || p.tok == token.IDENT {
			name = p.parseIdent()
		}
		p.expect(token.RPAREN)
	}
	if pos := p.pos; p.accept(token.LBRACK) {
		var length ast.Expr
		if p.tok != token.RBRACK {
			length = p.parseConstantExpr()
		}
		p.expect(token.RBRACK)
		typ = &ast.ArrayType{Lbrack: pos, Len: length, Elt: typ}
	} else if pos := p.pos; p.accept(token.LPAREN) {
		var params []*ast.Field
		if p.tok != token.RPAREN {
			params = p.parseCParameterTypeList()
		}
		p.expect(token.RPAREN)
		ellipsis := false
		if n := len(params); n > 0 && params[n-1].Name == nil && params[n-1].Type == nil {
			params, ellipsis = params[:n-1], true
		}
		typ = &ast.FuncType{Func: pos, Params: params, Ellipsis: ellipsis, Result: typ}
	}
	if isPtr {
		typ = &ast.StarExpr{Star: typ.Pos(), X: typ}
	}
	return name, typ
}

func (p *parser) parseCParameterTypeList() []*ast.Field {
	var params []*ast.Field
	for p.tok != token.RPAREN {
		params = append(params, p.parseCParameterDeclaration())
		if !p.accept(token.COMMA) {
			break
		}
		if p.tok == token.ELLIPSIS {
			params = append(params, &ast.Field{NamePos: p.pos})
			p.next()
			break
		}
	}
	return params
}

// parseCParameterDeclaration parses one parameter: declaration specifiers
// followed by a (possibly abstract, i.e. nameless) declarator.
func (p *parser) parseCParameterDeclaration() *ast.Field {
	pos := p.pos
	typ, _ := p.parseCDeclarationSpecifiers(false)
	name, typ := p.parseCDeclarator(typ)
	return &ast.Field{NamePos: pos, Name: name, Type: typ}
}

// parseCStructType parses struct_or_union_specifier with C-style fields,
// each a specifier-qualifier list plus declarator terminated by `;`.
func (p *parser) parseCStructType() ast.Expr {
	tok, tokPos := p.tok, p.pos
	p.next()
	var name *ast.Ident
	if p.tok == token.IDENT {
		name = p.parseIdent()
	}
	var fields []*ast.Field
	if p.accept(token.LBRACE) {
		for p.tok != token.RBRACE {
			pos := p.pos
			typ, _ := p.parseCDeclarationSpecifiers(false)
			fieldName, fieldType := p.parseCDeclarator(typ)
			p.expect(token.SEMICOLON)
			fields = append(fields, &ast.Field{NamePos: pos, Name: fieldName, Type: fieldType})
		}
		p.expect(token.RBRACE)
	}
	return &ast.StructType{Tok: tok, TokPos: tokPos, Name: name, Fields: fields}
}

// parseCDeclaration parses one external or local declaration. isExternal
// permits a function body; a local function declaration stays a prototype.
func (p *parser) parseCDeclaration(isExternal bool) ast.Decl {
	if p.tok == token.HASH {
		return p.parsePragmaDecl()
	}
	pos := p.pos
	if p.accept(token.TYPEDEF) {
		typ, _ := p.parseCDeclarationSpecifiers(true)
		name, typ := p.parseCDeclarator(typ)
		p.expect(token.SEMICOLON)
		p.declareType(name)
		return &ast.TypedefDecl{TypedefPos: pos, Name: name, Type: typ}
	}
	typ, static := p.parseCDeclarationSpecifiers(true)
	name, typ := p.parseCDeclarator(typ)
	if ft, ok := typ.(*ast.FuncType); ok {
		var body *ast.BlockStmt
		if isExternal && p.tok == token.LBRACE {
			body = p.parseBlockStmt()
		} else {
			p.expect(token.SEMICOLON)
		}
		return &ast.FuncDecl{Func: pos, Name: name, Type: ft, Body: body, Static: static}
	}
	var value ast.Expr
	if p.accept(token.ASSIGN) {
		value = p.parseInitializer()
	}
	p.expect(token.SEMICOLON)
	if name == nil {
		// `struct point { ... };` declares the tag alone; record it the
		// same way a typedef would so later uses of the name resolve.
		st, ok := typ.(*ast.StructType)
		if !ok || st.Name == nil {
			p.errorf(pos, "expected declarator")
			return nil
		}
		p.declareType(st.Name)
		return &ast.TypedefDecl{TypedefPos: pos, Name: st.Name, Type: typ}
	}
	return &ast.ValueDecl{TokPos: pos, Tok: token.VAR, Name: name, Type: typ, Value: value, Static: static}
}

// parseCFile parses a translation unit: leading pragma lines (`#include`,
// `#pragma`), an optional package clause and imports (present when the
// compiler re-reads its own emitted C), then external declarations to EOF.
func (p *parser) parseCFile(filename string) *ast.File {
	var decls []ast.Decl
	for p.tok == token.HASH {
		decls = append(decls, p.parsePragmaDecl())
	}
	var name *ast.Ident
	if p.accept(token.PACKAGE) {
		p.expect(token.LPAREN)
		name = p.parseIdent()
		p.expect(token.RPAREN)
		p.expect(token.SEMICOLON)
	}
	var imports []*ast.ImportDecl
	for p.tok == token.IMPORT {
		imports = append(imports, p.parseImportDecl())
	}
	for p.tok != token.EOF {
		decls = append(decls, p.parseCDeclaration(true))
	}
	return &ast.File{
		Filename: filename,
		Name:     name,
		Imports:  imports,
		Decls:    decls,
		Scope:    p.pkgScope,
	}
}
