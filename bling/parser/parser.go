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

// Package parser implements a hand-written recursive-descent parser that
// turns a token stream into an *ast.File.
//
// The grammar is classical precedence climbing for expressions layered
// under hand-written descent for declarations, statements, and type
// expressions. One ambiguity the token stream alone cannot resolve is
// whether a parenthesized IDENT starts a cast, a composite literal, or a
// plain grouped expression; the parser resolves it by consulting the
// package scope passed to ParseFile, which is why typedef names are
// inserted into that scope the moment they are parsed rather than once
// the file is complete.
//
// Two dialects share the expression and statement grammar, toggled by the
// parser's cMode flag: ParseFile accepts the SL dialect with
// leading-keyword declarations (`func`, `var`, `typedef`, `const`), and
// ParseCFile accepts C-style headers with type-first, typedef-driven
// declarations (see cparser.go), so the compiler can bootstrap atop an
// existing C runtime.
package parser

import (
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/errors"
	"foundry.dev/bling/bling/scanner"
	"foundry.dev/bling/bling/token"
)

type parser struct {
	file     *token.File
	fset     *token.FileSet
	scanner  scanner.Scanner
	pkgScope *ast.Scope
	mode     scanner.Mode

	// cMode selects the C-header dialect (see cparser.go): C declaration
	// order with typedef-driven type-name disambiguation, `->` selectors,
	// and no automatic semicolon insertion. The SL dialect is the default.
	cMode bool

	pos token.Pos
	tok token.Token
	lit string
}

func (p *parser) init(fset *token.FileSet, file *token.File, src []byte, pkgScope *ast.Scope, mode scanner.Mode) {
	p.file = file
	p.fset = fset
	p.pkgScope = pkgScope
	p.mode = mode
	p.scanner.Init(file, src, p.handleErr, mode)
	p.next()
}

func (p *parser) handleErr(pos token.Pos, msg string) {
	errors.Newf(p.fset, pos, "%s", msg)
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.scanner.Scan()
}

func (p *parser) errorf(pos token.Pos, format string, args ...interface{}) {
	errors.Newf(p.fset, pos, format, args...)
}

func (p *parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		lit := p.lit
		if lit == "" {
			lit = p.tok.String()
		}
		p.errorf(pos, "expected %q, got %q", tok.String(), lit)
	}
	p.next()
	return pos
}

// isType reports whether the current token starts a type expression: a
// type-introducing keyword, or an IDENT bound to a TYPE object in the
// package scope.
func (p *parser) isType() bool {
	switch p.tok {
	case token.CONST, token.ENUM, token.EXTERN, token.STATIC, token.STRUCT, token.UNION:
		return true
	case token.IDENT:
		obj := p.pkgScope.LookupParent(p.lit)
		return obj != nil && obj.Kind == ast.ObjType
	}
	return false
}

func (p *parser) declareType(name *ast.Ident) {
	if name == nil {
		return
	}
	obj := ast.NewObject(ast.ObjType, name.Name)
	obj.Decl = name
	obj.Scope = p.pkgScope
	p.pkgScope.Insert(obj)
}

// ----------------------------------------------------------------------------
// Identifiers and literals

func (p *parser) parseIdent() *ast.Ident {
	pos, name := p.pos, "_"
	if p.tok == token.IDENT {
		name = p.lit
		p.next()
	} else {
		p.expect(token.IDENT)
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

func (p *parser) parseBasicLit(kind token.Token) *ast.BasicLit {
	pos, lit := p.pos, p.lit
	p.expect(kind)
	return &ast.BasicLit{ValuePos: pos, Kind: kind, Value: lit}
}

// ----------------------------------------------------------------------------
// Expressions

func (p *parser) parseOperand() ast.Expr {
	switch p.tok {
	case token.IDENT:
		return p.parseIdent()
	case token.CHAR, token.INT, token.FLOAT, token.STRING:
		return p.parseBasicLit(p.tok)
	case token.LPAREN:
		lparen := p.pos
		p.next()
		x := p.parseExpr()
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen}
	}
	p.errorf(p.pos, "expected operand, got %q", p.tok.String())
	p.next()
	return &ast.Ident{NamePos: p.pos, Name: "_"}
}

func (p *parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	for p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		if !p.accept(token.COMMA) {
			break
		}
	}
	return args
}

func (p *parser) parsePostfixExpr() ast.Expr {
	return p.parsePostfixSuffix(p.parseOperand())
}

// parsePostfixSuffix folds index, call, and selector suffixes onto an
// already-parsed operand.
func (p *parser) parsePostfixSuffix(x ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.LBRACK:
			p.next()
			index := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			x = &ast.IndexExpr{X: x, Lbrack: x.Pos(), Index: index, Rbrack: rbrack}
		case token.LPAREN:
			lparen := p.pos
			p.next()
			args := p.parseArgs()
			rparen := p.expect(token.RPAREN)
			x = &ast.CallExpr{Fun: x, Lparen: lparen, Args: args, Rparen: rparen}
		case token.ARROW, token.PERIOD:
			tok := p.tok
			p.next()
			x = &ast.SelectorExpr{X: x, Tok: tok, Sel: p.parseIdent()}
		default:
			return x
		}
	}
}

func isUnaryOp(tok token.Token) bool {
	switch tok {
	case token.ADD, token.AND, token.MUL, token.NOT, token.SUB, token.BITWISE_NOT:
		return true
	}
	return false
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch {
	case p.tok == token.INC || p.tok == token.DEC:
		// Postfix-only in both dialects; a bare prefix `++`/`--` is the
		// classic unsupported C feature to reject by name.
		p.errorf(p.pos, "unsupported dialect feature: prefix %q", p.tok.String())
		return nil
	case isUnaryOp(p.tok):
		pos, op := p.pos, p.tok
		p.next()
		x := p.parseCastExpr()
		if op == token.MUL {
			return &ast.StarExpr{Star: pos, X: x}
		}
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: x}
	case p.tok == token.SIZEOF:
		pos := p.pos
		p.expect(token.SIZEOF)
		p.expect(token.LPAREN)
		var x ast.Expr
		if p.isType() {
			x = p.parseTypeName()
			if p.tok == token.MUL {
				x = p.parsePointer(x)
			}
		} else {
			x = p.parseUnaryExpr()
		}
		p.expect(token.RPAREN)
		return &ast.SizeofExpr{Sizeof: pos, X: x}
	}
	return p.parsePostfixExpr()
}

func (p *parser) parseCastExpr() ast.Expr {
	if p.tok == token.LPAREN {
		lparen := p.pos
		p.next()
		if p.isType() {
			typ := p.parseTypeName()
			p.expect(token.RPAREN)
			if p.tok == token.LBRACE {
				lit := p.parseInitializer().(*ast.CompositeLit)
				lit.Type = typ
				return lit
			}
			x := p.parseCastExpr()
			return &ast.CastExpr{Lparen: lparen, Type: typ, Expr: x}
		}
		x := p.parseExpr()
		rparen := p.expect(token.RPAREN)
		return p.parsePostfixSuffix(&ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen})
	}
	return p.parseUnaryExpr()
}

// parseBinaryExprFrom implements precedence climbing over an already-parsed
// leftmost operand x: it keeps folding in binary operators whose precedence
// is >= prec, recursing at one above the operator's own precedence to parse
// the right operand, which gives left-associative trees.
func (p *parser) parseBinaryExprFrom(x ast.Expr, prec int) ast.Expr {
	for {
		opPrec := p.tok.Precedence()
		if opPrec < prec {
			return x
		}
		pos, op := p.pos, p.tok
		p.next()
		y := p.parseBinaryExpr(opPrec + 1)
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
}

func (p *parser) parseBinaryExpr(prec int) ast.Expr {
	return p.parseBinaryExprFrom(p.parseCastExpr(), prec)
}

func (p *parser) parseTernaryExprFrom(x ast.Expr) ast.Expr {
	x = p.parseBinaryExprFrom(x, token.LowestPrec+1)
	if p.accept(token.QUESTION) {
		consequence := p.parseExpr()
		p.expect(token.COLON)
		alternative := p.parseTernaryExpr()
		return &ast.TernaryExpr{Cond: x, Consequence: consequence, Alternative: alternative}
	}
	return x
}

func (p *parser) parseTernaryExpr() ast.Expr {
	return p.parseTernaryExprFrom(p.parseCastExpr())
}

// parseExprFrom resumes assignment_expression parsing on top of an
// already-parsed leftmost operand x.
func (p *parser) parseExprFrom(x ast.Expr) ast.Expr {
	x = p.parseTernaryExprFrom(x)
	if p.tok.IsAssignOp() {
		pos, op := p.pos, p.tok
		p.next()
		y := p.parseExpr()
		return &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

// parseExpr parses assignment_expression: a ternary expression optionally
// followed by an assignment operator and a right-hand assignment_expression.
// The result is represented as a BinaryExpr so it composes inside other
// expression contexts (e.g. a for-loop post clause); parseSimpleStmt
// promotes the top-level case to an *ast.AssignStmt.
func (p *parser) parseExpr() ast.Expr {
	return p.parseExprFrom(p.parseCastExpr())
}

// parseConstantExpr parses constant_expression: a ternary expression with
// no assignment suffix, used for array lengths, enumerator values, and case
// expressions.
func (p *parser) parseConstantExpr() ast.Expr {
	return p.parseTernaryExpr()
}

// ----------------------------------------------------------------------------
// Types

func (p *parser) parsePointer(elt ast.Expr) ast.Expr {
	for p.accept(token.MUL) {
		elt = &ast.StarExpr{Star: p.pos, X: elt}
	}
	return elt
}

func (p *parser) parseType() ast.Expr {
	if p.accept(token.MUL) {
		return &ast.StarExpr{Star: p.pos, X: p.parseType()}
	}
	if pos := p.pos; p.accept(token.LBRACK) {
		var length ast.Expr
		if p.tok != token.RBRACK {
			length = p.parseConstantExpr()
		}
		p.expect(token.RBRACK)
		return &ast.ArrayType{Lbrack: pos, Len: length, Elt: p.parseType()}
	}
	switch p.tok {
	case token.ENUM:
		return p.parseEnumType()
	case token.STRUCT, token.UNION:
		return p.parseStructType()
	case token.FUNC:
		return p.parseFuncType()
	case token.IDENT:
		return p.parseTypeIdent()
	}
	p.errorf(p.pos, "expected type, got %q", p.tok.String())
	p.next()
	return &ast.Ident{NamePos: p.pos, Name: "_"}
}

// parseFuncType parses the type form `func(params) result`, with result
// omitted for a void function. The same trailing-ellipsis stripping as
// parseFuncDecl applies.
func (p *parser) parseFuncType() ast.Expr {
	pos := p.expect(token.FUNC)
	p.expect(token.LPAREN)
	params := p.parseParamTypeList()
	p.expect(token.RPAREN)
	var result ast.Expr
	switch p.tok {
	case token.MUL, token.LBRACK, token.STRUCT, token.UNION, token.ENUM, token.FUNC, token.IDENT:
		result = p.parseType()
	}
	ellipsis := false
	if n := len(params); n > 0 && params[n-1].Name == nil {
		params, ellipsis = params[:n-1], true
	}
	return &ast.FuncType{Func: pos, Params: params, Ellipsis: ellipsis, Result: result}
}

// parseTypeIdent parses a named type: a bare identifier or a
// package-qualified pkg.Name.
func (p *parser) parseTypeIdent() ast.Expr {
	x := p.parseIdent()
	if p.accept(token.PERIOD) {
		return &ast.SelectorExpr{X: x, Tok: token.PERIOD, Sel: p.parseIdent()}
	}
	return x
}

func (p *parser) parseField() *ast.Field {
	name := p.parseIdent()
	typ := p.parseType()
	return &ast.Field{NamePos: name.Pos(), Name: name, Type: typ}
}

func (p *parser) parseFieldList(end token.Token) []*ast.Field {
	var fields []*ast.Field
	for p.tok != end {
		fields = append(fields, p.parseField())
		if !p.accept(token.COMMA) {
			break
		}
		if p.accept(token.ELLIPSIS) {
			fields = append(fields, &ast.Field{NamePos: p.pos})
			break
		}
	}
	return fields
}

func (p *parser) parseStructType() ast.Expr {
	tok, tokPos := p.tok, p.pos
	p.next()
	var name *ast.Ident
	if p.tok == token.IDENT {
		name = p.parseIdent()
	}
	var fields []*ast.Field
	if p.accept(token.LBRACE) {
		for {
			field := p.parseField()
			p.expect(token.SEMICOLON)
			fields = append(fields, field)
			if p.tok == token.RBRACE {
				break
			}
		}
		p.expect(token.RBRACE)
	}
	return &ast.StructType{Tok: tok, TokPos: tokPos, Name: name, Fields: fields}
}

func (p *parser) parseEnumType() ast.Expr {
	pos := p.expect(token.ENUM)
	var name *ast.Ident
	if p.tok == token.IDENT {
		name = p.parseIdent()
	}
	var enums []*ast.ValueDecl
	if p.accept(token.LBRACE) {
		for {
			enumName := p.parseIdent()
			var value ast.Expr
			if p.accept(token.ASSIGN) {
				value = p.parseConstantExpr()
			}
			enums = append(enums, &ast.ValueDecl{
				TokPos: enumName.Pos(),
				Tok:    token.CONST,
				Name:   enumName,
				Value:  value,
			})
			if !p.accept(token.COMMA) || p.tok == token.RBRACE {
				break
			}
		}
		p.expect(token.RBRACE)
	}
	return &ast.EnumType{Enum: pos, Name: name, Enums: enums}
}

// parseParamTypeList parses a parenthesized parameter list, already past
// the opening LPAREN, stopping at RPAREN.
func (p *parser) parseParamTypeList() []*ast.Field {
	return p.parseFieldList(token.RPAREN)
}

// parseTypeName parses a type specifier followed by an optional abstract
// declarator, used by casts, sizeof, and composite-literal lookahead.
func (p *parser) parseTypeName() ast.Expr {
	typ := p.parseTypeSpecifier()
	return p.parseAbstractDeclarator(typ)
}

func (p *parser) parseTypeSpecifier() ast.Expr {
	switch p.tok {
	case token.STRUCT, token.UNION:
		return p.parseStructType()
	case token.ENUM:
		return p.parseEnumType()
	case token.IDENT:
		return p.parseTypeIdent()
	}
	p.errorf(p.pos, "expected type, got %q", p.tok.String())
	p.next()
	return &ast.Ident{NamePos: p.pos, Name: "_"}
}

func (p *parser) parseAbstractDeclarator(typ ast.Expr) ast.Expr {
	if p.tok == token.MUL {
		typ = p.parsePointer(typ)
	}
	if p.accept(token.LPAREN) {
		p.expect(token.RPAREN)
	}
	return typ
}

// ----------------------------------------------------------------------------
// Composite literal initializers

func (p *parser) parseInitializer() ast.Expr {
	lbrace := p.pos
	if !p.accept(token.LBRACE) {
		return p.parseExpr()
	}
	var elts []ast.Expr
	for p.tok != token.RBRACE && p.tok != token.EOF {
		var value ast.Expr
		if p.accept(token.PERIOD) {
			key := p.parseIdent()
			p.expect(token.ASSIGN)
			value = &ast.KeyValueExpr{Key: key, Colon: key.Pos(), Value: p.parseInitializer()}
		} else {
			value = p.parseInitializer()
		}
		elts = append(elts, value)
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.CompositeLit{Lbrace: lbrace, Elts: elts, Rbrace: rbrace}
}

// ----------------------------------------------------------------------------
// Statements

// parseSimpleStmt parses an expression-statement, assignment, postfix
// increment/decrement, or labeled statement, all of which share the same
// leading cast_expression. The statement-level forms (label, `++`/`--`,
// assignment) are resolved here, after which only a plain expression
// statement remains; the remainder of the precedence chain is resumed with
// parseExprFrom so a bare expression statement like `f(x) + 1;` still
// parses as one expression rather than stopping at `f(x)`.
func (p *parser) parseSimpleStmt() ast.Stmt {
	if p.tok == token.SEMICOLON {
		return &ast.EmptyStmt{Semicolon: p.pos}
	}
	x := p.parseCastExpr()
	if p.tok == token.INC || p.tok == token.DEC {
		op, opPos := p.tok, p.pos
		p.next()
		return &ast.PostfixStmt{X: x, Op: op, OpPos: opPos}
	}
	if id, ok := x.(*ast.Ident); ok && p.tok == token.COLON {
		p.next()
		return &ast.LabeledStmt{Label: id, Colon: p.pos, Stmt: p.parseStmt()}
	}
	x = p.parseExprFrom(x)
	if bin, ok := x.(*ast.BinaryExpr); ok && bin.Op.IsAssignOp() {
		return &ast.AssignStmt{X: bin.X, OpPos: bin.OpPos, Op: bin.Op, Y: bin.Y}
	}
	return &ast.ExprStmt{X: x}
}

func (p *parser) parseStmt() ast.Stmt {
	// In the C dialect a statement starting with a type (or a storage
	// class, or `typedef`) is a local declaration; the decision needs the
	// typedef registry, which is exactly why typedef names are inserted
	// into the package scope as they are parsed.
	if p.cMode && (p.isType() || p.tok == token.TYPEDEF) {
		return &ast.DeclStmt{Decl: p.parseCDeclaration(false)}
	}
	switch p.tok {
	case token.FUNC, token.VAR, token.TYPEDEF, token.CONST, token.STATIC:
		return &ast.DeclStmt{Decl: p.parseDecl()}
	case token.LBRACE:
		return p.parseBlockStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.SWITCH:
		return p.parseSwitchStmt()
	case token.BREAK, token.CONTINUE, token.FALLTHROUGH, token.GOTO:
		return p.parseJumpStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	}
	stmt := p.parseSimpleStmt()
	if _, ok := stmt.(*ast.LabeledStmt); ok {
		return stmt
	}
	p.expect(token.SEMICOLON)
	return stmt
}

func (p *parser) parseBlockStmt() *ast.BlockStmt {
	lbrace := p.expect(token.LBRACE)
	var list []ast.Stmt
	for p.tok != token.RBRACE {
		// A `}` before a newline arms semicolon insertion, so a block-like
		// statement is routinely followed by a synthetic `;`. Skip it.
		if p.accept(token.SEMICOLON) {
			continue
		}
		list = append(list, p.parseStmt())
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.BlockStmt{Lbrace: lbrace, List: list, Rbrace: rbrace}
}

func (p *parser) parseIfStmt() ast.Stmt {
	pos := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlockStmt()
	var els ast.Stmt
	if p.accept(token.ELSE) {
		if p.tok == token.IF {
			els = p.parseIfStmt()
		} else {
			els = p.parseBlockStmt()
		}
	}
	return &ast.IfStmt{If: pos, Cond: cond, Body: body, Else: els}
}

func (p *parser) parseSwitchStmt() ast.Stmt {
	pos := p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	tag := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	var clauses []*ast.CaseClause
	for p.tok == token.CASE || p.tok == token.DEFAULT {
		casePos := p.pos
		var exprs []ast.Expr
		if p.accept(token.CASE) {
			exprs = append(exprs, p.parseConstantExpr())
			for p.accept(token.COMMA) {
				exprs = append(exprs, p.parseConstantExpr())
			}
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		var body []ast.Stmt
		for p.tok != token.CASE && p.tok != token.DEFAULT && p.tok != token.RBRACE {
			if p.accept(token.SEMICOLON) {
				continue
			}
			body = append(body, p.parseStmt())
		}
		clauses = append(clauses, &ast.CaseClause{Case: casePos, Exprs: exprs, Body: body})
	}
	p.expect(token.RBRACE)
	return &ast.SwitchStmt{Switch: pos, Tag: tag, Body: clauses}
}

func (p *parser) parseWhileStmt() ast.Stmt {
	pos := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlockStmt()
	return &ast.IterStmt{Pos_: pos, Kind: ast.IterWhile, Cond: cond, Body: body}
}

func (p *parser) parseForStmt() ast.Stmt {
	pos := p.expect(token.FOR)
	p.expect(token.LPAREN)
	var init ast.Stmt
	if !p.accept(token.SEMICOLON) {
		if p.tok == token.VAR || p.tok == token.CONST {
			// parseDecl consumes the terminating semicolon itself.
			init = &ast.DeclStmt{Decl: p.parseDecl()}
		} else {
			init = p.parseSimpleStmt()
			p.expect(token.SEMICOLON)
		}
	}
	var cond ast.Expr
	if p.tok != token.SEMICOLON {
		cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	var post ast.Stmt
	if p.tok != token.RPAREN {
		post = p.parseSimpleStmt()
	}
	p.expect(token.RPAREN)
	body := p.parseBlockStmt()
	return &ast.IterStmt{Pos_: pos, Kind: ast.IterFor, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *parser) parseJumpStmt() ast.Stmt {
	tokPos, tok := p.pos, p.tok
	p.next()
	var label *ast.Ident
	if tok == token.GOTO {
		label = p.parseIdent()
	}
	p.expect(token.SEMICOLON)
	return &ast.JumpStmt{TokPos: tokPos, Tok: tok, Label: label}
}

func (p *parser) parseReturnStmt() ast.Stmt {
	pos := p.expect(token.RETURN)
	var x ast.Expr
	if p.tok != token.SEMICOLON {
		x = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	return &ast.ReturnStmt{Return: pos, X: x}
}

// ----------------------------------------------------------------------------
// Declarations

func (p *parser) parseFuncDecl(static bool) ast.Decl {
	pos := p.expect(token.FUNC)
	name := p.parseIdent()
	p.expect(token.LPAREN)
	params := p.parseParamTypeList()
	p.expect(token.RPAREN)
	var result ast.Expr
	if p.tok != token.SEMICOLON && p.tok != token.LBRACE {
		result = p.parseType()
	}
	var body *ast.BlockStmt
	if p.tok == token.LBRACE {
		body = p.parseBlockStmt()
	} else {
		p.expect(token.SEMICOLON)
	}
	ellipsis := false
	if n := len(params); n > 0 && params[n-1].Name == nil {
		params, ellipsis = params[:n-1], true
	}
	typ := &ast.FuncType{Func: pos, Params: params, Ellipsis: ellipsis, Result: result}
	return &ast.FuncDecl{Func: pos, Name: name, Type: typ, Body: body, Static: static}
}

func (p *parser) parseTypedefDecl() ast.Decl {
	pos := p.expect(token.TYPEDEF)
	name := p.parseIdent()
	typ := p.parseType()
	p.expect(token.SEMICOLON)
	p.declareType(name)
	return &ast.TypedefDecl{TypedefPos: pos, Name: name, Type: typ}
}

func (p *parser) parseValueDecl(tok token.Token, static bool) ast.Decl {
	pos := p.pos
	p.expect(tok)
	name := p.parseIdent()
	var typ, value ast.Expr
	if tok == token.CONST {
		typ = p.parseType()
		p.expect(token.ASSIGN)
		value = p.parseInitializer()
	} else if p.accept(token.ASSIGN) {
		value = p.parseInitializer()
	} else {
		typ = p.parseType()
		if p.accept(token.ASSIGN) {
			value = p.parseInitializer()
		}
	}
	p.expect(token.SEMICOLON)
	return &ast.ValueDecl{TokPos: pos, Tok: tok, Name: name, Type: typ, Value: value, Static: static}
}

func (p *parser) parseDecl() ast.Decl {
	static := p.accept(token.STATIC)
	switch p.tok {
	case token.FUNC:
		return p.parseFuncDecl(static)
	case token.TYPEDEF:
		return p.parseTypedefDecl()
	case token.VAR:
		return p.parseValueDecl(token.VAR, static)
	case token.CONST:
		return p.parseValueDecl(token.CONST, static)
	case token.HASH:
		return p.parsePragmaDecl()
	}
	p.errorf(p.pos, "expected declaration, got %q", p.tok.String())
	p.next()
	return nil
}

func (p *parser) parsePragmaDecl() ast.Decl {
	pos, lit := p.pos, p.lit
	p.expect(token.HASH)
	return &ast.PragmaDecl{Hash: pos, Lit: lit}
}

// ----------------------------------------------------------------------------
// Files

func (p *parser) parseImportDecl() *ast.ImportDecl {
	pos := p.expect(token.IMPORT)
	p.expect(token.LPAREN)
	path := p.parseBasicLit(token.STRING)
	p.expect(token.RPAREN)
	p.expect(token.SEMICOLON)
	return &ast.ImportDecl{Import: pos, Path: path}
}

func (p *parser) parseFile(filename string) *ast.File {
	var name *ast.Ident
	if p.tok == token.PACKAGE {
		p.next()
		p.expect(token.LPAREN)
		name = p.parseIdent()
		p.expect(token.RPAREN)
		p.expect(token.SEMICOLON)
	}

	var imports []*ast.ImportDecl
	for p.tok == token.IMPORT {
		imports = append(imports, p.parseImportDecl())
	}

	var decls []ast.Decl
	for p.tok != token.EOF {
		// Skip the synthetic `;` inserted after a function body's closing
		// `}` (and any stray explicit one between declarations).
		if p.accept(token.SEMICOLON) {
			continue
		}
		decls = append(decls, p.parseDecl())
	}

	return &ast.File{
		Filename: filename,
		Name:     name,
		Imports:  imports,
		Decls:    decls,
		Scope:    p.pkgScope,
	}
}

// ParseFile scans and parses a single bling source file, registering its
// top-level typedef names into pkgScope as they are encountered so that
// later declarations in the same file (and in files parsed afterward
// against the same scope) can disambiguate type names from ordinary
// identifiers. The first scan or parse error aborts the parse and is
// returned as err.
//
// The returned *ast.File.Scope is pkgScope itself; callers parsing a
// multi-file package share one *ast.Scope across ParseFile calls.
func ParseFile(fset *token.FileSet, filename string, src []byte, pkgScope *ast.Scope) (f *ast.File, err error) {
	file := fset.AddFile(filename, len(src))
	file.SetContent(src)

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	var p parser
	p.init(fset, file, src, pkgScope, 0)
	return p.parseFile(filename), nil
}

// ParseCFile scans and parses a single C header or source file using the C
// dialect (see cparser.go): the scanner runs with semicolon insertion
// disabled ('$' is allowed in identifiers and `->` is a token), and
// declarations use C's type-first order with typedef-driven type-name
// disambiguation against pkgScope. Packages checked from C input should
// set types.Config.CMode.
func ParseCFile(fset *token.FileSet, filename string, src []byte, pkgScope *ast.Scope) (f *ast.File, err error) {
	file := fset.AddFile(filename, len(src))
	file.SetContent(src)

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	var p parser
	p.init(fset, file, src, pkgScope, scanner.DontInsertSemis)
	p.cMode = true
	return p.parseCFile(filename), nil
}
