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

// Package ast declares the types used to represent the syntax tree of a
// bling source file.
//
// There are three disjoint node categories: Decl, Expr, and Stmt. Every
// node carries the Pos of its syntactic anchor so that later passes can
// report errors against the originating source text.
package ast

import "foundry.dev/bling/bling/token"

// A Node is any node of the syntax tree.
type Node interface {
	Pos() token.Pos
}

// A Decl is a top-level or struct/param field declaration.
type Decl interface {
	Node
	declNode()
}

// An Expr is implemented by all expression nodes, including the
// "type-expression" subset used wherever a type is syntactically expected.
type Expr interface {
	Node
	exprNode()
}

// A Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ----------------------------------------------------------------------------
// Declarations

// A Field declares a struct field or a function parameter: `name type`.
type Field struct {
	NamePos token.Pos
	Name    *Ident
	Type    Expr // nil for a bare ellipsis (variadic) parameter
}

// A FuncDecl declares a function: `func name(params) result { body }`. Body
// is nil for an extern declaration.
type FuncDecl struct {
	Func   token.Pos
	Name   *Ident
	Type   *FuncType
	Body   *BlockStmt
	Static bool
}

// An ImportDecl declares an import of another package: `import ("path")`.
type ImportDecl struct {
	Import token.Pos
	Path   *BasicLit // STRING literal
	Scope  *Scope    // the imported package's scope, filled in by the checker
}

// A PragmaDecl is a verbatim `#...` line preserved for passthrough emission.
type PragmaDecl struct {
	Hash token.Pos
	Lit  string
}

// A TypedefDecl declares a named type: `typedef name type`.
type TypedefDecl struct {
	TypedefPos token.Pos
	Name       *Ident
	Type       Expr
}

// A ValueDecl declares a package- or block-scope variable or constant:
// `var name type [= value]` or `const name type = value`.
type ValueDecl struct {
	TokPos token.Pos
	Tok    token.Token // VAR or CONST
	Name   *Ident
	Type   Expr // may be nil; inferred from Value by the checker
	Value  Expr // may be nil for VAR
	Static bool
}

func (*Field) declNode()       {}
func (*FuncDecl) declNode()    {}
func (*ImportDecl) declNode()  {}
func (*PragmaDecl) declNode()  {}
func (*TypedefDecl) declNode() {}
func (*ValueDecl) declNode()   {}

func (d *Field) Pos() token.Pos       { return d.NamePos }
func (d *FuncDecl) Pos() token.Pos    { return d.Func }
func (d *ImportDecl) Pos() token.Pos  { return d.Import }
func (d *PragmaDecl) Pos() token.Pos  { return d.Hash }
func (d *TypedefDecl) Pos() token.Pos { return d.TypedefPos }
func (d *ValueDecl) Pos() token.Pos   { return d.TokPos }

// ----------------------------------------------------------------------------
// Expressions

// An Ident is an identifier, type name, or package name reference. Obj is
// filled in by the checker once the identifier has been resolved.
type Ident struct {
	NamePos token.Pos
	Name    string
	Obj     *Object
}

// A BasicLit is a literal of basic type: CHAR, INT, FLOAT, or STRING.
type BasicLit struct {
	ValuePos token.Pos
	Kind     token.Token
	Value    string
}

// A BinaryExpr is `x op y`.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr
}

// A UnaryExpr is a prefix operator expression: `&x`, `+x`, `-x`, `~x`, `!x`.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token
	X     Expr
}

// A StarExpr is either a pointer-type expression `*T` or a pointer
// dereference `*x`. The node records no flag telling the two apart; the
// parser cannot always tell them apart without type information, so the
// context a StarExpr is checked in decides which one it is.
type StarExpr struct {
	Star token.Pos
	X    Expr
}

// A CallExpr is `fun(args...)`.
type CallExpr struct {
	Fun    Expr
	Lparen token.Pos
	Args   []Expr
	Rparen token.Pos
}

// A CastExpr is `(type) expr`.
type CastExpr struct {
	Lparen token.Pos
	Type   Expr
	Expr   Expr
}

// A SelectorExpr is `x.sel`. Tok distinguishes PERIOD from ARROW; it starts
// as PERIOD and is rewritten to ARROW by the checker when X's type is a
// pointer.
type SelectorExpr struct {
	X   Expr
	Tok token.Token
	Sel *Ident
}

// An IndexExpr is `x[index]`.
type IndexExpr struct {
	X      Expr
	Lbrack token.Pos
	Index  Expr
	Rbrack token.Pos
}

// A ParenExpr is `(x)`.
type ParenExpr struct {
	Lparen token.Pos
	X      Expr
	Rparen token.Pos
}

// A SizeofExpr is `sizeof(x)`, where X may be a type or an expression.
type SizeofExpr struct {
	Sizeof token.Pos
	X      Expr
}

// A TernaryExpr is `cond ? consequence : alternative`.
type TernaryExpr struct {
	Cond        Expr
	Consequence Expr
	Alternative Expr
}

// A CompositeLit is `type{elts...}` — an array, struct, or union literal.
// Type may be nil in the source and later injected by the checker from the
// surrounding context (e.g. a value declaration's declared type).
type CompositeLit struct {
	Type   Expr
	Lbrace token.Pos
	Elts   []Expr
	Rbrace token.Pos
}

// A KeyValueExpr is `key: value` within a CompositeLit. IsArray marks an
// array-literal key (which must be an integer constant) as opposed to a
// struct field name.
type KeyValueExpr struct {
	Key     Expr
	Colon   token.Pos
	Value   Expr
	IsArray bool
}

func (*Ident) exprNode()        {}
func (*BasicLit) exprNode()     {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*StarExpr) exprNode()     {}
func (*CallExpr) exprNode()     {}
func (*CastExpr) exprNode()     {}
func (*SelectorExpr) exprNode() {}
func (*IndexExpr) exprNode()    {}
func (*ParenExpr) exprNode()    {}
func (*SizeofExpr) exprNode()   {}
func (*TernaryExpr) exprNode()  {}
func (*CompositeLit) exprNode() {}
func (*KeyValueExpr) exprNode() {}

func (x *Ident) Pos() token.Pos        { return x.NamePos }
func (x *BasicLit) Pos() token.Pos     { return x.ValuePos }
func (x *BinaryExpr) Pos() token.Pos   { return x.X.Pos() }
func (x *UnaryExpr) Pos() token.Pos    { return x.OpPos }
func (x *StarExpr) Pos() token.Pos     { return x.Star }
func (x *CallExpr) Pos() token.Pos     { return x.Fun.Pos() }
func (x *CastExpr) Pos() token.Pos     { return x.Lparen }
func (x *SelectorExpr) Pos() token.Pos { return x.X.Pos() }
func (x *IndexExpr) Pos() token.Pos    { return x.X.Pos() }
func (x *ParenExpr) Pos() token.Pos    { return x.Lparen }
func (x *SizeofExpr) Pos() token.Pos   { return x.Sizeof }
func (x *TernaryExpr) Pos() token.Pos  { return x.Cond.Pos() }
func (x *CompositeLit) Pos() token.Pos {
	if x.Type != nil {
		return x.Type.Pos()
	}
	return x.Lbrace
}
func (x *KeyValueExpr) Pos() token.Pos { return x.Key.Pos() }

// ----------------------------------------------------------------------------
// Type expressions
//
// Type expressions are plain Expr nodes drawn from this subset. Keeping them
// in the Expr sum (rather than a fourth disjoint category) mirrors the
// source compiler and lets casts, sizeof, and composite literals share the
// same "parse a type or an expression" lookahead.

// An ArrayType is `[N]T` (N nil for a slice-like `[]T`).
type ArrayType struct {
	Lbrack token.Pos
	Len    Expr // nil for []T
	Elt    Expr
}

// A StructType is `struct { fields... }` or `union { fields... }`,
// distinguished by Tok.
type StructType struct {
	Tok    token.Token // STRUCT or UNION
	TokPos token.Pos
	Name   *Ident // non-nil once tagged by an enclosing typedef
	Fields []*Field
}

// An EnumType is `enum NAME { enumerators... }`.
type EnumType struct {
	Enum  token.Pos
	Name  *Ident
	Enums []*ValueDecl
}

// A FuncType is `func(params) result`.
type FuncType struct {
	Func     token.Pos
	Params   []*Field
	Ellipsis bool // trailing `...` parameter
	Result   Expr
}

// An Ellipsis denotes the variadic `...` marker in a parameter list.
type Ellipsis struct {
	Pos_ token.Pos
}

// A NativeType is a predeclared machine type (bool, the int widths, void,
// voidptr) or a raw passthrough C type name encountered in C-mode.
type NativeType struct {
	NamePos token.Pos
	Name    string
}

// A BuiltinType is the synthetic signature record installed as the result
// type of a predeclared builtin function (assert, panic, print, ...). It
// never appears in parsed source; the checker recognizes a call to a
// builtin by finding one of these as the callee's result type and enforces
// the recorded arity instead of walking a parameter list.
type BuiltinType struct {
	Name     string
	Nargs    int
	Variadic bool
	IsExpr   bool
}

func (*ArrayType) exprNode()   {}
func (*StructType) exprNode()  {}
func (*EnumType) exprNode()    {}
func (*FuncType) exprNode()    {}
func (*Ellipsis) exprNode()    {}
func (*NativeType) exprNode()  {}
func (*BuiltinType) exprNode() {}

func (x *ArrayType) Pos() token.Pos   { return x.Lbrack }
func (x *StructType) Pos() token.Pos  { return x.TokPos }
func (x *EnumType) Pos() token.Pos    { return x.Enum }
func (x *FuncType) Pos() token.Pos    { return x.Func }
func (x *Ellipsis) Pos() token.Pos    { return x.Pos_ }
func (x *NativeType) Pos() token.Pos  { return x.NamePos }
func (x *BuiltinType) Pos() token.Pos { return token.NoPos }

// IsExprType reports whether x is one of the type-expression forms above.
// The parser and checker both use this to decide whether a parenthesized
// expression was actually a cast or composite-literal type.
func IsExprType(x Expr) bool {
	switch x.(type) {
	case *ArrayType, *StructType, *EnumType, *FuncType, *NativeType:
		return true
	case *Ident:
		return true // resolved against scope by the caller
	case *StarExpr:
		return true // ambiguous: pointer-type vs. deref, resolved by caller
	}
	return false
}

// ----------------------------------------------------------------------------
// Statements

// An AssignStmt is `x op y` for op in {=, +=, -=, ...}.
type AssignStmt struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr
}

// A BlockStmt is `{ stmts... }`.
type BlockStmt struct {
	Lbrace token.Pos
	List   []Stmt
	Rbrace token.Pos
	Scope  *Scope // filled in by the checker
}

// A CaseClause is one `case exprs:` or `default:` arm of a switch.
type CaseClause struct {
	Case  token.Pos
	Exprs []Expr // nil/empty for default
	Body  []Stmt
}

// A DeclStmt wraps a local Decl (var/const/typedef) used as a statement.
type DeclStmt struct {
	Decl Decl
}

// An EmptyStmt is a bare `;`.
type EmptyStmt struct {
	Semicolon token.Pos
}

// An ExprStmt is a bare expression used for its side effect.
type ExprStmt struct {
	X Expr
}

// An IfStmt is `if (cond) body [else else_]`.
type IfStmt struct {
	If   token.Pos
	Cond Expr
	Body *BlockStmt
	Else Stmt // *IfStmt, *BlockStmt, or nil
}

// IterKind distinguishes the two loop forms unified by IterStmt.
type IterKind int

const (
	IterFor IterKind = iota
	IterWhile
)

// An IterStmt unifies `for (init; cond; post) body` and `while (cond) body`.
type IterStmt struct {
	Pos_  token.Pos
	Kind  IterKind
	Init  Stmt // nil unless Kind == IterFor
	Cond  Expr
	Post  Stmt // nil unless Kind == IterFor
	Body  *BlockStmt
	Scope *Scope // non-nil only if Init or Post is present
}

// A JumpStmt is `break`, `continue`, `fallthrough`, or `goto label`.
type JumpStmt struct {
	TokPos token.Pos
	Tok    token.Token
	Label  *Ident // non-nil only for goto
}

// A LabeledStmt is `label: stmt`.
type LabeledStmt struct {
	Label *Ident
	Colon token.Pos
	Stmt  Stmt
}

// A PostfixStmt is `x++` or `x--`.
type PostfixStmt struct {
	X     Expr
	Op    token.Token
	OpPos token.Pos
}

// A ReturnStmt is `return [x]`.
type ReturnStmt struct {
	Return token.Pos
	X      Expr // nil for a bare return
}

// A SwitchStmt is `switch (tag) { cases... }`.
type SwitchStmt struct {
	Switch token.Pos
	Tag    Expr
	Body   []*CaseClause
}

func (*AssignStmt) stmtNode()  {}
func (*BlockStmt) stmtNode()   {}
func (*CaseClause) stmtNode()  {}
func (*DeclStmt) stmtNode()    {}
func (*EmptyStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()    {}
func (*IfStmt) stmtNode()      {}
func (*IterStmt) stmtNode()    {}
func (*JumpStmt) stmtNode()    {}
func (*LabeledStmt) stmtNode() {}
func (*PostfixStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()  {}
func (*SwitchStmt) stmtNode()  {}

func (s *AssignStmt) Pos() token.Pos  { return s.X.Pos() }
func (s *BlockStmt) Pos() token.Pos   { return s.Lbrace }
func (s *CaseClause) Pos() token.Pos  { return s.Case }
func (s *DeclStmt) Pos() token.Pos    { return s.Decl.Pos() }
func (s *EmptyStmt) Pos() token.Pos   { return s.Semicolon }
func (s *ExprStmt) Pos() token.Pos    { return s.X.Pos() }
func (s *IfStmt) Pos() token.Pos      { return s.If }
func (s *IterStmt) Pos() token.Pos    { return s.Pos_ }
func (s *JumpStmt) Pos() token.Pos    { return s.TokPos }
func (s *LabeledStmt) Pos() token.Pos { return s.Label.Pos() }
func (s *PostfixStmt) Pos() token.Pos { return s.X.Pos() }
func (s *ReturnStmt) Pos() token.Pos  { return s.Return }
func (s *SwitchStmt) Pos() token.Pos  { return s.Switch }

// ----------------------------------------------------------------------------
// Files and packages

// A File is the syntax tree for a single source file.
type File struct {
	Filename string
	Name     *Ident // the `package (name)` clause; nil if absent
	Imports  []*ImportDecl
	Decls    []Decl
	Scope    *Scope // == the package scope this file contributed to
}

func (f *File) Pos() token.Pos {
	if f.Name != nil {
		return f.Name.Pos()
	}
	if len(f.Decls) > 0 {
		return f.Decls[0].Pos()
	}
	return token.NoPos
}

// IsLvalue reports whether x denotes an addressable location: an
// identifier, a selector, an index expression, or one of those wrapped in
// parens, a cast, or a pointer dereference.
func IsLvalue(x Expr) bool {
	switch x := x.(type) {
	case *Ident, *SelectorExpr, *IndexExpr:
		return true
	case *ParenExpr:
		return IsLvalue(x.X)
	case *CastExpr:
		return IsLvalue(x.Expr)
	case *StarExpr:
		return true
	}
	return false
}

// IsNil reports whether x is the literal identifier NULL.
func IsNil(x Expr) bool {
	id, ok := x.(*Ident)
	return ok && id.Name == "NULL"
}
