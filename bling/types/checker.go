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
	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/token"
)

// getDeclType returns the type expression a declaration introduces into
// its scope: the declared type of a field, function, typedef, or value.
// Imports introduce no type (their Object carries the imported scope in
// Data instead), so they return nil.
func getDeclType(c *checker, decl ast.Node) ast.Expr {
	switch d := decl.(type) {
	case *ast.Field:
		return d.Type
	case *ast.FuncDecl:
		return d.Type
	case *ast.ImportDecl:
		return nil
	case *ast.TypedefDecl:
		return d.Type
	case *ast.ValueDecl:
		return d.Type
	default:
		c.errorf(decl.Pos(), "unhandled decl %T", decl)
		return nil
	}
}

func makePtr(t ast.Expr) ast.Expr {
	return &ast.StarExpr{X: t}
}

// lookupIdent resolves a predeclared or package-scope type name (e.g.
// "bool", "int", "char") to its Ident, the same way the teacher's
// Checker_lookupIdent fabricates synthetic type references for literal
// inference.
func (c *checker) lookupIdent(name string) ast.Expr {
	obj := c.pkg.Scope.LookupParent(name)
	if obj == nil {
		c.errorf(token.NoPos, "internal: predeclared type not found: %s", name)
	}
	decl, ok := obj.Decl.(*ast.TypedefDecl)
	if !ok {
		c.errorf(token.NoPos, "internal: %s is not a type", name)
	}
	return &ast.Ident{Name: name, Obj: obj, NamePos: decl.Name.Pos()}
}

// ----------------------------------------------------------------------------
// Type-expression checking

// checkType validates a type expression, resolving identifiers, descending
// into arrays/pointers/func signatures, and — for struct and enum literals
// — opening a scope and declaring fields/enumerators as it goes.
func (c *checker) checkType(t ast.Expr) {
	switch x := t.(type) {

	case *ast.Ident:
		c.resolve(c.pkg.Scope, x)

	case *ast.SelectorExpr:
		typ := c.checkExpr(x.X)
		if typ != nil {
			c.errorf(x.Pos(), "not a package selector")
		}
		pkgIdent, ok := x.X.(*ast.Ident)
		if !ok || pkgIdent.Obj == nil || pkgIdent.Obj.Kind != ast.ObjPkg {
			c.errorf(x.Pos(), "not a package")
		}
		old := c.pkg.Scope
		c.pkg.Scope, _ = pkgIdent.Obj.Data.(*ast.Scope)
		c.checkType(x.Sel)
		c.pkg.Scope = old

	case *ast.StarExpr:
		c.checkType(x.X)

	case *ast.ArrayType:
		c.checkType(x.Elt)
		if x.Len != nil {
			c.checkExpr(x.Len)
		}

	case *ast.Ellipsis:
		// nothing to check

	case *ast.EnumType:
		for _, decl := range x.Enums {
			if x.Name != nil {
				decl.Type = x.Name
			}
			c.declare(decl, nil, c.pkg.Scope, ast.ObjConst, decl.Name)
			if decl.Value != nil {
				c.checkExpr(decl.Value)
			}
		}

	case *ast.FuncType:
		for _, param := range x.Params {
			c.checkType(param.Type)
		}
		if x.Result != nil {
			if _, ok := x.Result.(*ast.BuiltinType); !ok {
				c.checkType(x.Result)
			}
		}

	case *ast.StructType:
		if x.Fields != nil {
			c.openScope()
			for _, field := range x.Fields {
				if field.Type != nil {
					c.checkType(field.Type)
				}
				if field.Name != nil {
					c.declare(field, nil, c.pkg.Scope, ast.ObjValue, field.Name)
				}
			}
			c.closeScope()
		}

	case *ast.NativeType:
		// predeclared or raw passthrough C type name; nothing to resolve

	case *ast.BuiltinType:
		// predeclared builtin result placeholder; nothing to resolve

	default:
		c.errorf(t.Pos(), "unknown type: %T", t)
	}
}

// checkIdent returns the declared type of an already-resolved identifier.
func (c *checker) checkIdent(x *ast.Ident) ast.Expr {
	if x.Obj == nil {
		c.errorf(x.Pos(), "unresolved identifier")
	}
	return getDeclType(c, x.Obj.Decl)
}

// ----------------------------------------------------------------------------
// Composite literals

func (c *checker) checkArrayLit(x *ast.CompositeLit) {
	baseT := getBaseType(c, x.Type)
	arr, ok := baseT.(*ast.ArrayType)
	if !ok {
		c.errorf(x.Pos(), "composite type must be an array or a struct")
	}
	for _, elt := range x.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			kv.IsArray = true
			indexT := c.checkExpr(kv.Key)
			if !isInteger(c, indexT) {
				c.errorf(kv.Pos(), "not a valid index")
			}
			elt = kv.Value
		}
		if lit, ok := elt.(*ast.CompositeLit); ok {
			if lit.Type == nil {
				lit.Type = arr.Elt
			} else {
				c.checkType(lit.Type)
			}
			c.checkCompositeLit(lit)
		} else {
			c.checkExpr(elt)
		}
	}
}

func (c *checker) checkStructLit(x *ast.CompositeLit) {
	expectKV := false
	for i, elt := range x.Elts {
		var fieldT ast.Expr
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			kv.IsArray = false
			expectKV = true
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				c.errorf(x.Pos(), "key must be an identifier")
			}
			field := getStructFieldByName(c, x.Type, key)
			if field == nil {
				c.errorf(key.Pos(), "no member named '%s' in '%s'", key.Name, typeString(x.Type))
			}
			key.Obj = field.Name.Obj
			fieldT = field.Type
			elt = kv.Value
		} else {
			if expectKV {
				c.errorf(x.Pos(), "expected a key/value expr")
			}
			field := getStructField(c, x.Type, i)
			if field == nil {
				c.errorf(x.Pos(), "too many elements for struct literal")
			}
			fieldT = field.Type
		}
		var eltT ast.Expr
		if lit, ok := elt.(*ast.CompositeLit); ok {
			if lit.Type == nil {
				lit.Type = fieldT
			} else {
				c.checkType(lit.Type)
			}
			eltT = c.checkCompositeLit(lit)
		} else {
			eltT = c.checkExpr(elt)
		}
		if !areAssignable(c, fieldT, eltT) {
			c.errorf(elt.Pos(), "cannot init field of type `%s` with value of type `%s`", typeString(fieldT), typeString(eltT))
		}
	}
}

func (c *checker) checkCompositeLit(x *ast.CompositeLit) ast.Expr {
	if x.Type == nil {
		c.errorf(x.Pos(), "composite literal requires a type")
	}
	base := getBaseType(c, x.Type)
	switch base.(type) {
	case *ast.ArrayType:
		c.checkArrayLit(x)
	case *ast.StructType:
		c.checkStructLit(x)
	default:
		c.errorf(x.Pos(), "composite type must be an array or a struct")
	}
	return x.Type
}

// ----------------------------------------------------------------------------
// Expression checking

// checkExpr checks expr and returns its resolved type.
func (c *checker) checkExpr(expr ast.Expr) ast.Expr {
	switch x := expr.(type) {

	case *ast.BinaryExpr:
		typ1 := c.checkExpr(x.X)
		typ2 := c.checkExpr(x.Y)
		if !areComparable(c, typ1, typ2) {
			c.errorf(x.Pos(), "not comparable: %s and %s", typeString(typ1), typeString(typ2))
		}
		switch x.Op {
		case token.EQUAL, token.GT, token.GT_EQUAL, token.LAND, token.LOR,
			token.LT, token.LT_EQUAL, token.NOT_EQUAL:
			return c.lookupIdent("bool")
		default:
			return typ1
		}

	case *ast.BasicLit:
		switch x.Kind {
		case token.CHAR:
			return c.lookupIdent("char")
		case token.FLOAT:
			return c.lookupIdent("float")
		case token.INT:
			return c.lookupIdent("int")
		case token.STRING:
			return makePtr(c.lookupIdent("char"))
		default:
			c.errorf(x.Pos(), "unreachable basic literal kind")
			return nil
		}

	case *ast.CallExpr:
		return c.checkCallExpr(x)

	case *ast.CompositeLit:
		if x.Type != nil {
			c.checkType(x.Type)
		}
		c.checkCompositeLit(x)
		return x.Type

	case *ast.CastExpr:
		c.checkType(x.Type)
		c.checkExpr(x.Expr)
		return x.Type

	case *ast.Ident:
		c.resolve(c.pkg.Scope, x)
		return c.checkIdent(x)

	case *ast.IndexExpr:
		typ := c.checkExpr(x.X)
		switch t := typ.(type) {
		case *ast.ArrayType:
			typ = t.Elt
		case *ast.StarExpr:
			typ = t.X
		default:
			c.errorf(x.Pos(), "indexing a non-array or pointer `%s`", typeString(typ))
		}
		c.checkExpr(x.Index)
		return typ

	case *ast.ParenExpr:
		return c.checkExpr(x.X)

	case *ast.SelectorExpr:
		return c.checkSelectorExpr(x)

	case *ast.SizeofExpr:
		c.checkType(x.X)
		return c.lookupIdent("u64")

	case *ast.StarExpr:
		typ := c.checkExpr(x.X)
		switch t := typ.(type) {
		case *ast.StarExpr:
			return t.X
		case *ast.ArrayType:
			return t.Elt
		default:
			c.errorf(x.Pos(), "dereferencing a non-pointer `%s`", typeString(typ))
			return nil
		}

	case *ast.TernaryExpr:
		t1 := c.checkExpr(x.Cond)
		if !isArithmetic(c, t1) {
			c.errorf(x.Pos(), "ternary condition must be arithmetic")
		}
		t2 := t1
		if x.Consequence != nil {
			t2 = c.checkExpr(x.Consequence)
		}
		t3 := c.checkExpr(x.Alternative)
		if !areComparable(c, t2, t3) {
			c.errorf(x.Pos(), "not comparable")
		}
		return t2

	case *ast.UnaryExpr:
		typ := c.checkExpr(x.X)
		switch x.Op {
		case token.AND:
			if !ast.IsLvalue(x.X) {
				c.errorf(x.Pos(), "invalid lvalue")
			}
			return makePtr(typ)
		case token.LAND:
			return makePtr(typ)
		default:
			return typ
		}

	default:
		c.errorf(expr.Pos(), "unknown expr: %T", expr)
		return nil
	}
}

func (c *checker) checkCallExpr(x *ast.CallExpr) ast.Expr {
	typ := c.checkExpr(x.Fun)
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	ft, ok := typ.(*ast.FuncType)
	if !ok {
		c.errorf(x.Pos(), "not a func")
		return nil
	}
	// A universe builtin's declared type is a FuncType whose result is the
	// builtin's signature record; the recorded arity replaces the (empty)
	// parameter list walk.
	if b, ok := ft.Result.(*ast.BuiltinType); ok {
		for _, arg := range x.Args {
			c.checkExpr(arg)
		}
		n := len(x.Args)
		if b.Variadic {
			if n < b.Nargs {
				c.errorf(x.Pos(), "too few args to `%s`", b.Name)
			}
		} else if n != b.Nargs {
			c.errorf(x.Pos(), "wrong number of args to `%s`", b.Name)
		}
		return nil // every predeclared builtin currently returns an unchecked result
	}
	j := 0
	for _, arg := range x.Args {
		if j >= len(ft.Params) {
			if ft.Ellipsis {
				c.checkExpr(arg)
				continue
			}
			c.errorf(x.Pos(), "too many args")
			break
		}
		param := ft.Params[j]
		argT := c.checkExpr(arg)
		if _, isEllipsis := param.Type.(*ast.Ellipsis); isEllipsis {
			continue
		}
		if !areAssignable(c, param.Type, argT) {
			c.errorf(x.Pos(), "not assignable: `%s` and `%s`", typeString(param.Type), typeString(argT))
		}
		j++
	}
	return ft.Result
}

func (c *checker) checkSelectorExpr(x *ast.SelectorExpr) ast.Expr {
	typ := c.checkExpr(x.X)
	if typ == nil {
		pkgIdent, ok := x.X.(*ast.Ident)
		if !ok || pkgIdent.Obj == nil {
			c.errorf(x.Pos(), "not a package selector")
		}
		if _, ok := pkgIdent.Obj.Decl.(*ast.ImportDecl); !ok {
			c.errorf(x.Pos(), "not a package selector")
		}
		old := c.pkg.Scope
		c.pkg.Scope, _ = pkgIdent.Obj.Data.(*ast.Scope)
		result := c.checkExpr(x.Sel)
		c.pkg.Scope = old
		return result
	}
	if star, ok := typ.(*ast.StarExpr); ok {
		x.Tok = token.ARROW
		typ = star.X
	} else if x.Tok == token.ARROW {
		// `->` written in the source: only the C dialect produces it, and
		// there the base may be a typedef'd pointer the StarExpr test
		// above cannot see through.
		if !c.conf.CMode {
			c.errorf(x.Pos(), "unexpected `->` outside C mode")
		}
		if id, ok := typ.(*ast.Ident); ok {
			if star, ok := getUnderlyingType(c, id).(*ast.StarExpr); ok {
				typ = star.X
			}
		}
	}
	field := getStructFieldByName(c, typ, x.Sel)
	if field == nil {
		c.errorf(x.Pos(), "no member named '%s' in '%s'", x.Sel.Name, typeString(typ))
	}
	x.Sel.Obj = field.Name.Obj
	return field.Type
}

// ----------------------------------------------------------------------------
// Statement checking

func (c *checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {

	case *ast.AssignStmt:
		if !ast.IsLvalue(s.X) {
			c.errorf(s.Pos(), "invalid lvalue")
		}
		a := c.checkExpr(s.X)
		b := c.checkExpr(s.Y)
		if !areAssignable(c, a, b) {
			c.errorf(s.Pos(), "not assignable: `%s` and `%s`", typeString(a), typeString(b))
		}

	case *ast.BlockStmt:
		c.openScope()
		s.Scope = c.pkg.Scope
		for _, inner := range s.List {
			c.checkStmt(inner)
		}
		c.closeScope()

	case *ast.DeclStmt:
		c.checkDecl(s.Decl)

	case *ast.ExprStmt:
		c.checkExpr(s.X)

	case *ast.EmptyStmt:
		// nothing to check

	case *ast.IfStmt:
		c.checkExpr(s.Cond)
		c.checkStmt(s.Body)
		if s.Else != nil {
			c.checkStmt(s.Else)
		}

	case *ast.IterStmt:
		opened := s.Init != nil || s.Post != nil
		if opened {
			c.openScope()
			s.Scope = c.pkg.Scope
		}
		if s.Init != nil {
			c.checkStmt(s.Init)
		}
		if s.Cond != nil {
			c.checkExpr(s.Cond)
		}
		if s.Post != nil {
			c.checkStmt(s.Post)
		}
		c.checkStmt(s.Body)
		if opened {
			c.closeScope()
		}

	case *ast.JumpStmt:
		// TODO(bling): walk goto labels in a dedicated label scope.

	case *ast.LabeledStmt:
		c.checkStmt(s.Stmt)

	case *ast.PostfixStmt:
		c.checkExpr(s.X)

	case *ast.ReturnStmt:
		if s.X != nil {
			a := c.result
			b := c.checkExpr(s.X)
			if a == nil {
				c.errorf(s.Pos(), "returning value in void function")
			}
			if !areAssignable(c, a, b) {
				c.errorf(s.Pos(), "not returnable: %s and %s", typeString(a), typeString(b))
			}
		}

	case *ast.SwitchStmt:
		tagT := c.checkExpr(s.Tag)
		for _, clause := range s.Body {
			for _, e := range clause.Exprs {
				caseT := c.checkExpr(e)
				if !areComparable(c, tagT, caseT) {
					c.errorf(clause.Pos(), "not comparable: %s and %s", typeString(tagT), typeString(caseT))
				}
			}
			for _, inner := range clause.Body {
				c.checkStmt(inner)
			}
		}

	default:
		c.errorf(stmt.Pos(), "unknown stmt: %T", stmt)
	}
}

// ----------------------------------------------------------------------------
// Declaration checking

func (c *checker) checkDecl(decl ast.Decl) {
	switch d := decl.(type) {

	case *ast.FuncDecl:
		c.checkType(d.Type)
		if c.conf.IgnoreFuncBodies || d.Body == nil {
			return
		}
		c.openScope()
		for _, param := range d.Type.Params {
			if param.Name != nil {
				c.declare(param, nil, c.pkg.Scope, ast.ObjValue, param.Name)
			}
		}
		c.result = d.Type.Result
		// Walk the block's statements directly rather than calling
		// checkStmt(d.Body), which would open a second, redundant scope
		// for the function's top-level block.
		for _, stmt := range d.Body.List {
			c.checkStmt(stmt)
		}
		d.Body.Scope = c.pkg.Scope
		c.result = nil
		c.closeScope()

	case *ast.PragmaDecl:
		// passthrough; nothing to check

	case *ast.TypedefDecl:
		switch t := d.Type.(type) {
		case *ast.EnumType:
			t.Name = d.Name
		case *ast.StructType:
			t.Name = d.Name
		}
		c.checkType(d.Type)

	case *ast.ValueDecl:
		var valType ast.Expr
		if d.Type != nil {
			c.checkType(d.Type)
		}
		if d.Value != nil {
			if lit, ok := d.Value.(*ast.CompositeLit); ok {
				if lit.Type == nil {
					lit.Type = d.Type
				} else {
					c.checkType(lit.Type)
				}
				valType = c.checkCompositeLit(lit)
			} else {
				valType = c.checkExpr(d.Value)
			}
		}
		if d.Type == nil {
			d.Type = valType
		}
		if valType != nil && !areAssignable(c, d.Type, valType) {
			c.errorf(d.Pos(), "not assignable: %s and %s", typeString(d.Type), typeString(valType))
		}
		c.declare(d, nil, c.pkg.Scope, ast.ObjValue, d.Name)

	default:
		c.errorf(decl.Pos(), "unreachable decl kind: %T", decl)
	}
}

// ----------------------------------------------------------------------------
// File / import checking

func (c *checker) checkImport(imp *ast.ImportDecl) *Package {
	path := imp.Path.Value
	if n := len(path); n >= 2 {
		path = path[1 : n-1] // strip surrounding quotes
	}
	pkg := c.info.imports[path]
	if pkg == nil {
		if c.load == nil {
			c.errorf(imp.Pos(), "import %q has not been pre-checked by the build driver", path)
		}
		files, err := c.load(path)
		if err != nil {
			c.errorf(imp.Pos(), "import %q: %v", path, err)
		}
		pkg = CheckFiles(c.conf, path, c.fset, files, c.info, c.load)
	}
	imp.Scope = pkg.Scope
	name := &ast.Ident{Name: pkg.Name, NamePos: imp.Path.Pos()}
	c.declare(imp, pkg.Scope, c.pkg.Scope, ast.ObjPkg, name)
	return pkg
}

func (c *checker) checkFile(file *ast.File) {
	for _, imp := range file.Imports {
		pkg := c.checkImport(imp)
		c.pkg.Imports = append(c.pkg.Imports, pkg)
	}
	c.pkg.Files = append(c.pkg.Files, file)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			c.declare(decl, nil, c.pkg.Scope, ast.ObjFunc, d.Name)
		case *ast.TypedefDecl:
			c.predeclareType(d, c.pkg.Scope)
		}
	}
	// ValueDecls are not pre-declared above: their name is only bound once
	// checkDecl has inferred a missing type from the initializer.
	for _, decl := range file.Decls {
		c.checkDecl(decl)
	}
}
