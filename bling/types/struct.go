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

import "foundry.dev/bling/bling/ast"

// getStructFieldByName looks up name among typ's fields, recursing into
// anonymous (nameless) embedded fields so a promoted field resolves too.
func getStructFieldByName(c *checker, typ ast.Expr, name *ast.Ident) *ast.Field {
	base := getBaseType(c, typ)
	st, ok := base.(*ast.StructType)
	if !ok {
		c.errorf(typ.Pos(), "not a struct: %s", typeString(typ))
	}
	for _, field := range st.Fields {
		if field.Name != nil {
			if field.Name.Name == name.Name {
				return field
			}
			continue
		}
		if sub := getStructFieldByName(c, field.Type, name); sub != nil {
			return sub
		}
	}
	return nil
}

// getStructField returns the field at the given positional index, used for
// positional (non key/value) composite-literal elements.
func getStructField(c *checker, typ ast.Expr, index int) *ast.Field {
	base := getBaseType(c, typ)
	st, ok := base.(*ast.StructType)
	if !ok {
		c.errorf(typ.Pos(), "not a struct: %s", typeString(typ))
	}
	if st.Fields == nil {
		c.errorf(typ.Pos(), "incomplete field definition")
	}
	if index < 0 || index >= len(st.Fields) {
		return nil
	}
	return st.Fields[index]
}
