package sema

import (
	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/bound"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/symtab"
	"github.com/dr8co/vsc/types"
)

// bindExpr implements §4.5's typing rules, recursively producing a bound.Expr whose
// Type() is never Unresolved on success. On a typing error a placeholder of type
// types.Any is substituted so the caller can keep walking without cascading
// diagnostics for the same root cause (mirrors the First Pass's "leave unresolved to
// stop cascading" approach from §4.2, applied here to expression typing instead).
func (a *Analyzer) bindExpr(fs *funcScope, e ast.Expression) bound.Expr {
	switch n := e.(type) {
	case *ast.Identifier:
		return a.bindIdentifier(n)
	case *ast.IntLiteral:
		return bound.NewIntLit(n.Range(), n.Value)
	case *ast.FloatLiteral:
		return bound.NewFloatLit(n.Range(), n.Value)
	case *ast.BoolLiteral:
		return bound.NewBoolLit(n.Range(), n.Value)
	case *ast.StringLiteral:
		return bound.NewStringLit(n.Range(), n.Value)
	case *ast.ParenExpr:
		return a.bindExpr(fs, n.Inner)
	case *ast.MemberExpr:
		return a.bindMember(fs, n)
	case *ast.IndexExpr:
		return a.bindIndex(fs, n)
	case *ast.CallExpr:
		return a.bindCall(fs, n)
	case *ast.UnaryExpr:
		return a.bindUnary(fs, n)
	case *ast.BinaryExpr:
		return a.bindBinary(fs, n)
	case *ast.VectorExpr:
		return a.bindVector(fs, n)
	}
	return bound.NewIntLit(e.Range(), 0)
}

func (a *Analyzer) bindIdentifier(n *ast.Identifier) bound.Expr {
	sym, found := a.Table.Lookup(n.Name)
	if !found {
		a.Bag.Errorf(n.Range(), diag.UndeclaredName, "undeclared name %q", n.Name)
		return bound.NewIdent(n.Range(), types.Any, nil)
	}
	vs, ok := sym.(*symtab.VariableSymbol)
	if !ok {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "%q is not a variable", n.Name)
		return bound.NewIdent(n.Range(), types.Any, nil)
	}
	if vs.Kind == symtab.Constant && vs.Initializer != nil {
		return bound.NewConstRef(n.Range(), vs.Type, vs, vs.Initializer)
	}
	return bound.NewIdent(n.Range(), vs.Type, vs)
}

func (a *Analyzer) bindMember(fs *funcScope, n *ast.MemberExpr) bound.Expr {
	target := a.bindExpr(fs, n.Target)
	st, ok := structOf(target.Type())
	if !ok {
		a.Bag.Errorf(n.Range(), diag.UnknownMember, "member access on non-struct type %s", target.Type())
		return bound.NewMember(n.Range(), types.Any, target, n.Field, 0)
	}
	offset, ft, ok := st.FieldOffset(n.Field)
	if !ok {
		a.Bag.Errorf(n.Range(), diag.UnknownMember, "type %s has no member %q", target.Type(), n.Field)
		return bound.NewMember(n.Range(), types.Any, target, n.Field, 0)
	}
	return bound.NewMember(n.Range(), ft, target, n.Field, offset)
}

// structOf unwraps a bare Struct or a Ref(Struct), per §4.5's "Member-access
// requires Struct or Ref(Struct)" rule.
func structOf(t types.Type) (*types.Struct, bool) {
	switch v := t.(type) {
	case *types.Struct:
		return v, true
	case *types.Ref:
		if st, ok := v.Elem.(*types.Struct); ok {
			return st, true
		}
	}
	return nil, false
}

func arrayOf(t types.Type) (*types.Array, bool) {
	switch v := t.(type) {
	case *types.Array:
		return v, true
	case *types.Ref:
		if at, ok := v.Elem.(*types.Array); ok {
			return at, true
		}
	}
	return nil, false
}

func (a *Analyzer) bindIndex(fs *funcScope, n *ast.IndexExpr) bound.Expr {
	target := a.bindExpr(fs, n.Target)
	index := a.bindExpr(fs, n.Index)
	at, ok := arrayOf(target.Type())
	if !ok {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "index target is not an array type (%s)", target.Type())
		return bound.NewIndex(n.Range(), types.Any, target, index)
	}
	if !types.IsNumeric(index.Type()) || !isInt(index.Type()) {
		a.Bag.Errorf(n.Index.Range(), diag.TypeMismatch, "array index must be INT")
	}
	return bound.NewIndex(n.Range(), at.Elem, target, index)
}

func isInt(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind == types.INT
}

func (a *Analyzer) bindCall(fs *funcScope, n *ast.CallExpr) bound.Expr {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "call target must be a function name")
		return bound.NewCall(n.Range(), types.Any, nil, nil)
	}
	sym, found := a.Table.Lookup(ident.Name)
	if !found {
		a.Bag.Errorf(n.Range(), diag.UndeclaredName, "undeclared name %q", ident.Name)
		return bound.NewCall(n.Range(), types.Any, nil, nil)
	}
	fsym, ok := sym.(*symtab.FunctionSymbol)
	if !ok {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "%q is not callable", ident.Name)
		return bound.NewCall(n.Range(), types.Any, nil, nil)
	}
	fn := fsym.Type

	args := make([]bound.Expr, len(n.Args))
	for i, argExpr := range n.Args {
		args[i] = a.bindExpr(fs, argExpr)
	}
	if len(args) != len(fn.Params) {
		a.Bag.Errorf(n.Range(), diag.ArityMismatch, "%q expects %d argument(s), got %d", ident.Name, len(fn.Params), len(args))
	} else {
		for i, p := range fn.Params {
			if !types.Assignable(p.Type, args[i].Type(), types.ConsiderRefs) {
				a.Bag.Errorf(n.Args[i].Range(), diag.TypeMismatch,
					"argument %d to %q: cannot use %s as %s", i+1, ident.Name, args[i].Type(), p.Type)
			}
		}
	}
	retType := types.Type(types.Any)
	if fn.Return != nil {
		retType = fn.Return
	}
	return bound.NewCall(n.Range(), retType, fsym, args)
}

func (a *Analyzer) bindUnary(fs *funcScope, n *ast.UnaryExpr) bound.Expr {
	operand := a.bindExpr(fs, n.Operand)
	switch n.Op {
	case "NOT":
		if !types.IsBool(operand.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "NOT requires a BOOL operand, got %s", operand.Type())
			return bound.NewUnary(n.Range(), types.Bool, n.Op, operand)
		}
		return bound.NewUnary(n.Range(), types.Bool, n.Op, operand)
	case "-":
		if !types.IsNumeric(operand.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "unary - requires a numeric operand, got %s", operand.Type())
			return bound.NewUnary(n.Range(), types.Int, n.Op, operand)
		}
		return bound.NewUnary(n.Range(), operand.Type(), n.Op, operand)
	}
	a.Bag.Errorf(n.Range(), diag.TypeMismatch, "unknown unary operator %q", n.Op)
	return bound.NewUnary(n.Range(), types.Any, n.Op, operand)
}

var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true}
var compareOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}
var logicalOps = map[string]bool{"AND": true, "OR": true}

func (a *Analyzer) bindBinary(fs *funcScope, n *ast.BinaryExpr) bound.Expr {
	left := a.bindExpr(fs, n.Left)
	right := a.bindExpr(fs, n.Right)

	switch {
	case logicalOps[n.Op]:
		if !types.IsBool(left.Type()) || !types.IsBool(right.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "%s requires BOOL operands", n.Op)
		}
		return bound.NewBinary(n.Range(), types.Bool, n.Op, left, right)

	case bitwiseOps[n.Op]:
		if !isInt(left.Type()) || !isInt(right.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "%s requires INT operands", n.Op)
			return bound.NewBinary(n.Range(), types.Int, n.Op, left, right)
		}
		return bound.NewBinary(n.Range(), types.Int, n.Op, left, right)

	case compareOps[n.Op]:
		if !types.IsNumeric(left.Type()) || !types.Equal(left.Type(), right.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "comparison requires two operands of the same numeric type, got %s and %s", left.Type(), right.Type())
		}
		return bound.NewBinary(n.Range(), types.Bool, n.Op, left, right)

	default: // arithmetic: + - * /
		if !types.IsNumeric(left.Type()) || !types.Equal(left.Type(), right.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "%s requires two operands of the same numeric type, got %s and %s", n.Op, left.Type(), right.Type())
			return bound.NewBinary(n.Range(), left.Type(), n.Op, left, right)
		}
		return bound.NewBinary(n.Range(), left.Type(), n.Op, left, right)
	}
}

// vec3Type is the struct{ x, y, z FLOAT } shape every `<<a,b,c>>` vector literal
// binds to (§4.3). A single package-level value, so every vector literal shares
// the same struct identity.
var vec3Type = &types.Struct{
	Name: "VEC3",
	Fields: []types.Field{
		{Name: "x", Type: types.Float},
		{Name: "y", Type: types.Float},
		{Name: "z", Type: types.Float},
	},
}

// isVec3 reports whether t is the VEC3 struct shape, by name rather than
// identity, since a VEC3-typed value can flow in from a resolved TypeSymbol
// rather than vec3Type itself.
func isVec3(t types.Type) bool {
	st, ok := t.(*types.Struct)
	return ok && upper(st.Name) == "VEC3"
}

// bindVector binds a `<<...>>` vector literal (§4.3). Each component
// contributes as many scalars as its own type's size: an ordinary
// FLOAT-assignable expression contributes 1, and a VEC3-typed component
// (e.g. the result of a function returning VEC3) is spliced in whole,
// contributing its 3 scalars, rather than being rejected outright — the
// codegen side already pushes a multi-slot value's cells in order for any
// expression shape (Ident, Member, Call), so no flattening into separate
// field-access nodes is needed here. The literal is well-formed only if the
// components' scalar contributions sum to exactly 3.
func (a *Analyzer) bindVector(fs *funcScope, n *ast.VectorExpr) bound.Expr {
	comps := make([]bound.Expr, len(n.Components))
	arity := 0
	for i, c := range n.Components {
		comps[i] = a.bindExpr(fs, c)
		t := comps[i].Type()
		switch {
		case isVec3(t):
			arity += t.Size()
		case types.Assignable(types.Float, t, types.ConsiderRefs):
			arity++
		default:
			a.Bag.Errorf(c.Range(), diag.TypeMismatch,
				"vector component %d must be FLOAT-assignable or VEC3, got %s", i+1, t)
		}
	}
	if arity != 3 {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "vector literal requires exactly 3 components, got %d", arity)
	}
	return bound.NewVector(n.Range(), vec3Type, comps)
}
