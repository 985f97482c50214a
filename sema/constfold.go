package sema

import (
	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/symtab"
)

// FoldConstants drains the CONST work queue built by RegisterTopLevel to a fixed
// point (§4.4). Each item is retried until its initializer either collapses to a
// literal or its unresolved-reference count fails to strictly decrease, at which
// point a CircularConstant diagnostic is reported for that item only — other items
// in the same run are unaffected, matching the "Z only" example of §8 scenario 5.
func (a *Analyzer) FoldConstants() {
	queue := a.constQueue
	a.constQueue = nil

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		val, unresolved, ok := a.tryFold(item.init)
		if ok {
			item.sym.Initializer = val
			continue
		}
		if unresolved < 0 {
			// A concrete type error was already reported; retrying cannot help.
			continue
		}
		if item.lastUnresolvedCnt >= 0 && unresolved >= item.lastUnresolvedCnt {
			a.Bag.Errorf(item.sym.Range, diag.CircularConstant, "constant %q is circularly defined", item.sym.Name)
			continue
		}
		item.lastUnresolvedCnt = unresolved
		queue = append(queue, item)
	}
}

// tryFold attempts to reduce expr to a literal value, returning the value (if ok),
// and otherwise the number of still-unresolved CONST identifier references found —
// used to detect progress between work-queue visits.
func (a *Analyzer) tryFold(expr ast.Expression) (value any, unresolved int, ok bool) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value, 0, true
	case *ast.FloatLiteral:
		return e.Value, 0, true
	case *ast.BoolLiteral:
		return e.Value, 0, true
	case *ast.StringLiteral:
		return e.Value, 0, true

	case *ast.ParenExpr:
		return a.tryFold(e.Inner)

	case *ast.Identifier:
		sym, found := a.Table.Lookup(e.Name)
		if !found {
			a.Bag.Errorf(e.Range(), diag.UndeclaredName, "undeclared name %q", e.Name)
			return nil, -1, false
		}
		vs, isVar := sym.(*symtab.VariableSymbol)
		if !isVar || vs.Kind != symtab.Constant {
			a.Bag.Errorf(e.Range(), diag.NonConstInConst, "%q is not a constant", e.Name)
			return nil, -1, false
		}
		if vs.Initializer == nil {
			return nil, 1, false
		}
		return vs.Initializer, 0, true

	case *ast.UnaryExpr:
		v, u, ok := a.tryFold(e.Operand)
		if !ok {
			return nil, u, false
		}
		switch e.Op {
		case "NOT":
			b, isB := v.(bool)
			if !isB {
				a.Bag.Errorf(e.Range(), diag.TypeMismatch, "NOT requires BOOL operand")
				return nil, -1, false
			}
			return !b, 0, true
		case "-":
			switch n := v.(type) {
			case int64:
				return -n, 0, true
			case float64:
				return -n, 0, true
			default:
				a.Bag.Errorf(e.Range(), diag.TypeMismatch, "unary - requires a numeric operand")
				return nil, -1, false
			}
		}
		return nil, 0, false

	case *ast.BinaryExpr:
		lv, lu, lok := a.tryFold(e.Left)
		rv, ru, rok := a.tryFold(e.Right)
		if !lok || !rok {
			return nil, lu + ru, false
		}
		return a.foldBinary(e, lv, rv)
	}
	return nil, 0, false
}

func (a *Analyzer) foldBinary(e *ast.BinaryExpr, l, r any) (any, int, bool) {
	switch lv := l.(type) {
	case int64:
		rv, ok := r.(int64)
		if !ok {
			a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operand type mismatch in constant expression")
			return nil, -1, false
		}
		return foldIntOp(a, e, lv, rv)
	case float64:
		rv, ok := r.(float64)
		if !ok {
			a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operand type mismatch in constant expression")
			return nil, -1, false
		}
		return foldFloatOp(a, e, lv, rv)
	case bool:
		rv, ok := r.(bool)
		if !ok {
			a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operand type mismatch in constant expression")
			return nil, -1, false
		}
		return foldBoolOp(a, e, lv, rv)
	default:
		a.Bag.Errorf(e.Range(), diag.TypeMismatch, "unsupported constant operand type")
		return nil, -1, false
	}
}

func foldIntOp(a *Analyzer, e *ast.BinaryExpr, l, r int64) (any, int, bool) {
	switch e.Op {
	case "+":
		return l + r, 0, true
	case "-":
		return l - r, 0, true
	case "*":
		return l * r, 0, true
	case "/":
		if r == 0 {
			a.Bag.Errorf(e.Range(), diag.TypeMismatch, "division by zero in constant expression")
			return nil, -1, false
		}
		return l / r, 0, true
	case "&":
		return l & r, 0, true
	case "|":
		return l | r, 0, true
	case "^":
		return l ^ r, 0, true
	case "==":
		return l == r, 0, true
	case "!=":
		return l != r, 0, true
	case "<":
		return l < r, 0, true
	case ">":
		return l > r, 0, true
	case "<=":
		return l <= r, 0, true
	case ">=":
		return l >= r, 0, true
	}
	a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operator %q not valid for INT constants", e.Op)
	return nil, -1, false
}

func foldFloatOp(a *Analyzer, e *ast.BinaryExpr, l, r float64) (any, int, bool) {
	switch e.Op {
	case "+":
		return l + r, 0, true
	case "-":
		return l - r, 0, true
	case "*":
		return l * r, 0, true
	case "/":
		return l / r, 0, true
	case "==":
		return l == r, 0, true
	case "!=":
		return l != r, 0, true
	case "<":
		return l < r, 0, true
	case ">":
		return l > r, 0, true
	case "<=":
		return l <= r, 0, true
	case ">=":
		return l >= r, 0, true
	}
	a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operator %q not valid for FLOAT constants", e.Op)
	return nil, -1, false
}

func foldBoolOp(a *Analyzer, e *ast.BinaryExpr, l, r bool) (any, int, bool) {
	switch e.Op {
	case "AND":
		return l && r, 0, true
	case "OR":
		return l || r, 0, true
	case "==":
		return l == r, 0, true
	case "!=":
		return l != r, 0, true
	}
	a.Bag.Errorf(e.Range(), diag.TypeMismatch, "operator %q not valid for BOOL constants", e.Op)
	return nil, -1, false
}
