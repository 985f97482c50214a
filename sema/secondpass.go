package sema

import (
	"strings"

	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/bound"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/symtab"
	"github.com/dr8co/vsc/types"
)

// funcScope carries the Second Pass's per-function state: the frame-slot cursor
// (§4.7), the function symbol being checked (for RETURN typing), and whether a loop
// or switch currently encloses the statement being checked (for BREAK/CONTINUE).
type funcScope struct {
	sym      *symtab.FunctionSymbol
	nextSlot int
	locals   []*symtab.VariableSymbol
	// loopDepth counts enclosing WHILE/REPEAT constructs: both BREAK and
	// CONTINUE are valid once it is nonzero.
	loopDepth int
	// switchDepth counts enclosing SWITCH constructs: BREAK is valid once it
	// or loopDepth is nonzero, but CONTINUE is not — a SWITCH is not a loop,
	// so CONTINUE only binds through to an enclosing WHILE/REPEAT, if any.
	switchDepth int
}

// BindFunction runs the Second Pass and Binder together over one PROC/FUNC body:
// it opens a lexical scope, allocates parameter frame slots, type-checks and binds
// every statement, then closes the scope and writes ArgsSize/LocalsSize back onto
// the function symbol (§4.7) for the code generator.
func (a *Analyzer) BindFunction(sym *symtab.FunctionSymbol, params []ast.Param, body []ast.Statement) *bound.Function {
	a.Table.EnterScope(sym.Name)
	defer a.Table.ExitScope()

	fs := &funcScope{sym: sym}
	var paramSyms []*symtab.VariableSymbol
	for _, p := range params {
		base := a.declaratorBaseType(p.Declarator)
		t := p.Declarator.Build(base)
		vs := &symtab.VariableSymbol{
			Name: p.Name, Range: p.Range(), Type: t, Kind: symtab.LocalArgument,
			FrameSlot: fs.nextSlot, ImageOffset: -1,
		}
		fs.nextSlot += t.Size()
		if err := a.Table.Add(vs); err != nil {
			a.Bag.Errorf(p.Range(), diag.DuplicateSymbol, "duplicate parameter %q", p.Name)
			continue
		}
		paramSyms = append(paramSyms, vs)
	}
	sym.ArgsSize = fs.nextSlot
	fs.nextSlot += 2 // ABI gap (I2)

	boundBody := a.bindStmts(fs, body)

	sym.LocalsSize = fs.nextSlot - sym.ArgsSize - 2
	return &bound.Function{Symbol: sym, Params: paramSyms, Locals: fs.locals, Body: boundBody}
}

func (a *Analyzer) bindStmts(fs *funcScope, stmts []ast.Statement) []bound.Stmt {
	out := make([]bound.Stmt, 0, len(stmts))
	for _, s := range stmts {
		if b := a.bindStmt(fs, s); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (a *Analyzer) bindStmt(fs *funcScope, s ast.Statement) bound.Stmt {
	switch n := s.(type) {
	case *ast.VarDecl:
		return a.bindLocalDecl(fs, n)
	case *ast.AssignStatement:
		return a.bindAssign(fs, n)
	case *ast.ExprStatement:
		e := a.bindExpr(fs, n.Expression)
		return bound.NewExprStmt(n.Range(), e)
	case *ast.IfStatement:
		cond := a.bindExpr(fs, n.Cond)
		a.requireBool(cond, n.Cond.Range())
		then := a.bindStmts(fs, n.Then)
		var els []bound.Stmt
		if n.Else != nil {
			els = a.bindStmts(fs, n.Else)
		}
		return bound.NewIf(n.Range(), cond, then, els)
	case *ast.WhileStatement:
		cond := a.bindExpr(fs, n.Cond)
		a.requireBool(cond, n.Cond.Range())
		fs.loopDepth++
		body := a.bindStmts(fs, n.Body)
		fs.loopDepth--
		return bound.NewWhile(n.Range(), cond, body)
	case *ast.RepeatStatement:
		return a.bindRepeat(fs, n)
	case *ast.SwitchStatement:
		return a.bindSwitch(fs, n)
	case *ast.ReturnStatement:
		return a.bindReturn(fs, n)
	case *ast.BreakStatement:
		if fs.loopDepth == 0 && fs.switchDepth == 0 {
			a.Bag.Errorf(n.Range(), diag.SyntaxError, "BREAK outside a loop or switch")
		}
		return bound.NewBreak(n.Range())
	case *ast.ContinueStatement:
		if fs.loopDepth == 0 {
			a.Bag.Errorf(n.Range(), diag.SyntaxError, "CONTINUE outside a loop")
		}
		return bound.NewContinue(n.Range())
	}
	return nil
}

func (a *Analyzer) bindLocalDecl(fs *funcScope, n *ast.VarDecl) bound.Stmt {
	base := a.declaratorBaseType(n.Declarator)
	t := a.resolve(n.Declarator.Build(base))
	vs := &symtab.VariableSymbol{
		Name: n.Name, Range: n.Range(), Type: t, Kind: symtab.Local,
		FrameSlot: fs.nextSlot, ImageOffset: -1,
	}
	fs.nextSlot += t.Size()
	fs.locals = append(fs.locals, vs)
	if err := a.Table.Add(vs); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate local %q", n.Name)
	}

	var init bound.Expr
	if n.Initializer != nil {
		init = a.bindExpr(fs, n.Initializer)
		if !types.Assignable(t, init.Type(), types.ConsiderRefs) {
			a.Bag.Errorf(n.Initializer.Range(), diag.TypeMismatch,
				"cannot initialize %q of type %s with %s", n.Name, t, init.Type())
		}
	}
	return bound.NewLocalDecl(n.Range(), vs, init)
}

func (a *Analyzer) bindAssign(fs *funcScope, n *ast.AssignStatement) bound.Stmt {
	target := a.bindExpr(fs, n.Target)
	a.checkLvalue(n.Target)

	value := a.bindExpr(fs, n.Value)
	if n.Op != "=" {
		op := strings.TrimSuffix(n.Op, "=")
		if !types.IsNumeric(target.Type()) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "compound assignment requires a numeric target")
		}
		value = bound.NewBinary(n.Range(), target.Type(), op, target, value)
	}
	if ref, isRef := target.Type().(*types.Ref); isRef {
		if types.IsAny(ref.Elem) {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "cannot assign through a REF<ANY>")
		}
	}
	if !types.Assignable(target.Type(), value.Type(), types.ConsiderRefs) {
		a.Bag.Errorf(n.Range(), diag.TypeMismatch, "cannot assign %s to %s", value.Type(), target.Type())
	}
	return bound.NewAssign(n.Range(), target, value)
}

func (a *Analyzer) checkLvalue(e ast.Expression) {
	switch v := e.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.IndexExpr:
		return
	case *ast.ParenExpr:
		a.checkLvalue(v.Inner)
	default:
		a.Bag.Errorf(e.Range(), diag.TypeMismatch, "invalid assignment target")
	}
}

func (a *Analyzer) bindRepeat(fs *funcScope, n *ast.RepeatStatement) bound.Stmt {
	limit := a.bindExpr(fs, n.Limit)
	counter := a.bindExpr(fs, n.Counter)
	if !isInt(limit.Type()) {
		a.Bag.Errorf(n.Limit.Range(), diag.TypeMismatch, "REPEAT limit must be INT")
	}
	if !isInt(counter.Type()) {
		a.Bag.Errorf(n.Counter.Range(), diag.TypeMismatch, "REPEAT counter must be INT")
	}
	a.checkLvalue(n.Counter)
	fs.loopDepth++
	body := a.bindStmts(fs, n.Body)
	fs.loopDepth--
	return bound.NewRepeat(n.Range(), limit, counter, body)
}

func (a *Analyzer) bindSwitch(fs *funcScope, n *ast.SwitchStatement) bound.Stmt {
	value := a.bindExpr(fs, n.Value)
	if !isInt(value.Type()) {
		a.Bag.Errorf(n.Value.Range(), diag.TypeMismatch, "SWITCH value must be INT")
	}
	fs.switchDepth++
	defer func() { fs.switchDepth-- }()

	seen := map[int64]bool{}
	cases := make([]bound.SwitchCase, 0, len(n.Cases))
	for _, c := range n.Cases {
		v, _, ok := a.tryFold(c.Value)
		iv, isInt := v.(int64)
		if !ok || !isInt {
			a.Bag.Errorf(c.Value.Range(), diag.TypeMismatch, "CASE value must be a constant INT")
			iv = 0
		}
		if seen[iv] {
			a.Bag.Errorf(c.Rng, diag.DuplicateCase, "duplicate CASE value %d", iv)
		}
		seen[iv] = true
		cases = append(cases, bound.SwitchCase{Value: iv, Body: a.bindStmts(fs, c.Body)})
	}
	var def []bound.Stmt
	if n.Default != nil {
		def = a.bindStmts(fs, n.Default)
	}
	return bound.NewSwitch(n.Range(), value, cases, def)
}

func (a *Analyzer) bindReturn(fs *funcScope, n *ast.ReturnStatement) bound.Stmt {
	fn := fs.sym.Type
	if fn.Return == nil {
		if n.Value != nil {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "PROC %q must not return a value", fs.sym.Name)
		}
		return bound.NewReturn(n.Range(), nil)
	}
	if n.Value == nil {
		a.Bag.Errorf(n.Range(), diag.MissingReturn, "FUNC %q must return a value", fs.sym.Name)
		return bound.NewReturn(n.Range(), nil)
	}
	val := a.bindExpr(fs, n.Value)
	if !types.Assignable(fn.Return, val.Type(), types.IgnoreRefs) {
		a.Bag.Errorf(n.Value.Range(), diag.TypeMismatch, "cannot return %s from FUNC %q returning %s", val.Type(), fs.sym.Name, fn.Return)
	}
	return bound.NewReturn(n.Range(), val)
}

func (a *Analyzer) requireBool(e bound.Expr, at source.Range) {
	if !types.IsBool(e.Type()) {
		a.Bag.Errorf(at, diag.TypeMismatch, "condition must be BOOL")
	}
}
