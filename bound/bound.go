// Package bound defines the bound tree: the output of the Binder (§2 item 6), an
// AST shadow where every expression carries its resolved [types.Type] and every name
// reference carries the resolved [symtab.Symbol] it refers to, instead of a bare
// string. Invariant I1 requires that, for any program the Binder accepts, every
// bound expression's Type is non-Unresolved.
//
// This is new relative to the teacher, whose compiler.Compiler lowers straight from
// ast to code without an intermediate typed tree (Monkey is dynamically typed, so it
// has no such phase) — the bound tree here is this module's equivalent of a
// typed-AST IR, modeled the same tagged-union-of-structs way as [ast] and
// [types.Type] rather than as a class hierarchy, per the visitor guidance in §9.
package bound

import (
	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/symtab"
	"github.com/dr8co/vsc/types"
)

// Expr is any bound expression: it always has a resolved type.
type Expr interface {
	Range() source.Range
	Type() types.Type
}

type exprBase struct {
	Rng source.Range
	Typ types.Type
}

func (e exprBase) Range() source.Range { return e.Rng }
func (e exprBase) Type() types.Type    { return e.Typ }

// Ident is a resolved reference to a variable.
type Ident struct {
	exprBase
	Symbol *symtab.VariableSymbol
}

// IntLit, FloatLit, BoolLit, StringLit are bound literal expressions.
type IntLit struct {
	exprBase
	Value int64
}
type FloatLit struct {
	exprBase
	Value float64
}
type BoolLit struct {
	exprBase
	Value bool
}
type StringLit struct {
	exprBase
	Value string
}

// Member is a bound `target.field`, with the field's resolved offset and type
// already looked up in the struct layout.
type Member struct {
	exprBase
	Target Expr
	Field  string
	Offset int
}

// Index is a bound `target[index]`, target statically known to be an *types.Array.
type Index struct {
	exprBase
	Target Expr
	Index  Expr
}

// Call is a bound invocation of a PROC/FUNC/PROTO/NATIVE symbol.
type Call struct {
	exprBase
	Callee *symtab.FunctionSymbol
	Args   []Expr
}

// Unary is a bound `NOT e` / `-e`, Op fixed to "NOT" or "-" after type checking
// picked the int/float variant (recorded by Typ).
type Unary struct {
	exprBase
	Op      string
	Operand Expr
}

// Binary is a bound two-operand expression; Op is the source spelling
// ("+","-","*","/","&","|","^","==","!=","<",">","<=",">=","AND","OR") and Typ is
// the result type: BOOL for comparisons and AND/OR, INT for the bitwise
// operators, and the left operand's type for arithmetic (§4.5).
type Binary struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

// Vector is a bound `<<x,y,z>>` literal; always typed as the VEC3 struct
// {FLOAT x, y, z} per §4.3. A VEC3-typed component is a single entry of
// Components, so there may be fewer than three.
type Vector struct {
	exprBase
	Components []Expr
}

// ConstRef is a compile-time-known value substituted for a CONST reference once
// constant folding (§4.4) has resolved it; distinguishing it from Ident lets the
// code generator emit a literal push instead of a load.
type ConstRef struct {
	exprBase
	Symbol *symtab.VariableSymbol
	Value  any
}

// Stmt is any bound statement.
type Stmt interface {
	Range() source.Range
}

type stmtBase struct{ Rng source.Range }

func (s stmtBase) Range() source.Range { return s.Rng }

// LocalDecl declares and optionally initializes a local variable.
type LocalDecl struct {
	stmtBase
	Symbol      *symtab.VariableSymbol
	Initializer Expr // nil if absent
}

// Assign is `target = value`. It has no Op field: the Binder desugars a compound
// `target op= value` into an Assign whose Value is the equivalent Binary (§4.6).
type Assign struct {
	stmtBase
	Target Expr
	Value  Expr
}

// ExprStmt is a bound bare-expression statement (a PROC/FUNC call for effect).
type ExprStmt struct {
	stmtBase
	Expr Expr
}

// If is a bound `IF/ELSE/ENDIF`.
type If struct {
	stmtBase
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a bound `WHILE/ENDWHILE`.
type While struct {
	stmtBase
	Cond Expr
	Body []Stmt
}

// Repeat is a bound `REPEAT limit, counter/ENDREPEAT`. It is not desugared here:
// Limit/Counter are kept as written and the code generator lowers them to the
// initialize-check-increment loop shape of §4.6.
type Repeat struct {
	stmtBase
	Limit   Expr
	Counter Expr
	Body    []Stmt
}

// SwitchCase is one bound CASE arm; Value is a compile-time-constant int.
type SwitchCase struct {
	Value int64
	Body  []Stmt
}

// Switch is a bound `SWITCH/CASE*/DEFAULT?/ENDSWITCH`.
type Switch struct {
	stmtBase
	Value   Expr
	Cases   []SwitchCase
	Default []Stmt
}

// Return is a bound `RETURN [expr]`.
type Return struct {
	stmtBase
	Value Expr // nil for a PROC return
}

// Break and Continue exit or restart the nearest enclosing loop/switch.
type Break struct{ stmtBase }
type Continue struct{ stmtBase }

// Function is one compiled PROC/FUNC: its symbol, parameter and local symbols in
// frame order, and its bound body. Prototype/Native functions have no Function
// value — they're represented purely by their symtab.FunctionSymbol.
type Function struct {
	Symbol *symtab.FunctionSymbol
	Params []*symtab.VariableSymbol
	Locals []*symtab.VariableSymbol
	Body   []Stmt
}

// Program is the whole bound translation unit, ready for the code generator.
type Program struct {
	ScriptName string
	ScriptHash int64
	Globals    []*symtab.VariableSymbol
	Statics    []*symtab.VariableSymbol
	Functions  []*Function
}

// Constructors below are the only way outside the package to build a node whose
// range/type bookkeeping lives in the unexported exprBase/stmtBase embeds — the
// Binder calls these rather than writing struct literals with promoted fields.

func NewIdent(rng source.Range, t types.Type, sym *symtab.VariableSymbol) *Ident {
	return &Ident{exprBase: exprBase{Rng: rng, Typ: t}, Symbol: sym}
}

func NewIntLit(rng source.Range, v int64) *IntLit {
	return &IntLit{exprBase: exprBase{Rng: rng, Typ: types.Int}, Value: v}
}

func NewFloatLit(rng source.Range, v float64) *FloatLit {
	return &FloatLit{exprBase: exprBase{Rng: rng, Typ: types.Float}, Value: v}
}

func NewBoolLit(rng source.Range, v bool) *BoolLit {
	return &BoolLit{exprBase: exprBase{Rng: rng, Typ: types.Bool}, Value: v}
}

func NewStringLit(rng source.Range, v string) *StringLit {
	return &StringLit{exprBase: exprBase{Rng: rng, Typ: types.String}, Value: v}
}

func NewMember(rng source.Range, t types.Type, target Expr, field string, offset int) *Member {
	return &Member{exprBase: exprBase{Rng: rng, Typ: t}, Target: target, Field: field, Offset: offset}
}

func NewIndex(rng source.Range, t types.Type, target, index Expr) *Index {
	return &Index{exprBase: exprBase{Rng: rng, Typ: t}, Target: target, Index: index}
}

func NewCall(rng source.Range, t types.Type, callee *symtab.FunctionSymbol, args []Expr) *Call {
	return &Call{exprBase: exprBase{Rng: rng, Typ: t}, Callee: callee, Args: args}
}

func NewUnary(rng source.Range, t types.Type, op string, operand Expr) *Unary {
	return &Unary{exprBase: exprBase{Rng: rng, Typ: t}, Op: op, Operand: operand}
}

func NewBinary(rng source.Range, t types.Type, op string, left, right Expr) *Binary {
	return &Binary{exprBase: exprBase{Rng: rng, Typ: t}, Op: op, Left: left, Right: right}
}

func NewVector(rng source.Range, t types.Type, components []Expr) *Vector {
	return &Vector{exprBase: exprBase{Rng: rng, Typ: t}, Components: components}
}

func NewConstRef(rng source.Range, t types.Type, sym *symtab.VariableSymbol, value any) *ConstRef {
	return &ConstRef{exprBase: exprBase{Rng: rng, Typ: t}, Symbol: sym, Value: value}
}

func NewLocalDecl(rng source.Range, sym *symtab.VariableSymbol, init Expr) *LocalDecl {
	return &LocalDecl{stmtBase: stmtBase{Rng: rng}, Symbol: sym, Initializer: init}
}

func NewAssign(rng source.Range, target, value Expr) *Assign {
	return &Assign{stmtBase: stmtBase{Rng: rng}, Target: target, Value: value}
}

func NewExprStmt(rng source.Range, e Expr) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{Rng: rng}, Expr: e}
}

func NewIf(rng source.Range, cond Expr, then, els []Stmt) *If {
	return &If{stmtBase: stmtBase{Rng: rng}, Cond: cond, Then: then, Else: els}
}

func NewWhile(rng source.Range, cond Expr, body []Stmt) *While {
	return &While{stmtBase: stmtBase{Rng: rng}, Cond: cond, Body: body}
}

func NewRepeat(rng source.Range, limit, counter Expr, body []Stmt) *Repeat {
	return &Repeat{stmtBase: stmtBase{Rng: rng}, Limit: limit, Counter: counter, Body: body}
}

func NewSwitch(rng source.Range, value Expr, cases []SwitchCase, def []Stmt) *Switch {
	return &Switch{stmtBase: stmtBase{Rng: rng}, Value: value, Cases: cases, Default: def}
}

func NewReturn(rng source.Range, value Expr) *Return {
	return &Return{stmtBase: stmtBase{Rng: rng}, Value: value}
}

func NewBreak(rng source.Range) *Break       { return &Break{stmtBase{Rng: rng}} }
func NewContinue(rng source.Range) *Continue { return &Continue{stmtBase{Rng: rng}} }
