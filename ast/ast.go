// Package ast defines the Abstract Syntax Tree for ScriptLang (§3 of the
// specification this module implements).
//
// The shape of this tree is fixed: it is what the grammar/lexer — an external
// collaborator per the system's scope — is assumed to produce. Declarators are
// composable: a base type name plus an outside-in chain of Array(length)/Ref
// wrappers, built into a [types.Type] by [Declarator.Build] once every name in it
// has been resolved.
//
// Every node carries its own [source.Range] so diagnostics can point precisely at
// the offending subtree, generalizing the teacher's ast.Node (which carries only a
// single token.Token for that purpose).
package ast

import (
	"fmt"
	"strings"

	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/types"
)

// Node is the interface every AST node implements.
type Node interface {
	Range() source.Range
	String() string
}

// Statement is a node usable in a statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// TopLevel is a node usable at the top of a translation unit.
type TopLevel interface {
	Node
	topLevelNode()
}

// base embeds the common Range field every node needs.
type base struct {
	Rng source.Range
}

func (b base) Range() source.Range { return b.Rng }

// Program is the root of one translation unit's AST.
type Program struct {
	base
	Decls []TopLevel
}

func (p *Program) String() string {
	var out strings.Builder
	for _, d := range p.Decls {
		out.WriteString(d.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Declarators -----------------------------------------------------------

// Wrapper is one link of a declarator's outside-in Array/Ref chain.
type Wrapper interface {
	Apply(inner types.Type) types.Type
	String() string
}

// ArrayWrapper denotes a fixed-length array of whatever the rest of the chain
// builds.
type ArrayWrapper struct {
	Length int
}

func (w ArrayWrapper) Apply(inner types.Type) types.Type {
	return &types.Array{Elem: inner, Length: w.Length}
}
func (w ArrayWrapper) String() string { return fmt.Sprintf("[%d]", w.Length) }

// RefWrapper denotes a reference to whatever the rest of the chain builds.
type RefWrapper struct{}

func (RefWrapper) Apply(inner types.Type) types.Type { return &types.Ref{Elem: inner} }
func (RefWrapper) String() string                    { return "&" }

// Declarator is a base type name plus an outside-in chain of wrappers, e.g. the
// source form of "INT[3]&" is BaseName="INT", Wrappers=[Array(3), Ref].
type Declarator struct {
	Rng      source.Range
	BaseName string
	Wrappers []Wrapper
}

func (d *Declarator) Range() source.Range { return d.Rng }

func (d *Declarator) String() string {
	var out strings.Builder
	out.WriteString(d.BaseName)
	for _, w := range d.Wrappers {
		out.WriteString(w.String())
	}
	return out.String()
}

// Build constructs a [types.Type] from the declarator given the already-resolved
// (or still-Unresolved) base type. Wrappers apply outside-in: the first wrapper in
// the chain is the outermost type.
func (d *Declarator) Build(base types.Type) types.Type {
	t := base
	for i := len(d.Wrappers) - 1; i >= 0; i-- {
		t = d.Wrappers[i].Apply(t)
	}
	return t
}

// --- Top-level declarations -------------------------------------------------

// ScriptNameDecl is `SCRIPT_NAME id`.
type ScriptNameDecl struct {
	base
	Name string
}

func (*ScriptNameDecl) topLevelNode()  {}
func (d *ScriptNameDecl) String() string { return "SCRIPT_NAME " + d.Name }

// ScriptHashDecl is `SCRIPT_HASH int`.
type ScriptHashDecl struct {
	base
	Value int64
}

func (*ScriptHashDecl) topLevelNode()  {}
func (d *ScriptHashDecl) String() string { return fmt.Sprintf("SCRIPT_HASH %d", d.Value) }

// UsingDecl is `USING "path"`.
type UsingDecl struct {
	base
	Path string
}

func (*UsingDecl) topLevelNode()  {}
func (d *UsingDecl) String() string { return fmt.Sprintf("USING %q", d.Path) }

// FieldDecl is one field group of a STRUCT, e.g. "FLOAT x, y, z".
type FieldDecl struct {
	Rng        source.Range
	Declarator *Declarator
	Names      []string
}

func (f *FieldDecl) Range() source.Range { return f.Rng }
func (f *FieldDecl) String() string {
	return fmt.Sprintf("%s %s", f.Declarator, strings.Join(f.Names, ", "))
}

// StructDecl is `STRUCT id ... ENDSTRUCT`.
type StructDecl struct {
	base
	Name   string
	Fields []*FieldDecl
}

func (*StructDecl) topLevelNode() {}
func (d *StructDecl) String() string {
	var out strings.Builder
	out.WriteString("STRUCT " + d.Name + "\n")
	for _, f := range d.Fields {
		out.WriteString("  " + f.String() + "\n")
	}
	out.WriteString("ENDSTRUCT")
	return out.String()
}

// VarDecl is a variable declaration: a plain top-level decl is Static, one inside a
// GLOBAL block is Global, one inside a function body is Local, and CONST declares a
// Constant — the symbol kind is determined by context, not stored here.
type VarDecl struct {
	base
	Declarator  *Declarator
	Name        string
	Initializer Expression // nil if absent
	IsConst     bool
}

func (*VarDecl) topLevelNode() {}
func (*VarDecl) statementNode() {}
func (d *VarDecl) String() string {
	prefix := ""
	if d.IsConst {
		prefix = "CONST "
	}
	if d.Initializer != nil {
		return fmt.Sprintf("%s%s %s = %s", prefix, d.Declarator, d.Name, d.Initializer)
	}
	return fmt.Sprintf("%s%s %s", prefix, d.Declarator, d.Name)
}

// GlobalBlock is `GLOBAL <block> <owner> ... ENDGLOBAL`.
type GlobalBlock struct {
	base
	Block int
	Owner string
	Decls []*VarDecl
}

func (*GlobalBlock) topLevelNode() {}
func (g *GlobalBlock) String() string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("GLOBAL %d %s\n", g.Block, g.Owner))
	for _, d := range g.Decls {
		out.WriteString("  " + d.String() + "\n")
	}
	out.WriteString("ENDGLOBAL")
	return out.String()
}

// Param is one formal parameter of a PROC/FUNC/PROTO/NATIVE declaration.
type Param struct {
	Rng        source.Range
	Declarator *Declarator
	Name       string
}

func (p Param) String() string { return fmt.Sprintf("%s %s", p.Declarator, p.Name) }

// ProcDecl is `PROC id(params) ... ENDPROC`.
type ProcDecl struct {
	base
	Name   string
	Params []Param
	Body   []Statement
}

func (*ProcDecl) topLevelNode() {}
func (d *ProcDecl) String() string { return fmt.Sprintf("PROC %s(...)", d.Name) }

// FuncDecl is `FUNC T id(params) ... ENDFUNC`.
type FuncDecl struct {
	base
	Name       string
	ReturnType *Declarator
	Params     []Param
	Body       []Statement
}

func (*FuncDecl) topLevelNode() {}
func (d *FuncDecl) String() string { return fmt.Sprintf("FUNC %s %s(...)", d.ReturnType, d.Name) }

// ProtoDecl is `PROTO PROC id(params)` or `PROTO FUNC T id(params)`.
type ProtoDecl struct {
	base
	IsFunc     bool
	Name       string
	ReturnType *Declarator // nil when !IsFunc
	Params     []Param
}

func (*ProtoDecl) topLevelNode() {}
func (d *ProtoDecl) String() string { return "PROTO " + d.Name }

// NativeDecl is `NATIVE PROC id(params)` or `NATIVE FUNC T id(params)`.
type NativeDecl struct {
	base
	IsFunc     bool
	Name       string
	ReturnType *Declarator // nil when !IsFunc
	Params     []Param
}

func (*NativeDecl) topLevelNode() {}
func (d *NativeDecl) String() string { return "NATIVE " + d.Name }

// --- Statements --------------------------------------------------------------

// AssignStatement is a plain or compound assignment: `lhs op= rhs`.
type AssignStatement struct {
	base
	Target Expression
	Op     string // "=", "+=", "-=", "*=", "/="
	Value  Expression
}

func (*AssignStatement) statementNode() {}
func (s *AssignStatement) String() string {
	return fmt.Sprintf("%s %s %s", s.Target, s.Op, s.Value)
}

// ExprStatement is a bare expression used as a statement (a PROC/FUNC invocation).
type ExprStatement struct {
	base
	Expression Expression
}

func (*ExprStatement) statementNode() {}
func (s *ExprStatement) String() string { return s.Expression.String() }

// IfStatement is `IF cond ... [ELSE ...] ENDIF`.
type IfStatement struct {
	base
	Cond Expression
	Then []Statement
	Else []Statement // nil if no ELSE
}

func (*IfStatement) statementNode() {}
func (s *IfStatement) String() string { return "IF " + s.Cond.String() }

// WhileStatement is `WHILE cond ... ENDWHILE`.
type WhileStatement struct {
	base
	Cond Expression
	Body []Statement
}

func (*WhileStatement) statementNode() {}
func (s *WhileStatement) String() string { return "WHILE " + s.Cond.String() }

// RepeatStatement is `REPEAT limit, counter ... ENDREPEAT`, sugar for
// `counter := 0; while counter < limit { body; counter := counter+1 }` (§4.6).
type RepeatStatement struct {
	base
	Limit   Expression
	Counter Expression
	Body    []Statement
}

func (*RepeatStatement) statementNode() {}
func (s *RepeatStatement) String() string {
	return fmt.Sprintf("REPEAT %s, %s", s.Limit, s.Counter)
}

// SwitchCase is one `CASE value ...` arm of a SwitchStatement.
type SwitchCase struct {
	Rng   source.Range
	Value Expression
	Body  []Statement
}

func (c SwitchCase) Range() source.Range { return c.Rng }
func (c SwitchCase) String() string      { return "CASE " + c.Value.String() }

// SwitchStatement is `SWITCH value CASE ... [DEFAULT ...] ENDSWITCH`.
type SwitchStatement struct {
	base
	Value   Expression
	Cases   []SwitchCase
	Default []Statement // nil if no DEFAULT
}

func (*SwitchStatement) statementNode() {}
func (s *SwitchStatement) String() string { return "SWITCH " + s.Value.String() }

// ReturnStatement is `RETURN [expr]`.
type ReturnStatement struct {
	base
	Value Expression // nil for a PROC return
}

func (*ReturnStatement) statementNode() {}
func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "RETURN"
	}
	return "RETURN " + s.Value.String()
}

// BreakStatement exits the nearest enclosing WHILE/REPEAT/SWITCH.
type BreakStatement struct{ base }

func (*BreakStatement) statementNode()  {}
func (*BreakStatement) String() string  { return "BREAK" }

// ContinueStatement jumps to the nearest enclosing loop's continuation point.
type ContinueStatement struct{ base }

func (*ContinueStatement) statementNode() {}
func (*ContinueStatement) String() string { return "CONTINUE" }

// --- Expressions ---------------------------------------------------------------

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func (*Identifier) expressionNode()  {}
func (e *Identifier) String() string { return e.Name }

// IntLiteral is an integer literal, decimal or 0x-prefixed hex.
type IntLiteral struct {
	base
	Value int64
}

func (*IntLiteral) expressionNode()  {}
func (e *IntLiteral) String() string { return fmt.Sprintf("%d", e.Value) }

// FloatLiteral is a `<int>.<digits>` literal.
type FloatLiteral struct {
	base
	Value float64
}

func (*FloatLiteral) expressionNode()  {}
func (e *FloatLiteral) String() string { return fmt.Sprintf("%g", e.Value) }

// BoolLiteral is `TRUE` or `FALSE`.
type BoolLiteral struct {
	base
	Value bool
}

func (*BoolLiteral) expressionNode()  {}
func (e *BoolLiteral) String() string { return fmt.Sprintf("%t", e.Value) }

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	base
	Value string
}

func (*StringLiteral) expressionNode()  {}
func (e *StringLiteral) String() string { return fmt.Sprintf("%q", e.Value) }

// ParenExpr is a parenthesized sub-expression.
type ParenExpr struct {
	base
	Inner Expression
}

func (*ParenExpr) expressionNode()  {}
func (e *ParenExpr) String() string { return "(" + e.Inner.String() + ")" }

// MemberExpr is `target.field`.
type MemberExpr struct {
	base
	Target Expression
	Field  string
}

func (*MemberExpr) expressionNode()  {}
func (e *MemberExpr) String() string { return e.Target.String() + "." + e.Field }

// IndexExpr is `target[index]`.
type IndexExpr struct {
	base
	Target Expression
	Index  Expression
}

func (*IndexExpr) expressionNode() {}
func (e *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Target, e.Index)
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	base
	Callee Expression
	Args   []Expression
}

func (*CallExpr) expressionNode() {}
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(args, ", "))
}

// UnaryExpr is `NOT e` or `-e`.
type UnaryExpr struct {
	base
	Op      string
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}
func (e *UnaryExpr) String() string { return e.Op + e.Operand.String() }

// BinaryExpr is any two-operand arithmetic/bitwise/comparison/logical expression.
type BinaryExpr struct {
	base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// VectorExpr is a `<<a,b,c>>` vector literal. It may have fewer than three
// components when an inner component's own type is VEC3 and is being destructured
// to fill the remaining slots (§4.3).
type VectorExpr struct {
	base
	Components []Expression
}

func (*VectorExpr) expressionNode() {}
func (e *VectorExpr) String() string {
	parts := make([]string, len(e.Components))
	for i, c := range e.Components {
		parts[i] = c.String()
	}
	return "<<" + strings.Join(parts, ", ") + ">>"
}
