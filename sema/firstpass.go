// Package sema implements the semantic analysis pipeline between parsing and code
// generation: registration and type resolution (First Pass, §4.2), constant folding
// (§4.4), expression typing and statement checks (Second Pass, §4.5-4.6), frame
// layout (§4.7), and binding into the [bound] tree (§2 item 6).
//
// The teacher has no analogue of any of this — Monkey is dynamically typed and its
// compiler.Compiler walks straight from AST to bytecode. This package is grounded
// instead on the pipeline shape described by the specification itself: the pass
// separation (register, resolve, fold, type-check, bind) is kept as distinct
// methods on a shared [Analyzer] value (RegisterTopLevel, ResolveTypes,
// FoldConstants, BindFunction), one a pass, which BindProgram runs in order.
package sema

import (
	"strings"

	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/symtab"
	"github.com/dr8co/vsc/types"
)

// Analyzer holds the state threaded through every pass of one compile: the global
// symbol table, the diagnostics bag, and bookkeeping the First Pass produces that
// the Second Pass and Binder consume.
type Analyzer struct {
	Table *symtab.Table
	Bag   *diag.Bag

	// structDecls maps an upper-cased struct name to its declaration, so duplicate
	// field-cycle DFS and later binder lookups can recover source structure.
	structDecls map[string]*ast.StructDecl
	// constQueue holds pending CONST work items across RegisterTopLevel and
	// FoldConstants.
	constQueue []*constItem
	// funcDecls maps an upper-cased function name to the AST node that defines it,
	// for the Second Pass / Binder to re-walk bodies after registration.
	funcDecls map[string]*ast.ProcDecl
	funcDeclsF map[string]*ast.FuncDecl

	scriptName string
	scriptHash int64
}

// NewAnalyzer creates an Analyzer over a fresh root-scope symbol table.
func NewAnalyzer(bag *diag.Bag) *Analyzer {
	return &Analyzer{
		Table:       symtab.New(),
		Bag:         bag,
		structDecls: make(map[string]*ast.StructDecl),
		funcDecls:   make(map[string]*ast.ProcDecl),
		funcDeclsF:  make(map[string]*ast.FuncDecl),
	}
}

func upper(s string) string { return strings.ToUpper(s) }

// RegisterTopLevel is the first half of the First Pass (§4.2): it walks every
// top-level declaration, registering each name with a possibly-Unresolved type, and
// enqueuing CONST initializers for later folding. It does not resolve anything.
func (a *Analyzer) RegisterTopLevel(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.ScriptNameDecl:
			a.scriptName = n.Name
		case *ast.ScriptHashDecl:
			a.scriptHash = n.Value
		case *ast.UsingDecl:
			// USING paths are not resolved: no file is loaded and nothing is
			// imported into the table; the declaration is otherwise ignored.
		case *ast.StructDecl:
			a.registerStruct(n)
		case *ast.VarDecl:
			a.registerVar(n, symtab.Static)
		case *ast.GlobalBlock:
			for _, gd := range n.Decls {
				a.registerVar(gd, symtab.Global)
			}
		case *ast.ProcDecl:
			a.registerProc(n)
		case *ast.FuncDecl:
			a.registerFunc(n)
		case *ast.ProtoDecl:
			a.registerProto(n)
		case *ast.NativeDecl:
			a.registerNative(n)
		}
	}
}

func (a *Analyzer) registerStruct(n *ast.StructDecl) {
	key := upper(n.Name)
	a.structDecls[key] = n

	st := &types.Struct{Name: n.Name}
	for _, fd := range n.Fields {
		base := a.declaratorBaseType(fd.Declarator)
		ft := fd.Declarator.Build(base)
		for _, name := range fd.Names {
			st.Fields = append(st.Fields, types.Field{Name: name, Type: ft})
		}
	}
	sym := &symtab.TypeSymbol{Name: n.Name, Range: n.Range(), Type: st}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
	}
}

// declaratorBaseType resolves a declarator's base name against predeclared basic
// types, leaving everything else as an Unresolved placeholder for ResolveTypes.
func (a *Analyzer) declaratorBaseType(d *ast.Declarator) types.Type {
	switch upper(d.BaseName) {
	case "INT":
		return types.Int
	case "FLOAT":
		return types.Float
	case "BOOL":
		return types.Bool
	case "STRING":
		return types.String
	case "ANY":
		return types.Any
	default:
		return &types.Unresolved{Name: d.BaseName}
	}
}

type constItem struct {
	sym               *symtab.VariableSymbol
	init              ast.Expression
	lastUnresolvedCnt int
}

func (a *Analyzer) registerVar(n *ast.VarDecl, kind symtab.VarKind) {
	if n.IsConst {
		kind = symtab.Constant
	}
	base := a.declaratorBaseType(n.Declarator)
	t := n.Declarator.Build(base)

	if kind == symtab.Global {
		if _, isRef := t.(*types.Ref); isRef {
			a.Bag.Errorf(n.Range(), diag.InvalidGlobalType, "global %q may not be a reference type", n.Name)
		}
		if _, isFn := t.(*types.Function); isFn {
			a.Bag.Errorf(n.Range(), diag.InvalidGlobalType, "global %q may not be a function type", n.Name)
		}
	}
	if kind == symtab.Constant {
		if _, isBasic := t.(*types.Basic); !isBasic {
			a.Bag.Errorf(n.Range(), diag.TypeMismatch, "CONST %q must have a basic type", n.Name)
		}
	}

	sym := &symtab.VariableSymbol{
		Name: n.Name, Range: n.Range(), Type: t, Kind: kind,
		FrameSlot: -1, ImageOffset: -1,
	}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
		return
	}
	if kind == symtab.Constant && n.Initializer != nil {
		a.constQueue = append(a.constQueue, &constItem{sym: sym, init: n.Initializer, lastUnresolvedCnt: -1})
	}
	if (kind == symtab.Static || kind == symtab.Global) && n.Initializer != nil {
		if basic, ok := t.(*types.Basic); ok && basic.Kind == types.STRING {
			a.Bag.Errorf(n.Range(), diag.InvalidStaticInitializer, "%q may not carry an initializer", n.Name)
		} else {
			// A static/global's initializer seeds its image cell rather than
			// running as code, so it must reduce to a literal exactly like a
			// CONST's does.
			a.constQueue = append(a.constQueue, &constItem{sym: sym, init: n.Initializer, lastUnresolvedCnt: -1})
		}
	}
}

func (a *Analyzer) paramTypes(params []ast.Param) []types.Param {
	out := make([]types.Param, len(params))
	for i, p := range params {
		base := a.declaratorBaseType(p.Declarator)
		out[i] = types.Param{Name: p.Name, Type: p.Declarator.Build(base)}
	}
	return out
}

func (a *Analyzer) registerProc(n *ast.ProcDecl) {
	a.funcDecls[upper(n.Name)] = n
	fn := &types.Function{Params: a.paramTypes(n.Params)}
	sym := &symtab.FunctionSymbol{Name: n.Name, Range: n.Range(), Type: fn, Defined: true}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
	}
}

func (a *Analyzer) registerFunc(n *ast.FuncDecl) {
	a.funcDeclsF[upper(n.Name)] = n
	base := a.declaratorBaseType(n.ReturnType)
	ret := n.ReturnType.Build(base)
	fn := &types.Function{Return: ret, Params: a.paramTypes(n.Params)}
	sym := &symtab.FunctionSymbol{Name: n.Name, Range: n.Range(), Type: fn, Defined: true}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
	}
}

func (a *Analyzer) registerProto(n *ast.ProtoDecl) {
	var ret types.Type
	if n.IsFunc {
		base := a.declaratorBaseType(n.ReturnType)
		ret = n.ReturnType.Build(base)
	}
	fn := &types.Function{Return: ret, Params: a.paramTypes(n.Params)}
	sym := &symtab.FunctionSymbol{Name: n.Name, Range: n.Range(), Type: fn, Prototype: true}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
	}
}

func (a *Analyzer) registerNative(n *ast.NativeDecl) {
	var ret types.Type
	if n.IsFunc {
		base := a.declaratorBaseType(n.ReturnType)
		ret = n.ReturnType.Build(base)
	}
	fn := &types.Function{Return: ret, Params: a.paramTypes(n.Params)}
	sym := &symtab.FunctionSymbol{
		Name: n.Name, Range: n.Range(), Type: fn, Native: true,
		Hash: nativeHash(n.Name),
	}
	if err := a.Table.Add(sym); err != nil {
		a.Bag.Errorf(n.Range(), diag.DuplicateSymbol, "duplicate symbol %q", n.Name)
	}
}

// nativeHash derives a stable 64-bit hash from a native's declared name, the way a
// real toolchain would hash against the game's native name tables. FNV-1a gives a
// deterministic, dependency-free stand-in (§6's native import table only requires
// that imports dedupe by hash, not that the hash match any particular scheme).
func nativeHash(name string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(name); i++ {
		h ^= uint64(upper(name)[i])
		h *= prime64
	}
	return h
}

// ResolveTypes is the second half of the First Pass (§4.2): it replaces every
// Unresolved placeholder reachable from a registered symbol's type with the looked-up
// TypeSymbol's Type, and performs the local struct-cycle DFS (T1/invariant I5).
func (a *Analyzer) ResolveTypes() {
	for _, sym := range a.Table.RootSymbols() {
		switch s := sym.(type) {
		case *symtab.VariableSymbol:
			s.Type = a.resolve(s.Type)
		case *symtab.FunctionSymbol:
			if fn, ok := s.Type.(*types.Function); ok {
				if fn.Return != nil {
					fn.Return = a.resolve(fn.Return)
				}
				for i := range fn.Params {
					fn.Params[i].Type = a.resolve(fn.Params[i].Type)
				}
			}
		case *symtab.TypeSymbol:
			if st, ok := s.Type.(*types.Struct); ok {
				for i := range st.Fields {
					st.Fields[i].Type = a.resolve(st.Fields[i].Type)
				}
				a.checkCycle(st, st, map[string]bool{})
			}
		}
	}
}

func (a *Analyzer) resolve(t types.Type) types.Type {
	switch tt := t.(type) {
	case *types.Unresolved:
		sym, ok := a.Table.Lookup(tt.Name)
		if !ok {
			a.bagUndeclared(tt.Name)
			return t
		}
		ts, ok := sym.(*symtab.TypeSymbol)
		if !ok {
			a.bagUndeclared(tt.Name)
			return t
		}
		return ts.Type
	case *types.Array:
		tt.Elem = a.resolve(tt.Elem)
		return tt
	case *types.Ref:
		tt.Elem = a.resolve(tt.Elem)
		return tt
	default:
		return t
	}
}

func (a *Analyzer) bagUndeclared(name string) {
	a.Bag.Errorf(source.Unknown, diag.UndeclaredName, "undeclared type %q", name)
}

// checkCycle performs a DFS across struct-typed fields (directly, not through Ref)
// starting from root, failing if root reappears. §4.2: on detection, the offending
// field's type is reset to an Unresolved placeholder to stop cascading.
func (a *Analyzer) checkCycle(root, cur *types.Struct, visiting map[string]bool) {
	key := upper(cur.Name)
	if visiting[key] && cur == root {
		a.Bag.Errorf(source.Unknown, diag.CircularType, "struct %q contains itself", root.Name)
		a.breakCycle(root)
		return
	}
	if visiting[key] {
		return
	}
	visiting[key] = true
	for i := range cur.Fields {
		f := &cur.Fields[i]
		if st, ok := f.Type.(*types.Struct); ok {
			if upper(st.Name) == upper(root.Name) {
				a.Bag.Errorf(source.Unknown, diag.CircularType, "struct %q contains itself", root.Name)
				f.Type = &types.Unresolved{Name: st.Name}
				continue
			}
			a.checkCycle(root, st, visiting)
		}
	}
}

// breakCycle resets every field of root that points back at root itself to an
// Unresolved placeholder, so a later Size()/layout pass over root never walks
// back into the cycle it was just reported for.
func (a *Analyzer) breakCycle(root *types.Struct) {
	for i := range root.Fields {
		f := &root.Fields[i]
		if st, ok := f.Type.(*types.Struct); ok && upper(st.Name) == upper(root.Name) {
			f.Type = &types.Unresolved{Name: st.Name}
		}
	}
}

// ScriptName and ScriptHash expose the parsed header declarations.
func (a *Analyzer) ScriptName() string { return a.scriptName }
func (a *Analyzer) ScriptHash() int64  { return a.scriptHash }
