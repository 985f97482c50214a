package sema

import (
	"sort"

	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/bound"
	"github.com/dr8co/vsc/symtab"
)

// BindProgram runs every pass in order — RegisterTopLevel, ResolveTypes,
// FoldConstants, then the Second Pass/Binder over every PROC and FUNC body — and
// assembles the result into a [bound.Program] for the code generator. Callers
// should check a.Bag.HasErrors() before trusting the result; on error the returned
// tree may contain ANY-typed placeholders (§7: no pass aborts on the first error).
func (a *Analyzer) BindProgram(prog *ast.Program) *bound.Program {
	a.RegisterTopLevel(prog)
	a.ResolveTypes()
	a.FoldConstants()

	var globals, statics []*symtab.VariableSymbol
	for _, sym := range a.Table.RootSymbols() {
		vs, ok := sym.(*symtab.VariableSymbol)
		if !ok {
			continue
		}
		switch vs.Kind {
		case symtab.Global:
			globals = append(globals, vs)
		case symtab.Static:
			statics = append(statics, vs)
		}
	}
	// RootSymbols comes back in map order; sort by source position so the code
	// generator lays globals and statics out in declaration order.
	for _, vs := range [][]*symtab.VariableSymbol{globals, statics} {
		sort.SliceStable(vs, func(i, j int) bool {
			pi, pj := vs[i].Range.Begin, vs[j].Range.Begin
			if pi.Line != pj.Line {
				return pi.Line < pj.Line
			}
			return pi.Column < pj.Column
		})
	}

	var funcs []*bound.Function
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.ProcDecl:
			sym := a.lookupFunc(n.Name)
			if sym == nil {
				continue
			}
			funcs = append(funcs, a.BindFunction(sym, n.Params, n.Body))
		case *ast.FuncDecl:
			sym := a.lookupFunc(n.Name)
			if sym == nil {
				continue
			}
			funcs = append(funcs, a.BindFunction(sym, n.Params, n.Body))
		}
	}

	return &bound.Program{
		ScriptName: a.scriptName,
		ScriptHash: a.scriptHash,
		Globals:    globals,
		Statics:    statics,
		Functions:  funcs,
	}
}

func (a *Analyzer) lookupFunc(name string) *symtab.FunctionSymbol {
	sym, ok := a.Table.Lookup(name)
	if !ok {
		return nil
	}
	fsym, ok := sym.(*symtab.FunctionSymbol)
	if !ok {
		return nil
	}
	return fsym
}
