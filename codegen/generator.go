package codegen

import (
	"strings"

	"github.com/dr8co/vsc/bound"
	"github.com/dr8co/vsc/code"
	"github.com/dr8co/vsc/symtab"
	"github.com/dr8co/vsc/types"
)

// Result is everything the code generator produces for one compiled program,
// handed off to the [program] package to assemble into the final container
// format (§6): the code pages, the interned string pool, and the deduplicated,
// insertion-ordered native import table.
type Result struct {
	ScriptName    string
	ScriptHash    int64
	Code          []byte
	Strings       []byte
	NativeImports []uint64
	EntryOffset   int // offset of the program's MAIN function, if present
}

// Generate lowers prog into bytecode. Grounded on the teacher's compiler.Compile
// top-level entry point shape (one function walking every top-level statement in
// order), generalized here into a two-step layout: every function gets an entry
// label up front so forward CALLs resolve, then each body is emitted in turn.
func Generate(prog *bound.Program) (*Result, error) {
	e := NewEmitter()
	g := &generator{e: e}

	entryLabels := make(map[string]string, len(prog.Functions))
	for _, fn := range prog.Functions {
		entryLabels[upper(fn.Symbol.Name)] = e.NewLabel("func_" + fn.Symbol.Name)
	}
	g.entryLabels = entryLabels

	assignImageOffsets(prog.Globals)
	assignImageOffsets(prog.Statics)

	// MAIN is emitted first so the script's entry point sits at code offset 0;
	// the other functions follow in declaration order.
	for _, fn := range prog.Functions {
		if upper(fn.Symbol.Name) == "MAIN" {
			g.genFunction(fn)
		}
	}
	for _, fn := range prog.Functions {
		if upper(fn.Symbol.Name) != "MAIN" {
			g.genFunction(fn)
		}
	}

	codeBytes, err := e.Finish()
	if err != nil {
		return nil, err
	}

	entry := -1
	if label, ok := entryLabels["MAIN"]; ok {
		if pos, ok := e.labels[label]; ok {
			entry = pos
		}
	}

	return &Result{
		ScriptName:    prog.ScriptName,
		ScriptHash:    prog.ScriptHash,
		Code:          codeBytes,
		Strings:       e.StringPool(),
		NativeImports: e.NativeImports(),
		EntryOffset:   entry,
	}, nil
}

func upper(s string) string { return strings.ToUpper(s) }

// assignImageOffsets lays vars out consecutively by cell size, assigning each
// its ImageOffset (§6) in declaration order. Globals and Statics are laid out
// as two separate images, so each list is offset independently from zero.
func assignImageOffsets(vars []*symtab.VariableSymbol) {
	offset := 0
	for _, v := range vars {
		v.ImageOffset = offset
		offset += v.Type.Size()
	}
}

// generator carries per-program emission state: the shared emitter, every
// function's entry label (for CALL resolution), and per-function loop-exit/
// continue label stacks (for BREAK/CONTINUE).
type generator struct {
	e           *Emitter
	entryLabels map[string]string

	breakLabels     []string
	continueLabels  []string
	currentEpilogue string
}

func (g *generator) genFunction(fn *bound.Function) {
	g.e.Mark(g.entryLabels[upper(fn.Symbol.Name)])
	g.e.EmitEnter(fn.Symbol.ArgsSize, fn.Symbol.LocalsSize, fn.Symbol.Name)

	g.currentEpilogue = g.e.NewLabel("leave_" + fn.Symbol.Name)
	for _, s := range fn.Body {
		g.genStmt(s)
	}
	g.e.Mark(g.currentEpilogue)

	retSize := 0
	if fn.Symbol.Type.Return != nil {
		retSize = fn.Symbol.Type.Return.Size()
	}
	g.e.Emit(code.LEAVE, fn.Symbol.ArgsSize, retSize)
}

func (g *generator) genStmt(s bound.Stmt) {
	switch n := s.(type) {
	case *bound.LocalDecl:
		if n.Initializer != nil {
			g.genExpr(n.Initializer)
			g.store(n.Symbol)
		}
	case *bound.Assign:
		g.genExpr(n.Value)
		g.storeTarget(n.Target)
	case *bound.ExprStmt:
		g.genExpr(n.Expr)
		if sizeOf(n.Expr.Type()) > 0 {
			g.e.Emit(code.DROP)
		}
	case *bound.If:
		g.genIf(n)
	case *bound.While:
		g.genWhile(n)
	case *bound.Repeat:
		g.genRepeat(n)
	case *bound.Switch:
		g.genSwitch(n)
	case *bound.Return:
		if n.Value != nil {
			g.genExpr(n.Value)
		}
		// RETURN jumps straight to the function's LEAVE; ENTER/LEAVE bracket every
		// function body so a fallthrough at the end of Body reaches LEAVE directly,
		// but an early RETURN must jump there explicitly.
		g.e.EmitJump(code.J, g.currentEpilogue)
	case *bound.Break:
		g.e.EmitJump(code.J, g.breakLabels[len(g.breakLabels)-1])
	case *bound.Continue:
		g.e.EmitJump(code.J, g.continueLabels[len(g.continueLabels)-1])
	}
}

func (g *generator) genIf(n *bound.If) {
	elseLabel := g.e.NewLabel("else")
	endLabel := g.e.NewLabel("endif")

	g.genCondJumpFalse(n.Cond, elseLabel)
	for _, s := range n.Then {
		g.genStmt(s)
	}
	if n.Else != nil {
		g.e.EmitJump(code.J, endLabel)
		g.e.Mark(elseLabel)
		for _, s := range n.Else {
			g.genStmt(s)
		}
		g.e.Mark(endLabel)
	} else {
		g.e.Mark(elseLabel)
	}
}

func (g *generator) genWhile(n *bound.While) {
	head := g.e.NewLabel("while")
	end := g.e.NewLabel("endwhile")

	g.breakLabels = append(g.breakLabels, end)
	g.continueLabels = append(g.continueLabels, head)
	defer func() {
		g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
		g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
	}()

	g.e.Mark(head)
	g.genCondJumpFalse(n.Cond, end)
	for _, s := range n.Body {
		g.genStmt(s)
	}
	g.e.EmitJump(code.J, head)
	g.e.Mark(end)
}

// genRepeat lowers REPEAT limit, counter/ENDREPEAT per §4.6's desugaring:
// counter := 0; while counter < limit { body; counter := counter + 1 }.
func (g *generator) genRepeat(n *bound.Repeat) {
	head := g.e.NewLabel("repeat")
	cont := g.e.NewLabel("repeat_continue")
	end := g.e.NewLabel("endrepeat")

	g.breakLabels = append(g.breakLabels, end)
	g.continueLabels = append(g.continueLabels, cont)
	defer func() {
		g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
		g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
	}()

	g.e.Emit(code.PUSH_CONST_0)
	g.storeTarget(n.Counter)

	g.e.Mark(head)
	g.genExpr(n.Counter)
	g.genExpr(n.Limit)
	g.e.EmitJump(code.ILT_JZ, end)
	for _, s := range n.Body {
		g.genStmt(s)
	}
	g.e.Mark(cont)
	g.genExpr(n.Counter)
	g.e.Emit(code.PUSH_CONST_1)
	g.e.Emit(code.IADD)
	g.storeTarget(n.Counter)
	g.e.EmitJump(code.J, head)
	g.e.Mark(end)
}

func (g *generator) genSwitch(n *bound.Switch) {
	end := g.e.NewLabel("endswitch")
	defaultLabel := g.e.NewLabel("default")

	caseLabels := make([]string, len(n.Cases))
	values := make([]int64, len(n.Cases))
	for i, c := range n.Cases {
		caseLabels[i] = g.e.NewLabel("case")
		values[i] = c.Value
	}

	g.breakLabels = append(g.breakLabels, end)
	defer func() { g.breakLabels = g.breakLabels[:len(g.breakLabels)-1] }()

	g.genExpr(n.Value)
	g.e.EmitSwitch(values, caseLabels)
	g.e.EmitJump(code.J, defaultLabel)

	for i, c := range n.Cases {
		g.e.Mark(caseLabels[i])
		for _, s := range c.Body {
			g.genStmt(s)
		}
		g.e.EmitJump(code.J, end)
	}
	g.e.Mark(defaultLabel)
	for _, s := range n.Default {
		g.genStmt(s)
	}
	g.e.Mark(end)
}

// genCondJumpFalse emits cond and a jump to falseLabel taken when it is false,
// fusing a direct INT comparison with its jump when possible (§4.8's IxY_JZ
// family) instead of evaluating a BOOL and following with a generic JZ.
func (g *generator) genCondJumpFalse(cond bound.Expr, falseLabel string) {
	if b, ok := cond.(*bound.Binary); ok {
		if op, ok := fusedCompareOp(b.Op); ok && isIntType(b.Left.Type()) {
			g.genExpr(b.Left)
			g.genExpr(b.Right)
			g.e.EmitJump(op, falseLabel)
			return
		}
	}
	g.genExpr(cond)
	g.e.EmitJump(code.JZ, falseLabel)
}

func fusedCompareOp(op string) (code.Opcode, bool) {
	switch op {
	case "==":
		return code.IEQ_JZ, true
	case "!=":
		return code.INE_JZ, true
	case ">":
		return code.IGT_JZ, true
	case ">=":
		return code.IGE_JZ, true
	case "<":
		return code.ILT_JZ, true
	case "<=":
		return code.ILE_JZ, true
	}
	return code.NOP, false
}

func isIntType(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind == types.INT
}

func isFloatType(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind == types.FLOAT
}

func sizeOf(t types.Type) int { return t.Size() }

func (g *generator) genExpr(e bound.Expr) {
	switch n := e.(type) {
	case *bound.IntLit:
		g.pushInt(n.Value)
	case *bound.FloatLit:
		g.e.EmitFloat(float32(n.Value))
	case *bound.BoolLit:
		if n.Value {
			g.e.Emit(code.PUSH_CONST_1)
		} else {
			g.e.Emit(code.PUSH_CONST_0)
		}
	case *bound.StringLit:
		off := g.e.InternString(n.Value)
		g.pushInt(int64(off))
		g.e.Emit(code.STRING)
	case *bound.ConstRef:
		g.genConst(n)
	case *bound.Ident:
		g.load(n.Symbol)
	case *bound.Member:
		g.genExpr(n.Target)
		g.emitOffset(n.Offset, false)
	case *bound.Index:
		g.genExpr(n.Target)
		g.genExpr(n.Index)
		g.emitArray(n.Type().Size(), false)
	case *bound.Call:
		g.genCall(n)
	case *bound.Unary:
		g.genUnary(n)
	case *bound.Binary:
		g.genBinary(n)
	case *bound.Vector:
		for _, c := range n.Components {
			g.genExpr(c)
		}
	}
}

func (g *generator) genConst(n *bound.ConstRef) {
	switch v := n.Value.(type) {
	case int64:
		g.pushInt(v)
	case float64:
		g.e.EmitFloat(float32(v))
	case bool:
		if v {
			g.e.Emit(code.PUSH_CONST_1)
		} else {
			g.e.Emit(code.PUSH_CONST_0)
		}
	case string:
		off := g.e.InternString(v)
		g.pushInt(int64(off))
		g.e.Emit(code.STRING)
	}
}

// pushInt selects the narrowest PUSH_CONST encoding for an integer literal
// (§4.8): the nine single-byte immediates for -1..7, else U8 for 0..255, S16
// for the rest of -32768..32767, U24 for larger values up to 0xFFFFFF, and U32
// for everything else.
func (g *generator) pushInt(v int64) {
	switch v {
	case -1:
		g.e.Emit(code.PUSH_CONST_M1)
		return
	case 0:
		g.e.Emit(code.PUSH_CONST_0)
		return
	case 1:
		g.e.Emit(code.PUSH_CONST_1)
		return
	case 2:
		g.e.Emit(code.PUSH_CONST_2)
		return
	case 3:
		g.e.Emit(code.PUSH_CONST_3)
		return
	case 4:
		g.e.Emit(code.PUSH_CONST_4)
		return
	case 5:
		g.e.Emit(code.PUSH_CONST_5)
		return
	case 6:
		g.e.Emit(code.PUSH_CONST_6)
		return
	case 7:
		g.e.Emit(code.PUSH_CONST_7)
		return
	}
	switch {
	case v >= 0 && v <= 0xFF:
		g.e.Emit(code.PUSH_CONST_U8, int(v))
	case v >= -0x8000 && v <= 0x7FFF:
		g.e.Emit(code.PUSH_CONST_S16, int(v))
	case v >= 0 && v <= 0xFFFFFF:
		g.e.Emit(code.PUSH_CONST_U24, int(v))
	default:
		g.e.Emit(code.PUSH_CONST_U32, int(uint32(v)))
	}
}

// load/store address a variable by its storage class, narrowest address-width
// opcode variant (§4.8). Multi-slot values (structs, vectors, fixed arrays)
// have no single instruction moving more than one slot, so a value of size N
// is N consecutive single-slot accesses: store walks high-to-low (the stack's
// top holds the last-pushed/last field, stored to the highest slot first) so
// the field push order of a Vector/struct initializer lines up with ascending
// slot order in the frame/image; load walks low-to-high so re-reading
// reproduces that same push order.
func (g *generator) load(sym *symtab.VariableSymbol) {
	size := sym.Type.Size()
	base := g.baseAddr(sym)
	for i := 0; i < size; i++ {
		g.emitSlot(sym.Kind, base+i, true)
	}
}

func (g *generator) store(sym *symtab.VariableSymbol) {
	size := sym.Type.Size()
	base := g.baseAddr(sym)
	for i := size - 1; i >= 0; i-- {
		g.emitSlot(sym.Kind, base+i, false)
	}
}

func (g *generator) baseAddr(sym *symtab.VariableSymbol) int {
	if sym.Kind == symtab.Local || sym.Kind == symtab.LocalArgument {
		return sym.FrameSlot
	}
	return sym.ImageOffset
}

func (g *generator) storeTarget(target bound.Expr) {
	switch t := target.(type) {
	case *bound.Ident:
		g.store(t.Symbol)
	case *bound.Member:
		g.genExpr(t.Target)
		g.emitOffset(t.Offset, true)
	case *bound.Index:
		g.genExpr(t.Target)
		g.genExpr(t.Index)
		g.emitArray(t.Type().Size(), true)
	}
}

// emitSlot emits the single-slot LOAD or STORE opcode for one address in
// sym's storage class, selecting the narrowest address-width variant.
func (g *generator) emitSlot(kind symtab.VarKind, addr int, load bool) {
	switch kind {
	case symtab.Local, symtab.LocalArgument:
		switch {
		case addr <= 0xFF:
			g.emitAccess(load, addr, code.LOCAL_U8_LOAD, code.LOCAL_U8_STORE)
		case addr <= 0xFFFF:
			g.emitAccess(load, addr, code.LOCAL_U16_LOAD, code.LOCAL_U16_STORE)
		default:
			g.emitAccess(load, addr, code.LOCAL_U24_LOAD, code.LOCAL_U24_STORE)
		}
	case symtab.Static:
		switch {
		case addr <= 0xFF:
			g.emitAccess(load, addr, code.STATIC_U8_LOAD, code.STATIC_U8_STORE)
		case addr <= 0xFFFF:
			g.emitAccess(load, addr, code.STATIC_U16_LOAD, code.STATIC_U16_STORE)
		default:
			g.emitAccess(load, addr, code.STATIC_U24_LOAD, code.STATIC_U24_STORE)
		}
	case symtab.Global:
		if addr <= 0xFFFF {
			g.emitAccess(load, addr, code.GLOBAL_U16_LOAD, code.GLOBAL_U16_STORE)
		} else {
			g.emitAccess(load, addr, code.GLOBAL_U24_LOAD, code.GLOBAL_U24_STORE)
		}
	}
}

func (g *generator) emitAccess(load bool, addr int, loadOp, storeOp code.Opcode) {
	if load {
		g.e.Emit(loadOp, addr)
	} else {
		g.e.Emit(storeOp, addr)
	}
}

// genAddress pushes a Ref to target's storage rather than its value, for a
// by-value argument bound to a REF<T> parameter (§4.3(ii)'s Ref-aliasing
// clause: the Binder accepts this at the type level, the generator is what
// actually takes the address).
func (g *generator) genAddress(target bound.Expr) {
	switch t := target.(type) {
	case *bound.Ident:
		g.addressOf(t.Symbol)
	case *bound.Member:
		g.genExpr(t.Target)
		if t.Offset <= 0xFF {
			g.e.Emit(code.IOFFSET_U8, t.Offset)
		} else {
			g.e.Emit(code.IOFFSET_S16, t.Offset)
		}
	case *bound.Index:
		g.genExpr(t.Target)
		g.genExpr(t.Index)
		size := t.Type().Size()
		if size <= 0xFF {
			g.e.Emit(code.ARRAY_U8, size)
		} else {
			g.e.Emit(code.ARRAY_U16, size)
		}
	default:
		g.genExpr(target)
	}
}

func (g *generator) addressOf(sym *symtab.VariableSymbol) {
	switch sym.Kind {
	case symtab.Local, symtab.LocalArgument:
		switch {
		case sym.FrameSlot <= 0xFF:
			g.e.Emit(code.LOCAL_U8, sym.FrameSlot)
		case sym.FrameSlot <= 0xFFFF:
			g.e.Emit(code.LOCAL_U16, sym.FrameSlot)
		default:
			g.e.Emit(code.LOCAL_U24, sym.FrameSlot)
		}
	case symtab.Static:
		switch {
		case sym.ImageOffset <= 0xFF:
			g.e.Emit(code.STATIC_U8, sym.ImageOffset)
		case sym.ImageOffset <= 0xFFFF:
			g.e.Emit(code.STATIC_U16, sym.ImageOffset)
		default:
			g.e.Emit(code.STATIC_U24, sym.ImageOffset)
		}
	case symtab.Global:
		if sym.ImageOffset <= 0xFFFF {
			g.e.Emit(code.GLOBAL_U16, sym.ImageOffset)
		} else {
			g.e.Emit(code.GLOBAL_U24, sym.ImageOffset)
		}
	}
}

func (g *generator) emitOffset(offset int, store bool) {
	if offset <= 0xFF {
		if store {
			g.e.Emit(code.IOFFSET_U8_STORE, offset)
		} else {
			g.e.Emit(code.IOFFSET_U8_LOAD, offset)
		}
		return
	}
	if store {
		g.e.Emit(code.IOFFSET_S16_STORE, offset)
	} else {
		g.e.Emit(code.IOFFSET_S16_LOAD, offset)
	}
}

func (g *generator) emitArray(elemSize int, store bool) {
	if elemSize <= 0xFF {
		if store {
			g.e.Emit(code.ARRAY_U8_STORE, elemSize)
		} else {
			g.e.Emit(code.ARRAY_U8_LOAD, elemSize)
		}
		return
	}
	if store {
		g.e.Emit(code.ARRAY_U16_STORE, elemSize)
	} else {
		g.e.Emit(code.ARRAY_U16_LOAD, elemSize)
	}
}

func (g *generator) genCall(n *bound.Call) {
	params := n.Callee.Type.Params
	for i, a := range n.Args {
		if i < len(params) {
			if _, dstRef := params[i].Type.(*types.Ref); dstRef {
				if _, srcRef := a.Type().(*types.Ref); !srcRef {
					g.genAddress(a)
					continue
				}
			}
		}
		g.genExpr(a)
	}
	if n.Callee.Native {
		argCount := len(n.Args)
		retCount := 0
		if n.Callee.Type.Return != nil {
			retCount = 1
		}
		idx := g.e.InternNative(n.Callee.Hash)
		g.e.Emit(code.NATIVE, argCount<<2|retCount, idx)
		return
	}
	label, ok := g.entryLabels[upper(n.Callee.Name)]
	if !ok {
		label = g.e.NewLabel("func_" + n.Callee.Name)
		g.entryLabels[upper(n.Callee.Name)] = label
	}
	g.e.EmitCall(label)
}

func (g *generator) genUnary(n *bound.Unary) {
	g.genExpr(n.Operand)
	switch {
	case n.Op == "NOT":
		g.e.Emit(code.PUSH_CONST_1)
		g.e.Emit(code.IXOR)
	case n.Op == "-" && isFloatType(n.Type()):
		g.e.Emit(code.FNEG)
	case n.Op == "-":
		g.e.Emit(code.INEG)
	}
}

func (g *generator) genBinary(n *bound.Binary) {
	if n.Op == "AND" || n.Op == "OR" {
		g.genShortCircuit(n)
		return
	}
	g.genExpr(n.Left)
	g.genExpr(n.Right)
	isFloat := isFloatType(n.Left.Type())
	switch n.Op {
	case "+":
		g.e.Emit(pick(isFloat, code.FADD, code.IADD))
	case "-":
		g.e.Emit(pick(isFloat, code.FSUB, code.ISUB))
	case "*":
		g.e.Emit(pick(isFloat, code.FMUL, code.IMUL))
	case "/":
		g.e.Emit(pick(isFloat, code.FDIV, code.IDIV))
	case "&":
		g.e.Emit(code.IAND)
	case "|":
		g.e.Emit(code.IOR)
	case "^":
		g.e.Emit(code.IXOR)
	case "==":
		g.e.Emit(pick(isFloat, code.FEQ, code.IEQ))
	case "!=":
		g.e.Emit(pick(isFloat, code.FNE, code.INE))
	case ">":
		g.e.Emit(pick(isFloat, code.FGT, code.IGT))
	case ">=":
		g.e.Emit(pick(isFloat, code.FGE, code.IGE))
	case "<":
		g.e.Emit(pick(isFloat, code.FLT, code.ILT))
	case "<=":
		g.e.Emit(pick(isFloat, code.FLE, code.ILE))
	}
}

func pick(cond bool, a, b code.Opcode) code.Opcode {
	if cond {
		return a
	}
	return b
}

// genShortCircuit lowers AND/OR via JZ the way §4.8 specifies: evaluate the
// left operand, and only evaluate the right operand if it can still change the
// result.
func (g *generator) genShortCircuit(n *bound.Binary) {
	end := g.e.NewLabel("sc")
	g.genExpr(n.Left)
	if n.Op == "AND" {
		g.e.Emit(code.DUP)
		g.e.EmitJump(code.JZ, end)
		g.e.Emit(code.DROP)
		g.genExpr(n.Right)
	} else { // OR
		g.e.Emit(code.DUP)
		notZero := g.e.NewLabel("sc_true")
		g.e.EmitJump(code.JZ, notZero)
		g.e.EmitJump(code.J, end)
		g.e.Mark(notZero)
		g.e.Emit(code.DROP)
		g.genExpr(n.Right)
	}
	g.e.Mark(end)
}
