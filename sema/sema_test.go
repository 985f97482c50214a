package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/parser"
	"github.com/dr8co/vsc/symtab"
)

func analyze(t *testing.T, src string) (*Analyzer, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	p := parser.New(lexer.New(src), bag, "test.sc")
	prog := p.ParseProgram()
	require.False(t, bag.HasErrors(), bag.All())

	a := NewAnalyzer(bag)
	a.BindProgram(prog)
	return a, bag
}

func TestMinimalCompileHasNoDiagnostics(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.False(t, bag.HasErrors(), bag.All())
}

func TestUndeclaredNameReported(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = y
ENDPROC
`)
	assert.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.UndeclaredName {
			found = true
		}
	}
	assert.True(t, found, "expected an UndeclaredName diagnostic")
}

func TestCircularStructReported(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
STRUCT A
	B b
ENDSTRUCT
STRUCT B
	A a
ENDSTRUCT
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CircularType {
			found = true
		}
	}
	assert.True(t, found, "expected a CircularType diagnostic")
}

// A local variable of a cyclic struct type must not drive bindLocalDecl's
// Type.Size() call into unbounded recursion: the cycle check must have
// already cut the offending field back to an Unresolved placeholder.
func TestCircularStructLocalDeclDoesNotRecurseForever(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
STRUCT A
	B b
ENDSTRUCT
STRUCT B
	A a
ENDSTRUCT
PROC MAIN()
	A x
	RETURN
ENDPROC
`)
	assert.True(t, bag.HasErrors())
}

// A CONTINUE directly inside a SWITCH case, with no enclosing WHILE/REPEAT,
// must be rejected: a SWITCH is not a loop, and letting it through left
// codegen's continueLabels stack empty (or pointing at an unrelated outer
// loop) for that Continue node.
func TestContinueInsideSwitchWithoutLoopRejected(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	SWITCH x
	CASE 1
		CONTINUE
	ENDSWITCH
ENDPROC
`)
	assert.True(t, bag.HasErrors())
}

// CONTINUE inside a SWITCH that is itself inside a WHILE must still be
// accepted, and continues the enclosing loop.
func TestContinueInsideSwitchInsideLoopAccepted(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	WHILE x < 10
		SWITCH x
		CASE 1
			CONTINUE
		ENDSWITCH
		x = x + 1
	ENDWHILE
ENDPROC
`)
	assert.False(t, bag.HasErrors(), bag.All())
}

func TestCircularConstantReported(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
CONST INT X = Y + 1
CONST INT Y = X + 1
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CircularConstant {
			found = true
		}
	}
	assert.True(t, found, "expected a CircularConstant diagnostic")
}

func TestConstantChainFolds(t *testing.T) {
	a, bag := analyze(t, `SCRIPT_NAME main
CONST INT X = 1
CONST INT Y = X + 2
CONST INT Z = Y * 3
PROC MAIN()
	RETURN
ENDPROC
`)
	require.False(t, bag.HasErrors(), bag.All())

	sym, ok := a.Table.Lookup("Z")
	require.True(t, ok)
	vs, ok := sym.(*symtab.VariableSymbol)
	require.True(t, ok)
	assert.Equal(t, int64(9), vs.Initializer)
}

func TestMutualRecursionResolves(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC A()
	B()
ENDPROC
PROC B()
	A()
ENDPROC
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.False(t, bag.HasErrors(), bag.All())
}

func TestSwitchDuplicateCaseReported(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	SWITCH x
		CASE 1
		CASE 1
	ENDSWITCH
ENDPROC
`)
	assert.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.DuplicateCase {
			found = true
		}
	}
	assert.True(t, found, "expected a DuplicateCase diagnostic")
}

// A vector literal with exactly 3 scalar components still binds cleanly.
func TestVectorLiteralWithThreeScalarsAccepted(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
STRUCT VEC3
	FLOAT x, y, z
ENDSTRUCT
PROC MAIN()
	VEC3 v = <<1.0, 2.0, 3.0>>
ENDPROC
`)
	assert.False(t, bag.HasErrors(), bag.All())
}

// A VEC3-typed component (here, a call to a FUNC returning VEC3) is spliced
// into the component list, contributing its 3 scalars whole, rather than
// being rejected as a single non-FLOAT component.
func TestVectorLiteralSplicesVec3Component(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
STRUCT VEC3
	FLOAT x, y, z
ENDSTRUCT
FUNC VEC3 GetPos()
	VEC3 p
	RETURN p
ENDFUNC
PROC MAIN()
	VEC3 v = <<GetPos()>>
ENDPROC
`)
	assert.False(t, bag.HasErrors(), bag.All())
}

// A vector literal whose components sum to the wrong scalar arity (here, a
// VEC3 component plus an extra scalar, for 4 total) is still rejected.
func TestVectorLiteralWrongArityAfterSpliceRejected(t *testing.T) {
	_, bag := analyze(t, `SCRIPT_NAME main
STRUCT VEC3
	FLOAT x, y, z
ENDSTRUCT
FUNC VEC3 GetPos()
	VEC3 p
	RETURN p
ENDFUNC
PROC MAIN()
	VEC3 v = <<GetPos(), 1.0>>
ENDPROC
`)
	assert.True(t, bag.HasErrors())
}
