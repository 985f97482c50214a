package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/vsc/code"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/parser"
	"github.com/dr8co/vsc/sema"
)

func compile(t *testing.T, src string) *Result {
	t.Helper()
	bag := diag.NewBag()
	p := parser.New(lexer.New(src), bag, "test.sc")
	prog := p.ParseProgram()
	require.False(t, bag.HasErrors(), bag.All())

	a := sema.NewAnalyzer(bag)
	bound := a.BindProgram(prog)
	require.False(t, bag.HasErrors(), bag.All())

	res, err := Generate(bound)
	require.NoError(t, err)
	return res
}

func TestMinimalProcCompilesToEnterLeave(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	ins := code.Instructions(res.Code)
	text := ins.String()
	assert.Contains(t, text, "ENTER")
	assert.Contains(t, text, "LEAVE")
}

func TestArithmeticEmitsIntOps(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1 + 2 * 3
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "IADD")
	assert.Contains(t, text, "IMUL")
}

func TestIfEmitsFusedComparisonJump(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	IF x > 0
		x = 2
	ENDIF
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "IGT_JZ")
}

func TestWhileLoopBranchesBack(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 0
	WHILE x < 10
		x = x + 1
	ENDWHILE
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "ILT_JZ")
	assert.Contains(t, text, " J ")
}

func TestShortCircuitAndEmitsDupAndDrop(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	BOOL a = TRUE
	BOOL b = FALSE
	BOOL c = a AND b
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "DUP")
	assert.Contains(t, text, "DROP")
}

func TestSwitchEmitsSwitchInstruction(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	SWITCH x
		CASE 1
			x = 2
		CASE 2
			x = 3
		DEFAULT
			x = 4
	ENDSWITCH
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "SWITCH")
}

func TestCallEmitsCallInstruction(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC HELPER()
	RETURN
ENDPROC
PROC MAIN()
	HELPER()
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Contains(t, text, "CALL")
}

func TestStringLiteralInternsIntoPool(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	STRING s = "hello"
ENDPROC
`)
	assert.Contains(t, string(res.Strings), "hello")
}

func TestVectorLiteralPushesThreeFloats(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
STRUCT VEC3
	FLOAT x, y, z
ENDSTRUCT
PROC MAIN()
	VEC3 v = <<1.0, 2.0, 3.0>>
ENDPROC
`)
	text := code.Instructions(res.Code).String()
	assert.Equal(t, 3, strings.Count(text, "PUSH_CONST_F"))
}

func TestNoCodeExceedsOnePageWithoutPadding(t *testing.T) {
	res := compile(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.Less(t, len(res.Code), 16*1024)
}
