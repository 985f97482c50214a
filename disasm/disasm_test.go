package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/vsc/codegen"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/nativedb"
	"github.com/dr8co/vsc/parser"
	"github.com/dr8co/vsc/program"
	"github.com/dr8co/vsc/sema"
)

func buildProgram(t *testing.T, src string) *program.Program {
	t.Helper()
	bag := diag.NewBag()
	p := parser.New(lexer.New(src), bag, "test.sc")
	astProg := p.ParseProgram()
	require.False(t, bag.HasErrors(), bag.All())

	a := sema.NewAnalyzer(bag)
	bound := a.BindProgram(astProg)
	require.False(t, bag.HasErrors(), bag.All())

	gen, err := codegen.Generate(bound)
	require.NoError(t, err)

	prog, err := program.Assemble(bound, gen, 0)
	require.NoError(t, err)
	return prog
}

func TestDisassembleNamesEntryMain(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "main:")
}

func TestDisassembleRecoversCallTarget(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
PROC HELPER()
	RETURN
ENDPROC
PROC MAIN()
	HELPER()
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "func_")
	assert.Contains(t, text, "CALL func_")
}

func TestDisassembleRecoversBranchLabel(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
PROC MAIN()
	INT x = 1
	WHILE x < 10
		x = x + 1
	ENDWHILE
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "lbl_")
}

func TestDisassembleFallsBackOnUnknownNative(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
NATIVE PROC DO_THING()
PROC MAIN()
	DO_THING()
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "_0x")
}

func TestDisassembleResolvesNativeFromDatabase(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
NATIVE PROC DO_THING()
PROC MAIN()
	DO_THING()
ENDPROC
`)
	require.Len(t, prog.NativeImports, 1)

	db, err := nativedb.Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Seed(nativedb.Native{Hash: prog.NativeImports[0], Name: "DO_THING"}))

	text, err := Disassemble(prog, db)
	require.NoError(t, err)
	assert.Contains(t, text, "DO_THING")
}

func TestDisassembleSynthesizesStringLabel(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
PROC MAIN()
	STRING s = "Hello World"
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "aHelloWorld")
}

func TestDisassembleCompressesRepeatedStatics(t *testing.T) {
	prog := buildProgram(t, `SCRIPT_NAME main
INT a = 7
INT b = 7
INT c = 7
PROC MAIN()
	RETURN
ENDPROC
`)
	text, err := Disassemble(prog, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "dup (7)")
}
