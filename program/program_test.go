package program

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/vsc/codegen"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/parser"
	"github.com/dr8co/vsc/sema"
)

func assemble(t *testing.T, src string) *Program {
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

	out, err := Assemble(bound, gen, 0)
	require.NoError(t, err)
	return out
}

func TestAssembleSetsMagicAndVersion(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.Equal(t, Magic, p.Magic)
	assert.Equal(t, Version, p.Version)
	assert.Equal(t, "main", p.ScriptName)
}

func TestAssembleLaysOutConstantStatic(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
INT counter = 7
PROC MAIN()
	RETURN
ENDPROC
`)
	require.Len(t, p.StaticsImage, 1)
	assert.EqualValues(t, 7, p.StaticsImage[0])
}

func TestAssembleSplitsCodeIntoPages(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	require.Len(t, p.CodePages, 1)
	assert.Len(t, p.CodePages[0], pageSize)
}

func TestAssembleInternsStringIntoPool(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
PROC MAIN()
	STRING s = "hi"
ENDPROC
`)
	assert.Contains(t, string(p.StringPool), "hi")
}

func TestAssembleCountsMainParamsAsArgs(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
PROC MAIN(INT a, INT b)
	RETURN
ENDPROC
`)
	assert.Equal(t, 2, p.ArgsCount)
}

func TestAssembleWithNoMainParamsHasNoArgs(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	assert.Equal(t, 0, p.ArgsCount)
}

func TestAssembleGivesEachBuildADistinctID(t *testing.T) {
	src := `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`
	first := assemble(t, src)
	second := assemble(t, src)
	assert.NotEqual(t, first.BuildID, second.BuildID)
}

func TestEncodeDecodeRoundTrips(t *testing.T) {
	p := assemble(t, `SCRIPT_NAME main
NATIVE PROC DO_THING()
PROC MAIN(INT a)
	STRING s = "hi"
	DO_THING()
ENDPROC
`)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	out, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, p.Magic, out.Magic)
	assert.Equal(t, p.Version, out.Version)
	assert.Equal(t, p.ScriptName, out.ScriptName)
	assert.Equal(t, p.ScriptHash, out.ScriptHash)
	assert.Equal(t, p.BuildID, out.BuildID)
	assert.Equal(t, p.GlobalsBlockIndex, out.GlobalsBlockIndex)
	assert.Equal(t, p.GlobalsImage, out.GlobalsImage)
	assert.Equal(t, p.StaticsImage, out.StaticsImage)
	assert.Equal(t, p.ArgsCount, out.ArgsCount)
	assert.Equal(t, p.StringPool, out.StringPool)
	assert.Equal(t, p.NativeImports, out.NativeImports)
	assert.Equal(t, p.CodePages, out.CodePages)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 32))
	_, err := Decode(buf)
	assert.Error(t, err)
}
