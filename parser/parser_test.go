package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/vsc/ast"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
)

func parse(t *testing.T, input string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	p := New(lexer.New(input), bag, "test.sc")
	prog := p.ParseProgram()
	return prog, bag
}

func TestParseScriptHeader(t *testing.T) {
	prog, bag := parse(t, "SCRIPT_NAME foo\nSCRIPT_HASH 0x1234\n")
	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, prog.Decls, 2)

	name, ok := prog.Decls[0].(*ast.ScriptNameDecl)
	require.True(t, ok)
	assert.Equal(t, "foo", name.Name)

	hash, ok := prog.Decls[1].(*ast.ScriptHashDecl)
	require.True(t, ok)
	assert.EqualValues(t, 0x1234, hash.Value)
}

func TestParseStructAndLocalVarDecl(t *testing.T) {
	src := `STRUCT VECTOR3
	FLOAT x, y, z
ENDSTRUCT

PROC Main()
	VECTOR3 pos
	INT count = 0
	pos.x = 1.0
ENDPROC
`
	prog, bag := parse(t, src)
	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, prog.Decls, 2)

	st, ok := prog.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "VECTOR3", st.Name)
	require.Len(t, st.Fields, 1)
	assert.Equal(t, []string{"x", "y", "z"}, st.Fields[0].Names)

	proc, ok := prog.Decls[1].(*ast.ProcDecl)
	require.True(t, ok)
	require.Len(t, proc.Body, 3)

	local, ok := proc.Body[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "VECTOR3", local.Declarator.BaseName)
	assert.Equal(t, "pos", local.Name)

	assign, ok := proc.Body[2].(*ast.AssignStatement)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Op)
	member, ok := assign.Target.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "x", member.Field)
}

func TestParseArrayAndRefDeclarator(t *testing.T) {
	prog, bag := parse(t, "INT[4] scores\nINT& total\n")
	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, prog.Decls, 2)

	arr := prog.Decls[0].(*ast.VarDecl)
	require.Len(t, arr.Declarator.Wrappers, 1)
	_, isArray := arr.Declarator.Wrappers[0].(ast.ArrayWrapper)
	assert.True(t, isArray)

	ref := prog.Decls[1].(*ast.VarDecl)
	require.Len(t, ref.Declarator.Wrappers, 1)
	_, isRef := ref.Declarator.Wrappers[0].(ast.RefWrapper)
	assert.True(t, isRef)
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := "PROC Main()\n\tINT x = 1 + 2 * 3\nENDPROC\n"
	prog, bag := parse(t, src)
	require.False(t, bag.HasErrors(), bag.All())

	proc := prog.Decls[0].(*ast.ProcDecl)
	decl := proc.Body[0].(*ast.VarDecl)
	bin, ok := decl.Initializer.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseIfWhileSwitch(t *testing.T) {
	src := `PROC Main()
	IF x > 0
		y = 1
	ELSE
		y = 2
	ENDIF
	WHILE x < 10
		x += 1
	ENDWHILE
	SWITCH x
	CASE 1
		y = 1
	CASE 2
		y = 2
	DEFAULT
		y = 0
	ENDSWITCH
ENDPROC
`
	prog, bag := parse(t, src)
	require.False(t, bag.HasErrors(), bag.All())
	proc := prog.Decls[0].(*ast.ProcDecl)
	require.Len(t, proc.Body, 3)

	ifs, ok := proc.Body[0].(*ast.IfStatement)
	require.True(t, ok)
	assert.Len(t, ifs.Then, 1)
	assert.Len(t, ifs.Else, 1)

	ws, ok := proc.Body[1].(*ast.WhileStatement)
	require.True(t, ok)
	assert.Len(t, ws.Body, 1)

	sw, ok := proc.Body[2].(*ast.SwitchStatement)
	require.True(t, ok)
	assert.Len(t, sw.Cases, 2)
	assert.Len(t, sw.Default, 1)
}

func TestParseCallAndVectorExpr(t *testing.T) {
	src := "PROC Main()\n\tFLOAT[3] v = <<1.0, 2.0, 3.0>>\n\tDoThing(1, 2)\nENDPROC\n"
	prog, bag := parse(t, src)
	require.False(t, bag.HasErrors(), bag.All())
	proc := prog.Decls[0].(*ast.ProcDecl)

	decl := proc.Body[0].(*ast.VarDecl)
	vec, ok := decl.Initializer.(*ast.VectorExpr)
	require.True(t, ok)
	assert.Len(t, vec.Components, 3)

	exprStmt := proc.Body[1].(*ast.ExprStatement)
	call, ok := exprStmt.Expression.(*ast.CallExpr)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)
}

func TestParseSyntaxErrorRecovers(t *testing.T) {
	src := "PROC Main()\n\tINT x = \nENDPROC\n"
	_, bag := parse(t, src)
	assert.True(t, bag.HasErrors())
}
