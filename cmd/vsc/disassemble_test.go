package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisasmCommandPrintsCompiledProgram(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	out := filepath.Join(dir, "test.vsc")

	compile := newCompileCmd()
	compile.SetArgs([]string{"--output", out, src})
	require.NoError(t, compile.Execute())

	os.Unsetenv("VSC_NATIVES_DSN")

	disasm := newDisasmCmd()
	buf := &captureWriter{}
	disasm.SetOut(buf)
	disasm.SetArgs([]string{out})
	require.NoError(t, disasm.Execute())
}

func TestDisasmCommandRejectsMissingFile(t *testing.T) {
	disasm := newDisasmCmd()
	disasm.SetArgs([]string{"/nonexistent/path.vsc"})
	assert.Error(t, disasm.Execute())
}

type captureWriter struct{ buf []byte }

func (c *captureWriter) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	return len(p), nil
}
