package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "test.sc")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileCommandWritesContainer(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)
	out := filepath.Join(dir, "test.vsc")

	cmd := newCompileCmd()
	cmd.SetArgs([]string{"--output", out, src})
	require.NoError(t, cmd.Execute())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCompileCommandReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `SCRIPT_NAME main
PROC MAIN()
	x = 1
ENDPROC
`)
	out := filepath.Join(dir, "test.vsc")

	cmd := newCompileCmd()
	cmd.SetArgs([]string{"--output", out, src})
	err := cmd.Execute()
	assert.Error(t, err)

	_, statErr := os.Stat(out)
	assert.Error(t, statErr)
}

func TestCompileCommandDefaultsOutputName(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `SCRIPT_NAME main
PROC MAIN()
	RETURN
ENDPROC
`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cmd := newCompileCmd()
	cmd.SetArgs([]string{src})
	require.NoError(t, cmd.Execute())

	_, err = os.Stat(filepath.Join(dir, "test.vsc"))
	assert.NoError(t, err)
}
