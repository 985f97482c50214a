package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativesSeedAndLookup(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "natives.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"0x1111,0x1111,STRING_TO_INT,int(string)\n",
	), 0o644))
	dsn := filepath.Join(dir, "natives.db")

	seed := newNativesCmd()
	seed.SetArgs([]string{"--dsn", dsn, "seed", csvPath})
	require.NoError(t, seed.Execute())

	lookup := newNativesCmd()
	buf := &captureWriter{}
	lookup.SetOut(buf)
	lookup.SetArgs([]string{"--dsn", dsn, "lookup", "0x1111"})
	require.NoError(t, lookup.Execute())
}

func TestNativesLookupFailsWithoutDSN(t *testing.T) {
	os.Unsetenv("VSC_NATIVES_DSN")
	cmd := newNativesCmd()
	cmd.SetArgs([]string{"lookup", "0x1111"})
	assert.Error(t, cmd.Execute())
}

func TestNativesSeedRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("0x1111,STRING_TO_INT\n"), 0o644))
	dsn := filepath.Join(dir, "natives.db")

	cmd := newNativesCmd()
	cmd.SetArgs([]string{"--dsn", dsn, "seed", csvPath})
	assert.Error(t, cmd.Execute())
}
