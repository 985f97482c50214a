package nativedb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectInMemory(t *testing.T) {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.True(t, db.Migrator().HasTable(&Native{}))
}

func TestConnectCreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	dsn := filepath.Join(dir, "natives.db")

	db, err := Connect(dsn, false)
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.DirExists(t, dir)
	_, statErr := os.Stat(dsn)
	assert.NoError(t, statErr)
}

func TestMigrateCreatesNativesTable(t *testing.T) {
	db, err := Connect(":memory:", false)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("natives"))
}
