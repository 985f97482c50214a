package nativedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLookupFindsSeededNative(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Seed(Native{Hash: 0xAAAA, Name: "ADD_THING", Signature: "FUNC INT ADD_THING(INT a, INT b)"}))

	n, ok := db.Lookup(0xAAAA)
	require.True(t, ok)
	assert.Equal(t, "ADD_THING", n.Name)
}

func TestLookupMissingHashFails(t *testing.T) {
	db := openTest(t)
	_, ok := db.Lookup(0xDEAD)
	assert.False(t, ok)
}

func TestResolveOriginalFollowsVersionTranslation(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Seed(
		Native{Hash: 0x1111, OriginalHash: 0x1111, Name: "OLD_NATIVE"},
		Native{Hash: 0x2222, OriginalHash: 0x1111, Name: "NEW_NATIVE"},
	))

	assert.Equal(t, "OLD_NATIVE", db.ResolveOriginal(0x2222))
}

func TestResolveOriginalFallsBackToUnknownName(t *testing.T) {
	db := openTest(t)
	got := db.ResolveOriginal(0x1234)
	assert.Equal(t, UnknownName(0x1234), got)
	assert.Equal(t, "_0x0000000000001234", got)
}

func TestSeedUpdatesExistingHash(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Seed(Native{Hash: 0x99, Name: "FIRST"}))
	require.NoError(t, db.Seed(Native{Hash: 0x99, Name: "RENAMED"}))

	n, ok := db.Lookup(0x99)
	require.True(t, ok)
	assert.Equal(t, "RENAMED", n.Name)
}
