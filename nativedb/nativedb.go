package nativedb

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DB is a read-only handle onto the native-function database, safe to share
// across concurrent compilations (§5: "the native database is read-only and
// may be shared across compilations").
type DB struct {
	gorm *gorm.DB
}

// Open connects to and wraps a native-function database.
func Open(dsn string, debug bool) (*DB, error) {
	gdb, err := Connect(dsn, debug)
	if err != nil {
		return nil, err
	}
	return &DB{gorm: gdb}, nil
}

// Lookup finds the native registered under hash, if any.
func (d *DB) Lookup(hash uint64) (Native, bool) {
	var n Native
	err := d.gorm.Where("hash = ?", hash).First(&n).Error
	if err != nil {
		return Native{}, false
	}
	return n, true
}

// ResolveOriginal follows a native's version translation one step, to the name
// its original (untranslated) hash was registered under, handling the
// version-translation tables the engine's native database carries (§6); if that
// original hash is not registered, the native's own name is returned. If
// hash is not registered at all, it returns the canonical unknown-native
// placeholder name rather than an error, since a compiled program may import
// natives the local database has never seen (§4.9's disassembler must still
// produce output).
func (d *DB) ResolveOriginal(hash uint64) string {
	n, ok := d.Lookup(hash)
	if !ok {
		return UnknownName(hash)
	}
	if n.OriginalHash != 0 && n.OriginalHash != hash {
		if orig, ok := d.Lookup(n.OriginalHash); ok {
			return orig.Name
		}
	}
	return n.Name
}

// UnknownName is the disassembler's fallback label for a native hash absent
// from the database (§4.9: "falls back to _0xHHHHHHHHHHHHHHHH").
func UnknownName(hash uint64) string {
	return fmt.Sprintf("_0x%016X", hash)
}

// Seed registers or updates a batch of native definitions; used by schema
// bootstrapping and tests rather than by the compiler itself, which only
// ever reads.
func (d *DB) Seed(natives ...Native) error {
	if len(natives) == 0 {
		return nil
	}
	err := d.gorm.Clauses(clause.OnConflict{UpdateAll: true}).Create(&natives).Error
	if err != nil {
		return errors.Wrap(err, "nativedb: seed")
	}
	return nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return errors.Wrap(err, "nativedb: close")
	}
	return sqlDB.Close()
}
