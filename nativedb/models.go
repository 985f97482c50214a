// Package nativedb is the native-function database oracle (§6): a read-only
// mapping from a 64-bit import hash to the native's {originalHash, name,
// signature}, backed by a real embedded SQL database rather than an
// in-memory table.
//
// Adapted from the teacher's evaluator.Builtins, a fixed map of name to
// built-in function, generalized to a persisted, hash-keyed store with
// version translation (resolveOriginal), grounded on termfx-morfx's
// db/sqlite.go connection and migration shape.
package nativedb

// Native is one row of the native-function database: the current import
// hash a script calls through, the hash of the original (pre-version-
// translation) definition it resolves to, its symbolic name, and its
// parameter/return signature for disassembly annotation.
type Native struct {
	Hash         uint64 `gorm:"primaryKey"`
	OriginalHash uint64 `gorm:"index"`
	Name         string `gorm:"type:varchar(255);index"`
	Signature    string `gorm:"type:varchar(255)"`
}

func (Native) TableName() string { return "natives" }
