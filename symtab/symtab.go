// Package symtab implements ScriptLang's lexically-scoped symbol table: a chain of
// scopes used for name resolution, with one-way import of another table's top-level
// symbols (§3, §4.1).
//
// Unlike the teacher's compiler.SymbolTable — which exists purely to assign stack
// slot indices to locals/globals during code generation and supports free-variable
// capture for closures — this table is the front-end's name-resolution environment:
// it holds [TypeSymbol], [VariableSymbol] and [FunctionSymbol] values, is built
// during the First Pass before any code is generated, and has no notion of closures
// (ScriptLang has none). Frame-slot assignment is a separate, later concern (§4.7),
// recorded back onto VariableSymbol/FunctionSymbol once computed.
package symtab

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/dr8co/vsc/source"
	"github.com/dr8co/vsc/types"
)

// VarKind classifies a VariableSymbol by storage class.
type VarKind int

const (
	Static VarKind = iota
	Global
	Constant
	Local
	LocalArgument
)

// TypeSymbol names a user-defined type (a STRUCT declaration).
type TypeSymbol struct {
	Name  string
	Range source.Range
	Type  types.Type
}

// VariableSymbol names a static, global, constant or local variable.
type VariableSymbol struct {
	Name  string
	Range source.Range
	Type  types.Type
	Kind  VarKind

	// FrameSlot is the slot index assigned during the Second Pass (§4.7); -1 until
	// assigned. Meaningless for Global/Static, which are addressed by image offset
	// instead (recorded in ImageOffset).
	FrameSlot int

	// ImageOffset is the cell offset into the globals or statics image (§6),
	// assigned by the code generator. -1 until assigned.
	ImageOffset int

	// Initializer holds the constant-folded literal value once constant folding
	// (§4.4) has reduced a CONST's, static's or global's initializer to a
	// literal. Nil until resolved.
	Initializer any
}

// FunctionSymbol names a PROC/FUNC, in one of three forms: Defined (has a body),
// Native (has a 64-bit hash), or Prototype (type alias only, via PROTO).
type FunctionSymbol struct {
	Name  string
	Range source.Range
	Type  *types.Function

	Defined   bool
	Native    bool
	Prototype bool
	Hash      uint64 // valid when Native

	// LocalsSize/ArgsSize are filled in by the Second Pass (§4.7) for Defined
	// functions. EntryLabel is left empty: the code generator keeps callee entry
	// labels in its own map.
	LocalsSize int
	ArgsSize   int
	EntryLabel string
}

// Symbol is the union of the three symbol kinds a scope can hold.
type Symbol interface {
	symbolName() string
}

func (t *TypeSymbol) symbolName() string     { return t.Name }
func (v *VariableSymbol) symbolName() string { return v.Name }
func (f *FunctionSymbol) symbolName() string { return f.Name }

// Name returns a symbol's declared name regardless of kind.
func Name(s Symbol) string { return s.symbolName() }

// ErrDuplicateSymbol is returned by Add when name already exists in the current scope.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// ErrDuplicateImport is returned by Import when a name collides with an existing
// root-scope symbol.
var ErrDuplicateImport = errors.New("duplicate import")

// scope is one link in the lexical chain: a case-insensitive name -> Symbol map.
type scope struct {
	key     string
	symbols map[string]Symbol
}

func newScope(key string) *scope {
	return &scope{key: key, symbols: make(map[string]Symbol)}
}

// Table is a stack of lexical scopes. Scope 0 is the root (top-level) scope.
//
// Names are case-insensitive for lookup/duplicate-detection purposes (ScriptLang
// keywords and identifiers are case-insensitive, §9) but Symbol.Name preserves the
// spelling as written, matching the teacher's token.LookupIdent normalize-for-lookup,
// preserve-for-display approach.
type Table struct {
	scopes []*scope
}

// New creates a symbol table containing only its root scope.
func New() *Table {
	return &Table{scopes: []*scope{newScope("root")}}
}

func fold(name string) string { return strings.ToUpper(name) }

// EnterScope pushes a new, empty scope identified by key (used for diagnostics and
// is otherwise inert) onto the chain.
func (t *Table) EnterScope(key string) {
	t.scopes = append(t.scopes, newScope(key))
}

// ExitScope pops the innermost scope. Calling ExitScope on a table with only the
// root scope left is a programming error and panics, the same way popping an empty
// stack would.
func (t *Table) ExitScope() {
	if len(t.scopes) == 1 {
		panic("symtab: ExitScope called with only the root scope remaining")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of scopes currently on the chain (root scope counts as 1).
func (t *Table) Depth() int { return len(t.scopes) }

// Add registers sym in the innermost scope. Same-scope shadowing is forbidden
// (§4.1): Add returns [ErrDuplicateSymbol] if the name already exists in that scope.
// Outer-scope shadowing is permitted — Add never consults enclosing scopes.
func (t *Table) Add(sym Symbol) error {
	cur := t.scopes[len(t.scopes)-1]
	key := fold(Name(sym))
	if _, exists := cur.symbols[key]; exists {
		return errors.Wrapf(ErrDuplicateSymbol, "%q", Name(sym))
	}
	cur.symbols[key] = sym
	return nil
}

// Lookup walks the scope chain from innermost to outermost and returns the first
// match, or (nil, false). Order of addition within a scope does not affect lookup —
// all names in a scope are visible to every member of that scope, which is what
// permits mutually recursive functions and structs (§4.1).
func (t *Table) Lookup(name string) (Symbol, bool) {
	key := fold(name)
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[key]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal looks up name only in the innermost scope, without walking outward.
func (t *Table) LookupLocal(name string) (Symbol, bool) {
	cur := t.scopes[len(t.scopes)-1]
	sym, ok := cur.symbols[fold(name)]
	return sym, ok
}

// RootSymbols returns every symbol registered directly in the root (top-level)
// scope, in map iteration order. Callers that need a stable order should sort the
// result by name.
func (t *Table) RootSymbols() []Symbol {
	root := t.scopes[0]
	out := make([]Symbol, 0, len(root.symbols))
	for _, sym := range root.symbols {
		out = append(out, sym)
	}
	return out
}

// Import copies only the root-scope symbols of other into this table's root scope
// (§4.1) — it never reaches into other's nested scopes, and it never copies into
// anything but this table's own root. Importing the same table twice is reported
// once per re-imported name via onDuplicate but otherwise has no further effect
// (idempotent, invariant I3): the second import leaves the symbol set unchanged.
func (t *Table) Import(other *Table, onDuplicate func(name string)) {
	root := t.scopes[0]
	for _, sym := range other.RootSymbols() {
		key := fold(Name(sym))
		if _, exists := root.symbols[key]; exists {
			if onDuplicate != nil {
				onDuplicate(Name(sym))
			}
			continue
		}
		root.symbols[key] = sym
	}
}
