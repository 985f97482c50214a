// Package diag collects compiler diagnostics: source-ranged errors and warnings
// that accumulate across every pass of the pipeline.
//
// No pass aborts on error. Each pass appends a [Diagnostic] and either skips the
// offending subtree or substitutes a placeholder so later passes can continue and
// surface as many independent problems as possible in one run. A compile is
// considered successful iff the resulting [Bag] contains zero errors; warnings never
// fail a compile. This generalizes the teacher's non-fatal parser, which accumulates
// a flat `[]string` of error messages and keeps parsing past each one.
package diag

import (
	"fmt"
	"sort"

	"github.com/dr8co/vsc/source"
)

// Severity distinguishes a fatal problem from an advisory one.
type Severity int

const (
	// Error marks a diagnostic that prevents code generation.
	Error Severity = iota
	// Warning marks an advisory diagnostic that does not fail the compile.
	Warning
)

// String renders the severity the way §6 diagnostic lines expect it.
func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code identifies the taxonomy entry a diagnostic belongs to (§7).
type Code string

//nolint:revive
const (
	SyntaxError              Code = "SyntaxError"
	UndeclaredName           Code = "UndeclaredName"
	DuplicateSymbol          Code = "DuplicateSymbol"
	DuplicateImport          Code = "DuplicateImport"
	UnknownMember            Code = "UnknownMember"
	TypeMismatch             Code = "TypeMismatch"
	ArityMismatch            Code = "ArityMismatch"
	CircularType             Code = "CircularType"
	CircularConstant         Code = "CircularConstant"
	NonConstInConst          Code = "NonConstInConst"
	InvalidGlobalType        Code = "InvalidGlobalType"
	InvalidStaticInitializer Code = "InvalidStaticInitializer"
	DuplicateCase            Code = "DuplicateCase"
	MissingReturn            Code = "MissingReturn"
	InvalidUsingPath         Code = "InvalidUsingPath"
)

// Diagnostic is a single reported problem: a file, a source range, a severity, a
// stable taxonomy code, and a human-readable message.
type Diagnostic struct {
	Range    source.Range
	Severity Severity
	Code     Code
	Message  string
}

// String renders a diagnostic as "file(line,col): error|warning: message", the
// format required by §6.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Range, d.Severity, d.Message)
}

// Bag is an append-only, stably-ordered collection of diagnostics. A single Bag is
// shared across every pass of one compile invocation.
type Bag struct {
	entries []Diagnostic
}

// NewBag creates an empty diagnostics bag.
func NewBag() *Bag {
	return &Bag{}
}

// Errorf appends an Error-severity diagnostic with the given code at r.
func (b *Bag) Errorf(r source.Range, code Code, format string, args ...any) {
	b.entries = append(b.entries, Diagnostic{Range: r, Severity: Error, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning-severity diagnostic with the given code at r.
func (b *Bag) Warnf(r source.Range, code Code, format string, args ...any) {
	b.entries = append(b.entries, Diagnostic{Range: r, Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// All returns every diagnostic reported so far, in report order.
func (b *Bag) All() []Diagnostic {
	return b.entries
}

// HasErrors reports whether any Error-severity diagnostic has been reported.
func (b *Bag) HasErrors() bool {
	for _, d := range b.entries {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the total number of diagnostics reported, errors and warnings alike.
func (b *Bag) Len() int { return len(b.entries) }

// SortStable orders diagnostics by file, then start position, then report order —
// used only for presentation; pass order (diagnostics ordering must be stable per
// §5) is otherwise preserved as reported.
func (b *Bag) SortStable() {
	sort.SliceStable(b.entries, func(i, j int) bool {
		a, c := b.entries[i].Range, b.entries[j].Range
		if a.File != c.File {
			return a.File < c.File
		}
		if a.Begin.Line != c.Begin.Line {
			return a.Begin.Line < c.Begin.Line
		}
		return a.Begin.Column < c.Begin.Column
	})
}
