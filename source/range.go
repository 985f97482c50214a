// Package source defines source-file positions and half-open ranges shared by the
// lexer, parser, type system, and diagnostics.
package source

import "fmt"

// Pos is a single source location: a 1-based line and column.
type Pos struct {
	Line   int
	Column int
}

// unknownPos is the sentinel position used for built-in symbols that have no source
// location of their own.
var unknownPos = Pos{Line: 0, Column: 0}

// IsUnknown reports whether p is the "unknown" sentinel position.
func (p Pos) IsUnknown() bool { return p == unknownPos }

// String renders p as "line,column", or "?" for the unknown sentinel.
func (p Pos) String() string {
	if p.IsUnknown() {
		return "?"
	}
	return fmt.Sprintf("%d,%d", p.Line, p.Column)
}

// Range is a half-open [Begin,End) span over a single file.
type Range struct {
	File  string
	Begin Pos
	End   Pos
}

// Unknown is the sentinel range used for built-in symbols that were never parsed
// from source text (natives, predeclared types).
var Unknown = Range{File: "<builtin>", Begin: unknownPos, End: unknownPos}

// IsUnknown reports whether r is the unknown sentinel range.
func (r Range) IsUnknown() bool { return r == Unknown }

// String renders r as "file(line,col)" using the range's start position, matching
// the diagnostic line format in §6 of the specification.
func (r Range) String() string {
	return fmt.Sprintf("%s(%s)", r.File, r.Begin)
}

// Span returns the smallest range covering both a and b. Both must belong to the
// same file; Span does not validate this.
func Span(a, b Range) Range {
	return Range{File: a.File, Begin: a.Begin, End: b.End}
}
