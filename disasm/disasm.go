// Package disasm recovers symbolic assembly from a compiled program (§4.9):
// the native import table (resolved through an optional [nativedb.DB]
// oracle), the interned string pool with synthesized labels, run-length
// compressed globals/statics data sections, the args count, and the code
// stream with function and jump labels resolved back from the fixed-up
// branch/call offsets.
//
// Adapted from the teacher's code.Instructions.String(), a single-function
// stream, instruction-at-a-time formatter with no label recovery (Monkey's
// VM has no named jump targets to recover — every branch in that teacher is
// already an absolute operand printed as-is). Generalized here into a
// two-pass disassembler: a label-recovery scan over the whole program before
// any text is emitted, then a second walk that prefixes label lines and
// blank-line-separates functions, matching §4.9's two-pass description.
package disasm

import (
	"fmt"
	"strings"

	"github.com/dr8co/vsc/code"
	"github.com/dr8co/vsc/nativedb"
	"github.com/dr8co/vsc/program"
)

// Disassemble renders p as symbolic assembly. natives may be nil, in which
// case every native import falls back to nativedb's unknown-hash placeholder
// rather than a symbolic name.
func Disassemble(p *program.Program, natives *nativedb.DB) (string, error) {
	var out strings.Builder

	fmt.Fprintf(&out, "; script %s hash %d\n\n", p.ScriptName, p.ScriptHash)

	out.WriteString("natives:\n")
	for i, hash := range p.NativeImports {
		fmt.Fprintf(&out, "  %d: %s\n", i, resolveNative(natives, hash))
	}
	out.WriteString("\n")

	out.WriteString("strings:\n")
	for _, s := range recoverStrings(p.StringPool) {
		fmt.Fprintf(&out, "  %s: %q\n", s.Label, s.Value)
	}
	out.WriteString("\n")

	out.WriteString("globals:\n")
	globals, err := formatImage(p.GlobalsImage)
	if err != nil {
		return "", err
	}
	out.WriteString(globals)

	out.WriteString("\nstatics:\n")
	statics, err := formatImage(p.StaticsImage)
	if err != nil {
		return "", err
	}
	out.WriteString(statics)
	fmt.Fprintf(&out, "args: %d\n\n", p.ArgsCount)

	out.WriteString("code:\n")
	flat := flatten(p.CodePages)
	writeCode(&out, flat, recoverLabels(flat))

	return out.String(), nil
}

func resolveNative(db *nativedb.DB, hash uint64) string {
	if db == nil {
		return nativedb.UnknownName(hash)
	}
	return db.ResolveOriginal(hash)
}

func flatten(pages [][]byte) code.Instructions {
	var out []byte
	for _, pg := range pages {
		out = append(out, pg...)
	}
	return code.Instructions(out)
}
