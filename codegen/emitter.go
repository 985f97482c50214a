// Package codegen lowers a [bound.Program] into VM bytecode (§4.8): label
// resolution, instruction selection by operand width, short-circuit control flow,
// string pool interning, native import deduplication, and final page splitting.
//
// The emitter state (byte buffer + label table + pending fixups) generalizes the
// teacher's own compiler.CompilationScope/EmittedInstruction bookkeeping — the
// teacher patches a single forward jump in place with [compiler.Compiler.
// changeOperand] since Monkey never needs a true label (every jump target is
// known within the same expression it's compiled from); here CALL targets cross
// function boundaries that may not be compiled yet, and §4.8's page-splitting step
// shifts every address after the first inserted NOP pad, so this emitter defers
// every forward reference to a single end-of-pass fixup resolution instead.
package codegen

import (
	"encoding/binary"
	"fmt"

	"github.com/dr8co/vsc/code"
)

type fixupKind int

const (
	fixupRel16 fixupKind = iota // J/JZ/IxY_JZ: 16-bit relative to the instruction following the branch
	fixupAbs24                  // CALL: 24-bit absolute code offset
	fixupRel16Switch            // one SWITCH case/default entry: 16-bit relative, same convention as J
)

// fixup records one not-yet-resolvable reference by the offset of the
// instruction it belongs to (not the operand bytes — those shift during page
// splitting, the instruction start is what the remap tracks).
type fixup struct {
	instrStart int
	operandOff int // byte offset of the operand within the instruction, from instrStart
	kind       fixupKind
	label      string
}

// Emitter accumulates the whole program's instruction stream; Generate uses a
// single Emitter for every function.
type Emitter struct {
	buf    []byte
	labels map[string]int
	fixups []fixup

	labelSeq int

	strings    map[string]int
	stringPool []byte

	nativeIndex map[uint64]int
	nativeOrder []uint64
}

func NewEmitter() *Emitter {
	return &Emitter{
		labels:      make(map[string]int),
		strings:     make(map[string]int),
		nativeIndex: make(map[uint64]int),
	}
}

// NewLabel mints a fresh, unique label name for a synthetic branch target (IF/
// ELSE/ENDIF, WHILE/ENDWHILE, REPEAT head/continue/exit, SWITCH case/default,
// every callee's entry point).
func (e *Emitter) NewLabel(prefix string) string {
	e.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, e.labelSeq)
}

// Mark records name as pointing at the next instruction to be emitted.
func (e *Emitter) Mark(name string) {
	e.labels[name] = len(e.buf)
}

// Pos returns the current write position (an instruction start).
func (e *Emitter) Pos() int { return len(e.buf) }

// Emit appends a fixed-width instruction.
func (e *Emitter) Emit(op code.Opcode, operands ...int) int {
	pos := len(e.buf)
	e.buf = append(e.buf, code.Make(op, operands...)...)
	return pos
}

// EmitFloat appends a PUSH_CONST_F instruction.
func (e *Emitter) EmitFloat(v float32) int {
	pos := len(e.buf)
	e.buf = append(e.buf, code.MakeFloat(v)...)
	return pos
}

// EmitEnter appends an ENTER prologue.
func (e *Emitter) EmitEnter(argsSize, localsSize int, name string) int {
	pos := len(e.buf)
	e.buf = append(e.buf, code.MakeEnter(argsSize, localsSize, name)...)
	return pos
}

// EmitJump appends a branch instruction (J, JZ, or one of the IxY_JZ fused
// comparison-jumps) with a placeholder operand, recording a fixup against label.
func (e *Emitter) EmitJump(op code.Opcode, label string) int {
	instrStart := len(e.buf)
	e.buf = append(e.buf, code.Make(op, 0)...)
	e.fixups = append(e.fixups, fixup{instrStart: instrStart, operandOff: 1, kind: fixupRel16, label: label})
	return instrStart
}

// EmitCall appends a CALL with a placeholder 24-bit absolute operand, recording a
// fixup against the callee's entry label.
func (e *Emitter) EmitCall(label string) int {
	instrStart := len(e.buf)
	e.buf = append(e.buf, code.Make(code.CALL, 0)...)
	e.fixups = append(e.fixups, fixup{instrStart: instrStart, operandOff: 1, kind: fixupAbs24, label: label})
	return instrStart
}

// EmitSwitch reserves a SWITCH instruction sized for len(caseLabels) cases; each
// case's offset is fixed up once its target label is marked, since case bodies
// are emitted after the SWITCH instruction itself. The caller emits the
// terminating J to the default label separately via EmitJump, matching §4.8's
// "falling through to a terminating J to the default label" description.
func (e *Emitter) EmitSwitch(values []int64, caseLabels []string) int {
	instrStart := len(e.buf)
	cases := make([]code.SwitchCase, len(values))
	for i, v := range values {
		cases[i] = code.SwitchCase{Value: uint32(v), Offset: 0}
	}
	e.buf = append(e.buf, byte(code.SWITCH))
	e.buf = append(e.buf, code.MakeSwitch(cases)...)
	for i, label := range caseLabels {
		e.fixups = append(e.fixups, fixup{instrStart: instrStart, operandOff: 1 + 1 + i*6 + 4, kind: fixupRel16Switch, label: label})
	}
	return instrStart
}

// InternString adds s to the string pool (deduplicated) and returns its byte
// offset, for the STRING opcode's operand.
func (e *Emitter) InternString(s string) int {
	if off, ok := e.strings[s]; ok {
		return off
	}
	off := len(e.stringPool)
	e.stringPool = append(e.stringPool, []byte(s)...)
	e.stringPool = append(e.stringPool, 0)
	e.strings[s] = off
	return off
}

// InternNative deduplicates a native's 64-bit hash into the import table,
// returning its insertion-ordered index for the NATIVE opcode's operand.
func (e *Emitter) InternNative(hash uint64) int {
	if idx, ok := e.nativeIndex[hash]; ok {
		return idx
	}
	idx := len(e.nativeOrder)
	e.nativeIndex[hash] = idx
	e.nativeOrder = append(e.nativeOrder, hash)
	return idx
}

// NativeImports returns the deduplicated, insertion-ordered native hash table.
func (e *Emitter) NativeImports() []uint64 { return e.nativeOrder }

// StringPool returns the interned string pool bytes (NUL-terminated entries).
func (e *Emitter) StringPool() []byte { return e.stringPool }

// Finish resolves every fixup and page-splits the buffer (16KB pages, NOP-padded
// so no instruction straddles a boundary), returning the final code bytes.
func (e *Emitter) Finish() ([]byte, error) {
	final, remap := layoutPages(e.buf)
	for name, pos := range e.labels {
		e.labels[name] = remap[pos]
	}
	for _, f := range e.fixups {
		newStart, ok := remap[f.instrStart]
		if !ok {
			return nil, fmt.Errorf("codegen: fixup at stale instruction offset %d", f.instrStart)
		}
		target, ok := e.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("codegen: undefined label %q", f.label)
		}
		operandPos := newStart + f.operandOff
		switch f.kind {
		case fixupRel16, fixupRel16Switch:
			rel := target - (operandPos + 2)
			binary.LittleEndian.PutUint16(final[operandPos:], uint16(int16(rel)))
		case fixupAbs24:
			final[operandPos] = byte(target)
			final[operandPos+1] = byte(target >> 8)
			final[operandPos+2] = byte(target >> 16)
		}
	}
	return final, nil
}

const pageSize = 16 * 1024

// layoutPages walks buf instruction-by-instruction and inserts NOP padding so
// none straddles a 16KB page, returning the padded buffer and a map from every
// original instruction-start offset to its offset in the padded buffer.
func layoutPages(buf []byte) ([]byte, map[int]int) {
	remap := make(map[int]int, len(buf))
	out := make([]byte, 0, len(buf)+len(buf)/pageSize+1)

	i := 0
	for i < len(buf) {
		n := instrLen(buf, i)
		pagePos := len(out) % pageSize
		if pagePos+n > pageSize {
			pad := pageSize - pagePos
			for k := 0; k < pad; k++ {
				out = append(out, byte(code.NOP))
			}
		}
		remap[i] = len(out)
		out = append(out, buf[i:i+n]...)
		i += n
	}
	return out, remap
}

// instrLen returns the byte length (opcode + operands) of the instruction at i.
func instrLen(buf []byte, i int) int {
	op := code.Opcode(buf[i])
	switch op {
	case code.ENTER:
		_, _, _, read := code.ReadEnter(code.Instructions(buf[i+1:]))
		return 1 + read
	case code.SWITCH:
		_, read := code.ReadSwitch(code.Instructions(buf[i+1:]))
		return 1 + read
	}
	def, err := code.Lookup(buf[i])
	if err != nil {
		return 1
	}
	width := 1
	for _, w := range def.OperandWidths {
		width += w
	}
	return width
}
