// Package program assembles the code generator's output into the compiled
// program container format (§6): magic/version header, script identity,
// globals/statics images, a deduplicated string pool, the native import table,
// and 16KB code pages — the host's script container shape.
//
// Adapted from the teacher's compiler.Bytecode, which pairs one instruction
// stream with one flat constant pool; generalized here to the full container
// §6 describes, since ScriptLang separates globals from statics from args and
// carries its own string pool and native table rather than a generic
// constant-object pool (Monkey's object.Object has no equivalent of a fixed
// byte-addressed data image).
package program

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dr8co/vsc/bound"
	"github.com/dr8co/vsc/codegen"
	"github.com/dr8co/vsc/symtab"
)

// Magic identifies a vsc-compiled program container.
const Magic uint32 = 0x56534331 // "VSC1"

// Version is the container format version this package produces and expects.
const Version uint16 = 1

const pageSize = 16 * 1024

// Program is the fully assembled compiled program (§6), ready for the host's
// script container or the disassembler.
type Program struct {
	Magic   uint32
	Version uint16

	ScriptName string
	ScriptHash int64

	// BuildID identifies this particular Assemble run; two compiles of
	// byte-identical source get distinct BuildIDs, so build artifacts and logs
	// can be correlated without reusing the (stable) ScriptHash for that job.
	BuildID uuid.UUID

	// GlobalsBlockIndex is the owning block index for this script's globals, as
	// passed to Assemble (the compile command's --globals-block flag). The block
	// number written in a GLOBAL declaration is not consulted.
	GlobalsBlockIndex int

	// GlobalsImage and StaticsImage are 8-byte-cell images, one cell per
	// Global/Static VariableSymbol slot, laid out at the ImageOffset the code
	// generator assigned. ArgsCount is MAIN's parameter count: the number of
	// invocation arguments the host writes into MAIN's leading frame slots
	// before entering the script (§6's "args are the last N statics" recast
	// for a calling convention where parameters are frame-relative, not
	// image-addressed; see countArgs).
	GlobalsImage []int64
	StaticsImage []int64
	ArgsCount    int

	// StringPool is the concatenated NUL-terminated UTF-8 string table; offsets
	// into it are what STRING-opcode operands reference.
	StringPool []byte

	// NativeImports is the deduplicated, insertion-ordered table of 64-bit
	// native-function hashes the program calls.
	NativeImports []uint64

	// CodePages is the instruction stream split into fixed 16KB pages; no
	// instruction straddles a page boundary (NOP-padded by the code generator).
	CodePages [][]byte
}

// Assemble builds a Program from a bound tree and the code generator's result.
// It must run after codegen.Generate, since that is what assigns every global/
// static VariableSymbol its ImageOffset.
func Assemble(prog *bound.Program, gen *codegen.Result, globalsBlockIndex int) (*Program, error) {
	globalsImage, err := cellImage(prog.Globals)
	if err != nil {
		return nil, errors.Wrap(err, "program: globals image")
	}
	staticsImage, err := cellImage(prog.Statics)
	if err != nil {
		return nil, errors.Wrap(err, "program: statics image")
	}

	return &Program{
		Magic:             Magic,
		Version:           Version,
		ScriptName:        gen.ScriptName,
		ScriptHash:        gen.ScriptHash,
		BuildID:           uuid.New(),
		GlobalsBlockIndex: globalsBlockIndex,
		GlobalsImage:      globalsImage,
		StaticsImage:      staticsImage,
		ArgsCount:         countArgs(prog),
		StringPool:        gen.Strings,
		NativeImports:     gen.NativeImports,
		CodePages:         paginate(gen.Code),
	}, nil
}

// cellImage lays out one 8-byte cell per slot of every variable, in ascending
// ImageOffset order, initialized from its constant-folded value where present
// and zero otherwise. STRING-typed globals/statics never carry an initializer
// (the type checker rejects one), so they always start zeroed.
func cellImage(vars []*symtab.VariableSymbol) ([]int64, error) {
	size := 0
	for _, v := range vars {
		if end := v.ImageOffset + v.Type.Size(); end > size {
			size = end
		}
	}
	cells := make([]int64, size)
	for _, v := range vars {
		if v.Initializer == nil {
			continue
		}
		cell, err := literalCell(v.Initializer)
		if err != nil {
			return nil, errors.Wrapf(err, "static %q", v.Name)
		}
		cells[v.ImageOffset] = cell
	}
	return cells, nil
}

func literalCell(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		return int64(math.Float32bits(float32(x))), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errors.Errorf("unsupported constant cell value %T", v)
	}
}

// countArgs reports the script's invocation argument count (§6: "args are the
// last N statics"). LocalArgument-kind symbols live in a function's own frame
// scope (assigned a FrameSlot by the second pass, never an ImageOffset), so
// they never appear in prog.Statics directly; the host instead launches a
// script by writing its invocation arguments into MAIN's leading frame slots
// before the first ENTER runs, and ArgsCount is the count the loader needs to
// know how many of those slots to seed. A script with no MAIN, or a MAIN
// taking no parameters, has no args.
func countArgs(prog *bound.Program) int {
	for _, fn := range prog.Functions {
		if strings.ToUpper(fn.Symbol.Name) == "MAIN" {
			return len(fn.Params)
		}
	}
	return 0
}

// Encode writes p to w in the §6 container wire format: magic, version,
// script identity, the globals/statics images and args count, the string
// pool, the native import table, and the code pages, all little-endian.
// BuildID rides along as a 16-byte field so a container can be traced back
// to the compile that produced it.
func (p *Program) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, p.Magic); err != nil {
		return errors.Wrap(err, "program: write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, p.Version); err != nil {
		return errors.Wrap(err, "program: write version")
	}
	if err := writeString(bw, p.ScriptName); err != nil {
		return errors.Wrap(err, "program: write script name")
	}
	if err := binary.Write(bw, binary.LittleEndian, p.ScriptHash); err != nil {
		return errors.Wrap(err, "program: write script hash")
	}
	buildID, err := p.BuildID.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "program: marshal build id")
	}
	if _, err := bw.Write(buildID); err != nil {
		return errors.Wrap(err, "program: write build id")
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(p.GlobalsBlockIndex)); err != nil {
		return errors.Wrap(err, "program: write globals block index")
	}
	if err := writeCells(bw, p.GlobalsImage); err != nil {
		return errors.Wrap(err, "program: write globals image")
	}
	if err := writeCells(bw, p.StaticsImage); err != nil {
		return errors.Wrap(err, "program: write statics image")
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(p.ArgsCount)); err != nil {
		return errors.Wrap(err, "program: write args count")
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(p.StringPool))); err != nil {
		return errors.Wrap(err, "program: write string pool length")
	}
	if _, err := bw.Write(p.StringPool); err != nil {
		return errors.Wrap(err, "program: write string pool")
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(p.NativeImports))); err != nil {
		return errors.Wrap(err, "program: write native import count")
	}
	for _, hash := range p.NativeImports {
		if err := binary.Write(bw, binary.LittleEndian, hash); err != nil {
			return errors.Wrap(err, "program: write native import")
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(p.CodePages))); err != nil {
		return errors.Wrap(err, "program: write code page count")
	}
	for _, page := range p.CodePages {
		if _, err := bw.Write(page); err != nil {
			return errors.Wrap(err, "program: write code page")
		}
	}
	return bw.Flush()
}

// Decode reads a container previously written by Encode.
func Decode(r io.Reader) (*Program, error) {
	br := bufio.NewReader(r)
	p := &Program{}

	if err := binary.Read(br, binary.LittleEndian, &p.Magic); err != nil {
		return nil, errors.Wrap(err, "program: read magic")
	}
	if p.Magic != Magic {
		return nil, errors.Errorf("program: bad magic %#x", p.Magic)
	}
	if err := binary.Read(br, binary.LittleEndian, &p.Version); err != nil {
		return nil, errors.Wrap(err, "program: read version")
	}
	name, err := readString(br)
	if err != nil {
		return nil, errors.Wrap(err, "program: read script name")
	}
	p.ScriptName = name
	if err := binary.Read(br, binary.LittleEndian, &p.ScriptHash); err != nil {
		return nil, errors.Wrap(err, "program: read script hash")
	}
	buildID := make([]byte, 16)
	if _, err := io.ReadFull(br, buildID); err != nil {
		return nil, errors.Wrap(err, "program: read build id")
	}
	if err := p.BuildID.UnmarshalBinary(buildID); err != nil {
		return nil, errors.Wrap(err, "program: unmarshal build id")
	}
	var globalsBlockIndex int32
	if err := binary.Read(br, binary.LittleEndian, &globalsBlockIndex); err != nil {
		return nil, errors.Wrap(err, "program: read globals block index")
	}
	p.GlobalsBlockIndex = int(globalsBlockIndex)
	if p.GlobalsImage, err = readCells(br); err != nil {
		return nil, errors.Wrap(err, "program: read globals image")
	}
	if p.StaticsImage, err = readCells(br); err != nil {
		return nil, errors.Wrap(err, "program: read statics image")
	}
	var argsCount int32
	if err := binary.Read(br, binary.LittleEndian, &argsCount); err != nil {
		return nil, errors.Wrap(err, "program: read args count")
	}
	p.ArgsCount = int(argsCount)

	var poolLen int32
	if err := binary.Read(br, binary.LittleEndian, &poolLen); err != nil {
		return nil, errors.Wrap(err, "program: read string pool length")
	}
	p.StringPool = make([]byte, poolLen)
	if _, err := io.ReadFull(br, p.StringPool); err != nil {
		return nil, errors.Wrap(err, "program: read string pool")
	}

	var natCount int32
	if err := binary.Read(br, binary.LittleEndian, &natCount); err != nil {
		return nil, errors.Wrap(err, "program: read native import count")
	}
	p.NativeImports = make([]uint64, natCount)
	for i := range p.NativeImports {
		if err := binary.Read(br, binary.LittleEndian, &p.NativeImports[i]); err != nil {
			return nil, errors.Wrap(err, "program: read native import")
		}
	}

	var pageCount int32
	if err := binary.Read(br, binary.LittleEndian, &pageCount); err != nil {
		return nil, errors.Wrap(err, "program: read code page count")
	}
	p.CodePages = make([][]byte, pageCount)
	for i := range p.CodePages {
		page := make([]byte, pageSize)
		if _, err := io.ReadFull(br, page); err != nil {
			return nil, errors.Wrap(err, "program: read code page")
		}
		p.CodePages[i] = page
	}

	return p, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeCells(w io.Writer, cells []int64) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(cells))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, cells)
}

func readCells(r io.Reader) ([]int64, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	cells := make([]int64, n)
	if err := binary.Read(r, binary.LittleEndian, cells); err != nil {
		return nil, err
	}
	return cells, nil
}

// paginate splits code into fixed pageSize pages. codegen.Generate already
// NOP-pads so no instruction straddles a page; this only needs to cut the
// already-aligned stream at page boundaries.
func paginate(code []byte) [][]byte {
	if len(code) == 0 {
		return nil
	}
	pages := make([][]byte, 0, (len(code)+pageSize-1)/pageSize)
	for off := 0; off < len(code); off += pageSize {
		end := off + pageSize
		if end > len(code) {
			end = len(code)
		}
		page := make([]byte, pageSize)
		copy(page, code[off:end])
		pages = append(pages, page)
	}
	return pages
}
