package disasm

import (
	"fmt"
	"strings"

	"github.com/dr8co/vsc/code"
)

// labelSet is the result of §4.9's first disassembly pass: a scan for every
// branch, call, switch-case, and ENTER target, naming function entries
// func_<addr> (address 0 is always "main") and jump targets lbl_<addr>.
type labelSet struct {
	names map[int]string
	funcs map[int]bool
}

func recoverLabels(ins code.Instructions) *labelSet {
	ls := &labelSet{names: map[int]string{}, funcs: map[int]bool{}}

	i := 0
	for i < len(ins) {
		switch code.Opcode(ins[i]) {
		case code.ENTER:
			ls.markFunc(i)
			_, _, _, read := code.ReadEnter(ins[i+1:])
			i += 1 + read
			continue

		case code.SWITCH:
			cases, read := code.ReadSwitch(ins[i+1:])
			for idx := range cases {
				// Each case entry is {value:u32, offset:s16}; the offset is
				// relative to the byte immediately following its own field
				// (§4.8), not to the end of the whole SWITCH instruction.
				offsetFieldPos := i + 2 + idx*6 + 4
				target := offsetFieldPos + 2 + int(cases[idx].Offset)
				ls.markJump(target)
			}
			i += 1 + read
			continue

		case code.CALL:
			target := decodeU24(ins[i+1 : i+4])
			ls.markFunc(target)
			i += 4
			continue

		case code.J, code.JZ,
			code.IEQ_JZ, code.INE_JZ, code.IGT_JZ, code.IGE_JZ, code.ILT_JZ, code.ILE_JZ:
			rel := code.ReadS16(ins[i+1 : i+3])
			target := i + 3 + int(rel)
			ls.markJump(target)
			i += 3
			continue
		}

		def, err := code.Lookup(ins[i])
		if err != nil {
			i++
			continue
		}
		_, read := code.ReadOperands(def, ins[i+1:])
		i += 1 + read
	}
	return ls
}

func (ls *labelSet) markFunc(addr int) {
	if addr == 0 {
		ls.names[0] = "main"
	} else if _, ok := ls.names[addr]; !ok {
		ls.names[addr] = fmt.Sprintf("func_%d", addr)
	}
	ls.funcs[addr] = true
}

func (ls *labelSet) markJump(addr int) {
	if _, ok := ls.names[addr]; !ok {
		ls.names[addr] = fmt.Sprintf("lbl_%d", addr)
	}
}

func decodeU24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func writeCode(out *strings.Builder, ins code.Instructions, labels *labelSet) {
	i := 0
	firstLine := true
	for i < len(ins) {
		if name, ok := labels.names[i]; ok {
			if labels.funcs[i] && !firstLine {
				out.WriteString("\n")
			}
			fmt.Fprintf(out, "%s:\n", name)
		}
		firstLine = false

		switch code.Opcode(ins[i]) {
		case code.ENTER:
			argsSize, localsSize, name, read := code.ReadEnter(ins[i+1:])
			fmt.Fprintf(out, "    ENTER %d %d %q\n", argsSize, localsSize, name)
			i += 1 + read
			continue

		case code.SWITCH:
			cases, read := code.ReadSwitch(ins[i+1:])
			fmt.Fprintf(out, "    SWITCH %d\n", len(cases))
			for idx, c := range cases {
				offsetFieldPos := i + 2 + idx*6 + 4
				target := offsetFieldPos + 2 + int(c.Offset)
				fmt.Fprintf(out, "      case %d -> %s\n", c.Value, labelAt(labels, target))
			}
			i += 1 + read
			continue
		}

		def, err := code.Lookup(ins[i])
		if err != nil {
			fmt.Fprintf(out, "    ; %s\n", err)
			i++
			continue
		}
		operands, read := code.ReadOperands(def, ins[i+1:])
		fmt.Fprintf(out, "    %s\n", formatLine(code.Opcode(ins[i]), def, operands, ins, i, labels))
		i += 1 + read
	}
}

func labelAt(labels *labelSet, addr int) string {
	if name, ok := labels.names[addr]; ok {
		return name
	}
	return fmt.Sprintf("%d", addr)
}

// formatLine renders one decoded instruction. Branch-family and CALL operands
// are rendered as their recovered label rather than a raw offset, since that
// is the entire point of the label-recovery pass.
func formatLine(op code.Opcode, def *code.Definition, operands []int, ins code.Instructions, addr int, labels *labelSet) string {
	switch op {
	case code.J, code.JZ,
		code.IEQ_JZ, code.INE_JZ, code.IGT_JZ, code.IGE_JZ, code.ILT_JZ, code.ILE_JZ:
		rel := code.ReadS16(ins[addr+1 : addr+3])
		target := addr + 3 + int(rel)
		return def.Name + " " + labelAt(labels, target)
	case code.CALL:
		target := decodeU24(ins[addr+1 : addr+4])
		return def.Name + " " + labelAt(labels, target)
	}
	if len(operands) == 0 {
		return def.Name
	}
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = fmt.Sprintf("%d", o)
	}
	return def.Name + " " + strings.Join(parts, ", ")
}
