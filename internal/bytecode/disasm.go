package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of a program
func Disassemble(p *Program, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	for offset := range p.Insts {
		disassembleInstruction(&sb, p, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, p *Program, offset int) {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number, collapsing runs of the same line
	if offset > 0 && p.Lines[offset] == p.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", p.Lines[offset]))
	}

	inst := p.Insts[offset]
	name, ok := OpcodeNames[inst.Op]
	if !ok {
		sb.WriteString(fmt.Sprintf("UNKNOWN(%d)\n", inst.Op))
		return
	}

	switch {
	case inst.Op == OP_PUSH:
		sb.WriteString(fmt.Sprintf("%-16s %4d '%d'\n", name, inst.Arg, p.Consts[inst.Arg]))
	case inst.Op.IsBranch():
		target := fmt.Sprintf("-> %04d", inst.Arg)
		if label, ok := p.SubLabel(int(inst.Arg)); ok && inst.Op == OP_CALL {
			target += fmt.Sprintf(" (#%d)", label)
		}
		sb.WriteString(fmt.Sprintf("%-16s %s\n", name, target))
	case inst.Op.HasArg():
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, inst.Arg))
	default:
		sb.WriteString(name + "\n")
	}
}
