package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleFormat(t *testing.T) {
	out := Disassemble(sampleProgram(), "hello.ws")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	want := []string{
		"== hello.ws ==",
		"0000    1 PUSH                0 '72'",
		"0001    | OUT_CHAR",
		"0002    2 CALL             -> 0004 (#1)",
		"0003    | END",
		"0004    3 RETURN",
	}
	if len(lines) != len(want) {
		t.Fatalf("line count: got %d, want %d\n%s", len(lines), len(want), out)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d:\ngot  %q\nwant %q", i, lines[i], w)
		}
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	p := NewProgram()
	p.Emit(Instruction{Op: 0xFF}, 1)

	out := Disassemble(p, "broken")
	if !strings.Contains(out, "UNKNOWN(255)") {
		t.Errorf("output %q does not flag the unknown opcode", out)
	}
}
