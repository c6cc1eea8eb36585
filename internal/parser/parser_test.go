package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/wspace/internal/bytecode"
)

// ws expands the readable S/T/L notation into raw source text. Any other
// character is insignificant and passes through as commentary.
func ws(notation string) string {
	var b strings.Builder
	for _, r := range notation {
		switch r {
		case 'S':
			b.WriteByte(' ')
		case 'T':
			b.WriteByte('\t')
		case 'L':
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func mustParse(t *testing.T, notation string) *bytecode.Program {
	t.Helper()
	program, err := New(ws(notation)).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

func parseError(t *testing.T, notation string) *ParseError {
	t.Helper()
	_, err := New(ws(notation)).Parse()
	if err == nil {
		t.Fatal("parse succeeded, want error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type: got %T, want *ParseError", err)
	}
	return perr
}

func TestDecodeStackFamily(t *testing.T) {
	// push 5, dup, copy 2, swap, slide 1, pop
	program := mustParse(t, "SS STSTL SLS STS STSL SLT STL STL SLL")

	want := []bytecode.Instruction{
		{Op: bytecode.OP_PUSH, Arg: 0},
		{Op: bytecode.OP_DUP},
		{Op: bytecode.OP_COPY, Arg: 2},
		{Op: bytecode.OP_SWAP},
		{Op: bytecode.OP_SLIDE, Arg: 1},
		{Op: bytecode.OP_POP},
	}
	if program.Len() != len(want) {
		t.Fatalf("instruction count: got %d, want %d", program.Len(), len(want))
	}
	for i, w := range want {
		if program.At(i) != w {
			t.Errorf("inst %d: got %+v, want %+v", i, program.At(i), w)
		}
	}
	if got := program.Const(0); got != 5 {
		t.Errorf("pool constant: got %d, want 5", got)
	}
}

func TestDecodeArithmeticFamily(t *testing.T) {
	program := mustParse(t, "TSSS TSST TSSL TSTS TSTT")

	want := []bytecode.Opcode{
		bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL,
		bytecode.OP_DIV, bytecode.OP_MOD,
	}
	if program.Len() != len(want) {
		t.Fatalf("instruction count: got %d, want %d", program.Len(), len(want))
	}
	for i, op := range want {
		if program.At(i).Op != op {
			t.Errorf("inst %d: got %s, want %s", i, bytecode.OpcodeNames[program.At(i).Op], bytecode.OpcodeNames[op])
		}
	}
}

func TestDecodeHeapAndIoFamilies(t *testing.T) {
	program := mustParse(t, "TTS TTT TLSS TLST TLTS TLTT")

	want := []bytecode.Opcode{
		bytecode.OP_STORE, bytecode.OP_RETRIEVE,
		bytecode.OP_OUT_CHAR, bytecode.OP_OUT_NUM,
		bytecode.OP_READ_CHAR, bytecode.OP_READ_NUM,
	}
	for i, op := range want {
		if program.At(i).Op != op {
			t.Errorf("inst %d: got %s, want %s", i, bytecode.OpcodeNames[program.At(i).Op], bytecode.OpcodeNames[op])
		}
	}
}

func TestDecodeFlowFamily(t *testing.T) {
	// decl 0, call 0, jump 0, jz 0, jneg 0, ret, end
	program := mustParse(t, "LSSL LSTL LSLL LTSL LTTL LTL LLL")

	want := []bytecode.Opcode{
		bytecode.OP_CALL, bytecode.OP_JUMP, bytecode.OP_JUMP_IF_ZERO,
		bytecode.OP_JUMP_IF_NEG, bytecode.OP_RETURN, bytecode.OP_END,
	}
	if program.Len() != len(want) {
		t.Fatalf("instruction count: got %d, want %d", program.Len(), len(want))
	}
	for i, op := range want {
		inst := program.At(i)
		if inst.Op != op {
			t.Errorf("inst %d: got %s, want %s", i, bytecode.OpcodeNames[inst.Op], bytecode.OpcodeNames[op])
		}
		if inst.Op.IsBranch() && inst.Arg != 0 {
			t.Errorf("inst %d: branch target got %d, want 0", i, inst.Arg)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		notation string
		want     int64
	}{
		{"SS SL", 0},        // empty bit run
		{"SS STL", 1},
		{"SS STSTSL", 10},
		{"SS TTL", -1},
		{"SS TSTL", -1},     // leading zero bit
		{"SS TSTSTSL", -10},
	}
	for _, c := range cases {
		program := mustParse(t, c.notation)
		if got := program.Const(int(program.At(0).Arg)); got != c.want {
			t.Errorf("%q: got %d, want %d", c.notation, got, c.want)
		}
	}
}

func TestConstantPoolDeduplication(t *testing.T) {
	program := mustParse(t, "SSSTTL SSSTTL")

	if len(program.Consts) != 1 {
		t.Fatalf("pool size: got %d, want 1", len(program.Consts))
	}
	if program.At(0).Arg != 0 || program.At(1).Arg != 0 {
		t.Errorf("both pushes should share pool index 0: got %d and %d",
			program.At(0).Arg, program.At(1).Arg)
	}
}

func TestForwardReference(t *testing.T) {
	// jump 0, push 1, decl 0, end
	program := mustParse(t, "LSLL SSSTL LSSL LLL")

	if got := program.At(0).Arg; got != 2 {
		t.Errorf("forward jump target: got %d, want 2", got)
	}
}

func TestDuplicateLabelLastWins(t *testing.T) {
	// decl 0, push 1, decl 0, jump 0
	program := mustParse(t, "LSSL SSSTL LSSL LSLL")

	if got := program.At(1).Arg; got != 1 {
		t.Errorf("jump target: got %d, want 1 (later declaration)", got)
	}
}

func TestCallTargetsAnnotated(t *testing.T) {
	// jump 0, decl 1, ret, decl 0, call 1, end
	program := mustParse(t, "LSLL LSSTL LTL LSSL LSTTL LLL")

	call := program.At(2)
	if call.Op != bytecode.OP_CALL {
		t.Fatalf("inst 2: got %s, want OP_CALL", bytecode.OpcodeNames[call.Op])
	}
	label, ok := program.SubLabel(int(call.Arg))
	if !ok {
		t.Fatal("call target has no recorded label")
	}
	if label != 1 {
		t.Errorf("call target label: got %d, want 1", label)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		notation string
		kind     ErrorKind
		family   InstFamily
		line     int
	}{
		{"unknown prefix", "T", ErrInvalidInstruction, FamilyUnknown, 1},
		{"bad heap sequence", "TT", ErrInvalidInstruction, FamilyHeap, 1},
		{"truncated stack inst", "S", ErrUnexpectedEof, 0, 1},
		{"truncated literal bits", "SSS", ErrUnexpectedEof, 0, 1},
		{"literal with no sign", "SS" + "L", ErrInvalidLiteral, 0, 2},
		{"truncated label", "LSS", ErrUnexpectedEof, 0, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			perr := parseError(t, c.notation)
			if perr.Kind != c.kind {
				t.Errorf("kind: got %d, want %d", perr.Kind, c.kind)
			}
			if c.kind == ErrInvalidInstruction && perr.Family != c.family {
				t.Errorf("family: got %s, want %s", perr.Family, c.family)
			}
			if perr.Line != c.line {
				t.Errorf("line: got %d, want %d", perr.Line, c.line)
			}
		})
	}
}

func TestLiteralOverflow(t *testing.T) {
	perr := parseError(t, "SSS"+strings.Repeat("T", 64)+"L")
	if perr.Kind != ErrLiteralOverflow {
		t.Errorf("kind: got %d, want ErrLiteralOverflow", perr.Kind)
	}
}

func TestLabelOverflow(t *testing.T) {
	perr := parseError(t, "LSS"+strings.Repeat("T", 65)+"L")
	if perr.Kind != ErrTooManyLabels {
		t.Errorf("kind: got %d, want ErrTooManyLabels", perr.Kind)
	}
}

func TestUndeclaredLabel(t *testing.T) {
	// The push's literal terminator breaks the line, so the dangling call
	// to label 1 sits on line 2.
	perr := parseError(t, "SSSTL LSTTL LLL")
	if perr.Kind != ErrInvalidLabel {
		t.Fatalf("kind: got %d, want ErrInvalidLabel", perr.Kind)
	}
	if perr.Line != 2 {
		t.Errorf("line: got %d, want 2 (the referencing call)", perr.Line)
	}
}

func TestErrorLineTracksSource(t *testing.T) {
	// Two pushes each end in a line break, so the bad heap sequence sits
	// on line 3.
	perr := parseError(t, "SSSTL SSSTL TT")
	if perr.Line != 3 {
		t.Errorf("line: got %d, want 3", perr.Line)
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Kind: ErrLiteralOverflow, Line: 1}, "line 1: Literal too large to fit in an int64."},
		{&ParseError{Kind: ErrInvalidInstruction, Family: FamilyStack, Line: 2}, "line 2: Invalid stack manipulation instruction."},
		{&ParseError{Kind: ErrInvalidInstruction, Family: FamilyUnknown, Line: 3}, "line 3: Invalid instruction prefix."},
		{&ParseError{Kind: ErrInvalidLabel, Line: 4}, "line 4: Invalid label."},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}
