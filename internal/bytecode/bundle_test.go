package bytecode

import (
	"strings"
	"testing"
)

func sampleProgram() *Program {
	p := NewProgram()
	idx := p.AddConst(72)
	p.Emit(Instruction{Op: OP_PUSH, Arg: int64(idx)}, 1)
	p.Emit(Instruction{Op: OP_OUT_CHAR}, 1)
	p.Emit(Instruction{Op: OP_CALL, Arg: 4}, 2)
	p.Emit(Instruction{Op: OP_END}, 2)
	p.Emit(Instruction{Op: OP_RETURN}, 3)
	p.AddSubLabel(4, 1)
	return p
}

func TestBundleRoundtrip(t *testing.T) {
	bundle := NewBundle(sampleProgram(), "hello.ws")
	if bundle.BuildID == "" {
		t.Fatal("bundle has empty build ID")
	}

	data, err := bundle.Serialize()
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if string(data[:4]) != "WSPB" {
		t.Errorf("magic: got %q, want WSPB", data[:4])
	}
	if data[4] != 0x01 {
		t.Errorf("version: got %d, want 1", data[4])
	}

	restored, err := DeserializeBundle(data)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if restored.SourceFile != "hello.ws" {
		t.Errorf("source file: got %q, want hello.ws", restored.SourceFile)
	}
	if restored.BuildID != bundle.BuildID {
		t.Errorf("build id: got %q, want %q", restored.BuildID, bundle.BuildID)
	}

	p := restored.Program
	if p.Len() != 5 {
		t.Fatalf("instruction count: got %d, want 5", p.Len())
	}
	if p.At(0) != (Instruction{Op: OP_PUSH, Arg: 0}) {
		t.Errorf("inst 0: got %+v", p.At(0))
	}
	if p.Const(0) != 72 {
		t.Errorf("constant: got %d, want 72", p.Const(0))
	}
	if p.LineAt(4) != 3 {
		t.Errorf("line of inst 4: got %d, want 3", p.LineAt(4))
	}
	if label, ok := p.SubLabel(4); !ok || label != 1 {
		t.Errorf("sub label: got %d/%v, want 1/true", label, ok)
	}
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"truncated", []byte("WSP"), "too short"},
		{"bad magic", []byte("NOPE\x01rest"), "invalid magic"},
		{"bad version", []byte("WSPB\x63payload"), "unsupported bundle version"},
		{"bad payload", []byte("WSPB\x01not cbor at all"), "cbor decoding failed"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := DeserializeBundle(c.data)
			if err == nil {
				t.Fatal("deserialize succeeded, want error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestValidateCatchesCorruption(t *testing.T) {
	corrupt := func(f func(p *Program)) *Bundle {
		p := sampleProgram()
		f(p)
		return &Bundle{Program: p, BuildID: "test"}
	}

	cases := []struct {
		name   string
		bundle *Bundle
		want   string
	}{
		{"nil program", &Bundle{BuildID: "test"}, "nil program"},
		{"line mismatch", corrupt(func(p *Program) { p.Lines = p.Lines[:3] }), "count mismatch"},
		{"unknown opcode", corrupt(func(p *Program) { p.Insts[1].Op = 0xFF }), "unknown opcode"},
		{"pool index out of range", corrupt(func(p *Program) { p.Insts[0].Arg = 9 }), "outside pool"},
		{"branch out of range", corrupt(func(p *Program) { p.Insts[2].Arg = 99 }), "outside program"},
		{"negative copy count", corrupt(func(p *Program) { p.Insts[1] = Instruction{Op: OP_COPY, Arg: -1} }), "negative count"},
		{"negative slide count", corrupt(func(p *Program) { p.Insts[3] = Instruction{Op: OP_SLIDE, Arg: -5} }), "negative count"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.bundle.Validate()
			if err == nil {
				t.Fatal("validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}

	if err := (&Bundle{Program: sampleProgram(), BuildID: "test"}).Validate(); err != nil {
		t.Errorf("intact bundle rejected: %v", err)
	}
}
