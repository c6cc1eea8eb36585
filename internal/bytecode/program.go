package bytecode

// Instruction is one decoded bytecode instruction. Arg is a constant pool
// index for OP_PUSH, a count for OP_COPY and OP_SLIDE, a program counter
// for the branch opcodes, and unused otherwise.
type Instruction struct {
	Op  Opcode `cbor:"op"`
	Arg int64  `cbor:"arg,omitempty"`
}

// Program is the bytecode container built up during parsing. Once the
// parser returns it, it is read-only; a VM holds it by reference for the
// duration of exactly one run.
type Program struct {
	// Insts is the ordered instruction sequence
	Insts []Instruction `cbor:"insts"`

	// Lines maps instruction index to source line number (for errors)
	Lines []int `cbor:"lines"`

	// Consts is the deduplicated constant pool referenced by OP_PUSH
	Consts []int64 `cbor:"consts"`

	// SubLabels maps call-target program counters to the label they were
	// declared under. Used only to annotate tracebacks.
	SubLabels map[int]uint64 `cbor:"sub_labels,omitempty"`
}

func NewProgram() *Program {
	return &Program{
		Insts:     make([]Instruction, 0, 64),
		Lines:     make([]int, 0, 64),
		Consts:    make([]int64, 0, 16),
		SubLabels: make(map[int]uint64),
	}
}

// Emit appends an instruction together with the source line it was
// decoded from.
func (p *Program) Emit(inst Instruction, line int) {
	p.Insts = append(p.Insts, inst)
	p.Lines = append(p.Lines, line)
}

// AddConst interns a constant in the pool and returns its index. Pool
// entries are unique by value; the first occurrence wins.
func (p *Program) AddConst(constant int64) int {
	for i, c := range p.Consts {
		if c == constant {
			return i
		}
	}
	p.Consts = append(p.Consts, constant)
	return len(p.Consts) - 1
}

// Const fetches the constant at the given pool index.
func (p *Program) Const(idx int) int64 {
	return p.Consts[idx]
}

// At returns the instruction at idx.
func (p *Program) At(idx int) Instruction {
	return p.Insts[idx]
}

// SetTarget rewrites the branch target of the instruction at idx. Used
// by the parser's backpatch pass only.
func (p *Program) SetTarget(idx int, pc int) {
	p.Insts[idx].Arg = int64(pc)
}

// LineAt returns the source line number of the instruction at idx.
func (p *Program) LineAt(idx int) int {
	return p.Lines[idx]
}

// Len returns the number of instructions added so far.
func (p *Program) Len() int {
	return len(p.Insts)
}

// SubLabel fetches the subroutine label declared at the given program
// counter, if the counter is a call target.
func (p *Program) SubLabel(pc int) (uint64, bool) {
	label, ok := p.SubLabels[pc]
	return label, ok
}

// AddSubLabel records the label a call target originated from.
func (p *Program) AddSubLabel(pc int, label uint64) {
	if p.SubLabels == nil {
		p.SubLabels = make(map[int]uint64)
	}
	p.SubLabels[pc] = label
}
