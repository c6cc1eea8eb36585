package parser

// labelMap records, during a single parse, which program counter each
// label was declared at and which still-unresolved label each branch
// instruction references. It exists only between parse start and the
// backpatch pass and is never seen by the VM.
type labelMap struct {
	// pcMap maps a label to the program counter it was declared at.
	// A label declared more than once keeps the last declaration.
	pcMap map[uint64]int

	// instList maps an instruction index to the label its branch target
	// still needs to be resolved from.
	instList map[int]uint64
}

func newLabelMap() *labelMap {
	return &labelMap{
		pcMap:    make(map[uint64]int),
		instList: make(map[int]uint64),
	}
}

// pc returns the program counter a label was declared at, if it was
// declared at all.
func (m *labelMap) pc(label uint64) (int, bool) {
	pc, ok := m.pcMap[label]
	return pc, ok
}

// addLabel records a label declaration at the given program counter.
func (m *labelMap) addLabel(label uint64, pc int) {
	m.pcMap[label] = pc
}

// addInst records that the instruction at idx branches to label and
// needs its target patched once all declarations are known.
func (m *labelMap) addInst(idx int, label uint64) {
	m.instList[idx] = label
}
