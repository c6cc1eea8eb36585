// Package bytecode defines the instruction set and the Program container
// produced by the parser and executed by the VM.
package bytecode

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Stack manipulation
	OP_PUSH  Opcode = iota // Push constant from pool, Arg is the pool index
	OP_DUP                 // Duplicate top of stack
	OP_COPY                // Push a copy of the value Arg positions below the top
	OP_SWAP                // Exchange the top two values
	OP_POP                 // Discard top of stack
	OP_SLIDE               // Remove Arg values below the top, keeping the top

	// Arithmetic
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD

	// Heap access
	OP_STORE    // Pop value then address, write heap[address] = value
	OP_RETRIEVE // Pop address, push heap[address]

	// Control flow. Arg is a program counter, resolved during parsing.
	OP_CALL
	OP_JUMP
	OP_JUMP_IF_ZERO
	OP_JUMP_IF_NEG
	OP_RETURN
	OP_END

	// I/O
	OP_OUT_CHAR
	OP_OUT_NUM
	OP_READ_CHAR
	OP_READ_NUM
)

// OpcodeNames maps opcodes to their string names (for disassembly)
var OpcodeNames = map[Opcode]string{
	OP_PUSH:  "PUSH",
	OP_DUP:   "DUP",
	OP_COPY:  "COPY",
	OP_SWAP:  "SWAP",
	OP_POP:   "POP",
	OP_SLIDE: "SLIDE",

	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_MUL: "MUL",
	OP_DIV: "DIV",
	OP_MOD: "MOD",

	OP_STORE:    "STORE",
	OP_RETRIEVE: "RETRIEVE",

	OP_CALL:         "CALL",
	OP_JUMP:         "JUMP",
	OP_JUMP_IF_ZERO: "JUMP_IF_ZERO",
	OP_JUMP_IF_NEG:  "JUMP_IF_NEG",
	OP_RETURN:       "RETURN",
	OP_END:          "END",

	OP_OUT_CHAR:  "OUT_CHAR",
	OP_OUT_NUM:   "OUT_NUM",
	OP_READ_CHAR: "READ_CHAR",
	OP_READ_NUM:  "READ_NUM",
}

// HasArg reports whether an opcode carries an operand.
func (op Opcode) HasArg() bool {
	switch op {
	case OP_PUSH, OP_COPY, OP_SLIDE, OP_CALL, OP_JUMP, OP_JUMP_IF_ZERO, OP_JUMP_IF_NEG:
		return true
	}
	return false
}

// IsBranch reports whether an opcode's operand is a jump target.
func (op Opcode) IsBranch() bool {
	switch op {
	case OP_CALL, OP_JUMP, OP_JUMP_IF_ZERO, OP_JUMP_IF_NEG:
		return true
	}
	return false
}
