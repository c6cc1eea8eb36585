// Package vm implements the stack machine that executes compiled
// Whitespace bytecode.
package vm

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/funvibe/wspace/internal/bytecode"
)

// Initial sizes for stack and frames
const initialStackCap = 256
const initialFrameCap = 64

// How often the cancellation context is polled, in instructions
const ctxCheckInterval = 1000

// VM executes one program exactly once. It owns an operand stack, a
// sparse heap keyed by caller-chosen 64-bit addresses, and an explicit
// call-frame stack that makes full tracebacks possible without relying
// on host recursion.
type VM struct {
	stack  []int64
	frames []Frame
	heap   map[int64]int64

	program *bytecode.Program

	in  *bufio.Reader
	out io.Writer

	// ctx is optional; when nil the VM runs until the program halts,
	// which for a non-terminating program is forever.
	ctx context.Context
}

// New creates a VM for the given program. I/O defaults to the process
// stdin and stdout.
func New(program *bytecode.Program) *VM {
	return &VM{
		stack:   make([]int64, 0, initialStackCap),
		frames:  make([]Frame, 0, initialFrameCap),
		heap:    make(map[int64]int64),
		program: program,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// SetInput sets the input source for READ_CHAR and READ_NUM.
func (vm *VM) SetInput(r io.Reader) {
	vm.in = bufio.NewReader(r)
}

// SetOutput sets the output sink for OUT_CHAR and OUT_NUM.
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetContext sets a context for cooperative cancellation.
func (vm *VM) SetContext(ctx context.Context) {
	vm.ctx = ctx
}

// runtimeError snapshots the live call stack into a traceback. The
// failing instruction has not mutated anything at this point; output
// already written by earlier instructions stays visible.
func (vm *VM) runtimeError(reason ErrorKind) *Traceback {
	entries := make([]TraceEntry, 0, len(vm.frames))
	for _, frame := range vm.frames {
		pc := frame.pc
		if pc >= vm.program.Len() {
			pc = vm.program.Len() - 1
		}
		entries = append(entries, TraceEntry{
			Line:    vm.program.LineAt(pc),
			Label:   frame.label,
			Labeled: frame.labeled,
		})
	}
	return &Traceback{Reason: reason, Entries: entries}
}

func (vm *VM) push(value int64) {
	vm.stack = append(vm.stack, value)
}

func (vm *VM) pop() int64 {
	value := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return value
}

// Run executes the program to completion and returns nil, or aborts on
// the first runtime failure and returns its *Traceback. A VM must not
// be reused after Run returns.
func (vm *VM) Run() error {
	vm.frames = append(vm.frames, newMainFrame())

	ops := 0
	for {
		ops++
		if vm.ctx != nil && ops%ctxCheckInterval == 0 {
			select {
			case <-vm.ctx.Done():
				return vm.ctx.Err()
			default:
			}
		}

		frame := &vm.frames[len(vm.frames)-1]
		if frame.pc >= vm.program.Len() {
			// Ran off the end of the program; treat like OP_END.
			return nil
		}
		inst := vm.program.At(frame.pc)
		frame.pc++

		if tb := vm.execute(frame, inst); tb != nil {
			return tb
		}

		switch inst.Op {
		case bytecode.OP_END:
			return nil
		case bytecode.OP_RETURN:
			if len(vm.frames) == 0 {
				return nil
			}
		}
	}
}

// execute applies one instruction. Operand counts are checked before
// any pop, so a failing instruction never partially mutates the stack.
func (vm *VM) execute(frame *Frame, inst bytecode.Instruction) *Traceback {
	switch inst.Op {
	case bytecode.OP_PUSH:
		vm.push(vm.program.Const(int(inst.Arg)))

	case bytecode.OP_DUP:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		vm.push(vm.stack[len(vm.stack)-1])

	case bytecode.OP_COPY:
		// n+1 would wrap for n = MaxInt64, so compare without adding.
		n := inst.Arg
		if n < 0 || n >= int64(len(vm.stack)) {
			return vm.runtimeError(ErrStackUnderflow)
		}
		vm.push(vm.stack[int64(len(vm.stack))-1-n])

	case bytecode.OP_SWAP:
		if len(vm.stack) < 2 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		first := len(vm.stack) - 1
		vm.stack[first], vm.stack[first-1] = vm.stack[first-1], vm.stack[first]

	case bytecode.OP_POP:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		vm.pop()

	case bytecode.OP_SLIDE:
		n := inst.Arg
		if n < 0 || n >= int64(len(vm.stack)) {
			return vm.runtimeError(ErrStackUnderflow)
		}
		top := vm.pop()
		vm.stack = vm.stack[:int64(len(vm.stack))-n]
		vm.push(top)

	case bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL:
		if len(vm.stack) < 2 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		right := vm.pop()
		left := vm.pop()
		switch inst.Op {
		case bytecode.OP_ADD:
			vm.push(left + right)
		case bytecode.OP_SUB:
			vm.push(left - right)
		case bytecode.OP_MUL:
			vm.push(left * right)
		}

	case bytecode.OP_DIV, bytecode.OP_MOD:
		if len(vm.stack) < 2 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		if vm.stack[len(vm.stack)-1] == 0 {
			return vm.runtimeError(ErrZeroDivision)
		}
		right := vm.pop()
		left := vm.pop()
		if inst.Op == bytecode.OP_DIV {
			vm.push(left / right)
		} else {
			vm.push(left % right)
		}

	case bytecode.OP_STORE:
		if len(vm.stack) < 2 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		value := vm.pop()
		addr := vm.pop()
		vm.heap[addr] = value

	case bytecode.OP_RETRIEVE:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		value, ok := vm.heap[vm.stack[len(vm.stack)-1]]
		if !ok {
			return vm.runtimeError(ErrInvalidHeapEntry)
		}
		vm.pop()
		vm.push(value)

	case bytecode.OP_CALL:
		pc := int(inst.Arg)
		label, labeled := vm.program.SubLabel(pc)
		vm.frames = append(vm.frames, newFrame(pc, label, labeled))

	case bytecode.OP_JUMP:
		frame.pc = int(inst.Arg)

	case bytecode.OP_JUMP_IF_ZERO:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		if vm.pop() == 0 {
			frame.pc = int(inst.Arg)
		}

	case bytecode.OP_JUMP_IF_NEG:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		if vm.pop() < 0 {
			frame.pc = int(inst.Arg)
		}

	case bytecode.OP_RETURN:
		vm.frames = vm.frames[:len(vm.frames)-1]

	case bytecode.OP_END:
		// Handled by the run loop.

	case bytecode.OP_OUT_CHAR:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		c := byte(vm.stack[len(vm.stack)-1])
		if _, err := vm.out.Write([]byte{c}); err != nil {
			return vm.runtimeError(ErrIo)
		}
		vm.pop()

	case bytecode.OP_OUT_NUM:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		num := vm.stack[len(vm.stack)-1]
		if _, err := io.WriteString(vm.out, strconv.FormatInt(num, 10)); err != nil {
			return vm.runtimeError(ErrIo)
		}
		vm.pop()

	case bytecode.OP_READ_CHAR:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		b, err := vm.in.ReadByte()
		if err != nil {
			return vm.runtimeError(ErrIo)
		}
		addr := vm.pop()
		vm.heap[addr] = int64(b)

	case bytecode.OP_READ_NUM:
		if len(vm.stack) < 1 {
			return vm.runtimeError(ErrStackUnderflow)
		}
		line, err := vm.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return vm.runtimeError(ErrIo)
		}
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		num, perr := strconv.ParseInt(trimmed, 10, 64)
		if perr != nil {
			return vm.runtimeError(ErrNumParse)
		}
		addr := vm.pop()
		vm.heap[addr] = num
	}

	return nil
}
