// Package parser decodes a Whitespace token stream into a bytecode
// program. Parsing is a single left-to-right pass; branch targets are
// emitted as placeholders and resolved in one backpatch pass once the
// input is exhausted, so forward references never require rescanning.
package parser

import (
	"math"

	"github.com/funvibe/wspace/internal/bytecode"
	"github.com/funvibe/wspace/internal/lexer"
	"github.com/funvibe/wspace/internal/token"
)

// uninitializedTarget is a dummy branch target that the backpatch pass
// resolves to a real program counter
const uninitializedTarget = 0

type Parser struct {
	lex *lexer.Lexer

	cur    token.Token
	hasCur bool
	// curLine is the line the current token sits on
	curLine int
	// instLine is the line of the first token of the instruction
	// currently being decoded
	instLine int

	labels  *labelMap
	program *bytecode.Program
}

func New(source string) *Parser {
	return &Parser{
		lex:     lexer.New(source),
		curLine: 1,
		labels:  newLabelMap(),
		program: bytecode.NewProgram(),
	}
}

// Parse consumes the whole token stream and returns a fully resolved
// program, or the first error encountered. A non-nil error means no
// usable program exists; there is no multi-error recovery.
func (p *Parser) Parse() (*bytecode.Program, error) {
	p.advance()

	for p.hasCur {
		p.instLine = p.curLine

		if p.matches(token.Space) {
			if err := p.parseStackInst(); err != nil {
				return nil, err
			}
		} else if p.matches(token.Tab) {
			if p.matches(token.Space) {
				if err := p.parseArithInst(); err != nil {
					return nil, err
				}
			} else if p.matches(token.Tab) {
				if err := p.parseHeapInst(); err != nil {
					return nil, err
				}
			} else if p.matches(token.LineBreak) {
				if err := p.parseIoInst(); err != nil {
					return nil, err
				}
			} else {
				return nil, p.invalidInst(FamilyUnknown)
			}
		} else if p.matches(token.LineBreak) {
			if err := p.parseFlowInst(); err != nil {
				return nil, err
			}
		}
	}

	if err := p.patchJumps(); err != nil {
		return nil, err
	}

	return p.program, nil
}

func (p *Parser) advance() {
	p.curLine = p.lex.Line()
	p.cur, p.hasCur = p.lex.Next()
}

// matches consumes the current token if it equals t.
func (p *Parser) matches(t token.Token) bool {
	if p.hasCur && p.cur == t {
		p.advance()
		return true
	}
	return false
}

// nextTwo consumes the next two tokens, erroring if fewer remain.
func (p *Parser) nextTwo() (token.Token, token.Token, error) {
	first, firstOk := p.cur, p.hasCur
	p.advance()
	second, secondOk := p.cur, p.hasCur
	p.advance()

	if !firstOk || !secondOk {
		return 0, 0, p.errorAt(ErrUnexpectedEof)
	}
	return first, second, nil
}

// errorAt builds a parse error carrying the line the lexer is currently
// on.
func (p *Parser) errorAt(kind ErrorKind) *ParseError {
	return &ParseError{Kind: kind, Line: p.lex.Line()}
}

func (p *Parser) invalidInst(family InstFamily) *ParseError {
	return &ParseError{Kind: ErrInvalidInstruction, Family: family, Line: p.lex.Line()}
}

// emit adds an instruction tagged with the line of the first token
// consumed for it.
func (p *Parser) emit(inst bytecode.Instruction) {
	p.program.Emit(inst, p.instLine)
}

// parseNumber reads a signed number literal: one sign token (Space is
// non-negative, Tab is negative) followed by bits (Space is 0, Tab is 1)
// accumulated most-significant-first, terminated by a LineBreak.
func (p *Parser) parseNumber() (int64, error) {
	var negative bool
	if p.matches(token.Space) {
		negative = false
	} else if p.matches(token.Tab) {
		negative = true
	} else {
		return 0, p.errorAt(ErrInvalidLiteral)
	}

	var num int64
	for {
		if p.matches(token.Space) {
			if num > math.MaxInt64>>1 {
				return 0, p.errorAt(ErrLiteralOverflow)
			}
			num <<= 1
		} else if p.matches(token.Tab) {
			if num > math.MaxInt64>>1 {
				return 0, p.errorAt(ErrLiteralOverflow)
			}
			num = num<<1 | 1
		} else if p.matches(token.LineBreak) {
			break
		} else {
			return 0, p.errorAt(ErrUnexpectedEof)
		}
	}

	if negative {
		num = -num
	}
	return num, nil
}

// parseLabel reads an unsigned label: bits terminated by a LineBreak,
// no sign token.
func (p *Parser) parseLabel() (uint64, error) {
	var label uint64
	for {
		if p.matches(token.Space) {
			if label > math.MaxUint64>>1 {
				return 0, p.errorAt(ErrTooManyLabels)
			}
			label <<= 1
		} else if p.matches(token.Tab) {
			if label > math.MaxUint64>>1 {
				return 0, p.errorAt(ErrTooManyLabels)
			}
			label = label<<1 | 1
		} else if p.matches(token.LineBreak) {
			break
		} else {
			return 0, p.errorAt(ErrUnexpectedEof)
		}
	}
	return label, nil
}

func (p *Parser) parseStackInst() error {
	if p.matches(token.Space) {
		num, err := p.parseNumber()
		if err != nil {
			return err
		}
		idx := p.program.AddConst(num)

		p.emit(bytecode.Instruction{Op: bytecode.OP_PUSH, Arg: int64(idx)})
		return nil
	}

	first, second, err := p.nextTwo()
	if err != nil {
		return err
	}

	switch {
	case first == token.Tab && second == token.Space:
		num, err := p.parseNumber()
		if err != nil {
			return err
		}
		p.emit(bytecode.Instruction{Op: bytecode.OP_COPY, Arg: num})
	case first == token.Tab && second == token.LineBreak:
		num, err := p.parseNumber()
		if err != nil {
			return err
		}
		p.emit(bytecode.Instruction{Op: bytecode.OP_SLIDE, Arg: num})
	case first == token.LineBreak && second == token.Space:
		p.emit(bytecode.Instruction{Op: bytecode.OP_DUP})
	case first == token.LineBreak && second == token.Tab:
		p.emit(bytecode.Instruction{Op: bytecode.OP_SWAP})
	case first == token.LineBreak && second == token.LineBreak:
		p.emit(bytecode.Instruction{Op: bytecode.OP_POP})
	default:
		return p.invalidInst(FamilyStack)
	}

	return nil
}

func (p *Parser) parseArithInst() error {
	first, second, err := p.nextTwo()
	if err != nil {
		return err
	}

	switch {
	case first == token.Space && second == token.Space:
		p.emit(bytecode.Instruction{Op: bytecode.OP_ADD})
	case first == token.Space && second == token.Tab:
		p.emit(bytecode.Instruction{Op: bytecode.OP_SUB})
	case first == token.Space && second == token.LineBreak:
		p.emit(bytecode.Instruction{Op: bytecode.OP_MUL})
	case first == token.Tab && second == token.Space:
		p.emit(bytecode.Instruction{Op: bytecode.OP_DIV})
	case first == token.Tab && second == token.Tab:
		p.emit(bytecode.Instruction{Op: bytecode.OP_MOD})
	default:
		return p.invalidInst(FamilyArithmetic)
	}

	return nil
}

func (p *Parser) parseHeapInst() error {
	if p.matches(token.Space) {
		p.emit(bytecode.Instruction{Op: bytecode.OP_STORE})
	} else if p.matches(token.Tab) {
		p.emit(bytecode.Instruction{Op: bytecode.OP_RETRIEVE})
	} else {
		return p.invalidInst(FamilyHeap)
	}

	return nil
}

func (p *Parser) parseIoInst() error {
	first, second, err := p.nextTwo()
	if err != nil {
		return err
	}

	switch {
	case first == token.Space && second == token.Space:
		p.emit(bytecode.Instruction{Op: bytecode.OP_OUT_CHAR})
	case first == token.Space && second == token.Tab:
		p.emit(bytecode.Instruction{Op: bytecode.OP_OUT_NUM})
	case first == token.Tab && second == token.Space:
		p.emit(bytecode.Instruction{Op: bytecode.OP_READ_CHAR})
	case first == token.Tab && second == token.Tab:
		p.emit(bytecode.Instruction{Op: bytecode.OP_READ_NUM})
	default:
		return p.invalidInst(FamilyIo)
	}

	return nil
}

func (p *Parser) parseFlowInst() error {
	first, second, err := p.nextTwo()
	if err != nil {
		return err
	}

	switch {
	case first == token.Space && second == token.Space:
		// Label declaration: the label marks the next instruction slot.
		label, err := p.parseLabel()
		if err != nil {
			return err
		}
		p.labels.addLabel(label, p.program.Len())
	case first == token.Space && second == token.Tab:
		return p.emitBranch(bytecode.OP_CALL)
	case first == token.Space && second == token.LineBreak:
		return p.emitBranch(bytecode.OP_JUMP)
	case first == token.Tab && second == token.Space:
		return p.emitBranch(bytecode.OP_JUMP_IF_ZERO)
	case first == token.Tab && second == token.Tab:
		return p.emitBranch(bytecode.OP_JUMP_IF_NEG)
	case first == token.Tab && second == token.LineBreak:
		p.emit(bytecode.Instruction{Op: bytecode.OP_RETURN})
	case first == token.LineBreak && second == token.LineBreak:
		p.emit(bytecode.Instruction{Op: bytecode.OP_END})
	default:
		return p.invalidInst(FamilyControlFlow)
	}

	return nil
}

// emitBranch reads the label operand of a branch instruction, emits the
// instruction with a placeholder target, and records the resolution
// obligation.
func (p *Parser) emitBranch(op bytecode.Opcode) error {
	label, err := p.parseLabel()
	if err != nil {
		return err
	}
	idx := p.program.Len()
	p.labels.addInst(idx, label)

	p.emit(bytecode.Instruction{Op: op, Arg: uninitializedTarget})
	return nil
}

// patchJumps walks the recorded branch instructions and resolves every
// placeholder target via the label map. A reference to an undeclared
// label fails with the line of the referencing instruction.
func (p *Parser) patchJumps() error {
	for idx, label := range p.labels.instList {
		pc, ok := p.labels.pc(label)
		if !ok {
			return &ParseError{Kind: ErrInvalidLabel, Line: p.program.LineAt(idx)}
		}

		p.program.SetTarget(idx, pc)
		if p.program.At(idx).Op == bytecode.OP_CALL {
			p.program.AddSubLabel(pc, label)
		}
	}

	return nil
}
