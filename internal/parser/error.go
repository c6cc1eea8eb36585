package parser

import "fmt"

// InstFamily names the instruction family an invalid sequence of tokens
// was encountered in.
type InstFamily uint8

const (
	FamilyStack InstFamily = iota
	FamilyHeap
	FamilyIo
	FamilyControlFlow
	FamilyArithmetic
	FamilyUnknown
)

func (f InstFamily) String() string {
	switch f {
	case FamilyStack:
		return "stack manipulation"
	case FamilyHeap:
		return "heap manipulation"
	case FamilyIo:
		return "IO"
	case FamilyControlFlow:
		return "control flow"
	case FamilyArithmetic:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// ErrorKind is the closed set of parse failure conditions.
type ErrorKind uint8

const (
	// ErrLiteralOverflow: the literal is too large to fit in an int64
	ErrLiteralOverflow ErrorKind = iota
	// ErrInvalidLiteral: the literal could not be parsed
	ErrInvalidLiteral
	// ErrInvalidInstruction: an invalid sequence of spaces, tabs, and LFs
	// was encountered
	ErrInvalidInstruction
	// ErrInvalidLabel: the program references a label that is never declared
	ErrInvalidLabel
	// ErrTooManyLabels: a label value exceeds the representable range
	ErrTooManyLabels
	// ErrUnexpectedEof: the source ended before the program could be fully
	// parsed
	ErrUnexpectedEof
)

// ParseError is the single structured error a parse can fail with.
// Parsing stops at the first one; no instruction of a malformed program
// ever executes.
type ParseError struct {
	Kind   ErrorKind
	Family InstFamily // set only for ErrInvalidInstruction
	Line   int
}

// Message returns the user-facing description of the failure.
func (e *ParseError) Message() string {
	switch e.Kind {
	case ErrLiteralOverflow:
		return "Literal too large to fit in an int64."
	case ErrInvalidLiteral:
		return "Invalid literal."
	case ErrInvalidInstruction:
		if e.Family == FamilyUnknown {
			return "Invalid instruction prefix."
		}
		return fmt.Sprintf("Invalid %s instruction.", e.Family)
	case ErrInvalidLabel:
		return "Invalid label."
	case ErrTooManyLabels:
		return "Program contains too many labels."
	case ErrUnexpectedEof:
		return "Unexpected end of file."
	default:
		return "Unknown parse error."
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message())
}
