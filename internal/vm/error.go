package vm

// ErrorKind is the closed set of runtime failure conditions.
type ErrorKind uint8

const (
	// ErrZeroDivision: the program tried to divide by zero
	ErrZeroDivision ErrorKind = iota
	// ErrInvalidHeapEntry: the program tried to read a heap address that
	// was never stored to
	ErrInvalidHeapEntry
	// ErrIo: reading from the input source or writing to the output sink
	// failed
	ErrIo
	// ErrNumParse: the program could not parse the user's input as a
	// valid number
	ErrNumParse
	// ErrStackUnderflow: the program needed more operands than the stack
	// holds
	ErrStackUnderflow
)

// Message returns the user-facing description of the failure.
func (k ErrorKind) Message() string {
	switch k {
	case ErrZeroDivision:
		return "Attempted to divide by zero"
	case ErrInvalidHeapEntry:
		return "Attempted to access invalid heap entry"
	case ErrIo:
		return "An unexpected IO error occurred."
	case ErrNumParse:
		return "Could not parse input as valid integer."
	case ErrStackUnderflow:
		return "The program stack underflowed."
	default:
		return "Unknown runtime error."
	}
}

// TraceEntry describes one live call frame at the moment of failure:
// the line of the instruction about to execute in that frame, and the
// frame's subroutine label if it has one.
type TraceEntry struct {
	Line    int
	Label   uint64
	Labeled bool
}

// Traceback is the structured value any runtime failure aborts with.
// Entries are ordered from the outermost (top-level) frame to the
// innermost (most recently called) frame.
type Traceback struct {
	Reason  ErrorKind
	Entries []TraceEntry
}

func (t *Traceback) Error() string {
	return t.Reason.Message()
}
