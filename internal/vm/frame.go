package vm

// Frame is one activation record on the call stack: the program counter
// within the subroutine it executes, and the label the subroutine was
// declared under. The top-level frame has no label.
type Frame struct {
	pc      int
	label   uint64
	labeled bool
}

// newFrame builds a frame for a called subroutine.
func newFrame(pc int, label uint64, labeled bool) Frame {
	return Frame{pc: pc, label: label, labeled: labeled}
}

// newMainFrame builds the top-level frame the program starts in.
func newMainFrame() Frame {
	return Frame{pc: 0}
}
