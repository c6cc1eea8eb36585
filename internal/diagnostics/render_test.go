package diagnostics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/funvibe/wspace/internal/parser"
	"github.com/funvibe/wspace/internal/vm"
)

func TestRenderParseError(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &parser.ParseError{Kind: parser.ErrInvalidLabel, Line: 7})

	want := "[Line 7] Invalid label.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderInstructionFamily(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &parser.ParseError{
		Kind:   parser.ErrInvalidInstruction,
		Family: parser.FamilyHeap,
		Line:   1,
	})

	want := "[Line 1] Invalid heap manipulation instruction.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderTraceback(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &vm.Traceback{
		Reason: vm.ErrZeroDivision,
		Entries: []vm.TraceEntry{
			{Line: 2},
			{Line: 5, Label: 3, Labeled: true},
		},
	})

	want := "Stack traceback:\n" +
		"[Line 2] in main()\n" +
		"[Line 5] in subroutine #3\n" +
		"Error: Attempted to divide by zero\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderPlainError(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, errors.New("something else broke"))

	want := "something else broke\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNoColorOnBuffers(t *testing.T) {
	// bytes.Buffer is not a terminal, so no escape sequences appear.
	var buf bytes.Buffer
	Render(&buf, &vm.Traceback{Reason: vm.ErrIo, Entries: []vm.TraceEntry{{Line: 1}}})

	if bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Errorf("output contains ANSI escapes: %q", buf.String())
	}
}
