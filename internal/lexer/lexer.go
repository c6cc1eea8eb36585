package lexer

import (
	"github.com/funvibe/wspace/internal/token"
)

// Lexer produces the lazy token stream for a Whitespace source text.
// Bytes other than space, tab and LF are skipped without producing a
// token; exhaustion is signaled through the second return value of
// Next, never through an error.
type Lexer struct {
	source []byte
	idx    int // current position in source
	line   int // line containing the next token to be read, 1-based
}

func New(input string) *Lexer {
	return &Lexer{
		source: []byte(input),
		line:   1,
	}
}

// Line returns the line number of the next token Next would produce.
// The counter advances exactly when a LineBreak token is produced, so
// after reading a LineBreak it already names the following line.
func (l *Lexer) Line() int {
	return l.line
}

// Next returns the next significant token. ok is false once the source
// is exhausted.
func (l *Lexer) Next() (tok token.Token, ok bool) {
	for l.idx < len(l.source) {
		b := l.source[l.idx]
		l.idx++

		switch b {
		case ' ':
			return token.Space, true
		case '\t':
			return token.Tab, true
		case '\n':
			l.line++
			return token.LineBreak, true
		}
	}
	return 0, false
}
