// Package token defines the three significant symbols of a Whitespace
// program. Every other byte in the source is a comment.
package token

// Token is one significant symbol in the source.
type Token uint8

const (
	Space Token = iota
	Tab
	LineBreak
)

func (t Token) String() string {
	switch t {
	case Space:
		return "Space"
	case Tab:
		return "Tab"
	case LineBreak:
		return "LineBreak"
	default:
		return "Unknown"
	}
}
