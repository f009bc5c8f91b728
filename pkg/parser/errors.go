package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lemonberrylabs/windstyle/pkg/token"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// SyntaxError: an unexpected token, an unterminated literal or block,
	// a misplaced @elif/@else, or a missing mandatory token.
	SyntaxError ErrorKind = iota
	// LexError: the lexer could not recognize a character.
	LexError
	// StructuralError: well-formed syntax that breaks a structural rule,
	// such as a repeated parameter name.
	StructuralError
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case StructuralError:
		return "StructuralError"
	default:
		return "SyntaxError"
	}
}

// Error is a parse failure at a source position. Parsing stops at the
// first Error.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     token.Pos
	Token   token.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}

// describe renders a token for error messages: its kind and, when it has
// one, its literal text.
func describe(tok token.Token) string {
	switch {
	case tok.Kind == token.EOF:
		return "end of input"
	case tok.Kind.IsNumeric():
		return fmt.Sprintf("%s %s", tok.Kind, tok.Raw)
	case tok.Kind.IsTextual():
		return fmt.Sprintf("%s %q", tok.Kind, tok.Raw)
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

// FormatError renders a parse error with the offending source line, one
// line of context on each side, and a caret under the column. name labels
// the source unit and may be empty. Errors that are not *Error are returned
// as err.Error().
func FormatError(err error, name, src string) string {
	var perr *Error
	if !errors.As(err, &perr) {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	line, col := perr.Pos.Line, perr.Pos.Column
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", perr.Kind, name, line, col, perr.Message)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", perr.Kind, line, col, perr.Message)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
