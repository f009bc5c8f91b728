package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/lexer"
	"github.com/lemonberrylabs/windstyle/pkg/token"
)

// parseTemplate splits text into literal parts and ${...} interpolations.
// text is the slice of the source that starts at base; tok is the token the
// template came from. Each interpolation is parsed as a standalone
// expression whose positions refer to the enclosing source.
func (p *Parser) parseTemplate(tok token.Token, text string, base token.Pos) (*ast.Template, error) {
	var parts []ast.TemplatePart
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, ast.TemplatePart{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		ch := text[i]
		switch {
		case ch == '\\' && i+1 < len(text):
			if text[i+1] == '$' {
				lit.WriteByte('$')
			} else {
				lit.WriteString(lexer.Unescape(text[i+1]))
			}
			i += 2

		case ch == '$' && i+1 < len(text) && text[i+1] == '{':
			end := closingBrace(text, i+2)
			if end < 0 {
				return nil, p.errorAt(SyntaxError, tok, "unterminated ${ in template")
			}
			src := text[i+2 : end]
			expr, err := p.nested(src, advancePos(base, text[:i+2])).parseStandalone()
			if err != nil {
				return nil, interpolationError(tok, src, err)
			}
			flush()
			parts = append(parts, ast.TemplatePart{Expr: expr})
			i = end + 1

		default:
			lit.WriteByte(ch)
			i++
		}
	}
	flush()

	return &ast.Template{Token: tok, Value: text, Parts: parts}, nil
}

// closingBrace returns the index of the '}' that closes an interpolation
// whose body starts at from, or -1. Quoted strings inside are skipped.
func closingBrace(text string, from int) int {
	depth := 1
	for i := from; i < len(text); i++ {
		switch ch := text[i]; ch {
		case '"', '\'':
			for i++; i < len(text) && text[i] != ch; i++ {
				if text[i] == '\\' {
					i++
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// templateBody returns the position of the first byte after the opening
// backtick of a TEMPLATE token.
func templateBody(tok token.Token) token.Pos {
	return advancePos(tok.Pos, "`")
}

// advancePos returns the position reached by scanning text from pos.
func advancePos(pos token.Pos, text string) token.Pos {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	pos.Offset += len(text)
	return pos
}

// interpolationError reports a failure inside ${src}. Errors from the
// nested parse keep their own position; others point at the template.
func interpolationError(tok token.Token, src string, err error) *Error {
	kind, msg, pos, at := SyntaxError, err.Error(), tok.Pos, tok
	var inner *Error
	if errors.As(err, &inner) {
		kind, msg, pos, at = inner.Kind, inner.Message, inner.Pos, inner.Token
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf("in interpolation ${%s}: %s", src, msg),
		Pos:     pos,
		Token:   at,
	}
}
