// Package lexer converts windstyle source text into tokens.
//
// The lexer is lazy and single-pass: each call to Next scans exactly one
// token from the current position. Whitespace and comments are skipped,
// unrecognized characters become UNKNOWN tokens, unterminated literals
// become BADSTRING tokens, and numbers out of range become BADNUMBER tokens,
// so the scan itself never fails.
package lexer

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lemonberrylabs/windstyle/pkg/token"
)

var (
	// ErrNoBlock is returned by ReadRawBlock when the next character is not '{'.
	ErrNoBlock = errors.New("expected '{'")
	// ErrUnterminatedBlock is returned by ReadRawBlock when the input ends
	// before the matching '}'.
	ErrUnterminatedBlock = errors.New("unterminated block")
)

// units maps unit suffixes to numeric kinds.
var units = map[string]token.Kind{
	"px":  token.PIXEL,
	"rem": token.REM,
	"em":  token.EM,
	"s":   token.SECOND,
	"deg": token.DEGREE,
}

var threeCharOps = map[string]token.Kind{
	"**=": token.EXPEQUAL,
}

var twoCharOps = map[string]token.Kind{
	"**": token.EXP,
	"+=": token.ADDEQUAL,
	"-=": token.MINUSEQUAL,
	"*=": token.MULEQUAL,
	"/=": token.DIVEQUAL,
	"%=": token.MODEQUAL,
	"++": token.INCREASE,
	"--": token.DECREASE,
	"==": token.EQUAL,
	"!=": token.NOTEQUAL,
	">=": token.GREATEREQUAL,
	"<=": token.LESSEQUAL,
}

var oneCharOps = map[byte]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.MUL,
	'/': token.DIV,
	'%': token.MOD,
	'=': token.ASSIGN,
	'>': token.GREATER,
	'<': token.LESS,
	'?': token.TERNARY,
	'!': token.NO,
	'$': token.DOLLAR,
	'.': token.DOT,
	',': token.COMMA,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LCURLY,
	'}': token.RCURLY,
	'[': token.LSQUARE,
	']': token.RSQUARE,
	';': token.SEMI,
	':': token.COLON,
	'&': token.AMP,
	'~': token.TILDE,
}

// Lexer tokenizes windstyle source.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
	base  int // offset of input within the enclosing source
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// NewAt creates a lexer for input that is a slice of a larger source
// starting at base. Token positions refer to the larger source.
func NewAt(input string, base token.Pos) *Lexer {
	return &Lexer{input: input, line: base.Line, col: base.Column, base: base.Offset}
}

// Source returns the text being scanned.
func (l *Lexer) Source() string {
	return l.input
}

// Tokenize scans the entire input and returns all tokens, ending with EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for tok := range l.All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// All returns an iterator over the remaining tokens. The final token
// yielded is EOF.
func (l *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Next scans and returns the next token. Once the input is exhausted it
// keeps returning EOF.
func (l *Lexer) Next() token.Token {
	tok := l.scan()
	tok.Pos.Offset += l.base
	return tok
}

func (l *Lexer) scan() token.Token {
	if bad, ok := l.skipTrivia(); ok {
		return bad
	}

	start := l.mark()
	if l.pos >= len(l.input) {
		return token.Token{Kind: token.EOF, Pos: start}
	}

	ch := l.input[l.pos]
	switch {
	case ch == '"' || ch == '\'':
		return l.readString(start, ch)
	case ch == '`':
		return l.readTemplate(start)
	case isDigit(ch), ch == '.' && isDigit(l.peekByte(1)):
		return l.readNumber(start)
	case ch == '#':
		return l.readHash(start)
	case ch == '@':
		return l.readAtKeyword(start)
	case isIdentStart(ch):
		return l.readIdentifier(start)
	}

	rest := l.input[l.pos:]
	if len(rest) >= 3 {
		if k, ok := threeCharOps[rest[:3]]; ok {
			return l.emit(k, start, 3)
		}
	}
	if len(rest) >= 2 {
		if k, ok := twoCharOps[rest[:2]]; ok {
			return l.emit(k, start, 2)
		}
	}
	if k, ok := oneCharOps[ch]; ok {
		return l.emit(k, start, 1)
	}

	_, size := utf8.DecodeRuneInString(rest)
	tok := l.emit(token.UNKNOWN, start, size)
	tok.Text = tok.Raw
	return tok
}

// ReadRawBlock reads a brace-delimited region verbatim and returns the text
// between the outer braces. Nested braces, quoted strings, and comments in
// the region are skipped over without being tokenized.
func (l *Lexer) ReadRawBlock() (string, token.Pos, error) {
	body, pos, err := l.readRawBlock()
	pos.Offset += l.base
	return body, pos, err
}

func (l *Lexer) readRawBlock() (string, token.Pos, error) {
	if bad, ok := l.skipTrivia(); ok {
		return "", bad.Pos, ErrNoBlock
	}
	start := l.mark()
	if l.pos >= len(l.input) || l.input[l.pos] != '{' {
		return "", start, ErrNoBlock
	}
	l.advance(1)
	bodyStart := l.pos

	depth := 1
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			l.skipQuoted(ch)
			continue
		case ch == '/' && l.peekByte(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance(1)
			}
			continue
		case ch == '/' && l.peekByte(1) == '*':
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				l.advance(len(l.input) - l.pos)
				return "", start, ErrUnterminatedBlock
			}
			l.advance(end + 4)
			continue
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				body := l.input[bodyStart:l.pos]
				l.advance(1)
				return body, start, nil
			}
		}
		l.advance(1)
	}
	return "", start, ErrUnterminatedBlock
}

// skipTrivia skips whitespace and comments. It returns a BADSTRING token if
// a block comment is never closed.
func (l *Lexer) skipTrivia() (token.Token, bool) {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case isSpace(ch):
			l.advance(1)
		case ch == '/' && l.peekByte(1) == '*':
			start := l.mark()
			end := strings.Index(l.input[l.pos+2:], "*/")
			if end < 0 {
				tok := l.emit(token.BADSTRING, start, len(l.input)-l.pos)
				tok.Text = "unterminated comment"
				return tok, true
			}
			l.advance(end + 4)
		case ch == '/' && l.peekByte(1) == '/' && (l.pos == 0 || l.input[l.pos-1] != ':'):
			// "//" directly after ':' belongs to a URL such as http://host.
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance(1)
			}
		default:
			return token.Token{}, false
		}
	}
	return token.Token{}, false
}

// readString reads a quoted string literal and resolves escapes.
func (l *Lexer) readString(start token.Pos, quote byte) token.Token {
	l.advance(1) // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			sb.WriteString(Unescape(l.input[l.pos+1]))
			l.advance(2)
			continue
		}
		if ch == quote {
			l.advance(1)
			return token.Token{
				Kind: token.STRING,
				Pos:  start,
				Raw:  l.input[start.Offset:l.pos],
				Text: sb.String(),
			}
		}
		sb.WriteByte(ch)
		l.advance(1)
	}

	return token.Token{
		Kind: token.BADSTRING,
		Pos:  start,
		Raw:  l.input[start.Offset:],
		Text: "unterminated string",
	}
}

// readTemplate reads a backtick template literal. The text between the
// backticks is kept verbatim; interpolations are split out by the parser.
func (l *Lexer) readTemplate(start token.Pos) token.Token {
	l.advance(1) // opening backtick
	bodyStart := l.pos

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.advance(2)
			continue
		}
		if ch == '`' {
			body := l.input[bodyStart:l.pos]
			l.advance(1)
			return token.Token{
				Kind: token.TEMPLATE,
				Pos:  start,
				Raw:  l.input[start.Offset:l.pos],
				Text: body,
			}
		}
		l.advance(1)
	}

	return token.Token{
		Kind: token.BADSTRING,
		Pos:  start,
		Raw:  l.input[start.Offset:],
		Text: "unterminated template",
	}
}

// readNumber reads a numeric literal and an attached unit suffix.
func (l *Lexer) readNumber(start token.Pos) token.Token {
	for isDigit(l.peekByte(0)) {
		l.advance(1)
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.advance(1)
		for isDigit(l.peekByte(0)) {
			l.advance(1)
		}
	}
	if e := l.peekByte(0); e == 'e' || e == 'E' {
		n := 1
		if s := l.peekByte(1); s == '+' || s == '-' {
			n = 2
		}
		if isDigit(l.peekByte(n)) {
			l.advance(n)
			for isDigit(l.peekByte(0)) {
				l.advance(1)
			}
		}
	}

	digits := l.input[start.Offset:l.pos]
	value, err := strconv.ParseFloat(digits, 64)

	kind := token.NUMBER
	if l.peekByte(0) == '%' {
		kind = token.PERCENTAGE
		l.advance(1)
	} else {
		n := 0
		for isLetter(l.peekByte(n)) {
			n++
		}
		if n > 0 && !isIdentPart(l.peekByte(n)) {
			if k, ok := units[l.input[l.pos:l.pos+n]]; ok {
				kind = k
				l.advance(n)
			}
		}
	}

	raw := l.input[start.Offset:l.pos]
	if err != nil {
		return token.Token{Kind: token.BADNUMBER, Pos: start, Raw: raw, Text: fmt.Sprintf("number %s out of range", raw)}
	}
	return token.Token{
		Kind: kind,
		Pos:  start,
		Raw:  raw,
		Num:  value,
	}
}

// readHash reads a hex color (#fff, #ffffff, with optional alpha) or a hash
// name such as #main.
func (l *Lexer) readHash(start token.Pos) token.Token {
	l.advance(1) // #
	name := l.scanName()
	if name == "" {
		return token.Token{Kind: token.UNKNOWN, Pos: start, Raw: "#", Text: "#"}
	}

	raw := l.input[start.Offset:l.pos]
	kind := token.HASH
	text := name
	if isHexColor(name) {
		kind = token.COLOR
		text = raw
	}
	return token.Token{Kind: kind, Pos: start, Raw: raw, Text: text}
}

// readAtKeyword reads @name. Reserved names become at-keywords, others
// become ATRULE tokens.
func (l *Lexer) readAtKeyword(start token.Pos) token.Token {
	l.advance(1) // @
	if !isIdentStart(l.peekByte(0)) {
		return token.Token{Kind: token.UNKNOWN, Pos: start, Raw: "@", Text: "@"}
	}
	name := l.scanName()
	raw := l.input[start.Offset:l.pos]
	if k, ok := token.LookupKeyword(name); ok {
		return token.Token{Kind: k, Pos: start, Raw: raw}
	}
	return token.Token{Kind: token.ATRULE, Pos: start, Raw: raw, Text: name}
}

// readIdentifier reads an identifier, keyword, or word operator.
func (l *Lexer) readIdentifier(start token.Pos) token.Token {
	word := l.scanName()

	if word == "not" {
		if n := l.notInLength(); n > 0 {
			l.advance(n)
			return token.Token{Kind: token.NOTIN, Pos: start, Raw: l.input[start.Offset:l.pos]}
		}
	}
	if k, ok := token.LookupKeyword(word); ok {
		return token.Token{Kind: k, Pos: start, Raw: word}
	}
	if k, ok := token.LookupWord(word); ok {
		return token.Token{Kind: k, Pos: start, Raw: word}
	}
	return token.Token{Kind: token.IDENT, Pos: start, Raw: word, Text: word}
}

// notInLength returns how many bytes after "not" make up the rest of a
// "not in" operator, or 0 if "not" is not followed by whitespace and "in".
func (l *Lexer) notInLength() int {
	n := 0
	for isSpace(l.peekByte(n)) {
		n++
	}
	if n == 0 || l.peekByte(n) != 'i' || l.peekByte(n+1) != 'n' || isIdentPart(l.peekByte(n+2)) {
		return 0
	}
	return n + 2
}

// scanName consumes an identifier run. A '-' belongs to the name only when
// a letter follows it, so background-color is one name and i-1 is not.
func (l *Lexer) scanName() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isIdentPart(ch) || (ch == '-' && l.pos > start && isLetter(l.peekByte(1))) {
			l.advance(1)
			continue
		}
		break
	}
	return l.input[start:l.pos]
}

// skipQuoted consumes a quoted region inside a raw block.
func (l *Lexer) skipQuoted(quote byte) {
	l.advance(1)
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			l.advance(2)
			continue
		}
		l.advance(1)
		if ch == quote {
			return
		}
	}
}

func (l *Lexer) emit(kind token.Kind, start token.Pos, n int) token.Token {
	l.advance(n)
	return token.Token{Kind: kind, Pos: start, Raw: l.input[start.Offset:l.pos]}
}

func (l *Lexer) mark() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.col}
}

// advance moves n bytes forward, tracking line and column.
func (l *Lexer) advance(n int) {
	for ; n > 0 && l.pos < len(l.input); n-- {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) peekByte(n int) byte {
	if l.pos+n < len(l.input) {
		return l.input[l.pos+n]
	}
	return 0
}

// Unescape returns the text for the escape sequence backslash+ch. Unknown
// escapes are kept as written.
func Unescape(ch byte) string {
	switch ch {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '"', '\'', '`':
		return string(ch)
	default:
		return "\\" + string(ch)
	}
}

func isHexColor(name string) bool {
	switch len(name) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if !isDigit(ch) && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
