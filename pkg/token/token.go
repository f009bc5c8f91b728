// Package token defines the lexical vocabulary of the windstyle language:
// token kinds, source positions, and the reserved keyword tables.
package token

import "fmt"

// Kind represents the type of a lexical token.
type Kind int

const (
	// Special
	EOF       Kind = iota // end of input
	UNKNOWN               // unrecognized character
	BADSTRING             // unterminated string, template, or comment
	BADNUMBER             // numeric literal out of range

	// Literals
	NUMBER     // 12
	PIXEL      // 12px
	REM        // 1.5rem
	EM         // 2em
	SECOND     // 0.3s
	DEGREE     // 45deg
	PERCENTAGE // 50%
	STRING     // "text" or 'text'
	TEMPLATE   // `text ${expr}`
	COLOR      // #fff, #a0b1c2

	// Identifiers
	IDENT  // name
	HASH   // #main (not a hex color)
	ATRULE // @media (not reserved)

	// Arithmetic
	PLUS  // +
	MINUS // -
	MUL   // *
	DIV   // /
	MOD   // %
	EXP   // **

	// Assignment
	ASSIGN     // =
	ADDEQUAL   // +=
	MINUSEQUAL // -=
	MULEQUAL   // *=
	DIVEQUAL   // /=
	MODEQUAL   // %=
	EXPEQUAL   // **=
	INCREASE   // ++
	DECREASE   // --

	// Comparison
	EQUAL        // ==
	NOTEQUAL     // !=
	GREATER      // >
	LESS         // <
	GREATEREQUAL // >=
	LESSEQUAL    // <=
	TERNARY      // ?

	// Logical
	NO    // !
	AND   // and
	OR    // or
	NOT   // not
	IN    // in
	NOTIN // not in
	FROM  // from
	AS    // as

	// Constants
	NONE  // None
	TRUE  // True
	FALSE // False

	// Punctuation
	DOLLAR  // $
	DOT     // .
	COMMA   // ,
	LPAREN  // (
	RPAREN  // )
	LCURLY  // {
	RCURLY  // }
	LSQUARE // [
	RSQUARE // ]
	SEMI    // ;
	COLON   // :
	AMP     // &
	TILDE   // ~

	// At-keywords
	VAR     // @var
	APPLY   // @apply
	MIXIN   // @mixin
	INCLUDE // @include
	FUNC    // @func
	RETURN  // @return
	IMPORT  // @import
	EXPORT  // @export
	LOAD    // @load
	IF      // @if
	ELSE    // @else
	ELIF    // @elif
	WHILE   // @while
	FOR     // @for
	JS      // @js
	LOG     // @log
	WARN    // @warn
	ERROR   // @error
	ASSERT  // @assert
)

var kindNames = [...]string{
	EOF:       "EOF",
	UNKNOWN:   "UNKNOWN",
	BADSTRING: "BADSTRING",
	BADNUMBER: "BADNUMBER",

	NUMBER:     "NUMBER",
	PIXEL:      "PIXEL",
	REM:        "REM",
	EM:         "EM",
	SECOND:     "SECOND",
	DEGREE:     "DEGREE",
	PERCENTAGE: "PERCENTAGE",
	STRING:     "STRING",
	TEMPLATE:   "TEMPLATE",
	COLOR:      "COLOR",

	IDENT:  "IDENT",
	HASH:   "HASH",
	ATRULE: "ATRULE",

	PLUS:  "+",
	MINUS: "-",
	MUL:   "*",
	DIV:   "/",
	MOD:   "%",
	EXP:   "**",

	ASSIGN:     "=",
	ADDEQUAL:   "+=",
	MINUSEQUAL: "-=",
	MULEQUAL:   "*=",
	DIVEQUAL:   "/=",
	MODEQUAL:   "%=",
	EXPEQUAL:   "**=",
	INCREASE:   "++",
	DECREASE:   "--",

	EQUAL:        "==",
	NOTEQUAL:     "!=",
	GREATER:      ">",
	LESS:         "<",
	GREATEREQUAL: ">=",
	LESSEQUAL:    "<=",
	TERNARY:      "?",

	NO:    "!",
	AND:   "and",
	OR:    "or",
	NOT:   "not",
	IN:    "in",
	NOTIN: "not in",
	FROM:  "from",
	AS:    "as",

	NONE:  "None",
	TRUE:  "True",
	FALSE: "False",

	DOLLAR:  "$",
	DOT:     ".",
	COMMA:   ",",
	LPAREN:  "(",
	RPAREN:  ")",
	LCURLY:  "{",
	RCURLY:  "}",
	LSQUARE: "[",
	RSQUARE: "]",
	SEMI:    ";",
	COLON:   ":",
	AMP:     "&",
	TILDE:   "~",

	VAR:     "@var",
	APPLY:   "@apply",
	MIXIN:   "@mixin",
	INCLUDE: "@include",
	FUNC:    "@func",
	RETURN:  "@return",
	IMPORT:  "@import",
	EXPORT:  "@export",
	LOAD:    "@load",
	IF:      "@if",
	ELSE:    "@else",
	ELIF:    "@elif",
	WHILE:   "@while",
	FOR:     "@for",
	JS:      "@js",
	LOG:     "@log",
	WARN:    "@warn",
	ERROR:   "@error",
	ASSERT:  "@assert",
}

// String returns the symbol for operators and keywords, and an upper-case
// name for the other kinds.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNumeric reports whether tokens of this kind carry a numeric payload.
func (k Kind) IsNumeric() bool {
	return k >= NUMBER && k <= PERCENTAGE
}

// IsTextual reports whether tokens of this kind carry a text payload.
func (k Kind) IsTextual() bool {
	switch k {
	case STRING, TEMPLATE, COLOR, IDENT, HASH, ATRULE, UNKNOWN, BADSTRING, BADNUMBER:
		return true
	}
	return false
}

// IsAtKeyword reports whether k is one of the reserved at-keywords.
func (k Kind) IsAtKeyword() bool {
	return k >= VAR && k <= ASSERT
}

// IsAssign reports whether k is a plain, compound, or increment assignment
// operator.
func (k Kind) IsAssign() bool {
	return k >= ASSIGN && k <= DECREASE
}

// Pos is a location in source text. Line and Column are 1-based; Column
// counts bytes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token. Raw always holds the exact source slice.
// Numeric kinds carry their value in Num, textual kinds carry theirs in Text
// (escapes resolved for STRING, the reason for UNKNOWN, BADSTRING and
// BADNUMBER).
type Token struct {
	Kind Kind
	Pos  Pos
	Raw  string
	Num  float64
	Text string
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Raw)
}

func (t Token) String() string {
	switch {
	case t.Kind.IsNumeric():
		return fmt.Sprintf("%s(%s)", t.Kind, t.Raw)
	case t.Kind.IsTextual():
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
