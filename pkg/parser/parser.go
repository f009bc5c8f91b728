// Package parser converts windstyle source into an abstract syntax tree.
//
// Statements and style content are parsed by recursive descent; expressions
// are parsed by precedence climbing (see expr.go). Parsing stops at the
// first error and returns it as an *Error carrying the failing token and
// its position.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/lexer"
	"github.com/lemonberrylabs/windstyle/pkg/token"
)

// MaxSourceSize is the default limit on the size of one source unit.
const MaxSourceSize = 128 * 1024

// ErrSourceTooLarge is returned when a source unit exceeds the size limit.
var ErrSourceTooLarge = errors.New("source exceeds maximum size")

// Parser parses one source unit. It pulls tokens from the lexer on demand
// and keeps only the lookahead it needs. A Parser must not be shared
// between goroutines; independent units can be parsed concurrently by
// separate Parsers.
type Parser struct {
	lex  *lexer.Lexer
	src  string
	buf  []token.Token // lookahead, buf[0] is the current token
	prev token.Token   // last consumed token
}

// New creates a parser for src.
func New(src string) *Parser {
	return &Parser{lex: lexer.New(src), src: src}
}

// Parse parses a complete source unit of at most MaxSourceSize bytes.
func Parse(src string) (*ast.Program, error) {
	return ParseWithLimit(src, MaxSourceSize)
}

// ParseWithLimit parses a complete source unit, rejecting sources longer
// than limit bytes. A limit of zero or less disables the check.
func ParseWithLimit(src string, limit int) (*ast.Program, error) {
	if limit > 0 && len(src) > limit {
		return nil, fmt.Errorf("%w (%d bytes, limit %d)", ErrSourceTooLarge, len(src), limit)
	}
	return New(src).ParseProgram()
}

// ParseExpression parses src as a single expression.
func ParseExpression(src string) (ast.Expr, error) {
	return New(src).parseStandalone()
}

// parseStandalone parses the whole input as one expression.
func (p *Parser) parseStandalone() (ast.Expr, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Kind != token.EOF {
		return nil, p.unexpected(tok, "end of expression")
	}
	return expr, nil
}

// nested returns a parser for text, the slice of p.src that starts at base.
// Its tokens and errors carry positions in p.src.
func (p *Parser) nested(text string, base token.Pos) *Parser {
	return &Parser{lex: lexer.NewAt(text, base), src: p.src}
}

// ParseProgram parses the whole input as the top-level block.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	block, err := p.parseItems(token.EOF, token.Pos{})
	if err != nil {
		return nil, err
	}
	return &ast.Program{Block: block}, nil
}

// --- Token stream ---

func (p *Parser) peekAt(n int) token.Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lex.Next())
	}
	return p.buf[n]
}

// current returns the current token.
func (p *Parser) current() token.Token {
	return p.peekAt(0)
}

// peek returns the token after the current one.
func (p *Parser) peek() token.Token {
	return p.peekAt(1)
}

// advance consumes the current token and returns it.
func (p *Parser) advance() token.Token {
	tok := p.current()
	p.buf = p.buf[1:]
	p.prev = tok
	return tok
}

// expect consumes a token of the given kind or returns a SyntaxError.
func (p *Parser) expect(kind token.Kind, context string) (token.Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, expected(kind)+" "+context)
	}
	return p.advance(), nil
}

// endStatement consumes an optional ';'.
func (p *Parser) endStatement() {
	if p.current().Kind == token.SEMI {
		p.advance()
	}
}

func expected(kind token.Kind) string {
	switch kind {
	case token.IDENT:
		return "identifier"
	case token.STRING:
		return "string literal"
	default:
		return "'" + kind.String() + "'"
	}
}

// unexpected builds the error for tok appearing where want was required.
// UNKNOWN tokens become LexErrors. BADSTRING and BADNUMBER tokens report
// what is wrong with the literal.
func (p *Parser) unexpected(tok token.Token, want string) *Error {
	switch tok.Kind {
	case token.UNKNOWN:
		return p.errorAt(LexError, tok, "unrecognized character %q", tok.Text)
	case token.BADSTRING, token.BADNUMBER:
		return p.errorAt(SyntaxError, tok, "%s", tok.Text)
	}
	if want == "" {
		return p.errorAt(SyntaxError, tok, "unexpected %s", describe(tok))
	}
	return p.errorAt(SyntaxError, tok, "expected %s, got %s", want, describe(tok))
}

func (p *Parser) errorAt(kind ErrorKind, tok token.Token, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     tok.Pos,
		Token:   tok,
	}
}

// --- Blocks ---

// parseBlock parses '{' items '}'.
func (p *Parser) parseBlock(context string) (*ast.Block, error) {
	open, err := p.expect(token.LCURLY, context)
	if err != nil {
		return nil, err
	}
	block, err := p.parseItems(token.RCURLY, open.Pos)
	if err != nil {
		return nil, err
	}
	p.advance() // }
	return block, nil
}

// parseItems parses statements and style items up to end (RCURLY or EOF),
// leaving end unconsumed. Each item goes to the statement list or the style
// list of the block according to its kind.
func (p *Parser) parseItems(end token.Kind, open token.Pos) (*ast.Block, error) {
	block := ast.NewBlock()
	for {
		tok := p.current()
		switch tok.Kind {
		case end:
			return block, nil
		case token.EOF:
			return nil, p.errorAt(SyntaxError, tok, "unterminated block opened at %s, expected '}'", open)
		case token.RCURLY:
			return nil, p.unexpected(tok, "")
		case token.SEMI:
			p.advance()
			continue
		}

		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		switch n := item.(type) {
		case ast.Statement:
			block.Statements = append(block.Statements, n)
		case ast.StyleItem:
			block.Styles = append(block.Styles, n)
		}
	}
}

// parseItem dispatches on the current token.
func (p *Parser) parseItem() (ast.Node, error) {
	tok := p.current()
	switch tok.Kind {
	case token.VAR:
		return p.parseVarDecl()
	case token.FUNC:
		return p.parseFunc()
	case token.MIXIN:
		return p.parseMixin()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.ELIF, token.ELSE:
		return nil, p.errorAt(SyntaxError, tok, "%s without a preceding @if", tok.Kind)
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.IMPORT:
		return p.parseImport()
	case token.LOAD:
		return p.parseLoad()
	case token.EXPORT:
		return p.parseExport()
	case token.INCLUDE:
		return p.parseInclude()
	case token.APPLY:
		return p.parseApply()
	case token.JS:
		return p.parseForeignCode()
	case token.LOG, token.WARN, token.ERROR, token.ASSERT:
		return p.parseConsole()
	case token.LCURLY:
		return p.parseEmptyBlock()
	case token.IDENT:
		next := p.peek()
		if next.Kind.IsAssign() {
			return p.parseAssignment()
		}
		if p.isSelector() {
			return p.parseStyleDecl()
		}
		if next.Kind == token.COLON {
			p.advance()
			return p.parsePropDecl(tok.Text)
		}
		return nil, p.unexpected(next, "assignment, ':' or '{' after "+describe(tok))
	case token.MINUS, token.DECREASE:
		if name, n := p.dashedPropertyName(); n > 0 {
			for range n {
				p.advance()
			}
			return p.parsePropDecl(name)
		}
	}

	if startsSelector(tok.Kind) && p.isSelector() {
		return p.parseStyleDecl()
	}
	return nil, p.unexpected(tok, "")
}

// parseEmptyBlock parses a bare {} as a NoOp.
func (p *Parser) parseEmptyBlock() (ast.Statement, error) {
	p.advance() // {
	if _, err := p.expect(token.RCURLY, "(a bare block must be empty)"); err != nil {
		return nil, err
	}
	return &ast.NoOp{}, nil
}

// --- Assignments ---

// parseAssignment parses name op value, name++ and name--.
func (p *Parser) parseAssignment() (ast.Statement, error) {
	name := p.advance()
	op := p.advance()
	left := &ast.Var{Token: name, Name: name.Text}

	var right ast.Expr
	switch op.Kind {
	case token.INCREASE, token.DECREASE:
		right = &ast.NoOp{}
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		right = expr
	}
	p.endStatement()

	if op.Kind == token.ASSIGN {
		return &ast.Assign{Left: left, Op: op, Right: right}, nil
	}
	return &ast.Update{Left: left, Op: op, Right: right}, nil
}

// parseVarDecl parses @var name = value.
func (p *Parser) parseVarDecl() (ast.Statement, error) {
	p.advance() // @var
	name, err := p.expect(token.IDENT, "after @var")
	if err != nil {
		return nil, err
	}
	op, err := p.expect(token.ASSIGN, "in @var declaration")
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.endStatement()
	return &ast.Assign{Left: &ast.Var{Token: name, Name: name.Text}, Op: op, Right: right}, nil
}

// --- Declarations ---

// parseFunc parses @func name(a, b) { ... }.
func (p *Parser) parseFunc() (ast.Statement, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "after @func")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamNames(name.Text)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("before function body")
	if err != nil {
		return nil, err
	}
	return &ast.Func{Token: kw, Name: name.Text, Params: params, Body: body}, nil
}

// parseMixin parses @mixin name(a, b) { ... }. The parameter list may be
// omitted.
func (p *Parser) parseMixin() (ast.Statement, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT, "after @mixin")
	if err != nil {
		return nil, err
	}
	params := []string{}
	if p.current().Kind == token.LPAREN {
		params, err = p.parseParamNames(name.Text)
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock("before mixin body")
	if err != nil {
		return nil, err
	}
	return &ast.Mixin{Token: kw, Name: name.Text, Params: params, Body: body}, nil
}

// parseParamNames parses (a, b, c). Repeated names are a StructuralError.
func (p *Parser) parseParamNames(owner string) ([]string, error) {
	if _, err := p.expect(token.LPAREN, "before parameter list"); err != nil {
		return nil, err
	}
	params := []string{}
	seen := make(map[string]bool)
	for p.current().Kind != token.RPAREN {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA, "between parameters"); err != nil {
				return nil, err
			}
		}
		tok, err := p.expect(token.IDENT, "in parameter list")
		if err != nil {
			return nil, err
		}
		if seen[tok.Text] {
			return nil, p.errorAt(StructuralError, tok, "duplicate parameter %q in %s", tok.Text, owner)
		}
		seen[tok.Text] = true
		params = append(params, tok.Text)
	}
	p.advance() // )
	return params, nil
}

// parseReturn parses @return with an optional value.
func (p *Parser) parseReturn() (ast.Statement, error) {
	p.advance() // @return
	switch p.current().Kind {
	case token.SEMI, token.RCURLY, token.EOF:
		p.endStatement()
		return &ast.Return{Value: &ast.NoOp{}}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.endStatement()
	return &ast.Return{Value: value}, nil
}

// parseExport parses @export a, b.
func (p *Parser) parseExport() (ast.Statement, error) {
	p.advance() // @export
	names, err := p.parseNameList("in @export")
	if err != nil {
		return nil, err
	}
	p.endStatement()
	return &ast.Export{Names: names}, nil
}

// parseNameList parses IDENT (',' IDENT)*.
func (p *Parser) parseNameList(context string) ([]string, error) {
	var names []string
	for {
		tok, err := p.expect(token.IDENT, context)
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Text)
		if p.current().Kind != token.COMMA {
			return names, nil
		}
		p.advance()
	}
}

// --- Control flow ---

// ifState tracks which clauses an @if chain accepts next.
type ifState int

const (
	awaitingIf ifState = iota
	haveIf
	haveElif
	terminal // after @else
)

// parseIf parses @if cond {} (@elif cond {})* (@else {})?. "@else if" is
// accepted as @elif.
func (p *Parser) parseIf() (ast.Statement, error) {
	var branches []ast.CondBranch
	var elseBlock *ast.Block

	state := awaitingIf
	for {
		tok := p.current()
		isElif := tok.Kind == token.ELIF || (tok.Kind == token.ELSE && p.peek().Kind == token.IF)

		switch {
		case state == awaitingIf && tok.Kind == token.IF,
			(state == haveIf || state == haveElif) && isElif:
			p.advance()
			if tok.Kind == token.ELSE {
				p.advance() // if
			}
			cond, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock(fmt.Sprintf("after %s condition", tok.Kind))
			if err != nil {
				return nil, err
			}
			branches = append(branches, ast.CondBranch{Cond: cond, Body: body})
			if state == awaitingIf {
				state = haveIf
			} else {
				state = haveElif
			}

		case (state == haveIf || state == haveElif) && tok.Kind == token.ELSE:
			p.advance()
			body, err := p.parseBlock("after @else")
			if err != nil {
				return nil, err
			}
			elseBlock = body
			state = terminal

		case state == terminal && (tok.Kind == token.ELIF || tok.Kind == token.ELSE):
			return nil, p.errorAt(SyntaxError, tok, "%s after @else", tok.Kind)

		default:
			return &ast.If{Branches: branches, Else: elseBlock}, nil
		}
	}
}

// parseWhile parses @while cond { ... }.
func (p *Parser) parseWhile() (ast.Statement, error) {
	p.advance() // @while
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("after @while condition")
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// parseFor parses @for a (, b)* in iterable { ... }.
func (p *Parser) parseFor() (ast.Statement, error) {
	p.advance() // @for
	var vars []string
	seen := make(map[string]bool)
	for {
		tok, err := p.expect(token.IDENT, "as @for loop variable")
		if err != nil {
			return nil, err
		}
		if seen[tok.Text] {
			return nil, p.errorAt(StructuralError, tok, "duplicate loop variable %q", tok.Text)
		}
		seen[tok.Text] = true
		vars = append(vars, tok.Text)
		if p.current().Kind != token.COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.IN, "after @for loop variables"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("after @for iterable")
	if err != nil {
		return nil, err
	}
	return &ast.For{Vars: vars, Iterable: iterable, Body: body}, nil
}

// --- Modules ---

// parseImport parses @import "a", "b".
func (p *Parser) parseImport() (ast.Statement, error) {
	p.advance() // @import
	var urls []string
	for {
		tok, err := p.expect(token.STRING, "in @import")
		if err != nil {
			return nil, err
		}
		urls = append(urls, tok.Text)
		if p.current().Kind != token.COMMA {
			break
		}
		p.advance()
	}
	p.endStatement()
	return &ast.Import{URLs: urls}, nil
}

// parseLoad parses @load with one or more module descriptors:
//
//	@load "url" as name { export as alias, other }, "url2"
func (p *Parser) parseLoad() (ast.Statement, error) {
	p.advance() // @load
	var modules []ast.Module
	for {
		url, err := p.expect(token.STRING, "in @load")
		if err != nil {
			return nil, err
		}
		mod := ast.Module{URL: url.Text}

		if p.current().Kind == token.AS {
			p.advance()
			name, err := p.expect(token.IDENT, "after 'as'")
			if err != nil {
				return nil, err
			}
			mod.Default = name.Text
		}

		if p.current().Kind == token.LCURLY {
			exports, err := p.parseExportTable()
			if err != nil {
				return nil, err
			}
			mod.Exports = exports
		}

		modules = append(modules, mod)
		if p.current().Kind != token.COMMA {
			break
		}
		p.advance()
	}
	p.endStatement()
	return &ast.Load{Modules: modules}, nil
}

// parseExportTable parses { name (as alias)?, ... }.
func (p *Parser) parseExportTable() ([]ast.ExportBinding, error) {
	p.advance() // {
	var bindings []ast.ExportBinding
	for p.current().Kind != token.RCURLY {
		if len(bindings) > 0 {
			if _, err := p.expect(token.COMMA, "between @load exports"); err != nil {
				return nil, err
			}
			if p.current().Kind == token.RCURLY {
				break
			}
		}
		name, err := p.expect(token.IDENT, "in @load export table")
		if err != nil {
			return nil, err
		}
		binding := ast.ExportBinding{Name: name.Text, Alias: name.Text}
		if p.current().Kind == token.AS {
			p.advance()
			alias, err := p.expect(token.IDENT, "after 'as'")
			if err != nil {
				return nil, err
			}
			binding.Alias = alias.Text
		}
		bindings = append(bindings, binding)
	}
	p.advance() // }
	return bindings, nil
}

// --- Statements with opaque or simple payloads ---

// parseForeignCode parses @js { ... }, keeping the body verbatim.
func (p *Parser) parseForeignCode() (ast.Statement, error) {
	kw := p.advance()
	if len(p.buf) > 0 {
		// The raw body must be read straight from the lexer.
		return nil, p.unexpected(p.buf[0], "'{' after @js")
	}
	code, pos, err := p.lex.ReadRawBlock()
	switch {
	case errors.Is(err, lexer.ErrNoBlock):
		return nil, p.unexpected(p.current(), "'{' after @js")
	case err != nil:
		return nil, p.errorAt(SyntaxError, token.Token{Kind: token.LCURLY, Pos: pos, Raw: "{"}, "unterminated @js block")
	}
	return &ast.ForeignCode{Pos: kw.Pos, Code: code}, nil
}

// parseConsole parses @log, @warn, @error, or @assert followed by an
// expression.
func (p *Parser) parseConsole() (ast.Statement, error) {
	kind := p.advance().Kind
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.endStatement()
	return &ast.Console{Kind: kind, Expr: expr}, nil
}

// --- Style content ---

// startsSelector reports whether a token of kind k can begin a selector
// that does not start with an identifier.
func startsSelector(k token.Kind) bool {
	switch k {
	case token.DOT, token.HASH, token.COLOR, token.MUL, token.AMP, token.COLON,
		token.LSQUARE, token.GREATER, token.PLUS, token.TILDE, token.ATRULE,
		token.PERCENTAGE, token.FROM:
		return true
	}
	return false
}

// isSelector looks ahead from the current token and reports whether a '{'
// opens a rule before the item ends. ${...} interpolations are skipped. A
// bare keyword spelling glued to the token before it, as in .error or
// [for], is part of a name; any other keyword ends the item. So does an
// assignment operator outside [...]; '--' stays, as in .btn--primary.
func (p *Parser) isSelector() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.peekAt(i)
		switch {
		case tok.Kind == token.LCURLY:
			return true
		case tok.Kind == token.DOLLAR && p.peekAt(i+1).Kind == token.LCURLY:
			i = p.skipInterpolation(i + 1)
			if i < 0 {
				return false
			}
		case tok.Kind == token.LSQUARE:
			depth++
		case tok.Kind == token.RSQUARE:
			depth--
		case tok.Kind.IsAssign() && tok.Kind != token.INCREASE && tok.Kind != token.DECREASE && depth <= 0:
			return false
		case tok.Kind.IsAtKeyword():
			if i == 0 || strings.HasPrefix(tok.Raw, "@") || p.peekAt(i-1).End() != tok.Pos.Offset {
				return false
			}
		case tok.Kind == token.SEMI, tok.Kind == token.RCURLY, tok.Kind == token.EOF,
			tok.Kind == token.UNKNOWN, tok.Kind == token.BADSTRING, tok.Kind == token.BADNUMBER:
			return false
		}
	}
}

// selectorOnNewLine reports whether the current token begins a line and
// opens a style rule. An expression ends in front of such a token, so a
// statement needs no ';' before a rule on the next line.
func (p *Parser) selectorOnNewLine() bool {
	return p.current().Pos.Line > p.prev.Pos.Line && startsSelector(p.current().Kind) && p.isSelector()
}

// dashedPropertyName reads ahead over a vendor-prefixed (-webkit-mask) or
// custom (--main-color) property name starting at the current '-' or '--'.
// The pieces of the name must touch each other and be followed by ':'. It
// returns the name and how many tokens it spans, or 0 if there is none.
func (p *Parser) dashedPropertyName() (string, int) {
	first := p.current()
	end := first.End()
	for i := 1; ; i++ {
		tok := p.peekAt(i)
		if tok.Kind == token.COLON && i > 1 {
			return p.src[first.Pos.Offset:end], i
		}
		if tok.Pos.Offset != end {
			return "", 0
		}
		switch {
		case tok.Kind == token.IDENT, tok.Kind.IsAtKeyword() && !strings.HasPrefix(tok.Raw, "@"):
		case i > 1 && (tok.Kind == token.MINUS || tok.Kind == token.DECREASE || tok.Kind == token.NUMBER):
		default:
			return "", 0
		}
		end = tok.End()
	}
}

// skipInterpolation returns the lookahead index of the '}' matching the
// '{' at index open, or -1 if the input ends first.
func (p *Parser) skipInterpolation(open int) int {
	depth := 0
	for i := open; ; i++ {
		switch p.peekAt(i).Kind {
		case token.LCURLY:
			depth++
		case token.RCURLY:
			depth--
			if depth == 0 {
				return i
			}
		case token.EOF:
			return -1
		}
	}
}

// consumeRaw consumes tokens until one of the stop kinds outside any ${...}
// interpolation and returns the trimmed source text they cover, which is
// empty when no token was consumed. first is the token the scan began at.
func (p *Parser) consumeRaw(stop ...token.Kind) (raw string, first token.Token, err error) {
	first = p.current()
	start, end := first.Pos.Offset, first.Pos.Offset
	for {
		tok := p.current()
		for _, k := range stop {
			if tok.Kind == k {
				return strings.TrimSpace(p.src[start:end]), first, nil
			}
		}
		switch tok.Kind {
		case token.EOF, token.UNKNOWN, token.BADSTRING, token.BADNUMBER:
			return "", first, p.unexpected(tok, "")
		case token.DOLLAR:
			if p.peek().Kind == token.LCURLY {
				closing := p.skipInterpolation(1)
				if closing < 0 {
					return "", first, p.errorAt(SyntaxError, tok, "unterminated ${ interpolation")
				}
				for i := 0; i < closing; i++ {
					p.advance()
				}
			}
		}
		end = p.advance().End()
	}
}

// parseStyleDecl parses selector { ... }. The selector is the source text
// before the '{' with runs of whitespace collapsed.
func (p *Parser) parseStyleDecl() (ast.StyleItem, error) {
	raw, _, err := p.consumeRaw(token.LCURLY)
	if err != nil {
		return nil, err
	}
	selector := strings.Join(strings.Fields(raw), " ")
	children, err := p.parseBlock("after selector")
	if err != nil {
		return nil, err
	}
	return &ast.StyleDecl{Selector: selector, Children: children}, nil
}

// parsePropDecl parses the rest of name: value; once the name has been
// consumed. The value is a single string or template literal, or the raw
// text up to ';' or '}'.
func (p *Parser) parsePropDecl(name string) (ast.StyleItem, error) {
	p.advance() // :

	var value ast.TextValue
	tok := p.current()
	next := p.peek().Kind
	switch {
	case tok.Kind == token.STRING && (next == token.SEMI || next == token.RCURLY):
		p.advance()
		value = &ast.Str{Token: tok, Value: tok.Text}
	case tok.Kind == token.TEMPLATE && (next == token.SEMI || next == token.RCURLY):
		p.advance()
		tmpl, err := p.parseTemplate(tok, tok.Text, templateBody(tok))
		if err != nil {
			return nil, err
		}
		value = tmpl
	default:
		raw, first, err := p.consumeRaw(token.SEMI, token.RCURLY)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, p.unexpected(first, "value for property "+name)
		}
		if strings.Contains(raw, "${") {
			tmpl, err := p.parseTemplate(first, raw, first.Pos)
			if err != nil {
				return nil, err
			}
			value = tmpl
		} else {
			value = &ast.Str{Token: first, Value: raw}
		}
	}

	switch p.current().Kind {
	case token.SEMI:
		p.advance()
	case token.RCURLY:
	default:
		return nil, p.unexpected(p.current(), "';' after property "+name)
	}
	return &ast.PropDecl{Name: name, Value: value}, nil
}

// parseInclude parses @include name or @include name(args).
func (p *Parser) parseInclude() (ast.StyleItem, error) {
	p.advance() // @include
	name, err := p.expect(token.IDENT, "after @include")
	if err != nil {
		return nil, err
	}
	var args *ast.Params
	if p.current().Kind == token.LPAREN {
		args, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	p.endStatement()
	return &ast.Include{Name: name.Text, Args: args}, nil
}

// parseApply parses @apply followed by whitespace-separated utilities.
func (p *Parser) parseApply() (ast.StyleItem, error) {
	kw := p.advance()
	raw, _, err := p.consumeRaw(token.SEMI, token.RCURLY)
	if err != nil {
		return nil, err
	}
	utilities := strings.Fields(raw)
	if len(utilities) == 0 {
		return nil, p.errorAt(SyntaxError, kw, "@apply needs at least one utility")
	}
	p.endStatement()
	return &ast.Apply{Utilities: utilities}, nil
}
