package parser

import (
	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/token"
)

// Expression grammar, lowest precedence first. Each level has its own
// function that calls the next tighter level for its operands.
//
//	sequence       := ternary (',' ternary)*
//	ternary        := or ('?' ternary ':' ternary)?
//	or             := and ('or' and)*
//	and            := not ('and' not)*
//	not            := 'not' not | membership
//	membership     := comparison (('in' | 'not in') comparison)*
//	comparison     := additive (('==' | '!=' | '>' | '>=' | '<' | '<=') additive)*
//	additive       := multiplicative (('+' | '-') multiplicative)*
//	multiplicative := unary (('*' | '/' | '%') unary)*
//	unary          := ('+' | '-' | '!') unary | power
//	power          := postfix ('**' unary)?
//	postfix        := primary ('.' IDENT | '[' sequence ']' | '(' args ')')*

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseSequence()
}

// parseSequence builds a Tuple from comma-separated expressions.
func (p *Parser) parseSequence() (ast.Expr, error) {
	first, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.COMMA {
		return first, nil
	}
	values := []ast.Expr{first}
	for p.current().Kind == token.COMMA {
		p.advance()
		next, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &ast.Tuple{Values: values}, nil
}

// parseTernary parses cond ? a : b, right-associative.
func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.TERNARY {
		return cond, nil
	}
	p.advance()
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON, "in conditional expression"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseAnd, token.OR)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseNot, token.AND)
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.current().Kind != token.NOT {
		return p.parseMembership()
	}
	op := p.advance()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryOp{Op: op, Expr: operand}, nil
}

func (p *Parser) parseMembership() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseComparison, token.IN, token.NOTIN)
}

// parseComparison chains left to right: a < b < c is (a < b) < c.
func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseAdditive,
		token.EQUAL, token.NOTEQUAL,
		token.GREATER, token.GREATEREQUAL,
		token.LESS, token.LESSEQUAL)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseMultiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseUnary, token.MUL, token.DIV, token.MOD)
}

// parseLeftAssoc parses operand (op operand)* for the given operator kinds
// and folds the result to the left.
func (p *Parser) parseLeftAssoc(operand func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for isOneOf(p.current().Kind, ops) && !p.selectorOnNewLine() {
		op := p.advance()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func isOneOf(k token.Kind, kinds []token.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.current().Kind {
	case token.PLUS, token.MINUS, token.NO:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, Expr: operand}, nil
	}
	return p.parsePower()
}

// parsePower is right-associative and binds tighter than a unary prefix on
// its left: -2 ** 2 is -(2 ** 2), 2 ** -1 is 2 ** (-1).
func (p *Parser) parsePower() (ast.Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != token.EXP {
		return base, nil
	}
	op := p.advance()
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Left: base, Op: op, Right: exponent}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Kind {
		case token.DOT:
			if p.selectorOnNewLine() {
				return expr, nil
			}
			p.advance()
			name, err := p.expect(token.IDENT, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Attr{Object: expr, Name: name.Text}
		case token.LSQUARE:
			if p.selectorOnNewLine() {
				return expr, nil
			}
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RSQUARE, "after index"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Object: expr, Index: index}
		case token.LPAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Func: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()
	if tok.Kind.IsNumeric() {
		p.advance()
		return &ast.Num{Token: tok, Value: tok.Num, Unit: tok.Kind}, nil
	}

	switch tok.Kind {
	case token.STRING:
		p.advance()
		return &ast.Str{Token: tok, Value: tok.Text}, nil
	case token.TEMPLATE:
		p.advance()
		return p.parseTemplate(tok, tok.Text, templateBody(tok))
	case token.COLOR:
		p.advance()
		return &ast.Color{Token: tok, Value: tok.Text}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.Bool{Token: tok, Value: tok.Kind == token.TRUE}, nil
	case token.NONE:
		p.advance()
		return &ast.None{Token: tok}, nil
	case token.IDENT:
		p.advance()
		return &ast.Var{Token: tok, Name: tok.Text}, nil
	case token.DOLLAR:
		p.advance()
		name, err := p.expect(token.IDENT, "after '$'")
		if err != nil {
			return nil, err
		}
		return &ast.Var{Token: name, Name: name.Text}, nil
	case token.LPAREN:
		return p.parseParenthesized()
	case token.LSQUARE:
		return p.parseList()
	case token.LCURLY:
		return p.parseDict()
	}
	return nil, p.unexpected(tok, "expression")
}

// parseParenthesized parses (), (x), and (a, b). A single parenthesized
// expression is returned as is; () is an empty Tuple.
func (p *Parser) parseParenthesized() (ast.Expr, error) {
	p.advance() // (
	if p.current().Kind == token.RPAREN {
		p.advance()
		return &ast.Tuple{Values: []ast.Expr{}}, nil
	}
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "to close '('"); err != nil {
		return nil, err
	}
	return inner, nil
}

// parseList parses [a, b, c]. A trailing comma is allowed.
func (p *Parser) parseList() (ast.Expr, error) {
	p.advance() // [
	values := []ast.Expr{}
	for p.current().Kind != token.RSQUARE {
		if len(values) > 0 {
			if _, err := p.expect(token.COMMA, "between list items"); err != nil {
				return nil, err
			}
			if p.current().Kind == token.RSQUARE {
				break
			}
		}
		v, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	p.advance() // ]
	return &ast.List{Values: values}, nil
}

// parseDict parses {"key": value, 1: value}. Keys are string or plain
// number literals. A trailing comma is allowed.
func (p *Parser) parseDict() (ast.Expr, error) {
	p.advance() // {
	pairs := []ast.Pair{}
	for p.current().Kind != token.RCURLY {
		if len(pairs) > 0 {
			if _, err := p.expect(token.COMMA, "between dict entries"); err != nil {
				return nil, err
			}
			if p.current().Kind == token.RCURLY {
				break
			}
		}

		var key ast.Expr
		tok := p.current()
		switch tok.Kind {
		case token.STRING:
			key = &ast.Str{Token: tok, Value: tok.Text}
		case token.NUMBER:
			key = &ast.Num{Token: tok, Value: tok.Num, Unit: tok.Kind}
		default:
			return nil, p.unexpected(tok, "string or number as dict key")
		}
		p.advance()

		if _, err := p.expect(token.COLON, "after dict key"); err != nil {
			return nil, err
		}
		value, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.Pair{Key: key, Value: value})
	}
	p.advance() // }
	return &ast.Dict{Pairs: pairs}, nil
}

// parseArgs parses a parenthesized argument list. A trailing comma is
// allowed.
func (p *Parser) parseArgs() (*ast.Params, error) {
	p.advance() // (
	values := []ast.Expr{}
	for p.current().Kind != token.RPAREN {
		if len(values) > 0 {
			if _, err := p.expect(token.COMMA, "between arguments"); err != nil {
				return nil, err
			}
			if p.current().Kind == token.RPAREN {
				break
			}
		}
		v, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	p.advance() // )
	return &ast.Params{Values: values}, nil
}
