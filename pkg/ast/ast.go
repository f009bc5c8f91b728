// Package ast defines the syntax tree produced by the windstyle parser.
// The tree is split into three closed families: expressions (Expr),
// executable statements (Statement), and style content (StyleItem). A Block
// keeps statements and style items in two parallel lists, each in source
// order.
//
// Nodes are created by the parser in a single pass and are not mutated
// afterwards.
package ast

import "github.com/lemonberrylabs/windstyle/pkg/token"

// Node is implemented by every tree node.
type Node interface {
	node()
}

// Expr is a value-producing expression: a literal, a composite value, a
// variable reference, or an operator application.
type Expr interface {
	Node
	exprNode()
}

// Statement is an executable entry of a Block.
type Statement interface {
	Node
	stmtNode()
}

// StyleItem is a declarative entry of a Block.
type StyleItem interface {
	Node
	styleNode()
}

// TextValue is the value of a property declaration: a *Str or a *Template.
type TextValue interface {
	Expr
	textValue()
}

// --- Values ---

// Num is a numeric literal. Unit is the literal's token kind (NUMBER,
// PIXEL, REM, EM, SECOND, DEGREE, or PERCENTAGE).
type Num struct {
	Token token.Token
	Value float64
	Unit  token.Kind
}

// Str is a string literal without interpolation.
type Str struct {
	Token token.Token
	Value string
}

// Template is a string with ${...} interpolations. Value is the verbatim
// text; Parts splits it into literal text and parsed expressions.
type Template struct {
	Token token.Token
	Value string
	Parts []TemplatePart
}

// TemplatePart is either literal text (Expr == nil) or an interpolation.
type TemplatePart struct {
	Text string
	Expr Expr
}

// Color is a hex color literal such as #fff.
type Color struct {
	Token token.Token
	Value string
}

// Bool is True or False.
type Bool struct {
	Token token.Token
	Value bool
}

// None is the None constant.
type None struct {
	Token token.Token
}

// Var is a variable reference. Name is the identifier text of Token.
type Var struct {
	Token token.Token
	Name  string
}

// Tuple is a fixed-length sequence, written a, b or (a, b).
type Tuple struct {
	Values []Expr
}

// List is a [a, b] literal.
type List struct {
	Values []Expr
}

// Dict is a {key: value} literal. Pairs keep source order and may repeat a
// key.
type Dict struct {
	Pairs []Pair
}

// Pair is one dict entry. Key is a *Str or a *Num.
type Pair struct {
	Key   Expr
	Value Expr
}

// Params holds the positional arguments at a call site.
type Params struct {
	Values []Expr
}

// Func is a function: its name, ordered parameter names, and body. It is
// both a value and the statement that declares it.
type Func struct {
	Token  token.Token
	Name   string
	Params []string
	Body   *Block
}

// --- Operators ---

// BinaryOp applies Op to Left and Right.
type BinaryOp struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

// UnaryOp applies a prefix Op (+, -, !, not) to Expr.
type UnaryOp struct {
	Op   token.Token
	Expr Expr
}

// Ternary is cond ? then : else.
type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Attr is member access, x.name.
type Attr struct {
	Object Expr
	Name   string
}

// Index is subscript access, x[i].
type Index struct {
	Object Expr
	Index  Expr
}

// Call is a function call.
type Call struct {
	Func Expr
	Args *Params
}

// NoOp is an empty statement such as {} or an absent operand such as the
// right side of x++. It never stands in for malformed input.
type NoOp struct{}

// --- Statements ---

// Assign is name = value.
type Assign struct {
	Left  *Var
	Op    token.Token
	Right Expr
}

// Update is a compound assignment (+=, -=, *=, /=, %=, **=) or an
// increment (++, --). Increments have a *NoOp right side.
type Update struct {
	Left  *Var
	Op    token.Token
	Right Expr
}

// Console is one of @log, @warn, @error, or @assert.
type Console struct {
	Kind token.Kind
	Expr Expr
}

// ForeignCode is the verbatim body of a @js block.
type ForeignCode struct {
	Pos  token.Pos
	Code string
}

// Return is @return with an optional value; an absent value is *NoOp.
type Return struct {
	Value Expr
}

// Mixin is a reusable block of style content with parameters.
type Mixin struct {
	Token  token.Token
	Name   string
	Params []string
	Body   *Block
}

// Export lists the names a module exposes.
type Export struct {
	Names []string
}

// CondBranch is one condition with its block.
type CondBranch struct {
	Cond Expr
	Body *Block
}

// If is an @if chain. Branches[0] is the @if branch and is always present;
// further branches are @elif clauses in source order. Else is nil when there
// is no @else.
type If struct {
	Branches []CondBranch
	Else     *Block
}

// Elifs returns the @elif branches.
func (n *If) Elifs() []CondBranch {
	return n.Branches[1:]
}

// While is @while cond { ... }.
type While struct {
	Cond Expr
	Body *Block
}

// For is @for a, b in iterable { ... }.
type For struct {
	Vars     []string
	Iterable Expr
	Body     *Block
}

// Import lists the raw URLs of an @import.
type Import struct {
	URLs []string
}

// Load lists the module descriptors of an @load.
type Load struct {
	Modules []Module
}

// Module is one @load target. Default is the "as" binding, if any; Exports
// remaps named exports to local names in source order.
type Module struct {
	URL     string
	Default string
	Exports []ExportBinding
}

// ExportBinding binds export Name to local Alias. Alias equals Name when
// no "as" is given.
type ExportBinding struct {
	Name  string
	Alias string
}

// --- Style content ---

// PropDecl is a property declaration, name: value.
type PropDecl struct {
	Name  string
	Value TextValue
}

// StyleDecl is a style rule: a selector and its nested block.
type StyleDecl struct {
	Selector string
	Children *Block
}

// Include expands a mixin in place.
type Include struct {
	Name string
	Args *Params
}

// Apply lists utility classes to merge into the enclosing rule.
type Apply struct {
	Utilities []string
}

// --- Containers ---

// Block holds executable statements and style content in two parallel
// lists. Both lists are non-nil, even when empty.
type Block struct {
	Statements []Statement
	Styles     []StyleItem
}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{Statements: []Statement{}, Styles: []StyleItem{}}
}

// Program is the root of a parsed source unit.
type Program struct {
	Block *Block
}

func (*Num) node()         {}
func (*Str) node()         {}
func (*Template) node()    {}
func (*Color) node()       {}
func (*Bool) node()        {}
func (*None) node()        {}
func (*Var) node()         {}
func (*Tuple) node()       {}
func (*List) node()        {}
func (*Dict) node()        {}
func (*Params) node()      {}
func (*Func) node()        {}
func (*BinaryOp) node()    {}
func (*UnaryOp) node()     {}
func (*Ternary) node()     {}
func (*Attr) node()        {}
func (*Index) node()       {}
func (*Call) node()        {}
func (*NoOp) node()        {}
func (*Assign) node()      {}
func (*Update) node()      {}
func (*Console) node()     {}
func (*ForeignCode) node() {}
func (*Return) node()      {}
func (*Mixin) node()       {}
func (*Export) node()      {}
func (*If) node()          {}
func (*While) node()       {}
func (*For) node()         {}
func (*Import) node()      {}
func (*Load) node()        {}
func (*PropDecl) node()    {}
func (*StyleDecl) node()   {}
func (*Include) node()     {}
func (*Apply) node()       {}
func (*Block) node()       {}
func (*Program) node()     {}

func (*Num) exprNode()      {}
func (*Str) exprNode()      {}
func (*Template) exprNode() {}
func (*Color) exprNode()    {}
func (*Bool) exprNode()     {}
func (*None) exprNode()     {}
func (*Var) exprNode()      {}
func (*Tuple) exprNode()    {}
func (*List) exprNode()     {}
func (*Dict) exprNode()     {}
func (*Params) exprNode()   {}
func (*Func) exprNode()     {}
func (*BinaryOp) exprNode() {}
func (*UnaryOp) exprNode()  {}
func (*Ternary) exprNode()  {}
func (*Attr) exprNode()     {}
func (*Index) exprNode()    {}
func (*Call) exprNode()     {}
func (*NoOp) exprNode()     {}

func (*Assign) stmtNode()      {}
func (*Update) stmtNode()      {}
func (*Console) stmtNode()     {}
func (*ForeignCode) stmtNode() {}
func (*Return) stmtNode()      {}
func (*Func) stmtNode()        {}
func (*Mixin) stmtNode()       {}
func (*Export) stmtNode()      {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*Import) stmtNode()      {}
func (*Load) stmtNode()        {}
func (*NoOp) stmtNode()        {}

func (*PropDecl) styleNode()  {}
func (*StyleDecl) styleNode() {}
func (*Include) styleNode()   {}
func (*Apply) styleNode()     {}
func (*NoOp) styleNode()      {}

func (*Str) textValue()      {}
func (*Template) textValue() {}
