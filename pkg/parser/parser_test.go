package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/token"
)

func mustParse(t *testing.T, src string) *ast.Block {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prog == nil || prog.Block == nil {
		t.Fatal("Parse returned no block")
	}
	return prog.Block
}

func TestParseEmptyInput(t *testing.T) {
	for _, src := range []string{"", "   \n", "/* comment */", "// line comment\n;;"} {
		block := mustParse(t, src)
		if block.Statements == nil || block.Styles == nil {
			t.Errorf("%q: block lists must be non-nil", src)
		}
		if len(block.Statements) != 0 || len(block.Styles) != 0 {
			t.Errorf("%q: expected empty block, got %d statements, %d styles", src, len(block.Statements), len(block.Styles))
		}
	}
}

func TestParseEmptyBlocks(t *testing.T) {
	block := mustParse(t, "{}")
	if len(block.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.NoOp); !ok {
		t.Errorf("expected *ast.NoOp, got %T", block.Statements[0])
	}

	block = mustParse(t, ".a {}")
	rule := block.Styles[0].(*ast.StyleDecl)
	if rule.Children == nil || rule.Children.Statements == nil || rule.Children.Styles == nil {
		t.Fatal("empty rule body must be a block with non-nil lists")
	}
	if len(rule.Children.Statements) != 0 || len(rule.Children.Styles) != 0 {
		t.Error("expected empty rule body")
	}

	block = mustParse(t, "@while x {}")
	loop := block.Statements[0].(*ast.While)
	if loop.Body == nil || len(loop.Body.Statements) != 0 || len(loop.Body.Styles) != 0 {
		t.Error("expected empty loop body")
	}
}

func TestParseAssignments(t *testing.T) {
	block := mustParse(t, "x = 1; y += 2\nz++ w--; v **= 2\n@var size = 12px")

	tests := []struct {
		name  string
		op    token.Kind
		value string
		isSet bool
	}{
		{"x", token.ASSIGN, "1", true},
		{"y", token.ADDEQUAL, "2", false},
		{"z", token.INCREASE, "noop", false},
		{"w", token.DECREASE, "noop", false},
		{"v", token.EXPEQUAL, "2", false},
		{"size", token.ASSIGN, "12px", true},
	}
	if len(block.Statements) != len(tests) {
		t.Fatalf("expected %d statements, got %d", len(tests), len(block.Statements))
	}

	for i, tt := range tests {
		var left *ast.Var
		var op token.Token
		var right ast.Expr
		switch s := block.Statements[i].(type) {
		case *ast.Assign:
			if !tt.isSet {
				t.Errorf("statement %d: expected Update, got Assign", i)
			}
			left, op, right = s.Left, s.Op, s.Right
		case *ast.Update:
			if tt.isSet {
				t.Errorf("statement %d: expected Assign, got Update", i)
			}
			left, op, right = s.Left, s.Op, s.Right
		default:
			t.Fatalf("statement %d: unexpected %T", i, s)
		}
		if left.Name != tt.name || op.Kind != tt.op || ast.Sprint(right) != tt.value {
			t.Errorf("statement %d: got %s %s %s", i, left.Name, op.Kind, ast.Sprint(right))
		}
	}
}

func TestParseVarPositions(t *testing.T) {
	block := mustParse(t, "x = 1\n  y = x")
	assign := block.Statements[1].(*ast.Assign)
	if assign.Left.Name != "y" || assign.Left.Token.Pos.Line != 2 || assign.Left.Token.Pos.Column != 3 {
		t.Errorf("unexpected left side %s at %s", assign.Left.Name, assign.Left.Token.Pos)
	}
	ref := assign.Right.(*ast.Var)
	if ref.Name != "x" || ref.Token.Pos.Line != 2 || ref.Token.Pos.Column != 7 {
		t.Errorf("unexpected reference %s at %s", ref.Name, ref.Token.Pos)
	}
}

func TestParseIfChain(t *testing.T) {
	block := mustParse(t, "@if x {} @elif y {} @elif z {} @else { a = 1 }")
	if len(block.Statements) != 1 {
		t.Fatalf("expected one If statement, got %d statements", len(block.Statements))
	}
	stmt, ok := block.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", block.Statements[0])
	}
	if got := ast.Sprint(stmt.Branches[0].Cond); got != "x" {
		t.Errorf("expected @if condition x, got %s", got)
	}
	elifs := stmt.Elifs()
	if len(elifs) != 2 {
		t.Fatalf("expected 2 elif branches, got %d", len(elifs))
	}
	if ast.Sprint(elifs[0].Cond) != "y" || ast.Sprint(elifs[1].Cond) != "z" {
		t.Errorf("elif branches out of order: %s, %s", ast.Sprint(elifs[0].Cond), ast.Sprint(elifs[1].Cond))
	}
	if stmt.Else == nil || len(stmt.Else.Statements) != 1 {
		t.Fatal("expected a non-empty else block")
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	block := mustParse(t, "@if a > 1 { @log a } b = 2")
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Statements))
	}
	stmt := block.Statements[0].(*ast.If)
	if stmt.Else != nil || len(stmt.Elifs()) != 0 {
		t.Error("expected a lone @if branch")
	}
	if _, ok := block.Statements[1].(*ast.Assign); !ok {
		t.Errorf("expected *ast.Assign after the chain, got %T", block.Statements[1])
	}
}

func TestParseElseIf(t *testing.T) {
	block := mustParse(t, "@if a {} @else if b {} @else @if c {} @else {}")
	stmt := block.Statements[0].(*ast.If)
	if len(stmt.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(stmt.Branches))
	}
	if ast.Sprint(stmt.Branches[2].Cond) != "c" {
		t.Errorf("unexpected third condition %s", ast.Sprint(stmt.Branches[2].Cond))
	}
	if stmt.Else == nil {
		t.Error("expected else block")
	}
}

func TestParseMisplacedClauses(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"elif without if", "@elif x {}", "without a preceding @if"},
		{"else without if", "@else {}", "without a preceding @if"},
		{"elif after statement", "@if x {} a = 1 @elif y {}", "without a preceding @if"},
		{"elif after else", "@if x {} @else {} @elif y {}", "@elif after @else"},
		{"else after else", "@if x {} @else {} @else {}", "@else after @else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Kind != SyntaxError {
				t.Errorf("expected SyntaxError, got %s", perr.Kind)
			}
			if !strings.Contains(perr.Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, perr.Message)
			}
		})
	}
}

func TestParseFunc(t *testing.T) {
	block := mustParse(t, "@func add(a, b) { @return a + b }\n@func nothing() { @return }")
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Statements))
	}

	add := block.Statements[0].(*ast.Func)
	if add.Name != "add" || !reflect.DeepEqual(add.Params, []string{"a", "b"}) {
		t.Errorf("unexpected signature %s%v", add.Name, add.Params)
	}
	ret := add.Body.Statements[0].(*ast.Return)
	if got := ast.Sprint(ret.Value); got != "(+ a b)" {
		t.Errorf("unexpected return value %s", got)
	}

	nothing := block.Statements[1].(*ast.Func)
	if len(nothing.Params) != 0 {
		t.Errorf("expected no params, got %v", nothing.Params)
	}
	if _, ok := nothing.Body.Statements[0].(*ast.Return).Value.(*ast.NoOp); !ok {
		t.Error("expected bare @return to carry a NoOp value")
	}
}

func TestParseDuplicateNames(t *testing.T) {
	tests := []struct {
		src    string
		column int
	}{
		{"@func f(a, b, a) {}", 15},
		{"@mixin m(x, x) {}", 13},
		{"@for a, a in items {}", 9},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Kind != StructuralError {
				t.Errorf("expected StructuralError, got %s", perr.Kind)
			}
			if perr.Pos.Line != 1 || perr.Pos.Column != tt.column {
				t.Errorf("expected position 1:%d, got %s", tt.column, perr.Pos)
			}
		})
	}
}

func TestParseLoops(t *testing.T) {
	block := mustParse(t, "@for k, v in items { @log k }\n@while i < 10 { i++ }")

	loop := block.Statements[0].(*ast.For)
	if !reflect.DeepEqual(loop.Vars, []string{"k", "v"}) {
		t.Errorf("unexpected loop vars %v", loop.Vars)
	}
	if ast.Sprint(loop.Iterable) != "items" {
		t.Errorf("unexpected iterable %s", ast.Sprint(loop.Iterable))
	}
	if c, ok := loop.Body.Statements[0].(*ast.Console); !ok || c.Kind != token.LOG {
		t.Errorf("expected @log in loop body, got %T", loop.Body.Statements[0])
	}

	while := block.Statements[1].(*ast.While)
	if ast.Sprint(while.Cond) != "(< i 10)" {
		t.Errorf("unexpected condition %s", ast.Sprint(while.Cond))
	}
	if u, ok := while.Body.Statements[0].(*ast.Update); !ok || u.Op.Kind != token.INCREASE {
		t.Errorf("expected i++ in loop body, got %T", while.Body.Statements[0])
	}
}

func TestParseImportAndLoad(t *testing.T) {
	block := mustParse(t, `@import "a.wss", "b.wss";
@load "theme.wss" as theme { primary, accent as brand }, "util.wss"
@export rounded, size`)

	imp := block.Statements[0].(*ast.Import)
	if !reflect.DeepEqual(imp.URLs, []string{"a.wss", "b.wss"}) {
		t.Errorf("unexpected import URLs %v", imp.URLs)
	}

	load := block.Statements[1].(*ast.Load)
	want := []ast.Module{
		{
			URL:     "theme.wss",
			Default: "theme",
			Exports: []ast.ExportBinding{
				{Name: "primary", Alias: "primary"},
				{Name: "accent", Alias: "brand"},
			},
		},
		{URL: "util.wss"},
	}
	if !reflect.DeepEqual(load.Modules, want) {
		t.Errorf("unexpected modules:\n got %+v\nwant %+v", load.Modules, want)
	}

	exp := block.Statements[2].(*ast.Export)
	if !reflect.DeepEqual(exp.Names, []string{"rounded", "size"}) {
		t.Errorf("unexpected exports %v", exp.Names)
	}
}

func TestParseForeignCode(t *testing.T) {
	src := "@js { const x = {a: 1}; if (x) { y(\"}\") } }\na = 1"
	block := mustParse(t, src)
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Statements))
	}
	code := block.Statements[0].(*ast.ForeignCode)
	if code.Code != " const x = {a: 1}; if (x) { y(\"}\") } " {
		t.Errorf("unexpected code %q", code.Code)
	}
	if code.Pos.Line != 1 || code.Pos.Column != 1 {
		t.Errorf("unexpected position %s", code.Pos)
	}
	if _, ok := block.Statements[1].(*ast.Assign); !ok {
		t.Errorf("expected parsing to resume after @js, got %T", block.Statements[1])
	}
}

func TestParseConsole(t *testing.T) {
	block := mustParse(t, `@log "hi"; @warn x; @error "bad"; @assert a == b`)
	kinds := []token.Kind{token.LOG, token.WARN, token.ERROR, token.ASSERT}
	if len(block.Statements) != len(kinds) {
		t.Fatalf("expected %d statements, got %d", len(kinds), len(block.Statements))
	}
	for i, k := range kinds {
		c := block.Statements[i].(*ast.Console)
		if c.Kind != k {
			t.Errorf("statement %d: expected %s, got %s", i, k, c.Kind)
		}
	}
	if got := ast.Sprint(block.Statements[3].(*ast.Console).Expr); got != "(== a b)" {
		t.Errorf("unexpected assert expression %s", got)
	}
}

func TestParseStyleRule(t *testing.T) {
	src := ".card > a:hover,\n  .btn   {\n" +
		"  color: red;\n" +
		"  margin: 0 auto;\n" +
		"  background: \"url(x.png)\";\n" +
		"  width: `${w}px`;\n" +
		"  height: calc(100% - ${h}px);\n" +
		"  &:focus { outline: none }\n" +
		"}"
	block := mustParse(t, src)
	if len(block.Styles) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(block.Styles))
	}
	rule := block.Styles[0].(*ast.StyleDecl)
	if rule.Selector != ".card > a:hover, .btn" {
		t.Errorf("unexpected selector %q", rule.Selector)
	}

	styles := rule.Children.Styles
	if len(styles) != 6 {
		t.Fatalf("expected 6 style items, got %d", len(styles))
	}

	plain := []struct {
		name  string
		value string
	}{
		{"color", "red"},
		{"margin", "0 auto"},
		{"background", "url(x.png)"},
	}
	for i, want := range plain {
		prop := styles[i].(*ast.PropDecl)
		str, ok := prop.Value.(*ast.Str)
		if prop.Name != want.name || !ok || str.Value != want.value {
			t.Errorf("item %d: got %s: %#v", i, prop.Name, prop.Value)
		}
	}

	width := styles[3].(*ast.PropDecl).Value.(*ast.Template)
	if width.Value != "${w}px" || len(width.Parts) != 2 || ast.Sprint(width.Parts[0].Expr) != "w" || width.Parts[1].Text != "px" {
		t.Errorf("unexpected width template %+v", width)
	}

	height := styles[4].(*ast.PropDecl).Value.(*ast.Template)
	if height.Value != "calc(100% - ${h}px)" || len(height.Parts) != 3 {
		t.Fatalf("unexpected height template %+v", height)
	}
	if height.Parts[0].Text != "calc(100% - " || ast.Sprint(height.Parts[1].Expr) != "h" || height.Parts[2].Text != "px)" {
		t.Errorf("unexpected height parts %+v", height.Parts)
	}

	nested := styles[5].(*ast.StyleDecl)
	if nested.Selector != "&:focus" {
		t.Errorf("unexpected nested selector %q", nested.Selector)
	}
	outline := nested.Children.Styles[0].(*ast.PropDecl)
	if outline.Name != "outline" || outline.Value.(*ast.Str).Value != "none" {
		t.Errorf("unexpected nested declaration %+v", outline)
	}
}

func TestParseSelectorAfterExpressionLine(t *testing.T) {
	block := mustParse(t, "@var compact = False\n.grid { gap: 0 }\nx = theme\n  .dark\n@log x")

	if len(block.Styles) != 1 || block.Styles[0].(*ast.StyleDecl).Selector != ".grid" {
		t.Fatalf("expected .grid to start a rule, got %d styles", len(block.Styles))
	}
	assign := block.Statements[1].(*ast.Assign)
	if got := ast.Sprint(assign.Right); got != "(. theme dark)" {
		t.Errorf("expected a continued attribute access without '{', got %s", got)
	}
	if _, ok := block.Statements[2].(*ast.Console); !ok {
		t.Errorf("expected @log after the assignment, got %T", block.Statements[2])
	}
}

func TestParseSelectorsAfterOperandOnNewLine(t *testing.T) {
	tests := []struct {
		src      string
		right    string
		selector string
	}{
		{"x = 1\n* { margin: 0; }", "1", "*"},
		{"x = 1\n[hidden] { display: none }", "1", "[hidden]"},
		{"x = 1\n> .child { color: red }", "1", "> .child"},
		{"x = a\n* 2", "(* a 2)", ""},
		{"x = a\n  + b", "(+ a b)", ""},
		{"x = list\n[0]\ny = 1\n.c {}", "([] list 0)", ".c"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			block := mustParse(t, tt.src)
			if got := ast.Sprint(block.Statements[0].(*ast.Assign).Right); got != tt.right {
				t.Errorf("got %s, want %s", got, tt.right)
			}
			if tt.selector == "" {
				if len(block.Styles) != 0 {
					t.Errorf("expected no rules, got %d", len(block.Styles))
				}
				return
			}
			if len(block.Styles) != 1 {
				t.Fatalf("expected 1 rule, got %d", len(block.Styles))
			}
			if sel := block.Styles[0].(*ast.StyleDecl).Selector; sel != tt.selector {
				t.Errorf("got selector %q, want %q", sel, tt.selector)
			}
		})
	}
}

func TestParseKeywordSpelledSelectors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{".error { color: red; }", ".error"},
		{".warn {}", ".warn"},
		{"div .log { color: red }", "div .log"},
		{".btn.import {}", ".btn.import"},
		{"div .for, .js {}", "div .for, .js"},
		{"[for] {}", "[for]"},
		{"a:if {}", "a:if"},
		{".btn--primary {}", ".btn--primary"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			block := mustParse(t, tt.src)
			if len(block.Styles) != 1 || len(block.Statements) != 0 {
				t.Fatalf("expected a single rule, got %d styles and %d statements", len(block.Styles), len(block.Statements))
			}
			if sel := block.Styles[0].(*ast.StyleDecl).Selector; sel != tt.want {
				t.Errorf("got %q, want %q", sel, tt.want)
			}
		})
	}
}

func TestParseBareKeywordAfterContinuedExpression(t *testing.T) {
	block := mustParse(t, "x = theme\n.dark\nif x { }")
	if len(block.Statements) != 2 || len(block.Styles) != 0 {
		t.Fatalf("expected 2 statements, got %d statements and %d styles", len(block.Statements), len(block.Styles))
	}
	if got := ast.Sprint(block.Statements[0].(*ast.Assign).Right); got != "(. theme dark)" {
		t.Errorf("got %s", got)
	}
	if _, ok := block.Statements[1].(*ast.If); !ok {
		t.Errorf("expected an If, got %T", block.Statements[1])
	}
}

func TestParseDashedProperties(t *testing.T) {
	block := mustParse(t, `:root {
  --main-color: red;
  --space-2: 4px;
  -webkit-transition: all 1s;
  --gap : 8px;
  color: var(--main-color)
}`)
	rule := block.Styles[0].(*ast.StyleDecl)
	if rule.Selector != ":root" {
		t.Errorf("unexpected selector %q", rule.Selector)
	}

	want := [][2]string{
		{"--main-color", "red"},
		{"--space-2", "4px"},
		{"-webkit-transition", "all 1s"},
		{"--gap", "8px"},
		{"color", "var(--main-color)"},
	}
	var got [][2]string
	for _, item := range rule.Children.Styles {
		prop := item.(*ast.PropDecl)
		got = append(got, [2]string{prop.Name, prop.Value.(*ast.Str).Value})
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseMixedBlockKeepsPerListOrder(t *testing.T) {
	block := mustParse(t, ".a {\n  x = 1\n  color: red;\n  @log x;\n  .b {}\n  y = 2\n}")
	body := block.Styles[0].(*ast.StyleDecl).Children

	if len(body.Statements) != 3 || len(body.Styles) != 2 {
		t.Fatalf("expected 3 statements and 2 styles, got %d and %d", len(body.Statements), len(body.Styles))
	}
	if body.Statements[0].(*ast.Assign).Left.Name != "x" {
		t.Error("expected x = 1 first")
	}
	if _, ok := body.Statements[1].(*ast.Console); !ok {
		t.Errorf("expected @log second, got %T", body.Statements[1])
	}
	if body.Statements[2].(*ast.Assign).Left.Name != "y" {
		t.Error("expected y = 2 last")
	}
	if body.Styles[0].(*ast.PropDecl).Name != "color" {
		t.Error("expected color declaration first")
	}
	if body.Styles[1].(*ast.StyleDecl).Selector != ".b" {
		t.Error("expected .b rule second")
	}
}

func TestParseAtRulesAsSelectors(t *testing.T) {
	block := mustParse(t, `@media screen and (max-width: 600px) { .a { color: red } }
@keyframes fade { from { opacity: 0 } 50% { opacity: 0.5 } to { opacity: 1 } }
#main .title, [data-x] > * { color: #fff }`)

	if len(block.Styles) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(block.Styles))
	}
	media := block.Styles[0].(*ast.StyleDecl)
	if media.Selector != "@media screen and (max-width: 600px)" {
		t.Errorf("unexpected media selector %q", media.Selector)
	}

	frames := block.Styles[1].(*ast.StyleDecl)
	var stops []string
	for _, item := range frames.Children.Styles {
		stops = append(stops, item.(*ast.StyleDecl).Selector)
	}
	if !reflect.DeepEqual(stops, []string{"from", "50%", "to"}) {
		t.Errorf("unexpected keyframe stops %v", stops)
	}

	if sel := block.Styles[2].(*ast.StyleDecl).Selector; sel != "#main .title, [data-x] > *" {
		t.Errorf("unexpected selector %q", sel)
	}
}

func TestParseMixinIncludeApply(t *testing.T) {
	block := mustParse(t, `@mixin rounded(r) { border-radius: ${r}; }
.btn {
  @include rounded(4px);
  @include shadow
  @apply px-4 py-2 hover:bg-blue;
}`)

	mixin := block.Statements[0].(*ast.Mixin)
	if mixin.Name != "rounded" || !reflect.DeepEqual(mixin.Params, []string{"r"}) {
		t.Errorf("unexpected mixin %s%v", mixin.Name, mixin.Params)
	}
	radius := mixin.Body.Styles[0].(*ast.PropDecl)
	if tmpl, ok := radius.Value.(*ast.Template); !ok || len(tmpl.Parts) != 1 || ast.Sprint(tmpl.Parts[0].Expr) != "r" {
		t.Errorf("unexpected mixin body value %#v", radius.Value)
	}

	styles := block.Styles[0].(*ast.StyleDecl).Children.Styles
	if len(styles) != 3 {
		t.Fatalf("expected 3 style items, got %d", len(styles))
	}
	inc := styles[0].(*ast.Include)
	if inc.Name != "rounded" || inc.Args == nil || ast.Sprint(inc.Args) != "(params 4px)" {
		t.Errorf("unexpected include %+v", inc)
	}
	if bare := styles[1].(*ast.Include); bare.Name != "shadow" || bare.Args != nil {
		t.Errorf("unexpected bare include %+v", bare)
	}
	apply := styles[2].(*ast.Apply)
	if !reflect.DeepEqual(apply.Utilities, []string{"px-4", "py-2", "hover:bg-blue"}) {
		t.Errorf("unexpected utilities %v", apply.Utilities)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
	}{
		{"x = ", SyntaxError},
		{"@func f(a {}", SyntaxError},
		{"@func f(a) ", SyntaxError},
		{".a { color: red;", SyntaxError},
		{"}", SyntaxError},
		{"x = 1 ^ 2", LexError},
		{"x = \"abc", SyntaxError},
		{"/* open", SyntaxError},
		{"foo bar;", SyntaxError},
		{"@if x { ", SyntaxError},
		{"@if x", SyntaxError},
		{"{ x = 1 }", SyntaxError},
		{"@apply ;", SyntaxError},
		{"@js", SyntaxError},
		{"@js { unterminated", SyntaxError},
		{"@import foo", SyntaxError},
		{"@load theme", SyntaxError},
		{`@load "t" { a as }`, SyntaxError},
		{"@for i items {}", SyntaxError},
		{".a { color: }", SyntaxError},
		{"@var = 1", SyntaxError},
		{".a { - webkit: x }", SyntaxError},
		{".a { --: x }", SyntaxError},
		{"div log {}", SyntaxError},
		{"x = 1e999", SyntaxError},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("expected error, got %+v", prog)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("expected %s, got %s: %v", tt.kind, perr.Kind, err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	src := "a = 1\nb = )\nc = 2"
	_, err := Parse(src)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Token.Kind != token.RPAREN {
		t.Errorf("expected failing token ')', got %s", perr.Token.Kind)
	}
	if want := "SyntaxError at 2:5: expected expression, got ')'"; err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	want := "SyntaxError in main.wss at 2:5: expected expression, got ')'\n\n" +
		"   1 | a = 1\n" +
		"   2 | b = )\n" +
		"     |     ^\n" +
		"   3 | c = 2\n"
	if got := FormatError(err, "main.wss", src); got != want {
		t.Errorf("FormatError:\n%s\nwant:\n%s", got, want)
	}

	if got := FormatError(errors.New("boom"), "x", src); got != "boom" {
		t.Errorf("expected non-parser errors to pass through, got %q", got)
	}
}

func TestParseNumberOutOfRange(t *testing.T) {
	_, err := Parse("x = 1e999px")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if want := "SyntaxError at 1:5: number 1e999px out of range"; err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestParseErrorDescribesToken(t *testing.T) {
	_, err := Parse("x = 1 2px")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !strings.Contains(perr.Message, "PIXEL 2px") {
		t.Errorf("expected message to name the token, got %q", perr.Message)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	src := `@load "theme.wss" as theme
@var base = 4px
@func scale(n) { @return n * base }
.grid {
  gap: ${scale(2)};
  @for i in [1, 2, 3] {
    .col-${i} { width: ${i / 3 * 100}%; }
  }
  @if theme.dark and not compact { color: #eee } @else { color: #111 }
}`
	first, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if first == second {
		t.Fatal("expected independent trees")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("re-parsing identical source produced different trees")
	}
}

func TestParseRejectsOversize(t *testing.T) {
	src := strings.Repeat("a", MaxSourceSize+1)
	if _, err := Parse(src); !errors.Is(err, ErrSourceTooLarge) {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
	if _, err := ParseWithLimit("x = 1", 4); !errors.Is(err, ErrSourceTooLarge) {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
	if _, err := ParseWithLimit("x = 1", 0); err != nil {
		t.Fatalf("expected no limit, got %v", err)
	}
}
