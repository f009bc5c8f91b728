package ast

// Dump converts a node into plain maps and slices so it can be encoded as
// JSON or YAML. Every node becomes a map with a "type" key naming its
// variant. Nil nodes become nil.
func Dump(n Node) any {
	switch n := n.(type) {
	case nil:
		return nil
	case *Program:
		if n == nil {
			return nil
		}
		return map[string]any{"type": "Program", "block": Dump(n.Block)}
	case *Block:
		if n == nil {
			return nil
		}
		stmts := make([]any, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = Dump(s)
		}
		styles := make([]any, len(n.Styles))
		for i, s := range n.Styles {
			styles[i] = Dump(s)
		}
		return map[string]any{"type": "Block", "statements": stmts, "styles": styles}

	case *Num:
		return map[string]any{"type": "Num", "value": n.Value, "unit": n.Unit.String(), "raw": n.Token.Raw}
	case *Str:
		return map[string]any{"type": "Str", "value": n.Value}
	case *Template:
		parts := make([]any, len(n.Parts))
		for i, p := range n.Parts {
			if p.Expr != nil {
				parts[i] = map[string]any{"expr": Dump(p.Expr)}
			} else {
				parts[i] = map[string]any{"text": p.Text}
			}
		}
		return map[string]any{"type": "Template", "value": n.Value, "parts": parts}
	case *Color:
		return map[string]any{"type": "Color", "value": n.Value}
	case *Bool:
		return map[string]any{"type": "Bool", "value": n.Value}
	case *None:
		return map[string]any{"type": "None"}
	case *Var:
		return map[string]any{
			"type": "Var",
			"name": n.Name,
			"line": n.Token.Pos.Line,
			"col":  n.Token.Pos.Column,
		}
	case *Tuple:
		return map[string]any{"type": "Tuple", "values": dumpExprs(n.Values)}
	case *List:
		return map[string]any{"type": "List", "values": dumpExprs(n.Values)}
	case *Params:
		if n == nil {
			return nil
		}
		return map[string]any{"type": "Params", "values": dumpExprs(n.Values)}
	case *Dict:
		pairs := make([]any, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = map[string]any{"key": Dump(p.Key), "value": Dump(p.Value)}
		}
		return map[string]any{"type": "Dict", "pairs": pairs}
	case *Func:
		return map[string]any{"type": "Func", "name": n.Name, "params": stringsOrEmpty(n.Params), "body": Dump(n.Body)}
	case *BinaryOp:
		return map[string]any{"type": "BinaryOp", "op": n.Op.Kind.String(), "left": Dump(n.Left), "right": Dump(n.Right)}
	case *UnaryOp:
		return map[string]any{"type": "UnaryOp", "op": n.Op.Kind.String(), "expr": Dump(n.Expr)}
	case *Ternary:
		return map[string]any{"type": "Ternary", "cond": Dump(n.Cond), "then": Dump(n.Then), "else": Dump(n.Else)}
	case *Attr:
		return map[string]any{"type": "Attr", "object": Dump(n.Object), "name": n.Name}
	case *Index:
		return map[string]any{"type": "Index", "object": Dump(n.Object), "index": Dump(n.Index)}
	case *Call:
		return map[string]any{"type": "Call", "func": Dump(n.Func), "args": Dump(n.Args)}
	case *NoOp:
		return map[string]any{"type": "NoOp"}

	case *Assign:
		return map[string]any{"type": "Assign", "var": n.Left.Name, "op": n.Op.Kind.String(), "value": Dump(n.Right)}
	case *Update:
		return map[string]any{"type": "Update", "var": n.Left.Name, "op": n.Op.Kind.String(), "value": Dump(n.Right)}
	case *Console:
		return map[string]any{"type": "Console", "kind": n.Kind.String(), "expr": Dump(n.Expr)}
	case *ForeignCode:
		return map[string]any{"type": "ForeignCode", "code": n.Code}
	case *Return:
		return map[string]any{"type": "Return", "value": Dump(n.Value)}
	case *Mixin:
		return map[string]any{"type": "Mixin", "name": n.Name, "params": stringsOrEmpty(n.Params), "body": Dump(n.Body)}
	case *Export:
		return map[string]any{"type": "Export", "names": stringsOrEmpty(n.Names)}
	case *If:
		branches := make([]any, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = map[string]any{"cond": Dump(b.Cond), "body": Dump(b.Body)}
		}
		return map[string]any{"type": "If", "branches": branches, "else": Dump(n.Else)}
	case *While:
		return map[string]any{"type": "While", "cond": Dump(n.Cond), "body": Dump(n.Body)}
	case *For:
		return map[string]any{"type": "For", "vars": stringsOrEmpty(n.Vars), "iterable": Dump(n.Iterable), "body": Dump(n.Body)}
	case *Import:
		return map[string]any{"type": "Import", "urls": stringsOrEmpty(n.URLs)}
	case *Load:
		modules := make([]any, len(n.Modules))
		for i, m := range n.Modules {
			exports := make([]any, len(m.Exports))
			for j, e := range m.Exports {
				exports[j] = map[string]any{"name": e.Name, "alias": e.Alias}
			}
			modules[i] = map[string]any{"url": m.URL, "default": m.Default, "exports": exports}
		}
		return map[string]any{"type": "Load", "modules": modules}

	case *PropDecl:
		return map[string]any{"type": "PropDecl", "name": n.Name, "value": Dump(n.Value)}
	case *StyleDecl:
		return map[string]any{"type": "StyleDecl", "selector": n.Selector, "children": Dump(n.Children)}
	case *Include:
		return map[string]any{"type": "Include", "name": n.Name, "args": Dump(n.Args)}
	case *Apply:
		return map[string]any{"type": "Apply", "utilities": stringsOrEmpty(n.Utilities)}
	}
	return nil
}

func dumpExprs(values []Expr) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Dump(v)
	}
	return out
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
