package scriptanalyzer

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// ExtractHostA recovers embedded SQL text from a dynamic UDF script. It
// looks for calls to query/pquery/query_no_preprocessing/
// pquery_no_preprocessing, called bare or as a method on a fixed namespace
// object, and additionally harvests free-standing string literals that look
// like SQL on their own.
func ExtractHostA(script string) []string {
	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(script))
	if err != nil || tree == nil {
		return nil
	}
	root := tree.RootNode()

	src := []byte(script)
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(unescapeWhitespace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_call":
			if sql, ok := hostACallArgument(n, src); ok {
				add(sql)
				return // the argument is consumed whole; don't re-harvest its pieces
			}
		case "string":
			text := stripQuotes(n.Content(src))
			if looksLikeSQL(text) {
				add(text)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

// hostACallArgument reports whether call is a query-family invocation and
// extracts its first argument as a SQL string. The callee is either a bare
// identifier ("query(...)") or a dot/method index on a namespace object
// ("exa.query(...)", "exa:query(...)").
func hostACallArgument(call *sitter.Node, src []byte) (string, bool) {
	callee := call.ChildByFieldName("name")
	if callee == nil {
		callee = call.NamedChild(0)
	}
	if callee == nil {
		return "", false
	}
	var name string
	switch callee.Type() {
	case "identifier":
		name = callee.Content(src)
	case "dot_index_expression", "method_index_expression":
		if field := callee.ChildByFieldName("field"); field != nil {
			name = field.Content(src)
		}
	default:
		return "", false
	}
	if !queryCallNames[name] {
		return "", false
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	return hostAStringArgument(args.NamedChild(0), src)
}

// hostAStringArgument extracts a SQL string from a call's first argument,
// which may be a single string literal or a left-to-right concatenation
// ("..") of string literals; concatenated pieces join with a single space.
func hostAStringArgument(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string":
		return stripQuotes(n.Content(src)), true
	case "binary_expression":
		op := n.ChildByFieldName("operator")
		if op == nil || op.Content(src) != ".." {
			return "", false
		}
		left, lok := hostAStringArgument(n.ChildByFieldName("left"), src)
		right, rok := hostAStringArgument(n.ChildByFieldName("right"), src)
		if !lok || !rok {
			return "", false
		}
		return left + " " + right, true
	}
	return "", false
}
