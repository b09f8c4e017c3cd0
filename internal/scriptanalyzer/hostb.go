package scriptanalyzer

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// interpolationPattern matches a "{expr}" placeholder inside an f-string
// body; doubled braces "{{" / "}}" are Python's own escape for a literal
// brace and must not be treated as a placeholder.
// The "{{" and "}}" alternatives consume those escapes before the
// placeholder alternative can match inside them.
var interpolationPattern = regexp.MustCompile(`\{\{|\}\}|\{[^{}]*\}`)

// tripleQuotedPattern is the fallback scan used when the tree-sitter parse
// reports an error node: Host B scripts sometimes embed SQL in triple-quoted
// strings built through string formatting the grammar doesn't recover from
// cleanly.
var tripleQuotedPattern = regexp.MustCompile(`(?s)("""|''')(.*?)("""|''')`)

// ExtractHostB recovers embedded SQL text from a general-purpose scripting
// language UDF body: every string literal and f-string/templated string
// that looks like SQL, with interpolated expressions replaced by "?"
// placeholders.
func ExtractHostB(script string) []string {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(script))
	if err != nil || tree == nil {
		return nil
	}
	root := tree.RootNode()

	placeholders := func(s string) string {
		return interpolationPattern.ReplaceAllStringFunc(s, func(m string) string {
			if m == "{{" || m == "}}" {
				return m
			}
			return "?"
		})
	}

	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || !looksLikeSQL(s) {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	if root.HasError() {
		for _, m := range tripleQuotedPattern.FindAllStringSubmatch(script, -1) {
			add(placeholders(m[2]))
		}
		return out
	}

	src := []byte(script)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "string" {
			body := stripPythonStringPrefix(n.Content(src))
			add(placeholders(body))
		} else {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i))
			}
		}
	}
	walk(root)
	return out
}

// stripPythonStringPrefix removes an optional f/r/b prefix and the
// surrounding quotes (single, double, or triple) from a Python string
// literal's raw source text.
func stripPythonStringPrefix(raw string) string {
	i := 0
	for i < len(raw) && (raw[i] == 'f' || raw[i] == 'F' || raw[i] == 'r' || raw[i] == 'R' || raw[i] == 'b' || raw[i] == 'B') {
		i++
	}
	raw = raw[i:]
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	return stripQuotes(raw)
}
