package sqlast

import (
	"regexp"
	"strings"

	"github.com/lineagehub/lineage/internal/model"
)

// identPattern matches a possibly schema-qualified, possibly quoted
// identifier: SCHEMA.NAME, `schema`.`name`, "schema"."name", or a bare name.
const identPattern = `([A-Za-z0-9_"` + "`" + `]+(?:\.[A-Za-z0-9_"` + "`" + `]+)?)`

type fallbackRule struct {
	pattern *regexp.Regexp
	kind    model.ReferenceKind
}

// fallbackRules is the regex pattern set applied in order when AST parsing
// fails. Order matters only in that a
// multi-word keyword (e.g. "MERGE INTO") must be tried before a
// shorter one it contains ("INTO").
var fallbackRules = []fallbackRule{
	{regexp.MustCompile(`(?i)\bMERGE\s+INTO\s+` + identPattern), model.RefMerge},
	{regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+` + identPattern), model.RefDelete},
	{regexp.MustCompile(`(?i)\bTRUNCATE\s+TABLE\s+` + identPattern), model.RefDDL},
	{regexp.MustCompile(`(?i)\bDROP\s+TABLE\s+(?:IF\s+EXISTS\s+)?` + identPattern), model.RefDDL},
	{regexp.MustCompile(`(?i)\bCREATE\s+(?:OR\s+REPLACE\s+)?(?:FORCE\s+)?(?:TEMPORARY\s+)?(?:VIEW|TABLE)\s+` + identPattern), model.RefDDL},
	{regexp.MustCompile(`(?i)\bUPDATE\s+` + identPattern), model.RefUpdate},
	{regexp.MustCompile(`(?i)\bINTO\s+` + identPattern), model.RefInsert},
	{regexp.MustCompile(`(?i)\bJOIN\s+` + identPattern), model.RefJoin},
	{regexp.MustCompile(`(?i)\bFROM\s+` + identPattern), model.RefSelect},
}

// fallbackExtract recovers TableReferences from raw SQL text when the AST
// parser rejects the dialect-specific construct (MERGE, CREATE OR REPLACE
// VIEW, and similar Exasol/BigQuery syntax the MySQL-family grammar does
// not accept). The same lexical filters as the AST path apply.
func fallbackExtract(sql string, d Dialect) []TableReference {
	// A regex fallback has no AST-derived CTE-name set to consult, so
	// WITH-declared names are collected textually and excluded the same way
	// an AST-derived CTE set is.
	ctes := fallbackCTENames(sql)

	var out []TableReference
	for _, rule := range fallbackRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(sql, -1) {
			schema, name := splitIdent(m[1])
			out = append(out, addRef(schema, name, rule.kind, d, ctes)...)
		}
	}
	return out
}

var ctePattern = regexp.MustCompile(`(?i)\bWITH\s+` + identPattern + `\s+AS\s*\(`)
var cteCommaPattern = regexp.MustCompile(`(?i),\s*` + identPattern + `\s+AS\s*\(`)

func fallbackCTENames(sql string) map[string]bool {
	names := map[string]bool{}
	if m := ctePattern.FindStringSubmatch(sql); m != nil {
		_, n := splitIdent(m[1])
		names[strings.ToUpper(n)] = true
		for _, m2 := range cteCommaPattern.FindAllStringSubmatch(sql, -1) {
			_, n2 := splitIdent(m2[1])
			names[strings.ToUpper(n2)] = true
		}
	}
	return names
}

// splitIdent splits a possibly schema-qualified, possibly quoted
// identifier token into (schema, name), stripping quote characters.
func splitIdent(token string) (schema, name string) {
	parts := strings.SplitN(token, ".", 2)
	clean := func(s string) string {
		return strings.Trim(s, `"`+"`")
	}
	if len(parts) == 2 {
		return clean(parts[0]), clean(parts[1])
	}
	return "", clean(parts[0])
}
