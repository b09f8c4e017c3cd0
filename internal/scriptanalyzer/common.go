// Package scriptanalyzer extracts embedded SQL strings from two
// scripting-language hosts: a dynamic scripting language used for UDFs
// ("Host A") and a general-purpose scripting language ("Host B"). Each
// extracted string is handed to internal/sqlast.
package scriptanalyzer

import (
	"regexp"
	"strings"
)

// queryCallNames is the set of call names Host A recognizes as SQL
// execution entry points, called either as a bare function or as a method
// on a fixed host-provided namespace object (e.g. "exa.query(...)").
var queryCallNames = map[string]bool{
	"query":                   true,
	"pquery":                  true,
	"query_no_preprocessing":  true,
	"pquery_no_preprocessing": true,
}

// sqlKeywordHint matches any of the statement-introducing keywords used to
// recognize a free-standing string literal as SQL text.
var sqlKeywordHint = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|MERGE|TRUNCATE|CREATE)\b`)

func looksLikeSQL(s string) bool {
	return sqlKeywordHint.MatchString(s)
}

var (
	doubleEscapedNewline = strings.NewReplacer(`\\n`, "\n", `\\t`, "\t", `\\r`, "\r")
	singleEscaped        = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r")
)

// unescapeWhitespace converts literal "\n \t \r" escape sequences -
// including their doubly-escaped form "\\n" - to real whitespace before an
// extracted query string is parsed.
func unescapeWhitespace(s string) string {
	s = doubleEscapedNewline.Replace(s)
	s = singleEscaped.Replace(s)
	return s
}

// stripQuotes removes one layer of matching quote characters from a string
// literal's raw source text: 'single', "double", or a Lua-style long
// bracket [[multi-line]] / [==[...]==] form.
func stripQuotes(raw string) string {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return raw[1 : len(raw)-1]
		}
	}
	if m := longBracketPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

var longBracketPattern = regexp.MustCompile(`(?s)^\[=*\[(.*)\]=*\]$`)
