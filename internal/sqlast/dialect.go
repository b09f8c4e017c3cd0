// Package sqlast extracts table references from SQL text. It parses with
// github.com/dolthub/vitess/go/vt/sqlparser and falls back to a regex
// pattern set when a dialect-specific construct (MERGE, CREATE OR REPLACE
// VIEW, backtick-qualified cloud-warehouse names) defeats that parser.
package sqlast

import "strings"

// Dialect is the capability set a single parser is parameterized over:
// which identifiers are SQL functions vs. real tables,
// which are reserved keywords, which prefixes mark scripting-language
// variables rather than table names, and whether bare (unqualified) table
// references are rejected outright.
type Dialect struct {
	Name             string
	Functions        map[string]bool
	Keywords         map[string]bool
	VariablePrefixes []string
	RequireSchema    bool
}

func newSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToUpper(w)] = true
	}
	return m
}

// sqlFunctions is the closed, explicitly enumerated set of built-in
// function names: aggregates, math, string, date/time, conversion, window,
// JSON, array, and platform-specific built-ins.
var sqlFunctions = newSet(
	// aggregate
	"SUM", "COUNT", "AVG", "MIN", "MAX", "STDDEV", "VARIANCE", "FIRST", "LAST",
	"GROUP_CONCAT", "LISTAGG", "ARRAY_AGG", "MEDIAN", "ANY_VALUE",
	"APPROX_COUNT_DISTINCT", "COUNTIF", "PERCENTILE_CONT", "PERCENTILE_DISC",
	// math
	"ROUND", "FLOOR", "CEIL", "CEILING", "ABS", "SIGN", "MOD", "POWER", "SQRT",
	"EXP", "LN", "LOG", "LOG10", "GREATEST", "LEAST",
	// string
	"CONCAT", "SUBSTRING", "SUBSTR", "LEFT", "RIGHT", "TRIM", "LTRIM", "RTRIM",
	"UPPER", "LOWER", "INITCAP", "REPLACE", "TRANSLATE", "LENGTH", "CHARINDEX",
	"INSTR", "LPAD", "RPAD", "REGEXP_REPLACE", "REGEXP_SUBSTR", "SPLIT_PART",
	// date/time
	"TO_CHAR", "TO_DATE", "TO_TIMESTAMP", "TO_NUMBER", "DATE_ADD", "DATE_SUB",
	"DATE_TRUNC", "DATE_DIFF", "EXTRACT", "YEAR", "MONTH", "DAY", "HOUR",
	"MINUTE", "SECOND", "NOW", "CURRENT_DATE", "CURRENT_TIMESTAMP", "SYSDATE",
	// conversion / null handling
	"CAST", "CONVERT", "COALESCE", "NVL", "NVL2", "IFNULL", "NULLIF", "IIF",
	"DECODE",
	// window
	"ROW_NUMBER", "RANK", "DENSE_RANK", "LAG", "LEAD", "NTILE", "FIRST_VALUE",
	"LAST_VALUE",
	// json / array, incl. platform-specific (BigQuery/Exasol) builtins
	"JSON_EXTRACT", "JSON_VALUE", "TO_JSON_STRING", "PARSE_JSON", "ARRAY_LENGTH",
	"ARRAY_CONCAT", "UNNEST", "GENERATE_ARRAY", "ST_GEOGPOINT", "FARM_FINGERPRINT",
)

// sqlKeywords is the closed set of reserved words that must never be
// misread as a bare table name.
var sqlKeywords = newSet(
	"SELECT", "FROM", "WHERE", "JOIN", "INNER", "OUTER", "LEFT", "RIGHT",
	"FULL", "ON", "AND", "OR", "NOT", "NULL", "AS", "GROUP", "BY", "ORDER",
	"HAVING", "LIMIT", "OFFSET", "INSERT", "INTO", "VALUES", "UPDATE", "SET",
	"DELETE", "MERGE", "USING", "WHEN", "MATCHED", "THEN", "CREATE", "TABLE",
	"VIEW", "DROP", "ALTER", "WITH", "UNION", "ALL", "DISTINCT", "CASE",
	"ELSE", "END", "IS", "IN", "EXISTS", "BETWEEN", "LIKE", "TRUE", "FALSE",
	"ASC", "DESC", "REPLACE", "FORCE", "TEMPORARY", "TEMP", "IF",
)

// defaultVariablePrefixes marks scripting-language variable names that
// lexically resemble a bare table reference but never are one.
var defaultVariablePrefixes = []string{
	"V_", "P_", "L_", "G_", "IN_", "OUT_", "IO_", "VAR_", "PARAM_",
}

// Exasol is the Exasol-like analytical-warehouse dialect: standards
// compatible, bare (unqualified) table names are permitted.
var Exasol = Dialect{
	Name:             "exasol",
	Functions:        sqlFunctions,
	Keywords:         sqlKeywords,
	VariablePrefixes: defaultVariablePrefixes,
	RequireSchema:    false,
}

// BigQuery is the cloud-warehouse dialect: every table reference must carry
// an explicit dataset (schema) qualifier.
var BigQuery = Dialect{
	Name:             "bigquery",
	Functions:        sqlFunctions,
	Keywords:         sqlKeywords,
	VariablePrefixes: defaultVariablePrefixes,
	RequireSchema:    true,
}

func (d Dialect) isFunction(name string) bool {
	return d.Functions[strings.ToUpper(name)]
}

func (d Dialect) isKeyword(name string) bool {
	return d.Keywords[strings.ToUpper(name)]
}

func (d Dialect) hasVariablePrefix(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	upper := strings.ToUpper(name)
	for _, p := range d.VariablePrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}
