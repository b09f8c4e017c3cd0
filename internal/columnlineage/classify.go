package columnlineage

import "strings"

// aggregateFunctions is the closed set of functions classified AGGREGATE.
var aggregateFunctions = newUpperSet(
	"SUM", "COUNT", "AVG", "MIN", "MAX", "STDDEV", "VARIANCE", "FIRST", "LAST",
	"GROUP_CONCAT", "LISTAGG", "ARRAY_AGG", "MEDIAN", "ANY_VALUE",
	"APPROX_COUNT_DISTINCT", "COUNTIF",
)

// namedFunctions is the closed set of functions classified FUNCTION.
// Functions whose name starts with "PERCENTILE" are matched by prefix and
// classified AGGREGATE instead.
var namedFunctions = newUpperSet(
	"COALESCE", "NVL", "NVL2", "IFNULL", "NULLIF", "IIF", "CONCAT",
	"SUBSTRING", "SUBSTR", "LEFT", "RIGHT", "TRIM", "LTRIM", "RTRIM",
	"UPPER", "LOWER", "INITCAP", "REPLACE", "TRANSLATE",
	"TO_CHAR", "TO_DATE", "TO_TIMESTAMP", "TO_NUMBER",
	"DATE_ADD", "DATE_SUB", "DATE_TRUNC", "DATE_DIFF",
	"EXTRACT", "YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND",
	"ROUND", "FLOOR", "CEIL", "ABS", "SIGN", "MOD",
	"GREATEST", "LEAST", "DECODE", "LENGTH", "CHARINDEX",
)

func newUpperSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToUpper(w)] = true
	}
	return m
}

func isAggregateFunction(name string) bool {
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "PERCENTILE") {
		return true
	}
	return aggregateFunctions[upper]
}

func isNamedFunction(name string) bool {
	return namedFunctions[strings.ToUpper(name)]
}

