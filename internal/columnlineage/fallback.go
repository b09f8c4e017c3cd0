package columnlineage

import (
	"regexp"
	"strings"

	"github.com/lineagehub/lineage/internal/model"
)

var (
	selectFromPattern = regexp.MustCompile(`(?is)SELECT\s+(.*?)\s+FROM\s`)
	asAliasPattern    = regexp.MustCompile(`(?i)\s+AS\s+([A-Za-z0-9_]+)\s*$`)
	qualifiedColumn   = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\b`)
)

// splitProjections splits a projection list on commas that sit outside any
// parenthesis, so CASE WHEN ... THEN ... and function argument lists stay
// intact.
func splitProjections(list string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, list[start:i])
				start = i + 1
			}
		}
	}
	return append(out, list[start:])
}

// fallbackAnalyze recovers target columns via a simpler regex parse when
// the AST parser rejects the statement. Every edge it emits is tagged
// transformation_kind = UNKNOWN: it has no reliable way to bind a specific
// source column to a specific target column, so it links every source
// column literal in the SELECT to every target column rather than silently
// under-reporting.
func fallbackAnalyze(sql string, targetObjectID string) []model.ColumnDependency {
	m := selectFromPattern.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	projections := splitProjections(m[1])

	sourceRefs := uniqueColumnRefs(sql)
	if len(sourceRefs) == 0 {
		return nil
	}

	var deps []model.ColumnDependency
	for _, proj := range projections {
		proj = strings.TrimSpace(proj)
		if proj == "" || proj == "*" {
			continue
		}
		targetCol := fallbackTargetColumn(proj)
		transformation := model.TruncateTransformation(proj)
		for _, ref := range sourceRefs {
			deps = append(deps, model.ColumnDependency{
				SourceObjectID:     ref.table,
				SourceColumn:       ref.column,
				TargetObjectID:     targetObjectID,
				TargetColumn:       targetCol,
				Transformation:     transformation,
				TransformationKind: model.TransformUnknown,
			})
		}
	}
	return deps
}

func fallbackTargetColumn(proj string) string {
	if m := asAliasPattern.FindStringSubmatch(proj); m != nil {
		return m[1]
	}
	fields := strings.Fields(proj)
	last := strings.TrimSuffix(fields[len(fields)-1], ",")
	if dot := strings.LastIndexByte(last, '.'); dot >= 0 {
		return last[dot+1:]
	}
	return last
}

func uniqueColumnRefs(sql string) []columnRef {
	seen := map[columnRef]bool{}
	var out []columnRef
	for _, m := range qualifiedColumn.FindAllStringSubmatch(sql, -1) {
		ref := columnRef{table: strings.ToUpper(m[1]), column: m[2]}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}
