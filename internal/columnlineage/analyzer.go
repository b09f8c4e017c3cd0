// Package columnlineage computes, for a SELECT-producing statement (a view
// definition or the final SELECT of a CTAS), which source columns feed each
// target column and how the target column is derived from them.
package columnlineage

import (
	"regexp"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/lineagehub/lineage/internal/model"
)

// SchemaContext supplies optional external knowledge the analyzer cannot
// derive from the SQL text alone: the column list for known objects (not
// used for extraction, reserved for future type-aware classification) and
// an alias → object id map that supplements the alias map built from the
// statement's own FROM/JOIN clauses.
type SchemaContext struct {
	ObjectColumns map[string][]string
	AliasToObject map[string]string
}

var createViewPrefix = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?(?:FORCE\s+)?VIEW\s+[^\s(]+(?:\s*\([^)]*\))?\s+AS\s+`)

// Analyze computes column-level dependencies for sql, which produces a
// result set (a view definition, or the final SELECT of a CTAS), against
// targetObjectID.
func Analyze(sql string, targetObjectID string, ctx *SchemaContext) ([]model.ColumnDependency, error) {
	body := createViewPrefix.ReplaceAllString(sql, "")

	stmt, err := sqlparser.Parse(body)
	if err != nil {
		return fallbackAnalyze(body, targetObjectID), nil
	}

	sel, ok := outermostSelect(stmt)
	if !ok {
		return fallbackAnalyze(body, targetObjectID), nil
	}

	aliases := buildAliasMap(sel.From)
	if ctx != nil {
		for alias, obj := range ctx.AliasToObject {
			if _, exists := aliases[strings.ToUpper(alias)]; !exists {
				aliases[strings.ToUpper(alias)] = obj
			}
		}
	}

	var deps []model.ColumnDependency
	for _, item := range sel.SelectExprs {
		aliased, ok := item.(*sqlparser.AliasedExpr)
		if !ok {
			continue // *sqlparser.StarExpr: "SELECT *" has no discrete target column
		}
		targetCol, kind, transformation := classifyProjection(aliased)
		for _, ref := range collectColumnRefs(aliased.Expr) {
			sourceObj, ok := resolveTable(ref.table, aliases)
			if !ok {
				if ref.table == "" {
					continue // unqualified column: no table qualifier to resolve, so it is skipped
				}
				sourceObj = strings.ToUpper(ref.table)
			}
			deps = append(deps, model.ColumnDependency{
				SourceObjectID:     sourceObj,
				SourceColumn:       ref.column,
				TargetObjectID:     targetObjectID,
				TargetColumn:       targetCol,
				Transformation:     transformation,
				TransformationKind: kind,
			})
		}
	}
	return deps, nil
}

// outermostSelect returns the statement's main query. A WITH clause
// attaches to sqlparser.Select.With directly in this AST family, so the
// top-level *sqlparser.Select already IS the main query; a top-level UNION
// recurses into its left branch, which carries the representative
// projection list.
func outermostSelect(stmt sqlparser.Statement) (*sqlparser.Select, bool) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return s, true
	case *sqlparser.Union:
		return selectStatement(s.Left)
	}
	return nil, false
}

func selectStatement(stmt sqlparser.SelectStatement) (*sqlparser.Select, bool) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return s, true
	case *sqlparser.Union:
		return selectStatement(s.Left)
	case *sqlparser.ParenSelect:
		return selectStatement(s.Select)
	}
	return nil, false
}

// classifyProjection determines (target_column, transformation_kind,
// transformation) for one projection position.
func classifyProjection(item *sqlparser.AliasedExpr) (string, model.TransformationKind, string) {
	targetCol := projectionTargetColumn(item)
	kind := classifyExpr(item.Expr)
	if kind == model.TransformDirect {
		return targetCol, kind, ""
	}
	return targetCol, kind, model.TruncateTransformation(sqlparser.String(item.Expr))
}

func projectionTargetColumn(item *sqlparser.AliasedExpr) string {
	if !item.As.IsEmpty() {
		return item.As.String()
	}
	if col, ok := item.Expr.(*sqlparser.ColName); ok {
		return col.Name.String()
	}
	return strings.TrimSpace(sqlparser.String(item.Expr))
}

func classifyExpr(expr sqlparser.Expr) model.TransformationKind {
	switch e := expr.(type) {
	case *sqlparser.ColName:
		return model.TransformDirect
	case *sqlparser.ConvertExpr:
		return model.TransformCast
	case *sqlparser.CaseExpr:
		return model.TransformCase
	case *sqlparser.FuncExpr:
		name := e.Name.String()
		switch {
		case isAggregateFunction(name):
			return model.TransformAggregate
		case isNamedFunction(name):
			return model.TransformFunction
		default:
			return model.TransformUnknown
		}
	case *sqlparser.BinaryExpr:
		return model.TransformExpression
	case *sqlparser.ParenExpr:
		return classifyExpr(e.Expr)
	}
	return model.TransformUnknown
}

type columnRef struct {
	table, column string
}

// collectColumnRefs walks expr's subtree for every column-reference node.
func collectColumnRefs(expr sqlparser.Expr) []columnRef {
	var refs []columnRef
	sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if col, ok := node.(*sqlparser.ColName); ok {
			refs = append(refs, columnRef{table: col.Qualifier.Name.String(), column: col.Name.String()})
		}
		return true, nil
	}, expr)
	return refs
}

// buildAliasMap maps every FROM/JOIN alias (and the bare table name) to the
// full table reference "{schema.}name".
func buildAliasMap(exprs sqlparser.TableExprs) map[string]string {
	aliases := map[string]string{}
	var walk func(sqlparser.TableExpr)
	walk = func(e sqlparser.TableExpr) {
		switch te := e.(type) {
		case *sqlparser.AliasedTableExpr:
			if tbl, ok := te.Expr.(sqlparser.TableName); ok {
				full := tbl.Name.String()
				if !tbl.Qualifier.IsEmpty() {
					full = tbl.Qualifier.String() + "." + full
				}
				aliases[strings.ToUpper(tbl.Name.String())] = strings.ToUpper(full)
				if !te.As.IsEmpty() {
					aliases[strings.ToUpper(te.As.String())] = strings.ToUpper(full)
				}
			}
		case *sqlparser.JoinTableExpr:
			walk(te.LeftExpr)
			walk(te.RightExpr)
		case *sqlparser.ParenTableExpr:
			for _, inner := range te.Exprs {
				walk(inner)
			}
		}
	}
	for _, e := range exprs {
		walk(e)
	}
	return aliases
}

func resolveTable(table string, aliases map[string]string) (string, bool) {
	if table == "" {
		return "", false
	}
	if full, ok := aliases[strings.ToUpper(table)]; ok {
		return full, true
	}
	return "", false
}
