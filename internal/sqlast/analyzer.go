package sqlast

import (
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/lineagehub/lineage/internal/lineageerrors"
	"github.com/lineagehub/lineage/internal/model"
)

// Options controls how Analyze behaves when neither the AST pass nor the
// regex fallback yields any reference.
type Options struct {
	// RequireCompleteness turns an empty result after both the AST and
	// regex passes into an ErrParseError instead of an empty slice.
	RequireCompleteness bool
}

// Analyze parses sql under the given dialect and returns an ordered,
// de-duplicated sequence of table references. Statements the MySQL-family
// grammar rejects (MERGE, CREATE OR REPLACE VIEW, backtick-qualified
// cloud-warehouse names) go through the regex fallback instead.
func Analyze(sql string, d Dialect, opts Options) ([]TableReference, error) {
	stmt, err := sqlparser.Parse(sql)
	var refs []TableReference
	if err != nil {
		refs = fallbackExtract(sql, d)
	} else {
		w := &walker{dialect: d, ctes: map[string]bool{}}
		w.statement(stmt)
		refs = w.refs
	}

	refs = dedupeOrdered(refs)
	if len(refs) == 0 && opts.RequireCompleteness {
		return nil, lineageerrors.ErrParseError.New("sql", "no table references found")
	}
	return refs, nil
}

// walker accumulates table references over one statement. ctes holds every
// WITH-declared name seen so far, uppercased; a declaration always precedes
// its use lexically, and the walk handles each WITH clause before the FROM
// that can reference it, so one shared set covers the whole statement.
type walker struct {
	dialect Dialect
	ctes    map[string]bool
	refs    []TableReference
}

// statement dispatches on the statement's top-level shape. Each branch
// classifies its literal target table(s) by the statement's own DML/DDL
// kind, then recurses into any embedded SELECT with a fresh SELECT/JOIN
// context.
func (w *walker) statement(stmt sqlparser.Statement) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		w.selectStmt(s)

	case *sqlparser.Union:
		w.with(s.With)
		w.selectStatement(s.Left)
		w.selectStatement(s.Right)

	case *sqlparser.Insert:
		w.addRef(s.Table.Qualifier.String(), s.Table.Name.String(), model.RefInsert)
		if sel, ok := s.Rows.(sqlparser.SelectStatement); ok {
			w.selectStatement(sel)
		}

	case *sqlparser.Update:
		w.tableExprs(s.TableExprs, model.RefUpdate)

	case *sqlparser.Delete:
		if len(s.Targets) > 0 {
			for _, t := range s.Targets {
				w.addRef(t.Qualifier.String(), t.Name.String(), model.RefDelete)
			}
		} else {
			w.tableExprs(s.TableExprs, model.RefDelete)
		}

	case *sqlparser.DDL:
		w.ddl(s)
	}
}

// ddl handles every statement the grammar funnels through the one DDL node:
// CREATE TABLE [AS SELECT], CREATE VIEW, ALTER, DROP, RENAME, TRUNCATE. The
// created or dropped object itself classifies as DDL; an inner SELECT body
// keeps SELECT/JOIN classification.
func (w *walker) ddl(s *sqlparser.DDL) {
	switch s.Action {
	case sqlparser.CreateStr:
		if s.ViewSpec != nil {
			w.addRef(s.ViewSpec.ViewName.Qualifier.String(), s.ViewSpec.ViewName.Name.String(), model.RefDDL)
			w.selectStatement(s.ViewSpec.ViewExpr)
			return
		}
		w.addRef(s.Table.Qualifier.String(), s.Table.Name.String(), model.RefDDL)
		if s.OptSelect != nil {
			w.selectStatement(s.OptSelect.Select)
		}

	case sqlparser.DropStr, sqlparser.RenameStr:
		for _, t := range s.FromTables {
			w.addRef(t.Qualifier.String(), t.Name.String(), model.RefDDL)
		}

	default:
		// alter, truncate, and anything else that names a single table
		w.addRef(s.Table.Qualifier.String(), s.Table.Name.String(), model.RefDDL)
	}
}

func (w *walker) selectStatement(stmt sqlparser.SelectStatement) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		w.selectStmt(s)
	case *sqlparser.Union:
		w.with(s.With)
		w.selectStatement(s.Left)
		w.selectStatement(s.Right)
	case *sqlparser.ParenSelect:
		w.selectStatement(s.Select)
	}
}

func (w *walker) selectStmt(s *sqlparser.Select) {
	w.with(s.With)
	w.tableExprs(s.From, model.RefSelect)
	// Correlated / scalar subqueries in the projection list and WHERE
	// clause are still base-object references, classified SELECT like
	// their enclosing statement.
	sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if sub, ok := node.(*sqlparser.Subquery); ok {
			w.selectStatement(sub.Select)
			return false, nil
		}
		return true, nil
	}, s.SelectExprs, s.Where)
}

// with registers every name a WITH clause declares, then walks each CTE
// body. The names go into the exclusion set before the body walk so a CTE
// referencing an earlier sibling is excluded too.
func (w *walker) with(with *sqlparser.With) {
	if with == nil {
		return
	}
	for _, cte := range with.Ctes {
		w.ctes[strings.ToUpper(cte.As.String())] = true
	}
	for _, cte := range with.Ctes {
		if sub, ok := cte.AliasedTableExpr.Expr.(*sqlparser.Subquery); ok {
			w.selectStatement(sub.Select)
		}
	}
}

func (w *walker) tableExprs(exprs sqlparser.TableExprs, kind model.ReferenceKind) {
	for _, e := range exprs {
		w.tableExpr(e, kind)
	}
}

func (w *walker) tableExpr(e sqlparser.TableExpr, kind model.ReferenceKind) {
	switch te := e.(type) {
	case *sqlparser.AliasedTableExpr:
		switch inner := te.Expr.(type) {
		case sqlparser.TableName:
			w.addRef(inner.Qualifier.String(), inner.Name.String(), kind)
		case *sqlparser.Subquery:
			w.selectStatement(inner.Select)
		}
	case *sqlparser.JoinTableExpr:
		w.tableExpr(te.LeftExpr, kind)
		w.tableExpr(te.RightExpr, model.RefJoin)
	case *sqlparser.ParenTableExpr:
		w.tableExprs(te.Exprs, kind)
	}
}

// addRef applies CTE exclusion and the lexical filters and records zero or
// one reference.
func (w *walker) addRef(schema, name string, kind model.ReferenceKind) {
	w.refs = append(w.refs, addRef(schema, name, kind, w.dialect, w.ctes)...)
}

// addRef discards CTE references, function and keyword names, variable
// prefixes, and (for dialects that demand a qualifier) bare names, and
// produces zero or one reference.
func addRef(schema, name string, kind model.ReferenceKind, d Dialect, ctes map[string]bool) []TableReference {
	if name == "" {
		return nil
	}
	if ctes[strings.ToUpper(name)] && schema == "" {
		return nil // a WITH-declared name, not a base object
	}
	if d.isFunction(name) || d.isKeyword(name) {
		return nil
	}
	if d.hasVariablePrefix(name) {
		return nil
	}
	if d.RequireSchema && schema == "" {
		return nil
	}
	return []TableReference{{Schema: schema, Name: name, ReferenceKind: kind}}
}
