// Package fixturesource is a reference extract.Source implementation
// backed by an embedded sqlite database. It exists so the orchestrator has
// something real to extract from in tests, in place of a hand-rolled fake.
package fixturesource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lineagehub/lineage/internal/extract"
	"github.com/lineagehub/lineage/internal/model"
	"github.com/lineagehub/lineage/internal/scriptanalyzer"
	"github.com/lineagehub/lineage/internal/sqlast"
)

// Source reads object metadata from a sqlite database matching Schema.
type Source struct {
	db      *sql.DB
	dialect sqlast.Dialect
}

// Schema is the DDL a fixture database must satisfy.
const Schema = `
CREATE TABLE IF NOT EXISTS objects (
	id TEXT PRIMARY KEY,
	schema TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	owner TEXT NOT NULL,
	numeric_tag INTEGER NOT NULL,
	definition TEXT,
	udf_type TEXT,
	script_language TEXT,
	script_text TEXT
);
`

// Open opens (creating if absent) a sqlite fixture database at path and
// ensures Schema exists. Use ":memory:" for an ephemeral, test-only
// database.
func Open(path string, dialect sqlast.Dialect) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Source{db: db, dialect: dialect}, nil
}

func (s *Source) Close() error { return s.db.Close() }

func (s *Source) Name() string            { return "exasol-fixture" }
func (s *Source) Dialect() sqlast.Dialect { return s.dialect }

// Objects implements extract.Source.
func (s *Source) Objects(ctx context.Context) ([]extract.RawObject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, schema, name, kind, owner, numeric_tag,
		definition, udf_type, script_language, script_text FROM objects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fixturesource: query objects: %w", err)
	}
	defer rows.Close()

	var out []extract.RawObject
	for rows.Next() {
		var (
			id, schema, name, kind, owner                   string
			numericTag                                      int64
			definition, udfType, scriptLanguage, scriptText sql.NullString
		)
		if err := rows.Scan(&id, &schema, &name, &kind, &owner, &numericTag,
			&definition, &udfType, &scriptLanguage, &scriptText); err != nil {
			return nil, fmt.Errorf("fixturesource: scan object: %w", err)
		}

		obj := model.Object{
			ID: id, Schema: schema, Name: name,
			Kind: model.ObjectKind(kind), Owner: owner, NumericTag: numericTag,
		}
		raw := extract.RawObject{Object: obj}

		switch obj.Kind {
		case model.KindView:
			obj.View = &model.ViewPayload{Definition: definition.String}
			raw.Object = obj
			raw.SQL = definition.String
		case model.KindUDF, model.KindProcedure:
			obj.UDF = &model.UDFPayload{
				UDFType:        udfType.String,
				ScriptLanguage: scriptLanguage.String,
				ScriptText:     scriptText.String,
			}
			raw.Object = obj
			raw.HasScript = scriptText.Valid && scriptText.String != ""
			raw.ScriptHost = hostForLanguage(scriptLanguage.String)
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

// hostForLanguage picks the tree-sitter grammar to parse scriptLanguage
// with. Anything not recognized as the general-purpose host language
// falls back to Host A, the UDF scripting language this fixture source
// was built to model.
func hostForLanguage(lang string) scriptanalyzer.Host {
	switch lang {
	case "PYTHON", "python":
		return scriptanalyzer.HostB
	default:
		return scriptanalyzer.HostA
	}
}
