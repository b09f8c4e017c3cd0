// Package extract orchestrates one extraction run: pull raw objects and
// SQL text from a Source, dispatch each through the analyzers, and
// assemble the resulting fragment into a *cache.Cache.
package extract

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/columnlineage"
	"github.com/lineagehub/lineage/internal/model"
	"github.com/lineagehub/lineage/internal/scriptanalyzer"
	"github.com/lineagehub/lineage/internal/sqlast"
)

// RawObject is what a Source hands back for one entity: the common
// object fields plus, when applicable, the SQL or script body the
// orchestrator needs to analyze.
type RawObject struct {
	Object     model.Object
	SQL        string // view definition or CTAS body, when Object.Kind == KindView
	ScriptHost scriptanalyzer.Host
	HasScript  bool // Object.Kind == KindUDF/KindProcedure with an embedded script body
}

// Source abstracts over wherever raw lineage-relevant data comes from: a
// live warehouse connection, an orchestration metadata store, or (in this
// repo) a fixture database. The orchestrator never talks to a concrete
// backend directly.
type Source interface {
	// Name identifies the source for logging and metadata.Source.
	Name() string
	// Objects streams every object this source knows about.
	Objects(ctx context.Context) ([]RawObject, error)
	// Dialect is the SQL dialect this source's objects are written in.
	Dialect() sqlast.Dialect
}

// DependencySource is an optional Source capability for backends whose
// edges are declared directly in the source data rather than recovered
// from SQL text (e.g. an orchestration DAG's input/output lists).
type DependencySource interface {
	Dependencies() []model.TableDependency
}

// Run drives one extraction end-to-end and returns a populated cache
// fragment. Per-object failures are logged and skipped; they never abort
// the whole run.
func Run(ctx context.Context, src Source, generatedAt string) (*cache.Cache, error) {
	raws, err := src.Objects(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "extract: %s: list objects", src.Name())
	}

	result := &cache.Cache{
		Metadata: cache.Metadata{
			Version:     "1",
			GeneratedAt: generatedAt,
			Source:      src.Name(),
		},
		Objects: make(map[string]*model.Object, len(raws)),
	}

	known := scriptanalyzer.KnownObjects{}
	for _, raw := range raws {
		known[raw.Object.ID] = true
	}

	dialect := src.Dialect()
	for _, raw := range raws {
		obj := raw.Object
		if err := obj.Validate(); err != nil {
			logrus.WithError(err).WithField("id", obj.ID).Warn("skipping invalid object")
			continue
		}
		result.Objects[obj.ID] = &obj

		switch {
		case raw.Object.Kind == model.KindView && raw.SQL != "":
			addViewLineage(result, &obj, raw.SQL, dialect)
		case raw.HasScript && raw.Object.UDF != nil:
			addScriptLineage(result, &obj, raw.Object.UDF.ScriptText, raw.ScriptHost, dialect, known)
		}
	}

	if declared, ok := src.(DependencySource); ok {
		result.TableDeps = append(result.TableDeps, declared.Dependencies()...)
	}

	ensurePlaceholders(result)
	result.Metadata.ObjectCount = len(result.Objects)
	result.Metadata.DependencyCount = len(result.TableDeps)
	result.Metadata.ColumnCount = len(result.ColumnDeps)
	return result, nil
}

func addViewLineage(result *cache.Cache, obj *model.Object, sql string, dialect sqlast.Dialect) {
	refs, err := sqlast.Analyze(sql, dialect, sqlast.Options{})
	if err != nil {
		logrus.WithError(err).WithField("id", obj.ID).Warn("view SQL analysis failed")
		return
	}
	for _, ref := range refs {
		sourceID := ref.Name
		if ref.Schema != "" {
			sourceID = ref.Schema + "." + ref.Name
		}
		sourceID = model.CanonicalizeID(sourceID)
		if sourceID == obj.ID {
			continue // the view's own DDL reference, not a dependency
		}
		result.TableDeps = append(result.TableDeps, model.TableDependency{
			SourceID:       sourceID,
			TargetID:       obj.ID,
			DependencyKind: model.DepViewDerivesFrom,
			ReferenceKind:  ref.ReferenceKind,
		})
	}

	deps, err := columnlineage.Analyze(sql, obj.ID, nil)
	if err != nil {
		logrus.WithError(err).WithField("id", obj.ID).Warn("column lineage analysis failed")
		return
	}
	result.ColumnDeps = append(result.ColumnDeps, deps...)
}

func addScriptLineage(result *cache.Cache, obj *model.Object, script string, host scriptanalyzer.Host, dialect sqlast.Dialect, known scriptanalyzer.KnownObjects) {
	refs, err := scriptanalyzer.Analyze(script, host, dialect, known)
	if err != nil {
		logrus.WithError(err).WithField("id", obj.ID).Warn("script analysis failed")
		return
	}
	for _, ref := range refs {
		sourceID := ref.Name
		if ref.Schema != "" {
			sourceID = ref.Schema + "." + ref.Name
		}
		sourceID = model.CanonicalizeID(sourceID)

		// For UDF writes the UDF is upstream of the table; for UDF reads the
		// table is upstream of the UDF. DDL/INSERT/UPDATE/MERGE references
		// are writes; everything else is a read.
		switch ref.ReferenceKind {
		case model.RefDDL, model.RefInsert, model.RefUpdate, model.RefMerge:
			result.TableDeps = append(result.TableDeps, model.TableDependency{
				SourceID: obj.ID, TargetID: sourceID,
				DependencyKind: model.DepUDFWrites, ReferenceKind: ref.ReferenceKind,
			})
		default:
			result.TableDeps = append(result.TableDeps, model.TableDependency{
				SourceID: sourceID, TargetID: obj.ID,
				DependencyKind: model.DepUDFReads, ReferenceKind: ref.ReferenceKind,
			})
		}
	}
}

// ensurePlaceholders inserts an external-table object for every dependency
// endpoint the source did not report, so the fragment never carries an edge
// whose endpoint is absent.
func ensurePlaceholders(result *cache.Cache) {
	add := func(id string) {
		if _, ok := result.Objects[id]; ok {
			return
		}
		schema, name := id, id
		if i := strings.LastIndexByte(id, '.'); i >= 0 {
			schema, name = id[:i], id[i+1:]
		} else {
			schema = ""
		}
		result.Objects[id] = &model.Object{
			ID:     id,
			Schema: schema,
			Name:   name,
			Kind:   model.KindExternalTable,
			Owner:  "EXTERNAL",
		}
	}
	for _, dep := range result.TableDeps {
		add(dep.SourceID)
		add(dep.TargetID)
	}
}
