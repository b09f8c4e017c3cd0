// Package yamlsource reads orchestration-DAG and sync-job metadata from a
// YAML file. DAG and sync-job objects have no SQL body to analyze; their
// dependency edges come straight from the declared input/output lists.
package yamlsource

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lineagehub/lineage/internal/extract"
	"github.com/lineagehub/lineage/internal/model"
	"github.com/lineagehub/lineage/internal/sqlast"
)

// Document is the on-disk shape a yamlsource file must satisfy.
type Document struct {
	DAGs []struct {
		ID      string   `yaml:"id"`
		Schema  string   `yaml:"schema"`
		Name    string   `yaml:"name"`
		Owner   string   `yaml:"owner"`
		Tag     int64    `yaml:"numeric_tag"`
		Inputs  []string `yaml:"inputs"`
		Outputs []string `yaml:"outputs"`
	} `yaml:"dags"`
	SyncJobs []struct {
		ID     string `yaml:"id"`
		Schema string `yaml:"schema"`
		Name   string `yaml:"name"`
		Owner  string `yaml:"owner"`
		Tag    int64  `yaml:"numeric_tag"`
		Source string `yaml:"source"`
		Target string `yaml:"target"`
	} `yaml:"sync_jobs"`
}

// Source reads Document-shaped YAML and produces DAG and sync-job
// objects, plus their declared table-level dependency edges.
type Source struct {
	doc  Document
	deps []model.TableDependency
}

// Open parses the YAML file at path.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlsource: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamlsource: parse %s: %w", path, err)
	}
	return &Source{doc: doc}, nil
}

func (s *Source) Name() string            { return "orchestration-metadata" }
func (s *Source) Dialect() sqlast.Dialect { return sqlast.Exasol }

// Objects implements extract.Source. DAG inputs/outputs become
// DAG_INPUT/DAG_OUTPUT table-level edges; sync jobs become a single
// "sync" edge from their declared source to target.
func (s *Source) Objects(ctx context.Context) ([]extract.RawObject, error) {
	var out []extract.RawObject
	s.deps = nil

	for _, d := range s.doc.DAGs {
		out = append(out, extract.RawObject{Object: model.Object{
			ID: d.ID, Schema: d.Schema, Name: d.Name,
			Kind: model.KindDAG, Owner: d.Owner, NumericTag: d.Tag,
		}})
		for _, in := range d.Inputs {
			s.deps = append(s.deps, model.TableDependency{
				SourceID: model.CanonicalizeID(in), TargetID: d.ID,
				DependencyKind: model.DepSync, ReferenceKind: model.RefDAGInput,
			})
		}
		for _, out2 := range d.Outputs {
			s.deps = append(s.deps, model.TableDependency{
				SourceID: d.ID, TargetID: model.CanonicalizeID(out2),
				DependencyKind: model.DepSync, ReferenceKind: model.RefDAGOutput,
			})
		}
	}

	for _, j := range s.doc.SyncJobs {
		out = append(out, extract.RawObject{Object: model.Object{
			ID: j.ID, Schema: j.Schema, Name: j.Name,
			Kind: model.KindSyncJob, Owner: j.Owner, NumericTag: j.Tag,
		}})
		if j.Source != "" && j.Target != "" {
			s.deps = append(s.deps, model.TableDependency{
				SourceID: model.CanonicalizeID(j.Source), TargetID: model.CanonicalizeID(j.Target),
				DependencyKind: model.DepSync, ReferenceKind: model.RefSync,
			})
		}
	}
	return out, nil
}

// Dependencies returns the edges declared directly by the YAML document
// (DAG input/output, sync source/target), which the orchestrator appends
// after analyzer-derived edges since this source has no SQL to parse.
func (s *Source) Dependencies() []model.TableDependency {
	return s.deps
}
