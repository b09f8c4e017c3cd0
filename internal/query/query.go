// Package query is the thin adapter layer between external callers and
// the graph engine: it enforces depth bounds, maps absent ids to NotFound,
// and projects search results to a reduced shape. It holds no state of its
// own beyond the engine handle it was given.
package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/lineagehub/lineage/internal/graph"
	"github.com/lineagehub/lineage/internal/lineageerrors"
	"github.com/lineagehub/lineage/internal/model"
)

// SearchResult is the reduced projection search returns.
type SearchResult struct {
	ID          string `json:"id"`
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Statistics summarizes the currently loaded cache. CacheLoadedAt lets a
// client making several calls detect that the cache was swapped between
// them.
type Statistics struct {
	ObjectsByKind         map[string]int `json:"objects_by_kind"`
	ObjectCount           int            `json:"object_count"`
	TableDependencyCount  int            `json:"table_dependency_count"`
	ColumnDependencyCount int            `json:"column_dependency_count"`
	CacheLoadedAt         string         `json:"cache_loaded_at"`
}

// Adapter serves query operations against whatever engine is currently
// published in its handle. It is safe for concurrent use: each call reads
// the handle's current engine once and operates on that stable snapshot
// for the duration of the call.
type Adapter struct {
	handle *graph.Handle
}

// New builds an Adapter over handle.
func New(handle *graph.Handle) *Adapter {
	return &Adapter{handle: handle}
}

// engine returns the currently published engine. Startup is permitted to
// proceed without a cache; until the first successful reload, every
// operation raises NotFound.
func (a *Adapter) engine() (*graph.Engine, error) {
	e := a.handle.Current()
	if e == nil {
		return nil, lineageerrors.ErrNotFound.New("no cache loaded")
	}
	return e, nil
}

func validateDepth(name string, depth, min, max int) error {
	if depth < min || depth > max {
		return lineageerrors.ErrValidation.New(name, "must be in ["+strconv.Itoa(min)+","+strconv.Itoa(max)+"]")
	}
	return nil
}

// GetObject returns an object by id.
func (a *Adapter) GetObject(id string) (*model.Object, error) {
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	obj, ok := e.Get(id)
	if !ok {
		return nil, lineageerrors.ErrNotFound.New(id)
	}
	return obj, nil
}

// ListObjects returns a page of objects.
func (a *Adapter) ListObjects(page, pageSize int, schema, kind string) (graph.Page, error) {
	if page < 1 {
		return graph.Page{}, lineageerrors.ErrValidation.New("page", "must be >= 1")
	}
	if pageSize < 1 || pageSize > 200 {
		return graph.Page{}, lineageerrors.ErrValidation.New("page_size", "must be in [1,200]")
	}
	e, err := a.engine()
	if err != nil {
		return graph.Page{}, err
	}
	return e.ObjectsPaginated(page, pageSize, schema, kind), nil
}

// FullLineage returns the union of up/downstream traversals.
func (a *Adapter) FullLineage(id string, upDepth, downDepth int) (graph.LineageResult, error) {
	if err := validateDepth("upstream_depth", upDepth, 0, 10); err != nil {
		return graph.LineageResult{}, err
	}
	if err := validateDepth("downstream_depth", downDepth, 0, 10); err != nil {
		return graph.LineageResult{}, err
	}
	e, err := a.engine()
	if err != nil {
		return graph.LineageResult{}, err
	}
	result, ok := e.FullLineage(id, upDepth, downDepth)
	if !ok {
		return graph.LineageResult{}, lineageerrors.ErrNotFound.New(id)
	}
	return result, nil
}

// ForwardLineage / BackwardLineage return a directional traversal.
func (a *Adapter) ForwardLineage(id string, depth int) (graph.LineageResult, error) {
	return a.directional(id, depth, true)
}

func (a *Adapter) BackwardLineage(id string, depth int) (graph.LineageResult, error) {
	return a.directional(id, depth, false)
}

func (a *Adapter) directional(id string, depth int, downstream bool) (graph.LineageResult, error) {
	if err := validateDepth("depth", depth, 1, 5); err != nil {
		return graph.LineageResult{}, err
	}
	e, err := a.engine()
	if err != nil {
		return graph.LineageResult{}, err
	}
	var result graph.LineageResult
	var ok bool
	if downstream {
		result, ok = e.ForwardLineage(id, depth)
	} else {
		result, ok = e.BackwardLineage(id, depth)
	}
	if !ok {
		return graph.LineageResult{}, lineageerrors.ErrNotFound.New(id)
	}
	return result, nil
}

// ColumnLineage returns one column's lineage.
func (a *Adapter) ColumnLineage(id, column string, direction graph.Direction, depth int) (graph.ColumnLineageResult, error) {
	if err := validateDepth("depth", depth, 1, 10); err != nil {
		return graph.ColumnLineageResult{}, err
	}
	switch direction {
	case graph.DirectionUpstream, graph.DirectionDownstream, graph.DirectionBoth:
	default:
		return graph.ColumnLineageResult{}, lineageerrors.ErrValidation.New("direction", "must be upstream, downstream, or both")
	}
	e, err := a.engine()
	if err != nil {
		return graph.ColumnLineageResult{}, err
	}
	result, ok := e.ColumnLineage(id, column, direction, depth)
	if !ok {
		return graph.ColumnLineageResult{}, lineageerrors.ErrNotFound.New(id + ":" + column)
	}
	return result, nil
}

// ObjectColumnLineage returns per-column lineage for every column of id
// that has any.
func (a *Adapter) ObjectColumnLineage(id string) (map[string]graph.ColumnLineageResult, error) {
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	if _, ok := e.Get(id); !ok {
		return nil, lineageerrors.ErrNotFound.New(id)
	}
	return e.ObjectColumnLineage(id), nil
}

// Search returns a reduced-projection match list.
func (a *Adapter) Search(q string, limit int, schema, kind string) ([]SearchResult, error) {
	if len(strings.TrimSpace(q)) < 1 {
		return nil, lineageerrors.ErrValidation.New("q", "must be non-empty")
	}
	if limit < 1 || limit > 100 {
		return nil, lineageerrors.ErrValidation.New("limit", "must be in [1,100]")
	}
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	matches := e.Search(q, limit, schema, kind)
	out := make([]SearchResult, 0, len(matches))
	for _, obj := range matches {
		out = append(out, SearchResult{ID: obj.ID, Schema: obj.Schema, Name: obj.Name, Kind: string(obj.Kind), Description: obj.Description})
	}
	return out, nil
}

// Schemas / Kinds return the engine's sorted distinct values.
func (a *Adapter) Schemas() ([]string, error) {
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	return e.Schemas(), nil
}

func (a *Adapter) Kinds() ([]string, error) {
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	return e.Kinds(), nil
}

// Statistics returns cache-wide counts plus the engine's load instant.
func (a *Adapter) Statistics() (Statistics, error) {
	e, err := a.engine()
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		ObjectsByKind:         e.Stats(),
		ObjectCount:           e.ObjectCount(),
		TableDependencyCount:  e.TableDependencyCount(),
		ColumnDependencyCount: e.ColumnDependencyCount(),
		CacheLoadedAt:         e.LoadedAt().Format(time.RFC3339),
	}, nil
}
