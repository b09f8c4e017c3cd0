package graph

import (
	"sort"

	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/model"
)

// columnIndex is the column-level mirror of Engine's table-level indices.
// Column keys are "{object_id}:{column_name}" strings.
type columnIndex struct {
	forward            map[string]map[string]bool
	backward           map[string]map[string]bool
	edgeIndex          map[[2]string]model.ColumnDependency
	columnsWithLineage map[string]map[string]bool
}

func buildColumnIndex(c *cache.Cache) *columnIndex {
	idx := &columnIndex{
		forward:            map[string]map[string]bool{},
		backward:           map[string]map[string]bool{},
		edgeIndex:          map[[2]string]model.ColumnDependency{},
		columnsWithLineage: map[string]map[string]bool{},
	}
	for _, dep := range c.ColumnDeps {
		srcKey := model.ColumnNodeKey(dep.SourceObjectID, dep.SourceColumn)
		dstKey := model.ColumnNodeKey(dep.TargetObjectID, dep.TargetColumn)

		addAdj(idx.forward, srcKey, dstKey)
		addAdj(idx.backward, dstKey, srcKey)
		idx.edgeIndex[[2]string{srcKey, dstKey}] = dep

		idx.markColumn(dep.SourceObjectID, dep.SourceColumn)
		idx.markColumn(dep.TargetObjectID, dep.TargetColumn)
	}
	return idx
}

func (idx *columnIndex) markColumn(objectID, column string) {
	if idx.columnsWithLineage[objectID] == nil {
		idx.columnsWithLineage[objectID] = map[string]bool{}
	}
	idx.columnsWithLineage[objectID][column] = true
}

// ColumnLineage BFS from "{objectID}:{column}" up to depth hops in the
// requested direction(s). For DirectionBoth, upstream and downstream
// traversals use independent visited sets.
func (e *Engine) ColumnLineage(objectID, column string, direction Direction, depth int) (ColumnLineageResult, bool) {
	start := model.ColumnNodeKey(objectID, column)
	if !e.column.hasAnyEdge(start) {
		return ColumnLineageResult{}, false
	}

	var deps []model.ColumnDependency
	var sources []ColumnSourceInfo
	var targets []ColumnTargetInfo

	// source_columns is built strictly from the upstream walk's own edges
	// (each edge's source end), target_columns strictly from the downstream
	// walk's own edges (each edge's target end); the two walks must not be
	// merged before projecting, or a downstream edge's source column (the
	// start node itself) would leak into source_columns and vice versa.
	if direction == DirectionUpstream || direction == DirectionBoth {
		upDeps := e.column.walk(start, depth, e.column.backward, false)
		deps = append(deps, upDeps...)
		seen := map[string]bool{}
		for _, d := range upDeps {
			key := model.ColumnNodeKey(d.SourceObjectID, d.SourceColumn)
			if seen[key] {
				continue
			}
			seen[key] = true
			sources = append(sources, ColumnSourceInfo{
				ObjectID:           d.SourceObjectID,
				Column:             d.SourceColumn,
				Transformation:     d.Transformation,
				TransformationKind: d.TransformationKind,
			})
		}
	}
	if direction == DirectionDownstream || direction == DirectionBoth {
		downDeps := e.column.walk(start, depth, e.column.forward, true)
		deps = append(deps, downDeps...)
		seen := map[string]bool{}
		for _, d := range downDeps {
			key := model.ColumnNodeKey(d.TargetObjectID, d.TargetColumn)
			if seen[key] {
				continue
			}
			seen[key] = true
			targets = append(targets, ColumnTargetInfo{
				ObjectID: d.TargetObjectID,
				Column:   d.TargetColumn,
			})
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ObjectID != sources[j].ObjectID {
			return sources[i].ObjectID < sources[j].ObjectID
		}
		return sources[i].Column < sources[j].Column
	})
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].ObjectID != targets[j].ObjectID {
			return targets[i].ObjectID < targets[j].ObjectID
		}
		return targets[i].Column < targets[j].Column
	})

	return ColumnLineageResult{Dependencies: deps, SourceColumns: sources, TargetColumns: targets}, true
}

func (idx *columnIndex) hasAnyEdge(key string) bool {
	return len(idx.forward[key]) > 0 || len(idx.backward[key]) > 0
}

func (idx *columnIndex) walk(start string, depth int, adj map[string]map[string]bool, downstream bool) []model.ColumnDependency {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var out []model.ColumnDependency

	for hop := 0; hop < depth; hop++ {
		var next []string
		for _, cur := range frontier {
			for neighbor := range adj[cur] {
				var key [2]string
				if downstream {
					key = [2]string{cur, neighbor}
				} else {
					key = [2]string{neighbor, cur}
				}
				if dep, ok := idx.edgeIndex[key]; ok {
					out = append(out, dep)
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
	return out
}

// ObjectColumnLineage runs a one-hop bidirectional ColumnLineage for every
// column known to have lineage on objectID.
func (e *Engine) ObjectColumnLineage(objectID string) map[string]ColumnLineageResult {
	out := map[string]ColumnLineageResult{}
	for col := range e.column.columnsWithLineage[objectID] {
		if result, ok := e.ColumnLineage(objectID, col, DirectionBoth, 1); ok {
			out[col] = result
		}
	}
	return out
}

// HasColumnLineage reports whether objectID has any column-level edges.
func (e *Engine) HasColumnLineage(objectID string) bool {
	return len(e.column.columnsWithLineage[objectID]) > 0
}
