// Package graph builds the read-only, in-memory lineage index from a
// loaded cache and serves table-level and column-level traversals. Once
// built, an Engine never mutates; a new load produces a new Engine that the
// cache handle swaps in atomically.
package graph

import "github.com/lineagehub/lineage/internal/model"

// LineageResult is the table-level traversal output. has_more_upstream and
// has_more_downstream are per-node, not per-result: each visited id maps to
// whether it has an unexpanded neighbor in that direction, so a client can
// decide which specific node to expand further.
type LineageResult struct {
	Nodes             []*model.Object         `json:"nodes"`
	Edges             []model.TableDependency `json:"edges"`
	HasMoreUpstream   map[string]bool         `json:"has_more_upstream"`
	HasMoreDownstream map[string]bool         `json:"has_more_downstream"`
}

// ColumnSourceInfo is one upstream column reached by a column-lineage
// traversal, carrying the transformation that derives the traversal's
// starting column from it.
type ColumnSourceInfo struct {
	ObjectID           string                   `json:"object_id"`
	Column             string                   `json:"column"`
	Transformation     string                   `json:"transformation,omitempty"`
	TransformationKind model.TransformationKind `json:"transformation_kind"`
}

// ColumnTargetInfo is one downstream column reached by a column-lineage
// traversal.
type ColumnTargetInfo struct {
	ObjectID string `json:"object_id"`
	Column   string `json:"column"`
}

// ColumnLineageResult is the column-level traversal output.
// SourceColumns is built strictly from the upstream walk, TargetColumns
// strictly from the downstream walk; Dependencies carries every traversed
// edge from whichever walk(s) ran.
type ColumnLineageResult struct {
	Dependencies  []model.ColumnDependency `json:"dependencies"`
	SourceColumns []ColumnSourceInfo       `json:"source_columns"`
	TargetColumns []ColumnTargetInfo       `json:"target_columns"`
}

// Page is a paginated slice of objects.
type Page struct {
	Items      []*model.Object `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Direction selects which adjacency a column-level traversal follows.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"
	DirectionDownstream Direction = "downstream"
	DirectionBoth       Direction = "both"
)
