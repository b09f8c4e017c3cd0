package graph

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/model"
)

const fixture = `{
  "metadata": {"version": "1", "generated_at": "2026-01-01T00:00:00Z", "source": "exasol"},
  "objects": [
    {"id": "SALES.ORDERS", "schema": "SALES", "name": "ORDERS", "kind": "table", "owner": "ETL", "numeric_tag": 1},
    {"id": "DWH.STG_ORDERS", "schema": "DWH", "name": "STG_ORDERS", "kind": "view", "owner": "ETL", "numeric_tag": 2, "definition": "SELECT * FROM SALES.ORDERS"},
    {"id": "DWH.FACT_ORDERS", "schema": "DWH", "name": "FACT_ORDERS", "kind": "view", "owner": "ETL", "numeric_tag": 3, "definition": "SELECT * FROM DWH.STG_ORDERS"}
  ],
  "dependencies": {
    "table_level": [
      {"source_id": "SALES.ORDERS", "target_id": "DWH.STG_ORDERS", "dependency_kind": "view-derives-from", "reference_kind": "SELECT"},
      {"source_id": "DWH.STG_ORDERS", "target_id": "DWH.FACT_ORDERS", "dependency_kind": "view-derives-from", "reference_kind": "SELECT"},
      {"source_id": "DWH.STG_ORDERS", "target_id": "DWH.MISSING", "dependency_kind": "view-derives-from", "reference_kind": "SELECT"}
    ],
    "column_level": [
      {"source_object_id": "SALES.ORDERS", "source_column": "ID", "target_object_id": "DWH.STG_ORDERS", "target_column": "ID", "transformation_kind": "DIRECT"},
      {"source_object_id": "DWH.STG_ORDERS", "source_column": "ID", "target_object_id": "DWH.FACT_ORDERS", "target_column": "ID", "transformation_kind": "DIRECT"}
    ]
  }
}`

func buildEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := cache.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	return Build(c)
}

func TestBuildInsertsPlaceholderForDanglingEdge(t *testing.T) {
	e := buildEngine(t)
	obj, ok := e.Get("DWH.MISSING")
	require.True(t, ok)
	assert.Equal(t, "EXTERNAL", obj.Owner)
}

func TestForwardLineageOneHop(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.ForwardLineage("SALES.ORDERS", 1)
	require.True(t, ok)
	require.Len(t, result.Nodes, 2, "nodes includes the start id")
	assert.Equal(t, "DWH.STG_ORDERS", result.Nodes[0].ID)
	assert.Equal(t, "SALES.ORDERS", result.Nodes[1].ID)
}

// TestForwardLineageHasMoreIsPerNode: with the chain A->B->C->D, a
// depth-1 forward traversal from A must return has_more_downstream
// true for B (it has an unvisited forward neighbor, C) and false for A's own
// entry once A has been fully expanded to depth.
func TestForwardLineageHasMoreIsPerNode(t *testing.T) {
	fixture := `{
	  "metadata": {"version": "1", "generated_at": "2026-01-01T00:00:00Z", "source": "exasol"},
	  "objects": [
	    {"id": "S.A", "schema": "S", "name": "A", "kind": "table", "owner": "ETL", "numeric_tag": 1},
	    {"id": "S.B", "schema": "S", "name": "B", "kind": "table", "owner": "ETL", "numeric_tag": 2},
	    {"id": "S.C", "schema": "S", "name": "C", "kind": "table", "owner": "ETL", "numeric_tag": 3},
	    {"id": "S.D", "schema": "S", "name": "D", "kind": "table", "owner": "ETL", "numeric_tag": 4}
	  ],
	  "dependencies": {
	    "table_level": [
	      {"source_id": "S.A", "target_id": "S.B", "dependency_kind": "data", "reference_kind": "SELECT"},
	      {"source_id": "S.B", "target_id": "S.C", "dependency_kind": "data", "reference_kind": "SELECT"},
	      {"source_id": "S.C", "target_id": "S.D", "dependency_kind": "data", "reference_kind": "SELECT"}
	    ],
	    "column_level": []
	  }
	}`
	c, err := cache.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	e := Build(c)

	result, ok := e.ForwardLineage("S.A", 1)
	require.True(t, ok)

	ids := make([]string, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	if diff := cmp.Diff([]string{"S.A", "S.B"}, ids); diff != "" {
		t.Fatalf("unexpected node set (-want +got):\n%s", diff)
	}

	assert.False(t, result.HasMoreDownstream["S.A"])
	assert.True(t, result.HasMoreDownstream["S.B"])
}

func TestForwardLineageTwoHopsReachesFact(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.ForwardLineage("SALES.ORDERS", 2)
	require.True(t, ok)
	ids := map[string]bool{}
	for _, n := range result.Nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["DWH.FACT_ORDERS"])
}

func TestBackwardLineage(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.BackwardLineage("DWH.FACT_ORDERS", 2)
	require.True(t, ok)
	ids := map[string]bool{}
	for _, n := range result.Nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["SALES.ORDERS"])
}

func TestFullLineageDedupesEdges(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.FullLineage("DWH.STG_ORDERS", 5, 5)
	require.True(t, ok)
	seen := map[[2]string]bool{}
	for _, edge := range result.Edges {
		key := edge.Key()
		require.False(t, seen[key])
		seen[key] = true
	}
}

func TestGetMissingObjectFails(t *testing.T) {
	e := buildEngine(t)
	_, ok := e.Get("NOPE.NOPE")
	assert.False(t, ok)
}

func TestSearchMatchesBySubstring(t *testing.T) {
	e := buildEngine(t)
	results := e.Search("ORDERS", 10, "", "")
	assert.GreaterOrEqual(t, len(results), 3)
}

func TestObjectsPaginated(t *testing.T) {
	e := buildEngine(t)
	page := e.ObjectsPaginated(1, 2, "", "")
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 4, page.Total) // includes the DWH.MISSING placeholder
	assert.Equal(t, 2, page.TotalPages)
}

func TestColumnLineageDownstream(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.ColumnLineage("SALES.ORDERS", "ID", DirectionDownstream, 2)
	require.True(t, ok)
	require.Empty(t, result.SourceColumns, "a pure downstream walk must not populate source_columns")
	ids := make([]string, 0, len(result.TargetColumns))
	for _, c := range result.TargetColumns {
		ids = append(ids, c.ObjectID+":"+c.Column)
	}
	assert.Contains(t, ids, "DWH.FACT_ORDERS:ID")
}

func TestColumnLineageUpstreamPopulatesSourceColumnsOnly(t *testing.T) {
	e := buildEngine(t)
	result, ok := e.ColumnLineage("DWH.FACT_ORDERS", "ID", DirectionUpstream, 2)
	require.True(t, ok)
	require.Empty(t, result.TargetColumns, "a pure upstream walk must not populate target_columns")
	require.Len(t, result.SourceColumns, 2)
	assert.Equal(t, "DWH.STG_ORDERS", result.SourceColumns[0].ObjectID)
	assert.Equal(t, "SALES.ORDERS", result.SourceColumns[1].ObjectID)
	assert.Equal(t, model.TransformDirect, result.SourceColumns[0].TransformationKind)
}

func TestHasColumnLineage(t *testing.T) {
	e := buildEngine(t)
	assert.True(t, e.HasColumnLineage("SALES.ORDERS"))
	assert.False(t, e.HasColumnLineage("DWH.MISSING"))
}

func TestObjectColumnLineage(t *testing.T) {
	e := buildEngine(t)
	result := e.ObjectColumnLineage("DWH.STG_ORDERS")
	assert.Contains(t, result, "ID")
}
