package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/cache"
	"github.com/lineagehub/lineage/internal/graph"
)

const fixture = `{
  "metadata": {"version": "1", "generated_at": "2026-01-01T00:00:00Z", "source": "exasol"},
  "objects": [
    {"id": "SALES.ORDERS", "schema": "SALES", "name": "ORDERS", "kind": "table", "owner": "ETL", "numeric_tag": 1},
    {"id": "DWH.FACT_ORDERS", "schema": "DWH", "name": "FACT_ORDERS", "kind": "view", "owner": "ETL", "numeric_tag": 2, "definition": "SELECT * FROM SALES.ORDERS"}
  ],
  "dependencies": [
    {"source_id": "SALES.ORDERS", "target_id": "DWH.FACT_ORDERS", "dependency_kind": "view-derives-from", "reference_kind": "SELECT"}
  ]
}`

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	c, err := cache.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	h := graph.NewHandle()
	h.Set(graph.Build(c))
	return New(h)
}

func TestGetObjectNotFound(t *testing.T) {
	a := newAdapter(t)
	_, err := a.GetObject("GHOST.GHOST")
	assert.Error(t, err)
}

func TestGetObjectFound(t *testing.T) {
	a := newAdapter(t)
	obj, err := a.GetObject("SALES.ORDERS")
	require.NoError(t, err)
	assert.Equal(t, "ORDERS", obj.Name)
}

func TestFullLineageRejectsOutOfBoundDepth(t *testing.T) {
	a := newAdapter(t)
	_, err := a.FullLineage("SALES.ORDERS", 11, 0)
	assert.Error(t, err)
}

func TestForwardLineageRejectsZeroDepth(t *testing.T) {
	a := newAdapter(t)
	_, err := a.ForwardLineage("SALES.ORDERS", 0)
	assert.Error(t, err)
}

func TestForwardLineageWithinBound(t *testing.T) {
	a := newAdapter(t)
	result, err := a.ForwardLineage("SALES.ORDERS", 1)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 2, "start node plus its one downstream view")
}

func TestColumnLineageRejectsBadDirection(t *testing.T) {
	a := newAdapter(t)
	_, err := a.ColumnLineage("SALES.ORDERS", "ID", graph.Direction("sideways"), 1)
	assert.Error(t, err)
}

func TestSearchRequiresNonEmptyQuery(t *testing.T) {
	a := newAdapter(t)
	_, err := a.Search("", 10, "", "")
	assert.Error(t, err)
}

func TestSearchReturnsReducedProjection(t *testing.T) {
	a := newAdapter(t)
	results, err := a.Search("ORDERS", 10, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.NotEmpty(t, results[0].ID)
}

func TestStatisticsReturnsCountsByKind(t *testing.T) {
	a := newAdapter(t)
	stats, err := a.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ObjectsByKind["table"])
	assert.Equal(t, 1, stats.ObjectsByKind["view"])
	assert.Equal(t, 2, stats.ObjectCount)
	assert.Equal(t, 1, stats.TableDependencyCount)
	assert.NotEmpty(t, stats.CacheLoadedAt)
}

func TestNoCacheLoadedReturnsNotFound(t *testing.T) {
	a := New(graph.NewHandle())
	_, err := a.GetObject("SALES.ORDERS")
	assert.Error(t, err)
}
