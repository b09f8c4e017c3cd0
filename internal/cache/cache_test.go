package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatFixture = `{
  "metadata": {"version": "1", "generated_at": "2026-01-01T00:00:00Z", "source": "exasol"},
  "objects": [
    {"id": "SALES.ORDERS", "schema": "SALES", "name": "ORDERS", "kind": "table", "owner": "ETL", "numeric_tag": 1}
  ],
  "dependencies": [
    {"source_id": "SALES.ORDERS", "target_id": "DWH.V", "dependency_kind": "view-derives-from", "reference_kind": "SELECT"}
  ]
}`

const splitFixture = `{
  "metadata": {"version": "1", "generated_at": "2026-01-01T00:00:00Z", "source": "bigquery"},
  "objects": {
    "DWH.V": {"id": "DWH.V", "schema": "DWH", "name": "V", "kind": "view", "owner": "ETL", "numeric_tag": 2, "definition": "SELECT 1"}
  },
  "dependencies": {
    "table_level": [],
    "column_level": [
      {"source_object_id": "SALES.ORDERS", "source_column": "ID", "target_object_id": "DWH.V", "target_column": "ID", "transformation_kind": "DIRECT"}
    ]
  }
}`

func TestLoadFlatShape(t *testing.T) {
	c, err := Load(strings.NewReader(flatFixture))
	require.NoError(t, err)
	assert.Equal(t, shapeObjectList, c.objShape)
	assert.Equal(t, shapeDepFlat, c.depShape)
	assert.Len(t, c.Objects, 1)
	assert.Len(t, c.TableDeps, 1)
}

func TestLoadSplitShape(t *testing.T) {
	c, err := Load(strings.NewReader(splitFixture))
	require.NoError(t, err)
	assert.Equal(t, shapeObjectMap, c.objShape)
	assert.Equal(t, shapeDepSplit, c.depShape)
	assert.Len(t, c.ColumnDeps, 1)
	require.Contains(t, c.Objects, "DWH.V")
	assert.Equal(t, "SELECT 1", c.Objects["DWH.V"].View.Definition)
}

func TestLoadRejectsMissingSection(t *testing.T) {
	_, err := Load(strings.NewReader(`{"metadata":{"version":"1"},"objects":{}}`))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyObjects(t *testing.T) {
	_, err := Load(strings.NewReader(`{"metadata":{"version":"1"},"objects":{},"dependencies":[]}`))
	assert.Error(t, err)
}

func TestSaveRoundTripsShape(t *testing.T) {
	c, err := Load(strings.NewReader(flatFixture))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, c.Save(&buf))

	reloaded, err := Load(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, shapeObjectList, reloaded.objShape)
	assert.Equal(t, shapeDepFlat, reloaded.depShape)
	assert.Len(t, reloaded.Objects, 1)
}
