package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectRoundTripView(t *testing.T) {
	o := Object{
		ID:     "DWH.SALES_SUMMARY",
		Schema: "DWH",
		Name:   "SALES_SUMMARY",
		Kind:   KindView,
		Owner:  "ETL",
		View:   &ViewPayload{Definition: "SELECT * FROM SALES.ORDERS"},
	}
	require.NoError(t, o.Validate())

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"definition":"SELECT * FROM SALES.ORDERS"`)
	assert.NotContains(t, string(data), "udf_type")

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, o.ID, decoded.ID)
	require.NotNil(t, decoded.View)
	assert.Equal(t, o.View.Definition, decoded.View.Definition)
	assert.Nil(t, decoded.UDF)
}

func TestObjectRoundTripUDF(t *testing.T) {
	o := Object{
		ID:   "ETL.FN_PROC",
		Kind: KindUDF,
		Name: "FN_PROC",
		UDF: &UDFPayload{
			UDFType:        "SCALAR",
			ScriptLanguage: "lua",
			ScriptText:     `query("SELECT 1")`,
		},
	}
	data, err := json.Marshal(o)
	require.NoError(t, err)

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.UDF)
	assert.Equal(t, "lua", decoded.UDF.ScriptLanguage)
	assert.Nil(t, decoded.View)
}

func TestObjectValidateRejectsUnknownKind(t *testing.T) {
	o := Object{ID: "X.Y", Name: "Y", Kind: ObjectKind("bogus")}
	assert.Error(t, o.Validate())
}

func TestCanonicalizeID(t *testing.T) {
	assert.Equal(t, "DWH.FACT_SALES", CanonicalizeID("dwh.fact_sales"))
	assert.Equal(t, "bq:proj.ds.tbl", CanonicalizeID("bq:proj.ds.tbl"))
}

func TestTruncateTransformation(t *testing.T) {
	short := "SUM(o.AMOUNT)"
	assert.Equal(t, short, TruncateTransformation(short))

	long := ""
	for i := 0; i < 250; i++ {
		long += "x"
	}
	truncated := TruncateTransformation(long)
	assert.True(t, len(truncated) > 200)
	assert.Contains(t, truncated, "…")
}

func TestTableDependencyKey(t *testing.T) {
	d := TableDependency{SourceID: "A", TargetID: "B"}
	assert.Equal(t, [2]string{"A", "B"}, d.Key())
}

func TestColumnDependencyKey(t *testing.T) {
	d := ColumnDependency{SourceObjectID: "A", SourceColumn: "X", TargetObjectID: "B", TargetColumn: "Y"}
	assert.Equal(t, ColumnDepKey{"A", "X", "B", "Y"}, d.Key())
}
