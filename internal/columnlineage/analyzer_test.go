package columnlineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/model"
)

func byTarget(deps []model.ColumnDependency, col string) []model.ColumnDependency {
	var out []model.ColumnDependency
	for _, d := range deps {
		if d.TargetColumn == col {
			out = append(out, d)
		}
	}
	return out
}

func TestColumnTransformationClassification(t *testing.T) {
	sql := `SELECT o.ORDER_ID, SUM(o.AMOUNT) AS TOTAL_AMOUNT, CAST(o.ORDER_DATE AS DATE) AS ORDER_DATE, CASE WHEN o.STATUS='COMPLETED' THEN 'Done' ELSE 'Pending' END AS STATUS_LABEL FROM SALES.ORDERS o`
	deps, err := Analyze(sql, "DWH.SALES_SUMMARY", nil)
	require.NoError(t, err)

	orderID := byTarget(deps, "ORDER_ID")
	require.Len(t, orderID, 1)
	assert.Equal(t, model.TransformDirect, orderID[0].TransformationKind)
	assert.Empty(t, orderID[0].Transformation)
	assert.Equal(t, "SALES.ORDERS", orderID[0].SourceObjectID)

	total := byTarget(deps, "TOTAL_AMOUNT")
	require.Len(t, total, 1)
	assert.Equal(t, model.TransformAggregate, total[0].TransformationKind)
	assert.Contains(t, total[0].Transformation, "SUM")

	orderDate := byTarget(deps, "ORDER_DATE")
	require.Len(t, orderDate, 1)
	assert.Equal(t, model.TransformCast, orderDate[0].TransformationKind)

	status := byTarget(deps, "STATUS_LABEL")
	require.Len(t, status, 1)
	assert.Equal(t, model.TransformCase, status[0].TransformationKind)
}

func TestDirectTransformationHasNoText(t *testing.T) {
	deps, err := Analyze(`SELECT o.ID AS ID FROM SALES.ORDERS o`, "X.Y", nil)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, model.TransformDirect, deps[0].TransformationKind)
	assert.Equal(t, "", deps[0].Transformation)
}

func TestCreateViewPrefixStripped(t *testing.T) {
	sql := `CREATE OR REPLACE VIEW DWH.V AS SELECT o.ID FROM SALES.ORDERS o`
	deps, err := Analyze(sql, "DWH.V", nil)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "SALES.ORDERS", deps[0].SourceObjectID)
}

func TestAliasResolutionViaJoin(t *testing.T) {
	sql := `SELECT c.NAME AS CUSTOMER_NAME FROM SALES.ORDERS o JOIN DWH.DIM_CUSTOMER c ON o.customer_id = c.id`
	deps, err := Analyze(sql, "X.Y", nil)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "DWH.DIM_CUSTOMER", deps[0].SourceObjectID)
	assert.Equal(t, "NAME", deps[0].SourceColumn)
}
