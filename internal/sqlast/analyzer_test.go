package sqlast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/model"
)

func refSet(refs []TableReference) map[[3]string]bool {
	m := make(map[[3]string]bool, len(refs))
	for _, r := range refs {
		m[[3]string{r.Schema, r.Name, string(r.ReferenceKind)}] = true
	}
	return m
}

func TestCTEExclusion(t *testing.T) {
	sql := `WITH monthly AS (SELECT customer_id, SUM(amount) t FROM DWH.FACT_SALES GROUP BY customer_id) SELECT m.*, c.name FROM monthly m LEFT JOIN DWH.DIM_CUSTOMER c ON m.customer_id=c.id`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)

	got := refSet(refs)
	assert.True(t, got[[3]string{"DWH", "FACT_SALES", string(model.RefSelect)}])
	assert.True(t, got[[3]string{"DWH", "DIM_CUSTOMER", string(model.RefJoin)}])
	for k := range got {
		assert.NotEqual(t, "MONTHLY", strings.ToUpper(k[1]))
	}
}

func TestDDLVsInnerSelect(t *testing.T) {
	sql := `CREATE TABLE STG.X AS SELECT id FROM RAW.Y`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)

	got := refSet(refs)
	assert.True(t, got[[3]string{"STG", "X", string(model.RefDDL)}])
	assert.True(t, got[[3]string{"RAW", "Y", string(model.RefSelect)}])
}

func TestInsertSelectClassifiesTargetAndSourceDifferently(t *testing.T) {
	sql := `INSERT INTO STAGING.PROCESSED_ORDERS SELECT * FROM DWH.FACT_ORDERS`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)

	got := refSet(refs)
	assert.True(t, got[[3]string{"STAGING", "PROCESSED_ORDERS", string(model.RefInsert)}])
	assert.True(t, got[[3]string{"DWH", "FACT_ORDERS", string(model.RefSelect)}])
}

func TestFunctionsKeywordsAndVariablesAreFiltered(t *testing.T) {
	sql := `SELECT COUNT(*), MAX(amount) FROM SALES.ORDERS WHERE id = V_THRESHOLD`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)

	for _, r := range refs {
		assert.NotEqual(t, "COUNT", r.Name)
		assert.NotEqual(t, "MAX", r.Name)
		assert.False(t, Exasol.hasVariablePrefix(r.Name))
	}
	got := refSet(refs)
	assert.True(t, got[[3]string{"SALES", "ORDERS", string(model.RefSelect)}])
}

func TestBigQueryRequiresSchema(t *testing.T) {
	sql := `SELECT * FROM orders`
	refs, err := Analyze(sql, BigQuery, Options{})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestMergeFallsBackToRegex(t *testing.T) {
	sql := `MERGE INTO DWH.DIM_CUSTOMER t USING STG.STG_CUSTOMER s ON t.id = s.id WHEN MATCHED THEN UPDATE SET t.name = s.name`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)

	got := refSet(refs)
	assert.True(t, got[[3]string{"DWH", "DIM_CUSTOMER", string(model.RefMerge)}])
}

func TestRequireCompletenessErrorsOnEmptyResult(t *testing.T) {
	_, err := Analyze(`%%% not sql at all %%%`, Exasol, Options{RequireCompleteness: true})
	assert.Error(t, err)
}

func TestRequireCompletenessNotSetReturnsEmpty(t *testing.T) {
	refs, err := Analyze(`%%% not sql at all %%%`, Exasol, Options{})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestDeduplication(t *testing.T) {
	sql := `SELECT a.id FROM DWH.T a WHERE a.id IN (SELECT id FROM DWH.T)`
	refs, err := Analyze(sql, Exasol, Options{})
	require.NoError(t, err)
	count := 0
	for _, r := range refs {
		if r.Schema == "DWH" && r.Name == "T" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
