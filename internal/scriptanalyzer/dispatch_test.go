package scriptanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/sqlast"
)

func TestAnalyzeHostADispatchesExtractedSQL(t *testing.T) {
	script := `exa.query("SELECT ID FROM SALES.ORDERS")`
	known := KnownObjects{"SALES.ORDERS": true}

	refs, err := Analyze(script, HostA, sqlast.Exasol, known)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "ORDERS", refs[0].Name)
	assert.Equal(t, "SALES", refs[0].Schema)
}

func TestAnalyzeDropsReferencesNotInKnownObjects(t *testing.T) {
	script := `exa.query("SELECT ID FROM GHOST.NOBODY")`
	refs, err := Analyze(script, HostA, sqlast.Exasol, KnownObjects{})
	require.NoError(t, err)
	assert.Empty(t, refs)
}
