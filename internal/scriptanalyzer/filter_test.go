package scriptanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehub/lineage/internal/model"
	"github.com/lineagehub/lineage/internal/sqlast"
)

func TestFilterReferencesKeepsExactKnownMatch(t *testing.T) {
	refs := []sqlast.TableReference{{Schema: "SALES", Name: "ORDERS", ReferenceKind: model.RefSelect}}
	known := KnownObjects{"SALES.ORDERS": true}
	out := FilterReferences(refs, known)
	assert.Len(t, out, 1)
}

func TestFilterReferencesRewritesUnqualifiedBySuffix(t *testing.T) {
	refs := []sqlast.TableReference{{Schema: "", Name: "ORDERS", ReferenceKind: model.RefSelect}}
	known := KnownObjects{"SALES.ORDERS": true}
	out := FilterReferences(refs, known)
	require.Len(t, out, 1)
	assert.Equal(t, "SALES", out[0].Schema)
}

func TestFilterReferencesTakesFirstSuffixMatchDeterministically(t *testing.T) {
	refs := []sqlast.TableReference{{Schema: "", Name: "ORDERS", ReferenceKind: model.RefSelect}}
	known := KnownObjects{"SALES.ORDERS": true, "ARCHIVE.ORDERS": true}
	out := FilterReferences(refs, known)
	require.Len(t, out, 1)
	assert.Equal(t, "ARCHIVE", out[0].Schema)
}

func TestFilterReferencesAlwaysKeepsDDL(t *testing.T) {
	refs := []sqlast.TableReference{{Schema: "STG", Name: "TMP", ReferenceKind: model.RefDDL}}
	out := FilterReferences(refs, KnownObjects{})
	assert.Len(t, out, 1)
}

func TestFilterReferencesDiscardsUnresolvable(t *testing.T) {
	refs := []sqlast.TableReference{{Schema: "", Name: "GHOST", ReferenceKind: model.RefSelect}}
	out := FilterReferences(refs, KnownObjects{"SALES.ORDERS": true})
	assert.Empty(t, out)
}
