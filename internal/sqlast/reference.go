package sqlast

import "github.com/lineagehub/lineage/internal/model"

// TableReference is a single table-reference node surfaced by the
// analyzer, after CTE exclusion and lexical filtering.
type TableReference struct {
	Schema        string
	Name          string
	ReferenceKind model.ReferenceKind
	Alias         string
}

// dedupeKey identifies a reference for ordered de-duplication: same
// (schema, name, reference_kind) collapses to one entry, first wins.
func (r TableReference) dedupeKey() [3]string {
	return [3]string{r.Schema, r.Name, string(r.ReferenceKind)}
}

// dedupeOrdered removes duplicate references while preserving first-seen
// order.
func dedupeOrdered(refs []TableReference) []TableReference {
	seen := make(map[[3]string]bool, len(refs))
	out := make([]TableReference, 0, len(refs))
	for _, r := range refs {
		k := r.dedupeKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
