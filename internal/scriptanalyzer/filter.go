package scriptanalyzer

import (
	"sort"
	"strings"

	"github.com/lineagehub/lineage/internal/model"
	"github.com/lineagehub/lineage/internal/sqlast"
)

// KnownObjects is the schema-qualified object id set ("SCHEMA.NAME") the
// extractor already knows about, used to resolve unqualified or
// ambiguously-qualified references recovered from embedded script SQL.
type KnownObjects map[string]bool

// FilterReferences resolves each extracted reference against the known
// object set. A reference whose "{schema}.{name}" exactly matches a known
// id passes unchanged. Otherwise the known ids are searched for one ending
// in ".{name}"; the first match (in sorted id order, for determinism)
// supplies the schema the reference is rewritten to. DDL references pass
// through regardless, since the script is itself the authority on objects
// it creates or drops. Everything else is discarded as unresolvable noise.
func FilterReferences(refs []sqlast.TableReference, known KnownObjects) []sqlast.TableReference {
	bySuffix := map[string][]string{}
	for obj := range known {
		name := obj
		if i := strings.LastIndexByte(obj, '.'); i >= 0 {
			name = obj[i+1:]
		}
		bySuffix[name] = append(bySuffix[name], obj)
	}
	for _, ids := range bySuffix {
		sort.Strings(ids)
	}

	var out []sqlast.TableReference
	for _, ref := range refs {
		if ref.ReferenceKind == model.RefDDL {
			out = append(out, ref)
			continue
		}
		id := ref.Name
		if ref.Schema != "" {
			id = ref.Schema + "." + ref.Name
		}
		if known[id] {
			out = append(out, ref)
			continue
		}
		if matches := bySuffix[ref.Name]; len(matches) > 0 {
			match := matches[0]
			if i := strings.LastIndexByte(match, '.'); i >= 0 {
				ref.Schema = match[:i]
			}
			out = append(out, ref)
		}
	}
	return out
}
