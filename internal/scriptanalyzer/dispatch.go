package scriptanalyzer

import (
	"github.com/lineagehub/lineage/internal/sqlast"
)

// Host identifies which embedded scripting language a UDF body is written
// in.
type Host int

const (
	HostA Host = iota // dynamic scripting language used for UDFs
	HostB             // general-purpose scripting language
)

// Analyze extracts every embedded SQL string from script, parses each one
// with dialect d, and returns the deduplicated, known-objects-filtered set
// of table references the script's SQL touches.
func Analyze(script string, host Host, d sqlast.Dialect, known KnownObjects) ([]sqlast.TableReference, error) {
	var statements []string
	switch host {
	case HostA:
		statements = ExtractHostA(script)
	case HostB:
		statements = ExtractHostB(script)
	}

	seen := map[[3]string]bool{}
	var all []sqlast.TableReference
	for _, stmt := range statements {
		refs, err := sqlast.Analyze(stmt, d, sqlast.Options{})
		if err != nil {
			continue // a single malformed extracted fragment must not fail the whole script
		}
		for _, r := range refs {
			key := [3]string{r.Schema, r.Name, string(r.ReferenceKind)}
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, r)
		}
	}
	return FilterReferences(all, known), nil
}
