// Package lineageerrors declares the error taxonomy shared by every
// component of the lineage system. Kinds are matched with their Is method,
// so callers never compare error strings.
package lineageerrors

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNotFound is returned when a requested object id does not resolve
	// against the loaded cache.
	ErrNotFound = errors.NewKind("object not found: %s")

	// ErrParseError wraps a SQL or embedded-script parse failure. Analyzers
	// catch this internally and fall back to regex extraction; it is only
	// surfaced to a caller that explicitly opts into strict parsing.
	ErrParseError = errors.NewKind("parse error in %s: %s")

	// ErrInvalidCache is raised synchronously by the cache loader when a
	// required section (metadata, objects, dependencies) is missing, or the
	// objects set is empty.
	ErrInvalidCache = errors.NewKind("invalid cache: %s")

	// ErrSourceUnavailable is raised by an extractor source when the
	// upstream system (database, blob store, code host) cannot be reached.
	// Retryable at the orchestration layer.
	ErrSourceUnavailable = errors.NewKind("source %s unavailable: %s")

	// ErrValidation is raised for malformed query input, such as a depth
	// argument outside its allowed bound.
	ErrValidation = errors.NewKind("invalid %s: %s")
)
