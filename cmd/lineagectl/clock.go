package main

import "time"

// generatedAtNow stamps an extraction run with the current instant in the
// same ISO-8601 shape the cache format's metadata.generated_at expects.
func generatedAtNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
