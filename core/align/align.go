// Package align enforces length parity between predictions and references.
package align

// Pad appends empty strings to predictions until its length reaches n. It
// never truncates: over-length input is returned unchanged (the extractor's
// index bound prevents it upstream). Called after every record against the
// cumulative reference count, so alignment stays monotonic across a batch.
func Pad(predictions []string, n int) []string {
	for len(predictions) < n {
		predictions = append(predictions, "")
	}
	return predictions
}
