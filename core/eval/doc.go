// Package eval holds the evaluation model and the batch accountant that
// drives a file's records through normalization, extraction, and alignment
// before handing the aligned batch to the metric scorers.
//
// Malformed responses are the expected common case here, not an anomaly:
// the whole point is to measure how often generation follows the requested
// format. Response-side parse failures therefore become counts and empty
// placeholders, never errors. The single fatal condition is a reference
// field that fails to parse — references are pipeline-guaranteed
// well-formed, so a bad one means the evaluation harness itself is corrupt.
package eval
