// Package utils provides small internal helpers shared across the
// evaluator: JSON rendering and truncation for log output, wall-clock
// timing of per-file evaluation, and a generic JSON POST helper for the
// remote embedder.
package utils
