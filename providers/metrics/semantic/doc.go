// Package semantic implements the per-item similarity scorer. Each
// prediction/reference pair is embedded and scored by cosine similarity;
// the batch accountant averages the per-item scores into the report's
// scalar.
//
// Two embedders are provided: [TFEmbedder] builds term-frequency vectors
// locally and needs no network, while [RESTEmbedder] calls an OpenAI-style
// embeddings endpoint for model-based vectors.
package semantic
