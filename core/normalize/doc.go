// Package normalize repairs raw model generations into syntactically
// parseable array-of-objects text. The generations were asked for a JSON
// array of {query, summary} objects but routinely arrive wrapped in prompt
// echoes, code fences, HTML, or with broken quoting and missing separators.
//
// The repair logic is an ordered pipeline of small named rules, each a pure
// string transform. Order matters: later rules assume earlier ones have run
// (the comma-insertion rule, for example, expects newlines to already be
// collapsed). The pipeline is a best-effort recovery pass, not a grammar —
// its output may still fail to parse, in which case the extractor reports
// the record as unparsed.
package normalize
