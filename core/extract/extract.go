// Package extract turns normalized array-of-objects text into prediction
// items. Parsing is strict by default: text the normalizer could not repair
// into valid JSON yields a [*ParseError], which callers count rather than
// propagate. An optional lenient mode retries a failed parse through
// automatic JSON repair, mirroring the strict-then-repair ladder used for
// structured LLM output elsewhere in the ecosystem.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// Prediction is one recovered array element. Fallback records that the
// element carried no readable summary and the empty string was substituted,
// keeping the per-element recovery policy visible instead of silently
// swallowed.
type Prediction struct {
	Summary  string
	Fallback bool
}

// Result is the outcome of a successful extraction. Repaired is true when
// the strict parse failed and the items were recovered only through
// automatic JSON repair; such records still count against format-following
// accuracy.
type Result struct {
	Items    []Prediction
	Repaired bool
}

// ParseError reports that the normalized text could not be parsed as an
// array of objects.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response is not a parseable array: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor parses normalized response text. The zero value is strict;
// construct with [New] and [WithRepair] for lenient mode.
type Extractor struct {
	repair bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRepair enables a second-chance parse through jsonrepair when the
// strict parse fails. Records recovered this way are flagged in the Result.
func WithRepair() Option {
	return func(x *Extractor) {
		x.repair = true
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	x := &Extractor{}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract parses normalized text as an array of objects and recovers the
// summary field of each element. At most expectedCount items are returned;
// extra elements are dropped because the reference length is authoritative.
// Elements without a readable summary become empty-string fallbacks rather
// than failing the record. A non-nil error means the whole record is
// unparsed and contributes zero items.
func (x *Extractor) Extract(normalized string, expectedCount int) (Result, error) {
	var elements []any
	if err := json.Unmarshal([]byte(normalized), &elements); err != nil {
		if !x.repair {
			return Result{}, &ParseError{Err: err}
		}
		repaired, repairErr := jsonrepair.JSONRepair(normalized)
		if repairErr != nil {
			return Result{}, &ParseError{Err: err}
		}
		if err := json.Unmarshal([]byte(repaired), &elements); err != nil {
			return Result{}, &ParseError{Err: err}
		}
		return Result{Items: x.collect(elements, expectedCount), Repaired: true}, nil
	}
	return Result{Items: x.collect(elements, expectedCount)}, nil
}

func (x *Extractor) collect(elements []any, expectedCount int) []Prediction {
	items := make([]Prediction, 0, len(elements))
	for i, element := range elements {
		if i >= expectedCount {
			break
		}
		items = append(items, summaryOf(element))
	}
	return items
}

// summaryOf reads the summary field of one array element. String values
// pass through; other non-null values are rendered to text the way a loose
// consumer would stringify them; anything else is an empty fallback.
func summaryOf(element any) Prediction {
	obj, ok := element.(map[string]any)
	if !ok {
		return Prediction{Fallback: true}
	}
	value, ok := obj["summary"]
	if !ok || value == nil {
		return Prediction{Fallback: true}
	}
	switch v := value.(type) {
	case string:
		return Prediction{Summary: v}
	default:
		return Prediction{Summary: fmt.Sprintf("%v", v)}
	}
}
