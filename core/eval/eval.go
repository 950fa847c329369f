package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/queryopt/qseval/core/align"
	"github.com/queryopt/qseval/core/extract"
	"github.com/queryopt/qseval/core/normalize"
	"github.com/queryopt/qseval/internal/utils"
)

// Record is one evaluation unit: a trusted JSON-encoded reference array and
// the raw model response that was supposed to encode the same shape.
type Record struct {
	Reference string
	Response  string
}

// ReferenceItem is one element of a record's reference array.
type ReferenceItem struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

// AlignedBatch is the length-synchronized triple fed to the metric scorers.
// The three slices are always the same length; the accountant re-pads
// Predictions after every record.
type AlignedBatch struct {
	Queries     []string
	References  []string
	Predictions []string
}

// OverlapScorer computes aggregate n-gram/overlap statistics over a full
// prediction/reference batch.
type OverlapScorer interface {
	Name() string
	Score(predictions, references []string) (map[string]float64, error)
}

// SimilarityScorer computes one semantic-similarity score per
// prediction/reference pair.
type SimilarityScorer interface {
	Name() string
	Score(ctx context.Context, predictions, references []string) ([]float64, error)
}

// Report is the per-file evaluation result.
type Report struct {
	File      string
	Matched   int
	Unmatched int
	// Repaired counts Unmatched records whose items were still recovered
	// through lenient extraction.
	Repaired int
	Overlap  map[string]float64
	Semantic float64
	// Empty marks a file with zero rows; no metrics were computed.
	Empty bool

	overlapName  string
	semanticName string
}

// Accuracy returns the format-following accuracy in percent. Zero records
// yield zero.
func (r *Report) Accuracy() float64 {
	total := r.Matched + r.Unmatched
	if total == 0 {
		return 0
	}
	return 100 * float64(r.Matched) / float64(total)
}

// String renders the single output line for this report.
func (r *Report) String() string {
	if r.Empty {
		return fmt.Sprintf("%s: No rows to evaluate.", r.File)
	}
	return fmt.Sprintf("%s Format Following Accuracy: %.2f%% %s: %s %s: %.4f",
		r.File, r.Accuracy(), r.overlapName, utils.ToString(r.Overlap), r.semanticName, r.Semantic)
}

// Evaluator is the batch accountant. It owns the two injected scorers for
// its lifetime so expensive scorer setup happens once, not per file.
type Evaluator struct {
	overlap    OverlapScorer
	similarity SimilarityScorer
	extractor  *extract.Extractor
	logger     *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRepair enables lenient extraction: records that fail the strict parse
// get one retry through automatic JSON repair. Accuracy accounting is
// unaffected; only the recovered predictions change.
func WithRepair() Option {
	return func(e *Evaluator) {
		e.extractor = extract.New(extract.WithRepair())
	}
}

// New creates an Evaluator around the two metric scorers.
func New(overlap OverlapScorer, similarity SimilarityScorer, opts ...Option) *Evaluator {
	e := &Evaluator{
		overlap:    overlap,
		similarity: similarity,
		extractor:  extract.New(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateRecords processes one file's records in order and returns its
// report. A reference field that fails to parse aborts the whole file with
// an error; response-side failures are counted and padded, never raised.
func (e *Evaluator) EvaluateRecords(ctx context.Context, name string, records []Record) (*Report, error) {
	timer := utils.NewTimer()
	report := &Report{
		File:         name,
		overlapName:  e.overlap.Name(),
		semanticName: e.similarity.Name(),
	}
	var batch AlignedBatch

	for i, record := range records {
		var refs []ReferenceItem
		if err := json.Unmarshal([]byte(record.Reference), &refs); err != nil {
			return nil, fmt.Errorf("%s row %d: parse reference: %w", name, i, err)
		}
		for _, ref := range refs {
			batch.Queries = append(batch.Queries, strings.TrimSpace(ref.Query))
			batch.References = append(batch.References, ref.Summary)
		}

		normalized := normalize.Normalize(record.Response)
		result, err := e.extractor.Extract(normalized, len(refs))
		switch {
		case err != nil:
			report.Unmatched++
			e.logger.DebugContext(ctx, "response unparsed",
				slog.String("file", name),
				slog.Int("row", i),
				slog.String("normalized", utils.TruncateStringDefault(normalized)),
				slog.String("error", err.Error()),
			)
		case result.Repaired:
			report.Unmatched++
			report.Repaired++
			e.logger.DebugContext(ctx, "response recovered via repair",
				slog.String("file", name),
				slog.Int("row", i),
				slog.Int("items", len(result.Items)),
			)
		default:
			report.Matched++
		}
		for _, item := range result.Items {
			batch.Predictions = append(batch.Predictions, item.Summary)
		}

		batch.Predictions = align.Pad(batch.Predictions, len(batch.Queries))
	}

	if report.Matched+report.Unmatched == 0 {
		report.Empty = true
		return report, nil
	}

	overlap, err := e.overlap.Score(batch.Predictions, batch.References)
	if err != nil {
		return nil, fmt.Errorf("%s: %s scorer: %w", name, e.overlap.Name(), err)
	}
	report.Overlap = overlap

	scores, err := e.similarity.Score(ctx, batch.Predictions, batch.References)
	if err != nil {
		return nil, fmt.Errorf("%s: %s scorer: %w", name, e.similarity.Name(), err)
	}
	report.Semantic = mean(scores)

	timer.Stop()
	e.logger.InfoContext(ctx, "file evaluated",
		slog.String("file", name),
		slog.Int("rows", len(records)),
		slog.Int("matched", report.Matched),
		slog.Int("unmatched", report.Unmatched),
		slog.Duration("duration", timer.GetDuration()),
	)
	return report, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
