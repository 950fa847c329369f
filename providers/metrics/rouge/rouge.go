package rouge

import (
	"fmt"
	"strings"
	"unicode"
)

// Score holds precision, recall and F-measure for one comparison.
type Score struct {
	Precision float64
	Recall    float64
	FMeasure  float64
}

// Scorer computes batch-averaged ROUGE-1, ROUGE-2 and ROUGE-L.
type Scorer struct{}

// New creates a ROUGE scorer.
func New() *Scorer {
	return &Scorer{}
}

// Name identifies the scorer in report output.
func (s *Scorer) Name() string {
	return "ROUGE"
}

// Score computes the three ROUGE variants over the batch and returns the
// F-measure of each, averaged across all prediction/reference pairs. The
// two slices must be the same length.
func (s *Scorer) Score(predictions, references []string) (map[string]float64, error) {
	if len(predictions) != len(references) {
		return nil, fmt.Errorf("got %d predictions for %d references", len(predictions), len(references))
	}
	result := map[string]float64{"rouge1": 0, "rouge2": 0, "rougeL": 0}
	if len(predictions) == 0 {
		return result, nil
	}
	for i := range predictions {
		pred := tokenize(predictions[i])
		ref := tokenize(references[i])
		result["rouge1"] += ngramScore(pred, ref, 1).FMeasure
		result["rouge2"] += ngramScore(pred, ref, 2).FMeasure
		result["rougeL"] += lcsScore(pred, ref).FMeasure
	}
	n := float64(len(predictions))
	for key := range result {
		result[key] /= n
	}
	return result, nil
}

// tokenize lowercases the text and splits it on any non-alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ngramScore computes n-gram overlap precision, recall and F-measure.
func ngramScore(prediction, reference []string, n int) Score {
	predGrams := countNgrams(prediction, n)
	refGrams := countNgrams(reference, n)

	var overlap, predTotal, refTotal int
	for gram, count := range predGrams {
		predTotal += count
		if refCount, ok := refGrams[gram]; ok {
			overlap += min(count, refCount)
		}
	}
	for _, count := range refGrams {
		refTotal += count
	}

	var precision, recall float64
	if predTotal > 0 {
		precision = float64(overlap) / float64(predTotal)
	}
	if refTotal > 0 {
		recall = float64(overlap) / float64(refTotal)
	}
	return Score{Precision: precision, Recall: recall, FMeasure: fMeasure(precision, recall)}
}

func countNgrams(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], "\x1f")]++
	}
	return grams
}

// lcsScore computes ROUGE-L from the longest common subsequence of the two
// token sequences.
func lcsScore(prediction, reference []string) Score {
	lcs := lcsLength(prediction, reference)

	var precision, recall float64
	if len(prediction) > 0 {
		precision = float64(lcs) / float64(len(prediction))
	}
	if len(reference) > 0 {
		recall = float64(lcs) / float64(len(reference))
	}
	return Score{Precision: precision, Recall: recall, FMeasure: fMeasure(precision, recall)}
}

// lcsLength uses the classic two-row dynamic program.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// fMeasure computes the harmonic mean of precision and recall.
func fMeasure(precision, recall float64) float64 {
	if precision+recall > 0 {
		return 2 * precision * recall / (precision + recall)
	}
	return 0
}
