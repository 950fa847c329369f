package rouge

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreIdenticalTexts(t *testing.T) {
	s := New()
	result, err := s.Score([]string{"the cat sat on the mat"}, []string{"the cat sat on the mat"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, key := range []string{"rouge1", "rouge2", "rougeL"} {
		if !almostEqual(result[key], 1) {
			t.Errorf("%s = %v, want 1", key, result[key])
		}
	}
}

func TestScoreDisjointTexts(t *testing.T) {
	s := New()
	result, err := s.Score([]string{"aaa bbb"}, []string{"ccc ddd"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, key := range []string{"rouge1", "rouge2", "rougeL"} {
		if !almostEqual(result[key], 0) {
			t.Errorf("%s = %v, want 0", key, result[key])
		}
	}
}

func TestScorePartialOverlap(t *testing.T) {
	s := New()
	result, err := s.Score([]string{"the cat"}, []string{"the cat sat"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// Unigrams: precision 1, recall 2/3 -> F1 0.8. Bigrams: precision 1,
	// recall 1/2 -> F1 2/3. LCS of length 2 matches the unigram case.
	if !almostEqual(result["rouge1"], 0.8) {
		t.Errorf("rouge1 = %v, want 0.8", result["rouge1"])
	}
	if !almostEqual(result["rouge2"], 2.0/3.0) {
		t.Errorf("rouge2 = %v, want 2/3", result["rouge2"])
	}
	if !almostEqual(result["rougeL"], 0.8) {
		t.Errorf("rougeL = %v, want 0.8", result["rougeL"])
	}
}

func TestScoreAveragesOverBatch(t *testing.T) {
	s := New()
	result, err := s.Score(
		[]string{"exact match", ""},
		[]string{"exact match", "missed entirely"},
	)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(result["rouge1"], 0.5) {
		t.Errorf("rouge1 = %v, want 0.5", result["rouge1"])
	}
}

func TestScoreEmptyPairProducesZeroNotNaN(t *testing.T) {
	s := New()
	result, err := s.Score([]string{""}, []string{""})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for key, value := range result {
		if math.IsNaN(value) {
			t.Errorf("%s is NaN", key)
		}
		if !almostEqual(value, 0) {
			t.Errorf("%s = %v, want 0", key, value)
		}
	}
}

func TestScoreLengthMismatch(t *testing.T) {
	s := New()
	if _, err := s.Score([]string{"a"}, []string{"a", "b"}); err == nil {
		t.Error("Score accepted mismatched batch lengths")
	}
}

func TestScoreEmptyBatch(t *testing.T) {
	s := New()
	result, err := s.Score(nil, nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for key, value := range result {
		if value != 0 {
			t.Errorf("%s = %v, want 0", key, value)
		}
	}
}

func TestTokenizeNormalizesCaseAndPunctuation(t *testing.T) {
	got := tokenize("The cat, sat - on THE mat!")
	want := []string{"the", "cat", "sat", "on", "the", "mat"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLcsLength(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, 3},
		{[]string{"a", "b", "c"}, []string{"a", "x", "c"}, 2},
		{[]string{"a", "b"}, []string{"c", "d"}, 0},
		{nil, []string{"a"}, 0},
		{[]string{"a", "c", "b", "d"}, []string{"c", "a", "d", "b"}, 2},
	}
	for _, tt := range tests {
		if got := lcsLength(tt.a, tt.b); got != tt.want {
			t.Errorf("lcsLength(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
