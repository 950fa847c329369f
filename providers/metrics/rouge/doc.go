// Package rouge implements the overlap scorer: ROUGE-1 and ROUGE-2
// (n-gram overlap) and ROUGE-L (longest common subsequence), averaged over
// a prediction/reference batch. Each variant reports the F-measure of its
// precision and recall, matching the conventional ROUGE presentation.
package rouge
