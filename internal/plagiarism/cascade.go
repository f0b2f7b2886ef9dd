package plagiarism

import (
	"github.com/RishiKendai/quill/internal/fingerprint"
)

const (
	fingerprintWeight = 0.4
	tilingWeight      = 0.6
)

// Text is a document's raw text with its fingerprint set
type Text struct {
	Raw   string
	Set   *fingerprint.FingerprintSet
	words []string
}

// Words returns the normalized words of the text
func (t *Text) Words() []string {
	if t.words == nil {
		t.words = fingerprint.SplitIntoWords(fingerprint.NormalizeText(t.Raw))
	}
	return t.words
}

// CascadeResult holds the result of the cascade pipeline
type CascadeResult struct {
	Matches          []fingerprint.Match
	Shared           int
	FingerprintScore float64
	TilingScore      float64
	ShortCircuited   bool
	FinalScore       float64
}

// CascadePipeline compares two texts. Order: verified fingerprints → GST.
// Pairs whose fingerprint score stays under cutoff skip the tiling layer.
func CascadePipeline(a, b *Text, cutoff float64) *CascadeResult {
	result := &CascadeResult{}

	// 1. Fingerprint (coarsest, fastest)
	result.Matches = fingerprint.FindMatchingFingerprints(a.Set, b.Set)
	result.Shared, result.FingerprintScore = FingerprintSimilarity(result.Matches, a.Set, b.Set)

	if result.Shared == 0 || result.FingerprintScore < cutoff {
		result.ShortCircuited = true
		result.FinalScore = result.FingerprintScore * fingerprintWeight
		return result
	}

	// 2. Token (GST)
	result.TilingScore = TilingScore(a.Words(), b.Words(), a.Set.NgramSize)
	result.FinalScore = result.FingerprintScore*fingerprintWeight + result.TilingScore*tilingWeight

	return result
}

// FingerprintSimilarity returns the number of distinct verified shared
// n-grams and shared / min(distinct_A, distinct_B)
func FingerprintSimilarity(matches []fingerprint.Match, a, b *fingerprint.FingerprintSet) (int, float64) {
	if len(matches) == 0 {
		return 0, 0.0
	}

	shared := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		shared[m.Doc1Fingerprint.Text] = struct{}{}
	}

	minTotal := min(distinctTexts(a), distinctTexts(b))
	if minTotal == 0 {
		return len(shared), 0.0
	}

	return len(shared), min(1.0, float64(len(shared))/float64(minTotal))
}

func distinctTexts(set *fingerprint.FingerprintSet) int {
	if set == nil {
		return 0
	}
	texts := make(map[string]struct{}, len(set.Fingerprints))
	for _, fp := range set.Fingerprints {
		texts[fp.Text] = struct{}{}
	}
	return len(texts)
}
