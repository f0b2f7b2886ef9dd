package plagiarism

import (
	"testing"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/stretchr/testify/assert"
)

func Test_TilingScore(t *testing.T) {
	words := func(s string) []string { return fingerprint.SplitIntoWords(s) }

	var cases = []struct {
		name      string
		a, b      string
		minLength int
		expected  float64
	}{
		{name: "identical", a: "a b c d e f", b: "a b c d e f", minLength: 3, expected: 1.0},
		{name: "disjoint", a: "a b c", b: "x y z", minLength: 1, expected: 0.0},
		{name: "below min length", a: "a b x c d", b: "a b y c d", minLength: 3, expected: 0.0},
		{name: "partial", a: "a b c d x", b: "q a b c d", minLength: 3, expected: 0.8},
		{name: "reordered blocks", a: "a b c x y z", b: "x y z a b c", minLength: 3, expected: 1.0},
		{name: "empty", a: "", b: "a b c", minLength: 1, expected: 0.0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.expected, TilingScore(words(c.a), words(c.b), c.minLength), 1e-9)
		})
	}
}

func Test_CascadeNearDuplicate(t *testing.T) {
	a := &Text{Raw: essay, Set: mustSet(t, "a", essay)}
	b := &Text{Raw: essayRewrite, Set: mustSet(t, "b", essayRewrite)}

	result := CascadePipeline(a, b, 0.05)

	assert.False(t, result.ShortCircuited)
	assert.NotEmpty(t, result.Matches)
	assert.Greater(t, result.Shared, 0)
	assert.Greater(t, result.FingerprintScore, 0.5)
	// 26 of 29 words tile on each side
	assert.InDelta(t, 52.0/58.0, result.TilingScore, 1e-9)
	assert.InDelta(t, result.FingerprintScore*fingerprintWeight+result.TilingScore*tilingWeight, result.FinalScore, 1e-9)
}

func Test_CascadeShortCircuits(t *testing.T) {
	a := &Text{Raw: essay, Set: mustSet(t, "a", essay)}
	c := &Text{Raw: recipe, Set: mustSet(t, "c", recipe)}

	result := CascadePipeline(a, c, 0.05)

	assert.True(t, result.ShortCircuited)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 0.0, result.TilingScore)
	assert.Equal(t, 0.0, result.FinalScore)
}

func Test_CascadeCutoff(t *testing.T) {
	a := &Text{Raw: essay, Set: mustSet(t, "a", essay)}
	b := &Text{Raw: essayRewrite, Set: mustSet(t, "b", essayRewrite)}

	result := CascadePipeline(a, b, 1.1)

	assert.True(t, result.ShortCircuited)
	assert.Equal(t, 0.0, result.TilingScore)
	assert.InDelta(t, result.FingerprintScore*fingerprintWeight, result.FinalScore, 1e-9)
}

func Test_FingerprintSimilarity(t *testing.T) {
	a := &fingerprint.FingerprintSet{Fingerprints: []fingerprint.Fingerprint{fp("x", 1, 0), fp("y", 2, 1), fp("x", 1, 5)}}
	b := &fingerprint.FingerprintSet{Fingerprints: []fingerprint.Fingerprint{fp("x", 1, 0), fp("z", 3, 1), fp("w", 4, 2), fp("v", 5, 3)}}

	matches := fingerprint.FindMatchingFingerprints(a, b)
	shared, score := FingerprintSimilarity(matches, a, b)

	assert.Len(t, matches, 2)
	assert.Equal(t, 1, shared)
	assert.InDelta(t, 0.5, score, 1e-9)

	shared, score = FingerprintSimilarity(nil, a, b)
	assert.Equal(t, 0, shared)
	assert.Equal(t, 0.0, score)
}

func Test_TextWordsNormalized(t *testing.T) {
	text := &Text{Raw: "Hello, World!  It's here."}
	assert.Equal(t, []string{"hello", "world", "it's", "here"}, text.Words())
}
