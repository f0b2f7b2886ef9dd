package fingerprint

import (
	"fmt"
	"strings"
)

// GenerateNgrams slides a window of n words over the normalized text. Texts
// shorter than n words produce a single n-gram holding every word.
func GenerateNgrams(text string, n int) ([]NGram, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNgramSize, n)
	}
	return buildNgrams(SplitIntoWords(NormalizeText(text)), n), nil
}

func buildNgrams(words []string, n int) []NGram {
	effectiveN := min(n, len(words))
	if effectiveN == 0 {
		return []NGram{}
	}

	ngrams := make([]NGram, 0, len(words)-effectiveN+1)
	for i := 0; i <= len(words)-effectiveN; i++ {
		ngrams = append(ngrams, NGram{
			Text:       strings.Join(words[i:i+effectiveN], " "),
			WordOffset: i,
		})
	}
	return ngrams
}

// GuaranteeThreshold is the shortest shared word run that winnowing is
// guaranteed to report for the given sizes.
func GuaranteeThreshold(ngramSize, windowSize int) int {
	return windowSize + ngramSize - 1
}

// ValidateSizes checks n-gram and window sizes.
func ValidateSizes(ngramSize, windowSize int) error {
	if ngramSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidNgramSize, ngramSize)
	}
	if windowSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, windowSize)
	}
	return nil
}
