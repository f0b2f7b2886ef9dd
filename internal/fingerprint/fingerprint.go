package fingerprint

import "time"

// GenerateFingerprints builds the winnowed fingerprint set of text.
func GenerateFingerprints(text, documentID string, ngramSize, windowSize int) (*FingerprintSet, error) {
	if err := ValidateSizes(ngramSize, windowSize); err != nil {
		return nil, err
	}

	words := SplitIntoWords(NormalizeText(text))
	hashes := hashNgrams(buildNgrams(words, ngramSize))

	return &FingerprintSet{
		DocumentID:   documentID,
		Fingerprints: winnow(hashes, windowSize),
		NgramSize:    ngramSize,
		WindowSize:   windowSize,
		WordCount:    len(words),
		GeneratedAt:  time.Now().UnixMilli(),
	}, nil
}

// FindMatchingFingerprints returns every pair of fingerprints from a and b
// with equal hash and equal n-gram text. The order of matches is unspecified.
func FindMatchingFingerprints(a, b *FingerprintSet) []Match {
	matches := make([]Match, 0)
	if a.Len() == 0 || b.Len() == 0 {
		return matches
	}

	byHash := make(map[uint32][]Fingerprint, len(a.Fingerprints))
	for _, fp := range a.Fingerprints {
		byHash[fp.Hash] = append(byHash[fp.Hash], fp)
	}

	for _, fpB := range b.Fingerprints {
		for _, fpA := range byHash[fpB.Hash] {
			// equal hashes of different n-grams are collisions
			if fpA.Text != fpB.Text {
				continue
			}
			matches = append(matches, Match{
				Doc1Fingerprint: fpA,
				Doc2Fingerprint: fpB,
			})
		}
	}

	return matches
}

// Side selects which document of a Match to project.
type Side int

const (
	SideFirst Side = iota
	SideSecond
)

// MatchSpans maps one side of matches onto byte spans of the source text
// whose word positions are given. Each run of consecutive matched words
// becomes one span; spans are ordered by Start.
func MatchSpans(positions []NormalizedWord, matches []Match, ngramSize int, side Side) []Span {
	if len(positions) == 0 || len(matches) == 0 || ngramSize <= 0 {
		return []Span{}
	}

	covered := make([]bool, len(positions))
	for _, m := range matches {
		fp := m.Doc1Fingerprint
		if side == SideSecond {
			fp = m.Doc2Fingerprint
		}
		last := min(fp.WordOffset+ngramSize, len(positions))
		for i := max(fp.WordOffset, 0); i < last; i++ {
			covered[i] = true
		}
	}

	spans := make([]Span, 0)
	for i := 0; i < len(positions); i++ {
		if !covered[i] {
			continue
		}
		j := i
		for j+1 < len(positions) && covered[j+1] {
			j++
		}
		spans = append(spans, Span{Start: positions[i].Start, End: positions[j].End})
		i = j
	}

	return spans
}
