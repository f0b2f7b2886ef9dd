package fingerprint

import (
	"errors"
	"strings"
)

const (
	DefaultNgramSize  = 5
	DefaultWindowSize = 4
)

var (
	ErrInvalidNgramSize  = errors.New("ngram size must be greater than 0")
	ErrInvalidWindowSize = errors.New("window size must be greater than 0")
)

// NormalizedWord is a normalized token with its byte span [Start, End)
// in the original, non-normalized text.
type NormalizedWord struct {
	Word  string `json:"word"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// NGram is a run of consecutive normalized words joined by single spaces.
type NGram struct {
	Text       string `bson:"ngram" json:"ngram"`
	WordOffset int    `bson:"wordOffset" json:"wordOffset"`
}

// Words returns the words of the n-gram in order.
func (g NGram) Words() []string {
	return strings.Fields(g.Text)
}

// HashedNGram is an NGram with its hash. Position is the word offset of the
// n-gram's first word.
type HashedNGram struct {
	NGram    `bson:",inline"`
	Hash     uint32 `bson:"hash" json:"hash"`
	Position int    `bson:"position" json:"position"`
}

// Fingerprint is a hashed n-gram selected by winnowing.
type Fingerprint HashedNGram

// FingerprintSet holds the selected fingerprints of one document, ordered
// by ascending Position.
type FingerprintSet struct {
	DocumentID   string        `bson:"documentId" json:"documentId"`
	Fingerprints []Fingerprint `bson:"fingerprints" json:"fingerprints"`
	NgramSize    int           `bson:"ngramSize" json:"ngramSize"`
	WindowSize   int           `bson:"windowSize" json:"windowSize"`
	WordCount    int           `bson:"wordCount" json:"wordCount"`
	GeneratedAt  int64         `bson:"generatedAt" json:"generatedAt"`
}

// Len returns the number of fingerprints, treating a nil set as empty.
func (s *FingerprintSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Fingerprints)
}

// Match pairs two fingerprints whose hash and n-gram text are both equal.
type Match struct {
	Doc1Fingerprint Fingerprint `json:"doc1Fingerprint"`
	Doc2Fingerprint Fingerprint `json:"doc2Fingerprint"`
}

// Span is a byte range [Start, End) in a source text.
type Span struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}
