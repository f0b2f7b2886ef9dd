package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashBase is the polynomial base; arithmetic wraps modulo 2^32.
const hashBase uint32 = 31

// ComputeHash is a case-sensitive polynomial hash over the code points of s,
// h = h*31 + r with uint32 wraparound. The empty string hashes to 0.
func ComputeHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*hashBase + uint32(r)
	}
	return h
}

// ComputeNgramHash hashes words in order. Words are joined by a single space,
// which never occurs inside a normalized word.
func ComputeNgramHash(words []string) uint32 {
	return ComputeHash(strings.Join(words, " "))
}

// GenerateNgramHashes hashes every n-gram of text.
func GenerateNgramHashes(text string, n int) ([]HashedNGram, error) {
	ngrams, err := GenerateNgrams(text, n)
	if err != nil {
		return nil, err
	}
	return hashNgrams(ngrams), nil
}

func hashNgrams(ngrams []NGram) []HashedNGram {
	hashes := make([]HashedNGram, len(ngrams))
	for i, g := range ngrams {
		hashes[i] = HashedNGram{
			NGram:    g,
			Hash:     ComputeHash(g.Text),
			Position: g.WordOffset,
		}
	}
	return hashes
}

// ContentHash returns the hex sha256 of text, used to detect changed
// documents.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
