package plagiarism

import (
	"sort"

	"github.com/RishiKendai/quill/internal/fingerprint"
)

// Posting is one occurrence of a fingerprint in the corpus
type Posting struct {
	DocumentID  string
	Fingerprint fingerprint.Fingerprint
}

// CorpusIndex is a global inverted index hash → postings over many
// fingerprint sets. It is built once and then only read.
type CorpusIndex struct {
	postings map[uint32][]Posting
	sets     map[string]*fingerprint.FingerprintSet
}

func NewCorpusIndex() *CorpusIndex {
	return &CorpusIndex{
		postings: make(map[uint32][]Posting),
		sets:     make(map[string]*fingerprint.FingerprintSet),
	}
}

// Add indexes set, replacing an earlier set with the same document ID
func (ix *CorpusIndex) Add(set *fingerprint.FingerprintSet) {
	if set == nil {
		return
	}
	if _, exists := ix.sets[set.DocumentID]; exists {
		ix.remove(set.DocumentID)
	}

	ix.sets[set.DocumentID] = set
	for _, fp := range set.Fingerprints {
		ix.postings[fp.Hash] = append(ix.postings[fp.Hash], Posting{
			DocumentID:  set.DocumentID,
			Fingerprint: fp,
		})
	}
}

func (ix *CorpusIndex) remove(documentID string) {
	for _, fp := range ix.sets[documentID].Fingerprints {
		bucket := ix.postings[fp.Hash]
		kept := bucket[:0]
		for _, p := range bucket {
			if p.DocumentID != documentID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(ix.postings, fp.Hash)
		} else {
			ix.postings[fp.Hash] = kept
		}
	}
	delete(ix.sets, documentID)
}

// Set returns the indexed set of documentID
func (ix *CorpusIndex) Set(documentID string) (*fingerprint.FingerprintSet, bool) {
	set, ok := ix.sets[documentID]
	return set, ok
}

// Len returns the number of indexed documents
func (ix *CorpusIndex) Len() int {
	return len(ix.sets)
}

// Candidate is an indexed document sharing verified n-grams with a query
type Candidate struct {
	DocumentID string
	Shared     int // distinct shared n-grams
}

// Candidates resolves the query's fingerprints bucket by bucket and returns
// the documents sharing at least minShared distinct n-grams with it, ordered
// by Shared descending then DocumentID. The query's own document is skipped.
func (ix *CorpusIndex) Candidates(query *fingerprint.FingerprintSet, minShared int) []Candidate {
	candidates := make([]Candidate, 0)
	if query.Len() == 0 {
		return candidates
	}

	shared := make(map[string]map[string]struct{})
	for _, fp := range query.Fingerprints {
		for _, p := range ix.postings[fp.Hash] {
			if p.DocumentID == query.DocumentID || p.Fingerprint.Text != fp.Text {
				continue
			}
			texts, ok := shared[p.DocumentID]
			if !ok {
				texts = make(map[string]struct{})
				shared[p.DocumentID] = texts
			}
			texts[fp.Text] = struct{}{}
		}
	}

	for documentID, texts := range shared {
		if len(texts) >= minShared {
			candidates = append(candidates, Candidate{DocumentID: documentID, Shared: len(texts)})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Shared != candidates[j].Shared {
			return candidates[i].Shared > candidates[j].Shared
		}
		return candidates[i].DocumentID < candidates[j].DocumentID
	})

	return candidates
}
