package plagiarism

import (
	"testing"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/stretchr/testify/require"
)

const (
	essay = "Winnowing selects a subset of hashes from every document so that any " +
		"sufficiently long shared passage between two texts is detected while the " +
		"number of stored fingerprints stays small"
	essayRewrite = "Winnowing picks a subset of hashes from every document so that any " +
		"sufficiently long shared passage between two texts is detected while the " +
		"number of stored fingerprints stays low"
	recipe = "Fresh bread needs flour, water, salt and yeast; the dough should rest " +
		"overnight in a cool kitchen before it is shaped, baked and finally cooled " +
		"on a wire rack for an hour"
)

func mustSet(t *testing.T, documentID, text string) *fingerprint.FingerprintSet {
	t.Helper()
	set, err := fingerprint.GenerateFingerprints(text, documentID, fingerprint.DefaultNgramSize, fingerprint.DefaultWindowSize)
	require.NoError(t, err)
	return set
}

func fp(text string, hash uint32, position int) fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		NGram:    fingerprint.NGram{Text: text, WordOffset: position},
		Hash:     hash,
		Position: position,
	}
}
