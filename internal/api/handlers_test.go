package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	original = "Winnowing selects a subset of hashes from every document so that any " +
		"sufficiently long shared passage between two texts is detected while the " +
		"number of stored fingerprints stays small"
	nearDuplicate = "Winnowing picks a subset of hashes from every document so that any " +
		"sufficiently long shared passage between two texts is detected while the " +
		"number of stored fingerprints stays low"
	unrelated = "Fresh bread needs flour, water, salt and yeast; the dough should rest " +
		"overnight in a cool kitchen before it is shaped, baked and finally cooled " +
		"on a wire rack for an hour"
)

func Test_Health(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[gin.H](t, w)["status"])
}

func Test_Fingerprint(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/fingerprints", validToken(t), models.FingerprintRequest{
		DocumentID: "doc1",
		Text:       "The quick brown fox jumps over the lazy dog",
	})
	require.Equal(t, http.StatusOK, w.Code)

	set := decode[fingerprint.FingerprintSet](t, w)
	assert.Equal(t, "doc1", set.DocumentID)
	assert.Equal(t, 9, set.WordCount)
	assert.Equal(t, fingerprint.DefaultNgramSize, set.NgramSize)
	require.Len(t, set.Fingerprints, 2)
	assert.Equal(t, "brown fox jumps over the", set.Fingerprints[0].Text)
	assert.Equal(t, 2, set.Fingerprints[0].Position)
}

func Test_FingerprintInvalidSizes(t *testing.T) {
	env := newTestEnv(t, testConfig())

	var cases = []struct {
		name string
		req  models.FingerprintRequest
	}{
		{name: "negative ngram", req: models.FingerprintRequest{Text: "a b c", NgramSize: -1}},
		{name: "negative window", req: models.FingerprintRequest{Text: "a b c", WindowSize: -4}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doRequest(env.router, http.MethodPost, "/api/v1/fingerprints", validToken(t), c.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_SIZE", decode[ErrorResponse](t, w).Code)
		})
	}
}

func Test_FingerprintMalformedBody(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/fingerprints", validToken(t), []int{1, 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[ErrorResponse](t, w).Code)
}

func Test_CompareNearDuplicate(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/compare", validToken(t), models.CompareRequest{
		TextA: original,
		TextB: nearDuplicate,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.CompareResponse](t, w)
	require.NotEmpty(t, resp.Matches)
	assert.Greater(t, resp.FingerprintScore, 0.0)
	assert.Greater(t, resp.TilingScore, 0.0)
	assert.Greater(t, resp.FinalScore, 0.0)
	assert.NotEmpty(t, resp.SpansA)
	assert.NotEmpty(t, resp.SpansB)
	for _, m := range resp.Matches {
		assert.Equal(t, m.Doc1Fingerprint.Text, m.Doc2Fingerprint.Text)
	}
}

func Test_CompareUnrelated(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/compare", validToken(t), models.CompareRequest{
		TextA: original,
		TextB: unrelated,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.CompareResponse](t, w)
	assert.Empty(t, resp.Matches)
	assert.Equal(t, 0.0, resp.FinalScore)
	assert.Equal(t, "clean", resp.Risk)
}

func Test_IngestDocument(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/documents", validToken(t), models.Submission{
		DocumentID: "doc-9",
		OwnerID:    "owner-1",
		Text:       original,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "doc-9", body["documentId"])
	assert.Equal(t, fingerprint.ContentHash(original), body["contentHash"])
	assert.Greater(t, body["fingerprints"], 0.0)
}

func Test_IngestDocumentErrors(t *testing.T) {
	env := newTestEnv(t, testConfig())

	var cases = []struct {
		name   string
		sub    models.Submission
		status int
		code   string
	}{
		{name: "missing owner", sub: models.Submission{DocumentID: "d"}, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "blank owner", sub: models.Submission{DocumentID: "d", OwnerID: " "}, status: http.StatusBadRequest, code: "INVALID_SUBMISSION"},
		{name: "store failure", sub: models.Submission{DocumentID: "broken", OwnerID: "o"}, status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doRequest(env.router, http.MethodPost, "/api/v1/documents", validToken(t), c.sub)
			assert.Equal(t, c.status, w.Code)
			assert.Equal(t, c.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func Test_ScanAccepted(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/scan", validToken(t), models.ScanRequest{DocumentID: "doc-1"})
	require.Equal(t, http.StatusAccepted, w.Code)

	resp := decode[models.ScanResponse](t, w)
	assert.Equal(t, models.StepInitiated, resp.Step)
	assert.Equal(t, "doc-1", resp.DocumentID)

	select {
	case id := <-env.scanner.scanned:
		assert.Equal(t, "doc-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("scan was not started")
	}
	assert.Equal(t, 0, env.reports.insertedCount())
}

func Test_ScanFailureStoresReport(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.scanner.err = errors.New("boom")

	w := doRequest(env.router, http.MethodPost, "/api/v1/scan", validToken(t), models.ScanRequest{DocumentID: "doc-1"})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool { return env.reports.insertedCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	env.reports.mu.Lock()
	defer env.reports.mu.Unlock()
	assert.Equal(t, "failed", env.reports.inserted[0].Status)
	assert.Equal(t, "boom", env.reports.inserted[0].Error)
	assert.Equal(t, "owner-1", env.reports.inserted[0].OwnerID)
}

func Test_ScanUnknownDocument(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := doRequest(env.router, http.MethodPost, "/api/v1/scan", validToken(t), models.ScanRequest{DocumentID: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func Test_ScanStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.status.steps["doc-1"] = models.StepMatching

	w := doRequest(env.router, http.MethodGet, "/api/v1/scan/doc-1/status", validToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StepMatching, decode[models.ScanResponse](t, w).Step)

	w = doRequest(env.router, http.MethodGet, "/api/v1/scan/other/status", validToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StepIdle, decode[models.ScanResponse](t, w).Step)
}

func Test_ScanReport(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.reports.latest["doc-1"] = &models.ScanReport{
		DocumentID: "doc-1",
		Status:     "completed",
		Similarity: 0.7,
		Risk:       "highly suspicious",
	}

	w := doRequest(env.router, http.MethodGet, "/api/v1/scan/doc-1", validToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.ScanReport](t, w)
	assert.Equal(t, "highly suspicious", report.Risk)
	assert.InDelta(t, 0.7, report.Similarity, 1e-9)

	w = doRequest(env.router, http.MethodGet, "/api/v1/scan/nope", validToken(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", decode[ErrorResponse](t, w).Code)
}
