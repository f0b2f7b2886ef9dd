package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/RishiKendai/quill/internal/config"
	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/ingest"
	"github.com/RishiKendai/quill/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTIssuer:          "quill",
		RateLimitRPS:       100,
		MaxConcurrentScans: 2,
		ScanTimeout:        time.Minute,
		NgramSize:          fingerprint.DefaultNgramSize,
		WindowSize:         fingerprint.DefaultWindowSize,
		FingerprintCutoff:  0.05,
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validToken(t *testing.T) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"sub": "tester",
		"iss": "quill",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
}

func doRequest(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type fakeDocuments struct {
	docs map[string]*models.Document
	err  error
}

func (f *fakeDocuments) GetDocument(_ context.Context, id string) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[id], nil
}

type fakeReports struct {
	mu       sync.Mutex
	inserted []*models.ScanReport
	latest   map[string]*models.ScanReport
}

func (f *fakeReports) InsertScanReport(_ context.Context, report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, report)
	return nil
}

func (f *fakeReports) GetLatestScanReport(_ context.Context, id string) (*models.ScanReport, error) {
	return f.latest[id], nil
}

func (f *fakeReports) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeStatus struct {
	mu    sync.Mutex
	steps map[string]models.Step
}

func (f *fakeStatus) UpdateStatus(_ context.Context, id string, step models.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps[id] = step
	return nil
}

func (f *fakeStatus) GetStatus(_ context.Context, id string) (models.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if step, ok := f.steps[id]; ok {
		return step, nil
	}
	return models.StepIdle, nil
}

type fakeScanner struct {
	scanned chan string
	err     error
}

func (f *fakeScanner) Scan(_ context.Context, id string) (*models.ScanReport, error) {
	f.scanned <- id
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScanReport{DocumentID: id, Status: "completed"}, nil
}

type fakeIngest struct{}

func (fakeIngest) ProcessSubmission(_ context.Context, sub *models.Submission, _ string) (*models.Document, error) {
	if err := ingest.ValidateSubmission(sub); err != nil {
		return nil, err
	}
	if sub.DocumentID == "broken" {
		return nil, errors.New("mongo unavailable")
	}
	set, err := fingerprint.GenerateFingerprints(sub.Text, sub.DocumentID, fingerprint.DefaultNgramSize, fingerprint.DefaultWindowSize)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		DocumentID:   sub.DocumentID,
		OwnerID:      sub.OwnerID,
		Text:         sub.Text,
		ContentHash:  fingerprint.ContentHash(sub.Text),
		Fingerprints: set,
	}, nil
}

type testEnv struct {
	router  *gin.Engine
	reports *fakeReports
	status  *fakeStatus
	scanner *fakeScanner
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		reports: &fakeReports{latest: map[string]*models.ScanReport{}},
		status:  &fakeStatus{steps: map[string]models.Step{}},
		scanner: &fakeScanner{scanned: make(chan string, 4)},
	}
	docs := &fakeDocuments{docs: map[string]*models.Document{
		"doc-1": {DocumentID: "doc-1", OwnerID: "owner-1", Text: "some stored text"},
	}}

	env.router = SetupRoutes(ctx, cfg, Dependencies{
		Documents: docs,
		Reports:   env.reports,
		Status:    env.status,
		Scanner:   env.scanner,
		Ingest:    fakeIngest{},
	})
	return env
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
