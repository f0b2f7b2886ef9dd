package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RishiKendai/quill/internal/config"
	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/ingest"
	"github.com/RishiKendai/quill/internal/models"
	"github.com/RishiKendai/quill/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type DocumentReader interface {
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
}

type ReportStore interface {
	InsertScanReport(ctx context.Context, report *models.ScanReport) error
	GetLatestScanReport(ctx context.Context, documentID string) (*models.ScanReport, error)
}

type StatusStore interface {
	UpdateStatus(ctx context.Context, documentID string, step models.Step) error
	GetStatus(ctx context.Context, documentID string) (models.Step, error)
}

type DocumentScanner interface {
	Scan(ctx context.Context, documentID string) (*models.ScanReport, error)
}

type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission, source string) (*models.Document, error)
}

// Dependencies groups the services used by the handlers
type Dependencies struct {
	Documents DocumentReader
	Reports   ReportStore
	Status    StatusStore
	Scanner   DocumentScanner
	Ingest    SubmissionProcessor
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg         *config.Config
	deps        Dependencies
	scanSem     chan struct{} // bounds concurrent scans
	scanTimeout time.Duration
}

func NewHandler(cfg *config.Config, deps Dependencies) *Handler {
	return &Handler{
		cfg:         cfg,
		deps:        deps,
		scanSem:     make(chan struct{}, cfg.MaxConcurrentScans),
		scanTimeout: cfg.ScanTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Fingerprint returns the fingerprint set of a text without storing it
func (h *Handler) Fingerprint(c *gin.Context) {
	var req models.FingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	n, w := h.sizes(req.NgramSize, req.WindowSize)
	set, err := fingerprint.GenerateFingerprints(req.Text, req.DocumentID, n, w)
	if err != nil {
		h.engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// Compare fingerprints two texts and reports their verified overlap
func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	n, w := h.sizes(req.NgramSize, req.WindowSize)
	setA, err := fingerprint.GenerateFingerprints(req.TextA, "a", n, w)
	if err != nil {
		h.engineError(c, err)
		return
	}
	setB, err := fingerprint.GenerateFingerprints(req.TextB, "b", n, w)
	if err != nil {
		h.engineError(c, err)
		return
	}

	result := plagiarism.CascadePipeline(
		&plagiarism.Text{Raw: req.TextA, Set: setA},
		&plagiarism.Text{Raw: req.TextB, Set: setB},
		h.cfg.FingerprintCutoff,
	)

	c.JSON(http.StatusOK, models.CompareResponse{
		Matches:          result.Matches,
		FingerprintScore: result.FingerprintScore,
		TilingScore:      result.TilingScore,
		FinalScore:       result.FinalScore,
		Risk:             plagiarism.RiskLevel(result.FinalScore),
		SpansA:           fingerprint.MatchSpans(fingerprint.GetWordPositions(req.TextA), result.Matches, n, fingerprint.SideFirst),
		SpansB:           fingerprint.MatchSpans(fingerprint.GetWordPositions(req.TextB), result.Matches, n, fingerprint.SideSecond),
	})
}

// IngestDocument fingerprints and stores a document synchronously
func (h *Handler) IngestDocument(c *gin.Context) {
	var req models.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	doc, err := h.deps.Ingest.ProcessSubmission(c.Request.Context(), &req, "api")
	if errors.Is(err, ingest.ErrInvalidSubmission) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SUBMISSION",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("documentId", req.DocumentID).Msg("Failed to ingest document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to ingest document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"documentId":   doc.DocumentID,
		"ownerId":      doc.OwnerID,
		"contentHash":  doc.ContentHash,
		"wordCount":    doc.Fingerprints.WordCount,
		"fingerprints": doc.Fingerprints.Len(),
	})
}

// Scan starts a self-plagiarism scan and returns 202 immediately
func (h *Handler) Scan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()
	doc, err := h.deps.Documents.GetDocument(ctx, req.DocumentID)
	if err != nil {
		log.Error().Err(err).Str("documentId", req.DocumentID).Msg("Failed to load document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No document found for documentId",
			Code:  "DOCUMENT_NOT_FOUND",
		})
		return
	}

	select {
	case h.scanSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	if err := h.deps.Status.UpdateStatus(ctx, req.DocumentID, models.StepInitiated); err != nil {
		log.Warn().Err(err).Str("documentId", req.DocumentID).Msg("Failed to update initiated status")
	}

	c.JSON(http.StatusAccepted, models.ScanResponse{
		Step:       models.StepInitiated,
		DocumentID: req.DocumentID,
	})

	go h.processScan(doc)
}

func (h *Handler) processScan(doc *models.Document) {
	defer func() { <-h.scanSem }()

	ctx, cancel := context.WithTimeout(context.Background(), h.scanTimeout)
	defer cancel()

	if _, err := h.deps.Scanner.Scan(ctx, doc.DocumentID); err != nil {
		log.Error().Err(err).Str("documentId", doc.DocumentID).Msg("Scan failed")

		failed := &models.ScanReport{
			DocumentID: doc.DocumentID,
			OwnerID:    doc.OwnerID,
			Status:     "failed",
			Risk:       "",
			Peers:      []models.PeerResult{},
			Error:      err.Error(),
		}
		// the scan context may already be expired
		if err := h.deps.Reports.InsertScanReport(context.Background(), failed); err != nil {
			log.Error().Err(err).Str("documentId", doc.DocumentID).Msg("Failed to store failed report")
		}
	}
}

func (h *Handler) ScanStatus(c *gin.Context) {
	documentID := c.Param("documentId")

	step, err := h.deps.Status.GetStatus(c.Request.Context(), documentID)
	if err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to read scan status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read scan status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.ScanResponse{
		Step:       step,
		DocumentID: documentID,
	})
}

func (h *Handler) ScanReport(c *gin.Context) {
	documentID := c.Param("documentId")

	report, err := h.deps.Reports.GetLatestScanReport(c.Request.Context(), documentID)
	if err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to get latest report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get scan report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No scan report for documentId",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// sizes falls back to the configured sizes for unset values
func (h *Handler) sizes(n, w int) (int, int) {
	if n == 0 {
		n = h.cfg.NgramSize
	}
	if w == 0 {
		w = h.cfg.WindowSize
	}
	return n, w
}

func (h *Handler) engineError(c *gin.Context, err error) {
	if errors.Is(err, fingerprint.ErrInvalidNgramSize) || errors.Is(err, fingerprint.ErrInvalidWindowSize) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SIZE",
		})
		return
	}

	_ = c.Error(err)
}
