package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/metrics"
	"github.com/RishiKendai/quill/internal/models"
	"github.com/RishiKendai/quill/internal/plagiarism"
	"github.com/rs/zerolog/log"
)

var ErrInvalidSubmission = errors.New("invalid submission")

type DocumentWriter interface {
	UpsertDocument(ctx context.Context, doc *models.Document) error
}

type Service struct {
	cache *plagiarism.SetCache
	docs  DocumentWriter
}

func NewService(cache *plagiarism.SetCache, docs DocumentWriter) *Service {
	return &Service{
		cache: cache,
		docs:  docs,
	}
}

// processes a submission by fingerprinting its text and storing the document
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission, source string) (*models.Document, error) {
	if err := ValidateSubmission(submission); err != nil {
		return nil, err
	}

	set, err := s.cache.Get(submission.DocumentID, submission.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint: %w", err)
	}

	doc := &models.Document{
		DocumentID:   submission.DocumentID,
		OwnerID:      submission.OwnerID,
		Title:        submission.Title,
		Text:         submission.Text,
		ContentHash:  fingerprint.ContentHash(submission.Text),
		Fingerprints: set,
	}

	if err := s.docs.UpsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	metrics.DocumentsFingerprinted.WithLabelValues(source).Inc()
	metrics.FingerprintsPerDocument.Observe(float64(set.Len()))

	log.Debug().
		Str("documentId", doc.DocumentID).
		Str("ownerId", doc.OwnerID).
		Int("words", set.WordCount).
		Int("fingerprints", set.Len()).
		Msg("Document fingerprinted")

	return doc, nil
}

func ValidateSubmission(submission *models.Submission) error {
	if submission == nil {
		return fmt.Errorf("%w: empty submission", ErrInvalidSubmission)
	}
	if strings.TrimSpace(submission.DocumentID) == "" {
		return fmt.Errorf("%w: documentId is required", ErrInvalidSubmission)
	}
	if strings.TrimSpace(submission.OwnerID) == "" {
		return fmt.Errorf("%w: ownerId is required", ErrInvalidSubmission)
	}
	return nil
}
