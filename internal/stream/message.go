package stream

import (
	"fmt"

	"github.com/RishiKendai/quill/internal/ingest"
	"github.com/RishiKendai/quill/internal/models"
)

// StreamMessage is a stream entry with its string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission reads a submission from the documentId, ownerId, title
// and text fields of a stream entry.
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ingest.ErrInvalidSubmission)
	}

	submission := &models.Submission{
		DocumentID: msg.Fields["documentId"],
		OwnerID:    msg.Fields["ownerId"],
		Title:      msg.Fields["title"],
		Text:       msg.Fields["text"],
	}

	if err := ingest.ValidateSubmission(submission); err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}

	return submission, nil
}
