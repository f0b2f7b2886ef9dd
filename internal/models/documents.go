package models

import (
	"time"

	"github.com/RishiKendai/quill/internal/fingerprint"
)

// Document is a stored text with its fingerprint set
type Document struct {
	DocumentID   string                      `bson:"documentId" json:"documentId"`
	OwnerID      string                      `bson:"ownerId" json:"ownerId"`
	Title        string                      `bson:"title" json:"title"`
	Text         string                      `bson:"text" json:"text"`
	ContentHash  string                      `bson:"contentHash" json:"contentHash"`
	Fingerprints *fingerprint.FingerprintSet `bson:"fingerprints" json:"fingerprints"`
	CreatedAt    time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

// Stale reports whether the stored fingerprints no longer describe the text
// or were built with other sizes.
func (d *Document) Stale(ngramSize, windowSize int) bool {
	if d.Fingerprints == nil {
		return true
	}
	return d.ContentHash != fingerprint.ContentHash(d.Text) ||
		d.Fingerprints.NgramSize != ngramSize ||
		d.Fingerprints.WindowSize != windowSize
}

// Submission represents a document submission from the Redis stream or API
type Submission struct {
	DocumentID string `json:"documentId" binding:"required"`
	OwnerID    string `json:"ownerId" binding:"required"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}
