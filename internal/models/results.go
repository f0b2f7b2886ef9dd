package models

import (
	"time"

	"github.com/RishiKendai/quill/internal/fingerprint"
)

type Step string

const (
	StepIdle           Step = "idle"
	StepInitiated      Step = "initiated"
	StepFingerprinting Step = "fingerprinting"
	StepIndexing       Step = "indexing"
	StepMatching       Step = "matching"
	StepCompleted      Step = "completed"
	StepFailed         Step = "failed"
)

// PeerResult is the overlap between the scanned document and one peer
type PeerResult struct {
	DocumentID         string             `bson:"documentId" json:"documentId"`
	Title              string             `bson:"title" json:"title"`
	SharedFingerprints int                `bson:"shared_fingerprints" json:"shared_fingerprints"`
	FingerprintScore   float64            `bson:"fingerprint_score" json:"fingerprint_score"`
	TilingScore        float64            `bson:"tiling_score" json:"tiling_score"`
	FinalScore         float64            `bson:"final_score" json:"final_score"`
	Spans              []fingerprint.Span `bson:"spans" json:"spans"`           // in the scanned document
	PeerSpans          []fingerprint.Span `bson:"peer_spans" json:"peer_spans"` // in the peer document
}

// ScanReport represents a self-plagiarism scan of one document
type ScanReport struct {
	DocumentID        string       `bson:"documentId" json:"documentId"`
	OwnerID           string       `bson:"ownerId" json:"ownerId"`
	Status            string       `bson:"status" json:"status"` // completed, failed
	Similarity        float64      `bson:"similarity" json:"similarity"`
	Risk              string       `bson:"risk" json:"risk"` // clean, suspicious, highly suspicious, near copy
	Peers             []PeerResult `bson:"peers" json:"peers"`
	ComparedDocuments int          `bson:"compared_documents" json:"compared_documents"`
	Error             string       `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt         time.Time    `bson:"createdAt" json:"createdAt"`
}

// ScanRequest represents a request to scan a stored document
type ScanRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
}

// ScanResponse represents the response from the scan endpoint
type ScanResponse struct {
	Step       Step   `json:"step"`
	DocumentID string `json:"documentId"`
}

// FingerprintRequest asks for the fingerprint set of a text
type FingerprintRequest struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
	NgramSize  int    `json:"ngramSize"`
	WindowSize int    `json:"windowSize"`
}

// CompareRequest asks for the verified overlap between two texts
type CompareRequest struct {
	TextA      string `json:"textA"`
	TextB      string `json:"textB"`
	NgramSize  int    `json:"ngramSize"`
	WindowSize int    `json:"windowSize"`
}

// CompareResponse is the overlap between two texts
type CompareResponse struct {
	Matches          []fingerprint.Match `json:"matches"`
	FingerprintScore float64             `json:"fingerprint_score"`
	TilingScore      float64             `json:"tiling_score"`
	FinalScore       float64             `json:"final_score"`
	Risk             string              `json:"risk"`
	SpansA           []fingerprint.Span  `json:"spansA"`
	SpansB           []fingerprint.Span  `json:"spansB"`
}
