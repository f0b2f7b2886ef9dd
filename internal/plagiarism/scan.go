package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/RishiKendai/quill/internal/metrics"
	"github.com/RishiKendai/quill/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentStore interface {
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
	ListDocumentsByOwner(ctx context.Context, ownerID, excludeID string) ([]*models.Document, error)
	UpsertDocument(ctx context.Context, doc *models.Document) error
}

type ReportStore interface {
	InsertScanReport(ctx context.Context, report *models.ScanReport) error
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, documentID string, step models.Step) error
}

// Options tunes candidate selection and scoring
type Options struct {
	MinSharedHashes   int
	FingerprintCutoff float64
	SignificantScore  float64
}

// ComputationJob compares the scanned document with one peer
type ComputationJob struct {
	Target     *Text
	Peer       *models.Document
	PeerText   *Text
	Cutoff     float64
	ResultChan chan<- PairSimilarity
}

// PairSimilarity is the outcome of one ComputationJob
type PairSimilarity struct {
	Peer   *models.Document
	Result *CascadeResult
}

// Execute executes the computation job
func (j *ComputationJob) Execute(ctx context.Context) error {
	result := CascadePipeline(j.Target, j.PeerText, j.Cutoff)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- PairSimilarity{Peer: j.Peer, Result: result}:
		return nil
	}
}

// Scanner runs self-plagiarism scans of a document against the owner's
// other documents
type Scanner struct {
	docs    DocumentStore
	reports ReportStore
	status  StatusUpdater
	pool    *WorkerPool
	cache   *SetCache
	opts    Options
}

func NewScanner(docs DocumentStore, reports ReportStore, status StatusUpdater, pool *WorkerPool, cache *SetCache, opts Options) *Scanner {
	return &Scanner{
		docs:    docs,
		reports: reports,
		status:  status,
		pool:    pool,
		cache:   cache,
		opts:    opts,
	}
}

// Scan compares documentID with every other document of its owner and
// stores the resulting report
func (s *Scanner) Scan(ctx context.Context, documentID string) (*models.ScanReport, error) {
	start := time.Now()

	report, err := s.scan(ctx, documentID)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("failed").Inc()
		s.updateStatus(ctx, documentID, models.StepFailed)
		return nil, err
	}

	metrics.ScansTotal.WithLabelValues("completed").Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	s.updateStatus(ctx, documentID, models.StepCompleted)

	return report, nil
}

func (s *Scanner) scan(ctx context.Context, documentID string) (*models.ScanReport, error) {
	s.updateStatus(ctx, documentID, models.StepFingerprinting)

	target, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}

	peers, err := s.docs.ListDocumentsByOwner(ctx, target.OwnerID, target.DocumentID)
	if err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to load peer documents")
		return nil, fmt.Errorf("failed to load peer documents: %w", err)
	}

	if err := s.refresh(ctx, append([]*models.Document{target}, peers...)); err != nil {
		return nil, err
	}

	// Edge Case: No other documents
	if len(peers) == 0 {
		return s.finish(ctx, target, []models.PeerResult{}, 0)
	}

	s.updateStatus(ctx, documentID, models.StepIndexing)

	index := NewCorpusIndex()
	peersByID := make(map[string]*models.Document, len(peers))
	for _, peer := range peers {
		index.Add(peer.Fingerprints)
		peersByID[peer.DocumentID] = peer
	}

	candidates := index.Candidates(target.Fingerprints, s.opts.MinSharedHashes)

	// Edge Case: No worthy pairs
	if len(candidates) == 0 {
		log.Info().
			Str("documentId", documentID).
			Int("peers", len(peers)).
			Msg("No candidate documents share fingerprints")
		return s.finish(ctx, target, []models.PeerResult{}, len(peers))
	}

	s.updateStatus(ctx, documentID, models.StepMatching)

	targetText := &Text{Raw: target.Text, Set: target.Fingerprints}
	similarities, err := s.processCandidates(ctx, targetText, candidates, peersByID)
	if err != nil {
		return nil, err
	}

	targetPositions := fingerprint.GetWordPositions(target.Text)
	results := make([]models.PeerResult, 0, len(similarities))
	for _, ps := range similarities {
		if ps.Result.FinalScore < s.opts.SignificantScore {
			continue
		}
		ngramSize := target.Fingerprints.NgramSize
		results = append(results, models.PeerResult{
			DocumentID:         ps.Peer.DocumentID,
			Title:              ps.Peer.Title,
			SharedFingerprints: ps.Result.Shared,
			FingerprintScore:   ps.Result.FingerprintScore,
			TilingScore:        ps.Result.TilingScore,
			FinalScore:         ps.Result.FinalScore,
			Spans:              fingerprint.MatchSpans(targetPositions, ps.Result.Matches, ngramSize, fingerprint.SideFirst),
			PeerSpans:          fingerprint.MatchSpans(fingerprint.GetWordPositions(ps.Peer.Text), ps.Result.Matches, ngramSize, fingerprint.SideSecond),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].DocumentID < results[j].DocumentID
	})

	return s.finish(ctx, target, results, len(peers))
}

// refresh rebuilds fingerprint sets that no longer match their text and
// persists them
func (s *Scanner) refresh(ctx context.Context, docs []*models.Document) error {
	stale := make([]BatchItem, 0)
	byID := make(map[string]*models.Document)
	for _, doc := range docs {
		if doc.Stale(s.cache.NgramSize(), s.cache.WindowSize()) {
			stale = append(stale, BatchItem{DocumentID: doc.DocumentID, Text: doc.Text})
			byID[doc.DocumentID] = doc
		}
	}
	if len(stale) == 0 {
		return nil
	}

	sets, err := FingerprintBatch(ctx, s.pool, s.cache, stale)
	if err != nil {
		return fmt.Errorf("failed to refresh fingerprints: %w", err)
	}

	for id, set := range sets {
		doc := byID[id]
		doc.Fingerprints = set
		doc.ContentHash = fingerprint.ContentHash(doc.Text)
		if err := s.docs.UpsertDocument(ctx, doc); err != nil {
			log.Warn().Err(err).Str("documentId", id).Msg("Failed to persist refreshed fingerprints")
		}
	}

	log.Debug().Int("documents", len(sets)).Msg("Refreshed stale fingerprint sets")

	return nil
}

// processCandidates compares the target with each candidate on the pool
func (s *Scanner) processCandidates(
	ctx context.Context,
	target *Text,
	candidates []Candidate,
	peersByID map[string]*models.Document,
) ([]PairSimilarity, error) {
	resultChan := make(chan PairSimilarity, len(candidates))

	// Submit all jobs
	submitted := 0
	for _, c := range candidates {
		peer := peersByID[c.DocumentID]
		job := &ComputationJob{
			// Text caches its words lazily and is not shared between jobs
			Target:     &Text{Raw: target.Raw, Set: target.Set},
			Peer:       peer,
			PeerText:   &Text{Raw: peer.Text, Set: peer.Fingerprints},
			Cutoff:     s.opts.FingerprintCutoff,
			ResultChan: resultChan,
		}

		if err := s.pool.Submit(ctx, job); err != nil {
			log.Error().Err(err).Str("peer", c.DocumentID).Msg("Failed to submit job")
			return nil, fmt.Errorf("failed to submit comparison: %w", err)
		}
		submitted++
	}

	// Collect results as jobs complete
	results := make([]PairSimilarity, 0, submitted)
	for len(results) < submitted {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-resultChan:
			results = append(results, result)
		}
	}

	return results, nil
}

func (s *Scanner) finish(ctx context.Context, target *models.Document, peers []models.PeerResult, compared int) (*models.ScanReport, error) {
	similarity := DocumentSimilarity(peers, s.opts.SignificantScore)

	report := &models.ScanReport{
		DocumentID:        target.DocumentID,
		OwnerID:           target.OwnerID,
		Status:            "completed",
		Similarity:        similarity,
		Risk:              RiskLevel(similarity),
		Peers:             peers,
		ComparedDocuments: compared,
	}

	if err := s.reports.InsertScanReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to insert scan report: %w", err)
	}

	log.Info().
		Str("documentId", target.DocumentID).
		Int("compared", compared).
		Int("flagged", len(peers)).
		Str("risk", report.Risk).
		Msg("Scan completed successfully")

	return report, nil
}

func (s *Scanner) updateStatus(ctx context.Context, documentID string, step models.Step) {
	if s.status == nil {
		return
	}
	if err := s.status.UpdateStatus(ctx, documentID, step); err != nil {
		log.Warn().Err(err).Str("documentId", documentID).Str("step", string(step)).Msg("Failed to update scan status")
	}
}
