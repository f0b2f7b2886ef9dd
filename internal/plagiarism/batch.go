package plagiarism

import (
	"context"
	"fmt"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/rs/zerolog/log"
)

// BatchItem is one document to fingerprint
type BatchItem struct {
	DocumentID string
	Text       string
}

type batchResult struct {
	documentID string
	set        *fingerprint.FingerprintSet
	err        error
}

// fingerprintJob fingerprints one document through the cache
type fingerprintJob struct {
	item       BatchItem
	cache      *SetCache
	resultChan chan<- batchResult
}

func (j *fingerprintJob) Execute(ctx context.Context) error {
	set, err := j.cache.Get(j.item.DocumentID, j.item.Text)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.resultChan <- batchResult{documentID: j.item.DocumentID, set: set, err: err}:
		return err
	}
}

// FingerprintBatch fingerprints items in parallel on the pool. It returns the
// sets keyed by document ID, or the first error encountered.
func FingerprintBatch(ctx context.Context, pool *WorkerPool, cache *SetCache, items []BatchItem) (map[string]*fingerprint.FingerprintSet, error) {
	sets := make(map[string]*fingerprint.FingerprintSet, len(items))
	if len(items) == 0 {
		return sets, nil
	}

	resultChan := make(chan batchResult, len(items))

	submitted := 0
	for _, item := range items {
		job := &fingerprintJob{item: item, cache: cache, resultChan: resultChan}
		if err := pool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit fingerprint job: %w", err)
		}
		submitted++
	}

	var firstErr error
	for received := 0; received < submitted; received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-resultChan:
			if res.err != nil {
				if firstErr == nil {
					firstErr = res.err
				}
				continue
			}
			sets[res.documentID] = res.set
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	log.Debug().Int("documents", len(sets)).Msg("Fingerprinted batch")

	return sets, nil
}
