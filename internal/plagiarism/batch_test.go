package plagiarism

import (
	"context"
	"errors"
	"testing"

	"github.com/RishiKendai/quill/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJob struct {
	ran chan<- int
	id  int
}

func (j *recordingJob) Execute(ctx context.Context) error {
	j.ran <- j.id
	return nil
}

func Test_WorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()
	assert.Equal(t, 3, pool.Size())

	ran := make(chan int, 10)
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(context.Background(), &recordingJob{ran: ran, id: i}))
	}

	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		seen[<-ran] = true
	}
	assert.Len(t, seen, 10)
}

func Test_WorkerPoolDefaultSize(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()
	assert.GreaterOrEqual(t, pool.Size(), 1)
}

func Test_WorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()
	pool.Close()

	err := pool.Submit(context.Background(), &recordingJob{ran: make(chan int, 1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_FingerprintBatch(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()
	cache, err := NewSetCache(fingerprint.DefaultNgramSize, fingerprint.DefaultWindowSize, 0)
	require.NoError(t, err)

	items := []BatchItem{
		{DocumentID: "a", Text: essay},
		{DocumentID: "b", Text: essayRewrite},
		{DocumentID: "c", Text: recipe},
	}

	sets, err := FingerprintBatch(context.Background(), pool, cache, items)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	for _, item := range items {
		expected := mustSet(t, item.DocumentID, item.Text)
		assert.Equal(t, expected.Fingerprints, sets[item.DocumentID].Fingerprints)
	}
	assert.Equal(t, 3, cache.Len())
}

func Test_FingerprintBatchEmpty(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	defer pool.Close()
	cache, err := NewSetCache(5, 4, 0)
	require.NoError(t, err)

	sets, err := FingerprintBatch(context.Background(), pool, cache, nil)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func Test_FingerprintBatchError(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()
	cache, err := NewSetCache(5, 4, 0)
	require.NoError(t, err)

	boom := errors.New("boom")
	cache.generate = func(text, documentID string, n, w int) (*fingerprint.FingerprintSet, error) {
		if documentID == "bad" {
			return nil, boom
		}
		return fingerprint.GenerateFingerprints(text, documentID, n, w)
	}

	_, err = FingerprintBatch(context.Background(), pool, cache, []BatchItem{
		{DocumentID: "good", Text: essay},
		{DocumentID: "bad", Text: recipe},
	})
	assert.ErrorIs(t, err, boom)
}
