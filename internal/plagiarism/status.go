package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/quill/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statusKeyPrefix = "scan_status:"

var validSteps = map[models.Step]bool{
	models.StepIdle:           true,
	models.StepInitiated:      true,
	models.StepFingerprinting: true,
	models.StepIndexing:       true,
	models.StepMatching:       true,
	models.StepCompleted:      true,
	models.StepFailed:         true,
}

// StatusTracker keeps the current scan step of each document in Redis
type StatusTracker struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStatusTracker(client redis.Cmdable, ttl time.Duration) *StatusTracker {
	return &StatusTracker{client: client, ttl: ttl}
}

func (s *StatusTracker) UpdateStatus(ctx context.Context, documentID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKeyPrefix + documentID

	err := s.client.Set(ctx, rkey, string(step), s.ttl).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("documentId", documentID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("documentId", documentID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns StepIdle when no scan status is recorded
func (s *StatusTracker) GetStatus(ctx context.Context, documentID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKeyPrefix+documentID).Result()
	if errors.Is(err, redis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
