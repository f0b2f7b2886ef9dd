package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrDeadLetterFailed means the message could not be parked and should stay pending
var ErrDeadLetterFailed = errors.New("dead-letter write failed")

type RetryHandler struct {
	client        redis.Cmdable
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func NewRetryHandler(client redis.Cmdable, deadLetterKey string, maxRetries int) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    maxRetries,
		baseDelay:     500 * time.Millisecond,
		maxDelay:      30 * time.Second,
	}
}

// delay returns the wait before retry number attempt, starting at 1
func (r *RetryHandler) delay(attempt int) time.Duration {
	d := r.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= r.maxDelay {
			return r.maxDelay
		}
	}
	return d
}

// window is the total backoff spent before a message is dead-lettered
func (r *RetryHandler) window() time.Duration {
	var total time.Duration
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		total += r.delay(attempt)
	}
	return total
}

// RetryWithBackoff runs fn up to maxRetries+1 times with exponential backoff.
// When every attempt fails the message is written to the dead-letter stream
// and the last error is returned. If that write fails too the error wraps
// ErrDeadLetterFailed.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, msgID string, fields map[string]interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.delay(attempt)
			log.Warn().
				Err(lastErr).
				Str("message_id", msgID).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Msg("Retrying message")

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err := r.deadLetter(ctx, msgID, fields, lastErr); err != nil {
		log.Error().Err(err).Str("message_id", msgID).Msg("Failed to write dead-letter entry")
		return fmt.Errorf("%w: %v: %w", ErrDeadLetterFailed, err, lastErr)
	}

	return lastErr
}

func (r *RetryHandler) deadLetter(ctx context.Context, msgID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = msgID
	values["error"] = cause.Error()
	values["retries"] = r.maxRetries
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead-letter stream: %w", err)
	}

	return nil
}
