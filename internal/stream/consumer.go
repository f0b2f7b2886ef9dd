package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/quill/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ClaimMinIdle is how long a message stays pending before another consumer
// may claim it.
const ClaimMinIdle = time.Minute

// PendingHorizon bounds how long an entry can stay pending while it is
// retried and then claimed once by another consumer. Stream retention must
// exceed it, since trimming removes pending entries too.
func PendingHorizon(maxRetries int) time.Duration {
	return ClaimMinIdle + NewRetryHandler(nil, "", maxRetries).window()
}

// SubmissionProcessor handles one parsed submission
type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission, source string) (*models.Document, error)
}

type Consumer struct {
	client            redis.Cmdable
	streamKey         string
	consumerGroup     string
	consumerName      string
	processor         SubmissionProcessor
	retryHandler      *RetryHandler
	retentionDuration time.Duration
	claimInterval     time.Duration
	claimMinIdle      time.Duration
	cleanupInterval   time.Duration
	batchSize         int64
	lastClaim         time.Time
}

func NewConsumer(
	client redis.Cmdable,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor SubmissionProcessor,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:            client,
		streamKey:         streamKey,
		consumerGroup:     consumerGroup,
		consumerName:      consumerName,
		processor:         processor,
		retryHandler:      retryHandler,
		retentionDuration: retentionDuration,
		claimInterval:     30 * time.Second,
		claimMinIdle:      ClaimMinIdle,
		cleanupInterval:   time.Hour,
		batchSize:         10,
	}
}

// Start blocks consuming the stream until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	// messages left pending by a crashed consumer
	if err := c.claimIdle(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to claim idle messages on startup")
	}

	go c.runRetention(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.readBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Str("stream", c.streamKey).Msg("Error reading stream")
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream when missing
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Str("consumer", c.consumerName).
		Msg("Consumer group ready")
	return nil
}

// claimIdle takes over messages that stayed pending longer than claimMinIdle
func (c *Consumer) claimIdle(ctx context.Context) error {
	c.lastClaim = time.Now()

	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.streamKey,
			Group:    c.consumerGroup,
			Consumer: c.consumerName,
			MinIdle:  c.claimMinIdle,
			Start:    start,
			Count:    c.batchSize,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("failed to claim pending messages: %w", err)
		}

		if len(msgs) > 0 {
			log.Info().Int("claimed", len(msgs)).Msg("Claimed idle pending messages")
		}
		for i := range msgs {
			c.handle(ctx, &msgs[i])
		}

		if next == "0-0" || next == "" {
			return nil
		}
		start = next
	}
}

func (c *Consumer) readBatch(ctx context.Context) error {
	if time.Since(c.lastClaim) > c.claimInterval {
		if err := c.claimIdle(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to claim idle messages")
		}
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.batchSize,
		Block:    time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}
		for i := range stream.Messages {
			c.handle(ctx, &stream.Messages[i])
		}
	}

	return nil
}

// handle processes one message and acknowledges it unless processing was
// interrupted by shutdown
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}

	submission, err := ParseSubmission(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		// malformed messages never succeed, drop them
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse submission")
		c.acknowledge(ctx, msg.ID)
		return
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		_, err := c.processor.ProcessSubmission(ctx, submission, "stream")
		return err
	}, msg.ID, msg.Values)
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrDeadLetterFailed) {
		// left pending for claimIdle
		return
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("documentId", submission.DocumentID).
			Msg("Submission moved to dead-letter stream")
	}

	c.acknowledge(ctx, msg.ID)
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return
	}

	log.Debug().Str("message_id", messageID).Msg("Message acknowledged")
}

// trimOld removes messages older than the retention duration. XTRIM does not
// look at the pending list, so an entry still unacknowledged after the
// retention duration is dropped with the rest.
func (c *Consumer) trimOld(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff_time", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old messages from stream")
	}

	return nil
}

func (c *Consumer) runRetention(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		if err := c.trimOld(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to trim stream")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Stream retention goroutine shutting down")
			return
		case <-ticker.C:
		}
	}
}
