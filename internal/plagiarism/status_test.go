package plagiarism

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RishiKendai/quill/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRedis implements the SET and GET commands used by StatusTracker
type memoryRedis struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	val, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func Test_StatusTracker(t *testing.T) {
	client := newMemoryRedis()
	tracker := NewStatusTracker(client, time.Hour)
	ctx := context.Background()

	step, err := tracker.GetStatus(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, models.StepIdle, step)

	require.NoError(t, tracker.UpdateStatus(ctx, "doc", models.StepMatching))
	assert.Equal(t, "matching", client.values["scan_status:doc"])
	assert.Equal(t, time.Hour, client.ttls["scan_status:doc"])

	step, err = tracker.GetStatus(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, models.StepMatching, step)
}

func Test_StatusTrackerRejectsUnknownStep(t *testing.T) {
	tracker := NewStatusTracker(newMemoryRedis(), time.Hour)
	assert.Error(t, tracker.UpdateStatus(context.Background(), "doc", models.Step("bogus")))
}

func Test_StatusTrackerRedisError(t *testing.T) {
	client := newMemoryRedis()
	client.err = errors.New("connection refused")
	tracker := NewStatusTracker(client, time.Hour)

	assert.ErrorIs(t, tracker.UpdateStatus(context.Background(), "doc", models.StepFailed), client.err)

	_, err := tracker.GetStatus(context.Background(), "doc")
	assert.ErrorIs(t, err, client.err)
}
