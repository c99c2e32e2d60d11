package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

func testJob(id string) *domain.ReportJob {
	return &domain.ReportJob{
		ID:        id,
		Request:   domain.ReportRequest{GuildID: "1", RequestedBy: "7", Args: []string{"1/1", "general"}},
		ChannelID: "11",
		MessageID: "900",
	}
}

func TestNewQueue_Validation(t *testing.T) {
	_, client := setupTestRedis(t)

	_, err := NewQueue(nil, 4)
	assert.Error(t, err)

	_, err = NewQueue(client, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQueue_FIFO(t *testing.T) {
	_, client := setupTestRedis(t)
	q, err := NewQueue(client, 4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testJob("a")))
	require.NoError(t, q.Enqueue(ctx, testJob("b")))
	assert.Equal(t, 2, q.Len())

	job, err := q.DequeueWithTimeout(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "a", job.ID)
	assert.Equal(t, []string{"1/1", "general"}, job.Request.Args)
	assert.Equal(t, "900", job.MessageID)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Full(t *testing.T) {
	_, client := setupTestRedis(t)
	q, err := NewQueue(client, 1)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testJob("a")))
	assert.ErrorIs(t, q.Enqueue(ctx, testJob("b")), domain.ErrQueueFull)
}

func TestQueue_DequeueEmptyTimesOut(t *testing.T) {
	_, client := setupTestRedis(t)
	q, err := NewQueue(client, 1)
	require.NoError(t, err)

	job, err := q.DequeueWithTimeout(context.Background(), time.Second)

	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestQueue_Closed(t *testing.T) {
	_, client := setupTestRedis(t)
	q, err := NewQueue(client, 1)
	require.NoError(t, err)

	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Enqueue(context.Background(), testJob("a")), domain.ErrServiceUnavailable)
}
