package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pindoc/internal/core/domain"
)

func TestLock_AcquireRelease(t *testing.T) {
	lock := NewLock()
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "report:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, "report:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = lock.Acquire(ctx, "report:2", time.Minute)
	assert.True(t, ok, "locks are independent per name")

	require.NoError(t, lock.Release(ctx, "report:1"))
	ok, _ = lock.Acquire(ctx, "report:1", time.Minute)
	assert.True(t, ok)
}

func TestLock_Expiry(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	lock := NewLock()
	lock.clock = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := lock.Acquire(ctx, "report:1", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = lock.Acquire(ctx, "report:1", time.Minute)
	assert.True(t, ok)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore(2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Save(ctx, &domain.ReportRun{ID: fmt.Sprint(i), GuildID: "1"}))
	}
	require.NoError(t, store.Save(ctx, &domain.ReportRun{ID: "other", GuildID: "2"}))

	runs, err := store.ListByGuild(ctx, "1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "3", runs[0].ID)
	assert.Equal(t, "2", runs[1].ID)

	runs, _ = store.ListByGuild(ctx, "1", 1)
	assert.Len(t, runs, 1)

	runs, _ = store.ListByGuild(ctx, "missing", 10)
	assert.Empty(t, runs)
}

func TestQueue_Bounded(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &domain.ReportJob{ID: "a"}))
	assert.ErrorIs(t, q.Enqueue(ctx, &domain.ReportJob{ID: "b"}), domain.ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	job, err := q.DequeueWithTimeout(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a", job.ID)
}

func TestQueue_DequeueTimeout(t *testing.T) {
	job, err := NewQueue(1).DequeueWithTimeout(context.Background(), 10*time.Millisecond)

	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, &domain.ReportJob{ID: "a"}))

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Enqueue(ctx, &domain.ReportJob{ID: "b"}), domain.ErrServiceUnavailable)

	job, _ := q.DequeueWithTimeout(ctx, time.Second)
	require.NotNil(t, job)
	assert.Equal(t, "a", job.ID)

	job, err := q.DequeueWithTimeout(ctx, time.Second)
	assert.NoError(t, err)
	assert.Nil(t, job)
}
