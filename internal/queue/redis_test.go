package queue

import (
	"context"
	"os"
	"testing"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/domain/task"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamName(t *testing.T) {
	q := &RedisQueue{streamPrefix: StreamPrefix}

	assert.Equal(t, "cattree:stream:BuildTreeTask", q.StreamName(task.TypeBuildTree))
}

// Runs against a real server when CATTREE_TEST_REDIS is set, e.g. "localhost:6379".
func TestRedisQueue_RoundTrip(t *testing.T) {
	addr := os.Getenv("CATTREE_TEST_REDIS")
	if addr == "" {
		t.Skip("CATTREE_TEST_REDIS not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer rdb.Close()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	group := "cattree_test"
	q, err := NewRedisQueue(rdb, config.RedisConfig{ConsumerGroup: group})
	require.NoError(t, err)

	stream := q.StreamName(task.TypeSyncCategories)
	backlog, err := q.Backlog(ctx, group, stream)
	require.NoError(t, err)
	assert.Zero(t, backlog)

	_, err = q.AddTask(ctx, &task.SyncCategoriesTask{CategoryType: domain.CategoryTypeGear})
	require.NoError(t, err)

	backlog, err = q.Backlog(ctx, group, stream)
	require.NoError(t, err)
	assert.Equal(t, int64(1), backlog)

	msg, err := q.GetTask(ctx, group, "tester", stream)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, task.TypeSyncCategories, msg.Values["task_type"])

	decoded, err := task.UnmarshalTask[*task.SyncCategoriesTask]([]byte(msg.Values["task_data"].(string)))
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryTypeGear, decoded.CategoryType)

	require.NoError(t, q.AckTask(ctx, stream, group, msg.ID))
	backlog, err = q.Backlog(ctx, group, stream)
	require.NoError(t, err)
	assert.Zero(t, backlog)
}
