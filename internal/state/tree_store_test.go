package state

import (
	"context"
	"os"
	"testing"
	"time"

	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/tree"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeStore_Keys(t *testing.T) {
	s := NewRedisTreeStore(nil, 0).(*redisTreeStore)

	assert.Equal(t, "cattree:tree:P:9f3a", s.treeKey(domain.CategoryTypePart, "9f3a"))
}

func TestTreeStore_SaveRequiresFingerprint(t *testing.T) {
	s := NewRedisTreeStore(nil, 0)

	err := s.SaveTree(context.Background(), &domain.CategoryTree{CategoryType: domain.CategoryTypeSet})
	assert.Error(t, err)
}

// Runs against a real server when CATTREE_TEST_REDIS is set, e.g. "localhost:6379".
func TestTreeStore_Redis(t *testing.T) {
	addr := os.Getenv("CATTREE_TEST_REDIS")
	if addr == "" {
		t.Skip("CATTREE_TEST_REDIS not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	s := NewRedisTreeStore(rdb, time.Minute)

	miss, err := s.LoadTree(ctx, domain.CategoryTypeGear, "missing")
	require.NoError(t, err)
	assert.Nil(t, miss)

	snapshot := &domain.CategoryTree{
		CategoryType: domain.CategoryTypeGear,
		Fingerprint:  "abc123",
		BuiltAt:      time.Now().UTC().Truncate(time.Second),
		Total:        2,
		Dropdown:     []tree.Option{{ID: "1", Label: "├ Gear"}, {ID: "1.2", Label: "│ ├ Bags"}},
		Menu:         []tree.MenuItem{{Label: "Gear", URL: "/1", Children: []tree.MenuItem{{Label: "Bags", URL: "/1.2"}}}},
	}
	require.NoError(t, s.SaveTree(ctx, snapshot))

	got, err := s.LoadTree(ctx, domain.CategoryTypeGear, "abc123")
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}
