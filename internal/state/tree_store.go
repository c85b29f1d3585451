package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bricklink/cattree/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TreeStore keeps built category trees keyed by the fingerprint of the
// collection they were built from.
type TreeStore interface {
	SaveTree(ctx context.Context, tree *domain.CategoryTree) error
	// LoadTree returns nil without error when no snapshot exists.
	LoadTree(ctx context.Context, categoryType domain.CategoryType, fingerprint string) (*domain.CategoryTree, error)
}

type redisTreeStore struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisTreeStore(redisClient *redis.Client, ttl time.Duration) TreeStore {
	return &redisTreeStore{
		redisClient: redisClient,
		keyPrefix:   "cattree:tree:",
		ttl:         ttl,
	}
}

func (s *redisTreeStore) treeKey(categoryType domain.CategoryType, fingerprint string) string {
	return s.keyPrefix + categoryType.String() + ":" + fingerprint
}

func (s *redisTreeStore) SaveTree(ctx context.Context, tree *domain.CategoryTree) error {
	if tree.Fingerprint == "" {
		return fmt.Errorf("tree for category %s has no fingerprint", tree.CategoryType)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode tree for category %s: %w", tree.CategoryType, err)
	}

	if err := s.redisClient.Set(ctx, s.treeKey(tree.CategoryType, tree.Fingerprint), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save tree for category %s: %w", tree.CategoryType, err)
	}
	return nil
}

func (s *redisTreeStore) LoadTree(ctx context.Context, categoryType domain.CategoryType, fingerprint string) (*domain.CategoryTree, error) {
	data, err := s.redisClient.Get(ctx, s.treeKey(categoryType, fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load tree for category %s: %w", categoryType, err)
	}

	var tree domain.CategoryTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode tree for category %s: %w", categoryType, err)
	}
	return &tree, nil
}
