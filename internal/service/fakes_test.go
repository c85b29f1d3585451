package service

import (
	"context"
	"sync"
	"time"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/domain/task"
	"bricklink/cattree/internal/queue"

	"github.com/redis/go-redis/v9"
)

type fakeRepository struct {
	mu      sync.Mutex
	stored  map[domain.CategoryType]domain.Categories
	saveErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{stored: make(map[domain.CategoryType]domain.Categories)}
}

func (r *fakeRepository) EnsureSchema(context.Context) error { return nil }

func (r *fakeRepository) SaveCategories(_ context.Context, categoryType domain.CategoryType, categories domain.Categories) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored[categoryType] = categories
	return nil
}

func (r *fakeRepository) ListCategories(_ context.Context, categoryType domain.CategoryType) (domain.Categories, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored[categoryType], nil
}

type fakeClient struct {
	categories domain.Categories
	err        error
	calls      int
}

func (c *fakeClient) GetCategories(_ context.Context, _ domain.CategoryType) (domain.Categories, error) {
	c.calls++
	return c.categories, c.err
}

type fakeQueue struct {
	mu       sync.Mutex
	added    []task.Task
	acked    []string
	backlog  int64
	getErr   error
	getCalls int
}

func (q *fakeQueue) AddTask(_ context.Context, t task.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.added = append(q.added, t)
	return "1-0", nil
}

func (q *fakeQueue) GetTask(context.Context, string, string, string) (*redis.XMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.getCalls++
	return nil, q.getErr
}

func (q *fakeQueue) AckTask(_ context.Context, stream, _, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, stream+"/"+msgID)
	return nil
}

func (q *fakeQueue) CreateGroup(context.Context, string, string) error { return nil }

func (q *fakeQueue) AutoClaim(context.Context, string, string, string, time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (q *fakeQueue) EnsureStreamsExist(context.Context) error { return nil }

func (q *fakeQueue) Backlog(context.Context, string, string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.backlog, nil
}

func (q *fakeQueue) StreamName(taskType string) string {
	return queue.StreamPrefix + taskType
}

type fakeTreeStore struct {
	trees map[string]*domain.CategoryTree
	saves int
}

func newFakeTreeStore() *fakeTreeStore {
	return &fakeTreeStore{trees: make(map[string]*domain.CategoryTree)}
}

func (s *fakeTreeStore) SaveTree(_ context.Context, t *domain.CategoryTree) error {
	s.saves++
	s.trees[t.CategoryType.String()+":"+t.Fingerprint] = t
	return nil
}

func (s *fakeTreeStore) LoadTree(_ context.Context, categoryType domain.CategoryType, fingerprint string) (*domain.CategoryTree, error) {
	return s.trees[categoryType.String()+":"+fingerprint], nil
}

type fixture struct {
	svc    *Service
	repo   *fakeRepository
	client *fakeClient
	queue  *fakeQueue
	trees  *fakeTreeStore
}

func testTreeConfig() config.TreeConfig {
	return config.TreeConfig{
		PrimaryField:  "id",
		ParentField:   "parent_id",
		NameField:     "name",
		Root:          domain.RootPath,
		MaxDepth:      1000,
		PathDelimiter: " / ",
		MenuRoute:     "/catalogList.asp?catString={id}",
	}
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newFakeRepository(),
		client: &fakeClient{},
		queue:  &fakeQueue{},
		trees:  newFakeTreeStore(),
	}
	f.svc = NewService(f.repo, f.client, f.queue, f.trees, testTreeConfig(), 2, "test_group", 0)
	f.svc.retryDelay = 0
	return f
}
