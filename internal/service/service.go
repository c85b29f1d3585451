package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bricklink/cattree/internal/client"
	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/domain/task"
	"bricklink/cattree/internal/queue"
	"bricklink/cattree/internal/repository"
	"bricklink/cattree/internal/state"
	"bricklink/cattree/internal/tree"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repository  repository.CategoryRepository
	client      client.CatalogClient
	queue       queue.Queue
	trees       state.TreeStore
	treeCfg     config.TreeConfig
	maxRetries  int
	groupName   string
	minIdleTime time.Duration
	retryDelay  time.Duration
	readBackoff time.Duration
}

func NewService(
	repository repository.CategoryRepository,
	client client.CatalogClient,
	queue queue.Queue,
	trees state.TreeStore,
	treeCfg config.TreeConfig,
	maxRetries int,
	groupName string,
	minIdleTime int,
) *Service {
	return &Service{
		repository:  repository,
		client:      client,
		queue:       queue,
		trees:       trees,
		treeCfg:     treeCfg,
		maxRetries:  maxRetries,
		groupName:   groupName,
		minIdleTime: time.Duration(minIdleTime) * time.Second,
		retryDelay:  10 * time.Second,
		readBackoff: 2 * time.Second,
	}
}

// SyncAll enqueues one sync task per catalog type.
func (s *Service) SyncAll(ctx context.Context) error {
	errGroup, ctx := errgroup.WithContext(ctx)

	for _, categoryType := range domain.CategoryTypes {
		errGroup.Go(func() error {
			if _, err := s.queue.AddTask(ctx, &task.SyncCategoriesTask{CategoryType: categoryType}); err != nil {
				log.Errorf("❌ Failed to add sync task for %s: %v", categoryType.GetCategoryName(), err)
				return err
			}
			log.Infof("🔄 Queued sync of %s (%s)", categoryType.GetCategoryName(), categoryType.String())
			return nil
		})
	}

	return errGroup.Wait()
}

// RunWorkers consumes the sync, retry and build streams until ctx is done.
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, max(1, numWorkers), s.queue.StreamName(task.TypeSyncCategories), "sync")
	s.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), s.queue.StreamName(task.TypeSyncRetry), "retry")
	s.runWorkersForStream(ctx, &wg, 1, s.queue.StreamName(task.TypeBuildTree), "build")

	wg.Wait()
	return nil
}

// WaitDrained blocks until every stream has neither undelivered nor unacked
// entries, polling at the given interval.
func (s *Service) WaitDrained(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			var total int64
			for _, taskType := range task.Types {
				n, err := s.queue.Backlog(ctx, s.groupName, s.queue.StreamName(taskType))
				if err != nil {
					return err
				}
				total += n
			}
			if total == 0 {
				log.Info("✅ All queued tasks processed")
				return nil
			}
			log.Debugf("%d tasks still queued", total)
		}
	}
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	if s.minIdleTime > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(s.minIdleTime)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					consumer := fmt.Sprintf("autoclaimer-%s-%d", workerType, time.Now().UnixNano())
					claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
					if err != nil {
						log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
						continue
					}
					if len(claimedMessages) > 0 {
						log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimedMessages), workerType)
						for _, msg := range claimedMessages {
							if err := s.processMessage(ctx, &msg); err != nil {
								log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
							}
						}
					}
				}
			}
		}()
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						select {
						case <-ctx.Done():
						case <-time.After(s.readBackoff):
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	switch taskType {
	case task.TypeSyncCategories:
		syncTask, err := task.UnmarshalTask[*task.SyncCategoriesTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal sync task data: %w", err)
		}

		if err := s.syncCategories(ctx, syncTask.CategoryType); err != nil {
			s.enqueueRetry(ctx, &task.SyncRetryTask{
				CategoryType: syncTask.CategoryType,
				RetryCount:   0,
				Error:        err.Error(),
			})
		}

	case task.TypeSyncRetry:
		retryTask, err := task.UnmarshalTask[*task.SyncRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal retry task data: %w", err)
		}

		if err := s.retrySync(ctx, retryTask); err != nil {
			return fmt.Errorf("failed to retry sync: %w", err)
		}

	case task.TypeBuildTree:
		buildTask, err := task.UnmarshalTask[*task.BuildTreeTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal build task data: %w", err)
		}

		// A failed build is not retried; the next sync queues a new one.
		if _, err := s.BuildTree(ctx, buildTask.CategoryType); err != nil {
			if tree.IsCycleOrDepth(err) {
				log.Errorf("❌ Categories of %s have broken parent links: %v", buildTask.CategoryType.GetCategoryName(), err)
			} else {
				log.Errorf("❌ Failed to build tree for %s: %v", buildTask.CategoryType.GetCategoryName(), err)
			}
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	streamName := s.queue.StreamName(taskType)
	if err := s.queue.AckTask(ctx, streamName, s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

// syncCategories scrapes one catalog tree, stores it and queues a rebuild.
func (s *Service) syncCategories(ctx context.Context, categoryType domain.CategoryType) error {
	log.Infof("🔄 Syncing categories of %s (%s)", categoryType.GetCategoryName(), categoryType.String())

	categories, err := s.client.GetCategories(ctx, categoryType)
	if err != nil {
		return err
	}

	if err := s.repository.SaveCategories(ctx, categoryType, categories); err != nil {
		return err
	}

	if _, err := s.queue.AddTask(ctx, &task.BuildTreeTask{CategoryType: categoryType}); err != nil {
		return fmt.Errorf("failed to queue tree build: %w", err)
	}

	log.Infof("✅ Synced %d categories of %s", len(categories), categoryType.GetCategoryName())
	return nil
}

func (s *Service) retrySync(ctx context.Context, retryTask *task.SyncRetryTask) error {
	retryTask.RetryCount++

	if s.maxRetries > 0 && retryTask.RetryCount > s.maxRetries {
		log.Errorf("❌ Giving up on %s after %d attempts: %s",
			retryTask.CategoryType.GetCategoryName(), retryTask.RetryCount-1, retryTask.Error)
		return nil
	}

	log.Infof("🔄 Retrying sync of %s (attempt %d)", retryTask.CategoryType.GetCategoryName(), retryTask.RetryCount)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay * time.Duration(retryTask.RetryCount)):
	}

	if err := s.syncCategories(ctx, retryTask.CategoryType); err != nil {
		log.Warnf("🔄 Sync of %s failed again, will retry (attempt %d): %v",
			retryTask.CategoryType.GetCategoryName(), retryTask.RetryCount, err)

		return s.addTask(ctx, &task.SyncRetryTask{
			CategoryType: retryTask.CategoryType,
			RetryCount:   retryTask.RetryCount,
			Error:        err.Error(),
		})
	}

	log.Infof("✅ Recovered sync of %s after %d attempts",
		retryTask.CategoryType.GetCategoryName(), retryTask.RetryCount)
	return nil
}

func (s *Service) enqueueRetry(ctx context.Context, retryTask *task.SyncRetryTask) {
	if err := s.addTask(ctx, retryTask); err != nil {
		log.Errorf("❌ Failed to add retry task for %s: %v", retryTask.CategoryType, err)
		return
	}
	log.Warnf("🔄 Added %s to retry queue due to error: %s", retryTask.CategoryType.GetCategoryName(), retryTask.Error)
}

func (s *Service) addTask(ctx context.Context, t task.Task) error {
	if _, err := s.queue.AddTask(ctx, t); err != nil {
		return err
	}
	return nil
}
