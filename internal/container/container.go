package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bricklink/cattree/internal/client"
	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/proxy"
	"bricklink/cattree/internal/queue"
	"bricklink/cattree/internal/repository"
	"bricklink/cattree/internal/service"
	"bricklink/cattree/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const drainPollInterval = 2 * time.Second

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.CatalogClient
	Repository repository.CategoryRepository
	Queue      queue.Queue
	Trees      state.TreeStore

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.BrickLink.Proxies, cfg.BrickLink.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}
	if len(cfg.BrickLink.Proxies) > 0 && proxySupplier.Len() == 0 {
		log.Warnf("⚠️ None of the %d configured proxies work, connecting directly", len(cfg.BrickLink.Proxies))
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	container.db = db

	categoryRepo := repository.NewCategoryRepository(db)
	if err := categoryRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	container.Repository = categoryRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	container.Trees = state.NewRedisTreeStore(rdb, time.Duration(cfg.Redis.TreeTTL)*time.Second)
	container.Client = client.NewCatalogClient(cfg.BrickLink, proxySupplier)

	container.Service = service.NewService(
		categoryRepo,
		container.Client,
		redisQueue,
		container.Trees,
		cfg.Tree,
		cfg.BrickLink.MaxSyncRetries,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	return container, nil
}

// Run syncs every catalog type and stops once all queued work is done.
func (c *Container) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.Service.SyncAll(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.BrickLink.MaxWorkers)
	})

	g.Go(func() error {
		defer cancel()
		return c.Service.WaitDrained(ctx, drainPollInterval)
	})

	return g.Wait()
}

// Work consumes queued tasks until ctx is cancelled.
func (c *Container) Work(ctx context.Context) error {
	return c.Service.RunWorkers(ctx, c.Config.BrickLink.MaxWorkers)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return err
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
