package repository

import (
	"context"
	"fmt"

	"bricklink/cattree/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	item_type   TEXT        NOT NULL,
	path        TEXT        NOT NULL,
	parent_path TEXT        NOT NULL,
	category_id INTEGER     NOT NULL,
	name        TEXT        NOT NULL,
	item_count  INTEGER     NOT NULL DEFAULT 0,
	url         TEXT        NOT NULL DEFAULT '',
	position    INTEGER     NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (item_type, path)
);
CREATE INDEX IF NOT EXISTS categories_parent_idx ON categories (item_type, parent_path);`

const upsertCategory = `
	INSERT INTO categories (item_type, path, parent_path, category_id, name, item_count, url, position, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (item_type, path)
	DO UPDATE SET parent_path = $3, category_id = $4, name = $5, item_count = $6, url = $7, position = $8, updated_at = now()`

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type CategoryRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveCategories(ctx context.Context, categoryType domain.CategoryType, categories domain.Categories) error
	ListCategories(ctx context.Context, categoryType domain.CategoryType) (domain.Categories, error)
}

type categoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

func (r *categoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create categories schema: %w", err)
	}
	return nil
}

// SaveCategories replaces the stored categories of one item type. Rows are
// upserted in a single batch and categories missing from the new set are removed.
func (r *categoryRepository) SaveCategories(ctx context.Context, categoryType domain.CategoryType, categories domain.Categories) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	paths := make([]string, 0, len(categories))
	for _, c := range categories {
		batch.Queue(upsertCategory,
			categoryType.String(), c.Path, c.ParentPath, c.CategoryID, c.Name, c.Count, c.URL, c.Position)
		paths = append(paths, c.Path)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM categories WHERE item_type = $1 AND NOT (path = ANY($2))`,
		categoryType.String(), paths)
	if err != nil {
		return fmt.Errorf("failed to remove stale categories: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit categories: %w", err)
	}
	return nil
}

// ListCategories returns the categories of one item type in catalog order.
func (r *categoryRepository) ListCategories(ctx context.Context, categoryType domain.CategoryType) (domain.Categories, error) {
	rows, err := r.db.Query(ctx, `
	SELECT path, parent_path, category_id, name, item_count, url, position
	FROM categories
	WHERE item_type = $1
	ORDER BY position, path`, categoryType.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		c := domain.Category{ItemType: categoryType}
		err := row.Scan(&c.Path, &c.ParentPath, &c.CategoryID, &c.Name, &c.Count, &c.URL, &c.Position)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}

	return categories, nil
}
