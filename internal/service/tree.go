package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/tree"

	"github.com/RoaringBitmap/roaring"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotSynced        = errors.New("no categories stored")
	ErrCategoryNotFound = errors.New("category not found")
)

// DescendantSet is everything below one category.
type DescendantSet struct {
	Paths      []tree.ID // primary keys (catStrings by default), depth-first
	Categories domain.Categories
	// CategoryIDs holds the numeric IDs; a category reused under several
	// parents appears once.
	CategoryIDs *roaring.Bitmap
}

func (s *Service) categories(ctx context.Context, categoryType domain.CategoryType) (domain.Categories, error) {
	categories, err := s.repository.ListCategories(ctx, categoryType)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotSynced, categoryType.GetCategoryName())
	}
	return categories, nil
}

// Nodes materialises the stored categories of one type as a nested tree.
func (s *Service) Nodes(ctx context.Context, categoryType domain.CategoryType) ([]*tree.Node, error) {
	categories, err := s.categories(ctx, categoryType)
	if err != nil {
		return nil, err
	}
	opts := s.treeCfg.Options()
	return tree.BuildIndex(categories.Records(), opts).Tree(opts.Root)
}

// BuildTree materialises the stored categories of one type into a dropdown
// and a menu. Snapshots are cached under the fingerprint of the categories
// and tree settings they were built from, so an unchanged catalog is not
// rebuilt.
func (s *Service) BuildTree(ctx context.Context, categoryType domain.CategoryType) (*domain.CategoryTree, error) {
	categories, err := s.categories(ctx, categoryType)
	if err != nil {
		return nil, err
	}

	opts := s.treeCfg.Options()
	records := categories.Records()
	fingerprint := tree.Fingerprint(records, opts, s.treeCfg.MenuRoute)

	cached, err := s.trees.LoadTree(ctx, categoryType, fingerprint)
	if err != nil {
		log.Warnf("⚠️ Failed to load cached tree for %s: %v", categoryType.GetCategoryName(), err)
	} else if cached != nil {
		log.Debugf("Tree for %s is up to date (%s)", categoryType.GetCategoryName(), fingerprint)
		return cached, nil
	}

	idx := tree.BuildIndex(records, opts)
	nodes, err := idx.Tree(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree for %s: %w", categoryType.GetCategoryName(), err)
	}
	entries, err := idx.PlaneTree(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten tree for %s: %w", categoryType.GetCategoryName(), err)
	}

	menu, err := tree.Menu(nodes, opts.NameField, s.treeCfg.MenuRoute)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.CategoryTree{
		CategoryType: categoryType,
		Fingerprint:  fingerprint,
		BuiltAt:      time.Now().UTC(),
		Total:        len(entries),
		Skipped:      idx.Skipped(),
		Dropdown:     tree.Dropdown(entries, opts.NameField),
		Menu:         menu,
	}

	if unreachable := idx.Len() - len(entries); unreachable > 0 {
		log.Warnf("⚠️ %d categories of %s are not reachable from the root", unreachable, categoryType.GetCategoryName())
	}

	if err := s.trees.SaveTree(ctx, snapshot); err != nil {
		return nil, err
	}

	log.Infof("🌳 Built %s tree: %d categories (%s)", categoryType.GetCategoryName(), snapshot.Total, fingerprint)
	return snapshot, nil
}

// Path resolves the root-to-category breadcrumb of a catString.
func (s *Service) Path(ctx context.Context, categoryType domain.CategoryType, catString string) (*domain.Breadcrumb, error) {
	categories, err := s.categories(ctx, categoryType)
	if err != nil {
		return nil, err
	}

	path, err := tree.PathArray(categories.Records(), catString, s.treeCfg.Options())
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrCategoryNotFound, categoryType.GetCategoryName(), catString)
	}

	breadcrumb := &domain.Breadcrumb{
		FullPath: tree.PathString(path, s.treeCfg.NameField, s.treeCfg.PathDelimiter),
		Steps:    make([]domain.BreadcrumbStep, 0, len(path)),
	}
	for _, rec := range path {
		c, ok := rec.(domain.Category)
		if !ok {
			continue
		}
		breadcrumb.Steps = append(breadcrumb.Steps, domain.BreadcrumbStep{Name: c.Name, URL: c.URL, ID: c.Path})
	}
	return breadcrumb, nil
}

// Descendants lists every category below catString. The configured root
// selects the whole catalog.
func (s *Service) Descendants(ctx context.Context, categoryType domain.CategoryType, catString string) (*DescendantSet, error) {
	categories, err := s.categories(ctx, categoryType)
	if err != nil {
		return nil, err
	}

	opts := s.treeCfg.Options()
	byID := make(map[tree.ID]domain.Category, len(categories))
	for _, c := range categories {
		if v, ok := tree.Get(c, opts.PrimaryField); ok {
			byID[tree.Key(v)] = c
		}
	}

	root := tree.Key(catString)
	if _, ok := byID[root]; !ok && root != opts.Root {
		return nil, fmt.Errorf("%w: %s %q", ErrCategoryNotFound, categoryType.GetCategoryName(), catString)
	}

	ids, err := tree.BuildIndex(categories.Records(), opts).ChildrenIDs(root)
	if err != nil {
		return nil, err
	}

	set := &DescendantSet{Paths: ids, Categories: make(domain.Categories, 0, len(ids))}
	numeric := make([]tree.ID, 0, len(ids))
	for _, id := range ids {
		c := byID[id]
		set.Categories = append(set.Categories, c)
		numeric = append(numeric, tree.ID(strconv.Itoa(c.CategoryID)))
	}

	if set.CategoryIDs, err = tree.Bitmap(numeric); err != nil {
		return nil, err
	}
	return set, nil
}
