// Package services – CategoryService
//
// Manages the per-queue category registry. Names are NFC-normalized and
// whitespace-trimmed before any comparison so that visually identical names
// typed from different chat clients collapse to one bucket. Every queue owns
// exactly one default category: it is created with the queue, cannot be
// deleted, and receives the orders of any category that is removed.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
	"github.com/tbourn/go-order-backend/internal/store"
)

// DefaultCategoryName is the name seeded for every new queue's default
// category.
const DefaultCategoryName = "default"

// CategoryService provides category registry operations scoped to one queue.
type CategoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

// Add creates a category in repoID. It returns ErrCategoryExists when the
// name is already taken within the queue.
func (s *CategoryService) Add(ctx context.Context, repoID int64, name string) (*domain.Category, error) {
	name = NormalizeName(name)
	c, err := store.CreateCategory(ctx, s.DB, repoID, name)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrCategoryExists
	}
	return c, err
}

// Remove deletes the named category after reassigning every one of its
// orders to the queue's default category. Reassignment and deletion are one
// transaction: a partial failure cannot leave orders pointing at a missing
// category. The default category itself cannot be removed.
func (s *CategoryService) Remove(ctx context.Context, repoID int64, name string) error {
	name = NormalizeName(name)
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		r, err := store.GetRepo(ctx, tx, repoID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRepoNotFound
		}
		if err != nil {
			return err
		}
		c, err := store.GetCategoryByName(ctx, tx, repoID, name)
		if errors.Is(err, store.ErrNotFound) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}
		if c.ID == r.DefaultCategoryID {
			return ErrDefaultCategory
		}
		if _, err := store.MoveOrdersCategory(ctx, tx, repoID, c.ID, r.DefaultCategoryID); err != nil {
			return err
		}
		return store.DeleteCategory(ctx, tx, repoID, c.ID)
	})
}

// Rename changes a category's name in place; order references are by id and
// unaffected. It returns ErrCategoryNotFound when old does not exist and
// ErrCategoryExists when new is already taken.
func (s *CategoryService) Rename(ctx context.Context, repoID int64, oldName, newName string) error {
	oldName = NormalizeName(oldName)
	newName = NormalizeName(newName)
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		c, err := store.GetCategoryByName(ctx, tx, repoID, oldName)
		if errors.Is(err, store.ErrNotFound) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}
		ok, err := store.RenameCategory(ctx, tx, repoID, c.ID, newName)
		if errors.Is(err, store.ErrDuplicate) {
			return ErrCategoryExists
		}
		if err != nil {
			return err
		}
		if !ok {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// ListByName returns the queue's categories as a name -> id mapping.
func (s *CategoryService) ListByName(ctx context.Context, repoID int64) (map[string]int64, error) {
	cats, err := store.ListCategories(ctx, s.DB, repoID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(cats))
	for _, c := range cats {
		out[c.Name] = c.ID
	}
	return out, nil
}

// ListByID returns the queue's categories as an id -> name mapping.
func (s *CategoryService) ListByID(ctx context.Context, repoID int64) (map[int64]string, error) {
	cats, err := store.ListCategories(ctx, s.DB, repoID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Name
	}
	return out, nil
}

// NormalizeName trims whitespace and NFC-normalizes a category name so that
// equality matches what a reader sees.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
