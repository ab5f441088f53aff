// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the Category
// model. Name uniqueness within a queue is enforced by a composite unique
// index; violations surface as ErrDuplicate.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// ErrDuplicate indicates that a category with the same name already exists
// in the queue.
var ErrDuplicate = errors.New("duplicate")

// CreateCategory inserts a category and returns ErrDuplicate when the
// (repo, name) pair already exists.
func CreateCategory(ctx context.Context, db *gorm.DB, repoID int64, name string) (*domain.Category, error) {
	c := &domain.Category{
		RepoID:    repoID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetCategoryByName fetches one category of repoID by exact name, or
// ErrNotFound.
func GetCategoryByName(ctx context.Context, db *gorm.DB, repoID int64, name string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Where("repo_id = ? AND name = ?", repoID, name).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategory fetches one category of repoID by id, or ErrNotFound.
func GetCategory(ctx context.Context, db *gorm.DB, repoID, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Where("id = ? AND repo_id = ?", id, repoID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns every category of repoID ordered by id ascending.
func ListCategories(ctx context.Context, db *gorm.DB, repoID int64) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).
		Where("repo_id = ?", repoID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// RenameCategory renames a category in place. Order references are by id, so
// they are unaffected. Returns ErrDuplicate when the target name is taken and
// reports false when the category does not exist.
func RenameCategory(ctx context.Context, db *gorm.DB, repoID, id int64, newName string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("id = ? AND repo_id = ?", id, repoID).
		Update("name", newName)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, ErrDuplicate
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteCategory removes one category row. Callers must have reassigned its
// orders first, inside the same transaction.
func DeleteCategory(ctx context.Context, db *gorm.DB, repoID, id int64) error {
	return db.WithContext(ctx).
		Where("id = ? AND repo_id = ?", id, repoID).
		Delete(&domain.Category{}).Error
}

// DeleteCategoriesByRepoIDs permanently removes every category of the given
// queues. Used by the retention sweep only.
func DeleteCategoriesByRepoIDs(ctx context.Context, db *gorm.DB, repoIDs []int64) error {
	if len(repoIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("repo_id IN ?", repoIDs).
		Delete(&domain.Category{}).Error
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
