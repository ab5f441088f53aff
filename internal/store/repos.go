// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the Repo
// (work queue) model.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// CreateRepo inserts r and lets storage assign the id.
func CreateRepo(ctx context.Context, db *gorm.DB, r *domain.Repo) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetRepo fetches a queue by id, or ErrNotFound.
func GetRepo(ctx context.Context, db *gorm.DB, id int64) (*domain.Repo, error) {
	var r domain.Repo
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRepo persists every field of r. Callers load the row, mutate it, and
// save inside one transaction.
func SaveRepo(ctx context.Context, db *gorm.DB, r *domain.Repo) error {
	return db.WithContext(ctx).Save(r).Error
}

// UpdateMaster reassigns queue ownership. Reports false when the queue does
// not exist.
func UpdateMaster(ctx context.Context, db *gorm.DB, repoID int64, newMasterID string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Repo{}).
		Where("id = ?", repoID).
		Update("master_id", newMasterID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListRepoIDsByCreator returns the ids of every queue created by targetID.
func ListRepoIDsByCreator(ctx context.Context, db *gorm.DB, targetID string) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Repo{}).
		Where("created_by = ?", targetID).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteReposByCreator permanently removes every queue created by targetID.
// Used by the retention sweep only.
func DeleteReposByCreator(ctx context.Context, db *gorm.DB, targetID string) error {
	return db.WithContext(ctx).
		Where("created_by = ?", targetID).
		Delete(&domain.Repo{}).Error
}
