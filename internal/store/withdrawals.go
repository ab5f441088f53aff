// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the
// WithdrawalRecord model used by the retention sweep.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// GetWithdrawal fetches the pending record for targetID, or ErrNotFound.
func GetWithdrawal(ctx context.Context, db *gorm.DB, targetID string) (*domain.WithdrawalRecord, error) {
	var w domain.WithdrawalRecord
	if err := db.WithContext(ctx).First(&w, "target_id = ?", targetID).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWithdrawal records a pending deletion at the given time. When a
// record already exists the existing one is returned unchanged, so
// re-requesting cannot push the purge deadline out.
func CreateWithdrawal(ctx context.Context, db *gorm.DB, targetID string, now time.Time) (*domain.WithdrawalRecord, error) {
	w := &domain.WithdrawalRecord{TargetID: targetID, CreatedAt: now}
	err := db.WithContext(ctx).Create(w).Error
	if err != nil && isUniqueViolation(err) {
		return GetWithdrawal(ctx, db, targetID)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWithdrawal removes the pending record. Removing a record that does
// not exist is not an error.
func DeleteWithdrawal(ctx context.Context, db *gorm.DB, targetID string) error {
	err := db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Delete(&domain.WithdrawalRecord{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// ListWithdrawalsBefore returns every record created before cutoff, oldest
// first. These are the tenants whose grace window has elapsed.
func ListWithdrawalsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.WithdrawalRecord, error) {
	var out []domain.WithdrawalRecord
	err := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
