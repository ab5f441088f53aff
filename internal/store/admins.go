// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the AdminGrant
// model. Grants are idempotent: adding an existing grant or removing a
// missing one succeeds without effect.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// HasGrant reports whether senderID holds a delegated-admin grant on repoID.
func HasGrant(ctx context.Context, db *gorm.DB, senderID string, repoID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.AdminGrant{}).
		Where("sender_id = ? AND repo_id = ?", senderID, repoID).
		Count(&n).Error
	return n > 0, err
}

// AddGrant inserts a grant if it does not already exist.
func AddGrant(ctx context.Context, db *gorm.DB, senderID string, repoID int64) error {
	g := &domain.AdminGrant{
		SenderID:  senderID,
		RepoID:    repoID,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Create(g).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// RemoveGrant deletes a grant. Removing a grant that does not exist is not
// an error.
func RemoveGrant(ctx context.Context, db *gorm.DB, senderID string, repoID int64) error {
	err := db.WithContext(ctx).
		Where("sender_id = ? AND repo_id = ?", senderID, repoID).
		Delete(&domain.AdminGrant{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// DeleteGrantsByRepoIDs permanently removes every grant on the given queues.
// Used by the retention sweep only.
func DeleteGrantsByRepoIDs(ctx context.Context, db *gorm.DB, repoIDs []int64) error {
	if len(repoIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("repo_id IN ?", repoIDs).
		Delete(&domain.AdminGrant{}).Error
}
