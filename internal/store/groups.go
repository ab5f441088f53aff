// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the
// GroupBinding model.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// GetGroup fetches the binding for a tenant, or ErrNotFound.
func GetGroup(ctx context.Context, db *gorm.DB, targetID string) (*domain.GroupBinding, error) {
	var g domain.GroupBinding
	if err := db.WithContext(ctx).First(&g, "target_id = ?", targetID).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts a new binding.
func CreateGroup(ctx context.Context, db *gorm.DB, g *domain.GroupBinding) error {
	return db.WithContext(ctx).Create(g).Error
}

// SaveGroup persists every field of g, including the bound-queue set.
func SaveGroup(ctx context.Context, db *gorm.DB, g *domain.GroupBinding) error {
	return db.WithContext(ctx).Save(g).Error
}

// DeleteGroup permanently removes the binding of targetID. Used by the
// retention sweep only.
func DeleteGroup(ctx context.Context, db *gorm.DB, targetID string) error {
	return db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Delete(&domain.GroupBinding{}).Error
}
