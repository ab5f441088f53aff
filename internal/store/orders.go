// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides persistence functions for the Order model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an order is not found, functions return ErrNotFound
//     (= gorm.ErrRecordNotFound) or report (false, nil) for state
//     transitions, because a missing match is a routine outcome
//     (racing finishes, stale ids), never a fault.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// OrderScope restricts an order query to an exact filtered set. Position is
// always computed against the same scope the listing used, which is what
// keeps "position == count of strictly-smaller-id open items in this scope"
// trivially true.
type OrderScope struct {
	// RepoIDs is the allowed queue set. An empty slice matches nothing.
	RepoIDs []int64
	// SubmitterID, when non-empty, restricts to one submitter.
	SubmitterID string
	// CategoryID, when non-zero, restricts to one category.
	CategoryID int64
	// RemarkLike, when non-empty, requires the remark to contain the substring.
	RemarkLike string
	// IncludeFinished also returns finished orders from listings. Position
	// still counts open orders only.
	IncludeFinished bool
}

// apply composes the scope's WHERE clauses onto q.
func (s OrderScope) apply(q *gorm.DB) *gorm.DB {
	q = q.Where("repo_id IN ?", s.RepoIDs)
	if s.SubmitterID != "" {
		q = q.Where("submitter_id = ?", s.SubmitterID)
	}
	if s.CategoryID != 0 {
		q = q.Where("category_id = ?", s.CategoryID)
	}
	if s.RemarkLike != "" {
		q = q.Where("remark LIKE ?", "%"+s.RemarkLike+"%")
	}
	if !s.IncludeFinished {
		q = q.Where("finished = ?", false)
	}
	return q
}

// CreateOrder inserts o and lets storage assign the id. The caller sets
// CreatedAt; ids come out strictly increasing and are never reused.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches a single order by id restricted to the allowed queue set.
// Returns ErrNotFound if no such order exists in scope.
func GetOrder(ctx context.Context, db *gorm.DB, id int64, repoIDs []int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Where("id = ? AND repo_id IN ?", id, repoIDs).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns the orders matching scope ordered by id, ascending by
// default or descending when desc is true. An empty result is a nil-error
// empty slice.
func ListOrders(ctx context.Context, db *gorm.DB, scope OrderScope, desc bool) ([]domain.Order, error) {
	order := "id asc"
	if desc {
		order = "id desc"
	}
	var out []domain.Order
	err := scope.apply(db.WithContext(ctx)).Order(order).Find(&out).Error
	return out, err
}

// CountOpenBefore returns how many open orders in scope have an id strictly
// smaller than beforeID. This is the queue position of the order with that id.
func CountOpenBefore(ctx context.Context, db *gorm.DB, scope OrderScope, beforeID int64) (int64, error) {
	scope.IncludeFinished = false
	var n int64
	err := scope.apply(db.WithContext(ctx).Model(&domain.Order{})).
		Where("id < ?", beforeID).
		Count(&n).Error
	return n, err
}

// SetFinished flips the finished flag of one order from !finished to
// finished, restricted to the allowed queue set and, when submitterID is
// non-empty, to that submitter. It reports false when no matching order in
// the source state exists, which makes double finishes and racing undos
// naturally retry-safe.
func SetFinished(ctx context.Context, db *gorm.DB, id int64, repoIDs []int64, submitterID string, finished bool) (bool, error) {
	q := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND repo_id IN ? AND finished = ?", id, repoIDs, !finished)
	if submitterID != "" {
		q = q.Where("submitter_id = ?", submitterID)
	}
	res := q.Update("finished", finished)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateOrderRemark overwrites the remark of one order. Reports false when
// the order does not exist.
func UpdateOrderRemark(ctx context.Context, db *gorm.DB, id int64, remark string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("remark", remark)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateOrderCategory moves one order to another category. Reports false
// when the order does not exist.
func UpdateOrderCategory(ctx context.Context, db *gorm.DB, id int64, categoryID int64) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("category_id", categoryID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MoveOrdersCategory reassigns every order of fromCategoryID within repoID to
// toCategoryID and returns the number of rows moved.
func MoveOrdersCategory(ctx context.Context, db *gorm.DB, repoID, fromCategoryID, toCategoryID int64) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("repo_id = ? AND category_id = ?", repoID, fromCategoryID).
		Update("category_id", toCategoryID)
	return res.RowsAffected, res.Error
}

// DeleteOrdersByRepoIDs permanently removes every order belonging to the
// given queues. Used by the retention sweep only.
func DeleteOrdersByRepoIDs(ctx context.Context, db *gorm.DB, repoIDs []int64) error {
	if len(repoIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("repo_id IN ?", repoIDs).
		Delete(&domain.Order{}).Error
}
