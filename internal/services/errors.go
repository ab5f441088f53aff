// Package services defines the business logic of the queue engine: authority
// checks, category registry, order lifecycle, group bindings, and retention.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors cover the Conflict kind of failure: duplicate names, missing
// referenced entities, attempts outside authorization. Routine "no matching
// open order" outcomes are reported as plain false booleans by the queue
// methods, never as errors. Translation into user-facing chat messages is
// performed by the host.
package services

import "errors"

var (
	// ErrRepoNotFound indicates that the referenced queue does not exist.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrGroupNotFound indicates that the tenant has no binding (the feature
	// was never enabled for it).
	ErrGroupNotFound = errors.New("group binding not found")

	// ErrGroupDisabled indicates the tenant's binding exists but is disabled.
	ErrGroupDisabled = errors.New("group binding disabled")

	// ErrCategoryNotFound indicates that the referenced category does not
	// exist in the given queue.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryExists is returned when creating or renaming a category to
	// a name already taken within the queue.
	ErrCategoryExists = errors.New("category name already exists")

	// ErrDefaultCategory is returned when attempting to delete a queue's
	// default category.
	ErrDefaultCategory = errors.New("default category cannot be removed")

	// ErrEmptyRemark is returned when a submission carries no remark text.
	ErrEmptyRemark = errors.New("remark is empty")

	// ErrCategoryRequired is returned when a queue requires classification
	// and a submission names no category.
	ErrCategoryRequired = errors.New("category required for this repository")

	// ErrNotMaster is returned when an ownership transfer is attempted by
	// anyone but the current master.
	ErrNotMaster = errors.New("actor is not the repository master")

	// ErrBaseRepo is returned when attempting to unbind a tenant's own base
	// repository.
	ErrBaseRepo = errors.New("base repository cannot be unbound")
)
