// Package store implements the data persistence layer for the queue engine,
// backed by GORM. This file provides the transaction wrapper used by every
// multi-field mutation.
//
// All mutations that touch more than one row or field run through InTx so a
// partial failure can never leave orders pointing at missing categories or a
// finished flag without its remark marker. Transient failures (sqlite busy /
// locked, dropped connections) are retried up to three attempts; the callback
// must therefore be safely re-runnable, which every caller guarantees by
// re-reading state inside the transaction before mutating.
package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// txAttempts bounds automatic retries of a transaction on transient failure.
const txAttempts = 3

// InTx runs fn inside a database transaction, retrying up to txAttempts times
// when the failure looks transient. The error of the last attempt is returned
// once retries are exhausted; non-transient errors are returned immediately.
func InTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt < txAttempts {
			time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
		}
	}
	return err
}

// retryable reports whether err is a transient storage failure worth another
// attempt. glebarez/sqlite surfaces lock contention as plain-text errors, so
// this is a string check much like the unique-violation sniffing elsewhere.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "database is locked") ||
		strings.Contains(low, "database table is locked") ||
		strings.Contains(low, "busy") ||
		strings.Contains(low, "connection reset") ||
		strings.Contains(low, "bad connection")
}
