// Package services – RetentionService
//
// Implements delayed permanent deletion of a withdrawn tenant's data. A
// withdrawal request records a timestamp; a host-driven periodic trigger
// calls RunSweep, which purges every queue a tenant created — orders,
// categories, admin grants, the queues themselves and the binding — once the
// grace window has elapsed and an external membership check confirms the
// tenant is really gone. Cancellation is the explicit path: the membership
// check is only a secondary safety net for departures that bypassed it.
//
// The sweep only ever deletes rows scoped by a tenant id past its grace
// window, so cross-tenant interference is impossible by construction. It is
// idempotent: once the owning rows are gone a second run finds nothing to do.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/metrics"
	"github.com/tbourn/go-order-backend/internal/store"
)

// DefaultGracePeriod is how long a withdrawal request must age before the
// sweep may purge the tenant.
const DefaultGracePeriod = 30 * time.Minute

// RetentionService records withdrawals and runs the cascading purge.
type RetentionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Grace is the withdrawal grace window.
	Grace time.Duration
	// Limiter absorbs accidental tight-loop triggering of RunSweep; hosts
	// fire it from a coarse timer anyway. Nil disables the guard.
	Limiter *rate.Limiter

	mu  sync.Mutex
	now func() time.Time
}

// NewRetentionService constructs a RetentionService with the default grace
// window and a one-per-30-seconds sweep guard.
func NewRetentionService(db *gorm.DB) *RetentionService {
	return &RetentionService{
		DB:      db,
		Grace:   DefaultGracePeriod,
		Limiter: rate.NewLimiter(rate.Every(30*time.Second), 1),
		now:     time.Now,
	}
}

// RequestWithdrawal records tenantID as pending permanent deletion and
// returns the time the purge clock started. While a record is already
// pending the existing timestamp is returned unchanged, so repeating the
// request cannot push the purge out.
func (s *RetentionService) RequestWithdrawal(ctx context.Context, tenantID string) (time.Time, error) {
	w, err := store.CreateWithdrawal(ctx, s.DB, tenantID, s.now().UTC())
	if err != nil {
		return time.Time{}, err
	}
	log.Info().Str("tenant", tenantID).Time("requested_at", w.CreatedAt).Msg("withdrawal recorded")
	return w.CreatedAt, nil
}

// CancelWithdrawal removes the pending record for tenantID. This is the
// primary cancellation mechanism; cancelling when nothing is pending is a
// no-op.
func (s *RetentionService) CancelWithdrawal(ctx context.Context, tenantID string) error {
	return store.DeleteWithdrawal(ctx, s.DB, tenantID)
}

// RunSweep processes every withdrawal record older than the grace window.
// stillMember reports whether the tenant still exists in its external
// context (e.g. the bot is still in the chat group): if it does, the record
// is dropped and the data retained; if not, every row the tenant owns is
// permanently deleted in one transaction, then the record is removed.
//
// The method is safe to invoke repeatedly and concurrently: a mutex
// serializes runs, the limiter turns excess triggers into no-ops, and the
// purge itself is idempotent.
func (s *RetentionService) RunSweep(ctx context.Context, stillMember func(tenantID string) bool) error {
	if s.Limiter != nil && !s.Limiter.Allow() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := otel.Tracer("retention").Start(ctx, "RunSweep",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	cutoff := s.now().UTC().Add(-s.Grace)
	records, err := store.ListWithdrawalsBefore(ctx, s.DB, cutoff)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("withdrawals.due", len(records)))
	metrics.SweepRuns.Inc()

	for _, rec := range records {
		if stillMember(rec.TargetID) {
			// A departure that never happened (or was cancelled out of
			// band). Drop the record, keep the data.
			if err := store.DeleteWithdrawal(ctx, s.DB, rec.TargetID); err != nil {
				return err
			}
			log.Info().Str("tenant", rec.TargetID).Msg("withdrawal dropped, tenant still present")
			continue
		}
		if err := s.purgeTenant(ctx, rec.TargetID); err != nil {
			return err
		}
		metrics.SweepPurgedTenants.Inc()
		log.Info().Str("tenant", rec.TargetID).Msg("tenant data purged")
	}
	return nil
}

// purgeTenant deletes everything created by tenantID in one transaction:
// orders, categories and grants of its queues, the queues, the binding, and
// finally the withdrawal record.
func (s *RetentionService) purgeTenant(ctx context.Context, tenantID string) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		repoIDs, err := store.ListRepoIDsByCreator(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if err := store.DeleteOrdersByRepoIDs(ctx, tx, repoIDs); err != nil {
			return err
		}
		if err := store.DeleteCategoriesByRepoIDs(ctx, tx, repoIDs); err != nil {
			return err
		}
		if err := store.DeleteGrantsByRepoIDs(ctx, tx, repoIDs); err != nil {
			return err
		}
		if err := store.DeleteReposByCreator(ctx, tx, tenantID); err != nil {
			return err
		}
		if err := store.DeleteGroup(ctx, tx, tenantID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return store.DeleteWithdrawal(ctx, tx, tenantID)
	})
}
