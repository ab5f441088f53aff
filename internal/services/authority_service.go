// Package services – AuthorityService
//
// Resolves whether an acting identity may administer a queue: either it is
// the queue's current master, or it holds a delegated admin grant on that
// exact queue. There is no inheritance across queues; callers that operate
// over several bound queues must re-check per queue, because a tenant may
// bind queues it does not administer.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/store"
)

// AuthorityService answers admin checks and manages delegated grants and
// ownership transfer.
type AuthorityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewAuthorityService constructs an AuthorityService.
func NewAuthorityService(db *gorm.DB) *AuthorityService {
	return &AuthorityService{DB: db}
}

// IsAuthorized reports whether actorID may administer repoID: true iff the
// actor is the queue's master or holds an admin grant on it. A missing queue
// is simply not authorized, not an error.
func (s *AuthorityService) IsAuthorized(ctx context.Context, actorID string, repoID int64) (bool, error) {
	r, err := store.GetRepo(ctx, s.DB, repoID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if r.MasterID == actorID {
		return true, nil
	}
	return store.HasGrant(ctx, s.DB, actorID, repoID)
}

// Grant makes senderID a delegated admin of repoID. Granting twice is a
// no-op. The queue must exist.
func (s *AuthorityService) Grant(ctx context.Context, senderID string, repoID int64) error {
	if _, err := store.GetRepo(ctx, s.DB, repoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRepoNotFound
		}
		return err
	}
	return store.AddGrant(ctx, s.DB, senderID, repoID)
}

// Revoke removes senderID's delegated-admin grant on repoID. Revoking a
// grant that does not exist is a no-op.
func (s *AuthorityService) Revoke(ctx context.Context, senderID string, repoID int64) error {
	return store.RemoveGrant(ctx, s.DB, senderID, repoID)
}

// TransferMaster reassigns queue ownership to newMasterID. Only the current
// master may transfer; anyone else gets ErrNotMaster.
func (s *AuthorityService) TransferMaster(ctx context.Context, repoID int64, actorID, newMasterID string) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		r, err := store.GetRepo(ctx, tx, repoID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRepoNotFound
		}
		if err != nil {
			return err
		}
		if r.MasterID != actorID {
			return ErrNotMaster
		}
		_, err = store.UpdateMaster(ctx, tx, repoID, newMasterID)
		return err
	})
}
