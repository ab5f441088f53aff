// Package services – GroupService
//
// Manages the tenant-side state: the enable flag, the base queue created on
// first enable, the set of additionally bound queues, and the closed set of
// mutable queue settings. The base queue is always a member of the bound set
// and can never be unbound.
package services

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
	"github.com/tbourn/go-order-backend/internal/store"
)

// defaultOrderNum is the initial admin listing page size for a new queue.
const defaultOrderNum = 5

// GroupService provides tenant binding and queue settings operations.
type GroupService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewGroupService constructs a GroupService.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

// Enable turns the feature on for tenantID with masterID owning the queue.
// The first enable creates the tenant's base queue together with its default
// category and the binding; later enables flip the flag back on and retarget
// the base queue's master. The base queue is returned either way.
func (s *GroupService) Enable(ctx context.Context, tenantID, masterID string) (*domain.Repo, error) {
	var out *domain.Repo
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		g, err := store.GetGroup(ctx, tx, tenantID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if g != nil {
			r, err := store.GetRepo(ctx, tx, g.BaseRepoID)
			if err != nil {
				return err
			}
			g.Enabled = true
			if err := store.SaveGroup(ctx, tx, g); err != nil {
				return err
			}
			r.MasterID = masterID
			if err := store.SaveRepo(ctx, tx, r); err != nil {
				return err
			}
			out = r
			return nil
		}

		r := &domain.Repo{
			CreatedBy:       tenantID,
			MasterID:        masterID,
			DefaultOrderNum: defaultOrderNum,
		}
		if err := store.CreateRepo(ctx, tx, r); err != nil {
			return err
		}
		c, err := store.CreateCategory(ctx, tx, r.ID, DefaultCategoryName)
		if err != nil {
			return err
		}
		r.DefaultCategoryID = c.ID
		if err := store.SaveRepo(ctx, tx, r); err != nil {
			return err
		}
		if err := store.CreateGroup(ctx, tx, &domain.GroupBinding{
			TargetID:     tenantID,
			Enabled:      true,
			BaseRepoID:   r.ID,
			BoundRepoIDs: datatypes.NewJSONSlice([]int64{r.ID}),
		}); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Disable turns the feature off for tenantID without touching any data.
func (s *GroupService) Disable(ctx context.Context, tenantID string) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		g, err := store.GetGroup(ctx, tx, tenantID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		g.Enabled = false
		return store.SaveGroup(ctx, tx, g)
	})
}

// Bind attaches an existing queue to the tenant's bound set. Binding a queue
// twice is a no-op. The tenant need not administer the queue; authorization
// stays per queue.
func (s *GroupService) Bind(ctx context.Context, tenantID string, repoID int64) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		if _, err := store.GetRepo(ctx, tx, repoID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRepoNotFound
			}
			return err
		}
		g, err := store.GetGroup(ctx, tx, tenantID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		if g.IsBound(repoID) {
			return nil
		}
		g.BoundRepoIDs = append(g.BoundRepoIDs, repoID)
		return store.SaveGroup(ctx, tx, g)
	})
}

// Unbind detaches a queue from the tenant's bound set. The base queue cannot
// be unbound; unbinding a queue that is not bound is a no-op.
func (s *GroupService) Unbind(ctx context.Context, tenantID string, repoID int64) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		g, err := store.GetGroup(ctx, tx, tenantID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		if repoID == g.BaseRepoID {
			return ErrBaseRepo
		}
		kept := g.BoundRepoIDs[:0]
		for _, id := range g.BoundRepoIDs {
			if id != repoID {
				kept = append(kept, id)
			}
		}
		g.BoundRepoIDs = kept
		return store.SaveGroup(ctx, tx, g)
	})
}

// BoundRepos returns the tenant's bound queue ids. ErrGroupDisabled is
// returned when the binding exists but the feature is switched off.
func (s *GroupService) BoundRepos(ctx context.Context, tenantID string) ([]int64, error) {
	g, err := store.GetGroup(ctx, s.DB, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if !g.Enabled {
		return nil, ErrGroupDisabled
	}
	return g.BoundRepoIDs, nil
}

// UpdateSetting applies one member of the closed settings union to the
// queue, validating the value before anything is written.
func (s *GroupService) UpdateSetting(ctx context.Context, repoID int64, setting domain.Setting) error {
	return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		r, err := store.GetRepo(ctx, tx, repoID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRepoNotFound
		}
		if err != nil {
			return err
		}
		if err := domain.ApplySetting(r, setting); err != nil {
			return err
		}
		return store.SaveRepo(ctx, tx, r)
	})
}
