// Package services – QueueService
//
// The order lifecycle engine. An order moves Open --finish--> Finished
// --undo finish--> Open; edits mutate remark or category without changing
// state and return the prior value so the caller gets a reversal for free.
// Soft deletion is modeled as a remark marker plus finish, so its inverse is
// a plain restore.
//
// Position is never stored. It is recomputed from the live open set at read
// time: the count of open orders in the position scope with a strictly
// smaller id. Membership of the set changes constantly and out of band
// (finishes, undos, deletions, new arrivals); a maintained counter would
// need a transactional adjustment on every one of those and periodic
// reconciliation besides, while the recompute keeps the invariant true by
// construction at O(n) over an active set that stays customer-support sized.
//
// Mutating operations take the acting identity and, on success, push a
// reversal closure onto the undo stack as a side effect. The closures invoke
// store-level operations directly so that running one never pushes further
// history.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-backend/internal/domain"
	"github.com/tbourn/go-order-backend/internal/metrics"
	"github.com/tbourn/go-order-backend/internal/store"
	"github.com/tbourn/go-order-backend/internal/undo"
)

// deletedMarker is appended to the remark of a soft-deleted order. The
// inverse action restores the original remark verbatim.
const deletedMarker = " [deleted]"

// Mode selects the ordering of admin listings. Ascending answers "who is
// next", descending answers "what came in recently"; both are load-bearing
// for day-to-day operation and must stay exact.
type Mode int

const (
	// Ascending lists orders oldest first (id ascending).
	Ascending Mode = iota
	// Descending lists orders most recent first (id descending).
	Descending
)

// Scope is the caller-defined filtered set a query runs over. Whether the
// category takes part in position counting is the caller's choice: set
// CategoryID and it does, leave it zero and it does not.
type Scope struct {
	// RepoIDs is the allowed queue set; authorization over each id is the
	// caller's responsibility.
	RepoIDs []int64
	// CategoryID, when non-zero, restricts the set to one category.
	CategoryID int64
	// Remark, when non-empty, requires remarks to contain the substring.
	Remark string
	// IncludeFinished also lists finished orders. Position always counts
	// open orders only.
	IncludeFinished bool
}

// storeScope converts the scope for listing, optionally pinned to one
// submitter.
func (sc Scope) storeScope(submitterID string) store.OrderScope {
	return store.OrderScope{
		RepoIDs:         sc.RepoIDs,
		SubmitterID:     submitterID,
		CategoryID:      sc.CategoryID,
		RemarkLike:      strings.TrimSpace(sc.Remark),
		IncludeFinished: sc.IncludeFinished,
	}
}

// positionScope is the scope positions are counted in: the queue set and the
// optional category, open orders only. Submitter and remark filters never
// narrow it, because everyone else's open orders are still ahead of you.
func (sc Scope) positionScope() store.OrderScope {
	return store.OrderScope{
		RepoIDs:    sc.RepoIDs,
		CategoryID: sc.CategoryID,
	}
}

// Positioned is one query result row: an order plus its live position.
type Positioned struct {
	Order    domain.Order
	Position int64
}

// OrderField names the mutable order field of an edit.
type OrderField int

const (
	// FieldRemark edits the free-text remark.
	FieldRemark OrderField = iota + 1
	// FieldCategory moves the order to another category.
	FieldCategory
)

// OrderEdit is a closed edit request: exactly one field, carried in the
// matching value slot. The same shape is returned as the previous value.
type OrderEdit struct {
	Field      OrderField
	Remark     string
	CategoryID int64
}

// QueueService implements the order lifecycle over the store.
type QueueService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Undo receives reversal closures for successful mutations.
	Undo *undo.Stack
}

// NewQueueService constructs a QueueService pushing reversals onto st.
func NewQueueService(db *gorm.DB, st *undo.Stack) *QueueService {
	return &QueueService{DB: db, Undo: st}
}

// Enqueue appends a new open order to repoID and returns the storage-assigned
// id. The remark must be non-empty. A zero categoryID files the order under
// the queue's default category unless the queue requires classification, in
// which case ErrCategoryRequired is returned. Concurrent submissions are safe:
// id assignment happens inside the insert, so two enqueues can never share one.
func (s *QueueService) Enqueue(ctx context.Context, repoID int64, submitterID, nickname, remark string, categoryID int64) (int64, error) {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return 0, ErrEmptyRemark
	}
	var id int64
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		r, err := store.GetRepo(ctx, tx, repoID)
		if err != nil {
			if err == store.ErrNotFound {
				return ErrRepoNotFound
			}
			return err
		}
		if categoryID == 0 {
			if r.NeedClassify {
				return ErrCategoryRequired
			}
			categoryID = r.DefaultCategoryID
		} else if _, err := store.GetCategory(ctx, tx, repoID, categoryID); err != nil {
			if err == store.ErrNotFound {
				return ErrCategoryNotFound
			}
			return err
		}
		o := &domain.Order{
			RepoID:      repoID,
			CategoryID:  categoryID,
			SubmitterID: submitterID,
			Nickname:    nickname,
			Remark:      remark,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.CreateOrder(ctx, tx, o); err != nil {
			return err
		}
		id = o.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.OrdersEnqueued.Inc()
	return id, nil
}

// Position returns how many open orders in the position scope have an id
// strictly smaller than o's. The count runs lock-free over a possibly
// slightly stale snapshot; the value is advisory ("about this many ahead"),
// so that is acceptable.
func (s *QueueService) Position(ctx context.Context, o domain.Order, scope Scope) (int64, error) {
	return store.CountOpenBefore(ctx, s.DB, scope.positionScope(), o.ID)
}

// QueryOne is the member-facing "my tickets" view: the submitter's orders in
// scope, strictly chronological (id ascending), each with its live position.
func (s *QueueService) QueryOne(ctx context.Context, submitterID string, scope Scope) ([]Positioned, error) {
	orders, err := store.ListOrders(ctx, s.DB, scope.storeScope(submitterID), false)
	if err != nil {
		return nil, err
	}
	return s.withPositions(ctx, orders, scope)
}

// QueryAll is the admin-facing view over the scope, ascending or descending
// by id depending on mode, each row with its live position.
func (s *QueueService) QueryAll(ctx context.Context, scope Scope, mode Mode) ([]Positioned, error) {
	orders, err := store.ListOrders(ctx, s.DB, scope.storeScope(""), mode == Descending)
	if err != nil {
		return nil, err
	}
	return s.withPositions(ctx, orders, scope)
}

func (s *QueueService) withPositions(ctx context.Context, orders []domain.Order, scope Scope) ([]Positioned, error) {
	out := make([]Positioned, 0, len(orders))
	pscope := scope.positionScope()
	for _, o := range orders {
		pos, err := store.CountOpenBefore(ctx, s.DB, pscope, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Positioned{Order: o, Position: pos})
	}
	return out, nil
}

// Finish transitions an open order to finished. The transition applies iff an
// open order with that id exists within repoIDs and, when submitterID is
// non-empty, belongs to that submitter. False means no such open order — a
// routine outcome (double finish, stale id), not a fault. On success a
// reversal reopening the order is pushed for actorID.
func (s *QueueService) Finish(ctx context.Context, actorID string, id int64, repoIDs []int64, submitterID string) (bool, error) {
	ok, err := s.setFinished(ctx, id, repoIDs, submitterID, true)
	if err != nil || !ok {
		return ok, err
	}
	metrics.OrdersFinished.Inc()
	s.Undo.Push(actorID, undo.Action{
		Description: fmt.Sprintf("reopened order #%d", id),
		Revert: func(ctx context.Context) error {
			return s.revertFinished(ctx, id, repoIDs, false)
		},
	})
	return true, nil
}

// UndoFinish transitions a finished order back to open, with the same scoping
// and not-found semantics as Finish. On success a reversal finishing the
// order again is pushed for actorID.
func (s *QueueService) UndoFinish(ctx context.Context, actorID string, id int64, repoIDs []int64, submitterID string) (bool, error) {
	ok, err := s.setFinished(ctx, id, repoIDs, submitterID, false)
	if err != nil || !ok {
		return ok, err
	}
	metrics.OrdersReopened.Inc()
	s.Undo.Push(actorID, undo.Action{
		Description: fmt.Sprintf("finished order #%d again", id),
		Revert: func(ctx context.Context) error {
			return s.revertFinished(ctx, id, repoIDs, true)
		},
	})
	return true, nil
}

func (s *QueueService) setFinished(ctx context.Context, id int64, repoIDs []int64, submitterID string, finished bool) (bool, error) {
	var ok bool
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		var err error
		ok, err = store.SetFinished(ctx, tx, id, repoIDs, submitterID, finished)
		return err
	})
	return ok, err
}

func (s *QueueService) revertFinished(ctx context.Context, id int64, repoIDs []int64, finished bool) error {
	ok, err := s.setFinished(ctx, id, repoIDs, "", finished)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("order #%d is no longer in the expected state", id)
	}
	return nil
}

// Edit mutates one field of an order in scope and returns the previous value
// in the same shape, so the caller (and the pushed reversal) can restore it
// exactly. ok is false when no such order exists in scope. Category edits
// must stay within the order's own queue.
func (s *QueueService) Edit(ctx context.Context, actorID string, id int64, repoIDs []int64, edit OrderEdit) (prev OrderEdit, ok bool, err error) {
	err = store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		o, err := store.GetOrder(ctx, tx, id, repoIDs)
		if err != nil {
			if err == store.ErrNotFound {
				return nil
			}
			return err
		}
		switch edit.Field {
		case FieldRemark:
			prev = OrderEdit{Field: FieldRemark, Remark: o.Remark}
			ok, err = store.UpdateOrderRemark(ctx, tx, id, edit.Remark)
		case FieldCategory:
			if _, cerr := store.GetCategory(ctx, tx, o.RepoID, edit.CategoryID); cerr != nil {
				if cerr == store.ErrNotFound {
					return ErrCategoryNotFound
				}
				return cerr
			}
			prev = OrderEdit{Field: FieldCategory, CategoryID: o.CategoryID}
			ok, err = store.UpdateOrderCategory(ctx, tx, id, edit.CategoryID)
		default:
			return fmt.Errorf("unknown order field %d", edit.Field)
		}
		return err
	})
	if err != nil || !ok {
		return OrderEdit{}, false, err
	}
	restore := prev
	s.Undo.Push(actorID, undo.Action{
		Description: fmt.Sprintf("restored order #%d", id),
		Revert: func(ctx context.Context) error {
			_, _, rerr := s.editNoUndo(ctx, id, repoIDs, restore)
			return rerr
		},
	})
	return prev, true, nil
}

// editNoUndo applies an edit without pushing history; reversal closures use
// it so that undoing never records more history.
func (s *QueueService) editNoUndo(ctx context.Context, id int64, repoIDs []int64, edit OrderEdit) (prev OrderEdit, ok bool, err error) {
	err = store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		o, err := store.GetOrder(ctx, tx, id, repoIDs)
		if err != nil {
			if err == store.ErrNotFound {
				return nil
			}
			return err
		}
		switch edit.Field {
		case FieldRemark:
			prev = OrderEdit{Field: FieldRemark, Remark: o.Remark}
			ok, err = store.UpdateOrderRemark(ctx, tx, id, edit.Remark)
		case FieldCategory:
			prev = OrderEdit{Field: FieldCategory, CategoryID: o.CategoryID}
			ok, err = store.UpdateOrderCategory(ctx, tx, id, edit.CategoryID)
		default:
			return fmt.Errorf("unknown order field %d", edit.Field)
		}
		return err
	})
	if err == nil && !ok {
		err = fmt.Errorf("order #%d no longer exists", id)
	}
	return prev, ok, err
}

// SoftDelete hides an open order: the remark gets the deletion marker and the
// order is finished, both in one transaction. The pushed reversal restores
// the original remark and reopens the order. False means no open order with
// that id exists in scope.
func (s *QueueService) SoftDelete(ctx context.Context, actorID string, id int64, repoIDs []int64) (bool, error) {
	var prevRemark string
	var ok bool
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		o, err := store.GetOrder(ctx, tx, id, repoIDs)
		if err != nil {
			if err == store.ErrNotFound {
				return nil
			}
			return err
		}
		if o.Finished {
			return nil
		}
		prevRemark = o.Remark
		if _, err := store.UpdateOrderRemark(ctx, tx, id, o.Remark+deletedMarker); err != nil {
			return err
		}
		ok, err = store.SetFinished(ctx, tx, id, repoIDs, "", true)
		return err
	})
	if err != nil || !ok {
		return false, err
	}
	restore := prevRemark
	s.Undo.Push(actorID, undo.Action{
		Description: fmt.Sprintf("restored deleted order #%d", id),
		Revert: func(ctx context.Context) error {
			return store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
				if _, err := store.UpdateOrderRemark(ctx, tx, id, restore); err != nil {
					return err
				}
				reopened, err := store.SetFinished(ctx, tx, id, repoIDs, "", false)
				if err != nil {
					return err
				}
				if !reopened {
					return fmt.Errorf("order #%d is no longer finished", id)
				}
				return nil
			})
		},
	})
	return true, nil
}

// ReassignCategory moves one order of repoID to newCategoryID. Unlike Edit
// this path is not undo-tracked: category moves are reversed at the bulk
// level, not one by one. False means no such order exists in the queue.
func (s *QueueService) ReassignCategory(ctx context.Context, id, repoID, newCategoryID int64) (bool, error) {
	var ok bool
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		if _, err := store.GetCategory(ctx, tx, repoID, newCategoryID); err != nil {
			if err == store.ErrNotFound {
				return ErrCategoryNotFound
			}
			return err
		}
		if _, err := store.GetOrder(ctx, tx, id, []int64{repoID}); err != nil {
			if err == store.ErrNotFound {
				return nil
			}
			return err
		}
		var err error
		ok, err = store.UpdateOrderCategory(ctx, tx, id, newCategoryID)
		return err
	})
	return ok, err
}

// BulkMoveCategory moves every order of fromName into toName within repoID
// and returns how many moved. Both categories must exist. The operation is
// deliberately not reversible through the undo stack.
func (s *QueueService) BulkMoveCategory(ctx context.Context, repoID int64, fromName, toName string) (int64, error) {
	fromName = NormalizeName(fromName)
	toName = NormalizeName(toName)
	var moved int64
	err := store.InTx(ctx, s.DB, func(tx *gorm.DB) error {
		from, err := store.GetCategoryByName(ctx, tx, repoID, fromName)
		if err != nil {
			if err == store.ErrNotFound {
				return ErrCategoryNotFound
			}
			return err
		}
		to, err := store.GetCategoryByName(ctx, tx, repoID, toName)
		if err != nil {
			if err == store.ErrNotFound {
				return ErrCategoryNotFound
			}
			return err
		}
		moved, err = store.MoveOrdersCategory(ctx, tx, repoID, from.ID, to.ID)
		return err
	})
	return moved, err
}
