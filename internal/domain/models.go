// Package domain defines the persistence models for the order-queue engine.
// These types are mapped with GORM and are shared across the store and
// service layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Repo is a single ordered work queue owned by a master identity. A tenant
// (chat group) creates exactly one base Repo when the feature is enabled and
// may additionally bind foreign Repos by id.
//
// Fields:
//   - ID: autoincrement primary key; never reused.
//   - CreatedBy: opaque tenant id that created the queue.
//   - MasterID: current owning identity; transferable by the current master.
//   - AllowMemberOrder / AllowMemberQuery: whether plain members may submit
//     orders / inspect their own position.
//   - AutoRetract: hint for the host to retract report messages after a delay.
//   - NeedClassify: whether submissions must name a category explicitly.
//   - DefaultOrderNum: display page size for admin listings (1..30).
//   - DefaultCategoryID: the undeletable default category of this queue.
type Repo struct {
	ID                int64     `json:"id"                  gorm:"primaryKey;autoIncrement"`
	CreatedBy         string    `json:"created_by"          gorm:"type:varchar(64);not null;index:idx_repo_creator"`
	MasterID          string    `json:"master_id"           gorm:"type:varchar(64);not null;index:idx_repo_master"`
	AllowMemberOrder  bool      `json:"allow_member_order"  gorm:"not null;default:false"`
	AllowMemberQuery  bool      `json:"allow_member_query"  gorm:"not null;default:false"`
	AutoRetract       bool      `json:"auto_retract"        gorm:"not null;default:false"`
	NeedClassify      bool      `json:"need_classify"       gorm:"not null;default:false"`
	DefaultOrderNum   int       `json:"default_order_num"   gorm:"not null;default:5"`
	DefaultCategoryID int64     `json:"default_category_id" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for Repo.
func (Repo) TableName() string { return "repos" }

// Category is a named bucket for orders inside one Repo. Names are unique per
// Repo. Every Repo owns exactly one default category that cannot be deleted;
// removing any other category reassigns its orders to the default.
type Category struct {
	ID        int64     `json:"id"      gorm:"primaryKey;autoIncrement"`
	RepoID    int64     `json:"repo_id" gorm:"not null;uniqueIndex:ux_category_repo_name,priority:1"`
	Name      string    `json:"name"    gorm:"type:varchar(64);not null;uniqueIndex:ux_category_repo_name,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Order is one queued work item. IDs are assigned by storage, strictly
// increasing and never reused; they are the only stable handle used by
// finish/undo/edit/delete. Position is never stored: it is recomputed from
// the live open set at read time.
//
// Fields:
//   - SubmitterID: opaque identity of whoever the order belongs to.
//   - Nickname: display-name snapshot taken at submission time.
//   - Remark: free-text description of the work.
//   - Finished: lifecycle flag (Open=false, Finished=true).
//   - CreatedAt: submission time; immutable.
type Order struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement"`
	RepoID      int64     `json:"repo_id"      gorm:"not null;index:idx_order_repo_open,priority:1"`
	CategoryID  int64     `json:"category_id"  gorm:"not null;index:idx_order_category"`
	SubmitterID string    `json:"submitter_id" gorm:"type:varchar(64);not null;index:idx_order_submitter"`
	Nickname    string    `json:"nickname"     gorm:"type:varchar(255);not null"`
	Remark      string    `json:"remark"       gorm:"type:text;not null"`
	Finished    bool      `json:"finished"     gorm:"not null;default:false;index:idx_order_repo_open,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// GroupBinding maps a tenant to its enable flag and the set of queue ids it
// has attached. The tenant's own base Repo is always a member of the bound
// set and cannot be unbound.
type GroupBinding struct {
	TargetID     string                     `json:"target_id"      gorm:"type:varchar(64);primaryKey"`
	Enabled      bool                       `json:"enabled"        gorm:"not null;default:true"`
	BaseRepoID   int64                      `json:"base_repo_id"   gorm:"not null"`
	BoundRepoIDs datatypes.JSONSlice[int64] `json:"bound_repo_ids"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// TableName returns the database table name for GroupBinding.
func (GroupBinding) TableName() string { return "group_bindings" }

// IsBound reports whether repoID is in the binding's bound set.
func (g *GroupBinding) IsBound(repoID int64) bool {
	for _, id := range g.BoundRepoIDs {
		if id == repoID {
			return true
		}
	}
	return false
}

// AdminGrant marks SenderID as a delegated admin of RepoID, short of
// ownership. Add/remove are idempotent; the pair is unique.
type AdminGrant struct {
	ID        int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	SenderID  string    `json:"sender_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_grant_sender_repo,priority:1"`
	RepoID    int64     `json:"repo_id"   gorm:"not null;uniqueIndex:ux_grant_sender_repo,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for AdminGrant.
func (AdminGrant) TableName() string { return "admin_grants" }

// WithdrawalRecord marks a tenant as pending permanent deletion. The sweep
// purges all data owned by the tenant once the record is older than the
// grace window and the tenant's external membership is gone.
type WithdrawalRecord struct {
	TargetID  string    `json:"target_id"  gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"type:DATETIME NOT NULL;index"`
}

// TableName returns the database table name for WithdrawalRecord.
func (WithdrawalRecord) TableName() string { return "withdrawal_records" }
