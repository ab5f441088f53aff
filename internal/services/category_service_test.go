package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-order-backend/internal/store"
	"github.com/tbourn/go-order-backend/internal/undo"
)

func TestCategoryAdd_DuplicateName(t *testing.T) {
	db := newServiceDB(t)
	r := newQueue(t, db, "g1", "master")
	cs := NewCategoryService(db)
	ctx := context.Background()

	if _, err := cs.Add(ctx, r.ID, "bugs"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := cs.Add(ctx, r.ID, "bugs"); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("want ErrCategoryExists, got %v", err)
	}
	// Normalization collapses surrounding whitespace before the check.
	if _, err := cs.Add(ctx, r.ID, "  bugs  "); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("want ErrCategoryExists for padded name, got %v", err)
	}
}

func TestCategoryRemove_ReassignsOrdersToDefault(t *testing.T) {
	db := newServiceDB(t)
	r := newQueue(t, db, "g1", "master")
	cs := NewCategoryService(db)
	qs := NewQueueService(db, undo.NewStack(0))
	ctx := context.Background()

	c, err := cs.Add(ctx, r.ID, "bugs")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := qs.Enqueue(ctx, r.ID, "u", "n", "a bug", c.ID)
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		ids = append(ids, id)
	}

	if err := cs.Remove(ctx, r.ID, "bugs"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	for _, id := range ids {
		o, err := store.GetOrder(ctx, db, id, []int64{r.ID})
		if err != nil {
			t.Fatalf("GetOrder(%d): %v", id, err)
		}
		if o.CategoryID != r.DefaultCategoryID {
			t.Fatalf("order %d left dangling in category %d", id, o.CategoryID)
		}
	}
	if _, err := store.GetCategory(ctx, db, r.ID, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("category must be gone, got %v", err)
	}
}

func TestCategoryRemove_DefaultProtected(t *testing.T) {
	db := newServiceDB(t)
	r := newQueue(t, db, "g1", "master")
	cs := NewCategoryService(db)
	ctx := context.Background()

	if err := cs.Remove(ctx, r.ID, DefaultCategoryName); !errors.Is(err, ErrDefaultCategory) {
		t.Fatalf("want ErrDefaultCategory, got %v", err)
	}
	if err := cs.Remove(ctx, r.ID, "no-such"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound, got %v", err)
	}
	if err := cs.Remove(ctx, r.ID+99, "bugs"); !errors.Is(err, ErrRepoNotFound) {
		t.Fatalf("want ErrRepoNotFound, got %v", err)
	}
}

func TestCategoryRename(t *testing.T) {
	db := newServiceDB(t)
	r := newQueue(t, db, "g1", "master")
	cs := NewCategoryService(db)
	ctx := context.Background()

	if _, err := cs.Add(ctx, r.ID, "bugs"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := cs.Add(ctx, r.ID, "features"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := cs.Rename(ctx, r.ID, "bugs", "features"); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("want ErrCategoryExists, got %v", err)
	}
	if err := cs.Rename(ctx, r.ID, "no-such", "whatever"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound, got %v", err)
	}
	if err := cs.Rename(ctx, r.ID, "bugs", "defects"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := store.GetCategoryByName(ctx, db, r.ID, "defects"); err != nil {
		t.Fatalf("renamed category missing: %v", err)
	}
}

func TestCategoryListings(t *testing.T) {
	db := newServiceDB(t)
	r := newQueue(t, db, "g1", "master")
	cs := NewCategoryService(db)
	ctx := context.Background()

	c, err := cs.Add(ctx, r.ID, "bugs")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	byName, err := cs.ListByName(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListByName: %v", err)
	}
	if len(byName) != 2 || byName["bugs"] != c.ID || byName[DefaultCategoryName] != r.DefaultCategoryID {
		t.Fatalf("byName = %v", byName)
	}

	byID, err := cs.ListByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListByID: %v", err)
	}
	if byID[c.ID] != "bugs" || byID[r.DefaultCategoryID] != DefaultCategoryName {
		t.Fatalf("byID = %v", byID)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  café  "); got != "café" {
		t.Fatalf("NormalizeName = %q", got)
	}
	// Decomposed e + combining acute must collapse to the precomposed form.
	if got := NormalizeName("café"); got != "café" {
		t.Fatalf("NFC normalization missing: %q", got)
	}
}
