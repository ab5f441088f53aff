package domain

import (
	"errors"
	"testing"
)

func TestApplySetting_Booleans(t *testing.T) {
	var r Repo
	for _, s := range []Setting{
		AllowMemberOrder(true),
		AllowMemberQuery(true),
		AutoRetract(true),
		NeedClassify(true),
	} {
		if err := ApplySetting(&r, s); err != nil {
			t.Fatalf("ApplySetting(%T): %v", s, err)
		}
	}
	if !r.AllowMemberOrder || !r.AllowMemberQuery || !r.AutoRetract || !r.NeedClassify {
		t.Fatalf("flags not applied: %+v", r)
	}
}

func TestApplySetting_DefaultOrderNum(t *testing.T) {
	var r Repo
	if err := ApplySetting(&r, DefaultOrderNum(1)); err != nil {
		t.Fatalf("lower bound: %v", err)
	}
	if err := ApplySetting(&r, DefaultOrderNum(MaxOrderNum)); err != nil {
		t.Fatalf("upper bound: %v", err)
	}
	if r.DefaultOrderNum != MaxOrderNum {
		t.Fatalf("DefaultOrderNum = %d", r.DefaultOrderNum)
	}

	for _, v := range []DefaultOrderNum{0, -1, MaxOrderNum + 1} {
		if err := ApplySetting(&r, v); !errors.Is(err, ErrInvalidSetting) {
			t.Fatalf("ApplySetting(%d): want ErrInvalidSetting, got %v", int(v), err)
		}
	}
	// Rejected values leave the struct untouched.
	if r.DefaultOrderNum != MaxOrderNum {
		t.Fatalf("DefaultOrderNum mutated on rejection: %d", r.DefaultOrderNum)
	}
}

func TestGroupBinding_IsBound(t *testing.T) {
	g := GroupBinding{BoundRepoIDs: []int64{1, 5, 9}}
	if !g.IsBound(5) {
		t.Fatalf("IsBound(5) = false")
	}
	if g.IsBound(2) {
		t.Fatalf("IsBound(2) = true")
	}
	var empty GroupBinding
	if empty.IsBound(1) {
		t.Fatalf("empty binding bound to 1")
	}
}
