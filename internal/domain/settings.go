package domain

import (
	"errors"
	"fmt"
)

// MaxOrderNum caps Repo.DefaultOrderNum. Larger admin listings get clipped by
// hosts anyway, so values beyond this are configuration mistakes.
const MaxOrderNum = 30

// ErrInvalidSetting is returned when a Setting carries an out-of-range value.
var ErrInvalidSetting = errors.New("invalid setting value")

// Setting is one member of the closed set of mutable Repo settings. Using a
// sealed union instead of a column name keeps every settable field explicit
// and validated at the call boundary.
type Setting interface {
	apply(*Repo) error
}

// AllowMemberOrder toggles whether plain members may submit orders.
type AllowMemberOrder bool

func (v AllowMemberOrder) apply(r *Repo) error {
	r.AllowMemberOrder = bool(v)
	return nil
}

// AllowMemberQuery toggles whether plain members may inspect their queue position.
type AllowMemberQuery bool

func (v AllowMemberQuery) apply(r *Repo) error {
	r.AllowMemberQuery = bool(v)
	return nil
}

// AutoRetract toggles the host hint to retract report messages after a delay.
type AutoRetract bool

func (v AutoRetract) apply(r *Repo) error {
	r.AutoRetract = bool(v)
	return nil
}

// NeedClassify toggles whether submissions must name a category explicitly.
type NeedClassify bool

func (v NeedClassify) apply(r *Repo) error {
	r.NeedClassify = bool(v)
	return nil
}

// DefaultOrderNum sets the display page size for admin listings. Valid range
// is 1..MaxOrderNum.
type DefaultOrderNum int

func (v DefaultOrderNum) apply(r *Repo) error {
	if v < 1 || v > MaxOrderNum {
		return fmt.Errorf("%w: default order num %d not in [1,%d]", ErrInvalidSetting, int(v), MaxOrderNum)
	}
	r.DefaultOrderNum = int(v)
	return nil
}

// ApplySetting mutates r in place according to s, validating the value first.
func ApplySetting(r *Repo, s Setting) error {
	return s.apply(r)
}
