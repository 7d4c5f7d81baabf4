package models

import "strings"

const (
	DefaultDailyClickLimit    = 100
	DefaultDailyEarningsLimit = 20.00
	DefaultMinWithdrawal      = 2500.00
)

type CouponType string

const (
	CouponTypeBalance    CouponType = "balance"
	CouponTypeClickBonus CouponType = "click_bonus"
)

// Coupon lives inside the global settings document. Uses is nil for
// unlimited coupons; a numeric Uses is decremented by exactly 1 per
// successful application and never goes below 0.
type Coupon struct {
	Code            string     `json:"code"`
	Type            CouponType `json:"type"`
	Uses            *int       `json:"uses"`
	Percent         float64    `json:"percent,omitempty"`
	Multiplier      float64    `json:"multiplier,omitempty"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
}

// Exhausted reports whether a numeric-use coupon has no uses left.
func (c *Coupon) Exhausted() bool {
	return c.Uses != nil && *c.Uses <= 0
}

// ScheduledState is shared by the maintenance and server-closed blocks.
// A non-null ScheduledAt (unix milliseconds) whose time has elapsed is
// converted to Enabled=true / Since=ScheduledAt / ScheduledAt=null by
// whichever reader observes it first.
type ScheduledState struct {
	Enabled     bool   `json:"enabled"`
	Reason      string `json:"reason"`
	Since       int64  `json:"since"`
	ScheduledAt int64  `json:"scheduled_at"`
}

// ActivateIfDue applies the scheduled-activation invariant. Returns
// true when the state changed and must be persisted.
func (s *ScheduledState) ActivateIfDue(nowMillis int64) bool {
	if s.ScheduledAt == 0 || s.ScheduledAt > nowMillis {
		return false
	}
	s.Enabled = true
	s.Since = s.ScheduledAt
	s.ScheduledAt = 0
	return true
}

// Announcement is a broadcast notice shown to all users.
type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

// Settings is the single global configuration document at
// meta:settings.
type Settings struct {
	DailyClickLimit     int64          `json:"daily_click_limit"`
	DailyEarningsLimit  float64        `json:"daily_earnings_limit"`
	MinWithdrawalAmount float64        `json:"min_withdrawal_amount"`
	Coupons             []Coupon       `json:"coupons"`
	Maintenance         ScheduledState `json:"maintenance"`
	Server              ScheduledState `json:"server"`
	Announcements       []Announcement `json:"announcements"`
}

// DefaultSettings returns the hardcoded fallback configuration.
func DefaultSettings() *Settings {
	return &Settings{
		DailyClickLimit:     DefaultDailyClickLimit,
		DailyEarningsLimit:  DefaultDailyEarningsLimit,
		MinWithdrawalAmount: DefaultMinWithdrawal,
		Coupons:             []Coupon{},
		Announcements:       []Announcement{},
	}
}

// Normalize backfills missing fields with defaults.
func (s *Settings) Normalize() {
	if s.DailyClickLimit <= 0 {
		s.DailyClickLimit = DefaultDailyClickLimit
	}
	if s.DailyEarningsLimit <= 0 {
		s.DailyEarningsLimit = DefaultDailyEarningsLimit
	}
	if s.MinWithdrawalAmount <= 0 {
		s.MinWithdrawalAmount = DefaultMinWithdrawal
	}
	if s.Coupons == nil {
		s.Coupons = []Coupon{}
	}
	if s.Announcements == nil {
		s.Announcements = []Announcement{}
	}
}

// FindCoupon looks a code up case-insensitively. Returns the index and
// a pointer into the slice, or -1 and nil.
func (s *Settings) FindCoupon(code string) (int, *Coupon) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return -1, nil
	}
	for i := range s.Coupons {
		if strings.ToUpper(s.Coupons[i].Code) == upper {
			return i, &s.Coupons[i]
		}
	}
	return -1, nil
}
