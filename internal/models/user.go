package models

import (
	"strings"
	"time"
)

// ActiveCoupon is a transient click-earning multiplier. It only
// applies while ExpiresAt (unix milliseconds) is in the future;
// expired entries are cleared lazily before use.
type ActiveCoupon struct {
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
	ExpiresAt  int64   `json:"expires_at"`
	OriginCode string  `json:"origin_code"`
}

// Expired reports whether the coupon is past its expiry at the given time.
func (c *ActiveCoupon) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.UnixMilli()
}

// User is the whole persisted user document, keyed by lowercased
// username. It is read, mutated in memory and written back as a unit;
// the store has no partial updates.
type User struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password,omitempty"`
	Role           string `json:"role"`

	Balance       float64 `json:"balance"`
	Clicks        int64   `json:"clicks"`
	DailyClicks   int64   `json:"daily_clicks"`
	DailyEarnings float64 `json:"daily_earnings"`
	DailyDate     string  `json:"daily_date"` // YYYY-MM-DD

	Premium      bool `json:"premium"`
	IsBanned     bool `json:"is_banned"`
	IsChatBanned bool `json:"is_chat_banned"`

	AppliedCoupon        string        `json:"applied_coupon"`
	AppliedCouponPercent float64       `json:"applied_coupon_percent"`
	ActiveCoupon         *ActiveCoupon `json:"active_coupon"`

	WithdrawalRequests []WithdrawalRequest `json:"withdrawal_requests"`
	BetRequests        []BetRequest        `json:"bet_requests"`

	ProfileName    string `json:"profile_name"`
	ProfileColor   string `json:"profile_color"`
	FlashyName     string `json:"flashy_name"`
	FlashyColor    string `json:"flashy_color"`
	FlashyAnimated bool   `json:"flashy_animated"`
	AvatarURL      string `json:"avatar_url,omitempty"`

	LastSeen  int64 `json:"last_seen"` // unix milliseconds
	CreatedAt int64 `json:"created_at"`
}

// NormalizeUsername produces the canonical document key for a username.
func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NewUser seeds a freshly registered user document.
func NewUser(username, hashedPassword string, now time.Time) *User {
	return &User{
		Username:           username,
		HashedPassword:     hashedPassword,
		Role:               "user",
		DailyDate:          DateKey(now),
		WithdrawalRequests: []WithdrawalRequest{},
		BetRequests:        []BetRequest{},
		ProfileName:        username,
		ProfileColor:       "#FFD400",
		LastSeen:           now.UnixMilli(),
		CreatedAt:          now.UnixMilli(),
	}
}

// Normalize backfills fields that older documents may lack. It runs
// once at the store boundary so business logic always sees a fully
// populated record.
func (u *User) Normalize(now time.Time) {
	if u.Role == "" {
		u.Role = "user"
	}
	if u.WithdrawalRequests == nil {
		u.WithdrawalRequests = []WithdrawalRequest{}
	}
	if u.BetRequests == nil {
		u.BetRequests = []BetRequest{}
	}
	if u.DailyDate == "" {
		u.DailyDate = DateKey(now)
	}
	if u.ProfileName == "" {
		u.ProfileName = u.Username
	}
	if u.ProfileColor == "" {
		u.ProfileColor = "#00A3FF"
	}
}

// ResetDailyIfNeeded zeroes the daily counters when the calendar day
// has rolled over. Returns true when the document changed and must be
// persisted before any limit is evaluated. Calling it twice on the
// same day is a no-op.
func (u *User) ResetDailyIfNeeded(now time.Time) bool {
	today := DateKey(now)
	if u.DailyDate == today {
		return false
	}
	u.DailyDate = today
	u.DailyClicks = 0
	u.DailyEarnings = 0
	return true
}

// ClearExpiredCoupon drops an active click-bonus coupon whose expiry
// has passed.
func (u *User) ClearExpiredCoupon(now time.Time) {
	if u.ActiveCoupon != nil && u.ActiveCoupon.Expired(now) {
		u.ActiveCoupon = nil
	}
}

// DisplayName prefers the flashy name, then the profile name, then the
// username.
func (u *User) DisplayName() string {
	if u.FlashyName != "" {
		return u.FlashyName
	}
	if u.ProfileName != "" {
		return u.ProfileName
	}
	return u.Username
}

// Online reports whether the user has been seen within the threshold.
func (u *User) Online(now time.Time, threshold time.Duration) bool {
	return now.UnixMilli()-u.LastSeen <= threshold.Milliseconds()
}
