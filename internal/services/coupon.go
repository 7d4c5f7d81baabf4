package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// CouponResult reports what a redeemed coupon did to the account.
type CouponResult struct {
	Code       string  `json:"code"`
	Type       string  `json:"type"`
	Bonus      float64 `json:"bonus,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	ExpiresAt  int64   `json:"expires_at,omitempty"`
	Balance    float64 `json:"balance"`
}

// CouponService redeems coupon codes against the global settings
// document and the user document. Both documents are written back
// whole; the use counter decrements by exactly one per successful
// redemption and is floored at zero.
type CouponService struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
}

func NewCouponService(s store.Store, settings *SettingsService) *CouponService {
	return &CouponService{store: s, settings: settings, now: time.Now}
}

// Apply redeems a code for the user. Balance coupons credit
// balance * percent / 100 immediately and remember the code so the
// same code cannot be stacked. Click-bonus coupons install a timed
// earning multiplier, replacing any multiplier already running.
func (c *CouponService) Apply(ctx context.Context, username, code string) (*CouponResult, error) {
	if c.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}

	settings := c.settings.Get(ctx)
	_, coupon := settings.FindCoupon(code)
	if coupon == nil {
		return nil, models.ErrCouponNotFound()
	}
	if coupon.Exhausted() {
		return nil, models.ErrCouponExhausted()
	}

	user, err := c.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}

	now := c.now()
	user.ClearExpiredCoupon(now)

	result := &CouponResult{Code: coupon.Code, Type: string(coupon.Type)}

	switch coupon.Type {
	case models.CouponTypeBalance:
		if strings.EqualFold(user.AppliedCoupon, coupon.Code) {
			return nil, models.ErrCouponInvalid("coupon already applied")
		}
		bonus := models.Round2(user.Balance * coupon.Percent / 100)
		user.Balance = models.Round2(user.Balance + bonus)
		user.AppliedCoupon = coupon.Code
		user.AppliedCouponPercent = coupon.Percent
		result.Bonus = bonus

	case models.CouponTypeClickBonus:
		if coupon.Multiplier <= 1 || coupon.DurationSeconds <= 0 {
			return nil, models.ErrCouponInvalid("coupon is misconfigured")
		}
		user.ActiveCoupon = &models.ActiveCoupon{
			Type:       string(models.CouponTypeClickBonus),
			Multiplier: coupon.Multiplier,
			ExpiresAt:  now.Add(time.Duration(coupon.DurationSeconds) * time.Second).UnixMilli(),
			OriginCode: coupon.Code,
		}
		result.Multiplier = coupon.Multiplier
		result.ExpiresAt = user.ActiveCoupon.ExpiresAt

	default:
		return nil, models.ErrCouponInvalid("unknown coupon type")
	}

	if coupon.Uses != nil {
		remaining := *coupon.Uses - 1
		if remaining < 0 {
			remaining = 0
		}
		coupon.Uses = &remaining
		if err := c.store.SaveSettings(ctx, settings); err != nil {
			return nil, models.ErrStorage("coupon counter persist failed", err)
		}
	}

	if err := c.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("coupon persist failed", err)
	}

	result.Balance = user.Balance
	return result, nil
}
