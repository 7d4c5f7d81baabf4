package services

import (
	"context"
	"errors"
	"log"
	"time"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// ClickResult echoes the effect of a successful click back to the
// caller.
type ClickResult struct {
	Earn          float64 `json:"earn"`
	Balance       float64 `json:"balance"`
	Clicks        int64   `json:"clicks"`
	DailyClicks   int64   `json:"daily_clicks"`
	DailyEarnings float64 `json:"daily_earnings"`
}

// Ledger owns the click operation: daily limit bookkeeping, coupon
// multipliers and the balance credit, persisted as one whole-document
// write.
type Ledger struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
}

func NewLedger(s store.Store, settings *SettingsService) *Ledger {
	return &Ledger{store: s, settings: settings, now: time.Now}
}

// Click runs the earn operation for one button press. Preconditions
// are checked in a fixed order, each short-circuiting with its own
// rejection: server closed, maintenance, cooldown, missing/banned
// user, daily limits (skipped for premium accounts).
func (l *Ledger) Click(ctx context.Context, username string) (*ClickResult, error) {
	maint := l.settings.MaintenanceInfo(ctx)
	settings := l.settings.Get(ctx)

	if settings.Server.Enabled {
		return nil, models.ErrServerClosed()
	}
	if maint.Enabled {
		return nil, models.ErrMaintenance()
	}

	ok, err := l.store.AcquireClickCooldown(ctx, username, ClickCooldown)
	if err != nil {
		return nil, models.ErrStorage("cooldown check failed", err)
	}
	if !ok {
		return nil, models.ErrCooldown()
	}

	user, err := l.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}

	now := l.now()
	if user.ResetDailyIfNeeded(now) {
		if err := l.store.SaveUser(ctx, user); err != nil {
			return nil, models.ErrStorage("daily reset persist failed", err)
		}
	}
	user.ClearExpiredCoupon(now)

	if !user.Premium &&
		(user.DailyClicks >= settings.DailyClickLimit || user.DailyEarnings >= settings.DailyEarningsLimit) {
		return nil, models.ErrDailyLimit()
	}

	earn := ClickPrice
	if user.ActiveCoupon != nil && user.ActiveCoupon.Type == string(models.CouponTypeClickBonus) {
		earn *= user.ActiveCoupon.Multiplier
	}
	earn = models.Round2(earn)

	user.Clicks++
	user.DailyClicks++
	user.Balance = models.Round2(user.Balance + earn)
	user.DailyEarnings = models.Round2(user.DailyEarnings + earn)

	if err := l.store.SaveUser(ctx, user); err != nil {
		log.Printf("click: persist failed for %s: %v", username, err)
		return nil, models.ErrStorage("click persist failed", err)
	}

	return &ClickResult{
		Earn:          earn,
		Balance:       user.Balance,
		Clicks:        user.Clicks,
		DailyClicks:   user.DailyClicks,
		DailyEarnings: user.DailyEarnings,
	}, nil
}
