package models_test

import (
	"testing"
	"time"

	"bio-clicker-backend/internal/models"
)

func TestResetDailyIfNeeded(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	user := models.NewUser("alice", "hash", now)
	user.DailyClicks = 42
	user.DailyEarnings = 4.2

	if user.ResetDailyIfNeeded(now) {
		t.Error("reset on the same day should be a no-op")
	}
	if user.DailyClicks != 42 {
		t.Errorf("DailyClicks changed on no-op reset: %d", user.DailyClicks)
	}

	nextDay := now.Add(24 * time.Hour)
	if !user.ResetDailyIfNeeded(nextDay) {
		t.Error("reset on a new day should report a change")
	}
	if user.DailyClicks != 0 || user.DailyEarnings != 0 {
		t.Errorf("daily counters not zeroed: %d / %f", user.DailyClicks, user.DailyEarnings)
	}
	if user.ResetDailyIfNeeded(nextDay) {
		t.Error("second reset on the same day should be a no-op")
	}
}

func TestClearExpiredCoupon(t *testing.T) {
	now := time.Now()
	user := models.NewUser("bob", "hash", now)
	user.ActiveCoupon = &models.ActiveCoupon{
		Type:       string(models.CouponTypeClickBonus),
		Multiplier: 2,
		ExpiresAt:  now.Add(time.Minute).UnixMilli(),
	}

	user.ClearExpiredCoupon(now)
	if user.ActiveCoupon == nil {
		t.Fatal("live coupon was cleared")
	}

	user.ClearExpiredCoupon(now.Add(2 * time.Minute))
	if user.ActiveCoupon != nil {
		t.Error("expired coupon was not cleared")
	}
}

func TestScheduledActivation(t *testing.T) {
	state := models.ScheduledState{
		Reason:      "weekly upgrade",
		ScheduledAt: 1_000_000,
	}

	if state.ActivateIfDue(999_999) {
		t.Error("activation before the scheduled time")
	}
	if !state.ActivateIfDue(1_000_001) {
		t.Fatal("elapsed schedule did not activate")
	}
	if !state.Enabled || state.Since != 1_000_000 || state.ScheduledAt != 0 {
		t.Errorf("unexpected state after activation: %+v", state)
	}
	if state.ActivateIfDue(1_000_002) {
		t.Error("activation should be one-shot")
	}
}

func TestDMKeyFor(t *testing.T) {
	if models.DMKeyFor("Bob", "alice") != models.DMKeyFor("ALICE", "bob") {
		t.Error("DM key should not depend on participant order or case")
	}
	if got, want := models.DMKeyFor("bob", "alice"), "dm_alice__bob"; got != want {
		t.Errorf("DMKeyFor = %q, want %q", got, want)
	}
}

func TestFindCoupon(t *testing.T) {
	uses := 3
	settings := models.DefaultSettings()
	settings.Coupons = []models.Coupon{
		{Code: "WELCOME10", Type: models.CouponTypeBalance, Percent: 10, Uses: &uses},
	}

	idx, coupon := settings.FindCoupon("  welcome10 ")
	if idx != 0 || coupon == nil {
		t.Fatal("case-insensitive lookup failed")
	}
	if _, missing := settings.FindCoupon("NOPE"); missing != nil {
		t.Error("unknown code should not resolve")
	}
	if _, blank := settings.FindCoupon("   "); blank != nil {
		t.Error("blank code should not resolve")
	}
}

func TestCouponExhausted(t *testing.T) {
	zero, one := 0, 1
	if (&models.Coupon{Uses: &one}).Exhausted() {
		t.Error("coupon with one use left reported exhausted")
	}
	if !(&models.Coupon{Uses: &zero}).Exhausted() {
		t.Error("coupon with zero uses not reported exhausted")
	}
	if (&models.Coupon{}).Exhausted() {
		t.Error("unlimited coupon reported exhausted")
	}
}

func TestRound2(t *testing.T) {
	if got := models.Round2(0.1 + 0.2); got != 0.3 {
		t.Errorf("Round2(0.1+0.2) = %v", got)
	}
	if got := models.Round2(1.239); got != 1.24 {
		t.Errorf("Round2(1.239) = %v", got)
	}
}

func TestUserNormalize(t *testing.T) {
	now := time.Now()
	user := &models.User{Username: "carol"}
	user.Normalize(now)

	if user.Role != "user" {
		t.Errorf("Role = %q", user.Role)
	}
	if user.WithdrawalRequests == nil || user.BetRequests == nil {
		t.Error("request slices should be backfilled")
	}
	if user.DailyDate != models.DateKey(now) {
		t.Errorf("DailyDate = %q", user.DailyDate)
	}
	if user.ProfileName != "carol" || user.ProfileColor == "" {
		t.Errorf("profile not backfilled: %q / %q", user.ProfileName, user.ProfileColor)
	}
}
