package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

var testTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) (*store.MemoryStore, *SettingsService) {
	t.Helper()
	s := store.NewMemoryStore()
	settings := NewSettingsService(s)
	settings.now = func() time.Time { return testTime }
	return s, settings
}

func seedUser(t *testing.T, s *store.MemoryStore, username string, mutate func(*models.User)) *models.User {
	t.Helper()
	user := models.NewUser(username, "hash", testTime)
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, s.SaveUser(context.Background(), user))
	return user
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func newTestLedger(s *store.MemoryStore, settings *SettingsService) *Ledger {
	ledger := NewLedger(s, settings)
	ledger.now = func() time.Time { return testTime }
	return ledger
}

func TestClickEarnsBasePrice(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)
	ledger := newTestLedger(s, settings)

	result, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, 0.10, result.Earn)
	assert.Equal(t, 0.10, result.Balance)
	assert.Equal(t, int64(1), result.Clicks)
	assert.Equal(t, int64(1), result.DailyClicks)
	assert.Equal(t, 0.10, result.DailyEarnings)

	stored, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0.10, stored.Balance)
}

func TestClickCooldownBlocksRepeat(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)
	ledger := newTestLedger(s, settings)

	_, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)

	_, err = ledger.Click(context.Background(), "alice")
	assertCode(t, err, "COOLDOWN")
}

func TestClickCouponMultiplier(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.ActiveCoupon = &models.ActiveCoupon{
			Type:       string(models.CouponTypeClickBonus),
			Multiplier: 2,
			ExpiresAt:  testTime.Add(time.Hour).UnixMilli(),
		}
	})
	ledger := newTestLedger(s, settings)

	result, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0.20, result.Earn)
}

func TestClickExpiredCouponIgnored(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.ActiveCoupon = &models.ActiveCoupon{
			Type:       string(models.CouponTypeClickBonus),
			Multiplier: 5,
			ExpiresAt:  testTime.Add(-time.Second).UnixMilli(),
		}
	})
	ledger := newTestLedger(s, settings)

	result, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0.10, result.Earn)
}

func TestClickDailyClickLimit(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.DailyClicks = models.DefaultDailyClickLimit
	})
	ledger := newTestLedger(s, settings)

	_, err := ledger.Click(context.Background(), "alice")
	assertCode(t, err, "DAILY_LIMIT")
}

func TestClickDailyEarningsLimit(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.DailyEarnings = models.DefaultDailyEarningsLimit
	})
	ledger := newTestLedger(s, settings)

	_, err := ledger.Click(context.Background(), "alice")
	assertCode(t, err, "DAILY_LIMIT")
}

func TestClickPremiumBypassesLimits(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.Premium = true
		u.DailyClicks = models.DefaultDailyClickLimit + 500
		u.DailyEarnings = models.DefaultDailyEarningsLimit + 100
	})
	ledger := newTestLedger(s, settings)

	result, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0.10, result.Earn)
}

func TestClickDailyRollover(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.DailyDate = models.DateKey(testTime.Add(-24 * time.Hour))
		u.DailyClicks = models.DefaultDailyClickLimit
		u.DailyEarnings = models.DefaultDailyEarningsLimit
	})
	ledger := newTestLedger(s, settings)

	result, err := ledger.Click(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DailyClicks)
	assert.Equal(t, 0.10, result.DailyEarnings)

	stored, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DateKey(testTime), stored.DailyDate)
}

func TestClickBannedRejected(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) { u.IsBanned = true })
	ledger := newTestLedger(s, settings)

	_, err := ledger.Click(context.Background(), "alice")
	assertCode(t, err, "BANNED")
}

func TestClickUnknownUser(t *testing.T) {
	s, settings := newTestEnv(t)
	ledger := newTestLedger(s, settings)

	_, err := ledger.Click(context.Background(), "ghost")
	assertCode(t, err, "NOT_FOUND")
}

func TestClickServerClosed(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)

	closed := models.DefaultSettings()
	closed.Server.Enabled = true
	require.NoError(t, s.SaveSettings(context.Background(), closed))

	ledger := newTestLedger(s, settings)
	_, err := ledger.Click(context.Background(), "alice")
	assertCode(t, err, "SERVER_CLOSED")
}

func TestClickMaintenance(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", nil)

	maint := models.DefaultSettings()
	maint.Maintenance.Enabled = true
	require.NoError(t, s.SaveSettings(context.Background(), maint))

	ledger := newTestLedger(s, settings)
	_, err := ledger.Click(context.Background(), "alice")
	assertCode(t, err, "MAINTENANCE")
}
