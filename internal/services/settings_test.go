package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/models"
)

func TestSettingsDefaultsPersistedOnFirstRead(t *testing.T) {
	s, settings := newTestEnv(t)
	ctx := context.Background()

	got := settings.Get(ctx)
	assert.Equal(t, int64(models.DefaultDailyClickLimit), got.DailyClickLimit)
	assert.Equal(t, models.DefaultDailyEarningsLimit, got.DailyEarningsLimit)
	assert.Equal(t, models.DefaultMinWithdrawal, got.MinWithdrawalAmount)

	stored, err := s.GetSettings(ctx)
	require.NoError(t, err, "defaults should be written back on first read")
	assert.Equal(t, got.DailyClickLimit, stored.DailyClickLimit)
}

func TestScheduledMaintenanceActivatesOnce(t *testing.T) {
	s, settings := newTestEnv(t)
	ctx := context.Background()

	doc := models.DefaultSettings()
	doc.Maintenance.Reason = "weekly upgrade"
	doc.Maintenance.ScheduledAt = testTime.Add(-time.Minute).UnixMilli()
	require.NoError(t, s.SaveSettings(ctx, doc))

	maint := settings.MaintenanceInfo(ctx)
	assert.True(t, maint.Enabled)
	assert.Equal(t, "weekly upgrade", maint.Reason)
	assert.Equal(t, doc.Maintenance.ScheduledAt, maint.Since)
	assert.Zero(t, maint.ScheduledAt)

	// The converted state must be persisted, and re-reading must not
	// shift Since again.
	stored, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, stored.Maintenance.Enabled)
	assert.Zero(t, stored.Maintenance.ScheduledAt)

	again := settings.MaintenanceInfo(ctx)
	assert.Equal(t, maint.Since, again.Since)
}

func TestScheduledFutureMaintenanceStaysOff(t *testing.T) {
	s, settings := newTestEnv(t)
	ctx := context.Background()

	doc := models.DefaultSettings()
	doc.Maintenance.ScheduledAt = testTime.Add(time.Hour).UnixMilli()
	require.NoError(t, s.SaveSettings(ctx, doc))

	maint := settings.MaintenanceInfo(ctx)
	assert.False(t, maint.Enabled)
	assert.Equal(t, doc.Maintenance.ScheduledAt, maint.ScheduledAt)
}

func TestScheduledServerCloseActivates(t *testing.T) {
	s, settings := newTestEnv(t)
	ctx := context.Background()

	doc := models.DefaultSettings()
	doc.Server.ScheduledAt = testTime.Add(-time.Second).UnixMilli()
	require.NoError(t, s.SaveSettings(ctx, doc))

	assert.True(t, settings.ServerClosed(ctx))

	stored, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, stored.Server.Enabled)
}
