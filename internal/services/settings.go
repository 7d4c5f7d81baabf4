package services

import (
	"context"
	"errors"
	"log"
	"time"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// SettingsService resolves global configuration with safe defaults.
// Reads never fail callers: a store error yields the hardcoded
// defaults instead of propagating.
type SettingsService struct {
	store store.Store
	now   func() time.Time
}

func NewSettingsService(s store.Store) *SettingsService {
	return &SettingsService{store: s, now: time.Now}
}

// Get returns fully populated settings. On first read with nothing
// stored the defaults are persisted so later admin edits start from a
// complete document.
func (s *SettingsService) Get(ctx context.Context) *models.Settings {
	settings, err := s.store.GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		defaults := models.DefaultSettings()
		if saveErr := s.store.SaveSettings(ctx, defaults); saveErr != nil {
			log.Printf("settings: failed to persist defaults: %v", saveErr)
		}
		return defaults
	}
	if err != nil {
		log.Printf("settings: read failed, serving defaults: %v", err)
		return models.DefaultSettings()
	}
	return settings
}

// MaintenanceInfo returns the maintenance block after applying the
// scheduled-activation invariant to both the maintenance and
// server-closed states. An elapsed schedule is converted exactly once;
// re-invocation is a no-op because ScheduledAt has been nulled.
func (s *SettingsService) MaintenanceInfo(ctx context.Context) models.ScheduledState {
	settings := s.Get(ctx)

	nowMillis := s.now().UnixMilli()
	changed := settings.Maintenance.ActivateIfDue(nowMillis)
	changed = settings.Server.ActivateIfDue(nowMillis) || changed

	if changed {
		if err := s.store.SaveSettings(ctx, settings); err != nil {
			log.Printf("settings: failed to persist scheduled activation: %v", err)
		}
	}

	return settings.Maintenance
}

// ServerClosed applies the scheduled-activation check and reports
// whether the server is closed.
func (s *SettingsService) ServerClosed(ctx context.Context) bool {
	s.MaintenanceInfo(ctx)
	return s.Get(ctx).Server.Enabled
}

// RunScheduledActivation polls the activation check until the context
// is cancelled. Launched from main alongside the opportunistic checks
// on every settings read.
func (s *SettingsService) RunScheduledActivation(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.MaintenanceInfo(ctx)
		case <-ctx.Done():
			return
		}
	}
}
