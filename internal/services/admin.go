package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// AdminService backs the review panel: request resolution, account
// moderation and global settings management.
type AdminService struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
}

func NewAdminService(s store.Store, settings *SettingsService) *AdminService {
	return &AdminService{store: s, settings: settings, now: time.Now}
}

// SeedAdmin creates the admin account on first boot if it does not
// exist. An empty password skips seeding.
func (a *AdminService) SeedAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	username = models.NormalizeUsername(username)

	_, err := a.store.GetUser(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.NewUser(username, string(hash), a.now())
	admin.Role = "admin"
	admin.Premium = true
	if err := a.store.SaveUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("admin: seeded account %q", username)
	return nil
}

// ListUsers returns every user document for the panel.
func (a *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, models.ErrStorage("user list failed", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// PendingWithdrawals collects pending withdrawal requests across all
// users, oldest first.
func (a *AdminService) PendingWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, models.ErrStorage("user list failed", err)
	}

	pending := []models.WithdrawalRequest{}
	for _, u := range users {
		for _, r := range u.WithdrawalRequests {
			if r.Status == models.StatusPending {
				pending = append(pending, r)
			}
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

// PendingBets collects pending winning bets across all users, oldest
// first.
func (a *AdminService) PendingBets(ctx context.Context) ([]models.BetRequest, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, models.ErrStorage("user list failed", err)
	}

	pending := []models.BetRequest{}
	for _, u := range users {
		for _, r := range u.BetRequests {
			if r.Status == models.StatusPending {
				pending = append(pending, r)
			}
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

// ResolveWithdrawal approves or rejects a pending withdrawal. The
// amount was debited at request time, so approval only marks the
// request; rejection credits the amount back onto the balance as it
// stands now.
func (a *AdminService) ResolveWithdrawal(ctx context.Context, requestID string, approve bool) (*models.User, error) {
	user, idx, err := a.findWithdrawal(ctx, requestID)
	if err != nil {
		return nil, err
	}

	request := &user.WithdrawalRequests[idx]
	if request.Status != models.StatusPending {
		return nil, models.ErrConflict("request already resolved")
	}

	now := a.now()
	if approve {
		request.Status = models.StatusApproved
		request.ApprovedAt = &now
	} else {
		request.Status = models.StatusRejected
		request.RejectedAt = &now
		user.Balance = models.Round2(user.Balance + request.Amount)
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("withdrawal resolution persist failed", err)
	}
	return user, nil
}

// ResolveBet approves or rejects a pending winning bet. Approval
// credits the precomputed payout; rejection only stamps the request,
// the stake was already forfeited when the bet was placed.
func (a *AdminService) ResolveBet(ctx context.Context, betID string, approve bool) (*models.User, error) {
	user, idx, err := a.findBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	request := &user.BetRequests[idx]
	if request.Status != models.StatusPending {
		return nil, models.ErrConflict("bet already resolved")
	}

	now := a.now()
	if approve {
		request.Status = models.StatusApproved
		request.ApprovedAt = &now
		user.Balance = models.Round2(user.Balance + request.Payout)
	} else {
		request.Status = models.StatusRejected
		request.RejectedAt = &now
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("bet resolution persist failed", err)
	}
	return user, nil
}

// RemoveWithdrawal deletes a withdrawal record in any status without
// touching the balance.
func (a *AdminService) RemoveWithdrawal(ctx context.Context, requestID string) (*models.User, error) {
	user, idx, err := a.findWithdrawal(ctx, requestID)
	if err != nil {
		return nil, err
	}

	user.WithdrawalRequests = append(user.WithdrawalRequests[:idx], user.WithdrawalRequests[idx+1:]...)
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("withdrawal removal persist failed", err)
	}
	return user, nil
}

// RemoveBet deletes a bet record in any status without touching the
// balance.
func (a *AdminService) RemoveBet(ctx context.Context, betID string) (*models.User, error) {
	user, idx, err := a.findBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	user.BetRequests = append(user.BetRequests[:idx], user.BetRequests[idx+1:]...)
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("bet removal persist failed", err)
	}
	return user, nil
}

// SetBanned toggles the account ban flag.
func (a *AdminService) SetBanned(ctx context.Context, username string, banned bool) (*models.User, error) {
	return a.mutateUser(ctx, username, func(u *models.User) error {
		if u.Role == "admin" {
			return models.ErrForbidden("cannot ban an admin")
		}
		u.IsBanned = banned
		return nil
	})
}

// SetChatBanned toggles the chat ban flag.
func (a *AdminService) SetChatBanned(ctx context.Context, username string, banned bool) (*models.User, error) {
	return a.mutateUser(ctx, username, func(u *models.User) error {
		u.IsChatBanned = banned
		return nil
	})
}

// SetPremium toggles the premium flag that exempts the account from
// daily limits.
func (a *AdminService) SetPremium(ctx context.Context, username string, premium bool) (*models.User, error) {
	return a.mutateUser(ctx, username, func(u *models.User) error {
		u.Premium = premium
		return nil
	})
}

// AdjustBalance adds a signed delta to the balance, floored at zero.
func (a *AdminService) AdjustBalance(ctx context.Context, username string, delta float64) (*models.User, error) {
	return a.mutateUser(ctx, username, func(u *models.User) error {
		next := models.Round2(u.Balance + delta)
		if next < 0 {
			next = 0
		}
		u.Balance = next
		return nil
	})
}

// SetFlashy grants or updates the flashy display name.
func (a *AdminService) SetFlashy(ctx context.Context, username, name, color string, animated bool) (*models.User, error) {
	return a.mutateUser(ctx, username, func(u *models.User) error {
		u.FlashyName = strings.TrimSpace(name)
		u.FlashyColor = color
		u.FlashyAnimated = animated
		return nil
	})
}

// LimitsInput carries the adjustable global limits. Zero values leave
// the current setting untouched.
type LimitsInput struct {
	DailyClickLimit     int64   `json:"daily_click_limit"`
	DailyEarningsLimit  float64 `json:"daily_earnings_limit"`
	MinWithdrawalAmount float64 `json:"min_withdrawal_amount"`
}

// UpdateLimits applies the global limit changes.
func (a *AdminService) UpdateLimits(ctx context.Context, input LimitsInput) (*models.Settings, error) {
	settings := a.settings.Get(ctx)
	if input.DailyClickLimit > 0 {
		settings.DailyClickLimit = input.DailyClickLimit
	}
	if input.DailyEarningsLimit > 0 {
		settings.DailyEarningsLimit = input.DailyEarningsLimit
	}
	if input.MinWithdrawalAmount > 0 {
		settings.MinWithdrawalAmount = input.MinWithdrawalAmount
	}
	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return nil, models.ErrStorage("settings persist failed", err)
	}
	return settings, nil
}

// ScheduleInput drives the maintenance and server-closed blocks. A
// zero ScheduledAt applies Enabled immediately; a future ScheduledAt
// arms the scheduled activation.
type ScheduleInput struct {
	Enabled     bool   `json:"enabled"`
	Reason      string `json:"reason"`
	ScheduledAt int64  `json:"scheduled_at"`
}

// SetMaintenance updates the maintenance block.
func (a *AdminService) SetMaintenance(ctx context.Context, input ScheduleInput) (*models.Settings, error) {
	return a.setScheduled(ctx, input, func(s *models.Settings) *models.ScheduledState { return &s.Maintenance })
}

// SetServerClosed updates the server-closed block.
func (a *AdminService) SetServerClosed(ctx context.Context, input ScheduleInput) (*models.Settings, error) {
	return a.setScheduled(ctx, input, func(s *models.Settings) *models.ScheduledState { return &s.Server })
}

func (a *AdminService) setScheduled(ctx context.Context, input ScheduleInput, pick func(*models.Settings) *models.ScheduledState) (*models.Settings, error) {
	settings := a.settings.Get(ctx)
	state := pick(settings)

	if input.ScheduledAt > 0 {
		state.Enabled = false
		state.Reason = input.Reason
		state.Since = 0
		state.ScheduledAt = input.ScheduledAt
	} else {
		state.Enabled = input.Enabled
		state.Reason = input.Reason
		state.ScheduledAt = 0
		if input.Enabled {
			state.Since = a.now().UnixMilli()
		} else {
			state.Since = 0
		}
	}

	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return nil, models.ErrStorage("settings persist failed", err)
	}
	return settings, nil
}

// AddCoupon inserts or replaces a coupon by code.
func (a *AdminService) AddCoupon(ctx context.Context, coupon models.Coupon) (*models.Settings, error) {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return nil, models.ErrValidation("coupon code is required")
	}
	switch coupon.Type {
	case models.CouponTypeBalance:
		if coupon.Percent <= 0 {
			return nil, models.ErrValidation("balance coupons need a positive percent")
		}
	case models.CouponTypeClickBonus:
		if coupon.Multiplier <= 1 || coupon.DurationSeconds <= 0 {
			return nil, models.ErrValidation("click-bonus coupons need a multiplier above 1 and a duration")
		}
	default:
		return nil, models.ErrValidation("coupon type must be balance or click_bonus")
	}

	settings := a.settings.Get(ctx)
	if idx, _ := settings.FindCoupon(coupon.Code); idx >= 0 {
		settings.Coupons[idx] = coupon
	} else {
		settings.Coupons = append(settings.Coupons, coupon)
	}

	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return nil, models.ErrStorage("settings persist failed", err)
	}
	return settings, nil
}

// DeleteCoupon removes a coupon by code.
func (a *AdminService) DeleteCoupon(ctx context.Context, code string) (*models.Settings, error) {
	settings := a.settings.Get(ctx)
	idx, _ := settings.FindCoupon(code)
	if idx < 0 {
		return nil, models.ErrCouponNotFound()
	}
	settings.Coupons = append(settings.Coupons[:idx], settings.Coupons[idx+1:]...)

	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return nil, models.ErrStorage("settings persist failed", err)
	}
	return settings, nil
}

// AddAnnouncement publishes a broadcast notice.
func (a *AdminService) AddAnnouncement(ctx context.Context, title, message string) (*models.Settings, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, models.ErrValidation("title and message are required")
	}

	settings := a.settings.Get(ctx)
	settings.Announcements = append(settings.Announcements, models.Announcement{
		ID:        models.GenerateAnnouncementID(),
		Title:     title,
		Message:   message,
		CreatedAt: a.now().UnixMilli(),
	})

	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return nil, models.ErrStorage("settings persist failed", err)
	}
	return settings, nil
}

// DeleteAnnouncement removes a notice by id.
func (a *AdminService) DeleteAnnouncement(ctx context.Context, id string) (*models.Settings, error) {
	settings := a.settings.Get(ctx)
	for i := range settings.Announcements {
		if settings.Announcements[i].ID == id {
			settings.Announcements = append(settings.Announcements[:i], settings.Announcements[i+1:]...)
			if err := a.store.SaveSettings(ctx, settings); err != nil {
				return nil, models.ErrStorage("settings persist failed", err)
			}
			return settings, nil
		}
	}
	return nil, models.ErrNotFound("announcement", id)
}

func (a *AdminService) mutateUser(ctx context.Context, username string, mutate func(*models.User) error) (*models.User, error) {
	username = models.NormalizeUsername(username)

	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}

	if err := mutate(user); err != nil {
		return nil, err
	}
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("user persist failed", err)
	}
	return user, nil
}

func (a *AdminService) findWithdrawal(ctx context.Context, requestID string) (*models.User, int, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, 0, models.ErrStorage("user list failed", err)
	}
	for _, u := range users {
		for i := range u.WithdrawalRequests {
			if u.WithdrawalRequests[i].ID == requestID {
				return u, i, nil
			}
		}
	}
	return nil, 0, models.ErrNotFound("withdrawal request", requestID)
}

func (a *AdminService) findBet(ctx context.Context, betID string) (*models.User, int, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, 0, models.ErrStorage("user list failed", err)
	}
	for _, u := range users {
		for i := range u.BetRequests {
			if u.BetRequests[i].ID == betID {
				return u, i, nil
			}
		}
	}
	return nil, 0, models.ErrNotFound("bet", betID)
}
