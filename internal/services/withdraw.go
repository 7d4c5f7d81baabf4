package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"bio-clicker-backend/internal/iban"
	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// WithdrawInput carries the cash-out form fields.
type WithdrawInput struct {
	Amount    float64 `json:"amount" binding:"required"`
	Bank      string  `json:"bank" binding:"required"`
	IBAN      string  `json:"iban" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
}

// WithdrawReceipt is the confirmation returned to the user.
type WithdrawReceipt struct {
	Request    models.WithdrawalRequest `json:"request"`
	PrettyIBAN string                   `json:"pretty_iban"`
	Balance    float64                  `json:"balance"`
}

// WithdrawService handles cash-out requests. The requested amount is
// debited at creation time and the request waits on a pending queue
// inside the user document until an admin resolves it.
type WithdrawService struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
}

func NewWithdrawService(s store.Store, settings *SettingsService) *WithdrawService {
	return &WithdrawService{store: s, settings: settings, now: time.Now}
}

// Request validates the form, debits the amount and appends the
// pending request. The applied balance coupon is consumed by the
// request: its percent is recorded for the payout audit and the marker
// is cleared from the user document.
func (w *WithdrawService) Request(ctx context.Context, username string, input WithdrawInput) (*WithdrawReceipt, error) {
	user, err := w.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}
	if w.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}

	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return nil, models.ErrValidation("amount must be positive")
	}
	amount := models.Round2(input.Amount)

	settings := w.settings.Get(ctx)
	if amount < settings.MinWithdrawalAmount {
		return nil, models.ErrBelowMinimum(settings.MinWithdrawalAmount)
	}
	if user.Balance < amount {
		return nil, models.ErrInsufficientBalance()
	}

	bank := strings.TrimSpace(input.Bank)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if bank == "" || firstName == "" || lastName == "" {
		return nil, models.ErrValidation("bank and account holder name are required")
	}

	normalized := iban.Normalize(input.IBAN)
	if !iban.Validate(normalized) {
		return nil, models.ErrInvalidIBAN()
	}

	bonusPercent := user.AppliedCouponPercent
	if bonusPercent <= 0 && user.AppliedCoupon != "" {
		// Older documents stored only the code; resolve the percent
		// against the live coupon list.
		if _, coupon := settings.FindCoupon(user.AppliedCoupon); coupon != nil && coupon.Type == models.CouponTypeBalance {
			bonusPercent = coupon.Percent
		}
	}

	request := models.WithdrawalRequest{
		ID:                 models.GenerateRequestID(),
		Username:           user.Username,
		Amount:             amount,
		Bank:               bank,
		IBAN:               normalized,
		FirstName:          firstName,
		LastName:           lastName,
		CreatedAt:          w.now(),
		Status:             models.StatusPending,
		CouponApplied:      user.AppliedCoupon,
		CouponBonusPercent: bonusPercent,
	}

	user.Balance = models.Round2(user.Balance - amount)
	user.WithdrawalRequests = append(user.WithdrawalRequests, request)
	user.AppliedCoupon = ""
	user.AppliedCouponPercent = 0

	if err := w.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("withdrawal persist failed", err)
	}

	return &WithdrawReceipt{
		Request:    request,
		PrettyIBAN: iban.Pretty(normalized),
		Balance:    user.Balance,
	}, nil
}

// History returns the user's withdrawal requests, newest first.
func (w *WithdrawService) History(ctx context.Context, username string) ([]models.WithdrawalRequest, error) {
	user, err := w.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}

	requests := make([]models.WithdrawalRequest, len(user.WithdrawalRequests))
	copy(requests, user.WithdrawalRequests)
	for i, j := 0, len(requests)-1; i < j; i, j = i+1, j-1 {
		requests[i], requests[j] = requests[j], requests[i]
	}
	return requests, nil
}
