package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

const validTRIBAN = "TR330006100519786457841326"

func newTestWithdraw(s *store.MemoryStore, settings *SettingsService) *WithdrawService {
	svc := NewWithdrawService(s, settings)
	svc.now = func() time.Time { return testTime }
	return svc
}

func validWithdrawInput(amount float64) WithdrawInput {
	return WithdrawInput{
		Amount:    amount,
		Bank:      "Example Bank",
		IBAN:      validTRIBAN,
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func TestWithdrawDebitsRequestedAmount(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) { u.Balance = 3000 })
	svc := newTestWithdraw(s, settings)

	receipt, err := svc.Request(context.Background(), "alice", validWithdrawInput(2500))
	require.NoError(t, err)

	assert.Equal(t, 500.0, receipt.Balance)
	assert.Equal(t, models.StatusPending, receipt.Request.Status)
	assert.Equal(t, 2500.0, receipt.Request.Amount)
	assert.Equal(t, validTRIBAN, receipt.Request.IBAN)

	stored, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Balance)
	require.Len(t, stored.WithdrawalRequests, 1)
}

func TestWithdrawBelowMinimum(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) { u.Balance = 3000 })
	svc := newTestWithdraw(s, settings)

	_, err := svc.Request(context.Background(), "alice", validWithdrawInput(2499.99))
	assertCode(t, err, "BELOW_MINIMUM")
}

func TestWithdrawInvalidIBAN(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) { u.Balance = 3000 })
	svc := newTestWithdraw(s, settings)

	input := validWithdrawInput(2500)
	input.IBAN = "TR330006100519786457841327"
	_, err := svc.Request(context.Background(), "alice", input)
	assertCode(t, err, "INVALID_IBAN")
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) { u.Balance = 2499 })
	svc := newTestWithdraw(s, settings)

	_, err := svc.Request(context.Background(), "alice", validWithdrawInput(2500))
	assertCode(t, err, "INSUFFICIENT_BALANCE")
}

func TestWithdrawCapturesCouponAudit(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.Balance = 3000
		u.AppliedCoupon = "BOOST10"
		u.AppliedCouponPercent = 10
	})
	svc := newTestWithdraw(s, settings)

	receipt, err := svc.Request(context.Background(), "alice", validWithdrawInput(2500))
	require.NoError(t, err)
	assert.Equal(t, "BOOST10", receipt.Request.CouponApplied)
	assert.Equal(t, 10.0, receipt.Request.CouponBonusPercent)
	assert.Equal(t, "TR33 0006 1005 1978 6457 8413 26", receipt.PrettyIBAN)

	// The coupon is consumed by the request.
	stored, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, stored.AppliedCoupon)
	assert.Zero(t, stored.AppliedCouponPercent)
}

func TestWithdrawResolvesLegacyCouponPercent(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.Balance = 3000
		u.AppliedCoupon = "BOOST25" // old document without the stored percent
	})
	seedCoupon(t, s, models.Coupon{Code: "BOOST25", Type: models.CouponTypeBalance, Percent: 25})
	svc := newTestWithdraw(s, settings)

	receipt, err := svc.Request(context.Background(), "alice", validWithdrawInput(2500))
	require.NoError(t, err)
	assert.Equal(t, 25.0, receipt.Request.CouponBonusPercent)
}

func TestWithdrawHistoryNewestFirst(t *testing.T) {
	s, settings := newTestEnv(t)
	seedUser(t, s, "alice", func(u *models.User) {
		u.WithdrawalRequests = []models.WithdrawalRequest{
			{ID: "old", CreatedAt: testTime.Add(-time.Hour)},
			{ID: "new", CreatedAt: testTime},
		}
	})
	svc := newTestWithdraw(s, settings)

	history, err := svc.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].ID)
}
