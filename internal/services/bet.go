package services

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

// BetInput carries the parity bet form.
type BetInput struct {
	Stake  float64          `json:"stake" binding:"required"`
	Choice models.BetChoice `json:"choice" binding:"required"`
}

// BetOutcome reports the draw to the user. A win does not credit the
// payout; it records a pending request that an admin approves later.
type BetOutcome struct {
	Request models.BetRequest `json:"request"`
	Won     bool              `json:"won"`
	Balance float64           `json:"balance"`
}

// BetService runs the even/odd game. The stake is debited up front;
// losses are terminal, wins wait on admin approval with the payout
// precomputed at twice the stake.
type BetService struct {
	store    store.Store
	settings *SettingsService
	now      func() time.Time
	draw     func() int
}

func NewBetService(s store.Store, settings *SettingsService) *BetService {
	return &BetService{
		store:    s,
		settings: settings,
		now:      time.Now,
		draw:     func() int { return rand.Intn(100) },
	}
}

// Place resolves one parity bet. The stake is debited and persisted
// before the draw so a crash mid-bet can never leave a free wager.
func (b *BetService) Place(ctx context.Context, username string, input BetInput) (*BetOutcome, error) {
	user, err := b.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}
	if b.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}
	if !input.Choice.Valid() {
		return nil, models.ErrValidation("choice must be odd or even")
	}

	if math.IsNaN(input.Stake) || math.IsInf(input.Stake, 0) || input.Stake <= 0 {
		return nil, models.ErrValidation("stake must be positive")
	}
	stake := models.Round2(input.Stake)
	if user.Balance < stake {
		return nil, models.ErrInsufficientBalance()
	}

	user.Balance = models.Round2(user.Balance - stake)
	if err := b.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("stake debit persist failed", err)
	}

	number := b.draw()
	result := models.BetOdd
	if number%2 == 0 {
		result = models.BetEven
	}
	won := result == input.Choice

	request := models.BetRequest{
		ID:           models.GenerateBetID(),
		Username:     user.Username,
		Stake:        stake,
		Choice:       input.Choice,
		Result:       result,
		ResultNumber: number,
		CreatedAt:    b.now(),
	}
	if won {
		request.Status = models.StatusPending
		request.Payout = models.Round2(stake * BetPayoutFactor)
	} else {
		request.Status = models.StatusLost
	}

	user.BetRequests = append(user.BetRequests, request)

	if err := b.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("bet persist failed", err)
	}

	return &BetOutcome{Request: request, Won: won, Balance: user.Balance}, nil
}

// History returns the user's bets, newest first.
func (b *BetService) History(ctx context.Context, username string) ([]models.BetRequest, error) {
	user, err := b.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}

	bets := make([]models.BetRequest, len(user.BetRequests))
	copy(bets, user.BetRequests)
	for i, j := 0, len(bets)-1; i < j; i, j = i+1, j-1 {
		bets[i], bets[j] = bets[j], bets[i]
	}
	return bets, nil
}
