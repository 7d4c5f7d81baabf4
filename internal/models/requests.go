package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusLost     RequestStatus = "lost"
)

// WithdrawalRequest is appended to the owning user's document when a
// cash-out is requested. The requested amount is debited at creation
// time; a later admin rejection credits it back onto whatever the
// balance is at that moment.
type WithdrawalRequest struct {
	ID                 string        `json:"id"`
	Username           string        `json:"username"`
	Amount             float64       `json:"amount"`
	Bank               string        `json:"bank"`
	IBAN               string        `json:"iban"`
	FirstName          string        `json:"first_name"`
	LastName           string        `json:"last_name"`
	CreatedAt          time.Time     `json:"created_at"`
	Status             RequestStatus `json:"status"`
	ApprovedAt         *time.Time    `json:"approved_at,omitempty"`
	RejectedAt         *time.Time    `json:"rejected_at,omitempty"`
	CouponApplied      string        `json:"coupon_applied"`
	CouponBonusPercent float64       `json:"coupon_bonus_percent"`
}

type BetChoice string

const (
	BetOdd  BetChoice = "odd"
	BetEven BetChoice = "even"
)

// Valid reports whether the choice is one of the two parities.
func (c BetChoice) Valid() bool { return c == BetOdd || c == BetEven }

// BetRequest records an even/odd bet. Losing bets are terminal at
// creation (stake already forfeited); winning bets are recorded
// pending with Payout set and need admin approval before the payout is
// credited.
type BetRequest struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Stake        float64       `json:"stake"`
	Payout       float64       `json:"payout,omitempty"`
	Choice       BetChoice     `json:"choice"`
	Result       BetChoice     `json:"result"`
	ResultNumber int           `json:"result_number"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	RejectedAt   *time.Time    `json:"rejected_at,omitempty"`
}
