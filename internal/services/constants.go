package services

import "time"

const (
	// ClickPrice is the base earning of a single click.
	ClickPrice = 0.10

	// ClickCooldown blocks repeat clicks from the same user.
	ClickCooldown = 1500 * time.Millisecond

	// OnlineThreshold marks a user online when seen this recently.
	OnlineThreshold = 90 * time.Second

	// LeaderboardSize caps the balance leaderboard.
	LeaderboardSize = 15

	// BetPayoutFactor multiplies the stake on a winning parity draw.
	BetPayoutFactor = 2
)
