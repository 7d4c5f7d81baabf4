package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// DateKey returns the calendar-day key used for daily limit resets.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func GenerateRequestID() string {
	return fmt.Sprintf("req_%s_%d", time.Now().Format("20060102"), uuid.New().ID())
}

func GenerateBetID() string {
	return fmt.Sprintf("bet_%s_%d", time.Now().Format("20060102"), uuid.New().ID())
}

func GenerateMessageID() string {
	return fmt.Sprintf("msg_%s_%d", time.Now().Format("20060102"), uuid.New().ID())
}

func GenerateAnnouncementID() string {
	return fmt.Sprintf("ann_%s_%d", time.Now().Format("20060102"), uuid.New().ID())
}

// Round2 rounds a money amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders an amount for receipts and admin views.
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
