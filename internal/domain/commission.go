package domain

import (
	"math"
	"time"
)

// Commission is the platform's cut of a settled payment.
type Commission struct {
	ID        int64     `json:"id"`
	PaymentID int64     `json:"payment_id" validate:"required,gt=0"`
	RequestID *int64    `json:"request_id,omitempty"`
	Rate      float64   `json:"rate" validate:"gt=0"`
	Base      float64   `json:"base" validate:"gte=0"`
	Amount    float64   `json:"amount" validate:"gte=0"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type CommissionSummary struct {
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Count       int64      `json:"count"`
	TotalBase   float64    `json:"total_base"`
	TotalAmount float64    `json:"total_amount"`
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func CommissionAmount(base, rate float64) float64 {
	return Round2(base * rate / 100)
}
