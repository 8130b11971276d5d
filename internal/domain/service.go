package domain

import "time"

// Service is a catalog entry: a type of work clients can request.
type Service struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name" validate:"required,min=3,max=50"`
	HourlyRate float64   `json:"hourly_rate" validate:"gt=0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
