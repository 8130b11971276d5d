package domain

import (
	"slices"
	"time"
)

type Professional struct {
	ID            int64     `json:"id"`
	OwnerIdentity int64     `json:"owner_identity" validate:"required,gt=0"`
	FullName      string    `json:"full_name" validate:"required,min=3,max=100"`
	Phone         string    `json:"phone" validate:"required,phone"`
	Bio           string    `json:"bio,omitempty" validate:"max=500"`
	AverageRating float64   `json:"average_rating" validate:"gte=0,lte=5"`
	CompletedJobs int       `json:"completed_jobs" validate:"gte=0"`
	Available     bool      `json:"available"`
	WorkZone      string    `json:"work_zone,omitempty" validate:"max=200"`
	Capabilities  []int64   `json:"capabilities"`
	RegisteredAt  time.Time `json:"registered_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Professional) HasCapability(serviceID int64) bool {
	return slices.Contains(p.Capabilities, serviceID)
}

// CanMatch reports whether the professional may be assigned work of the given service.
func (p *Professional) CanMatch(serviceID int64) bool {
	return p.Available && p.HasCapability(serviceID)
}
