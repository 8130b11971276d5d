package domain

import "time"

// AvailabilitySlot is a bookable interval of one professional.
// A reserved slot has IsFree == false.
type AvailabilitySlot struct {
	ID             int64     `json:"id"`
	ProfessionalID int64     `json:"professional_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	IsFree         bool      `json:"is_free"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Overlaps uses closed-interval bounds: a slot ending exactly when another
// starts counts as overlapping.
func (s *AvailabilitySlot) Overlaps(start, end time.Time) bool {
	return Overlaps(s.StartTime, s.EndTime, start, end)
}

func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ValidateInterval checks a slot range.
func ValidateInterval(start, end time.Time) error {
	verr := NewValidationError()
	if start.IsZero() {
		verr.Add("start_time", "is required")
	}
	if end.IsZero() {
		verr.Add("end_time", "is required")
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		verr.Add("end_time", "must be after start_time")
	}
	return verr.OrNil()
}
