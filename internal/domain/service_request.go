package domain

import "time"

type RequestState string

const (
	StatePending   RequestState = "PENDING"
	StateAssigned  RequestState = "ASSIGNED"
	StateCompleted RequestState = "COMPLETED"
	StateReviewed  RequestState = "REVIEWED"
	StateCancelled RequestState = "CANCELLED"
)

var transitions = map[RequestState][]RequestState{
	StatePending:   {StateAssigned, StateCancelled},
	StateAssigned:  {StateCompleted, StateCancelled},
	StateCompleted: {StateReviewed},
}

func (s RequestState) Valid() bool {
	switch s {
	case StatePending, StateAssigned, StateCompleted, StateReviewed, StateCancelled:
		return true
	}
	return false
}

func (s RequestState) CanTransitionTo(next RequestState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type ServiceRequest struct {
	ID                     int64        `json:"id"`
	ServiceID              int64        `json:"service_id" validate:"required,gt=0"`
	ClientIdentity         int64        `json:"client_identity" validate:"required,gt=0"`
	ProblemDescription     string       `json:"problem_description" validate:"required,min=10,max=1000"`
	ServiceAddress         string       `json:"service_address" validate:"required,min=10,max=200"`
	RequestedDate          time.Time    `json:"requested_date"`
	TimeWindow             string       `json:"time_window" validate:"required,min=1,max=50"`
	MaxBudget              float64      `json:"max_budget" validate:"gt=0"`
	State                  RequestState `json:"state"`
	AdditionalComments     string       `json:"additional_comments,omitempty" validate:"max=500"`
	AssignedProfessionalID *int64       `json:"assigned_professional_id,omitempty"`
	AssignedSlotID         *int64       `json:"assigned_slot_id,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
	AssignedAt             *time.Time   `json:"assigned_at,omitempty"`
	CompletedAt            *time.Time   `json:"completed_at,omitempty"`
	CancelledAt            *time.Time   `json:"cancelled_at,omitempty"`
}

// ValidateRequestedDate enforces an exclusive-future date: the same day as
// now is rejected.
func ValidateRequestedDate(requested, now time.Time) error {
	if requested.IsZero() {
		return Invalid("requested_date", "is required")
	}
	if !DateOf(requested).After(DateOf(now)) {
		return Invalid("requested_date", "must be after today")
	}
	return nil
}

func (r *ServiceRequest) IsAssignedTo(professionalID int64) bool {
	return r.AssignedProfessionalID != nil && *r.AssignedProfessionalID == professionalID
}
