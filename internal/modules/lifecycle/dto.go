package lifecycle

import "clickservice/internal/domain"

// CreateRequest is a client's submission. RequestedDate is YYYY-MM-DD.
// ClientIdentity is honoured only for operators.
type CreateRequest struct {
	ClientIdentity     int64   `json:"client_identity,omitempty"`
	ServiceID          int64   `json:"service_id"`
	ProblemDescription string  `json:"problem_description"`
	ServiceAddress     string  `json:"service_address"`
	RequestedDate      string  `json:"requested_date"`
	TimeWindow         string  `json:"time_window"`
	MaxBudget          float64 `json:"max_budget"`
	AdditionalComments string  `json:"additional_comments,omitempty"`
}

type AssignRequest struct {
	ProfessionalID int64 `json:"professional_id" binding:"required"`
	SlotID         int64 `json:"slot_id" binding:"required"`
}

// CompleteRequest settles a job. PaymentID defaults to the request id.
type CompleteRequest struct {
	PaymentAmount  float64 `json:"payment_amount"`
	CommissionRate float64 `json:"commission_rate"`
	PaymentID      *int64  `json:"payment_id,omitempty"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Candidate is a professional able to take a request, with the slots still open.
type Candidate struct {
	Professional domain.Professional       `json:"professional"`
	FreeSlots    []domain.AvailabilitySlot `json:"free_slots"`
}

// Completion is the outcome of Complete.
type Completion struct {
	Request    *domain.ServiceRequest `json:"request"`
	Commission *domain.Commission     `json:"commission"`
}
