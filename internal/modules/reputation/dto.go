package reputation

// RecordCommissionRequest carries a settled payment. Date is YYYY-MM-DD and
// defaults to today.
type RecordCommissionRequest struct {
	PaymentID int64   `json:"payment_id"`
	RequestID *int64  `json:"request_id,omitempty"`
	Base      float64 `json:"base"`
	Rate      float64 `json:"rate"`
	Date      string  `json:"date,omitempty"`
}

type UpdateCommissionRequest struct {
	PaymentID *int64   `json:"payment_id,omitempty"`
	Base      *float64 `json:"base,omitempty"`
	Rate      *float64 `json:"rate,omitempty"`
	Date      *string  `json:"date,omitempty"`
}
