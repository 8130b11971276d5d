package catalog

type CreateServiceRequest struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

type UpdateServiceRequest struct {
	Name       *string  `json:"name,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}
