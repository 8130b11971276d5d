package professional

type RegisterRequest struct {
	// OwnerIdentity is honoured only when an operator registers on someone's behalf.
	OwnerIdentity int64   `json:"owner_identity,omitempty"`
	FullName      string  `json:"full_name"`
	Phone         string  `json:"phone"`
	Bio           string  `json:"bio,omitempty"`
	WorkZone      string  `json:"work_zone,omitempty"`
	Available     *bool   `json:"available,omitempty"`
	ServiceIDs    []int64 `json:"service_ids,omitempty"`
}

type UpdateRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	WorkZone  *string `json:"work_zone,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

type CapabilitiesRequest struct {
	ServiceIDs []int64 `json:"service_ids"`
}
