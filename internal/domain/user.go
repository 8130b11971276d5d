package domain

type UserRole string

const (
	RoleClient       UserRole = "client"
	RoleProfessional UserRole = "professional"
	RoleOperator     UserRole = "operator"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleProfessional, RoleOperator:
		return true
	}
	return false
}

// Identity is the authenticated caller as supplied by the auth layer.
// The engine trusts it and only enforces per-operation preconditions.
type Identity struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (i Identity) IsOperator() bool { return i.Role == RoleOperator }

func (i Identity) IsClient() bool { return i.Role == RoleClient }

func (i Identity) IsProfessional() bool { return i.Role == RoleProfessional }

// Is reports whether the caller is the given account.
func (i Identity) Is(userID int64) bool { return i.UserID != 0 && i.UserID == userID }
